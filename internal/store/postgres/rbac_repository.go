// Copyright 2026 The cks-api Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DestinyObs/cks-api/internal/rbac"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// RBACRepository implements rbac.Repository
type RBACRepository struct {
	db *DB
}

// NewRBACRepository creates a new RBAC repository
func NewRBACRepository(db *DB) *RBACRepository {
	return &RBACRepository{db: db}
}

// SnapshotForUser reads the user's grants and the permission sets of the
// granted roles inside one repeatable-read transaction, so a single
// authorization decision never mixes two states.
func (r *RBACRepository) SnapshotForUser(ctx context.Context, userID string) (*rbac.Snapshot, error) {
	tx, err := r.db.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	grants, err := listGrants(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &rbac.Snapshot{
		Grants:          grants,
		RolePermissions: make(map[string][]string),
	}

	rows, err := tx.Query(ctx, `
		SELECT rp.role_id, p.name
		FROM rbac_role_permissions rp
		JOIN rbac_permissions p ON p.id = rp.permission_id
		WHERE rp.role_id IN (SELECT role_id FROM rbac_user_roles WHERE user_id = $1)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role permissions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var roleID, perm string
		if err := rows.Scan(&roleID, &perm); err != nil {
			return nil, fmt.Errorf("failed to scan role permission: %w", err)
		}
		snapshot.RolePermissions[roleID] = append(snapshot.RolePermissions[roleID], perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return snapshot, nil
}

func listGrants(ctx context.Context, q querier, userID string) ([]*rbac.RoleGrant, error) {
	rows, err := q.Query(ctx, `
		SELECT user_id, role_id, cluster_id, namespace_id, granted_at, granted_by
		FROM rbac_user_roles WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grants: %w", err)
	}
	defer rows.Close()

	var grants []*rbac.RoleGrant
	for rows.Next() {
		var g rbac.RoleGrant
		if err := rows.Scan(&g.UserID, &g.RoleID, &g.ClusterID, &g.NamespaceID, &g.GrantedAt, &g.GrantedBy); err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, &g)
	}
	return grants, rows.Err()
}

// querier is the subset of pgx query methods shared by pool and tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Grant persists a role grant
func (r *RBACRepository) Grant(ctx context.Context, grant *rbac.RoleGrant) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO rbac_user_roles (user_id, role_id, cluster_id, namespace_id, granted_at, granted_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, grant.UserID, grant.RoleID, grant.ClusterID, grant.NamespaceID, grant.GrantedAt, grant.GrantedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return rbac.ErrGrantAlreadyExists
		}
		return fmt.Errorf("failed to insert grant: %w", err)
	}
	return nil
}

// Revoke removes one grant identified by its full scope tuple
func (r *RBACRepository) Revoke(ctx context.Context, userID, roleID string, clusterID, namespaceID *string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM rbac_user_roles
		WHERE user_id = $1 AND role_id = $2
		  AND cluster_id IS NOT DISTINCT FROM $3
		  AND namespace_id IS NOT DISTINCT FROM $4
	`, userID, roleID, clusterID, namespaceID)
	if err != nil {
		return fmt.Errorf("failed to delete grant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return rbac.ErrGrantNotFound
	}
	return nil
}

// ListGrantsForUser retrieves all grants held by a user
func (r *RBACRepository) ListGrantsForUser(ctx context.Context, userID string) ([]*rbac.RoleGrant, error) {
	return listGrants(ctx, r.db.pool, userID)
}

func scanRole(row pgx.Row) (*rbac.Role, error) {
	var role rbac.Role
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.Status, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rbac.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to scan role: %w", err)
	}
	return &role, nil
}

// GetRole retrieves a role by ID
func (r *RBACRepository) GetRole(ctx context.Context, roleID string) (*rbac.Role, error) {
	return scanRole(r.db.pool.QueryRow(ctx, `
		SELECT id, name, description, status, created_at FROM rbac_roles WHERE id = $1
	`, roleID))
}

// GetRoleByName retrieves a role by name
func (r *RBACRepository) GetRoleByName(ctx context.Context, name string) (*rbac.Role, error) {
	return scanRole(r.db.pool.QueryRow(ctx, `
		SELECT id, name, description, status, created_at FROM rbac_roles WHERE name = $1
	`, name))
}

// ListRoles retrieves all roles
func (r *RBACRepository) ListRoles(ctx context.Context) ([]*rbac.Role, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, description, status, created_at FROM rbac_roles ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*rbac.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListPermissions retrieves all permissions
func (r *RBACRepository) ListPermissions(ctx context.Context) ([]*rbac.Permission, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, name, description FROM rbac_permissions ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	var perms []*rbac.Permission
	for rows.Next() {
		var p rbac.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan permission: %w", err)
		}
		perms = append(perms, &p)
	}
	return perms, rows.Err()
}
