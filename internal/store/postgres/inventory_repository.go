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

	"github.com/DestinyObs/cks-api/internal/inventory"
	"github.com/jackc/pgx/v5"
)

// InventoryRepository implements inventory.Repository
type InventoryRepository struct {
	db *DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetCluster retrieves a cluster by ID
func (r *InventoryRepository) GetCluster(ctx context.Context, id string) (*inventory.Cluster, error) {
	var c inventory.Cluster
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, status, version, created_at, updated_at
		FROM clusters WHERE id = $1
	`, id).Scan(&c.ID, &c.TenantID, &c.Name, &c.Status, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}
	return &c, nil
}

// GetNamespace retrieves a namespace by ID
func (r *InventoryRepository) GetNamespace(ctx context.Context, id string) (*inventory.Namespace, error) {
	var n inventory.Namespace
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, tenant_id, cluster_id, name, status, created_at, updated_at
		FROM namespaces WHERE id = $1
	`, id).Scan(&n.ID, &n.TenantID, &n.ClusterID, &n.Name, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrNamespaceNotFound
		}
		return nil, fmt.Errorf("failed to get namespace: %w", err)
	}
	return &n, nil
}

// ListClusters retrieves a tenant's clusters
func (r *InventoryRepository) ListClusters(ctx context.Context, tenantID string) ([]*inventory.Cluster, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, tenant_id, name, status, version, created_at, updated_at
		FROM clusters WHERE tenant_id = $1 ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	defer rows.Close()

	var clusters []*inventory.Cluster
	for rows.Next() {
		var c inventory.Cluster
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Status, &c.Version, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cluster: %w", err)
		}
		clusters = append(clusters, &c)
	}
	return clusters, rows.Err()
}

// ListNamespaces retrieves a tenant's namespaces, optionally narrowed to
// one cluster
func (r *InventoryRepository) ListNamespaces(ctx context.Context, tenantID, clusterID string) ([]*inventory.Namespace, error) {
	query := `
		SELECT id, tenant_id, cluster_id, name, status, created_at, updated_at
		FROM namespaces WHERE tenant_id = $1`
	args := []any{tenantID}
	if clusterID != "" {
		query += ` AND cluster_id = $2`
		args = append(args, clusterID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}
	defer rows.Close()

	var namespaces []*inventory.Namespace
	for rows.Next() {
		var n inventory.Namespace
		if err := rows.Scan(&n.ID, &n.TenantID, &n.ClusterID, &n.Name, &n.Status, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan namespace: %w", err)
		}
		namespaces = append(namespaces, &n)
	}
	return namespaces, rows.Err()
}
