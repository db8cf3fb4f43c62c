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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/DestinyObs/cks-api/internal/identity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// UserRepository implements identity.UserRepository
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, tenant_id, email, name, avatar, role, status, last_login, join_date, created_at, updated_at`

func scanUser(row pgx.Row) (*identity.User, error) {
	var user identity.User
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID, &user.TenantID, &user.Email, &user.Name, &user.Avatar,
		&user.Role, &user.Status, &lastLogin, &user.JoinDate,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	return &user, nil
}

// Create persists a new user and its password hash in one transaction.
func (r *UserRepository) Create(ctx context.Context, user *identity.User, passwordHash string) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, tenant_id, email, name, avatar, role, status, join_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		user.ID, user.TenantID, user.Email, user.Name, user.Avatar,
		user.Role, user.Status, user.JoinDate, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return identity.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO credentials (user_id, password_hash, updated_at)
		VALUES ($1, $2, $3)
	`, user.ID, passwordHash, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert credentials: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*identity.User, error) {
	return scanUser(r.db.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	return scanUser(r.db.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)
	`, email))
}

// Get retrieves a user by ID within a tenant. A user in another tenant
// scans as no rows, which the caller surfaces as not found.
func (r *UserRepository) Get(ctx context.Context, tenantID, id string) (*identity.User, error) {
	return scanUser(r.db.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
}

// List retrieves users of a tenant with search, role filter and
// pagination, plus the total count before pagination.
func (r *UserRepository) List(ctx context.Context, tenantID string, filter identity.ListFilter) ([]*identity.User, int, error) {
	where := `WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where += fmt.Sprintf(` AND (name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where += fmt.Sprintf(` AND role = $%d`, len(args))
	}

	var total int
	if err := r.db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)
	rows, err := r.db.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM users %s ORDER BY name LIMIT $%d OFFSET $%d
	`, userColumns, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*identity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}

	return users, total, rows.Err()
}

// Update updates mutable user fields
func (r *UserRepository) Update(ctx context.Context, user *identity.User) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET name = $3, role = $4, avatar = $5, updated_at = $6
		WHERE tenant_id = $1 AND id = $2
	`, user.TenantID, user.ID, user.Name, user.Role, user.Avatar, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// Delete removes a user from a tenant
func (r *UserRepository) Delete(ctx context.Context, tenantID, id string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM users WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdateStatus sets the account status
func (r *UserRepository) UpdateStatus(ctx context.Context, tenantID, id, status string) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE users SET status = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id, status)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin records a successful login time
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		UPDATE users SET last_login = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// GetPasswordHash retrieves the stored password hash for a user
func (r *UserRepository) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	var hash string
	err := r.db.pool.QueryRow(ctx, `
		SELECT password_hash FROM credentials WHERE user_id = $1
	`, userID).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", identity.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get credentials: %w", err)
	}
	return hash, nil
}

// SaveResetToken stores a hashed password-reset token
func (r *UserRepository) SaveResetToken(ctx context.Context, token *identity.ResetToken) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, token.TokenHash, token.UserID, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken retrieves and deletes an unexpired reset token.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, tokenHash string) (*identity.ResetToken, error) {
	var token identity.ResetToken
	err := r.db.pool.QueryRow(ctx, `
		DELETE FROM password_reset_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING token_hash, user_id, expires_at, created_at
	`, tokenHash).Scan(&token.TokenHash, &token.UserID, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return &token, nil
}
