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

	"github.com/DestinyObs/cks-api/internal/session"
	"github.com/jackc/pgx/v5"
)

// APITokenRepository implements session.TokenRepository
type APITokenRepository struct {
	db *DB
}

// NewAPITokenRepository creates a new API-token repository
func NewAPITokenRepository(db *DB) *APITokenRepository {
	return &APITokenRepository{db: db}
}

func scanAPIToken(row pgx.Row) (*session.APIToken, error) {
	var token session.APIToken
	var lastUsed sql.NullTime

	err := row.Scan(&token.ID, &token.UserID, &token.TenantID, &token.Name,
		&token.TokenHash, &token.CreatedAt, &lastUsed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to scan api token: %w", err)
	}

	if lastUsed.Valid {
		token.LastUsed = &lastUsed.Time
	}
	return &token, nil
}

// Create persists an API token
func (r *APITokenRepository) Create(ctx context.Context, token *session.APIToken) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO api_tokens (id, user_id, tenant_id, name, token_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, token.ID, token.UserID, token.TenantID, token.Name, token.TokenHash, token.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert api token: %w", err)
	}
	return nil
}

// GetByHash retrieves an API token by the SHA-256 of its plaintext
func (r *APITokenRepository) GetByHash(ctx context.Context, tokenHash string) (*session.APIToken, error) {
	return scanAPIToken(r.db.pool.QueryRow(ctx, `
		SELECT id, user_id, tenant_id, name, token_hash, created_at, last_used
		FROM api_tokens WHERE token_hash = $1
	`, tokenHash))
}

// ListForUser retrieves a user's API tokens, newest first
func (r *APITokenRepository) ListForUser(ctx context.Context, userID string) ([]*session.APIToken, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, user_id, tenant_id, name, token_hash, created_at, last_used
		FROM api_tokens WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*session.APIToken
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

// Delete removes a token owned by the given user
func (r *APITokenRepository) Delete(ctx context.Context, userID, tokenID string) error {
	result, err := r.db.pool.Exec(ctx, `
		DELETE FROM api_tokens WHERE user_id = $1 AND id = $2
	`, userID, tokenID)
	if err != nil {
		return fmt.Errorf("failed to delete api token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return session.ErrTokenNotFound
	}
	return nil
}

// TouchLastUsed records when the token last authenticated a request
func (r *APITokenRepository) TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		UPDATE api_tokens SET last_used = $2 WHERE id = $1
	`, tokenID, at)
	if err != nil {
		return fmt.Errorf("failed to touch api token: %w", err)
	}
	return nil
}
