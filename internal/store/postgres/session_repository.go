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
	"fmt"
	"time"

	"github.com/DestinyObs/cks-api/internal/session"
)

// SessionRepository implements session.SessionRepository
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new login-session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a login session
func (r *SessionRepository) Create(ctx context.Context, sess *session.LoginSession) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO login_sessions (id, user_id, tenant_id, device, ip_address, created_at, last_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sess.ID, sess.UserID, sess.TenantID, sess.Device, sess.IPAddress, sess.CreatedAt, sess.LastActive)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// ListForUser retrieves a user's login sessions, most recent first
func (r *SessionRepository) ListForUser(ctx context.Context, userID string) ([]*session.LoginSession, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, user_id, tenant_id, device, ip_address, created_at, last_active
		FROM login_sessions WHERE user_id = $1 ORDER BY last_active DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*session.LoginSession
	for rows.Next() {
		var s session.LoginSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.TenantID, &s.Device, &s.IPAddress, &s.CreatedAt, &s.LastActive); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, &s)
	}
	return sessions, rows.Err()
}

// Touch updates a session's last-active time
func (r *SessionRepository) Touch(ctx context.Context, sessionID string, at time.Time) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE login_sessions SET last_active = $2 WHERE id = $1
	`, sessionID, at)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// DeleteForUser removes all of a user's sessions
func (r *SessionRepository) DeleteForUser(ctx context.Context, userID string) error {
	_, err := r.db.pool.Exec(ctx, `
		DELETE FROM login_sessions WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}
