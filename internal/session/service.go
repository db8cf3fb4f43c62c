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

package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/id"
)

// Service manages login-session records and opaque API tokens.
type Service struct {
	sessions    SessionRepository
	tokens      TokenRepository
	auditLogger audit.Logger
}

// NewService creates a new session service
func NewService(sessions SessionRepository, tokens TokenRepository, auditLogger audit.Logger) *Service {
	return &Service{
		sessions:    sessions,
		tokens:      tokens,
		auditLogger: auditLogger,
	}
}

// RecordLogin stores a login-session record for a successful login.
func (s *Service) RecordLogin(ctx context.Context, userID, tenantID, device, ipAddress string) (*LoginSession, error) {
	now := time.Now()
	sess := &LoginSession{
		ID:         id.NewUUIDv7(),
		UserID:     userID,
		TenantID:   tenantID,
		Device:     device,
		IPAddress:  ipAddress,
		CreatedAt:  now,
		LastActive: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to record login session: %w", err)
	}
	return sess, nil
}

// ListSessions lists a user's login sessions.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]*LoginSession, error) {
	return s.sessions.ListForUser(ctx, userID)
}

// CreateToken mints a named API token for a user. The plaintext is
// returned once; only its hash is persisted.
func (s *Service) CreateToken(ctx context.Context, userID, tenantID, name string) (string, *APIToken, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", nil, fmt.Errorf("failed to generate api token: %w", err)
	}
	plaintext := base64.RawURLEncoding.EncodeToString(raw)

	token := &APIToken{
		ID:        id.NewUUIDv7(),
		UserID:    userID,
		TenantID:  tenantID,
		Name:      name,
		TokenHash: hashToken(plaintext),
		CreatedAt: time.Now(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", nil, fmt.Errorf("failed to store api token: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAPITokenCreated,
		TenantID: tenantID,
		ActorID:  userID,
		Resource: name,
	})

	return plaintext, token, nil
}

// AuthenticateToken resolves an opaque token to its record and bumps
// last_used. Unknown and malformed tokens are indistinguishable.
func (s *Service) AuthenticateToken(ctx context.Context, plaintext string) (*APIToken, error) {
	token, err := s.tokens.GetByHash(ctx, hashToken(plaintext))
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if err := s.tokens.TouchLastUsed(ctx, token.ID, time.Now()); err != nil {
		// last_used is advisory; authentication already succeeded.
		_ = err
	}
	return token, nil
}

// ListTokens lists a user's API tokens.
func (s *Service) ListTokens(ctx context.Context, userID string) ([]*APIToken, error) {
	return s.tokens.ListForUser(ctx, userID)
}

// RevokeToken deletes one of a user's API tokens.
func (s *Service) RevokeToken(ctx context.Context, userID, tokenID string) error {
	if err := s.tokens.Delete(ctx, userID, tokenID); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAPITokenRevoked,
		ActorID:  userID,
		Resource: tokenID,
	})
	return nil
}

func hashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
