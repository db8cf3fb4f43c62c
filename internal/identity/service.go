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

package identity

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/id"
)

// Service provides identity-related business logic
type Service struct {
	repo        UserRepository
	hasher      *PasswordHasher
	auditLogger audit.Logger

	// dummyHash is verified against on unknown-email logins so the unknown
	// and wrong-password failure paths take the same time.
	dummyHash string
}

// NewService creates a new identity service
func NewService(repo UserRepository, hasher *PasswordHasher, auditLogger audit.Logger) *Service {
	dummy, err := hasher.Hash(id.NewUUIDv7())
	if err != nil {
		// Hashing a fresh string only fails if the random source is broken;
		// keep a structurally valid fallback so Verify still burns a full
		// argon2 computation.
		dummy = "$argon2id$v=19$m=65536,t=3,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	}
	return &Service{
		repo:        repo,
		hasher:      hasher,
		auditLogger: auditLogger,
		dummyHash:   dummy,
	}
}

// CreateUser holds the fields accepted at user creation.
type CreateUser struct {
	Email    string
	Name     string
	Role     string
	Avatar   string
	Password string
}

// UpdateUser holds the mutable fields of a user. Nil means unchanged.
// TenantID, email and status are not updatable through this path.
type UpdateUser struct {
	Name   *string
	Role   *string
	Avatar *string
}

// Create provisions a new user in a tenant with a password credential.
// Email uniqueness is global: login resolves users by email alone.
func (s *Service) Create(ctx context.Context, tenantID string, in CreateUser) (*User, error) {
	if !isValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}
	if !isStrongPassword(in.Password) {
		return nil, ErrWeakPassword
	}

	if existing, err := s.repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &User{
		ID:        id.NewUUIDv7(),
		TenantID:  tenantID,
		Email:     strings.ToLower(in.Email),
		Name:      in.Name,
		Avatar:    in.Avatar,
		Role:      in.Role,
		Status:    StatusActive,
		JoinDate:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserCreated,
		TenantID: tenantID,
		ActorID:  user.ID,
		Resource: "user",
		Metadata: map[string]any{audit.AttrEmail: user.Email},
	})

	return user, nil
}

// Authenticate verifies credentials by email. Unknown email and wrong
// password both return ErrInvalidCredentials and are indistinguishable to
// the caller; account status is not checked here (the token issuer applies
// the status policy).
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Burn a hash verification anyway; an early return here would make
		// unknown emails observably faster than wrong passwords.
		_, _ = s.hasher.Verify(password, s.dummyHash)
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			Resource: "login",
			Metadata: map[string]any{audit.AttrReason: "user_not_found"},
		})
		return nil, ErrInvalidCredentials
	}

	hash, err := s.repo.GetPasswordHash(ctx, user.ID)
	if err != nil {
		_, _ = s.hasher.Verify(password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	valid, err := s.hasher.Verify(password, hash)
	if err != nil || !valid {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeLoginFailed,
			TenantID: user.TenantID,
			ActorID:  user.ID,
			Resource: "login",
			Metadata: map[string]any{audit.AttrReason: "invalid_password"},
		})
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// VerifyPassword checks a plaintext password against a user's stored hash.
func (s *Service) VerifyPassword(ctx context.Context, user *User, password string) (bool, error) {
	hash, err := s.repo.GetPasswordHash(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return s.hasher.Verify(password, hash)
}

// RecordLogin stamps last_login after a successful authentication.
func (s *Service) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	return s.repo.UpdateLastLogin(ctx, userID, at)
}

// GetByEmail retrieves a user by email, case-insensitively.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// GetByID retrieves a user by ID across tenants.
func (s *Service) GetByID(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// Get retrieves a user within a tenant. A user that exists in another
// tenant is reported as not found, never as forbidden.
func (s *Service) Get(ctx context.Context, tenantID, userID string) (*User, error) {
	return s.repo.Get(ctx, tenantID, userID)
}

// List lists users of a tenant with pagination, search and role filter.
func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) ([]*User, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	return s.repo.List(ctx, tenantID, filter)
}

// Update applies the mutable fields to a user within a tenant.
func (s *Service) Update(ctx context.Context, tenantID, userID string, in UpdateUser) (*User, error) {
	user, err := s.repo.Get(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Avatar != nil {
		user.Avatar = *in.Avatar
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserUpdated,
		TenantID: tenantID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID},
	})

	return user, nil
}

// Delete removes a user from a tenant.
func (s *Service) Delete(ctx context.Context, tenantID, userID string) error {
	if err := s.repo.Delete(ctx, tenantID, userID); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserDeleted,
		TenantID: tenantID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID},
	})
	return nil
}

// Suspend sets a user's status to suspended.
func (s *Service) Suspend(ctx context.Context, tenantID, userID string) error {
	if err := s.repo.UpdateStatus(ctx, tenantID, userID, StatusSuspended); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserSuspended,
		TenantID: tenantID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID},
	})
	return nil
}

// Activate sets a user's status to active.
func (s *Service) Activate(ctx context.Context, tenantID, userID string) error {
	if err := s.repo.UpdateStatus(ctx, tenantID, userID, StatusActive); err != nil {
		return err
	}
	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserActivated,
		TenantID: tenantID,
		Resource: "user",
		Metadata: map[string]any{"user_id": userID},
	})
	return nil
}

// GeneratePasswordResetToken issues an opaque reset token for a user in a
// tenant. The token is returned once in plaintext and stored hashed with a
// one-hour expiry. There is no redemption endpoint yet; the repository
// exposes consumption for when one is added.
func (s *Service) GeneratePasswordResetToken(ctx context.Context, tenantID, userID string) (string, error) {
	user, err := s.repo.Get(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	sum := sha256.Sum256([]byte(token))
	now := time.Now()
	if err := s.repo.SaveResetToken(ctx, &ResetToken{
		UserID:    user.ID,
		TokenHash: hex.EncodeToString(sum[:]),
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypePasswordResetRequest,
		TenantID: tenantID,
		Resource: "user",
		Metadata: map[string]any{"user_id": user.ID},
	})

	return token, nil
}

// Helper functions
func isValidEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && len(email) < 255
}

func isStrongPassword(password string) bool {
	// Password must be at least 8 characters
	return len(password) >= 8
}
