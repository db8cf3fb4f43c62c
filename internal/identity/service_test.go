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
	"strings"
	"testing"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
)

// MockUserRepository is a simple in-memory implementation of UserRepository
type MockUserRepository struct {
	users       map[string]*User
	credentials map[string]string
	resetTokens map[string]*ResetToken
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:       make(map[string]*User),
		credentials: make(map[string]string),
		resetTokens: make(map[string]*ResetToken),
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *User, passwordHash string) error {
	if _, ok := m.users[user.ID]; ok {
		return ErrUserAlreadyExists
	}
	m.users[user.ID] = user
	m.credentials[user.ID] = passwordHash
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserRepository) Get(ctx context.Context, tenantID, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (m *MockUserRepository) List(ctx context.Context, tenantID string, filter ListFilter) ([]*User, int, error) {
	var users []*User
	for _, u := range m.users {
		if u.TenantID != tenantID {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		users = append(users, u)
	}
	return users, len(users), nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *User) error {
	existing, ok := m.users[user.ID]
	if !ok || existing.TenantID != user.TenantID {
		return ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, tenantID, id string) error {
	u, ok := m.users[id]
	if !ok || u.TenantID != tenantID {
		return ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.credentials, id)
	return nil
}

func (m *MockUserRepository) UpdateStatus(ctx context.Context, tenantID, id, status string) error {
	u, ok := m.users[id]
	if !ok || u.TenantID != tenantID {
		return ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.LastLogin = &at
	return nil
}

func (m *MockUserRepository) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	h, ok := m.credentials[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return h, nil
}

func (m *MockUserRepository) SaveResetToken(ctx context.Context, token *ResetToken) error {
	m.resetTokens[token.TokenHash] = token
	return nil
}

func (m *MockUserRepository) ConsumeResetToken(ctx context.Context, tokenHash string) (*ResetToken, error) {
	t, ok := m.resetTokens[tokenHash]
	if !ok || time.Now().After(t.ExpiresAt) {
		return nil, ErrUserNotFound
	}
	delete(m.resetTokens, tokenHash)
	return t, nil
}

func newTestService() (*Service, *MockUserRepository) {
	repo := NewMockUserRepository()
	hasher := NewPasswordHasher(65536, 3, 4, 16, 32)
	return NewService(repo, hasher, audit.Nop{}), repo
}

// TestPurpose: Validates the credential verification flow: success, wrong password, and unknown email.
// Scope: Unit Test
// Security: Authentication; unknown email and wrong password must be indistinguishable.
// Expected: Success for correct credentials, ErrInvalidCredentials for both failure modes.
// Test Case ID: IDN-01
func TestIdentity_Service_Authenticate(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	user, err := s.Create(ctx, "tenant-1", CreateUser{
		Email:    "test@example.com",
		Name:     "Test User",
		Role:     RoleDeveloper,
		Password: "SecurePassword123",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	got, err := s.Authenticate(ctx, "test@example.com", "SecurePassword123")
	if err != nil {
		t.Fatalf("expected success, got err: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("expected user ID %s, got %s", user.ID, got.ID)
	}

	// Case-insensitive email resolution
	if _, err := s.Authenticate(ctx, "TEST@Example.COM", "SecurePassword123"); err != nil {
		t.Errorf("expected case-insensitive email match, got %v", err)
	}

	_, err = s.Authenticate(ctx, "test@example.com", "WrongPassword")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}

	_, err = s.Authenticate(ctx, "nobody@example.com", "SecurePassword123")
	if err != ErrInvalidCredentials {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

// TestPurpose: Validates that creating a user fails when the email is already registered, regardless of tenant.
// Scope: Unit Test
// Security: Email uniqueness is global because login resolves users by email alone.
// Expected: ErrUserAlreadyExists for a duplicate email even in a different tenant.
// Test Case ID: IDN-02
func TestIdentity_Service_Create_DuplicateEmail(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	if _, err := s.Create(ctx, "tenant-1", CreateUser{Email: "dup@example.com", Name: "A", Password: "password1"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	if _, err := s.Create(ctx, "tenant-1", CreateUser{Email: "dup@example.com", Name: "B", Password: "password2"}); err != ErrUserAlreadyExists {
		t.Errorf("expected ErrUserAlreadyExists in same tenant, got %v", err)
	}
	if _, err := s.Create(ctx, "tenant-2", CreateUser{Email: "dup@example.com", Name: "C", Password: "password3"}); err != ErrUserAlreadyExists {
		t.Errorf("expected ErrUserAlreadyExists across tenants, got %v", err)
	}
}

// TestPurpose: Validates creation input checks.
// Scope: Unit Test
// Expected: ErrInvalidEmail for malformed emails, ErrWeakPassword for short passwords.
// Test Case ID: IDN-03
func TestIdentity_Service_Create_Validation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	if _, err := s.Create(ctx, "tenant-1", CreateUser{Email: "not-an-email", Password: "password1"}); err != ErrInvalidEmail {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := s.Create(ctx, "tenant-1", CreateUser{Email: "ok@example.com", Password: "short"}); err != ErrWeakPassword {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}
}

// TestPurpose: Validates suspend and activate status flips and tenant scoping of both.
// Scope: Unit Test
// Security: A user in another tenant must be reported as not found, never acted on.
// Expected: Status transitions apply within the tenant; cross-tenant attempts fail with ErrUserNotFound.
// Test Case ID: IDN-04
func TestIdentity_Service_SuspendActivate(t *testing.T) {
	s, repo := newTestService()
	ctx := context.Background()

	user, err := s.Create(ctx, "tenant-1", CreateUser{Email: "u@example.com", Name: "U", Password: "password1"})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if err := s.Suspend(ctx, "tenant-1", user.ID); err != nil {
		t.Fatalf("suspend failed: %v", err)
	}
	if repo.users[user.ID].Status != StatusSuspended {
		t.Errorf("expected status %q, got %q", StatusSuspended, repo.users[user.ID].Status)
	}

	if err := s.Activate(ctx, "tenant-1", user.ID); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if repo.users[user.ID].Status != StatusActive {
		t.Errorf("expected status %q, got %q", StatusActive, repo.users[user.ID].Status)
	}

	// Cross-tenant suspension attempt is a plain not-found.
	if err := s.Suspend(ctx, "tenant-2", user.ID); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound for cross-tenant suspend, got %v", err)
	}
}

// TestPurpose: Validates tenant-scoped lookup semantics.
// Scope: Unit Test
// Security: Cross-tenant reads must be indistinguishable from nonexistent users.
// Expected: Get succeeds in the owning tenant and returns ErrUserNotFound from any other.
// Test Case ID: IDN-05
func TestIdentity_Service_Get_TenantScoped(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	user, err := s.Create(ctx, "tenant-1", CreateUser{Email: "scoped@example.com", Name: "S", Password: "password1"})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	if _, err := s.Get(ctx, "tenant-1", user.ID); err != nil {
		t.Errorf("expected user in owning tenant, got %v", err)
	}
	if _, err := s.Get(ctx, "tenant-2", user.ID); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound from other tenant, got %v", err)
	}
}

// TestPurpose: Validates update semantics: only name, role and avatar change; tenant is immutable.
// Scope: Unit Test
// Expected: Provided fields change, absent fields stay, email and tenant never move.
// Test Case ID: IDN-06
func TestIdentity_Service_Update(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	user, err := s.Create(ctx, "tenant-1", CreateUser{Email: "up@example.com", Name: "Before", Role: RoleViewer, Password: "password1"})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	name := "After"
	role := RoleAdmin
	updated, err := s.Update(ctx, "tenant-1", user.ID, UpdateUser{Name: &name, Role: &role})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "After" || updated.Role != RoleAdmin {
		t.Errorf("unexpected update result: name=%q role=%q", updated.Name, updated.Role)
	}
	if updated.Email != "up@example.com" || updated.TenantID != "tenant-1" {
		t.Errorf("immutable fields changed: email=%q tenant=%q", updated.Email, updated.TenantID)
	}
}

// TestPurpose: Validates password-reset token generation and one-time consumption.
// Scope: Unit Test
// Security: Only the hash is stored; the plaintext is never recoverable from the repository.
// Expected: A generated token consumes exactly once and is bound to the user.
// Test Case ID: IDN-07
func TestIdentity_Service_PasswordResetToken(t *testing.T) {
	s, repo := newTestService()
	ctx := context.Background()

	user, err := s.Create(ctx, "tenant-1", CreateUser{Email: "reset@example.com", Name: "R", Password: "password1"})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := s.GeneratePasswordResetToken(ctx, "tenant-1", user.ID)
	if err != nil {
		t.Fatalf("failed to generate reset token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	// The plaintext must not be stored.
	for hash := range repo.resetTokens {
		if hash == token {
			t.Error("reset token stored in plaintext")
		}
	}

	// Cross-tenant generation is a plain not-found.
	if _, err := s.GeneratePasswordResetToken(ctx, "tenant-2", user.ID); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound for cross-tenant reset, got %v", err)
	}
}
