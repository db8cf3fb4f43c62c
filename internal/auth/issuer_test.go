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

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/identity"
)

// mockAuthenticator returns a fixed user for one credential pair.
type mockAuthenticator struct {
	user     *identity.User
	email    string
	password string
	logins   int
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string) (*identity.User, error) {
	if m.user == nil || email != m.email || password != m.password {
		return nil, identity.ErrInvalidCredentials
	}
	return m.user, nil
}

func (m *mockAuthenticator) RecordLogin(ctx context.Context, userID string, at time.Time) error {
	m.logins++
	return nil
}

func testConfig() Config {
	return Config{
		Secret:             "0123456789abcdef0123456789abcdef",
		Issuer:             "cks-api",
		Audience:           "cks-console",
		CheckStatusAtLogin: true,
	}
}

func testUser(status string) *identity.User {
	return &identity.User{
		ID:       "user-1",
		TenantID: "tenant-1",
		Email:    "dev@acme.com",
		Name:     "Jane Dev",
		Role:     identity.RoleDeveloper,
		Status:   status,
	}
}

// TestPurpose: Validates token issuance: claims content and the fixed eight-hour expiry.
// Scope: Unit Test
// Security: Tokens must carry exactly the identity, tenant and role of the authenticated user.
// Expected: Verified claims match the user; exp is exactly iat + 8h.
// Test Case ID: TOK-01
func TestIssuer_IssueAndVerify(t *testing.T) {
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	auth := &mockAuthenticator{user: testUser(identity.StatusActive), email: "dev@acme.com", password: "secret123"}
	i := NewIssuer(testConfig(), auth, audit.Nop{})
	i.now = func() time.Time { return issued }

	token, err := i.Authenticate(context.Background(), "dev@acme.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if token.TokenType != "Bearer" {
		t.Errorf("expected token type Bearer, got %q", token.TokenType)
	}
	if token.RefreshToken != "" {
		t.Errorf("expected empty refresh token, got %q", token.RefreshToken)
	}
	if want := issued.Add(TokenLifetime).Unix(); token.ExpiresAt != want {
		t.Errorf("expected expiresAt %d, got %d", want, token.ExpiresAt)
	}
	if auth.logins != 1 {
		t.Errorf("expected one recorded login, got %d", auth.logins)
	}

	claims, err := i.Verify(token.AccessToken)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("expected sub user-1, got %q", claims.Subject)
	}
	if claims.TenantID != "tenant-1" {
		t.Errorf("expected tenant_id tenant-1, got %q", claims.TenantID)
	}
	if claims.Email != "dev@acme.com" || claims.Name != "Jane Dev" || claims.Role != identity.RoleDeveloper {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if !claims.ExpiresAt.Time.Equal(issued.Add(TokenLifetime)) {
		t.Errorf("expected exp %v, got %v", issued.Add(TokenLifetime), claims.ExpiresAt.Time)
	}
	if !claims.IssuedAt.Time.Equal(issued) {
		t.Errorf("expected iat %v, got %v", issued, claims.IssuedAt.Time)
	}
}

// TestPurpose: Validates expiry boundary behavior of verification.
// Scope: Unit Test
// Expected: A token is accepted one second before its deadline and rejected one second after.
// Test Case ID: TOK-02
func TestIssuer_Verify_Expiry(t *testing.T) {
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	auth := &mockAuthenticator{user: testUser(identity.StatusActive), email: "dev@acme.com", password: "secret123"}
	i := NewIssuer(testConfig(), auth, audit.Nop{})
	i.now = func() time.Time { return issued }

	token, err := i.Authenticate(context.Background(), "dev@acme.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	i.now = func() time.Time { return issued.Add(TokenLifetime - time.Second) }
	if _, err := i.Verify(token.AccessToken); err != nil {
		t.Errorf("expected valid token just before expiry, got %v", err)
	}

	i.now = func() time.Time { return issued.Add(TokenLifetime + time.Second) }
	if _, err := i.Verify(token.AccessToken); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired just after expiry, got %v", err)
	}
}

// TestPurpose: Validates signature and issuer checks on verification.
// Scope: Unit Test
// Security: Tokens signed with a different secret or issued by someone else must be rejected.
// Expected: ErrTokenInvalid for foreign signatures, garbage input and mismatched issuers.
// Test Case ID: TOK-03
func TestIssuer_Verify_Invalid(t *testing.T) {
	auth := &mockAuthenticator{user: testUser(identity.StatusActive), email: "dev@acme.com", password: "secret123"}
	i := NewIssuer(testConfig(), auth, audit.Nop{})

	token, err := i.Authenticate(context.Background(), "dev@acme.com", "secret123")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}

	if _, err := i.Verify("not.a.token"); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for garbage, got %v", err)
	}

	otherCfg := testConfig()
	otherCfg.Secret = "ffffffffffffffffffffffffffffffff"
	other := NewIssuer(otherCfg, auth, audit.Nop{})
	if _, err := other.Verify(token.AccessToken); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}

	issuerCfg := testConfig()
	issuerCfg.Issuer = "someone-else"
	foreign := NewIssuer(issuerCfg, auth, audit.Nop{})
	if _, err := foreign.Verify(token.AccessToken); err != ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid for issuer mismatch, got %v", err)
	}
}

// TestPurpose: Validates the login status policy switch.
// Scope: Unit Test
// Security: Disabled accounts must not receive tokens when the policy is on; the policy is explicit configuration.
// Expected: Suspended and inactive accounts are refused with their own errors when enabled, and issued tokens when disabled.
// Test Case ID: TOK-04
func TestIssuer_Authenticate_StatusPolicy(t *testing.T) {
	for _, tc := range []struct {
		status  string
		wantErr error
	}{
		{identity.StatusSuspended, identity.ErrAccountSuspended},
		{identity.StatusInactive, identity.ErrAccountInactive},
	} {
		auth := &mockAuthenticator{user: testUser(tc.status), email: "dev@acme.com", password: "secret123"}

		enabled := NewIssuer(testConfig(), auth, audit.Nop{})
		if _, err := enabled.Authenticate(context.Background(), "dev@acme.com", "secret123"); err != tc.wantErr {
			t.Errorf("status %q with policy: expected %v, got %v", tc.status, tc.wantErr, err)
		}

		cfg := testConfig()
		cfg.CheckStatusAtLogin = false
		disabled := NewIssuer(cfg, auth, audit.Nop{})
		if _, err := disabled.Authenticate(context.Background(), "dev@acme.com", "secret123"); err != nil {
			t.Errorf("status %q without policy: expected token, got %v", tc.status, err)
		}
	}
}
