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

package http

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/auth"
	"github.com/DestinyObs/cks-api/internal/identity"
	"github.com/DestinyObs/cks-api/internal/inventory"
	"github.com/DestinyObs/cks-api/internal/observability/metrics"
	"github.com/DestinyObs/cks-api/internal/rbac"
	"github.com/DestinyObs/cks-api/internal/session"
	"github.com/DestinyObs/cks-api/internal/tenant"
	"github.com/go-chi/chi/v5"
)

// In-memory fakes for the repository contracts the handler stack needs.

type fakeUserRepo struct {
	users       map[string]*identity.User
	credentials map[string]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*identity.User{}, credentials: map[string]string{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *identity.User, hash string) error {
	f.users[u.ID] = u
	f.credentials[u.ID] = hash
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*identity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (f *fakeUserRepo) Get(ctx context.Context, tenantID, id string) (*identity.User, error) {
	u, ok := f.users[id]
	if !ok || u.TenantID != tenantID {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) List(ctx context.Context, tenantID string, filter identity.ListFilter) ([]*identity.User, int, error) {
	var users []*identity.User
	for _, u := range f.users {
		if u.TenantID == tenantID {
			users = append(users, u)
		}
	}
	return users, len(users), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *identity.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, tenantID, id string) error {
	u, ok := f.users[id]
	if !ok || u.TenantID != tenantID {
		return identity.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, tenantID, id, status string) error {
	u, ok := f.users[id]
	if !ok || u.TenantID != tenantID {
		return identity.ErrUserNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (f *fakeUserRepo) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	h, ok := f.credentials[userID]
	if !ok {
		return "", identity.ErrUserNotFound
	}
	return h, nil
}

func (f *fakeUserRepo) SaveResetToken(ctx context.Context, token *identity.ResetToken) error {
	return nil
}

func (f *fakeUserRepo) ConsumeResetToken(ctx context.Context, tokenHash string) (*identity.ResetToken, error) {
	return nil, identity.ErrUserNotFound
}

type fakeTenantRepo struct {
	tenants map[string]*tenant.Tenant
}

func (f *fakeTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error {
	f.tenants[t.ID] = t
	return nil
}

func (f *fakeTenantRepo) GetByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

func (f *fakeTenantRepo) GetByName(ctx context.Context, name string) (*tenant.Tenant, error) {
	for _, t := range f.tenants {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (f *fakeTenantRepo) List(ctx context.Context, filter tenant.ListFilter) ([]*tenant.Tenant, int, error) {
	var out []*tenant.Tenant
	for _, t := range f.tenants {
		out = append(out, t)
	}
	return out, len(out), nil
}

type fakeRBACRepo struct{}

func (fakeRBACRepo) SnapshotForUser(ctx context.Context, userID string) (*rbac.Snapshot, error) {
	return &rbac.Snapshot{RolePermissions: map[string][]string{}}, nil
}
func (fakeRBACRepo) Grant(ctx context.Context, grant *rbac.RoleGrant) error { return nil }
func (fakeRBACRepo) Revoke(ctx context.Context, userID, roleID string, clusterID, namespaceID *string) error {
	return rbac.ErrGrantNotFound
}
func (fakeRBACRepo) ListGrantsForUser(ctx context.Context, userID string) ([]*rbac.RoleGrant, error) {
	return nil, nil
}
func (fakeRBACRepo) GetRole(ctx context.Context, roleID string) (*rbac.Role, error) {
	return nil, rbac.ErrRoleNotFound
}
func (fakeRBACRepo) GetRoleByName(ctx context.Context, name string) (*rbac.Role, error) {
	return nil, rbac.ErrRoleNotFound
}
func (fakeRBACRepo) ListRoles(ctx context.Context) ([]*rbac.Role, error)             { return nil, nil }
func (fakeRBACRepo) ListPermissions(ctx context.Context) ([]*rbac.Permission, error) { return nil, nil }

type fakeSessionRepo struct{}

func (fakeSessionRepo) Create(ctx context.Context, s *session.LoginSession) error { return nil }
func (fakeSessionRepo) ListForUser(ctx context.Context, userID string) ([]*session.LoginSession, error) {
	return nil, nil
}
func (fakeSessionRepo) Touch(ctx context.Context, sessionID string, at time.Time) error { return nil }
func (fakeSessionRepo) DeleteForUser(ctx context.Context, userID string) error          { return nil }

type fakeTokenRepo struct{}

func (fakeTokenRepo) Create(ctx context.Context, t *session.APIToken) error { return nil }
func (fakeTokenRepo) GetByHash(ctx context.Context, hash string) (*session.APIToken, error) {
	return nil, session.ErrTokenNotFound
}
func (fakeTokenRepo) ListForUser(ctx context.Context, userID string) ([]*session.APIToken, error) {
	return nil, nil
}
func (fakeTokenRepo) Delete(ctx context.Context, userID, tokenID string) error { return nil }
func (fakeTokenRepo) TouchLastUsed(ctx context.Context, tokenID string, at time.Time) error {
	return nil
}

type fakeInventoryRepo struct{}

func (fakeInventoryRepo) GetCluster(ctx context.Context, id string) (*inventory.Cluster, error) {
	return nil, inventory.ErrClusterNotFound
}
func (fakeInventoryRepo) GetNamespace(ctx context.Context, id string) (*inventory.Namespace, error) {
	return nil, inventory.ErrNamespaceNotFound
}
func (fakeInventoryRepo) ListClusters(ctx context.Context, tenantID string) ([]*inventory.Cluster, error) {
	return nil, nil
}
func (fakeInventoryRepo) ListNamespaces(ctx context.Context, tenantID, clusterID string) ([]*inventory.Namespace, error) {
	return nil, nil
}

// testEnv bundles the wired handler stack and seed identities.
type testEnv struct {
	router *chi.Mux
	issuer *auth.Issuer

	member   *identity.User // tenant-1 admin
	provider *identity.User // provider tenant, ProviderAdmin role
}

const testPassword = "SecurePassword123"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	userRepo := newFakeUserRepo()
	hasher := identity.NewPasswordHasher(8192, 1, 1, 16, 32)
	identityService := identity.NewService(userRepo, hasher, audit.Nop{})
	tenantService := tenant.NewService(&fakeTenantRepo{tenants: map[string]*tenant.Tenant{}}, audit.Nop{})
	sessionService := session.NewService(fakeSessionRepo{}, fakeTokenRepo{}, audit.Nop{})
	inventoryService := inventory.NewService(fakeInventoryRepo{})
	rbacService := rbac.NewService(fakeRBACRepo{}, identityService, inventoryService, "tenant-provider", audit.Nop{})

	issuer := auth.NewIssuer(auth.Config{
		Secret:             "0123456789abcdef0123456789abcdef",
		Issuer:             "cks-api",
		Audience:           "cks-console",
		CheckStatusAtLogin: true,
	}, identityService, audit.Nop{})

	ctx := context.Background()
	member, err := identityService.Create(ctx, "tenant-1", identity.CreateUser{
		Email:    "member@acme.com",
		Name:     "Member",
		Role:     identity.RoleAdmin,
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
	provider, err := identityService.Create(ctx, "tenant-provider", identity.CreateUser{
		Email:    "provider@kaas.local",
		Name:     "Provider Admin",
		Role:     "ProviderAdmin",
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("failed to seed provider admin: %v", err)
	}

	meter, err := metrics.New(ctx, metrics.Config{Enabled: false}, "cks-api-test")
	if err != nil {
		t.Fatalf("failed to create meter: %v", err)
	}

	handler := NewHandler(issuer, identityService, tenantService, rbacService,
		sessionService, inventoryService, audit.Nop{}, meter)

	return &testEnv{
		router:   NewRouter(handler, NewRateLimiter(1000, 1000)),
		issuer:   issuer,
		member:   member,
		provider: provider,
	}
}

func (e *testEnv) tokenFor(t *testing.T, user *identity.User) string {
	t.Helper()
	token, err := e.issuer.Issue(user)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token.AccessToken
}
