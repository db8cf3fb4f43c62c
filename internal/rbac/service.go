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

package rbac

import (
	"context"
	"fmt"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/identity"
	"github.com/DestinyObs/cks-api/internal/inventory"
)

// UserDirectory resolves grant targets to users. Implemented by the
// identity service.
type UserDirectory interface {
	GetByID(ctx context.Context, userID string) (*identity.User, error)
}

// ScopeDirectory resolves cluster and namespace IDs named in grant
// scopes. Implemented by the inventory service.
type ScopeDirectory interface {
	GetCluster(ctx context.Context, id string) (*inventory.Cluster, error)
	GetNamespace(ctx context.Context, id string) (*inventory.Namespace, error)
}

// Service resolves effective permissions and manages grants. Decisions
// re-read the store every time; role changes take effect on the next
// request with no cache to invalidate.
type Service struct {
	repo             Repository
	users            UserDirectory
	scopes           ScopeDirectory
	providerTenantID string
	auditLogger      audit.Logger
}

// NewService creates a new RBAC service. providerTenantID identifies the
// distinguished tenant whose users may hold grants on other tenants'
// scopes.
func NewService(repo Repository, users UserDirectory, scopes ScopeDirectory, providerTenantID string, auditLogger audit.Logger) *Service {
	return &Service{
		repo:             repo,
		users:            users,
		scopes:           scopes,
		providerTenantID: providerTenantID,
		auditLogger:      auditLogger,
	}
}

// ResolvePermissions returns the union of permissions of every role the
// user holds at a grant scope that generalizes the requested scope.
// Permissions only accumulate: there is no deny and no precedence between
// overlapping grants.
func (s *Service) ResolvePermissions(ctx context.Context, userID string, scope Scope) (PermissionSet, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.repo.SnapshotForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read rbac snapshot: %w", err)
	}

	perms := PermissionSet{}
	for _, grant := range snap.Grants {
		if !grant.Generalizes(scope) {
			continue
		}
		for _, name := range snap.RolePermissions[grant.RoleID] {
			perms.Add(name)
		}
	}

	return perms, nil
}

// HasPermission reports whether the user holds one permission at the
// scope.
func (s *Service) HasPermission(ctx context.Context, userID string, scope Scope, permission string) (bool, error) {
	perms, err := s.ResolvePermissions(ctx, userID, scope)
	if err != nil {
		return false, err
	}
	return perms.Has(permission), nil
}

// Grant assigns a role to a user, optionally scoped to a cluster or
// namespace. The scope must belong to the target user's tenant; users of
// the provider tenant are exempt and may be granted roles on any tenant's
// scope. A namespace grant has its cluster filled in from the namespace
// record.
func (s *Service) Grant(ctx context.Context, grant *RoleGrant) error {
	if _, err := s.repo.GetRole(ctx, grant.RoleID); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, grant.UserID)
	if err != nil {
		return err
	}

	switch {
	case grant.NamespaceID != nil:
		ns, err := s.scopes.GetNamespace(ctx, *grant.NamespaceID)
		if err != nil {
			return err
		}
		if grant.ClusterID == nil {
			clusterID := ns.ClusterID
			grant.ClusterID = &clusterID
		} else if *grant.ClusterID != ns.ClusterID {
			return ErrInvalidScope
		}
		if ns.TenantID != user.TenantID && user.TenantID != s.providerTenantID {
			return ErrCrossTenantGrant
		}
	case grant.ClusterID != nil:
		cluster, err := s.scopes.GetCluster(ctx, *grant.ClusterID)
		if err != nil {
			return err
		}
		if cluster.TenantID != user.TenantID && user.TenantID != s.providerTenantID {
			return ErrCrossTenantGrant
		}
	}

	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = time.Now()
	}

	if err := s.repo.Grant(ctx, grant); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleGranted,
		TenantID: user.TenantID,
		ActorID:  grant.GrantedBy,
		Resource: grant.RoleID,
		Metadata: map[string]any{"user_id": grant.UserID},
	})

	return nil
}

// Revoke removes one grant identified by its full scope tuple.
func (s *Service) Revoke(ctx context.Context, userID, roleID string, clusterID, namespaceID *string) error {
	if err := s.repo.Revoke(ctx, userID, roleID, clusterID, namespaceID); err != nil {
		return err
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeRoleRevoked,
		Resource: roleID,
		Metadata: map[string]any{"user_id": userID},
	})

	return nil
}

// ListGrants retrieves all grants held by a user.
func (s *Service) ListGrants(ctx context.Context, userID string) ([]*RoleGrant, error) {
	return s.repo.ListGrantsForUser(ctx, userID)
}

// ListRoles retrieves all roles.
func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	return s.repo.ListRoles(ctx)
}

// GetRoleByName retrieves a role by name.
func (s *Service) GetRoleByName(ctx context.Context, name string) (*Role, error) {
	return s.repo.GetRoleByName(ctx, name)
}
