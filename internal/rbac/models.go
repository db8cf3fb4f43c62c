package rbac

import (
	"context"
	"errors"
	"sort"
	"time"
)

// Domain errors
var (
	ErrRoleNotFound       = errors.New("role not found")
	ErrGrantNotFound      = errors.New("grant not found")
	ErrGrantAlreadyExists = errors.New("grant already exists")
	ErrCrossTenantGrant   = errors.New("grant scope belongs to a different tenant")
	ErrInvalidScope       = errors.New("invalid scope")
)

// Role is a named permission bundle.
type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Permission is an atomic named capability.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoleGrant assigns a role to a user, optionally narrowed to a cluster or
// a namespace. Nil scope fields are wildcards: an unscoped grant applies
// everywhere in the user's tenant, a cluster grant to every namespace in
// that cluster, a namespace grant only there. The (user, role, cluster,
// namespace) tuple is the identity of the grant.
type RoleGrant struct {
	UserID      string    `json:"userId"`
	RoleID      string    `json:"roleId"`
	ClusterID   *string   `json:"clusterId,omitempty"`
	NamespaceID *string   `json:"namespaceId,omitempty"`
	GrantedAt   time.Time `json:"grantedAt"`
	GrantedBy   string    `json:"grantedBy"`
}

// Generalizes reports whether this grant's scope covers the requested
// scope. Wider scopes cover narrower ones, never the reverse.
func (g *RoleGrant) Generalizes(s Scope) bool {
	if g.NamespaceID != nil {
		return s.NamespaceID != nil && *s.NamespaceID == *g.NamespaceID
	}
	if g.ClusterID != nil {
		return s.ClusterID != nil && *s.ClusterID == *g.ClusterID
	}
	return true
}

// Scope is the (tenant, cluster?, namespace?) tuple a permission check
// applies to.
type Scope struct {
	TenantID    string
	ClusterID   *string
	NamespaceID *string
}

// Validate rejects malformed scopes: a namespace without its cluster, or
// no tenant at all.
func (s Scope) Validate() error {
	if s.TenantID == "" {
		return ErrInvalidScope
	}
	if s.NamespaceID != nil && s.ClusterID == nil {
		return ErrInvalidScope
	}
	return nil
}

// PermissionSet is a set of permission names.
type PermissionSet map[string]struct{}

// Add inserts a permission name.
func (p PermissionSet) Add(name string) {
	p[name] = struct{}{}
}

// Has reports membership.
func (p PermissionSet) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Names returns the permission names in sorted order.
func (p PermissionSet) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot is everything one authorization decision needs, read in a
// single logical snapshot. Lookups within a decision are consistent; two
// decisions may see different states.
type Snapshot struct {
	Grants []*RoleGrant
	// RolePermissions maps role ID to its permission names (the union of
	// that role's permission rows).
	RolePermissions map[string][]string
}

// Repository defines the interface for RBAC persistence
type Repository interface {
	// SnapshotForUser reads a user's grants and the permission sets of the
	// granted roles in one logical read
	SnapshotForUser(ctx context.Context, userID string) (*Snapshot, error)

	// Grant persists a role grant
	Grant(ctx context.Context, grant *RoleGrant) error

	// Revoke removes one grant identified by its full scope tuple
	Revoke(ctx context.Context, userID, roleID string, clusterID, namespaceID *string) error

	// ListGrantsForUser retrieves all grants held by a user
	ListGrantsForUser(ctx context.Context, userID string) ([]*RoleGrant, error)

	// GetRole retrieves a role by ID
	GetRole(ctx context.Context, roleID string) (*Role, error)

	// GetRoleByName retrieves a role by name
	GetRoleByName(ctx context.Context, name string) (*Role, error)

	// ListRoles retrieves all roles
	ListRoles(ctx context.Context) ([]*Role, error)

	// ListPermissions retrieves all permissions
	ListPermissions(ctx context.Context) ([]*Permission, error)
}
