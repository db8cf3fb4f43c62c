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
	"errors"
	"time"
)

// Domain errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet security requirements")
	ErrAccountSuspended   = errors.New("account is suspended")
	ErrAccountInactive    = errors.New("account is inactive")
)

// Account status values
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// Primary role labels. The label is a coarse classification carried in
// token claims and checked by route-level gates. It is deliberately
// decoupled from scoped RBAC grants: a user's fine-grained permission set
// comes only from rbac grant rows, never from this label.
const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
	RoleViewer    = "viewer"
)

// User represents a user identity in the system. TenantID is immutable
// after creation; every user belongs to exactly one tenant.
type User struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenantId"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Avatar    string     `json:"avatar"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
	JoinDate  time.Time  `json:"joinDate"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ResetToken is a stored password-reset token. Only generation is exposed
// over the API; redemption is reserved for a future endpoint, so the
// repository contract already includes consumption.
type ResetToken struct {
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ListFilter narrows tenant-scoped user listings.
type ListFilter struct {
	Page     int
	PageSize int
	Search   string // matches name or email
	Role     string // exact role label
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create persists a new user together with its password hash
	Create(ctx context.Context, user *User, passwordHash string) error

	// GetByID retrieves a user by ID across tenants
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email, case-insensitively
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Get retrieves a user by ID within a tenant
	Get(ctx context.Context, tenantID, id string) (*User, error)

	// List retrieves users of a tenant with the filter applied, plus the
	// total count before pagination
	List(ctx context.Context, tenantID string, filter ListFilter) ([]*User, int, error)

	// Update updates mutable user fields (name, role, avatar)
	Update(ctx context.Context, user *User) error

	// Delete removes a user from a tenant
	Delete(ctx context.Context, tenantID, id string) error

	// UpdateStatus sets the account status
	UpdateStatus(ctx context.Context, tenantID, id, status string) error

	// UpdateLastLogin records a successful login time
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error

	// GetPasswordHash retrieves the stored password hash for a user
	GetPasswordHash(ctx context.Context, userID string) (string, error)

	// SaveResetToken stores a hashed password-reset token
	SaveResetToken(ctx context.Context, token *ResetToken) error

	// ConsumeResetToken retrieves and invalidates a reset token by hash
	ConsumeResetToken(ctx context.Context, tokenHash string) (*ResetToken, error)
}
