package tenant

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantAlreadyExists = errors.New("tenant already exists")
)

// Tenant is the root isolation boundary. Every scoped resource carries a
// tenant ID. Tenants are never hard-deleted.
type Tenant struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	AdminEmail string    `json:"adminEmail"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ListFilter narrows tenant listings.
type ListFilter struct {
	Page     int
	PageSize int
	Search   string // matches name or admin email
}

// Repository defines the interface for tenant storage
type Repository interface {
	Create(ctx context.Context, tenant *Tenant) error
	GetByID(ctx context.Context, id string) (*Tenant, error)
	GetByName(ctx context.Context, name string) (*Tenant, error)
	List(ctx context.Context, filter ListFilter) ([]*Tenant, int, error)
}
