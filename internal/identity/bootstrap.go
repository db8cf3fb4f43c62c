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
	"fmt"
	"log/slog"

	"github.com/DestinyObs/cks-api/internal/authz"
	"github.com/DestinyObs/cks-api/internal/tenant"
)

// TenantProvisioner is the slice of the tenant service bootstrap needs.
type TenantProvisioner interface {
	GetTenantByName(ctx context.Context, name string) (*tenant.Tenant, error)
	CreateTenant(ctx context.Context, name, adminEmail string) (*tenant.Tenant, error)
}

// BootstrapConfig seeds the provider tenant and its first administrator.
type BootstrapConfig struct {
	ProviderTenantName  string
	ProviderTenantEmail string
	AdminEmail          string
	AdminName           string
	AdminPassword       string
}

// BootstrapService seeds the provider tenant and provider admin on
// startup. Both steps are idempotent: existing records are left alone.
type BootstrapService struct {
	ids     *Service
	tenants TenantProvisioner
}

// NewBootstrapService creates a new bootstrap service
func NewBootstrapService(ids *Service, tenants TenantProvisioner) *BootstrapService {
	return &BootstrapService{ids: ids, tenants: tenants}
}

// Bootstrap ensures the provider tenant exists and, if an admin password
// is configured, that the provider admin account exists.
func (b *BootstrapService) Bootstrap(ctx context.Context, cfg BootstrapConfig) (*tenant.Tenant, error) {
	providerTenant, err := b.tenants.GetTenantByName(ctx, cfg.ProviderTenantName)
	if errors.Is(err, tenant.ErrTenantNotFound) {
		providerTenant, err = b.tenants.CreateTenant(ctx, cfg.ProviderTenantName, cfg.ProviderTenantEmail)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to ensure provider tenant: %w", err)
	}

	if cfg.AdminPassword == "" {
		slog.Warn("no bootstrap admin password configured, skipping provider admin seed")
		return providerTenant, nil
	}

	if _, err := b.ids.GetByEmail(ctx, cfg.AdminEmail); err == nil {
		return providerTenant, nil
	}

	if _, err := b.ids.Create(ctx, providerTenant.ID, CreateUser{
		Email:    cfg.AdminEmail,
		Name:     cfg.AdminName,
		Role:     authz.RoleProviderAdmin,
		Password: cfg.AdminPassword,
	}); err != nil {
		return nil, fmt.Errorf("failed to seed provider admin: %w", err)
	}

	slog.Info("seeded provider admin", "email", cfg.AdminEmail)
	return providerTenant, nil
}
