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

package tenant

import (
	"context"
	"testing"

	"github.com/DestinyObs/cks-api/internal/audit"
)

// MockRepository is an in-memory implementation of Repository
type MockRepository struct {
	tenants map[string]*Tenant
}

func NewMockRepository() *MockRepository {
	return &MockRepository{tenants: make(map[string]*Tenant)}
}

func (m *MockRepository) Create(ctx context.Context, t *Tenant) error {
	for _, existing := range m.tenants {
		if existing.Name == t.Name {
			return ErrTenantAlreadyExists
		}
	}
	m.tenants[t.ID] = t
	return nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Tenant, error) {
	t, ok := m.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	return t, nil
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*Tenant, error) {
	for _, t := range m.tenants {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]*Tenant, int, error) {
	var tenants []*Tenant
	for _, t := range m.tenants {
		tenants = append(tenants, t)
	}
	return tenants, len(tenants), nil
}

// TestPurpose: Validates tenant provisioning: required fields, ID assignment, and name uniqueness.
// Scope: Unit Test
// Expected: A tenant is created with a fresh ID; a duplicate name is ErrTenantAlreadyExists;
// missing fields fail validation.
// Test Case ID: TNT-01
func TestTenant_Service_CreateTenant(t *testing.T) {
	s := NewService(NewMockRepository(), audit.Nop{})
	ctx := context.Background()

	created, err := s.CreateTenant(ctx, "acme", "admin@acme.com")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Error("expected assigned tenant ID")
	}
	if created.Name != "acme" || created.AdminEmail != "admin@acme.com" {
		t.Errorf("unexpected tenant: %+v", created)
	}

	if _, err := s.CreateTenant(ctx, "acme", "other@acme.com"); err != ErrTenantAlreadyExists {
		t.Errorf("expected ErrTenantAlreadyExists, got %v", err)
	}

	if _, err := s.CreateTenant(ctx, "", "admin@acme.com"); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := s.CreateTenant(ctx, "beta", ""); err == nil {
		t.Error("expected error for missing admin email")
	}
}

// TestPurpose: Validates tenant lookups by ID and by name.
// Scope: Unit Test
// Expected: Both lookups resolve a created tenant; unknown keys are ErrTenantNotFound.
// Test Case ID: TNT-02
func TestTenant_Service_Lookups(t *testing.T) {
	s := NewService(NewMockRepository(), audit.Nop{})
	ctx := context.Background()

	created, err := s.CreateTenant(ctx, "acme", "admin@acme.com")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	byID, err := s.GetTenant(ctx, created.ID)
	if err != nil || byID.Name != "acme" {
		t.Errorf("lookup by ID failed: %v %+v", err, byID)
	}
	byName, err := s.GetTenantByName(ctx, "acme")
	if err != nil || byName.ID != created.ID {
		t.Errorf("lookup by name failed: %v %+v", err, byName)
	}

	if _, err := s.GetTenant(ctx, "missing"); err != ErrTenantNotFound {
		t.Errorf("expected ErrTenantNotFound, got %v", err)
	}
	if _, err := s.GetTenantByName(ctx, "missing"); err != ErrTenantNotFound {
		t.Errorf("expected ErrTenantNotFound, got %v", err)
	}
}
