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

// Package authz is the coarse access gate that runs before any handler:
// tenant equality with a provider-role bypass, plus route-level minimum
// role checks by role name. It is deliberately separate from the
// fine-grained permission resolution in the rbac package; the two layers
// are applied independently, never merged.
package authz

import "errors"

// RoleProviderAdmin is the distinguished provider-level role. Holders may
// act on any tenant.
const RoleProviderAdmin = "ProviderAdmin"

// ErrForbidden is returned for any tenant or role mismatch. It carries no
// detail about the target resource.
var ErrForbidden = errors.New("forbidden")

// Principal is the authenticated identity a request acts as, extracted
// from verified token claims.
type Principal struct {
	UserID   string
	TenantID string
	Email    string
	Role     string
}

// IsProvider reports whether the principal holds the provider role.
func (p Principal) IsProvider() bool {
	return p.Role == RoleProviderAdmin
}

// Authorize admits the principal to act on the tenant named in the
// request path. Provider-level principals may act on any tenant; everyone
// else only on their own.
func Authorize(p Principal, tenantID string) error {
	if p.IsProvider() {
		return nil
	}
	if p.TenantID != tenantID {
		return ErrForbidden
	}
	return nil
}

// RequireRole admits the principal only if its primary role label matches.
// This is a route-level role-name gate, independent of rbac permission
// resolution.
func RequireRole(p Principal, role string) error {
	if p.Role != role {
		return ErrForbidden
	}
	return nil
}
