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

// -----------------------------------------------------------------------------
// Role Name Constants
// These are the canonical names for roles seeded in the initial schema
// (001_initial_schema.up.sql).
// -----------------------------------------------------------------------------

const (
	// RoleAdmin has full control within its grant scope.
	RoleAdmin = "admin"

	// RoleDeveloper can read cluster inventory and work inside namespaces.
	RoleDeveloper = "developer"

	// RoleViewer has read-only access within its grant scope.
	RoleViewer = "viewer"
)

// -----------------------------------------------------------------------------
// Permission Name Constants
// Seeded during database initialization; names must remain stable.
// -----------------------------------------------------------------------------

const (
	PermClusterRead    = "read:cluster"
	PermClusterWrite   = "write:cluster"
	PermNamespaceRead  = "read:namespace"
	PermNamespaceWrite = "write:namespace"
	PermUserRead       = "read:user"
	PermUserWrite      = "write:user"
	PermBillingRead    = "read:billing"
	PermAlertRead      = "read:alert"
)

// Default role → permission mappings, used for seeding and tests.

// AdminPermissions defines permissions for the admin role.
var AdminPermissions = []string{
	PermClusterRead,
	PermClusterWrite,
	PermNamespaceRead,
	PermNamespaceWrite,
	PermUserRead,
	PermUserWrite,
	PermBillingRead,
	PermAlertRead,
}

// DeveloperPermissions defines permissions for the developer role.
var DeveloperPermissions = []string{
	PermClusterRead,
	PermNamespaceRead,
	PermNamespaceWrite,
	PermAlertRead,
}

// ViewerPermissions defines permissions for the viewer role.
var ViewerPermissions = []string{
	PermClusterRead,
	PermNamespaceRead,
	PermAlertRead,
}
