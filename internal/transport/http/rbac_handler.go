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
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DestinyObs/cks-api/internal/identity"
	"github.com/DestinyObs/cks-api/internal/inventory"
	"github.com/DestinyObs/cks-api/internal/observability/logger"
	"github.com/DestinyObs/cks-api/internal/rbac"
	"github.com/go-chi/chi/v5"
)

// ListRoles lists the assignable roles
// @Summary List roles
// @Description List all roles that can be granted
// @Tags RBAC
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]any
// @Router /tenants/{tenantID}/rbac/roles [get]
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.rbacService.ListRoles(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list roles", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list roles")
		return
	}
	respondData(w, http.StatusOK, roles)
}

// ListGrants lists a user's role grants
// @Summary List grants
// @Description List all role grants held by a user
// @Tags RBAC
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/rbac/users/{id}/grants [get]
func (h *Handler) ListGrants(w http.ResponseWriter, r *http.Request) {
	// Resolve the user within the tenant first so grants of another
	// tenant's users are a plain 404.
	user, err := h.identityService.Get(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	grants, err := h.rbacService.ListGrants(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list grants", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list grants")
		return
	}
	respondData(w, http.StatusOK, grants)
}

// GrantRequest represents a role grant
type GrantRequest struct {
	RoleID      string  `json:"roleId" binding:"required"`
	ClusterID   *string `json:"clusterId"`
	NamespaceID *string `json:"namespaceId"`
}

// GrantRole grants a role to a user at a scope
// @Summary Grant role
// @Description Grant a role to a user, optionally scoped to a cluster or namespace
// @Tags RBAC
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Param request body GrantRequest true "Grant"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /tenants/{tenantID}/rbac/users/{id}/grants [post]
func (h *Handler) GrantRole(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identityService.Get(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	grant := &rbac.RoleGrant{
		UserID:      user.ID,
		RoleID:      req.RoleID,
		ClusterID:   req.ClusterID,
		NamespaceID: req.NamespaceID,
		GrantedBy:   GetPrincipal(r.Context()).UserID,
	}

	if err := h.rbacService.Grant(r.Context(), grant); err != nil {
		switch {
		case errors.Is(err, rbac.ErrRoleNotFound):
			respondError(w, http.StatusNotFound, "role not found")
		case errors.Is(err, inventory.ErrClusterNotFound), errors.Is(err, inventory.ErrNamespaceNotFound):
			respondError(w, http.StatusNotFound, "scope not found")
		case errors.Is(err, rbac.ErrInvalidScope):
			respondError(w, http.StatusBadRequest, "invalid grant scope")
		case errors.Is(err, rbac.ErrCrossTenantGrant):
			respondError(w, http.StatusBadRequest, "scope belongs to a different tenant")
		case errors.Is(err, rbac.ErrGrantAlreadyExists):
			respondError(w, http.StatusConflict, "grant already exists")
		default:
			slog.ErrorContext(r.Context(), "failed to grant role", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to grant role")
		}
		return
	}

	respondData(w, http.StatusCreated, grant)
}

// RevokeRole revokes one grant
// @Summary Revoke role
// @Description Revoke a role grant identified by its full scope tuple
// @Tags RBAC
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Param request body GrantRequest true "Grant to revoke"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/rbac/users/{id}/grants [delete]
func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	var req GrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identityService.Get(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	if err := h.rbacService.Revoke(r.Context(), user.ID, req.RoleID, req.ClusterID, req.NamespaceID); err != nil {
		if errors.Is(err, rbac.ErrGrantNotFound) {
			respondError(w, http.StatusNotFound, "grant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to revoke role", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to revoke role")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// ResolvePermissions returns a user's effective permissions at a scope
// @Summary Resolve permissions
// @Description Resolve the effective permission set of a user at a scope
// @Tags RBAC
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param userId query string true "User ID"
// @Param clusterId query string false "Cluster ID"
// @Param namespaceId query string false "Namespace ID"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/rbac/permissions/resolve [get]
func (h *Handler) ResolvePermissions(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	user, err := h.identityService.Get(r.Context(), tenantID, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to resolve user", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	scope := rbac.Scope{TenantID: tenantID}
	if v := r.URL.Query().Get("clusterId"); v != "" {
		scope.ClusterID = &v
	}
	if v := r.URL.Query().Get("namespaceId"); v != "" {
		scope.NamespaceID = &v
	}

	perms, err := h.rbacService.ResolvePermissions(r.Context(), user.ID, scope)
	if err != nil {
		if errors.Is(err, rbac.ErrInvalidScope) {
			respondError(w, http.StatusBadRequest, "invalid scope")
			return
		}
		slog.ErrorContext(r.Context(), "failed to resolve permissions", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to resolve permissions")
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"userId":      user.ID,
		"permissions": perms.Names(),
	})
}
