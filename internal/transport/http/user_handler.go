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
	"github.com/DestinyObs/cks-api/internal/observability/logger"
	"github.com/go-chi/chi/v5"
)

// ListUsers lists users of a tenant
// @Summary List users
// @Description List a tenant's users with pagination, search and role filter
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search over name and email"
// @Param role query string false "Exact role label"
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /tenants/{tenantID}/users/list [get]
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	tenantID := chi.URLParam(r, "tenantID")
	filter := identity.ListFilter{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "pageSize", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}

	users, total, err := h.identityService.List(r.Context(), tenantID, filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list users",
			logger.Error(err),
			logger.TenantID(tenantID),
		)
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"items":    users,
		"total":    total,
		"page":     filter.Page,
		"pageSize": filter.PageSize,
	})
}

// GetUser retrieves one user of a tenant
// @Summary Get user
// @Description Retrieve a user by ID within a tenant
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/get/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.identityService.Get(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		// A user that exists in another tenant is identical to one that
		// does not exist at all.
		h.respondUserError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

// CreateUserRequest represents user creation data
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required" example:"dev@acme.com"`
	Name     string `json:"name" binding:"required" example:"Jane Dev"`
	Role     string `json:"role" example:"developer"`
	Avatar   string `json:"avatar"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// CreateUser provisions a user in a tenant
// @Summary Create user
// @Description Provision a new user in a tenant
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Router /tenants/{tenantID}/users/create [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identityService.Create(r.Context(), chi.URLParam(r, "tenantID"), identity.CreateUser{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Avatar:   req.Avatar,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			respondError(w, http.StatusBadRequest, "a user with this email already exists")
		case errors.Is(err, identity.ErrInvalidEmail):
			respondError(w, http.StatusBadRequest, "invalid email address")
		case errors.Is(err, identity.ErrWeakPassword):
			respondError(w, http.StatusBadRequest, "password does not meet security requirements")
		default:
			slog.ErrorContext(r.Context(), "failed to create user", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	respondData(w, http.StatusCreated, user)
}

// UpdateUserRequest represents updatable user fields. Absent fields are
// left unchanged.
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Avatar *string `json:"avatar"`
}

// UpdateUser updates a user's mutable fields
// @Summary Update user
// @Description Update a user's name, role or avatar
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/update/{id} [put]
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identityService.Update(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"), identity.UpdateUser{
		Name:   req.Name,
		Role:   req.Role,
		Avatar: req.Avatar,
	})
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, user)
}

// DeleteUser removes a user from a tenant
// @Summary Delete user
// @Description Remove a user from a tenant
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/delete/{id} [delete]
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.identityService.Delete(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id")); err != nil {
		h.respondUserError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SuspendUser suspends a user's account
// @Summary Suspend user
// @Description Set a user's status to suspended
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/suspend/{id} [post]
func (h *Handler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	if err := h.identityService.Suspend(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id")); err != nil {
		h.respondUserError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": identity.StatusSuspended})
}

// ActivateUser reactivates a user's account
// @Summary Activate user
// @Description Set a user's status to active
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/{id}/activate [post]
func (h *Handler) ActivateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.identityService.Activate(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id")); err != nil {
		h.respondUserError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": identity.StatusActive})
}

// ResetUserPassword issues a password-reset token for a user
// @Summary Reset user password
// @Description Issue a one-time password-reset token for a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/{id}/reset-password [post]
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	token, err := h.identityService.GeneratePasswordResetToken(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, map[string]string{"resetToken": token})
}

func (h *Handler) respondUserError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, identity.ErrUserNotFound) {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	slog.ErrorContext(r.Context(), "user operation failed", logger.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}
