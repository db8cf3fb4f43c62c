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
	"strconv"

	"github.com/DestinyObs/cks-api/internal/observability/logger"
	"github.com/DestinyObs/cks-api/internal/tenant"
	"github.com/go-chi/chi/v5"
)

// ListTenants lists all tenants
// @Summary List tenants
// @Description List all tenants on the platform
// @Tags Provider
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Param search query string false "Search over name and admin email"
// @Success 200 {object} map[string]any
// @Failure 403 {object} map[string]string
// @Router /provider/tenants [get]
func (h *Handler) ListTenants(w http.ResponseWriter, r *http.Request) {
	filter := tenant.ListFilter{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "pageSize", 20),
		Search:   r.URL.Query().Get("search"),
	}

	tenants, total, err := h.tenantService.ListTenants(r.Context(), filter)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list tenants", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list tenants")
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"items": tenants,
		"total": total,
	})
}

// CreateTenantRequest represents tenant creation data
type CreateTenantRequest struct {
	Name       string `json:"name" binding:"required" example:"acme"`
	AdminEmail string `json:"adminEmail" binding:"required" example:"admin@acme.com"`
}

// CreateTenant provisions a new tenant
// @Summary Create tenant
// @Description Provision a new tenant
// @Tags Provider
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTenantRequest true "Tenant data"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /provider/tenants [post]
func (h *Handler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.tenantService.CreateTenant(r.Context(), req.Name, req.AdminEmail)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantAlreadyExists) {
			respondError(w, http.StatusConflict, "tenant already exists")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondData(w, http.StatusCreated, t)
}

// GetTenant retrieves one tenant
// @Summary Get tenant
// @Description Retrieve a tenant by ID
// @Tags Provider
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /provider/tenants/{tenantID} [get]
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.tenantService.GetTenant(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to get tenant", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to get tenant")
		return
	}

	respondData(w, http.StatusOK, t)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
