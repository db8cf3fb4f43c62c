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
	"log/slog"
	"net/http"

	"github.com/DestinyObs/cks-api/internal/observability/logger"
	"github.com/go-chi/chi/v5"
)

// ListClusters lists a tenant's clusters
// @Summary List clusters
// @Description List the clusters owned by a tenant
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Success 200 {object} map[string]any
// @Router /tenants/{tenantID}/clusters [get]
func (h *Handler) ListClusters(w http.ResponseWriter, r *http.Request) {
	clusters, err := h.inventoryService.ListClusters(r.Context(), chi.URLParam(r, "tenantID"))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list clusters", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list clusters")
		return
	}
	respondData(w, http.StatusOK, clusters)
}

// ListNamespaces lists a tenant's namespaces
// @Summary List namespaces
// @Description List a tenant's namespaces, optionally narrowed to one cluster
// @Tags Inventory
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param clusterId query string false "Cluster ID"
// @Success 200 {object} map[string]any
// @Router /tenants/{tenantID}/namespaces [get]
func (h *Handler) ListNamespaces(w http.ResponseWriter, r *http.Request) {
	namespaces, err := h.inventoryService.ListNamespaces(r.Context(),
		chi.URLParam(r, "tenantID"), r.URL.Query().Get("clusterId"))
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list namespaces", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list namespaces")
		return
	}
	respondData(w, http.StatusOK, namespaces)
}
