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

	"github.com/DestinyObs/cks-api/internal/observability/logger"
	"github.com/DestinyObs/cks-api/internal/session"
	"github.com/go-chi/chi/v5"
)

// ListAPITokens lists a user's API tokens
// @Summary List API tokens
// @Description List a user's API tokens (hashes are never returned)
// @Tags Tokens
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/{id}/tokens [get]
func (h *Handler) ListAPITokens(w http.ResponseWriter, r *http.Request) {
	user, err := h.identityService.Get(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	tokens, err := h.sessionService.ListTokens(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list api tokens", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list api tokens")
		return
	}
	respondData(w, http.StatusOK, tokens)
}

// CreateAPITokenRequest names a new API token
type CreateAPITokenRequest struct {
	Name string `json:"name" binding:"required" example:"ci-deploy"`
}

// CreateAPIToken mints a named API token for a user
// @Summary Create API token
// @Description Create an API token; the plaintext is returned exactly once
// @Tags Tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Param request body CreateAPITokenRequest true "Token name"
// @Success 201 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/{id}/tokens [post]
func (h *Handler) CreateAPIToken(w http.ResponseWriter, r *http.Request) {
	var req CreateAPITokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "token name is required")
		return
	}

	user, err := h.identityService.Get(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	plaintext, token, err := h.sessionService.CreateToken(r.Context(), user.ID, user.TenantID, req.Name)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to create api token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to create api token")
		return
	}

	respondData(w, http.StatusCreated, map[string]any{
		"token":     plaintext,
		"id":        token.ID,
		"name":      token.Name,
		"createdAt": token.CreatedAt,
	})
}

// RevokeAPIToken deletes one of a user's API tokens
// @Summary Revoke API token
// @Description Delete an API token
// @Tags Tokens
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Param tokenID path string true "Token ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/{id}/tokens/{tokenID} [delete]
func (h *Handler) RevokeAPIToken(w http.ResponseWriter, r *http.Request) {
	user, err := h.identityService.Get(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	if err := h.sessionService.RevokeToken(r.Context(), user.ID, chi.URLParam(r, "tokenID")); err != nil {
		if errors.Is(err, session.ErrTokenNotFound) {
			respondError(w, http.StatusNotFound, "token not found")
			return
		}
		slog.ErrorContext(r.Context(), "failed to revoke api token", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to revoke api token")
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "revoked"})
}

// ListSessions lists a user's login sessions
// @Summary List login sessions
// @Description List a user's recorded login sessions
// @Tags Tokens
// @Produce json
// @Security BearerAuth
// @Param tenantID path string true "Tenant ID"
// @Param id path string true "User ID"
// @Success 200 {object} map[string]any
// @Failure 404 {object} map[string]string
// @Router /tenants/{tenantID}/users/{id}/sessions [get]
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user, err := h.identityService.Get(r.Context(), chi.URLParam(r, "tenantID"), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUserError(w, r, err)
		return
	}

	sessions, err := h.sessionService.ListSessions(r.Context(), user.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list sessions", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	respondData(w, http.StatusOK, sessions)
}
