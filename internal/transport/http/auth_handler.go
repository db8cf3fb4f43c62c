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
	"log/slog"
	"net/http"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/observability/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// Login handles user login
// @Summary Login
// @Description Authenticate user and issue a bearer token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := h.issuer.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email, wrong password and disabled accounts are all the
		// same 401. The audit trail carries the real reason.
		h.meter.RecordLogin(r.Context(),
			metric.WithAttributes(attribute.String("outcome", "failure")))
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeLoginFailed,
			Resource:  "login",
			IPAddress: getIPAddress(r),
			UserAgent: r.UserAgent(),
			Metadata:  map[string]any{audit.AttrEmail: req.Email},
		})
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.meter.RecordLogin(r.Context(),
		metric.WithAttributes(attribute.String("outcome", "success")))

	// Login-session bookkeeping; the token does not depend on it.
	user, err := h.identityService.GetByEmail(r.Context(), req.Email)
	if err == nil {
		if _, err := h.sessionService.RecordLogin(r.Context(), user.ID, user.TenantID, r.UserAgent(), getIPAddress(r)); err != nil {
			slog.ErrorContext(r.Context(), "failed to record login session", logger.Error(err))
		}
		h.auditLogger.Log(r.Context(), audit.Event{
			Type:      audit.TypeLoginSuccess,
			TenantID:  user.TenantID,
			ActorID:   user.ID,
			Resource:  "login",
			IPAddress: getIPAddress(r),
			UserAgent: r.UserAgent(),
		})
	}

	respondData(w, http.StatusOK, token)
}
