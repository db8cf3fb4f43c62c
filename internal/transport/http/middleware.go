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
	"strings"
	"time"

	"github.com/DestinyObs/cks-api/internal/authz"
	"github.com/DestinyObs/cks-api/internal/observability/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Tenant context is derived EXCLUSIVELY from the verified token claims
// and compared against the tenant named in the URL. Headers never carry
// tenant identity.

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			slog.InfoContext(r.Context(), "http_request_start",
				logger.RequestID(middleware.GetReqID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(r.RemoteAddr),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				slog.InfoContext(r.Context(), "http_request_end",
					logger.RequestID(middleware.GetReqID(r.Context())),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(r.RemoteAddr),
					logger.UserAgent(r.UserAgent()),
					logger.StatusCode(ww.Status()),
					logger.Duration(time.Since(start).Milliseconds()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// AuthMiddleware verifies the bearer token and puts the principal in
// context. Missing, malformed and expired tokens look the same to the
// client.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		claims, err := h.issuer.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		principal := authz.Principal{
			UserID:   claims.Subject,
			TenantID: claims.TenantID,
			Email:    claims.Email,
			Role:     claims.Role,
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
	})
}

// TenantGuard admits the principal to the tenant named in the URL.
// Provider-level principals pass for any tenant; everyone else only for
// their own. The denial body never says whether the tenant exists.
func (h *Handler) TenantGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := GetPrincipal(r.Context())
		tenantID := chi.URLParam(r, "tenantID")

		if err := authz.Authorize(principal, tenantID); err != nil {
			h.meter.RecordAuthzDecision(r.Context(),
				metric.WithAttributes(attribute.String("outcome", "denied")))
			h.logAccessDenied(r, principal, tenantID)
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		h.meter.RecordAuthzDecision(r.Context(),
			metric.WithAttributes(attribute.String("outcome", "allowed")))

		next.ServeHTTP(w, r)
	})
}

// RequireProvider admits only principals holding the provider role.
func (h *Handler) RequireProvider(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := GetPrincipal(r.Context())
		if err := authz.RequireRole(principal, authz.RoleProviderAdmin); err != nil {
			h.meter.RecordAuthzDecision(r.Context(),
				metric.WithAttributes(attribute.String("outcome", "denied")))
			h.logAccessDenied(r, principal, "")
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
