// @title CKS API
// @version 1.0.0
// @description Multi-tenant Kubernetes-as-a-Service management backend
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@cks.local

// @license.name Apache 2.0
// @license.url https://www.apache.org/licenses/LICENSE-2.0

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package http

import (
	"net/http"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/auth"
	"github.com/DestinyObs/cks-api/internal/authz"
	"github.com/DestinyObs/cks-api/internal/identity"
	"github.com/DestinyObs/cks-api/internal/inventory"
	"github.com/DestinyObs/cks-api/internal/observability/metrics"
	"github.com/DestinyObs/cks-api/internal/rbac"
	"github.com/DestinyObs/cks-api/internal/session"
	"github.com/DestinyObs/cks-api/internal/tenant"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler holds HTTP handlers and dependencies
type Handler struct {
	issuer           *auth.Issuer
	identityService  *identity.Service
	tenantService    *tenant.Service
	rbacService      *rbac.Service
	sessionService   *session.Service
	inventoryService *inventory.Service
	auditLogger      audit.Logger
	meter            *metrics.Meter
}

// NewHandler creates a new HTTP handler
func NewHandler(
	issuer *auth.Issuer,
	identityService *identity.Service,
	tenantService *tenant.Service,
	rbacService *rbac.Service,
	sessionService *session.Service,
	inventoryService *inventory.Service,
	auditLogger audit.Logger,
	meter *metrics.Meter,
) *Handler {
	return &Handler{
		issuer:           issuer,
		identityService:  identityService,
		tenantService:    tenantService,
		rbacService:      rbacService,
		sessionService:   sessionService,
		inventoryService: inventoryService,
		auditLogger:      auditLogger,
		meter:            meter,
	}
}

// NewRouter creates a new HTTP router
func NewRouter(h *Handler, rateLimiter *RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RateLimitMiddleware(rateLimiter))
	r.Use(func(handler http.Handler) http.Handler {
		return otelhttp.NewHandler(handler, "http_request",
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	})
	r.Use(LoggingMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		// Authentication (public)
		r.Post("/auth/login", h.Login)

		// Provider-level tenant management
		r.Route("/provider/tenants", func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Use(h.RequireProvider)
			r.Get("/", h.ListTenants)
			r.Post("/", h.CreateTenant)
			r.Get("/{tenantID}", h.GetTenant)
		})

		// Tenant-scoped routes (FAIL-CLOSED)
		r.Route("/tenants/{tenantID}", func(r chi.Router) {
			r.Use(h.AuthMiddleware)
			r.Use(h.TenantGuard)

			// User management (path shapes match the console client)
			r.Route("/users", func(r chi.Router) {
				r.Get("/list", h.ListUsers)
				r.Get("/get/{id}", h.GetUser)
				r.Post("/create", h.CreateUser)
				r.Put("/update/{id}", h.UpdateUser)
				r.Delete("/delete/{id}", h.DeleteUser)
				r.Post("/suspend/{id}", h.SuspendUser)
				r.Post("/{id}/activate", h.ActivateUser)
				r.Post("/{id}/reset-password", h.ResetUserPassword)

				// API tokens and login sessions
				r.Route("/{id}/tokens", func(r chi.Router) {
					r.Get("/", h.ListAPITokens)
					r.Post("/", h.CreateAPIToken)
					r.Delete("/{tokenID}", h.RevokeAPIToken)
				})
				r.Get("/{id}/sessions", h.ListSessions)
			})

			// RBAC
			r.Route("/rbac", func(r chi.Router) {
				r.Get("/roles", h.ListRoles)
				r.Get("/users/{id}/grants", h.ListGrants)
				r.Post("/users/{id}/grants", h.GrantRole)
				r.Delete("/users/{id}/grants", h.RevokeRole)
				r.Get("/permissions/resolve", h.ResolvePermissions)
			})

			// Inventory
			r.Get("/clusters", h.ListClusters)
			r.Get("/namespaces", h.ListNamespaces)
		})
	})

	return r
}

// HealthCheck returns the health status
// @Summary Health Check
// @Description Checks if the service is up and running
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "cks-api",
	})
}

func (h *Handler) logAccessDenied(r *http.Request, principal authz.Principal, tenantID string) {
	h.auditLogger.Log(r.Context(), audit.Event{
		Type:      audit.TypeAccessDenied,
		TenantID:  tenantID,
		ActorID:   principal.UserID,
		Resource:  r.URL.Path,
		IPAddress: getIPAddress(r),
		UserAgent: r.UserAgent(),
	})
}
