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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DestinyObs/cks-api/internal/audit"
	"github.com/DestinyObs/cks-api/internal/auth"
	"github.com/DestinyObs/cks-api/internal/config"
	"github.com/DestinyObs/cks-api/internal/identity"
	"github.com/DestinyObs/cks-api/internal/inventory"
	"github.com/DestinyObs/cks-api/internal/observability/logger"
	"github.com/DestinyObs/cks-api/internal/observability/metrics"
	"github.com/DestinyObs/cks-api/internal/observability/tracing"
	"github.com/DestinyObs/cks-api/internal/rbac"
	"github.com/DestinyObs/cks-api/internal/session"
	"github.com/DestinyObs/cks-api/internal/store/postgres"
	"github.com/DestinyObs/cks-api/internal/tenant"
	transportHTTP "github.com/DestinyObs/cks-api/internal/transport/http"

	_ "github.com/DestinyObs/cks-api/docs"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting cks api server")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
		os.Exit(1)
	}

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)
	rbacRepo := postgres.NewRBACRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	tokenRepo := postgres.NewAPITokenRepository(db)
	inventoryRepo := postgres.NewInventoryRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	// Initialize services
	identityService := identity.NewService(userRepo, passwordHasher, auditLogger)
	tenantService := tenant.NewService(tenantRepo, auditLogger)
	sessionService := session.NewService(sessionRepo, tokenRepo, auditLogger)
	inventoryService := inventory.NewService(inventoryRepo)

	issuer := auth.NewIssuer(auth.Config{
		Secret:             cfg.JWT.Secret,
		Issuer:             cfg.JWT.Issuer,
		Audience:           cfg.JWT.Audience,
		CheckStatusAtLogin: cfg.JWT.CheckStatusAtLogin,
	}, identityService, auditLogger)

	// Seed the provider tenant and its admin; the provider tenant's ID
	// anchors cross-tenant grant exemptions in the rbac service.
	bootstrapService := identity.NewBootstrapService(identityService, tenantService)
	providerTenant, err := bootstrapService.Bootstrap(ctx, identity.BootstrapConfig{
		ProviderTenantName:  cfg.Bootstrap.ProviderTenantName,
		ProviderTenantEmail: cfg.Bootstrap.ProviderTenantEmail,
		AdminEmail:          cfg.Bootstrap.ProviderAdminEmail,
		AdminName:           cfg.Bootstrap.ProviderAdminName,
		AdminPassword:       cfg.Bootstrap.ProviderAdminPass,
	})
	if err != nil {
		slog.Error("bootstrap failed", logger.Error(err))
		os.Exit(1)
	}

	rbacService := rbac.NewService(rbacRepo, identityService, inventoryService, providerTenant.ID, auditLogger)

	// Rate limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		issuer,
		identityService,
		tenantService,
		rbacService,
		sessionService,
		inventoryService,
		auditLogger,
		meter,
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Info("schema applied")
	return nil
}
