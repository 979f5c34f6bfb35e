package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"github.com/swairua/medplus/application/usecase/audit"
	"github.com/swairua/medplus/application/usecase/auth"
	"github.com/swairua/medplus/application/usecase/authz"
	"github.com/swairua/medplus/application/usecase/delivery"
	"github.com/swairua/medplus/application/usecase/provisioning"
	"github.com/swairua/medplus/infrastructure/config"
	"github.com/swairua/medplus/infrastructure/http/handler"
	"github.com/swairua/medplus/infrastructure/http/middleware"
	"github.com/swairua/medplus/infrastructure/persistence/postgres"
	"github.com/swairua/medplus/infrastructure/service/jwt"
	"github.com/swairua/medplus/infrastructure/service/logger"
	"github.com/swairua/medplus/infrastructure/service/password"
	"github.com/swairua/medplus/infrastructure/service/ratelimit"
	"github.com/swairua/medplus/infrastructure/service/secret"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "ops-backend",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, nil)
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	if cfg.ServiceRoleKey == "" {
		structuredLogger.Warn(ctx, "SERVICE_ROLE_KEY not set; user provisioning is disabled", nil)
	}

	// Repositories
	profileRepo := postgres.NewProfileRepository(db)
	deliveryRepo := postgres.NewDeliveryNoteRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	identityProvider := postgres.NewIdentityProvider(db)

	// Services
	tokenService, err := jwt.NewJWTService(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(10)
	secretGenerator := secret.NewGenerator()

	limiter, err := ratelimit.New(ratelimit.Config{
		Enabled:  cfg.RateLimitEnabled,
		RedisURL: cfg.RedisURL,
		Attempts: cfg.RateLimitAttempts,
		Window:   cfg.RateLimitWindow,
	}, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize rate limiter, continuing without it", err, map[string]interface{}{
			"redis_url": cfg.RedisURL,
		})
		limiter = nil
	}

	// Use cases
	recorder := audit.NewRecorder(auditRepo, structuredLogger)
	authorizer := authz.NewAuthorizer(tokenService, profileRepo)
	deleteUseCase := delivery.NewDeleteDeliveryNoteUseCase(deliveryRepo, recorder, structuredLogger)
	provisionUseCase := provisioning.NewProvisionUserUseCase(
		profileRepo,
		identityProvider,
		passwordService,
		secretGenerator,
		recorder,
		structuredLogger,
		cfg.ServiceRoleKey != "",
	)
	loginUseCase := auth.NewLoginUseCase(identityProvider, profileRepo, passwordService, tokenService, structuredLogger)

	// HTTP layer
	authMiddleware := middleware.NewAuthMiddleware(authorizer, recorder)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter, structuredLogger)

	// Login and the two privileged mutations are throttled; the audit
	// read surface and the health endpoint are not.
	router := mux.NewRouter()
	handler.NewAuthHandler(loginUseCase, rateLimitMiddleware).RegisterRoutes(router)
	handler.NewUserHandler(provisionUseCase, authMiddleware, rateLimitMiddleware).RegisterRoutes(router)
	handler.NewDeliveryHandler(deleteUseCase, authMiddleware, rateLimitMiddleware).RegisterRoutes(router)
	handler.NewAuditHandler(recorder, authMiddleware).RegisterRoutes(router)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy"}`)
	}).Methods("GET")

	var root http.Handler = middleware.CorrelationIDMiddleware(router)
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		root = middleware.CORSMiddleware(root, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", nil)

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
