// Package main is the entry point for the orbit-chat server.
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

	"github.com/gin-gonic/gin"

	"github.com/orbitchat/orbit-chat/internal/adapter"
	"github.com/orbitchat/orbit-chat/internal/auth"
	"github.com/orbitchat/orbit-chat/internal/chat"
	"github.com/orbitchat/orbit-chat/internal/config"
	"github.com/orbitchat/orbit-chat/internal/handler"
	"github.com/orbitchat/orbit-chat/internal/security"
	"github.com/orbitchat/orbit-chat/internal/store"
	"github.com/orbitchat/orbit-chat/internal/ui"
)

const version = "v1.0.0"

func main() {
	ui.PrintBanner(version)

	// =========================================================================
	// 1. Load configuration (Singleton)
	// =========================================================================
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// =========================================================================
	// 2. Setup structured logger with credential redaction
	// =========================================================================
	logger := setupLogger(cfg.Logging)

	logger.Info("configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("provider", cfg.AI.Provider),
		slog.String("database", cfg.Database.Driver),
	)

	// =========================================================================
	// 3. Open the store
	// =========================================================================
	st, err := openStore(cfg.Database)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.Close()

	// =========================================================================
	// 4. Build the AI provider adapter (selected once per process)
	// =========================================================================
	generator := adapter.New(cfg, st, logger)
	if generator.Name() == config.ProviderMock && cfg.AI.Provider != config.ProviderMock {
		ui.PrintMockWarning(cfg.AI.Provider)
	}

	logger.Info("AI provider ready", slog.String("provider", generator.Name()))

	// =========================================================================
	// 5. Wire services and handlers
	// =========================================================================
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	authSvc := auth.NewService(st, st, tokens, cfg.Auth.InitialCredits)
	chatSvc := chat.NewService(st, generator, chat.WithLogger(logger))

	h := handler.New(chatSvc, authSvc, tokens, st, handler.WithLogger(logger))

	// =========================================================================
	// 6. Setup Gin router with middleware
	// =========================================================================
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(handler.RecoveryMiddleware(logger))
	router.Use(handler.CORSMiddleware())
	router.Use(handler.LoggingMiddleware(logger))

	h.RegisterRoutes(router)

	// =========================================================================
	// 7. Start HTTP server with graceful shutdown
	// =========================================================================
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("address", addr))
		ui.PrintStartup(addr, generator.Name(), cfg.Database.Driver)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	ui.PrintShutdown()

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
	ui.PrintStopped()
}

// openStore builds the configured Store implementation.
func openStore(cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "memory":
		return store.NewMemory(), nil
	default:
		return store.NewSQLite(cfg.DSN)
	}
}

// setupLogger creates a structured logger wrapped in the credential
// redactor, and installs it as the process default.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	if cfg.Format == "text" {
		inner = slog.NewTextHandler(os.Stdout, opts)
	} else {
		inner = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(security.NewRedactedHandler(inner))
	slog.SetDefault(logger)
	return logger
}
