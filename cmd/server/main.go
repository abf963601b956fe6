package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eduardojanicas/payrails-checkout-elements/internal/config"
	h "github.com/eduardojanicas/payrails-checkout-elements/internal/http"
	"github.com/eduardojanicas/payrails-checkout-elements/internal/logger"
	"github.com/eduardojanicas/payrails-checkout-elements/internal/payrails"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	client := payrails.NewClient(cfg.PayrailsBaseURL, cfg.ClientID, cfg.ClientSecret, zl)

	initHandler := h.NewInitHandler(client, cfg.WorkspaceID, cfg.RequestTimeout, zl)
	lookupHandler := h.NewLookupHandler(client, cfg.RequestTimeout, zl)

	allowedOrigins := []string{"http://localhost:3000"}
	router := h.NewRouter(initHandler, lookupHandler, cfg.RequestTimeout, allowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zl.Info("payrails proxy starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Fatal("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}
