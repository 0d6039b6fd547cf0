package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"premi-cart/internal/cart"
	"premi-cart/internal/config"
	"premi-cart/internal/handler"
	"premi-cart/internal/orderapi"
	"premi-cart/internal/router"
	"premi-cart/internal/service"
	"premi-cart/internal/session"

	"github.com/rs/zerolog"
)

// sweepInterval is how often idle sessions are expired.
const sweepInterval = time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadEnvFile(".env"); err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting premi-cart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize order service client
	orders := orderapi.New(orderapi.Config{
		BaseURL:         cfg.OrderAPI.BaseURL,
		Timeout:         cfg.OrderAPI.RequestTimeout(),
		BreakerFailures: uint32(cfg.OrderAPI.BreakerFailures),
		BreakerCooldown: cfg.OrderAPI.Cooldown(),
	}, nil, logger)

	// Initialize session registry; every session gets its own cart and checkout
	registry := session.NewRegistry(cfg.Session.IdleTimeout(), func(store *cart.Store, logger zerolog.Logger) service.CheckoutService {
		return service.NewCheckoutService(store, orders, service.CheckoutOptions{
			Profiles:      orders,
			WhatsAppPhone: cfg.Checkout.WhatsAppPhone,
		}, logger)
	}, logger)
	go registry.Run(ctx, sweepInterval)

	// Initialize HTTP handlers
	cartHandler := handler.NewCartHandler(logger)
	checkoutHandler := handler.NewCheckoutHandler(logger)

	// Initialize router
	mux := router.New(cartHandler, checkoutHandler, registry, router.Options{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		CookieName:    cfg.Session.CookieName,
	}, logger)

	// Create HTTP server; writes must outlast the order service timeout
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.OrderAPI.RequestTimeout() + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("order_api", cfg.OrderAPI.BaseURL).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
