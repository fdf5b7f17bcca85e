package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parentpanel/gateway/internal/config"
	"github.com/parentpanel/gateway/internal/database"
	"github.com/parentpanel/gateway/internal/handler"
	"github.com/parentpanel/gateway/internal/logger"
	"github.com/parentpanel/gateway/internal/middleware"
	"github.com/parentpanel/gateway/internal/parentpanel"
	"github.com/parentpanel/gateway/internal/router"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/parentpanel/gateway/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("upstream", cfg.ParentPanelAPIURL).
		Bool("default_token", cfg.DefaultAuthToken != "").
		Msg("Starting Parent Panel Gateway")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Services ──────────────────────────────────────────
	client := parentpanel.NewClient(cfg.ParentPanelAPIURL, cfg.UpstreamTimeout)
	clock := service.RealClock{}

	tokenService := service.NewTokenService(service.NewRedisTokenStore(rdb), cfg.DefaultAuthToken, cfg.SessionTTL, log)
	verifyService := service.NewVerifyService(client, clock, cfg.ClassLocation, log)
	dashboardService := service.NewDashboardService(verifyService, client)
	joinService := service.NewJoinService(client, clock, cfg.JoinFirstPollDelay, cfg.JoinPollInterval, log)
	proxyService := service.NewPDFProxyService(cfg.PDFProxyAllowedHosts, cfg.UpstreamTimeout*4)

	if len(cfg.PDFProxyAllowedHosts) == 0 {
		log.Warn().Msg("PDF_PROXY_ALLOWED_HOSTS is empty, the PDF proxy will refuse every document")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	cookie := middleware.NewSessionCookie(cfg)
	handlers := &router.Handlers{
		Dashboard: handler.NewDashboardHandler(dashboardService, log),
		Join:      handler.NewJoinHandler(joinService, log, cfg.AllowedOrigins),
		Session:   handler.NewSessionHandler(tokenService, cookie, log),
		Proxy:     handler.NewProxyHandler(proxyService, log),
		Health:    handler.NewHealthHandler(rdb),
	}

	// Join codes are short; slow down anyone walking the code space.
	verifyLimiter := middleware.NewRateLimiter(ctx, cfg.VerifyRateLimit, time.Minute)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(tokenService, verifyLimiter, handlers, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// Open join pages are hijacked WebSockets; Shutdown does not wait for
	// them, their polls end with the process.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
