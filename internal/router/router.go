package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/parentpanel/gateway/internal/config"
	"github.com/parentpanel/gateway/internal/handler"
	"github.com/parentpanel/gateway/internal/middleware"
	"github.com/parentpanel/gateway/internal/response"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/rs/zerolog"
)

const proxyPath = "/proxy-pdf"

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Dashboard *handler.DashboardHandler
	Join      *handler.JoinHandler
	Session   *handler.SessionHandler
	Proxy     *handler.ProxyHandler
	Health    *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	tokenService *service.TokenService,
	verifyLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// ─── CORS ──────────────────────────────────────────────────────────
	// The API follows AllowedOrigins (all origins when unset). The PDF
	// proxy is wide open: the flipbook may be embedded anywhere.
	router.Use(splitCORS(apiCORS(cfg), proxyCORS()))

	router.Use(
		gin.Recovery(),
		response.RequestIDMiddleware(),
		response.AccessLog(log),
		middleware.Brotli(proxyPath),
	)

	cookie := middleware.NewSessionCookie(cfg)
	captureToken := middleware.CaptureToken(tokenService, cookie, log)
	resolveToken := middleware.ResolveToken(tokenService, cookie.Name)

	// Health check.
	router.GET("/health", handlers.Health.Health)

	// ─── 1. PDF proxy ──────────────────────────────────────────────────
	proxy := router.Group(proxyPath)
	proxy.Use(middleware.CacheControl("private, max-age=300"))
	{
		proxy.GET("", handlers.Proxy.ProxyPDF)
		// Preflights are answered by the CORS middleware; the route only
		// has to exist for it to run.
		proxy.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	api := router.Group("/api/v1")
	api.Use(middleware.CacheControl("no-store"))

	// ─── 2. Browser session ────────────────────────────────────────────
	api.POST("/session", handlers.Session.CreateSession)

	// Progress counters are per parent, not per code, and stay outside the
	// /dashboard/:code namespace where any 6-letter word is a valid code.
	api.GET("/header", captureToken, resolveToken, handlers.Dashboard.GetHeader)

	// ─── 3. Dashboard (token captured from ?token=, then resolved) ─────
	dashboard := api.Group("/dashboard")
	dashboard.Use(captureToken, resolveToken)
	{
		dashboard.GET("/:code", verifyLimiter.Middleware(), handlers.Dashboard.GetDashboard)
		dashboard.GET("/:code/session", handlers.Dashboard.GetLastSession)
		dashboard.GET("/:code/:subject", verifyLimiter.Middleware(), handlers.Dashboard.GetSubjectDashboard)
	}

	// ─── 4. Join stream (one WebSocket per dashboard page) ─────────────
	ws := router.Group("/ws/v1")
	ws.Use(resolveToken)
	{
		ws.GET("/join/:code/stream", handlers.Join.JoinStream)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrInvalidJoinCode)
	})

	return router
}

func apiCORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}

func proxyCORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Range", "Authorization"},
		ExposeHeaders:   []string{"Content-Type", "Content-Length"},
		MaxAge:          12 * time.Hour,
	})
}

// splitCORS picks the CORS policy by path. It runs globally so unmatched
// preflights still get an answer.
func splitCORS(api, proxy gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, proxyPath) {
			proxy(c)
			return
		}
		api(c)
	}
}
