package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/parentpanel/gateway/internal/config"
	"github.com/parentpanel/gateway/internal/parentpanel"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/rs/zerolog"
)

// ContextKeySessionID is the Gin context key for the browser session ID.
const ContextKeySessionID = "session_id"

// SessionCookie describes the cookie identifying a browser session.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// NewSessionCookie derives the session cookie settings from cfg. Release
// builds only send the cookie over HTTPS.
func NewSessionCookie(cfg *config.Config) SessionCookie {
	return SessionCookie{
		Name:   cfg.SessionCookieName,
		TTL:    cfg.SessionTTL,
		Secure: cfg.GinMode == gin.ReleaseMode,
	}
}

// CaptureToken persists a ?token= query parameter for the browser session
// and, for GET requests, redirects to the same URL without it so the token
// does not linger in the address bar or in history.
func CaptureToken(tokens *service.TokenService, cookie SessionCookie, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "capture_token").Logger()
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			c.Next()
			return
		}

		sessionID := SessionID(c, cookie.Name)
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		if err := tokens.Persist(c.Request.Context(), sessionID, token); err != nil {
			// ResolveToken still picks the token up from the query.
			log.Error().Err(err).Msg("Persist session token failed")
			c.Next()
			return
		}
		SetSessionCookie(c, cookie, sessionID)

		if c.Request.Method != http.MethodGet {
			c.Set(ContextKeySessionID, sessionID)
			c.Next()
			return
		}

		u := *c.Request.URL
		q := u.Query()
		q.Del("token")
		u.RawQuery = q.Encode()
		c.Redirect(http.StatusSeeOther, u.RequestURI())
		c.Abort()
	}
}

// ResolveToken puts the auth token for upstream calls on the request
// context. See service.TokenService for the priority order.
func ResolveToken(tokens *service.TokenService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetString(ContextKeySessionID)
		if sessionID == "" {
			sessionID = SessionID(c, cookieName)
		}

		token := tokens.Resolve(c.Request.Context(), sessionID, bearerToken(c))
		c.Request = c.Request.WithContext(parentpanel.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

// SessionID returns the browser session ID from its cookie, or "" when the
// cookie is missing or malformed.
func SessionID(c *gin.Context, cookieName string) string {
	raw, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return ""
	}
	return id.String()
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(c *gin.Context, cookie SessionCookie, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.Name, sessionID, int(cookie.TTL.Seconds()), "/", "", cookie.Secure, true)
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	// Fallback for WebSocket upgrades, which cannot send headers.
	return strings.TrimSpace(c.Query("token"))
}
