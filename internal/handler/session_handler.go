package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/parentpanel/gateway/internal/middleware"
	"github.com/parentpanel/gateway/internal/model"
	"github.com/parentpanel/gateway/internal/response"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/parentpanel/gateway/internal/validator"
	"github.com/rs/zerolog"
)

// SessionHandler stores the parent's auth token for this browser.
type SessionHandler struct {
	tokenService *service.TokenService
	cookie       middleware.SessionCookie
	log          zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(tokenService *service.TokenService, cookie middleware.SessionCookie, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		tokenService: tokenService,
		cookie:       cookie,
		log:          log.With().Str("component", "session_handler").Logger(),
	}
}

// CreateSession godoc
// POST /api/v1/session
// Persists the token and sets the session cookie.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sessionID := middleware.SessionID(c, h.cookie.Name)
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	if err := h.tokenService.Persist(c.Request.Context(), sessionID, req.Token); err != nil {
		h.log.Error().Err(err).Msg("Persist session token failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	middleware.SetSessionCookie(c, h.cookie, sessionID)
	response.Success(c, http.StatusCreated, gin.H{"status": "stored"})
}
