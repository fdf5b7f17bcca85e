package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/parentpanel/gateway/internal/model"
	"github.com/parentpanel/gateway/internal/response"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/parentpanel/gateway/internal/validator"
	ws "github.com/parentpanel/gateway/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// JoinHandler runs the join flow of a dashboard page over a WebSocket. The
// connection is the page: it opens when the dashboard mounts and its close
// cancels everything the page started.
type JoinHandler struct {
	joinService *service.JoinService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewJoinHandler creates a new JoinHandler.
func NewJoinHandler(joinService *service.JoinService, log zerolog.Logger, allowedOrigins []string) *JoinHandler {
	return &JoinHandler{
		joinService: joinService,
		log:         log.With().Str("component", "join_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// JoinStream godoc
// WS /ws/v1/join/:code/stream
// Checks once whether the class is already live, then waits for "join_now"
// to enqueue the child and poll until the class starts. The join URL is
// pushed as an "open" event at most once.
func (h *JoinHandler) JoinStream(c *gin.Context) {
	var uri model.CodeURI
	if fields := validator.BindURI(c, &uri); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidJoinCode, fields)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer raw.Close()
	conn := ws.NewConn(raw)

	keepaliveCtx, stopKeepalive := context.WithCancel(c.Request.Context())
	defer stopKeepalive()
	go conn.Keepalive(keepaliveCtx)

	pageLog := h.log.With().
		Str("code", uri.Code).
		Str("page_id", uuid.New().String()).
		Logger()
	pageLog.Info().Msg("Dashboard page connected")

	page := h.joinService.OpenPage(c.Request.Context(), uri.Code, func(url string) {
		if err := conn.WriteTyped(ws.OpenResponse{Event: ws.EventOpen, JoinURL: url}); err != nil {
			pageLog.Warn().Err(err).Msg("Send join link failed")
		}
	})
	defer page.Close()

	page.AutoJoin()

	for {
		var msg ws.RequestEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				pageLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				pageLog.Debug().Msg("Dashboard page closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionJoinNow:
			h.handleJoinNow(conn, page)
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			pageLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

func (h *JoinHandler) handleJoinNow(conn *ws.Conn, page *service.JoinPage) {
	state, err := page.JoinNow()
	if err != nil {
		if errors.Is(err, service.ErrPageClosed) {
			return
		}
		_ = conn.WriteError(service.JoinMessage(err))
	}

	res := ws.StateResponse{Event: ws.EventState, State: string(state)}
	if state == service.JoinPolling {
		res.Message = service.MsgQueued
	}
	_ = conn.WriteTyped(res)
}
