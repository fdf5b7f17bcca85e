package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parentpanel/gateway/internal/response"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports liveness and whether the session store answers.
type HealthHandler struct {
	rdb       *redis.Client
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. rdb may be nil.
func NewHealthHandler(rdb *redis.Client) *HealthHandler {
	return &HealthHandler{rdb: rdb, startTime: time.Now()}
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	store := "ok"
	if h.rdb == nil {
		store = "disabled"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			store = "unreachable"
		}
	}

	response.Success(c, status, gin.H{
		"status":        http.StatusText(status),
		"session_store": store,
		"uptime":        time.Since(h.startTime).Round(time.Second).String(),
	})
}
