package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parentpanel/gateway/internal/config"
	"github.com/parentpanel/gateway/internal/middleware"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (s *memTokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[sessionID], nil
}

func (s *memTokenStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[sessionID] = token
	return nil
}

func TestCreateSessionCookieFollowsMode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		mode       string
		wantSecure bool
	}{
		{mode: gin.ReleaseMode, wantSecure: true},
		{mode: gin.DebugMode},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			store := &memTokenStore{tokens: map[string]string{}}
			tokens := service.NewTokenService(store, "", time.Hour, zerolog.Nop())
			cookie := middleware.NewSessionCookie(&config.Config{
				GinMode:           tt.mode,
				SessionCookieName: "pp_session",
				SessionTTL:        time.Hour,
			})
			h := NewSessionHandler(tokens, cookie, zerolog.Nop())

			r := gin.New()
			r.POST("/api/v1/session", h.CreateSession)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/session", strings.NewReader(`{"token":"parent-token"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusCreated, w.Code)
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "pp_session", cookies[0].Name)
			assert.Equal(t, tt.wantSecure, cookies[0].Secure)
			assert.True(t, cookies[0].HttpOnly)
			assert.Equal(t, "parent-token", store.tokens[cookies[0].Value])
		})
	}
}
