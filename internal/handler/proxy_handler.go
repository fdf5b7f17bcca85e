package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parentpanel/gateway/internal/response"
	"github.com/parentpanel/gateway/internal/service"
	"github.com/rs/zerolog"
)

// ProxyHandler serves cross-origin course PDFs same-origin for the flipbook.
type ProxyHandler struct {
	proxyService *service.PDFProxyService
	log          zerolog.Logger
}

// NewProxyHandler creates a new ProxyHandler.
func NewProxyHandler(proxyService *service.PDFProxyService, log zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{
		proxyService: proxyService,
		log:          log.With().Str("component", "proxy_handler").Logger(),
	}
}

// ProxyPDF godoc
// GET /proxy-pdf?url=...
// Streams the document back with its content type and length.
func (h *ProxyHandler) ProxyPDF(c *gin.Context) {
	stream, err := h.proxyService.Open(c.Request.Context(), c.Query("url"))
	if err != nil {
		var upstream *service.UpstreamStatusError
		switch {
		case errors.Is(err, service.ErrProxyURLRequired):
			response.Fail(c, http.StatusBadRequest, response.ErrURLRequired)
		case errors.Is(err, service.ErrProxyInvalidURL):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"url": err.Error()})
		case errors.Is(err, service.ErrHostNotAllowed):
			response.Fail(c, http.StatusForbidden, response.ErrHostNotAllowed)
		case errors.As(err, &upstream):
			h.log.Warn().Int("upstream_status", upstream.StatusCode).Msg("Document host refused")
			response.Fail(c, http.StatusBadGateway, response.ErrProxyFailed)
		default:
			h.log.Error().Err(err).Msg("Document fetch failed")
			response.Fail(c, http.StatusBadGateway, response.ErrProxyFailed)
		}
		return
	}
	defer stream.Body.Close()

	c.DataFromReader(http.StatusOK, stream.ContentLength, stream.ContentType, stream.Body, nil)
}
