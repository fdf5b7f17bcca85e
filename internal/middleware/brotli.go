package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes the JSON compression middleware.
type BrotliConfig struct {
	Quality   int
	MinLength int
	// SkipPaths are path prefixes whose responses are streamed untouched.
	SkipPaths []string
}

var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// bufferedWriter holds the whole response so the encoding can be decided
// once its size and content type are known. Dashboard payloads are small.
type bufferedWriter struct {
	gin.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *bufferedWriter) WriteHeader(code int) { w.status = code }

// WriteHeaderNow is deferred to the end of the request like everything else.
func (w *bufferedWriter) WriteHeaderNow() {}

func (w *bufferedWriter) Write(data []byte) (int, error) { return w.buf.Write(data) }

func (w *bufferedWriter) WriteString(s string) (int, error) { return w.buf.WriteString(s) }

func (w *bufferedWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Brotli compresses JSON responses with the default configuration.
func Brotli(skipPaths ...string) gin.HandlerFunc {
	cfg := DefaultBrotliConfig
	cfg.SkipPaths = skipPaths
	return BrotliWithConfig(cfg)
}

// BrotliWithConfig compresses JSON responses of at least cfg.MinLength
// bytes for clients that accept "br". WebSocket upgrades and SkipPaths pass
// through.
func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < 0 || cfg.Quality > 11 {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if shouldSkip(c, cfg.SkipPaths) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		orig := c.Writer
		bw := &bufferedWriter{ResponseWriter: orig}
		c.Writer = bw
		c.Next()
		c.Writer = orig

		body := bw.buf.Bytes()
		header := orig.Header()
		header.Add("Vary", "Accept-Encoding")

		if len(body) < cfg.MinLength || !strings.Contains(header.Get("Content-Type"), "json") {
			orig.WriteHeader(bw.Status())
			if len(body) == 0 {
				orig.WriteHeaderNow()
				return
			}
			_, _ = orig.Write(body)
			return
		}

		header.Set("Content-Encoding", "br")
		header.Del("Content-Length")
		orig.WriteHeader(bw.Status())

		enc := brotli.NewWriterLevel(orig, cfg.Quality)
		if _, err := enc.Write(body); err != nil {
			_ = c.Error(err)
		}
		if err := enc.Close(); err != nil {
			_ = c.Error(err)
		}
	}
}

func shouldSkip(c *gin.Context, skipPaths []string) bool {
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return true
	}
	for _, p := range skipPaths {
		if strings.HasPrefix(c.Request.URL.Path, p) {
			return true
		}
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	ae := r.Header.Get("Accept-Encoding")
	for _, enc := range strings.Split(ae, ",") {
		enc = strings.TrimSpace(strings.ToLower(enc))
		if enc == "br" || strings.HasPrefix(enc, "br;") {
			return true
		}
	}
	return false
}
