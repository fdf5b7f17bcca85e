package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sentinel errors for the PDF proxy.
var (
	ErrProxyURLRequired = errors.New("url is required")
	ErrProxyInvalidURL  = errors.New("url must be an absolute http(s) URL")
	ErrHostNotAllowed   = errors.New("host is not allow-listed")
)

// UpstreamStatusError is a non-2xx answer from the document host.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("document host answered %d", e.StatusCode)
}

// PDFStream is an open upstream document.
type PDFStream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64 // -1 when unknown
}

// PDFProxyService fetches course PDFs from allow-listed hosts so the
// flipbook viewer can read them same-origin.
type PDFProxyService struct {
	client  *http.Client
	allowed []string
}

// NewPDFProxyService creates a new PDFProxyService. allowedHosts match
// themselves and their subdomains.
func NewPDFProxyService(allowedHosts []string, timeout time.Duration) *PDFProxyService {
	allowed := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed = append(allowed, strings.TrimPrefix(h, "."))
		}
	}
	return &PDFProxyService{
		client:  &http.Client{Timeout: timeout},
		allowed: allowed,
	}
}

// Open validates rawURL and starts fetching it. The caller must close
// the returned Body.
func (s *PDFProxyService) Open(ctx context.Context, rawURL string) (*PDFStream, error) {
	target, err := s.validate(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf,*/*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &UpstreamStatusError{StatusCode: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	return &PDFStream{
		Body:          resp.Body,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
	}, nil
}

func (s *PDFProxyService) validate(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, ErrProxyURLRequired
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, ErrProxyInvalidURL
	}
	if !s.hostAllowed(u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}
	return u, nil
}

func (s *PDFProxyService) hostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, a := range s.allowed {
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}
	return false
}
