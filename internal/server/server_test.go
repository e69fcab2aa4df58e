package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sundayezeilo/shortlinks/internal/config"
	"github.com/sundayezeilo/shortlinks/internal/errx"
	"github.com/sundayezeilo/shortlinks/internal/httpx"
	"github.com/sundayezeilo/shortlinks/internal/shortener"
)

// stubService records which operation each route reached.
type stubService struct {
	called string
	code   string
}

func (s *stubService) Create(_ context.Context, req shortener.CreateLinkRequest) (shortener.Link, error) {
	s.called = "Create"
	return shortener.Link{Code: "abc123", Target: req.Target, CreatedAt: time.Now()}, nil
}

func (s *stubService) List(context.Context, shortener.ListOrder) ([]shortener.Link, error) {
	s.called = "List"
	return nil, nil
}

func (s *stubService) Get(_ context.Context, code string) (shortener.Link, error) {
	s.called, s.code = "Get", code
	return shortener.Link{Code: code, CreatedAt: time.Now()}, nil
}

func (s *stubService) Delete(_ context.Context, code string) error {
	s.called, s.code = "Delete", code
	return nil
}

func (s *stubService) Redirect(_ context.Context, code string) (string, error) {
	s.called, s.code = "Redirect", code
	if code == "panic1" {
		panic("boom")
	}
	if code == "gone00" {
		return "", errx.E("svc.Redirect", errx.NotFound, errors.New("not found"))
	}
	return "https://ex.com/" + code, nil
}

func newTestServer(svc shortener.Service, limiter *httpx.RateLimiter, origins []string) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: origins},
		App:    config.AppConfig{Version: "1.2.3"},
	}
	handler := shortener.NewHandler(shortener.HandlerConfig{Service: svc, Logger: logger})
	return New(cfg, logger, handler, limiter).Handler()
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		method     string
		path       string
		body       string
		wantStatus int
		wantCall   string
		wantCode   string
	}{
		{http.MethodPost, "/api/links", `{"target":"https://ex.com"}`, http.StatusCreated, "Create", ""},
		{http.MethodGet, "/api/links", "", http.StatusOK, "List", ""},
		{http.MethodGet, "/api/links/abc123", "", http.StatusOK, "Get", "abc123"},
		{http.MethodDelete, "/api/links/abc123", "", http.StatusOK, "Delete", "abc123"},
		{http.MethodGet, "/abc123", "", http.StatusFound, "Redirect", "abc123"},
		{http.MethodGet, "/gone00", "", http.StatusNotFound, "Redirect", "gone00"},
		{http.MethodPut, "/api/links/abc123", "", http.StatusMethodNotAllowed, "", ""},
		{http.MethodGet, "/api/links/abc123/extra", "", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			svc := &stubService{}
			h := newTestServer(svc, nil, nil)

			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if svc.called != tt.wantCall {
				t.Errorf("service call = %q, want %q", svc.called, tt.wantCall)
			}
			if svc.code != tt.wantCode {
				t.Errorf("code = %q, want %q", svc.code, tt.wantCode)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(&stubService{}, nil, nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["ok"] != true || body["version"] != "1.2.3" {
		t.Errorf("body = %v, want ok=true version=1.2.3", body)
	}
	if rr.Header().Get(httpx.RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
}

func TestRateLimitAppliesToCreateOnly(t *testing.T) {
	h := newTestServer(&stubService{}, httpx.NewRateLimiter(0.001, 1), nil)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/links", strings.NewReader(`{"target":"https://ex.com"}`))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if got := post(); got != http.StatusCreated {
		t.Fatalf("first POST status = %d, want %d", got, http.StatusCreated)
	}
	if got := post(); got != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want %d", got, http.StatusTooManyRequests)
	}

	for range 3 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/abc123", nil))
		if rr.Code != http.StatusFound {
			t.Fatalf("redirect status = %d, want %d", rr.Code, http.StatusFound)
		}
	}
}

func TestMiddlewareStack(t *testing.T) {
	t.Run("recovers handler panics", func(t *testing.T) {
		h := newTestServer(&stubService{}, nil, nil)

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic1", nil))

		if rr.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusInternalServerError)
		}
	})

	t.Run("answers preflight for configured origins", func(t *testing.T) {
		h := newTestServer(&stubService{}, nil, []string{"https://dash.sho.rt"})

		req := httptest.NewRequest(http.MethodOptions, "/api/links", nil)
		req.Header.Set("Origin", "https://dash.sho.rt")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusNoContent)
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.sho.rt" {
			t.Errorf("Access-Control-Allow-Origin = %q", got)
		}
	})
}

func TestShutdownWithoutStart(t *testing.T) {
	s := New(&config.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v, want nil", err)
	}
}
