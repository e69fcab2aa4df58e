package shortener

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sundayezeilo/shortlinks/internal/errx"
	"github.com/sundayezeilo/shortlinks/internal/httpx"
)

// HTTPCreateLinkRequest represents the JSON request body for creating a link.
type HTTPCreateLinkRequest struct {
	Target string `json:"target"`
	Code   string `json:"code,omitempty"`
}

// LinkResponse is the JSON shape of one link.
type LinkResponse struct {
	Code        string     `json:"code"`
	Target      string     `json:"target"`
	Clicks      int64      `json:"clicks"`
	LastClicked *time.Time `json:"last_clicked"`
	CreatedAt   time.Time  `json:"created_at"`
	ShortURL    string     `json:"short_url,omitempty"`
}

// Handler provides HTTP handlers for the URL shortener service.
type Handler struct {
	service Service
	logger  *slog.Logger
	baseURL string
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
	BaseURL string // Base URL for constructing short URLs (e.g., "https://sho.rt")
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
	}
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

func (h *Handler) toResponse(link Link) LinkResponse {
	resp := LinkResponse{
		Code:        link.Code,
		Target:      link.Target,
		Clicks:      link.Clicks,
		LastClicked: link.LastClicked,
		CreatedAt:   link.CreatedAt,
	}
	if h.baseURL != "" {
		resp.ShortURL = h.baseURL + "/" + link.Code
	}
	return resp
}

// CreateLink handles POST /api/links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[HTTPCreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	link, err := h.service.Create(ctx, CreateLinkRequest{
		Target: req.Target,
		Code:   req.Code,
	})
	if err != nil {
		h.handleCreateError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "link created",
		"link_id", link.ID.String(),
		"code", link.Code,
		"custom_code", req.Code != "",
	)

	httpx.WriteJSON(w, http.StatusCreated, h.toResponse(link))
}

// ListLinks handles GET /api/links.
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	order, err := ParseListOrder(r.URL.Query().Get("sort"))
	if err != nil {
		logger.WarnContext(ctx, "invalid sort", "error", err.Error())
		httpx.WriteKindError(w, errx.Invalid, err.Error())
		return
	}

	links, err := h.service.List(ctx, order)
	if err != nil {
		h.handleLookupError(ctx, logger, w, err, "")
		return
	}

	resp := make([]LinkResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, h.toResponse(link))
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// GetLink handles GET /api/links/{code}.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	code := r.PathValue("code")

	link, err := h.service.Get(ctx, code)
	if err != nil {
		h.handleLookupError(ctx, h.requestLogger(r), w, err, code)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, h.toResponse(link))
}

// DeleteLink handles DELETE /api/links/{code}.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)
	code := r.PathValue("code")

	if err := h.service.Delete(ctx, code); err != nil {
		h.handleLookupError(ctx, logger, w, err, code)
		return
	}

	logger.InfoContext(ctx, "link deleted", "code", code)
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Redirect handles GET /{code}: it records the click and answers 302.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)
	code := r.PathValue("code")

	target, err := h.service.Redirect(ctx, code)
	if err != nil {
		h.handleLookupError(ctx, logger, w, err, code)
		return
	}

	logger.DebugContext(ctx, "redirect",
		"code", code,
		"user_agent", r.UserAgent(),
		"referer", r.Referer(),
	)

	http.Redirect(w, r, target, http.StatusFound)
}

func errorAttrs(err error) []any {
	return []any{
		"error", err.Error(),
		"error_kind", errx.KindOf(err),
		"operation", errx.OpOf(err),
	}
}

func (h *Handler) handleCreateError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	attrs := errorAttrs(err)

	switch errx.KindOf(err) {
	case errx.Invalid:
		logger.WarnContext(ctx, "invalid link request", attrs...)
		httpx.WriteKindError(w, errx.Invalid, errx.Root(err).Error())

	case errx.Conflict:
		logger.WarnContext(ctx, "code conflict", attrs...)
		httpx.WriteError(w, http.StatusConflict, "conflict",
			"This code is already taken",
			map[string]string{
				"hint": "Try a different code or omit it to have one generated",
			})

	case errx.Unavailable:
		logger.ErrorContext(ctx, "link creation unavailable", attrs...)
		httpx.WriteKindError(w, errx.Unavailable,
			"Unable to create short link at this time. Please try again.")

	default:
		logger.ErrorContext(ctx, "unexpected error creating link", attrs...)
		httpx.WriteKindError(w, errx.Internal,
			"Unable to create short link at this time. Please try again.")
	}
}

// handleLookupError serves list, get, delete and redirect failures.
func (h *Handler) handleLookupError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error, code string) {
	attrs := errorAttrs(err)
	if code != "" {
		attrs = append(attrs, "code", code)
	}

	switch errx.KindOf(err) {
	case errx.NotFound:
		logger.InfoContext(ctx, "link not found", attrs...)
		httpx.WriteKindError(w, errx.NotFound, "short link doesn't exist")

	case errx.Invalid:
		logger.WarnContext(ctx, "invalid request", attrs...)
		httpx.WriteKindError(w, errx.Invalid, errx.Root(err).Error())

	default:
		logger.ErrorContext(ctx, "unexpected store error", attrs...)
		httpx.WriteKindError(w, errx.Internal, "Something went wrong. Please try again.")
	}
}
