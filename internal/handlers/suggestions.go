package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/theodesde/retrohunt-app/internal/platform/httpx"
	"github.com/theodesde/retrohunt-app/internal/services"
)

// SuggestionHandlers accepts new shop suggestions and forwards them through
// the suggestion lifecycle.
type SuggestionHandlers struct {
	service services.SuggestionService
	limiter rateLimiter
}

// SuggestionHandlerOption customises construction of SuggestionHandlers.
type SuggestionHandlerOption func(*SuggestionHandlers)

// WithSuggestionRateLimit caps submissions per client address within the
// window.
func WithSuggestionRateLimit(limit int, window time.Duration) SuggestionHandlerOption {
	return func(h *SuggestionHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, nil)
	}
}

// NewSuggestionHandlers constructs suggestion endpoints over the given service.
func NewSuggestionHandlers(service services.SuggestionService, opts ...SuggestionHandlerOption) *SuggestionHandlers {
	h := &SuggestionHandlers{service: service}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the suggestion endpoints on the given router.
func (h *SuggestionHandlers) Routes(r chi.Router) {
	r.Post("/", h.submit)
	r.Get("/state", h.state)
}

type suggestionRequest struct {
	Name    string   `json:"name"`
	City    string   `json:"city"`
	Address string   `json:"address"`
	Tags    []string `json:"tags,omitempty"`
	Note    string   `json:"note,omitempty"`
}

type suggestionResponse struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

func (h *SuggestionHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.service == nil {
		httpx.WriteError(ctx, w, httpx.NewError("suggestions_unavailable", "suggestion service not configured", http.StatusServiceUnavailable))
		return
	}

	if h.limiter != nil && !h.limiter.Allow(clientKey(r)) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many suggestions; try again later", http.StatusTooManyRequests))
		return
	}

	var req suggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_body", "request body must be valid JSON", http.StatusBadRequest))
		return
	}

	receipt, err := h.service.Submit(ctx, services.Suggestion{
		Name:    req.Name,
		City:    req.City,
		Address: req.Address,
		Tags:    req.Tags,
		Note:    req.Note,
	})
	switch {
	case errors.Is(err, services.ErrSuggestionInvalid):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_suggestion", err.Error(), http.StatusBadRequest))
		return
	case errors.Is(err, services.ErrSuggestionInFlight):
		httpx.WriteError(ctx, w, httpx.NewError("suggestion_in_flight", "another suggestion is being processed", http.StatusConflict))
		return
	case errors.Is(err, services.ErrSuggestionRelayFailed):
		httpx.WriteError(ctx, w, httpx.NewError("relay_failed", "the suggestion could not be delivered", http.StatusBadGateway))
		return
	case err != nil:
		httpx.WriteError(ctx, w, httpx.NewError("suggestion_error", "failed to process suggestion", http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusAccepted, suggestionResponse{
		ID:    receipt.ID,
		State: string(receipt.State),
	})
}

func (h *SuggestionHandlers) state(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("suggestions_unavailable", "suggestion service not configured", http.StatusServiceUnavailable))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"state": string(h.service.State())})
}

// clientKey buckets rate limiting by remote host, tolerating addresses
// without a port.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
