package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/theodesde/retrohunt-app/internal/platform/httpx"
)

// FeedRefresher reloads the shop directory from the upstream feed and
// reports how many records survived normalization.
type FeedRefresher interface {
	Refresh(ctx context.Context) (int, error)
}

// FeedRefresherFunc adapts a function to the FeedRefresher interface.
type FeedRefresherFunc func(ctx context.Context) (int, error)

// Refresh implements FeedRefresher.
func (fn FeedRefresherFunc) Refresh(ctx context.Context) (int, error) {
	return fn(ctx)
}

// FeedHandlers exposes operator-only feed maintenance endpoints.
type FeedHandlers struct {
	refresher FeedRefresher
}

// NewFeedHandlers constructs feed endpoints over the given refresher.
func NewFeedHandlers(refresher FeedRefresher) *FeedHandlers {
	return &FeedHandlers{refresher: refresher}
}

// Routes registers the feed endpoints on the given router.
func (h *FeedHandlers) Routes(r chi.Router) {
	r.Post("/feed/refresh", h.refresh)
}

type feedRefreshResponse struct {
	Records int `json:"records"`
}

func (h *FeedHandlers) refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.refresher == nil {
		httpx.WriteError(ctx, w, httpx.NewError("feed_unavailable", "feed refresher not configured", http.StatusServiceUnavailable))
		return
	}
	count, err := h.refresher.Refresh(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("feed_refresh_failed", "could not reload the shop feed", http.StatusBadGateway))
		return
	}
	writeJSON(w, http.StatusOK, feedRefreshResponse{Records: count})
}
