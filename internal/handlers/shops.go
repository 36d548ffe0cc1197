package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/theodesde/retrohunt-app/internal/platform/httpx"
	"github.com/theodesde/retrohunt-app/internal/services"
)

// ShopHandlers exposes the read-only shop directory endpoints.
type ShopHandlers struct {
	directory   services.DirectoryService
	mapLinkBase string
}

// ShopOption customises construction of ShopHandlers.
type ShopOption func(*ShopHandlers)

// WithShopDirectory injects the directory service dependency.
func WithShopDirectory(dir services.DirectoryService) ShopOption {
	return func(h *ShopHandlers) {
		h.directory = dir
	}
}

// WithShopMapLinkBase sets the base URL for external map deep links.
func WithShopMapLinkBase(base string) ShopOption {
	return func(h *ShopHandlers) {
		h.mapLinkBase = base
	}
}

// NewShopHandlers constructs shop endpoints with the given options.
func NewShopHandlers(opts ...ShopOption) *ShopHandlers {
	h := &ShopHandlers{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the shop endpoints on the given router.
func (h *ShopHandlers) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{shopID}", h.get)
	r.Get("/{shopID}/map-link", h.mapLink)
}

type shopListResponse struct {
	Shops []services.ShopRecord `json:"shops"`
	Total int                   `json:"total"`
	Query string                `json:"query,omitempty"`
}

// list returns the directory, optionally narrowed by the q parameter using
// the same matching rules as the live session search box.
func (h *ShopHandlers) list(w http.ResponseWriter, r *http.Request) {
	if h.directory == nil {
		httpx.WriteError(r.Context(), w, httpx.NewError("directory_unavailable", "shop directory not configured", http.StatusServiceUnavailable))
		return
	}
	query := r.URL.Query().Get("q")
	snap := h.directory.Snapshot()
	shops := services.FilterShops(snap.Records, query)
	if shops == nil {
		shops = []services.ShopRecord{}
	}
	writeJSON(w, http.StatusOK, shopListResponse{
		Shops: shops,
		Total: len(shops),
		Query: strings.TrimSpace(query),
	})
}

func (h *ShopHandlers) get(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type mapLinkResponse struct {
	URL string `json:"url"`
}

// mapLink builds the external navigation deep link for one shop from its
// name and address.
func (h *ShopHandlers) mapLink(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if h.mapLinkBase == "" {
		httpx.WriteError(r.Context(), w, httpx.NewError("map_link_unavailable", "map link base not configured", http.StatusServiceUnavailable))
		return
	}
	destination := strings.TrimSpace(rec.Name + " " + rec.Address)
	writeJSON(w, http.StatusOK, mapLinkResponse{
		URL: h.mapLinkBase + escapeQueryComponent(destination),
	})
}

// escapeQueryComponent percent-encodes a query value with %20 for spaces,
// matching what navigation apps receive from browser-built links.
func escapeQueryComponent(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func (h *ShopHandlers) resolve(w http.ResponseWriter, r *http.Request) (services.ShopRecord, bool) {
	ctx := r.Context()
	if h.directory == nil {
		httpx.WriteError(ctx, w, httpx.NewError("directory_unavailable", "shop directory not configured", http.StatusServiceUnavailable))
		return services.ShopRecord{}, false
	}
	id, err := strconv.Atoi(chi.URLParam(r, "shopID"))
	if err != nil || id <= 0 {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_shop_id", "shop id must be a positive integer", http.StatusBadRequest))
		return services.ShopRecord{}, false
	}
	rec, ok := h.directory.Get(id)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("shop_not_found", "no shop with that id", http.StatusNotFound))
		return services.ShopRecord{}, false
	}
	return rec, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
