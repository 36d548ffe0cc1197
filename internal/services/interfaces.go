package services

import (
	"context"
	"time"

	"github.com/theodesde/retrohunt-app/internal/domain"
)

// Type aliases expose domain models to the services package without reversing dependency direction.
type (
	ShopRecord      = domain.ShopRecord
	LatLng          = domain.LatLng
	Point           = domain.Point
	DrawerPhase     = domain.DrawerPhase
	DrawerState     = domain.DrawerState
	SubmissionState = domain.SubmissionState
	Suggestion      = domain.Suggestion
)

// DirectorySnapshot is a point-in-time view of the shared shop directory.
// Generation increases on every wholesale replacement so derived views can
// memoize against it.
type DirectorySnapshot struct {
	Records    []ShopRecord
	Generation uint64
}

// DirectoryService owns the process-lifetime shop dataset. The record set is
// replaced wholesale whenever the feed resolves and never partially mutated.
type DirectoryService interface {
	// Replace swaps in a freshly normalized record set.
	Replace(records []ShopRecord)
	// Snapshot returns the current records and generation.
	Snapshot() DirectorySnapshot
	// Loaded reports whether a feed load has succeeded yet.
	Loaded() bool
	// Get looks up a record by id in the current generation.
	Get(id int) (ShopRecord, bool)
	// Subscribe registers a callback invoked after every replacement.
	// The returned function removes the subscription.
	Subscribe(fn func(DirectorySnapshot)) func()
}

// MapSurface is the black-box drawing surface the map sync controller talks
// to. Implementations translate these calls for a concrete map renderer; a
// test double records them.
type MapSurface interface {
	Init(center LatLng, zoom int) error
	SetTileLayer(layer TileLayer) error
	AddMarker(marker Marker) error
	RemoveMarker(shopID int) error
	FlyTo(pos LatLng, zoom int, duration time.Duration) error
	ZoomIn() error
	ZoomOut() error
	InvalidateSize() error
	OpenTooltip(shopID int) error
	CloseTooltip(shopID int) error
	Project(pos LatLng, zoom int) Point
	Unproject(pt Point, zoom int) LatLng
}

// ListSurface is optionally implemented by surfaces that also render the
// filtered shop list next to the map. The session pushes a fresh view
// whenever the query or the directory changes.
type ListSurface interface {
	PushFilterView(query string, records []ShopRecord) error
}

// TileLayer describes the base tile layer handed to a surface at startup.
type TileLayer struct {
	URLTemplate string `json:"urlTemplate"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"maxZoom"`
}

// MarkerStyle is the visual state of one marker.
type MarkerStyle string

const (
	MarkerNormal   MarkerStyle = "normal"
	MarkerSelected MarkerStyle = "selected"
)

// Marker is one surface marker bound to a shop record.
type Marker struct {
	ShopID      int         `json:"shopId"`
	Position    LatLng      `json:"position"`
	Style       MarkerStyle `json:"style"`
	TooltipHTML string      `json:"tooltipHtml"`
}

// MailRelay forwards a suggestion to the external mail-sending service.
// Only success or failure is consumed; no response body matters.
type MailRelay interface {
	Send(ctx context.Context, msg SuggestionMessage) error
}

// SuggestionMessage is the parameter mapping handed to the relay.
type SuggestionMessage struct {
	Name    string
	City    string
	Address string
	Tags    string
	Note    string
	Country string
}

// SuggestionService runs the tri-state submission lifecycle.
type SuggestionService interface {
	Submit(ctx context.Context, s Suggestion) (SubmissionReceipt, error)
	State() SubmissionState
}

// SubmissionReceipt identifies an accepted submission.
type SubmissionReceipt struct {
	ID    string
	State SubmissionState
}

// LogFunc is the structured event logger injected into services.
type LogFunc func(ctx context.Context, event string, fields map[string]any)
