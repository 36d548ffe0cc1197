package surface

import (
	"github.com/theodesde/retrohunt-app/internal/domain"
	"github.com/theodesde/retrohunt-app/internal/services"
)

// Op names sent to the client. The client applies each op to its local map
// renderer verbatim.
const (
	OpInit           = "init"
	OpSetTileLayer   = "setTileLayer"
	OpAddMarker      = "addMarker"
	OpRemoveMarker   = "removeMarker"
	OpFlyTo          = "flyTo"
	OpZoomIn         = "zoomIn"
	OpZoomOut        = "zoomOut"
	OpInvalidateSize = "invalidateSize"
	OpOpenTooltip    = "openTooltip"
	OpCloseTooltip   = "closeTooltip"
	OpDrawerState    = "drawerState"
	OpFilterView     = "filterView"
)

// Op is one outgoing drawing instruction. Only the fields relevant to the
// named op are populated.
type Op struct {
	Op         string              `json:"op"`
	Center     *domain.LatLng      `json:"center,omitempty"`
	Zoom       int                 `json:"zoom,omitempty"`
	DurationMs int64               `json:"durationMs,omitempty"`
	Layer      *services.TileLayer `json:"layer,omitempty"`
	Marker     *services.Marker    `json:"marker,omitempty"`
	ShopID     int                 `json:"shopId,omitempty"`
	Drawer     *DrawerStatePayload `json:"drawer,omitempty"`
	Filter     *FilterViewPayload  `json:"filter,omitempty"`
}

// DrawerStatePayload mirrors the drawer state for the client overlay.
type DrawerStatePayload struct {
	Phase    string  `json:"phase"`
	HeightPx float64 `json:"heightPx"`
}

// FilterViewPayload carries the session query and the records matching it,
// in directory order, for the client's list view.
type FilterViewPayload struct {
	Query string                `json:"query"`
	Shops []services.ShopRecord `json:"shops"`
}

// Event names received from the client.
const (
	EventHello           = "hello"
	EventResize          = "resize"
	EventMarkerClick     = "markerClick"
	EventListClick       = "listClick"
	EventTagClick        = "tagClick"
	EventSearch          = "search"
	EventDrawerDragStart = "drawerDragStart"
	EventDrawerDragMove  = "drawerDragMove"
	EventDrawerDragEnd   = "drawerDragEnd"
	EventDrawerTap       = "drawerTap"
	EventResetView       = "resetView"
	EventZoomIn          = "zoomIn"
	EventZoomOut         = "zoomOut"
)

// Event is one incoming client input. Only the fields relevant to the named
// event are populated.
type Event struct {
	Type   string  `json:"type"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	ShopID int     `json:"shopId,omitempty"`
	Tag    string  `json:"tag,omitempty"`
	Query  string  `json:"query,omitempty"`
	Y      float64 `json:"y,omitempty"`
}
