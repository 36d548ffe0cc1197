package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/theodesde/retrohunt-app/internal/services"
	"github.com/theodesde/retrohunt-app/internal/surface"
)

func sessionTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := services.NewDirectoryService()
	dir.Replace(shopFixture())

	h := NewSessionHandlers(
		WithSessionDirectory(dir),
		WithSessionMapView(services.MapViewConfig{
			DefaultCenter:     services.LatLng{Lat: 46.603354, Lng: 1.888334},
			DefaultZoom:       6,
			SelectionZoom:     13,
			FlyDuration:       1500 * time.Millisecond,
			TileLayer:         services.TileLayer{URLTemplate: "https://tiles.test/{z}/{x}/{y}.png"},
			NarrowViewportPx:  768,
			SelectionOffsetPx: 120,
		}),
		WithSessionDrawer(services.DrawerGeometry{MinHeightPx: 60, MaxFraction: 0.85, SnapThresholdPx: 40}),
		WithSessionCheckOrigin(func(r *http.Request) bool { return true }),
	)
	return NewRouter(WithSessionRoutes(h.Routes))
}

func TestSessionLifecycle(t *testing.T) {
	server := httptest.NewServer(sessionTestRouter(t))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/session"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	// The session draws its initial state immediately: camera init, tile
	// layer, one marker per shop, and the unfiltered list view.
	seen := map[string]int{}
	for i := 0; i < 5; i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var op surface.Op
		if err := conn.ReadJSON(&op); err != nil {
			t.Fatalf("read initial op %d: %v", i, err)
		}
		seen[op.Op]++
	}
	if seen[surface.OpInit] != 1 || seen[surface.OpSetTileLayer] != 1 || seen[surface.OpAddMarker] != 2 || seen[surface.OpFilterView] != 1 {
		t.Fatalf("unexpected initial ops: %v", seen)
	}

	// Selecting a marker flies the camera and opens its tooltip.
	if err := conn.WriteJSON(surface.Event{Type: surface.EventMarkerClick, ShopID: 1}); err != nil {
		t.Fatalf("write event: %v", err)
	}
	sawFly := false
	sawTooltip := false
	for i := 0; i < 6 && !(sawFly && sawTooltip); i++ {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var op surface.Op
		if err := conn.ReadJSON(&op); err != nil {
			t.Fatalf("read op after click: %v", err)
		}
		switch op.Op {
		case surface.OpFlyTo:
			sawFly = true
			if op.Zoom != 13 {
				t.Errorf("expected selection zoom 13, got %d", op.Zoom)
			}
		case surface.OpOpenTooltip:
			sawTooltip = true
			if op.ShopID != 1 {
				t.Errorf("expected tooltip for shop 1, got %d", op.ShopID)
			}
		}
	}
	if !sawFly || !sawTooltip {
		t.Errorf("expected fly and tooltip ops, got fly=%v tooltip=%v", sawFly, sawTooltip)
	}

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func TestSessionUnavailableWithoutDirectory(t *testing.T) {
	h := NewSessionHandlers()
	r := NewRouter(WithSessionRoutes(h.Routes))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
