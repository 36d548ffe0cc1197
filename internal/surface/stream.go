package surface

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/theodesde/retrohunt-app/internal/domain"
	"github.com/theodesde/retrohunt-app/internal/services"
)

const defaultWriteTimeout = 10 * time.Second

// StreamSurface renders map operations by streaming them over a websocket.
// All writes are serialized; the websocket package allows at most one
// concurrent writer.
type StreamSurface struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
}

// NewStreamSurface wraps an upgraded websocket connection.
func NewStreamSurface(conn *websocket.Conn) *StreamSurface {
	return &StreamSurface{conn: conn, writeTimeout: defaultWriteTimeout}
}

func (s *StreamSurface) send(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return fmt.Errorf("surface: set write deadline: %w", err)
	}
	if err := s.conn.WriteJSON(op); err != nil {
		return fmt.Errorf("surface: write %s: %w", op.Op, err)
	}
	return nil
}

func (s *StreamSurface) Init(center domain.LatLng, zoom int) error {
	return s.send(Op{Op: OpInit, Center: &center, Zoom: zoom})
}

func (s *StreamSurface) SetTileLayer(layer services.TileLayer) error {
	return s.send(Op{Op: OpSetTileLayer, Layer: &layer})
}

func (s *StreamSurface) AddMarker(marker services.Marker) error {
	return s.send(Op{Op: OpAddMarker, Marker: &marker})
}

func (s *StreamSurface) RemoveMarker(shopID int) error {
	return s.send(Op{Op: OpRemoveMarker, ShopID: shopID})
}

func (s *StreamSurface) FlyTo(pos domain.LatLng, zoom int, duration time.Duration) error {
	return s.send(Op{Op: OpFlyTo, Center: &pos, Zoom: zoom, DurationMs: duration.Milliseconds()})
}

func (s *StreamSurface) ZoomIn() error {
	return s.send(Op{Op: OpZoomIn})
}

func (s *StreamSurface) ZoomOut() error {
	return s.send(Op{Op: OpZoomOut})
}

func (s *StreamSurface) InvalidateSize() error {
	return s.send(Op{Op: OpInvalidateSize})
}

func (s *StreamSurface) OpenTooltip(shopID int) error {
	return s.send(Op{Op: OpOpenTooltip, ShopID: shopID})
}

func (s *StreamSurface) CloseTooltip(shopID int) error {
	return s.send(Op{Op: OpCloseTooltip, ShopID: shopID})
}

// PushDrawerState mirrors the drawer state machine to the client overlay.
func (s *StreamSurface) PushDrawerState(st domain.DrawerState) error {
	return s.send(Op{Op: OpDrawerState, Drawer: &DrawerStatePayload{
		Phase:    string(st.Phase),
		HeightPx: st.LiveHeightPx,
	}})
}

// PushFilterView renders the filtered shop list for the current query.
func (s *StreamSurface) PushFilterView(query string, records []services.ShopRecord) error {
	if records == nil {
		records = []services.ShopRecord{}
	}
	return s.send(Op{Op: OpFilterView, Filter: &FilterViewPayload{
		Query: query,
		Shops: records,
	}})
}

// Project and Unproject run server-side; the client never does coordinate
// math.
func (s *StreamSurface) Project(pos domain.LatLng, zoom int) domain.Point {
	return Project(pos, zoom)
}

func (s *StreamSurface) Unproject(pt domain.Point, zoom int) domain.LatLng {
	return Unproject(pt, zoom)
}

// ReadEvent blocks until the client sends the next input event.
func (s *StreamSurface) ReadEvent() (Event, error) {
	var ev Event
	if err := s.conn.ReadJSON(&ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Close closes the underlying connection.
func (s *StreamSurface) Close() error {
	return s.conn.Close()
}
