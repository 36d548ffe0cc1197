package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/theodesde/retrohunt-app/internal/domain"
)

// ErrShopNotFound indicates a selection targeted an id absent from the
// current directory generation.
var ErrShopNotFound = errors.New("session: shop not found")

// SessionDeps bundles collaborators required to construct a browsing session.
type SessionDeps struct {
	Directory DirectoryService
	Surface   MapSurface
	View      MapViewConfig
	Drawer    DrawerGeometry
	Logger    LogFunc
	Clock     func() time.Time
}

// Session coordinates one connected map client: it owns that client's search
// query, drawer gesture state, and map selection, against the shared shop
// directory. All event methods are safe for concurrent use; directory
// replacements arrive on the publisher's goroutine.
type Session struct {
	id        string
	directory DirectoryService
	mapCtrl   *MapSyncController
	drawer    *DrawerController
	list      ListSurface
	logger    LogFunc

	mu          sync.Mutex
	query       string
	viewportW   float64
	memoGen     uint64
	memoQuery   string
	memoResult  []ShopRecord
	memoValid   bool
	unsubscribe func()
}

// NewSession validates deps and builds the per-connection controllers. The
// session does nothing until Start.
func NewSession(deps SessionDeps) (*Session, error) {
	if deps.Directory == nil {
		return nil, errors.New("session: directory is required")
	}
	if deps.Surface == nil {
		return nil, errors.New("session: surface is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	mapCtrl, err := NewMapSyncController(MapSyncControllerDeps{
		Surface: deps.Surface,
		View:    deps.View,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	drawer, err := NewDrawerController(deps.Drawer)
	if err != nil {
		return nil, err
	}

	list, _ := deps.Surface.(ListSurface)

	entropy := rand.New(rand.NewSource(clock().UnixNano()))
	return &Session{
		id:        ulid.MustNew(ulid.Timestamp(clock()), entropy).String(),
		directory: deps.Directory,
		mapCtrl:   mapCtrl,
		drawer:    drawer,
		list:      list,
		logger:    logger,
	}, nil
}

// ID returns the session identifier assigned at construction.
func (s *Session) ID() string { return s.id }

// Start draws the initial map state and subscribes to directory
// replacements for the session's lifetime.
func (s *Session) Start(ctx context.Context) error {
	if err := s.mapCtrl.Start(ctx, s.directory.Snapshot()); err != nil {
		return err
	}
	s.pushList(ctx)
	unsub := s.directory.Subscribe(func(snap DirectorySnapshot) {
		s.onDirectoryReplaced(ctx, snap)
	})
	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()
	s.logger(ctx, "session.started", map[string]any{"session_id": s.id})
	return nil
}

// Close detaches the session from the shared directory.
func (s *Session) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// A directory replacement drops any selection and redraws every marker.
func (s *Session) onDirectoryReplaced(ctx context.Context, snap DirectorySnapshot) {
	if err := s.mapCtrl.ClearSelection(ctx); err != nil {
		s.logger(ctx, "session.refresh.clear_failed", map[string]any{
			"session_id": s.id,
			"error":      err.Error(),
		})
	}
	if err := s.mapCtrl.Rebuild(ctx, snap); err != nil {
		s.logger(ctx, "session.refresh.rebuild_failed", map[string]any{
			"session_id": s.id,
			"error":      err.Error(),
		})
	}
	s.pushList(ctx)
}

// Query returns the session's current search query.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetQuery replaces the search query verbatim and pushes the re-derived
// list view to the surface.
func (s *Session) SetQuery(ctx context.Context, q string) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
	s.pushList(ctx)
}

// ToggleQueryTag applies the single-cardinality tag toggle to the query
// and pushes the re-derived list view to the surface.
func (s *Session) ToggleQueryTag(ctx context.Context, tag string) string {
	s.mu.Lock()
	s.query = ToggleQueryTag(s.query, tag)
	q := s.query
	s.mu.Unlock()
	s.pushList(ctx)
	return q
}

// pushList sends the current query and its filtered records to surfaces
// that render a list. Failures are logged; the websocket read loop notices
// a dead connection on its own.
func (s *Session) pushList(ctx context.Context) {
	if s.list == nil {
		return
	}
	if err := s.list.PushFilterView(s.Query(), s.Filtered()); err != nil {
		s.logger(ctx, "session.list.push_failed", map[string]any{
			"session_id": s.id,
			"error":      err.Error(),
		})
	}
}

// Filtered returns the directory filtered by the session query. The result
// is memoized per (generation, query) pair so repeated reads between
// keystrokes and refreshes do no work.
func (s *Session) Filtered() []ShopRecord {
	snap := s.directory.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memoValid && s.memoGen == snap.Generation && s.memoQuery == s.query {
		return s.memoResult
	}
	s.memoResult = FilterShops(snap.Records, s.query)
	s.memoGen = snap.Generation
	s.memoQuery = s.query
	s.memoValid = true
	return s.memoResult
}

// SelectedID returns the id of the selected shop, or zero.
func (s *Session) SelectedID() int {
	return s.mapCtrl.SelectedID()
}

// ToggleSelect applies the selection toggle law to the given shop and
// reports whether it ended up selected. On narrow viewports a fresh
// selection also collapses the drawer so the map stays visible.
func (s *Session) ToggleSelect(ctx context.Context, shopID int) (bool, error) {
	rec, ok := s.directory.Get(shopID)
	if !ok {
		return false, fmt.Errorf("%w: id %d", ErrShopNotFound, shopID)
	}
	selected, err := s.mapCtrl.ToggleSelect(ctx, rec)
	if err != nil {
		return false, err
	}
	if selected && s.isNarrow() {
		s.drawer.Collapse()
	}
	return selected, nil
}

// ResetView clears the selection and returns the camera to the default
// framing.
func (s *Session) ResetView(ctx context.Context) error {
	return s.mapCtrl.ResetView(ctx)
}

// ZoomIn forwards a zoom-in request.
func (s *Session) ZoomIn() error { return s.mapCtrl.ZoomIn() }

// ZoomOut forwards a zoom-out request.
func (s *Session) ZoomOut() error { return s.mapCtrl.ZoomOut() }

// Resize records the new viewport and tells the surface to remeasure.
func (s *Session) Resize(ctx context.Context, width, height float64) error {
	s.mu.Lock()
	s.viewportW = width
	s.mu.Unlock()
	s.mapCtrl.SetViewportWidth(width)
	s.drawer.SetViewportHeight(height)
	if err := s.mapCtrl.InvalidateSize(); err != nil {
		return err
	}
	s.logger(ctx, "session.resized", map[string]any{
		"session_id": s.id,
		"width":      width,
		"height":     height,
	})
	return nil
}

// DrawerState returns the drawer phase and live height.
func (s *Session) DrawerState() DrawerState { return s.drawer.State() }

// DrawerDragStart begins a drawer drag at pointer y.
func (s *Session) DrawerDragStart(y float64) { s.drawer.DragStart(y) }

// DrawerDragMove tracks the pointer and returns the clamped live height.
func (s *Session) DrawerDragMove(y float64) (float64, error) {
	return s.drawer.DragMove(y)
}

// DrawerDragEnd releases the drag and returns the settled phase.
func (s *Session) DrawerDragEnd(y float64) (DrawerPhase, error) {
	return s.drawer.DragEnd(y)
}

// DrawerTap toggles the drawer between its steady phases. Collapsing by
// tap while a shop is selected also clears the selection, so the two never
// compete for the narrow-viewport screen.
func (s *Session) DrawerTap(ctx context.Context) (DrawerPhase, error) {
	phase := s.drawer.Tap()
	if phase == domain.DrawerCollapsed && s.mapCtrl.SelectedID() != 0 {
		if err := s.mapCtrl.ClearSelection(ctx); err != nil {
			return phase, err
		}
	}
	return phase, nil
}

func (s *Session) isNarrow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewportW > 0 && s.viewportW <= s.mapCtrl.view.NarrowViewportPx
}
