package services

import (
	"context"
	"errors"
	"testing"

	"github.com/theodesde/retrohunt-app/internal/domain"
)

func newTestSession(t *testing.T, dir DirectoryService, surface MapSurface) *Session {
	t.Helper()
	sess, err := NewSession(SessionDeps{
		Directory: dir,
		Surface:   surface,
		View:      testView(),
		Drawer:    testGeometry(),
	})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(sess.Close)
	return sess
}

func TestSessionStartDrawsDirectory(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	surface := newStubSurface()
	sess := newTestSession(t, dir, surface)

	if sess.ID() == "" {
		t.Error("expected a session id")
	}
	if len(surface.markers) != 3 {
		t.Errorf("expected 3 markers after start, got %d", len(surface.markers))
	}
}

func TestSessionFilteredMemoizes(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	surface := newStubSurface()
	sess := newTestSession(t, dir, surface)

	sess.SetQuery(context.Background(), "retro")
	first := sess.Filtered()
	second := sess.Filtered()
	if len(first) == 0 {
		t.Fatal("expected matches for retro")
	}
	if &first[0] != &second[0] {
		t.Error("expected memoized result for unchanged query and generation")
	}

	sess.SetQuery(context.Background(), "lyon")
	third := sess.Filtered()
	if len(third) != 1 || third[0].ID != 1 {
		t.Fatalf("expected only Game Spirit for lyon, got %v", filteredIDs(third))
	}

	// A directory replacement invalidates the memo through the generation.
	sess.SetQuery(context.Background(), "")
	dir.Replace(testRecords()[:1])
	after := sess.Filtered()
	if len(after) != 1 {
		t.Errorf("expected 1 record after refresh, got %d", len(after))
	}
}

func TestSessionToggleQueryTag(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	sess := newTestSession(t, dir, newStubSurface())

	if got := sess.ToggleQueryTag(context.Background(), "Arcade"); got != "Arcade" {
		t.Fatalf("expected query Arcade, got %q", got)
	}
	if got := sess.ToggleQueryTag(context.Background(), "Arcade"); got != "" {
		t.Fatalf("expected cleared query, got %q", got)
	}
	sess.SetQuery(context.Background(), "lyon")
	if got := sess.ToggleQueryTag(context.Background(), "Figurines"); got != "Figurines" {
		t.Fatalf("expected tag to replace free text, got %q", got)
	}
}

// stubListSurface records filter view pushes alongside the map calls.
type stubListSurface struct {
	*stubSurface
	queries []string
	counts  []int
}

func (s *stubListSurface) PushFilterView(query string, records []ShopRecord) error {
	s.queries = append(s.queries, query)
	s.counts = append(s.counts, len(records))
	return nil
}

func (s *stubListSurface) lastQuery() string { return s.queries[len(s.queries)-1] }
func (s *stubListSurface) lastCount() int    { return s.counts[len(s.counts)-1] }

func TestSessionPushesFilterView(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	surface := &stubListSurface{stubSurface: newStubSurface()}
	sess := newTestSession(t, dir, surface)

	if len(surface.queries) != 1 {
		t.Fatalf("expected one push after start, got %d", len(surface.queries))
	}
	if surface.lastQuery() != "" || surface.lastCount() != 3 {
		t.Fatalf("expected full unfiltered list, got query %q with %d records", surface.lastQuery(), surface.lastCount())
	}

	sess.SetQuery(context.Background(), "lyon")
	if surface.lastQuery() != "lyon" || surface.lastCount() != 1 {
		t.Errorf("expected lyon push with 1 record, got query %q with %d records", surface.lastQuery(), surface.lastCount())
	}

	if got := sess.ToggleQueryTag(context.Background(), "Arcade"); got != "Arcade" {
		t.Fatalf("expected query Arcade, got %q", got)
	}
	if surface.lastQuery() != "Arcade" {
		t.Errorf("expected tag toggle push, got query %q", surface.lastQuery())
	}

	pushes := len(surface.queries)
	dir.Replace(testRecords()[:1])
	if len(surface.queries) != pushes+1 {
		t.Fatalf("expected a push after directory replacement, got %d pushes", len(surface.queries))
	}
	if surface.lastQuery() != "Arcade" {
		t.Errorf("expected query preserved across refresh, got %q", surface.lastQuery())
	}
}

func TestSessionToggleSelectUnknownShop(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	sess := newTestSession(t, dir, newStubSurface())

	if _, err := sess.ToggleSelect(context.Background(), 99); !errors.Is(err, ErrShopNotFound) {
		t.Errorf("expected ErrShopNotFound, got %v", err)
	}
}

func TestSessionNarrowSelectionCollapsesDrawer(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	surface := newStubSurface()
	sess := newTestSession(t, dir, surface)

	if err := sess.Resize(context.Background(), 390, 720); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got, err := sess.DrawerTap(context.Background()); err != nil || got != domain.DrawerExpanded {
		t.Fatalf("expected expanded drawer, got %s (err %v)", got, err)
	}

	selected, err := sess.ToggleSelect(context.Background(), 1)
	if err != nil {
		t.Fatalf("ToggleSelect: %v", err)
	}
	if !selected {
		t.Fatal("expected shop selected")
	}
	if got := sess.DrawerState().Phase; got != domain.DrawerCollapsed {
		t.Errorf("expected drawer collapsed after selection, got %s", got)
	}
}

func TestSessionTapCollapseClearsSelection(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	sess := newTestSession(t, dir, newStubSurface())

	if _, err := sess.ToggleSelect(context.Background(), 1); err != nil {
		t.Fatalf("ToggleSelect: %v", err)
	}
	if _, err := sess.DrawerTap(context.Background()); err != nil {
		t.Fatalf("DrawerTap: %v", err)
	}
	if sess.SelectedID() != 1 {
		t.Fatalf("expanding should keep selection, got %d", sess.SelectedID())
	}

	phase, err := sess.DrawerTap(context.Background())
	if err != nil {
		t.Fatalf("DrawerTap: %v", err)
	}
	if phase != domain.DrawerCollapsed {
		t.Fatalf("expected collapsed drawer, got %s", phase)
	}
	if sess.SelectedID() != 0 {
		t.Errorf("collapsing by tap should clear selection, got %d", sess.SelectedID())
	}
}

func TestSessionWideSelectionKeepsDrawer(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	sess := newTestSession(t, dir, newStubSurface())

	if err := sess.Resize(context.Background(), 1440, 900); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if _, err := sess.DrawerTap(context.Background()); err != nil {
		t.Fatalf("DrawerTap: %v", err)
	}

	if _, err := sess.ToggleSelect(context.Background(), 1); err != nil {
		t.Fatalf("ToggleSelect: %v", err)
	}
	if got := sess.DrawerState().Phase; got != domain.DrawerExpanded {
		t.Errorf("expected drawer untouched on wide viewport, got %s", got)
	}
}

func TestSessionDirectoryRefreshClearsSelection(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	surface := newStubSurface()
	sess := newTestSession(t, dir, surface)

	if _, err := sess.ToggleSelect(context.Background(), 2); err != nil {
		t.Fatalf("ToggleSelect: %v", err)
	}
	if sess.SelectedID() != 2 {
		t.Fatalf("expected selection 2, got %d", sess.SelectedID())
	}

	dir.Replace(testRecords())
	if sess.SelectedID() != 0 {
		t.Errorf("expected selection cleared by refresh, got %d", sess.SelectedID())
	}
	if len(surface.markers) != 3 {
		t.Errorf("expected markers rebuilt, got %d", len(surface.markers))
	}
}

func TestSessionCloseDetachesFromDirectory(t *testing.T) {
	dir := NewDirectoryService()
	dir.Replace(testRecords())
	surface := newStubSurface()
	sess := newTestSession(t, dir, surface)

	sess.Close()
	before := len(surface.calls)
	dir.Replace(testRecords())
	if len(surface.calls) != before {
		t.Error("expected no surface activity after close")
	}
}
