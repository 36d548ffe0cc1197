package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// MapViewConfig carries the camera and layout constants for one map view.
type MapViewConfig struct {
	DefaultCenter     LatLng
	DefaultZoom       int
	SelectionZoom     int
	FlyDuration       time.Duration
	TileLayer         TileLayer
	NarrowViewportPx  float64
	SelectionOffsetPx float64
}

// MapSyncControllerDeps bundles collaborators required to construct a map sync controller.
type MapSyncControllerDeps struct {
	Surface MapSurface
	View    MapViewConfig
	Logger  LogFunc
}

// MapSyncController reconciles the shop directory and the selection onto a
// map surface. It owns marker lifecycles: every directory replacement tears
// down all markers and recreates them, selection changes restyle only the
// affected pair.
type MapSyncController struct {
	surface MapSurface
	view    MapViewConfig
	logger  LogFunc
	policy  *bluemonday.Policy

	mu         sync.Mutex
	markers    map[int]Marker
	selectedID int
	viewportW  float64
}

// NewMapSyncController validates deps and returns an idle controller; call
// Start once the surface is ready to draw.
func NewMapSyncController(deps MapSyncControllerDeps) (*MapSyncController, error) {
	if deps.Surface == nil {
		return nil, errors.New("map sync controller: surface is required")
	}
	if deps.View.DefaultZoom <= 0 || deps.View.SelectionZoom <= 0 {
		return nil, errors.New("map sync controller: zoom levels must be positive")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &MapSyncController{
		surface: deps.Surface,
		view:    deps.View,
		logger:  logger,
		policy:  bluemonday.StrictPolicy(),
		markers: make(map[int]Marker),
	}, nil
}

// Start initializes the surface camera and tile layer and draws the initial
// marker set.
func (c *MapSyncController) Start(ctx context.Context, snap DirectorySnapshot) error {
	if err := c.surface.Init(c.view.DefaultCenter, c.view.DefaultZoom); err != nil {
		return fmt.Errorf("map sync: init surface: %w", err)
	}
	if err := c.surface.SetTileLayer(c.view.TileLayer); err != nil {
		return fmt.Errorf("map sync: set tile layer: %w", err)
	}
	return c.Rebuild(ctx, snap)
}

// SetViewportWidth records the viewport width used for the narrow-layout
// camera offset.
func (c *MapSyncController) SetViewportWidth(w float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if w < 0 {
		w = 0
	}
	c.viewportW = w
}

// SelectedID returns the shop id the controller currently highlights, or
// zero when nothing is selected.
func (c *MapSyncController) SelectedID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedID
}

// Rebuild removes every marker and recreates one per record with finite
// coordinates. A selection pointing at a record that no longer exists is
// dropped and the camera returns home.
func (c *MapSyncController) Rebuild(ctx context.Context, snap DirectorySnapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.markers {
		if err := c.surface.RemoveMarker(id); err != nil {
			return fmt.Errorf("map sync: remove marker %d: %w", id, err)
		}
		delete(c.markers, id)
	}

	selectionSurvives := false
	for _, rec := range snap.Records {
		if !rec.HasFiniteCoordinates() {
			c.logger(ctx, "map.marker.skipped", map[string]any{"shop_id": rec.ID})
			continue
		}
		style := MarkerNormal
		if rec.ID == c.selectedID {
			style = MarkerSelected
			selectionSurvives = true
		}
		m := Marker{
			ShopID:      rec.ID,
			Position:    rec.Position(),
			Style:       style,
			TooltipHTML: c.tooltipHTML(rec),
		}
		if err := c.surface.AddMarker(m); err != nil {
			return fmt.Errorf("map sync: add marker %d: %w", rec.ID, err)
		}
		c.markers[rec.ID] = m
	}

	if c.selectedID != 0 && !selectionSurvives {
		c.selectedID = 0
		if err := c.flyHomeLocked(); err != nil {
			return err
		}
	}
	c.logger(ctx, "map.markers.rebuilt", map[string]any{
		"markers":    len(c.markers),
		"generation": snap.Generation,
	})
	return nil
}

// ToggleSelect applies the selection toggle law: selecting the already
// selected shop deselects it and returns the camera home, selecting any
// other shop restyles markers, flies the camera to it, and opens its
// tooltip. It reports whether the shop ended up selected.
func (c *MapSyncController) ToggleSelect(ctx context.Context, rec ShopRecord) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec.ID == c.selectedID {
		if err := c.restyleLocked(rec.ID, MarkerNormal); err != nil {
			return false, err
		}
		if err := c.surface.CloseTooltip(rec.ID); err != nil {
			return false, fmt.Errorf("map sync: close tooltip: %w", err)
		}
		c.selectedID = 0
		if err := c.flyHomeLocked(); err != nil {
			return false, err
		}
		c.logger(ctx, "map.selection.cleared", map[string]any{"shop_id": rec.ID})
		return false, nil
	}

	if prev := c.selectedID; prev != 0 {
		if err := c.restyleLocked(prev, MarkerNormal); err != nil {
			return false, err
		}
		if err := c.surface.CloseTooltip(prev); err != nil {
			return false, fmt.Errorf("map sync: close tooltip: %w", err)
		}
	}
	c.selectedID = rec.ID
	if err := c.restyleLocked(rec.ID, MarkerSelected); err != nil {
		return false, err
	}
	if err := c.flyToSelectionLocked(rec); err != nil {
		return false, err
	}
	if _, ok := c.markers[rec.ID]; ok {
		if err := c.surface.OpenTooltip(rec.ID); err != nil {
			return false, fmt.Errorf("map sync: open tooltip: %w", err)
		}
	}
	c.logger(ctx, "map.selection.set", map[string]any{"shop_id": rec.ID})
	return true, nil
}

// ClearSelection deselects whatever is selected and returns the camera home.
// It is a no-op when nothing is selected.
func (c *MapSyncController) ClearSelection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selectedID == 0 {
		return nil
	}
	prev := c.selectedID
	if err := c.restyleLocked(prev, MarkerNormal); err != nil {
		return err
	}
	if err := c.surface.CloseTooltip(prev); err != nil {
		return fmt.Errorf("map sync: close tooltip: %w", err)
	}
	c.selectedID = 0
	if err := c.flyHomeLocked(); err != nil {
		return err
	}
	c.logger(ctx, "map.selection.cleared", map[string]any{"shop_id": prev})
	return nil
}

// ResetView clears any selection and flies the camera back to the default
// framing even when nothing was selected.
func (c *MapSyncController) ResetView(ctx context.Context) error {
	c.mu.Lock()
	selected := c.selectedID
	c.mu.Unlock()
	if selected != 0 {
		return c.ClearSelection(ctx)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flyHomeLocked()
}

// ZoomIn forwards a zoom-in request to the surface.
func (c *MapSyncController) ZoomIn() error {
	return c.surface.ZoomIn()
}

// ZoomOut forwards a zoom-out request to the surface.
func (c *MapSyncController) ZoomOut() error {
	return c.surface.ZoomOut()
}

// InvalidateSize tells the surface its container was resized.
func (c *MapSyncController) InvalidateSize() error {
	return c.surface.InvalidateSize()
}

func (c *MapSyncController) restyleLocked(shopID int, style MarkerStyle) error {
	m, ok := c.markers[shopID]
	if !ok || m.Style == style {
		return nil
	}
	if err := c.surface.RemoveMarker(shopID); err != nil {
		return fmt.Errorf("map sync: remove marker %d: %w", shopID, err)
	}
	m.Style = style
	if err := c.surface.AddMarker(m); err != nil {
		return fmt.Errorf("map sync: add marker %d: %w", shopID, err)
	}
	c.markers[shopID] = m
	return nil
}

func (c *MapSyncController) flyHomeLocked() error {
	if err := c.surface.FlyTo(c.view.DefaultCenter, c.view.DefaultZoom, c.view.FlyDuration); err != nil {
		return fmt.Errorf("map sync: fly home: %w", err)
	}
	return nil
}

// flyToSelectionLocked centers the camera on the record. On narrow viewports
// the target is shifted downward in pixel space so the marker sits above the
// bottom overlay instead of underneath it.
func (c *MapSyncController) flyToSelectionLocked(rec ShopRecord) error {
	target := rec.Position()
	if c.viewportW > 0 && c.viewportW <= c.view.NarrowViewportPx && c.view.SelectionOffsetPx > 0 {
		pt := c.surface.Project(target, c.view.SelectionZoom)
		pt.Y += c.view.SelectionOffsetPx
		target = c.surface.Unproject(pt, c.view.SelectionZoom)
	}
	if err := c.surface.FlyTo(target, c.view.SelectionZoom, c.view.FlyDuration); err != nil {
		return fmt.Errorf("map sync: fly to shop %d: %w", rec.ID, err)
	}
	return nil
}

// tooltipHTML renders the marker tooltip from feed-sourced fields, pushing
// each value through the sanitizer so feed content cannot inject markup.
func (c *MapSyncController) tooltipHTML(rec ShopRecord) string {
	var b strings.Builder
	b.WriteString("<strong>")
	b.WriteString(c.policy.Sanitize(rec.Name))
	b.WriteString("</strong>")
	if city := strings.TrimSpace(rec.City); city != "" {
		b.WriteString("<br>")
		b.WriteString(c.policy.Sanitize(city))
	}
	if spec := strings.TrimSpace(rec.Specialty); spec != "" {
		b.WriteString("<br><em>")
		b.WriteString(c.policy.Sanitize(spec))
		b.WriteString("</em>")
	}
	return b.String()
}
