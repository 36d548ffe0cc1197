package services

import (
	"errors"
	"sync"

	"github.com/theodesde/retrohunt-app/internal/domain"
)

// ErrDrawerNotDragging indicates a move or release arrived without a
// preceding drag start. The event is ignored by callers.
var ErrDrawerNotDragging = errors.New("drawer: not dragging")

// DrawerGeometry fixes the vertical bounds of the bottom drawer.
type DrawerGeometry struct {
	// MinHeightPx is the collapsed handle height.
	MinHeightPx float64
	// MaxFraction of the viewport height the expanded drawer may cover.
	MaxFraction float64
	// SnapThresholdPx is the minimum drag travel that commits a phase change.
	SnapThresholdPx float64
}

// DrawerController is the gesture state machine for the narrow-viewport
// bottom drawer. All heights are pixels; drag coordinates grow downward, so
// an upward drag has end y smaller than start y.
type DrawerController struct {
	mu       sync.Mutex
	geom     DrawerGeometry
	viewport float64

	phase       DrawerPhase
	resting     DrawerPhase
	startY      float64
	startHeight float64
	liveHeight  float64
}

// NewDrawerController builds a controller resting in the collapsed phase.
func NewDrawerController(geom DrawerGeometry) (*DrawerController, error) {
	if geom.MinHeightPx <= 0 {
		return nil, errors.New("drawer controller: min height must be positive")
	}
	if geom.MaxFraction <= 0 || geom.MaxFraction > 1 {
		return nil, errors.New("drawer controller: max fraction must be in (0,1]")
	}
	if geom.SnapThresholdPx < 0 {
		return nil, errors.New("drawer controller: snap threshold must not be negative")
	}
	return &DrawerController{
		geom:    geom,
		phase:   domain.DrawerCollapsed,
		resting: domain.DrawerCollapsed,
	}, nil
}

// SetViewportHeight records the current viewport height used to derive the
// expanded height bound.
func (c *DrawerController) SetViewportHeight(h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h < 0 {
		h = 0
	}
	c.viewport = h
}

// State returns the current phase and, while dragging, the live height.
func (c *DrawerController) State() DrawerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := DrawerState{Phase: c.phase}
	if c.phase == domain.DrawerDragging {
		st.LiveHeightPx = c.liveHeight
	} else {
		st.LiveHeightPx = c.heightForPhase(c.phase)
	}
	return st
}

// DragStart enters the dragging phase from the current resting height.
func (c *DrawerController) DragStart(y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.DrawerDragging {
		c.resting = c.phase
	}
	c.startY = y
	c.startHeight = c.heightForPhase(c.resting)
	c.liveHeight = c.startHeight
	c.phase = domain.DrawerDragging
}

// DragMove tracks the pointer and returns the clamped live height.
func (c *DrawerController) DragMove(y float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.DrawerDragging {
		return 0, ErrDrawerNotDragging
	}
	c.liveHeight = c.clamp(c.startHeight + (c.startY - y))
	return c.liveHeight, nil
}

// DragEnd leaves the dragging phase. A net travel beyond the snap threshold
// commits to the phase in the travel direction; anything shorter reverts to
// the phase the drag started from.
func (c *DrawerController) DragEnd(y float64) (DrawerPhase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != domain.DrawerDragging {
		return c.phase, ErrDrawerNotDragging
	}
	travel := c.startY - y
	switch {
	case travel > c.geom.SnapThresholdPx:
		c.phase = domain.DrawerExpanded
	case travel < -c.geom.SnapThresholdPx:
		c.phase = domain.DrawerCollapsed
	default:
		c.phase = c.resting
	}
	c.resting = c.phase
	c.liveHeight = c.heightForPhase(c.phase)
	return c.phase, nil
}

// Tap toggles between the two steady phases. A tap during a drag is ignored.
func (c *DrawerController) Tap() DrawerPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase == domain.DrawerDragging {
		return c.phase
	}
	if c.phase == domain.DrawerCollapsed {
		c.phase = domain.DrawerExpanded
	} else {
		c.phase = domain.DrawerCollapsed
	}
	c.resting = c.phase
	return c.phase
}

// Collapse forces the collapsed phase, cancelling any in-flight drag.
func (c *DrawerController) Collapse() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = domain.DrawerCollapsed
	c.resting = domain.DrawerCollapsed
}

func (c *DrawerController) clamp(h float64) float64 {
	min := c.geom.MinHeightPx
	max := c.maxHeight()
	if max < min {
		max = min
	}
	if h < min {
		return min
	}
	if h > max {
		return max
	}
	return h
}

func (c *DrawerController) maxHeight() float64 {
	return c.viewport * c.geom.MaxFraction
}

func (c *DrawerController) heightForPhase(p DrawerPhase) float64 {
	if p == domain.DrawerExpanded {
		max := c.maxHeight()
		if max < c.geom.MinHeightPx {
			return c.geom.MinHeightPx
		}
		return max
	}
	return c.geom.MinHeightPx
}
