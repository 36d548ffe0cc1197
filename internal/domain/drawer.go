package domain

// DrawerPhase enumerates the states of the mobile bottom drawer.
type DrawerPhase string

const (
	DrawerCollapsed DrawerPhase = "collapsed"
	DrawerExpanded  DrawerPhase = "expanded"
	DrawerDragging  DrawerPhase = "dragging"
)

// DrawerState describes the drawer at a point in time. LiveHeightPx is only
// meaningful while Phase is DrawerDragging; at rest the height derives from
// the steady phase alone.
type DrawerState struct {
	Phase        DrawerPhase `json:"phase"`
	LiveHeightPx float64     `json:"liveHeightPx,omitempty"`
}

// Steady reports whether the drawer rests in one of its two known heights.
func (s DrawerState) Steady() bool {
	return s.Phase == DrawerCollapsed || s.Phase == DrawerExpanded
}
