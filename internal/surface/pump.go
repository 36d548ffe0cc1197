package surface

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/theodesde/retrohunt-app/internal/services"
)

// Pump runs the event loop for one connected client: it reads input events
// off the surface and applies them to the session until the client goes
// away.
type Pump struct {
	session *services.Session
	surface *StreamSurface
	logger  *zap.Logger
}

// NewPump wires a session to its stream surface.
func NewPump(session *services.Session, surf *StreamSurface, logger *zap.Logger) (*Pump, error) {
	if session == nil {
		return nil, errors.New("surface: session is required")
	}
	if surf == nil {
		return nil, errors.New("surface: stream surface is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pump{session: session, surface: surf, logger: logger}, nil
}

// Run reads events until the context ends or the connection closes. A
// normal client disconnect returns nil.
func (p *Pump) Run(ctx context.Context) error {
	defer p.session.Close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev, err := p.surface.ReadEvent()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				return nil
			}
			return fmt.Errorf("surface: read event: %w", err)
		}
		if err := p.dispatch(ctx, ev); err != nil {
			p.logger.Warn("event handling failed",
				zap.String("session_id", p.session.ID()),
				zap.String("event", ev.Type),
				zap.Error(err),
			)
		}
	}
}

func (p *Pump) dispatch(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventHello, EventResize:
		return p.session.Resize(ctx, ev.Width, ev.Height)
	case EventMarkerClick, EventListClick:
		if _, err := p.session.ToggleSelect(ctx, ev.ShopID); err != nil {
			return err
		}
		// Selecting on a narrow viewport collapses the drawer server-side;
		// the client only learns about it through a drawerState op.
		return p.surface.PushDrawerState(p.session.DrawerState())
	case EventTagClick:
		p.session.ToggleQueryTag(ctx, ev.Tag)
		return nil
	case EventSearch:
		p.session.SetQuery(ctx, ev.Query)
		return nil
	case EventDrawerDragStart:
		p.session.DrawerDragStart(ev.Y)
		return p.surface.PushDrawerState(p.session.DrawerState())
	case EventDrawerDragMove:
		if _, err := p.session.DrawerDragMove(ev.Y); err != nil {
			return err
		}
		return p.surface.PushDrawerState(p.session.DrawerState())
	case EventDrawerDragEnd:
		if _, err := p.session.DrawerDragEnd(ev.Y); err != nil {
			return err
		}
		return p.surface.PushDrawerState(p.session.DrawerState())
	case EventDrawerTap:
		if _, err := p.session.DrawerTap(ctx); err != nil {
			return err
		}
		return p.surface.PushDrawerState(p.session.DrawerState())
	case EventResetView:
		return p.session.ResetView(ctx)
	case EventZoomIn:
		return p.session.ZoomIn()
	case EventZoomOut:
		return p.session.ZoomOut()
	default:
		return fmt.Errorf("surface: unknown event type %q", ev.Type)
	}
}
