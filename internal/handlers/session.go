package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/theodesde/retrohunt-app/internal/platform/httpx"
	"github.com/theodesde/retrohunt-app/internal/platform/requestctx"
	"github.com/theodesde/retrohunt-app/internal/services"
	"github.com/theodesde/retrohunt-app/internal/surface"
)

// SessionHandlers upgrades clients to a live browsing session: the server
// streams map operations down the socket and consumes input events coming
// back.
type SessionHandlers struct {
	directory services.DirectoryService
	view      services.MapViewConfig
	drawer    services.DrawerGeometry
	upgrader  websocket.Upgrader
}

// SessionOption customises construction of SessionHandlers.
type SessionOption func(*SessionHandlers)

// WithSessionDirectory injects the directory service dependency.
func WithSessionDirectory(dir services.DirectoryService) SessionOption {
	return func(h *SessionHandlers) {
		h.directory = dir
	}
}

// WithSessionMapView sets the camera and layout constants for new sessions.
func WithSessionMapView(view services.MapViewConfig) SessionOption {
	return func(h *SessionHandlers) {
		h.view = view
	}
}

// WithSessionDrawer sets the drawer geometry for new sessions.
func WithSessionDrawer(geom services.DrawerGeometry) SessionOption {
	return func(h *SessionHandlers) {
		h.drawer = geom
	}
}

// WithSessionCheckOrigin overrides the websocket origin check.
func WithSessionCheckOrigin(check func(r *http.Request) bool) SessionOption {
	return func(h *SessionHandlers) {
		h.upgrader.CheckOrigin = check
	}
}

// NewSessionHandlers constructs the live session endpoint.
func NewSessionHandlers(opts ...SessionOption) *SessionHandlers {
	h := &SessionHandlers{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the session endpoint on the given router.
func (h *SessionHandlers) Routes(r chi.Router) {
	r.Get("/", h.serve)
}

func (h *SessionHandlers) serve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := requestctx.Logger(ctx)

	if h.directory == nil {
		httpx.WriteError(ctx, w, httpx.NewError("session_unavailable", "session dependencies not configured", http.StatusServiceUnavailable))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake failure to the client.
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	surf := surface.NewStreamSurface(conn)
	defer surf.Close()

	session, err := services.NewSession(services.SessionDeps{
		Directory: h.directory,
		Surface:   surf,
		View:      h.view,
		Drawer:    h.drawer,
		Logger:    zapEventLogger(logger),
	})
	if err != nil {
		logger.Error("session construction failed", zap.Error(err))
		return
	}
	if err := session.Start(ctx); err != nil {
		logger.Error("session start failed", zap.String("session_id", session.ID()), zap.Error(err))
		session.Close()
		return
	}

	pump, err := surface.NewPump(session, surf, logger)
	if err != nil {
		logger.Error("session pump construction failed", zap.Error(err))
		session.Close()
		return
	}
	if err := pump.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Warn("session ended with error", zap.String("session_id", session.ID()), zap.Error(err))
	}
}

// zapEventLogger adapts a request-scoped zap logger to the services event
// logger shape.
func zapEventLogger(logger *zap.Logger) services.LogFunc {
	return func(ctx context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for k, v := range fields {
			zapFields = append(zapFields, zap.Any(k, v))
		}
		logger.Info(event, zapFields...)
	}
}
