package handler

import (
	"net/http"
	"strings"

	"github.com/abotl/abotl-web/internal/service"
	"github.com/abotl/abotl-web/internal/session"
	ws "github.com/abotl/abotl-web/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams upload progress to the upload page.
type WSHandler struct {
	hub      *service.ProgressHub
	store    session.Store
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *service.ProgressHub, store session.Store, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:      hub,
		store:    store,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// UploadProgressStream godoc
// WS /ws/upload-progress
// Pushes the visitor's upload state and percentage as they change.
func (h *WSHandler) UploadProgressStream(c *gin.Context) {
	// Resolve the visitor before the upgrade; the cookie cannot be set after.
	visitorID := h.store.ID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.hub.Subscribe(visitorID)
	defer unsubscribe()

	wsLog := h.log.With().Str("visitor_id", visitorID).Logger()
	wsLog.Debug().Msg("Progress stream opened")

	if err := ws.WriteProgress(conn, h.hub.Status(visitorID)); err != nil {
		return
	}

	// Only this goroutine writes; the reader hands actions over.
	done := make(chan struct{})
	defer close(done)
	actions := make(chan ws.Action)
	readErr := make(chan error, 1)

	go func() {
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				readErr <- err
				return
			}
			select {
			case actions <- msg.Action:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case st := <-updates:
			if err := ws.WriteProgress(conn, st); err != nil {
				wsLog.Debug().Err(err).Msg("Progress write failed")
				return
			}

		case action := <-actions:
			switch action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionStatus:
				err = ws.WriteProgress(conn, h.hub.Status(visitorID))
			default:
				wsLog.Warn().Str("action", string(action)).Msg("Unknown action")
				err = ws.WriteError(conn, "unknown action: "+string(action))
			}
			if err != nil {
				return
			}

		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
	}
}
