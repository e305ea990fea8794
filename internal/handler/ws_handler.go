package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/learnmate/learnmate-backend/internal/service"
	ws "github.com/learnmate/learnmate-backend/internal/websocket"
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

// WSHandler streams class events to connected clients.
type WSHandler struct {
	eventService *service.EventService
	log          zerolog.Logger
	upgrader     websocket.Upgrader
	pingPeriod   time.Duration
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(eventService *service.EventService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		eventService: eventService,
		log:          log.With().Str("component", "ws_handler").Logger(),
		upgrader:     buildUpgrader(allowedOrigins),
		pingPeriod:   ws.PingPeriod,
	}
}

// ClassStream godoc
// WS /ws/v1/classes/:id/stream?token=
// Upgrades to WebSocket and forwards every event published for the class.
func (h *WSHandler) ClassStream(c *gin.Context) {
	ident, ok := identity(c)
	if !ok {
		return
	}
	classID, ok := paramID(c, "id")
	if !ok {
		return
	}

	// Subscribe before upgrading so authorization failures are plain HTTP errors.
	sub, err := h.eventService.Subscribe(c.Request.Context(), ident, classID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Close()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", ident.UserID.String()).
		Int64("class_id", classID).
		Logger()
	wsLog.Info().Msg("Client connected")

	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, ClassID: classID}); err != nil {
		return
	}

	ws.KeepAlive(conn)

	// The reader owns no writes; it hands pong requests to the writer loop.
	done := make(chan struct{})
	pongs := make(chan struct{}, 1)
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			switch msg.Action {
			case ws.ActionPing:
				select {
				case pongs <- struct{}{}:
				default:
				}
			default:
				wsLog.Debug().Str("action", string(msg.Action)).Msg("Ignoring client message")
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case payload, ok := <-sub.Messages():
			if !ok {
				ws.WriteError(conn, "event stream closed")
				return
			}
			if err := ws.WriteClassEvent(conn, payload); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		case <-pongs:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}
