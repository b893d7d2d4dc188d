package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigilo-backend/internal/config"
	"github.com/vigilo-labs/vigilo-backend/internal/service"
	ws "github.com/vigilo-labs/vigilo-backend/internal/websocket"
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

// WSHandler handles the host live monitor WebSocket.
type WSHandler struct {
	rdb         *redis.Client
	examService *service.ExamService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, examService *service.ExamService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:         rdb,
		examService: examService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// ExamMonitorStream godoc
// WS /ws/v1/host/exams/:exam_id/monitor
// Upgrades to WebSocket and relays live attempt events for one exam.
// Events are fanned out via Redis pub/sub so every server instance sees them.
func (h *WSHandler) ExamMonitorStream(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	if _, err := h.examService.GetByID(c.Request.Context(), examID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "exam not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("exam_id", examID.String()).Logger()
	wsLog.Info().Msg("Host monitor connected")

	// Subscription outlives the request context; the relay goroutine stops
	// when the subscription is closed on return.
	sub := h.rdb.Subscribe(c.Request.Context(), config.CacheKey.ExamMonitorChannel(examID.String()))
	defer sub.Close()

	h.serveMonitor(ws.NewConn(conn), sub.Channel(), wsLog)
}

// serveMonitor runs the connection's read loop while relaying monitor
// events from the given channel. The relay goroutine and the pong path
// both send frames, so every write goes through the locked Conn.
func (h *WSHandler) serveMonitor(conn *ws.Conn, events <-chan *redis.Message, wsLog zerolog.Logger) {
	go h.relayEvents(conn, events, wsLog)

	for {
		var msg ws.RequestEnvelope
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// relayEvents forwards every message published on the exam's monitor channel
// to the connected host until the subscription channel is closed.
func (h *WSHandler) relayEvents(conn *ws.Conn, events <-chan *redis.Message, wsLog zerolog.Logger) {
	for msg := range events {
		resp := ws.AttemptEventResponse{Event: ws.EventAttempt, Payload: msg.Payload}
		if err := conn.WriteTyped(resp); err != nil {
			wsLog.Debug().Err(err).Msg("Relay write failed, stopping")
			return
		}
	}
}
