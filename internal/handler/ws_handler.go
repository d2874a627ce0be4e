package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/onboardly/onboardly-backend/internal/config"
	"github.com/onboardly/onboardly-backend/internal/middleware"
	"github.com/onboardly/onboardly-backend/internal/service"
	ws "github.com/onboardly/onboardly-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
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

// WSHandler handles WebSocket assignment progress streaming.
type WSHandler struct {
	rdb               *redis.Client
	assignmentService *service.AssignmentService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, assignmentService *service.AssignmentService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:               rdb,
		assignmentService: assignmentService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// AssignmentStream godoc
// WS /ws/v1/employee/assignments/:assignment_id/stream
// Upgrades to WebSocket and forwards progress events for the assignment as
// they are published. Only the assignment's owner may subscribe.
func (h *WSHandler) AssignmentStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	assignmentID, err := uuid.Parse(c.Param("assignment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment ID"})
		return
	}

	// Owner check before upgrading.
	if _, err := h.assignmentService.GetDetail(c.Request.Context(), assignmentID, claims); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "assignment not accessible"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("assignment_id", assignmentID.String()).
		Logger()

	wsLog.Info().Msg("Employee connected")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channel := config.CacheKey.AssignmentEventsChannel(assignmentID.String())
	pubsub := h.rdb.Subscribe(ctx, channel)
	defer pubsub.Close()

	// The pubsub forwarder and the read loop both write to the socket;
	// gorilla connections allow one writer at a time.
	var writeMu sync.Mutex

	// Forward published events to the socket.
	go func() {
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					wsLog.Warn().Err(err).Msg("PubSub receive error")
				}
				return
			}
			writeMu.Lock()
			err = ws.WriteRaw(conn, []byte(msg.Payload))
			writeMu.Unlock()
			if err != nil {
				wsLog.Debug().Err(err).Msg("Write failed, closing stream")
				cancel()
				return
			}
		}
	}()

	// Read loop: ping keepalives and close detection.
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

		writeMu.Lock()
		switch msg.Action {
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
		writeMu.Unlock()
	}
}
