package push

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/auralis/auralis-backend/internal/common"
	"github.com/auralis/auralis-backend/internal/domain/entities"
	"github.com/auralis/auralis-backend/internal/recommend"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 512
)

// WebSocketHandler accepte les connexions du canal de push
type WebSocketHandler struct {
	service  *Service
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler crée le handler du canal de push. L'origine autorisée
// est un réglage de déploiement.
func NewWebSocketHandler(service *Service, corsOrigin string, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if corsOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == corsOrigin
			},
		},
		logger: logger,
	}
}

// HandleWebSocket gère une nouvelle connexion. L'identifiant utilisateur
// arrive dans la query du handshake (vérifié en bordure); une connexion sans
// identifiant est rejetée.
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		userID, _ = common.GetExternalUserID(c)
	}
	if userID == "" || len(userID) > entities.MaxExternalUserIDLen {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "userId required"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	session := NewSession(uuid.NewString(), userID, conn, h.service.cfg.SendBuffer)
	h.service.OnConnect(session)

	go h.writePump(session)
	go h.readPump(session)
}

// readPump lit les messages du client: ping et request-refresh
func (h *WebSocketHandler) readPump(session *Session) {
	defer func() {
		h.service.OnDisconnect(session)
		session.conn.Close()
	}()

	session.conn.SetReadLimit(maxMessageSize)
	_ = session.conn.SetReadDeadline(time.Now().Add(pongWait))
	session.conn.SetPongHandler(func(string) error {
		return session.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var message struct {
			Event string `json:"event"`
		}
		if err := session.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("WebSocket read error",
					zap.String("session_id", session.ID),
					zap.Error(err),
				)
			}
			return
		}

		switch message.Event {
		case "ping":
			session.emit(&Event{Event: EventPong}, h.service.cfg.EmitTimeout)
		case "request-refresh":
			h.service.TriggerRefreshAsync(session.UserID, recommend.ReasonManualRefresh)
		default:
			h.logger.Debug("Unknown client event",
				zap.String("session_id", session.ID),
				zap.String("event", message.Event),
			)
		}
	}
}

// writePump écrit les événements vers le client
func (h *WebSocketHandler) writePump(session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		session.conn.Close()
	}()

	for {
		select {
		case event, ok := <-session.send:
			_ = session.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = session.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := session.conn.WriteJSON(event); err != nil {
				h.logger.Warn("Failed to write WebSocket message",
					zap.String("session_id", session.ID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			_ = session.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := session.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
