package ws

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/registry"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxInbound = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type inbound struct {
	Type string `json:"type"`
}

// HandleConnection upgrades the request and streams events until the client
// goes away
func (h *Hub) HandleConnection(c *gin.Context) {
	var types []registry.EventType
	for _, t := range strings.Split(c.Query("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, registry.EventType(t))
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := h.add(types)
	h.logger.Debug("WebSocket client connected", zap.String("client", cl.id))

	// replies go through send too so that only writePump writes
	go h.writePump(conn, cl)
	h.readPump(conn, cl)
}

func (h *Hub) readPump(conn *websocket.Conn, cl *client) {
	defer func() {
		h.remove(cl.id)
		conn.Close()
		h.logger.Debug("WebSocket client disconnected", zap.String("client", cl.id))
	}()

	conn.SetReadLimit(maxInbound)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		h.metrics.RecordWSMessage("in", msg.Type)

		var reply Message
		switch msg.Type {
		case "ping":
			reply = Message{Type: "pong"}
		default:
			reply = Message{Type: "error", Error: "unknown message type"}
		}
		data, _ := encode(reply)
		if !h.trySend(cl, data) {
			return
		}
	}
}

func (h *Hub) trySend(cl *client, data []byte) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cl.closed {
		return false
	}
	select {
	case cl.send <- data:
		return true
	default:
		h.removeLocked(cl.id)
		return false
	}
}

func (h *Hub) writePump(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case data, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
