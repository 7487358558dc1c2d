package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"telegram_rpg/internal/service"
	"telegram_rpg/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type WebSocketHandler struct {
	hub *service.RoomHub
	log logger.Logger
}

func NewWebSocketHandler(hub *service.RoomHub, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		log: log,
	}
}

// wsConn оборачивает gorilla-соединение под контракт RoomConn.
// Запись сериализована мьютексом: в соединение пишут и цикл чтения,
// и рассылки из чужих горутин.
type wsConn struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// incomingEvent — входящий кадр: имя события и сырая нагрузка.
type incomingEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// HandleChat поднимает соединение до WebSocket и крутит цикл чтения.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wc := &wsConn{id: uuid.NewString(), conn: conn}
	h.hub.Register(wc)
	h.log.Debug("Connection established", "conn_id", wc.id)

	defer func() {
		h.hub.Disconnect(wc)
		conn.Close()
		h.log.Debug("Connection closed", "conn_id", wc.id)
	}()

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Пинги держат соединение живым, пока клиент молчит
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := wc.ping(); err != nil {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	ctx := c.Request.Context()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Unexpected close", "conn_id", wc.id, "error", err)
			}
			return
		}

		var event incomingEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			h.log.Debug("Malformed frame", "conn_id", wc.id, "error", err)
			continue
		}

		switch event.Event {
		case service.EventJoinLocation:
			var payload service.JoinLocationPayload
			if err := json.Unmarshal(event.Data, &payload); err != nil {
				continue
			}
			if err := h.hub.JoinLocation(ctx, wc, payload); err != nil {
				h.log.Debug("Join rejected", "conn_id", wc.id, "error", err)
			}

		case service.EventSendMessage:
			var payload service.SendMessagePayload
			if err := json.Unmarshal(event.Data, &payload); err != nil {
				continue
			}
			if err := h.hub.SendMessage(ctx, wc, payload); err != nil {
				h.log.Debug("Send rejected", "conn_id", wc.id, "error", err)
			}

		default:
			h.log.Debug("Unknown event", "conn_id", wc.id, "event", event.Event)
		}
	}
}
