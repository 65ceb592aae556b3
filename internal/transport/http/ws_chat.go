package http

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"atpl-quiz-service/internal/domain"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// chatEvent is the frame pushed to every connected client whenever the
// chat window changes.
type chatEvent struct {
	Type     string               `json:"type"`
	Messages []domain.ChatMessage `json:"messages"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// ChatHub fans chat updates out to connected websocket clients. Slow
// clients have stale frames dropped rather than blocking the hub.
type ChatHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
	log     *zap.Logger
}

func NewChatHub(log *zap.Logger) *ChatHub {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHub{
		clients: make(map[*wsClient]struct{}),
		log:     log,
	}
}

func (h *ChatHub) Broadcast(messages []domain.ChatMessage) {
	payload, err := json.Marshal(chatEvent{Type: "chat", Messages: messages})
	if err != nil {
		h.log.Error("marshal chat event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
		}
	}
}

func (h *ChatHub) register(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

func (h *ChatHub) unregister(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

type wsInbound struct {
	Message string `json:"message"`
}

// serveChat upgrades the connection, replays the current chat window and
// then relays inbound messages through the chat log.
func (h *Handler) serveChat(c *gin.Context) {
	sess, err := h.service.Resume(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.hub.register(client)
	go client.writeLoop()

	ctx := c.Request.Context()
	if recent, err := h.service.Chat().Recent(ctx); err == nil {
		if payload, err := json.Marshal(chatEvent{Type: "chat", Messages: recent}); err == nil {
			select {
			case client.send <- payload:
			default:
			}
		}
	}

	defer func() {
		h.hub.unregister(client)
		conn.Close()
	}()

	for {
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read failed", zap.String("user_id", sess.UserID), zap.Error(err))
			}
			return
		}

		posted, err := h.service.Chat().Post(ctx, sess.UserID, in.Message)
		if err != nil {
			h.log.Error("post chat message", zap.String("user_id", sess.UserID), zap.Error(err))
			continue
		}
		if !posted {
			continue
		}
		chatMessagesPosted.Inc()

		recent, err := h.service.Chat().Recent(ctx)
		if err != nil {
			h.log.Error("load chat window", zap.Error(err))
			continue
		}
		h.hub.Broadcast(recent)
	}
}

func (c *wsClient) writeLoop() {
	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
