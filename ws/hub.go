package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Envelope 推到前端的统一格式
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub userID -> 连接。同一用户重连时旧连接被顶掉（和原来
// socketId 映射的行为一致）。推送尽力而为：channel 满了直接丢帧踢掉连接，
// 绝不阻塞业务调用方。
type Hub struct {
	mu      sync.Mutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[c.UserID]; ok {
		close(old.Send)
	}
	h.clients[c.UserID] = c
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.clients[c.UserID]; ok && current == c {
		delete(h.clients, c.UserID)
		close(c.Send)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// PushToUser 实现 db.Pusher
func (h *Hub) PushToUser(userID, event string, payload any) {
	b, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("ws: marshal %s: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[userID]
	if !ok {
		return
	}
	select {
	case c.Send <- b:
	default:
		close(c.Send)
		delete(h.clients, userID)
	}
}

// Broadcast 给所有在线连接
func (h *Hub) Broadcast(event string, payload any) {
	b, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("ws: marshal %s: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for uid, c := range h.clients {
		select {
		case c.Send <- b:
		default:
			close(c.Send)
			delete(h.clients, uid)
		}
	}
}
