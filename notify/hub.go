// Package notify pushes orchestrator events to WebSocket clients of the local API.
package notify

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

// MaxPayloadSize caps one notification; longer messages are cut.
const MaxPayloadSize = 32 * 1024 // 32KB

// MaxMessageLen is where an oversized Message is cut.
const MaxMessageLen = 1024

// WriteTimeout bounds one write to a slow client.
var WriteTimeout = 3 * time.Second

// Hub holds WebSocket connections and broadcasts notifications to all of them.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]struct{}
	// a websocket.Conn supports one writer at a time
	writeMu sync.Mutex
}

func New() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the notification as JSON to every client. Clients that fail a write are
// dropped.
func (h *Hub) Broadcast(notification *types.Notification) {
	if notification == nil {
		return
	}
	payload, err := Encode(notification)
	if err != nil {
		tool.DefaultLogger.Errorf("[Notify] failed to serialize %s notification: %v", notification.Type, err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			tool.DefaultLogger.Debugf("[Notify] dropping client %s: %v", conn.RemoteAddr(), err)
			h.Unregister(conn)
		}
	}
}

// Encode serializes n, cutting the message when the payload would exceed MaxPayloadSize.
func Encode(n *types.Notification) ([]byte, error) {
	payload, err := sonic.Marshal(n)
	if err != nil {
		return nil, err
	}
	if len(payload) <= MaxPayloadSize || len(n.Message) <= MaxMessageLen {
		return payload, nil
	}
	trimmed := *n
	trimmed.Message = tool.TruncateText(n.Message, MaxMessageLen)
	return sonic.Marshal(&trimmed)
}

// Logger writes every notification to the debug log.
type Logger struct{}

func (Logger) Broadcast(n *types.Notification) {
	if n == nil {
		return
	}
	tool.DefaultLogger.Debugf("[Notify] %s %s %s %v", n.Type, n.Title, n.Message, n.Data)
}
