package ws

import (
	"sync"

	"NotifyLink/pkg/zlog"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub 进程内在线表：主体 ID -> 当前通道句柄。每个主体同一时刻只保留最后一条连接
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register 无条件覆盖该主体的已有句柄，返回被替换的旧句柄
func (h *Hub) Register(subjectID string, c *Client) *Client {
	if subjectID == "" || c == nil {
		return nil
	}
	h.mu.Lock()
	prev := h.clients[subjectID]
	h.clients[subjectID] = c
	h.mu.Unlock()
	if prev == c {
		return nil
	}
	return prev
}

// Unregister 仅当表中句柄与 c 是同一连接时才删除，避免旧连接延迟断开时误删新连接
func (h *Hub) Unregister(subjectID string, c *Client) bool {
	if subjectID == "" || c == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[subjectID]; ok && cur == c {
		delete(h.clients, subjectID)
		return true
	}
	return false
}

func (h *Hub) Lookup(subjectID string) (*Client, bool) {
	h.mu.RLock()
	c, ok := h.clients[subjectID]
	h.mu.RUnlock()
	return c, ok
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Emit 向在线主体推送事件；不在线或发送失败都返回 false，不向调用方抛错
func (h *Hub) Emit(subjectID string, event string, data interface{}) bool {
	if subjectID == "" {
		return false
	}
	c, ok := h.Lookup(subjectID)
	if !ok {
		return false
	}
	if err := c.Emit(event, data); err != nil {
		zlog.Warn("ws push dropped",
			zap.String("subject_id", subjectID),
			zap.String("conn_id", c.ID()),
			zap.String("event", event),
			zap.Error(err))
		return false
	}
	return true
}

// CloseAll 关闭所有在线连接，服务停止时调用；各连接的读循环退出后自行注销
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.CloseWith(websocket.CloseGoingAway, "server shutting down")
	}
}
