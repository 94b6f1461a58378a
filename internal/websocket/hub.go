package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/wfunc/car-dash/internal/telemetry"
	"go.uber.org/zap"
)

// Hub WebSocket连接管理中心，向所有远程镜像推送读数
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 消息广播通道
	broadcast chan *Message

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	// 当前读数，新客户端连接时先收到一份
	snapshot func() telemetry.Snapshot

	heartbeat time.Duration
	done      chan struct{}

	// 日志
	logger *zap.Logger
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`           // 消息类型
	Data      json.RawMessage `json:"data,omitempty"` // 消息数据
	Timestamp int64           `json:"timestamp"`      // 时间戳
}

// MessageType 消息类型
const (
	// 系统消息
	MessageTypeConnected = "connected"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
	MessageTypeError     = "error"

	// 仪表消息
	MessageTypeReading  = "reading"  // 服务端推送的最新读数
	MessageTypeSnapshot = "snapshot" // 客户端请求当前读数
)

// NewHub 创建Hub，snapshot 可为 nil
func NewHub(logger *zap.Logger, snapshot func() telemetry.Snapshot) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		snapshot:   snapshot,
		heartbeat:  30 * time.Second,
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run 运行Hub，直到 ctx 结束
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	// 启动心跳检测
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-ticker.C:
			h.broadcastMessage(&Message{
				Type:      MessageTypePing,
				Timestamp: time.Now().Unix(),
			})
		}
	}
}

// shutdown 关闭所有客户端
func (h *Hub) shutdown() {
	close(h.done)

	h.clientsMu.Lock()
	for id, client := range h.clients {
		delete(h.clients, id)
		close(client.Send)
	}
	h.clientsMu.Unlock()
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("remote", client.Remote))

	// 发送连接成功消息
	h.SendToClient(client.ID, &Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
		Data:      json.RawMessage(`{"message":"连接成功"}`),
	})
	h.sendSnapshot(client.ID)
}

// unregisterClient 注销客户端
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		close(client.Send)
	}
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID))
}

// broadcastMessage 广播消息
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("序列化消息失败", zap.Error(err))
		return
	}

	h.clientsMu.RLock()
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// 慢客户端丢弃本条，下一次读数会覆盖
			h.logger.Warn("客户端发送缓冲区满",
				zap.String("client_id", client.ID))
		}
	}
	h.clientsMu.RUnlock()
}

// SendToClient 发送消息给指定客户端
func (h *Hub) SendToClient(clientID string, message *Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	client, ok := h.clients[clientID]
	if !ok {
		return ErrClientNotFound
	}

	select {
	case client.Send <- data:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// sendSnapshot 把当前读数发给指定客户端
func (h *Hub) sendSnapshot(clientID string) {
	if h.snapshot == nil {
		return
	}
	msg, err := NewReadingMessage(h.snapshot())
	if err != nil {
		h.logger.Error("序列化读数失败", zap.Error(err))
		return
	}
	h.SendToClient(clientID, msg)
}

// NewReadingMessage 把读数快照封装为 reading 消息
func NewReadingMessage(snap telemetry.Snapshot) (*Message, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      MessageTypeReading,
		Data:      data,
		Timestamp: snap.UpdatedAt.Unix(),
	}, nil
}

// OnReading 实现读数观察者，轮询循环每次更新后调用
//
// 广播通道满时丢弃，不阻塞轮询循环。
func (h *Hub) OnReading(snap telemetry.Snapshot) {
	msg, err := NewReadingMessage(snap)
	if err != nil {
		h.logger.Error("序列化读数失败", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Debug("广播通道已满，丢弃读数", zap.Uint64("updates", snap.Updates))
	}
}

// GetOnlineCount 获取在线客户端数
func (h *Hub) GetOnlineCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Register 注册客户端（公开方法）
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister 注销客户端（公开方法）
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
