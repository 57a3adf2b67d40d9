package websocket

import (
	"errors"
	"sync"
	"time"

	"go-chat-server/internal/interfaces"
	"go-chat-server/pkg/config"
	"go-chat-server/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultWriteWait      = 10 * time.Second
	defaultPongWait       = 60 * time.Second
	defaultMaxMessageSize = 4096
	defaultQueueSize      = 256
)

// Client is one authenticated websocket connection. The principal is
// bound at handshake time and never changes for the connection's life.
type Client struct {
	UserID   uint
	Username string

	conn    *websocket.Conn
	send    chan []byte
	closed  bool
	mu      sync.Mutex
	handler interfaces.MessageHandler
	manager interfaces.ConnectionManager

	writeWait      time.Duration
	pongWait       time.Duration
	maxMessageSize int64
}

func NewClient(userID uint, username string, conn *websocket.Conn, handler interfaces.MessageHandler, manager interfaces.ConnectionManager) *Client {
	wsConfig := config.GlobalConfig.WebSocket

	writeWait := time.Duration(wsConfig.WriteWaitSeconds) * time.Second
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}
	pongWait := time.Duration(wsConfig.PongWaitSeconds) * time.Second
	if pongWait <= 0 {
		pongWait = defaultPongWait
	}
	maxMessageSize := int64(wsConfig.MaxMessageSize)
	if maxMessageSize <= 0 {
		maxMessageSize = defaultMaxMessageSize
	}
	queueSize := wsConfig.ClientQueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	return &Client{
		UserID:         userID,
		Username:       username,
		conn:           conn,
		send:           make(chan []byte, queueSize),
		handler:        handler,
		manager:        manager,
		writeWait:      writeWait,
		pongWait:       pongWait,
		maxMessageSize: maxMessageSize,
	}
}

func (c *Client) GetUserID() uint {
	return c.UserID
}

// QueueBytes places an encoded event on the client's outbound queue.
// Returns an error when the queue is full so the hub can retry or drop.
func (c *Client) QueueBytes(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("client is closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("client send buffer is full")
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.manager.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L.Warn("Unexpected close error", zap.Uint("userID", c.UserID), zap.Error(err))
			}
			break
		}
		c.handler.HandleMessage(messageBytes, c.UserID)
	}
}

func (c *Client) WritePump() {
	pingPeriod := (c.pongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case messageBytes, ok := <-c.send:
			if !ok {
				// The hub closed the queue.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				logger.L.Warn("Failed to write message", zap.Uint("userID", c.UserID), zap.Error(err))
				return
			}

			// Drain whatever queued up while writing.
			n := len(c.send)
			for i := 0; i < n; i++ {
				batchBytes, ok := <-c.send
				if !ok {
					return
				}
				if err := c.conn.WriteMessage(websocket.TextMessage, batchBytes); err != nil {
					logger.L.Warn("Failed to write batched message", zap.Uint("userID", c.UserID), zap.Error(err))
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
