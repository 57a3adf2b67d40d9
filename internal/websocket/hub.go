package websocket

import (
	"errors"
	"time"

	"go-chat-server/internal/event"
	"go-chat-server/internal/interfaces"
	"go-chat-server/pkg/config"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/metrics"

	"go.uber.org/zap"
)

type commandKind int

const (
	cmdRegister commandKind = iota
	cmdUnregister
	cmdSubscribe
	cmdUnsubscribe
	cmdPublishTopic
	cmdPublishUser
	cmdProbe
)

type command struct {
	kind   commandKind
	client interfaces.Client
	topic  string
	userID uint
	data   []byte
	reply  chan bool
}

// Hub is the in-process delivery router. All registry mutations and
// publishes flow through one channel consumed by a single goroutine, so
// events published for a chat reach each subscriber in publish order.
type Hub struct {
	clients  map[uint]interfaces.Client
	topics   map[string]map[uint]struct{}
	commands chan command

	eventHandler interfaces.ConnectionEventHandler

	retryCount    int
	retryInterval time.Duration
}

func NewHub(eventHandler interfaces.ConnectionEventHandler) *Hub {
	wsConfig := config.GlobalConfig.WebSocket

	retryCount := wsConfig.MessageRetryCount
	if retryCount <= 0 {
		retryCount = 3
		logger.L.Warn("Invalid retryCount, using default", zap.Int("default", retryCount))
	}

	retryInterval := time.Duration(wsConfig.MessageRetryIntervalMs) * time.Millisecond
	if retryInterval <= 0 {
		retryInterval = 100 * time.Millisecond
		logger.L.Warn("Invalid retryInterval, using default", zap.Duration("default", retryInterval))
	}

	bufferSize := wsConfig.BroadcastBufferSize
	if bufferSize <= 0 {
		bufferSize = 256
		logger.L.Warn("Invalid BroadcastBufferSize, using default", zap.Int("default", bufferSize))
	}

	return &Hub{
		clients:       make(map[uint]interfaces.Client),
		topics:        make(map[string]map[uint]struct{}),
		commands:      make(chan command, bufferSize),
		eventHandler:  eventHandler,
		retryCount:    retryCount,
		retryInterval: retryInterval,
	}
}

func (h *Hub) Register(client interfaces.Client) {
	h.commands <- command{kind: cmdRegister, client: client}
}

func (h *Hub) Unregister(client interfaces.Client) {
	h.commands <- command{kind: cmdUnregister, client: client}
}

func (h *Hub) Subscribe(topic string, userID uint) {
	h.commands <- command{kind: cmdSubscribe, topic: topic, userID: userID}
}

func (h *Hub) Unsubscribe(topic string, userID uint) {
	h.commands <- command{kind: cmdUnsubscribe, topic: topic, userID: userID}
}

// PublishTopic queues an event for every current subscriber of the
// topic. Returns an error if the hub queue is full; the event is then
// dropped, never retried (push is best-effort).
func (h *Hub) PublishTopic(topic string, e *event.Envelope) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	select {
	case h.commands <- command{kind: cmdPublishTopic, topic: topic, data: data}:
		metrics.EventsPushed.WithLabelValues(string(e.Type)).Inc()
		return nil
	default:
		logger.L.Warn("Hub command channel full. Dropping topic event.",
			zap.String("topic", topic), zap.String("type", string(e.Type)))
		return errors.New("hub command channel is full")
	}
}

// PublishUser queues an event for one user's private queue. A
// disconnected user simply misses the push.
func (h *Hub) PublishUser(userID uint, e *event.Envelope) error {
	data, err := e.Encode()
	if err != nil {
		return err
	}
	select {
	case h.commands <- command{kind: cmdPublishUser, userID: userID, data: data}:
		metrics.EventsPushed.WithLabelValues(string(e.Type)).Inc()
		return nil
	default:
		logger.L.Warn("Hub command channel full. Dropping user event.",
			zap.Uint("userID", userID), zap.String("type", string(e.Type)))
		return errors.New("hub command channel is full")
	}
}

// IsClientConnected is answered outside the dispatch loop via a probe
// command so it observes a consistent registry.
func (h *Hub) IsClientConnected(userID uint) bool {
	reply := make(chan bool, 1)
	h.commands <- command{kind: cmdProbe, userID: userID, reply: reply}
	return <-reply
}

func (h *Hub) SetEventHandler(handler interfaces.ConnectionEventHandler) {
	h.eventHandler = handler
}

func (h *Hub) Run() {
	for cmd := range h.commands {
		switch cmd.kind {
		case cmdRegister:
			h.handleRegister(cmd.client)
		case cmdUnregister:
			h.handleUnregister(cmd.client)
		case cmdSubscribe:
			subs, ok := h.topics[cmd.topic]
			if !ok {
				subs = make(map[uint]struct{})
				h.topics[cmd.topic] = subs
			}
			subs[cmd.userID] = struct{}{}
		case cmdUnsubscribe:
			if subs, ok := h.topics[cmd.topic]; ok {
				delete(subs, cmd.userID)
				if len(subs) == 0 {
					delete(h.topics, cmd.topic)
				}
			}
		case cmdPublishTopic:
			for userID := range h.topics[cmd.topic] {
				if client, ok := h.clients[userID]; ok {
					h.trySend(client, cmd.data)
				}
			}
		case cmdPublishUser:
			if client, ok := h.clients[cmd.userID]; ok {
				h.trySend(client, cmd.data)
			}
		case cmdProbe:
			_, ok := h.clients[cmd.userID]
			cmd.reply <- ok
		}
	}
}

func (h *Hub) handleRegister(client interfaces.Client) {
	userID := client.GetUserID()

	// A second connection for the same user replaces the first. The
	// replaced client is closed without lifecycle events, so each user
	// session produces exactly one connect and one disconnect.
	if old, ok := h.clients[userID]; ok {
		if old != client {
			old.Close()
		}
		h.clients[userID] = client
		logger.L.Info("Client replaced", zap.Uint("userID", userID))
		return
	}
	h.clients[userID] = client
	metrics.OpenConnections.Inc()
	logger.L.Info("Client registered", zap.Uint("userID", userID))

	if h.eventHandler != nil {
		go h.eventHandler.HandleUserConnected(userID)
	}
}

func (h *Hub) handleUnregister(client interfaces.Client) {
	userID := client.GetUserID()
	if registered, ok := h.clients[userID]; ok && registered == client {
		client.Close()
		delete(h.clients, userID)
		for topic, subs := range h.topics {
			delete(subs, userID)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
		metrics.OpenConnections.Dec()
		logger.L.Info("Client unregistered", zap.Uint("userID", userID))

		if h.eventHandler != nil {
			go h.eventHandler.HandleUserDisconnected(userID)
		}
	}
}

func (h *Hub) trySend(client interfaces.Client, data []byte) {
	if err := client.QueueBytes(data); err == nil {
		return
	}
	for i := 0; i < h.retryCount; i++ {
		logger.L.Warn("Client send buffer full, retry attempt",
			zap.Uint("userID", client.GetUserID()),
			zap.Int("attempt", i+1))
		time.Sleep(h.retryInterval)
		if err := client.QueueBytes(data); err == nil {
			return
		}
	}
	// Still full after retries: the connection is wedged, close it.
	logger.L.Error("Client send buffer still full after retries, closing connection",
		zap.Uint("userID", client.GetUserID()),
		zap.Int("attempts", h.retryCount))
	h.handleUnregister(client)
}
