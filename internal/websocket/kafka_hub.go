package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-chat-server/internal/event"
	"go-chat-server/internal/interfaces"
	"go-chat-server/pkg/config"
	"go-chat-server/pkg/logger"
	"go-chat-server/pkg/metrics"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// kafkaRoutedEvent is the record value: the envelope plus its address.
type kafkaRoutedEvent struct {
	Topic   string          `json:"topic,omitempty"`
	UserID  uint            `json:"user_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// KafkaHub is the ConnectionManager variant that routes events through
// Kafka so several server processes can share one subscriber space.
// Records are keyed by their address, so one partition serializes each
// chat topic and each user queue.
type KafkaHub struct {
	clients    map[uint]interfaces.Client
	topics     map[string]map[uint]struct{}
	mu         sync.RWMutex
	producer   sarama.SyncProducer
	consumer   sarama.ConsumerGroup
	ctx        context.Context
	cancelFunc context.CancelFunc

	eventHandler interfaces.ConnectionEventHandler
	cfg          *config.KafkaConfig
}

func NewKafkaHub(eventHandler interfaces.ConnectionEventHandler) (*KafkaHub, error) {
	ctx, cancel := context.WithCancel(context.Background())

	cfg := &config.GlobalConfig.Messaging.Kafka

	kConfig := sarama.NewConfig()
	kConfig.Producer.RequiredAcks = sarama.WaitForAll
	kConfig.Producer.Return.Successes = true
	kConfig.Producer.Retry.Max = 3
	kConfig.Producer.Partitioner = sarama.NewHashPartitioner
	kConfig.Consumer.Return.Errors = true
	kConfig.Version = sarama.V2_8_0_0

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kConfig)
	if err != nil {
		logger.L.Error("Failed to start Kafka producer", zap.Error(err))
		cancel()
		return nil, fmt.Errorf("failed to start Kafka producer: %w", err)
	}

	consumer, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroup, kConfig)
	if err != nil {
		logger.L.Error("Failed to start Kafka consumer group", zap.Error(err))
		producer.Close()
		cancel()
		return nil, fmt.Errorf("failed to start Kafka consumer group: %w", err)
	}

	return &KafkaHub{
		clients:      make(map[uint]interfaces.Client),
		topics:       make(map[string]map[uint]struct{}),
		producer:     producer,
		consumer:     consumer,
		ctx:          ctx,
		cancelFunc:   cancel,
		eventHandler: eventHandler,
		cfg:          cfg,
	}, nil
}

func (h *KafkaHub) StartConsumer() {
	go h.consumeEvents()
}

func (h *KafkaHub) Close() error {
	h.cancelFunc()

	if err := h.producer.Close(); err != nil {
		logger.L.Error("Failed to close Kafka producer", zap.Error(err))
	}
	if err := h.consumer.Close(); err != nil {
		logger.L.Error("Failed to close Kafka consumer group", zap.Error(err))
	}

	return nil
}

func (h *KafkaHub) Register(client interfaces.Client) {
	userID := client.GetUserID()

	h.mu.Lock()
	if old, ok := h.clients[userID]; ok {
		if old != client {
			old.Close()
		}
		h.clients[userID] = client
		h.mu.Unlock()
		logger.L.Info("Client replaced with KafkaHub", zap.Uint("userID", userID))
		return
	}
	h.clients[userID] = client
	h.mu.Unlock()

	metrics.OpenConnections.Inc()
	logger.L.Info("Client registered with KafkaHub", zap.Uint("userID", userID))

	if h.eventHandler != nil {
		go h.eventHandler.HandleUserConnected(userID)
	}
}

func (h *KafkaHub) Unregister(client interfaces.Client) {
	userID := client.GetUserID()

	h.mu.Lock()
	registered, ok := h.clients[userID]
	if !ok || registered != client {
		h.mu.Unlock()
		return
	}
	client.Close()
	delete(h.clients, userID)
	for topic, subs := range h.topics {
		delete(subs, userID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()

	metrics.OpenConnections.Dec()
	logger.L.Info("Client unregistered from KafkaHub", zap.Uint("userID", userID))

	if h.eventHandler != nil {
		go h.eventHandler.HandleUserDisconnected(userID)
	}
}

func (h *KafkaHub) Subscribe(topic string, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[uint]struct{})
		h.topics[topic] = subs
	}
	subs[userID] = struct{}{}
}

func (h *KafkaHub) Unsubscribe(topic string, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[topic]; ok {
		delete(subs, userID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

func (h *KafkaHub) kafkaTopic() string {
	return fmt.Sprintf("%s_events", h.cfg.TopicPrefix)
}

func (h *KafkaHub) PublishTopic(topic string, e *event.Envelope) error {
	payload, err := e.Encode()
	if err != nil {
		return err
	}
	metrics.EventsPushed.WithLabelValues(string(e.Type)).Inc()
	return h.produce(topic, kafkaRoutedEvent{Topic: topic, Payload: payload})
}

func (h *KafkaHub) PublishUser(userID uint, e *event.Envelope) error {
	payload, err := e.Encode()
	if err != nil {
		return err
	}
	metrics.EventsPushed.WithLabelValues(string(e.Type)).Inc()
	return h.produce(fmt.Sprintf("user.%d", userID), kafkaRoutedEvent{UserID: userID, Payload: payload})
}

func (h *KafkaHub) produce(key string, routed kafkaRoutedEvent) error {
	value, err := json.Marshal(routed)
	if err != nil {
		return fmt.Errorf("failed to marshal routed event: %w", err)
	}

	_, _, err = h.producer.SendMessage(&sarama.ProducerMessage{
		Topic: h.kafkaTopic(),
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		logger.L.Error("Failed to send event to Kafka", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to send event to Kafka: %w", err)
	}
	return nil
}

func (h *KafkaHub) IsClientConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *KafkaHub) SetEventHandler(handler interfaces.ConnectionEventHandler) {
	h.eventHandler = handler
}

func (h *KafkaHub) consumeEvents() {
	handler := &kafkaConsumerHandler{hub: h}
	topics := []string{h.kafkaTopic()}

	for {
		select {
		case <-h.ctx.Done():
			logger.L.Info("Stopping Kafka consumer")
			return
		default:
			if err := h.consumer.Consume(h.ctx, topics, handler); err != nil {
				logger.L.Error("Kafka consumer error", zap.Error(err))
				time.Sleep(5 * time.Second)
			}
		}
	}
}

type kafkaConsumerHandler struct {
	hub *KafkaHub
}

func (h *kafkaConsumerHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *kafkaConsumerHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *kafkaConsumerHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		h.deliver(message.Value)
		session.MarkMessage(message, "")
	}
	return nil
}

// deliver fans a consumed record out to locally connected subscribers.
func (h *kafkaConsumerHandler) deliver(value []byte) {
	var routed kafkaRoutedEvent
	if err := json.Unmarshal(value, &routed); err != nil {
		logger.L.Error("Failed to unmarshal routed event", zap.Error(err))
		return
	}

	hub := h.hub
	hub.mu.RLock()
	var targets []interfaces.Client
	if routed.Topic != "" {
		for userID := range hub.topics[routed.Topic] {
			if client, ok := hub.clients[userID]; ok {
				targets = append(targets, client)
			}
		}
	} else if client, ok := hub.clients[routed.UserID]; ok {
		targets = append(targets, client)
	}
	hub.mu.RUnlock()

	for _, client := range targets {
		if err := client.QueueBytes(routed.Payload); err != nil {
			logger.L.Warn("Failed to queue event to client",
				zap.Uint("userID", client.GetUserID()), zap.Error(err))
		}
	}
}
