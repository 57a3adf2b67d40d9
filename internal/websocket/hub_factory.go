package websocket

import (
	"errors"

	"go-chat-server/internal/interfaces"
	"go-chat-server/pkg/config"
	"go-chat-server/pkg/logger"

	"go.uber.org/zap"
)

// CreateHub builds the delivery router selected by the messaging
// provider config.
func CreateHub(eventHandler interfaces.ConnectionEventHandler) (interfaces.ConnectionManager, error) {
	provider := config.GlobalConfig.Messaging.Provider
	logger.L.Info("Creating hub with messaging provider", zap.String("provider", provider))

	switch provider {
	case "channel", "":
		return NewHub(eventHandler), nil

	case "kafka":
		return NewKafkaHub(eventHandler)

	default:
		return nil, errors.New("unsupported messaging provider")
	}
}

// StartHub launches the hub's background loop.
func StartHub(hub interfaces.ConnectionManager) error {
	switch h := hub.(type) {
	case *Hub:
		go h.Run()
		return nil
	case *KafkaHub:
		h.StartConsumer()
		return nil
	default:
		return errors.New("unknown hub type")
	}
}
