package interfaces

import "go-chat-server/internal/event"

type Client interface {
	GetUserID() uint
	QueueBytes(data []byte) error
	Close()
}

// MessageHandler processes frames a connected client sends upstream
// (send / mark-read actions). Implemented by service.MessageService.
type MessageHandler interface {
	HandleMessage(message []byte, senderID uint)
}

// ConnectionEventHandler reacts to connection lifecycle. Implemented by
// the presence tracker (ONLINE/OFFLINE transitions) via the wiring in
// cmd/server.
type ConnectionEventHandler interface {
	HandleUserConnected(userID uint)
	HandleUserDisconnected(userID uint)
}

// ConnectionManager is the delivery router: it owns the subscriber
// registry and fans events out either to a topic (group chats) or to a
// single user's private queue. Delivery is best-effort to currently
// connected subscribers; there is no offline queueing.
type ConnectionManager interface {
	Register(client Client)
	Unregister(client Client)

	Subscribe(topic string, userID uint)
	Unsubscribe(topic string, userID uint)

	PublishTopic(topic string, e *event.Envelope) error
	PublishUser(userID uint, e *event.Envelope) error

	IsClientConnected(userID uint) bool
	SetEventHandler(handler ConnectionEventHandler)
}
