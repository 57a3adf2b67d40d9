package event

import (
	"encoding/json"
	"fmt"
	"time"

	"go-chat-server/internal/dto"
)

// Type tags a push event frame.
type Type string

const (
	MessageCreated  Type = "message.created"
	MessageUpdated  Type = "message.updated"
	MessageDeleted  Type = "message.deleted"
	ChatListChanged Type = "chat_list.changed"
	UnreadChanged   Type = "unread.changed"
	ChatDeleted     Type = "chat.deleted"
)

// Envelope is the frame pushed over the websocket (and carried through
// Kafka when that provider is selected).
type Envelope struct {
	Type      Type            `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// New wraps a payload into an envelope. Payloads are encoded once at
// publish time so every subscriber receives identical bytes.
func New(t Type, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", t, err)
	}
	return &Envelope{Type: t, Payload: raw, Timestamp: time.Now()}, nil
}

func (e *Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func Decode(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}
	return &e, nil
}

// TopicForChat names the broadcast address of a group chat.
func TopicForChat(chatID uint) string {
	return fmt.Sprintf("chat.%d", chatID)
}

// Payloads.

type MessageDeletedPayload struct {
	ChatID     uint   `json:"chat_id"`
	MessageIDs []uint `json:"message_ids"`
}

type ChatListChangedPayload struct {
	Item dto.ChatListItem `json:"item"`
}

type UnreadChangedPayload struct {
	ChatID      uint  `json:"chat_id"`
	UnreadCount int64 `json:"unread_count"`
}

type ChatDeletedPayload struct {
	ChatID uint `json:"chat_id"`
}
