package models

import (
	"encoding/json"
	"time"
)

// Event names. Client to server:
const (
	EventMatchJoin   = "match:join"
	EventMatchLeave  = "match:leave"
	EventMessageSend = "message:send"
	EventMessageRead = "message:read"
	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"
)

// Server to client. message:read and typing:* reuse the names above.
const (
	EventMessageNew      = "message:new"
	EventUserOnline      = "user:online"
	EventUserOffline     = "user:offline"
	EventNotificationNew = "notification:new"
	EventMatchJoined     = "match:joined"
	EventMatchClosed     = "match:closed"
	EventError           = "error"
)

// Event is the frame exchanged over the socket.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals payload into an Event.
func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: data}, nil
}

// Decode unmarshals the event data into v.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return json.Unmarshal([]byte("{}"), v)
	}
	return json.Unmarshal(e.Data, v)
}

// --- inbound payloads ---

type MatchPayload struct {
	MatchID string `json:"matchId" validate:"required,max=64"`
}

type SendPayload struct {
	MatchID string      `json:"matchId" validate:"required,max=64"`
	Content string      `json:"content"`
	File    *Attachment `json:"file,omitempty" validate:"omitempty"`
}

// Attachment describes an already uploaded file.
type Attachment struct {
	URL  string `json:"url" validate:"required,url,max=2048"`
	Key  string `json:"key" validate:"max=512"`
	Name string `json:"name" validate:"max=255"`
	Size int64  `json:"size" validate:"gte=0"`
	Type string `json:"type" validate:"required,max=127"`
}

type ReadPayload struct {
	MessageID string `json:"messageId" validate:"required,max=64"`
}

// --- outbound payloads ---

type MessagePayload struct {
	ID        string      `json:"id"`
	MatchID   string      `json:"matchId"`
	SenderID  string      `json:"senderId"`
	Content   string      `json:"content"`
	Type      MessageType `json:"type"`
	FileURL   string      `json:"fileUrl,omitempty"`
	FileKey   string      `json:"fileKey,omitempty"`
	FileName  string      `json:"fileName,omitempty"`
	FileSize  int64       `json:"fileSize,omitempty"`
	FileType  string      `json:"fileType,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	ReadAt    *time.Time  `json:"readAt"`
}

type ReadReceiptPayload struct {
	MessageID string    `json:"messageId"`
	MatchID   string    `json:"matchId"`
	ReadAt    time.Time `json:"readAt"`
}

type TypingSignal struct {
	UserID  string `json:"userId"`
	MatchID string `json:"matchId"`
}

type PresenceSignal struct {
	UserID string `json:"userId"`
}

type NotificationSignal struct {
	Type    NotificationType `json:"type"`
	MatchID string           `json:"matchId"`
}

type MatchSignal struct {
	MatchID string `json:"matchId"`
}

type ErrorPayload struct {
	Event   string `json:"event,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
