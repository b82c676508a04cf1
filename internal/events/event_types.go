package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDraftCreated   EventType = "draft_created"
	EventDraftUpdated   EventType = "draft_updated"
	EventDraftSent      EventType = "draft_sent"
	EventDraftDeleted   EventType = "draft_deleted"
	EventMessageCreated EventType = "message_created"
	EventMessageDeleted EventType = "message_deleted"
)

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	EntityID  int64     `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// NewEvent stamps an event with an id and the current time.
func NewEvent(eventType EventType, entityID int64, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// DraftPayload describes a draft at the time of the event.
type DraftPayload struct {
	SenderID int64  `json:"senderId"`
	Title    string `json:"title"`
	State    string `json:"state"`
}

// DraftSentPayload is attached to draft_sent.
type DraftSentPayload struct {
	SenderID  int64  `json:"senderId"`
	MessageID *int64 `json:"messageId,omitempty"`
}

// MessageCreatedPayload is attached to message_created.
type MessageCreatedPayload struct {
	SenderID      int64  `json:"senderId"`
	RecipientID   int64  `json:"recipientId"`
	SourceDraftID int64  `json:"sourceDraftId"`
	TitlePreview  string `json:"titlePreview"`
}
