package domain

import "time"

// Message is an immutable record produced from exactly one draft.
type Message struct {
	ID          int64
	SenderID    int64
	RecipientID int64
	SentAt      time.Time
	Title       string
	Body        string
	// SourceDraftID references the draft the message was produced from.
	// It is never exposed to API clients.
	SourceDraftID *int64
}

// NewMessageFromDraft copies the draft content into a new message addressed to
// recipientID. The draft itself is left untouched.
func NewMessageFromDraft(draft *Draft, recipientID int64, sentAt time.Time) *Message {
	sourceID := draft.ID
	return &Message{
		SenderID:      draft.SenderID,
		RecipientID:   recipientID,
		SentAt:        sentAt,
		Title:         draft.Title,
		Body:          draft.Body,
		SourceDraftID: &sourceID,
	}
}
