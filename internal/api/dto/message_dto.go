package dto

import (
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/messaging-service/internal/domain"
	"github.com/spec-kit/messaging-service/internal/service"
)

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	SourceDraftID int64 `json:"sourceDraftId"`
	RecipientID   int64 `json:"recipientId"`
}

// ToInput converts the payload to the service input.
func (r CreateMessageRequest) ToInput() service.MessageCreateInput {
	return service.MessageCreateInput{SourceDraftID: r.SourceDraftID, RecipientID: r.RecipientID}
}

// MessageResponse represents a message. The source draft is not exposed.
type MessageResponse struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"senderId"`
	RecipientID int64     `json:"recipientId"`
	SentAt      time.Time `json:"sentAt"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Links       Links     `json:"_links"`
}

// MessageListResponse wraps a message collection.
type MessageListResponse struct {
	Data  []MessageResponse `json:"data"`
	Links Links             `json:"_links"`
}

// NewMessageResponse maps a message.
func (b LinkBuilder) NewMessageResponse(m *domain.Message) MessageResponse {
	self := b.Message(m.ID)
	return MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		SentAt:      m.SentAt,
		Title:       m.Title,
		Body:        m.Body,
		Links: Links{
			"self":     get(self),
			"messages": get(b.Messages()),
			"delete":   Link{Href: self, Method: http.MethodDelete},
		},
	}
}

// NewMessageListResponse maps a collection, keeping storage order.
func (b LinkBuilder) NewMessageListResponse(msgs []domain.Message) MessageListResponse {
	return MessageListResponse{
		Data: lo.Map(msgs, func(m domain.Message, _ int) MessageResponse {
			return b.NewMessageResponse(&m)
		}),
		Links: Links{"self": get(b.Messages())},
	}
}
