package dto

import (
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/spec-kit/messaging-service/internal/domain"
	"github.com/spec-kit/messaging-service/internal/service"
)

// CreateDraftRequest payload. A state supplied by the client is ignored.
type CreateDraftRequest struct {
	SenderID   int64      `json:"senderId"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	ComposedAt *time.Time `json:"composedAt"`
}

// ToInput converts the payload to the service input.
func (r CreateDraftRequest) ToInput() service.DraftCreateInput {
	return service.DraftCreateInput{
		SenderID:   r.SenderID,
		Title:      r.Title,
		Body:       r.Body,
		ComposedAt: r.ComposedAt,
	}
}

// UpdateDraftRequest payload; absent fields are left unchanged.
type UpdateDraftRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// ToInput converts the payload to the service input.
func (r UpdateDraftRequest) ToInput() service.DraftUpdateInput {
	return service.DraftUpdateInput{Title: r.Title, Body: r.Body}
}

// DraftResponse represents a draft.
type DraftResponse struct {
	ID         int64             `json:"id"`
	SenderID   int64             `json:"senderId"`
	ComposedAt time.Time         `json:"composedAt"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	State      domain.DraftState `json:"state"`
	Links      Links             `json:"_links"`
}

// DraftListResponse wraps a draft collection.
type DraftListResponse struct {
	Data  []DraftResponse `json:"data"`
	Links Links           `json:"_links"`
}

// NewDraftResponse maps a draft. Sent drafts only advertise read links.
func (b LinkBuilder) NewDraftResponse(d *domain.Draft) DraftResponse {
	self := b.Draft(d.ID)
	links := Links{
		"self":   get(self),
		"drafts": get(b.Drafts()),
	}
	if !d.IsSent() {
		links["update"] = Link{Href: self, Method: http.MethodPatch}
		links["send"] = Link{Href: self + "/send", Method: http.MethodPut}
		links["delete"] = Link{Href: self, Method: http.MethodDelete}
	}
	return DraftResponse{
		ID:         d.ID,
		SenderID:   d.SenderID,
		ComposedAt: d.ComposedAt,
		Title:      d.Title,
		Body:       d.Body,
		State:      d.State,
		Links:      links,
	}
}

// NewDraftListResponse maps a collection, keeping storage order.
func (b LinkBuilder) NewDraftListResponse(drafts []domain.Draft) DraftListResponse {
	return DraftListResponse{
		Data: lo.Map(drafts, func(d domain.Draft, _ int) DraftResponse {
			return b.NewDraftResponse(&d)
		}),
		Links: Links{"self": get(b.Drafts())},
	}
}
