package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/messaging-service/internal/api/dto"
	"github.com/spec-kit/messaging-service/internal/service"
)

// DraftsHandler serves the draft endpoints.
type DraftsHandler struct {
	service *service.DraftService
	links   dto.LinkBuilder
}

// NewDraftsHandler constructs handler.
func NewDraftsHandler(draftService *service.DraftService, links dto.LinkBuilder) *DraftsHandler {
	return &DraftsHandler{service: draftService, links: links}
}

// Create POST /drafts.
func (h *DraftsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDraftRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	draft, err := h.service.Create(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	resp := h.links.NewDraftResponse(draft)
	c.Location(resp.Links["self"].Href)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": resp})
}

// List GET /drafts.
func (h *DraftsHandler) List(c *fiber.Ctx) error {
	drafts, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.links.NewDraftListResponse(drafts))
}

// Get GET /drafts/:id.
func (h *DraftsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	draft, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.links.NewDraftResponse(draft)})
}

// Update PUT|PATCH /drafts/:id. Both verbs apply a partial update.
func (h *DraftsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateDraftRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	draft, err := h.service.Update(c.UserContext(), id, req.ToInput())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.links.NewDraftResponse(draft)})
}

// Send PUT /drafts/:id/send.
func (h *DraftsHandler) Send(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	draft, err := h.service.MarkSent(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.links.NewDraftResponse(draft)})
}

// Delete DELETE /drafts/:id.
func (h *DraftsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
