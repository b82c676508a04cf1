package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/messaging-service/internal/api/dto"
	"github.com/spec-kit/messaging-service/internal/service"
)

// MessagesHandler serves the message endpoints.
type MessagesHandler struct {
	service *service.MessageService
	links   dto.LinkBuilder
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messageService *service.MessageService, links dto.LinkBuilder) *MessagesHandler {
	return &MessagesHandler{service: messageService, links: links}
}

// Create POST /messages sends a draft.
func (h *MessagesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateMessageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.service.CreateFromDraft(c.UserContext(), req.ToInput())
	if err != nil {
		return err
	}
	resp := h.links.NewMessageResponse(msg)
	c.Location(resp.Links["self"].Href)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": resp})
}

// List GET /messages.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	msgs, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(h.links.NewMessageListResponse(msgs))
}

// Get GET /messages/:id.
func (h *MessagesHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	msg, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.links.NewMessageResponse(msg)})
}

// Delete DELETE /messages/:id.
func (h *MessagesHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
