package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

func parseID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}
