package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/observability"
	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestID(c)),
						zap.Error(err))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

// ErrorHandler is installed as fiber's fallback so errors raised before the
// middleware chain (e.g. body limits) share the same envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return writeError(c, toDomainError(err))
}

func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberError(fiberErr)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewDomainError("TIMEOUT", "request timed out", fiber.StatusGatewayTimeout, nil)
	}
	return apperrors.ToDomainError(err)
}

func fiberError(e *fiber.Error) *apperrors.DomainError {
	code := apperrors.CodeInternal
	switch e.Code {
	case fiber.StatusNotFound:
		code = apperrors.CodeNotFound
	case fiber.StatusMethodNotAllowed:
		code = "METHOD_NOT_ALLOWED"
	case fiber.StatusUnauthorized:
		code = apperrors.CodeUnauthorized
	case fiber.StatusForbidden:
		code = apperrors.CodeForbidden
	case fiber.StatusConflict:
		code = apperrors.CodeConflict
	default:
		if e.Code >= fiber.StatusBadRequest && e.Code < fiber.StatusInternalServerError {
			code = apperrors.CodeValidation
		}
	}
	return apperrors.NewDomainError(code, e.Message, e.Code, nil)
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": body})
}
