package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/messaging-service/internal/auth"
	"github.com/spec-kit/messaging-service/internal/persistence"
	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

// IdempotencyKeyHeader lets clients retry POSTs safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyReplayHeader = "Idempotent-Replayed"
	idempotencyPendingTTL   = time.Minute
	codeIdempotencyReused   = "IDEMPOTENCY_KEY_REUSED"
)

// ResponseCache stores replayable responses.
type ResponseCache interface {
	Reserve(ctx context.Context, key, requestHash string, ttl time.Duration) (bool, error)
	Lookup(ctx context.Context, key string) (*persistence.CachedResponse, error)
	Complete(ctx context.Context, key string, resp persistence.CachedResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key. Keys are scoped to the route and the caller, and a key
// reused with a different body is rejected. Requests without the header pass
// through. Cache failures are logged and the request is served normally.
func Idempotency(cache ResponseCache, ttl time.Duration, logger *zap.Logger) fiber.Handler {
	pendingTTL := min(idempotencyPendingTTL, ttl)
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get(IdempotencyKeyHeader))
		if key == "" || cache == nil {
			return c.Next()
		}
		key = idempotencyScope(c) + " " + key
		sum := sha256.Sum256(c.Body())
		hash := hex.EncodeToString(sum[:])
		ctx := c.UserContext()

		reserved, err := cache.Reserve(ctx, key, hash, pendingTTL)
		if err != nil {
			logger.Warn("idempotency reserve failed", zap.Error(err))
			return c.Next()
		}
		if !reserved {
			return replay(c, cache, key, hash, logger)
		}

		if err := c.Next(); err != nil {
			release(ctx, cache, key, logger)
			return err
		}

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			release(ctx, cache, key, logger)
			return nil
		}
		resp := persistence.CachedResponse{
			RequestHash: hash,
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := cache.Complete(ctx, key, resp, ttl); err != nil {
			logger.Warn("idempotency save failed", zap.Error(err))
		}
		return nil
	}
}

func idempotencyScope(c *fiber.Ctx) string {
	scope := c.Method() + " " + c.Path()
	if principal, ok := auth.PrincipalFromContext(c); ok {
		scope += " " + strconv.FormatInt(principal.UserID, 10)
	}
	return scope
}

func replay(c *fiber.Ctx, cache ResponseCache, key, hash string, logger *zap.Logger) error {
	cached, err := cache.Lookup(c.UserContext(), key)
	if err != nil {
		logger.Warn("idempotency lookup failed", zap.Error(err))
		return c.Next()
	}
	if cached == nil {
		// Claim expired or was released between Reserve and Lookup.
		return apperrors.NewConflict("request with this idempotency key is in progress", nil)
	}
	if cached.RequestHash != hash {
		return apperrors.NewDomainError(codeIdempotencyReused, "idempotency key was used with a different request body",
			fiber.StatusUnprocessableEntity, nil)
	}
	if cached.Pending {
		return apperrors.NewConflict("request with this idempotency key is in progress", nil)
	}
	c.Set(idempotencyReplayHeader, "true")
	c.Set(fiber.HeaderContentType, cached.ContentType)
	return c.Status(cached.Status).Send(cached.Body)
}

func release(ctx context.Context, cache ResponseCache, key string, logger *zap.Logger) {
	if err := cache.Release(ctx, key); err != nil {
		logger.Warn("idempotency release failed", zap.Error(err))
	}
}
