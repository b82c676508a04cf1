package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/messaging-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	UserID int64
}

// AuthMiddleware validates bearer tokens.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return apperrors.NewUnauthorized("invalid token subject")
	}

	c.Locals(principalKey, &Principal{UserID: userID})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
