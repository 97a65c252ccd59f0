package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"notes-app-be/internal/pkg/serverutils"
)

const ownerIdLocal = "ownerId"

// Middleware verifies bearer tokens and exposes the owner id to handlers.
// Token issuance lives outside this service; we only check the signature and
// trust the subject claim as the owner identifier.
type Middleware struct {
	secret []byte
}

func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: []byte(secret)}
}

func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			return serverutils.ErrUnauthorized
		}

		ownerId, err := m.ownerFromToken(tokenStr)
		if err != nil {
			return serverutils.ErrUnauthorized
		}

		c.Locals(ownerIdLocal, ownerId)
		return c.Next()
	}
}

func (m *Middleware) ownerFromToken(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("missing subject")
	}

	return subject, nil
}

// OwnerFromCtx returns the owner id set by RequireAuth.
func OwnerFromCtx(c *fiber.Ctx) (string, error) {
	ownerId, ok := c.Locals(ownerIdLocal).(string)
	if !ok || ownerId == "" {
		return "", serverutils.ErrUnauthorized
	}
	return ownerId, nil
}
