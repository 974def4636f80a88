package session

import (
	"errors"
	"strings"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxPrincipalKey = "principal"
	CtxClaimsKey    = "claims"
)

// Loader recarrega o principal a partir do tipo e do ID gravados no token.
type Loader func(kind access.Kind, id string) (access.Principal, error)

func Middleware(m *Manager, load Loader) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Cabeçalho Authorization ausente")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization deve ser 'Bearer <token>'")
		}

		claims, err := m.Parse(c.UserContext(), parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Sessão inválida ou expirada")
		}

		p, err := load(claims.Kind, claims.Subject)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Usuário da sessão não existe mais")
			}
			return err
		}

		c.Locals(CtxPrincipalKey, p)
		c.Locals(CtxClaimsKey, claims)
		return c.Next()
	}
}

func RequireKind(kind access.Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		if p.Kind != kind {
			return fiber.NewError(fiber.StatusForbidden, "Você não tem permissão para esta operação")
		}
		return c.Next()
	}
}

func PrincipalFrom(c *fiber.Ctx) (access.Principal, error) {
	p, ok := c.Locals(CtxPrincipalKey).(access.Principal)
	if !ok {
		return access.Principal{}, fiber.NewError(fiber.StatusUnauthorized, "Sessão não encontrada")
	}
	return p, nil
}

func ClaimsFrom(c *fiber.Ctx) (*Claims, error) {
	claims, ok := c.Locals(CtxClaimsKey).(*Claims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Sessão não encontrada")
	}
	return claims, nil
}
