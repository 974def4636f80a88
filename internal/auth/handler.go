package auth

import (
	"log"
	"strings"
	"time"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/metrics"
	"sondalog-backend/internal/session"

	"github.com/gofiber/fiber/v2"
)

type SupervisorLoginRequest struct {
	EmployeeID string `json:"employee_id"`
	Password   string `json:"password"`
}

type AdminLoginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type PrincipalResponse struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"` // MASTER | COMMON para admins
}

type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      PrincipalResponse `json:"user"`
}

func toPrincipalResponse(p access.Principal) PrincipalResponse {
	return PrincipalResponse{Kind: string(p.Kind), ID: p.ID, Name: p.Name, Role: string(p.AdminRole)}
}

func issue(c *fiber.Ctx, sessions *session.Manager, p access.Principal) error {
	token, exp, err := sessions.Issue(p)
	if err != nil {
		log.Printf("[WARN] Token não gerado para %s: %v", p.ID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "Token não pôde ser gerado")
	}
	return c.JSON(LoginResponse{Token: token, ExpiresAt: exp, User: toPrincipalResponse(p)})
}

// POST /api/auth/supervisor/login
func SupervisorLoginHandler(svc *Service, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SupervisorLoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		e, err := svc.SupervisorLogin(strings.TrimSpace(body.EmployeeID), body.Password)
		metrics.Logins.WithLabelValues(string(access.KindSupervisor), metrics.Outcome(err)).Inc()
		if err != nil {
			return apperr.ToFiber(err)
		}
		return issue(c, sessions, access.Supervisor(e))
	}
}

// POST /api/auth/admin/login
func AdminLoginHandler(svc *Service, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdminLoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		a, err := svc.AdminLogin(strings.TrimSpace(body.ID), body.Password)
		metrics.Logins.WithLabelValues(string(access.KindAdmin), metrics.Outcome(err)).Inc()
		if err != nil {
			return apperr.ToFiber(err)
		}
		return issue(c, sessions, access.Admin(a))
	}
}

// POST /api/auth/logout
func LogoutHandler(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := session.ClaimsFrom(c)
		if err != nil {
			return err
		}
		if err := sessions.Revoke(c.UserContext(), claims); err != nil {
			log.Printf("[WARN] Sessão %s não revogada: %v", claims.ID, err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "Não foi possível encerrar a sessão")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		return c.JSON(toPrincipalResponse(p))
	}
}

// PUT /api/supervisor/password
func ChangePasswordHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body ChangePasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		if err := svc.ChangeSupervisorPassword(actor, body.Password, body.PasswordConfirm); err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"message": "Senha alterada com sucesso"})
	}
}
