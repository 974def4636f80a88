package directory

import (
	"log"
	"time"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"
	"sondalog-backend/internal/session"

	"github.com/gofiber/fiber/v2"
)

type EmployeeResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	IsSupervisor bool   `json:"is_supervisor"`
}

type EmployeeBody struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"` // só no cadastro de supervisor
}

type AdminResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type AdminBody struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Role            string `json:"role"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// AdminUpdateResponse traz um token novo quando o admin alterado é o da
// própria sessão.
type AdminUpdateResponse struct {
	Admin     AdminResponse `json:"admin"`
	Token     string        `json:"token,omitempty"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
}

func toEmployeeResponse(e models.Employee) EmployeeResponse {
	return EmployeeResponse{ID: e.ID, Name: e.Name, Role: e.Role, IsSupervisor: e.IsSupervisor()}
}

func toEmployeeList(list []models.Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, 0, len(list))
	for _, e := range list {
		res = append(res, toEmployeeResponse(e))
	}
	return res
}

func toAdminResponse(a models.Admin) AdminResponse {
	return AdminResponse{ID: a.ID, Name: a.Name, Role: string(a.Role)}
}

func (b AdminBody) update() AdminUpdate {
	return AdminUpdate{
		ID:              b.ID,
		Name:            b.Name,
		Role:            models.AdminRole(b.Role),
		Password:        b.Password,
		PasswordConfirm: b.PasswordConfirm,
	}
}

// ----------------------------------------
// COLABORADORES
// ----------------------------------------

// GET /api/employees
func ListEmployeesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employees, err := svc.ListEmployees()
		if err != nil {
			return err
		}
		return c.JSON(toEmployeeList(employees))
	}
}

// POST /api/admin/employees
func CreateEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body EmployeeBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		e, err := svc.AddEmployee(actor, models.Employee{ID: body.ID, Name: body.Name, Role: body.Role})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(e))
	}
}

// PUT /api/admin/employees/:id
func UpdateEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body EmployeeBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		e, err := svc.UpdateEmployee(actor, c.Params("id"), models.Employee{ID: body.ID, Name: body.Name, Role: body.Role})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(toEmployeeResponse(e))
	}
}

// DELETE /api/admin/employees/:id
func DeleteEmployeeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteEmployee(actor, c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// SUPERVISORES
// ----------------------------------------

// GET /api/supervisors
// Lista pública para a tela de login; só matrícula e nome.
func ListSupervisorsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		supervisors, err := svc.ListSupervisors()
		if err != nil {
			return err
		}
		return c.JSON(toEmployeeList(supervisors))
	}
}

// POST /api/admin/supervisors
func CreateSupervisorHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body EmployeeBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		e, err := svc.AddSupervisor(actor, models.Employee{ID: body.ID, Name: body.Name, Password: body.Password})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toEmployeeResponse(e))
	}
}

// PUT /api/admin/supervisors/:id
func UpdateSupervisorHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body EmployeeBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		e, err := svc.UpdateSupervisor(actor, c.Params("id"), models.Employee{ID: body.ID, Name: body.Name})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(toEmployeeResponse(e))
	}
}

// DELETE /api/admin/supervisors/:id
func DeleteSupervisorHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteSupervisor(actor, c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// ADMINISTRADORES
// ----------------------------------------

// GET /api/admin/admins
func ListAdminsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		admins, err := svc.ListAdmins(actor)
		if err != nil {
			return apperr.ToFiber(err)
		}
		res := make([]AdminResponse, 0, len(admins))
		for _, a := range admins {
			res = append(res, toAdminResponse(a))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/admins
func CreateAdminHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body AdminBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		a, err := svc.AddAdmin(actor, models.Admin{
			ID:       body.ID,
			Name:     body.Name,
			Role:     models.AdminRole(body.Role),
			Password: body.Password,
		})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toAdminResponse(a))
	}
}

// PUT /api/admin/admins/:id
func UpdateAdminHandler(svc *Service, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body AdminBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		oldID := c.Params("id")
		a, err := svc.UpdateAdmin(actor, oldID, body.update())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return respondAdminUpdate(c, sessions, actor, oldID, a)
	}
}

// PUT /api/admin/account
func UpdateOwnAccountHandler(svc *Service, sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body AdminBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		a, err := svc.UpdateOwnAccount(actor, body.update())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return respondAdminUpdate(c, sessions, actor, actor.ID, a)
	}
}

// respondAdminUpdate troca o token quando o registro alterado é o da sessão,
// para que as próximas requisições usem o login novo.
func respondAdminUpdate(c *fiber.Ctx, sessions *session.Manager, actor access.Principal, oldID string, a models.Admin) error {
	res := AdminUpdateResponse{Admin: toAdminResponse(a)}
	if actor.IsAdmin() && actor.ID == oldID {
		claims, err := session.ClaimsFrom(c)
		if err != nil {
			log.Printf("[WARN] Sessão de %s sem claims, token anterior não revogado: %v", oldID, err)
		}
		token, exp, err := sessions.Reissue(c.UserContext(), claims, access.Admin(a))
		if err != nil {
			log.Printf("[WARN] Sessão não renovada para %s: %v", a.ID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "Dados salvos, mas a sessão não pôde ser renovada. Entre novamente.")
		}
		res.Token = token
		res.ExpiresAt = &exp
	}
	return c.JSON(res)
}

// DELETE /api/admin/admins/:id
func DeleteAdminHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteAdmin(actor, c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
