package catalog

import (
	"strings"

	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"
	"sondalog-backend/internal/session"

	"github.com/gofiber/fiber/v2"
)

type MaterialResponse struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
}

type MaterialBody struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
}

type RigResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type RigBody struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type RoleBody struct {
	Name string `json:"name"`
}

func toMaterialResponse(m models.Material) MaterialResponse {
	return MaterialResponse{SKU: m.SKU, Description: m.Description, Unit: string(m.Unit), Category: m.Category}
}

func toRigResponse(r models.Rig) RigResponse {
	return RigResponse{ID: r.ID, Name: r.Name, Location: r.Location}
}

func (b MaterialBody) model() models.Material {
	return models.Material{SKU: b.SKU, Description: b.Description, Unit: models.Unit(b.Unit), Category: b.Category}
}

// ----------------------------------------
// MATERIAIS
// ----------------------------------------

// GET /api/catalog/materials?q=capacete
func ListMaterialsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		materials, err := svc.ListMaterials()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Materiais não puderam ser listados")
		}

		q := strings.ToLower(strings.TrimSpace(c.Query("q")))
		res := make([]MaterialResponse, 0, len(materials))
		for _, m := range materials {
			if q != "" && !strings.Contains(strings.ToLower(m.SKU+" "+m.Description), q) {
				continue
			}
			res = append(res, toMaterialResponse(m))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/materials
func CreateMaterialHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body MaterialBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		m, err := svc.AddMaterial(actor, body.model())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toMaterialResponse(m))
	}
}

// PUT /api/admin/materials/:sku
func UpdateMaterialHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body MaterialBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.SKU == "" {
			body.SKU = c.Params("sku")
		}

		m, err := svc.UpdateMaterial(actor, c.Params("sku"), body.model())
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(toMaterialResponse(m))
	}
}

// DELETE /api/admin/materials/:sku
func DeleteMaterialHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteMaterial(actor, c.Params("sku")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/materials/import (multipart, campo "file")
func ImportMaterialsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Arquivo não enviado")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Apenas arquivos .xlsx são aceitos")
		}
		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Arquivo não pôde ser aberto")
		}
		defer file.Close()

		result, err := svc.ImportMaterials(actor, file)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(result)
	}
}

// ----------------------------------------
// SONDAS
// ----------------------------------------

// GET /api/catalog/rigs
func ListRigsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rigs, err := svc.ListRigs()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sondas não puderam ser listadas")
		}
		res := make([]RigResponse, 0, len(rigs))
		for _, r := range rigs {
			res = append(res, toRigResponse(r))
		}
		return c.JSON(res)
	}
}

// POST /api/admin/rigs
func CreateRigHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body RigBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		r, err := svc.AddRig(actor, models.Rig{ID: body.ID, Name: body.Name, Location: body.Location})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toRigResponse(r))
	}
}

// PUT /api/admin/rigs/:id
func UpdateRigHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body RigBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}
		if body.ID == "" {
			body.ID = c.Params("id")
		}

		r, err := svc.UpdateRig(actor, c.Params("id"), models.Rig{ID: body.ID, Name: body.Name, Location: body.Location})
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(toRigResponse(r))
	}
}

// DELETE /api/admin/rigs/:id
func DeleteRigHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteRig(actor, c.Params("id")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// CARGOS
// ----------------------------------------

// GET /api/catalog/roles
func ListRolesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, err := svc.ListRoles()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cargos não puderam ser listados")
		}
		return c.JSON(roles)
	}
}

// POST /api/admin/roles
func CreateRoleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body RoleBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		name, err := svc.AddRole(actor, body.Name)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(RoleBody{Name: name})
	}
}

// PUT /api/admin/roles/:name
func UpdateRoleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body RoleBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		name, err := svc.UpdateRole(actor, c.Params("name"), body.Name)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(RoleBody{Name: name})
	}
}

// DELETE /api/admin/roles/:name
func DeleteRoleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteRole(actor, c.Params("name")); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
