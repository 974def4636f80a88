package requests

import (
	"time"

	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"
	"sondalog-backend/internal/session"

	"github.com/gofiber/fiber/v2"
)

type ItemBody struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type CreateRequestBody struct {
	RigID        string     `json:"rig_id"`
	EmployeeID   string     `json:"employee_id"`
	SupervisorID string     `json:"supervisor_id"`
	Items        []ItemBody `json:"items"`
}

type DecisionBody struct {
	Note    string `json:"note"`
	Version int    `json:"version"`
}

type ItemResponse struct {
	SKU         string `json:"sku"`
	Description string `json:"description"`
	Unit        string `json:"unit"`
	Category    string `json:"category"`
	Quantity    int    `json:"quantity"`
}

type RequestResponse struct {
	ID             string         `json:"id"`
	RigID          string         `json:"rig_id"`
	EmployeeID     string         `json:"employee_id"`
	SupervisorID   string         `json:"supervisor_id"`
	Status         string         `json:"status"`
	SupervisorNote string         `json:"supervisor_note,omitempty"`
	CreatedAt      string         `json:"created_at"`
	DecidedAt      *string        `json:"decided_at,omitempty"`
	Version        int            `json:"version"`
	Items          []ItemResponse `json:"items"`
}

func toRequestResponse(r models.MaterialRequest) RequestResponse {
	items := make([]ItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ItemResponse{
			SKU:         it.MaterialSKU,
			Description: it.MaterialDescription,
			Unit:        string(it.MaterialUnit),
			Category:    it.MaterialCategory,
			Quantity:    it.Quantity,
		})
	}
	res := RequestResponse{
		ID:             r.ID,
		RigID:          r.RigID,
		EmployeeID:     r.EmployeeID,
		SupervisorID:   r.SupervisorID,
		Status:         string(r.Status),
		SupervisorNote: r.SupervisorNote,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		Version:        r.Version,
		Items:          items,
	}
	if r.DecidedAt != nil {
		decided := r.DecidedAt.Format(time.RFC3339)
		res.DecidedAt = &decided
	}
	return res
}

// POST /api/requests
// Formulário público de solicitação.
func CreateRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRequestBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		in := CreateInput{RigID: body.RigID, EmployeeID: body.EmployeeID, SupervisorID: body.SupervisorID}
		for _, it := range body.Items {
			in.Items = append(in.Items, ItemInput{SKU: it.SKU, Quantity: it.Quantity})
		}

		req, err := svc.Create(in)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toRequestResponse(req))
	}
}

// GET /api/supervisor/requests?status=pending|approved|rejected|history
func ListRequestsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		p, err := ParsePartition(c.Query("status"))
		if err != nil {
			return apperr.ToFiber(err)
		}

		list, err := svc.List(actor, p)
		if err != nil {
			return apperr.ToFiber(err)
		}
		res := make([]RequestResponse, 0, len(list))
		for _, r := range list {
			res = append(res, toRequestResponse(r))
		}
		return c.JSON(res)
	}
}

// GET /api/supervisor/requests/pending-count
func PendingCountHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		n, err := svc.PendingCount(actor)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(fiber.Map{"pending": n})
	}
}

// DecisionHandler atende approve, reject e restore.
// POST /api/supervisor/requests/:id/approve
// POST /api/supervisor/requests/:id/reject
// POST /api/supervisor/requests/:id/restore
func DecisionHandler(svc *Service, transition string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body DecisionBody
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&body); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
			}
		}
		d := Decision{Note: body.Note, Version: body.Version}

		var req models.MaterialRequest
		switch transition {
		case "approve":
			req, err = svc.Approve(actor, c.Params("id"), d)
		case "reject":
			req, err = svc.Reject(actor, c.Params("id"), d)
		case "restore":
			req, err = svc.Restore(actor, c.Params("id"), d)
		default:
			return fiber.NewError(fiber.StatusNotFound, "Operação desconhecida")
		}
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(toRequestResponse(req))
	}
}

// DELETE /api/supervisor/requests/:id?version=3
func PurgeRequestHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := svc.Purge(actor, c.Params("id"), c.QueryInt("version", 0)); err != nil {
			return apperr.ToFiber(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
