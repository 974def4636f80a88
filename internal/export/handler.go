package export

import (
	"fmt"
	"strconv"

	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/requests"
	"sondalog-backend/internal/session"

	"github.com/gofiber/fiber/v2"
)

type ExportBody struct {
	Partition     string   `json:"partition"`
	RequestIDs    []string `json:"request_ids"`
	IncludeStatus bool     `json:"include_status"`
	Format        string   `json:"format"`
}

// POST /api/supervisor/exports
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body ExportBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Corpo da requisição inválido")
		}

		file, err := svc.Export(actor, Options{
			Partition:     requests.Partition(body.Partition),
			RequestIDs:    body.RequestIDs,
			IncludeStatus: body.IncludeStatus,
			Format:        Format(body.Format),
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		c.Set(fiber.HeaderContentType, file.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Name))
		c.Set("X-Export-Rows", strconv.Itoa(file.Rows))
		return c.Send(file.Data)
	}
}
