package dashboard

import (
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/session"

	"github.com/gofiber/fiber/v2"
)

// GET /api/supervisor/dashboard/requests?period=daily&count=7
func RequestChartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}
		period, err := ParsePeriod(c.Query("period"))
		if err != nil {
			return apperr.ToFiber(err)
		}
		count := c.QueryInt("count", 0)
		if count < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "count inválido")
		}

		chart, err := svc.RequestChart(actor, period, count)
		if err != nil {
			return apperr.ToFiber(err)
		}
		return c.JSON(chart)
	}
}
