package audit

import (
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/session"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID          uint   `json:"id"`
	CreatedAt   string `json:"created_at"`
	ActorKind   string `json:"actor_kind"`
	ActorID     string `json:"actor_id"`
	ActorName   string `json:"actor_name"`
	EntityType  string `json:"entity_type"`
	EntityID    string `json:"entity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	BeforeData  string `json:"before_data"`
	AfterData   string `json:"after_data"`
}

// GET /api/admin/audit-logs?entity_type=request&entity_id=...&actor_id=...&limit=50
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := session.PrincipalFrom(c)
		if err != nil {
			return err
		}

		logs, err := svc.List(actor, Filter{
			EntityType: c.Query("entity_type"),
			EntityID:   c.Query("entity_id"),
			ActorID:    c.Query("actor_id"),
			Limit:      c.QueryInt("limit", 100),
		})
		if err != nil {
			return apperr.ToFiber(err)
		}

		res := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			res = append(res, AuditLogResponse{
				ID:          l.ID,
				CreatedAt:   l.CreatedAt.Format("2006-01-02 15:04:05"),
				ActorKind:   l.ActorKind,
				ActorID:     l.ActorID,
				ActorName:   l.ActorName,
				EntityType:  l.EntityType,
				EntityID:    l.EntityID,
				Action:      string(l.Action),
				Description: l.Description,
				BeforeData:  l.BeforeData,
				AfterData:   l.AfterData,
			})
		}
		return c.JSON(res)
	}
}
