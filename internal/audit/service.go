package audit

import (
	"encoding/json"
	"fmt"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	Actor       access.Principal
	EntityType  string
	EntityID    string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog grava o log dentro da transação recebida, junto com a alteração.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		ActorKind:   string(opts.Actor.Kind),
		ActorID:     opts.Actor.ID,
		ActorName:   opts.Actor.Name,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: truncate(opts.Description, 255),
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("log de auditoria não gravado: %w", err)
	}
	return nil
}

type Filter struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(actor access.Principal, f Filter) ([]models.AuditLog, error) {
	if err := access.Require(actor, access.ActionRead, access.ResourceAudit); err != nil {
		return nil, err
	}

	q := s.db.Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("logs não listados: %w", err)
	}
	return logs, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
