package requests

import (
	"fmt"
	"slices"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/audit"
	"sondalog-backend/internal/metrics"
	"sondalog-backend/internal/models"

	"gorm.io/gorm"
)

// Decision acompanha uma decisão do supervisor. Version, quando informada,
// precisa ser a versão que o supervisor viu na tela.
type Decision struct {
	Note    string
	Version int
}

type transition struct {
	name   string
	from   []models.RequestStatus
	to     models.RequestStatus
	action models.AuditAction
	label  string
}

var (
	approve = transition{"approve", []models.RequestStatus{models.RequestStatusPending, models.RequestStatusRejected}, models.RequestStatusApproved, models.AuditActionApprove, "aprovada"}
	reject  = transition{"reject", []models.RequestStatus{models.RequestStatusPending}, models.RequestStatusRejected, models.AuditActionReject, "rejeitada"}
	restore = transition{"restore", []models.RequestStatus{models.RequestStatusRejected}, models.RequestStatusApproved, models.AuditActionRestore, "restaurada da lixeira"}
)

func (s *Service) Approve(actor access.Principal, id string, d Decision) (models.MaterialRequest, error) {
	return s.apply(actor, id, d, approve)
}

func (s *Service) Reject(actor access.Principal, id string, d Decision) (models.MaterialRequest, error) {
	return s.apply(actor, id, d, reject)
}

// Restore aprova uma solicitação que estava na lixeira. Diferente de
// Approve, só aceita REJECTED.
func (s *Service) Restore(actor access.Principal, id string, d Decision) (models.MaterialRequest, error) {
	return s.apply(actor, id, d, restore)
}

// loadOwned carrega a solicitação e confere se ela foi encaminhada ao
// supervisor da sessão.
func (s *Service) loadOwned(tx *gorm.DB, actor access.Principal, id string, expectedVersion int) (models.MaterialRequest, error) {
	if err := access.Require(actor, access.ActionDecide, access.ResourceRequest); err != nil {
		return models.MaterialRequest{}, err
	}
	req, err := s.load(tx, id)
	if err != nil {
		return models.MaterialRequest{}, err
	}
	if req.SupervisorID != actor.ID {
		return models.MaterialRequest{}, fmt.Errorf("%w: solicitação encaminhada a outro supervisor", apperr.ErrForbidden)
	}
	if expectedVersion != 0 && expectedVersion != req.Version {
		return models.MaterialRequest{}, apperr.ErrConflict
	}
	return req, nil
}

func (s *Service) apply(actor access.Principal, id string, d Decision, t transition) (models.MaterialRequest, error) {
	var updated models.MaterialRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		before, err := s.loadOwned(tx, actor, id, d.Version)
		if err != nil {
			return err
		}
		if !slices.Contains(t.from, before.Status) {
			return fmt.Errorf("%w: %s -> %s", apperr.ErrInvalidTransition, before.Status, t.to)
		}

		changes := map[string]any{
			"status":     t.to,
			"decided_at": s.now().UTC(),
			"version":    before.Version + 1,
		}
		if d.Note != "" {
			changes["supervisor_note"] = d.Note
		}
		res := tx.Model(&models.MaterialRequest{}).
			Where("id = ? AND version = ?", before.ID, before.Version).
			Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrConflict
		}

		updated, err = s.load(tx, id)
		if err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "request",
			EntityID:    id,
			Action:      t.action,
			Description: fmt.Sprintf("Solicitação %s (%s -> %s)", t.label, before.Status, t.to),
			Before:      statusSnapshot(before),
			After:       statusSnapshot(updated),
		})
	})
	if err != nil {
		return models.MaterialRequest{}, err
	}

	metrics.Transitions.WithLabelValues(t.name).Inc()
	return updated, nil
}

// Purge exclui definitivamente uma solicitação da lixeira.
func (s *Service) Purge(actor access.Principal, id string, version int) error {
	if err := access.Require(actor, access.ActionDelete, access.ResourceRequest); err != nil {
		return err
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		before, err := s.loadOwned(tx, actor, id, version)
		if err != nil {
			return err
		}
		if before.Status != models.RequestStatusRejected {
			return fmt.Errorf("%w: só solicitações rejeitadas podem ser excluídas", apperr.ErrInvalidTransition)
		}

		res := tx.Where("id = ? AND version = ?", before.ID, before.Version).Delete(&models.MaterialRequest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrConflict
		}
		// SQLite não aplica a chave estrangeira sem PRAGMA foreign_keys
		if err := tx.Where("request_id = ?", before.ID).Delete(&models.RequestItem{}).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "request",
			EntityID:    id,
			Action:      models.AuditActionPurge,
			Description: fmt.Sprintf("Solicitação excluída da lixeira: %d item(ns)", len(before.Items)),
			Before:      before,
		})
	})
	if err != nil {
		return err
	}

	metrics.Transitions.WithLabelValues("purge").Inc()
	return nil
}

type statusView struct {
	Status         models.RequestStatus `json:"status"`
	SupervisorNote string               `json:"supervisor_note,omitempty"`
	Version        int                  `json:"version"`
}

func statusSnapshot(r models.MaterialRequest) statusView {
	return statusView{Status: r.Status, SupervisorNote: r.SupervisorNote, Version: r.Version}
}
