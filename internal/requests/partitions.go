package requests

import (
	"fmt"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"

	"gorm.io/gorm"
)

// Partition é uma aba do painel do supervisor.
type Partition string

const (
	PartitionPending  Partition = "pending"
	PartitionApproved Partition = "approved"
	PartitionRejected Partition = "rejected" // lixeira
	PartitionHistory  Partition = "history"  // aprovadas e rejeitadas
)

func ParsePartition(s string) (Partition, error) {
	switch p := Partition(s); p {
	case PartitionPending, PartitionApproved, PartitionRejected, PartitionHistory:
		return p, nil
	case "":
		return PartitionPending, nil
	}
	return "", fmt.Errorf("%w: aba %q desconhecida", apperr.ErrValidation, s)
}

func (p Partition) scope(tx *gorm.DB) *gorm.DB {
	switch p {
	case PartitionPending:
		return tx.Where("status = ?", models.RequestStatusPending)
	case PartitionApproved:
		return tx.Where("status = ?", models.RequestStatusApproved)
	case PartitionRejected:
		return tx.Where("status = ?", models.RequestStatusRejected)
	default:
		return tx.Where("status <> ?", models.RequestStatusPending)
	}
}

// mine restringe a consulta às solicitações encaminhadas ao supervisor.
func (s *Service) mine(actor access.Principal) (*gorm.DB, error) {
	if err := access.Require(actor, access.ActionRead, access.ResourceRequest); err != nil {
		return nil, err
	}
	return s.db.Model(&models.MaterialRequest{}).Where("supervisor_id = ?", actor.ID), nil
}

// List devolve as solicitações do supervisor na aba pedida, mais recentes
// primeiro.
func (s *Service) List(actor access.Principal, p Partition) ([]models.MaterialRequest, error) {
	q, err := s.mine(actor)
	if err != nil {
		return nil, err
	}
	var list []models.MaterialRequest
	if err := withItems(p.scope(q)).Order("created_at desc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// PendingCount alimenta o contador de pendências do painel.
func (s *Service) PendingCount(actor access.Principal) (int64, error) {
	q, err := s.mine(actor)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := PartitionPending.scope(q).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Selection devolve, dentre ids, as solicitações do supervisor que estão na
// aba p. IDs de outras abas ou de outros supervisores são ignorados.
func (s *Service) Selection(actor access.Principal, p Partition, ids []string) ([]models.MaterialRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q, err := s.mine(actor)
	if err != nil {
		return nil, err
	}
	var list []models.MaterialRequest
	err = withItems(p.scope(q)).
		Where("id IN ?", ids).
		Order("created_at desc, id asc").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
