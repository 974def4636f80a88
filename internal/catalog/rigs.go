package catalog

import (
	"fmt"
	"strings"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/audit"
	"sondalog-backend/internal/database"
	"sondalog-backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) ListRigs() ([]models.Rig, error) {
	var rigs []models.Rig
	if err := s.db.Order("id asc").Find(&rigs).Error; err != nil {
		return nil, err
	}
	return rigs, nil
}

func (s *Service) GetRig(id string) (models.Rig, error) {
	var r models.Rig
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		return models.Rig{}, notFound(err, "sonda", id)
	}
	return r, nil
}

func normalizeRig(r models.Rig) (models.Rig, error) {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Location = strings.TrimSpace(r.Location)
	if r.ID == "" || r.Name == "" {
		return r, fmt.Errorf("%w: código e nome da sonda são obrigatórios", apperr.ErrValidation)
	}
	return r, nil
}

func (s *Service) AddRig(actor access.Principal, r models.Rig) (models.Rig, error) {
	if err := access.Require(actor, access.ActionCreate, access.ResourceRig); err != nil {
		return models.Rig{}, err
	}
	r, err := normalizeRig(r)
	if err != nil {
		return models.Rig{}, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Rig{}, "id", r.ID)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: sonda %s", apperr.ErrDuplicateKey, r.ID)
		}
		if err := tx.Create(&r).Error; err != nil {
			if database.IsDuplicate(err) {
				return fmt.Errorf("%w: sonda %s", apperr.ErrDuplicateKey, r.ID)
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "rig",
			EntityID:    r.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Sonda cadastrada: %s - %s", r.ID, r.Name),
			After:       r,
		})
	})
	if err != nil {
		return models.Rig{}, err
	}
	return r, nil
}

func (s *Service) UpdateRig(actor access.Principal, oldID string, r models.Rig) (models.Rig, error) {
	if err := access.Require(actor, access.ActionUpdate, access.ResourceRig); err != nil {
		return models.Rig{}, err
	}
	r, err := normalizeRig(r)
	if err != nil {
		return models.Rig{}, err
	}

	var updated models.Rig
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var before models.Rig
		if err := tx.First(&before, "id = ?", oldID).Error; err != nil {
			return notFound(err, "sonda", oldID)
		}

		if r.ID != oldID {
			taken, err := exists(tx, &models.Rig{}, "id", r.ID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: sonda %s", apperr.ErrDuplicateKey, r.ID)
			}
			referenced, err := exists(tx, &models.MaterialRequest{}, "rig_id", oldID)
			if err != nil {
				return err
			}
			if referenced {
				return fmt.Errorf("%w: sonda %s possui solicitações e o código não pode mudar", apperr.ErrInUse, oldID)
			}
		}

		res := tx.Model(&models.Rig{}).Where("id = ?", oldID).Updates(map[string]any{
			"id":       r.ID,
			"name":     r.Name,
			"location": r.Location,
		})
		if res.Error != nil {
			if database.IsDuplicate(res.Error) {
				return fmt.Errorf("%w: sonda %s", apperr.ErrDuplicateKey, r.ID)
			}
			return res.Error
		}
		if err := tx.First(&updated, "id = ?", r.ID).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "rig",
			EntityID:    r.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Sonda atualizada: %s", oldID),
			Before:      before,
			After:       updated,
		})
	})
	if err != nil {
		return models.Rig{}, err
	}
	return updated, nil
}

// DeleteRig remove a sonda. Solicitações antigas continuam com o código e a
// exportação usa o próprio código quando o nome não existe mais.
func (s *Service) DeleteRig(actor access.Principal, id string) error {
	if err := access.Require(actor, access.ActionDelete, access.ResourceRig); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var before models.Rig
		if err := tx.First(&before, "id = ?", id).Error; err != nil {
			return notFound(err, "sonda", id)
		}
		if err := tx.Delete(&models.Rig{}, "id = ?", id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "rig",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Sonda excluída: %s - %s", before.ID, before.Name),
			Before:      before,
		})
	})
}
