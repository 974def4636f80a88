package directory

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

func (s *Service) getSupervisor(tx *gorm.DB, id string) (models.Employee, error) {
	var e models.Employee
	if err := tx.First(&e, "id = ? AND role = ?", id, models.SupervisorRole).Error; err != nil {
		return models.Employee{}, notFound(err, "supervisor", id)
	}
	return e, nil
}

// AddSupervisor cadastra um supervisor. Sem senha informada, recebe a senha
// inicial padrão.
func (s *Service) AddSupervisor(actor access.Principal, e models.Employee) (models.Employee, error) {
	if err := access.Require(actor, access.ActionCreate, access.ResourceSupervisor); err != nil {
		return models.Employee{}, err
	}

	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.Role = models.SupervisorRole
	if e.ID == "" || e.Name == "" {
		return models.Employee{}, fmt.Errorf("%w: matrícula e nome são obrigatórios", apperr.ErrValidation)
	}
	if e.Password == "" {
		e.Password = database.DefaultSupervisorPassword
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return insertEmployee(tx, actor, &e, "Supervisor cadastrado")
	})
	if err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

// UpdateSupervisor altera matrícula e nome. A senha só muda pelo próprio
// supervisor.
func (s *Service) UpdateSupervisor(actor access.Principal, oldID string, e models.Employee) (models.Employee, error) {
	if err := access.Require(actor, access.ActionUpdate, access.ResourceSupervisor); err != nil {
		return models.Employee{}, err
	}
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	if e.ID == "" || e.Name == "" {
		return models.Employee{}, fmt.Errorf("%w: matrícula e nome são obrigatórios", apperr.ErrValidation)
	}

	var updated models.Employee
	err := s.db.Transaction(func(tx *gorm.DB) error {
		before, err := s.getSupervisor(tx, oldID)
		if err != nil {
			return err
		}
		if err := checkRename(tx, oldID, e.ID); err != nil {
			return err
		}

		res := tx.Model(&models.Employee{}).Where("id = ?", oldID).Updates(map[string]any{
			"id":   e.ID,
			"name": e.Name,
		})
		if res.Error != nil {
			if database.IsDuplicate(res.Error) {
				return fmt.Errorf("%w: matrícula %s", apperr.ErrDuplicateKey, e.ID)
			}
			return res.Error
		}
		if err := tx.First(&updated, "id = ?", e.ID).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "employee",
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: "Supervisor atualizado: " + oldID,
			Before:      publicEmployee(before),
			After:       publicEmployee(updated),
		})
	})
	if err != nil {
		return models.Employee{}, err
	}
	return updated, nil
}

func (s *Service) DeleteSupervisor(actor access.Principal, id string) error {
	if err := access.Require(actor, access.ActionDelete, access.ResourceSupervisor); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		before, err := s.getSupervisor(tx, id)
		if err != nil {
			return err
		}
		return deleteEmployee(tx, actor, before)
	})
}
