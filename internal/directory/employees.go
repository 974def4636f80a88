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

// resourceFor: registros de supervisor seguem a permissão de supervisor
// mesmo quando alterados pelo cadastro de colaboradores.
func resourceFor(e models.Employee) access.Resource {
	if e.IsSupervisor() {
		return access.ResourceSupervisor
	}
	return access.ResourceEmployee
}

func normalizeEmployee(tx *gorm.DB, e models.Employee) (models.Employee, error) {
	e.ID = strings.TrimSpace(e.ID)
	e.Name = strings.TrimSpace(e.Name)
	e.Role = strings.TrimSpace(e.Role)
	e.Password = ""

	if e.ID == "" || e.Name == "" || e.Role == "" {
		return e, fmt.Errorf("%w: matrícula, nome e cargo são obrigatórios", apperr.ErrValidation)
	}
	if e.Role == models.SupervisorRole {
		return e, fmt.Errorf("%w: supervisores são cadastrados na área de supervisores", apperr.ErrValidation)
	}
	known, err := exists(tx, &models.JobRole{}, "name", e.Role)
	if err != nil {
		return e, err
	}
	if !known {
		return e, fmt.Errorf("%w: cargo %s não cadastrado", apperr.ErrValidation, e.Role)
	}
	return e, nil
}

func (s *Service) AddEmployee(actor access.Principal, e models.Employee) (models.Employee, error) {
	if err := access.Require(actor, access.ActionCreate, access.ResourceEmployee); err != nil {
		return models.Employee{}, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		e, err = normalizeEmployee(tx, e)
		if err != nil {
			return err
		}
		return insertEmployee(tx, actor, &e, "Colaborador cadastrado")
	})
	if err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

func insertEmployee(tx *gorm.DB, actor access.Principal, e *models.Employee, what string) error {
	found, err := exists(tx, &models.Employee{}, "id", e.ID)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: matrícula %s", apperr.ErrDuplicateKey, e.ID)
	}
	if err := tx.Create(e).Error; err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("%w: matrícula %s", apperr.ErrDuplicateKey, e.ID)
		}
		return err
	}
	return audit.WriteLog(tx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "employee",
		EntityID:    e.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("%s: %s - %s (%s)", what, e.ID, e.Name, e.Role),
		After:       publicEmployee(*e),
	})
}

// UpdateEmployee altera um colaborador comum. Um supervisor alterado por
// aqui perde o cargo e a senha, e exige permissão de supervisor.
func (s *Service) UpdateEmployee(actor access.Principal, oldID string, e models.Employee) (models.Employee, error) {
	var updated models.Employee
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var before models.Employee
		if err := tx.First(&before, "id = ?", oldID).Error; err != nil {
			if err := access.Require(actor, access.ActionUpdate, access.ResourceEmployee); err != nil {
				return err
			}
			return notFound(err, "colaborador", oldID)
		}
		if err := access.Require(actor, access.ActionUpdate, resourceFor(before)); err != nil {
			return err
		}

		var err error
		e, err = normalizeEmployee(tx, e)
		if err != nil {
			return err
		}
		if err := checkRename(tx, oldID, e.ID); err != nil {
			return err
		}

		res := tx.Model(&models.Employee{}).Where("id = ?", oldID).Updates(map[string]any{
			"id":       e.ID,
			"name":     e.Name,
			"role":     e.Role,
			"password": "",
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
			Description: "Colaborador atualizado: " + oldID,
			Before:      publicEmployee(before),
			After:       publicEmployee(updated),
		})
	})
	if err != nil {
		return models.Employee{}, err
	}
	return updated, nil
}

func (s *Service) DeleteEmployee(actor access.Principal, id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var before models.Employee
		if err := tx.First(&before, "id = ?", id).Error; err != nil {
			if err := access.Require(actor, access.ActionDelete, access.ResourceEmployee); err != nil {
				return err
			}
			return notFound(err, "colaborador", id)
		}
		if err := access.Require(actor, access.ActionDelete, resourceFor(before)); err != nil {
			return err
		}
		return deleteEmployee(tx, actor, before)
	})
}

func deleteEmployee(tx *gorm.DB, actor access.Principal, e models.Employee) error {
	if err := tx.Delete(&models.Employee{}, "id = ?", e.ID).Error; err != nil {
		return err
	}
	return audit.WriteLog(tx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "employee",
		EntityID:    e.ID,
		Action:      models.AuditActionDelete,
		Description: fmt.Sprintf("Colaborador excluído: %s - %s (%s)", e.ID, e.Name, e.Role),
		Before:      publicEmployee(e),
	})
}

// publicEmployee remove a senha antes de gravar no log.
func publicEmployee(e models.Employee) models.Employee {
	e.Password = ""
	return e
}
