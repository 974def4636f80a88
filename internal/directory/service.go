// Package directory mantém colaboradores, supervisores e administradores.
package directory

import (
	"errors"
	"fmt"

	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func notFound(err error, what, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", apperr.ErrNotFound, what, key)
	}
	return err
}

func exists(tx *gorm.DB, model any, column, key string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(column+" = ?", key).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// referencedByRequests: a matrícula aparece como solicitante ou supervisor.
func referencedByRequests(tx *gorm.DB, employeeID string) (bool, error) {
	var count int64
	err := tx.Model(&models.MaterialRequest{}).
		Where("employee_id = ? OR supervisor_id = ?", employeeID, employeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// checkRename valida a troca de matrícula: o novo ID não pode pertencer a
// outro colaborador e o antigo não pode constar em solicitações.
func checkRename(tx *gorm.DB, oldID, newID string) error {
	if newID == oldID {
		return nil
	}
	taken, err := exists(tx, &models.Employee{}, "id", newID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: matrícula %s", apperr.ErrDuplicateKey, newID)
	}
	referenced, err := referencedByRequests(tx, oldID)
	if err != nil {
		return err
	}
	if referenced {
		return fmt.Errorf("%w: matrícula %s já consta em solicitações e não pode ser alterada", apperr.ErrInUse, oldID)
	}
	return nil
}

// GetEmployee busca qualquer colaborador, supervisor ou não.
func (s *Service) GetEmployee(id string) (models.Employee, error) {
	var e models.Employee
	if err := s.db.First(&e, "id = ?", id).Error; err != nil {
		return models.Employee{}, notFound(err, "colaborador", id)
	}
	return e, nil
}

// ListEmployees devolve todos os colaboradores, incluindo supervisores.
func (s *Service) ListEmployees() ([]models.Employee, error) {
	var employees []models.Employee
	if err := s.db.Order("name asc").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *Service) ListSupervisors() ([]models.Employee, error) {
	var supervisors []models.Employee
	if err := s.db.Where("role = ?", models.SupervisorRole).Order("name asc").Find(&supervisors).Error; err != nil {
		return nil, err
	}
	return supervisors, nil
}
