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

// ListRoles devolve os cargos cadastrados. "Supervisor" é reservado e não
// faz parte da lista.
func (s *Service) ListRoles() ([]string, error) {
	var roles []models.JobRole
	if err := s.db.Order("name asc").Find(&roles).Error; err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}

func normalizeRole(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: nome do cargo é obrigatório", apperr.ErrValidation)
	}
	return name, nil
}

func (s *Service) AddRole(actor access.Principal, name string) (string, error) {
	if err := access.Require(actor, access.ActionCreate, access.ResourceRole); err != nil {
		return "", err
	}
	name, err := normalizeRole(name)
	if err != nil {
		return "", err
	}
	if name == models.SupervisorRole {
		return "", fmt.Errorf("%w: cargo %s é reservado", apperr.ErrDuplicateKey, name)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.JobRole{}, "name", name)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: cargo %s", apperr.ErrDuplicateKey, name)
		}
		if err := tx.Create(&models.JobRole{Name: name}).Error; err != nil {
			if database.IsDuplicate(err) {
				return fmt.Errorf("%w: cargo %s", apperr.ErrDuplicateKey, name)
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "role",
			EntityID:    name,
			Action:      models.AuditActionCreate,
			Description: "Cargo cadastrado: " + name,
			After:       models.JobRole{Name: name},
		})
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// UpdateRole renomeia o cargo e atualiza, na mesma transação, todos os
// colaboradores que o possuem.
func (s *Service) UpdateRole(actor access.Principal, oldName, newName string) (string, error) {
	if err := access.Require(actor, access.ActionUpdate, access.ResourceRole); err != nil {
		return "", err
	}
	newName, err := normalizeRole(newName)
	if err != nil {
		return "", err
	}
	if oldName == models.SupervisorRole || newName == models.SupervisorRole {
		return "", fmt.Errorf("%w: cargo %s é reservado", apperr.ErrValidation, models.SupervisorRole)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.JobRole{}, "name", oldName)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: cargo %s", apperr.ErrNotFound, oldName)
		}
		if newName == oldName {
			return nil
		}
		taken, err := exists(tx, &models.JobRole{}, "name", newName)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: cargo %s", apperr.ErrDuplicateKey, newName)
		}

		if err := tx.Model(&models.JobRole{}).Where("name = ?", oldName).Update("name", newName).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Employee{}).Where("role = ?", oldName).Update("role", newName)
		if res.Error != nil {
			return res.Error
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "role",
			EntityID:    newName,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Cargo renomeado: %s -> %s (%d colaboradores)", oldName, newName, res.RowsAffected),
			Before:      models.JobRole{Name: oldName},
			After:       models.JobRole{Name: newName},
		})
	})
	if err != nil {
		return "", err
	}
	return newName, nil
}

// DeleteRole recusa a exclusão enquanto algum colaborador tiver o cargo.
func (s *Service) DeleteRole(actor access.Principal, name string) error {
	if err := access.Require(actor, access.ActionDelete, access.ResourceRole); err != nil {
		return err
	}
	if name == models.SupervisorRole {
		return fmt.Errorf("%w: cargo %s é reservado", apperr.ErrValidation, name)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.JobRole{}, "name", name)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: cargo %s", apperr.ErrNotFound, name)
		}

		var holders int64
		if err := tx.Model(&models.Employee{}).Where("role = ?", name).Count(&holders).Error; err != nil {
			return err
		}
		if holders > 0 {
			return fmt.Errorf("%w: cargo %s atribuído a %d colaborador(es)", apperr.ErrInUse, name, holders)
		}

		if err := tx.Delete(&models.JobRole{}, "name = ?", name).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "role",
			EntityID:    name,
			Action:      models.AuditActionDelete,
			Description: "Cargo excluído: " + name,
			Before:      models.JobRole{Name: name},
		})
	})
}
