// Package auth confere credenciais de supervisores e administradores.
// Senhas são comparadas em texto puro.
package auth

import (
	"errors"
	"fmt"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/audit"
	"sondalog-backend/internal/models"

	"gorm.io/gorm"
)

const minPasswordLen = 4

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// SupervisorLogin só aceita colaboradores com cargo Supervisor e senha
// definida. Qualquer falha devolve ErrAuthFailed.
func (s *Service) SupervisorLogin(employeeID, password string) (models.Employee, error) {
	var e models.Employee
	if err := s.db.First(&e, "id = ?", employeeID).Error; err != nil {
		return models.Employee{}, apperr.ErrAuthFailed
	}
	if !e.CanAuthenticate() || e.Password != password {
		return models.Employee{}, apperr.ErrAuthFailed
	}
	return e, nil
}

func (s *Service) AdminLogin(id, password string) (models.Admin, error) {
	var a models.Admin
	if err := s.db.First(&a, "id = ?", id).Error; err != nil {
		return models.Admin{}, apperr.ErrAuthFailed
	}
	if a.Password == "" || a.Password != password {
		return models.Admin{}, apperr.ErrAuthFailed
	}
	return a, nil
}

// LoadPrincipal recarrega o principal da sessão. Um supervisor que perdeu o
// cargo deixa de ter sessão válida.
func (s *Service) LoadPrincipal(kind access.Kind, id string) (access.Principal, error) {
	switch kind {
	case access.KindAdmin:
		var a models.Admin
		if err := s.db.First(&a, "id = ?", id).Error; err != nil {
			return access.Principal{}, lookupErr(err, id)
		}
		return access.Admin(a), nil
	case access.KindSupervisor:
		var e models.Employee
		if err := s.db.First(&e, "id = ? AND role = ?", id, models.SupervisorRole).Error; err != nil {
			return access.Principal{}, lookupErr(err, id)
		}
		return access.Supervisor(e), nil
	}
	return access.Principal{}, fmt.Errorf("%w: tipo de sessão %q", apperr.ErrNotFound, kind)
}

func lookupErr(err error, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", apperr.ErrNotFound, id)
	}
	return err
}

// ChangeSupervisorPassword troca a senha do supervisor da sessão. A senha
// atual não é pedida.
func (s *Service) ChangeSupervisorPassword(actor access.Principal, password, confirm string) error {
	if err := access.Require(actor, access.ActionUpdate, access.ResourcePassword); err != nil {
		return err
	}
	if len([]rune(password)) < minPasswordLen {
		return fmt.Errorf("%w: a senha deve ter pelo menos %d caracteres", apperr.ErrValidation, minPasswordLen)
	}
	if password != confirm {
		return fmt.Errorf("%w: a confirmação de senha não confere", apperr.ErrValidation)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Employee{}).
			Where("id = ? AND role = ?", actor.ID, models.SupervisorRole).
			Update("password", password)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: supervisor %s", apperr.ErrNotFound, actor.ID)
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "employee",
			EntityID:    actor.ID,
			Action:      models.AuditActionUpdate,
			Description: "Senha alterada pelo próprio supervisor",
		})
	})
}
