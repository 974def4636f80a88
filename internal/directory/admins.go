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

// AdminUpdate: campos vazios de senha mantêm a senha atual.
type AdminUpdate struct {
	ID              string
	Name            string
	Role            models.AdminRole // ignorado em UpdateOwnAccount
	Password        string
	PasswordConfirm string
}

func (s *Service) GetAdmin(id string) (models.Admin, error) {
	var a models.Admin
	if err := s.db.First(&a, "id = ?", id).Error; err != nil {
		return models.Admin{}, notFound(err, "administrador", id)
	}
	return a, nil
}

func (s *Service) ListAdmins(actor access.Principal) ([]models.Admin, error) {
	if err := access.Require(actor, access.ActionRead, access.ResourceAdmin); err != nil {
		return nil, err
	}
	var admins []models.Admin
	if err := s.db.Order("name asc").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}

func (s *Service) AddAdmin(actor access.Principal, a models.Admin) (models.Admin, error) {
	if err := access.Require(actor, access.ActionCreate, access.ResourceAdmin); err != nil {
		return models.Admin{}, err
	}
	a.ID = strings.TrimSpace(a.ID)
	a.Name = strings.TrimSpace(a.Name)
	if a.Role == "" {
		a.Role = models.AdminRoleCommon
	}
	if a.ID == "" || a.Name == "" || a.Password == "" {
		return models.Admin{}, fmt.Errorf("%w: login, nome e senha são obrigatórios", apperr.ErrValidation)
	}
	if !a.Role.Valid() {
		return models.Admin{}, fmt.Errorf("%w: nível de acesso %q inválido", apperr.ErrValidation, a.Role)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		found, err := exists(tx, &models.Admin{}, "id", a.ID)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: login %s", apperr.ErrDuplicateKey, a.ID)
		}
		if err := tx.Create(&a).Error; err != nil {
			if database.IsDuplicate(err) {
				return fmt.Errorf("%w: login %s", apperr.ErrDuplicateKey, a.ID)
			}
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "admin",
			EntityID:    a.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Administrador cadastrado: %s (%s)", a.ID, a.Role),
			After:       publicAdmin(a),
		})
	})
	if err != nil {
		return models.Admin{}, err
	}
	return a, nil
}

// UpdateAdmin altera outro administrador (ou o próprio) pela gestão de
// administradores. Login novo que pertença a outro registro rejeita tudo.
func (s *Service) UpdateAdmin(actor access.Principal, oldID string, in AdminUpdate) (models.Admin, error) {
	if err := access.Require(actor, access.ActionUpdate, access.ResourceAdmin); err != nil {
		return models.Admin{}, err
	}
	if in.Role != "" && !in.Role.Valid() {
		return models.Admin{}, fmt.Errorf("%w: nível de acesso %q inválido", apperr.ErrValidation, in.Role)
	}
	return s.updateAdmin(actor, oldID, in, "Administrador atualizado")
}

// UpdateOwnAccount altera login, nome e senha do administrador da sessão.
// O nível de acesso não muda por aqui.
func (s *Service) UpdateOwnAccount(actor access.Principal, in AdminUpdate) (models.Admin, error) {
	if !actor.IsAdmin() {
		return models.Admin{}, fmt.Errorf("%w: apenas administradores", apperr.ErrForbidden)
	}
	in.Role = ""
	return s.updateAdmin(actor, actor.ID, in, "Conta própria atualizada")
}

func (s *Service) updateAdmin(actor access.Principal, oldID string, in AdminUpdate, what string) (models.Admin, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	if in.ID == "" || in.Name == "" {
		return models.Admin{}, fmt.Errorf("%w: login e nome são obrigatórios", apperr.ErrValidation)
	}
	if in.Password != "" && in.Password != in.PasswordConfirm {
		return models.Admin{}, fmt.Errorf("%w: a confirmação de senha não confere", apperr.ErrValidation)
	}

	var updated models.Admin
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var before models.Admin
		if err := tx.First(&before, "id = ?", oldID).Error; err != nil {
			return notFound(err, "administrador", oldID)
		}

		if in.ID != oldID {
			taken, err := exists(tx, &models.Admin{}, "id", in.ID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: login %s", apperr.ErrDuplicateKey, in.ID)
			}
		}

		changes := map[string]any{"id": in.ID, "name": in.Name}
		if in.Password != "" {
			changes["password"] = in.Password
		}
		if in.Role != "" && in.Role != before.Role {
			if before.Role == models.AdminRoleMaster {
				if err := ensureAnotherMaster(tx, oldID); err != nil {
					return err
				}
			}
			changes["role"] = in.Role
		}

		res := tx.Model(&models.Admin{}).Where("id = ?", oldID).Updates(changes)
		if res.Error != nil {
			if database.IsDuplicate(res.Error) {
				return fmt.Errorf("%w: login %s", apperr.ErrDuplicateKey, in.ID)
			}
			return res.Error
		}
		if err := tx.First(&updated, "id = ?", in.ID).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "admin",
			EntityID:    updated.ID,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("%s: %s", what, oldID),
			Before:      publicAdmin(before),
			After:       publicAdmin(updated),
		})
	})
	if err != nil {
		return models.Admin{}, err
	}
	return updated, nil
}

func (s *Service) DeleteAdmin(actor access.Principal, id string) error {
	if err := access.Require(actor, access.ActionDelete, access.ResourceAdmin); err != nil {
		return err
	}
	if actor.IsAdmin() && actor.ID == id {
		return apperr.ErrSelfDelete
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var before models.Admin
		if err := tx.First(&before, "id = ?", id).Error; err != nil {
			return notFound(err, "administrador", id)
		}
		if before.Role == models.AdminRoleMaster {
			if err := ensureAnotherMaster(tx, id); err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Admin{}, "id = ?", id).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "admin",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Administrador excluído: %s (%s)", before.ID, before.Role),
			Before:      publicAdmin(before),
		})
	})
}

// ensureAnotherMaster impede que o sistema fique sem administrador MASTER.
func ensureAnotherMaster(tx *gorm.DB, exceptID string) error {
	var masters int64
	err := tx.Model(&models.Admin{}).
		Where("role = ? AND id <> ?", models.AdminRoleMaster, exceptID).
		Count(&masters).Error
	if err != nil {
		return err
	}
	if masters == 0 {
		return fmt.Errorf("%w: é necessário manter pelo menos um administrador MASTER", apperr.ErrValidation)
	}
	return nil
}

func publicAdmin(a models.Admin) models.Admin {
	a.Password = ""
	return a
}
