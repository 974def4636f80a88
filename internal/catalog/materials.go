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

const defaultCategory = "Geral"

func (s *Service) ListMaterials() ([]models.Material, error) {
	var materials []models.Material
	if err := s.db.Order("sku asc").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (s *Service) GetMaterial(sku string) (models.Material, error) {
	var m models.Material
	if err := s.db.First(&m, "sku = ?", sku).Error; err != nil {
		return models.Material{}, notFound(err, "material", sku)
	}
	return m, nil
}

func normalizeMaterial(m models.Material) (models.Material, error) {
	m.SKU = strings.TrimSpace(m.SKU)
	m.Description = strings.TrimSpace(m.Description)
	m.Unit = models.Unit(strings.ToUpper(strings.TrimSpace(string(m.Unit))))
	m.Category = strings.TrimSpace(m.Category)

	if m.SKU == "" || m.Description == "" {
		return m, fmt.Errorf("%w: SKU e descrição são obrigatórios", apperr.ErrValidation)
	}
	if m.Unit == "" {
		m.Unit = models.UnitUN
	}
	if !m.Unit.Valid() {
		return m, fmt.Errorf("%w: unidade %q inválida", apperr.ErrValidation, m.Unit)
	}
	if m.Category == "" {
		m.Category = defaultCategory
	}
	return m, nil
}

func (s *Service) AddMaterial(actor access.Principal, m models.Material) (models.Material, error) {
	if err := access.Require(actor, access.ActionCreate, access.ResourceMaterial); err != nil {
		return models.Material{}, err
	}
	m, err := normalizeMaterial(m)
	if err != nil {
		return models.Material{}, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.insertMaterial(tx, actor, &m)
	})
	if err != nil {
		return models.Material{}, err
	}
	return m, nil
}

func (s *Service) insertMaterial(tx *gorm.DB, actor access.Principal, m *models.Material) error {
	found, err := exists(tx, &models.Material{}, "sku", m.SKU)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: SKU %s", apperr.ErrDuplicateKey, m.SKU)
	}
	if err := tx.Create(m).Error; err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("%w: SKU %s", apperr.ErrDuplicateKey, m.SKU)
		}
		return err
	}
	return audit.WriteLog(tx, audit.LogOptions{
		Actor:       actor,
		EntityType:  "material",
		EntityID:    m.SKU,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("Material cadastrado: %s - %s", m.SKU, m.Description),
		After:       m,
	})
}

// UpdateMaterial substitui o material oldSKU. O SKU só pode mudar enquanto
// nenhuma solicitação referenciar o material.
func (s *Service) UpdateMaterial(actor access.Principal, oldSKU string, m models.Material) (models.Material, error) {
	if err := access.Require(actor, access.ActionUpdate, access.ResourceMaterial); err != nil {
		return models.Material{}, err
	}
	m, err := normalizeMaterial(m)
	if err != nil {
		return models.Material{}, err
	}

	var updated models.Material
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var before models.Material
		if err := tx.First(&before, "sku = ?", oldSKU).Error; err != nil {
			return notFound(err, "material", oldSKU)
		}

		if m.SKU != oldSKU {
			taken, err := exists(tx, &models.Material{}, "sku", m.SKU)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: SKU %s", apperr.ErrDuplicateKey, m.SKU)
			}
			referenced, err := exists(tx, &models.RequestItem{}, "material_sku", oldSKU)
			if err != nil {
				return err
			}
			if referenced {
				return fmt.Errorf("%w: SKU %s já consta em solicitações e não pode ser alterado", apperr.ErrInUse, oldSKU)
			}
		}

		res := tx.Model(&models.Material{}).Where("sku = ?", oldSKU).Updates(map[string]any{
			"sku":         m.SKU,
			"description": m.Description,
			"unit":        m.Unit,
			"category":    m.Category,
		})
		if res.Error != nil {
			if database.IsDuplicate(res.Error) {
				return fmt.Errorf("%w: SKU %s", apperr.ErrDuplicateKey, m.SKU)
			}
			return res.Error
		}

		if err := tx.First(&updated, "sku = ?", m.SKU).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "material",
			EntityID:    m.SKU,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("Material atualizado: %s", oldSKU),
			Before:      before,
			After:       updated,
		})
	})
	if err != nil {
		return models.Material{}, err
	}
	return updated, nil
}

// DeleteMaterial remove o material do catálogo. As solicitações guardam cópia
// do material e não são alteradas.
func (s *Service) DeleteMaterial(actor access.Principal, sku string) error {
	if err := access.Require(actor, access.ActionDelete, access.ResourceMaterial); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var before models.Material
		if err := tx.First(&before, "sku = ?", sku).Error; err != nil {
			return notFound(err, "material", sku)
		}
		if err := tx.Delete(&models.Material{}, "sku = ?", sku).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "material",
			EntityID:    sku,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("Material excluído: %s - %s", before.SKU, before.Description),
			Before:      before,
		})
	})
}
