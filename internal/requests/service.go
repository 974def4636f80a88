// Package requests implementa o ciclo de vida das solicitações de material:
// criação pelo formulário público e decisões do supervisor responsável.
package requests

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/audit"
	"sondalog-backend/internal/metrics"
	"sondalog-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemInput struct {
	SKU      string
	Quantity int
}

type CreateInput struct {
	RigID        string
	EmployeeID   string
	SupervisorID string
	Items        []ItemInput
}

type Service struct {
	db    *gorm.DB
	now   func() time.Time
	newID func() string
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now, newID: uuid.NewString}
}

// withItems carrega os itens na ordem em que foram pedidos.
func withItems(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position asc")
	})
}

func (s *Service) Get(id string) (models.MaterialRequest, error) {
	return s.load(s.db, id)
}

func (s *Service) load(tx *gorm.DB, id string) (models.MaterialRequest, error) {
	var req models.MaterialRequest
	if err := withItems(tx).First(&req, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.MaterialRequest{}, fmt.Errorf("%w: solicitação %s", apperr.ErrNotFound, id)
		}
		return models.MaterialRequest{}, err
	}
	return req, nil
}

// Create registra uma solicitação PENDING. Sonda, solicitante, supervisor e
// materiais são conferidos no cadastro atual; os materiais são copiados para
// os itens. Nada é gravado se qualquer parte for inválida.
func (s *Service) Create(in CreateInput) (models.MaterialRequest, error) {
	in.RigID = strings.TrimSpace(in.RigID)
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.SupervisorID = strings.TrimSpace(in.SupervisorID)

	if in.RigID == "" || in.EmployeeID == "" || in.SupervisorID == "" {
		return models.MaterialRequest{}, fmt.Errorf("%w: selecione sonda, colaborador e supervisor", apperr.ErrValidation)
	}
	if len(in.Items) == 0 {
		return models.MaterialRequest{}, fmt.Errorf("%w: adicione pelo menos um material", apperr.ErrValidation)
	}
	items := make([]ItemInput, len(in.Items))
	for i, it := range in.Items {
		items[i] = ItemInput{SKU: strings.TrimSpace(it.SKU), Quantity: it.Quantity}
		if items[i].SKU == "" || it.Quantity <= 0 {
			return models.MaterialRequest{}, fmt.Errorf("%w: item %d precisa de material e quantidade maior que zero", apperr.ErrValidation, i+1)
		}
	}
	in.Items = items

	var created models.MaterialRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var rig models.Rig
		if err := tx.First(&rig, "id = ?", in.RigID).Error; err != nil {
			return missing(err, "sonda", in.RigID)
		}
		var requester models.Employee
		if err := tx.First(&requester, "id = ?", in.EmployeeID).Error; err != nil {
			return missing(err, "colaborador", in.EmployeeID)
		}
		var supervisor models.Employee
		if err := tx.First(&supervisor, "id = ?", in.SupervisorID).Error; err != nil {
			return missing(err, "supervisor", in.SupervisorID)
		}
		if !supervisor.IsSupervisor() {
			return fmt.Errorf("%w: %s não é supervisor", apperr.ErrValidation, in.SupervisorID)
		}

		catalog, err := resolveMaterials(tx, in.Items)
		if err != nil {
			return err
		}

		req := models.MaterialRequest{
			ID:           s.newID(),
			RigID:        rig.ID,
			EmployeeID:   requester.ID,
			SupervisorID: supervisor.ID,
			Status:       models.RequestStatusPending,
			CreatedAt:    s.now().UTC(),
			Version:      1,
		}
		for i, it := range in.Items {
			m := catalog[it.SKU]
			req.Items = append(req.Items, models.RequestItem{
				Position:            i,
				MaterialSKU:         m.SKU,
				MaterialDescription: m.Description,
				MaterialUnit:        m.Unit,
				MaterialCategory:    m.Category,
				Quantity:            it.Quantity,
			})
		}

		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		created = req

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       access.Principal{Kind: access.KindEmployee, ID: requester.ID, Name: requester.Name},
			EntityType:  "request",
			EntityID:    req.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Solicitação criada: sonda %s, %d item(ns), supervisor %s", rig.ID, len(req.Items), supervisor.ID),
			After:       req,
		})
	})
	if err != nil {
		return models.MaterialRequest{}, err
	}

	metrics.RequestsCreated.Inc()
	return created, nil
}

func missing(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s não cadastrado", apperr.ErrValidation, what, id)
	}
	return err
}

func resolveMaterials(tx *gorm.DB, items []ItemInput) (map[string]models.Material, error) {
	skus := make([]string, 0, len(items))
	for _, it := range items {
		skus = append(skus, it.SKU)
	}

	var found []models.Material
	if err := tx.Where("sku IN ?", skus).Find(&found).Error; err != nil {
		return nil, err
	}
	bySKU := make(map[string]models.Material, len(found))
	for _, m := range found {
		bySKU[m.SKU] = m
	}

	var unknown []string
	for _, sku := range skus {
		if _, ok := bySKU[sku]; !ok {
			unknown = append(unknown, sku)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: materiais fora do catálogo: %s", apperr.ErrValidation, strings.Join(unknown, ", "))
	}
	return bySKU, nil
}
