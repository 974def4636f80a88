package catalog

import (
	"fmt"
	"io"
	"strings"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/audit"
	"sondalog-backend/internal/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ImportResult struct {
	Imported []string       `json:"imported"`
	Skipped  []string       `json:"skipped"` // SKUs já cadastrados
	Errors   map[int]string `json:"errors"`  // linha da planilha -> motivo
}

// ImportMaterials lê a primeira aba de uma planilha XLSX com as colunas
// SKU, DESCRIÇÃO, UNIDADE, CATEGORIA. Linhas válidas com SKU novo são
// cadastradas; as demais são relatadas.
func (s *Service) ImportMaterials(actor access.Principal, r io.Reader) (ImportResult, error) {
	if err := access.Require(actor, access.ActionCreate, access.ResourceMaterial); err != nil {
		return ImportResult{}, err
	}

	rows, err := readSheet(r)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Errors: map[int]string{}}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		seen := map[string]bool{}
		for i, row := range rows {
			line := i + 1
			if i == 0 && isHeaderRow(row) {
				continue
			}
			if isBlankRow(row) {
				continue
			}

			m, err := normalizeMaterial(models.Material{
				SKU:         cell(row, 0),
				Description: cell(row, 1),
				Unit:        models.Unit(cell(row, 2)),
				Category:    cell(row, 3),
			})
			if err != nil {
				result.Errors[line] = err.Error()
				continue
			}
			if seen[m.SKU] {
				result.Skipped = append(result.Skipped, m.SKU)
				continue
			}
			seen[m.SKU] = true

			found, err := exists(tx, &models.Material{}, "sku", m.SKU)
			if err != nil {
				return err
			}
			if found {
				result.Skipped = append(result.Skipped, m.SKU)
				continue
			}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			result.Imported = append(result.Imported, m.SKU)
		}

		if len(result.Imported) == 0 {
			return nil
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "material",
			EntityID:    "import",
			Action:      models.AuditActionImport,
			Description: fmt.Sprintf("Importação de planilha: %d materiais cadastrados, %d ignorados", len(result.Imported), len(result.Skipped)),
			After:       result.Imported,
		})
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

func readSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: planilha não pôde ser lida", apperr.ErrValidation)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: planilha sem abas", apperr.ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: aba %s não pôde ser lida", apperr.ErrValidation, sheets[0])
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: planilha vazia", apperr.ErrValidation)
	}
	return rows, nil
}

func isHeaderRow(row []string) bool {
	return strings.EqualFold(cell(row, 0), "SKU")
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
