package export

import (
	"bytes"
	"strconv"
	"strings"

	"sondalog-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	bom             = "\uFEFF"
	CSVContentType  = "text/csv;charset=utf-8;"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	baseHeader   = []string{"SKU", "DESCRIÇÃO", "SONDA", "COLABORADOR", "MATRÍCULA", "QUANTIDADE", "UNIDADE"}
	statusHeader = "STATUS"
)

// Row é uma linha de item já com os nomes resolvidos.
type Row struct {
	SKU          string
	Description  string
	RigName      string
	EmployeeName string
	EmployeeID   string
	Quantity     int
	Unit         string
	Status       models.RequestStatus
}

// StatusLabel traduz o status para o rótulo da planilha.
func StatusLabel(s models.RequestStatus) string {
	switch s {
	case models.RequestStatusApproved:
		return "APROVADO"
	case models.RequestStatusRejected:
		return "REJEITADO"
	case models.RequestStatusPending:
		return "PENDENTE"
	}
	return string(s)
}

func header(withStatus bool) []string {
	if withStatus {
		return append(append([]string{}, baseHeader...), statusHeader)
	}
	return baseHeader
}

// Flatten gera uma linha por item. Sonda e colaborador removidos do cadastro
// aparecem pelo código.
func Flatten(list []models.MaterialRequest, rigNames, employeeNames map[string]string) []Row {
	var rows []Row
	for _, req := range list {
		rig := nameOr(rigNames, req.RigID)
		emp := nameOr(employeeNames, req.EmployeeID)
		for _, it := range req.Items {
			rows = append(rows, Row{
				SKU:          it.MaterialSKU,
				Description:  it.MaterialDescription,
				RigName:      rig,
				EmployeeName: emp,
				EmployeeID:   req.EmployeeID,
				Quantity:     it.Quantity,
				Unit:         string(it.MaterialUnit),
				Status:       req.Status,
			})
		}
	}
	return rows
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && n != "" {
		return n
	}
	return id
}

// CSV monta o arquivo com BOM e linhas separadas por \n, sem quebra final.
// Descrição, sonda e colaborador vão entre aspas; os demais campos não.
func CSV(rows []Row, withStatus bool) []byte {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(header(withStatus), ","))
	for _, r := range rows {
		fields := []string{
			r.SKU,
			quote(r.Description),
			quote(r.RigName),
			quote(r.EmployeeName),
			r.EmployeeID,
			strconv.Itoa(r.Quantity),
			r.Unit,
		}
		if withStatus {
			fields = append(fields, StatusLabel(r.Status))
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return []byte(bom + strings.Join(lines, "\n"))
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// XLSX gera a mesma tabela em planilha.
func XLSX(rows []Row, withStatus bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Solicitações"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	head := header(withStatus)
	headRow := make([]any, len(head))
	for i, h := range head {
		headRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headRow); err != nil {
		return nil, err
	}

	for i, r := range rows {
		values := []any{r.SKU, r.Description, r.RigName, r.EmployeeName, r.EmployeeID, r.Quantity, r.Unit}
		if withStatus {
			values = append(values, StatusLabel(r.Status))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
