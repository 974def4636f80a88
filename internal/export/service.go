// Package export gera os arquivos de exportação das solicitações
// selecionadas pelo supervisor.
package export

import (
	"fmt"
	"time"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/metrics"
	"sondalog-backend/internal/models"
	"sondalog-backend/internal/requests"

	"gorm.io/gorm"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type Options struct {
	Partition     requests.Partition // approved | rejected
	RequestIDs    []string
	IncludeStatus bool // variante com coluna STATUS e nome do arquivo por aba
	Format        Format
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
	Rows        int
}

type Service struct {
	db       *gorm.DB
	requests *requests.Service
	now      func() time.Time
}

func NewService(db *gorm.DB, reqs *requests.Service) *Service {
	return &Service{db: db, requests: reqs, now: time.Now}
}

func (s *Service) Export(actor access.Principal, opts Options) (File, error) {
	if err := access.Require(actor, access.ActionCreate, access.ResourceExport); err != nil {
		return File{}, err
	}
	if opts.Partition == "" {
		opts.Partition = requests.PartitionApproved
	}
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	switch opts.Partition {
	case requests.PartitionApproved:
	case requests.PartitionRejected:
		if !opts.IncludeStatus {
			return File{}, fmt.Errorf("%w: a exportação simples aceita apenas solicitações aprovadas", apperr.ErrValidation)
		}
	default:
		return File{}, fmt.Errorf("%w: exporte a partir da aba de aprovadas ou de rejeitadas", apperr.ErrValidation)
	}
	if opts.Format != FormatCSV && opts.Format != FormatXLSX {
		return File{}, fmt.Errorf("%w: formato %q não suportado", apperr.ErrValidation, opts.Format)
	}

	selected, err := s.requests.Selection(actor, opts.Partition, opts.RequestIDs)
	if err != nil {
		return File{}, err
	}
	if len(selected) == 0 {
		return File{}, apperr.ErrEmptySelection
	}

	rigNames, employeeNames, err := s.names(selected)
	if err != nil {
		return File{}, err
	}
	rows := Flatten(selected, rigNames, employeeNames)

	file := File{Name: FileName(s.now(), opts), Rows: len(rows)}
	switch opts.Format {
	case FormatXLSX:
		file.ContentType = XLSXContentType
		file.Data, err = XLSX(rows, opts.IncludeStatus)
		if err != nil {
			return File{}, fmt.Errorf("planilha não gerada: %w", err)
		}
	default:
		file.ContentType = CSVContentType
		file.Data = CSV(rows, opts.IncludeStatus)
	}

	metrics.Exports.WithLabelValues(string(opts.Format)).Inc()
	metrics.ExportRows.Add(float64(len(rows)))
	return file, nil
}

// FileName: sondalog_export_2025-03-10.csv ou, na variante com status,
// sondalog_export_aprovados_2025-03-10.csv.
func FileName(at time.Time, opts Options) string {
	date := at.UTC().Format("2006-01-02")
	ext := string(opts.Format)
	if ext == "" {
		ext = string(FormatCSV)
	}
	if !opts.IncludeStatus {
		return fmt.Sprintf("sondalog_export_%s.%s", date, ext)
	}
	tab := "aprovados"
	if opts.Partition == requests.PartitionRejected {
		tab = "rejeitados"
	}
	return fmt.Sprintf("sondalog_export_%s_%s.%s", tab, date, ext)
}

func (s *Service) names(list []models.MaterialRequest) (map[string]string, map[string]string, error) {
	var rigIDs, employeeIDs []string
	for _, r := range list {
		rigIDs = append(rigIDs, r.RigID)
		employeeIDs = append(employeeIDs, r.EmployeeID)
	}

	var rigs []models.Rig
	if err := s.db.Where("id IN ?", rigIDs).Find(&rigs).Error; err != nil {
		return nil, nil, err
	}
	var employees []models.Employee
	if err := s.db.Where("id IN ?", employeeIDs).Find(&employees).Error; err != nil {
		return nil, nil, err
	}

	rigNames := make(map[string]string, len(rigs))
	for _, r := range rigs {
		rigNames[r.ID] = r.Name
	}
	employeeNames := make(map[string]string, len(employees))
	for _, e := range employees {
		employeeNames[e.ID] = e.Name
	}
	return rigNames, employeeNames, nil
}
