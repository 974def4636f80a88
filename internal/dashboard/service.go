// Package dashboard agrega as solicitações do supervisor em períodos
// (dia, semana ou mês) para o gráfico do painel.
package dashboard

import (
	"fmt"
	"time"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"

	"gorm.io/gorm"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"

	maxBuckets = 366
)

// Point soma as solicitações criadas dentro de um período.
type Point struct {
	Label    string `json:"label"` // início do período, AAAA-MM-DD
	Pending  int    `json:"pending"`
	Approved int    `json:"approved"`
	Rejected int    `json:"rejected"`
	Total    int    `json:"total"`
}

type Chart struct {
	Period      Period  `json:"period"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Points      []Point `json:"points"`
	GrandTotals Point   `json:"grand_totals"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// defaultCount: 7 dias, 8 semanas ou 12 meses.
func defaultCount(p Period) int {
	switch p {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	}
	return 7
}

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case "":
		return PeriodDaily, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	}
	return "", fmt.Errorf("%w: período desconhecido %q", apperr.ErrValidation, s)
}

// bucket devolve o início do período que contém t (semanas começam na segunda).
func bucket(p Period, t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return day
}

func step(p Period, t time.Time, n int) time.Time {
	switch p {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7*n)
	case PeriodMonthly:
		return t.AddDate(0, n, 0)
	}
	return t.AddDate(0, 0, n)
}

// RequestChart monta count períodos terminando no atual, incluindo os vazios.
// count <= 0 usa o padrão do período.
func (s *Service) RequestChart(actor access.Principal, p Period, count int) (Chart, error) {
	if err := access.Require(actor, access.ActionRead, access.ResourceRequest); err != nil {
		return Chart{}, err
	}
	if count <= 0 {
		count = defaultCount(p)
	}
	if count > maxBuckets {
		return Chart{}, fmt.Errorf("%w: no máximo %d períodos", apperr.ErrValidation, maxBuckets)
	}

	last := bucket(p, s.now())
	first := step(p, last, -(count - 1))
	end := step(p, last, 1)

	var list []models.MaterialRequest
	err := s.db.
		Select("id", "status", "created_at").
		Where("supervisor_id = ? AND created_at >= ? AND created_at < ?", actor.ID, first, end).
		Find(&list).Error
	if err != nil {
		return Chart{}, err
	}

	points := make([]Point, count)
	index := make(map[time.Time]int, count)
	for i := range points {
		b := step(p, first, i)
		points[i].Label = b.Format("2006-01-02")
		index[b] = i
	}

	var grand Point
	for _, r := range list {
		i, ok := index[bucket(p, r.CreatedAt)]
		if !ok {
			continue
		}
		pt := &points[i]
		switch r.Status {
		case models.RequestStatusPending:
			pt.Pending++
			grand.Pending++
		case models.RequestStatusApproved:
			pt.Approved++
			grand.Approved++
		case models.RequestStatusRejected:
			pt.Rejected++
			grand.Rejected++
		}
		pt.Total++
		grand.Total++
	}

	return Chart{
		Period:      p,
		From:        first.Format("2006-01-02"),
		To:          end.AddDate(0, 0, -1).Format("2006-01-02"),
		Points:      points,
		GrandTotals: grand,
	}, nil
}
