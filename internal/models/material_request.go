package models

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

type MaterialRequest struct {
	ID             string        `gorm:"primaryKey;size:36"`
	RigID          string        `gorm:"size:50;not null;index"`
	EmployeeID     string        `gorm:"size:50;not null;index"`
	SupervisorID   string        `gorm:"size:50;not null;index"`
	Status         RequestStatus `gorm:"size:10;not null;index"`
	SupervisorNote string        `gorm:"size:500"`
	CreatedAt      time.Time     `gorm:"not null;index"`
	DecidedAt      *time.Time
	Version        int `gorm:"not null;default:1"`

	Items []RequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate grava created_at em UTC. O SQLite compara datas como texto,
// então todas precisam do mesmo fuso.
func (r *MaterialRequest) BeforeCreate(*gorm.DB) error {
	r.CreatedAt = r.CreatedAt.UTC()
	return nil
}

// RequestItem guarda uma cópia do material no momento do pedido; alterações
// no catálogo não afetam solicitações já criadas.
type RequestItem struct {
	ID        uint   `gorm:"primaryKey"`
	RequestID string `gorm:"size:36;not null;index"`
	Position  int    `gorm:"not null"`

	MaterialSKU         string `gorm:"size:50;not null;index"`
	MaterialDescription string `gorm:"size:255;not null"`
	MaterialUnit        Unit   `gorm:"size:5;not null"`
	MaterialCategory    string `gorm:"size:100"`

	Quantity int `gorm:"not null"`
}

// Snapshot devolve o material como estava quando a linha foi adicionada.
func (i RequestItem) Snapshot() Material {
	return Material{
		SKU:         i.MaterialSKU,
		Description: i.MaterialDescription,
		Unit:        i.MaterialUnit,
		Category:    i.MaterialCategory,
	}
}
