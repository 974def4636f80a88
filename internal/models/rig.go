package models

import "time"

// Rig: sonda de perfuração que origina as solicitações
type Rig struct {
	ID        string `gorm:"primaryKey;size:50"`
	Name      string `gorm:"size:100;not null"`
	Location  string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
