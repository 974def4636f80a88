package models

import "time"

type Employee struct {
	ID        string `gorm:"primaryKey;size:50"` // Matrícula
	Name      string `gorm:"size:100;not null"`
	Role      string `gorm:"size:100;not null;index"`
	Password  string `gorm:"size:255"` // Só supervisores usam
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Employee) IsSupervisor() bool {
	return e.Role == SupervisorRole
}

// CanAuthenticate: apenas supervisores com senha definida entram no painel.
func (e Employee) CanAuthenticate() bool {
	return e.IsSupervisor() && e.Password != ""
}
