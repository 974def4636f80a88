package models

import "time"

type AdminRole string

const (
	AdminRoleMaster AdminRole = "MASTER"
	AdminRoleCommon AdminRole = "COMMON"
)

func (r AdminRole) Valid() bool {
	return r == AdminRoleMaster || r == AdminRoleCommon
}

type Admin struct {
	ID        string    `gorm:"primaryKey;size:50"` // Login
	Name      string    `gorm:"size:100;not null"`
	Role      AdminRole `gorm:"size:10;not null"`
	Password  string    `gorm:"size:255;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
