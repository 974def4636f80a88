package models

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionApprove AuditAction = "approve"
	AuditActionReject  AuditAction = "reject"
	AuditActionRestore AuditAction = "restore"
	AuditActionPurge   AuditAction = "purge"
	AuditActionImport  AuditAction = "import"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	// Quem fez? ("admin" ou "supervisor")
	ActorKind string `gorm:"size:20" json:"actor_kind"`
	ActorID   string `gorm:"size:50;index" json:"actor_id"`
	ActorName string `gorm:"size:100" json:"actor_name"`

	// Qual entidade? (ex: "material", "rig", "request")
	EntityType string `gorm:"size:50;index" json:"entity_type"`
	EntityID   string `gorm:"size:50;index" json:"entity_id"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	// Estado antes e depois (JSON)
	BeforeData string `gorm:"type:text" json:"before_data"`
	AfterData  string `gorm:"type:text" json:"after_data"`
}
