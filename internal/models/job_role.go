package models

// SupervisorRole é reservado: só colaboradores com este cargo fazem login
// no painel e recebem solicitações.
const SupervisorRole = "Supervisor"

type JobRole struct {
	Name string `gorm:"primaryKey;size:100"`
}
