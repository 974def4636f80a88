// Package access concentra as regras de permissão. Toda operação que altera
// dados chama Authorize antes de executar, independente da rota HTTP.
package access

import (
	"fmt"

	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"
)

type Kind string

const (
	KindAdmin      Kind = "admin"
	KindSupervisor Kind = "supervisor"
	KindEmployee   Kind = "employee" // solicitante do formulário público, sem sessão
)

// Principal é a identidade da sessão ativa, sempre recarregada do banco.
type Principal struct {
	Kind      Kind
	ID        string
	Name      string
	AdminRole models.AdminRole // só para admins
}

func Admin(a models.Admin) Principal {
	return Principal{Kind: KindAdmin, ID: a.ID, Name: a.Name, AdminRole: a.Role}
}

func Supervisor(e models.Employee) Principal {
	return Principal{Kind: KindSupervisor, ID: e.ID, Name: e.Name}
}

func (p Principal) IsAdmin() bool      { return p.Kind == KindAdmin }
func (p Principal) IsSupervisor() bool { return p.Kind == KindSupervisor }
func (p Principal) IsMaster() bool     { return p.IsAdmin() && p.AdminRole == models.AdminRoleMaster }

type Resource string

const (
	ResourceMaterial   Resource = "material"
	ResourceEmployee   Resource = "employee"
	ResourceSupervisor Resource = "supervisor"
	ResourceRig        Resource = "rig"
	ResourceRole       Resource = "role"
	ResourceAdmin      Resource = "admin"
	ResourceAudit      Resource = "audit"
	ResourceRequest    Resource = "request"
	ResourceExport     Resource = "export"
	ResourcePassword   Resource = "password"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionRead   Action = "read"
	ActionDecide Action = "decide"
)

// COMMON só administra materiais e colaboradores comuns.
var commonResources = map[Resource]bool{
	ResourceMaterial: true,
	ResourceEmployee: true,
}

var supervisorActions = map[Resource]map[Action]bool{
	ResourceRequest:  {ActionRead: true, ActionDecide: true, ActionDelete: true},
	ResourceExport:   {ActionCreate: true},
	ResourcePassword: {ActionUpdate: true},
}

func Authorize(p Principal, action Action, resource Resource) bool {
	switch p.Kind {
	case KindAdmin:
		switch resource {
		case ResourceRequest, ResourceExport, ResourcePassword:
			return false
		}
		if p.AdminRole == models.AdminRoleMaster {
			return true
		}
		return p.AdminRole == models.AdminRoleCommon && commonResources[resource]
	case KindSupervisor:
		return supervisorActions[resource][action]
	}
	return false
}

// Require devolve ErrForbidden quando Authorize nega.
func Require(p Principal, action Action, resource Resource) error {
	if Authorize(p, action, resource) {
		return nil
	}
	return fmt.Errorf("%w: %s %s", apperr.ErrForbidden, action, resource)
}
