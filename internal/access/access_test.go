package access

import (
	"errors"
	"testing"

	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"
)

func TestAuthorizeMatrix(t *testing.T) {
	master := Principal{Kind: KindAdmin, ID: "luantorres", AdminRole: models.AdminRoleMaster}
	common := Principal{Kind: KindAdmin, ID: "almoxarife", AdminRole: models.AdminRoleCommon}
	sup := Principal{Kind: KindSupervisor, ID: "SUP001"}

	tests := []struct {
		name     string
		p        Principal
		action   Action
		resource Resource
		want     bool
	}{
		{"master manages rigs", master, ActionCreate, ResourceRig, true},
		{"master manages admins", master, ActionDelete, ResourceAdmin, true},
		{"master reads audit", master, ActionRead, ResourceAudit, true},
		{"master cannot decide requests", master, ActionDecide, ResourceRequest, false},
		{"common manages materials", common, ActionCreate, ResourceMaterial, true},
		{"common manages employees", common, ActionUpdate, ResourceEmployee, true},
		{"common cannot add rig", common, ActionCreate, ResourceRig, false},
		{"common cannot touch supervisors", common, ActionUpdate, ResourceSupervisor, false},
		{"common cannot touch roles", common, ActionDelete, ResourceRole, false},
		{"common cannot touch admins", common, ActionCreate, ResourceAdmin, false},
		{"common cannot read audit", common, ActionRead, ResourceAudit, false},
		{"supervisor decides", sup, ActionDecide, ResourceRequest, true},
		{"supervisor purges", sup, ActionDelete, ResourceRequest, true},
		{"supervisor exports", sup, ActionCreate, ResourceExport, true},
		{"supervisor changes password", sup, ActionUpdate, ResourcePassword, true},
		{"supervisor cannot manage materials", sup, ActionCreate, ResourceMaterial, false},
		{"anonymous gets nothing", Principal{}, ActionRead, ResourceMaterial, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(tt.p, tt.action, tt.resource); got != tt.want {
				t.Fatalf("Authorize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequireWrapsForbidden(t *testing.T) {
	common := Principal{Kind: KindAdmin, ID: "almoxarife", AdminRole: models.AdminRoleCommon}
	err := Require(common, ActionCreate, ResourceRig)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := Require(common, ActionCreate, ResourceMaterial); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
