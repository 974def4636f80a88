package auth

import (
	"errors"
	"testing"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"
	"sondalog-backend/internal/testutil"
)

func TestSupervisorLogin(t *testing.T) {
	db := testutil.SetupSeededDB(t)
	svc := NewService(db)

	// Supervisor sem senha não entra
	if err := db.Create(&models.Employee{ID: "SUP900", Name: "Sem Senha", Role: models.SupervisorRole}).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name     string
		id       string
		password string
		ok       bool
	}{
		{"valid", "SUP001", "prrecv", true},
		{"wrong password", "SUP001", "errada", false},
		{"unknown id", "SUP404", "prrecv", false},
		{"plain employee", "MAT001", "", false},
		{"supervisor without password", "SUP900", "", false},
		{"case sensitive", "SUP001", "PRRECV", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := svc.SupervisorLogin(tt.id, tt.password)
			if tt.ok {
				if err != nil || e.ID != tt.id {
					t.Fatalf("expected login, got %+v, %v", e, err)
				}
				return
			}
			if !errors.Is(err, apperr.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
		})
	}
}

func TestAdminLogin(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))

	a, err := svc.AdminLogin("almoxarife", "user123")
	if err != nil {
		t.Fatalf("AdminLogin: %v", err)
	}
	if a.Role != models.AdminRoleCommon {
		t.Errorf("Role = %q", a.Role)
	}

	_, errUnknown := svc.AdminLogin("ninguem", "1905")
	_, errWrong := svc.AdminLogin("luantorres", "0000")
	if !errors.Is(errUnknown, apperr.ErrAuthFailed) || !errors.Is(errWrong, apperr.ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v / %v", errUnknown, errWrong)
	}
	if errUnknown.Error() != errWrong.Error() {
		t.Errorf("unknown user and wrong password must look the same: %q vs %q", errUnknown, errWrong)
	}
}

func TestChangeSupervisorPassword(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))
	sup := testutil.Supervisor("SUP002")

	if err := svc.ChangeSupervisorPassword(sup, "abc", "abc"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("short password: expected ErrValidation, got %v", err)
	}
	if err := svc.ChangeSupervisorPassword(sup, "abcd", "abce"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("mismatch: expected ErrValidation, got %v", err)
	}
	if err := svc.ChangeSupervisorPassword(testutil.MasterAdmin(), "abcd", "abcd"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("admin: expected ErrForbidden, got %v", err)
	}

	if err := svc.ChangeSupervisorPassword(sup, "nova1", "nova1"); err != nil {
		t.Fatalf("ChangeSupervisorPassword: %v", err)
	}
	if _, err := svc.SupervisorLogin("SUP002", "prrecv"); !errors.Is(err, apperr.ErrAuthFailed) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := svc.SupervisorLogin("SUP002", "nova1"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestLoadPrincipal(t *testing.T) {
	db := testutil.SetupSeededDB(t)
	svc := NewService(db)

	p, err := svc.LoadPrincipal(access.KindAdmin, "luantorres")
	if err != nil || !p.IsMaster() {
		t.Fatalf("expected master principal, got %+v, %v", p, err)
	}
	p, err = svc.LoadPrincipal(access.KindSupervisor, "SUP001")
	if err != nil || p.Name != "Ricardo Mendes" {
		t.Fatalf("expected supervisor principal, got %+v, %v", p, err)
	}

	// Supervisor rebaixado perde a sessão
	db.Model(&models.Employee{}).Where("id = ?", "SUP001").Update("role", "Torrista")
	if _, err := svc.LoadPrincipal(access.KindSupervisor, "SUP001"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.LoadPrincipal(access.KindAdmin, "MAT001"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for employee as admin, got %v", err)
	}
}
