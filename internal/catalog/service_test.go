package catalog

import (
	"errors"
	"testing"
	"time"

	"sondalog-backend/internal/apperr"
	"sondalog-backend/internal/models"
	"sondalog-backend/internal/testutil"

	"github.com/xuri/excelize/v2"
)

func TestAddMaterialIsRetrievableOnlyAfterCreate(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))
	admin := testutil.CommonAdmin()

	if _, err := svc.GetMaterial("VAL-900"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before create, got %v", err)
	}

	created, err := svc.AddMaterial(admin, models.Material{SKU: " VAL-900 ", Description: "Válvula Gaveta 4 pol", Unit: "un"})
	if err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if created.SKU != "VAL-900" || created.Unit != models.UnitUN || created.Category != "Geral" {
		t.Fatalf("unexpected normalized material: %+v", created)
	}

	got, err := svc.GetMaterial("VAL-900")
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if got.Description != "Válvula Gaveta 4 pol" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestAddMaterialValidation(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))
	admin := testutil.MasterAdmin()

	tests := []struct {
		name string
		m    models.Material
		want error
	}{
		{"duplicate sku", models.Material{SKU: "EQP-001", Description: "Outro"}, apperr.ErrDuplicateKey},
		{"missing description", models.Material{SKU: "NEW-1"}, apperr.ErrValidation},
		{"invalid unit", models.Material{SKU: "NEW-2", Description: "X", Unit: "TON"}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddMaterial(admin, tt.m); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestUpdateMaterialRenameCollisionLeavesBothUntouched(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))
	admin := testutil.MasterAdmin()

	_, err := svc.UpdateMaterial(admin, "EQP-001", models.Material{SKU: "EQP-002", Description: "Sobrescrito", Unit: "UN"})
	if !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	a, _ := svc.GetMaterial("EQP-001")
	b, _ := svc.GetMaterial("EQP-002")
	if a.Description != "Capacete de Segurança Classe B" || b.Description != "Luva de Vaqueta Mista" {
		t.Fatalf("records changed after failed rename: %+v / %+v", a, b)
	}
}

func TestUpdateMaterialRenameAndEdit(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))
	admin := testutil.CommonAdmin()

	m, err := svc.UpdateMaterial(admin, "MEC-102", models.Material{SKU: "MEC-102A", Description: "Rolamento SKF 6205-2RS", Unit: "UN", Category: "Mecânica"})
	if err != nil {
		t.Fatalf("UpdateMaterial: %v", err)
	}
	if m.SKU != "MEC-102A" {
		t.Fatalf("SKU = %q", m.SKU)
	}
	if _, err := svc.GetMaterial("MEC-102"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("old key still present: %v", err)
	}
}

func TestUpdateMaterialSKUFrozenOnceReferenced(t *testing.T) {
	db := testutil.SetupSeededDB(t)
	svc := NewService(db)
	admin := testutil.MasterAdmin()

	req := models.MaterialRequest{
		ID: "req-1", RigID: "S01", EmployeeID: "MAT001", SupervisorID: "SUP001",
		Status: models.RequestStatusPending, CreatedAt: time.Now(), Version: 1,
		Items: []models.RequestItem{{Position: 0, MaterialSKU: "EQP-001", MaterialDescription: "Capacete de Segurança Classe B", MaterialUnit: models.UnitUN, Quantity: 1}},
	}
	if err := db.Create(&req).Error; err != nil {
		t.Fatalf("seed request: %v", err)
	}

	_, err := svc.UpdateMaterial(admin, "EQP-001", models.Material{SKU: "EQP-001X", Description: "Capacete", Unit: "UN"})
	if !errors.Is(err, apperr.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}

	// Editar descrição sem trocar o SKU continua permitido
	if _, err := svc.UpdateMaterial(admin, "EQP-001", models.Material{SKU: "EQP-001", Description: "Capacete Classe B v2", Unit: "UN"}); err != nil {
		t.Fatalf("description edit: %v", err)
	}
}

func TestCommonAdminCannotManageRigsOrRoles(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))
	common := testutil.CommonAdmin()

	if _, err := svc.AddRig(common, models.Rig{ID: "S09", Name: "Sonda Delta 09"}); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("AddRig: expected ErrForbidden, got %v", err)
	}
	if err := svc.DeleteRig(common, "S01"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("DeleteRig: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.AddRole(common, "Soldador"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("AddRole: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetRig("S09"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("rig should not exist: %v", err)
	}
}

func TestRigLifecycle(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))
	master := testutil.MasterAdmin()

	if _, err := svc.AddRig(master, models.Rig{ID: "S04", Name: "Sonda Delta 04", Location: "Bacia Potiguar"}); err != nil {
		t.Fatalf("AddRig: %v", err)
	}
	if _, err := svc.AddRig(master, models.Rig{ID: "S04", Name: "Dup"}); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if _, err := svc.UpdateRig(master, "S04", models.Rig{ID: "S01", Name: "Colisão"}); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey on rename, got %v", err)
	}
	r, err := svc.UpdateRig(master, "S04", models.Rig{ID: "S05", Name: "Sonda Delta 05"})
	if err != nil {
		t.Fatalf("UpdateRig: %v", err)
	}
	if r.ID != "S05" {
		t.Fatalf("ID = %q", r.ID)
	}
	if err := svc.DeleteRig(master, "S05"); err != nil {
		t.Fatalf("DeleteRig: %v", err)
	}
	if err := svc.DeleteRig(master, "S05"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoleDeletionBlockedWhileInUse(t *testing.T) {
	svc := NewService(testutil.SetupSeededDB(t))
	master := testutil.MasterAdmin()

	if err := svc.DeleteRole(master, "Torrista"); !errors.Is(err, apperr.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
	if err := svc.DeleteRole(master, models.SupervisorRole); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected ErrValidation for reserved role, got %v", err)
	}
	if err := svc.DeleteRole(master, "Eletricista"); err != nil {
		t.Fatalf("DeleteRole unused: %v", err)
	}
	roles, _ := svc.ListRoles()
	for _, r := range roles {
		if r == "Eletricista" {
			t.Fatal("role still listed after delete")
		}
	}
}

func TestRoleRenameCascadesToEmployees(t *testing.T) {
	db := testutil.SetupSeededDB(t)
	svc := NewService(db)
	master := testutil.MasterAdmin()

	if _, err := svc.AddRole(master, models.SupervisorRole); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("expected reserved role to be a duplicate, got %v", err)
	}
	if _, err := svc.UpdateRole(master, "Torrista", "Plataformista"); !errors.Is(err, apperr.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if _, err := svc.UpdateRole(master, "Torrista", "Torrista Líder"); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	var e models.Employee
	if err := db.First(&e, "id = ?", "MAT001").Error; err != nil {
		t.Fatalf("load employee: %v", err)
	}
	if e.Role != "Torrista Líder" {
		t.Fatalf("employee role = %q, want cascaded rename", e.Role)
	}
}

func TestImportMaterialsFromXLSX(t *testing.T) {
	db := testutil.SetupSeededDB(t)
	svc := NewService(db)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"SKU", "DESCRIÇÃO", "UNIDADE", "CATEGORIA"},
		{"HID-401", "Mangueira Hidráulica 1/2", "MT", "Hidráulica"},
		{"EQP-001", "Capacete repetido", "UN", "EPI"},
		{"HID-402", "", "UN", "Hidráulica"},
		{},
		{"HID-403", "Engate Rápido", "", ""},
	}
	for i, row := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	result, err := svc.ImportMaterials(testutil.CommonAdmin(), buf)
	if err != nil {
		t.Fatalf("ImportMaterials: %v", err)
	}
	if len(result.Imported) != 2 || result.Imported[0] != "HID-401" || result.Imported[1] != "HID-403" {
		t.Errorf("Imported = %v", result.Imported)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "EQP-001" {
		t.Errorf("Skipped = %v", result.Skipped)
	}
	if _, ok := result.Errors[4]; !ok || len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want line 4 only", result.Errors)
	}

	m, err := svc.GetMaterial("HID-403")
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if m.Unit != models.UnitUN || m.Category != "Geral" {
		t.Errorf("defaults not applied: %+v", m)
	}

	var logs int64
	db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionImport).Count(&logs)
	if logs != 1 {
		t.Errorf("import audit entries = %d", logs)
	}

	if _, err := svc.ImportMaterials(testutil.Supervisor("SUP001"), buf); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("supervisor import: expected ErrForbidden, got %v", err)
	}
}

func TestMutationsAreAudited(t *testing.T) {
	db := testutil.SetupSeededDB(t)
	svc := NewService(db)
	admin := testutil.CommonAdmin()

	if _, err := svc.AddMaterial(admin, models.Material{SKU: "AUD-1", Description: "Teste", Unit: "UN"}); err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}
	if err := svc.DeleteMaterial(admin, "AUD-1"); err != nil {
		t.Fatalf("DeleteMaterial: %v", err)
	}

	var logs []models.AuditLog
	db.Where("entity_type = ? AND entity_id = ?", "material", "AUD-1").Order("id asc").Find(&logs)
	if len(logs) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(logs))
	}
	if logs[0].Action != models.AuditActionCreate || logs[1].Action != models.AuditActionDelete {
		t.Errorf("actions = %s, %s", logs[0].Action, logs[1].Action)
	}
	if logs[0].ActorID != "almoxarife" {
		t.Errorf("ActorID = %q", logs[0].ActorID)
	}
}
