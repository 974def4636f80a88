package database

import (
	"log"
	"slices"

	"sondalog-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Senha inicial documentada dos supervisores
const DefaultSupervisorPassword = "prrecv"

var DefaultRigs = []models.Rig{
	{ID: "S01", Name: "Sonda Alpha 01", Location: "Bacia de Campos"},
	{ID: "S02", Name: "Sonda Beta 02", Location: "Bacia de Santos"},
	{ID: "S03", Name: "Sonda Gamma 03", Location: "Onshore - Bahia"},
}

var DefaultRoles = []models.JobRole{
	{Name: "Torrista"},
	{Name: "Plataformista"},
	{Name: "Sondador"},
	{Name: "Mecânico"},
	{Name: "Eletricista"},
	{Name: "Técnico de Segurança"},
}

var DefaultEmployees = []models.Employee{
	{ID: "MAT001", Name: "Carlos Silva", Role: "Torrista"},
	{ID: "MAT002", Name: "Ana Oliveira", Role: "Plataformista"},
	{ID: "MAT003", Name: "Roberto Santos", Role: "Sondador"},
	{ID: "MAT004", Name: "Fernanda Lima", Role: "Mecânico"},
	{ID: "SUP001", Name: "Ricardo Mendes", Role: models.SupervisorRole, Password: DefaultSupervisorPassword},
	{ID: "SUP002", Name: "Juliana Costa", Role: models.SupervisorRole, Password: DefaultSupervisorPassword},
}

var DefaultAdmins = []models.Admin{
	{ID: "luantorres", Name: "Luan Torres", Role: models.AdminRoleMaster, Password: "1905"},
	{ID: "almoxarife", Name: "Almoxarife Local", Role: models.AdminRoleCommon, Password: "user123"},
}

var DefaultMaterials = []models.Material{
	{SKU: "EQP-001", Description: "Capacete de Segurança Classe B", Unit: models.UnitUN, Category: "EPI"},
	{SKU: "EQP-002", Description: "Luva de Vaqueta Mista", Unit: models.UnitPAR, Category: "EPI"},
	{SKU: "EQP-003", Description: "Óculos de Proteção Incolor", Unit: models.UnitUN, Category: "EPI"},
	{SKU: "MEC-101", Description: "Válvula de Esfera 2 pol", Unit: models.UnitUN, Category: "Mecânica"},
	{SKU: "MEC-102", Description: "Rolamento SKF 6205", Unit: models.UnitUN, Category: "Mecânica"},
	{SKU: "MEC-103", Description: "Graxa Litio Azul MP2", Unit: models.UnitKG, Category: "Lubrificantes"},
	{SKU: "ELE-201", Description: "Cabo Flexível 2.5mm Preto", Unit: models.UnitMT, Category: "Elétrica"},
	{SKU: "ELE-202", Description: "Disjuntor Tripolar 63A", Unit: models.UnitUN, Category: "Elétrica"},
	{SKU: "PER-301", Description: "Broca Tricônica 8 1/2", Unit: models.UnitUN, Category: "Perfuração"},
	{SKU: "PER-302", Description: "Fluido de Perfuração Bentonita", Unit: models.UnitSC, Category: "Químicos"},
}

// Seed grava os dados iniciais. Registros já existentes são mantidos.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := createMissing(tx, DefaultRigs); err != nil {
			return err
		}
		if err := createMissing(tx, DefaultRoles); err != nil {
			return err
		}
		if err := createMissing(tx, DefaultEmployees); err != nil {
			return err
		}
		if err := createMissing(tx, DefaultAdmins); err != nil {
			return err
		}
		if err := createMissing(tx, DefaultMaterials); err != nil {
			return err
		}
		log.Println("[INFO] Dados iniciais carregados")
		return nil
	})
}

func createMissing[T any](tx *gorm.DB, rows []T) error {
	batch := slices.Clone(rows)
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error
}
