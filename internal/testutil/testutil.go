// Package testutil monta bancos SQLite em memória isolados por teste.
package testutil

import (
	"fmt"
	"testing"

	"sondalog-backend/internal/access"
	"sondalog-backend/internal/database"
	"sondalog-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB abre um banco novo, migrado e vazio.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupSeededDB abre um banco com os dados iniciais de referência.
func SetupSeededDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := SetupTestDB(t)
	if err := database.Seed(db); err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return db
}

func MasterAdmin() access.Principal {
	return access.Principal{Kind: access.KindAdmin, ID: "luantorres", Name: "Luan Torres", AdminRole: models.AdminRoleMaster}
}

func CommonAdmin() access.Principal {
	return access.Principal{Kind: access.KindAdmin, ID: "almoxarife", Name: "Almoxarife Local", AdminRole: models.AdminRoleCommon}
}

func Supervisor(id string) access.Principal {
	return access.Principal{Kind: access.KindSupervisor, ID: id}
}
