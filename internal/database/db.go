package database

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"sondalog-backend/internal/config"
	"sondalog-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open abre a conexão conforme DATABASE_DRIVER e aplica as migrations.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("driver de banco desconhecido: %s", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("não foi possível conectar ao banco: %w", err)
	}

	if cfg.DatabaseDriver == "sqlite" && isMemoryDSN(cfg.DatabaseDSN) {
		// Banco em memória vive enquanto houver conexão aberta
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("[INFO] Banco conectado (%s). Migration concluída.", cfg.DatabaseDriver)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Material{},
		&models.Rig{},
		&models.JobRole{},
		&models.Employee{},
		&models.Admin{},
		&models.MaterialRequest{},
		&models.RequestItem{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("erro no AutoMigrate: %w", err)
	}
	return nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// IsDuplicate: violação de chave primária/única (requer TranslateError).
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
