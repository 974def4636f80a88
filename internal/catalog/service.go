// Package catalog mantém os dados de referência: materiais, sondas e cargos.
package catalog

import (
	"errors"
	"fmt"

	"sondalog-backend/internal/apperr"

	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// notFound traduz gorm.ErrRecordNotFound para o erro do domínio.
func notFound(err error, what, key string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", apperr.ErrNotFound, what, key)
	}
	return err
}

func exists(tx *gorm.DB, model any, column, key string) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(column+" = ?", key).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
