package gormrepo

import (
	"errors"
	"fmt"

	"timeherosim/internal/app/ports"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenPostgres translates driver errors so unique violations surface as
// gorm.ErrDuplicatedKey.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ports.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ports.ErrConflict
	}
	return err
}
