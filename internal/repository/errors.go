// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"quill/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
)

// isUniqueViolation checks if a DB error is a unique constraint violation,
// whether or not the dialector translated it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateForeignKeyViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint")
}

// mapError translates storage errors into AppErrors. Errors that already are
// AppErrors (model hooks) pass through unchanged.
func mapError(err error, resource string, key any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, key)
	case isUniqueViolation(err):
		return models.NewConflictError(fmt.Sprintf("%s already exists", resource), err)
	case isForeignKeyViolation(err):
		return models.NewValidationError(fmt.Sprintf("%s references a record that does not exist", resource))
	default:
		return models.NewInternalError(err)
	}
}

// readSnapshot runs fn in one read-only transaction so that a count and the
// page fetched after it observe the same data. PostgreSQL gets REPEATABLE READ;
// other dialects use their default isolation.
func readSnapshot(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db.Dialector.Name() == "postgres" {
		return db.WithContext(ctx).Transaction(fn, &sql.TxOptions{
			Isolation: sql.LevelRepeatableRead,
			ReadOnly:  true,
		})
	}
	return db.WithContext(ctx).Transaction(fn)
}
