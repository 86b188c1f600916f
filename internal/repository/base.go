// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// uniqueColumn guesses which column a unique violation was raised for.
func uniqueColumn(err error, columns ...string) string {
	var pgErr *pgconn.PgError
	haystack := strings.ToLower(err.Error())
	if errors.As(err, &pgErr) {
		haystack = strings.ToLower(pgErr.ConstraintName + " " + pgErr.Detail)
	}
	for _, c := range columns {
		if strings.Contains(haystack, c) {
			return c
		}
	}
	return ""
}
