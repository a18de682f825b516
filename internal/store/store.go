// Package store holds the gorm repositories. Repositories return ErrNotFound
// and ErrDuplicate for the two cases callers branch on; anything else is a
// raw driver error wrapped with context.
package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// isUniqueViolation recognises unique index failures. gorm translates them
// when TranslateError is on; the string checks cover connections opened without it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "sqlstate 23505")
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
