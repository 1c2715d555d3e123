// Package id provides UUID generation for entities.
// Uses UUIDv7 for time-ordered identifiers (better for database indexes).
package id

import (
	"github.com/google/uuid"
)

// ID is the entity identifier type.
type ID = uuid.UUID

// Nil is the zero ID.
var Nil = uuid.Nil

// New generates a new UUIDv7 (time-ordered).
// Falls back to UUIDv4 if v7 generation fails.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Parse parses a string into an ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse parses a string or panics. Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// IsNil reports whether the ID is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
