// Package id generates record identifiers.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a UUIDv7 string. Version 7 ids embed a millisecond timestamp, so
// their lexical order follows creation order and they work as list cursors.
func New() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return u.String(), nil
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
