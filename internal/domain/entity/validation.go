package entity

import (
	"fmt"
	"strings"
)

// maxIDLength bounds document ids accepted from clients.
const maxIDLength = 128

// ValidateID checks a document id received from a client.
// Ids may not be empty, contain a path separator, or exceed maxIDLength bytes.
func ValidateID(field, id string) error {
	if id == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if len(id) > maxIDLength {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must not exceed %d characters", maxIDLength)}
	}
	if strings.ContainsRune(id, '/') {
		return &ValidationError{Field: field, Message: "must not contain '/'"}
	}
	return nil
}
