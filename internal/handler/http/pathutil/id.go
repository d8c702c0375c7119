// Package pathutil parses identifiers from request paths and maps
// concrete paths to route templates for metric labels.
package pathutil

import (
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidID is returned for a malformed session id.
var ErrInvalidID = errors.New("invalid session id")

// ParseSessionID parses a session id path segment.
func ParseSessionID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
