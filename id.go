package txprobe

import (
	"fmt"

	"github.com/google/uuid"
)

// IDGenerator creates correlation identifiers.
type IDGenerator interface {
	// New returns a new globally unique correlation id.
	New() (string, error)
}

// UUIDv7Generator produces time-ordered UUID v7 correlation ids.
type UUIDv7Generator struct{}

// New creates a new UUID v7 string.
func (UUIDv7Generator) New() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("txprobe: generate correlation id: %w", err)
	}

	return id.String(), nil
}
