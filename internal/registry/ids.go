package registry

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// IDGenerator produces identifiers for new toasts.
type IDGenerator func() string

// Generator names accepted by NewIDGenerator.
const (
	GeneratorULID = "ulid"
	GeneratorUUID = "uuid"
)

// ULIDGenerator returns lexically sortable ULIDs with monotonic entropy,
// so IDs created within the same millisecond still sort in push order.
func ULIDGenerator() string {
	return ulid.Make().String()
}

// UUIDGenerator returns random (version 4) UUIDs.
func UUIDGenerator() string {
	return uuid.NewString()
}

// NewIDGenerator returns the generator registered under name.
// An empty name selects ULIDs.
func NewIDGenerator(name string) (IDGenerator, error) {
	switch name {
	case "", GeneratorULID:
		return ULIDGenerator, nil
	case GeneratorUUID:
		return UUIDGenerator, nil
	default:
		return nil, fmt.Errorf("unknown id generator %q (want %q or %q)", name, GeneratorULID, GeneratorUUID)
	}
}
