package utils

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// UUIDGenerator produces time-ordered UUIDs for device and trace ids.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// PushIDGenerator produces ULIDs that tag pushes so relay acknowledgements
// can be matched to them. ulid.Make is monotonic within a process.
type PushIDGenerator struct {
}

func NewPushIDGenerator() *PushIDGenerator {
	return &PushIDGenerator{}
}

func (g *PushIDGenerator) Generate() string {
	return ulid.Make().String()
}
