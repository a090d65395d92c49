package utils

import "github.com/google/uuid"

// UUIDGenerator issues ids for server-side rows. Ids are UUIDv7, so rows
// created later sort after earlier ones.
type UUIDGenerator struct {
	newUUID func() (uuid.UUID, error)
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{newUUID: uuid.NewV7}
}

// Generate returns the next id. If the v7 source fails a random v4 is
// returned instead; ordering is lost for that row only.
func (g *UUIDGenerator) Generate() string {
	id, err := g.newUUID()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
