// Package orderref generates human-readable order references.
package orderref

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const Prefix = "ORD"

// Generator returns a new reference for an order created at now.
type Generator interface {
	Next(now time.Time) string
}

// UUIDGenerator yields ORD-YYYYMMDD-XXXXXXXXXXXX. The suffix is 48 random
// bits from a v4 uuid, so references created in the same instant do not
// share a suffix. The date part is only for humans.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Next(now time.Time) string {
	id := uuid.New()
	hex := strings.ReplaceAll(id.String(), "-", "")
	return Prefix + "-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(hex[len(hex)-12:])
}
