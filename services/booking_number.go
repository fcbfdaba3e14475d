// services/booking_number.go
package services

import (
	"instaclean-backend/utils"
	"strings"
	"time"
)

// NumberSource hands out candidate booking numbers. Uniqueness is enforced by
// the database, so a candidate may collide and be asked for again.
type NumberSource interface {
	Next() string
}

// BookingNumberGenerator formats numbers as PREFIX-TIMEPART-RANDOM, the time
// part being the creation instant in base36 milliseconds.
type BookingNumberGenerator struct {
	Prefix string
	now    func() time.Time
}

func NewBookingNumberGenerator(prefix string) *BookingNumberGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "IC"
	}
	return &BookingNumberGenerator{Prefix: prefix, now: time.Now}
}

func (g *BookingNumberGenerator) Next() string {
	return g.Prefix + "-" + utils.FormatBase36(g.now().UnixMilli()) + "-" + utils.RandomBase36(4)
}
