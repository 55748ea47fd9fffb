package booking

import (
	"time"

	roomDomain "github.com/GuiNunes77/The-Room/internal/domain/room"
)

// StayPricer calculates the total price of a stay in cents.
type StayPricer interface {
	// Quote returns the total price for the stay. It returns 0 when the room
	// is unknown or either date is missing, so interactive quoting degrades
	// gracefully; authoritative booking creation validates inputs first.
	Quote(room *roomDomain.Room, checkIn, checkOut time.Time) int64
}

// NightlyRatePricer charges the room's nightly rate per night of the stay.
type NightlyRatePricer struct{}

// NewNightlyRatePricer creates the default pricer.
func NewNightlyRatePricer() *NightlyRatePricer {
	return &NightlyRatePricer{}
}

// Quote computes nights x nightly rate. Any partial day rounds up to a full
// night charged.
func (p *NightlyRatePricer) Quote(room *roomDomain.Room, checkIn, checkOut time.Time) int64 {
	if room == nil || checkIn.IsZero() || checkOut.IsZero() {
		return 0
	}
	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return 0
	}
	return int64(nights) * room.PricePerNightCents()
}

// Nights returns the number of nights spanned by the interval, rounding any
// partial day up.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	const day = 24 * time.Hour
	nights := int(d / day)
	if d%day != 0 {
		nights++
	}
	return nights
}
