package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	roomDomain "github.com/GuiNunes77/The-Room/internal/domain/room"
)

func testRoom(t *testing.T, nightlyCents int64) *roomDomain.Room {
	t.Helper()
	rm, err := roomDomain.NewRoom("101", "double", 2, nightlyCents, nil, nil)
	require.NoError(t, err)
	return rm
}

func TestNights(t *testing.T) {
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"two full days", base, base.AddDate(0, 0, 2), 2},
		{"one full day", base, base.AddDate(0, 0, 1), 1},
		{"partial day rounds up", base, base.Add(25 * time.Hour), 2},
		{"under a day rounds up", base, base.Add(3 * time.Hour), 1},
		{"zero duration", base, base, 0},
		{"inverted interval", base.AddDate(0, 0, 2), base, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nights(tt.checkIn, tt.checkOut))
		})
	}
}

func TestNightlyRatePricer_Quote(t *testing.T) {
	pricer := NewNightlyRatePricer()
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rm := testRoom(t, 20000)

	t.Run("two nights at the nightly rate", func(t *testing.T) {
		assert.Equal(t, int64(40000), pricer.Quote(rm, base, base.AddDate(0, 0, 2)))
	})

	t.Run("same inputs give the same quote", func(t *testing.T) {
		first := pricer.Quote(rm, base, base.AddDate(0, 0, 3))
		second := pricer.Quote(rm, base, base.AddDate(0, 0, 3))
		assert.Equal(t, first, second)
	})

	t.Run("longer stay never costs less", func(t *testing.T) {
		short := pricer.Quote(rm, base, base.AddDate(0, 0, 2))
		long := pricer.Quote(rm, base, base.AddDate(0, 0, 5))
		assert.GreaterOrEqual(t, long, short)
	})

	t.Run("nil room quotes zero", func(t *testing.T) {
		assert.Equal(t, int64(0), pricer.Quote(nil, base, base.AddDate(0, 0, 2)))
	})

	t.Run("missing dates quote zero", func(t *testing.T) {
		assert.Equal(t, int64(0), pricer.Quote(rm, time.Time{}, base))
		assert.Equal(t, int64(0), pricer.Quote(rm, base, time.Time{}))
	})

	t.Run("inverted interval quotes zero", func(t *testing.T) {
		assert.Equal(t, int64(0), pricer.Quote(rm, base.AddDate(0, 0, 2), base))
	})
}
