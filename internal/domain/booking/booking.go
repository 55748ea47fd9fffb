package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/GuiNunes77/The-Room/internal/domain"
)

const referenceCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CurrencyEUR is the single currency handled by the front desk.
const CurrencyEUR = "EUR"

// Booking is the aggregate root for a guest's stay in a room.
type Booking struct {
	id              uuid.UUID
	referenceCode   string
	guestID         uuid.UUID
	roomID          uuid.UUID
	checkInDate     time.Time
	checkOutDate    time.Time
	actualCheckOut  *time.Time
	totalPriceCents int64
	currency        string
	status          Status
	notes           string
	createdBy       uuid.UUID
	version         int64
	createdAt       time.Time
	updatedAt       time.Time
}

// generateReferenceCode creates a booking reference in the format "BK-XXXXXX".
func generateReferenceCode() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceCodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate reference code: %w", err)
		}
		result[i] = referenceCodeChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// ValidateStayDates checks the requested interval against the submission time.
// The check-in may not fall before the current date; the check-out must be
// strictly after the check-in.
func ValidateStayDates(checkIn, checkOut, now time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return domain.NewValidationError("check-in and check-out dates are required")
	}
	if !checkOut.After(checkIn) {
		return domain.NewValidationError("check-out must be after check-in")
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		return domain.NewValidationError("check-in cannot be in the past")
	}
	return nil
}

// NewBooking creates a new Booking aggregate with status=active.
func NewBooking(
	guestID, roomID uuid.UUID,
	checkIn, checkOut time.Time,
	totalPriceCents int64,
	notes string,
	createdBy uuid.UUID,
) (*Booking, error) {
	if guestID == uuid.Nil {
		return nil, domain.NewValidationError("guest ID is required")
	}
	if roomID == uuid.Nil {
		return nil, domain.NewValidationError("room ID is required")
	}
	if createdBy == uuid.Nil {
		return nil, domain.NewValidationError("creator ID is required")
	}
	if !checkOut.After(checkIn) {
		return nil, domain.NewValidationError("check-out must be after check-in")
	}
	if totalPriceCents < 0 {
		return nil, domain.NewValidationError("total price cannot be negative")
	}

	referenceCode, err := generateReferenceCode()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		referenceCode:   referenceCode,
		guestID:         guestID,
		roomID:          roomID,
		checkInDate:     checkIn.UTC(),
		checkOutDate:    checkOut.UTC(),
		totalPriceCents: totalPriceCents,
		currency:        CurrencyEUR,
		status:          StatusActive,
		notes:           notes,
		createdBy:       createdBy,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	referenceCode string,
	guestID, roomID uuid.UUID,
	checkIn, checkOut time.Time,
	actualCheckOut *time.Time,
	totalPriceCents int64,
	currency string,
	status Status,
	notes string,
	createdBy uuid.UUID,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		referenceCode:   referenceCode,
		guestID:         guestID,
		roomID:          roomID,
		checkInDate:     checkIn,
		checkOutDate:    checkOut,
		actualCheckOut:  actualCheckOut,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		status:          status,
		notes:           notes,
		createdBy:       createdBy,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

func (b *Booking) ID() uuid.UUID              { return b.id }
func (b *Booking) ReferenceCode() string      { return b.referenceCode }
func (b *Booking) GuestID() uuid.UUID         { return b.guestID }
func (b *Booking) RoomID() uuid.UUID          { return b.roomID }
func (b *Booking) CheckInDate() time.Time     { return b.checkInDate }
func (b *Booking) CheckOutDate() time.Time    { return b.checkOutDate }
func (b *Booking) ActualCheckOut() *time.Time { return b.actualCheckOut }
func (b *Booking) TotalPriceCents() int64     { return b.totalPriceCents }
func (b *Booking) Currency() string           { return b.currency }
func (b *Booking) Status() Status             { return b.status }
func (b *Booking) Notes() string              { return b.notes }
func (b *Booking) CreatedBy() uuid.UUID       { return b.createdBy }
func (b *Booking) Version() int64             { return b.version }
func (b *Booking) CreatedAt() time.Time       { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time       { return b.updatedAt }

// IsOwnedBy reports whether the given staff member created this booking.
func (b *Booking) IsOwnedBy(staffID uuid.UUID) bool {
	return b.createdBy == staffID
}

// --- Behavior ---

// CheckOut transitions the booking from active to checked_out and records the
// actual check-out moment exactly once.
func (b *Booking) CheckOut() error {
	if !b.status.CanTransitionTo(StatusCheckedOut) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCheckedOut))
	}
	now := time.Now().UTC()
	b.status = StatusCheckedOut
	b.actualCheckOut = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking from active to cancelled.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
