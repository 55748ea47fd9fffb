package room

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/GuiNunes77/The-Room/internal/domain"
)

// Room is the aggregate root for a hotel room.
type Room struct {
	id                 uuid.UUID
	roomNumber         string
	roomType           string
	capacity           int
	pricePerNightCents int64
	status             Status
	floor              *int
	amenities          []string
	version            int64
	createdAt          time.Time
	updatedAt          time.Time
}

// NewRoom creates a new available Room with validated fields.
func NewRoom(
	roomNumber, roomType string,
	capacity int,
	pricePerNightCents int64,
	floor *int,
	amenities []string,
) (*Room, error) {
	if roomNumber == "" {
		return nil, domain.NewValidationError("room number is required")
	}
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	if pricePerNightCents < 0 {
		return nil, domain.NewValidationError("nightly price cannot be negative")
	}

	now := time.Now().UTC()
	return &Room{
		id:                 uuid.New(),
		roomNumber:         roomNumber,
		roomType:           roomType,
		capacity:           capacity,
		pricePerNightCents: pricePerNightCents,
		status:             StatusAvailable,
		floor:              floor,
		amenities:          amenities,
		version:            1,
		createdAt:          now,
		updatedAt:          now,
	}, nil
}

// DefaultCapacity is used when a room is created without an explicit capacity.
const DefaultCapacity = 2

// Reconstruct rebuilds a Room from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	roomNumber, roomType string,
	capacity int,
	pricePerNightCents int64,
	status Status,
	floor *int,
	amenities []string,
	version int64,
	createdAt, updatedAt time.Time,
) *Room {
	return &Room{
		id:                 id,
		roomNumber:         roomNumber,
		roomType:           roomType,
		capacity:           capacity,
		pricePerNightCents: pricePerNightCents,
		status:             status,
		floor:              floor,
		amenities:          amenities,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

func (r *Room) ID() uuid.UUID              { return r.id }
func (r *Room) RoomNumber() string         { return r.roomNumber }
func (r *Room) RoomType() string           { return r.roomType }
func (r *Room) Capacity() int              { return r.capacity }
func (r *Room) PricePerNightCents() int64  { return r.pricePerNightCents }
func (r *Room) Status() Status             { return r.status }
func (r *Room) Floor() *int                { return r.floor }
func (r *Room) Amenities() []string        { return r.amenities }
func (r *Room) Version() int64             { return r.version }
func (r *Room) CreatedAt() time.Time       { return r.createdAt }
func (r *Room) UpdatedAt() time.Time       { return r.updatedAt }

// --- Behavior ---

// UpdateProfile replaces the staff-editable profile fields.
func (r *Room) UpdateProfile(roomType string, capacity int, pricePerNightCents int64, floor *int, amenities []string) error {
	if capacity < 1 {
		return domain.NewValidationError("capacity must be at least 1")
	}
	if pricePerNightCents < 0 {
		return domain.NewValidationError("nightly price cannot be negative")
	}
	r.roomType = roomType
	r.capacity = capacity
	r.pricePerNightCents = pricePerNightCents
	r.floor = floor
	r.amenities = amenities
	r.updatedAt = time.Now().UTC()
	return nil
}

// SetAdministrativeStatus moves the room between the staff-managed statuses
// (available, maintenance, cleaning). The occupied status is owned by the
// booking lifecycle and cannot be entered or left here while a stay is active.
func (r *Room) SetAdministrativeStatus(target Status, hasActiveBooking bool) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("unknown room status: %s", target))
	}
	if target == StatusOccupied {
		return domain.NewValidationError("occupied is set by the booking lifecycle, not by staff")
	}
	if hasActiveBooking {
		return domain.NewInvalidStateError(string(r.status), string(target))
	}
	r.status = target
	r.updatedAt = time.Now().UTC()
	return nil
}

// MarkOccupied flips the room to occupied when a booking becomes active.
func (r *Room) MarkOccupied() {
	r.status = StatusOccupied
	r.updatedAt = time.Now().UTC()
}

// MarkCleaning flips the room to cleaning after a check-out. Returning it to
// available is a separate administrative transition.
func (r *Room) MarkCleaning() {
	r.status = StatusCleaning
	r.updatedAt = time.Now().UTC()
}

// MarkAvailable releases the room, used when an active booking is cancelled.
func (r *Room) MarkAvailable() {
	r.status = StatusAvailable
	r.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (r *Room) IncrementVersion() {
	r.version++
	r.updatedAt = time.Now().UTC()
}
