package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	roomDomain "github.com/GuiNunes77/The-Room/internal/domain/room"
)

// Filter narrows booking list queries.
type Filter struct {
	Status  *Status
	RoomID  *uuid.UUID
	GuestID *uuid.UUID
}

// Repository defines the persistence contract for booking aggregates.
//
// Create and Update are transactional units: the booking write and the
// dependent room-status write commit together or not at all, and the store
// enforces the no-overlapping-active-stays invariant so two concurrent
// creations for the same room and interval cannot both succeed.
type Repository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByReference retrieves a booking by its reference code.
	FindByReference(ctx context.Context, reference string) (*Booking, error)

	// List retrieves bookings matching the filter with pagination.
	List(ctx context.Context, filter Filter, page, limit int) ([]*Booking, int64, error)

	// CountOverlappingActive counts active bookings on the room whose stay
	// interval overlaps [checkIn, checkOut] under the given policy.
	CountOverlappingActive(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, policy OverlapPolicy) (int64, error)

	// CountActiveForRoom counts active bookings currently holding the room.
	CountActiveForRoom(ctx context.Context, roomID uuid.UUID) (int64, error)

	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// Create persists a new active booking and marks its room occupied in one
	// transaction. An overlapping active booking fails the whole transaction
	// with a conflict.
	Create(ctx context.Context, bk *Booking) error

	// Update persists booking changes together with the room's follow-on
	// status, with optimistic locking on the booking version.
	Update(ctx context.Context, bk *Booking, roomStatus roomDomain.Status) error
}
