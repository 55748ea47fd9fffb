package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicBookingEvents carries all booking lifecycle events.
const TopicBookingEvents = "booking.events"

// EventSource identifies this service in published CloudEvents.
const EventSource = "the-room"

// Booking lifecycle event types.
const (
	BookingCreated    = "booking.created"
	BookingCheckedOut = "booking.checked_out"
	BookingCancelled  = "booking.cancelled"
)

// BookingCreatedEvent is published when a new active booking is created.
type BookingCreatedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	ReferenceCode   string    `json:"reference_code"`
	GuestID         uuid.UUID `json:"guest_id"`
	RoomID          uuid.UUID `json:"room_id"`
	RoomNumber      string    `json:"room_number"`
	CheckInDate     time.Time `json:"check_in_date"`
	CheckOutDate    time.Time `json:"check_out_date"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Currency        string    `json:"currency"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// BookingCheckedOutEvent is published when a guest checks out and the room
// moves to cleaning.
type BookingCheckedOutEvent struct {
	BookingID      uuid.UUID `json:"booking_id"`
	ReferenceCode  string    `json:"reference_code"`
	RoomID         uuid.UUID `json:"room_id"`
	RoomNumber     string    `json:"room_number"`
	ActualCheckOut time.Time `json:"actual_check_out"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when an active booking is cancelled.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	ReferenceCode string    `json:"reference_code"`
	RoomID        uuid.UUID `json:"room_id"`
	RoomNumber    string    `json:"room_number"`
	CancelledBy   uuid.UUID `json:"cancelled_by"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
