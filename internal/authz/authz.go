package authz

import (
	"context"

	"github.com/google/uuid"
)

// Permission names an action on a resource type.
type Permission string

const (
	PermBookingCreate   Permission = "booking.create"
	PermBookingCheckout Permission = "booking.checkout"
	PermBookingCancel   Permission = "booking.cancel"
	// PermBookingOverride lets a staff member mutate bookings created by
	// someone else; without it the owner-only policy applies.
	PermBookingOverride Permission = "booking.override"

	PermGuestCreate   Permission = "guest.create"
	PermGuestOverride Permission = "guest.override"

	PermRoomCreate     Permission = "room.create"
	PermRoomEdit       Permission = "room.edit"
	PermRoomEditStatus Permission = "room.edit_status"
	PermRoomDelete     Permission = "room.delete"
)

// Authorizer answers whether a staff member may perform an action. Role
// assignments live in the entity store; the check itself is an explicit call
// made by the application services before any mutation.
type Authorizer interface {
	// Can reports whether the actor holds the permission through any of
	// their roles.
	Can(ctx context.Context, actorID uuid.UUID, perm Permission) (bool, error)

	// HasRole reports whether the actor is assigned the named role.
	HasRole(ctx context.Context, actorID uuid.UUID, role string) (bool, error)
}
