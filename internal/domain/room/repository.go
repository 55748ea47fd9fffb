package room

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for room aggregates.
type Repository interface {
	// FindByID retrieves a room by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)

	// FindByNumber retrieves a room by its room number.
	FindByNumber(ctx context.Context, number string) (*Room, error)

	// List retrieves rooms with pagination, optionally filtered by status.
	List(ctx context.Context, status *Status, page, limit int) ([]*Room, int64, error)

	// Save persists a new room.
	Save(ctx context.Context, room *Room) error

	// Update persists changes to an existing room with optimistic locking.
	Update(ctx context.Context, room *Room) error

	// Delete hard-deletes a room.
	Delete(ctx context.Context, id uuid.UUID) error
}
