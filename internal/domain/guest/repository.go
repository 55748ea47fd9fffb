package guest

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for guest aggregates.
type Repository interface {
	// FindByID retrieves a guest by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Guest, error)

	// List retrieves guests with pagination.
	List(ctx context.Context, page, limit int) ([]*Guest, int64, error)

	// Save persists a new guest. Duplicate document numbers surface as a
	// conflict.
	Save(ctx context.Context, guest *Guest) error

	// Update persists changes to an existing guest.
	Update(ctx context.Context, guest *Guest) error

	// Delete hard-deletes a guest; dependent bookings cascade at the store.
	Delete(ctx context.Context, id uuid.UUID) error
}
