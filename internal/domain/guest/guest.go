package guest

import (
	"time"

	"github.com/google/uuid"

	"github.com/GuiNunes77/The-Room/internal/domain"
)

// Guest is the aggregate root for a registered hotel guest.
type Guest struct {
	id             uuid.UUID
	fullName       string
	documentNumber string
	email          string
	phone          string
	address        string
	notes          string
	createdBy      uuid.UUID
	createdAt      time.Time
	updatedAt      time.Time
}

// NewGuest creates a new Guest with validated fields.
func NewGuest(createdBy uuid.UUID, fullName, documentNumber, email, phone, address, notes string) (*Guest, error) {
	if createdBy == uuid.Nil {
		return nil, domain.NewValidationError("creator ID is required")
	}
	if fullName == "" {
		return nil, domain.NewValidationError("full name is required")
	}
	if documentNumber == "" {
		return nil, domain.NewValidationError("document number is required")
	}

	now := time.Now().UTC()
	return &Guest{
		id:             uuid.New(),
		fullName:       fullName,
		documentNumber: documentNumber,
		email:          email,
		phone:          phone,
		address:        address,
		notes:          notes,
		createdBy:      createdBy,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Guest from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	fullName, documentNumber, email, phone, address, notes string,
	createdBy uuid.UUID,
	createdAt, updatedAt time.Time,
) *Guest {
	return &Guest{
		id:             id,
		fullName:       fullName,
		documentNumber: documentNumber,
		email:          email,
		phone:          phone,
		address:        address,
		notes:          notes,
		createdBy:      createdBy,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (g *Guest) ID() uuid.UUID           { return g.id }
func (g *Guest) FullName() string        { return g.fullName }
func (g *Guest) DocumentNumber() string  { return g.documentNumber }
func (g *Guest) Email() string           { return g.email }
func (g *Guest) Phone() string           { return g.phone }
func (g *Guest) Address() string         { return g.address }
func (g *Guest) Notes() string           { return g.notes }
func (g *Guest) CreatedBy() uuid.UUID    { return g.createdBy }
func (g *Guest) CreatedAt() time.Time    { return g.createdAt }
func (g *Guest) UpdatedAt() time.Time    { return g.updatedAt }

// IsOwnedBy reports whether the given staff member created this record.
func (g *Guest) IsOwnedBy(staffID uuid.UUID) bool {
	return g.createdBy == staffID
}

// UpdateProfile replaces the editable profile fields.
func (g *Guest) UpdateProfile(fullName, documentNumber, email, phone, address, notes string) error {
	if fullName == "" {
		return domain.NewValidationError("full name is required")
	}
	if documentNumber == "" {
		return domain.NewValidationError("document number is required")
	}
	g.fullName = fullName
	g.documentNumber = documentNumber
	g.email = email
	g.phone = phone
	g.address = address
	g.notes = notes
	g.updatedAt = time.Now().UTC()
	return nil
}
