package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GuiNunes77/The-Room/internal/authz"
	"github.com/GuiNunes77/The-Room/internal/domain"
	guestDomain "github.com/GuiNunes77/The-Room/internal/domain/guest"
)

// CreateGuestRequest is the request DTO for registering a guest.
type CreateGuestRequest struct {
	FullName       string `json:"full_name" binding:"required"`
	DocumentNumber string `json:"document_number" binding:"required"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Notes          string `json:"notes"`
}

// UpdateGuestRequest is the request DTO for editing a guest record.
type UpdateGuestRequest struct {
	FullName       string `json:"full_name"`
	DocumentNumber string `json:"document_number"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	Notes          string `json:"notes"`
}

// GuestDTO is the API response representation of a guest.
type GuestDTO struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	DocumentNumber string    `json:"document_number"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Address        string    `json:"address,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GuestService implements use cases for the guest registry.
type GuestService struct {
	guests     guestDomain.Repository
	authorizer authz.Authorizer
	logger     *zap.Logger
}

// NewGuestService creates a new GuestService.
func NewGuestService(guests guestDomain.Repository, authorizer authz.Authorizer, logger *zap.Logger) *GuestService {
	return &GuestService{guests: guests, authorizer: authorizer, logger: logger}
}

// CreateGuest registers a new guest.
func (s *GuestService) CreateGuest(ctx context.Context, actorID uuid.UUID, req CreateGuestRequest) (*GuestDTO, error) {
	if err := s.require(ctx, actorID, authz.PermGuestCreate); err != nil {
		return nil, err
	}

	g, err := guestDomain.NewGuest(actorID, req.FullName, req.DocumentNumber, req.Email, req.Phone, req.Address, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := s.guests.Save(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("guest registered",
		zap.String("guest_id", g.ID().String()),
		zap.String("created_by", actorID.String()),
	)
	result := toGuestDTO(g)
	return &result, nil
}

// UpdateGuest edits a guest record. Only the creating staff member may edit
// it unless the actor holds the override permission.
func (s *GuestService) UpdateGuest(ctx context.Context, actorID, guestID uuid.UUID, req UpdateGuestRequest) (*GuestDTO, error) {
	g, err := s.guests.FindByID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnershipOrOverride(ctx, actorID, g); err != nil {
		return nil, err
	}

	if err := g.UpdateProfile(req.FullName, req.DocumentNumber, req.Email, req.Phone, req.Address, req.Notes); err != nil {
		return nil, err
	}

	if err := s.guests.Update(ctx, g); err != nil {
		return nil, err
	}

	result := toGuestDTO(g)
	return &result, nil
}

// DeleteGuest hard-deletes a guest; dependent bookings cascade at the store.
func (s *GuestService) DeleteGuest(ctx context.Context, actorID, guestID uuid.UUID) error {
	g, err := s.guests.FindByID(ctx, guestID)
	if err != nil {
		return err
	}
	if err := s.requireOwnershipOrOverride(ctx, actorID, g); err != nil {
		return err
	}

	s.logger.Info("guest deleted",
		zap.String("guest_id", guestID.String()),
		zap.String("deleted_by", actorID.String()),
	)
	return s.guests.Delete(ctx, guestID)
}

// GetGuest retrieves a guest by ID.
func (s *GuestService) GetGuest(ctx context.Context, guestID uuid.UUID) (*GuestDTO, error) {
	g, err := s.guests.FindByID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	result := toGuestDTO(g)
	return &result, nil
}

// ListGuests retrieves paginated guests.
func (s *GuestService) ListGuests(ctx context.Context, page, limit int) (*domain.PaginatedResult[GuestDTO], error) {
	guests, total, err := s.guests.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]GuestDTO, len(guests))
	for i, g := range guests {
		dtos[i] = toGuestDTO(g)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

func (s *GuestService) require(ctx context.Context, actorID uuid.UUID, perm authz.Permission) error {
	allowed, err := s.authorizer.Can(ctx, actorID, perm)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.NewForbiddenError("missing permission " + string(perm))
	}
	return nil
}

func (s *GuestService) requireOwnershipOrOverride(ctx context.Context, actorID uuid.UUID, g *guestDomain.Guest) error {
	if g.IsOwnedBy(actorID) {
		return nil
	}
	allowed, err := s.authorizer.Can(ctx, actorID, authz.PermGuestOverride)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.NewForbiddenError("guest record was created by another staff member")
	}
	return nil
}

func toGuestDTO(g *guestDomain.Guest) GuestDTO {
	return GuestDTO{
		ID:             g.ID(),
		FullName:       g.FullName(),
		DocumentNumber: g.DocumentNumber(),
		Email:          g.Email(),
		Phone:          g.Phone(),
		Address:        g.Address(),
		Notes:          g.Notes(),
		CreatedBy:      g.CreatedBy(),
		CreatedAt:      g.CreatedAt(),
		UpdatedAt:      g.UpdatedAt(),
	}
}
