package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GuiNunes77/The-Room/internal/authz"
	"github.com/GuiNunes77/The-Room/internal/domain"
	bookingDomain "github.com/GuiNunes77/The-Room/internal/domain/booking"
	roomDomain "github.com/GuiNunes77/The-Room/internal/domain/room"
)

// CreateRoomRequest is the request DTO for adding a room to the inventory.
type CreateRoomRequest struct {
	RoomNumber         string   `json:"room_number" binding:"required"`
	RoomType           string   `json:"room_type"`
	Capacity           int      `json:"capacity"`
	PricePerNightCents int64    `json:"price_per_night_cents"`
	Floor              *int     `json:"floor"`
	Amenities          []string `json:"amenities"`
}

// UpdateRoomRequest is the request DTO for editing a room's profile.
type UpdateRoomRequest struct {
	RoomType           string   `json:"room_type"`
	Capacity           int      `json:"capacity"`
	PricePerNightCents int64    `json:"price_per_night_cents"`
	Floor              *int     `json:"floor"`
	Amenities          []string `json:"amenities"`
}

// RoomDTO is the API response representation of a room.
type RoomDTO struct {
	ID                 uuid.UUID `json:"id"`
	RoomNumber         string    `json:"room_number"`
	RoomType           string    `json:"room_type"`
	Capacity           int       `json:"capacity"`
	PricePerNightCents int64     `json:"price_per_night_cents"`
	Status             string    `json:"status"`
	Floor              *int      `json:"floor,omitempty"`
	Amenities          []string  `json:"amenities,omitempty"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// AvailabilityDTO reports a room's availability for an interval together with
// a non-binding price quote.
type AvailabilityDTO struct {
	RoomID     uuid.UUID `json:"room_id"`
	Available  bool      `json:"available"`
	Nights     int       `json:"nights"`
	QuoteCents int64     `json:"quote_cents"`
	Currency   string    `json:"currency"`
}

// RoomService implements use cases for room inventory management.
type RoomService struct {
	rooms      roomDomain.Repository
	bookings   bookingDomain.Repository
	checker    *bookingDomain.AvailabilityChecker
	pricer     bookingDomain.StayPricer
	authorizer authz.Authorizer
	logger     *zap.Logger
}

// NewRoomService creates a new RoomService.
func NewRoomService(
	rooms roomDomain.Repository,
	bookings bookingDomain.Repository,
	checker *bookingDomain.AvailabilityChecker,
	pricer bookingDomain.StayPricer,
	authorizer authz.Authorizer,
	logger *zap.Logger,
) *RoomService {
	return &RoomService{
		rooms:      rooms,
		bookings:   bookings,
		checker:    checker,
		pricer:     pricer,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateRoom adds a room to the inventory.
func (s *RoomService) CreateRoom(ctx context.Context, actorID uuid.UUID, req CreateRoomRequest) (*RoomDTO, error) {
	if err := s.require(ctx, actorID, authz.PermRoomCreate); err != nil {
		return nil, err
	}

	rm, err := roomDomain.NewRoom(
		req.RoomNumber,
		req.RoomType,
		req.Capacity,
		req.PricePerNightCents,
		req.Floor,
		req.Amenities,
	)
	if err != nil {
		return nil, err
	}

	if err := s.rooms.Save(ctx, rm); err != nil {
		return nil, err
	}

	s.logger.Info("room created",
		zap.String("room_id", rm.ID().String()),
		zap.String("room_number", rm.RoomNumber()),
	)
	result := toRoomDTO(rm)
	return &result, nil
}

// UpdateRoom edits a room's profile fields.
func (s *RoomService) UpdateRoom(ctx context.Context, actorID, roomID uuid.UUID, req UpdateRoomRequest) (*RoomDTO, error) {
	if err := s.require(ctx, actorID, authz.PermRoomEdit); err != nil {
		return nil, err
	}

	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := rm.UpdateProfile(req.RoomType, req.Capacity, req.PricePerNightCents, req.Floor, req.Amenities); err != nil {
		return nil, err
	}

	rm.IncrementVersion()
	if err := s.rooms.Update(ctx, rm); err != nil {
		return nil, err
	}

	result := toRoomDTO(rm)
	return &result, nil
}

// SetStatus performs an administrative status transition. Occupied cannot be
// entered here, and no transition is allowed while an active booking holds
// the room.
func (s *RoomService) SetStatus(ctx context.Context, actorID, roomID uuid.UUID, status string) (*RoomDTO, error) {
	if err := s.require(ctx, actorID, authz.PermRoomEditStatus); err != nil {
		return nil, err
	}

	target, err := roomDomain.ParseStatus(status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	activeCount, err := s.bookings.CountActiveForRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if err := rm.SetAdministrativeStatus(target, activeCount > 0); err != nil {
		return nil, err
	}

	rm.IncrementVersion()
	if err := s.rooms.Update(ctx, rm); err != nil {
		return nil, err
	}

	s.logger.Info("room status changed",
		zap.String("room_number", rm.RoomNumber()),
		zap.String("status", status),
	)
	result := toRoomDTO(rm)
	return &result, nil
}

// DeleteRoom removes a room from the inventory. Rooms with an active booking
// cannot be deleted.
func (s *RoomService) DeleteRoom(ctx context.Context, actorID, roomID uuid.UUID) error {
	if err := s.require(ctx, actorID, authz.PermRoomDelete); err != nil {
		return err
	}

	activeCount, err := s.bookings.CountActiveForRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if activeCount > 0 {
		return domain.NewConflictError("room has an active booking and cannot be deleted")
	}

	return s.rooms.Delete(ctx, roomID)
}

// GetRoom retrieves a room by ID.
func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (*RoomDTO, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	result := toRoomDTO(rm)
	return &result, nil
}

// ListRooms retrieves paginated rooms, optionally filtered by status.
func (s *RoomService) ListRooms(ctx context.Context, status *roomDomain.Status, page, limit int) (*domain.PaginatedResult[RoomDTO], error) {
	rooms, total, err := s.rooms.List(ctx, status, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]RoomDTO, len(rooms))
	for i, rm := range rooms {
		dtos[i] = toRoomDTO(rm)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// CheckAvailability reports whether the room is free for the interval and
// quotes the stay. The quote is informational; authoritative pricing happens
// at booking creation.
func (s *RoomService) CheckAvailability(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time) (*AvailabilityDTO, error) {
	rm, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	available, err := s.checker.IsAvailable(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	return &AvailabilityDTO{
		RoomID:     roomID,
		Available:  available,
		Nights:     bookingDomain.Nights(checkIn, checkOut),
		QuoteCents: s.pricer.Quote(rm, checkIn, checkOut),
		Currency:   bookingDomain.CurrencyEUR,
	}, nil
}

func (s *RoomService) require(ctx context.Context, actorID uuid.UUID, perm authz.Permission) error {
	allowed, err := s.authorizer.Can(ctx, actorID, perm)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.NewForbiddenError("missing permission " + string(perm))
	}
	return nil
}

func toRoomDTO(rm *roomDomain.Room) RoomDTO {
	return RoomDTO{
		ID:                 rm.ID(),
		RoomNumber:         rm.RoomNumber(),
		RoomType:           rm.RoomType(),
		Capacity:           rm.Capacity(),
		PricePerNightCents: rm.PricePerNightCents(),
		Status:             string(rm.Status()),
		Floor:              rm.Floor(),
		Amenities:          rm.Amenities(),
		Version:            rm.Version(),
		CreatedAt:          rm.CreatedAt(),
		UpdatedAt:          rm.UpdatedAt(),
	}
}
