package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GuiNunes77/The-Room/internal/auth"
	"github.com/GuiNunes77/The-Room/internal/authz"
	"github.com/GuiNunes77/The-Room/internal/domain"
	bookingDomain "github.com/GuiNunes77/The-Room/internal/domain/booking"
	guestDomain "github.com/GuiNunes77/The-Room/internal/domain/guest"
	roomDomain "github.com/GuiNunes77/The-Room/internal/domain/room"
	"github.com/GuiNunes77/The-Room/internal/events"
	"github.com/GuiNunes77/The-Room/internal/kafka"
)

// EventPublisher publishes CloudEvents; satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	GuestID      uuid.UUID `json:"guest_id" binding:"required"`
	RoomID       uuid.UUID `json:"room_id" binding:"required"`
	CheckInDate  time.Time `json:"check_in_date" binding:"required"`
	CheckOutDate time.Time `json:"check_out_date" binding:"required"`
	Notes        string    `json:"notes"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID  `json:"id"`
	ReferenceCode   string     `json:"reference_code"`
	GuestID         uuid.UUID  `json:"guest_id"`
	RoomID          uuid.UUID  `json:"room_id"`
	CheckInDate     time.Time  `json:"check_in_date"`
	CheckOutDate    time.Time  `json:"check_out_date"`
	ActualCheckOut  *time.Time `json:"actual_check_out,omitempty"`
	TotalPriceCents int64      `json:"total_price_cents"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	Version         int64      `json:"version"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// BookingStatsDTO holds booking counts for the front-desk dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService orchestrates the booking lifecycle: creation, check-out and
// cancellation, keeping room status in step with booking transitions.
type BookingService struct {
	bookings   bookingDomain.Repository
	rooms      roomDomain.Repository
	guests     guestDomain.Repository
	checker    *bookingDomain.AvailabilityChecker
	pricer     bookingDomain.StayPricer
	authorizer authz.Authorizer
	producer   EventPublisher
	logger     *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	rooms roomDomain.Repository,
	guests guestDomain.Repository,
	checker *bookingDomain.AvailabilityChecker,
	pricer bookingDomain.StayPricer,
	authorizer authz.Authorizer,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:   bookings,
		rooms:      rooms,
		guests:     guests,
		checker:    checker,
		pricer:     pricer,
		authorizer: authorizer,
		producer:   producer,
		logger:     logger,
	}
}

// CreateBooking creates a new active booking for the given staff actor.
// Either the booking exists and the room is occupied afterwards, or nothing
// changed.
func (s *BookingService) CreateBooking(ctx context.Context, actorID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if err := s.requirePermission(ctx, actorID, authz.PermBookingCreate); err != nil {
		return nil, err
	}

	if err := bookingDomain.ValidateStayDates(req.CheckInDate, req.CheckOutDate, time.Now().UTC()); err != nil {
		return nil, err
	}

	if _, err := s.guests.FindByID(ctx, req.GuestID); err != nil {
		return nil, err
	}
	rm, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	available, err := s.checker.IsAvailable(ctx, req.RoomID, req.CheckInDate, req.CheckOutDate)
	if err != nil {
		// A failed availability check aborts creation; it is never taken as
		// "available".
		return nil, err
	}
	if !available {
		return nil, domain.NewConflictError(fmt.Sprintf("room %s is not available for the requested dates", rm.RoomNumber()))
	}

	priceCents := s.pricer.Quote(rm, req.CheckInDate, req.CheckOutDate)

	bk, err := bookingDomain.NewBooking(
		req.GuestID,
		req.RoomID,
		req.CheckInDate,
		req.CheckOutDate,
		priceCents,
		req.Notes,
		actorID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Create(ctx, bk); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("reference", bk.ReferenceCode()),
		zap.String("room_number", rm.RoomNumber()),
		zap.Int64("total_price_cents", priceCents),
	)

	s.publishEvent(ctx, events.BookingCreated, bk.ID().String(), events.BookingCreatedEvent{
		BookingID:       bk.ID(),
		ReferenceCode:   bk.ReferenceCode(),
		GuestID:         bk.GuestID(),
		RoomID:          bk.RoomID(),
		RoomNumber:      rm.RoomNumber(),
		CheckInDate:     bk.CheckInDate(),
		CheckOutDate:    bk.CheckOutDate(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		OccurredAt:      time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CheckOut transitions an active booking to checked_out, records the actual
// check-out time and moves the room to cleaning.
func (s *BookingService) CheckOut(ctx context.Context, actorID, bookingID uuid.UUID) (*BookingDTO, error) {
	if err := s.requirePermission(ctx, actorID, authz.PermBookingCheckout); err != nil {
		return nil, err
	}
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnershipOrOverride(ctx, actorID, bk); err != nil {
		return nil, err
	}

	rm, err := s.rooms.FindByID(ctx, bk.RoomID())
	if err != nil {
		return nil, err
	}

	if err := bk.CheckOut(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk, roomDomain.StatusCleaning); err != nil {
		return nil, err
	}

	s.logger.Info("booking checked out",
		zap.String("booking_id", bk.ID().String()),
		zap.String("room_number", rm.RoomNumber()),
	)

	s.publishEvent(ctx, events.BookingCheckedOut, bk.ID().String(), events.BookingCheckedOutEvent{
		BookingID:      bk.ID(),
		ReferenceCode:  bk.ReferenceCode(),
		RoomID:         bk.RoomID(),
		RoomNumber:     rm.RoomNumber(),
		ActualCheckOut: *bk.ActualCheckOut(),
		OccurredAt:     time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking transitions an active booking to cancelled. The room is
// released back to available unless another active booking still holds it.
func (s *BookingService) CancelBooking(ctx context.Context, actorID, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	if err := s.requirePermission(ctx, actorID, authz.PermBookingCancel); err != nil {
		return nil, err
	}
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireOwnershipOrOverride(ctx, actorID, bk); err != nil {
		return nil, err
	}

	rm, err := s.rooms.FindByID(ctx, bk.RoomID())
	if err != nil {
		return nil, err
	}

	if err := bk.Cancel(); err != nil {
		return nil, err
	}

	// The room may also be held by a non-overlapping active booking (for
	// example a future stay); only release it when this was the last one, and
	// only out of occupied so administrative maintenance or cleaning states
	// stand until staff clear them.
	activeCount, err := s.bookings.CountActiveForRoom(ctx, bk.RoomID())
	if err != nil {
		return nil, err
	}
	roomStatus := rm.Status()
	if activeCount <= 1 && roomStatus == roomDomain.StatusOccupied {
		roomStatus = roomDomain.StatusAvailable
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk, roomStatus); err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled",
		zap.String("booking_id", bk.ID().String()),
		zap.String("room_number", rm.RoomNumber()),
		zap.String("reason", reason),
	)

	s.publishEvent(ctx, events.BookingCancelled, bk.ID().String(), events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		ReferenceCode: bk.ReferenceCode(),
		RoomID:        bk.RoomID(),
		RoomNumber:    rm.RoomNumber(),
		CancelledBy:   actorID,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetBookingByReference retrieves a single booking by its reference code.
func (s *BookingService) GetBookingByReference(ctx context.Context, referenceCode string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByReference(ctx, referenceCode)
	if err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListBookings retrieves paginated bookings matching the filter.
func (s *BookingService) ListBookings(ctx context.Context, filter bookingDomain.Filter, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.List(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBookingStats returns aggregate booking counts for the dashboard. The
// manager role is checked against the role tables, not just the token, so a
// revoked role takes effect before the token expires.
func (s *BookingService) GetBookingStats(ctx context.Context, actorID uuid.UUID) (*BookingStatsDTO, error) {
	isManager, err := s.authorizer.HasRole(ctx, actorID, auth.RoleManager)
	if err != nil {
		return nil, err
	}
	if !isManager {
		return nil, domain.NewForbiddenError("booking statistics require the manager role")
	}

	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) requirePermission(ctx context.Context, actorID uuid.UUID, perm authz.Permission) error {
	allowed, err := s.authorizer.Can(ctx, actorID, perm)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.NewForbiddenError(fmt.Sprintf("missing permission %s", perm))
	}
	return nil
}

// requireOwnershipOrOverride enforces the owner-only policy on booking
// mutation: only the creating staff member may transition it unless the actor
// holds the override permission.
func (s *BookingService) requireOwnershipOrOverride(ctx context.Context, actorID uuid.UUID, bk *bookingDomain.Booking) error {
	if bk.IsOwnedBy(actorID) {
		return nil
	}
	allowed, err := s.authorizer.Can(ctx, actorID, authz.PermBookingOverride)
	if err != nil {
		return err
	}
	if !allowed {
		return domain.NewForbiddenError("booking was created by another staff member")
	}
	return nil
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(events.EventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:              bk.ID(),
		ReferenceCode:   bk.ReferenceCode(),
		GuestID:         bk.GuestID(),
		RoomID:          bk.RoomID(),
		CheckInDate:     bk.CheckInDate(),
		CheckOutDate:    bk.CheckOutDate(),
		ActualCheckOut:  bk.ActualCheckOut(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		Status:          string(bk.Status()),
		Notes:           bk.Notes(),
		CreatedBy:       bk.CreatedBy(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}
