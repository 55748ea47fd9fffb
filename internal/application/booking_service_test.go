package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GuiNunes77/The-Room/internal/auth"
	"github.com/GuiNunes77/The-Room/internal/authz"
	"github.com/GuiNunes77/The-Room/internal/domain"
	bookingDomain "github.com/GuiNunes77/The-Room/internal/domain/booking"
	guestDomain "github.com/GuiNunes77/The-Room/internal/domain/guest"
	roomDomain "github.com/GuiNunes77/The-Room/internal/domain/room"
	"github.com/GuiNunes77/The-Room/internal/kafka"
)

// --- In-memory fakes ---

type fakeRoomRepo struct {
	rooms map[uuid.UUID]*roomDomain.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[uuid.UUID]*roomDomain.Room)}
}

func (f *fakeRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	rm, ok := f.rooms[id]
	if !ok {
		return nil, domain.NewNotFoundError("Room", id.String())
	}
	return rm, nil
}

func (f *fakeRoomRepo) FindByNumber(_ context.Context, number string) (*roomDomain.Room, error) {
	for _, rm := range f.rooms {
		if rm.RoomNumber() == number {
			return rm, nil
		}
	}
	return nil, domain.NewNotFoundError("Room", number)
}

func (f *fakeRoomRepo) List(_ context.Context, status *roomDomain.Status, _, _ int) ([]*roomDomain.Room, int64, error) {
	var out []*roomDomain.Room
	for _, rm := range f.rooms {
		if status == nil || rm.Status() == *status {
			out = append(out, rm)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRoomRepo) Save(_ context.Context, rm *roomDomain.Room) error {
	f.rooms[rm.ID()] = rm
	return nil
}

func (f *fakeRoomRepo) Update(_ context.Context, rm *roomDomain.Room) error {
	f.rooms[rm.ID()] = rm
	return nil
}

func (f *fakeRoomRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rooms, id)
	return nil
}

type fakeGuestRepo struct {
	guests map[uuid.UUID]*guestDomain.Guest
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{guests: make(map[uuid.UUID]*guestDomain.Guest)}
}

func (f *fakeGuestRepo) FindByID(_ context.Context, id uuid.UUID) (*guestDomain.Guest, error) {
	g, ok := f.guests[id]
	if !ok {
		return nil, domain.NewNotFoundError("Guest", id.String())
	}
	return g, nil
}

func (f *fakeGuestRepo) List(_ context.Context, _, _ int) ([]*guestDomain.Guest, int64, error) {
	var out []*guestDomain.Guest
	for _, g := range f.guests {
		out = append(out, g)
	}
	return out, int64(len(out)), nil
}

func (f *fakeGuestRepo) Save(_ context.Context, g *guestDomain.Guest) error {
	f.guests[g.ID()] = g
	return nil
}

func (f *fakeGuestRepo) Update(_ context.Context, g *guestDomain.Guest) error {
	f.guests[g.ID()] = g
	return nil
}

func (f *fakeGuestRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.guests, id)
	return nil
}

// fakeBookingRepo keeps bookings in memory and mirrors the store's contract:
// Create marks the room occupied, Update applies the follow-on room status.
type fakeBookingRepo struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
	rooms    *fakeRoomRepo
}

func newFakeBookingRepo(rooms *fakeRoomRepo) *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking), rooms: rooms}
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, ok := f.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (f *fakeBookingRepo) FindByReference(_ context.Context, reference string) (*bookingDomain.Booking, error) {
	for _, bk := range f.bookings {
		if bk.ReferenceCode() == reference {
			return bk, nil
		}
	}
	return nil, domain.NewNotFoundError("Booking", reference)
}

func (f *fakeBookingRepo) List(_ context.Context, filter bookingDomain.Filter, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range f.bookings {
		if filter.Status != nil && bk.Status() != *filter.Status {
			continue
		}
		if filter.RoomID != nil && bk.RoomID() != *filter.RoomID {
			continue
		}
		if filter.GuestID != nil && bk.GuestID() != *filter.GuestID {
			continue
		}
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (f *fakeBookingRepo) CountOverlappingActive(_ context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, policy bookingDomain.OverlapPolicy) (int64, error) {
	var count int64
	for _, bk := range f.bookings {
		if bk.RoomID() != roomID || bk.Status() != bookingDomain.StatusActive {
			continue
		}
		var overlaps bool
		if policy == bookingDomain.OverlapExclusive {
			overlaps = bk.CheckInDate().Before(checkOut) && bk.CheckOutDate().After(checkIn)
		} else {
			overlaps = !bk.CheckInDate().After(checkOut) && !bk.CheckOutDate().Before(checkIn)
		}
		if overlaps {
			count++
		}
	}
	return count, nil
}

func (f *fakeBookingRepo) CountActiveForRoom(_ context.Context, roomID uuid.UUID) (int64, error) {
	var count int64
	for _, bk := range f.bookings {
		if bk.RoomID() == roomID && bk.Status() == bookingDomain.StatusActive {
			count++
		}
	}
	return count, nil
}

func (f *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, bk := range f.bookings {
		out[bk.Status().String()]++
	}
	return out, nil
}

func (f *fakeBookingRepo) Create(ctx context.Context, bk *bookingDomain.Booking) error {
	f.bookings[bk.ID()] = bk
	rm, err := f.rooms.FindByID(ctx, bk.RoomID())
	if err != nil {
		return err
	}
	rm.MarkOccupied()
	return nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, bk *bookingDomain.Booking, roomStatus roomDomain.Status) error {
	f.bookings[bk.ID()] = bk
	rm, err := f.rooms.FindByID(ctx, bk.RoomID())
	if err != nil {
		return err
	}
	switch roomStatus {
	case roomDomain.StatusOccupied:
		rm.MarkOccupied()
	case roomDomain.StatusCleaning:
		rm.MarkCleaning()
	case roomDomain.StatusAvailable:
		rm.MarkAvailable()
	}
	return nil
}

// fakeAuthorizer grants the configured permissions to every actor.
type fakeAuthorizer struct {
	perms map[authz.Permission]bool
	roles map[string]bool
}

func allowAll() *fakeAuthorizer {
	return &fakeAuthorizer{
		perms: map[authz.Permission]bool{
			authz.PermBookingCreate:   true,
			authz.PermBookingCheckout: true,
			authz.PermBookingCancel:   true,
			authz.PermBookingOverride: true,
		},
		roles: map[string]bool{
			auth.RoleManager: true,
		},
	}
}

func (f *fakeAuthorizer) Can(_ context.Context, _ uuid.UUID, perm authz.Permission) (bool, error) {
	return f.perms[perm], nil
}

func (f *fakeAuthorizer) HasRole(_ context.Context, _ uuid.UUID, role string) (bool, error) {
	return f.roles[role], nil
}

// capturingPublisher records published events without a broker.
type capturingPublisher struct {
	events []kafka.CloudEvent
	keys   []string
}

func (c *capturingPublisher) PublishEvent(_ context.Context, _ string, key string, event kafka.CloudEvent) error {
	c.events = append(c.events, event)
	c.keys = append(c.keys, key)
	return nil
}

func (c *capturingPublisher) lastType() string {
	if len(c.events) == 0 {
		return ""
	}
	return c.events[len(c.events)-1].Type
}

func (c *capturingPublisher) lastKey() string {
	if len(c.keys) == 0 {
		return ""
	}
	return c.keys[len(c.keys)-1]
}

// --- Test fixture ---

type bookingFixture struct {
	service   *BookingService
	bookings  *fakeBookingRepo
	rooms     *fakeRoomRepo
	guests    *fakeGuestRepo
	auth      *fakeAuthorizer
	published *capturingPublisher
	staffID   uuid.UUID
	guestID   uuid.UUID
	roomID    uuid.UUID
}

func newBookingFixture(t *testing.T, policy bookingDomain.OverlapPolicy) *bookingFixture {
	t.Helper()

	rooms := newFakeRoomRepo()
	guests := newFakeGuestRepo()
	bookings := newFakeBookingRepo(rooms)
	auth := allowAll()
	published := &capturingPublisher{}

	staffID := uuid.New()

	rm, err := roomDomain.NewRoom("101", "double", 2, 20000, nil, nil)
	require.NoError(t, err)
	require.NoError(t, rooms.Save(context.Background(), rm))

	g, err := guestDomain.NewGuest(staffID, "Maria Ferreira", "PT-123456", "maria@example.com", "", "", "")
	require.NoError(t, err)
	require.NoError(t, guests.Save(context.Background(), g))

	checker := bookingDomain.NewAvailabilityChecker(bookings, policy)
	service := NewBookingService(
		bookings,
		rooms,
		guests,
		checker,
		bookingDomain.NewNightlyRatePricer(),
		auth,
		published,
		zap.NewNop(),
	)

	return &bookingFixture{
		service:   service,
		bookings:  bookings,
		rooms:     rooms,
		guests:    guests,
		auth:      auth,
		published: published,
		staffID:   staffID,
		guestID:   g.ID(),
		roomID:    rm.ID(),
	}
}

// stayRequest builds a request anchored to midnight so that back-to-back
// stays share an exact boundary instant.
func (f *bookingFixture) stayRequest(daysFromNow, nights int) CreateBookingRequest {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	checkIn := today.AddDate(0, 0, daysFromNow)
	return CreateBookingRequest{
		GuestID:      f.guestID,
		RoomID:       f.roomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkIn.AddDate(0, 0, nights),
	}
}

// --- Tests ---

func TestBookingService_CreateBooking(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	dto, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)

	assert.Equal(t, "active", dto.Status)
	assert.Equal(t, int64(40000), dto.TotalPriceCents, "two nights at 20000 cents")
	assert.Equal(t, "EUR", dto.Currency)
	assert.NotEmpty(t, dto.ReferenceCode)
	assert.Equal(t, fx.staffID, dto.CreatedBy)

	rm, err := fx.rooms.FindByID(ctx, fx.roomID)
	require.NoError(t, err)
	assert.Equal(t, roomDomain.StatusOccupied, rm.Status())

	assert.Equal(t, "booking.created", fx.published.lastType())
	// Events are keyed by the booking so they stay ordered per aggregate.
	assert.Equal(t, dto.ID.String(), fx.published.lastKey())
}

func TestBookingService_CreateBooking_OverlapRejected(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	_, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 3))
	require.NoError(t, err)

	// A second stay touching the same dates must be rejected with a conflict.
	_, err = fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(2, 2))
	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Contains(t, conflictErr.Message, "101")

	// Under the inclusive policy even a back-to-back stay starting on the
	// checkout day collides.
	_, err = fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(4, 2))
	assert.ErrorAs(t, err, &conflictErr)
}

func TestBookingService_CreateBooking_SameDayTurnover(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapExclusive)
	ctx := context.Background()

	_, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 3))
	require.NoError(t, err)

	// The exclusive policy lets a new stay begin on the previous checkout day.
	_, err = fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(4, 2))
	require.NoError(t, err)
}

func TestBookingService_CreateBooking_Validation(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	t.Run("past check-in rejected", func(t *testing.T) {
		req := fx.stayRequest(1, 2)
		req.CheckInDate = time.Now().UTC().AddDate(0, 0, -2)
		_, err := fx.service.CreateBooking(ctx, fx.staffID, req)
		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("unknown guest rejected", func(t *testing.T) {
		req := fx.stayRequest(1, 2)
		req.GuestID = uuid.New()
		_, err := fx.service.CreateBooking(ctx, fx.staffID, req)
		var notFoundErr *domain.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("unknown room rejected", func(t *testing.T) {
		req := fx.stayRequest(1, 2)
		req.RoomID = uuid.New()
		_, err := fx.service.CreateBooking(ctx, fx.staffID, req)
		var notFoundErr *domain.NotFoundError
		assert.ErrorAs(t, err, &notFoundErr)
	})

	t.Run("missing create permission rejected", func(t *testing.T) {
		fx.auth.perms[authz.PermBookingCreate] = false
		defer func() { fx.auth.perms[authz.PermBookingCreate] = true }()

		_, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
		var forbiddenErr *domain.ForbiddenError
		assert.ErrorAs(t, err, &forbiddenErr)
	})

	t.Run("missing checkout permission rejected", func(t *testing.T) {
		created, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
		require.NoError(t, err)

		fx.auth.perms[authz.PermBookingCheckout] = false
		defer func() { fx.auth.perms[authz.PermBookingCheckout] = true }()

		_, err = fx.service.CheckOut(ctx, fx.staffID, created.ID)
		var forbiddenErr *domain.ForbiddenError
		assert.ErrorAs(t, err, &forbiddenErr)
	})

	t.Run("missing cancel permission rejected", func(t *testing.T) {
		fx.auth.perms[authz.PermBookingCancel] = false
		defer func() { fx.auth.perms[authz.PermBookingCancel] = true }()

		_, err := fx.service.CancelBooking(ctx, fx.staffID, uuid.New(), "typo")
		var forbiddenErr *domain.ForbiddenError
		assert.ErrorAs(t, err, &forbiddenErr)
	})
}

func TestBookingService_CheckOut(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	created, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)

	dto, err := fx.service.CheckOut(ctx, fx.staffID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "checked_out", dto.Status)
	require.NotNil(t, dto.ActualCheckOut)

	rm, err := fx.rooms.FindByID(ctx, fx.roomID)
	require.NoError(t, err)
	assert.Equal(t, roomDomain.StatusCleaning, rm.Status())
	assert.Equal(t, "booking.checked_out", fx.published.lastType())

	// Repeating the check-out must fail without moving the recorded moment.
	firstCheckOut := *dto.ActualCheckOut
	_, err = fx.service.CheckOut(ctx, fx.staffID, created.ID)
	var invalidStateErr *domain.InvalidStateError
	require.ErrorAs(t, err, &invalidStateErr)

	reloaded, err := fx.service.GetBooking(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.ActualCheckOut)
	assert.Equal(t, firstCheckOut, *reloaded.ActualCheckOut)
}

func TestBookingService_CheckOut_OwnershipEnforced(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	created, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)

	fx.auth.perms[authz.PermBookingOverride] = false
	otherStaff := uuid.New()

	_, err = fx.service.CheckOut(ctx, otherStaff, created.ID)
	var forbiddenErr *domain.ForbiddenError
	require.ErrorAs(t, err, &forbiddenErr)

	// With the override permission another staff member may complete the stay.
	fx.auth.perms[authz.PermBookingOverride] = true
	_, err = fx.service.CheckOut(ctx, otherStaff, created.ID)
	assert.NoError(t, err)
}

func TestBookingService_CancelBooking(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	created, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)

	dto, err := fx.service.CancelBooking(ctx, fx.staffID, created.ID, "guest no-show")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", dto.Status)

	rm, err := fx.rooms.FindByID(ctx, fx.roomID)
	require.NoError(t, err)
	assert.Equal(t, roomDomain.StatusAvailable, rm.Status())
	assert.Equal(t, "booking.cancelled", fx.published.lastType())

	// The freed dates are immediately bookable again.
	_, err = fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	assert.NoError(t, err)
}

func TestBookingService_CancelBooking_KeepsRoomWhenOtherStaysRemain(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	first, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)
	_, err = fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(10, 2))
	require.NoError(t, err)

	_, err = fx.service.CancelBooking(ctx, fx.staffID, first.ID, "plans changed")
	require.NoError(t, err)

	// A future stay still holds the room, so it is not released.
	rm, err := fx.rooms.FindByID(ctx, fx.roomID)
	require.NoError(t, err)
	assert.Equal(t, roomDomain.StatusOccupied, rm.Status())
}

func TestBookingService_CancelBooking_KeepsAdministrativeStatus(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	current, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)
	future, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(10, 2))
	require.NoError(t, err)

	// Checking out the current stay puts the room into cleaning.
	_, err = fx.service.CheckOut(ctx, fx.staffID, current.ID)
	require.NoError(t, err)

	// Cancelling the last active booking must not clear the cleaning state;
	// housekeeping still has to release the room.
	_, err = fx.service.CancelBooking(ctx, fx.staffID, future.ID, "plans changed")
	require.NoError(t, err)

	rm, err := fx.rooms.FindByID(ctx, fx.roomID)
	require.NoError(t, err)
	assert.Equal(t, roomDomain.StatusCleaning, rm.Status())
}

func TestBookingService_CancelBooking_TerminalStatesRejected(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	created, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)
	_, err = fx.service.CheckOut(ctx, fx.staffID, created.ID)
	require.NoError(t, err)

	_, err = fx.service.CancelBooking(ctx, fx.staffID, created.ID, "too late")
	var invalidStateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &invalidStateErr)
}

func TestBookingService_ListAndStats(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	first, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)
	_, err = fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(10, 2))
	require.NoError(t, err)
	_, err = fx.service.CancelBooking(ctx, fx.staffID, first.ID, "plans changed")
	require.NoError(t, err)

	active := bookingDomain.StatusActive
	result, err := fx.service.ListBookings(ctx, bookingDomain.Filter{Status: &active}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)

	stats, err := fx.service.GetBookingStats(ctx, fx.staffID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBookings)
	assert.Equal(t, int64(1), stats.ByStatus["active"])
	assert.Equal(t, int64(1), stats.ByStatus["cancelled"])

	fx.auth.roles[auth.RoleManager] = false
	_, err = fx.service.GetBookingStats(ctx, fx.staffID)
	var forbiddenErr *domain.ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)
}

func TestBookingService_GetBookingByReference(t *testing.T) {
	fx := newBookingFixture(t, bookingDomain.OverlapInclusive)
	ctx := context.Background()

	created, err := fx.service.CreateBooking(ctx, fx.staffID, fx.stayRequest(1, 2))
	require.NoError(t, err)

	found, err := fx.service.GetBookingByReference(ctx, created.ReferenceCode)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = fx.service.GetBookingByReference(ctx, fmt.Sprintf("BK-%06d", 0))
	var notFoundErr *domain.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
