package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GuiNunes77/The-Room/internal/domain"
	bookingDomain "github.com/GuiNunes77/The-Room/internal/domain/booking"
	roomDomain "github.com/GuiNunes77/The-Room/internal/domain/room"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ReferenceCode   string     `gorm:"uniqueIndex;not null;size:20"`
	GuestID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	RoomID          uuid.UUID  `gorm:"type:uuid;index;not null"`
	CheckInDate     time.Time  `gorm:"not null"`
	CheckOutDate    time.Time  `gorm:"not null"`
	StayPeriod      string     `gorm:"column:stay_period;type:tstzrange;not null"`
	ActualCheckOut  *time.Time `gorm:""`
	TotalPriceCents int64      `gorm:"not null"`
	Currency        string     `gorm:"not null;size:3;default:'EUR'"`
	Status          string     `gorm:"not null;size:30;index"`
	Notes           string     `gorm:"size:1000"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null;index"`
	Version         int64      `gorm:"not null;default:1"`
	CreatedAt       time.Time  `gorm:"not null"`
	UpdatedAt       time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of booking.Repository.
// It carries the overlap policy so the ranges it stores use the same bounds
// the availability checker tests with.
type GormBookingRepository struct {
	db     *gorm.DB
	policy bookingDomain.OverlapPolicy
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB, policy bookingDomain.OverlapPolicy) *GormBookingRepository {
	return &GormBookingRepository{db: db, policy: policy}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, domain.NewStorageError("find booking by ID", err)
	}
	return toDomainBooking(&model)
}

// FindByReference retrieves a booking by its reference code.
func (r *GormBookingRepository) FindByReference(ctx context.Context, reference string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("reference_code = ?", reference).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", reference)
		}
		return nil, domain.NewStorageError("find booking by reference", err)
	}
	return toDomainBooking(&model)
}

// List retrieves bookings matching the filter with pagination.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.Filter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.RoomID != nil {
		query = query.Where("room_id = ?", *filter.RoomID)
	}
	if filter.GuestID != nil {
		query = query.Where("guest_id = ?", *filter.GuestID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domain.NewStorageError("count bookings", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, domain.NewStorageError("list bookings", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountOverlappingActive counts active bookings on the room overlapping the
// requested interval. The inclusive policy uses closed bounds on both sides so
// back-to-back same-day stays collide.
func (r *GormBookingRepository) CountOverlappingActive(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, policy bookingDomain.OverlapPolicy) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("room_id = ? AND status = ?", roomID, string(bookingDomain.StatusActive))

	if policy == bookingDomain.OverlapExclusive {
		query = query.Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)
	} else {
		query = query.Where("check_in_date <= ? AND check_out_date >= ?", checkOut, checkIn)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, domain.NewStorageError("count overlapping bookings", err)
	}
	return count, nil
}

// CountActiveForRoom counts active bookings currently holding the room.
func (r *GormBookingRepository) CountActiveForRoom(ctx context.Context, roomID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("room_id = ? AND status = ?", roomID, string(bookingDomain.StatusActive)).
		Count(&count).Error; err != nil {
		return 0, domain.NewStorageError("count active bookings", err)
	}
	return count, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, domain.NewStorageError("count bookings by status", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Create persists a new active booking and marks its room occupied in one
// transaction. The bookings_no_overlap exclusion constraint rejects a second
// active booking overlapping the same room's interval, so two concurrent
// creations cannot both commit.
func (r *GormBookingRepository) Create(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	model.StayPeriod = stayPeriodLiteral(bk.CheckInDate(), bk.CheckOutDate(), r.policy)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			if isPgError(err, pgExclusionViolation) {
				return domain.NewConflictError("room is not available for the requested dates")
			}
			if isPgError(err, pgUniqueViolation) {
				return domain.NewConflictError("booking reference collision, please retry")
			}
			return domain.NewStorageError("create booking", err)
		}

		result := tx.Model(&RoomModel{}).
			Where("id = ?", model.RoomID).
			Updates(map[string]interface{}{
				"status":     string(roomDomain.StatusOccupied),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if result.Error != nil {
			return domain.NewStorageError("mark room occupied", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewNotFoundError("Room", model.RoomID.String())
		}
		return nil
	})
	return err
}

// Update persists booking changes together with the room's follow-on status,
// with optimistic locking on the booking version.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking, roomStatus roomDomain.Status) error {
	model := toBookingModel(bk)
	expectedVersion := bk.Version() - 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&BookingModel{}).
			Where("id = ? AND version = ?", model.ID, expectedVersion).
			Updates(map[string]interface{}{
				"status":           model.Status,
				"actual_check_out": model.ActualCheckOut,
				"notes":            model.Notes,
				"version":          model.Version,
				"updated_at":       model.UpdatedAt,
			})
		if result.Error != nil {
			return domain.NewStorageError("update booking", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.NewConflictError("booking was modified by another transaction")
		}

		roomResult := tx.Model(&RoomModel{}).
			Where("id = ?", model.RoomID).
			Updates(map[string]interface{}{
				"status":     string(roomStatus),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now().UTC(),
			})
		if roomResult.Error != nil {
			return domain.NewStorageError("update room status", roomResult.Error)
		}
		if roomResult.RowsAffected == 0 {
			return domain.NewNotFoundError("Room", model.RoomID.String())
		}
		return nil
	})
}

// stayPeriodLiteral renders the range guarded by the bookings_no_overlap
// exclusion constraint. The inclusive policy closes the upper bound so
// back-to-back stays collide; the exclusive policy leaves it open so a stay
// may start on another stay's check-out day.
func stayPeriodLiteral(checkIn, checkOut time.Time, policy bookingDomain.OverlapPolicy) string {
	upper := "]"
	if policy == bookingDomain.OverlapExclusive {
		upper = ")"
	}
	return fmt.Sprintf("[%s,%s%s",
		checkIn.UTC().Format(time.RFC3339Nano),
		checkOut.UTC().Format(time.RFC3339Nano),
		upper,
	)
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.ReferenceCode,
		m.GuestID,
		m.RoomID,
		m.CheckInDate,
		m.CheckOutDate,
		m.ActualCheckOut,
		m.TotalPriceCents,
		m.Currency,
		status,
		m.Notes,
		m.CreatedBy,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
