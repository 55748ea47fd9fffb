package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/GuiNunes77/The-Room/internal/domain"
	roomDomain "github.com/GuiNunes77/The-Room/internal/domain/room"
)

// RoomModel is the GORM model for the rooms table.
type RoomModel struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	RoomNumber         string         `gorm:"uniqueIndex;not null;size:20"`
	RoomType           string         `gorm:"size:100"`
	Capacity           int            `gorm:"not null;default:2"`
	PricePerNightCents int64          `gorm:"not null"`
	Status             string         `gorm:"not null;size:30;index"`
	Floor              *int           `gorm:""`
	Amenities          datatypes.JSON `gorm:"type:jsonb"`
	Version            int64          `gorm:"not null;default:1"`
	CreatedAt          time.Time      `gorm:"not null"`
	UpdatedAt          time.Time      `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (RoomModel) TableName() string {
	return "rooms"
}

// GormRoomRepository is the GORM-based implementation of room.Repository.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID retrieves a room by its unique identifier.
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", id.String())
		}
		return nil, domain.NewStorageError("find room by ID", err)
	}
	return toDomainRoom(&model)
}

// FindByNumber retrieves a room by its room number.
func (r *GormRoomRepository) FindByNumber(ctx context.Context, number string) (*roomDomain.Room, error) {
	var model RoomModel
	if err := r.db.WithContext(ctx).Where("room_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Room", number)
		}
		return nil, domain.NewStorageError("find room by number", err)
	}
	return toDomainRoom(&model)
}

// List retrieves rooms with pagination, optionally filtered by status.
func (r *GormRoomRepository) List(ctx context.Context, status *roomDomain.Status, page, limit int) ([]*roomDomain.Room, int64, error) {
	query := r.db.WithContext(ctx).Model(&RoomModel{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, domain.NewStorageError("count rooms", err)
	}

	var models []RoomModel
	offset := (page - 1) * limit
	if err := query.
		Order("room_number ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, domain.NewStorageError("list rooms", err)
	}

	rooms := make([]*roomDomain.Room, len(models))
	for i, m := range models {
		rm, err := toDomainRoom(&m)
		if err != nil {
			return nil, 0, err
		}
		rooms[i] = rm
	}
	return rooms, total, nil
}

// Save persists a new room.
func (r *GormRoomRepository) Save(ctx context.Context, rm *roomDomain.Room) error {
	model, err := toRoomModel(rm)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.NewConflictError(fmt.Sprintf("room number %s already exists", rm.RoomNumber()))
		}
		return domain.NewStorageError("save room", err)
	}
	return nil
}

// Update persists changes to an existing room with optimistic locking.
func (r *GormRoomRepository) Update(ctx context.Context, rm *roomDomain.Room) error {
	model, err := toRoomModel(rm)
	if err != nil {
		return err
	}

	expectedVersion := rm.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&RoomModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"room_type":             model.RoomType,
			"capacity":              model.Capacity,
			"price_per_night_cents": model.PricePerNightCents,
			"status":                model.Status,
			"floor":                 model.Floor,
			"amenities":             model.Amenities,
			"version":               model.Version,
			"updated_at":            model.UpdatedAt,
		})
	if result.Error != nil {
		return domain.NewStorageError("update room", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("room was modified by another transaction")
	}
	return nil
}

// Delete hard-deletes a room.
func (r *GormRoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&RoomModel{})
	if result.Error != nil {
		return domain.NewStorageError("delete room", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Room", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toRoomModel(rm *roomDomain.Room) (*RoomModel, error) {
	var amenities datatypes.JSON
	if rm.Amenities() != nil {
		data, err := json.Marshal(rm.Amenities())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal amenities: %w", err)
		}
		amenities = data
	}

	return &RoomModel{
		ID:                 rm.ID(),
		RoomNumber:         rm.RoomNumber(),
		RoomType:           rm.RoomType(),
		Capacity:           rm.Capacity(),
		PricePerNightCents: rm.PricePerNightCents(),
		Status:             string(rm.Status()),
		Floor:              rm.Floor(),
		Amenities:          amenities,
		Version:            rm.Version(),
		CreatedAt:          rm.CreatedAt(),
		UpdatedAt:          rm.UpdatedAt(),
	}, nil
}

func toDomainRoom(m *RoomModel) (*roomDomain.Room, error) {
	var amenities []string
	if len(m.Amenities) > 0 {
		if err := json.Unmarshal(m.Amenities, &amenities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal amenities: %w", err)
		}
	}

	status, err := roomDomain.ParseStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return roomDomain.Reconstruct(
		m.ID,
		m.RoomNumber,
		m.RoomType,
		m.Capacity,
		m.PricePerNightCents,
		status,
		m.Floor,
		amenities,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
