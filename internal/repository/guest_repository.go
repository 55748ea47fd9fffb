package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GuiNunes77/The-Room/internal/domain"
	guestDomain "github.com/GuiNunes77/The-Room/internal/domain/guest"
)

// GuestModel is the GORM model for the guests table.
type GuestModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName       string    `gorm:"not null;size:200"`
	DocumentNumber string    `gorm:"uniqueIndex;not null;size:64"`
	Email          string    `gorm:"size:254"`
	Phone          string    `gorm:"size:32"`
	Address        string    `gorm:"size:500"`
	Notes          string    `gorm:"size:1000"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (GuestModel) TableName() string {
	return "guests"
}

// GormGuestRepository is the GORM-based implementation of guest.Repository.
type GormGuestRepository struct {
	db *gorm.DB
}

// NewGormGuestRepository creates a new GormGuestRepository.
func NewGormGuestRepository(db *gorm.DB) *GormGuestRepository {
	return &GormGuestRepository{db: db}
}

// FindByID retrieves a guest by its unique identifier.
func (r *GormGuestRepository) FindByID(ctx context.Context, id uuid.UUID) (*guestDomain.Guest, error) {
	var model GuestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Guest", id.String())
		}
		return nil, domain.NewStorageError("find guest by ID", err)
	}
	return toDomainGuest(&model), nil
}

// List retrieves guests with pagination.
func (r *GormGuestRepository) List(ctx context.Context, page, limit int) ([]*guestDomain.Guest, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&GuestModel{}).Count(&total).Error; err != nil {
		return nil, 0, domain.NewStorageError("count guests", err)
	}

	var models []GuestModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, domain.NewStorageError("list guests", err)
	}

	guests := make([]*guestDomain.Guest, len(models))
	for i, m := range models {
		guests[i] = toDomainGuest(&m)
	}
	return guests, total, nil
}

// Save persists a new guest.
func (r *GormGuestRepository) Save(ctx context.Context, g *guestDomain.Guest) error {
	model := toGuestModel(g)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isPgError(err, pgUniqueViolation) {
			return domain.NewConflictError(fmt.Sprintf("document number %s is already registered", g.DocumentNumber()))
		}
		return domain.NewStorageError("save guest", err)
	}
	return nil
}

// Update persists changes to an existing guest.
func (r *GormGuestRepository) Update(ctx context.Context, g *guestDomain.Guest) error {
	model := toGuestModel(g)
	result := r.db.WithContext(ctx).
		Model(&GuestModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"full_name":       model.FullName,
			"document_number": model.DocumentNumber,
			"email":           model.Email,
			"phone":           model.Phone,
			"address":         model.Address,
			"notes":           model.Notes,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		if isPgError(result.Error, pgUniqueViolation) {
			return domain.NewConflictError(fmt.Sprintf("document number %s is already registered", g.DocumentNumber()))
		}
		return domain.NewStorageError("update guest", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Guest", g.ID().String())
	}
	return nil
}

// Delete hard-deletes a guest; the bookings foreign key cascades at the store.
func (r *GormGuestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&GuestModel{})
	if result.Error != nil {
		return domain.NewStorageError("delete guest", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Guest", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toGuestModel(g *guestDomain.Guest) *GuestModel {
	return &GuestModel{
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

func toDomainGuest(m *GuestModel) *guestDomain.Guest {
	return guestDomain.Reconstruct(
		m.ID,
		m.FullName,
		m.DocumentNumber,
		m.Email,
		m.Phone,
		m.Address,
		m.Notes,
		m.CreatedBy,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
