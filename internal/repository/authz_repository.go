package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GuiNunes77/The-Room/internal/authz"
	"github.com/GuiNunes77/The-Room/internal/domain"
)

// StaffRoleModel is the GORM model for the staff_roles table.
type StaffRoleModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null;size:50"`
	Description string    `gorm:"size:200"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (StaffRoleModel) TableName() string {
	return "staff_roles"
}

// RolePermissionModel is the GORM model for the role_permissions table.
type RolePermissionModel struct {
	RoleID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Permission string    `gorm:"primaryKey;size:100"`
}

// TableName returns the table name for the GORM model.
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}

// RoleMemberModel is the GORM model for the role_members table.
type RoleMemberModel struct {
	RoleID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	StaffID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
}

// TableName returns the table name for the GORM model.
func (RoleMemberModel) TableName() string {
	return "role_members"
}

// GormAuthorizer answers permission checks from the role tables.
type GormAuthorizer struct {
	db *gorm.DB
}

// NewGormAuthorizer creates a new GormAuthorizer.
func NewGormAuthorizer(db *gorm.DB) *GormAuthorizer {
	return &GormAuthorizer{db: db}
}

// Can reports whether the actor holds the permission through any assigned role.
func (a *GormAuthorizer) Can(ctx context.Context, actorID uuid.UUID, perm authz.Permission) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&RolePermissionModel{}).
		Joins("JOIN role_members ON role_members.role_id = role_permissions.role_id").
		Where("role_members.staff_id = ? AND role_permissions.permission = ?", actorID, string(perm)).
		Count(&count).Error
	if err != nil {
		return false, domain.NewStorageError("check permission", err)
	}
	return count > 0, nil
}

// HasRole reports whether the actor is assigned the named role.
func (a *GormAuthorizer) HasRole(ctx context.Context, actorID uuid.UUID, role string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).
		Model(&RoleMemberModel{}).
		Joins("JOIN staff_roles ON staff_roles.id = role_members.role_id").
		Where("role_members.staff_id = ? AND staff_roles.name = ?", actorID, role).
		Count(&count).Error
	if err != nil {
		return false, domain.NewStorageError("check role", err)
	}
	return count > 0, nil
}
