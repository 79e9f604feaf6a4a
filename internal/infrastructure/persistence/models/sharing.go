package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/firecash/backend/internal/domain/identity"
	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/domain/sharing"
)

// GroupModel maps the account_groups table
type GroupModel struct {
	AggregateModel
	CreatorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"size:255;not null"`
}

// TableName returns the table name
func (GroupModel) TableName() string {
	return "account_groups"
}

// ToDomain converts the model to a domain group
func (m *GroupModel) ToDomain() *sharing.Group {
	return &sharing.Group{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		CreatorID: m.CreatorID,
		Name:      m.Name,
	}
}

// GroupModelFromDomain converts a domain group to its model
func GroupModelFromDomain(g *sharing.Group) *GroupModel {
	return &GroupModel{
		AggregateModel: AggregateModel{
			BaseModel: BaseModel{
				ID:        g.ID,
				CreatedAt: g.CreatedAt,
				UpdatedAt: g.UpdatedAt,
			},
			Version: g.Version,
		},
		CreatorID: g.CreatorID,
		Name:      g.Name,
	}
}

// GroupMemberModel maps the group_members table, one row per (group, user)
// grant
type GroupMemberModel struct {
	GroupID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	Role      string    `gorm:"size:16;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name
func (GroupMemberModel) TableName() string {
	return "group_members"
}

// GroupAccountModel maps the group_accounts table, linking accounts into
// groups
type GroupAccountModel struct {
	GroupID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name
func (GroupAccountModel) TableName() string {
	return "group_accounts"
}

// UserModel maps the users table. Rows are written by the external identity
// service; this backend only reads them.
type UserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Email     string    `gorm:"size:255;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the model to a domain user
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Name:  m.Name,
		Email: m.Email,
	}
}
