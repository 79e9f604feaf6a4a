package models

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel provides common columns for all tables
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the optimistic-locking version column
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}
