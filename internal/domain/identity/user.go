package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/firecash/backend/internal/domain/shared"
)

// User is a read-only projection of an externally managed identity. Accounts
// and grants reference users by ID; this service never creates or mutates
// them.
type User struct {
	shared.BaseEntity
	Name  string
	Email string
}

// UserRepository defines read access to the user directory
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
