package sharing

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/firecash/backend/internal/domain/shared"
)

// Group shares a set of accounts with a set of members. The creator is
// enrolled as an admin member on creation; after that they are an ordinary
// member and can be demoted or removed like anyone else, subject to the
// rule that a group never loses its last admin.
type Group struct {
	shared.BaseAggregateRoot
	CreatorID uuid.UUID
	Name      string
}

// NewGroup creates a group
func NewGroup(creatorID uuid.UUID, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if creatorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Creator ID is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Group name is required")
	}
	return &Group{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CreatorID:         creatorID,
		Name:              name,
	}, nil
}

// Rename updates the group name
func (g *Group) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Group name is required")
	}
	g.Name = name
	g.Touch()
	return nil
}

// Member is one (group, user, role) grant
type Member struct {
	GroupID   uuid.UUID
	UserID    uuid.UUID
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberDetail is a member grant joined with the user's profile, for listings
type MemberDetail struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   Role
}
