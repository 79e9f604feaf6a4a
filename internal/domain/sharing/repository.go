package sharing

import (
	"context"

	"github.com/google/uuid"
)

// GroupRepository defines persistence for groups, member grants, and account
// links. Member mutations that could strip the group of its final admin
// (demotion and removal) must count admins and act in one transaction with
// the member rows locked, rejecting with a conflict when the target is the
// sole remaining admin.
type GroupRepository interface {
	// Save creates the group, its account links, and the creator's admin
	// membership in one transaction.
	Save(ctx context.Context, group *Group, accountIDs []uuid.UUID) error
	Update(ctx context.Context, group *Group) error
	FindByID(ctx context.Context, id uuid.UUID) (*Group, error)
	// FindVisibleTo returns groups the user created or is a member of.
	FindVisibleTo(ctx context.Context, userID uuid.UUID) ([]*Group, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ReplaceAccountLinks(ctx context.Context, groupID uuid.UUID, accountIDs []uuid.UUID) error
	ListAccountLinks(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)

	ListMembers(ctx context.Context, groupID uuid.UUID) ([]MemberDetail, error)
	// UpsertMember inserts or updates a grant. A demotion away from admin is
	// subject to the last-admin guard.
	UpsertMember(ctx context.Context, groupID, userID uuid.UUID, role Role) error
	// RemoveMember deletes a grant, subject to the last-admin guard.
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error

	// RoleOf returns the user's role in the group, RoleNone when not a member.
	RoleOf(ctx context.Context, groupID, userID uuid.UUID) (Role, error)
	// MaxRoleOnAccount returns the strongest role the user holds on the
	// account across all groups the account is linked to, RoleNone when the
	// user reaches it through no group.
	MaxRoleOnAccount(ctx context.Context, userID, accountID uuid.UUID) (Role, error)
}
