package sharing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/firecash/backend/internal/application/access"
	"github.com/firecash/backend/internal/domain/identity"
	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/domain/sharing"
)

// GroupService provides application-level group and membership operations
type GroupService struct {
	groups   sharing.GroupRepository
	accounts ledger.AccountRepository
	users    identity.UserRepository
	kernel   *access.Kernel
}

// NewGroupService creates a new GroupService
func NewGroupService(
	groups sharing.GroupRepository,
	accounts ledger.AccountRepository,
	users identity.UserRepository,
	kernel *access.Kernel,
) *GroupService {
	return &GroupService{
		groups:   groups,
		accounts: accounts,
		users:    users,
		kernel:   kernel,
	}
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID         uuid.UUID   `json:"id"`
	CreatorID  uuid.UUID   `json:"creator_id"`
	Name       string      `json:"name"`
	AccountIDs []uuid.UUID `json:"account_ids"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// MemberResponse represents a group member in API responses
type MemberResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
}

// CreateGroupRequest represents a request to create a group
type CreateGroupRequest struct {
	Name       string      `json:"name" binding:"required"`
	AccountIDs []uuid.UUID `json:"account_ids"`
}

// UpdateGroupRequest represents a request to rename a group and replace its
// account links
type UpdateGroupRequest struct {
	Name       string      `json:"name" binding:"required"`
	AccountIDs []uuid.UUID `json:"account_ids"`
}

// AddMemberRequest represents a request to add a member by email
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// UpdateMemberRequest represents a request to change a member's role
type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *GroupService) toGroupResponse(ctx context.Context, g *sharing.Group) (*GroupResponse, error) {
	accountIDs, err := s.groups.ListAccountLinks(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	return &GroupResponse{
		ID:         g.ID,
		CreatorID:  g.CreatorID,
		Name:       g.Name,
		AccountIDs: accountIDs,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}, nil
}

// assertOwnsAccounts verifies every account in the list exists and is owned
// by userID. Groups can only share accounts their curator actually owns.
func (s *GroupService) assertOwnsAccounts(ctx context.Context, userID uuid.UUID, accountIDs []uuid.UUID) error {
	for _, accountID := range accountIDs {
		account, err := s.accounts.FindByID(ctx, accountID)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", "One or more accounts do not exist or are not yours")
		}
		if !account.IsOwnedBy(userID) {
			return shared.NewDomainError("INVALID_INPUT", "One or more accounts do not exist or are not yours")
		}
	}
	return nil
}

// CreateGroup creates a group; the creator becomes its first admin member
// and must own every linked account.
func (s *GroupService) CreateGroup(ctx context.Context, userID uuid.UUID, req CreateGroupRequest) (*GroupResponse, error) {
	if err := s.assertOwnsAccounts(ctx, userID, req.AccountIDs); err != nil {
		return nil, err
	}
	group, err := sharing.NewGroup(userID, req.Name)
	if err != nil {
		return nil, err
	}
	if err := s.groups.Save(ctx, group, req.AccountIDs); err != nil {
		return nil, err
	}
	s.kernel.InvalidateGrants(ctx)
	return s.toGroupResponse(ctx, group)
}

// ListGroups returns groups the caller created or belongs to
func (s *GroupService) ListGroups(ctx context.Context, userID uuid.UUID) ([]*GroupResponse, error) {
	groups, err := s.groups.FindVisibleTo(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]*GroupResponse, 0, len(groups))
	for _, g := range groups {
		resp, err := s.toGroupResponse(ctx, g)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// GetGroup returns one group, requiring membership
func (s *GroupService) GetGroup(ctx context.Context, userID, groupID uuid.UUID) (*GroupResponse, error) {
	if err := s.kernel.AssertGroupMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.toGroupResponse(ctx, group)
}

// UpdateGroup renames the group and replaces its account links, requiring a
// group admin who owns every newly linked account.
func (s *GroupService) UpdateGroup(ctx context.Context, userID, groupID uuid.UUID, req UpdateGroupRequest) (*GroupResponse, error) {
	if err := s.kernel.AssertGroupAdmin(ctx, userID, groupID); err != nil {
		return nil, err
	}
	if err := s.assertOwnsAccounts(ctx, userID, req.AccountIDs); err != nil {
		return nil, err
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := group.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.groups.Update(ctx, group); err != nil {
		return nil, err
	}
	if err := s.groups.ReplaceAccountLinks(ctx, groupID, req.AccountIDs); err != nil {
		return nil, err
	}
	s.kernel.InvalidateGrants(ctx)
	return s.toGroupResponse(ctx, group)
}

// DeleteGroup deletes the group and its grants, requiring a group admin
func (s *GroupService) DeleteGroup(ctx context.Context, userID, groupID uuid.UUID) error {
	if err := s.kernel.AssertGroupAdmin(ctx, userID, groupID); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return err
	}
	s.kernel.InvalidateGrants(ctx)
	return nil
}

// ListMembers returns the group's members with profile details, requiring
// membership
func (s *GroupService) ListMembers(ctx context.Context, userID, groupID uuid.UUID) ([]*MemberResponse, error) {
	if err := s.kernel.AssertGroupMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	responses := make([]*MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, &MemberResponse{
			UserID: m.UserID,
			Name:   m.Name,
			Email:  m.Email,
			Role:   m.Role.String(),
		})
	}
	return responses, nil
}

// AddMember grants a role to the user behind the given email, requiring a
// group admin. Re-adding an existing member updates their role instead.
func (s *GroupService) AddMember(ctx context.Context, userID, groupID uuid.UUID, req AddMemberRequest) (*MemberResponse, error) {
	if err := s.kernel.AssertGroupAdmin(ctx, userID, groupID); err != nil {
		return nil, err
	}
	role, err := sharing.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.groups.UpsertMember(ctx, groupID, user.ID, role); err != nil {
		return nil, err
	}
	s.kernel.InvalidateGrants(ctx)
	return &MemberResponse{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   role.String(),
	}, nil
}

// UpdateMemberRole changes a member's role, requiring a group admin. Demoting
// the group's last admin is rejected with a conflict.
func (s *GroupService) UpdateMemberRole(ctx context.Context, userID, groupID, memberID uuid.UUID, req UpdateMemberRequest) error {
	if err := s.kernel.AssertGroupAdmin(ctx, userID, groupID); err != nil {
		return err
	}
	role, err := sharing.ParseRole(req.Role)
	if err != nil {
		return err
	}
	if err := s.groups.UpsertMember(ctx, groupID, memberID, role); err != nil {
		return err
	}
	s.kernel.InvalidateGrants(ctx)
	return nil
}

// RemoveMember removes a member, requiring a group admin; members may always
// remove themselves. Removing the group's last admin is rejected with a
// conflict either way.
func (s *GroupService) RemoveMember(ctx context.Context, userID, groupID, memberID uuid.UUID) error {
	if userID == memberID {
		if err := s.kernel.AssertGroupMember(ctx, userID, groupID); err != nil {
			return err
		}
	} else if err := s.kernel.AssertGroupAdmin(ctx, userID, groupID); err != nil {
		return err
	}
	if err := s.groups.RemoveMember(ctx, groupID, memberID); err != nil {
		return err
	}
	s.kernel.InvalidateGrants(ctx)
	return nil
}
