package access

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/domain/sharing"
)

// RoleCache caches resolved account roles. Implementations may drop entries
// at any time; the kernel treats every miss as a full resolution.
type RoleCache interface {
	Get(ctx context.Context, userID, accountID uuid.UUID) (sharing.Role, bool)
	Set(ctx context.Context, userID, accountID uuid.UUID, role sharing.Role)
	// Flush drops all cached resolutions. Called after any grant mutation.
	Flush(ctx context.Context)
}

// Kernel resolves what a user may do to an account or group. The policy for
// failed checks: a caller with no relationship to the entity gets a
// not-found error, so the API never confirms the existence of resources the
// caller cannot see; a caller who can see the entity but lacks the level
// gets a forbidden error.
type Kernel struct {
	accounts ledger.AccountRepository
	groups   sharing.GroupRepository
	cache    RoleCache
	logger   *zap.Logger
}

// NewKernel creates an access kernel. cache may be nil.
func NewKernel(accounts ledger.AccountRepository, groups sharing.GroupRepository, cache RoleCache, logger *zap.Logger) *Kernel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Kernel{
		accounts: accounts,
		groups:   groups,
		cache:    cache,
		logger:   logger,
	}
}

// ResolveAccountAccess returns the effective role userID holds on accountID:
// the owner is always admin, everyone else gets the strongest role granted
// through groups the account is linked to, and RoleNone when no grant exists.
func (k *Kernel) ResolveAccountAccess(ctx context.Context, userID, accountID uuid.UUID) (sharing.Role, error) {
	account, err := k.accounts.FindByID(ctx, accountID)
	if err != nil {
		return sharing.RoleNone, err
	}

	if account.IsOwnedBy(userID) {
		return sharing.RoleAdmin, nil
	}

	if k.cache != nil {
		if role, ok := k.cache.Get(ctx, userID, accountID); ok {
			return role, nil
		}
	}

	role, err := k.groups.MaxRoleOnAccount(ctx, userID, accountID)
	if err != nil {
		return sharing.RoleNone, err
	}

	if k.cache != nil {
		k.cache.Set(ctx, userID, accountID, role)
	}

	k.logger.Debug("resolved account access",
		zap.String("user_id", userID.String()),
		zap.String("account_id", accountID.String()),
		zap.String("role", role.String()),
	)
	return role, nil
}

// AssertView requires at least view access on the account
func (k *Kernel) AssertView(ctx context.Context, userID, accountID uuid.UUID) error {
	return k.assertAccount(ctx, userID, accountID, sharing.RoleView)
}

// AssertEdit requires at least edit access on the account
func (k *Kernel) AssertEdit(ctx context.Context, userID, accountID uuid.UUID) error {
	return k.assertAccount(ctx, userID, accountID, sharing.RoleEdit)
}

// AssertAdmin requires admin access on the account
func (k *Kernel) AssertAdmin(ctx context.Context, userID, accountID uuid.UUID) error {
	return k.assertAccount(ctx, userID, accountID, sharing.RoleAdmin)
}

func (k *Kernel) assertAccount(ctx context.Context, userID, accountID uuid.UUID, min sharing.Role) error {
	role, err := k.ResolveAccountAccess(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if role == sharing.RoleNone {
		return shared.ErrNotFound
	}
	if !role.AtLeast(min) {
		return shared.ErrForbidden
	}
	return nil
}

// ResolveGroupRole returns the role userID holds in groupID, RoleNone when
// the user is not a member.
func (k *Kernel) ResolveGroupRole(ctx context.Context, userID, groupID uuid.UUID) (sharing.Role, error) {
	if _, err := k.groups.FindByID(ctx, groupID); err != nil {
		return sharing.RoleNone, err
	}
	return k.groups.RoleOf(ctx, groupID, userID)
}

// AssertGroupMember requires any membership in the group
func (k *Kernel) AssertGroupMember(ctx context.Context, userID, groupID uuid.UUID) error {
	role, err := k.ResolveGroupRole(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if role == sharing.RoleNone {
		return shared.ErrNotFound
	}
	return nil
}

// AssertGroupAdmin requires an admin grant in the group
func (k *Kernel) AssertGroupAdmin(ctx context.Context, userID, groupID uuid.UUID) error {
	role, err := k.ResolveGroupRole(ctx, userID, groupID)
	if err != nil {
		return err
	}
	if role == sharing.RoleNone {
		return shared.ErrNotFound
	}
	if !role.AtLeast(sharing.RoleAdmin) {
		return shared.ErrForbidden
	}
	return nil
}

// InvalidateGrants drops cached role resolutions after a grant mutation
func (k *Kernel) InvalidateGrants(ctx context.Context) {
	if k.cache != nil {
		k.cache.Flush(ctx)
	}
}
