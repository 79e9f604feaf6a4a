package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/domain/sharing"
	"github.com/firecash/backend/internal/infrastructure/persistence/models"
)

// GormGroupRepository implements GroupRepository using GORM
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// Save creates the group, its account links, and the creator's admin grant
// in one transaction
func (r *GormGroupRepository) Save(ctx context.Context, group *sharing.Group, accountIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(models.GroupModelFromDomain(group)).Error; err != nil {
			return err
		}

		now := time.Now()
		creator := models.GroupMemberModel{
			GroupID:   group.ID,
			UserID:    group.CreatorID,
			Role:      sharing.RoleAdmin.String(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&creator).Error; err != nil {
			return err
		}

		for _, accountID := range accountIDs {
			link := models.GroupAccountModel{
				GroupID:   group.ID,
				AccountID: accountID,
				CreatedAt: now,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Update persists group changes with an optimistic lock on the version column
func (r *GormGroupRepository) Update(ctx context.Context, group *sharing.Group) error {
	model := models.GroupModelFromDomain(group)
	result := r.db.WithContext(ctx).
		Model(&models.GroupModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"name":       model.Name,
			"updated_at": model.UpdatedAt,
			"version":    model.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConflict
	}
	group.IncrementVersion()
	return nil
}

// FindByID finds a group by its ID
func (r *GormGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*sharing.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindVisibleTo returns groups the user created or holds a grant in
func (r *GormGroupRepository) FindVisibleTo(ctx context.Context, userID uuid.UUID) ([]*sharing.Group, error) {
	var groupModels []models.GroupModel
	err := r.db.WithContext(ctx).
		Distinct("account_groups.*").
		Joins("LEFT JOIN group_members gm ON gm.group_id = account_groups.id AND gm.user_id = ?", userID).
		Where("account_groups.creator_id = ? OR gm.user_id IS NOT NULL", userID).
		Order("account_groups.created_at ASC").
		Find(&groupModels).Error
	if err != nil {
		return nil, err
	}

	groups := make([]*sharing.Group, len(groupModels))
	for i := range groupModels {
		groups[i] = groupModels[i].ToDomain()
	}
	return groups, nil
}

// Delete removes the group with its grants and account links
func (r *GormGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMemberModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupAccountModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.GroupModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// ReplaceAccountLinks swaps the group's account links for the given set
func (r *GormGroupRepository) ReplaceAccountLinks(ctx context.Context, groupID uuid.UUID, accountIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupAccountModel{}).Error; err != nil {
			return err
		}
		now := time.Now()
		for _, accountID := range accountIDs {
			link := models.GroupAccountModel{
				GroupID:   groupID,
				AccountID: accountID,
				CreatedAt: now,
			}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListAccountLinks returns the IDs of accounts linked to the group
func (r *GormGroupRepository) ListAccountLinks(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	var accountIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.GroupAccountModel{}).
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Pluck("account_id", &accountIDs).Error
	if err != nil {
		return nil, err
	}
	return accountIDs, nil
}

// memberDetailRow joins a grant with the user's profile
type memberDetailRow struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   string
}

// ListMembers returns the group's members with profile details
func (r *GormGroupRepository) ListMembers(ctx context.Context, groupID uuid.UUID) ([]sharing.MemberDetail, error) {
	var rows []memberDetailRow
	err := r.db.WithContext(ctx).
		Model(&models.GroupMemberModel{}).
		Select("group_members.user_id, users.name, users.email, group_members.role").
		Joins("INNER JOIN users ON users.id = group_members.user_id").
		Where("group_members.group_id = ?", groupID).
		Order("group_members.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	members := make([]sharing.MemberDetail, len(rows))
	for i, row := range rows {
		role, err := sharing.ParseRole(row.Role)
		if err != nil {
			return nil, err
		}
		members[i] = sharing.MemberDetail{
			UserID: row.UserID,
			Name:   row.Name,
			Email:  row.Email,
			Role:   role,
		}
	}
	return members, nil
}

// UpsertMember inserts or updates a grant. A demotion away from admin runs
// under the last-admin guard: the group's admin rows are locked, counted,
// and the demotion is rejected when the target is the only one left. The
// lock serializes concurrent demotions so two admins cannot demote each
// other past the invariant.
func (r *GormGroupRepository) UpsertMember(ctx context.Context, groupID, userID uuid.UUID, role sharing.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GroupMemberModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			First(&existing).Error

		now := time.Now()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			member := models.GroupMemberModel{
				GroupID:   groupID,
				UserID:    userID,
				Role:      role.String(),
				CreatedAt: now,
				UpdatedAt: now,
			}
			return tx.Create(&member).Error
		}
		if err != nil {
			return err
		}

		if existing.Role == sharing.RoleAdmin.String() && role != sharing.RoleAdmin {
			count, err := lockedAdminCount(tx, groupID)
			if err != nil {
				return err
			}
			if count <= 1 {
				return shared.ErrLastAdmin
			}
		}

		return tx.Model(&models.GroupMemberModel{}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Updates(map[string]any{
				"role":       role.String(),
				"updated_at": now,
			}).Error
	})
}

// RemoveMember deletes a grant under the last-admin guard
func (r *GormGroupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GroupMemberModel
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return shared.ErrNotFound
		}
		if err != nil {
			return err
		}

		if existing.Role == sharing.RoleAdmin.String() {
			count, err := lockedAdminCount(tx, groupID)
			if err != nil {
				return err
			}
			if count <= 1 {
				return shared.ErrLastAdmin
			}
		}

		return tx.Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&models.GroupMemberModel{}).Error
	})
}

// lockedAdminCount locks the group's admin rows and counts them. Locking the
// rows rather than running a bare aggregate is what makes the guard safe
// under concurrency: FOR UPDATE cannot be combined with COUNT, and an
// unlocked count could see admins that a parallel transaction is removing.
func lockedAdminCount(tx *gorm.DB, groupID uuid.UUID) (int, error) {
	var admins []models.GroupMemberModel
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("group_id = ? AND role = ?", groupID, sharing.RoleAdmin.String()).
		Find(&admins).Error
	if err != nil {
		return 0, err
	}
	return len(admins), nil
}

// RoleOf returns the user's role in the group, RoleNone when not a member
func (r *GormGroupRepository) RoleOf(ctx context.Context, groupID, userID uuid.UUID) (sharing.Role, error) {
	var member models.GroupMemberModel
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sharing.RoleNone, nil
	}
	if err != nil {
		return sharing.RoleNone, err
	}
	return sharing.ParseRole(member.Role)
}

// MaxRoleOnAccount returns the strongest role the user holds on the account
// across all groups it is linked to
func (r *GormGroupRepository) MaxRoleOnAccount(ctx context.Context, userID, accountID uuid.UUID) (sharing.Role, error) {
	var roles []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupMemberModel{}).
		Joins("INNER JOIN group_accounts ga ON ga.group_id = group_members.group_id").
		Where("group_members.user_id = ? AND ga.account_id = ?", userID, accountID).
		Pluck("group_members.role", &roles).Error
	if err != nil {
		return sharing.RoleNone, err
	}

	best := sharing.RoleNone
	for _, raw := range roles {
		role, err := sharing.ParseRole(raw)
		if err != nil {
			return sharing.RoleNone, err
		}
		best = sharing.Max(best, role)
	}
	return best, nil
}
