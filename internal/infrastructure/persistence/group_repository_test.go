package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/domain/sharing"
)

// newMockGroupRepository creates a GormGroupRepository with a mocked SQL
// connection
func newMockGroupRepository(t *testing.T) (*GormGroupRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormGroupRepository(gormDB), mock, mockDB
}

func memberRow(groupID, userID uuid.UUID, role string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"group_id", "user_id", "role", "created_at", "updated_at"}).
		AddRow(groupID, userID, role, now, now)
}

func TestGormGroupRepository_UpsertMember_InsertsNewGrant(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2 .* FOR UPDATE`).
		WithArgs(groupID, userID, 1).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectExec(`INSERT INTO "group_members"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertMember(context.Background(), groupID, userID, sharing.RoleView)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGroupRepository_UpsertMember_DemotesWhenAnotherAdminRemains(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()
	otherAdminID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2 .* FOR UPDATE`).
		WithArgs(groupID, userID, 1).
		WillReturnRows(memberRow(groupID, userID, "admin"))
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND role = \$2 FOR UPDATE`).
		WithArgs(groupID, "admin").
		WillReturnRows(memberRow(groupID, userID, "admin").
			AddRow(groupID, otherAdminID, "admin", time.Now(), time.Now()))
	mock.ExpectExec(`UPDATE "group_members" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertMember(context.Background(), groupID, userID, sharing.RoleEdit)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGroupRepository_UpsertMember_RejectsDemotingLastAdmin(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2 .* FOR UPDATE`).
		WithArgs(groupID, userID, 1).
		WillReturnRows(memberRow(groupID, userID, "admin"))
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND role = \$2 FOR UPDATE`).
		WithArgs(groupID, "admin").
		WillReturnRows(memberRow(groupID, userID, "admin"))
	mock.ExpectRollback()

	err := repo.UpsertMember(context.Background(), groupID, userID, sharing.RoleView)

	assert.ErrorIs(t, err, shared.ErrLastAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGroupRepository_UpsertMember_PromotionSkipsGuard(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2 .* FOR UPDATE`).
		WithArgs(groupID, userID, 1).
		WillReturnRows(memberRow(groupID, userID, "view"))
	mock.ExpectExec(`UPDATE "group_members" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertMember(context.Background(), groupID, userID, sharing.RoleAdmin)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGroupRepository_RemoveMember_RejectsRemovingLastAdmin(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2 .* FOR UPDATE`).
		WithArgs(groupID, userID, 1).
		WillReturnRows(memberRow(groupID, userID, "admin"))
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND role = \$2 FOR UPDATE`).
		WithArgs(groupID, "admin").
		WillReturnRows(memberRow(groupID, userID, "admin"))
	mock.ExpectRollback()

	err := repo.RemoveMember(context.Background(), groupID, userID)

	assert.ErrorIs(t, err, shared.ErrLastAdmin)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGroupRepository_RemoveMember_NonAdminLeavesFreely(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2 .* FOR UPDATE`).
		WithArgs(groupID, userID, 1).
		WillReturnRows(memberRow(groupID, userID, "edit"))
	mock.ExpectExec(`DELETE FROM "group_members"`).
		WithArgs(groupID, userID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RemoveMember(context.Background(), groupID, userID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGroupRepository_RemoveMember_UnknownMember(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2 .* FOR UPDATE`).
		WithArgs(groupID, userID, 1).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	err := repo.RemoveMember(context.Background(), groupID, userID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormGroupRepository_RoleOf(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2`).
		WithArgs(groupID, userID, 1).
		WillReturnRows(memberRow(groupID, userID, "edit"))

	role, err := repo.RoleOf(context.Background(), groupID, userID)
	require.NoError(t, err)
	assert.Equal(t, sharing.RoleEdit, role)
}

func TestGormGroupRepository_RoleOf_NotAMember(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	groupID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "group_members" WHERE group_id = \$1 AND user_id = \$2`).
		WithArgs(groupID, userID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	role, err := repo.RoleOf(context.Background(), groupID, userID)
	require.NoError(t, err)
	assert.Equal(t, sharing.RoleNone, role)
}

func TestGormGroupRepository_MaxRoleOnAccount(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	userID := uuid.New()
	accountID := uuid.New()

	mock.ExpectQuery(`SELECT "group_members"."role" FROM "group_members" INNER JOIN group_accounts`).
		WithArgs(userID, accountID).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("view").AddRow("admin").AddRow("edit"))

	role, err := repo.MaxRoleOnAccount(context.Background(), userID, accountID)
	require.NoError(t, err)
	assert.Equal(t, sharing.RoleAdmin, role, "the strongest grant across groups wins")
}

func TestGormGroupRepository_MaxRoleOnAccount_NoGrants(t *testing.T) {
	repo, mock, mockDB := newMockGroupRepository(t)
	defer mockDB.Close()

	userID := uuid.New()
	accountID := uuid.New()

	mock.ExpectQuery(`SELECT "group_members"."role" FROM "group_members" INNER JOIN group_accounts`).
		WithArgs(userID, accountID).
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	role, err := repo.MaxRoleOnAccount(context.Background(), userID, accountID)
	require.NoError(t, err)
	assert.Equal(t, sharing.RoleNone, role)
}
