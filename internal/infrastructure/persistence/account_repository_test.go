package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/domain/sharing"
	"github.com/firecash/backend/internal/infrastructure/persistence/models"
)

// newSQLiteDB creates an in-memory database with the full schema. Locking
// clauses are postgres-only, so these tests cover the plain CRUD paths;
// the guard and claim paths are tested against a mocked postgres driver.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.AccountModel{},
		&models.GroupModel{},
		&models.GroupMemberModel{},
		&models.GroupAccountModel{},
		&models.TransactionModel{},
		&models.ObligationModel{},
	))
	return db
}

func createAccount(t *testing.T, repo *GormAccountRepository, ownerID uuid.UUID, name string) *ledger.Account {
	t.Helper()
	account, err := ledger.NewAccount(ownerID, name, "EUR")
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), account))
	return account
}

func TestGormAccountRepository_SaveAndFindByID(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAccountRepository(db)

	ownerID := uuid.New()
	account := createAccount(t, repo, ownerID, "Checking")

	found, err := repo.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, ownerID, found.OwnerID)
	assert.Equal(t, "Checking", found.Name)
	assert.Equal(t, "EUR", found.CurrencyCode)
	assert.Equal(t, 1, found.Version)
}

func TestGormAccountRepository_FindByID_Unknown(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAccountRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormAccountRepository_FindVisibleTo(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	memberID := uuid.New()
	strangerID := uuid.New()

	owned := createAccount(t, repo, ownerID, "Owned")
	shared_ := createAccount(t, repo, ownerID, "Shared")
	createAccount(t, repo, uuid.New(), "Unrelated")

	// Link the shared account into a group the member belongs to.
	group, err := sharing.NewGroup(ownerID, "Household")
	require.NoError(t, err)
	require.NoError(t, db.Create(models.GroupModelFromDomain(group)).Error)
	now := time.Now()
	require.NoError(t, db.Create(&models.GroupMemberModel{
		GroupID: group.ID, UserID: memberID, Role: "view", CreatedAt: now, UpdatedAt: now,
	}).Error)
	require.NoError(t, db.Create(&models.GroupAccountModel{
		GroupID: group.ID, AccountID: shared_.ID, CreatedAt: now,
	}).Error)

	ownerAccounts, err := repo.FindVisibleTo(ctx, ownerID)
	require.NoError(t, err)
	assert.Len(t, ownerAccounts, 2)

	memberAccounts, err := repo.FindVisibleTo(ctx, memberID)
	require.NoError(t, err)
	require.Len(t, memberAccounts, 1)
	assert.Equal(t, shared_.ID, memberAccounts[0].ID)

	strangerAccounts, err := repo.FindVisibleTo(ctx, strangerID)
	require.NoError(t, err)
	assert.Empty(t, strangerAccounts)

	_ = owned
}

func TestGormAccountRepository_Update_BumpsVersion(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	account := createAccount(t, repo, uuid.New(), "Old name")
	require.NoError(t, account.Rename("New name"))
	require.NoError(t, repo.Update(ctx, account))
	assert.Equal(t, 2, account.Version)

	found, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "New name", found.Name)
	assert.Equal(t, 2, found.Version)
}

func TestGormAccountRepository_Update_StaleVersionConflicts(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	account := createAccount(t, repo, uuid.New(), "Checking")

	stale := *account
	require.NoError(t, account.Rename("First writer"))
	require.NoError(t, repo.Update(ctx, account))

	require.NoError(t, stale.Rename("Second writer"))
	err := repo.Update(ctx, &stale)
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestGormAccountRepository_Delete_RemovesDependents(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAccountRepository(db)
	ctx := context.Background()

	account := createAccount(t, repo, uuid.New(), "Doomed")

	txRepo := NewGormTransactionRepository(db)
	entry, err := ledger.NewTransaction(account.ID, decimal.NewFromInt(10), "EUR", ledger.EntryExpense, "groceries", time.Now())
	require.NoError(t, err)
	require.NoError(t, txRepo.Save(ctx, entry))

	require.NoError(t, repo.Delete(ctx, account.ID))

	_, err = repo.FindByID(ctx, account.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.TransactionModel{}).Where("account_id = ?", account.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGormAccountRepository_Delete_Unknown(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAccountRepository(db)

	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
