package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/firecash/backend/internal/application/access"
	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
	"github.com/firecash/backend/internal/domain/sharing"
)

type mockObligationRepo struct {
	mock.Mock
}

func (m *mockObligationRepo) Save(ctx context.Context, obligation *ledger.Obligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

func (m *mockObligationRepo) Update(ctx context.Context, obligation *ledger.Obligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

func (m *mockObligationRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Obligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Obligation), args.Error(1)
}

func (m *mockObligationRepo) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*ledger.Obligation, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Obligation), args.Error(1)
}

func (m *mockObligationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockObligationRepo) FireDue(ctx context.Context, now time.Time, limit int) ([]ledger.FireResult, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.FireResult), args.Error(1)
}

// stubAccountRepo serves a fixed set of accounts
type stubAccountRepo struct {
	accounts map[uuid.UUID]*ledger.Account
}

func (s *stubAccountRepo) Save(context.Context, *ledger.Account) error   { return nil }
func (s *stubAccountRepo) Update(context.Context, *ledger.Account) error { return nil }
func (s *stubAccountRepo) Delete(context.Context, uuid.UUID) error       { return nil }

func (s *stubAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Account, error) {
	if a, ok := s.accounts[id]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubAccountRepo) FindVisibleTo(context.Context, uuid.UUID) ([]*ledger.Account, error) {
	return nil, nil
}

// stubGroupRepo resolves account roles from a mutable (user, account) table
type stubGroupRepo struct {
	roles map[uuid.UUID]map[uuid.UUID]sharing.Role
}

func (s *stubGroupRepo) setRole(userID, accountID uuid.UUID, role sharing.Role) {
	if s.roles == nil {
		s.roles = make(map[uuid.UUID]map[uuid.UUID]sharing.Role)
	}
	if s.roles[userID] == nil {
		s.roles[userID] = make(map[uuid.UUID]sharing.Role)
	}
	s.roles[userID][accountID] = role
}

func (s *stubGroupRepo) MaxRoleOnAccount(_ context.Context, userID, accountID uuid.UUID) (sharing.Role, error) {
	return s.roles[userID][accountID], nil
}

func (s *stubGroupRepo) Save(context.Context, *sharing.Group, []uuid.UUID) error { return nil }
func (s *stubGroupRepo) Update(context.Context, *sharing.Group) error            { return nil }
func (s *stubGroupRepo) FindByID(context.Context, uuid.UUID) (*sharing.Group, error) {
	return nil, shared.ErrNotFound
}
func (s *stubGroupRepo) FindVisibleTo(context.Context, uuid.UUID) ([]*sharing.Group, error) {
	return nil, nil
}
func (s *stubGroupRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (s *stubGroupRepo) ReplaceAccountLinks(context.Context, uuid.UUID, []uuid.UUID) error {
	return nil
}
func (s *stubGroupRepo) ListAccountLinks(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}
func (s *stubGroupRepo) ListMembers(context.Context, uuid.UUID) ([]sharing.MemberDetail, error) {
	return nil, nil
}
func (s *stubGroupRepo) UpsertMember(context.Context, uuid.UUID, uuid.UUID, sharing.Role) error {
	return nil
}
func (s *stubGroupRepo) RemoveMember(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (s *stubGroupRepo) RoleOf(context.Context, uuid.UUID, uuid.UUID) (sharing.Role, error) {
	return sharing.RoleNone, nil
}

func TestObligationService_EditGrantLifecycle(t *testing.T) {
	// A member holding edit on a shared account can create an obligation;
	// after being demoted to view they can still list it but can no longer
	// delete it.
	ownerID := uuid.New()
	memberID := uuid.New()

	account, err := ledger.NewAccount(ownerID, "Shared", "EUR")
	require.NoError(t, err)

	accounts := &stubAccountRepo{accounts: map[uuid.UUID]*ledger.Account{account.ID: account}}
	groups := &stubGroupRepo{}
	groups.setRole(memberID, account.ID, sharing.RoleEdit)

	obligations := new(mockObligationRepo)
	obligations.On("Save", mock.Anything, mock.Anything).Return(nil)

	kernel := access.NewKernel(accounts, groups, nil, nil)
	service := NewObligationService(obligations, kernel)
	ctx := context.Background()

	created, err := service.CreateObligation(ctx, memberID, CreateObligationRequest{
		AccountID:    account.ID,
		Amount:       decimal.NewFromInt(120),
		CurrencyCode: "EUR",
		Kind:         "expense",
		Description:  "insurance",
		IntervalDays: 30,
		NextOccursAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	stored, err := ledger.NewObligation(account.ID, decimal.NewFromInt(120), "EUR", ledger.EntryExpense, "insurance", 30, created.NextOccursAt)
	require.NoError(t, err)
	stored.ID = created.ID
	obligations.On("FindByID", mock.Anything, created.ID).Return(stored, nil)

	// Demotion takes effect on the next check.
	groups.setRole(memberID, account.ID, sharing.RoleView)

	err = service.DeleteObligation(ctx, memberID, created.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	obligations.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	obligations.On("FindByAccount", mock.Anything, account.ID).Return([]*ledger.Obligation{stored}, nil)
	_, err = service.ListObligations(ctx, memberID, account.ID)
	assert.NoError(t, err, "view access still allows listing")
}

func TestObligationService_SkipAdvancesWithoutEntry(t *testing.T) {
	ownerID := uuid.New()
	account, err := ledger.NewAccount(ownerID, "Main", "USD")
	require.NoError(t, err)

	next := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	obligation, err := ledger.NewObligation(account.ID, decimal.NewFromInt(15), "USD", ledger.EntryExpense, "subscription", 7, next)
	require.NoError(t, err)

	accounts := &stubAccountRepo{accounts: map[uuid.UUID]*ledger.Account{account.ID: account}}
	obligations := new(mockObligationRepo)
	obligations.On("FindByID", mock.Anything, obligation.ID).Return(obligation, nil)
	obligations.On("Update", mock.Anything, obligation).Return(nil)

	kernel := access.NewKernel(accounts, &stubGroupRepo{}, nil, nil)
	service := NewObligationService(obligations, kernel)

	resp, err := service.SkipObligation(context.Background(), ownerID, obligation.ID)
	require.NoError(t, err)

	assert.Equal(t, next.AddDate(0, 0, 7), resp.NextOccursAt, "skip consumes exactly one interval")
	obligations.AssertCalled(t, "Update", mock.Anything, obligation)
}

func TestObligationService_StrangerCannotSeeObligations(t *testing.T) {
	ownerID := uuid.New()
	strangerID := uuid.New()
	account, err := ledger.NewAccount(ownerID, "Private", "EUR")
	require.NoError(t, err)

	accounts := &stubAccountRepo{accounts: map[uuid.UUID]*ledger.Account{account.ID: account}}
	obligations := new(mockObligationRepo)

	kernel := access.NewKernel(accounts, &stubGroupRepo{}, nil, nil)
	service := NewObligationService(obligations, kernel)

	_, err = service.ListObligations(context.Background(), strangerID, account.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
