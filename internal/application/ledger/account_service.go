package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/firecash/backend/internal/application/access"
	"github.com/firecash/backend/internal/domain/ledger"
)

// AccountService provides application-level account operations
type AccountService struct {
	accounts ledger.AccountRepository
	kernel   *access.Kernel
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts ledger.AccountRepository, kernel *access.Kernel) *AccountService {
	return &AccountService{
		accounts: accounts,
		kernel:   kernel,
	}
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateAccountRequest represents a request to create an account
type CreateAccountRequest struct {
	Name         string `json:"name" binding:"required"`
	CurrencyCode string `json:"currency_code" binding:"required"`
}

// UpdateAccountRequest represents a request to update an account
type UpdateAccountRequest struct {
	Name         string `json:"name" binding:"required"`
	CurrencyCode string `json:"currency_code" binding:"required"`
}

func toAccountResponse(a *ledger.Account) *AccountResponse {
	return &AccountResponse{
		ID:           a.ID,
		OwnerID:      a.OwnerID,
		Name:         a.Name,
		CurrencyCode: a.CurrencyCode,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// CreateAccount creates an account owned by the caller
func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, req CreateAccountRequest) (*AccountResponse, error) {
	account, err := ledger.NewAccount(userID, req.Name, req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// ListAccounts returns the accounts the caller owns or can reach through groups
func (s *AccountService) ListAccounts(ctx context.Context, userID uuid.UUID) ([]*AccountResponse, error) {
	accounts, err := s.accounts.FindVisibleTo(ctx, userID)
	if err != nil {
		return nil, err
	}
	responses := make([]*AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		responses = append(responses, toAccountResponse(a))
	}
	return responses, nil
}

// GetAccount returns one account, requiring at least view access
func (s *AccountService) GetAccount(ctx context.Context, userID, accountID uuid.UUID) (*AccountResponse, error) {
	if err := s.kernel.AssertView(ctx, userID, accountID); err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// UpdateAccount renames or re-denominates an account, requiring admin access
func (s *AccountService) UpdateAccount(ctx context.Context, userID, accountID uuid.UUID, req UpdateAccountRequest) (*AccountResponse, error) {
	if err := s.kernel.AssertAdmin(ctx, userID, accountID); err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := account.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := account.ChangeCurrency(req.CurrencyCode); err != nil {
		return nil, err
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return toAccountResponse(account), nil
}

// DeleteAccount deletes an account and its dependent rows, requiring admin access
func (s *AccountService) DeleteAccount(ctx context.Context, userID, accountID uuid.UUID) error {
	if err := s.kernel.AssertAdmin(ctx, userID, accountID); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, accountID)
}
