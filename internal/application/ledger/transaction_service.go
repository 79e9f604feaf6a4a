package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/firecash/backend/internal/application/access"
	"github.com/firecash/backend/internal/domain/ledger"
	"github.com/firecash/backend/internal/domain/shared"
)

// TransactionService provides application-level ledger entry operations
type TransactionService struct {
	transactions ledger.TransactionRepository
	kernel       *access.Kernel
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactions ledger.TransactionRepository, kernel *access.Kernel) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		kernel:       kernel,
	}
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	Kind         string          `json:"kind"`
	Description  string          `json:"description,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreateTransactionRequest represents a request to create a ledger entry
type CreateTransactionRequest struct {
	AccountID    uuid.UUID       `json:"account_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currency_code" binding:"required"`
	Kind         string          `json:"kind" binding:"required"`
	Description  string          `json:"description"`
	OccurredAt   time.Time       `json:"occurred_at" binding:"required"`
}

// UpdateTransactionRequest represents a request to update a ledger entry
type UpdateTransactionRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currency_code" binding:"required"`
	Kind         string          `json:"kind" binding:"required"`
	Description  string          `json:"description"`
	OccurredAt   time.Time       `json:"occurred_at" binding:"required"`
}

// TransactionListFilter defines pagination for ledger entry list queries
type TransactionListFilter struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

func toTransactionResponse(t *ledger.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:           t.ID,
		AccountID:    t.AccountID,
		Amount:       t.Amount,
		CurrencyCode: t.CurrencyCode,
		Kind:         string(t.Kind),
		Description:  t.Description,
		OccurredAt:   t.OccurredAt,
		CreatedAt:    t.CreatedAt,
	}
}

// CreateTransaction records a ledger entry, requiring edit access on the account
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, req CreateTransactionRequest) (*TransactionResponse, error) {
	if err := s.kernel.AssertEdit(ctx, userID, req.AccountID); err != nil {
		return nil, err
	}
	kind, err := ledger.ParseEntryKind(req.Kind)
	if err != nil {
		return nil, err
	}
	transaction, err := ledger.NewTransaction(req.AccountID, req.Amount, req.CurrencyCode, kind, req.Description, req.OccurredAt)
	if err != nil {
		return nil, err
	}
	if err := s.transactions.Save(ctx, transaction); err != nil {
		return nil, err
	}
	return toTransactionResponse(transaction), nil
}

// ListTransactions returns entries for one account, requiring view access
func (s *TransactionService) ListTransactions(ctx context.Context, userID, accountID uuid.UUID, filter TransactionListFilter) ([]*TransactionResponse, error) {
	if err := s.kernel.AssertView(ctx, userID, accountID); err != nil {
		return nil, err
	}
	f := shared.Filter{Limit: filter.Limit, Offset: filter.Offset}.Clamp()
	transactions, err := s.transactions.FindByAccount(ctx, accountID, f)
	if err != nil {
		return nil, err
	}
	responses := make([]*TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, toTransactionResponse(tx))
	}
	return responses, nil
}

// UpdateTransaction rewrites an entry, requiring edit access on its account
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, transactionID uuid.UUID, req UpdateTransactionRequest) (*TransactionResponse, error) {
	transaction, err := s.loadForEdit(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}
	kind, err := ledger.ParseEntryKind(req.Kind)
	if err != nil {
		return nil, err
	}
	if err := transaction.Update(req.Amount, req.CurrencyCode, kind, req.Description, req.OccurredAt); err != nil {
		return nil, err
	}
	if err := s.transactions.Update(ctx, transaction); err != nil {
		return nil, err
	}
	return toTransactionResponse(transaction), nil
}

// DeleteTransaction removes an entry, requiring edit access on its account
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	if _, err := s.loadForEdit(ctx, userID, transactionID); err != nil {
		return err
	}
	return s.transactions.Delete(ctx, transactionID)
}

// loadForEdit fetches the entry and checks edit access on its account. The
// access check happens after the load because the account is only known from
// the stored row; a failed check still surfaces as not-found to strangers.
func (s *TransactionService) loadForEdit(ctx context.Context, userID, transactionID uuid.UUID) (*ledger.Transaction, error) {
	transaction, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.kernel.AssertEdit(ctx, userID, transaction.AccountID); err != nil {
		return nil, err
	}
	return transaction, nil
}
