package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/firecash/backend/internal/application/access"
	"github.com/firecash/backend/internal/domain/ledger"
)

// ObligationService provides application-level operations on recurring
// obligations. All operations are gated on the target account: view access
// to list, edit access to create, update, skip, or delete.
type ObligationService struct {
	obligations ledger.ObligationRepository
	kernel      *access.Kernel
}

// NewObligationService creates a new ObligationService
func NewObligationService(obligations ledger.ObligationRepository, kernel *access.Kernel) *ObligationService {
	return &ObligationService{
		obligations: obligations,
		kernel:      kernel,
	}
}

// ObligationResponse represents a recurring obligation in API responses
type ObligationResponse struct {
	ID           uuid.UUID       `json:"id"`
	AccountID    uuid.UUID       `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	Kind         string          `json:"kind"`
	Description  string          `json:"description,omitempty"`
	IntervalDays int             `json:"interval_days"`
	NextOccursAt time.Time       `json:"next_occurs_at"`
	IsEnabled    bool            `json:"is_enabled"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// CreateObligationRequest represents a request to create an obligation
type CreateObligationRequest struct {
	AccountID    uuid.UUID       `json:"account_id" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currency_code" binding:"required"`
	Kind         string          `json:"kind" binding:"required"`
	Description  string          `json:"description"`
	IntervalDays int             `json:"interval_days" binding:"required"`
	NextOccursAt time.Time       `json:"next_occurs_at" binding:"required"`
}

// UpdateObligationRequest represents a request to update an obligation
type UpdateObligationRequest struct {
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currency_code" binding:"required"`
	Kind         string          `json:"kind" binding:"required"`
	Description  string          `json:"description"`
	IntervalDays int             `json:"interval_days" binding:"required"`
	NextOccursAt time.Time       `json:"next_occurs_at" binding:"required"`
	IsEnabled    *bool           `json:"is_enabled" binding:"required"`
}

func toObligationResponse(o *ledger.Obligation) *ObligationResponse {
	return &ObligationResponse{
		ID:           o.ID,
		AccountID:    o.AccountID,
		Amount:       o.Amount,
		CurrencyCode: o.CurrencyCode,
		Kind:         string(o.Kind),
		Description:  o.Description,
		IntervalDays: o.IntervalDays,
		NextOccursAt: o.NextOccursAt,
		IsEnabled:    o.IsEnabled,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// CreateObligation creates a recurring obligation on an account
func (s *ObligationService) CreateObligation(ctx context.Context, userID uuid.UUID, req CreateObligationRequest) (*ObligationResponse, error) {
	if err := s.kernel.AssertEdit(ctx, userID, req.AccountID); err != nil {
		return nil, err
	}
	kind, err := ledger.ParseEntryKind(req.Kind)
	if err != nil {
		return nil, err
	}
	obligation, err := ledger.NewObligation(req.AccountID, req.Amount, req.CurrencyCode, kind, req.Description, req.IntervalDays, req.NextOccursAt)
	if err != nil {
		return nil, err
	}
	if err := s.obligations.Save(ctx, obligation); err != nil {
		return nil, err
	}
	return toObligationResponse(obligation), nil
}

// ListObligations returns the account's obligations ordered by next occurrence
func (s *ObligationService) ListObligations(ctx context.Context, userID, accountID uuid.UUID) ([]*ObligationResponse, error) {
	if err := s.kernel.AssertView(ctx, userID, accountID); err != nil {
		return nil, err
	}
	obligations, err := s.obligations.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	responses := make([]*ObligationResponse, 0, len(obligations))
	for _, o := range obligations {
		responses = append(responses, toObligationResponse(o))
	}
	return responses, nil
}

// UpdateObligation rewrites an obligation, requiring edit access on its account
func (s *ObligationService) UpdateObligation(ctx context.Context, userID, obligationID uuid.UUID, req UpdateObligationRequest) (*ObligationResponse, error) {
	obligation, err := s.loadForEdit(ctx, userID, obligationID)
	if err != nil {
		return nil, err
	}
	kind, err := ledger.ParseEntryKind(req.Kind)
	if err != nil {
		return nil, err
	}
	enabled := obligation.IsEnabled
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	if err := obligation.Update(req.Amount, req.CurrencyCode, kind, req.Description, req.IntervalDays, req.NextOccursAt, enabled); err != nil {
		return nil, err
	}
	if err := s.obligations.Update(ctx, obligation); err != nil {
		return nil, err
	}
	return toObligationResponse(obligation), nil
}

// SkipObligation advances the obligation by exactly one interval without
// emitting a ledger entry.
func (s *ObligationService) SkipObligation(ctx context.Context, userID, obligationID uuid.UUID) (*ObligationResponse, error) {
	obligation, err := s.loadForEdit(ctx, userID, obligationID)
	if err != nil {
		return nil, err
	}
	obligation.Advance()
	if err := s.obligations.Update(ctx, obligation); err != nil {
		return nil, err
	}
	return toObligationResponse(obligation), nil
}

// DeleteObligation removes an obligation, requiring edit access on its account
func (s *ObligationService) DeleteObligation(ctx context.Context, userID, obligationID uuid.UUID) error {
	if _, err := s.loadForEdit(ctx, userID, obligationID); err != nil {
		return err
	}
	return s.obligations.Delete(ctx, obligationID)
}

func (s *ObligationService) loadForEdit(ctx context.Context, userID, obligationID uuid.UUID) (*ledger.Obligation, error) {
	obligation, err := s.obligations.FindByID(ctx, obligationID)
	if err != nil {
		return nil, err
	}
	if err := s.kernel.AssertEdit(ctx, userID, obligation.AccountID); err != nil {
		return nil, err
	}
	return obligation, nil
}
