package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/firecash/backend/internal/domain/shared"
)

// AccountRepository defines persistence for accounts
type AccountRepository interface {
	Save(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	// FindVisibleTo returns accounts the user owns plus accounts linked to
	// any group the user is a member of.
	FindVisibleTo(ctx context.Context, userID uuid.UUID) ([]*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransactionRepository defines persistence for ledger entries
type TransactionRepository interface {
	Save(ctx context.Context, transaction *Transaction) error
	Update(ctx context.Context, transaction *Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]*Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FireResult describes one obligation firing performed by FireDue
type FireResult struct {
	ObligationID  uuid.UUID
	TransactionID uuid.UUID
	OccurredAt    time.Time
	NextOccursAt  time.Time
}

// ObligationRepository defines persistence for recurring obligations
type ObligationRepository interface {
	Save(ctx context.Context, obligation *Obligation) error
	Update(ctx context.Context, obligation *Obligation) error
	FindByID(ctx context.Context, id uuid.UUID) (*Obligation, error)
	// FindByAccount returns the account's obligations ordered by NextOccursAt.
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*Obligation, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FireDue claims up to limit obligations due at now and, for each, inserts
	// the materialized ledger entry dated at the claimed NextOccursAt and
	// advances the obligation by one interval. The claim must skip rows locked
	// by concurrent callers, and claim, insert, and advance must commit as one
	// unit so that no due obligation ever produces more than one entry.
	FireDue(ctx context.Context, now time.Time, limit int) ([]FireResult, error)
}
