package bank

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository persists bank accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	Save(ctx context.Context, a *Account) error
}

// StatementRepository persists imported statements
type StatementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Statement, error)
	Save(ctx context.Context, s *Statement) error
}

// TransactionRepository persists imported statement lines
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindUnmatched(ctx context.Context, bankAccountID uuid.UUID) ([]*Transaction, error)
	SaveAll(ctx context.Context, txns []*Transaction) error
	Save(ctx context.Context, t *Transaction) error
}

// BookPaymentRepository persists the internal payment records the matcher
// pairs statement lines against
type BookPaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BookPayment, error)
	FindUnmatched(ctx context.Context, bankAccountID uuid.UUID) ([]*BookPayment, error)
	Save(ctx context.Context, p *BookPayment) error
}

// ReconciliationRepository persists reconciliation records
type ReconciliationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Reconciliation, error)
	Save(ctx context.Context, r *Reconciliation) error
}
