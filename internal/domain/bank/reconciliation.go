package bank

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationStatus is the lifecycle of a reconciliation record
type ReconciliationStatus string

const (
	ReconciliationStatusDraft     ReconciliationStatus = "DRAFT"
	ReconciliationStatusCompleted ReconciliationStatus = "COMPLETED"
)

// IsValid checks if the status is valid
func (s ReconciliationStatus) IsValid() bool {
	return s == ReconciliationStatusDraft || s == ReconciliationStatusCompleted
}

// Reconciliation aggregates one period's book balance against the bank
// balance. It is COMPLETED only through an explicit human confirmation,
// never automatically by the matcher.
type Reconciliation struct {
	shared.BaseAggregateRoot
	BankAccountID uuid.UUID
	PeriodStart   time.Time
	PeriodEnd     time.Time
	BookBalance   decimal.Decimal
	BankBalance   decimal.Decimal
	Status        ReconciliationStatus
	ConfirmedBy   *uuid.UUID
	ConfirmedAt   *time.Time
}

// NewReconciliation opens a draft reconciliation for a period
func NewReconciliation(bankAccountID uuid.UUID, periodStart, periodEnd time.Time,
	bookBalance, bankBalance decimal.Decimal) (*Reconciliation, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reconciliation needs a bank account")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Reconciliation period end precedes start")
	}
	return &Reconciliation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BankAccountID:     bankAccountID,
		PeriodStart:       periodStart,
		PeriodEnd:         periodEnd,
		BookBalance:       bookBalance,
		BankBalance:       bankBalance,
		Status:            ReconciliationStatusDraft,
	}, nil
}

// Difference returns bank balance minus book balance
func (r *Reconciliation) Difference() decimal.Decimal {
	return r.BankBalance.Sub(r.BookBalance)
}

// Confirm marks the reconciliation COMPLETED, recording who confirmed it
func (r *Reconciliation) Confirm(userID uuid.UUID) error {
	if r.Status == ReconciliationStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", "Reconciliation is already completed")
	}
	now := time.Now()
	r.Status = ReconciliationStatusCompleted
	r.ConfirmedBy = &userID
	r.ConfirmedAt = &now
	r.IncrementVersion()
	return nil
}
