package ledger

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceType identifies the kind of business event a batch was posted for
type SourceType string

const (
	SourceTypeOpeningBalance SourceType = "OPENING_BALANCE"
	SourceTypeSale           SourceType = "SALE"
	SourceTypePayment        SourceType = "PAYMENT"
	SourceTypeExpense        SourceType = "EXPENSE"
	SourceTypeShipment       SourceType = "SHIPMENT"
	SourceTypeService        SourceType = "SERVICE"
	SourceTypeCheck          SourceType = "CHECK"
)

// IsValid checks if the source type is valid
func (s SourceType) IsValid() bool {
	switch s {
	case SourceTypeOpeningBalance, SourceTypeSale, SourceTypePayment,
		SourceTypeExpense, SourceTypeShipment, SourceTypeService, SourceTypeCheck:
		return true
	}
	return false
}

// String returns the string representation
func (s SourceType) String() string {
	return string(s)
}

// Purpose distinguishes several batches posted for the same source document
type Purpose string

const (
	PurposeOpeningBalance Purpose = "OPENING_BALANCE"
	PurposeRevenue        Purpose = "REVENUE"
	PurposeCOGS           Purpose = "COGS"
	PurposePayment        Purpose = "PAYMENT"
	PurposeExpense        Purpose = "EXPENSE"
	PurposeLandedCost     Purpose = "LANDED_COST"
	PurposeServiceRevenue Purpose = "SERVICE_REVENUE"
	PurposeCheckReceipt   Purpose = "CHECK_RECEIPT"
	PurposeCheckIssue     Purpose = "CHECK_ISSUE"
	PurposeCheckCashed    Purpose = "CHECK_CASHED"
	PurposeCheckReturn    Purpose = "CHECK_RETURN"
)

// IsValid checks if the purpose is valid
func (p Purpose) IsValid() bool {
	switch p {
	case PurposeOpeningBalance, PurposeRevenue, PurposeCOGS, PurposePayment,
		PurposeExpense, PurposeLandedCost, PurposeServiceRevenue,
		PurposeCheckReceipt, PurposeCheckIssue, PurposeCheckCashed, PurposeCheckReturn:
		return true
	}
	return false
}

// String returns the string representation
func (p Purpose) String() string {
	return string(p)
}

// BatchStatus represents the posting status of a batch
type BatchStatus string

const (
	BatchStatusPosted BatchStatus = "POSTED"
	BatchStatusVoid   BatchStatus = "VOID"
)

// IsValid checks if the status is valid
func (s BatchStatus) IsValid() bool {
	return s == BatchStatusPosted || s == BatchStatusVoid
}

// GLEntry is one debit or credit line inside a batch. Exactly one of
// Debit/Credit is positive; the other is zero.
type GLEntry struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Ref         string          `json:"ref,omitempty"`
}

// Validate checks the single-sided invariant of an entry
func (e GLEntry) Validate() error {
	if e.AccountCode == "" {
		return shared.NewDomainError("INVALID_INPUT", "Entry account code cannot be empty")
	}
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return shared.NewDomainErrorf(shared.CodeUnbalancedBatch,
			"Entry for account %s has a negative amount", e.AccountCode)
	}
	debitSet := e.Debit.IsPositive()
	creditSet := e.Credit.IsPositive()
	if debitSet == creditSet {
		return shared.NewDomainErrorf(shared.CodeUnbalancedBatch,
			"Entry for account %s must have exactly one of debit/credit positive", e.AccountCode)
	}
	return nil
}

// DebitEntry builds a debit-side entry
func DebitEntry(accountCode string, amount decimal.Decimal, ref string) GLEntry {
	return GLEntry{AccountCode: accountCode, Debit: amount, Credit: decimal.Zero, Ref: ref}
}

// CreditEntry builds a credit-side entry
func CreditEntry(accountCode string, amount decimal.Decimal, ref string) GLEntry {
	return GLEntry{AccountCode: accountCode, Debit: decimal.Zero, Credit: amount, Ref: ref}
}

// GLBatch is one atomic, balanced group of ledger entries representing a
// single business event's monetary effect. At most one non-void batch
// exists per (SourceType, SourceID, Purpose).
type GLBatch struct {
	shared.BaseAggregateRoot
	PostedAt           time.Time
	SourceType         SourceType
	SourceID           uuid.UUID
	Purpose            Purpose
	Currency           valueobject.Currency
	Memo               string
	EntityType         string     // counterparty kind, empty when the batch concerns no party
	EntityID           *uuid.UUID // counterparty id
	Status             BatchStatus
	CurrencyUnresolved bool // true when an FX rate was missing and raw amounts were posted
	Entries            []GLEntry
}

// NewGLBatch creates a posted batch after validating every entry and the
// balance invariant. Account existence is checked by the ledger service,
// not here, since the chart lives behind a repository.
func NewGLBatch(
	sourceType SourceType,
	sourceID uuid.UUID,
	purpose Purpose,
	currency valueobject.Currency,
	memo string,
	postedAt time.Time,
	entries []GLEntry,
) (*GLBatch, error) {
	if !sourceType.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid source type %q", sourceType)
	}
	if sourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Source ID cannot be empty")
	}
	if !purpose.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid purpose %q", purpose)
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid currency %q", currency)
	}
	if len(entries) < 2 {
		return nil, shared.NewDomainError(shared.CodeUnbalancedBatch,
			"A batch needs at least one debit and one credit entry")
	}
	if postedAt.IsZero() {
		postedAt = time.Now()
	}

	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, err
		}
	}
	if err := checkBalanced(entries); err != nil {
		return nil, err
	}

	b := &GLBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PostedAt:          postedAt,
		SourceType:        sourceType,
		SourceID:          sourceID,
		Purpose:           purpose,
		Currency:          currency,
		Memo:              memo,
		Status:            BatchStatusPosted,
		Entries:           entries,
	}
	b.AddDomainEvent(NewBatchPostedEvent(b))
	return b, nil
}

// checkBalanced verifies sum(debit) == sum(credit) within BalanceTolerance
func checkBalanced(entries []GLEntry) error {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, e := range entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	if debit.Sub(credit).Abs().GreaterThan(valueobject.BalanceTolerance) {
		return shared.NewDomainErrorf(shared.CodeUnbalancedBatch,
			"Batch does not balance: debit %s != credit %s",
			debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}

// AttachEntity tags the batch with the counterparty it concerns
func (b *GLBatch) AttachEntity(entityType string, entityID uuid.UUID) {
	b.EntityType = entityType
	id := entityID
	b.EntityID = &id
}

// MarkCurrencyUnresolved flags the batch as posted with unconverted
// amounts because a required FX rate was missing. Balance readers must
// treat such batches as approximate.
func (b *GLBatch) MarkCurrencyUnresolved() {
	b.CurrencyUnresolved = true
}

// Void marks the batch VOID. Voided batches are excluded from balance
// queries but retained for audit.
func (b *GLBatch) Void() error {
	if b.Status == BatchStatusVoid {
		return shared.NewDomainError("INVALID_STATE", "Batch is already void")
	}
	b.Status = BatchStatusVoid
	b.IncrementVersion()
	b.AddDomainEvent(NewBatchVoidedEvent(b))
	return nil
}

// IsVoid reports whether the batch has been voided
func (b *GLBatch) IsVoid() bool {
	return b.Status == BatchStatusVoid
}

// TotalDebit returns the sum of all debit amounts
func (b *GLBatch) TotalDebit() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range b.Entries {
		sum = sum.Add(e.Debit)
	}
	return sum
}

// TotalCredit returns the sum of all credit amounts
func (b *GLBatch) TotalCredit() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range b.Entries {
		sum = sum.Add(e.Credit)
	}
	return sum
}
