package ledger

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository persists the chart of accounts
type AccountRepository interface {
	FindByCode(ctx context.Context, code string) (*Account, error)
	FindAll(ctx context.Context) ([]Account, error)
	Save(ctx context.Context, account *Account) error
	// IsReferenced reports whether any posted entry references the account code
	IsReferenced(ctx context.Context, code string) (bool, error)
}

// GLBatchRepository persists posting batches and their entries.
// UpsertBySource must run in one transaction: it takes a row-level lock on
// the existing non-void batch for (sourceType, sourceID, purpose) if any,
// replaces its entries, and otherwise inserts the new batch. This is what
// makes re-posting the same business event idempotent.
type GLBatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GLBatch, error)
	FindBySource(ctx context.Context, sourceType SourceType, sourceID uuid.UUID, purpose Purpose) (*GLBatch, error)
	UpsertBySource(ctx context.Context, batch *GLBatch) (uuid.UUID, error)
	Void(ctx context.Context, id uuid.UUID) error

	TrialBalance(ctx context.Context, query TrialBalanceQuery) ([]TrialBalanceRow, error)
	AccountLedger(ctx context.Context, query AccountLedgerQuery) (shared.Paginated[LedgerLine], error)
	EntityLedger(ctx context.Context, query EntityLedgerQuery) (shared.Paginated[LedgerLine], error)
}

// TrialBalanceQuery filters the trial balance report
type TrialBalanceQuery struct {
	Range      shared.DateRange
	EntityType string     // optional counterparty-kind filter
	EntityID   *uuid.UUID // optional counterparty filter
}

// TrialBalanceRow is the per-account debit/credit summary over a period
type TrialBalanceRow struct {
	AccountCode string          `json:"account_code"`
	AccountName string          `json:"account_name"`
	AccountType AccountType     `json:"account_type"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
	Approximate bool            `json:"approximate"` // any contributing batch was currency-unresolved
}

// Net returns debit minus credit for the row
func (r TrialBalanceRow) Net() decimal.Decimal {
	return r.TotalDebit.Sub(r.TotalCredit)
}

// AccountLedgerQuery filters one account's ledger
type AccountLedgerQuery struct {
	AccountCode string
	Range       shared.DateRange
	Filter      shared.Filter
}

// EntityLedgerQuery filters all entries tagged with one counterparty
type EntityLedgerQuery struct {
	EntityType string
	EntityID   uuid.UUID
	Range      shared.DateRange
	Filter     shared.Filter
}

// LedgerLine is one entry in a ledger listing, with the running balance
// accumulated in posting order
type LedgerLine struct {
	BatchID        uuid.UUID       `json:"batch_id"`
	PostedAt       time.Time       `json:"posted_at"`
	SourceType     SourceType      `json:"source_type"`
	SourceID       uuid.UUID       `json:"source_id"`
	Purpose        Purpose         `json:"purpose"`
	Memo           string          `json:"memo,omitempty"`
	AccountCode    string          `json:"account_code"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	Ref            string          `json:"ref,omitempty"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	Approximate    bool            `json:"approximate"`
}
