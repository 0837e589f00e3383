package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ChartOfAccounts resolves account codes at posting time. Implementations
// cache process-wide and invalidate explicitly on chart edits.
type ChartOfAccounts interface {
	Lookup(ctx context.Context, code string) (*Account, error)
	Invalidate()
}

// EntityRef points a batch at the counterparty it concerns
type EntityRef struct {
	Type string
	ID   uuid.UUID
}

// BatchSpec is the input to UpsertBatch: everything needed to build one
// balanced batch for a business event.
type BatchSpec struct {
	SourceType         SourceType
	SourceID           uuid.UUID
	Purpose            Purpose
	Currency           valueobject.Currency
	Memo               string
	PostedAt           time.Time
	Entries            []GLEntry
	Entity             *EntityRef
	CurrencyUnresolved bool
}

// Service is the ledger store: it validates batch specs against the chart
// of accounts and the balance invariant, and delegates atomic persistence
// to the batch repository.
type Service struct {
	chart   ChartOfAccounts
	batches GLBatchRepository
}

// NewService creates a ledger service
func NewService(chart ChartOfAccounts, batches GLBatchRepository) *Service {
	return &Service{chart: chart, batches: batches}
}

// UpsertBatch validates and posts a batch. If a non-void batch already
// exists for (SourceType, SourceID, Purpose) its entries are replaced
// atomically; repeated posting of the same event never duplicates.
func (s *Service) UpsertBatch(ctx context.Context, spec BatchSpec) (uuid.UUID, error) {
	for _, e := range spec.Entries {
		account, err := s.chart.Lookup(ctx, e.AccountCode)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return uuid.Nil, shared.NewDomainErrorf(shared.CodeUnknownAccount,
					"Account %s is not in the chart of accounts", e.AccountCode)
			}
			return uuid.Nil, err
		}
		if !account.Active {
			return uuid.Nil, shared.NewDomainErrorf(shared.CodeInactiveAccount,
				"Account %s (%s) is inactive", account.Code, account.Name)
		}
	}

	batch, err := NewGLBatch(spec.SourceType, spec.SourceID, spec.Purpose,
		spec.Currency, spec.Memo, spec.PostedAt, spec.Entries)
	if err != nil {
		return uuid.Nil, err
	}
	if spec.Entity != nil {
		batch.AttachEntity(spec.Entity.Type, spec.Entity.ID)
	}
	if spec.CurrencyUnresolved {
		batch.MarkCurrencyUnresolved()
	}

	return s.batches.UpsertBySource(ctx, batch)
}

// VoidBatch marks a batch VOID, keeping it for audit
func (s *Service) VoidBatch(ctx context.Context, batchID uuid.UUID) error {
	return s.batches.Void(ctx, batchID)
}

// VoidBySource voids the batch posted for a source document and purpose,
// if one exists. Used when a later event withdraws an earlier posting.
func (s *Service) VoidBySource(ctx context.Context, st SourceType, sourceID uuid.UUID, purpose Purpose) error {
	batch, err := s.batches.FindBySource(ctx, st, sourceID, purpose)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if batch.Status == BatchStatusVoid {
		return nil
	}
	return s.batches.Void(ctx, batch.ID)
}

// TrialBalance sums debit/credit per account over a date range
func (s *Service) TrialBalance(ctx context.Context, q TrialBalanceQuery) ([]TrialBalanceRow, error) {
	return s.batches.TrialBalance(ctx, q)
}

// AccountLedger lists one account's entries with a running balance
func (s *Service) AccountLedger(ctx context.Context, q AccountLedgerQuery) (shared.Paginated[LedgerLine], error) {
	if q.AccountCode == "" {
		return shared.Paginated[LedgerLine]{}, shared.NewDomainError("INVALID_INPUT", "Account code is required")
	}
	if _, err := s.chart.Lookup(ctx, q.AccountCode); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.Paginated[LedgerLine]{}, shared.NewDomainErrorf(shared.CodeUnknownAccount,
				"Account %s is not in the chart of accounts", q.AccountCode)
		}
		return shared.Paginated[LedgerLine]{}, err
	}
	return s.batches.AccountLedger(ctx, q)
}

// EntityLedger lists all entries tagged with one counterparty
func (s *Service) EntityLedger(ctx context.Context, q EntityLedgerQuery) (shared.Paginated[LedgerLine], error) {
	if q.EntityType == "" || q.EntityID == uuid.Nil {
		return shared.Paginated[LedgerLine]{}, shared.NewDomainError("INVALID_INPUT", "Entity reference is required")
	}
	return s.batches.EntityLedger(ctx, q)
}
