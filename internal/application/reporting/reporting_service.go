package reporting

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Service serves the read side: trial balance, ledger listings, and party
// balance breakdowns. It never mutates state.
type Service struct {
	ledger  *ledger.Service
	parties party.Repository
}

// NewService creates a reporting service
func NewService(ledgerSvc *ledger.Service, parties party.Repository) *Service {
	return &Service{ledger: ledgerSvc, parties: parties}
}

// TrialBalance sums debits and credits per account over a period. Rows
// touched by currency-unresolved batches carry the Approximate flag.
func (s *Service) TrialBalance(ctx context.Context, q ledger.TrialBalanceQuery) ([]ledger.TrialBalanceRow, error) {
	return s.ledger.TrialBalance(ctx, q)
}

// AccountLedger lists one account's entries with a running balance
func (s *Service) AccountLedger(ctx context.Context, q ledger.AccountLedgerQuery) (shared.Paginated[ledger.LedgerLine], error) {
	return s.ledger.AccountLedger(ctx, q)
}

// EntityLedger lists every entry tagged with one counterparty
func (s *Service) EntityLedger(ctx context.Context, q ledger.EntityLedgerQuery) (shared.Paginated[ledger.LedgerLine], error) {
	return s.ledger.EntityLedger(ctx, q)
}

// PartyBalance returns the materialized breakdown for one party as last
// computed by the balance aggregator.
func (s *Service) PartyBalance(ctx context.Context, kind party.Kind, partyID uuid.UUID) (party.Breakdown, error) {
	p, err := s.parties.FindByID(ctx, kind, partyID)
	if err != nil {
		return party.Breakdown{}, fmt.Errorf("find %s %s: %w", kind, partyID, err)
	}
	return p.BreakdownView(), nil
}
