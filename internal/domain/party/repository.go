package party

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists counterparties and their materialized balances.
//
// SaveBalances is an optimistic write: observedVersion is the party version
// the caller read before gathering the sub-ledger rows. Implementations must
// reject the write with shared.ErrConcurrencyConflict when the row's version
// no longer matches, so a recompute working from a stale snapshot can never
// overwrite a newer one. The whole check-and-write runs under a row-level
// lock on the party.
type Repository interface {
	FindByID(ctx context.Context, kind Kind, id uuid.UUID) (*Party, error)
	Save(ctx context.Context, p *Party) error
	SaveBalances(ctx context.Context, kind Kind, id uuid.UUID, b Breakdown, observedVersion int) error
}
