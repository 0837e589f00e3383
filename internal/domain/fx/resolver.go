package fx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ErrMissingRate signals that no rate exists for the pair at or before the
// requested date. The resolver never assumes 1.0; callers decide whether the
// miss is fatal (reporting) or degradable (posting).
var ErrMissingRate = shared.NewDomainError(shared.CodeMissingFXRate, "No FX rate for the requested pair and date")

// Resolver resolves historical conversion rates with a cache scoped to one
// posting or aggregation operation. A Resolver must not outlive the
// transaction it was created for; stale cross-transaction rates are a
// correctness bug, not an optimization.
type Resolver struct {
	repo  RateRepository
	cache map[cacheKey]decimal.Decimal
}

type cacheKey struct {
	base  valueobject.Currency
	quote valueobject.Currency
	day   string
}

// NewResolver creates a resolver with a fresh per-operation cache
func NewResolver(repo RateRepository) *Resolver {
	return &Resolver{
		repo:  repo,
		cache: make(map[cacheKey]decimal.Decimal),
	}
}

// Resolve returns the conversion rate from one currency into another as of
// the given date. Identical currencies resolve to 1 without a lookup.
// Resolution order: exact date, then most recent prior date, then
// ErrMissingRate.
func (r *Resolver) Resolve(ctx context.Context, from, to valueobject.Currency, asOf time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	day := asOf.Truncate(24 * time.Hour)
	key := cacheKey{base: from, quote: to, day: day.Format("2006-01-02")}
	if rate, ok := r.cache[key]; ok {
		return rate, nil
	}

	rate, err := r.lookup(ctx, from, to, day)
	if err != nil {
		return decimal.Zero, err
	}
	r.cache[key] = rate
	return rate, nil
}

// Convert converts an amount into the target currency at the rate effective
// on asOf, rounded to 2 decimal places.
func (r *Resolver) Convert(ctx context.Context, amount valueobject.Money, to valueobject.Currency, asOf time.Time) (valueobject.Money, error) {
	if amount.Currency() == to {
		return amount, nil
	}
	rate, err := r.Resolve(ctx, amount.Currency(), to, asOf)
	if err != nil {
		return valueobject.Money{}, err
	}
	return amount.Convert(rate, to), nil
}

func (r *Resolver) lookup(ctx context.Context, from, to valueobject.Currency, day time.Time) (decimal.Decimal, error) {
	found, err := r.repo.FindEffective(ctx, from, to, day)
	if err == nil {
		return found.Rate, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("fx lookup %s/%s: %w", from, to, err)
	}

	// try the inverse pair before giving up
	inverse, invErr := r.repo.FindEffective(ctx, to, from, day)
	if invErr == nil && inverse.Rate.IsPositive() {
		return decimal.NewFromInt(1).DivRound(inverse.Rate, 8), nil
	}
	if invErr != nil && !errors.Is(invErr, shared.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("fx lookup %s/%s: %w", to, from, invErr)
	}
	return decimal.Zero, ErrMissingRate
}
