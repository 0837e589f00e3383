package balance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/fx"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/source"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Row is one source document's contribution to a sub-ledger category,
// in its original currency.
type Row struct {
	Amount   decimal.Decimal
	Currency valueobject.Currency
	Date     time.Time
}

// SubLedgerReader lists a party's contributions per category straight from
// the business tables. Amounts are unsigned magnitudes; the aggregator
// applies direction.
type SubLedgerReader interface {
	Rows(ctx context.Context, kind party.Kind, partyID uuid.UUID, category party.Category) ([]Row, error)
}

// Metrics receives recompute counters. A nil Metrics is a no-op.
type Metrics interface {
	BalanceRecomputed(ctx context.Context, kind string, approximate bool)
}

// signs gives each category's contribution to the current balance.
//
// For customers a positive balance means the customer owes us: sales and
// services add, incoming payments and prepayments subtract, a bounced
// incoming check restores what the payment had cleared.
//
// Partners share the customer convention except for sales: a partner's
// sales sub-balance is their carved-out share of partner-warehouse sales,
// which is money we owe them, so it subtracts and our outgoing payments
// add it back.
//
// For suppliers the perspective is mirrored: a positive balance means we
// owe the supplier, so purchases and supplier-billed expenses add and our
// outgoing payments subtract.
var signs = map[party.Kind]map[party.Category]int{
	party.KindCustomer: customerSigns,
	party.KindPartner: {
		party.CategorySales:             -1,
		party.CategoryServices:          1,
		party.CategoryPreordersPrepaid:  -1,
		party.CategoryPaymentsIn:        -1,
		party.CategoryPaymentsOut:       1,
		party.CategoryExpenses:          1,
		party.CategoryReturns:           -1,
		party.CategoryReturnedChecksIn:  1,
		party.CategoryReturnedChecksOut: -1,
		party.CategoryExchangeItems:     -1,
	},
	party.KindSupplier: {
		party.CategorySales:             1,
		party.CategoryServices:          1,
		party.CategoryPreordersPrepaid:  -1,
		party.CategoryPaymentsIn:        1,
		party.CategoryPaymentsOut:       -1,
		party.CategoryExpenses:          1,
		party.CategoryReturns:           -1,
		party.CategoryReturnedChecksIn:  -1,
		party.CategoryReturnedChecksOut: 1,
		party.CategoryExchangeItems:     1,
	},
}

var customerSigns = map[party.Category]int{
	party.CategorySales:             1,
	party.CategoryServices:          1,
	party.CategoryPreordersPrepaid:  -1,
	party.CategoryPaymentsIn:        -1,
	party.CategoryPaymentsOut:       1,
	party.CategoryExpenses:          1,
	party.CategoryReturns:           -1,
	party.CategoryReturnedChecksIn:  1,
	party.CategoryReturnedChecksOut: -1,
	party.CategoryExchangeItems:     -1,
}

// Aggregator recomputes a party's materialized balance from scratch:
// opening balance plus every sub-ledger category, each row converted to
// the base currency at its own date. The computation is deterministic for
// a given set of source rows and FX rates.
type Aggregator struct {
	parties party.Repository
	reader  source.Reader
	rows    SubLedgerReader
	rates   fx.RateRepository
	metrics Metrics
	logger  *zap.Logger
	base    valueobject.Currency
}

// NewAggregator creates a balance aggregator
func NewAggregator(
	parties party.Repository,
	reader source.Reader,
	rows SubLedgerReader,
	rates fx.RateRepository,
	metrics Metrics,
	logger *zap.Logger,
	base valueobject.Currency,
) *Aggregator {
	if !base.IsValid() {
		base = valueobject.DefaultCurrency
	}
	return &Aggregator{
		parties: parties,
		reader:  reader,
		rows:    rows,
		rates:   rates,
		metrics: metrics,
		logger:  logger,
		base:    base,
	}
}

// maxRecomputeAttempts bounds the optimistic retry loop. A conflict means
// another recompute landed between our reads and our write, so each retry
// starts over from fresh reads.
const maxRecomputeAttempts = 3

// Recompute rebuilds the breakdown for one party and persists it through
// the repository's optimistic version check. The party version is observed
// before any sub-ledger read; if a concurrent recompute bumps it before our
// write lands, the write is rejected and the whole computation reruns on
// fresh data. It returns the breakdown it stored.
func (a *Aggregator) Recompute(ctx context.Context, kind party.Kind, partyID uuid.UUID) (party.Breakdown, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "balance", "recompute",
		telemetry.WithAttribute("party_kind", kind.String()),
		telemetry.WithAttribute("party_id", partyID.String()))
	defer span.End()

	var b party.Breakdown
	for attempt := 1; ; attempt++ {
		p, err := a.parties.FindByID(ctx, kind, partyID)
		if err != nil {
			err = fmt.Errorf("load %s %s before recompute: %w", kind, partyID, err)
			telemetry.RecordError(span, err)
			return party.Breakdown{}, err
		}

		b, err = a.compute(ctx, kind, partyID)
		if err != nil {
			telemetry.RecordError(span, err)
			return party.Breakdown{}, err
		}

		err = a.parties.SaveBalances(ctx, kind, partyID, b, p.Version)
		if err == nil {
			break
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) && attempt < maxRecomputeAttempts {
			a.logger.Debug("party changed during balance recompute, retrying",
				zap.String("party_kind", kind.String()),
				zap.String("party_id", partyID.String()),
				zap.Int("attempt", attempt),
			)
			continue
		}
		err = fmt.Errorf("save balances for %s %s: %w", kind, partyID, err)
		telemetry.RecordError(span, err)
		return party.Breakdown{}, err
	}

	telemetry.SetAttribute(span, "approximate", b.Approximate)
	if a.metrics != nil {
		a.metrics.BalanceRecomputed(ctx, kind.String(), b.Approximate)
	}
	a.logger.Debug("party balance recomputed",
		zap.String("party_kind", kind.String()),
		zap.String("party_id", partyID.String()),
		zap.String("current_balance", b.CurrentBalance.StringFixed(2)),
		zap.Bool("approximate", b.Approximate),
	)
	return b, nil
}

// compute gathers one full snapshot: opening plus every sub-ledger
// category, each row converted at its own date.
func (a *Aggregator) compute(ctx context.Context, kind party.Kind, partyID uuid.UUID) (party.Breakdown, error) {
	resolver := fx.NewResolver(a.rates)
	approximate := false

	convert := func(amount decimal.Decimal, currency valueobject.Currency, asOf time.Time) decimal.Decimal {
		if currency == a.base {
			return amount
		}
		rate, err := resolver.Resolve(ctx, currency, a.base, asOf)
		if err != nil {
			if !errors.Is(err, fx.ErrMissingRate) {
				a.logger.Error("FX rate lookup failed during balance recompute",
					zap.String("party_id", partyID.String()), zap.Error(err))
			} else {
				a.logger.Warn("missing FX rate during balance recompute, using raw amount",
					zap.String("party_id", partyID.String()),
					zap.String("from", currency.String()),
					zap.String("to", a.base.String()),
					zap.Time("as_of", asOf),
				)
			}
			approximate = true
			return amount
		}
		return amount.Mul(rate).Round(2)
	}

	opening, err := a.reader.OpeningBalance(ctx, kind, partyID)
	if err != nil {
		return party.Breakdown{}, fmt.Errorf("read opening balance: %w", err)
	}
	// Opening snapshots are always "positive means the party owes us" and
	// the stored breakdown keeps that convention. Only the current-balance
	// formula flips it for suppliers, whose balance reads the other way.
	openingBase := convert(opening.Amount, opening.Currency, opening.EffectiveDate)
	signedOpening := openingBase
	if kind == party.KindSupplier {
		signedOpening = openingBase.Neg()
	}

	subBalances := make(map[party.Category]decimal.Decimal, len(party.Categories()))
	current := signedOpening
	kindSigns := signs[kind]
	for _, category := range party.Categories() {
		rows, err := a.rows.Rows(ctx, kind, partyID, category)
		if err != nil {
			return party.Breakdown{}, fmt.Errorf("read %s rows for %s %s: %w", category, kind, partyID, err)
		}
		subtotal := decimal.Zero
		for _, r := range rows {
			subtotal = subtotal.Add(convert(r.Amount, r.Currency, r.Date))
		}
		subBalances[category] = subtotal
		sign := decimal.NewFromInt(int64(kindSigns[category]))
		current = current.Add(subtotal.Mul(sign))
	}

	return party.Breakdown{
		Opening:        openingBase,
		SubBalances:    subBalances,
		CurrentBalance: current,
		Approximate:    approximate,
		ComputedAt:     time.Now(),
	}, nil
}
