package fx

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Rate is one historical conversion rate: 1 unit of Base = Rate units of Quote,
// effective from AsOf.
type Rate struct {
	shared.BaseEntity
	Base  valueobject.Currency
	Quote valueobject.Currency
	AsOf  time.Time
	Rate  decimal.Decimal
}

// NewRate creates an FX rate record
func NewRate(base, quote valueobject.Currency, asOf time.Time, rate decimal.Decimal) (*Rate, error) {
	if !base.IsValid() || !quote.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid currency pair %s/%s", base, quote)
	}
	if base == quote {
		return nil, shared.NewDomainError("INVALID_INPUT", "Base and quote currency must differ")
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "FX rate must be positive")
	}
	if asOf.IsZero() {
		return nil, shared.NewDomainError("INVALID_INPUT", "FX rate needs an effective date")
	}
	return &Rate{
		BaseEntity: shared.NewBaseEntity(),
		Base:       base,
		Quote:      quote,
		AsOf:       asOf.Truncate(24 * time.Hour),
		Rate:       rate,
	}, nil
}

// RateRepository persists FX rates.
// FindEffective returns the rate for the exact date, or the most recent
// rate strictly before it; shared.ErrNotFound when neither exists.
type RateRepository interface {
	FindEffective(ctx context.Context, base, quote valueobject.Currency, asOf time.Time) (*Rate, error)
	Save(ctx context.Context, rate *Rate) error
}
