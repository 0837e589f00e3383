package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/fx"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// FxRateModel is the persistence model for one historical FX rate.
type FxRateModel struct {
	BaseModel
	Base  valueobject.Currency `gorm:"type:varchar(3);not null;uniqueIndex:idx_fx_rates_pair_date,priority:1"`
	Quote valueobject.Currency `gorm:"type:varchar(3);not null;uniqueIndex:idx_fx_rates_pair_date,priority:2"`
	AsOf  time.Time            `gorm:"not null;uniqueIndex:idx_fx_rates_pair_date,priority:3"`
	Rate  decimal.Decimal      `gorm:"type:decimal(18,8);not null"`
}

// TableName returns the table name for GORM
func (FxRateModel) TableName() string {
	return "fx_rates"
}

// ToDomain converts the persistence model to a domain Rate.
func (m *FxRateModel) ToDomain() *fx.Rate {
	return &fx.Rate{
		BaseEntity: m.BaseModel.ToDomain(),
		Base:       m.Base,
		Quote:      m.Quote,
		AsOf:       m.AsOf,
		Rate:       m.Rate,
	}
}

// FromDomain populates the persistence model from a domain Rate.
func (m *FxRateModel) FromDomain(r *fx.Rate) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Base = r.Base
	m.Quote = r.Quote
	m.AsOf = r.AsOf
	m.Rate = r.Rate
}
