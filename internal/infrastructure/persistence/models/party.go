package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// SubBalances stores per-category balances as a JSON column.
type SubBalances map[party.Category]decimal.Decimal

// Value implements driver.Valuer for JSON serialization
func (s SubBalances) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSON deserialization
func (s *SubBalances) Scan(value interface{}) error {
	if value == nil {
		*s = SubBalances{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into SubBalances", value)
	}
	return json.Unmarshal(data, s)
}

// PartyModel is the persistence model for the Party aggregate root. The
// balance columns are the materialized output of the balance aggregator.
type PartyModel struct {
	AggregateModel
	Kind           party.Kind           `gorm:"type:varchar(20);not null;index:idx_parties_kind,priority:1"`
	Name           string               `gorm:"type:varchar(200);not null"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	OpeningBalance decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	SubBalances    SubBalances          `gorm:"type:jsonb;default:'{}'"`
	CurrentBalance decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Approximate    bool                 `gorm:"not null;default:false"`
	BalanceAsOf    *time.Time
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the persistence model to a domain Party.
func (m *PartyModel) ToDomain() *party.Party {
	sub := make(map[party.Category]decimal.Decimal, len(party.Categories()))
	for _, c := range party.Categories() {
		if v, ok := m.SubBalances[c]; ok {
			sub[c] = v
		} else {
			sub[c] = decimal.Zero
		}
	}
	return &party.Party{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Kind:           m.Kind,
		Name:           m.Name,
		Currency:       m.Currency,
		OpeningBalance: m.OpeningBalance,
		SubBalances:    sub,
		CurrentBalance: m.CurrentBalance,
		Approximate:    m.Approximate,
		BalanceAsOf:    m.BalanceAsOf,
	}
}

// FromDomain populates the persistence model from a domain Party.
func (m *PartyModel) FromDomain(p *party.Party) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Kind = p.Kind
	m.Name = p.Name
	m.Currency = p.Currency
	m.OpeningBalance = p.OpeningBalance
	m.SubBalances = SubBalances(p.SubBalances)
	m.CurrentBalance = p.CurrentBalance
	m.Approximate = p.Approximate
	m.BalanceAsOf = p.BalanceAsOf
}

// PartyModelFromDomain creates a new persistence model from a domain Party.
func PartyModelFromDomain(p *party.Party) *PartyModel {
	m := &PartyModel{}
	m.FromDomain(p)
	return m
}
