package party

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Kind distinguishes the counterparty kinds whose balances the ledger tracks
type Kind string

const (
	KindCustomer Kind = "CUSTOMER"
	KindSupplier Kind = "SUPPLIER"
	KindPartner  Kind = "PARTNER"
)

// IsValid checks if the kind is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindCustomer, KindSupplier, KindPartner:
		return true
	}
	return false
}

// String returns the string representation
func (k Kind) String() string {
	return string(k)
}

// ParseKind maps an external string to a Kind. Unknown values fail loudly.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", shared.NewDomainErrorf("INVALID_INPUT", "unknown party kind %q", s)
	}
	return k, nil
}

// Category names one sub-ledger contributing to a party's balance
type Category string

const (
	CategorySales             Category = "sales"
	CategoryServices          Category = "services"
	CategoryPreordersPrepaid  Category = "preorders_prepaid"
	CategoryPaymentsIn        Category = "payments_in"
	CategoryPaymentsOut       Category = "payments_out"
	CategoryExpenses          Category = "expenses"
	CategoryReturns           Category = "returns"
	CategoryReturnedChecksIn  Category = "returned_checks_in"
	CategoryReturnedChecksOut Category = "returned_checks_out"
	CategoryExchangeItems     Category = "exchange_items"
)

// Categories lists every sub-ledger category in a stable order
func Categories() []Category {
	return []Category{
		CategorySales, CategoryServices, CategoryPreordersPrepaid,
		CategoryPaymentsIn, CategoryPaymentsOut, CategoryExpenses,
		CategoryReturns, CategoryReturnedChecksIn, CategoryReturnedChecksOut,
		CategoryExchangeItems,
	}
}

// Breakdown is the result of one balance aggregation: every sub-balance in
// the base currency plus the single authoritative total.
type Breakdown struct {
	Opening        decimal.Decimal              `json:"opening_balance"`
	SubBalances    map[Category]decimal.Decimal `json:"sub_balances"`
	CurrentBalance decimal.Decimal              `json:"current_balance"`
	Approximate    bool                         `json:"approximate"` // some contribution used an unresolved FX rate
	ComputedAt     time.Time                    `json:"computed_at"`
}

// Get returns a sub-balance, zero when absent
func (b Breakdown) Get(c Category) decimal.Decimal {
	if v, ok := b.SubBalances[c]; ok {
		return v
	}
	return decimal.Zero
}

// Party is a customer/supplier/partner-like counterparty carrying
// materialized balance fields. The fields are recomputed by the balance
// aggregator, never hand-edited.
type Party struct {
	shared.BaseAggregateRoot
	Kind           Kind
	Name           string
	Currency       valueobject.Currency // base currency all balances are stored in
	OpeningBalance decimal.Decimal
	SubBalances    map[Category]decimal.Decimal
	CurrentBalance decimal.Decimal
	Approximate    bool
	BalanceAsOf    *time.Time
}

// NewParty creates a counterparty with zeroed balances
func NewParty(kind Kind, name string, opening decimal.Decimal) (*Party, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid party kind %q", kind)
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Party name cannot be empty")
	}
	p := &Party{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Name:              name,
		Currency:          valueobject.DefaultCurrency,
		OpeningBalance:    opening,
		SubBalances:       zeroSubBalances(),
		CurrentBalance:    opening,
	}
	return p, nil
}

func zeroSubBalances() map[Category]decimal.Decimal {
	m := make(map[Category]decimal.Decimal, len(Categories()))
	for _, c := range Categories() {
		m[c] = decimal.Zero
	}
	return m
}

// SetOpeningBalance changes the opening balance. The caller is expected to
// publish an OpeningBalanceChanged event afterwards so the posting engine
// re-posts the opening batch and the aggregator recomputes.
func (p *Party) SetOpeningBalance(amount decimal.Decimal) {
	p.OpeningBalance = amount
	p.IncrementVersion()
}

// ApplyBreakdown writes a freshly computed breakdown into the materialized
// balance fields. The opening balance is not touched: it feeds the
// computation, it is not a result of it.
func (p *Party) ApplyBreakdown(b Breakdown) {
	p.SubBalances = make(map[Category]decimal.Decimal, len(b.SubBalances))
	for _, c := range Categories() {
		p.SubBalances[c] = b.Get(c)
	}
	p.CurrentBalance = b.CurrentBalance
	p.Approximate = b.Approximate
	asOf := b.ComputedAt
	p.BalanceAsOf = &asOf
	p.IncrementVersion()
}

// BreakdownView returns the stored materialized breakdown
func (p *Party) BreakdownView() Breakdown {
	b := Breakdown{
		Opening:        p.OpeningBalance,
		SubBalances:    make(map[Category]decimal.Decimal, len(p.SubBalances)),
		CurrentBalance: p.CurrentBalance,
		Approximate:    p.Approximate,
	}
	for _, c := range Categories() {
		if v, ok := p.SubBalances[c]; ok {
			b.SubBalances[c] = v
		} else {
			b.SubBalances[c] = decimal.Zero
		}
	}
	if p.BalanceAsOf != nil {
		b.ComputedAt = *p.BalanceAsOf
	}
	return b
}
