// Package source is the boundary with the business-CRUD layer. The layer
// owns sales, payments, expenses, shipments and services; the ledger core
// only sees lifecycle events carrying ids, and re-reads authoritative
// snapshots through the Reader port at posting time. Event payloads are
// never trusted for amounts.
package source

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocStatus is the lifecycle status of a source document
type DocStatus string

const (
	DocStatusDraft     DocStatus = "DRAFT"
	DocStatusConfirmed DocStatus = "CONFIRMED"
	DocStatusCompleted DocStatus = "COMPLETED"
	DocStatusArrived   DocStatus = "ARRIVED"
	DocStatusCancelled DocStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s DocStatus) IsValid() bool {
	switch s {
	case DocStatusDraft, DocStatusConfirmed, DocStatusCompleted, DocStatusArrived, DocStatusCancelled:
		return true
	}
	return false
}

// WarehouseKind carries the fulfilment semantics that decide how sale
// revenue is split across legs
type WarehouseKind string

const (
	WarehouseCompany  WarehouseKind = "COMPANY"
	WarehousePartner  WarehouseKind = "PARTNER"
	WarehouseExchange WarehouseKind = "EXCHANGE"
)

// IsValid checks if the warehouse kind is valid
func (k WarehouseKind) IsValid() bool {
	switch k {
	case WarehouseCompany, WarehousePartner, WarehouseExchange:
		return true
	}
	return false
}

// PaymentMethod is a closed enum over external payment-method strings
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "CASH"
	MethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	MethodCheck        PaymentMethod = "CHECK"
	MethodCredit       PaymentMethod = "CREDIT" // on account, settles the payable later
)

// ParsePaymentMethod maps an external string to a PaymentMethod.
// Unknown values fail loudly rather than defaulting.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	switch m {
	case MethodCash, MethodBankTransfer, MethodCheck, MethodCredit:
		return m, nil
	}
	return "", shared.NewDomainErrorf("INVALID_INPUT", "unknown payment method %q", s)
}

// PaymentDirection says whether money came in or went out
type PaymentDirection string

const (
	PaymentDirectionIn  PaymentDirection = "IN"
	PaymentDirectionOut PaymentDirection = "OUT"
)

// IsValid checks if the direction is valid
func (d PaymentDirection) IsValid() bool {
	return d == PaymentDirectionIn || d == PaymentDirectionOut
}

// ExpenseCategory maps an expense to the 5xxx account it debits
type ExpenseCategory string

const (
	ExpenseGeneral ExpenseCategory = "GENERAL"
	ExpenseFreight ExpenseCategory = "FREIGHT"
	ExpenseSalary  ExpenseCategory = "SALARY"
	ExpenseRent    ExpenseCategory = "RENT"
)

// SaleSnapshot is the authoritative state of a sale at posting time
type SaleSnapshot struct {
	ID            uuid.UUID
	Number        string
	Status        DocStatus
	CustomerID    uuid.UUID
	Total         decimal.Decimal
	Currency      valueobject.Currency
	EffectiveDate time.Time
	Warehouse     WarehouseKind
	PartnerID     *uuid.UUID      // set when Warehouse is PARTNER
	PartnerShare  decimal.Decimal // fraction of revenue owed to the partner, 0..1
	SupplierID    *uuid.UUID      // set when Warehouse is EXCHANGE
	CostTotal     *decimal.Decimal
}

// PaymentSnapshot is the authoritative state of a payment at posting time
type PaymentSnapshot struct {
	ID            uuid.UUID
	Number        string
	Status        DocStatus
	Direction     PaymentDirection
	PartyKind     party.Kind
	PartyID       uuid.UUID
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	EffectiveDate time.Time
	Method        PaymentMethod
	BankAccountID *uuid.UUID
}

// ExpenseSnapshot is the authoritative state of an expense at posting time
type ExpenseSnapshot struct {
	ID            uuid.UUID
	Number        string
	Status        DocStatus
	Category      ExpenseCategory
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	EffectiveDate time.Time
	Method        PaymentMethod
	SupplierID    *uuid.UUID
}

// ShipmentSnapshot is the authoritative state of an arrived shipment
type ShipmentSnapshot struct {
	ID            uuid.UUID
	Number        string
	Status        DocStatus
	SupplierID    uuid.UUID
	GoodsCost     decimal.Decimal
	Freight       decimal.Decimal
	Customs       decimal.Decimal
	Insurance     decimal.Decimal
	Currency      valueobject.Currency
	EffectiveDate time.Time
}

// LandedCost returns goods price plus apportioned freight/customs/insurance
func (s ShipmentSnapshot) LandedCost() decimal.Decimal {
	return s.GoodsCost.Add(s.Freight).Add(s.Customs).Add(s.Insurance)
}

// ServiceSnapshot is the authoritative state of a completed service job
type ServiceSnapshot struct {
	ID            uuid.UUID
	Number        string
	Status        DocStatus
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	EffectiveDate time.Time
}

// OpeningSnapshot is a party's opening balance. Positive means the party
// owes us; negative means we owe the party.
type OpeningSnapshot struct {
	PartyKind     party.Kind
	PartyID       uuid.UUID
	Amount        decimal.Decimal
	Currency      valueobject.Currency
	EffectiveDate time.Time
}

// Reader re-reads authoritative business-object state. Implementations
// query the business layer's own tables; the ledger core never caches
// these reads across events.
type Reader interface {
	Sale(ctx context.Context, id uuid.UUID) (*SaleSnapshot, error)
	Payment(ctx context.Context, id uuid.UUID) (*PaymentSnapshot, error)
	Expense(ctx context.Context, id uuid.UUID) (*ExpenseSnapshot, error)
	Shipment(ctx context.Context, id uuid.UUID) (*ShipmentSnapshot, error)
	Service(ctx context.Context, id uuid.UUID) (*ServiceSnapshot, error)
	OpeningBalance(ctx context.Context, kind party.Kind, partyID uuid.UUID) (*OpeningSnapshot, error)
}
