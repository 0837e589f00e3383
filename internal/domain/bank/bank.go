package bank

import (
	"time"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a bank account whose statements get reconciled against book payments
type Account struct {
	shared.BaseEntity
	Name          string
	AccountNumber string
	Currency      valueobject.Currency
	LedgerCode    string // GL account this bank account posts to
}

// NewAccount creates a bank account
func NewAccount(name, accountNumber string, currency valueobject.Currency, ledgerCode string) (*Account, error) {
	if name == "" || accountNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bank account needs a name and number")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid currency %q", currency)
	}
	return &Account{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		AccountNumber: accountNumber,
		Currency:      currency,
		LedgerCode:    ledgerCode,
	}, nil
}

// Statement is one imported bank statement file
type Statement struct {
	shared.BaseEntity
	BankAccountID  uuid.UUID
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ClosingBalance decimal.Decimal
}

// NewStatement records an imported statement file
func NewStatement(bankAccountID uuid.UUID, periodStart, periodEnd time.Time,
	closingBalance decimal.Decimal) (*Statement, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Statement needs a bank account")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Statement period end is before its start")
	}
	return &Statement{
		BaseEntity:     shared.NewBaseEntity(),
		BankAccountID:  bankAccountID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		ClosingBalance: closingBalance,
	}, nil
}

// Transaction is one imported statement line. Exactly one of Debit/Credit
// is positive, seen from the bank account's perspective.
type Transaction struct {
	shared.BaseEntity
	BankAccountID   uuid.UUID
	StatementID     uuid.UUID
	TransactionDate time.Time
	Description     string
	Debit           decimal.Decimal // money leaving the bank account
	Credit          decimal.Decimal // money entering the bank account
	Matched         bool
	PaymentID       *uuid.UUID
}

// NewTransaction records one statement line. Exactly one of debit/credit
// must be positive.
func NewTransaction(bankAccountID, statementID uuid.UUID, date time.Time,
	description string, debit, credit decimal.Decimal) (*Transaction, error) {
	if debit.IsNegative() || credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Statement line amounts cannot be negative")
	}
	if debit.IsPositive() == credit.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Statement line must have exactly one of debit or credit")
	}
	return &Transaction{
		BaseEntity:      shared.NewBaseEntity(),
		BankAccountID:   bankAccountID,
		StatementID:     statementID,
		TransactionDate: date,
		Description:     description,
		Debit:           debit,
		Credit:          credit,
	}, nil
}

// Amount returns the single-sided amount of the line
func (t *Transaction) Amount() decimal.Decimal {
	if t.Credit.IsPositive() {
		return t.Credit
	}
	return t.Debit
}

// IsInflow reports whether money entered the bank account
func (t *Transaction) IsInflow() bool {
	return t.Credit.IsPositive()
}

// MarkMatched links the line to a book payment. Matching is one-way: a
// matched line is never automatically un-matched.
func (t *Transaction) MarkMatched(paymentID uuid.UUID) error {
	if t.Matched {
		return shared.NewDomainError("INVALID_STATE", "Bank transaction is already matched")
	}
	t.Matched = true
	id := paymentID
	t.PaymentID = &id
	return nil
}

// PaymentDirection says whether a book payment moves money in or out
type PaymentDirection string

const (
	PaymentIn  PaymentDirection = "IN"
	PaymentOut PaymentDirection = "OUT"
)

// IsValid checks if the direction is valid
func (d PaymentDirection) IsValid() bool {
	return d == PaymentIn || d == PaymentOut
}

// BookPayment is the internal payment record the matcher pairs statement
// lines against. It mirrors the payment row owned by the business layer,
// scoped down to what reconciliation needs.
type BookPayment struct {
	shared.BaseEntity
	BankAccountID uuid.UUID
	Direction     PaymentDirection
	Amount        decimal.Decimal
	PaymentDate   time.Time
	PartyKind     party.Kind
	PartyID       uuid.UUID
	Matched       bool
}

// MarkMatched flags the payment as reconciled
func (p *BookPayment) MarkMatched() error {
	if p.Matched {
		return shared.NewDomainError("INVALID_STATE", "Payment is already matched")
	}
	p.Matched = true
	return nil
}
