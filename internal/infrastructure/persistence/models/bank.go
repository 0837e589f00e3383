package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/bank"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankAccountModel is the persistence model for a bank account.
type BankAccountModel struct {
	BaseModel
	Name          string               `gorm:"type:varchar(100);not null"`
	AccountNumber string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	LedgerCode    string               `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain bank Account.
func (m *BankAccountModel) ToDomain() *bank.Account {
	return &bank.Account{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		AccountNumber: m.AccountNumber,
		Currency:      m.Currency,
		LedgerCode:    m.LedgerCode,
	}
}

// FromDomain populates the persistence model from a domain bank Account.
func (m *BankAccountModel) FromDomain(a *bank.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Name = a.Name
	m.AccountNumber = a.AccountNumber
	m.Currency = a.Currency
	m.LedgerCode = a.LedgerCode
}

// BankStatementModel is the persistence model for an imported statement.
type BankStatementModel struct {
	BaseModel
	BankAccountID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PeriodStart    time.Time       `gorm:"not null"`
	PeriodEnd      time.Time       `gorm:"not null"`
	ClosingBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (BankStatementModel) TableName() string {
	return "bank_statements"
}

// ToDomain converts the persistence model to a domain Statement.
func (m *BankStatementModel) ToDomain() *bank.Statement {
	return &bank.Statement{
		BaseEntity:     m.BaseModel.ToDomain(),
		BankAccountID:  m.BankAccountID,
		PeriodStart:    m.PeriodStart,
		PeriodEnd:      m.PeriodEnd,
		ClosingBalance: m.ClosingBalance,
	}
}

// FromDomain populates the persistence model from a domain Statement.
func (m *BankStatementModel) FromDomain(s *bank.Statement) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.BankAccountID = s.BankAccountID
	m.PeriodStart = s.PeriodStart
	m.PeriodEnd = s.PeriodEnd
	m.ClosingBalance = s.ClosingBalance
}

// BankTransactionModel is the persistence model for one statement line.
type BankTransactionModel struct {
	BaseModel
	BankAccountID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_bank_txns_unmatched,priority:1"`
	StatementID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	TransactionDate time.Time       `gorm:"not null;index"`
	Description     string          `gorm:"type:varchar(500)"`
	Debit           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Matched         bool            `gorm:"not null;default:false;index:idx_bank_txns_unmatched,priority:2"`
	PaymentID       *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the persistence model to a domain Transaction.
func (m *BankTransactionModel) ToDomain() *bank.Transaction {
	return &bank.Transaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		BankAccountID:   m.BankAccountID,
		StatementID:     m.StatementID,
		TransactionDate: m.TransactionDate,
		Description:     m.Description,
		Debit:           m.Debit,
		Credit:          m.Credit,
		Matched:         m.Matched,
		PaymentID:       m.PaymentID,
	}
}

// FromDomain populates the persistence model from a domain Transaction.
func (m *BankTransactionModel) FromDomain(t *bank.Transaction) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.BankAccountID = t.BankAccountID
	m.StatementID = t.StatementID
	m.TransactionDate = t.TransactionDate
	m.Description = t.Description
	m.Debit = t.Debit
	m.Credit = t.Credit
	m.Matched = t.Matched
	m.PaymentID = t.PaymentID
}

// BookPaymentModel is the persistence model for the internal payment side
// of reconciliation.
type BookPaymentModel struct {
	BaseModel
	BankAccountID uuid.UUID             `gorm:"type:uuid;not null;index:idx_book_payments_unmatched,priority:1"`
	Direction     bank.PaymentDirection `gorm:"type:varchar(5);not null"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PaymentDate   time.Time             `gorm:"not null;index"`
	PartyKind     party.Kind            `gorm:"type:varchar(20);not null"`
	PartyID       uuid.UUID             `gorm:"type:uuid;not null"`
	Matched       bool                  `gorm:"not null;default:false;index:idx_book_payments_unmatched,priority:2"`
}

// TableName returns the table name for GORM
func (BookPaymentModel) TableName() string {
	return "book_payments"
}

// ToDomain converts the persistence model to a domain BookPayment.
func (m *BookPaymentModel) ToDomain() *bank.BookPayment {
	return &bank.BookPayment{
		BaseEntity:    m.BaseModel.ToDomain(),
		BankAccountID: m.BankAccountID,
		Direction:     m.Direction,
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		PartyKind:     m.PartyKind,
		PartyID:       m.PartyID,
		Matched:       m.Matched,
	}
}

// FromDomain populates the persistence model from a domain BookPayment.
func (m *BookPaymentModel) FromDomain(p *bank.BookPayment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.BankAccountID = p.BankAccountID
	m.Direction = p.Direction
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.PartyKind = p.PartyKind
	m.PartyID = p.PartyID
	m.Matched = p.Matched
}

// ReconciliationModel is the persistence model for the Reconciliation
// aggregate root.
type ReconciliationModel struct {
	AggregateModel
	BankAccountID uuid.UUID                 `gorm:"type:uuid;not null;index"`
	PeriodStart   time.Time                 `gorm:"not null"`
	PeriodEnd     time.Time                 `gorm:"not null"`
	BookBalance   decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	BankBalance   decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	Status        bank.ReconciliationStatus `gorm:"type:varchar(10);not null;default:'DRAFT';index"`
	ConfirmedBy   *uuid.UUID                `gorm:"type:uuid"`
	ConfirmedAt   *time.Time
}

// TableName returns the table name for GORM
func (ReconciliationModel) TableName() string {
	return "bank_reconciliations"
}

// ToDomain converts the persistence model to a domain Reconciliation.
func (m *ReconciliationModel) ToDomain() *bank.Reconciliation {
	return &bank.Reconciliation{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		BankAccountID: m.BankAccountID,
		PeriodStart:   m.PeriodStart,
		PeriodEnd:     m.PeriodEnd,
		BookBalance:   m.BookBalance,
		BankBalance:   m.BankBalance,
		Status:        m.Status,
		ConfirmedBy:   m.ConfirmedBy,
		ConfirmedAt:   m.ConfirmedAt,
	}
}

// FromDomain populates the persistence model from a domain Reconciliation.
func (m *ReconciliationModel) FromDomain(r *bank.Reconciliation) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.BankAccountID = r.BankAccountID
	m.PeriodStart = r.PeriodStart
	m.PeriodEnd = r.PeriodEnd
	m.BookBalance = r.BookBalance
	m.BankBalance = r.BankBalance
	m.Status = r.Status
	m.ConfirmedBy = r.ConfirmedBy
	m.ConfirmedAt = r.ConfirmedAt
}
