package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckModel is the persistence model for the Check aggregate root.
type CheckModel struct {
	AggregateModel
	Number    string               `gorm:"type:varchar(50);not null;index"`
	Direction check.Direction      `gorm:"type:varchar(10);not null;index"`
	Status    check.Status         `gorm:"type:varchar(10);not null;index"`
	Amount    decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency  valueobject.Currency `gorm:"type:varchar(3);not null"`
	PartyKind party.Kind           `gorm:"type:varchar(20);not null;index:idx_checks_party,priority:1"`
	PartyID   uuid.UUID            `gorm:"type:uuid;not null;index:idx_checks_party,priority:2"`
	DueDate   time.Time            `gorm:"index"`
	BankName  string               `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (CheckModel) TableName() string {
	return "checks"
}

// ToDomain converts the persistence model to a domain Check.
func (m *CheckModel) ToDomain() *check.Check {
	return &check.Check{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		Number:    m.Number,
		Direction: m.Direction,
		Status:    m.Status,
		Amount:    m.Amount,
		Currency:  m.Currency,
		PartyKind: m.PartyKind,
		PartyID:   m.PartyID,
		DueDate:   m.DueDate,
		BankName:  m.BankName,
	}
}

// FromDomain populates the persistence model from a domain Check.
func (m *CheckModel) FromDomain(c *check.Check) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Number = c.Number
	m.Direction = c.Direction
	m.Status = c.Status
	m.Amount = c.Amount
	m.Currency = c.Currency
	m.PartyKind = c.PartyKind
	m.PartyID = c.PartyID
	m.DueDate = c.DueDate
	m.BankName = c.BankName
}

// CheckModelFromDomain creates a new persistence model from a domain Check.
func CheckModelFromDomain(c *check.Check) *CheckModel {
	m := &CheckModel{}
	m.FromDomain(c)
	return m
}
