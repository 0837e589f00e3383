package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for a chart-of-accounts entry.
type AccountModel struct {
	BaseModel
	Code   string             `gorm:"type:varchar(10);not null;uniqueIndex"`
	Name   string             `gorm:"type:varchar(100);not null"`
	Type   ledger.AccountType `gorm:"type:varchar(20);not null"`
	Active bool               `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *ledger.Account {
	return &ledger.Account{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Type:       m.Type,
		Active:     m.Active,
	}
}

// FromDomain populates the persistence model from a domain Account.
func (m *AccountModel) FromDomain(a *ledger.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Code = a.Code
	m.Name = a.Name
	m.Type = a.Type
	m.Active = a.Active
}

// GLBatchModel is the persistence model for the GLBatch aggregate root.
// A partial unique index in the migrations enforces at most one non-void
// batch per (source_type, source_id, purpose).
type GLBatchModel struct {
	AggregateModel
	PostedAt           time.Time            `gorm:"not null;index"`
	SourceType         ledger.SourceType    `gorm:"type:varchar(30);not null;index:idx_gl_batches_source,priority:1"`
	SourceID           uuid.UUID            `gorm:"type:uuid;not null;index:idx_gl_batches_source,priority:2"`
	Purpose            ledger.Purpose       `gorm:"type:varchar(30);not null;index:idx_gl_batches_source,priority:3"`
	Currency           valueobject.Currency `gorm:"type:varchar(3);not null"`
	Memo               string               `gorm:"type:varchar(500)"`
	EntityType         string               `gorm:"type:varchar(20);index:idx_gl_batches_entity,priority:1"`
	EntityID           *uuid.UUID           `gorm:"type:uuid;index:idx_gl_batches_entity,priority:2"`
	Status             ledger.BatchStatus   `gorm:"type:varchar(10);not null;default:'POSTED';index"`
	CurrencyUnresolved bool                 `gorm:"not null;default:false"`
	Entries            []GLEntryModel       `gorm:"foreignKey:BatchID;references:ID"`
}

// TableName returns the table name for GORM
func (GLBatchModel) TableName() string {
	return "gl_batches"
}

// GLEntryModel is one debit or credit line of a batch.
type GLEntryModel struct {
	BatchID     uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Line        int             `gorm:"primaryKey;autoIncrement:false"`
	AccountCode string          `gorm:"type:varchar(10);not null;index"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Ref         string          `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (GLEntryModel) TableName() string {
	return "gl_entries"
}

// ToDomain converts the persistence model to a domain GLBatch.
func (m *GLBatchModel) ToDomain() *ledger.GLBatch {
	entries := make([]ledger.GLEntry, len(m.Entries))
	for i, e := range m.Entries {
		entries[i] = ledger.GLEntry{
			AccountCode: e.AccountCode,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Ref:         e.Ref,
		}
	}
	return &ledger.GLBatch{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		PostedAt:           m.PostedAt,
		SourceType:         m.SourceType,
		SourceID:           m.SourceID,
		Purpose:            m.Purpose,
		Currency:           m.Currency,
		Memo:               m.Memo,
		EntityType:         m.EntityType,
		EntityID:           m.EntityID,
		Status:             m.Status,
		CurrencyUnresolved: m.CurrencyUnresolved,
		Entries:            entries,
	}
}

// FromDomain populates the persistence model from a domain GLBatch.
func (m *GLBatchModel) FromDomain(b *ledger.GLBatch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.PostedAt = b.PostedAt
	m.SourceType = b.SourceType
	m.SourceID = b.SourceID
	m.Purpose = b.Purpose
	m.Currency = b.Currency
	m.Memo = b.Memo
	m.EntityType = b.EntityType
	m.EntityID = b.EntityID
	m.Status = b.Status
	m.CurrencyUnresolved = b.CurrencyUnresolved
	m.Entries = make([]GLEntryModel, len(b.Entries))
	for i, e := range b.Entries {
		m.Entries[i] = GLEntryModel{
			BatchID:     b.ID,
			Line:        i + 1,
			AccountCode: e.AccountCode,
			Debit:       e.Debit,
			Credit:      e.Credit,
			Ref:         e.Ref,
		}
	}
}

// GLBatchModelFromDomain creates a new persistence model from a domain GLBatch.
func GLBatchModelFromDomain(b *ledger.GLBatch) *GLBatchModel {
	m := &GLBatchModel{}
	m.FromDomain(b)
	return m
}
