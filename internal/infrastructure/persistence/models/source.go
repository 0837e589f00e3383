package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/source"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The models below map the business layer's own tables. The ledger core
// never writes them; the source reader and the sub-ledger reader query
// them for authoritative amounts at posting and aggregation time.

// SaleModel is the business layer's sales table.
type SaleModel struct {
	BaseModel
	Number        string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status        source.DocStatus     `gorm:"type:varchar(20);not null;index"`
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	Total         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	EffectiveDate time.Time            `gorm:"not null;index"`
	Warehouse     source.WarehouseKind `gorm:"type:varchar(20);not null"`
	PartnerID     *uuid.UUID           `gorm:"type:uuid;index"`
	PartnerShare  decimal.Decimal      `gorm:"type:decimal(5,4);not null;default:0"`
	SupplierID    *uuid.UUID           `gorm:"type:uuid;index"`
	CostTotal     *decimal.Decimal     `gorm:"type:decimal(18,4)"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToSnapshot converts the row to the posting-time snapshot.
func (m *SaleModel) ToSnapshot() *source.SaleSnapshot {
	return &source.SaleSnapshot{
		ID:            m.ID,
		Number:        m.Number,
		Status:        m.Status,
		CustomerID:    m.CustomerID,
		Total:         m.Total,
		Currency:      m.Currency,
		EffectiveDate: m.EffectiveDate,
		Warehouse:     m.Warehouse,
		PartnerID:     m.PartnerID,
		PartnerShare:  m.PartnerShare,
		SupplierID:    m.SupplierID,
		CostTotal:     m.CostTotal,
	}
}

// PaymentModel is the business layer's payments table.
type PaymentModel struct {
	BaseModel
	Number        string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status        source.DocStatus        `gorm:"type:varchar(20);not null;index"`
	Direction     source.PaymentDirection `gorm:"type:varchar(5);not null"`
	PartyKind     party.Kind              `gorm:"type:varchar(20);not null;index:idx_payments_party,priority:1"`
	PartyID       uuid.UUID               `gorm:"type:uuid;not null;index:idx_payments_party,priority:2"`
	Amount        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency    `gorm:"type:varchar(3);not null"`
	EffectiveDate time.Time               `gorm:"not null;index"`
	Method        source.PaymentMethod    `gorm:"type:varchar(20);not null"`
	BankAccountID *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToSnapshot converts the row to the posting-time snapshot.
func (m *PaymentModel) ToSnapshot() *source.PaymentSnapshot {
	return &source.PaymentSnapshot{
		ID:            m.ID,
		Number:        m.Number,
		Status:        m.Status,
		Direction:     m.Direction,
		PartyKind:     m.PartyKind,
		PartyID:       m.PartyID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		EffectiveDate: m.EffectiveDate,
		Method:        m.Method,
		BankAccountID: m.BankAccountID,
	}
}

// ExpenseModel is the business layer's expenses table.
type ExpenseModel struct {
	BaseModel
	Number        string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status        source.DocStatus       `gorm:"type:varchar(20);not null;index"`
	Category      source.ExpenseCategory `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency   `gorm:"type:varchar(3);not null"`
	EffectiveDate time.Time              `gorm:"not null;index"`
	Method        source.PaymentMethod   `gorm:"type:varchar(20);not null"`
	SupplierID    *uuid.UUID             `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToSnapshot converts the row to the posting-time snapshot.
func (m *ExpenseModel) ToSnapshot() *source.ExpenseSnapshot {
	return &source.ExpenseSnapshot{
		ID:            m.ID,
		Number:        m.Number,
		Status:        m.Status,
		Category:      m.Category,
		Amount:        m.Amount,
		Currency:      m.Currency,
		EffectiveDate: m.EffectiveDate,
		Method:        m.Method,
		SupplierID:    m.SupplierID,
	}
}

// ShipmentModel is the business layer's inbound shipments table.
type ShipmentModel struct {
	BaseModel
	Number        string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status        source.DocStatus     `gorm:"type:varchar(20);not null;index"`
	SupplierID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	GoodsCost     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Freight       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Customs       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Insurance     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	EffectiveDate time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToSnapshot converts the row to the posting-time snapshot.
func (m *ShipmentModel) ToSnapshot() *source.ShipmentSnapshot {
	return &source.ShipmentSnapshot{
		ID:            m.ID,
		Number:        m.Number,
		Status:        m.Status,
		SupplierID:    m.SupplierID,
		GoodsCost:     m.GoodsCost,
		Freight:       m.Freight,
		Customs:       m.Customs,
		Insurance:     m.Insurance,
		Currency:      m.Currency,
		EffectiveDate: m.EffectiveDate,
	}
}

// ServiceJobModel is the business layer's service jobs table.
type ServiceJobModel struct {
	BaseModel
	Number        string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status        source.DocStatus     `gorm:"type:varchar(20);not null;index"`
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	EffectiveDate time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ServiceJobModel) TableName() string {
	return "service_jobs"
}

// ToSnapshot converts the row to the posting-time snapshot.
func (m *ServiceJobModel) ToSnapshot() *source.ServiceSnapshot {
	return &source.ServiceSnapshot{
		ID:            m.ID,
		Number:        m.Number,
		Status:        m.Status,
		CustomerID:    m.CustomerID,
		Amount:        m.Amount,
		Currency:      m.Currency,
		EffectiveDate: m.EffectiveDate,
	}
}

// SaleReturnModel is the business layer's sale returns table, read only
// for the returns sub-ledger category.
type SaleReturnModel struct {
	BaseModel
	SaleID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status        source.DocStatus     `gorm:"type:varchar(20);not null;index"`
	PartyKind     party.Kind           `gorm:"type:varchar(20);not null;index:idx_sale_returns_party,priority:1"`
	PartyID       uuid.UUID            `gorm:"type:uuid;not null;index:idx_sale_returns_party,priority:2"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	EffectiveDate time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SaleReturnModel) TableName() string {
	return "sale_returns"
}

// PreorderModel is the business layer's preorders table, read only for
// the prepaid sub-ledger category.
type PreorderModel struct {
	BaseModel
	Status        source.DocStatus     `gorm:"type:varchar(20);not null;index"`
	PartyKind     party.Kind           `gorm:"type:varchar(20);not null;index:idx_preorders_party,priority:1"`
	PartyID       uuid.UUID            `gorm:"type:uuid;not null;index:idx_preorders_party,priority:2"`
	PrepaidAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	EffectiveDate time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PreorderModel) TableName() string {
	return "preorders"
}
