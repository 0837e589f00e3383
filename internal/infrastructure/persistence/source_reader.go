package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSourceReader implements source.Reader over the business layer's own
// tables. Every method re-reads the current row; nothing is cached, so the
// posting engine always sees the authoritative state.
type GormSourceReader struct {
	db *gorm.DB
}

// NewGormSourceReader creates a new GormSourceReader
func NewGormSourceReader(db *gorm.DB) *GormSourceReader {
	return &GormSourceReader{db: db}
}

// Sale reads the current state of a sale
func (r *GormSourceReader) Sale(ctx context.Context, id uuid.UUID) (*source.SaleSnapshot, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToSnapshot(), nil
}

// Payment reads the current state of a payment
func (r *GormSourceReader) Payment(ctx context.Context, id uuid.UUID) (*source.PaymentSnapshot, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToSnapshot(), nil
}

// Expense reads the current state of an expense
func (r *GormSourceReader) Expense(ctx context.Context, id uuid.UUID) (*source.ExpenseSnapshot, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToSnapshot(), nil
}

// Shipment reads the current state of a shipment
func (r *GormSourceReader) Shipment(ctx context.Context, id uuid.UUID) (*source.ShipmentSnapshot, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToSnapshot(), nil
}

// Service reads the current state of a service job
func (r *GormSourceReader) Service(ctx context.Context, id uuid.UUID) (*source.ServiceSnapshot, error) {
	var model models.ServiceJobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToSnapshot(), nil
}

// OpeningBalance reads a party's opening balance off the party row itself
func (r *GormSourceReader) OpeningBalance(ctx context.Context, kind party.Kind, partyID uuid.UUID) (*source.OpeningSnapshot, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, partyID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &source.OpeningSnapshot{
		PartyKind:     model.Kind,
		PartyID:       model.ID,
		Amount:        model.OpeningBalance,
		Currency:      model.Currency,
		EffectiveDate: model.CreatedAt,
	}, nil
}

// Ensure GormSourceReader implements Reader
var _ source.Reader = (*GormSourceReader)(nil)
