package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/bank"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBookPaymentRepository implements bank.BookPaymentRepository using GORM
type GormBookPaymentRepository struct {
	db *gorm.DB
}

// NewGormBookPaymentRepository creates a new GormBookPaymentRepository
func NewGormBookPaymentRepository(db *gorm.DB) *GormBookPaymentRepository {
	return &GormBookPaymentRepository{db: db}
}

// FindByID finds a book payment by its ID
func (r *GormBookPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*bank.BookPayment, error) {
	var model models.BookPaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnmatched lists unmatched book payments of a bank account in date order
func (r *GormBookPaymentRepository) FindUnmatched(ctx context.Context, bankAccountID uuid.UUID) ([]*bank.BookPayment, error) {
	var rows []models.BookPaymentModel
	if err := r.db.WithContext(ctx).
		Where("bank_account_id = ? AND matched = ?", bankAccountID, false).
		Order("payment_date asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]*bank.BookPayment, len(rows))
	for i := range rows {
		payments[i] = rows[i].ToDomain()
	}
	return payments, nil
}

// Save inserts or updates a book payment
func (r *GormBookPaymentRepository) Save(ctx context.Context, p *bank.BookPayment) error {
	model := &models.BookPaymentModel{}
	model.FromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormBookPaymentRepository implements BookPaymentRepository
var _ bank.BookPaymentRepository = (*GormBookPaymentRepository)(nil)
