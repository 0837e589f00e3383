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

// GormBankAccountRepository implements bank.AccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by its ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*bank.Account, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, a *bank.Account) error {
	model := &models.BankAccountModel{}
	model.FromDomain(a)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormBankAccountRepository implements AccountRepository
var _ bank.AccountRepository = (*GormBankAccountRepository)(nil)
