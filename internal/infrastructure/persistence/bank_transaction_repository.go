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

// GormBankTransactionRepository implements bank.TransactionRepository using GORM
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new GormBankTransactionRepository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

// FindByID finds a statement line by its ID
func (r *GormBankTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*bank.Transaction, error) {
	var model models.BankTransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindUnmatched lists unmatched statement lines of a bank account in date order
func (r *GormBankTransactionRepository) FindUnmatched(ctx context.Context, bankAccountID uuid.UUID) ([]*bank.Transaction, error) {
	var rows []models.BankTransactionModel
	if err := r.db.WithContext(ctx).
		Where("bank_account_id = ? AND matched = ?", bankAccountID, false).
		Order("transaction_date asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	txns := make([]*bank.Transaction, len(rows))
	for i := range rows {
		txns[i] = rows[i].ToDomain()
	}
	return txns, nil
}

// SaveAll inserts a batch of imported statement lines
func (r *GormBankTransactionRepository) SaveAll(ctx context.Context, txns []*bank.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	rows := make([]models.BankTransactionModel, len(txns))
	for i, t := range txns {
		rows[i].FromDomain(t)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// Save updates a single statement line
func (r *GormBankTransactionRepository) Save(ctx context.Context, t *bank.Transaction) error {
	model := &models.BankTransactionModel{}
	model.FromDomain(t)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormBankTransactionRepository implements TransactionRepository
var _ bank.TransactionRepository = (*GormBankTransactionRepository)(nil)
