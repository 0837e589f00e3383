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

// GormBankStatementRepository implements bank.StatementRepository using GORM
type GormBankStatementRepository struct {
	db *gorm.DB
}

// NewGormBankStatementRepository creates a new GormBankStatementRepository
func NewGormBankStatementRepository(db *gorm.DB) *GormBankStatementRepository {
	return &GormBankStatementRepository{db: db}
}

// FindByID finds a statement by its ID
func (r *GormBankStatementRepository) FindByID(ctx context.Context, id uuid.UUID) (*bank.Statement, error) {
	var model models.BankStatementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a statement
func (r *GormBankStatementRepository) Save(ctx context.Context, s *bank.Statement) error {
	model := &models.BankStatementModel{}
	model.FromDomain(s)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormBankStatementRepository implements StatementRepository
var _ bank.StatementRepository = (*GormBankStatementRepository)(nil)
