package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByCode finds an account by its code
func (r *GormAccountRepository) FindByCode(ctx context.Context, code string) (*ledger.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns the whole chart of accounts ordered by code
func (r *GormAccountRepository) FindAll(ctx context.Context) ([]ledger.Account, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).Order("code asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	accounts := make([]ledger.Account, len(rows))
	for i := range rows {
		accounts[i] = *rows[i].ToDomain()
	}
	return accounts, nil
}

// Save inserts or updates an account, keyed by code
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.Account) error {
	model := &models.AccountModel{}
	model.FromDomain(account)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "type", "active", "updated_at"}),
		}).
		Create(model).Error
}

// IsReferenced reports whether any posted entry references the account code
func (r *GormAccountRepository) IsReferenced(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GLEntryModel{}).
		Joins("JOIN gl_batches ON gl_batches.id = gl_entries.batch_id").
		Where("gl_entries.account_code = ? AND gl_batches.status = ?", code, ledger.BatchStatusPosted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SeedDefaultChart inserts any missing accounts from the built-in chart.
// Existing rows are left untouched.
func (r *GormAccountRepository) SeedDefaultChart(ctx context.Context) error {
	for _, account := range ledger.DefaultChart() {
		a := account
		model := &models.AccountModel{}
		model.FromDomain(&a)
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoNothing: true,
			}).
			Create(model).Error; err != nil {
			return err
		}
	}
	return nil
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
