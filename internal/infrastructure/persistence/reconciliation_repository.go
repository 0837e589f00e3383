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

// GormReconciliationRepository implements bank.ReconciliationRepository using GORM
type GormReconciliationRepository struct {
	db *gorm.DB
}

// NewGormReconciliationRepository creates a new GormReconciliationRepository
func NewGormReconciliationRepository(db *gorm.DB) *GormReconciliationRepository {
	return &GormReconciliationRepository{db: db}
}

// FindByID finds a reconciliation by its ID
func (r *GormReconciliationRepository) FindByID(ctx context.Context, id uuid.UUID) (*bank.Reconciliation, error) {
	var model models.ReconciliationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a reconciliation
func (r *GormReconciliationRepository) Save(ctx context.Context, rec *bank.Reconciliation) error {
	model := &models.ReconciliationModel{}
	model.FromDomain(rec)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormReconciliationRepository implements ReconciliationRepository
var _ bank.ReconciliationRepository = (*GormReconciliationRepository)(nil)
