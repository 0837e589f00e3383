package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCheckRepository implements check.Repository using GORM
type GormCheckRepository struct {
	db *gorm.DB
}

// NewGormCheckRepository creates a new GormCheckRepository
func NewGormCheckRepository(db *gorm.DB) *GormCheckRepository {
	return &GormCheckRepository{db: db}
}

// FindByID finds a check by its ID
func (r *GormCheckRepository) FindByID(ctx context.Context, id uuid.UUID) (*check.Check, error) {
	var model models.CheckModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a check. Updates are guarded by the version
// column; a stale write fails instead of overwriting a newer transition.
func (r *GormCheckRepository) Save(ctx context.Context, c *check.Check) error {
	model := models.CheckModelFromDomain(c)

	if c.Version <= 1 {
		return r.db.WithContext(ctx).Create(model).Error
	}

	result := r.db.WithContext(ctx).
		Model(&models.CheckModel{}).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"bank_name":  model.BankName,
			"due_date":   model.DueDate,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Check was modified by another transaction")
	}
	return nil
}

// FindByParty lists a counterparty's checks, newest due date first
func (r *GormCheckRepository) FindByParty(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]check.Check, error) {
	var rows []models.CheckModel
	if err := r.db.WithContext(ctx).
		Where("party_kind = ? AND party_id = ?", kind, partyID).
		Order("due_date desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	checks := make([]check.Check, len(rows))
	for i := range rows {
		checks[i] = *rows[i].ToDomain()
	}
	return checks, nil
}

// Ensure GormCheckRepository implements Repository
var _ check.Repository = (*GormCheckRepository)(nil)
