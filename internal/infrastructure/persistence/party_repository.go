package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPartyRepository implements party.Repository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a counterparty by kind and id
func (r *GormPartyRepository) FindByID(ctx context.Context, kind party.Kind, id uuid.UUID) (*party.Party, error) {
	var model models.PartyModel
	if err := r.db.WithContext(ctx).
		Where("kind = ? AND id = ?", kind, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts or updates a counterparty
func (r *GormPartyRepository) Save(ctx context.Context, p *party.Party) error {
	model := models.PartyModelFromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveBalances writes a freshly computed breakdown into the materialized
// balance columns. The opening balance column is left alone: it is the
// recompute's input, owned by party creation and edits. The party row is
// locked first and the write is rejected with ErrConcurrencyConflict when
// the version moved past observedVersion, so a recompute that read its
// sub-ledgers before a concurrent writer landed cannot clobber the newer
// balance.
func (r *GormPartyRepository) SaveBalances(ctx context.Context, kind party.Kind, id uuid.UUID, b party.Breakdown, observedVersion int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.PartyModel
		if err := lockForUpdate(tx).
			Where("kind = ? AND id = ?", kind, id).
			First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		if model.Version != observedVersion {
			return shared.ErrConcurrencyConflict
		}

		sub := make(models.SubBalances, len(b.SubBalances))
		for _, c := range party.Categories() {
			sub[c] = b.Get(c)
		}

		return tx.Model(&models.PartyModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]interface{}{
				"sub_balances":    sub,
				"current_balance": b.CurrentBalance,
				"approximate":     b.Approximate,
				"balance_as_of":   b.ComputedAt,
				"version":         model.Version + 1,
				"updated_at":      time.Now(),
			}).Error
	})
}

// Ensure GormPartyRepository implements Repository
var _ party.Repository = (*GormPartyRepository)(nil)
