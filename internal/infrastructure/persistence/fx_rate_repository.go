package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/fx"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFxRateRepository implements fx.RateRepository using GORM
type GormFxRateRepository struct {
	db *gorm.DB
}

// NewGormFxRateRepository creates a new GormFxRateRepository
func NewGormFxRateRepository(db *gorm.DB) *GormFxRateRepository {
	return &GormFxRateRepository{db: db}
}

// FindEffective returns the rate for the exact date, or the most recent
// rate before it. shared.ErrNotFound when no prior rate exists.
func (r *GormFxRateRepository) FindEffective(ctx context.Context, base, quote valueobject.Currency,
	asOf time.Time) (*fx.Rate, error) {
	day := asOf.Truncate(24 * time.Hour)

	var model models.FxRateModel
	if err := r.db.WithContext(ctx).
		Where("base = ? AND quote = ? AND as_of <= ?", base, quote, day).
		Order("as_of desc").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the rate for its (base, quote, as_of) day
func (r *GormFxRateRepository) Save(ctx context.Context, rate *fx.Rate) error {
	model := &models.FxRateModel{}
	model.FromDomain(rate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "base"}, {Name: "quote"}, {Name: "as_of"}},
			DoUpdates: clause.AssignmentColumns([]string{"rate", "updated_at"}),
		}).
		Create(model).Error
}

// Ensure GormFxRateRepository implements RateRepository
var _ fx.RateRepository = (*GormFxRateRepository)(nil)
