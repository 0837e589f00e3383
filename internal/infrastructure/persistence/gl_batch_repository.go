package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormGLBatchRepository implements ledger.GLBatchRepository using GORM
type GormGLBatchRepository struct {
	db *gorm.DB
}

// NewGormGLBatchRepository creates a new GormGLBatchRepository
func NewGormGLBatchRepository(db *gorm.DB) *GormGLBatchRepository {
	return &GormGLBatchRepository{db: db}
}

// FindByID finds a batch with its entries
func (r *GormGLBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.GLBatch, error) {
	var model models.GLBatchModel
	if err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("line asc") }).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBySource finds the non-void batch for a source document and purpose
func (r *GormGLBatchRepository) FindBySource(ctx context.Context, sourceType ledger.SourceType,
	sourceID uuid.UUID, purpose ledger.Purpose) (*ledger.GLBatch, error) {
	var model models.GLBatchModel
	if err := r.db.WithContext(ctx).
		Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("line asc") }).
		Where("source_type = ? AND source_id = ? AND purpose = ? AND status = ?",
			sourceType, sourceID, purpose, ledger.BatchStatusPosted).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpsertBySource inserts the batch, or replaces the entries and header of
// the existing non-void batch for the same (sourceType, sourceID, purpose).
// The existing row is locked for the duration of the transaction so
// concurrent re-posts of the same source serialize.
func (r *GormGLBatchRepository) UpsertBySource(ctx context.Context, batch *ledger.GLBatch) (uuid.UUID, error) {
	var batchID uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.GLBatchModel
		err := lockForUpdate(tx).
			Where("source_type = ? AND source_id = ? AND purpose = ? AND status = ?",
				batch.SourceType, batch.SourceID, batch.Purpose, ledger.BatchStatusPosted).
			First(&existing).Error

		switch {
		case err == nil:
			batchID = existing.ID
			if err := tx.Where("batch_id = ?", existing.ID).Delete(&models.GLEntryModel{}).Error; err != nil {
				return err
			}
			updates := map[string]interface{}{
				"posted_at":           batch.PostedAt,
				"currency":            batch.Currency,
				"memo":                batch.Memo,
				"entity_type":         batch.EntityType,
				"entity_id":           batch.EntityID,
				"currency_unresolved": batch.CurrencyUnresolved,
				"version":             existing.Version + 1,
				"updated_at":          time.Now(),
			}
			if err := tx.Model(&models.GLBatchModel{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
				return err
			}
			entries := make([]models.GLEntryModel, len(batch.Entries))
			for i, e := range batch.Entries {
				entries[i] = models.GLEntryModel{
					BatchID:     existing.ID,
					Line:        i + 1,
					AccountCode: e.AccountCode,
					Debit:       e.Debit,
					Credit:      e.Credit,
					Ref:         e.Ref,
				}
			}
			return tx.Create(&entries).Error

		case errors.Is(err, gorm.ErrRecordNotFound):
			model := models.GLBatchModelFromDomain(batch)
			if err := tx.Create(model).Error; err != nil {
				return err
			}
			batchID = model.ID
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return uuid.Nil, err
	}
	return batchID, nil
}

// Void marks a batch VOID. Its entries stay for audit but stop counting.
func (r *GormGLBatchRepository) Void(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.GLBatchModel{}).
		Where("id = ? AND status = ?", id, ledger.BatchStatusPosted).
		Updates(map[string]interface{}{
			"status":     ledger.BatchStatusVoid,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// trialBalanceScan receives one aggregated row from the trial balance query
type trialBalanceScan struct {
	AccountCode     string
	AccountName     string
	AccountType     ledger.AccountType
	TotalDebit      decimal.Decimal
	TotalCredit     decimal.Decimal
	UnresolvedCount int64
}

// TrialBalance sums debits and credits per account over non-void batches
func (r *GormGLBatchRepository) TrialBalance(ctx context.Context, query ledger.TrialBalanceQuery) ([]ledger.TrialBalanceRow, error) {
	q := r.db.WithContext(ctx).
		Table("gl_entries").
		Select(`gl_entries.account_code,
			accounts.name AS account_name,
			accounts.type AS account_type,
			SUM(gl_entries.debit) AS total_debit,
			SUM(gl_entries.credit) AS total_credit,
			SUM(CASE WHEN gl_batches.currency_unresolved THEN 1 ELSE 0 END) AS unresolved_count`).
		Joins("JOIN gl_batches ON gl_batches.id = gl_entries.batch_id").
		Joins("JOIN accounts ON accounts.code = gl_entries.account_code").
		Where("gl_batches.status = ?", ledger.BatchStatusPosted).
		Group("gl_entries.account_code, accounts.name, accounts.type").
		Order("gl_entries.account_code asc")

	q = applyBatchRange(q, query.Range)
	if query.EntityType != "" {
		q = q.Where("gl_batches.entity_type = ?", query.EntityType)
	}
	if query.EntityID != nil {
		q = q.Where("gl_batches.entity_id = ?", *query.EntityID)
	}

	var scans []trialBalanceScan
	if err := q.Scan(&scans).Error; err != nil {
		return nil, err
	}

	rows := make([]ledger.TrialBalanceRow, len(scans))
	for i, s := range scans {
		rows[i] = ledger.TrialBalanceRow{
			AccountCode: s.AccountCode,
			AccountName: s.AccountName,
			AccountType: s.AccountType,
			TotalDebit:  s.TotalDebit,
			TotalCredit: s.TotalCredit,
			Approximate: s.UnresolvedCount > 0,
		}
	}
	return rows, nil
}

// ledgerLineScan receives one joined entry row from the ledger queries
type ledgerLineScan struct {
	BatchID            uuid.UUID
	PostedAt           time.Time
	SourceType         ledger.SourceType
	SourceID           uuid.UUID
	Purpose            ledger.Purpose
	Memo               string
	AccountCode        string
	Debit              decimal.Decimal
	Credit             decimal.Decimal
	Ref                string
	CurrencyUnresolved bool
}

const ledgerLineSelect = `gl_batches.id AS batch_id,
	gl_batches.posted_at,
	gl_batches.source_type,
	gl_batches.source_id,
	gl_batches.purpose,
	gl_batches.memo,
	gl_entries.account_code,
	gl_entries.debit,
	gl_entries.credit,
	gl_entries.ref,
	gl_batches.currency_unresolved`

const ledgerLineOrder = "gl_batches.posted_at asc, gl_batches.id asc, gl_entries.line asc"

// AccountLedger lists one account's entries with a running balance
func (r *GormGLBatchRepository) AccountLedger(ctx context.Context, query ledger.AccountLedgerQuery) (shared.Paginated[ledger.LedgerLine], error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Table("gl_entries").
			Joins("JOIN gl_batches ON gl_batches.id = gl_entries.batch_id").
			Where("gl_batches.status = ?", ledger.BatchStatusPosted).
			Where("gl_entries.account_code = ?", query.AccountCode)
		return applyBatchRange(q, query.Range)
	}
	return r.paginateLedger(ctx, base, query.Filter)
}

// EntityLedger lists every entry of batches tagged with one counterparty
func (r *GormGLBatchRepository) EntityLedger(ctx context.Context, query ledger.EntityLedgerQuery) (shared.Paginated[ledger.LedgerLine], error) {
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Table("gl_entries").
			Joins("JOIN gl_batches ON gl_batches.id = gl_entries.batch_id").
			Where("gl_batches.status = ?", ledger.BatchStatusPosted).
			Where("gl_batches.entity_type = ? AND gl_batches.entity_id = ?", query.EntityType, query.EntityID)
		return applyBatchRange(q, query.Range)
	}
	return r.paginateLedger(ctx, base, query.Filter)
}

// paginateLedger pages the joined entry rows in posting order. The running
// balance of the first page row continues from the sum of every row before
// the page, so pages can be walked independently.
func (r *GormGLBatchRepository) paginateLedger(ctx context.Context, base func() *gorm.DB,
	filter shared.Filter) (shared.Paginated[ledger.LedgerLine], error) {
	var empty shared.Paginated[ledger.LedgerLine]

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return empty, err
	}

	offset := filter.Offset()
	limit := filter.Limit()

	var scans []ledgerLineScan
	if err := base().
		Select(ledgerLineSelect).
		Order(ledgerLineOrder).
		Offset(offset).
		Limit(limit).
		Scan(&scans).Error; err != nil {
		return empty, err
	}

	running := decimal.Zero
	if offset > 0 {
		var prior []ledgerLineScan
		if err := base().
			Select(ledgerLineSelect).
			Order(ledgerLineOrder).
			Limit(offset).
			Scan(&prior).Error; err != nil {
			return empty, err
		}
		for _, s := range prior {
			running = running.Add(s.Debit).Sub(s.Credit)
		}
	}

	lines := make([]ledger.LedgerLine, len(scans))
	for i, s := range scans {
		running = running.Add(s.Debit).Sub(s.Credit)
		lines[i] = ledger.LedgerLine{
			BatchID:        s.BatchID,
			PostedAt:       s.PostedAt,
			SourceType:     s.SourceType,
			SourceID:       s.SourceID,
			Purpose:        s.Purpose,
			Memo:           s.Memo,
			AccountCode:    s.AccountCode,
			Debit:          s.Debit,
			Credit:         s.Credit,
			Ref:            s.Ref,
			RunningBalance: running,
			Approximate:    s.CurrencyUnresolved,
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	return shared.NewPaginated(lines, total, page, limit), nil
}

// applyBatchRange filters on the batch posting date
func applyBatchRange(q *gorm.DB, r shared.DateRange) *gorm.DB {
	if !r.From.IsZero() {
		q = q.Where("gl_batches.posted_at >= ?", r.From)
	}
	if !r.To.IsZero() {
		q = q.Where("gl_batches.posted_at <= ?", r.To)
	}
	return q
}

// Ensure GormGLBatchRepository implements GLBatchRepository
var _ ledger.GLBatchRepository = (*GormGLBatchRepository)(nil)
