package persistence

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/application/balance"
	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/source"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// activeDocStatuses are the document states that contribute to a party's
// balance. Drafts and cancellations never do.
var activeDocStatuses = []source.DocStatus{
	source.DocStatusConfirmed,
	source.DocStatusCompleted,
	source.DocStatusArrived,
}

// GormSubLedgerReader implements balance.SubLedgerReader over the business
// tables. Each category maps to one query; amounts come back as unsigned
// magnitudes in their original currency and the aggregator applies
// direction per party kind.
type GormSubLedgerReader struct {
	db *gorm.DB
}

// NewGormSubLedgerReader creates a new GormSubLedgerReader
func NewGormSubLedgerReader(db *gorm.DB) *GormSubLedgerReader {
	return &GormSubLedgerReader{db: db}
}

// Rows lists the party's contributions for one sub-ledger category.
func (r *GormSubLedgerReader) Rows(ctx context.Context, kind party.Kind, partyID uuid.UUID, category party.Category) ([]balance.Row, error) {
	switch category {
	case party.CategorySales:
		return r.salesRows(ctx, kind, partyID)
	case party.CategoryServices:
		return r.serviceRows(ctx, kind, partyID)
	case party.CategoryPreordersPrepaid:
		return r.preorderRows(ctx, kind, partyID)
	case party.CategoryPaymentsIn:
		return r.paymentRows(ctx, kind, partyID, source.PaymentDirectionIn)
	case party.CategoryPaymentsOut:
		return r.paymentRows(ctx, kind, partyID, source.PaymentDirectionOut)
	case party.CategoryExpenses:
		return r.expenseRows(ctx, kind, partyID)
	case party.CategoryReturns:
		return r.returnRows(ctx, kind, partyID)
	case party.CategoryReturnedChecksIn:
		return r.returnedCheckRows(ctx, kind, partyID, check.DirectionIncoming)
	case party.CategoryReturnedChecksOut:
		return r.returnedCheckRows(ctx, kind, partyID, check.DirectionOutgoing)
	case party.CategoryExchangeItems:
		return r.exchangeRows(ctx, kind, partyID)
	default:
		return nil, fmt.Errorf("unknown sub-ledger category %q", category)
	}
}

// salesRows is the kind-dependent category. Customers owe the full sale
// total regardless of warehouse. Partners are owed their carved-out share
// of partner-warehouse sales. Suppliers bill us landed cost on arrived
// shipments.
func (r *GormSubLedgerReader) salesRows(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]balance.Row, error) {
	switch kind {
	case party.KindCustomer:
		var sales []models.SaleModel
		err := r.db.WithContext(ctx).
			Where("customer_id = ? AND status IN ?", partyID, activeDocStatuses).
			Find(&sales).Error
		if err != nil {
			return nil, err
		}
		rows := make([]balance.Row, 0, len(sales))
		for _, s := range sales {
			rows = append(rows, balance.Row{Amount: s.Total, Currency: s.Currency, Date: s.EffectiveDate})
		}
		return rows, nil

	case party.KindPartner:
		var sales []models.SaleModel
		err := r.db.WithContext(ctx).
			Where("partner_id = ? AND warehouse = ? AND status IN ?",
				partyID, source.WarehousePartner, activeDocStatuses).
			Find(&sales).Error
		if err != nil {
			return nil, err
		}
		rows := make([]balance.Row, 0, len(sales))
		for _, s := range sales {
			share := s.Total.Mul(s.PartnerShare).Round(2)
			if share.IsZero() {
				continue
			}
			rows = append(rows, balance.Row{Amount: share, Currency: s.Currency, Date: s.EffectiveDate})
		}
		return rows, nil

	case party.KindSupplier:
		var shipments []models.ShipmentModel
		err := r.db.WithContext(ctx).
			Where("supplier_id = ? AND status IN ?", partyID, activeDocStatuses).
			Find(&shipments).Error
		if err != nil {
			return nil, err
		}
		rows := make([]balance.Row, 0, len(shipments))
		for _, s := range shipments {
			landed := s.GoodsCost.Add(s.Freight).Add(s.Customs).Add(s.Insurance)
			rows = append(rows, balance.Row{Amount: landed, Currency: s.Currency, Date: s.EffectiveDate})
		}
		return rows, nil

	default:
		return nil, nil
	}
}

func (r *GormSubLedgerReader) serviceRows(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]balance.Row, error) {
	if kind != party.KindCustomer {
		return nil, nil
	}
	var jobs []models.ServiceJobModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status IN ?", partyID, activeDocStatuses).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	rows := make([]balance.Row, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, balance.Row{Amount: j.Amount, Currency: j.Currency, Date: j.EffectiveDate})
	}
	return rows, nil
}

func (r *GormSubLedgerReader) preorderRows(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]balance.Row, error) {
	var preorders []models.PreorderModel
	err := r.db.WithContext(ctx).
		Where("party_kind = ? AND party_id = ? AND status IN ?", kind, partyID, activeDocStatuses).
		Find(&preorders).Error
	if err != nil {
		return nil, err
	}
	rows := make([]balance.Row, 0, len(preorders))
	for _, p := range preorders {
		if p.PrepaidAmount.IsZero() {
			continue
		}
		rows = append(rows, balance.Row{Amount: p.PrepaidAmount, Currency: p.Currency, Date: p.EffectiveDate})
	}
	return rows, nil
}

func (r *GormSubLedgerReader) paymentRows(ctx context.Context, kind party.Kind, partyID uuid.UUID, direction source.PaymentDirection) ([]balance.Row, error) {
	var payments []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("party_kind = ? AND party_id = ? AND direction = ? AND status = ?",
			kind, partyID, direction, source.DocStatusCompleted).
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	rows := make([]balance.Row, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, balance.Row{Amount: p.Amount, Currency: p.Currency, Date: p.EffectiveDate})
	}
	return rows, nil
}

// expenseRows covers supplier-billed expenses only. Expenses paid on the
// spot have no open payable, so only the CREDIT method counts here.
func (r *GormSubLedgerReader) expenseRows(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]balance.Row, error) {
	if kind != party.KindSupplier {
		return nil, nil
	}
	var expenses []models.ExpenseModel
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND method = ? AND status IN ?",
			partyID, source.MethodCredit, activeDocStatuses).
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	rows := make([]balance.Row, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, balance.Row{Amount: e.Amount, Currency: e.Currency, Date: e.EffectiveDate})
	}
	return rows, nil
}

func (r *GormSubLedgerReader) returnRows(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]balance.Row, error) {
	var returns []models.SaleReturnModel
	err := r.db.WithContext(ctx).
		Where("party_kind = ? AND party_id = ? AND status IN ?", kind, partyID, activeDocStatuses).
		Find(&returns).Error
	if err != nil {
		return nil, err
	}
	rows := make([]balance.Row, 0, len(returns))
	for _, s := range returns {
		rows = append(rows, balance.Row{Amount: s.Amount, Currency: s.Currency, Date: s.EffectiveDate})
	}
	return rows, nil
}

// returnedCheckRows lists checks that bounced or came back. The due date
// stands in as the effective date for currency conversion.
func (r *GormSubLedgerReader) returnedCheckRows(ctx context.Context, kind party.Kind, partyID uuid.UUID, direction check.Direction) ([]balance.Row, error) {
	var checks []models.CheckModel
	err := r.db.WithContext(ctx).
		Where("party_kind = ? AND party_id = ? AND direction = ? AND status IN ?",
			kind, partyID, direction, []check.Status{check.StatusBounced, check.StatusReturned}).
		Find(&checks).Error
	if err != nil {
		return nil, err
	}
	rows := make([]balance.Row, 0, len(checks))
	for _, c := range checks {
		rows = append(rows, balance.Row{Amount: c.Amount, Currency: c.Currency, Date: c.DueDate})
	}
	return rows, nil
}

// exchangeRows is supplier-only: the recorded cost of sales fulfilled from
// an exchange warehouse is owed to the consigning supplier. Sales with no
// recorded cost are skipped; the posting engine handles their estimation.
func (r *GormSubLedgerReader) exchangeRows(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]balance.Row, error) {
	if kind != party.KindSupplier {
		return nil, nil
	}
	var sales []models.SaleModel
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND warehouse = ? AND status IN ?",
			partyID, source.WarehouseExchange, activeDocStatuses).
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	rows := make([]balance.Row, 0, len(sales))
	for _, s := range sales {
		if s.CostTotal == nil || s.CostTotal.IsZero() {
			continue
		}
		rows = append(rows, balance.Row{Amount: *s.CostTotal, Currency: s.Currency, Date: s.EffectiveDate})
	}
	return rows, nil
}

var _ balance.SubLedgerReader = (*GormSubLedgerReader)(nil)
