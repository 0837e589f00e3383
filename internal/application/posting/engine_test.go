package posting

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/fx"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/source"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memChart struct {
	accounts map[string]*ledger.Account
}

func newMemChart() *memChart {
	c := &memChart{accounts: make(map[string]*ledger.Account)}
	for _, a := range ledger.DefaultChart() {
		account := a
		c.accounts[a.Code] = &account
	}
	return c
}

func (c *memChart) Lookup(ctx context.Context, code string) (*ledger.Account, error) {
	if a, ok := c.accounts[code]; ok {
		return a, nil
	}
	return nil, shared.ErrNotFound
}

func (c *memChart) Invalidate() {}

type sourceKey struct {
	st      ledger.SourceType
	id      uuid.UUID
	purpose ledger.Purpose
}

// memBatchRepo keeps batches in memory with upsert-by-source semantics,
// enough to observe what the engine posts.
type memBatchRepo struct {
	batches map[sourceKey]*ledger.GLBatch
	upserts int
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: make(map[sourceKey]*ledger.GLBatch)}
}

func (r *memBatchRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.GLBatch, error) {
	for _, b := range r.batches {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepo) FindBySource(ctx context.Context, st ledger.SourceType, sourceID uuid.UUID, purpose ledger.Purpose) (*ledger.GLBatch, error) {
	if b, ok := r.batches[sourceKey{st, sourceID, purpose}]; ok {
		return b, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepo) UpsertBySource(ctx context.Context, batch *ledger.GLBatch) (uuid.UUID, error) {
	r.upserts++
	key := sourceKey{batch.SourceType, batch.SourceID, batch.Purpose}
	if existing, ok := r.batches[key]; ok && existing.Status == ledger.BatchStatusPosted {
		batch.ID = existing.ID
	}
	r.batches[key] = batch
	return batch.ID, nil
}

func (r *memBatchRepo) Void(ctx context.Context, id uuid.UUID) error {
	for _, b := range r.batches {
		if b.ID == id {
			return b.Void()
		}
	}
	return shared.ErrNotFound
}

func (r *memBatchRepo) TrialBalance(ctx context.Context, q ledger.TrialBalanceQuery) ([]ledger.TrialBalanceRow, error) {
	return nil, nil
}

func (r *memBatchRepo) AccountLedger(ctx context.Context, q ledger.AccountLedgerQuery) (shared.Paginated[ledger.LedgerLine], error) {
	return shared.Paginated[ledger.LedgerLine]{}, nil
}

func (r *memBatchRepo) EntityLedger(ctx context.Context, q ledger.EntityLedgerQuery) (shared.Paginated[ledger.LedgerLine], error) {
	return shared.Paginated[ledger.LedgerLine]{}, nil
}

func (r *memBatchRepo) get(t *testing.T, st ledger.SourceType, id uuid.UUID, purpose ledger.Purpose) *ledger.GLBatch {
	t.Helper()
	b, ok := r.batches[sourceKey{st, id, purpose}]
	require.True(t, ok, "no batch for %s/%s/%s", st, id, purpose)
	return b
}

func entryFor(t *testing.T, b *ledger.GLBatch, code string) ledger.GLEntry {
	t.Helper()
	for _, e := range b.Entries {
		if e.AccountCode == code {
			return e
		}
	}
	t.Fatalf("no entry for account %s", code)
	return ledger.GLEntry{}
}

type stubReader struct {
	sales     map[uuid.UUID]*source.SaleSnapshot
	payments  map[uuid.UUID]*source.PaymentSnapshot
	expenses  map[uuid.UUID]*source.ExpenseSnapshot
	shipments map[uuid.UUID]*source.ShipmentSnapshot
	services  map[uuid.UUID]*source.ServiceSnapshot
	openings  map[uuid.UUID]*source.OpeningSnapshot
}

func newStubReader() *stubReader {
	return &stubReader{
		sales:     make(map[uuid.UUID]*source.SaleSnapshot),
		payments:  make(map[uuid.UUID]*source.PaymentSnapshot),
		expenses:  make(map[uuid.UUID]*source.ExpenseSnapshot),
		shipments: make(map[uuid.UUID]*source.ShipmentSnapshot),
		services:  make(map[uuid.UUID]*source.ServiceSnapshot),
		openings:  make(map[uuid.UUID]*source.OpeningSnapshot),
	}
}

func (s *stubReader) Sale(ctx context.Context, id uuid.UUID) (*source.SaleSnapshot, error) {
	if v, ok := s.sales[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}
func (s *stubReader) Payment(ctx context.Context, id uuid.UUID) (*source.PaymentSnapshot, error) {
	if v, ok := s.payments[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}
func (s *stubReader) Expense(ctx context.Context, id uuid.UUID) (*source.ExpenseSnapshot, error) {
	if v, ok := s.expenses[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}
func (s *stubReader) Shipment(ctx context.Context, id uuid.UUID) (*source.ShipmentSnapshot, error) {
	if v, ok := s.shipments[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}
func (s *stubReader) Service(ctx context.Context, id uuid.UUID) (*source.ServiceSnapshot, error) {
	if v, ok := s.services[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}
func (s *stubReader) OpeningBalance(ctx context.Context, kind party.Kind, partyID uuid.UUID) (*source.OpeningSnapshot, error) {
	if v, ok := s.openings[partyID]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}

type stubRates struct {
	rates map[string]decimal.Decimal
}

func (s *stubRates) FindEffective(ctx context.Context, base, quote valueobject.Currency, asOf time.Time) (*fx.Rate, error) {
	if s.rates != nil {
		if r, ok := s.rates[string(base)+"/"+string(quote)]; ok {
			return &fx.Rate{Base: base, Quote: quote, AsOf: asOf, Rate: r}, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubRates) Save(ctx context.Context, rate *fx.Rate) error { return nil }

type recalcSpy struct {
	calls []uuid.UUID
}

func (r *recalcSpy) Recompute(ctx context.Context, kind party.Kind, partyID uuid.UUID) (party.Breakdown, error) {
	r.calls = append(r.calls, partyID)
	return party.Breakdown{}, nil
}

type engineFixture struct {
	engine  *Engine
	reader  *stubReader
	batches *memBatchRepo
	recalc  *recalcSpy
	rates   *stubRates
}

func newEngineFixture(cfg Config) *engineFixture {
	reader := newStubReader()
	batches := newMemBatchRepo()
	recalc := &recalcSpy{}
	rates := &stubRates{}
	svc := ledger.NewService(newMemChart(), batches)
	return &engineFixture{
		engine:  NewEngine(svc, reader, rates, recalc, nil, zap.NewNop(), cfg),
		reader:  reader,
		batches: batches,
		recalc:  recalc,
		rates:   rates,
	}
}

var testDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func confirmedSale(total int64) *source.SaleSnapshot {
	return &source.SaleSnapshot{
		ID:            uuid.New(),
		Number:        "SO-1001",
		Status:        source.DocStatusConfirmed,
		CustomerID:    uuid.New(),
		Total:         decimal.NewFromInt(total),
		Currency:      valueobject.ILS,
		EffectiveDate: testDate,
		Warehouse:     source.WarehouseCompany,
	}
}

func TestPostSale(t *testing.T) {
	ctx := context.Background()

	t.Run("company warehouse posts revenue", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		sale := confirmedSale(1000)
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))

		b := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeRevenue)
		assert.True(t, entryFor(t, b, ledger.CodeAccountsReceivable).Debit.Equal(decimal.NewFromInt(1000)))
		assert.True(t, entryFor(t, b, ledger.CodeRevenue).Credit.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, party.KindCustomer.String(), b.EntityType)
		assert.False(t, b.CurrencyUnresolved)
		assert.Equal(t, []uuid.UUID{sale.CustomerID}, f.recalc.calls)

		// no cost recorded and no fallback: no COGS batch
		_, ok := f.batches.batches[sourceKey{ledger.SourceTypeSale, sale.ID, ledger.PurposeCOGS}]
		assert.False(t, ok)
	})

	t.Run("recorded cost posts a COGS batch", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		sale := confirmedSale(1000)
		cost := decimal.NewFromInt(640)
		sale.CostTotal = &cost
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))

		b := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeCOGS)
		assert.True(t, entryFor(t, b, ledger.CodeCOGS).Debit.Equal(cost))
		assert.True(t, entryFor(t, b, ledger.CodeInventory).Credit.Equal(cost))
	})

	t.Run("cost fallback estimates from the sale total", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CostFallbackEnabled = true
		f := newEngineFixture(cfg)
		sale := confirmedSale(1000)
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))

		b := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeCOGS)
		assert.True(t, entryFor(t, b, ledger.CodeCOGS).Debit.Equal(decimal.NewFromInt(700)))
		assert.Contains(t, b.Memo, "estimated")
	})

	t.Run("partner warehouse splits the credit side", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		sale := confirmedSale(1000)
		partnerID := uuid.New()
		sale.Warehouse = source.WarehousePartner
		sale.PartnerID = &partnerID
		sale.PartnerShare = decimal.NewFromFloat(0.3)
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))

		b := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeRevenue)
		assert.True(t, entryFor(t, b, ledger.CodeRevenue).Credit.Equal(decimal.NewFromInt(700)))
		assert.True(t, entryFor(t, b, ledger.CodePartnerRevenue).Credit.Equal(decimal.NewFromInt(300)))
		assert.True(t, b.TotalDebit().Equal(b.TotalCredit()))
	})

	t.Run("exchange warehouse credits exchange revenue and the supplier", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		sale := confirmedSale(1000)
		supplierID := uuid.New()
		cost := decimal.NewFromInt(800)
		sale.Warehouse = source.WarehouseExchange
		sale.SupplierID = &supplierID
		sale.CostTotal = &cost
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))

		rev := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeRevenue)
		assert.True(t, entryFor(t, rev, ledger.CodeExchangeRevenue).Credit.Equal(decimal.NewFromInt(1000)))

		cogs := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeCOGS)
		assert.True(t, entryFor(t, cogs, ledger.CodeAccountsPayable).Credit.Equal(cost))
		assert.Equal(t, party.KindSupplier.String(), cogs.EntityType)
	})

	t.Run("unconfirmed sales are skipped", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		sale := confirmedSale(1000)
		sale.Status = source.DocStatusDraft
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))
		assert.Empty(t, f.batches.batches)
		assert.Empty(t, f.recalc.calls)
	})

	t.Run("reposting the same sale upserts, never duplicates", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		sale := confirmedSale(1000)
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))
		firstID := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeRevenue).ID

		sale.Total = decimal.NewFromInt(1200)
		require.NoError(t, f.engine.PostSale(ctx, sale.ID))

		assert.Len(t, f.batches.batches, 1)
		b := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeRevenue)
		assert.Equal(t, firstID, b.ID)
		assert.True(t, entryFor(t, b, ledger.CodeRevenue).Credit.Equal(decimal.NewFromInt(1200)))
	})

	t.Run("foreign currency converts at the effective date", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		f.rates.rates = map[string]decimal.Decimal{"USD/ILS": decimal.NewFromFloat(3.6)}
		sale := confirmedSale(100)
		sale.Currency = valueobject.USD
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))

		b := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeRevenue)
		assert.Equal(t, valueobject.ILS, b.Currency)
		assert.True(t, entryFor(t, b, ledger.CodeRevenue).Credit.Equal(decimal.NewFromInt(360)))
		assert.False(t, b.CurrencyUnresolved)
	})

	t.Run("missing FX rate posts raw amounts flagged unresolved", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		sale := confirmedSale(100)
		sale.Currency = valueobject.USD
		f.reader.sales[sale.ID] = sale

		require.NoError(t, f.engine.PostSale(ctx, sale.ID))

		b := f.batches.get(t, ledger.SourceTypeSale, sale.ID, ledger.PurposeRevenue)
		assert.Equal(t, valueobject.USD, b.Currency)
		assert.True(t, b.CurrencyUnresolved)
		assert.True(t, entryFor(t, b, ledger.CodeRevenue).Credit.Equal(decimal.NewFromInt(100)))
		// posting still completed and refreshed the balance
		assert.Len(t, f.recalc.calls, 1)
	})
}

func TestPostPayment(t *testing.T) {
	ctx := context.Background()

	pay := func(dir source.PaymentDirection, kind party.Kind, method source.PaymentMethod) *source.PaymentSnapshot {
		return &source.PaymentSnapshot{
			ID:            uuid.New(),
			Number:        "PAY-42",
			Status:        source.DocStatusCompleted,
			Direction:     dir,
			PartyKind:     kind,
			PartyID:       uuid.New(),
			Amount:        decimal.NewFromInt(400),
			Currency:      valueobject.ILS,
			EffectiveDate: testDate,
			Method:        method,
		}
	}

	t.Run("incoming cash payment credits the receivable", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		p := pay(source.PaymentDirectionIn, party.KindCustomer, source.MethodCash)
		f.reader.payments[p.ID] = p

		require.NoError(t, f.engine.PostPayment(ctx, p.ID))

		b := f.batches.get(t, ledger.SourceTypePayment, p.ID, ledger.PurposePayment)
		assert.True(t, entryFor(t, b, ledger.CodeCash).Debit.Equal(decimal.NewFromInt(400)))
		assert.True(t, entryFor(t, b, ledger.CodeAccountsReceivable).Credit.Equal(decimal.NewFromInt(400)))
	})

	t.Run("outgoing bank payment debits the payable", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		p := pay(source.PaymentDirectionOut, party.KindSupplier, source.MethodBankTransfer)
		f.reader.payments[p.ID] = p

		require.NoError(t, f.engine.PostPayment(ctx, p.ID))

		b := f.batches.get(t, ledger.SourceTypePayment, p.ID, ledger.PurposePayment)
		assert.True(t, entryFor(t, b, ledger.CodeAccountsPayable).Debit.Equal(decimal.NewFromInt(400)))
		assert.True(t, entryFor(t, b, ledger.CodeBank).Credit.Equal(decimal.NewFromInt(400)))
	})

	t.Run("check-method payments are left to the check lifecycle", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		p := pay(source.PaymentDirectionIn, party.KindCustomer, source.MethodCheck)
		f.reader.payments[p.ID] = p

		require.NoError(t, f.engine.PostPayment(ctx, p.ID))
		assert.Empty(t, f.batches.batches)
	})
}

func TestPostExpense(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(DefaultConfig())
	exp := &source.ExpenseSnapshot{
		ID:            uuid.New(),
		Number:        "EXP-7",
		Status:        source.DocStatusCompleted,
		Category:      source.ExpenseFreight,
		Amount:        decimal.NewFromInt(250),
		Currency:      valueobject.ILS,
		EffectiveDate: testDate,
		Method:        source.MethodCash,
	}
	f.reader.expenses[exp.ID] = exp

	require.NoError(t, f.engine.PostExpense(ctx, exp.ID))

	b := f.batches.get(t, ledger.SourceTypeExpense, exp.ID, ledger.PurposeExpense)
	assert.True(t, entryFor(t, b, ledger.CodeFreightExpense).Debit.Equal(decimal.NewFromInt(250)))
	assert.True(t, entryFor(t, b, ledger.CodeCash).Credit.Equal(decimal.NewFromInt(250)))
}

func TestPostShipment(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(DefaultConfig())
	sh := &source.ShipmentSnapshot{
		ID:            uuid.New(),
		Number:        "SHP-3",
		Status:        source.DocStatusArrived,
		SupplierID:    uuid.New(),
		GoodsCost:     decimal.NewFromInt(5000),
		Freight:       decimal.NewFromInt(300),
		Customs:       decimal.NewFromInt(150),
		Insurance:     decimal.NewFromInt(50),
		Currency:      valueobject.ILS,
		EffectiveDate: testDate,
	}
	f.reader.shipments[sh.ID] = sh

	require.NoError(t, f.engine.PostShipment(ctx, sh.ID))

	b := f.batches.get(t, ledger.SourceTypeShipment, sh.ID, ledger.PurposeLandedCost)
	landed := decimal.NewFromInt(5500)
	assert.True(t, entryFor(t, b, ledger.CodeInventory).Debit.Equal(landed))
	assert.True(t, entryFor(t, b, ledger.CodeAccountsPayable).Credit.Equal(landed))
	assert.Equal(t, []uuid.UUID{sh.SupplierID}, f.recalc.calls)
}

func TestPostOpening(t *testing.T) {
	ctx := context.Background()

	t.Run("customer owing us debits the receivable", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		partyID := uuid.New()
		f.reader.openings[partyID] = &source.OpeningSnapshot{
			PartyKind:     party.KindCustomer,
			PartyID:       partyID,
			Amount:        decimal.NewFromInt(900),
			Currency:      valueobject.ILS,
			EffectiveDate: testDate,
		}

		require.NoError(t, f.engine.PostOpening(ctx, party.KindCustomer, partyID))

		b := f.batches.get(t, ledger.SourceTypeOpeningBalance, partyID, ledger.PurposeOpeningBalance)
		assert.True(t, entryFor(t, b, ledger.CodeAccountsReceivable).Debit.Equal(decimal.NewFromInt(900)))
		assert.True(t, entryFor(t, b, ledger.CodeOpeningEquity).Credit.Equal(decimal.NewFromInt(900)))
	})

	t.Run("negative opening reverses the sides", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		partyID := uuid.New()
		f.reader.openings[partyID] = &source.OpeningSnapshot{
			PartyKind:     party.KindSupplier,
			PartyID:       partyID,
			Amount:        decimal.NewFromInt(-500),
			Currency:      valueobject.ILS,
			EffectiveDate: testDate,
		}

		require.NoError(t, f.engine.PostOpening(ctx, party.KindSupplier, partyID))

		b := f.batches.get(t, ledger.SourceTypeOpeningBalance, partyID, ledger.PurposeOpeningBalance)
		assert.True(t, entryFor(t, b, ledger.CodeOpeningEquity).Debit.Equal(decimal.NewFromInt(500)))
		assert.True(t, entryFor(t, b, ledger.CodeAccountsPayable).Credit.Equal(decimal.NewFromInt(500)))
	})

	t.Run("opening edited to zero voids the batch", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		partyID := uuid.New()
		f.reader.openings[partyID] = &source.OpeningSnapshot{
			PartyKind:     party.KindCustomer,
			PartyID:       partyID,
			Amount:        decimal.NewFromInt(900),
			Currency:      valueobject.ILS,
			EffectiveDate: testDate,
		}
		require.NoError(t, f.engine.PostOpening(ctx, party.KindCustomer, partyID))

		f.reader.openings[partyID].Amount = decimal.Zero
		require.NoError(t, f.engine.PostOpening(ctx, party.KindCustomer, partyID))

		b := f.batches.get(t, ledger.SourceTypeOpeningBalance, partyID, ledger.PurposeOpeningBalance)
		assert.Equal(t, ledger.BatchStatusVoid, b.Status)
	})
}

func TestPostCheckTransition(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(1000)

	event := func(dir check.Direction, from, to check.Status) *check.CheckTransitionedEvent {
		c, err := check.NewIncoming("CHK-9", amount, valueobject.ILS, party.KindCustomer, uuid.New(), testDate)
		require.NoError(t, err)
		if dir == check.DirectionOutgoing {
			c, err = check.NewOutgoing("CHK-9", amount, valueobject.ILS, party.KindSupplier, uuid.New(), testDate)
			require.NoError(t, err)
		}
		return check.NewCheckTransitionedEvent(c, from, to)
	}

	t.Run("incoming receipt moves the receivable into checks", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		ev := event(check.DirectionIncoming, "", check.StatusPending)

		require.NoError(t, f.engine.PostCheckTransition(ctx, ev))

		b := f.batches.get(t, ledger.SourceTypeCheck, ev.CheckID, ledger.PurposeCheckReceipt)
		assert.True(t, entryFor(t, b, ledger.CodeChecksReceivable).Debit.Equal(amount))
		assert.True(t, entryFor(t, b, ledger.CodeAccountsReceivable).Credit.Equal(amount))
	})

	t.Run("incoming cashed moves checks into the bank", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		ev := event(check.DirectionIncoming, check.StatusPending, check.StatusCashed)

		require.NoError(t, f.engine.PostCheckTransition(ctx, ev))

		b := f.batches.get(t, ledger.SourceTypeCheck, ev.CheckID, ledger.PurposeCheckCashed)
		assert.True(t, entryFor(t, b, ledger.CodeBank).Debit.Equal(amount))
		assert.True(t, entryFor(t, b, ledger.CodeChecksReceivable).Credit.Equal(amount))
	})

	t.Run("bounce keeps the receipt and posts a reversal", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		receipt := event(check.DirectionIncoming, "", check.StatusPending)
		require.NoError(t, f.engine.PostCheckTransition(ctx, receipt))
		bounce := event(check.DirectionIncoming, check.StatusPending, check.StatusBounced)
		bounce.CheckID = receipt.CheckID
		require.NoError(t, f.engine.PostCheckTransition(ctx, bounce))

		// the receipt batch survives alongside its reversal
		f.batches.get(t, ledger.SourceTypeCheck, receipt.CheckID, ledger.PurposeCheckReceipt)
		rev := f.batches.get(t, ledger.SourceTypeCheck, receipt.CheckID, ledger.PurposeCheckReturn)
		assert.True(t, entryFor(t, rev, ledger.CodeAccountsReceivable).Debit.Equal(amount))
	})

	t.Run("correction back to pending voids the reversal", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		ret := event(check.DirectionIncoming, check.StatusPending, check.StatusReturned)
		require.NoError(t, f.engine.PostCheckTransition(ctx, ret))

		fix := event(check.DirectionIncoming, check.StatusReturned, check.StatusPending)
		fix.CheckID = ret.CheckID
		require.NoError(t, f.engine.PostCheckTransition(ctx, fix))

		b := f.batches.get(t, ledger.SourceTypeCheck, ret.CheckID, ledger.PurposeCheckReturn)
		assert.Equal(t, ledger.BatchStatusVoid, b.Status)
	})

	t.Run("outgoing delivery moves the payable into checks", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		ev := event(check.DirectionOutgoing, check.StatusIssued, check.StatusPending)

		require.NoError(t, f.engine.PostCheckTransition(ctx, ev))

		b := f.batches.get(t, ledger.SourceTypeCheck, ev.CheckID, ledger.PurposeCheckIssue)
		assert.True(t, entryFor(t, b, ledger.CodeAccountsPayable).Debit.Equal(amount))
		assert.True(t, entryFor(t, b, ledger.CodeChecksPayable).Credit.Equal(amount))
	})

	t.Run("outgoing issue posts nothing", func(t *testing.T) {
		f := newEngineFixture(DefaultConfig())
		ev := event(check.DirectionOutgoing, "", check.StatusIssued)

		require.NoError(t, f.engine.PostCheckTransition(ctx, ev))
		assert.Empty(t, f.batches.batches)
	})
}
