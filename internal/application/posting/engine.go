package posting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/fx"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/source"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BalanceRecalculator refreshes a party's materialized balance after a
// posting. Implemented by the balance aggregator.
type BalanceRecalculator interface {
	Recompute(ctx context.Context, kind party.Kind, partyID uuid.UUID) (party.Breakdown, error)
}

// Metrics receives posting counters. A nil Metrics is a no-op.
type Metrics interface {
	BatchPosted(ctx context.Context, sourceType string, currencyUnresolved bool)
}

// Config tunes the posting engine
type Config struct {
	BaseCurrency valueobject.Currency
	// CostFallbackEnabled turns on the estimated-COGS heuristic: when a
	// confirmed sale has no recorded purchase cost, cost is estimated as
	// CostFallbackRatio of the sale total. The estimate is an approximation
	// pending confirmation with stakeholders; batches carry an "estimated"
	// memo so reports can call it out.
	CostFallbackEnabled bool
	CostFallbackRatio   decimal.Decimal
}

// DefaultConfig returns the engine defaults (base currency ILS, 70% cost fallback off)
func DefaultConfig() Config {
	return Config{
		BaseCurrency:        valueobject.DefaultCurrency,
		CostFallbackEnabled: false,
		CostFallbackRatio:   decimal.NewFromFloat(0.70),
	}
}

// Engine turns business events into balanced ledger batches. One engine
// method handles one event kind: it re-reads the authoritative snapshot,
// converts amounts at the event's effective date, upserts exactly one batch
// per (source type, source id, purpose), and refreshes the affected party's
// balance. Re-running any method for the same event is idempotent.
type Engine struct {
	ledger  *ledger.Service
	reader  source.Reader
	rates   fx.RateRepository
	recalc  BalanceRecalculator
	metrics Metrics
	logger  *zap.Logger
	cfg     Config
}

// NewEngine creates a posting engine
func NewEngine(
	ledgerSvc *ledger.Service,
	reader source.Reader,
	rates fx.RateRepository,
	recalc BalanceRecalculator,
	metrics Metrics,
	logger *zap.Logger,
	cfg Config,
) *Engine {
	if !cfg.BaseCurrency.IsValid() {
		cfg.BaseCurrency = valueobject.DefaultCurrency
	}
	return &Engine{
		ledger:  ledgerSvc,
		reader:  reader,
		rates:   rates,
		recalc:  recalc,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
}

// conversion is the outcome of converting one source amount to the base
// currency. When the FX rate is missing the raw amount is kept, the batch
// is flagged, and posting proceeds: availability beats strict accuracy here.
type conversion struct {
	amount     decimal.Decimal
	currency   valueobject.Currency
	unresolved bool
}

func (e *Engine) convert(ctx context.Context, resolver *fx.Resolver,
	amount decimal.Decimal, from valueobject.Currency, asOf time.Time) conversion {
	if from == e.cfg.BaseCurrency {
		return conversion{amount: amount, currency: from}
	}
	rate, err := resolver.Resolve(ctx, from, e.cfg.BaseCurrency, asOf)
	if err != nil {
		if errors.Is(err, fx.ErrMissingRate) {
			e.logger.Warn("missing FX rate, posting unconverted amount",
				zap.String("from", from.String()),
				zap.String("to", e.cfg.BaseCurrency.String()),
				zap.Time("as_of", asOf),
				zap.String("amount", amount.StringFixed(2)),
			)
			return conversion{amount: amount, currency: from, unresolved: true}
		}
		// infrastructure failure resolving the rate degrades the same way,
		// but is logged at error level
		e.logger.Error("FX rate lookup failed, posting unconverted amount",
			zap.String("from", from.String()), zap.Error(err))
		return conversion{amount: amount, currency: from, unresolved: true}
	}
	return conversion{amount: amount.Mul(rate).Round(2), currency: e.cfg.BaseCurrency}
}

// post upserts one batch and records metrics
func (e *Engine) post(ctx context.Context, spec ledger.BatchSpec) (uuid.UUID, error) {
	id, err := e.ledger.UpsertBatch(ctx, spec)
	if err != nil {
		return uuid.Nil, err
	}
	if e.metrics != nil {
		e.metrics.BatchPosted(ctx, spec.SourceType.String(), spec.CurrencyUnresolved)
	}
	e.logger.Info("ledger batch posted",
		zap.String("batch_id", id.String()),
		zap.String("source_type", spec.SourceType.String()),
		zap.String("source_id", spec.SourceID.String()),
		zap.String("purpose", spec.Purpose.String()),
		zap.Bool("currency_unresolved", spec.CurrencyUnresolved),
	)
	return id, nil
}

// refreshBalance recomputes the materialized balance of the affected party.
// A failed recompute fails the posting operation: the ledger and the summary
// must move together.
func (e *Engine) refreshBalance(ctx context.Context, kind party.Kind, partyID uuid.UUID) error {
	if e.recalc == nil {
		return nil
	}
	if _, err := e.recalc.Recompute(ctx, kind, partyID); err != nil {
		return fmt.Errorf("recompute %s %s balance: %w", kind, partyID, err)
	}
	return nil
}

// PostOpening posts (or re-posts) a party's opening balance batch: the
// receivable-or-payable account against opening equity, sign chosen by
// whether the party owes or is owed.
func (e *Engine) PostOpening(ctx context.Context, kind party.Kind, partyID uuid.UUID) error {
	snap, err := e.reader.OpeningBalance(ctx, kind, partyID)
	if err != nil {
		return fmt.Errorf("read opening balance for %s %s: %w", kind, partyID, err)
	}

	if snap.Amount.IsZero() {
		// an edited-to-zero opening voids any previous opening batch
		if err := e.ledger.VoidBySource(ctx, ledger.SourceTypeOpeningBalance, partyID, ledger.PurposeOpeningBalance); err != nil {
			return err
		}
		return e.refreshBalance(ctx, kind, partyID)
	}

	resolver := fx.NewResolver(e.rates)
	conv := e.convert(ctx, resolver, snap.Amount.Abs(), snap.Currency, snap.EffectiveDate)

	account := ledger.CodeAccountsReceivable
	if kind == party.KindSupplier {
		account = ledger.CodeAccountsPayable
	}

	// a positive opening means the party owes us, for suppliers too
	var entries []ledger.GLEntry
	if snap.Amount.IsPositive() {
		entries = []ledger.GLEntry{
			ledger.DebitEntry(account, conv.amount, "opening"),
			ledger.CreditEntry(ledger.CodeOpeningEquity, conv.amount, "opening"),
		}
	} else {
		entries = []ledger.GLEntry{
			ledger.DebitEntry(ledger.CodeOpeningEquity, conv.amount, "opening"),
			ledger.CreditEntry(account, conv.amount, "opening"),
		}
	}

	_, err = e.post(ctx, ledger.BatchSpec{
		SourceType:         ledger.SourceTypeOpeningBalance,
		SourceID:           partyID,
		Purpose:            ledger.PurposeOpeningBalance,
		Currency:           conv.currency,
		Memo:               fmt.Sprintf("opening balance %s", kind),
		PostedAt:           snap.EffectiveDate,
		Entries:            entries,
		Entity:             &ledger.EntityRef{Type: kind.String(), ID: partyID},
		CurrencyUnresolved: conv.unresolved,
	})
	if err != nil {
		return err
	}
	return e.refreshBalance(ctx, kind, partyID)
}

// PostSale posts the revenue batch for a confirmed sale and, when a cost is
// known (or estimated), a companion COGS batch. Only CONFIRMED sales post;
// anything else is skipped without error so the handler stays re-runnable.
func (e *Engine) PostSale(ctx context.Context, saleID uuid.UUID) error {
	sale, err := e.reader.Sale(ctx, saleID)
	if err != nil {
		return fmt.Errorf("read sale %s: %w", saleID, err)
	}
	if sale.Status != source.DocStatusConfirmed {
		e.logger.Debug("skipping sale posting, not confirmed",
			zap.String("sale_id", saleID.String()),
			zap.String("status", string(sale.Status)),
		)
		return nil
	}

	resolver := fx.NewResolver(e.rates)
	conv := e.convert(ctx, resolver, sale.Total, sale.Currency, sale.EffectiveDate)

	entries := []ledger.GLEntry{
		ledger.DebitEntry(ledger.CodeAccountsReceivable, conv.amount, sale.Number),
	}
	entries = append(entries, saleRevenueLegs(sale, conv.amount)...)

	spec := ledger.BatchSpec{
		SourceType:         ledger.SourceTypeSale,
		SourceID:           sale.ID,
		Purpose:            ledger.PurposeRevenue,
		Currency:           conv.currency,
		Memo:               fmt.Sprintf("sale %s", sale.Number),
		PostedAt:           sale.EffectiveDate,
		Entries:            entries,
		Entity:             &ledger.EntityRef{Type: party.KindCustomer.String(), ID: sale.CustomerID},
		CurrencyUnresolved: conv.unresolved,
	}
	if _, err := e.post(ctx, spec); err != nil {
		return err
	}

	if err := e.postSaleCost(ctx, resolver, sale); err != nil {
		return err
	}
	return e.refreshBalance(ctx, party.KindCustomer, sale.CustomerID)
}

// saleRevenueLegs splits the credit side by the fulfilling warehouse's
// semantics: company sales credit revenue outright, partner warehouses
// carve out the partner's share, exchange warehouses credit exchange
// revenue since the goods never were ours.
func saleRevenueLegs(sale *source.SaleSnapshot, total decimal.Decimal) []ledger.GLEntry {
	switch sale.Warehouse {
	case source.WarehousePartner:
		partnerShare := total.Mul(sale.PartnerShare).Round(2)
		companyShare := total.Sub(partnerShare)
		legs := make([]ledger.GLEntry, 0, 2)
		if companyShare.IsPositive() {
			legs = append(legs, ledger.CreditEntry(ledger.CodeRevenue, companyShare, sale.Number))
		}
		if partnerShare.IsPositive() {
			ref := sale.Number
			if sale.PartnerID != nil {
				ref = fmt.Sprintf("%s partner:%s", sale.Number, sale.PartnerID)
			}
			legs = append(legs, ledger.CreditEntry(ledger.CodePartnerRevenue, partnerShare, ref))
		}
		return legs
	case source.WarehouseExchange:
		return []ledger.GLEntry{ledger.CreditEntry(ledger.CodeExchangeRevenue, total, sale.Number)}
	default:
		return []ledger.GLEntry{ledger.CreditEntry(ledger.CodeRevenue, total, sale.Number)}
	}
}

// postSaleCost upserts the COGS batch for a sale when a cost is available.
// For exchange warehouses the credit goes to the supplier payable instead
// of inventory, since the sold goods belonged to the supplier.
func (e *Engine) postSaleCost(ctx context.Context, resolver *fx.Resolver, sale *source.SaleSnapshot) error {
	cost, memoSuffix, ok := e.saleCost(sale)
	if !ok {
		// no cost and no fallback: make sure a previously posted estimate
		// does not survive a re-post
		return e.ledger.VoidBySource(ctx, ledger.SourceTypeSale, sale.ID, ledger.PurposeCOGS)
	}

	conv := e.convert(ctx, resolver, cost, sale.Currency, sale.EffectiveDate)

	creditAccount := ledger.CodeInventory
	if sale.Warehouse == source.WarehouseExchange {
		creditAccount = ledger.CodeAccountsPayable
	}
	spec := ledger.BatchSpec{
		SourceType: ledger.SourceTypeSale,
		SourceID:   sale.ID,
		Purpose:    ledger.PurposeCOGS,
		Currency:   conv.currency,
		Memo:       fmt.Sprintf("cost of sale %s%s", sale.Number, memoSuffix),
		PostedAt:   sale.EffectiveDate,
		Entries: []ledger.GLEntry{
			ledger.DebitEntry(ledger.CodeCOGS, conv.amount, sale.Number),
			ledger.CreditEntry(creditAccount, conv.amount, sale.Number),
		},
		CurrencyUnresolved: conv.unresolved,
	}
	if sale.Warehouse == source.WarehouseExchange && sale.SupplierID != nil {
		spec.Entity = &ledger.EntityRef{Type: party.KindSupplier.String(), ID: *sale.SupplierID}
	}
	_, err := e.post(ctx, spec)
	return err
}

func (e *Engine) saleCost(sale *source.SaleSnapshot) (decimal.Decimal, string, bool) {
	if sale.CostTotal != nil && sale.CostTotal.IsPositive() {
		return *sale.CostTotal, "", true
	}
	if e.cfg.CostFallbackEnabled {
		return sale.Total.Mul(e.cfg.CostFallbackRatio).Round(2), " (estimated)", true
	}
	return decimal.Zero, "", false
}

// PostPayment posts cash/bank movement against the party's receivable or
// payable. Check-method payments are posted by the check lifecycle instead,
// so they are skipped here to avoid double counting.
func (e *Engine) PostPayment(ctx context.Context, paymentID uuid.UUID) error {
	p, err := e.reader.Payment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("read payment %s: %w", paymentID, err)
	}
	if p.Status != source.DocStatusCompleted {
		return nil
	}
	if p.Method == source.MethodCheck {
		e.logger.Debug("skipping check-method payment, posted by check lifecycle",
			zap.String("payment_id", paymentID.String()))
		return nil
	}

	resolver := fx.NewResolver(e.rates)
	conv := e.convert(ctx, resolver, p.Amount, p.Currency, p.EffectiveDate)

	cashAccount := ledger.CodeCash
	if p.Method == source.MethodBankTransfer {
		cashAccount = ledger.CodeBank
	}
	partyAccount := ledger.CodeAccountsReceivable
	if p.PartyKind == party.KindSupplier {
		partyAccount = ledger.CodeAccountsPayable
	}

	var entries []ledger.GLEntry
	if p.Direction == source.PaymentDirectionIn {
		entries = []ledger.GLEntry{
			ledger.DebitEntry(cashAccount, conv.amount, p.Number),
			ledger.CreditEntry(partyAccount, conv.amount, p.Number),
		}
	} else {
		entries = []ledger.GLEntry{
			ledger.DebitEntry(partyAccount, conv.amount, p.Number),
			ledger.CreditEntry(cashAccount, conv.amount, p.Number),
		}
	}

	_, err = e.post(ctx, ledger.BatchSpec{
		SourceType:         ledger.SourceTypePayment,
		SourceID:           p.ID,
		Purpose:            ledger.PurposePayment,
		Currency:           conv.currency,
		Memo:               fmt.Sprintf("payment %s", p.Number),
		PostedAt:           p.EffectiveDate,
		Entries:            entries,
		Entity:             &ledger.EntityRef{Type: p.PartyKind.String(), ID: p.PartyID},
		CurrencyUnresolved: conv.unresolved,
	})
	if err != nil {
		return err
	}
	return e.refreshBalance(ctx, p.PartyKind, p.PartyID)
}

// expenseAccounts maps expense categories to the 5xxx account they debit.
// Unknown categories fail loudly at posting time.
var expenseAccounts = map[source.ExpenseCategory]string{
	source.ExpenseGeneral: ledger.CodeGeneralExpense,
	source.ExpenseFreight: ledger.CodeFreightExpense,
	source.ExpenseSalary:  ledger.CodeSalaryExpense,
	source.ExpenseRent:    ledger.CodeRentExpense,
}

// PostExpense posts an expense: debit the category's expense account,
// credit cash/bank/payable depending on payment method.
func (e *Engine) PostExpense(ctx context.Context, expenseID uuid.UUID) error {
	exp, err := e.reader.Expense(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("read expense %s: %w", expenseID, err)
	}
	if exp.Status == source.DocStatusCancelled || exp.Status == source.DocStatusDraft {
		return nil
	}

	debitAccount, ok := expenseAccounts[exp.Category]
	if !ok {
		return fmt.Errorf("expense %s has unmapped category %q", exp.Number, exp.Category)
	}
	var creditAccount string
	switch exp.Method {
	case source.MethodCash:
		creditAccount = ledger.CodeCash
	case source.MethodBankTransfer:
		creditAccount = ledger.CodeBank
	case source.MethodCredit:
		creditAccount = ledger.CodeAccountsPayable
	case source.MethodCheck:
		creditAccount = ledger.CodeChecksPayable
	default:
		return fmt.Errorf("expense %s has unmapped payment method %q", exp.Number, exp.Method)
	}

	resolver := fx.NewResolver(e.rates)
	conv := e.convert(ctx, resolver, exp.Amount, exp.Currency, exp.EffectiveDate)

	spec := ledger.BatchSpec{
		SourceType: ledger.SourceTypeExpense,
		SourceID:   exp.ID,
		Purpose:    ledger.PurposeExpense,
		Currency:   conv.currency,
		Memo:       fmt.Sprintf("expense %s", exp.Number),
		PostedAt:   exp.EffectiveDate,
		Entries: []ledger.GLEntry{
			ledger.DebitEntry(debitAccount, conv.amount, exp.Number),
			ledger.CreditEntry(creditAccount, conv.amount, exp.Number),
		},
		CurrencyUnresolved: conv.unresolved,
	}
	if exp.SupplierID != nil {
		spec.Entity = &ledger.EntityRef{Type: party.KindSupplier.String(), ID: *exp.SupplierID}
	}
	if _, err := e.post(ctx, spec); err != nil {
		return err
	}
	if exp.SupplierID != nil {
		return e.refreshBalance(ctx, party.KindSupplier, *exp.SupplierID)
	}
	return nil
}

// PostShipment posts an arrived shipment at landed cost: debit inventory,
// credit the supplier's payable.
func (e *Engine) PostShipment(ctx context.Context, shipmentID uuid.UUID) error {
	sh, err := e.reader.Shipment(ctx, shipmentID)
	if err != nil {
		return fmt.Errorf("read shipment %s: %w", shipmentID, err)
	}
	if sh.Status != source.DocStatusArrived {
		return nil
	}

	resolver := fx.NewResolver(e.rates)
	conv := e.convert(ctx, resolver, sh.LandedCost(), sh.Currency, sh.EffectiveDate)

	_, err = e.post(ctx, ledger.BatchSpec{
		SourceType: ledger.SourceTypeShipment,
		SourceID:   sh.ID,
		Purpose:    ledger.PurposeLandedCost,
		Currency:   conv.currency,
		Memo:       fmt.Sprintf("shipment %s landed cost", sh.Number),
		PostedAt:   sh.EffectiveDate,
		Entries: []ledger.GLEntry{
			ledger.DebitEntry(ledger.CodeInventory, conv.amount, sh.Number),
			ledger.CreditEntry(ledger.CodeAccountsPayable, conv.amount, sh.Number),
		},
		Entity:             &ledger.EntityRef{Type: party.KindSupplier.String(), ID: sh.SupplierID},
		CurrencyUnresolved: conv.unresolved,
	})
	if err != nil {
		return err
	}
	return e.refreshBalance(ctx, party.KindSupplier, sh.SupplierID)
}

// PostService posts a completed service job: debit receivable, credit
// service revenue.
func (e *Engine) PostService(ctx context.Context, serviceID uuid.UUID) error {
	svc, err := e.reader.Service(ctx, serviceID)
	if err != nil {
		return fmt.Errorf("read service %s: %w", serviceID, err)
	}
	if svc.Status != source.DocStatusCompleted {
		return nil
	}

	resolver := fx.NewResolver(e.rates)
	conv := e.convert(ctx, resolver, svc.Amount, svc.Currency, svc.EffectiveDate)

	_, err = e.post(ctx, ledger.BatchSpec{
		SourceType: ledger.SourceTypeService,
		SourceID:   svc.ID,
		Purpose:    ledger.PurposeServiceRevenue,
		Currency:   conv.currency,
		Memo:       fmt.Sprintf("service %s", svc.Number),
		PostedAt:   svc.EffectiveDate,
		Entries: []ledger.GLEntry{
			ledger.DebitEntry(ledger.CodeAccountsReceivable, conv.amount, svc.Number),
			ledger.CreditEntry(ledger.CodeServiceRevenue, conv.amount, svc.Number),
		},
		Entity:             &ledger.EntityRef{Type: party.KindCustomer.String(), ID: svc.CustomerID},
		CurrencyUnresolved: conv.unresolved,
	})
	if err != nil {
		return err
	}
	return e.refreshBalance(ctx, party.KindCustomer, svc.CustomerID)
}

// PostCheckTransition posts the ledger effect of one check state change.
// Every transition has its own purpose so the receipt and its later
// reversal both stay in history.
func (e *Engine) PostCheckTransition(ctx context.Context, ev *check.CheckTransitionedEvent) error {
	resolver := fx.NewResolver(e.rates)
	conv := e.convert(ctx, resolver, ev.Amount, ev.Currency, ev.OccurredAt())

	purpose, entries, ok := checkPostingFor(ev, conv.amount)
	if !ok {
		// correction back to PENDING withdraws the reversal batch
		if ev.FromStatus == check.StatusReturned && ev.ToStatus == check.StatusPending {
			if err := e.ledger.VoidBySource(ctx, ledger.SourceTypeCheck, ev.CheckID, ledger.PurposeCheckReturn); err != nil {
				return err
			}
			return e.refreshBalance(ctx, ev.PartyKind, ev.PartyID)
		}
		return nil
	}

	_, err := e.post(ctx, ledger.BatchSpec{
		SourceType: ledger.SourceTypeCheck,
		SourceID:   ev.CheckID,
		Purpose:    purpose,
		Currency:   conv.currency,
		Memo:       fmt.Sprintf("check %s %s", ev.Number, ev.ToStatus),
		PostedAt:   ev.OccurredAt(),
		Entries:    entries,
		Entity:     &ledger.EntityRef{Type: ev.PartyKind.String(), ID: ev.PartyID},
		CurrencyUnresolved: conv.unresolved,
	})
	if err != nil {
		return err
	}
	return e.refreshBalance(ctx, ev.PartyKind, ev.PartyID)
}

// checkPostingFor maps (direction, from, to) to a posting. ok is false for
// transitions with no direct posting (outgoing ISSUED, corrections).
func checkPostingFor(ev *check.CheckTransitionedEvent, amount decimal.Decimal) (ledger.Purpose, []ledger.GLEntry, bool) {
	ref := ev.Number
	if ev.Direction == check.DirectionIncoming {
		switch {
		case ev.FromStatus == "" && ev.ToStatus == check.StatusPending:
			return ledger.PurposeCheckReceipt, []ledger.GLEntry{
				ledger.DebitEntry(ledger.CodeChecksReceivable, amount, ref),
				ledger.CreditEntry(ledger.CodeAccountsReceivable, amount, ref),
			}, true
		case ev.ToStatus == check.StatusCashed:
			return ledger.PurposeCheckCashed, []ledger.GLEntry{
				ledger.DebitEntry(ledger.CodeBank, amount, ref),
				ledger.CreditEntry(ledger.CodeChecksReceivable, amount, ref),
			}, true
		case ev.ToStatus == check.StatusBounced || ev.ToStatus == check.StatusReturned:
			return ledger.PurposeCheckReturn, []ledger.GLEntry{
				ledger.DebitEntry(ledger.CodeAccountsReceivable, amount, ref),
				ledger.CreditEntry(ledger.CodeChecksReceivable, amount, ref),
			}, true
		}
		return "", nil, false
	}

	switch {
	case ev.FromStatus == check.StatusIssued && ev.ToStatus == check.StatusPending:
		return ledger.PurposeCheckIssue, []ledger.GLEntry{
			ledger.DebitEntry(ledger.CodeAccountsPayable, amount, ref),
			ledger.CreditEntry(ledger.CodeChecksPayable, amount, ref),
		}, true
	case ev.ToStatus == check.StatusCashed:
		return ledger.PurposeCheckCashed, []ledger.GLEntry{
			ledger.DebitEntry(ledger.CodeChecksPayable, amount, ref),
			ledger.CreditEntry(ledger.CodeBank, amount, ref),
		}, true
	case ev.ToStatus == check.StatusBounced || ev.ToStatus == check.StatusReturned:
		return ledger.PurposeCheckReturn, []ledger.GLEntry{
			ledger.DebitEntry(ledger.CodeChecksPayable, amount, ref),
			ledger.CreditEntry(ledger.CodeAccountsPayable, amount, ref),
		}, true
	}
	return "", nil, false
}
