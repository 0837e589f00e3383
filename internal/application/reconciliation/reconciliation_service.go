package reconciliation

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/bank"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StatementLine is one row of an imported bank statement
type StatementLine struct {
	Date        time.Time
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// ImportStatementRequest carries an uploaded statement
type ImportStatementRequest struct {
	BankAccountID  uuid.UUID
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ClosingBalance decimal.Decimal
	Lines          []StatementLine
}

// MatchResult summarizes one auto-match run
type MatchResult struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// Service drives bank reconciliation: statement import, the auto-match
// pass, and confirmation of a reconciliation period.
type Service struct {
	accounts        bank.AccountRepository
	statements      bank.StatementRepository
	transactions    bank.TransactionRepository
	payments        bank.BookPaymentRepository
	reconciliations bank.ReconciliationRepository
	matcher         *bank.Matcher
	logger          *zap.Logger
}

// NewService creates a reconciliation service
func NewService(
	accounts bank.AccountRepository,
	statements bank.StatementRepository,
	transactions bank.TransactionRepository,
	payments bank.BookPaymentRepository,
	reconciliations bank.ReconciliationRepository,
	matcher *bank.Matcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		accounts:        accounts,
		statements:      statements,
		transactions:    transactions,
		payments:        payments,
		reconciliations: reconciliations,
		matcher:         matcher,
		logger:          logger,
	}
}

// ImportStatement stores a statement and its lines as unmatched
// transactions. Importing does not match; call AutoMatch afterwards.
func (s *Service) ImportStatement(ctx context.Context, req ImportStatementRequest) (*bank.Statement, error) {
	if _, err := s.accounts.FindByID(ctx, req.BankAccountID); err != nil {
		return nil, fmt.Errorf("find bank account %s: %w", req.BankAccountID, err)
	}

	stmt, err := bank.NewStatement(req.BankAccountID, req.PeriodStart, req.PeriodEnd, req.ClosingBalance)
	if err != nil {
		return nil, err
	}

	txns := make([]*bank.Transaction, 0, len(req.Lines))
	for i, line := range req.Lines {
		txn, err := bank.NewTransaction(req.BankAccountID, stmt.ID, line.Date, line.Description, line.Debit, line.Credit)
		if err != nil {
			return nil, fmt.Errorf("statement line %d: %w", i+1, err)
		}
		txns = append(txns, txn)
	}

	if err := s.statements.Save(ctx, stmt); err != nil {
		return nil, fmt.Errorf("save statement: %w", err)
	}
	if err := s.transactions.SaveAll(ctx, txns); err != nil {
		return nil, fmt.Errorf("save statement lines: %w", err)
	}

	s.logger.Info("bank statement imported",
		zap.String("statement_id", stmt.ID.String()),
		zap.String("bank_account_id", req.BankAccountID.String()),
		zap.Int("lines", len(txns)),
	)
	return stmt, nil
}

// AutoMatch runs the greedy matcher over the account's unmatched statement
// lines and book payments, persisting every pair it finds. Lines the
// matcher leaves alone stay unmatched for manual review.
func (s *Service) AutoMatch(ctx context.Context, bankAccountID uuid.UUID) (MatchResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "auto_match",
		telemetry.WithAttribute("bank_account_id", bankAccountID.String()))
	defer span.End()

	txns, err := s.transactions.FindUnmatched(ctx, bankAccountID)
	if err != nil {
		err = fmt.Errorf("load unmatched transactions: %w", err)
		telemetry.RecordError(span, err)
		return MatchResult{}, err
	}
	payments, err := s.payments.FindUnmatched(ctx, bankAccountID)
	if err != nil {
		err = fmt.Errorf("load unmatched payments: %w", err)
		telemetry.RecordError(span, err)
		return MatchResult{}, err
	}

	pairs := s.matcher.Match(txns, payments)

	byID := make(map[uuid.UUID]*bank.Transaction, len(txns))
	for _, t := range txns {
		byID[t.ID] = t
	}
	paymentByID := make(map[uuid.UUID]*bank.BookPayment, len(payments))
	for _, p := range payments {
		paymentByID[p.ID] = p
	}
	for _, pair := range pairs {
		if err := s.transactions.Save(ctx, byID[pair.TransactionID]); err != nil {
			return MatchResult{}, fmt.Errorf("save matched transaction %s: %w", pair.TransactionID, err)
		}
		if err := s.payments.Save(ctx, paymentByID[pair.PaymentID]); err != nil {
			return MatchResult{}, fmt.Errorf("save matched payment %s: %w", pair.PaymentID, err)
		}
	}

	result := MatchResult{Matched: len(pairs), Unmatched: len(txns) - len(pairs)}
	telemetry.SetAttributes(span, "matched", result.Matched, "unmatched", result.Unmatched)
	s.logger.Info("auto-match pass completed",
		zap.String("bank_account_id", bankAccountID.String()),
		zap.Int("matched", result.Matched),
		zap.Int("unmatched", result.Unmatched),
	)
	return result, nil
}

// MatchManually pairs one statement line with one book payment by hand,
// for the lines the greedy pass left for review.
func (s *Service) MatchManually(ctx context.Context, transactionID, paymentID uuid.UUID) error {
	txn, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("find transaction %s: %w", transactionID, err)
	}
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("find payment %s: %w", paymentID, err)
	}
	if err := txn.MarkMatched(paymentID); err != nil {
		return err
	}
	if err := payment.MarkMatched(); err != nil {
		return err
	}
	if err := s.transactions.Save(ctx, txn); err != nil {
		return fmt.Errorf("save transaction: %w", err)
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	s.logger.Info("manual match recorded",
		zap.String("transaction_id", transactionID.String()),
		zap.String("payment_id", paymentID.String()),
	)
	return nil
}

// StartReconciliation opens a reconciliation for a period, capturing the
// current book balance against the statement's closing balance.
func (s *Service) StartReconciliation(ctx context.Context, bankAccountID uuid.UUID,
	periodStart, periodEnd time.Time, bookBalance, bankBalance decimal.Decimal) (*bank.Reconciliation, error) {
	rec, err := bank.NewReconciliation(bankAccountID, periodStart, periodEnd, bookBalance, bankBalance)
	if err != nil {
		return nil, err
	}
	if err := s.reconciliations.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save reconciliation: %w", err)
	}
	return rec, nil
}

// Confirm completes a reconciliation, recording who confirmed it
func (s *Service) Confirm(ctx context.Context, reconciliationID, userID uuid.UUID) (*bank.Reconciliation, error) {
	rec, err := s.reconciliations.FindByID(ctx, reconciliationID)
	if err != nil {
		return nil, fmt.Errorf("find reconciliation %s: %w", reconciliationID, err)
	}
	if err := rec.Confirm(userID); err != nil {
		return nil, err
	}
	if err := s.reconciliations.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save reconciliation: %w", err)
	}
	s.logger.Info("reconciliation confirmed",
		zap.String("reconciliation_id", rec.ID.String()),
		zap.String("confirmed_by", userID.String()),
	)
	return rec, nil
}
