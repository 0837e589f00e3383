package handler

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/application/reconciliation"
	"github.com/erp/ledger/internal/domain/bank"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationHandler exposes bank account setup, statement import and
// the reconciliation workflow
type ReconciliationHandler struct {
	BaseHandler
	svc      *reconciliation.Service
	accounts bank.AccountRepository
}

// NewReconciliationHandler creates a reconciliation handler
func NewReconciliationHandler(svc *reconciliation.Service, accounts bank.AccountRepository) *ReconciliationHandler {
	return &ReconciliationHandler{svc: svc, accounts: accounts}
}

// RegisterRoutes registers bank reconciliation routes
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	bankAccounts := rg.Group("/bank-accounts")
	{
		bankAccounts.POST("", h.CreateBankAccount)
		bankAccounts.POST("/:id/statements", h.ImportStatement)
		bankAccounts.POST("/:id/automatch", h.AutoMatch)
		bankAccounts.POST("/:id/reconciliations", h.StartReconciliation)
	}
	rg.POST("/bank-transactions/:id/match", h.MatchManually)
	rg.POST("/reconciliations/:id/confirm", h.Confirm)
}

// CreateBankAccountRequest carries a new bank account
type CreateBankAccountRequest struct {
	Name          string `json:"name" binding:"required"`
	AccountNumber string `json:"account_number" binding:"required"`
	Currency      string `json:"currency" binding:"required"`
	LedgerCode    string `json:"ledger_code" binding:"required"`
}

// BankAccountResponse is the API shape of a bank account
type BankAccountResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	AccountNumber string    `json:"account_number"`
	Currency      string    `json:"currency"`
	LedgerCode    string    `json:"ledger_code"`
}

// CreateBankAccount registers a bank account and the GL code it posts to
func (h *ReconciliationHandler) CreateBankAccount(c *gin.Context) {
	var req CreateBankAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	currency, err := valueobject.ParseCurrency(req.Currency)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := bank.NewAccount(req.Name, req.AccountNumber, currency, req.LedgerCode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.accounts.Save(c.Request.Context(), account); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, BankAccountResponse{
		ID:            account.ID,
		Name:          account.Name,
		AccountNumber: account.AccountNumber,
		Currency:      account.Currency.String(),
		LedgerCode:    account.LedgerCode,
	})
}

// StatementLineRequest is one row of an uploaded statement
type StatementLineRequest struct {
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// ImportStatementRequest carries an uploaded bank statement
type ImportStatementRequest struct {
	PeriodStart    string                 `json:"period_start" binding:"required"`
	PeriodEnd      string                 `json:"period_end" binding:"required"`
	ClosingBalance decimal.Decimal        `json:"closing_balance"`
	Lines          []StatementLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// StatementResponse is the API shape of an imported statement
type StatementResponse struct {
	ID             uuid.UUID       `json:"id"`
	BankAccountID  uuid.UUID       `json:"bank_account_id"`
	PeriodStart    string          `json:"period_start"`
	PeriodEnd      string          `json:"period_end"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Lines          int             `json:"lines"`
}

// ImportStatement stores a statement's lines as unmatched bank transactions
func (h *ReconciliationHandler) ImportStatement(c *gin.Context) {
	bankAccountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID")
		return
	}
	var req ImportStatementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	periodStart, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		h.BadRequest(c, "Invalid period_start, expected YYYY-MM-DD")
		return
	}
	periodEnd, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		h.BadRequest(c, "Invalid period_end, expected YYYY-MM-DD")
		return
	}

	lines := make([]reconciliation.StatementLine, 0, len(req.Lines))
	for i, l := range req.Lines {
		date, err := time.Parse(dateLayout, l.Date)
		if err != nil {
			h.BadRequest(c, fmt.Sprintf("Invalid date in line %d, expected YYYY-MM-DD", i+1))
			return
		}
		lines = append(lines, reconciliation.StatementLine{
			Date:        date,
			Description: l.Description,
			Debit:       l.Debit,
			Credit:      l.Credit,
		})
	}

	statement, err := h.svc.ImportStatement(c.Request.Context(), reconciliation.ImportStatementRequest{
		BankAccountID:  bankAccountID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		ClosingBalance: req.ClosingBalance,
		Lines:          lines,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, StatementResponse{
		ID:             statement.ID,
		BankAccountID:  statement.BankAccountID,
		PeriodStart:    statement.PeriodStart.Format(dateLayout),
		PeriodEnd:      statement.PeriodEnd.Format(dateLayout),
		ClosingBalance: statement.ClosingBalance,
		Lines:          len(req.Lines),
	})
}

// AutoMatch runs one greedy matching pass over the account's unmatched
// transactions and book payments
func (h *ReconciliationHandler) AutoMatch(c *gin.Context) {
	bankAccountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID")
		return
	}

	result, err := h.svc.AutoMatch(c.Request.Context(), bankAccountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// MatchManuallyRequest names the book payment to pair with a transaction
type MatchManuallyRequest struct {
	PaymentID uuid.UUID `json:"payment_id" binding:"required"`
}

// MatchManually pairs one bank transaction with one book payment
func (h *ReconciliationHandler) MatchManually(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}
	var req MatchManuallyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.svc.MatchManually(c.Request.Context(), transactionID, req.PaymentID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// StartReconciliationRequest opens a draft reconciliation for a period
type StartReconciliationRequest struct {
	PeriodStart string          `json:"period_start" binding:"required"`
	PeriodEnd   string          `json:"period_end" binding:"required"`
	BookBalance decimal.Decimal `json:"book_balance"`
	BankBalance decimal.Decimal `json:"bank_balance"`
}

// ReconciliationResponse is the API shape of a reconciliation
type ReconciliationResponse struct {
	ID          uuid.UUID       `json:"id"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	BookBalance decimal.Decimal `json:"book_balance"`
	BankBalance decimal.Decimal `json:"bank_balance"`
	Difference  decimal.Decimal `json:"difference"`
	Status      string          `json:"status"`
	ConfirmedBy *uuid.UUID      `json:"confirmed_by,omitempty"`
}

func toReconciliationResponse(r *bank.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ID:          r.ID,
		PeriodStart: r.PeriodStart.Format(dateLayout),
		PeriodEnd:   r.PeriodEnd.Format(dateLayout),
		BookBalance: r.BookBalance,
		BankBalance: r.BankBalance,
		Difference:  r.Difference(),
		Status:      string(r.Status),
		ConfirmedBy: r.ConfirmedBy,
	}
}

// StartReconciliation opens a draft reconciliation
func (h *ReconciliationHandler) StartReconciliation(c *gin.Context) {
	bankAccountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID")
		return
	}
	var req StartReconciliationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	periodStart, err := time.Parse(dateLayout, req.PeriodStart)
	if err != nil {
		h.BadRequest(c, "Invalid period_start, expected YYYY-MM-DD")
		return
	}
	periodEnd, err := time.Parse(dateLayout, req.PeriodEnd)
	if err != nil {
		h.BadRequest(c, "Invalid period_end, expected YYYY-MM-DD")
		return
	}

	rec, err := h.svc.StartReconciliation(c.Request.Context(), bankAccountID,
		periodStart, periodEnd, req.BookBalance, req.BankBalance)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toReconciliationResponse(rec))
}

// Confirm completes a reconciliation. The confirming user comes from the
// X-User-ID header.
func (h *ReconciliationHandler) Confirm(c *gin.Context) {
	reconciliationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid reconciliation ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid "+UserIDHeader+" header")
		return
	}

	rec, err := h.svc.Confirm(c.Request.Context(), reconciliationID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReconciliationResponse(rec))
}
