package handler

import (
	"time"

	"github.com/erp/ledger/internal/application/reporting"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportingHandler exposes ledger queries: trial balance, account and
// entity ledgers, and party balance breakdowns
type ReportingHandler struct {
	BaseHandler
	svc *reporting.Service
}

// NewReportingHandler creates a reporting handler
func NewReportingHandler(svc *reporting.Service) *ReportingHandler {
	return &ReportingHandler{svc: svc}
}

// RegisterRoutes registers reporting routes
func (h *ReportingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports/trial-balance", h.TrialBalance)
	rg.GET("/accounts/:code/ledger", h.AccountLedger)
	rg.GET("/entities/:type/:id/ledger", h.EntityLedger)
	rg.GET("/parties/:kind/:id/balance", h.PartyBalance)
}

// parseDateRange reads optional from/to query params as YYYY-MM-DD
func parseDateRange(c *gin.Context) (shared.DateRange, bool) {
	var r shared.DateRange
	if s := c.Query("from"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return r, false
		}
		r.From = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse(dateLayout, s)
		if err != nil {
			return r, false
		}
		r.To = t
	}
	return r, true
}

// parseFilter reads pagination query params with defaults
func parseFilter(c *gin.Context) shared.Filter {
	f := shared.DefaultFilter()
	var q struct {
		Page     int `form:"page"`
		PageSize int `form:"page_size"`
	}
	if err := c.ShouldBindQuery(&q); err == nil {
		if q.Page > 0 {
			f.Page = q.Page
		}
		if q.PageSize > 0 {
			f.PageSize = q.PageSize
		}
	}
	return f
}

// TrialBalance returns per-account debit/credit totals for a period,
// optionally narrowed to one counterparty
func (h *ReportingHandler) TrialBalance(c *gin.Context) {
	dateRange, ok := parseDateRange(c)
	if !ok {
		h.BadRequest(c, "Invalid date filter, expected YYYY-MM-DD")
		return
	}

	q := ledger.TrialBalanceQuery{
		Range:      dateRange,
		EntityType: c.Query("entity_type"),
	}
	if s := c.Query("entity_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			h.BadRequest(c, "Invalid entity_id")
			return
		}
		q.EntityID = &id
	}

	rows, err := h.svc.TrialBalance(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// AccountLedger returns one account's entries with running balance
func (h *ReportingHandler) AccountLedger(c *gin.Context) {
	dateRange, ok := parseDateRange(c)
	if !ok {
		h.BadRequest(c, "Invalid date filter, expected YYYY-MM-DD")
		return
	}

	result, err := h.svc.AccountLedger(c.Request.Context(), ledger.AccountLedgerQuery{
		AccountCode: c.Param("code"),
		Range:       dateRange,
		Filter:      parseFilter(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// EntityLedger returns every entry tagged with one counterparty
func (h *ReportingHandler) EntityLedger(c *gin.Context) {
	dateRange, ok := parseDateRange(c)
	if !ok {
		h.BadRequest(c, "Invalid date filter, expected YYYY-MM-DD")
		return
	}
	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID")
		return
	}

	result, err := h.svc.EntityLedger(c.Request.Context(), ledger.EntityLedgerQuery{
		EntityType: c.Param("type"),
		EntityID:   entityID,
		Range:      dateRange,
		Filter:     parseFilter(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// PartyBalance returns a counterparty's materialized balance breakdown
func (h *ReportingHandler) PartyBalance(c *gin.Context) {
	kind, err := party.ParseKind(c.Param("kind"))
	if err != nil {
		h.BadRequest(c, "Invalid party kind")
		return
	}
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	breakdown, err := h.svc.PartyBalance(c.Request.Context(), kind, partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, breakdown)
}
