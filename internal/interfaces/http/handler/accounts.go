package handler

import (
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// AccountHandler exposes the chart of accounts
type AccountHandler struct {
	BaseHandler
	accounts ledger.AccountRepository
	chart    *cache.ChartCache
}

// NewAccountHandler creates an account handler
func NewAccountHandler(accounts ledger.AccountRepository, chart *cache.ChartCache) *AccountHandler {
	return &AccountHandler{accounts: accounts, chart: chart}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.List)
		accounts.GET("/:code", h.Get)
		accounts.POST("", h.Create)
		accounts.PATCH("/:code", h.Update)
	}
}

// AccountResponse is the API shape of a chart account
type AccountResponse struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

func toAccountResponse(a *ledger.Account) AccountResponse {
	return AccountResponse{
		Code:   a.Code,
		Name:   a.Name,
		Type:   a.Type.String(),
		Active: a.Active,
	}
}

// List returns the full chart of accounts
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.FindAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		resp = append(resp, toAccountResponse(&accounts[i]))
	}
	h.Success(c, resp)
}

// Get returns a single account by code
func (h *AccountHandler) Get(c *gin.Context) {
	account, err := h.accounts.FindByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toAccountResponse(account))
}

// CreateAccountRequest carries a new chart account
type CreateAccountRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
}

// Create adds an account to the chart
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	account, err := ledger.NewAccount(req.Code, req.Name, ledger.AccountType(req.Type))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	ctx := c.Request.Context()
	if existing, err := h.accounts.FindByCode(ctx, req.Code); err == nil && existing != nil {
		h.Conflict(c, "Account code already exists")
		return
	}
	if err := h.accounts.Save(ctx, account); err != nil {
		h.HandleError(c, err)
		return
	}

	h.chart.Invalidate()
	h.Created(c, toAccountResponse(account))
}

// UpdateAccountRequest renames or toggles an account. The code is immutable.
type UpdateAccountRequest struct {
	Name   *string `json:"name"`
	Active *bool   `json:"active"`
}

// Update renames or activates/deactivates an account. Renames are refused
// once posted entries reference the account.
func (h *AccountHandler) Update(c *gin.Context) {
	var req UpdateAccountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Name == nil && req.Active == nil {
		h.BadRequest(c, "Nothing to update")
		return
	}

	ctx := c.Request.Context()
	account, err := h.accounts.FindByCode(ctx, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.Name != nil && *req.Name != account.Name {
		referenced, err := h.accounts.IsReferenced(ctx, account.Code)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if referenced {
			h.ErrorWithCode(c, dto.ErrCodeConflict, "Account is referenced by posted entries and cannot be renamed")
			return
		}
		account.Name = *req.Name
	}
	if req.Active != nil {
		if *req.Active {
			account.Activate()
		} else {
			account.Deactivate()
		}
	}

	if err := h.accounts.Save(ctx, account); err != nil {
		h.HandleError(c, err)
		return
	}

	h.chart.Invalidate()
	h.Success(c, toAccountResponse(account))
}
