package handler

import (
	"time"

	"github.com/erp/ledger/internal/application/parties"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyHandler exposes counterparty management
type PartyHandler struct {
	BaseHandler
	svc *parties.Service
}

// NewPartyHandler creates a party handler
func NewPartyHandler(svc *parties.Service) *PartyHandler {
	return &PartyHandler{svc: svc}
}

// RegisterRoutes registers party routes
func (h *PartyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/parties")
	{
		group.POST("", h.Create)
		group.GET("/:kind/:id", h.Get)
		group.PUT("/:kind/:id/opening-balance", h.SetOpeningBalance)
	}
}

// CreatePartyRequest carries a new counterparty
type CreatePartyRequest struct {
	Kind           string          `json:"kind" binding:"required"`
	Name           string          `json:"name" binding:"required"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// PartyResponse is the API shape of a counterparty
type PartyResponse struct {
	ID             uuid.UUID                          `json:"id"`
	Kind           string                             `json:"kind"`
	Name           string                             `json:"name"`
	Currency       string                             `json:"currency"`
	OpeningBalance decimal.Decimal                    `json:"opening_balance"`
	SubBalances    map[party.Category]decimal.Decimal `json:"sub_balances"`
	CurrentBalance decimal.Decimal                    `json:"current_balance"`
	Approximate    bool                               `json:"approximate"`
	BalanceAsOf    *time.Time                         `json:"balance_as_of,omitempty"`
}

func toPartyResponse(p *party.Party) PartyResponse {
	return PartyResponse{
		ID:             p.ID,
		Kind:           p.Kind.String(),
		Name:           p.Name,
		Currency:       p.Currency.String(),
		OpeningBalance: p.OpeningBalance,
		SubBalances:    p.SubBalances,
		CurrentBalance: p.CurrentBalance,
		Approximate:    p.Approximate,
		BalanceAsOf:    p.BalanceAsOf,
	}
}

// Create registers a counterparty. Its opening balance batch is posted
// asynchronously through the event bus.
func (h *PartyHandler) Create(c *gin.Context) {
	var req CreatePartyRequest
	if !h.BindJSON(c, &req) {
		return
	}
	kind, err := party.ParseKind(req.Kind)
	if err != nil {
		h.BadRequest(c, "Invalid party kind")
		return
	}

	created, err := h.svc.Create(c.Request.Context(), kind, req.Name, req.OpeningBalance)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPartyResponse(created))
}

// Get returns a counterparty with its materialized balances
func (h *PartyHandler) Get(c *gin.Context) {
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

	p, err := h.svc.Get(c.Request.Context(), kind, partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPartyResponse(p))
}

// SetOpeningBalanceRequest carries the new opening amount
type SetOpeningBalanceRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// SetOpeningBalance changes a party's opening balance
func (h *PartyHandler) SetOpeningBalance(c *gin.Context) {
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
	var req SetOpeningBalanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.SetOpeningBalance(c.Request.Context(), kind, partyID, req.Amount)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPartyResponse(p))
}
