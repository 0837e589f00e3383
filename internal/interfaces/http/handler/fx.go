package handler

import (
	"time"

	"github.com/erp/ledger/internal/domain/fx"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format for plain dates
const dateLayout = "2006-01-02"

// FXRateHandler exposes conversion rate management
type FXRateHandler struct {
	BaseHandler
	rates fx.RateRepository
}

// NewFXRateHandler creates an FX rate handler
func NewFXRateHandler(rates fx.RateRepository) *FXRateHandler {
	return &FXRateHandler{rates: rates}
}

// RegisterRoutes registers FX rate routes
func (h *FXRateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/fx-rates")
	{
		group.PUT("", h.Save)
		group.GET("/effective", h.Effective)
	}
}

// SaveRateRequest carries one dated conversion rate
type SaveRateRequest struct {
	Base  string          `json:"base" binding:"required"`
	Quote string          `json:"quote" binding:"required"`
	AsOf  string          `json:"as_of" binding:"required"`
	Rate  decimal.Decimal `json:"rate" binding:"required"`
}

// RateResponse is the API shape of a stored rate
type RateResponse struct {
	Base  string          `json:"base"`
	Quote string          `json:"quote"`
	AsOf  string          `json:"as_of"`
	Rate  decimal.Decimal `json:"rate"`
}

func toRateResponse(r *fx.Rate) RateResponse {
	return RateResponse{
		Base:  r.Base.String(),
		Quote: r.Quote.String(),
		AsOf:  r.AsOf.Format(dateLayout),
		Rate:  r.Rate,
	}
}

// Save stores a rate for a currency pair and date, replacing any rate
// already stored for that day
func (h *FXRateHandler) Save(c *gin.Context) {
	var req SaveRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	base, err := valueobject.ParseCurrency(req.Base)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	quote, err := valueobject.ParseCurrency(req.Quote)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	asOf, err := time.Parse(dateLayout, req.AsOf)
	if err != nil {
		h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
		return
	}

	rate, err := fx.NewRate(base, quote, asOf, req.Rate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.rates.Save(c.Request.Context(), rate); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRateResponse(rate))
}

// Effective returns the rate in force for a pair on a date: the exact
// date's rate, or the most recent one before it
func (h *FXRateHandler) Effective(c *gin.Context) {
	base, err := valueobject.ParseCurrency(c.Query("base"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	quote, err := valueobject.ParseCurrency(c.Query("quote"))
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	asOf := time.Now()
	if s := c.Query("as_of"); s != "" {
		asOf, err = time.Parse(dateLayout, s)
		if err != nil {
			h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
			return
		}
	}

	rate, err := h.rates.FindEffective(c.Request.Context(), base, quote, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toRateResponse(rate))
}
