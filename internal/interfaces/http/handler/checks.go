package handler

import (
	"time"

	"github.com/erp/ledger/internal/application/checks"
	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckHandler exposes check registration and lifecycle transitions
type CheckHandler struct {
	BaseHandler
	svc *checks.Service
}

// NewCheckHandler creates a check handler
func NewCheckHandler(svc *checks.Service) *CheckHandler {
	return &CheckHandler{svc: svc}
}

// RegisterRoutes registers check routes
func (h *CheckHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/checks")
	{
		group.POST("/incoming", h.RecordIncoming)
		group.POST("/outgoing", h.RecordOutgoing)
		group.POST("/:id/transition", h.Transition)
	}
	rg.GET("/parties/:kind/:id/checks", h.ByParty)
}

// RecordCheckRequest carries a new check registration
type RecordCheckRequest struct {
	Number    string          `json:"number" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Currency  string          `json:"currency" binding:"required"`
	PartyKind string          `json:"party_kind" binding:"required"`
	PartyID   uuid.UUID       `json:"party_id" binding:"required"`
	DueDate   string          `json:"due_date" binding:"required"`
	BankName  string          `json:"bank_name"`
}

// CheckResponse is the API shape of a check
type CheckResponse struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	Direction string          `json:"direction"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	PartyKind string          `json:"party_kind"`
	PartyID   uuid.UUID       `json:"party_id"`
	DueDate   string          `json:"due_date"`
	BankName  string          `json:"bank_name,omitempty"`
	Version   int             `json:"version"`
}

func toCheckResponse(c *check.Check) CheckResponse {
	return CheckResponse{
		ID:        c.ID,
		Number:    c.Number,
		Direction: c.Direction.String(),
		Status:    c.Status.String(),
		Amount:    c.Amount,
		Currency:  c.Currency.String(),
		PartyKind: c.PartyKind.String(),
		PartyID:   c.PartyID,
		DueDate:   c.DueDate.Format(dateLayout),
		BankName:  c.BankName,
		Version:   c.Version,
	}
}

func (h *CheckHandler) toServiceRequest(c *gin.Context, req RecordCheckRequest) (checks.RecordCheckRequest, bool) {
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due_date, expected YYYY-MM-DD")
		return checks.RecordCheckRequest{}, false
	}
	return checks.RecordCheckRequest{
		Number:    req.Number,
		Amount:    req.Amount,
		Currency:  req.Currency,
		PartyKind: req.PartyKind,
		PartyID:   req.PartyID,
		DueDate:   dueDate,
		BankName:  req.BankName,
	}, true
}

// RecordIncoming registers a check received from a counterparty
func (h *CheckHandler) RecordIncoming(c *gin.Context) {
	var req RecordCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svcReq, ok := h.toServiceRequest(c, req)
	if !ok {
		return
	}

	recorded, err := h.svc.RecordIncoming(c.Request.Context(), svcReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCheckResponse(recorded))
}

// RecordOutgoing registers a check we wrote
func (h *CheckHandler) RecordOutgoing(c *gin.Context) {
	var req RecordCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}
	svcReq, ok := h.toServiceRequest(c, req)
	if !ok {
		return
	}

	recorded, err := h.svc.RecordOutgoing(c.Request.Context(), svcReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toCheckResponse(recorded))
}

// TransitionRequest names the target status
type TransitionRequest struct {
	Status string `json:"status" binding:"required,oneof=ISSUED PENDING CASHED BOUNCED RETURNED"`
}

// Transition moves a check to a new lifecycle status
func (h *CheckHandler) Transition(c *gin.Context) {
	checkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid check ID")
		return
	}
	var req TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	transitioned, err := h.svc.Transition(c.Request.Context(), checkID, check.Status(req.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCheckResponse(transitioned))
}

// ByParty lists a counterparty's checks
func (h *CheckHandler) ByParty(c *gin.Context) {
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

	result, err := h.svc.ByParty(c.Request.Context(), kind, partyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]CheckResponse, 0, len(result))
	for i := range result {
		resp = append(resp, toCheckResponse(&result[i]))
	}
	h.Success(c, resp)
}
