package check

import (
	"time"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type for check events
const AggregateTypeCheck = "Check"

// Event type constants
const EventTypeCheckTransitioned = "CheckTransitioned"

// CheckTransitionedEvent is raised on every status change, including the
// initial PENDING/ISSUED state on creation (FromStatus empty).
type CheckTransitionedEvent struct {
	shared.BaseDomainEvent
	CheckID    uuid.UUID            `json:"check_id"`
	Number     string               `json:"number"`
	Direction  Direction            `json:"direction"`
	FromStatus Status               `json:"from_status"`
	ToStatus   Status               `json:"to_status"`
	Amount     decimal.Decimal      `json:"amount"`
	Currency   valueobject.Currency `json:"currency"`
	PartyKind  party.Kind           `json:"party_kind"`
	PartyID    uuid.UUID            `json:"party_id"`
	DueDate    time.Time            `json:"due_date"`
}

// NewCheckTransitionedEvent creates a transition event from a check
func NewCheckTransitionedEvent(c *Check, from, to Status) *CheckTransitionedEvent {
	return &CheckTransitionedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCheckTransitioned, AggregateTypeCheck, c.ID),
		CheckID:         c.ID,
		Number:          c.Number,
		Direction:       c.Direction,
		FromStatus:      from,
		ToStatus:        to,
		Amount:          c.Amount,
		Currency:        c.Currency,
		PartyKind:       c.PartyKind,
		PartyID:         c.PartyID,
		DueDate:         c.DueDate,
	}
}
