package check

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction says whether the check was received or issued by us
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIncoming || d == DirectionOutgoing
}

// String returns the string representation
func (d Direction) String() string {
	return string(d)
}

// Status is the lifecycle state of a check
type Status string

const (
	StatusIssued   Status = "ISSUED" // outgoing only: written but not yet delivered
	StatusPending  Status = "PENDING"
	StatusCashed   Status = "CASHED"
	StatusBounced  Status = "BOUNCED"
	StatusReturned Status = "RETURNED"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusIssued, StatusPending, StatusCashed, StatusBounced, StatusReturned:
		return true
	}
	return false
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// transitions is the closed table of allowed state changes. Transitions are
// one-way except the RETURNED -> PENDING correction path.
var transitions = map[Status][]Status{
	StatusIssued:   {StatusPending},
	StatusPending:  {StatusCashed, StatusBounced, StatusReturned},
	StatusReturned: {StatusPending},
	StatusCashed:   {},
	StatusBounced:  {},
}

// CanTransition reports whether from -> to is in the allowed table
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Check is a financial instrument whose status is mutated only through
// Transition. Each transition emits a CheckTransitioned event the posting
// engine turns into a ledger batch.
type Check struct {
	shared.BaseAggregateRoot
	Number    string
	Direction Direction
	Status    Status
	Amount    decimal.Decimal
	Currency  valueobject.Currency
	PartyKind party.Kind
	PartyID   uuid.UUID
	DueDate   time.Time
	BankName  string
}

// NewIncoming records a check received from a customer; it starts PENDING.
func NewIncoming(number string, amount decimal.Decimal, currency valueobject.Currency,
	partyKind party.Kind, partyID uuid.UUID, dueDate time.Time) (*Check, error) {
	return newCheck(number, DirectionIncoming, StatusPending, amount, currency, partyKind, partyID, dueDate)
}

// NewOutgoing records a check we wrote; it starts ISSUED until delivered.
func NewOutgoing(number string, amount decimal.Decimal, currency valueobject.Currency,
	partyKind party.Kind, partyID uuid.UUID, dueDate time.Time) (*Check, error) {
	return newCheck(number, DirectionOutgoing, StatusIssued, amount, currency, partyKind, partyID, dueDate)
}

func newCheck(number string, direction Direction, status Status, amount decimal.Decimal,
	currency valueobject.Currency, partyKind party.Kind, partyID uuid.UUID, dueDate time.Time) (*Check, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Check number cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_INPUT", "Check amount must be positive")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid currency %q", currency)
	}
	if !partyKind.IsValid() || partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Check needs a counterparty reference")
	}
	c := &Check{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Direction:         direction,
		Status:            status,
		Amount:            amount,
		Currency:          currency,
		PartyKind:         partyKind,
		PartyID:           partyID,
		DueDate:           dueDate,
	}
	c.AddDomainEvent(NewCheckTransitionedEvent(c, "", status))
	return c, nil
}

// Transition moves the check to a new status. An illegal transition fails
// naming the attempted and current states, and leaves the check unchanged;
// it never silently no-ops.
func (c *Check) Transition(to Status) error {
	if !to.IsValid() {
		return shared.NewDomainErrorf(shared.CodeIllegalCheckTransition,
			"Unknown check status %q (current %s)", to, c.Status)
	}
	if !CanTransition(c.Status, to) {
		return shared.NewDomainErrorf(shared.CodeIllegalCheckTransition,
			"Check %s cannot move from %s to %s", c.Number, c.Status, to)
	}
	from := c.Status
	c.Status = to
	c.IncrementVersion()
	c.AddDomainEvent(NewCheckTransitionedEvent(c, from, to))
	return nil
}

// Repository persists checks
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Check, error)
	Save(ctx context.Context, c *Check) error
	FindByParty(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]Check, error)
}
