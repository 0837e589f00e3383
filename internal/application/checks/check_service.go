package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordCheckRequest carries the data for registering a check
type RecordCheckRequest struct {
	Number    string
	Amount    decimal.Decimal
	Currency  string
	PartyKind string
	PartyID   uuid.UUID
	DueDate   time.Time
	BankName  string
}

// Service manages the check lifecycle: registration and state transitions.
// Every successful change publishes the check's events so the posting
// engine can record the ledger effect.
type Service struct {
	checks   check.Repository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewService creates a check lifecycle service
func NewService(checks check.Repository, eventBus shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{checks: checks, eventBus: eventBus, logger: logger}
}

func (s *Service) record(ctx context.Context, req RecordCheckRequest, incoming bool) (*check.Check, error) {
	currency, err := valueobject.ParseCurrency(req.Currency)
	if err != nil {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid currency: %v", err)
	}
	kind, err := party.ParseKind(req.PartyKind)
	if err != nil {
		return nil, shared.NewDomainErrorf("INVALID_INPUT", "Invalid party kind: %v", err)
	}

	var c *check.Check
	if incoming {
		c, err = check.NewIncoming(req.Number, req.Amount, currency, kind, req.PartyID, req.DueDate)
	} else {
		c, err = check.NewOutgoing(req.Number, req.Amount, currency, kind, req.PartyID, req.DueDate)
	}
	if err != nil {
		return nil, err
	}
	if req.BankName != "" {
		c.BankName = req.BankName
	}

	if err := s.checks.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save check %s: %w", req.Number, err)
	}
	if err := s.publishEvents(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("check recorded",
		zap.String("check_id", c.ID.String()),
		zap.String("number", c.Number),
		zap.String("direction", c.Direction.String()),
		zap.String("status", c.Status.String()),
	)
	return c, nil
}

// RecordIncoming registers a check received from a party; it starts PENDING
// and the receipt is posted immediately.
func (s *Service) RecordIncoming(ctx context.Context, req RecordCheckRequest) (*check.Check, error) {
	return s.record(ctx, req, true)
}

// RecordOutgoing registers a check we wrote; it starts ISSUED and has no
// ledger effect until delivered.
func (s *Service) RecordOutgoing(ctx context.Context, req RecordCheckRequest) (*check.Check, error) {
	return s.record(ctx, req, false)
}

// ByParty lists a counterparty's checks, newest due date first
func (s *Service) ByParty(ctx context.Context, kind party.Kind, partyID uuid.UUID) ([]check.Check, error) {
	return s.checks.FindByParty(ctx, kind, partyID)
}

// Transition moves a check to a new status. Illegal transitions are
// rejected with the check left untouched.
func (s *Service) Transition(ctx context.Context, checkID uuid.UUID, to check.Status) (*check.Check, error) {
	c, err := s.checks.FindByID(ctx, checkID)
	if err != nil {
		return nil, fmt.Errorf("find check %s: %w", checkID, err)
	}

	from := c.Status
	if err := c.Transition(to); err != nil {
		return nil, err
	}
	if err := s.checks.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("save check %s: %w", checkID, err)
	}
	if err := s.publishEvents(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("check transitioned",
		zap.String("check_id", c.ID.String()),
		zap.String("number", c.Number),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	return c, nil
}

func (s *Service) publishEvents(ctx context.Context, c *check.Check) error {
	events := c.GetDomainEvents()
	c.ClearDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		return fmt.Errorf("publish check events: %w", err)
	}
	return nil
}
