package parties

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service manages counterparties. Creating a party or editing its opening
// balance publishes an OpeningBalanceChanged event; the posting engine
// re-posts the opening batch and recomputes the materialized balances.
type Service struct {
	parties  party.Repository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewService creates a party service
func NewService(parties party.Repository, eventBus shared.EventPublisher, logger *zap.Logger) *Service {
	return &Service{parties: parties, eventBus: eventBus, logger: logger}
}

// Create registers a counterparty with an opening balance
func (s *Service) Create(ctx context.Context, kind party.Kind, name string, opening decimal.Decimal) (*party.Party, error) {
	p, err := party.NewParty(kind, name, opening)
	if err != nil {
		return nil, err
	}
	if err := s.parties.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save party %s: %w", name, err)
	}

	ev := source.NewOpeningBalanceChangedEvent(p.Kind, p.ID)
	if err := s.eventBus.Publish(ctx, ev); err != nil {
		return nil, fmt.Errorf("publish opening balance event for %s: %w", p.ID, err)
	}

	s.logger.Info("party created",
		zap.String("party_id", p.ID.String()),
		zap.String("kind", p.Kind.String()),
		zap.String("name", p.Name),
		zap.String("opening_balance", opening.String()),
	)
	return p, nil
}

// Get loads a counterparty
func (s *Service) Get(ctx context.Context, kind party.Kind, id uuid.UUID) (*party.Party, error) {
	return s.parties.FindByID(ctx, kind, id)
}

// SetOpeningBalance changes a party's opening balance and triggers the
// opening batch re-post
func (s *Service) SetOpeningBalance(ctx context.Context, kind party.Kind, id uuid.UUID, amount decimal.Decimal) (*party.Party, error) {
	p, err := s.parties.FindByID(ctx, kind, id)
	if err != nil {
		return nil, fmt.Errorf("find party %s: %w", id, err)
	}

	p.SetOpeningBalance(amount)
	if err := s.parties.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save party %s: %w", id, err)
	}

	ev := source.NewOpeningBalanceChangedEvent(p.Kind, p.ID)
	if err := s.eventBus.Publish(ctx, ev); err != nil {
		return nil, fmt.Errorf("publish opening balance event for %s: %w", p.ID, err)
	}

	s.logger.Info("opening balance changed",
		zap.String("party_id", p.ID.String()),
		zap.String("kind", p.Kind.String()),
		zap.String("opening_balance", amount.String()),
	)
	return p, nil
}
