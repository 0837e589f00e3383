package posting

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"go.uber.org/zap"
)

// OpeningBalanceHandler posts (or re-posts) a party's opening balance batch
// whenever the party is created or the opening amount is edited.
type OpeningBalanceHandler struct {
	engine *Engine
	logger *zap.Logger
}

// NewOpeningBalanceHandler creates a new handler for opening balance events
func NewOpeningBalanceHandler(engine *Engine, logger *zap.Logger) *OpeningBalanceHandler {
	return &OpeningBalanceHandler{engine: engine, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OpeningBalanceHandler) EventTypes() []string {
	return []string{source.EventTypeOpeningBalanceChanged}
}

// Handle posts the ledger batch for an OpeningBalanceChangedEvent
func (h *OpeningBalanceHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*source.OpeningBalanceChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", source.EventTypeOpeningBalanceChanged),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			source.EventTypeOpeningBalanceChanged, event.EventType())
	}

	h.logger.Info("processing opening balance changed event",
		zap.String("party_kind", ev.PartyKind.String()),
		zap.String("party_id", ev.PartyID.String()),
	)

	if err := h.engine.PostOpening(ctx, ev.PartyKind, ev.PartyID); err != nil {
		h.logger.Error("failed to post opening balance",
			zap.String("party_kind", ev.PartyKind.String()),
			zap.String("party_id", ev.PartyID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("post opening balance for %s %s: %w", ev.PartyKind, ev.PartyID, err)
	}
	return nil
}

// Ensure OpeningBalanceHandler implements shared.EventHandler
var _ shared.EventHandler = (*OpeningBalanceHandler)(nil)
