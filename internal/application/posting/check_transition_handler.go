package posting

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/check"
	"github.com/erp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// CheckTransitionHandler posts the ledger effect of every check state change
type CheckTransitionHandler struct {
	engine *Engine
	logger *zap.Logger
}

// NewCheckTransitionHandler creates a new handler for check transition events
func NewCheckTransitionHandler(engine *Engine, logger *zap.Logger) *CheckTransitionHandler {
	return &CheckTransitionHandler{engine: engine, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CheckTransitionHandler) EventTypes() []string {
	return []string{check.EventTypeCheckTransitioned}
}

// Handle posts the ledger batch for a CheckTransitionedEvent
func (h *CheckTransitionHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*check.CheckTransitionedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", check.EventTypeCheckTransitioned),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			check.EventTypeCheckTransitioned, event.EventType())
	}

	h.logger.Info("processing check transition event",
		zap.String("check_id", ev.CheckID.String()),
		zap.String("number", ev.Number),
		zap.String("from", ev.FromStatus.String()),
		zap.String("to", ev.ToStatus.String()),
	)

	if err := h.engine.PostCheckTransition(ctx, ev); err != nil {
		h.logger.Error("failed to post check transition",
			zap.String("check_id", ev.CheckID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("post check %s transition: %w", ev.CheckID, err)
	}
	return nil
}

// Ensure CheckTransitionHandler implements shared.EventHandler
var _ shared.EventHandler = (*CheckTransitionHandler)(nil)
