package posting

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"go.uber.org/zap"
)

// ExpenseRecordedHandler posts the expense batch for a recorded expense
type ExpenseRecordedHandler struct {
	engine *Engine
	logger *zap.Logger
}

// NewExpenseRecordedHandler creates a new handler for expense recorded events
func NewExpenseRecordedHandler(engine *Engine, logger *zap.Logger) *ExpenseRecordedHandler {
	return &ExpenseRecordedHandler{engine: engine, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ExpenseRecordedHandler) EventTypes() []string {
	return []string{source.EventTypeExpenseRecorded}
}

// Handle posts the ledger batch for an ExpenseRecordedEvent
func (h *ExpenseRecordedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*source.ExpenseRecordedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", source.EventTypeExpenseRecorded),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			source.EventTypeExpenseRecorded, event.EventType())
	}

	h.logger.Info("processing expense recorded event",
		zap.String("expense_id", ev.ExpenseID.String()),
	)

	if err := h.engine.PostExpense(ctx, ev.ExpenseID); err != nil {
		h.logger.Error("failed to post expense",
			zap.String("expense_id", ev.ExpenseID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("post expense %s: %w", ev.ExpenseID, err)
	}
	return nil
}

// Ensure ExpenseRecordedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ExpenseRecordedHandler)(nil)
