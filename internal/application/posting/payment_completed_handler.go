package posting

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"go.uber.org/zap"
)

// PaymentCompletedHandler posts the cash movement batch for a completed payment
type PaymentCompletedHandler struct {
	engine *Engine
	logger *zap.Logger
}

// NewPaymentCompletedHandler creates a new handler for payment completed events
func NewPaymentCompletedHandler(engine *Engine, logger *zap.Logger) *PaymentCompletedHandler {
	return &PaymentCompletedHandler{engine: engine, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentCompletedHandler) EventTypes() []string {
	return []string{source.EventTypePaymentCompleted}
}

// Handle posts the ledger batch for a PaymentCompletedEvent
func (h *PaymentCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*source.PaymentCompletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", source.EventTypePaymentCompleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			source.EventTypePaymentCompleted, event.EventType())
	}

	h.logger.Info("processing payment completed event",
		zap.String("payment_id", ev.PaymentID.String()),
	)

	if err := h.engine.PostPayment(ctx, ev.PaymentID); err != nil {
		h.logger.Error("failed to post payment",
			zap.String("payment_id", ev.PaymentID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("post payment %s: %w", ev.PaymentID, err)
	}
	return nil
}

// Ensure PaymentCompletedHandler implements shared.EventHandler
var _ shared.EventHandler = (*PaymentCompletedHandler)(nil)
