package posting

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"go.uber.org/zap"
)

// SaleConfirmedHandler posts the revenue and cost batches for a confirmed sale
type SaleConfirmedHandler struct {
	engine *Engine
	logger *zap.Logger
}

// NewSaleConfirmedHandler creates a new handler for sale confirmed events
func NewSaleConfirmedHandler(engine *Engine, logger *zap.Logger) *SaleConfirmedHandler {
	return &SaleConfirmedHandler{engine: engine, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *SaleConfirmedHandler) EventTypes() []string {
	return []string{source.EventTypeSaleConfirmed}
}

// Handle posts the ledger batches for a SaleConfirmedEvent
func (h *SaleConfirmedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*source.SaleConfirmedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", source.EventTypeSaleConfirmed),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			source.EventTypeSaleConfirmed, event.EventType())
	}

	h.logger.Info("processing sale confirmed event",
		zap.String("sale_id", ev.SaleID.String()),
	)

	if err := h.engine.PostSale(ctx, ev.SaleID); err != nil {
		h.logger.Error("failed to post sale",
			zap.String("sale_id", ev.SaleID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("post sale %s: %w", ev.SaleID, err)
	}
	return nil
}

// Ensure SaleConfirmedHandler implements shared.EventHandler
var _ shared.EventHandler = (*SaleConfirmedHandler)(nil)
