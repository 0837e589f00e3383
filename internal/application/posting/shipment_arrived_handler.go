package posting

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"go.uber.org/zap"
)

// ShipmentArrivedHandler posts the landed-cost batch for an arrived shipment
type ShipmentArrivedHandler struct {
	engine *Engine
	logger *zap.Logger
}

// NewShipmentArrivedHandler creates a new handler for shipment arrived events
func NewShipmentArrivedHandler(engine *Engine, logger *zap.Logger) *ShipmentArrivedHandler {
	return &ShipmentArrivedHandler{engine: engine, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ShipmentArrivedHandler) EventTypes() []string {
	return []string{source.EventTypeShipmentArrived}
}

// Handle posts the ledger batch for a ShipmentArrivedEvent
func (h *ShipmentArrivedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*source.ShipmentArrivedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", source.EventTypeShipmentArrived),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			source.EventTypeShipmentArrived, event.EventType())
	}

	h.logger.Info("processing shipment arrived event",
		zap.String("shipment_id", ev.ShipmentID.String()),
	)

	if err := h.engine.PostShipment(ctx, ev.ShipmentID); err != nil {
		h.logger.Error("failed to post shipment",
			zap.String("shipment_id", ev.ShipmentID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("post shipment %s: %w", ev.ShipmentID, err)
	}
	return nil
}

// Ensure ShipmentArrivedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ShipmentArrivedHandler)(nil)
