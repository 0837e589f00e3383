package posting

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/source"
	"go.uber.org/zap"
)

// ServiceCompletedHandler posts the service revenue batch for a completed job
type ServiceCompletedHandler struct {
	engine *Engine
	logger *zap.Logger
}

// NewServiceCompletedHandler creates a new handler for service completed events
func NewServiceCompletedHandler(engine *Engine, logger *zap.Logger) *ServiceCompletedHandler {
	return &ServiceCompletedHandler{engine: engine, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ServiceCompletedHandler) EventTypes() []string {
	return []string{source.EventTypeServiceCompleted}
}

// Handle posts the ledger batch for a ServiceCompletedEvent
func (h *ServiceCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ev, ok := event.(*source.ServiceCompletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", source.EventTypeServiceCompleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			source.EventTypeServiceCompleted, event.EventType())
	}

	h.logger.Info("processing service completed event",
		zap.String("service_id", ev.ServiceID.String()),
	)

	if err := h.engine.PostService(ctx, ev.ServiceID); err != nil {
		h.logger.Error("failed to post service",
			zap.String("service_id", ev.ServiceID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("post service %s: %w", ev.ServiceID, err)
	}
	return nil
}

// Ensure ServiceCompletedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ServiceCompletedHandler)(nil)
