package posting

import (
	"github.com/erp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// RegisterHandlers subscribes every posting handler on the event bus.
// Called once at startup.
func RegisterHandlers(bus shared.EventSubscriber, engine *Engine, logger *zap.Logger) {
	bus.Subscribe(NewSaleConfirmedHandler(engine, logger))
	bus.Subscribe(NewPaymentCompletedHandler(engine, logger))
	bus.Subscribe(NewExpenseRecordedHandler(engine, logger))
	bus.Subscribe(NewShipmentArrivedHandler(engine, logger))
	bus.Subscribe(NewServiceCompletedHandler(engine, logger))
	bus.Subscribe(NewOpeningBalanceHandler(engine, logger))
	bus.Subscribe(NewCheckTransitionHandler(engine, logger))
}
