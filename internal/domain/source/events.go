package source

import (
	"github.com/erp/ledger/internal/domain/party"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate types for source-document events
const (
	AggregateTypeSale     = "Sale"
	AggregateTypePayment  = "Payment"
	AggregateTypeExpense  = "Expense"
	AggregateTypeShipment = "Shipment"
	AggregateTypeService  = "ServiceJob"
	AggregateTypeParty    = "Party"
)

// Event type constants. The business layer publishes these after committing
// the corresponding state transition; the posting engine subscribes.
const (
	EventTypeSaleConfirmed         = "SaleConfirmed"
	EventTypePaymentCompleted      = "PaymentCompleted"
	EventTypeExpenseRecorded       = "ExpenseRecorded"
	EventTypeShipmentArrived       = "ShipmentArrived"
	EventTypeServiceCompleted      = "ServiceCompleted"
	EventTypeOpeningBalanceChanged = "OpeningBalanceChanged"
)

// SaleConfirmedEvent signals a sale entered CONFIRMED status
type SaleConfirmedEvent struct {
	shared.BaseDomainEvent
	SaleID uuid.UUID `json:"sale_id"`
}

// NewSaleConfirmedEvent creates a SaleConfirmedEvent
func NewSaleConfirmedEvent(saleID uuid.UUID) *SaleConfirmedEvent {
	return &SaleConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleConfirmed, AggregateTypeSale, saleID),
		SaleID:          saleID,
	}
}

// PaymentCompletedEvent signals a payment entered COMPLETED status
type PaymentCompletedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID `json:"payment_id"`
}

// NewPaymentCompletedEvent creates a PaymentCompletedEvent
func NewPaymentCompletedEvent(paymentID uuid.UUID) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCompleted, AggregateTypePayment, paymentID),
		PaymentID:       paymentID,
	}
}

// ExpenseRecordedEvent signals an expense was recorded
type ExpenseRecordedEvent struct {
	shared.BaseDomainEvent
	ExpenseID uuid.UUID `json:"expense_id"`
}

// NewExpenseRecordedEvent creates an ExpenseRecordedEvent
func NewExpenseRecordedEvent(expenseID uuid.UUID) *ExpenseRecordedEvent {
	return &ExpenseRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseRecorded, AggregateTypeExpense, expenseID),
		ExpenseID:       expenseID,
	}
}

// ShipmentArrivedEvent signals a purchase shipment arrived
type ShipmentArrivedEvent struct {
	shared.BaseDomainEvent
	ShipmentID uuid.UUID `json:"shipment_id"`
}

// NewShipmentArrivedEvent creates a ShipmentArrivedEvent
func NewShipmentArrivedEvent(shipmentID uuid.UUID) *ShipmentArrivedEvent {
	return &ShipmentArrivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeShipmentArrived, AggregateTypeShipment, shipmentID),
		ShipmentID:      shipmentID,
	}
}

// ServiceCompletedEvent signals a service job completed
type ServiceCompletedEvent struct {
	shared.BaseDomainEvent
	ServiceID uuid.UUID `json:"service_id"`
}

// NewServiceCompletedEvent creates a ServiceCompletedEvent
func NewServiceCompletedEvent(serviceID uuid.UUID) *ServiceCompletedEvent {
	return &ServiceCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeServiceCompleted, AggregateTypeService, serviceID),
		ServiceID:       serviceID,
	}
}

// OpeningBalanceChangedEvent signals a party was created or its opening
// balance edited
type OpeningBalanceChangedEvent struct {
	shared.BaseDomainEvent
	PartyKind party.Kind `json:"party_kind"`
	PartyID   uuid.UUID  `json:"party_id"`
}

// NewOpeningBalanceChangedEvent creates an OpeningBalanceChangedEvent
func NewOpeningBalanceChangedEvent(kind party.Kind, partyID uuid.UUID) *OpeningBalanceChangedEvent {
	return &OpeningBalanceChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOpeningBalanceChanged, AggregateTypeParty, partyID),
		PartyKind:       kind,
		PartyID:         partyID,
	}
}
