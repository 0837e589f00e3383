package ledger

import (
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type for ledger events
const AggregateTypeGLBatch = "GLBatch"

// Event type constants
const (
	EventTypeBatchPosted = "GLBatchPosted"
	EventTypeBatchVoided = "GLBatchVoided"
)

// BatchPostedEvent is raised whenever a batch is posted or re-posted
type BatchPostedEvent struct {
	shared.BaseDomainEvent
	BatchID    uuid.UUID       `json:"batch_id"`
	SourceType SourceType      `json:"source_type"`
	SourceID   uuid.UUID       `json:"source_id"`
	Purpose    Purpose         `json:"purpose"`
	EntityType string          `json:"entity_type,omitempty"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty"`
	Total      decimal.Decimal `json:"total"`
}

// NewBatchPostedEvent creates a BatchPostedEvent from a batch
func NewBatchPostedEvent(b *GLBatch) *BatchPostedEvent {
	return &BatchPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchPosted, AggregateTypeGLBatch, b.ID),
		BatchID:         b.ID,
		SourceType:      b.SourceType,
		SourceID:        b.SourceID,
		Purpose:         b.Purpose,
		EntityType:      b.EntityType,
		EntityID:        b.EntityID,
		Total:           b.TotalDebit(),
	}
}

// BatchVoidedEvent is raised when a batch is voided
type BatchVoidedEvent struct {
	shared.BaseDomainEvent
	BatchID    uuid.UUID  `json:"batch_id"`
	SourceType SourceType `json:"source_type"`
	SourceID   uuid.UUID  `json:"source_id"`
	Purpose    Purpose    `json:"purpose"`
}

// NewBatchVoidedEvent creates a BatchVoidedEvent from a batch
func NewBatchVoidedEvent(b *GLBatch) *BatchVoidedEvent {
	return &BatchVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchVoided, AggregateTypeGLBatch, b.ID),
		BatchID:         b.ID,
		SourceType:      b.SourceType,
		SourceID:        b.SourceID,
		Purpose:         b.Purpose,
	}
}
