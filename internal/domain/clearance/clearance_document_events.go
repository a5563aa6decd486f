package clearance

import (
	"time"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeClearanceDocument = "ClearanceDocument"

// Event type constants
const (
	EventTypeClearanceDocumentCreated   = "ClearanceDocumentCreated"
	EventTypeClearanceDocumentValidated = "ClearanceDocumentValidated"
	EventTypeClearanceDocumentCancelled = "ClearanceDocumentCancelled"
	EventTypeReceiptAttached            = "ClearanceReceiptAttached"
	EventTypeReceiptDetached            = "ClearanceReceiptDetached"
)

// ClearanceDocumentCreatedEvent is raised when a new clearance document is created
type ClearanceDocumentCreatedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	CustomsNumber  string    `json:"customs_number"`
	CustomsDate    time.Time `json:"customs_date"`
}

// NewClearanceDocumentCreatedEvent creates a new ClearanceDocumentCreatedEvent
func NewClearanceDocumentCreatedEvent(doc *ClearanceDocument) *ClearanceDocumentCreatedEvent {
	return &ClearanceDocumentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClearanceDocumentCreated, AggregateTypeClearanceDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		CustomsNumber:   doc.CustomsNumber,
		CustomsDate:     doc.CustomsDate,
	}
}

// EventType returns the event type name
func (e *ClearanceDocumentCreatedEvent) EventType() string {
	return EventTypeClearanceDocumentCreated
}

// ClearanceDocumentValidatedEvent is raised when a document transitions to DONE.
// Downstream consumers (invoice backfill) read the customs number and date off it.
type ClearanceDocumentValidatedEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID       `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	CustomsNumber  string          `json:"customs_number"`
	CustomsDate    time.Time       `json:"customs_date"`
	ReceiptIDs     []uuid.UUID     `json:"receipt_ids"`
	TotalCost      decimal.Decimal `json:"total_cost"`
}

// NewClearanceDocumentValidatedEvent creates a new ClearanceDocumentValidatedEvent
func NewClearanceDocumentValidatedEvent(doc *ClearanceDocument) *ClearanceDocumentValidatedEvent {
	receiptIDs := make([]uuid.UUID, len(doc.Receipts))
	for i, link := range doc.Receipts {
		receiptIDs[i] = link.ReceiptID
	}

	return &ClearanceDocumentValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClearanceDocumentValidated, AggregateTypeClearanceDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		CustomsNumber:   doc.CustomsNumber,
		CustomsDate:     doc.CustomsDate,
		ReceiptIDs:      receiptIDs,
		TotalCost:       doc.TotalCost,
	}
}

// EventType returns the event type name
func (e *ClearanceDocumentValidatedEvent) EventType() string {
	return EventTypeClearanceDocumentValidated
}

// ClearanceDocumentCancelledEvent is raised when a document is cancelled,
// either directly from DRAFT or through the safe-cancel capability from DONE
type ClearanceDocumentCancelledEvent struct {
	shared.BaseDomainEvent
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	CustomsNumber  string    `json:"customs_number"`
	WasValidated   bool      `json:"was_validated"`
	CancelReason   string    `json:"cancel_reason"`
}

// NewClearanceDocumentCancelledEvent creates a new ClearanceDocumentCancelledEvent
func NewClearanceDocumentCancelledEvent(doc *ClearanceDocument, wasValidated bool) *ClearanceDocumentCancelledEvent {
	return &ClearanceDocumentCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClearanceDocumentCancelled, AggregateTypeClearanceDocument, doc.ID),
		DocumentID:      doc.ID,
		DocumentNumber:  doc.DocumentNumber,
		CustomsNumber:   doc.CustomsNumber,
		WasValidated:    wasValidated,
		CancelReason:    doc.CancelReason,
	}
}

// EventType returns the event type name
func (e *ClearanceDocumentCancelledEvent) EventType() string {
	return EventTypeClearanceDocumentCancelled
}

// ReceiptAttachedEvent is raised when a receipt joins a document's receipt set
type ReceiptAttachedEvent struct {
	shared.BaseDomainEvent
	DocumentID    uuid.UUID `json:"document_id"`
	CustomsNumber string    `json:"customs_number"`
	ReceiptID     uuid.UUID `json:"receipt_id"`
	ReceiptName   string    `json:"receipt_name"`
}

// NewReceiptAttachedEvent creates a new ReceiptAttachedEvent
func NewReceiptAttachedEvent(doc *ClearanceDocument, receiptID uuid.UUID, receiptName string) *ReceiptAttachedEvent {
	return &ReceiptAttachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptAttached, AggregateTypeClearanceDocument, doc.ID),
		DocumentID:      doc.ID,
		CustomsNumber:   doc.CustomsNumber,
		ReceiptID:       receiptID,
		ReceiptName:     receiptName,
	}
}

// EventType returns the event type name
func (e *ReceiptAttachedEvent) EventType() string {
	return EventTypeReceiptAttached
}

// ReceiptDetachedEvent is raised when a receipt leaves a draft document's receipt set
type ReceiptDetachedEvent struct {
	shared.BaseDomainEvent
	DocumentID    uuid.UUID `json:"document_id"`
	CustomsNumber string    `json:"customs_number"`
	ReceiptID     uuid.UUID `json:"receipt_id"`
	ReceiptName   string    `json:"receipt_name"`
}

// NewReceiptDetachedEvent creates a new ReceiptDetachedEvent
func NewReceiptDetachedEvent(doc *ClearanceDocument, receiptID uuid.UUID, receiptName string) *ReceiptDetachedEvent {
	return &ReceiptDetachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptDetached, AggregateTypeClearanceDocument, doc.ID),
		DocumentID:      doc.ID,
		CustomsNumber:   doc.CustomsNumber,
		ReceiptID:       receiptID,
		ReceiptName:     receiptName,
	}
}

// EventType returns the event type name
func (e *ReceiptDetachedEvent) EventType() string {
	return EventTypeReceiptDetached
}
