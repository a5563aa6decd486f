package procurement

import (
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeProcurementOrder = "ProcurementOrder"

// Event type constants
const (
	EventTypeProcurementOrderCreated   = "ProcurementOrderCreated"
	EventTypeProcurementOrderConfirmed = "ProcurementOrderConfirmed"
	EventTypeProcurementOrderCancelled = "ProcurementOrderCancelled"
	EventTypeProcurementOrderReverted  = "ProcurementOrderReverted"
	EventTypeClearanceDocumentLinked   = "ProcurementClearanceLinked"
	EventTypeClearanceDocumentCleared  = "ProcurementClearanceCleared"
)

// ProcurementOrderCreatedEvent is raised when a new procurement order is created
type ProcurementOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	PartnerID   uuid.UUID `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
}

// NewProcurementOrderCreatedEvent creates a new ProcurementOrderCreatedEvent
func NewProcurementOrderCreatedEvent(order *ProcurementOrder) *ProcurementOrderCreatedEvent {
	return &ProcurementOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProcurementOrderCreated, AggregateTypeProcurementOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PartnerID:       order.PartnerID,
		PartnerName:     order.PartnerName,
	}
}

// EventType returns the event type name
func (e *ProcurementOrderCreatedEvent) EventType() string {
	return EventTypeProcurementOrderCreated
}

// ProcurementOrderConfirmedEvent is raised when a procurement order is confirmed
type ProcurementOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	PartnerID     uuid.UUID `json:"partner_id"`
	PartnerName   string    `json:"partner_name"`
	CustomsNumber string    `json:"customs_number,omitempty"`
}

// NewProcurementOrderConfirmedEvent creates a new ProcurementOrderConfirmedEvent
func NewProcurementOrderConfirmedEvent(order *ProcurementOrder) *ProcurementOrderConfirmedEvent {
	return &ProcurementOrderConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProcurementOrderConfirmed, AggregateTypeProcurementOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PartnerID:       order.PartnerID,
		PartnerName:     order.PartnerName,
		CustomsNumber:   order.CustomsNumber,
	}
}

// EventType returns the event type name
func (e *ProcurementOrderConfirmedEvent) EventType() string {
	return EventTypeProcurementOrderConfirmed
}

// ProcurementOrderCancelledEvent is raised when a procurement order is cancelled
type ProcurementOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	PartnerID    uuid.UUID `json:"partner_id"`
	CancelReason string    `json:"cancel_reason"`
}

// NewProcurementOrderCancelledEvent creates a new ProcurementOrderCancelledEvent
func NewProcurementOrderCancelledEvent(order *ProcurementOrder) *ProcurementOrderCancelledEvent {
	return &ProcurementOrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProcurementOrderCancelled, AggregateTypeProcurementOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		PartnerID:       order.PartnerID,
		CancelReason:    order.CancelReason,
	}
}

// EventType returns the event type name
func (e *ProcurementOrderCancelledEvent) EventType() string {
	return EventTypeProcurementOrderCancelled
}

// ClearanceDocumentLinkedEvent is raised when an order starts referencing a clearance document
type ClearanceDocumentLinkedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	DocumentID    uuid.UUID `json:"document_id"`
	CustomsNumber string    `json:"customs_number"`
}

// NewClearanceDocumentLinkedEvent creates a new ClearanceDocumentLinkedEvent
func NewClearanceDocumentLinkedEvent(order *ProcurementOrder, documentID uuid.UUID) *ClearanceDocumentLinkedEvent {
	return &ClearanceDocumentLinkedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClearanceDocumentLinked, AggregateTypeProcurementOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		DocumentID:      documentID,
		CustomsNumber:   order.CustomsNumber,
	}
}

// EventType returns the event type name
func (e *ClearanceDocumentLinkedEvent) EventType() string {
	return EventTypeClearanceDocumentLinked
}

// ClearanceDocumentClearedEvent is raised when an order's clearance document reference is dropped
type ClearanceDocumentClearedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	DocumentID  uuid.UUID `json:"document_id"`
}

// NewClearanceDocumentClearedEvent creates a new ClearanceDocumentClearedEvent
func NewClearanceDocumentClearedEvent(order *ProcurementOrder, documentID uuid.UUID) *ClearanceDocumentClearedEvent {
	return &ClearanceDocumentClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClearanceDocumentCleared, AggregateTypeProcurementOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		DocumentID:      documentID,
	}
}

// EventType returns the event type name
func (e *ClearanceDocumentClearedEvent) EventType() string {
	return EventTypeClearanceDocumentCleared
}

// ProcurementOrderRevertedEvent is raised once a reversal completes for an
// order. The notify-list handler turns it into operator notifications.
type ProcurementOrderRevertedEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID   `json:"order_id"`
	OrderNumber       string      `json:"order_number"`
	CancelledReceipts []uuid.UUID `json:"cancelled_receipts"`
	CreatedReturns    []uuid.UUID `json:"created_returns"`
	FailedReceipts    []uuid.UUID `json:"failed_receipts"`
	DocumentID        *uuid.UUID  `json:"document_id,omitempty"`
	DocumentCancelled bool        `json:"document_cancelled"`
	RevertedBy        string      `json:"reverted_by,omitempty"`
}

// NewProcurementOrderRevertedEvent creates a new ProcurementOrderRevertedEvent
func NewProcurementOrderRevertedEvent(order *ProcurementOrder, cancelledReceipts, createdReturns, failedReceipts []uuid.UUID, documentID *uuid.UUID, documentCancelled bool, revertedBy string) *ProcurementOrderRevertedEvent {
	return &ProcurementOrderRevertedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeProcurementOrderReverted, AggregateTypeProcurementOrder, order.ID),
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		CancelledReceipts: cancelledReceipts,
		CreatedReturns:    createdReturns,
		FailedReceipts:    failedReceipts,
		DocumentID:        documentID,
		DocumentCancelled: documentCancelled,
		RevertedBy:        revertedBy,
	}
}

// EventType returns the event type name
func (e *ProcurementOrderRevertedEvent) EventType() string {
	return EventTypeProcurementOrderReverted
}
