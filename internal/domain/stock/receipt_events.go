package stock

import (
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeReceiptTransaction = "ReceiptTransaction"

// Event type constants
const (
	EventTypeReceiptCreated   = "ReceiptCreated"
	EventTypeReceiptConfirmed = "ReceiptConfirmed"
	EventTypeReceiptCompleted = "ReceiptCompleted"
	EventTypeReceiptCancelled = "ReceiptCancelled"
	EventTypeReturnCreated    = "ReturnReceiptCreated"
)

// ReceiptCreatedEvent is raised when a new receipt is created for an order
type ReceiptCreatedEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID `json:"receipt_id"`
	ReceiptNumber string    `json:"receipt_number"`
	OrderID       uuid.UUID `json:"order_id"`
	PartnerID     uuid.UUID `json:"partner_id"`
	IsReturn      bool      `json:"is_return"`
}

// NewReceiptCreatedEvent creates a new ReceiptCreatedEvent
func NewReceiptCreatedEvent(receipt *ReceiptTransaction) *ReceiptCreatedEvent {
	return &ReceiptCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptCreated, AggregateTypeReceiptTransaction, receipt.ID),
		ReceiptID:       receipt.ID,
		ReceiptNumber:   receipt.ReceiptNumber,
		OrderID:         receipt.OrderID,
		PartnerID:       receipt.PartnerID,
		IsReturn:        receipt.IsReturn(),
	}
}

// EventType returns the event type name
func (e *ReceiptCreatedEvent) EventType() string {
	return EventTypeReceiptCreated
}

// ReceiptConfirmedEvent is raised when a receipt is confirmed
type ReceiptConfirmedEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID `json:"receipt_id"`
	ReceiptNumber string    `json:"receipt_number"`
	OrderID       uuid.UUID `json:"order_id"`
}

// NewReceiptConfirmedEvent creates a new ReceiptConfirmedEvent
func NewReceiptConfirmedEvent(receipt *ReceiptTransaction) *ReceiptConfirmedEvent {
	return &ReceiptConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptConfirmed, AggregateTypeReceiptTransaction, receipt.ID),
		ReceiptID:       receipt.ID,
		ReceiptNumber:   receipt.ReceiptNumber,
		OrderID:         receipt.OrderID,
	}
}

// EventType returns the event type name
func (e *ReceiptConfirmedEvent) EventType() string {
	return EventTypeReceiptConfirmed
}

// ReceiptCompletedEvent is raised when goods have actually moved. The clearance
// link handler listens for it to attach the receipt to the order's document.
type ReceiptCompletedEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	OrderID       uuid.UUID       `json:"order_id"`
	PartnerID     uuid.UUID       `json:"partner_id"`
	IsReturn      bool            `json:"is_return"`
	TotalMoved    decimal.Decimal `json:"total_moved"`
}

// NewReceiptCompletedEvent creates a new ReceiptCompletedEvent
func NewReceiptCompletedEvent(receipt *ReceiptTransaction) *ReceiptCompletedEvent {
	return &ReceiptCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptCompleted, AggregateTypeReceiptTransaction, receipt.ID),
		ReceiptID:       receipt.ID,
		ReceiptNumber:   receipt.ReceiptNumber,
		OrderID:         receipt.OrderID,
		PartnerID:       receipt.PartnerID,
		IsReturn:        receipt.IsReturn(),
		TotalMoved:      receipt.TotalMovedQuantity(),
	}
}

// EventType returns the event type name
func (e *ReceiptCompletedEvent) EventType() string {
	return EventTypeReceiptCompleted
}

// ReceiptCancelledEvent is raised when a receipt is cancelled. The clearance
// link handler listens for it to detach the receipt from its draft document.
type ReceiptCancelledEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID `json:"receipt_id"`
	ReceiptNumber string    `json:"receipt_number"`
	OrderID       uuid.UUID `json:"order_id"`
	Reason        string    `json:"reason"`
}

// NewReceiptCancelledEvent creates a new ReceiptCancelledEvent
func NewReceiptCancelledEvent(receipt *ReceiptTransaction, reason string) *ReceiptCancelledEvent {
	return &ReceiptCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptCancelled, AggregateTypeReceiptTransaction, receipt.ID),
		ReceiptID:       receipt.ID,
		ReceiptNumber:   receipt.ReceiptNumber,
		OrderID:         receipt.OrderID,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *ReceiptCancelledEvent) EventType() string {
	return EventTypeReceiptCancelled
}

// ReturnCreatedEvent is raised when a return receipt is created for a
// completed origin receipt
type ReturnCreatedEvent struct {
	shared.BaseDomainEvent
	ReceiptID       uuid.UUID `json:"receipt_id"`
	ReceiptNumber   string    `json:"receipt_number"`
	OriginReceiptID uuid.UUID `json:"origin_receipt_id"`
	OrderID         uuid.UUID `json:"order_id"`
}

// NewReturnCreatedEvent creates a new ReturnCreatedEvent
func NewReturnCreatedEvent(receipt *ReceiptTransaction, originReceiptID uuid.UUID) *ReturnCreatedEvent {
	return &ReturnCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnCreated, AggregateTypeReceiptTransaction, receipt.ID),
		ReceiptID:       receipt.ID,
		ReceiptNumber:   receipt.ReceiptNumber,
		OriginReceiptID: originReceiptID,
		OrderID:         receipt.OrderID,
	}
}

// EventType returns the event type name
func (e *ReturnCreatedEvent) EventType() string {
	return EventTypeReturnCreated
}
