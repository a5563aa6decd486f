package finance

import (
	"time"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeVendorInvoice = "VendorInvoice"

// Event type constants
const (
	EventTypeVendorInvoiceCreated   = "VendorInvoiceCreated"
	EventTypeVendorInvoicePosted    = "VendorInvoicePosted"
	EventTypeVendorInvoiceCancelled = "VendorInvoiceCancelled"
	EventTypeVendorInvoicePaid      = "VendorInvoicePaid"
	EventTypeCustomsInfoApplied     = "VendorInvoiceCustomsInfoApplied"
)

// VendorInvoiceCreatedEvent is raised when a new invoice is created
type VendorInvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID  `json:"invoice_id"`
	InvoiceNumber string     `json:"invoice_number"`
	PartnerID     uuid.UUID  `json:"partner_id"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
}

// NewVendorInvoiceCreatedEvent creates a new VendorInvoiceCreatedEvent
func NewVendorInvoiceCreatedEvent(invoice *VendorInvoice) *VendorInvoiceCreatedEvent {
	return &VendorInvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoiceCreated, AggregateTypeVendorInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		PartnerID:       invoice.PartnerID,
		OrderID:         invoice.OrderID,
	}
}

// EventType returns the event type name
func (e *VendorInvoiceCreatedEvent) EventType() string {
	return EventTypeVendorInvoiceCreated
}

// VendorInvoicePostedEvent is raised when an invoice is booked. The customs
// backfill handler listens for it.
type VendorInvoicePostedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	OrderID       *uuid.UUID      `json:"order_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewVendorInvoicePostedEvent creates a new VendorInvoicePostedEvent
func NewVendorInvoicePostedEvent(invoice *VendorInvoice) *VendorInvoicePostedEvent {
	return &VendorInvoicePostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoicePosted, AggregateTypeVendorInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		OrderID:         invoice.OrderID,
		TotalAmount:     invoice.TotalAmount,
	}
}

// EventType returns the event type name
func (e *VendorInvoicePostedEvent) EventType() string {
	return EventTypeVendorInvoicePosted
}

// VendorInvoiceCancelledEvent is raised when an invoice is voided
type VendorInvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CancelReason  string    `json:"cancel_reason"`
}

// NewVendorInvoiceCancelledEvent creates a new VendorInvoiceCancelledEvent
func NewVendorInvoiceCancelledEvent(invoice *VendorInvoice) *VendorInvoiceCancelledEvent {
	return &VendorInvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoiceCancelled, AggregateTypeVendorInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		CancelReason:    invoice.CancelReason,
	}
}

// EventType returns the event type name
func (e *VendorInvoiceCancelledEvent) EventType() string {
	return EventTypeVendorInvoiceCancelled
}

// VendorInvoicePaidEvent is raised when an invoice becomes fully settled
type VendorInvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaidAt        time.Time       `json:"paid_at"`
}

// NewVendorInvoicePaidEvent creates a new VendorInvoicePaidEvent
func NewVendorInvoicePaidEvent(invoice *VendorInvoice) *VendorInvoicePaidEvent {
	return &VendorInvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoicePaid, AggregateTypeVendorInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		PaidAmount:      invoice.PaidAmount,
		PaidAt:          time.Now(),
	}
}

// EventType returns the event type name
func (e *VendorInvoicePaidEvent) EventType() string {
	return EventTypeVendorInvoicePaid
}

// CustomsInfoAppliedEvent is raised when lines receive their customs number
type CustomsInfoAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CustomsNumber string    `json:"customs_number"`
	LinesUpdated  int       `json:"lines_updated"`
}

// NewCustomsInfoAppliedEvent creates a new CustomsInfoAppliedEvent
func NewCustomsInfoAppliedEvent(invoice *VendorInvoice, customsNumber string, linesUpdated int) *CustomsInfoAppliedEvent {
	return &CustomsInfoAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomsInfoApplied, AggregateTypeVendorInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.InvoiceNumber,
		CustomsNumber:   customsNumber,
		LinesUpdated:    linesUpdated,
	}
}

// EventType returns the event type name
func (e *CustomsInfoAppliedEvent) EventType() string {
	return EventTypeCustomsInfoApplied
}
