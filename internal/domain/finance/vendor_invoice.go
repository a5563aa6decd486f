package finance

import (
	"fmt"
	"time"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the posting state of a vendor invoice
type InvoiceStatus string

const (
	// InvoiceStatusDraft means the invoice is editable and has no accounting effect
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	// InvoiceStatusPosted means the invoice has been booked
	InvoiceStatusPosted InvoiceStatus = "POSTED"
	// InvoiceStatusCancelled means the invoice was voided
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPosted, InvoiceStatusCancelled:
		return true
	}
	return false
}

// PaymentStatus represents how much of a posted invoice has been settled
type PaymentStatus string

const (
	PaymentStatusNotPaid   PaymentStatus = "NOT_PAID"
	PaymentStatusInPayment PaymentStatus = "IN_PAYMENT" // Payment issued, not yet reconciled
	PaymentStatusPartial   PaymentStatus = "PARTIAL"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusReversed  PaymentStatus = "REVERSED"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusNotPaid, PaymentStatusInPayment, PaymentStatusPartial,
		PaymentStatusPaid, PaymentStatusReversed:
		return true
	}
	return false
}

// IsSettledOrSettling returns true once money has moved or is moving. Invoices
// in these states block order reversal.
func (s PaymentStatus) IsSettledOrSettling() bool {
	return s == PaymentStatusPaid || s == PaymentStatusInPayment || s == PaymentStatusPartial
}

// VendorInvoiceLine represents a single billed position. CustomsNumber and
// CustomsDate stay empty until the related clearance document is validated,
// then the backfill handler fills them in.
type VendorInvoiceLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     *uuid.UUID      `gorm:"type:uuid;index"`
	Description   string          `gorm:"type:varchar(255);not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CustomsNumber string          `gorm:"type:varchar(30);index"`
	CustomsDate   *time.Time      `gorm:"type:timestamptz"`
}

// TableName returns the table name for GORM
func (VendorInvoiceLine) TableName() string {
	return "vendor_invoice_lines"
}

// NewVendorInvoiceLine creates a new invoice line
func NewVendorInvoiceLine(invoiceID uuid.UUID, productID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*VendorInvoiceLine, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &VendorInvoiceLine{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ProductID:   productID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice).Round(4),
	}, nil
}

// VendorInvoice represents a supplier bill for a procurement order. Posting
// and payment drive whether the order can still be reverted.
type VendorInvoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	PartnerID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	PartnerName   string              `gorm:"type:varchar(200);not null"`
	OrderID       *uuid.UUID          `gorm:"type:uuid;index"`
	Lines         []VendorInvoiceLine `gorm:"foreignKey:InvoiceID;references:ID"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status        InvoiceStatus       `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	PaymentStatus PaymentStatus       `gorm:"type:varchar(20);not null;default:'NOT_PAID'"`
	InvoiceDate   time.Time           `gorm:"type:timestamptz;not null"`
	Remark        string              `gorm:"type:varchar(500)"`
	PostedAt      *time.Time          `gorm:"type:timestamptz"`
	CancelledAt   *time.Time          `gorm:"type:timestamptz"`
	CancelReason  string              `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (VendorInvoice) TableName() string {
	return "vendor_invoices"
}

// NewVendorInvoice creates a new draft vendor invoice
func NewVendorInvoice(invoiceNumber string, partnerID uuid.UUID, partnerName string, orderID *uuid.UUID, invoiceDate time.Time) (*VendorInvoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if partnerName == "" {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner name cannot be empty")
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	invoice := &VendorInvoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		PartnerID:         partnerID,
		PartnerName:       partnerName,
		OrderID:           orderID,
		Lines:             make([]VendorInvoiceLine, 0),
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		Status:            InvoiceStatusDraft,
		PaymentStatus:     PaymentStatusNotPaid,
		InvoiceDate:       invoiceDate,
	}

	invoice.AddDomainEvent(NewVendorInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// AddLine adds a billed position to a draft invoice
func (v *VendorInvoice) AddLine(productID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*VendorInvoiceLine, error) {
	if v.Status != InvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Lines can only be added to draft invoices")
	}

	line, err := NewVendorInvoiceLine(v.ID, productID, description, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	v.Lines = append(v.Lines, *line)
	v.recalculateTotal()
	v.Touch()

	return line, nil
}

// RemoveLine removes a line from a draft invoice
func (v *VendorInvoice) RemoveLine(lineID uuid.UUID) error {
	if v.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Lines can only be removed from draft invoices")
	}

	for i, line := range v.Lines {
		if line.ID == lineID {
			v.Lines = append(v.Lines[:i], v.Lines[i+1:]...)
			v.recalculateTotal()
			v.Touch()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Invoice line not found")
}

func (v *VendorInvoice) recalculateTotal() {
	total := decimal.Zero
	for _, line := range v.Lines {
		total = total.Add(line.Amount)
	}
	v.TotalAmount = total
}

// Post books the invoice
func (v *VendorInvoice) Post() error {
	if v.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post invoice in %s status", v.Status))
	}
	if len(v.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Invoice must have at least one line to be posted")
	}

	now := time.Now()
	v.Status = InvoiceStatusPosted
	v.PostedAt = &now
	v.Touch()
	v.AddDomainEvent(NewVendorInvoicePostedEvent(v))

	return nil
}

// Cancel voids an invoice that has not been settled
func (v *VendorInvoice) Cancel(reason string) error {
	if v.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	if v.PaymentStatus.IsSettledOrSettling() {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel an invoice with payments")
	}

	now := time.Now()
	v.Status = InvoiceStatusCancelled
	v.CancelledAt = &now
	v.CancelReason = reason
	v.Touch()
	v.AddDomainEvent(NewVendorInvoiceCancelledEvent(v))

	return nil
}

// RegisterPayment applies a payment to a posted invoice
func (v *VendorInvoice) RegisterPayment(amount decimal.Decimal) error {
	if v.Status != InvoiceStatusPosted {
		return shared.NewDomainError("INVALID_STATE", "Payments can only be registered on posted invoices")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if v.PaidAmount.Add(amount).GreaterThan(v.TotalAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING", fmt.Sprintf("Payment exceeds the outstanding amount of %s", v.OutstandingAmount().String()))
	}

	v.PaidAmount = v.PaidAmount.Add(amount)
	if v.PaidAmount.Equal(v.TotalAmount) {
		v.PaymentStatus = PaymentStatusPaid
		v.AddDomainEvent(NewVendorInvoicePaidEvent(v))
	} else {
		v.PaymentStatus = PaymentStatusPartial
	}
	v.Touch()

	return nil
}

// MarkInPayment marks a posted invoice as having a payment in flight
func (v *VendorInvoice) MarkInPayment() error {
	if v.Status != InvoiceStatusPosted {
		return shared.NewDomainError("INVALID_STATE", "Only posted invoices can be marked in payment")
	}
	if v.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already paid")
	}

	v.PaymentStatus = PaymentStatusInPayment
	v.Touch()

	return nil
}

// OutstandingAmount returns the unsettled part of the invoice total
func (v *VendorInvoice) OutstandingAmount() decimal.Decimal {
	return v.TotalAmount.Sub(v.PaidAmount)
}

// ApplyCustomsInfo writes the customs number and date onto every line that
// does not carry one yet. Returns the number of lines updated. Runs against
// posted invoices too: the clearance document is usually validated after the
// supplier bill arrives.
func (v *VendorInvoice) ApplyCustomsInfo(customsNumber string, customsDate time.Time) int {
	if customsNumber == "" {
		return 0
	}

	updated := 0
	for i := range v.Lines {
		if v.Lines[i].CustomsNumber != "" {
			continue
		}
		v.Lines[i].CustomsNumber = customsNumber
		date := customsDate
		v.Lines[i].CustomsDate = &date
		updated++
	}

	if updated > 0 {
		v.Touch()
		v.AddDomainEvent(NewCustomsInfoAppliedEvent(v, customsNumber, updated))
	}

	return updated
}

// SetRemark sets the remark
func (v *VendorInvoice) SetRemark(remark string) {
	v.Remark = remark
	v.Touch()
}

// IsDraft returns true if the invoice has not been posted
func (v *VendorInvoice) IsDraft() bool {
	return v.Status == InvoiceStatusDraft
}

// IsPosted returns true if the invoice has been booked
func (v *VendorInvoice) IsPosted() bool {
	return v.Status == InvoiceStatusPosted
}

// IsCancelled returns true if the invoice was voided
func (v *VendorInvoice) IsCancelled() bool {
	return v.Status == InvoiceStatusCancelled
}

// BlocksReversal returns true if this invoice prevents reverting its order:
// any settled or settling payment blocks outright, and a posted invoice
// must be voided first even when unpaid.
func (v *VendorInvoice) BlocksReversal() bool {
	if v.Status == InvoiceStatusCancelled {
		return false
	}
	return v.Status == InvoiceStatusPosted || v.PaymentStatus.IsSettledOrSettling()
}
