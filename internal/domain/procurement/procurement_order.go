package procurement

import (
	"fmt"
	"time"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProcurementOrderStatus represents the status of a procurement order
type ProcurementOrderStatus string

const (
	ProcurementOrderStatusDraft     ProcurementOrderStatus = "DRAFT"
	ProcurementOrderStatusConfirmed ProcurementOrderStatus = "CONFIRMED"
	ProcurementOrderStatusCancelled ProcurementOrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ProcurementOrderStatus
func (s ProcurementOrderStatus) IsValid() bool {
	switch s {
	case ProcurementOrderStatusDraft, ProcurementOrderStatusConfirmed, ProcurementOrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ProcurementOrderStatus
func (s ProcurementOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ProcurementOrderStatus) CanTransitionTo(target ProcurementOrderStatus) bool {
	switch s {
	case ProcurementOrderStatusDraft:
		return target == ProcurementOrderStatusConfirmed || target == ProcurementOrderStatusCancelled
	case ProcurementOrderStatusConfirmed:
		return target == ProcurementOrderStatusCancelled
	case ProcurementOrderStatusCancelled:
		return false // Terminal state
	}
	return false
}

// ProcurementOrderItem represents a line item in a procurement order
type ProcurementOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProcurementOrderItem) TableName() string {
	return "procurement_order_items"
}

// NewProcurementOrderItem creates a new procurement order item
func NewProcurementOrderItem(orderID, productID uuid.UUID, productName, productCode string, quantity, unitPrice decimal.Decimal) (*ProcurementOrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &ProcurementOrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		ProductCode: productCode,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// OrderNote is an append-only audit note on a procurement order.
// The reversal orchestrator records per-receipt diagnostics and its final
// summary here, mirroring what operators expect to read on the order.
type OrderNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Body      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderNote) TableName() string {
	return "procurement_order_notes"
}

// ProcurementOrder represents a purchase order that may be brought under a
// customs clearance document. Many orders placed with the same trading partner
// may share one document; the order side only ever holds a single reference.
type ProcurementOrder struct {
	shared.BaseAggregateRoot
	OrderNumber         string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	PartnerID           uuid.UUID              `gorm:"type:uuid;not null;index"`
	PartnerName         string                 `gorm:"type:varchar(200);not null"`
	CustomsNumber       string                 `gorm:"type:varchar(30);index"`
	ClearanceDocumentID *uuid.UUID             `gorm:"type:uuid;index"`
	Items               []ProcurementOrderItem `gorm:"foreignKey:OrderID;references:ID"`
	Notes               []OrderNote            `gorm:"foreignKey:OrderID;references:ID"`
	TotalAmount         decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Status              ProcurementOrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Remark              string                 `gorm:"type:text"`
	ConfirmedAt         *time.Time             `gorm:"index"`
	CancelledAt         *time.Time
	CancelReason        string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ProcurementOrder) TableName() string {
	return "procurement_orders"
}

// NewProcurementOrder creates a new procurement order
func NewProcurementOrder(orderNumber string, partnerID uuid.UUID, partnerName string) (*ProcurementOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if partnerName == "" {
		return nil, shared.NewDomainError("INVALID_PARTNER_NAME", "Partner name cannot be empty")
	}

	order := &ProcurementOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		PartnerID:         partnerID,
		PartnerName:       partnerName,
		Items:             make([]ProcurementOrderItem, 0),
		Notes:             make([]OrderNote, 0),
		TotalAmount:       decimal.Zero,
		Status:            ProcurementOrderStatusDraft,
	}

	order.AddDomainEvent(NewProcurementOrderCreatedEvent(order))

	return order, nil
}

// AddItem adds a new item to the order
// Only allowed in DRAFT status
func (o *ProcurementOrder) AddItem(productID uuid.UUID, productName, productCode string, quantity, unitPrice decimal.Decimal) (*ProcurementOrderItem, error) {
	if o.Status != ProcurementOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order")
		}
	}

	item, err := NewProcurementOrderItem(o.ID, productID, productName, productCode, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.Touch()

	return item, nil
}

// RemoveItem removes an item from the order
// Only allowed in DRAFT status
func (o *ProcurementOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != ProcurementOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotal()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Order item not found")
}

func (o *ProcurementOrder) recalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.TotalAmount = total
}

// SetCustomsNumber sets the customs number the order clears under.
// The number must be well formed, and cannot change while the order still
// references a clearance document.
func (o *ProcurementOrder) SetCustomsNumber(number string) error {
	if o.ClearanceDocumentID != nil {
		return shared.NewDomainError("INVALID_STATE", "Cannot change the customs number while a clearance document is referenced")
	}
	if err := clearance.ValidateCustomsNumber(number); err != nil {
		return err
	}

	o.CustomsNumber = number
	o.Touch()

	return nil
}

// RequiresClearance returns true if the order carries a customs number and
// therefore takes part in clearance-document resolution at confirmation
func (o *ProcurementOrder) RequiresClearance() bool {
	return o.CustomsNumber != ""
}

// HasClearanceDocument returns true if the order references a clearance document
func (o *ProcurementOrder) HasClearanceDocument() bool {
	return o.ClearanceDocumentID != nil
}

// SetRemark sets the order remark
func (o *ProcurementOrder) SetRemark(remark string) {
	o.Remark = remark
	o.Touch()
}

// Confirm confirms the order, transitioning from DRAFT to CONFIRMED
// Requires at least one item
func (o *ProcurementOrder) Confirm() error {
	if !o.Status.CanTransitionTo(ProcurementOrderStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without items")
	}

	now := time.Now()
	o.Status = ProcurementOrderStatusConfirmed
	o.ConfirmedAt = &now
	o.Touch()

	o.AddDomainEvent(NewProcurementOrderConfirmedEvent(o))

	return nil
}

// Cancel cancels the order
func (o *ProcurementOrder) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(ProcurementOrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = ProcurementOrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.Touch()

	o.AddDomainEvent(NewProcurementOrderCancelledEvent(o))

	return nil
}

// LinkClearanceDocument sets the order's clearance document reference.
// An order references at most one document: linking the same document again is
// a no-op, linking a different one while a reference exists is rejected.
func (o *ProcurementOrder) LinkClearanceDocument(documentID uuid.UUID) error {
	if documentID == uuid.Nil {
		return shared.NewDomainError("INVALID_DOCUMENT", "Clearance document ID cannot be empty")
	}
	if o.CustomsNumber == "" {
		return shared.NewDomainError("INVALID_STATE", "Cannot link a clearance document to an order without a customs number")
	}
	if o.ClearanceDocumentID != nil {
		if *o.ClearanceDocumentID == documentID {
			return nil
		}
		return shared.NewDomainError("INVALID_STATE", "Order already references another clearance document")
	}

	o.ClearanceDocumentID = &documentID
	o.Touch()

	o.AddDomainEvent(NewClearanceDocumentLinkedEvent(o, documentID))

	return nil
}

// ClearClearanceDocument drops the order's clearance document reference.
// Clearing never touches the document itself; document cancellation is decided
// separately by the reversal orchestrator's exclusivity check.
func (o *ProcurementOrder) ClearClearanceDocument() {
	if o.ClearanceDocumentID == nil {
		return
	}

	documentID := *o.ClearanceDocumentID
	o.ClearanceDocumentID = nil
	o.Touch()

	o.AddDomainEvent(NewClearanceDocumentClearedEvent(o, documentID))
}

// AppendNote appends an audit note to the order
func (o *ProcurementOrder) AppendNote(body string) {
	if body == "" {
		return
	}

	o.Notes = append(o.Notes, OrderNote{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Body:      body,
		CreatedAt: time.Now(),
	})
	o.Touch()
}

// IsConfirmed returns true if the order is confirmed
func (o *ProcurementOrder) IsConfirmed() bool {
	return o.Status == ProcurementOrderStatusConfirmed
}

// IsCancelled returns true if the order is cancelled
func (o *ProcurementOrder) IsCancelled() bool {
	return o.Status == ProcurementOrderStatusCancelled
}
