package stock

import (
	"time"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptStatus represents the lifecycle state of a receipt transaction
type ReceiptStatus string

const (
	// ReceiptStatusDraft is the initial state before planning
	ReceiptStatusDraft ReceiptStatus = "DRAFT"
	// ReceiptStatusConfirmed means the receipt is planned and waiting for goods
	ReceiptStatusConfirmed ReceiptStatus = "CONFIRMED"
	// ReceiptStatusReady means the receipt is ready to be processed
	ReceiptStatusReady ReceiptStatus = "READY"
	// ReceiptStatusDone means the goods have been moved
	ReceiptStatusDone ReceiptStatus = "DONE"
	// ReceiptStatusCancelled means the receipt was cancelled before processing
	ReceiptStatusCancelled ReceiptStatus = "CANCELLED"
)

// String returns the string representation of the status
func (s ReceiptStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s ReceiptStatus) IsValid() bool {
	switch s {
	case ReceiptStatusDraft, ReceiptStatusConfirmed, ReceiptStatusReady,
		ReceiptStatusDone, ReceiptStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if the status allows no further transitions
func (s ReceiptStatus) IsTerminal() bool {
	return s == ReceiptStatusDone || s == ReceiptStatusCancelled
}

// CanTransitionTo returns true if transitioning to the target status is allowed
func (s ReceiptStatus) CanTransitionTo(target ReceiptStatus) bool {
	switch s {
	case ReceiptStatusDraft:
		return target == ReceiptStatusConfirmed || target == ReceiptStatusCancelled
	case ReceiptStatusConfirmed:
		return target == ReceiptStatusReady || target == ReceiptStatusDone || target == ReceiptStatusCancelled
	case ReceiptStatusReady:
		return target == ReceiptStatusDone || target == ReceiptStatusCancelled
	case ReceiptStatusDone, ReceiptStatusCancelled:
		return false
	}
	return false
}

// StockMovement represents a single product movement line within a receipt.
// Quantity is the planned demand; DoneQuantity is what actually moved.
type StockMovement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ReceiptID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	ProductCode  string          `gorm:"type:varchar(50)"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DoneQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Scrapped     bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new movement line
func NewStockMovement(receiptID, productID uuid.UUID, productName, productCode string, quantity decimal.Decimal) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	return &StockMovement{
		ID:           uuid.New(),
		ReceiptID:    receiptID,
		ProductID:    productID,
		ProductName:  productName,
		ProductCode:  productCode,
		Quantity:     quantity,
		DoneQuantity: decimal.Zero,
	}, nil
}

// ReceiptTransaction is the aggregate root for a goods movement between two
// locations. Incoming receipts move goods from a supplier location into stock;
// return receipts move them back and carry a reference to the origin receipt
// so that repeated reversal runs do not create duplicate returns.
type ReceiptTransaction struct {
	shared.BaseAggregateRoot
	ReceiptNumber         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartnerID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceLocationID      uuid.UUID       `gorm:"type:uuid;not null"`
	DestinationLocationID uuid.UUID       `gorm:"type:uuid;not null"`
	OriginReceiptID       *uuid.UUID      `gorm:"type:uuid;index"`
	Status                ReceiptStatus   `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Movements             []StockMovement `gorm:"foreignKey:ReceiptID;references:ID"`
	ScheduledAt           time.Time       `gorm:"type:timestamptz;not null"`
	CompletedAt           *time.Time      `gorm:"type:timestamptz"`
	CancelledAt           *time.Time      `gorm:"type:timestamptz"`
	CancelReason          string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (ReceiptTransaction) TableName() string {
	return "receipt_transactions"
}

// NewReceiptTransaction creates a new incoming receipt for a procurement order
func NewReceiptTransaction(receiptNumber string, orderID, partnerID, sourceLocationID, destinationLocationID uuid.UUID) (*ReceiptTransaction, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if sourceLocationID == uuid.Nil || destinationLocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Source and destination locations are required")
	}
	if sourceLocationID == destinationLocationID {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Source and destination locations must differ")
	}

	receipt := &ReceiptTransaction{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		ReceiptNumber:         receiptNumber,
		OrderID:               orderID,
		PartnerID:             partnerID,
		SourceLocationID:      sourceLocationID,
		DestinationLocationID: destinationLocationID,
		Status:                ReceiptStatusDraft,
		Movements:             make([]StockMovement, 0),
		ScheduledAt:           time.Now(),
	}

	receipt.AddDomainEvent(NewReceiptCreatedEvent(receipt))

	return receipt, nil
}

// NewReturnReceipt creates a return receipt that reverses a completed receipt.
// Locations are swapped and each non-scrapped movement with a done quantity
// becomes a planned movement on the return.
func NewReturnReceipt(receiptNumber string, origin *ReceiptTransaction) (*ReceiptTransaction, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if origin == nil {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Origin receipt cannot be nil")
	}
	if !origin.IsDone() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only completed receipts can be returned")
	}

	ret := &ReceiptTransaction{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		ReceiptNumber:         receiptNumber,
		OrderID:               origin.OrderID,
		PartnerID:             origin.PartnerID,
		SourceLocationID:      origin.DestinationLocationID,
		DestinationLocationID: origin.SourceLocationID,
		Status:                ReceiptStatusDraft,
		Movements:             make([]StockMovement, 0),
		ScheduledAt:           time.Now(),
	}
	originID := origin.ID
	ret.OriginReceiptID = &originID

	for _, movement := range origin.Movements {
		if movement.Scrapped || movement.DoneQuantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		line, err := NewStockMovement(ret.ID, movement.ProductID, movement.ProductName, movement.ProductCode, movement.DoneQuantity)
		if err != nil {
			return nil, err
		}
		ret.Movements = append(ret.Movements, *line)
	}

	if len(ret.Movements) == 0 {
		return nil, shared.NewDomainError("INVALID_STATE", "Origin receipt has no returnable movements")
	}

	ret.AddDomainEvent(NewReturnCreatedEvent(ret, origin.ID))

	return ret, nil
}

// IsReturn returns true if this receipt reverses another receipt
func (r *ReceiptTransaction) IsReturn() bool {
	return r.OriginReceiptID != nil
}

// AddMovement adds a planned movement line to a draft receipt
func (r *ReceiptTransaction) AddMovement(productID uuid.UUID, productName, productCode string, quantity decimal.Decimal) (*StockMovement, error) {
	if r.Status != ReceiptStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Movements can only be added to draft receipts")
	}

	movement, err := NewStockMovement(r.ID, productID, productName, productCode, quantity)
	if err != nil {
		return nil, err
	}

	r.Movements = append(r.Movements, *movement)
	r.Touch()

	return movement, nil
}

// Confirm transitions the receipt from draft to confirmed
func (r *ReceiptTransaction) Confirm() error {
	if !r.Status.CanTransitionTo(ReceiptStatusConfirmed) {
		return shared.NewDomainError("INVALID_STATE", "Receipt cannot be confirmed in status "+r.Status.String())
	}
	if len(r.Movements) == 0 {
		return shared.NewDomainError("NO_MOVEMENTS", "Receipt must have at least one movement to be confirmed")
	}

	r.Status = ReceiptStatusConfirmed
	r.Touch()
	r.AddDomainEvent(NewReceiptConfirmedEvent(r))

	return nil
}

// MarkReady transitions the receipt to ready for processing
func (r *ReceiptTransaction) MarkReady() error {
	if !r.Status.CanTransitionTo(ReceiptStatusReady) {
		return shared.NewDomainError("INVALID_STATE", "Receipt cannot be marked ready in status "+r.Status.String())
	}

	r.Status = ReceiptStatusReady
	r.Touch()

	return nil
}

// Complete marks the receipt as done. doneQuantities overrides the processed
// quantity per movement ID; movements without an entry are processed in full.
func (r *ReceiptTransaction) Complete(doneQuantities map[uuid.UUID]decimal.Decimal) error {
	if !r.Status.CanTransitionTo(ReceiptStatusDone) {
		return shared.NewDomainError("INVALID_STATE", "Receipt cannot be completed in status "+r.Status.String())
	}

	anyDone := false
	for i := range r.Movements {
		done := r.Movements[i].Quantity
		if doneQuantities != nil {
			if override, ok := doneQuantities[r.Movements[i].ID]; ok {
				if override.IsNegative() {
					return shared.NewDomainError("INVALID_QUANTITY", "Done quantity cannot be negative")
				}
				done = override
			}
		}
		r.Movements[i].DoneQuantity = done
		if done.GreaterThan(decimal.Zero) {
			anyDone = true
		}
	}
	if !anyDone {
		return shared.NewDomainError("INVALID_QUANTITY", "Receipt must move at least one unit to be completed")
	}

	now := time.Now()
	r.Status = ReceiptStatusDone
	r.CompletedAt = &now
	r.Touch()
	r.AddDomainEvent(NewReceiptCompletedEvent(r))

	return nil
}

// Cancel cancels a receipt that has not been processed yet
func (r *ReceiptTransaction) Cancel(reason string) error {
	if !r.Status.CanTransitionTo(ReceiptStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", "Receipt cannot be cancelled in status "+r.Status.String())
	}

	now := time.Now()
	r.Status = ReceiptStatusCancelled
	r.CancelledAt = &now
	r.CancelReason = reason
	r.Touch()
	r.AddDomainEvent(NewReceiptCancelledEvent(r, reason))

	return nil
}

// MovedQuantities returns the done quantity per product, excluding scrapped
// movements. Only meaningful for completed receipts.
func (r *ReceiptTransaction) MovedQuantities() map[uuid.UUID]decimal.Decimal {
	moved := make(map[uuid.UUID]decimal.Decimal)
	for _, movement := range r.Movements {
		if movement.Scrapped {
			continue
		}
		if movement.DoneQuantity.GreaterThan(decimal.Zero) {
			moved[movement.ProductID] = moved[movement.ProductID].Add(movement.DoneQuantity)
		}
	}
	return moved
}

// TotalMovedQuantity returns the total done quantity across all non-scrapped movements
func (r *ReceiptTransaction) TotalMovedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, qty := range r.MovedQuantities() {
		total = total.Add(qty)
	}
	return total
}

// IsDone returns true if the receipt has been processed
func (r *ReceiptTransaction) IsDone() bool {
	return r.Status == ReceiptStatusDone
}

// IsCancelled returns true if the receipt has been cancelled
func (r *ReceiptTransaction) IsCancelled() bool {
	return r.Status == ReceiptStatusCancelled
}

// IsTerminal returns true if the receipt is done or cancelled
func (r *ReceiptTransaction) IsTerminal() bool {
	return r.Status.IsTerminal()
}
