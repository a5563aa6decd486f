package stock

import (
	"context"
	"fmt"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryEngine applies receipt movements to stock levels. Implementations
// must keep levels non-negative: availability is checked before any balance
// is touched.
type InventoryEngine interface {
	// Complete processes a receipt, moving the done quantities between
	// locations and persisting receipt and levels
	Complete(ctx context.Context, receipt *ReceiptTransaction, doneQuantities map[uuid.UUID]decimal.Decimal) error

	// CreateReturn creates and processes a return for a completed receipt.
	// Re-invocation for the same origin returns the existing return instead
	// of creating a duplicate.
	CreateReturn(ctx context.Context, origin *ReceiptTransaction) (*ReceiptTransaction, error)

	// Available returns the on-hand quantity of a product at a location
	Available(ctx context.Context, locationID, productID uuid.UUID) (decimal.Decimal, error)
}

// StandardInventoryEngine is the default InventoryEngine backed by the stock
// repositories
type StandardInventoryEngine struct {
	receipts  ReceiptRepository
	levels    StockLevelRepository
	locations LocationRepository
}

// NewStandardInventoryEngine creates a new StandardInventoryEngine
func NewStandardInventoryEngine(receipts ReceiptRepository, levels StockLevelRepository, locations LocationRepository) *StandardInventoryEngine {
	return &StandardInventoryEngine{
		receipts:  receipts,
		levels:    levels,
		locations: locations,
	}
}

// Complete processes a receipt end to end: availability at the source is
// verified first, then the receipt transitions to done and the levels of both
// tracked locations are adjusted.
func (e *StandardInventoryEngine) Complete(ctx context.Context, receipt *ReceiptTransaction, doneQuantities map[uuid.UUID]decimal.Decimal) error {
	if receipt == nil {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt cannot be nil")
	}

	sourceTracked, err := e.isTracked(ctx, receipt.SourceLocationID)
	if err != nil {
		return err
	}
	destTracked, err := e.isTracked(ctx, receipt.DestinationLocationID)
	if err != nil {
		return err
	}

	if sourceTracked {
		if err := e.checkAvailability(ctx, receipt, doneQuantities); err != nil {
			return err
		}
	}

	if err := receipt.Complete(doneQuantities); err != nil {
		return err
	}

	for i := range receipt.Movements {
		movement := &receipt.Movements[i]
		if movement.Scrapped || movement.DoneQuantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		if sourceTracked {
			if err := e.adjustLevel(ctx, receipt.SourceLocationID, movement.ProductID, movement.DoneQuantity.Neg()); err != nil {
				return err
			}
		}
		if destTracked {
			if err := e.adjustLevel(ctx, receipt.DestinationLocationID, movement.ProductID, movement.DoneQuantity); err != nil {
				return err
			}
		}
	}

	return e.receipts.SaveWithLock(ctx, receipt)
}

// CreateReturn creates, confirms and processes a return receipt for the given
// completed origin. When a non-cancelled return already exists for the origin
// it is returned as-is.
func (e *StandardInventoryEngine) CreateReturn(ctx context.Context, origin *ReceiptTransaction) (*ReceiptTransaction, error) {
	if origin == nil {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Origin receipt cannot be nil")
	}
	if !origin.IsDone() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only completed receipts can be returned")
	}

	existing, err := e.receipts.FindReturnsByOrigin(ctx, origin.ID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if !existing[i].IsCancelled() {
			return &existing[i], nil
		}
	}

	// Goods flow back from where they were received, so availability is
	// checked against the origin's destination location.
	for productID, qty := range origin.MovedQuantities() {
		available, err := e.Available(ctx, origin.DestinationLocationID, productID)
		if err != nil {
			return nil, err
		}
		if available.LessThan(qty) {
			return nil, shared.NewDomainError(ErrCodeInsufficientStockForReturn,
				fmt.Sprintf("Cannot return receipt %s: only %s of %s units available at the destination",
					origin.ReceiptNumber, available.String(), qty.String()))
		}
	}

	number, err := e.receipts.GenerateReturnNumber(ctx)
	if err != nil {
		return nil, err
	}

	ret, err := NewReturnReceipt(number, origin)
	if err != nil {
		return nil, err
	}
	if err := ret.Confirm(); err != nil {
		return nil, err
	}

	if err := e.Complete(ctx, ret, nil); err != nil {
		return nil, err
	}

	return ret, nil
}

// Available returns the on-hand quantity of a product at a location
func (e *StandardInventoryEngine) Available(ctx context.Context, locationID, productID uuid.UUID) (decimal.Decimal, error) {
	return e.levels.AvailableQuantity(ctx, locationID, productID)
}

func (e *StandardInventoryEngine) isTracked(ctx context.Context, locationID uuid.UUID) (bool, error) {
	location, err := e.locations.FindByID(ctx, locationID)
	if err != nil {
		return false, err
	}
	return location.Usage.IsTracked(), nil
}

func (e *StandardInventoryEngine) checkAvailability(ctx context.Context, receipt *ReceiptTransaction, doneQuantities map[uuid.UUID]decimal.Decimal) error {
	required := make(map[uuid.UUID]decimal.Decimal)
	for _, movement := range receipt.Movements {
		if movement.Scrapped {
			continue
		}
		done := movement.Quantity
		if doneQuantities != nil {
			if override, ok := doneQuantities[movement.ID]; ok {
				done = override
			}
		}
		if done.GreaterThan(decimal.Zero) {
			required[movement.ProductID] = required[movement.ProductID].Add(done)
		}
	}

	for productID, qty := range required {
		available, err := e.Available(ctx, receipt.SourceLocationID, productID)
		if err != nil {
			return err
		}
		if available.LessThan(qty) {
			return shared.NewDomainError(ErrCodeInsufficientStock,
				fmt.Sprintf("Insufficient stock at source location: %s of %s units available",
					available.String(), qty.String()))
		}
	}

	return nil
}

func (e *StandardInventoryEngine) adjustLevel(ctx context.Context, locationID, productID uuid.UUID, delta decimal.Decimal) error {
	level, err := e.levels.GetOrCreate(ctx, locationID, productID)
	if err != nil {
		return err
	}

	if delta.IsNegative() {
		err = level.Decrease(delta.Neg())
	} else {
		err = level.Increase(delta)
	}
	if err != nil {
		return err
	}

	return e.levels.SaveWithLock(ctx, level)
}

var _ InventoryEngine = (*StandardInventoryEngine)(nil)
