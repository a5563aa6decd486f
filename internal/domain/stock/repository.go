package stock

import (
	"context"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByID finds a receipt by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReceiptTransaction, error)

	// FindByIDs finds multiple receipts by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ReceiptTransaction, error)

	// FindByReceiptNumber finds a receipt by its number
	FindByReceiptNumber(ctx context.Context, receiptNumber string) (*ReceiptTransaction, error)

	// FindByOrder finds all receipts belonging to an order, returns included
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]ReceiptTransaction, error)

	// FindReturnsByOrigin finds return receipts created for an origin receipt
	FindReturnsByOrigin(ctx context.Context, originReceiptID uuid.UUID) ([]ReceiptTransaction, error)

	// FindAll finds receipts matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]ReceiptTransaction, error)

	// Save creates or updates a receipt with its movements
	Save(ctx context.Context, receipt *ReceiptTransaction) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, receipt *ReceiptTransaction) error

	// Delete deletes a draft receipt
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts receipts matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateReceiptNumber generates the next receipt number
	GenerateReceiptNumber(ctx context.Context) (string, error)

	// GenerateReturnNumber generates the next return receipt number
	GenerateReturnNumber(ctx context.Context) (string, error)
}

// StockLevelRepository defines the interface for stock level persistence
type StockLevelRepository interface {
	// FindByLocationAndProduct finds the level for a location-product pair
	FindByLocationAndProduct(ctx context.Context, locationID, productID uuid.UUID) (*StockLevel, error)

	// GetOrCreate returns the existing level or creates a zero-quantity one
	GetOrCreate(ctx context.Context, locationID, productID uuid.UUID) (*StockLevel, error)

	// FindByLocation finds all levels at a location
	FindByLocation(ctx context.Context, locationID uuid.UUID, filter shared.Filter) ([]StockLevel, error)

	// AvailableQuantity returns the on-hand quantity for a location-product
	// pair, zero when no level exists
	AvailableQuantity(ctx context.Context, locationID, productID uuid.UUID) (decimal.Decimal, error)

	// Save creates or updates a stock level
	Save(ctx context.Context, level *StockLevel) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, level *StockLevel) error
}

// LocationRepository defines the interface for location persistence
type LocationRepository interface {
	// FindByID finds a location by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Location, error)

	// FindByCode finds a location by its unique code
	FindByCode(ctx context.Context, code string) (*Location, error)

	// FindByUsage finds all locations with the given usage
	FindByUsage(ctx context.Context, usage LocationUsage) ([]Location, error)

	// FindAll finds all locations
	FindAll(ctx context.Context, filter shared.Filter) ([]Location, error)

	// Save creates or updates a location
	Save(ctx context.Context, location *Location) error
}
