package stock

import (
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocationUsage classifies what a location represents
type LocationUsage string

const (
	// LocationUsageSupplier is a virtual location representing supplier stock
	LocationUsageSupplier LocationUsage = "SUPPLIER"
	// LocationUsageInternal is a physical location whose on-hand quantity is tracked
	LocationUsageInternal LocationUsage = "INTERNAL"
	// LocationUsageCustomer is a virtual location representing delivered goods
	LocationUsageCustomer LocationUsage = "CUSTOMER"
)

// String returns the string representation of the usage
func (u LocationUsage) String() string {
	return string(u)
}

// IsValid returns true if the usage is valid
func (u LocationUsage) IsValid() bool {
	switch u {
	case LocationUsageSupplier, LocationUsageInternal, LocationUsageCustomer:
		return true
	}
	return false
}

// IsTracked returns true if on-hand quantities are maintained for this usage.
// Virtual supplier and customer locations have no meaningful balance.
func (u LocationUsage) IsTracked() bool {
	return u == LocationUsageInternal
}

// Location represents a place goods can be moved from or to
type Location struct {
	shared.BaseEntity
	Code  string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name  string        `gorm:"type:varchar(200);not null"`
	Usage LocationUsage `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "stock_locations"
}

// NewLocation creates a new location
func NewLocation(code, name string, usage LocationUsage) (*Location, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location name cannot be empty")
	}
	if !usage.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Invalid location usage")
	}

	return &Location{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Name:       name,
		Usage:      usage,
	}, nil
}

// StockLevel tracks the on-hand quantity of one product at one internal
// location. The pair LocationID + ProductID is unique.
type StockLevel struct {
	shared.BaseAggregateRoot
	LocationID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_location_product,priority:1"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_location_product,priority:2"`
	OnHand     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a zero-quantity stock level for a location-product pair
func NewStockLevel(locationID, productID uuid.UUID) (*StockLevel, error) {
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &StockLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LocationID:        locationID,
		ProductID:         productID,
		OnHand:            decimal.Zero,
	}, nil
}

// Increase adds quantity to the on-hand balance
func (l *StockLevel) Increase(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	l.OnHand = l.OnHand.Add(quantity)
	l.Touch()
	l.IncrementVersion()

	return nil
}

// Decrease removes quantity from the on-hand balance. The balance can never
// go negative.
func (l *StockLevel) Decrease(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if l.OnHand.LessThan(quantity) {
		return shared.NewDomainError(ErrCodeInsufficientStock, "Insufficient on-hand quantity at location")
	}

	l.OnHand = l.OnHand.Sub(quantity)
	l.Touch()
	l.IncrementVersion()

	return nil
}

// CanFulfill returns true if the on-hand quantity covers the requested quantity
func (l *StockLevel) CanFulfill(quantity decimal.Decimal) bool {
	return l.OnHand.GreaterThanOrEqual(quantity)
}
