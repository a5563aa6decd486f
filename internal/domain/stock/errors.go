package stock

// Error codes raised by the stock domain
const (
	// ErrCodeInsufficientStock is raised when a level cannot cover a decrease
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	// ErrCodeInsufficientStockForReturn is raised when the destination location
	// no longer holds enough of the received goods to return them
	ErrCodeInsufficientStockForReturn = "INSUFFICIENT_STOCK_FOR_RETURN"
)
