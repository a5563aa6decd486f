package procurement

import (
	"context"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for procurement order persistence
type Repository interface {
	// FindByID finds a procurement order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ProcurementOrder, error)

	// FindByIDs finds procurement orders for a set of IDs, preserving only
	// orders that exist; the result order is unspecified
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ProcurementOrder, error)

	// FindByOrderNumber finds a procurement order by order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*ProcurementOrder, error)

	// FindAll finds all procurement orders with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]ProcurementOrder, error)

	// FindByClearanceDocument finds the orders currently referencing a
	// clearance document. This is the reverse lookup behind the derived
	// many-to-one relationship; the document never stores its orders.
	FindByClearanceDocument(ctx context.Context, documentID uuid.UUID) ([]ProcurementOrder, error)

	// CountByClearanceDocument counts orders referencing a document,
	// excluding the given order ID (uuid.Nil excludes nothing).
	// Used for the exclusivity check during reversal.
	CountByClearanceDocument(ctx context.Context, documentID, excludeOrderID uuid.UUID) (int64, error)

	// Save creates or updates a procurement order with its items and notes
	Save(ctx context.Context, order *ProcurementOrder) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *ProcurementOrder) error

	// Delete deletes a procurement order
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts procurement orders with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateOrderNumber generates a unique order number
	GenerateOrderNumber(ctx context.Context) (string, error)
}
