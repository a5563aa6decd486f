package finance

import (
	"context"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for vendor invoice persistence
type Repository interface {
	// FindByID finds an invoice by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*VendorInvoice, error)

	// FindByInvoiceNumber finds an invoice by its number
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*VendorInvoice, error)

	// FindByOrder finds all invoices referencing an order
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]VendorInvoice, error)

	// FindPostedMissingCustomsInfo finds posted invoices for an order whose
	// lines still lack a customs number
	FindPostedMissingCustomsInfo(ctx context.Context, orderID uuid.UUID) ([]VendorInvoice, error)

	// FindAll finds invoices matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]VendorInvoice, error)

	// Save creates or updates an invoice with its lines
	Save(ctx context.Context, invoice *VendorInvoice) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, invoice *VendorInvoice) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// GenerateInvoiceNumber generates the next invoice number
	GenerateInvoiceNumber(ctx context.Context) (string, error)
}
