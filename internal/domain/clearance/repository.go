package clearance

import (
	"context"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for clearance document persistence.
// Documents are never deleted: invariant-wise a document only ever leaves the
// working set by being cancelled, and cancelled documents keep their receipt
// links for audit.
type Repository interface {
	// FindByID finds a clearance document by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ClearanceDocument, error)

	// FindByDocumentNumber finds a clearance document by its internal number
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*ClearanceDocument, error)

	// FindByCustomsNumber finds all documents carrying a customs number, any status
	FindByCustomsNumber(ctx context.Context, customsNumber string) ([]ClearanceDocument, error)

	// FindByCustomsNumberAndStatus finds documents carrying a customs number in a given status
	FindByCustomsNumberAndStatus(ctx context.Context, customsNumber string, status ClearanceDocumentStatus) ([]ClearanceDocument, error)

	// FindAll finds all clearance documents with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]ClearanceDocument, error)

	// Save creates or updates a clearance document with its receipt links and cost lines
	Save(ctx context.Context, doc *ClearanceDocument) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, doc *ClearanceDocument) error

	// Count counts clearance documents with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsDoneWithCustomsNumber checks if a DONE document exists for the customs
	// number, excluding the given document ID (uuid.Nil excludes nothing)
	ExistsDoneWithCustomsNumber(ctx context.Context, customsNumber string, excludeID uuid.UUID) (bool, error)

	// GenerateDocumentNumber generates a unique internal document number
	GenerateDocumentNumber(ctx context.Context) (string, error)
}

// DocumentAttachmentRepository defines the interface for attachment persistence.
// Attachments are stored independently of the document aggregate so uploads do
// not bump the document version.
type DocumentAttachmentRepository interface {
	// FindByID finds an attachment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*DocumentAttachment, error)

	// FindByDocument finds all attachments for a document, newest first
	FindByDocument(ctx context.Context, documentID uuid.UUID) ([]DocumentAttachment, error)

	// FindActiveByDocument finds confirmed attachments for a document
	FindActiveByDocument(ctx context.Context, documentID uuid.UUID) ([]DocumentAttachment, error)

	// CountActiveByDocument counts confirmed attachments for a document
	CountActiveByDocument(ctx context.Context, documentID uuid.UUID) (int64, error)

	// Save creates or updates an attachment
	Save(ctx context.Context, attachment *DocumentAttachment) error

	// Delete removes an attachment record permanently
	Delete(ctx context.Context, id uuid.UUID) error
}
