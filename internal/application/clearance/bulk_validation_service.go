package clearance

import (
	"context"
	"fmt"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"github.com/aduana/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BulkValidationService validates the clearance documents behind a batch of
// orders in one sweep. Orders are partitioned by document state, documents
// are deduplicated, and every per-document failure is captured into the
// report instead of aborting the batch.
type BulkValidationService struct {
	orderRepo       procurement.Repository
	documentRepo    clearance.Repository
	receiptRepo     stock.ReceiptRepository
	costingEngine   clearance.CostingEngine
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewBulkValidationService creates a new BulkValidationService
func NewBulkValidationService(
	orderRepo procurement.Repository,
	documentRepo clearance.Repository,
	receiptRepo stock.ReceiptRepository,
	costingEngine clearance.CostingEngine,
) *BulkValidationService {
	return &BulkValidationService{
		orderRepo:     orderRepo,
		documentRepo:  documentRepo,
		receiptRepo:   receiptRepo,
		costingEngine: costingEngine,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *BulkValidationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *BulkValidationService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.businessMetrics = metrics
}

// ValidateClearances validates the draft clearance documents referenced by a
// batch of orders. The report partitions orders without a customs number,
// orders without a document, documents already validated, documents validated
// now, and per-document failures. One document shared by several orders in
// the batch is processed once.
func (s *BulkValidationService) ValidateClearances(ctx context.Context, req ValidateClearancesRequest) (*ClearanceValidationReport, error) {
	if len(req.OrderIDs) == 0 {
		return nil, shared.ErrInvalidInput
	}

	orders, err := s.orderRepo.FindByIDs(ctx, dedupeIDs(req.OrderIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, shared.ErrNotFound
	}

	report := &ClearanceValidationReport{
		OrdersChecked:   len(orders),
		DocumentsFailed: make([]DocumentValidationFailure, 0),
	}

	seenDocs := make(map[uuid.UUID]struct{})
	alreadyDone := make(map[uuid.UUID]struct{})
	drafts := make([]*clearance.ClearanceDocument, 0, len(orders))

	for i := range orders {
		order := &orders[i]

		if order.CustomsNumber == "" {
			addToCategory(&report.OrdersWithoutNumber, order.OrderNumber)
			continue
		}
		if order.ClearanceDocumentID == nil {
			addToCategory(&report.OrdersWithoutDocument, order.OrderNumber)
			continue
		}

		docID := *order.ClearanceDocumentID
		if _, ok := seenDocs[docID]; ok {
			continue
		}
		seenDocs[docID] = struct{}{}

		doc, err := s.documentRepo.FindByID(ctx, docID)
		if err != nil {
			return nil, fmt.Errorf("failed to load clearance document for order %s: %w", order.OrderNumber, err)
		}

		if doc.IsDone() {
			if _, ok := alreadyDone[doc.ID]; !ok {
				alreadyDone[doc.ID] = struct{}{}
				addToCategory(&report.DocumentsAlreadyDone, doc.DocumentNumber)
			}
			continue
		}
		drafts = append(drafts, doc)
	}

	for _, doc := range drafts {
		if err := s.validateOne(ctx, doc); err != nil {
			report.DocumentsFailed = append(report.DocumentsFailed, DocumentValidationFailure{
				DocumentID:     doc.ID,
				DocumentNumber: doc.DocumentNumber,
				Error:          err.Error(),
			})
			continue
		}
		addToCategory(&report.DocumentsValidated, doc.DocumentNumber)
	}

	report.Severity = classifySeverity(report)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordBulkValidation(ctx, string(report.Severity))
	}

	return report, nil
}

// validateOne validates a single draft document: costs are computed first
// when cost lines are present, then the document transitions to DONE.
func (s *BulkValidationService) validateOne(ctx context.Context, doc *clearance.ClearanceDocument) error {
	if len(doc.Receipts) == 0 {
		return shared.NewDomainError(clearance.ErrCodeValidationFailed,
			fmt.Sprintf("Clearance document %s has no attached receipts", doc.DocumentNumber))
	}

	if doc.HasCostLines() {
		doneQuantities, err := s.collectDoneQuantities(ctx, doc)
		if err != nil {
			return err
		}
		if err := s.costingEngine.ComputeCosts(ctx, doc, doneQuantities); err != nil {
			return err
		}
	}

	if err := s.costingEngine.Validate(ctx, doc); err != nil {
		return err
	}

	if err := s.documentRepo.SaveWithLock(ctx, doc); err != nil {
		return err
	}
	s.publishEvents(ctx, doc)

	return nil
}

// collectDoneQuantities maps every attached receipt to its total completed
// quantity
func (s *BulkValidationService) collectDoneQuantities(ctx context.Context, doc *clearance.ClearanceDocument) (map[uuid.UUID]decimal.Decimal, error) {
	ids := make([]uuid.UUID, 0, len(doc.Receipts))
	for _, link := range doc.Receipts {
		ids = append(ids, link.ReceiptID)
	}

	receipts, err := s.receiptRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts for document %s: %w", doc.DocumentNumber, err)
	}

	quantities := make(map[uuid.UUID]decimal.Decimal, len(receipts))
	for i := range receipts {
		quantities[receipts[i].ID] = receipts[i].TotalMovedQuantity()
	}
	return quantities, nil
}

// publishEvents publishes and clears the pending domain events of an aggregate
func (s *BulkValidationService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	aggregate.ClearDomainEvents()
}

// addToCategory appends a name to a report category and bumps its count
func addToCategory(category *ValidationCategory, name string) {
	category.Count++
	category.Names = append(category.Names, name)
}

// classifySeverity derives the overall severity: success when at least one
// document validated and nothing failed, warning for a mixed outcome, danger
// when nothing validated at all.
func classifySeverity(report *ClearanceValidationReport) ReportSeverity {
	validated := report.DocumentsValidated.Count
	failed := len(report.DocumentsFailed)

	switch {
	case validated > 0 && failed == 0:
		return ReportSeveritySuccess
	case validated > 0:
		return ReportSeverityWarning
	default:
		return ReportSeverityDanger
	}
}
