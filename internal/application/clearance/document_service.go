package clearance

import (
	"context"
	"fmt"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// DocumentService handles read and lifecycle operations on clearance
// documents that are driven from the document side rather than through an
// order.
type DocumentService struct {
	documentRepo    clearance.Repository
	orderRepo       procurement.Repository
	canceller       clearance.SafeCanceller
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo clearance.Repository,
	orderRepo procurement.Repository,
	canceller clearance.SafeCanceller,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		orderRepo:    orderRepo,
		canceller:    canceller,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *DocumentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *DocumentService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.businessMetrics = metrics
}

// GetByID retrieves a clearance document together with the orders currently
// referencing it. The order set is derived by reverse lookup; the document
// itself never stores it.
func (s *DocumentService) GetByID(ctx context.Context, documentID uuid.UUID) (*ClearanceDocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindByClearanceDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referencing orders: %w", err)
	}

	response := ToClearanceDocumentResponse(doc)
	response.Orders = make([]ReferencingOrderResponse, 0, len(orders))
	for i := range orders {
		response.Orders = append(response.Orders, ReferencingOrderResponse{
			OrderID:     orders[i].ID,
			OrderNumber: orders[i].OrderNumber,
			PartnerID:   orders[i].PartnerID,
			PartnerName: orders[i].PartnerName,
			Status:      string(orders[i].Status),
		})
	}
	return &response, nil
}

// List retrieves clearance documents with filtering and pagination
func (s *DocumentService) List(ctx context.Context, filter ClearanceDocumentListFilter) ([]ClearanceDocumentListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != nil && *filter.Status != "" {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.CustomsNumber != "" {
		domainFilter.Filters["customs_number"] = filter.CustomsNumber
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	docs, err := s.documentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.documentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToClearanceDocumentListItemResponses(docs), total, nil
}

// AddCostLine adds a landed-cost line to a draft document
func (s *DocumentService) AddCostLine(ctx context.Context, documentID uuid.UUID, req AddCostLineRequest) (*ClearanceDocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	splitMethod := clearance.CostLineSplitMethod(req.SplitMethod)
	if req.SplitMethod == "" {
		splitMethod = clearance.SplitByQuantity
	}

	if _, err := doc.AddCostLine(req.Description, req.Amount, splitMethod); err != nil {
		return nil, err
	}

	if err := s.documentRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	response := ToClearanceDocumentResponse(doc)
	return &response, nil
}

// RemoveCostLine removes a landed-cost line from a draft document
func (s *DocumentService) RemoveCostLine(ctx context.Context, documentID, lineID uuid.UUID) (*ClearanceDocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if err := doc.RemoveCostLine(lineID); err != nil {
		return nil, err
	}

	if err := s.documentRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}

	response := ToClearanceDocumentResponse(doc)
	return &response, nil
}

// Cancel cancels a clearance document from the document side. Every order
// still referencing the document has its reference cleared first, so the
// cancellation never leaves a dangling link. A validated document goes
// through the safe-cancel capability; without it the call fails before
// anything is touched.
func (s *DocumentService) Cancel(ctx context.Context, documentID uuid.UUID, req CancelDocumentRequest) (*ClearanceDocumentResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.IsCancelled() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Clearance document %s is already cancelled", doc.DocumentNumber))
	}
	if doc.IsDone() && (s.canceller == nil || !s.canceller.CanCancel()) {
		return nil, shared.NewDomainError(clearance.ErrCodeCancelBlocked,
			fmt.Sprintf("Clearance document %s is validated and cannot be cancelled", doc.DocumentNumber))
	}

	orders, err := s.orderRepo.FindByClearanceDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referencing orders: %w", err)
	}
	for i := range orders {
		order := &orders[i]
		order.ClearClearanceDocument()
		order.AppendNote(fmt.Sprintf("Clearance document %s was cancelled: %s", doc.DocumentNumber, req.Reason))
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return nil, fmt.Errorf("failed to clear reference on order %s: %w", order.OrderNumber, err)
		}
		s.publishEvents(ctx, order)
	}

	if doc.IsDone() {
		err = s.canceller.Cancel(ctx, doc, req.Reason)
	} else {
		err = doc.Cancel(req.Reason)
	}
	if err != nil {
		return nil, err
	}

	if err := s.documentRepo.SaveWithLock(ctx, doc); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, doc)

	response := ToClearanceDocumentResponse(doc)
	return &response, nil
}

// publishEvents publishes and clears the pending domain events of an aggregate
func (s *DocumentService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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
