package clearance

import (
	"context"
	"fmt"
	"time"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"github.com/aduana/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// RegistrySettings carries the operational settings for order confirmation.
// The location codes name where inbound receipts are routed; they are injected
// from configuration at wiring time.
type RegistrySettings struct {
	SourceLocationCode      string
	DestinationLocationCode string
}

// RegistryService confirms procurement orders and resolves their clearance
// documents. Confirmation over a batch runs in two passes: a read-only
// validation pass that fails fast on any conflict, then a mutation pass that
// brings one order at a time to completion. A customs number shared by
// several orders of the same partner converges on a single draft document.
type RegistryService struct {
	orderRepo       procurement.Repository
	documentRepo    clearance.Repository
	receiptRepo     stock.ReceiptRepository
	locationRepo    stock.LocationRepository
	settings        RegistrySettings
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
}

// NewRegistryService creates a new RegistryService
func NewRegistryService(
	orderRepo procurement.Repository,
	documentRepo clearance.Repository,
	receiptRepo stock.ReceiptRepository,
	locationRepo stock.LocationRepository,
	settings RegistrySettings,
) *RegistryService {
	return &RegistryService{
		orderRepo:    orderRepo,
		documentRepo: documentRepo,
		receiptRepo:  receiptRepo,
		locationRepo: locationRepo,
		settings:     settings,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *RegistryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *RegistryService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.businessMetrics = metrics
}

// ConfirmOrders confirms a batch of procurement orders. Orders carrying a
// customs number are linked to a clearance document: an existing link is
// merge-attached, a matching draft is reused, otherwise a new draft is
// created. Orders without a customs number confirm without document work.
// The whole batch is validated before anything is mutated.
func (s *RegistryService) ConfirmOrders(ctx context.Context, req ConfirmOrdersRequest) (*ConfirmOrdersResponse, error) {
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

	if err := s.validateBatch(ctx, orders); err != nil {
		return nil, err
	}

	results := make([]OrderConfirmationResult, 0, len(orders))
	for i := range orders {
		result, err := s.confirmOne(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}

	return &ConfirmOrdersResponse{Results: results}, nil
}

// validateBatch is the read-only first pass. Any conflict fails the whole
// batch before a single order has been touched.
func (s *RegistryService) validateBatch(ctx context.Context, orders []procurement.ProcurementOrder) error {
	for i := range orders {
		order := &orders[i]

		if order.IsCancelled() {
			return shared.NewDomainError("INVALID_STATE",
				fmt.Sprintf("Order %s is cancelled and cannot be confirmed", order.OrderNumber))
		}
		if !order.IsConfirmed() && len(order.Items) == 0 {
			return shared.NewDomainError("NO_ITEMS",
				fmt.Sprintf("Order %s has no items", order.OrderNumber))
		}

		// Document conflicts only matter for orders that still need a
		// document resolved.
		if order.CustomsNumber == "" || order.ClearanceDocumentID != nil {
			continue
		}

		done, err := s.documentRepo.ExistsDoneWithCustomsNumber(ctx, order.CustomsNumber, uuid.Nil)
		if err != nil {
			return fmt.Errorf("failed to check customs number %s: %w", order.CustomsNumber, err)
		}
		if done {
			return shared.NewDomainError(clearance.ErrCodeCustomsNumberConflict,
				fmt.Sprintf("Customs number %s already belongs to a validated clearance document (order %s)",
					order.CustomsNumber, order.OrderNumber))
		}

		drafts, err := s.documentRepo.FindByCustomsNumberAndStatus(ctx, order.CustomsNumber, clearance.ClearanceDocumentStatusDraft)
		if err != nil {
			return fmt.Errorf("failed to load draft documents for %s: %w", order.CustomsNumber, err)
		}
		for j := range drafts {
			if !drafts[j].AcceptsPartner(order.PartnerID) {
				return shared.NewDomainError(clearance.ErrCodePartnerMismatch,
					fmt.Sprintf("Draft clearance document %s covers a different trading partner than order %s",
						drafts[j].DocumentNumber, order.OrderNumber))
			}
		}
	}
	return nil
}

// confirmOne brings a single order to completion: lifecycle transition,
// inbound receipt, document resolution, persistence.
func (s *RegistryService) confirmOne(ctx context.Context, order *procurement.ProcurementOrder) (*OrderConfirmationResult, error) {
	result := &OrderConfirmationResult{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		DocumentAction: DocumentActionNone,
	}

	if !order.IsConfirmed() {
		if err := order.Confirm(); err != nil {
			return nil, err
		}
	}

	receipts, err := s.receiptRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts for order %s: %w", order.OrderNumber, err)
	}

	active := make([]stock.ReceiptTransaction, 0, len(receipts))
	for i := range receipts {
		if !receipts[i].IsCancelled() && !receipts[i].IsReturn() {
			active = append(active, receipts[i])
		}
	}

	if len(active) == 0 {
		receipt, err := s.createReceipt(ctx, order)
		if err != nil {
			return nil, err
		}
		active = append(active, *receipt)
		result.ReceiptID = &receipt.ID
		result.ReceiptNumber = receipt.ReceiptNumber
	}

	if order.CustomsNumber != "" {
		doc, action, err := s.resolveDocument(ctx, order)
		if err != nil {
			return nil, err
		}

		for i := range active {
			if err := doc.AttachReceipt(active[i].ID, active[i].ReceiptNumber, active[i].PartnerID); err != nil {
				return nil, err
			}
		}
		if err := order.LinkClearanceDocument(doc.ID); err != nil {
			return nil, err
		}

		if action == DocumentActionCreated {
			err = s.documentRepo.Save(ctx, doc)
		} else {
			err = s.documentRepo.SaveWithLock(ctx, doc)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to save clearance document %s: %w", doc.DocumentNumber, err)
		}
		s.publishEvents(ctx, doc)

		result.DocumentID = &doc.ID
		result.DocumentNumber = doc.DocumentNumber
		result.DocumentAction = action

		if s.businessMetrics != nil {
			s.businessMetrics.RecordDocumentResolution(ctx, string(action))
		}
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order %s: %w", order.OrderNumber, err)
	}
	s.publishEvents(ctx, order)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordOrderConfirmed(ctx)
	}

	return result, nil
}

// resolveDocument finds the document an order should use: its existing link,
// a draft sharing the customs number, or a freshly created draft.
func (s *RegistryService) resolveDocument(ctx context.Context, order *procurement.ProcurementOrder) (*clearance.ClearanceDocument, DocumentAction, error) {
	if order.ClearanceDocumentID != nil {
		doc, err := s.documentRepo.FindByID(ctx, *order.ClearanceDocumentID)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load linked document: %w", err)
		}
		return doc, DocumentActionAlreadyLinked, nil
	}

	drafts, err := s.documentRepo.FindByCustomsNumberAndStatus(ctx, order.CustomsNumber, clearance.ClearanceDocumentStatusDraft)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load draft documents: %w", err)
	}
	if len(drafts) > 0 {
		return &drafts[0], DocumentActionReused, nil
	}

	number, err := s.documentRepo.GenerateDocumentNumber(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate document number: %w", err)
	}
	doc, err := clearance.NewClearanceDocument(number, order.CustomsNumber, time.Now())
	if err != nil {
		return nil, "", err
	}
	return doc, DocumentActionCreated, nil
}

// createReceipt creates and confirms the inbound receipt that tracks an
// order's goods from the supplier location into stock.
func (s *RegistryService) createReceipt(ctx context.Context, order *procurement.ProcurementOrder) (*stock.ReceiptTransaction, error) {
	source, err := s.locationRepo.FindByCode(ctx, s.settings.SourceLocationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source location %s: %w", s.settings.SourceLocationCode, err)
	}
	dest, err := s.locationRepo.FindByCode(ctx, s.settings.DestinationLocationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination location %s: %w", s.settings.DestinationLocationCode, err)
	}

	number, err := s.receiptRepo.GenerateReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate receipt number: %w", err)
	}

	receipt, err := stock.NewReceiptTransaction(number, order.ID, order.PartnerID, source.ID, dest.ID)
	if err != nil {
		return nil, err
	}
	for i := range order.Items {
		item := &order.Items[i]
		if _, err := receipt.AddMovement(item.ProductID, item.ProductName, item.ProductCode, item.Quantity); err != nil {
			return nil, err
		}
	}
	if err := receipt.Confirm(); err != nil {
		return nil, err
	}

	if err := s.receiptRepo.Save(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to save receipt %s: %w", receipt.ReceiptNumber, err)
	}
	s.publishEvents(ctx, receipt)

	return receipt, nil
}

// publishEvents publishes and clears the pending domain events of an aggregate
func (s *RegistryService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Errors are logged by the event bus, not propagated
	_ = s.eventPublisher.Publish(ctx, events...)
	aggregate.ClearDomainEvents()
}

// dedupeIDs removes duplicate IDs preserving first-seen order
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
