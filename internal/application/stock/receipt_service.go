package stock

import (
	"context"
	"fmt"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptSettings carries the default location codes for inbound receipts.
// They are injected from configuration at wiring time.
type ReceiptSettings struct {
	SourceLocationCode      string
	DestinationLocationCode string
}

// ReceiptService handles receipt transaction operations. Completing a receipt
// goes through the inventory engine so stock levels move together with the
// receipt state; the emitted events drive the clearance document links.
type ReceiptService struct {
	receiptRepo    stock.ReceiptRepository
	locationRepo   stock.LocationRepository
	engine         stock.InventoryEngine
	settings       ReceiptSettings
	eventPublisher shared.EventPublisher
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	receiptRepo stock.ReceiptRepository,
	locationRepo stock.LocationRepository,
	engine stock.InventoryEngine,
	settings ReceiptSettings,
) *ReceiptService {
	return &ReceiptService{
		receiptRepo:  receiptRepo,
		locationRepo: locationRepo,
		engine:       engine,
		settings:     settings,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *ReceiptService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates and confirms an inbound receipt for a procurement order.
// The confirmation flow creates the first receipt itself; this path covers
// additional deliveries arriving against an already confirmed order.
func (s *ReceiptService) Create(ctx context.Context, req CreateReceiptRequest) (*ReceiptResponse, error) {
	sourceCode := req.SourceLocationCode
	if sourceCode == "" {
		sourceCode = s.settings.SourceLocationCode
	}
	destCode := req.DestinationLocationCode
	if destCode == "" {
		destCode = s.settings.DestinationLocationCode
	}

	source, err := s.locationRepo.FindByCode(ctx, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source location %s: %w", sourceCode, err)
	}
	dest, err := s.locationRepo.FindByCode(ctx, destCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination location %s: %w", destCode, err)
	}

	number, err := s.receiptRepo.GenerateReceiptNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate receipt number: %w", err)
	}

	receipt, err := stock.NewReceiptTransaction(number, req.OrderID, req.PartnerID, source.ID, dest.ID)
	if err != nil {
		return nil, err
	}
	for _, movement := range req.Movements {
		if _, err := receipt.AddMovement(movement.ProductID, movement.ProductName, movement.ProductCode, movement.Quantity); err != nil {
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

	response := ToReceiptResponse(receipt)
	return &response, nil
}

// GetByID retrieves a receipt by ID
func (s *ReceiptService) GetByID(ctx context.Context, receiptID uuid.UUID) (*ReceiptResponse, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	response := ToReceiptResponse(receipt)
	return &response, nil
}

// List retrieves receipts with filtering and pagination
func (s *ReceiptService) List(ctx context.Context, filter ReceiptListFilter) ([]ReceiptListItemResponse, int64, error) {
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

	if filter.OrderID != nil {
		domainFilter.Filters["order_id"] = *filter.OrderID
	}
	if filter.PartnerID != nil {
		domainFilter.Filters["partner_id"] = *filter.PartnerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if len(filter.Statuses) > 0 {
		domainFilter.Filters["statuses"] = filter.Statuses
	}
	if filter.IsReturn != nil {
		domainFilter.Filters["is_return"] = *filter.IsReturn
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	receipts, err := s.receiptRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.receiptRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToReceiptListItemResponses(receipts), total, nil
}

// Complete completes a receipt through the inventory engine, moving stock
// between the receipt's locations. Movements without an explicit done
// quantity complete at their planned quantity.
func (s *ReceiptService) Complete(ctx context.Context, receiptID uuid.UUID, req CompleteReceiptRequest) (*ReceiptResponse, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	var doneQuantities map[uuid.UUID]decimal.Decimal
	if len(req.DoneQuantities) > 0 {
		doneQuantities = make(map[uuid.UUID]decimal.Decimal, len(req.DoneQuantities))
		for _, done := range req.DoneQuantities {
			doneQuantities[done.MovementID] = done.DoneQuantity
		}
	}

	if err := s.engine.Complete(ctx, receipt, doneQuantities); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, receipt)

	response := ToReceiptResponse(receipt)
	return &response, nil
}

// Cancel cancels a receipt that has not moved goods yet. Returns cannot be
// cancelled once done; they exist only in completed form.
func (s *ReceiptService) Cancel(ctx context.Context, receiptID uuid.UUID, req CancelReceiptRequest) (*ReceiptResponse, error) {
	receipt, err := s.receiptRepo.FindByID(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	if err := receipt.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.receiptRepo.SaveWithLock(ctx, receipt); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, receipt)

	response := ToReceiptResponse(receipt)
	return &response, nil
}

// publishEvents publishes and clears the pending domain events of an aggregate
func (s *ReceiptService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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
