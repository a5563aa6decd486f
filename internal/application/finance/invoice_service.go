package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/finance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceService handles vendor invoice use cases
type InvoiceService struct {
	invoiceRepo    finance.Repository
	orderRepo      procurement.Repository
	documentRepo   clearance.Repository
	eventPublisher shared.EventPublisher
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo finance.Repository,
	orderRepo procurement.Repository,
	documentRepo clearance.Repository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		documentRepo: documentRepo,
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new draft vendor invoice
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	invoiceNumber, err := s.invoiceRepo.GenerateInvoiceNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice number: %w", err)
	}

	var invoiceDate time.Time
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}

	invoice, err := finance.NewVendorInvoice(invoiceNumber, req.PartnerID, req.PartnerName, req.OrderID, invoiceDate)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		if _, err := invoice.AddLine(line.ProductID, line.Description, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}

	if req.Remark != "" {
		invoice.SetRemark(req.Remark)
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves a vendor invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves vendor invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceListItemResponse, int64, error) {
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

	if filter.PartnerID != nil {
		domainFilter.Filters["partner_id"] = *filter.PartnerID
	}
	if filter.OrderID != nil {
		domainFilter.Filters["order_id"] = *filter.OrderID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.PaymentStatus != nil {
		domainFilter.Filters["payment_status"] = string(*filter.PaymentStatus)
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}
	if filter.MinAmount != nil {
		domainFilter.Filters["min_amount"] = *filter.MinAmount
	}
	if filter.MaxAmount != nil {
		domainFilter.Filters["max_amount"] = *filter.MaxAmount
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToInvoiceListItemResponses(invoices), total, nil
}

// AddLine adds a line to a draft invoice
func (s *InvoiceService) AddLine(ctx context.Context, invoiceID uuid.UUID, req AddInvoiceLineRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if _, err := invoice.AddLine(req.ProductID, req.Description, req.Quantity, req.UnitPrice); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RemoveLine removes a line from a draft invoice
func (s *InvoiceService) RemoveLine(ctx context.Context, invoiceID, lineID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.RemoveLine(lineID); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Post books the invoice. When the invoice belongs to an order whose
// clearance document is already validated, the customs number and date are
// stamped onto the lines in the same save; invoices posted before validation
// are stamped later by the document validated handler.
func (s *InvoiceService) Post(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Post(); err != nil {
		return nil, err
	}

	if err := s.stampCustomsInfo(ctx, invoice); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// RegisterPayment registers a payment against a posted invoice
func (s *InvoiceService) RegisterPayment(ctx context.Context, invoiceID uuid.UUID, req RegisterPaymentRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.RegisterPayment(req.Amount); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Cancel voids an invoice. Invoices with payments in flight cannot be cancelled.
func (s *InvoiceService) Cancel(ctx context.Context, invoiceID uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// stampCustomsInfo copies the customs number and date from the order's
// validated clearance document onto the invoice lines. Orders without a
// document reference, and documents still in draft, leave the lines untouched.
func (s *InvoiceService) stampCustomsInfo(ctx context.Context, invoice *finance.VendorInvoice) error {
	if invoice.OrderID == nil {
		return nil
	}

	order, err := s.orderRepo.FindByID(ctx, *invoice.OrderID)
	if err != nil {
		return fmt.Errorf("failed to load order %s for customs stamp: %w", *invoice.OrderID, err)
	}
	if order.ClearanceDocumentID == nil {
		return nil
	}

	document, err := s.documentRepo.FindByID(ctx, *order.ClearanceDocumentID)
	if err != nil {
		return fmt.Errorf("failed to load clearance document %s for customs stamp: %w", *order.ClearanceDocumentID, err)
	}
	if !document.IsDone() {
		return nil
	}

	invoice.ApplyCustomsInfo(document.CustomsNumber, document.CustomsDate)
	return nil
}

// publishEvents publishes all domain events from the aggregate
func (s *InvoiceService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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
