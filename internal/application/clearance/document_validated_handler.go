package clearance

import (
	"context"
	"fmt"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/finance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentValidatedHandler backfills customs information onto posted vendor
// invoices once a clearance document is validated. Lines that already carry
// a customs number are left alone, so re-delivery of the event is harmless.
type DocumentValidatedHandler struct {
	orderRepo   procurement.Repository
	invoiceRepo finance.Repository
	logger      *zap.Logger
}

// NewDocumentValidatedHandler creates a new handler for document validated events
func NewDocumentValidatedHandler(
	orderRepo procurement.Repository,
	invoiceRepo finance.Repository,
	logger *zap.Logger,
) *DocumentValidatedHandler {
	return &DocumentValidatedHandler{
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *DocumentValidatedHandler) EventTypes() []string {
	return []string{clearance.EventTypeClearanceDocumentValidated}
}

// Handle stamps the customs number and date onto every posted invoice line
// of the orders referencing the validated document
func (h *DocumentValidatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	validatedEvent, ok := event.(*clearance.ClearanceDocumentValidatedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", clearance.EventTypeClearanceDocumentValidated),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			clearance.EventTypeClearanceDocumentValidated, event.EventType())
	}

	orders, err := h.orderRepo.FindByClearanceDocument(ctx, validatedEvent.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to load orders for document %s: %w", validatedEvent.DocumentNumber, err)
	}

	var lastErr error
	stamped := 0
	for i := range orders {
		order := &orders[i]

		invoices, err := h.invoiceRepo.FindPostedMissingCustomsInfo(ctx, order.ID)
		if err != nil {
			h.logger.Error("failed to load invoices for customs backfill",
				zap.String("order_number", order.OrderNumber),
				zap.Error(err),
			)
			lastErr = err
			continue
		}

		for j := range invoices {
			invoice := &invoices[j]
			applied := invoice.ApplyCustomsInfo(validatedEvent.CustomsNumber, validatedEvent.CustomsDate)
			if applied == 0 {
				continue
			}
			if err := h.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
				h.logger.Error("failed to save backfilled invoice",
					zap.String("invoice_number", invoice.InvoiceNumber),
					zap.Error(err),
				)
				lastErr = err
				continue
			}
			stamped += applied
		}
	}

	h.logger.Info("customs backfill completed",
		zap.String("document_number", validatedEvent.DocumentNumber),
		zap.String("customs_number", validatedEvent.CustomsNumber),
		zap.Int("orders", len(orders)),
		zap.Int("lines_stamped", stamped),
	)

	if lastErr != nil {
		return fmt.Errorf("some invoices failed to backfill: %w", lastErr)
	}
	return nil
}

// Ensure DocumentValidatedHandler implements shared.EventHandler
var _ shared.EventHandler = (*DocumentValidatedHandler)(nil)
