package clearance

import (
	"context"
	"errors"
	"fmt"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// ReceiptCancelledHandler detaches a cancelled receipt from the clearance
// document of its procurement order. Links are only mutable on draft
// documents, and detaching a receipt that is not attached is a no-op, so
// re-delivery of the event is harmless.
type ReceiptCancelledHandler struct {
	orderRepo    procurement.Repository
	documentRepo clearance.Repository
	logger       *zap.Logger
}

// NewReceiptCancelledHandler creates a new handler for receipt cancelled events
func NewReceiptCancelledHandler(
	orderRepo procurement.Repository,
	documentRepo clearance.Repository,
	logger *zap.Logger,
) *ReceiptCancelledHandler {
	return &ReceiptCancelledHandler{
		orderRepo:    orderRepo,
		documentRepo: documentRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReceiptCancelledHandler) EventTypes() []string {
	return []string{stock.EventTypeReceiptCancelled}
}

// Handle removes the cancelled receipt from its order's draft document
func (h *ReceiptCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelledEvent, ok := event.(*stock.ReceiptCancelledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", stock.EventTypeReceiptCancelled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventTypeReceiptCancelled, event.EventType())
	}

	order, err := h.orderRepo.FindByID(ctx, cancelledEvent.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("order for cancelled receipt no longer exists",
				zap.String("receipt_number", cancelledEvent.ReceiptNumber),
				zap.String("order_id", cancelledEvent.OrderID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to load order for receipt %s: %w", cancelledEvent.ReceiptNumber, err)
	}

	if order.ClearanceDocumentID == nil {
		return nil
	}

	document, err := h.documentRepo.FindByID(ctx, *order.ClearanceDocumentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("order references a missing clearance document",
				zap.String("order_number", order.OrderNumber),
				zap.String("document_id", order.ClearanceDocumentID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to load document for order %s: %w", order.OrderNumber, err)
	}

	if !document.DetachReceipt(cancelledEvent.ReceiptID) {
		// Not attached, or the document already left draft and keeps its
		// links for audit.
		return nil
	}

	if err := h.documentRepo.SaveWithLock(ctx, document); err != nil {
		return fmt.Errorf("failed to save document %s: %w", document.DocumentNumber, err)
	}

	h.logger.Info("receipt detached from clearance document",
		zap.String("receipt_number", cancelledEvent.ReceiptNumber),
		zap.String("order_number", order.OrderNumber),
		zap.String("document_number", document.DocumentNumber),
	)

	return nil
}

// Ensure ReceiptCancelledHandler implements shared.EventHandler
var _ shared.EventHandler = (*ReceiptCancelledHandler)(nil)
