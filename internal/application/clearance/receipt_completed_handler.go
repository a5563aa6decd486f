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

// ReceiptCompletedHandler attaches a completed receipt to the clearance
// document of its procurement order. Receipts completed before the order got a
// document are picked up later by the registry, and attaching an
// already-linked receipt is a no-op, so re-delivery of the event is harmless.
type ReceiptCompletedHandler struct {
	orderRepo    procurement.Repository
	documentRepo clearance.Repository
	logger       *zap.Logger
}

// NewReceiptCompletedHandler creates a new handler for receipt completed events
func NewReceiptCompletedHandler(
	orderRepo procurement.Repository,
	documentRepo clearance.Repository,
	logger *zap.Logger,
) *ReceiptCompletedHandler {
	return &ReceiptCompletedHandler{
		orderRepo:    orderRepo,
		documentRepo: documentRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *ReceiptCompletedHandler) EventTypes() []string {
	return []string{stock.EventTypeReceiptCompleted}
}

// Handle links the completed receipt to the draft document of its order
func (h *ReceiptCompletedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	completedEvent, ok := event.(*stock.ReceiptCompletedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", stock.EventTypeReceiptCompleted),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventTypeReceiptCompleted, event.EventType())
	}

	// Returns reverse cleared goods; they never join a document themselves.
	if completedEvent.IsReturn {
		return nil
	}

	order, err := h.orderRepo.FindByID(ctx, completedEvent.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("order for completed receipt no longer exists",
				zap.String("receipt_number", completedEvent.ReceiptNumber),
				zap.String("order_id", completedEvent.OrderID.String()),
			)
			return nil
		}
		return fmt.Errorf("failed to load order for receipt %s: %w", completedEvent.ReceiptNumber, err)
	}

	if order.ClearanceDocumentID == nil {
		// No document yet. The registry attaches all active receipts when the
		// order gets one.
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

	if !document.IsDraft() {
		h.logger.Warn("receipt completed after its document left draft",
			zap.String("receipt_number", completedEvent.ReceiptNumber),
			zap.String("document_number", document.DocumentNumber),
			zap.String("document_status", string(document.Status)),
		)
		return nil
	}

	if document.HasReceipt(completedEvent.ReceiptID) {
		return nil
	}

	if err := document.AttachReceipt(completedEvent.ReceiptID, completedEvent.ReceiptNumber, completedEvent.PartnerID); err != nil {
		return fmt.Errorf("failed to attach receipt %s: %w", completedEvent.ReceiptNumber, err)
	}
	if err := h.documentRepo.SaveWithLock(ctx, document); err != nil {
		return fmt.Errorf("failed to save document %s: %w", document.DocumentNumber, err)
	}

	h.logger.Info("receipt attached to clearance document",
		zap.String("receipt_number", completedEvent.ReceiptNumber),
		zap.String("order_number", order.OrderNumber),
		zap.String("document_number", document.DocumentNumber),
	)

	return nil
}

// Ensure ReceiptCompletedHandler implements shared.EventHandler
var _ shared.EventHandler = (*ReceiptCompletedHandler)(nil)
