package clearance

import (
	"context"
	"fmt"
	"strings"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/finance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"github.com/aduana/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrCodeReversalNotAuthorized identifies a reversal attempt by a user who is
// not on the configured allow-list
const ErrCodeReversalNotAuthorized = "REVERSAL_NOT_AUTHORIZED"

// ReversalSettings carries reversal authorization and notification lists.
// An empty allow-list means every authenticated user may revert.
type ReversalSettings struct {
	AllowedLogins []string
	NotifyLogins  []string
}

// ReversalNotifier delivers a reversal summary to the configured logins
type ReversalNotifier interface {
	NotifyReversal(ctx context.Context, logins []string, result OrderReversalResult)
}

// ReversalService undoes the stock and clearance effects of a confirmed
// order. The reversal is a saga: all preconditions are checked before the
// first mutation, and once stock-side steps have committed there is no
// cross-entity rollback. Return creation is best-effort per receipt; failures
// are recorded on the order and the reversal continues.
type ReversalService struct {
	orderRepo       procurement.Repository
	documentRepo    clearance.Repository
	receiptRepo     stock.ReceiptRepository
	invoiceRepo     finance.Repository
	engine          stock.InventoryEngine
	canceller       clearance.SafeCanceller
	settings        ReversalSettings
	notifier        ReversalNotifier
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewReversalService creates a new ReversalService
func NewReversalService(
	orderRepo procurement.Repository,
	documentRepo clearance.Repository,
	receiptRepo stock.ReceiptRepository,
	invoiceRepo finance.Repository,
	engine stock.InventoryEngine,
	canceller clearance.SafeCanceller,
	settings ReversalSettings,
	logger *zap.Logger,
) *ReversalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReversalService{
		orderRepo:    orderRepo,
		documentRepo: documentRepo,
		receiptRepo:  receiptRepo,
		invoiceRepo:  invoiceRepo,
		engine:       engine,
		canceller:    canceller,
		settings:     settings,
		logger:       logger,
	}
}

// SetNotifier sets the notifier for completed reversals
func (s *ReversalService) SetNotifier(notifier ReversalNotifier) {
	s.notifier = notifier
}

// SetEventPublisher sets the event publisher for domain events
func (s *ReversalService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (s *ReversalService) SetBusinessMetrics(metrics *telemetry.BusinessMetrics) {
	s.businessMetrics = metrics
}

// RevertOrder reverts a single confirmed order: receipts are cancelled or
// returned, the clearance document is detached and cancelled when this order
// was its last reference, and the order keeps an audit note of everything
// that happened.
func (s *ReversalService) RevertOrder(ctx context.Context, actorLogin string, orderID uuid.UUID, req RevertOrderRequest) (*OrderReversalResult, error) {
	if err := s.authorize(actorLogin); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return s.revertOne(ctx, actorLogin, order, req.Reason)
}

// RevertDocument reverts every order currently referencing a clearance
// document. Orders are processed one to completion at a time; a failing
// order aborts the run, and a re-run picks up the orders that still
// reference the document.
func (s *ReversalService) RevertDocument(ctx context.Context, actorLogin string, documentID uuid.UUID, req RevertOrderRequest) (*DocumentReversalResult, error) {
	if err := s.authorize(actorLogin); err != nil {
		return nil, err
	}

	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindByClearanceDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referencing orders: %w", err)
	}

	result := &DocumentReversalResult{
		DocumentID:     doc.ID,
		DocumentNumber: doc.DocumentNumber,
		Orders:         make([]OrderReversalResult, 0, len(orders)),
	}

	for i := range orders {
		orderResult, err := s.revertOne(ctx, actorLogin, &orders[i], req.Reason)
		if err != nil {
			return nil, err
		}
		result.Orders = append(result.Orders, *orderResult)
	}

	return result, nil
}

// authorize enforces the reversal allow-list
func (s *ReversalService) authorize(actorLogin string) error {
	if len(s.settings.AllowedLogins) == 0 {
		return nil
	}
	for _, login := range s.settings.AllowedLogins {
		if strings.EqualFold(login, actorLogin) {
			return nil
		}
	}
	return shared.NewDomainError(ErrCodeReversalNotAuthorized,
		fmt.Sprintf("User %s is not allowed to revert clearance operations", actorLogin))
}

// revertOne runs the reversal saga for one order
func (s *ReversalService) revertOne(ctx context.Context, actorLogin string, order *procurement.ProcurementOrder, reason string) (*OrderReversalResult, error) {
	if !order.IsConfirmed() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order %s is not confirmed and cannot be reverted", order.OrderNumber))
	}
	if reason == "" {
		reason = "Procurement order reverted"
	}

	receipts, err := s.receiptRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipts for order %s: %w", order.OrderNumber, err)
	}

	if err := s.checkInvoices(ctx, order); err != nil {
		return nil, err
	}
	if err := s.checkAvailability(ctx, receipts); err != nil {
		return nil, err
	}

	result := &OrderReversalResult{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		CancelledReceipts: make([]string, 0),
		CreatedReturns:    make([]ReturnReference, 0),
		FailedReturns:     make([]ReturnFailure, 0),
		DocumentOutcome:   DocumentOutcomeNone,
	}

	// Step 1: cancel everything still in flight. The receipt-cancelled
	// handler takes care of detaching draft documents.
	for i := range receipts {
		receipt := &receipts[i]
		if receipt.IsTerminal() {
			continue
		}
		if err := receipt.Cancel(reason); err != nil {
			return nil, err
		}
		if err := s.receiptRepo.SaveWithLock(ctx, receipt); err != nil {
			return nil, fmt.Errorf("failed to cancel receipt %s: %w", receipt.ReceiptNumber, err)
		}
		s.publishEvents(ctx, receipt)
		result.CancelledReceipts = append(result.CancelledReceipts, receipt.ReceiptNumber)
	}

	// Step 2: best-effort returns for completed receipts. A failure is
	// recorded on the order and the reversal moves on.
	reversed := make([]*stock.ReceiptTransaction, 0, len(receipts))
	for i := range receipts {
		receipt := &receipts[i]
		if !receipt.IsDone() || receipt.IsReturn() {
			continue
		}

		ret, err := s.engine.CreateReturn(ctx, receipt)
		if err != nil {
			s.logger.Warn("return creation failed during reversal",
				zap.String("order_number", order.OrderNumber),
				zap.String("receipt_number", receipt.ReceiptNumber),
				zap.Error(err),
			)
			order.AppendNote(fmt.Sprintf("Return for receipt %s failed: %v", receipt.ReceiptNumber, err))
			result.FailedReturns = append(result.FailedReturns, ReturnFailure{
				ReceiptID:     receipt.ID,
				ReceiptNumber: receipt.ReceiptNumber,
				Reason:        err.Error(),
			})
			continue
		}

		s.publishEvents(ctx, ret)
		result.CreatedReturns = append(result.CreatedReturns, ReturnReference{
			ReturnID:        ret.ID,
			ReturnNumber:    ret.ReceiptNumber,
			OriginReceiptID: receipt.ID,
			OriginNumber:    receipt.ReceiptNumber,
		})
		reversed = append(reversed, receipt)

		if s.businessMetrics != nil {
			s.businessMetrics.RecordReturnCreated(ctx)
		}
	}

	// Steps 3 and 4: detach the reversed receipts, then cancel the document
	// when this order was its last reference.
	if order.ClearanceDocumentID != nil {
		outcome, doc, err := s.releaseDocument(ctx, order, reversed, reason)
		if err != nil {
			return nil, err
		}
		result.DocumentID = &doc.ID
		result.DocumentNumber = doc.DocumentNumber
		result.DocumentOutcome = outcome
	}

	// Step 5: the order lets go of its reference. The document itself is
	// never deleted here.
	docID := order.ClearanceDocumentID
	order.ClearClearanceDocument()

	// Step 6: one audit note summarizing the whole reversal.
	order.AppendNote(s.summarize(actorLogin, result))
	order.AddDomainEvent(procurement.NewProcurementOrderRevertedEvent(
		order,
		receiptIDsByNumber(receipts, result.CancelledReceipts),
		returnIDs(result.CreatedReturns),
		failedReceiptIDs(result.FailedReturns),
		docID,
		result.DocumentOutcome == DocumentOutcomeCancelled,
		actorLogin,
	))

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order %s: %w", order.OrderNumber, err)
	}
	s.publishEvents(ctx, order)

	if s.businessMetrics != nil {
		s.businessMetrics.RecordReversal(ctx, string(result.DocumentOutcome))
	}
	if s.notifier != nil && len(s.settings.NotifyLogins) > 0 {
		s.notifier.NotifyReversal(ctx, s.settings.NotifyLogins, *result)
	}

	s.logger.Info("order reverted",
		zap.String("order_number", order.OrderNumber),
		zap.String("reverted_by", actorLogin),
		zap.Int("cancelled_receipts", len(result.CancelledReceipts)),
		zap.Int("created_returns", len(result.CreatedReturns)),
		zap.Int("failed_returns", len(result.FailedReturns)),
		zap.String("document_outcome", string(result.DocumentOutcome)),
	)

	return result, nil
}

// checkInvoices fails the reversal while the order still has posted or paid
// invoices. Paid invoices take precedence in the error so operators fix the
// harder problem first.
func (s *ReversalService) checkInvoices(ctx context.Context, order *procurement.ProcurementOrder) error {
	invoices, err := s.invoiceRepo.FindByOrder(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("failed to load invoices for order %s: %w", order.OrderNumber, err)
	}

	var paid, posted []string
	for i := range invoices {
		inv := &invoices[i]
		if inv.IsCancelled() {
			continue
		}
		switch {
		case inv.PaymentStatus.IsSettledOrSettling():
			paid = append(paid, inv.InvoiceNumber)
		case inv.IsPosted():
			posted = append(posted, inv.InvoiceNumber)
		}
	}

	if len(paid) > 0 {
		return shared.NewDomainError(finance.ErrCodeInvoicePaid,
			fmt.Sprintf("Invoices %s are paid or partially paid; reverse the payments first", strings.Join(paid, ", ")))
	}
	if len(posted) > 0 {
		return shared.NewDomainError(finance.ErrCodeInvoicePosted,
			fmt.Sprintf("Invoices %s are posted; cancel them first", strings.Join(posted, ", ")))
	}
	return nil
}

// checkAvailability verifies that every completed movement can be shipped
// back: the quantity needed per destination location and product must still
// be on hand. The check sums all quantity at the location, deliberately
// ignoring reservations.
func (s *ReversalService) checkAvailability(ctx context.Context, receipts []stock.ReceiptTransaction) error {
	type key struct {
		locationID uuid.UUID
		productID  uuid.UUID
	}
	needed := make(map[key]decimal.Decimal)
	names := make(map[key]string)

	for i := range receipts {
		receipt := &receipts[i]
		if !receipt.IsDone() || receipt.IsReturn() {
			continue
		}
		for _, movement := range receipt.Movements {
			if movement.Scrapped || !movement.DoneQuantity.IsPositive() {
				continue
			}
			k := key{locationID: receipt.DestinationLocationID, productID: movement.ProductID}
			needed[k] = needed[k].Add(movement.DoneQuantity)
			names[k] = movement.ProductName
		}
	}

	for k, quantity := range needed {
		available, err := s.engine.Available(ctx, k.locationID, k.productID)
		if err != nil {
			return fmt.Errorf("failed to check availability for product %s: %w", names[k], err)
		}
		if available.LessThan(quantity) {
			return shared.NewDomainError(stock.ErrCodeInsufficientStockForReturn,
				fmt.Sprintf("Only %s of %s remains at the destination but %s must be returned",
					available.String(), names[k], quantity.String()))
		}
	}
	return nil
}

// releaseDocument detaches the reversed receipts from the order's document
// and cancels the document when no other order references it. A validated
// document without the safe-cancel capability blocks the reversal here,
// leaving the order's reference in place.
func (s *ReversalService) releaseDocument(ctx context.Context, order *procurement.ProcurementOrder, reversed []*stock.ReceiptTransaction, reason string) (DocumentOutcome, *clearance.ClearanceDocument, error) {
	doc, err := s.documentRepo.FindByID(ctx, *order.ClearanceDocumentID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load clearance document: %w", err)
	}

	changed := false
	for _, receipt := range reversed {
		if doc.DetachReceipt(receipt.ID) {
			changed = true
		}
	}

	otherRefs, err := s.orderRepo.CountByClearanceDocument(ctx, doc.ID, order.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to count document references: %w", err)
	}

	outcome := DocumentOutcomeRetained
	if otherRefs == 0 && !doc.IsCancelled() {
		switch {
		case doc.IsDraft():
			if err := doc.Cancel(reason); err != nil {
				return "", nil, err
			}
		case s.canceller != nil && s.canceller.CanCancel():
			if err := s.canceller.Cancel(ctx, doc, reason); err != nil {
				return "", nil, err
			}
		default:
			// The order keeps its reference: the operator must deal with
			// the validated document before the reversal can finish.
			return "", nil, shared.NewDomainError(clearance.ErrCodeCancelBlocked,
				fmt.Sprintf("Clearance document %s is validated and cannot be cancelled automatically", doc.DocumentNumber))
		}
		outcome = DocumentOutcomeCancelled
		changed = true
	}

	if changed {
		if err := s.documentRepo.SaveWithLock(ctx, doc); err != nil {
			return "", nil, fmt.Errorf("failed to save clearance document %s: %w", doc.DocumentNumber, err)
		}
		s.publishEvents(ctx, doc)
	}

	return outcome, doc, nil
}

// summarize builds the single audit note appended to the order
func (s *ReversalService) summarize(actorLogin string, result *OrderReversalResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reversal by %s.", actorLogin)

	if len(result.CancelledReceipts) > 0 {
		fmt.Fprintf(&b, " Cancelled receipts: %s.", strings.Join(result.CancelledReceipts, ", "))
	}
	if len(result.CreatedReturns) > 0 {
		numbers := make([]string, 0, len(result.CreatedReturns))
		for _, ref := range result.CreatedReturns {
			numbers = append(numbers, fmt.Sprintf("%s (for %s)", ref.ReturnNumber, ref.OriginNumber))
		}
		fmt.Fprintf(&b, " Returns created: %s.", strings.Join(numbers, ", "))
	}
	if len(result.FailedReturns) > 0 {
		numbers := make([]string, 0, len(result.FailedReturns))
		for _, failure := range result.FailedReturns {
			numbers = append(numbers, failure.ReceiptNumber)
		}
		fmt.Fprintf(&b, " Returns failed: %s.", strings.Join(numbers, ", "))
	}

	switch result.DocumentOutcome {
	case DocumentOutcomeCancelled:
		fmt.Fprintf(&b, " Clearance document %s cancelled.", result.DocumentNumber)
	case DocumentOutcomeRetained:
		fmt.Fprintf(&b, " Clearance document %s retained; other orders still reference it.", result.DocumentNumber)
	}

	return b.String()
}

// publishEvents publishes and clears the pending domain events of an aggregate
func (s *ReversalService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
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

// receiptIDsByNumber maps the cancelled receipt numbers back to receipt IDs
func receiptIDsByNumber(receipts []stock.ReceiptTransaction, numbers []string) []uuid.UUID {
	byNumber := make(map[string]uuid.UUID, len(receipts))
	for i := range receipts {
		byNumber[receipts[i].ReceiptNumber] = receipts[i].ID
	}
	ids := make([]uuid.UUID, 0, len(numbers))
	for _, number := range numbers {
		if id, ok := byNumber[number]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// returnIDs extracts the created return IDs
func returnIDs(refs []ReturnReference) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ReturnID)
	}
	return ids
}

// failedReceiptIDs extracts the receipt IDs whose returns failed
func failedReceiptIDs(failures []ReturnFailure) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(failures))
	for _, failure := range failures {
		ids = append(ids, failure.ReceiptID)
	}
	return ids
}
