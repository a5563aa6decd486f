package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	clearanceapp "github.com/aduana/backend/internal/application/clearance"
	financeapp "github.com/aduana/backend/internal/application/finance"
	procurementapp "github.com/aduana/backend/internal/application/procurement"
	stockapp "github.com/aduana/backend/internal/application/stock"
	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"github.com/aduana/backend/internal/infrastructure/persistence"
)

// clearanceEnv wires the real application services against a migrated
// database, the way cmd/server does, minus HTTP and telemetry.
type clearanceEnv struct {
	db *TestDB

	orderRepo    *persistence.GormProcurementOrderRepository
	receiptRepo  *persistence.GormReceiptRepository
	levelRepo    *persistence.GormStockLevelRepository
	documentRepo *persistence.GormClearanceDocumentRepository
	invoiceRepo  *persistence.GormVendorInvoiceRepository
	engine       *stock.StandardInventoryEngine

	orders    *procurementapp.OrderService
	registry  *clearanceapp.RegistryService
	receipts  *stockapp.ReceiptService
	documents *clearanceapp.DocumentService
	bulk      *clearanceapp.BulkValidationService
	reversal  *clearanceapp.ReversalService
	invoices  *financeapp.InvoiceService

	sourceID uuid.UUID
	destID   uuid.UUID
}

func newClearanceEnv(t *testing.T) *clearanceEnv {
	return newClearanceEnvWithReversal(t, clearanceapp.ReversalSettings{})
}

func newClearanceEnvWithReversal(t *testing.T, reversalSettings clearanceapp.ReversalSettings) *clearanceEnv {
	t.Helper()

	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	sourceID, destID := tdb.CreateClearanceLocations()

	orderRepo := persistence.NewGormProcurementOrderRepository(tdb.DB)
	receiptRepo := persistence.NewGormReceiptRepository(tdb.DB)
	levelRepo := persistence.NewGormStockLevelRepository(tdb.DB)
	locationRepo := persistence.NewGormLocationRepository(tdb.DB)
	documentRepo := persistence.NewGormClearanceDocumentRepository(tdb.DB)
	invoiceRepo := persistence.NewGormVendorInvoiceRepository(tdb.DB)

	engine := stock.NewStandardInventoryEngine(receiptRepo, levelRepo, locationRepo)
	costing := clearance.NewStandardCostingEngine(documentRepo)
	canceller := clearance.NewStandardSafeCanceller()

	return &clearanceEnv{
		db:           tdb,
		orderRepo:    orderRepo,
		receiptRepo:  receiptRepo,
		levelRepo:    levelRepo,
		documentRepo: documentRepo,
		invoiceRepo:  invoiceRepo,
		engine:       engine,
		orders:       procurementapp.NewOrderService(orderRepo, receiptRepo),
		registry: clearanceapp.NewRegistryService(orderRepo, documentRepo, receiptRepo, locationRepo, clearanceapp.RegistrySettings{
			SourceLocationCode:      "SUPPLIERS",
			DestinationLocationCode: "CUSTOMS",
		}),
		receipts: stockapp.NewReceiptService(receiptRepo, locationRepo, engine, stockapp.ReceiptSettings{
			SourceLocationCode:      "SUPPLIERS",
			DestinationLocationCode: "CUSTOMS",
		}),
		documents: clearanceapp.NewDocumentService(documentRepo, orderRepo, canceller),
		bulk:      clearanceapp.NewBulkValidationService(orderRepo, documentRepo, receiptRepo, costing),
		reversal: clearanceapp.NewReversalService(
			orderRepo, documentRepo, receiptRepo, invoiceRepo,
			engine, canceller, reversalSettings, zap.NewNop(),
		),
		invoices: financeapp.NewInvoiceService(invoiceRepo, orderRepo, documentRepo),
		sourceID: sourceID,
		destID:   destID,
	}
}

// createOrder creates a draft order with a single 10-unit item
func (e *clearanceEnv) createOrder(t *testing.T, partnerID uuid.UUID, partnerName, customsNumber string, productID uuid.UUID) *procurementapp.OrderResponse {
	t.Helper()

	order, err := e.orders.Create(context.Background(), procurementapp.CreateOrderRequest{
		PartnerID:     partnerID,
		PartnerName:   partnerName,
		CustomsNumber: customsNumber,
		Items: []procurementapp.CreateOrderItemInput{
			{
				ProductID:   productID,
				ProductName: "Steel coils",
				ProductCode: "STL-001",
				Quantity:    decimal.NewFromInt(10),
				UnitPrice:   decimal.NewFromFloat(25.50),
			},
		},
	})
	require.NoError(t, err)
	return order
}

// confirmOrder runs a single-order confirmation batch and returns its result
func (e *clearanceEnv) confirmOrder(t *testing.T, orderID uuid.UUID) clearanceapp.OrderConfirmationResult {
	t.Helper()

	resp, err := e.registry.ConfirmOrders(context.Background(), clearanceapp.ConfirmOrdersRequest{
		OrderIDs: []uuid.UUID{orderID},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	return resp.Results[0]
}

// completeOrderReceipts completes every confirmed receipt of an order at the
// planned quantities
func (e *clearanceEnv) completeOrderReceipts(t *testing.T, orderID uuid.UUID) {
	t.Helper()

	receipts, err := e.receiptRepo.FindByOrder(context.Background(), orderID)
	require.NoError(t, err)
	for i := range receipts {
		if receipts[i].Status != stock.ReceiptStatusConfirmed {
			continue
		}
		_, err := e.receipts.Complete(context.Background(), receipts[i].ID, stockapp.CompleteReceiptRequest{})
		require.NoError(t, err)
	}
}

func requireDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got: %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestConfirmOrders_CreatesReceiptAndDocument(t *testing.T) {
	env := newClearanceEnv(t)
	ctx := context.Background()

	productID := uuid.New()
	order := env.createOrder(t, uuid.New(), "Aceros del Norte", "26  48  3009  0001234", productID)

	result := env.confirmOrder(t, order.ID)

	assert.Equal(t, clearanceapp.DocumentActionCreated, result.DocumentAction)
	require.NotNil(t, result.ReceiptID)
	assert.NotEmpty(t, result.ReceiptNumber)
	require.NotNil(t, result.DocumentID)
	assert.NotEmpty(t, result.DocumentNumber)

	confirmed, err := env.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", confirmed.Status)
	require.NotNil(t, confirmed.ClearanceDocumentID)
	assert.Equal(t, *result.DocumentID, *confirmed.ClearanceDocumentID)

	receipts, err := env.receiptRepo.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, stock.ReceiptStatusConfirmed, receipts[0].Status)
	assert.Equal(t, env.sourceID, receipts[0].SourceLocationID)
	assert.Equal(t, env.destID, receipts[0].DestinationLocationID)
	require.Len(t, receipts[0].Movements, 1)
	assert.Equal(t, productID, receipts[0].Movements[0].ProductID)
	assert.True(t, receipts[0].Movements[0].Quantity.Equal(decimal.NewFromInt(10)))

	doc, err := env.documents.GetByID(ctx, *result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "DRAFT", doc.Status)
	assert.Equal(t, "26  48  3009  0001234", doc.CustomsNumber)
	require.Len(t, doc.Receipts, 1)
	assert.Equal(t, *result.ReceiptID, doc.Receipts[0].ReceiptID)
}

func TestConfirmOrders_SharedCustomsNumberReusesDraft(t *testing.T) {
	env := newClearanceEnv(t)

	partnerID := uuid.New()
	first := env.createOrder(t, partnerID, "Aceros del Norte", "26  48  3009  0001234", uuid.New())
	second := env.createOrder(t, partnerID, "Aceros del Norte", "26  48  3009  0001234", uuid.New())

	firstResult := env.confirmOrder(t, first.ID)
	secondResult := env.confirmOrder(t, second.ID)

	assert.Equal(t, clearanceapp.DocumentActionCreated, firstResult.DocumentAction)
	assert.Equal(t, clearanceapp.DocumentActionReused, secondResult.DocumentAction)
	require.NotNil(t, secondResult.DocumentID)
	assert.Equal(t, *firstResult.DocumentID, *secondResult.DocumentID)

	// The shared draft now links both inbound receipts
	doc, err := env.documents.GetByID(context.Background(), *firstResult.DocumentID)
	require.NoError(t, err)
	assert.Len(t, doc.Receipts, 2)
}

func TestConfirmOrders_PartnerMismatchFailsBatch(t *testing.T) {
	env := newClearanceEnv(t)

	first := env.createOrder(t, uuid.New(), "Aceros del Norte", "26  48  3009  0001234", uuid.New())
	env.confirmOrder(t, first.ID)

	// A different partner cannot share the draft document
	other := env.createOrder(t, uuid.New(), "Textiles Pacifico", "26  48  3009  0001234", uuid.New())
	_, err := env.registry.ConfirmOrders(context.Background(), clearanceapp.ConfirmOrdersRequest{
		OrderIDs: []uuid.UUID{other.ID},
	})

	requireDomainErrorCode(t, err, clearance.ErrCodePartnerMismatch)

	// The batch failed in the validation pass; the order was not touched
	unchanged, getErr := env.orders.GetByID(context.Background(), other.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "DRAFT", unchanged.Status)
	assert.Nil(t, unchanged.ClearanceDocumentID)
}

func TestConfirmOrders_ValidatedDocumentBlocksNumberReuse(t *testing.T) {
	env := newClearanceEnv(t)
	ctx := context.Background()

	first := env.createOrder(t, uuid.New(), "Aceros del Norte", "26  48  3009  0001234", uuid.New())
	env.confirmOrder(t, first.ID)
	env.completeOrderReceipts(t, first.ID)

	report, err := env.bulk.ValidateClearances(ctx, clearanceapp.ValidateClearancesRequest{
		OrderIDs: []uuid.UUID{first.ID},
	})
	require.NoError(t, err)
	require.Equal(t, clearanceapp.ReportSeveritySuccess, report.Severity)

	// The customs number now belongs to a DONE document for good
	other := env.createOrder(t, uuid.New(), "Textiles Pacifico", "26  48  3009  0001234", uuid.New())
	_, err = env.registry.ConfirmOrders(ctx, clearanceapp.ConfirmOrdersRequest{
		OrderIDs: []uuid.UUID{other.ID},
	})

	requireDomainErrorCode(t, err, clearance.ErrCodeCustomsNumberConflict)
}

func TestCompleteReceipt_MovesStockIntoCustomsLocation(t *testing.T) {
	env := newClearanceEnv(t)
	ctx := context.Background()

	productID := uuid.New()
	order := env.createOrder(t, uuid.New(), "Aceros del Norte", "26  48  3009  0001234", productID)
	env.confirmOrder(t, order.ID)

	receipts, err := env.receiptRepo.FindByOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	// Complete at a partial done quantity
	completed, err := env.receipts.Complete(ctx, receipts[0].ID, stockapp.CompleteReceiptRequest{
		DoneQuantities: []stockapp.DoneQuantityInput{
			{MovementID: receipts[0].Movements[0].ID, DoneQuantity: decimal.NewFromInt(8)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "DONE", completed.Status)
	assert.True(t, completed.TotalMovedQuantity.Equal(decimal.NewFromInt(8)))

	// The supplier side is untracked; only the customs location carries stock
	available, err := env.levelRepo.AvailableQuantity(ctx, env.destID, productID)
	require.NoError(t, err)
	assert.True(t, available.Equal(decimal.NewFromInt(8)), "expected 8 on hand, got %s", available)
}

func TestBulkValidation_AllocatesCostsAndValidatesDocument(t *testing.T) {
	env := newClearanceEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, uuid.New(), "Aceros del Norte", "26  48  3009  0001234", uuid.New())
	result := env.confirmOrder(t, order.ID)
	env.completeOrderReceipts(t, order.ID)

	_, err := env.documents.AddCostLine(ctx, *result.DocumentID, clearanceapp.AddCostLineRequest{
		Description: "Customs broker fee",
		Amount:      decimal.NewFromInt(100),
		SplitMethod: "BY_QUANTITY",
	})
	require.NoError(t, err)
	_, err = env.documents.AddCostLine(ctx, *result.DocumentID, clearanceapp.AddCostLineRequest{
		Description: "Inspection",
		Amount:      decimal.NewFromInt(50),
		SplitMethod: "EQUAL",
	})
	require.NoError(t, err)

	report, err := env.bulk.ValidateClearances(ctx, clearanceapp.ValidateClearancesRequest{
		OrderIDs: []uuid.UUID{order.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.OrdersChecked)
	assert.Equal(t, 1, report.DocumentsValidated.Count)
	assert.Empty(t, report.DocumentsFailed)
	assert.Equal(t, clearanceapp.ReportSeveritySuccess, report.Severity)

	doc, err := env.documents.GetByID(ctx, *result.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "DONE", doc.Status)
	assert.NotNil(t, doc.ValidatedAt)
	assert.True(t, doc.TotalCost.Equal(decimal.NewFromInt(150)))

	require.NotEmpty(t, doc.Allocations)
	total := decimal.Zero
	for _, allocation := range doc.Allocations {
		total = total.Add(allocation.Amount)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(150)), "allocations should carry the full cost, got %s", total)
}

func TestBulkValidation_ReportsOrdersMissingNumberOrDocument(t *testing.T) {
	env := newClearanceEnv(t)
	ctx := context.Background()

	// Confirmed without a customs number: no document was resolved for it
	noNumber := env.createOrder(t, uuid.New(), "Aceros del Norte", "", uuid.New())
	noNumberResult := env.confirmOrder(t, noNumber.ID)
	assert.Equal(t, clearanceapp.DocumentActionNone, noNumberResult.DocumentAction)

	// Has a number but was never confirmed, so it has no document either
	neverConfirmed := env.createOrder(t, uuid.New(), "Textiles Pacifico", "26  48  3009  0009999", uuid.New())

	report, err := env.bulk.ValidateClearances(ctx, clearanceapp.ValidateClearancesRequest{
		OrderIDs: []uuid.UUID{noNumber.ID, neverConfirmed.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.OrdersChecked)
	assert.Equal(t, 1, report.OrdersWithoutNumber.Count)
	assert.Contains(t, report.OrdersWithoutNumber.Names, noNumber.OrderNumber)
	assert.Equal(t, 1, report.OrdersWithoutDocument.Count)
	assert.Contains(t, report.OrdersWithoutDocument.Names, neverConfirmed.OrderNumber)
	assert.Equal(t, 0, report.DocumentsValidated.Count)
	assert.Equal(t, clearanceapp.ReportSeverityDanger, report.Severity)
}
