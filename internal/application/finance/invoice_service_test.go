package finance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/finance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvoiceRepository is a mock implementation of finance.Repository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.VendorInvoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.VendorInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*finance.VendorInvoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.VendorInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]finance.VendorInvoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.VendorInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindPostedMissingCustomsInfo(ctx context.Context, orderID uuid.UUID) ([]finance.VendorInvoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.VendorInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.VendorInvoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]finance.VendorInvoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *finance.VendorInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.VendorInvoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockOrderRepository is a mock implementation of procurement.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.ProcurementOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.ProcurementOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]procurement.ProcurementOrder, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.ProcurementOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*procurement.ProcurementOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.ProcurementOrder), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.ProcurementOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.ProcurementOrder), args.Error(1)
}

func (m *MockOrderRepository) FindByClearanceDocument(ctx context.Context, documentID uuid.UUID) ([]procurement.ProcurementOrder, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.ProcurementOrder), args.Error(1)
}

func (m *MockOrderRepository) CountByClearanceDocument(ctx context.Context, documentID, excludeOrderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, documentID, excludeOrderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *procurement.ProcurementOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *procurement.ProcurementOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockDocumentRepository is a mock implementation of clearance.Repository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*clearance.ClearanceDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearance.ClearanceDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByDocumentNumber(ctx context.Context, documentNumber string) (*clearance.ClearanceDocument, error) {
	args := m.Called(ctx, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearance.ClearanceDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByCustomsNumber(ctx context.Context, customsNumber string) ([]clearance.ClearanceDocument, error) {
	args := m.Called(ctx, customsNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clearance.ClearanceDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindByCustomsNumberAndStatus(ctx context.Context, customsNumber string, status clearance.ClearanceDocumentStatus) ([]clearance.ClearanceDocument, error) {
	args := m.Called(ctx, customsNumber, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clearance.ClearanceDocument), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]clearance.ClearanceDocument, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clearance.ClearanceDocument), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *clearance.ClearanceDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) SaveWithLock(ctx context.Context, doc *clearance.ClearanceDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) ExistsDoneWithCustomsNumber(ctx context.Context, customsNumber string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customsNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) GenerateDocumentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

var (
	testPartnerID     = uuid.New()
	testProductID     = uuid.New()
	testCustomsNumber = "15  48  3009  0001234"
)

type invoiceServiceFixture struct {
	service   *InvoiceService
	invoices  *MockInvoiceRepository
	orders    *MockOrderRepository
	documents *MockDocumentRepository
}

func newInvoiceServiceFixture() *invoiceServiceFixture {
	invoices := new(MockInvoiceRepository)
	orders := new(MockOrderRepository)
	documents := new(MockDocumentRepository)
	return &invoiceServiceFixture{
		service:   NewInvoiceService(invoices, orders, documents),
		invoices:  invoices,
		orders:    orders,
		documents: documents,
	}
}

func newDraftInvoice(t *testing.T, invoiceNumber string, orderID *uuid.UUID) *finance.VendorInvoice {
	t.Helper()
	invoice, err := finance.NewVendorInvoice(invoiceNumber, testPartnerID, "Importadora del Norte", orderID, time.Time{})
	require.NoError(t, err)
	_, err = invoice.AddLine(&testProductID, "Steel coil", decimal.NewFromInt(10), decimal.NewFromInt(250))
	require.NoError(t, err)
	invoice.ClearDomainEvents()
	return invoice
}

func postedInvoice(t *testing.T, invoiceNumber string) *finance.VendorInvoice {
	t.Helper()
	invoice := newDraftInvoice(t, invoiceNumber, nil)
	require.NoError(t, invoice.Post())
	invoice.ClearDomainEvents()
	return invoice
}

func orderWithDocument(t *testing.T, orderNumber string, documentID uuid.UUID) *procurement.ProcurementOrder {
	t.Helper()
	order, err := procurement.NewProcurementOrder(orderNumber, testPartnerID, "Importadora del Norte")
	require.NoError(t, err)
	_, err = order.AddItem(testProductID, "Steel coil", "STL-001", decimal.NewFromInt(10), decimal.NewFromInt(250))
	require.NoError(t, err)
	require.NoError(t, order.SetCustomsNumber(testCustomsNumber))
	require.NoError(t, order.Confirm())
	require.NoError(t, order.LinkClearanceDocument(documentID))
	order.ClearDomainEvents()
	return order
}

func doneDocument(t *testing.T, documentNumber string) *clearance.ClearanceDocument {
	t.Helper()
	doc, err := clearance.NewClearanceDocument(documentNumber, testCustomsNumber, time.Now())
	require.NoError(t, err)
	require.NoError(t, doc.AttachReceipt(uuid.New(), "RCPT-2026-00040", testPartnerID))
	require.NoError(t, doc.Validate())
	doc.ClearDomainEvents()
	return doc
}

func TestInvoiceService_Create(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	f.invoices.On("GenerateInvoiceNumber", mock.Anything).Return("BILL-2026-00001", nil)

	var saved *finance.VendorInvoice
	f.invoices.On("Save", mock.Anything, mock.AnythingOfType("*finance.VendorInvoice")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*finance.VendorInvoice)
		}).
		Return(nil)

	orderID := uuid.New()
	resp, err := f.service.Create(ctx, CreateInvoiceRequest{
		PartnerID:   testPartnerID,
		PartnerName: "Importadora del Norte",
		OrderID:     &orderID,
		Lines: []CreateInvoiceLineInput{
			{ProductID: &testProductID, Description: "Steel coil", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(250)},
			{Description: "Freight surcharge", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(120)},
		},
		Remark: "April shipment",
	})

	require.NoError(t, err)
	assert.Equal(t, "BILL-2026-00001", resp.InvoiceNumber)
	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, "NOT_PAID", resp.PaymentStatus)
	require.Len(t, resp.Lines, 2)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(2620)))
	assert.True(t, resp.OutstandingAmount.Equal(decimal.NewFromInt(2620)))
	assert.Nil(t, resp.Lines[1].ProductID)

	require.NotNil(t, saved)
	assert.Equal(t, "April shipment", saved.Remark)
	require.NotNil(t, saved.OrderID)
	assert.Equal(t, orderID, *saved.OrderID)
}

func TestInvoiceService_Create_InvalidLineRejected(t *testing.T) {
	f := newInvoiceServiceFixture()

	f.invoices.On("GenerateInvoiceNumber", mock.Anything).Return("BILL-2026-00002", nil)

	_, err := f.service.Create(context.Background(), CreateInvoiceRequest{
		PartnerID:   testPartnerID,
		PartnerName: "Importadora del Norte",
		Lines: []CreateInvoiceLineInput{
			{Description: "Steel coil", Quantity: decimal.Zero, UnitPrice: decimal.NewFromInt(250)},
		},
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	f.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_Post_StampsCustomsInfoFromValidatedDocument(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	doc := doneDocument(t, "CD-2026-00030")
	order := orderWithDocument(t, "PO-2026-00030", doc.ID)
	invoice := newDraftInvoice(t, "BILL-2026-00030", &order.ID)

	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.documents.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	f.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := f.service.Post(ctx, invoice.ID)

	require.NoError(t, err)
	assert.Equal(t, "POSTED", resp.Status)
	require.NotNil(t, resp.PostedAt)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, testCustomsNumber, resp.Lines[0].CustomsNumber)
	require.NotNil(t, resp.Lines[0].CustomsDate)
}

func TestInvoiceService_Post_DraftDocumentLeavesLinesAlone(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	// Document exists but has not been validated yet; the stamp happens
	// later through the document validated handler.
	doc, err := clearance.NewClearanceDocument("CD-2026-00031", testCustomsNumber, time.Now())
	require.NoError(t, err)
	doc.ClearDomainEvents()

	order := orderWithDocument(t, "PO-2026-00031", doc.ID)
	invoice := newDraftInvoice(t, "BILL-2026-00031", &order.ID)

	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.documents.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	f.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := f.service.Post(ctx, invoice.ID)

	require.NoError(t, err)
	assert.Equal(t, "POSTED", resp.Status)
	assert.Empty(t, resp.Lines[0].CustomsNumber)
	assert.Nil(t, resp.Lines[0].CustomsDate)
}

func TestInvoiceService_Post_NoOrderReference(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	invoice := newDraftInvoice(t, "BILL-2026-00032", nil)
	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := f.service.Post(ctx, invoice.ID)

	require.NoError(t, err)
	assert.Equal(t, "POSTED", resp.Status)
	assert.Empty(t, resp.Lines[0].CustomsNumber)
	f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestInvoiceService_Post_OrderWithoutDocument(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	order, err := procurement.NewProcurementOrder("PO-2026-00033", testPartnerID, "Importadora del Norte")
	require.NoError(t, err)
	order.ClearDomainEvents()
	invoice := newDraftInvoice(t, "BILL-2026-00033", &order.ID)

	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.orders.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	f.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := f.service.Post(ctx, invoice.ID)

	require.NoError(t, err)
	assert.Equal(t, "POSTED", resp.Status)
	assert.Empty(t, resp.Lines[0].CustomsNumber)
	f.documents.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestInvoiceService_Post_NoLines(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	invoice, err := finance.NewVendorInvoice("BILL-2026-00034", testPartnerID, "Importadora del Norte", nil, time.Time{})
	require.NoError(t, err)
	invoice.ClearDomainEvents()
	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err = f.service.Post(ctx, invoice.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NO_LINES", domainErr.Code)
	f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestInvoiceService_RegisterPayment(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	invoice := postedInvoice(t, "BILL-2026-00035")
	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	t.Run("partial payment", func(t *testing.T) {
		resp, err := f.service.RegisterPayment(ctx, invoice.ID, RegisterPaymentRequest{
			Amount: decimal.NewFromInt(1000),
		})

		require.NoError(t, err)
		assert.Equal(t, "PARTIAL", resp.PaymentStatus)
		assert.True(t, resp.PaidAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, resp.OutstandingAmount.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("exceeding payment rejected", func(t *testing.T) {
		_, err := f.service.RegisterPayment(ctx, invoice.ID, RegisterPaymentRequest{
			Amount: decimal.NewFromInt(2000),
		})

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "EXCEEDS_OUTSTANDING", domainErr.Code)
	})

	t.Run("final payment settles the invoice", func(t *testing.T) {
		resp, err := f.service.RegisterPayment(ctx, invoice.ID, RegisterPaymentRequest{
			Amount: decimal.NewFromInt(1500),
		})

		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.PaymentStatus)
		assert.True(t, resp.OutstandingAmount.IsZero())
	})
}

func TestInvoiceService_Cancel_Draft(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	invoice := newDraftInvoice(t, "BILL-2026-00036", nil)
	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := f.service.Cancel(ctx, invoice.ID, CancelInvoiceRequest{Reason: "duplicate bill"})

	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.Equal(t, "duplicate bill", resp.CancelReason)
}

func TestInvoiceService_Cancel_BlockedOncePaid(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	invoice := postedInvoice(t, "BILL-2026-00037")
	require.NoError(t, invoice.RegisterPayment(decimal.NewFromInt(500)))
	invoice.ClearDomainEvents()

	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := f.service.Cancel(ctx, invoice.ID, CancelInvoiceRequest{Reason: "wrong partner"})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "HAS_PAYMENTS", domainErr.Code)
	f.invoices.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestInvoiceService_AddLine_PostedInvoiceRejected(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	invoice := postedInvoice(t, "BILL-2026-00038")
	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	_, err := f.service.AddLine(ctx, invoice.ID, AddInvoiceLineRequest{
		Description: "Late charge",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(50),
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestInvoiceService_RemoveLine(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	invoice := newDraftInvoice(t, "BILL-2026-00039", nil)
	extra, err := invoice.AddLine(nil, "Freight surcharge", decimal.NewFromInt(1), decimal.NewFromInt(120))
	require.NoError(t, err)

	f.invoices.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	f.invoices.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	resp, err := f.service.RemoveLine(ctx, invoice.ID, extra.ID)

	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(2500)))

	t.Run("unknown line", func(t *testing.T) {
		_, err := f.service.RemoveLine(ctx, invoice.ID, uuid.New())

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "LINE_NOT_FOUND", domainErr.Code)
	})
}

func TestInvoiceService_List_MapsFilterAndDefaults(t *testing.T) {
	f := newInvoiceServiceFixture()
	ctx := context.Background()

	invoice := newDraftInvoice(t, "BILL-2026-00041", nil)
	status := finance.InvoiceStatusPosted
	paymentStatus := finance.PaymentStatusPartial
	orderID := uuid.New()
	minAmount := decimal.NewFromInt(100)

	var captured shared.Filter
	f.invoices.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(shared.Filter)
		}).
		Return([]finance.VendorInvoice{*invoice}, nil)
	f.invoices.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	items, total, err := f.service.List(ctx, InvoiceListFilter{
		Search:        "Norte",
		PartnerID:     &testPartnerID,
		OrderID:       &orderID,
		Status:        &status,
		PaymentStatus: &paymentStatus,
		MinAmount:     &minAmount,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "BILL-2026-00041", items[0].InvoiceNumber)

	assert.Equal(t, 1, captured.Page)
	assert.Equal(t, 20, captured.PageSize)
	assert.Equal(t, "created_at", captured.OrderBy)
	assert.Equal(t, "desc", captured.OrderDir)
	assert.Equal(t, "Norte", captured.Search)
	assert.Equal(t, testPartnerID, captured.Filters["partner_id"])
	assert.Equal(t, orderID, captured.Filters["order_id"])
	assert.Equal(t, "POSTED", captured.Filters["status"])
	assert.Equal(t, "PARTIAL", captured.Filters["payment_status"])
	assert.Equal(t, minAmount, captured.Filters["min_amount"])
}
