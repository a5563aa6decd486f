package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	clearanceapp "github.com/aduana/backend/internal/application/clearance"
	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClearanceRepository implements clearance.Repository for testing
type MockClearanceRepository struct {
	mock.Mock
}

func (m *MockClearanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*clearance.ClearanceDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearance.ClearanceDocument), args.Error(1)
}

func (m *MockClearanceRepository) FindByDocumentNumber(ctx context.Context, documentNumber string) (*clearance.ClearanceDocument, error) {
	args := m.Called(ctx, documentNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*clearance.ClearanceDocument), args.Error(1)
}

func (m *MockClearanceRepository) FindByCustomsNumber(ctx context.Context, customsNumber string) ([]clearance.ClearanceDocument, error) {
	args := m.Called(ctx, customsNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clearance.ClearanceDocument), args.Error(1)
}

func (m *MockClearanceRepository) FindByCustomsNumberAndStatus(ctx context.Context, customsNumber string, status clearance.ClearanceDocumentStatus) ([]clearance.ClearanceDocument, error) {
	args := m.Called(ctx, customsNumber, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clearance.ClearanceDocument), args.Error(1)
}

func (m *MockClearanceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]clearance.ClearanceDocument, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]clearance.ClearanceDocument), args.Error(1)
}

func (m *MockClearanceRepository) Save(ctx context.Context, doc *clearance.ClearanceDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockClearanceRepository) SaveWithLock(ctx context.Context, doc *clearance.ClearanceDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockClearanceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClearanceRepository) ExistsDoneWithCustomsNumber(ctx context.Context, customsNumber string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, customsNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockClearanceRepository) GenerateDocumentNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockProcurementRepository implements procurement.Repository for testing
type MockProcurementRepository struct {
	mock.Mock
}

func (m *MockProcurementRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.ProcurementOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.ProcurementOrder), args.Error(1)
}

func (m *MockProcurementRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]procurement.ProcurementOrder, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.ProcurementOrder), args.Error(1)
}

func (m *MockProcurementRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*procurement.ProcurementOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.ProcurementOrder), args.Error(1)
}

func (m *MockProcurementRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.ProcurementOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.ProcurementOrder), args.Error(1)
}

func (m *MockProcurementRepository) FindByClearanceDocument(ctx context.Context, documentID uuid.UUID) ([]procurement.ProcurementOrder, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.ProcurementOrder), args.Error(1)
}

func (m *MockProcurementRepository) CountByClearanceDocument(ctx context.Context, documentID, excludeOrderID uuid.UUID) (int64, error) {
	args := m.Called(ctx, documentID, excludeOrderID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProcurementRepository) Save(ctx context.Context, order *procurement.ProcurementOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockProcurementRepository) SaveWithLock(ctx context.Context, order *procurement.ProcurementOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockProcurementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProcurementRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProcurementRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

const handlerTestCustomsNumber = "15  48  3009  0001234"

type clearanceDocumentHandlerFixture struct {
	router    *gin.Engine
	documents *MockClearanceRepository
	orders    *MockProcurementRepository
}

func newClearanceDocumentHandlerFixture(canceller clearance.SafeCanceller) *clearanceDocumentHandlerFixture {
	documents := new(MockClearanceRepository)
	orders := new(MockProcurementRepository)

	service := clearanceapp.NewDocumentService(documents, orders, canceller)
	h := NewClearanceDocumentHandler(service, nil, nil)

	router := gin.New()
	router.GET("/clearance-documents", h.List)
	router.GET("/clearance-documents/:id", h.GetByID)
	router.POST("/clearance-documents/:id/cost-lines", h.AddCostLine)
	router.DELETE("/clearance-documents/:id/cost-lines/:line_id", h.RemoveCostLine)
	router.POST("/clearance-documents/:id/cancel", h.Cancel)

	return &clearanceDocumentHandlerFixture{
		router:    router,
		documents: documents,
		orders:    orders,
	}
}

func draftClearanceDocument(t *testing.T, documentNumber string) *clearance.ClearanceDocument {
	t.Helper()
	doc, err := clearance.NewClearanceDocument(documentNumber, handlerTestCustomsNumber, time.Now())
	require.NoError(t, err)
	doc.ClearDomainEvents()
	return doc
}

func TestClearanceDocumentHandler_List(t *testing.T) {
	f := newClearanceDocumentHandlerFixture(clearance.NewStandardSafeCanceller())

	doc := draftClearanceDocument(t, "CD-2026-00001")
	f.documents.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).
		Return([]clearance.ClearanceDocument{*doc}, nil)
	f.documents.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/clearance-documents?page=1&page_size=20", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestClearanceDocumentHandler_GetByID(t *testing.T) {
	f := newClearanceDocumentHandlerFixture(clearance.NewStandardSafeCanceller())

	doc := draftClearanceDocument(t, "CD-2026-00002")
	f.documents.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	f.orders.On("FindByClearanceDocument", mock.Anything, doc.ID).
		Return([]procurement.ProcurementOrder{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/clearance-documents/"+doc.ID.String(), nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "CD-2026-00002", data["document_number"])
	assert.Equal(t, handlerTestCustomsNumber, data["customs_number"])
}

func TestClearanceDocumentHandler_GetByID_InvalidUUID(t *testing.T) {
	f := newClearanceDocumentHandlerFixture(clearance.NewStandardSafeCanceller())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/clearance-documents/not-a-uuid", nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.documents.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestClearanceDocumentHandler_GetByID_NotFound(t *testing.T) {
	f := newClearanceDocumentHandlerFixture(clearance.NewStandardSafeCanceller())

	documentID := uuid.New()
	f.documents.On("FindByID", mock.Anything, documentID).Return(nil, shared.ErrNotFound)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/clearance-documents/"+documentID.String(), nil)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestClearanceDocumentHandler_AddCostLine(t *testing.T) {
	f := newClearanceDocumentHandlerFixture(clearance.NewStandardSafeCanceller())

	doc := draftClearanceDocument(t, "CD-2026-00003")
	f.documents.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	f.documents.On("SaveWithLock", mock.Anything, doc).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"description":  "Customs broker fee",
		"amount":       "350",
		"split_method": "BY_QUANTITY",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/clearance-documents/"+doc.ID.String()+"/cost-lines", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, doc.CostLines, 1)
	assert.True(t, doc.CostLines[0].Amount.Equal(decimal.NewFromInt(350)))
}

func TestClearanceDocumentHandler_AddCostLine_MissingDescription(t *testing.T) {
	f := newClearanceDocumentHandlerFixture(clearance.NewStandardSafeCanceller())

	documentID := uuid.New()
	body, _ := json.Marshal(map[string]interface{}{"amount": "10"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/clearance-documents/"+documentID.String()+"/cost-lines", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.documents.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestClearanceDocumentHandler_Cancel_BlockedOnValidated(t *testing.T) {
	f := newClearanceDocumentHandlerFixture(clearance.NewDisabledSafeCanceller())

	doc := draftClearanceDocument(t, "CD-2026-00004")
	require.NoError(t, doc.AttachReceipt(uuid.New(), "RCPT-2026-00004", uuid.New()))
	require.NoError(t, doc.Validate())
	doc.ClearDomainEvents()
	f.documents.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)

	body, _ := json.Marshal(map[string]string{"reason": "wrong customs number"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/clearance-documents/"+doc.ID.String()+"/cancel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, clearance.ErrCodeCancelBlocked, resp.Error.Code)
}

func TestClearanceDocumentHandler_Cancel_Draft(t *testing.T) {
	f := newClearanceDocumentHandlerFixture(clearance.NewStandardSafeCanceller())

	doc := draftClearanceDocument(t, "CD-2026-00005")
	f.documents.On("FindByID", mock.Anything, doc.ID).Return(doc, nil)
	f.orders.On("FindByClearanceDocument", mock.Anything, doc.ID).
		Return([]procurement.ProcurementOrder{}, nil)
	f.documents.On("SaveWithLock", mock.Anything, doc).Return(nil)

	body, _ := json.Marshal(map[string]string{"reason": "duplicate entry"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/clearance-documents/"+doc.ID.String()+"/cancel", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, doc.IsCancelled())
}
