package handler

import (
	financeapp "github.com/aduana/backend/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// VendorInvoiceHandler handles vendor invoice API endpoints
type VendorInvoiceHandler struct {
	BaseHandler
	invoiceService *financeapp.InvoiceService
}

// NewVendorInvoiceHandler creates a new VendorInvoiceHandler
func NewVendorInvoiceHandler(invoiceService *financeapp.InvoiceService) *VendorInvoiceHandler {
	return &VendorInvoiceHandler{invoiceService: invoiceService}
}

// Create godoc
// @ID           createVendorInvoice
// @Summary      Create a vendor invoice
// @Description  Create a draft vendor invoice. Lines referencing a procurement
// @Description  order inherit its customs number and date when posted.
// @Tags         vendor-invoices
// @Accept       json
// @Produce      json
// @Param        request body finance.CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} APIResponse[finance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendor-invoices [post]
func (h *VendorInvoiceHandler) Create(c *gin.Context) {
	var req financeapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID godoc
// @ID           getVendorInvoiceById
// @Summary      Get vendor invoice by ID
// @Tags         vendor-invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[finance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendor-invoices/{id} [get]
func (h *VendorInvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List godoc
// @ID           listVendorInvoices
// @Summary      List vendor invoices
// @Tags         vendor-invoices
// @Produce      json
// @Param        search query string false "Search in invoice number and partner name"
// @Param        status query string false "Filter by status"
// @Param        order_id query string false "Filter by referenced procurement order" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]finance.InvoiceListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendor-invoices [get]
func (h *VendorInvoiceHandler) List(c *gin.Context) {
	filter := financeapp.InvoiceListFilter{
		Page:     1,
		PageSize: 20,
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// AddLine godoc
// @ID           addVendorInvoiceLine
// @Summary      Add a line to a draft invoice
// @Tags         vendor-invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body finance.AddInvoiceLineRequest true "Line to add"
// @Success      200 {object} APIResponse[finance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendor-invoices/{id}/lines [post]
func (h *VendorInvoiceHandler) AddLine(c *gin.Context) {
	invoiceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req financeapp.AddInvoiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.AddLine(c.Request.Context(), invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RemoveLine godoc
// @ID           removeVendorInvoiceLine
// @Summary      Remove a line from a draft invoice
// @Tags         vendor-invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        line_id path string true "Line ID" format(uuid)
// @Success      200 {object} APIResponse[finance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendor-invoices/{id}/lines/{line_id} [delete]
func (h *VendorInvoiceHandler) RemoveLine(c *gin.Context) {
	invoiceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseIDParam(c, "line_id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.RemoveLine(c.Request.Context(), invoiceID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Post godoc
// @ID           postVendorInvoice
// @Summary      Post a vendor invoice
// @Description  Post a draft invoice, stamping customs numbers and dates from the
// @Description  referenced procurement orders onto its lines
// @Tags         vendor-invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[finance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendor-invoices/{id}/post [post]
func (h *VendorInvoiceHandler) Post(c *gin.Context) {
	invoiceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Post(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// RegisterPayment godoc
// @ID           registerVendorInvoicePayment
// @Summary      Register a payment against a posted invoice
// @Tags         vendor-invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body finance.RegisterPaymentRequest true "Payment amount"
// @Success      200 {object} APIResponse[finance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendor-invoices/{id}/payments [post]
func (h *VendorInvoiceHandler) RegisterPayment(c *gin.Context) {
	invoiceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req financeapp.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.RegisterPayment(c.Request.Context(), invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Cancel godoc
// @ID           cancelVendorInvoice
// @Summary      Cancel a vendor invoice
// @Description  Cancel a draft or posted invoice. Paid invoices cannot be
// @Description  cancelled.
// @Tags         vendor-invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body finance.CancelInvoiceRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[finance.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /finance/vendor-invoices/{id}/cancel [post]
func (h *VendorInvoiceHandler) Cancel(c *gin.Context) {
	invoiceID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req financeapp.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.Cancel(c.Request.Context(), invoiceID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}
