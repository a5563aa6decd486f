package handler

import (
	stockapp "github.com/aduana/backend/internal/application/stock"
	"github.com/gin-gonic/gin"
)

// ReceiptHandler handles stock receipt API endpoints
type ReceiptHandler struct {
	BaseHandler
	receiptService *stockapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *stockapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Create godoc
// @ID           createReceipt
// @Summary      Create a stock receipt
// @Description  Create a receipt transaction with its planned movements. Order
// @Description  confirmation creates receipts automatically; this endpoint covers
// @Description  manual receipts and returns.
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        request body stock.CreateReceiptRequest true "Receipt creation request"
// @Success      201 {object} APIResponse[stock.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req stockapp.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receipt, err := h.receiptService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, receipt)
}

// GetByID godoc
// @ID           getReceiptById
// @Summary      Get receipt by ID
// @Tags         receipts
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Success      200 {object} APIResponse[stock.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	receiptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetByID(c.Request.Context(), receiptID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receipt)
}

// List godoc
// @ID           listReceipts
// @Summary      List stock receipts
// @Tags         receipts
// @Produce      json
// @Param        search query string false "Search in receipt name and origin"
// @Param        status query string false "Filter by status"
// @Param        order_id query string false "Filter by source procurement order" format(uuid)
// @Param        clearance_document_id query string false "Filter by clearance document" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]stock.ReceiptListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	filter := stockapp.ReceiptListFilter{
		Page:     1,
		PageSize: 20,
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receipts, total, err := h.receiptService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, receipts, total, filter.Page, filter.PageSize)
}

// Complete godoc
// @ID           completeReceipt
// @Summary      Complete a receipt
// @Description  Mark a receipt as done, applying its movements to stock levels.
// @Description  Done quantities default to the planned quantities when omitted.
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Param        request body stock.CompleteReceiptRequest false "Optional done quantities per movement"
// @Success      200 {object} APIResponse[stock.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/receipts/{id}/complete [post]
func (h *ReceiptHandler) Complete(c *gin.Context) {
	receiptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req stockapp.CompleteReceiptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	receipt, err := h.receiptService.Complete(c.Request.Context(), receiptID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receipt)
}

// Cancel godoc
// @ID           cancelReceipt
// @Summary      Cancel a receipt
// @Description  Cancel a pending receipt. Completed receipts cannot be cancelled;
// @Description  revert the source order instead.
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        id path string true "Receipt ID" format(uuid)
// @Param        request body stock.CancelReceiptRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[stock.ReceiptResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock/receipts/{id}/cancel [post]
func (h *ReceiptHandler) Cancel(c *gin.Context) {
	receiptID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req stockapp.CancelReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	receipt, err := h.receiptService.Cancel(c.Request.Context(), receiptID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, receipt)
}
