package handler

import (
	clearanceapp "github.com/aduana/backend/internal/application/clearance"
	procurementapp "github.com/aduana/backend/internal/application/procurement"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProcurementOrderHandler handles procurement order API endpoints, including
// confirmation into the clearance registry and order reversal
type ProcurementOrderHandler struct {
	BaseHandler
	orderService    *procurementapp.OrderService
	registryService *clearanceapp.RegistryService
	reversalService *clearanceapp.ReversalService
	bulkValidation  *clearanceapp.BulkValidationService
}

// NewProcurementOrderHandler creates a new ProcurementOrderHandler
func NewProcurementOrderHandler(
	orderService *procurementapp.OrderService,
	registryService *clearanceapp.RegistryService,
	reversalService *clearanceapp.ReversalService,
	bulkValidation *clearanceapp.BulkValidationService,
) *ProcurementOrderHandler {
	return &ProcurementOrderHandler{
		orderService:    orderService,
		registryService: registryService,
		reversalService: reversalService,
		bulkValidation:  bulkValidation,
	}
}

// Create godoc
// @ID           createProcurementOrder
// @Summary      Create a new procurement order
// @Description  Create a new procurement order with optional items and customs number
// @Tags         procurement-orders
// @Accept       json
// @Produce      json
// @Param        request body procurement.CreateOrderRequest true "Order creation request"
// @Success      201 {object} APIResponse[procurement.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders [post]
func (h *ProcurementOrderHandler) Create(c *gin.Context) {
	var req procurementapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// GetByID godoc
// @ID           getProcurementOrderById
// @Summary      Get procurement order by ID
// @Tags         procurement-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[procurement.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/{id} [get]
func (h *ProcurementOrderHandler) GetByID(c *gin.Context) {
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// List godoc
// @ID           listProcurementOrders
// @Summary      List procurement orders
// @Description  List procurement orders with filtering and pagination
// @Tags         procurement-orders
// @Produce      json
// @Param        search query string false "Search in order number, partner name, customs number"
// @Param        status query string false "Filter by status"
// @Param        customs_number query string false "Filter by customs number"
// @Param        clearance_document_id query string false "Filter by referenced clearance document" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]procurement.OrderListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders [get]
func (h *ProcurementOrderHandler) List(c *gin.Context) {
	filter := procurementapp.OrderListFilter{
		Page:     1,
		PageSize: 20,
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateProcurementOrder
// @Summary      Update a procurement order
// @Description  Update the customs number or remark of an order
// @Tags         procurement-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body procurement.UpdateOrderRequest true "Order update request"
// @Success      200 {object} APIResponse[procurement.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/{id} [put]
func (h *ProcurementOrderHandler) Update(c *gin.Context) {
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req procurementapp.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// AddItem godoc
// @ID           addProcurementOrderItem
// @Summary      Add an item to a draft order
// @Tags         procurement-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body procurement.AddOrderItemRequest true "Item to add"
// @Success      200 {object} APIResponse[procurement.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/{id}/items [post]
func (h *ProcurementOrderHandler) AddItem(c *gin.Context) {
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req procurementapp.AddOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.AddItem(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// RemoveItem godoc
// @ID           removeProcurementOrderItem
// @Summary      Remove an item from a draft order
// @Tags         procurement-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        item_id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[procurement.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/{id}/items/{item_id} [delete]
func (h *ProcurementOrderHandler) RemoveItem(c *gin.Context) {
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.parseIDParam(c, "item_id")
	if !ok {
		return
	}

	order, err := h.orderService.RemoveItem(c.Request.Context(), orderID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Confirm godoc
// @ID           confirmProcurementOrder
// @Summary      Confirm a procurement order
// @Description  Confirm a single order: validates its customs number, creates or
// @Description  reuses a clearance document and schedules the inbound receipt
// @Tags         procurement-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[clearance.ConfirmOrdersResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/{id}/confirm [post]
func (h *ProcurementOrderHandler) Confirm(c *gin.Context) {
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.registryService.ConfirmOrders(c.Request.Context(), clearanceapp.ConfirmOrdersRequest{
		OrderIDs: []uuid.UUID{orderID},
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ConfirmBatch godoc
// @ID           confirmProcurementOrders
// @Summary      Confirm a batch of procurement orders
// @Description  Confirm several orders in one call. All customs numbers are
// @Description  validated up front; a single malformed number rejects the whole
// @Description  batch before any order is confirmed.
// @Tags         procurement-orders
// @Accept       json
// @Produce      json
// @Param        request body clearance.ConfirmOrdersRequest true "Order IDs to confirm"
// @Success      200 {object} APIResponse[clearance.ConfirmOrdersResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/confirm [post]
func (h *ProcurementOrderHandler) ConfirmBatch(c *gin.Context) {
	var req clearanceapp.ConfirmOrdersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.registryService.ConfirmOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Revert godoc
// @ID           revertProcurementOrder
// @Summary      Revert a confirmed procurement order
// @Description  Run the reversal saga: cancel or return the order's receipts,
// @Description  release the clearance document and reopen the order as draft.
// @Description  Only logins on the reversal allow-list may call this.
// @Tags         procurement-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body clearance.RevertOrderRequest false "Optional reversal reason"
// @Success      200 {object} APIResponse[clearance.OrderReversalResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/{id}/revert [post]
func (h *ProcurementOrderHandler) Revert(c *gin.Context) {
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	actorLogin := getActorLogin(c)
	if actorLogin == "" {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req clearanceapp.RevertOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.reversalService.RevertOrder(c.Request.Context(), actorLogin, orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ValidateClearances godoc
// @ID           validateClearances
// @Summary      Validate the clearance documents of a batch of orders
// @Description  Walk the selected orders and validate every referenced draft
// @Description  clearance document. Per-document failures are collected in the
// @Description  report; the batch keeps going.
// @Tags         procurement-orders
// @Accept       json
// @Produce      json
// @Param        request body clearance.ValidateClearancesRequest true "Order IDs to check"
// @Success      200 {object} APIResponse[clearance.ClearanceValidationReport]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/validate-clearances [post]
func (h *ProcurementOrderHandler) ValidateClearances(c *gin.Context) {
	var req clearanceapp.ValidateClearancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.bulkValidation.ValidateClearances(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// Cancel godoc
// @ID           cancelProcurementOrder
// @Summary      Cancel a procurement order
// @Tags         procurement-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body procurement.CancelOrderRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[procurement.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/{id}/cancel [post]
func (h *ProcurementOrderHandler) Cancel(c *gin.Context) {
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req procurementapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), orderID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete godoc
// @ID           deleteProcurementOrder
// @Summary      Delete a draft procurement order
// @Tags         procurement-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /procurement/procurement-orders/{id} [delete]
func (h *ProcurementOrderHandler) Delete(c *gin.Context) {
	orderID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), orderID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
