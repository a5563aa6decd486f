package procurement

import (
	"time"

	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest represents a request to create a procurement order
type CreateOrderRequest struct {
	PartnerID     uuid.UUID              `json:"partner_id" binding:"required"`
	PartnerName   string                 `json:"partner_name" binding:"required,min=1,max=200"`
	CustomsNumber string                 `json:"customs_number"`
	Items         []CreateOrderItemInput `json:"items"`
	Remark        string                 `json:"remark"`
}

// CreateOrderItemInput represents an item in the create order request
type CreateOrderItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	ProductCode string          `json:"product_code" binding:"required,min=1,max=50"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// UpdateOrderRequest represents a request to update a procurement order.
// The customs number may still change on a confirmed order as long as no
// clearance document is referenced; operators set it late and re-confirm.
type UpdateOrderRequest struct {
	CustomsNumber *string `json:"customs_number"`
	Remark        *string `json:"remark"`
}

// AddOrderItemRequest represents a request to add an item to an order
type AddOrderItemRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	ProductCode string          `json:"product_code" binding:"required,min=1,max=50"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search            string                              `form:"search"`
	PartnerID         *uuid.UUID                          `form:"partner_id"`
	Status            *procurement.ProcurementOrderStatus `form:"status"`
	Statuses          []string                            `form:"statuses"`
	CustomsNumber     string                              `form:"customs_number"`
	HasCustomsNumber  *bool                               `form:"has_customs_number"`
	ClearanceDocument *uuid.UUID                          `form:"clearance_document_id"`
	StartDate         *time.Time                          `form:"start_date"`
	EndDate           *time.Time                          `form:"end_date"`
	MinAmount         *decimal.Decimal                    `form:"min_amount"`
	MaxAmount         *decimal.Decimal                    `form:"max_amount"`
	Page              int                                 `form:"page" binding:"min=1"`
	PageSize          int                                 `form:"page_size" binding:"min=1,max=100"`
	OrderBy           string                              `form:"order_by"`
	OrderDir          string                              `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderResponse represents a procurement order in API responses
type OrderResponse struct {
	ID                  uuid.UUID           `json:"id"`
	OrderNumber         string              `json:"order_number"`
	PartnerID           uuid.UUID           `json:"partner_id"`
	PartnerName         string              `json:"partner_name"`
	CustomsNumber       string              `json:"customs_number,omitempty"`
	ClearanceDocumentID *uuid.UUID          `json:"clearance_document_id,omitempty"`
	Items               []OrderItemResponse `json:"items"`
	Notes               []OrderNoteResponse `json:"notes"`
	ItemCount           int                 `json:"item_count"`
	TotalAmount         decimal.Decimal     `json:"total_amount"`
	Status              string              `json:"status"`
	RequiresClearance   bool                `json:"requires_clearance"`
	Remark              string              `json:"remark,omitempty"`
	ConfirmedAt         *time.Time          `json:"confirmed_at,omitempty"`
	CancelledAt         *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason        string              `json:"cancel_reason,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
	Version             int                 `json:"version"`
}

// OrderListItemResponse represents a procurement order in list responses (less detail)
type OrderListItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	OrderNumber         string          `json:"order_number"`
	PartnerID           uuid.UUID       `json:"partner_id"`
	PartnerName         string          `json:"partner_name"`
	CustomsNumber       string          `json:"customs_number,omitempty"`
	ClearanceDocumentID *uuid.UUID      `json:"clearance_document_id,omitempty"`
	ItemCount           int             `json:"item_count"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Status              string          `json:"status"`
	ConfirmedAt         *time.Time      `json:"confirmed_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// OrderItemResponse represents an order item in API responses
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// OrderNoteResponse represents an audit note in API responses
type OrderNoteResponse struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ToOrderResponse converts a domain ProcurementOrder to a response DTO
func ToOrderResponse(order *procurement.ProcurementOrder) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i := range order.Items {
		items[i] = ToOrderItemResponse(&order.Items[i])
	}
	notes := make([]OrderNoteResponse, len(order.Notes))
	for i := range order.Notes {
		notes[i] = ToOrderNoteResponse(&order.Notes[i])
	}

	return OrderResponse{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		PartnerID:           order.PartnerID,
		PartnerName:         order.PartnerName,
		CustomsNumber:       order.CustomsNumber,
		ClearanceDocumentID: order.ClearanceDocumentID,
		Items:               items,
		Notes:               notes,
		ItemCount:           len(order.Items),
		TotalAmount:         order.TotalAmount,
		Status:              string(order.Status),
		RequiresClearance:   order.RequiresClearance(),
		Remark:              order.Remark,
		ConfirmedAt:         order.ConfirmedAt,
		CancelledAt:         order.CancelledAt,
		CancelReason:        order.CancelReason,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
		Version:             order.Version,
	}
}

// ToOrderListItemResponse converts a domain ProcurementOrder to a list response DTO
func ToOrderListItemResponse(order *procurement.ProcurementOrder) OrderListItemResponse {
	return OrderListItemResponse{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		PartnerID:           order.PartnerID,
		PartnerName:         order.PartnerName,
		CustomsNumber:       order.CustomsNumber,
		ClearanceDocumentID: order.ClearanceDocumentID,
		ItemCount:           len(order.Items),
		TotalAmount:         order.TotalAmount,
		Status:              string(order.Status),
		ConfirmedAt:         order.ConfirmedAt,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

// ToOrderListItemResponses converts a slice of domain orders to list responses
func ToOrderListItemResponses(orders []procurement.ProcurementOrder) []OrderListItemResponse {
	responses := make([]OrderListItemResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderListItemResponse(&orders[i])
	}
	return responses
}

// ToOrderItemResponse converts a domain ProcurementOrderItem to a response DTO
func ToOrderItemResponse(item *procurement.ProcurementOrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:          item.ID,
		ProductID:   item.ProductID,
		ProductName: item.ProductName,
		ProductCode: item.ProductCode,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		Amount:      item.Amount,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// ToOrderNoteResponse converts a domain OrderNote to a response DTO
func ToOrderNoteResponse(note *procurement.OrderNote) OrderNoteResponse {
	return OrderNoteResponse{
		ID:        note.ID,
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
	}
}
