package stock

import (
	"time"

	"github.com/aduana/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateReceiptRequest represents a request to create an inbound receipt for a
// procurement order. Location codes are optional; the configured defaults for
// supplier and stock are used when omitted.
type CreateReceiptRequest struct {
	OrderID                 uuid.UUID             `json:"order_id" binding:"required"`
	PartnerID               uuid.UUID             `json:"partner_id" binding:"required"`
	SourceLocationCode      string                `json:"source_location_code"`
	DestinationLocationCode string                `json:"destination_location_code"`
	Movements               []CreateMovementInput `json:"movements" binding:"required,min=1"`
}

// CreateMovementInput represents a movement line in the create receipt request
type CreateMovementInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	ProductCode string          `json:"product_code" binding:"max=50"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// CompleteReceiptRequest represents a request to complete a receipt. Done
// quantities are optional; movements without one complete at their planned
// quantity.
type CompleteReceiptRequest struct {
	DoneQuantities []DoneQuantityInput `json:"done_quantities"`
}

// DoneQuantityInput overrides the done quantity of a single movement
type DoneQuantityInput struct {
	MovementID   uuid.UUID       `json:"movement_id" binding:"required"`
	DoneQuantity decimal.Decimal `json:"done_quantity"`
}

// CancelReceiptRequest represents a request to cancel a receipt
type CancelReceiptRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// ReceiptListFilter represents filter options for the receipt list
type ReceiptListFilter struct {
	Search    string               `form:"search"`
	OrderID   *uuid.UUID           `form:"order_id"`
	PartnerID *uuid.UUID           `form:"partner_id"`
	Status    *stock.ReceiptStatus `form:"status"`
	Statuses  []string             `form:"statuses"`
	IsReturn  *bool                `form:"is_return"`
	StartDate *time.Time           `form:"start_date"`
	EndDate   *time.Time           `form:"end_date"`
	Page      int                  `form:"page" binding:"min=1"`
	PageSize  int                  `form:"page_size" binding:"min=1,max=100"`
	OrderBy   string               `form:"order_by"`
	OrderDir  string               `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ReceiptResponse represents a receipt transaction in API responses
type ReceiptResponse struct {
	ID                    uuid.UUID          `json:"id"`
	ReceiptNumber         string             `json:"receipt_number"`
	OrderID               uuid.UUID          `json:"order_id"`
	PartnerID             uuid.UUID          `json:"partner_id"`
	SourceLocationID      uuid.UUID          `json:"source_location_id"`
	DestinationLocationID uuid.UUID          `json:"destination_location_id"`
	OriginReceiptID       *uuid.UUID         `json:"origin_receipt_id,omitempty"`
	IsReturn              bool               `json:"is_return"`
	Status                string             `json:"status"`
	Movements             []MovementResponse `json:"movements"`
	TotalMovedQuantity    decimal.Decimal    `json:"total_moved_quantity"`
	ScheduledAt           time.Time          `json:"scheduled_at"`
	CompletedAt           *time.Time         `json:"completed_at,omitempty"`
	CancelledAt           *time.Time         `json:"cancelled_at,omitempty"`
	CancelReason          string             `json:"cancel_reason,omitempty"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	Version               int                `json:"version"`
}

// ReceiptListItemResponse represents a receipt in list responses (less detail)
type ReceiptListItemResponse struct {
	ID              uuid.UUID  `json:"id"`
	ReceiptNumber   string     `json:"receipt_number"`
	OrderID         uuid.UUID  `json:"order_id"`
	PartnerID       uuid.UUID  `json:"partner_id"`
	OriginReceiptID *uuid.UUID `json:"origin_receipt_id,omitempty"`
	IsReturn        bool       `json:"is_return"`
	Status          string     `json:"status"`
	MovementCount   int        `json:"movement_count"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MovementResponse represents a movement line in API responses
type MovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductCode  string          `json:"product_code,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	DoneQuantity decimal.Decimal `json:"done_quantity"`
	Scrapped     bool            `json:"scrapped"`
}

// ToReceiptResponse converts a domain ReceiptTransaction to a response DTO
func ToReceiptResponse(receipt *stock.ReceiptTransaction) ReceiptResponse {
	movements := make([]MovementResponse, len(receipt.Movements))
	for i := range receipt.Movements {
		movements[i] = ToMovementResponse(&receipt.Movements[i])
	}

	return ReceiptResponse{
		ID:                    receipt.ID,
		ReceiptNumber:         receipt.ReceiptNumber,
		OrderID:               receipt.OrderID,
		PartnerID:             receipt.PartnerID,
		SourceLocationID:      receipt.SourceLocationID,
		DestinationLocationID: receipt.DestinationLocationID,
		OriginReceiptID:       receipt.OriginReceiptID,
		IsReturn:              receipt.IsReturn(),
		Status:                string(receipt.Status),
		Movements:             movements,
		TotalMovedQuantity:    receipt.TotalMovedQuantity(),
		ScheduledAt:           receipt.ScheduledAt,
		CompletedAt:           receipt.CompletedAt,
		CancelledAt:           receipt.CancelledAt,
		CancelReason:          receipt.CancelReason,
		CreatedAt:             receipt.CreatedAt,
		UpdatedAt:             receipt.UpdatedAt,
		Version:               receipt.Version,
	}
}

// ToReceiptListItemResponse converts a domain ReceiptTransaction to a list response DTO
func ToReceiptListItemResponse(receipt *stock.ReceiptTransaction) ReceiptListItemResponse {
	return ReceiptListItemResponse{
		ID:              receipt.ID,
		ReceiptNumber:   receipt.ReceiptNumber,
		OrderID:         receipt.OrderID,
		PartnerID:       receipt.PartnerID,
		OriginReceiptID: receipt.OriginReceiptID,
		IsReturn:        receipt.IsReturn(),
		Status:          string(receipt.Status),
		MovementCount:   len(receipt.Movements),
		ScheduledAt:     receipt.ScheduledAt,
		CompletedAt:     receipt.CompletedAt,
		CreatedAt:       receipt.CreatedAt,
		UpdatedAt:       receipt.UpdatedAt,
	}
}

// ToReceiptListItemResponses converts a slice of domain receipts to list responses
func ToReceiptListItemResponses(receipts []stock.ReceiptTransaction) []ReceiptListItemResponse {
	responses := make([]ReceiptListItemResponse, len(receipts))
	for i := range receipts {
		responses[i] = ToReceiptListItemResponse(&receipts[i])
	}
	return responses
}

// ToMovementResponse converts a domain StockMovement to a response DTO
func ToMovementResponse(movement *stock.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           movement.ID,
		ProductID:    movement.ProductID,
		ProductName:  movement.ProductName,
		ProductCode:  movement.ProductCode,
		Quantity:     movement.Quantity,
		DoneQuantity: movement.DoneQuantity,
		Scrapped:     movement.Scrapped,
	}
}
