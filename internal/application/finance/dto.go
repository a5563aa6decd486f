package finance

import (
	"time"

	"github.com/aduana/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents a request to create a vendor invoice
type CreateInvoiceRequest struct {
	PartnerID   uuid.UUID                `json:"partner_id" binding:"required"`
	PartnerName string                   `json:"partner_name" binding:"required,min=1,max=200"`
	OrderID     *uuid.UUID               `json:"order_id"`
	InvoiceDate *time.Time               `json:"invoice_date"`
	Lines       []CreateInvoiceLineInput `json:"lines"`
	Remark      string                   `json:"remark"`
}

// CreateInvoiceLineInput represents a line in the create invoice request
type CreateInvoiceLineInput struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	Description string          `json:"description" binding:"required,min=1,max=255"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// AddInvoiceLineRequest represents a request to add a line to a draft invoice
type AddInvoiceLineRequest struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	Description string          `json:"description" binding:"required,min=1,max=255"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// RegisterPaymentRequest represents a request to register a payment against a posted invoice
type RegisterPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// CancelInvoiceRequest represents a request to cancel an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search        string                 `form:"search"`
	PartnerID     *uuid.UUID             `form:"partner_id"`
	OrderID       *uuid.UUID             `form:"order_id"`
	Status        *finance.InvoiceStatus `form:"status"`
	PaymentStatus *finance.PaymentStatus `form:"payment_status"`
	StartDate     *time.Time             `form:"start_date"`
	EndDate       *time.Time             `form:"end_date"`
	MinAmount     *decimal.Decimal       `form:"min_amount"`
	MaxAmount     *decimal.Decimal       `form:"max_amount"`
	Page          int                    `form:"page" binding:"min=1"`
	PageSize      int                    `form:"page_size" binding:"min=1,max=100"`
	OrderBy       string                 `form:"order_by"`
	OrderDir      string                 `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceResponse represents a vendor invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID             `json:"id"`
	InvoiceNumber     string                `json:"invoice_number"`
	PartnerID         uuid.UUID             `json:"partner_id"`
	PartnerName       string                `json:"partner_name"`
	OrderID           *uuid.UUID            `json:"order_id,omitempty"`
	Lines             []InvoiceLineResponse `json:"lines"`
	TotalAmount       decimal.Decimal       `json:"total_amount"`
	PaidAmount        decimal.Decimal       `json:"paid_amount"`
	OutstandingAmount decimal.Decimal       `json:"outstanding_amount"`
	Status            string                `json:"status"`
	PaymentStatus     string                `json:"payment_status"`
	InvoiceDate       time.Time             `json:"invoice_date"`
	Remark            string                `json:"remark,omitempty"`
	PostedAt          *time.Time            `json:"posted_at,omitempty"`
	CancelledAt       *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason      string                `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
	Version           int                   `json:"version"`
}

// InvoiceListItemResponse represents a vendor invoice in list responses (less detail)
type InvoiceListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	PartnerID     uuid.UUID       `json:"partner_id"`
	PartnerName   string          `json:"partner_name"`
	OrderID       *uuid.UUID      `json:"order_id,omitempty"`
	LineCount     int             `json:"line_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	PostedAt      *time.Time      `json:"posted_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InvoiceLineResponse represents an invoice line in API responses
type InvoiceLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     *uuid.UUID      `json:"product_id,omitempty"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Amount        decimal.Decimal `json:"amount"`
	CustomsNumber string          `json:"customs_number,omitempty"`
	CustomsDate   *time.Time      `json:"customs_date,omitempty"`
}

// ToInvoiceResponse converts a domain VendorInvoice to a response DTO
func ToInvoiceResponse(invoice *finance.VendorInvoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(invoice.Lines))
	for i := range invoice.Lines {
		lines[i] = ToInvoiceLineResponse(&invoice.Lines[i])
	}

	return InvoiceResponse{
		ID:                invoice.ID,
		InvoiceNumber:     invoice.InvoiceNumber,
		PartnerID:         invoice.PartnerID,
		PartnerName:       invoice.PartnerName,
		OrderID:           invoice.OrderID,
		Lines:             lines,
		TotalAmount:       invoice.TotalAmount,
		PaidAmount:        invoice.PaidAmount,
		OutstandingAmount: invoice.OutstandingAmount(),
		Status:            string(invoice.Status),
		PaymentStatus:     string(invoice.PaymentStatus),
		InvoiceDate:       invoice.InvoiceDate,
		Remark:            invoice.Remark,
		PostedAt:          invoice.PostedAt,
		CancelledAt:       invoice.CancelledAt,
		CancelReason:      invoice.CancelReason,
		CreatedAt:         invoice.CreatedAt,
		UpdatedAt:         invoice.UpdatedAt,
		Version:           invoice.Version,
	}
}

// ToInvoiceListItemResponse converts a domain VendorInvoice to a list response DTO
func ToInvoiceListItemResponse(invoice *finance.VendorInvoice) InvoiceListItemResponse {
	return InvoiceListItemResponse{
		ID:            invoice.ID,
		InvoiceNumber: invoice.InvoiceNumber,
		PartnerID:     invoice.PartnerID,
		PartnerName:   invoice.PartnerName,
		OrderID:       invoice.OrderID,
		LineCount:     len(invoice.Lines),
		TotalAmount:   invoice.TotalAmount,
		PaidAmount:    invoice.PaidAmount,
		Status:        string(invoice.Status),
		PaymentStatus: string(invoice.PaymentStatus),
		InvoiceDate:   invoice.InvoiceDate,
		PostedAt:      invoice.PostedAt,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
	}
}

// ToInvoiceListItemResponses converts a slice of domain invoices to list responses
func ToInvoiceListItemResponses(invoices []finance.VendorInvoice) []InvoiceListItemResponse {
	responses := make([]InvoiceListItemResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceListItemResponse(&invoices[i])
	}
	return responses
}

// ToInvoiceLineResponse converts a domain VendorInvoiceLine to a response DTO
func ToInvoiceLineResponse(line *finance.VendorInvoiceLine) InvoiceLineResponse {
	return InvoiceLineResponse{
		ID:            line.ID,
		ProductID:     line.ProductID,
		Description:   line.Description,
		Quantity:      line.Quantity,
		UnitPrice:     line.UnitPrice,
		Amount:        line.Amount,
		CustomsNumber: line.CustomsNumber,
		CustomsDate:   line.CustomsDate,
	}
}
