package clearance

import (
	"time"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Clearance Document DTOs ====================

// ClearanceDocumentListFilter represents filter options for document lists
type ClearanceDocumentListFilter struct {
	Search        string     `form:"search"`
	CustomsNumber string     `form:"customs_number"`
	Status        *string    `form:"status"`
	StartDate     *time.Time `form:"start_date"`
	EndDate       *time.Time `form:"end_date"`
	Page          int        `form:"page" binding:"min=0"`
	PageSize      int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// AddCostLineRequest represents a request to add a landed-cost line to a document
type AddCostLineRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=200"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	SplitMethod string          `json:"split_method" binding:"omitempty,oneof=BY_QUANTITY EQUAL"`
}

// CancelDocumentRequest represents a request to cancel a clearance document
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ReceiptLinkResponse represents an attached receipt in API responses
type ReceiptLinkResponse struct {
	ReceiptID   uuid.UUID `json:"receipt_id"`
	ReceiptName string    `json:"receipt_name"`
	PartnerID   uuid.UUID `json:"partner_id"`
	AttachedAt  time.Time `json:"attached_at"`
}

// CostLineResponse represents a cost line in API responses
type CostLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	SplitMethod string          `json:"split_method"`
}

// CostAllocationResponse represents a computed cost allocation in API responses
type CostAllocationResponse struct {
	CostLineID uuid.UUID       `json:"cost_line_id"`
	ReceiptID  uuid.UUID       `json:"receipt_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// ReferencingOrderResponse identifies an order currently referencing a document
type ReferencingOrderResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	PartnerID   uuid.UUID `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	Status      string    `json:"status"`
}

// ClearanceDocumentResponse represents a clearance document in API responses
type ClearanceDocumentResponse struct {
	ID             uuid.UUID                  `json:"id"`
	DocumentNumber string                     `json:"document_number"`
	CustomsNumber  string                     `json:"customs_number"`
	CustomsDate    time.Time                  `json:"customs_date"`
	Status         string                     `json:"status"`
	Receipts       []ReceiptLinkResponse      `json:"receipts"`
	CostLines      []CostLineResponse         `json:"cost_lines"`
	Allocations    []CostAllocationResponse   `json:"allocations,omitempty"`
	TotalCost      decimal.Decimal            `json:"total_cost"`
	Orders         []ReferencingOrderResponse `json:"orders,omitempty"`
	Remark         string                     `json:"remark,omitempty"`
	ValidatedAt    *time.Time                 `json:"validated_at,omitempty"`
	CancelledAt    *time.Time                 `json:"cancelled_at,omitempty"`
	CancelReason   string                     `json:"cancel_reason,omitempty"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
	Version        int                        `json:"version"`
}

// ClearanceDocumentListItemResponse represents a document in list responses
type ClearanceDocumentListItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	DocumentNumber string          `json:"document_number"`
	CustomsNumber  string          `json:"customs_number"`
	CustomsDate    time.Time       `json:"customs_date"`
	Status         string          `json:"status"`
	ReceiptCount   int             `json:"receipt_count"`
	CostLineCount  int             `json:"cost_line_count"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	ValidatedAt    *time.Time      `json:"validated_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ==================== Order Confirmation DTOs ====================

// ConfirmOrdersRequest represents a batch order confirmation request
type ConfirmOrdersRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required,min=1"`
}

// DocumentAction describes what the registry did with a document for one order
type DocumentAction string

const (
	DocumentActionNone          DocumentAction = "NONE"
	DocumentActionCreated       DocumentAction = "CREATED"
	DocumentActionReused        DocumentAction = "REUSED"
	DocumentActionAlreadyLinked DocumentAction = "ALREADY_LINKED"
)

// OrderConfirmationResult reports the outcome of confirming one order
type OrderConfirmationResult struct {
	OrderID        uuid.UUID      `json:"order_id"`
	OrderNumber    string         `json:"order_number"`
	ReceiptID      *uuid.UUID     `json:"receipt_id,omitempty"`
	ReceiptNumber  string         `json:"receipt_number,omitempty"`
	DocumentID     *uuid.UUID     `json:"document_id,omitempty"`
	DocumentNumber string         `json:"document_number,omitempty"`
	DocumentAction DocumentAction `json:"document_action"`
}

// ConfirmOrdersResponse aggregates the per-order confirmation outcomes
type ConfirmOrdersResponse struct {
	Results []OrderConfirmationResult `json:"results"`
}

// ==================== Bulk Validation DTOs ====================

// ValidateClearancesRequest represents a bulk clearance validation request
type ValidateClearancesRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" binding:"required,min=1"`
}

// ReportSeverity classifies the overall outcome of a bulk validation run
type ReportSeverity string

const (
	ReportSeveritySuccess ReportSeverity = "success"
	ReportSeverityWarning ReportSeverity = "warning"
	ReportSeverityDanger  ReportSeverity = "danger"
)

// ValidationCategory carries the count and the names falling into one
// partition of the bulk validation report
type ValidationCategory struct {
	Count int      `json:"count"`
	Names []string `json:"names"`
}

// DocumentValidationFailure records a per-document validation error captured
// during bulk validation; the batch continues past it
type DocumentValidationFailure struct {
	DocumentID     uuid.UUID `json:"document_id"`
	DocumentNumber string    `json:"document_number"`
	Error          string    `json:"error"`
}

// ClearanceValidationReport aggregates the outcome of a bulk validation run
type ClearanceValidationReport struct {
	OrdersChecked         int                         `json:"orders_checked"`
	OrdersWithoutNumber   ValidationCategory          `json:"orders_without_number"`
	OrdersWithoutDocument ValidationCategory          `json:"orders_without_document"`
	DocumentsAlreadyDone  ValidationCategory          `json:"documents_already_done"`
	DocumentsValidated    ValidationCategory          `json:"documents_validated"`
	DocumentsFailed       []DocumentValidationFailure `json:"documents_failed"`
	Severity              ReportSeverity              `json:"severity"`
}

// ==================== Reversal DTOs ====================

// RevertOrderRequest represents a request to revert a confirmed order
type RevertOrderRequest struct {
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// DocumentOutcome describes what happened to the clearance document during a
// reversal
type DocumentOutcome string

const (
	DocumentOutcomeNone      DocumentOutcome = "NONE"
	DocumentOutcomeCancelled DocumentOutcome = "CANCELLED"
	DocumentOutcomeRetained  DocumentOutcome = "RETAINED"
)

// ReturnReference identifies a return created while reversing an order
type ReturnReference struct {
	ReturnID        uuid.UUID `json:"return_id"`
	ReturnNumber    string    `json:"return_number"`
	OriginReceiptID uuid.UUID `json:"origin_receipt_id"`
	OriginNumber    string    `json:"origin_number"`
}

// ReturnFailure records a return that could not be created; the reversal
// records it and continues
type ReturnFailure struct {
	ReceiptID     uuid.UUID `json:"receipt_id"`
	ReceiptNumber string    `json:"receipt_number"`
	Reason        string    `json:"reason"`
}

// OrderReversalResult reports the outcome of reverting one order
type OrderReversalResult struct {
	OrderID           uuid.UUID         `json:"order_id"`
	OrderNumber       string            `json:"order_number"`
	CancelledReceipts []string          `json:"cancelled_receipts"`
	CreatedReturns    []ReturnReference `json:"created_returns"`
	FailedReturns     []ReturnFailure   `json:"failed_returns"`
	DocumentID        *uuid.UUID        `json:"document_id,omitempty"`
	DocumentNumber    string            `json:"document_number,omitempty"`
	DocumentOutcome   DocumentOutcome   `json:"document_outcome"`
}

// DocumentReversalResult aggregates per-order results of reverting every
// order referencing a document
type DocumentReversalResult struct {
	DocumentID     uuid.UUID             `json:"document_id"`
	DocumentNumber string                `json:"document_number"`
	Orders         []OrderReversalResult `json:"orders"`
}

// ==================== Converters ====================

// ToReceiptLinkResponse converts a receipt link to its response DTO
func ToReceiptLinkResponse(link clearance.ReceiptLink) ReceiptLinkResponse {
	return ReceiptLinkResponse{
		ReceiptID:   link.ReceiptID,
		ReceiptName: link.ReceiptName,
		PartnerID:   link.PartnerID,
		AttachedAt:  link.AttachedAt,
	}
}

// ToCostLineResponse converts a cost line to its response DTO
func ToCostLineResponse(line clearance.CostLine) CostLineResponse {
	return CostLineResponse{
		ID:          line.ID,
		Description: line.Description,
		Amount:      line.Amount,
		SplitMethod: string(line.SplitMethod),
	}
}

// ToCostAllocationResponse converts a cost allocation to its response DTO
func ToCostAllocationResponse(alloc clearance.CostAllocation) CostAllocationResponse {
	return CostAllocationResponse{
		CostLineID: alloc.CostLineID,
		ReceiptID:  alloc.ReceiptID,
		Amount:     alloc.Amount,
	}
}

// ToClearanceDocumentResponse converts a document to its full response DTO
func ToClearanceDocumentResponse(doc *clearance.ClearanceDocument) ClearanceDocumentResponse {
	receipts := make([]ReceiptLinkResponse, 0, len(doc.Receipts))
	for _, link := range doc.Receipts {
		receipts = append(receipts, ToReceiptLinkResponse(link))
	}

	costLines := make([]CostLineResponse, 0, len(doc.CostLines))
	for _, line := range doc.CostLines {
		costLines = append(costLines, ToCostLineResponse(line))
	}

	allocations := make([]CostAllocationResponse, 0, len(doc.Allocations))
	for _, alloc := range doc.Allocations {
		allocations = append(allocations, ToCostAllocationResponse(alloc))
	}

	return ClearanceDocumentResponse{
		ID:             doc.ID,
		DocumentNumber: doc.DocumentNumber,
		CustomsNumber:  doc.CustomsNumber,
		CustomsDate:    doc.CustomsDate,
		Status:         string(doc.Status),
		Receipts:       receipts,
		CostLines:      costLines,
		Allocations:    allocations,
		TotalCost:      doc.TotalCost,
		Remark:         doc.Remark,
		ValidatedAt:    doc.ValidatedAt,
		CancelledAt:    doc.CancelledAt,
		CancelReason:   doc.CancelReason,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
		Version:        doc.Version,
	}
}

// ToClearanceDocumentListItemResponse converts a document to its list DTO
func ToClearanceDocumentListItemResponse(doc *clearance.ClearanceDocument) ClearanceDocumentListItemResponse {
	return ClearanceDocumentListItemResponse{
		ID:             doc.ID,
		DocumentNumber: doc.DocumentNumber,
		CustomsNumber:  doc.CustomsNumber,
		CustomsDate:    doc.CustomsDate,
		Status:         string(doc.Status),
		ReceiptCount:   len(doc.Receipts),
		CostLineCount:  len(doc.CostLines),
		TotalCost:      doc.TotalCost,
		ValidatedAt:    doc.ValidatedAt,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

// ToClearanceDocumentListItemResponses converts a slice of documents
func ToClearanceDocumentListItemResponses(docs []clearance.ClearanceDocument) []ClearanceDocumentListItemResponse {
	responses := make([]ClearanceDocumentListItemResponse, 0, len(docs))
	for i := range docs {
		responses = append(responses, ToClearanceDocumentListItemResponse(&docs[i]))
	}
	return responses
}

// ==================== Attachment DTOs ====================

// InitiateUploadRequest represents a request to upload a scanned paper
// against a clearance document
type InitiateUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	FileSize    int64  `json:"file_size" binding:"required,gt=0"`
	ContentType string `json:"content_type" binding:"required"`
}

// InitiateUploadResponse returns the presigned upload URL for an attachment
type InitiateUploadResponse struct {
	AttachmentID uuid.UUID `json:"attachment_id"`
	UploadURL    string    `json:"upload_url"`
	StorageKey   string    `json:"storage_key"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AttachmentResponse represents a document attachment in API responses
type AttachmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	DocumentID  uuid.UUID  `json:"document_id"`
	Status      string     `json:"status"`
	FileName    string     `json:"file_name"`
	FileSize    int64      `json:"file_size"`
	ContentType string     `json:"content_type"`
	StorageKey  string     `json:"storage_key"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	URL         string     `json:"url,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToAttachmentResponse converts a document attachment to its response DTO
func ToAttachmentResponse(a *clearance.DocumentAttachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		DocumentID:  a.DocumentID,
		Status:      string(a.Status),
		FileName:    a.FileName,
		FileSize:    a.FileSize,
		ContentType: a.ContentType,
		StorageKey:  a.StorageKey,
		UploadedBy:  a.UploadedBy,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ToAttachmentResponses converts a slice of document attachments
func ToAttachmentResponses(attachments []clearance.DocumentAttachment) []AttachmentResponse {
	responses := make([]AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		responses = append(responses, ToAttachmentResponse(&attachments[i]))
	}
	return responses
}
