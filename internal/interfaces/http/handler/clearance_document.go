package handler

import (
	"fmt"
	"net/http"

	clearanceapp "github.com/aduana/backend/internal/application/clearance"
	"github.com/gin-gonic/gin"
)

// ClearanceDocumentHandler handles clearance document API endpoints
type ClearanceDocumentHandler struct {
	BaseHandler
	documentService *clearanceapp.DocumentService
	reversalService *clearanceapp.ReversalService
	summaryService  *clearanceapp.SummaryService
}

// NewClearanceDocumentHandler creates a new ClearanceDocumentHandler
func NewClearanceDocumentHandler(
	documentService *clearanceapp.DocumentService,
	reversalService *clearanceapp.ReversalService,
	summaryService *clearanceapp.SummaryService,
) *ClearanceDocumentHandler {
	return &ClearanceDocumentHandler{
		documentService: documentService,
		reversalService: reversalService,
		summaryService:  summaryService,
	}
}

// List godoc
// @ID           listClearanceDocuments
// @Summary      List clearance documents
// @Description  List clearance documents with filtering and pagination
// @Tags         clearance-documents
// @Produce      json
// @Param        search query string false "Search in document number and customs number"
// @Param        customs_number query string false "Filter by exact customs number"
// @Param        status query string false "Filter by status" Enums(draft, done, cancel)
// @Param        start_date query string false "Customs date lower bound" format(date-time)
// @Param        end_date query string false "Customs date upper bound" format(date-time)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]clearance.ClearanceDocumentListItemResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents [get]
func (h *ClearanceDocumentHandler) List(c *gin.Context) {
	filter := clearanceapp.ClearanceDocumentListFilter{
		Page:     1,
		PageSize: 20,
	}
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	documents, total, err := h.documentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, documents, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getClearanceDocumentById
// @Summary      Get clearance document by ID
// @Description  Get a clearance document with its receipts, cost lines and allocations
// @Tags         clearance-documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[clearance.ClearanceDocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id} [get]
func (h *ClearanceDocumentHandler) GetByID(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	document, err := h.documentService.GetByID(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, document)
}

// AddCostLine godoc
// @ID           addClearanceCostLine
// @Summary      Add a cost line to a draft clearance document
// @Tags         clearance-documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body clearance.AddCostLineRequest true "Cost line to add"
// @Success      200 {object} APIResponse[clearance.ClearanceDocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/cost-lines [post]
func (h *ClearanceDocumentHandler) AddCostLine(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req clearanceapp.AddCostLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	document, err := h.documentService.AddCostLine(c.Request.Context(), documentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, document)
}

// RemoveCostLine godoc
// @ID           removeClearanceCostLine
// @Summary      Remove a cost line from a draft clearance document
// @Tags         clearance-documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        line_id path string true "Cost line ID" format(uuid)
// @Success      200 {object} APIResponse[clearance.ClearanceDocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/cost-lines/{line_id} [delete]
func (h *ClearanceDocumentHandler) RemoveCostLine(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.parseIDParam(c, "line_id")
	if !ok {
		return
	}

	document, err := h.documentService.RemoveCostLine(c.Request.Context(), documentID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, document)
}

// Cancel godoc
// @ID           cancelClearanceDocument
// @Summary      Cancel a clearance document
// @Description  Cancel a draft clearance document. Validated documents cannot be
// @Description  cancelled directly; revert them instead.
// @Tags         clearance-documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body clearance.CancelDocumentRequest true "Cancellation reason"
// @Success      200 {object} APIResponse[clearance.ClearanceDocumentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/cancel [post]
func (h *ClearanceDocumentHandler) Cancel(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req clearanceapp.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	document, err := h.documentService.Cancel(c.Request.Context(), documentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, document)
}

// Revert godoc
// @ID           revertClearanceDocument
// @Summary      Revert every order of a clearance document
// @Description  Run the reversal saga for each confirmed order referencing this
// @Description  document, then release the document itself. Only logins on the
// @Description  reversal allow-list may call this.
// @Tags         clearance-documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body clearance.RevertOrderRequest false "Optional reversal reason"
// @Success      200 {object} APIResponse[clearance.DocumentReversalResult]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/revert [post]
func (h *ClearanceDocumentHandler) Revert(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
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

	result, err := h.reversalService.RevertDocument(c.Request.Context(), actorLogin, documentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// SummaryPDF godoc
// @ID           getClearanceDocumentSummaryPdf
// @Summary      Download the clearance document summary PDF
// @Description  Render a printable summary of the document with its receipts,
// @Description  cost lines and per-item cost allocations
// @Tags         clearance-documents
// @Produce      application/pdf
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {file} binary
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/summary.pdf [get]
func (h *ClearanceDocumentHandler) SummaryPDF(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	pdf, err := h.summaryService.RenderSummaryPDF(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.FileName))
	c.Data(http.StatusOK, "application/pdf", pdf.Content)
}
