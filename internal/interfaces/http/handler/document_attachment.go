package handler

import (
	clearanceapp "github.com/aduana/backend/internal/application/clearance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DocumentAttachmentHandler handles clearance document attachment endpoints.
// Files go to object storage through presigned URLs; the API only tracks
// metadata and upload state.
type DocumentAttachmentHandler struct {
	BaseHandler
	attachmentService *clearanceapp.AttachmentService
}

// NewDocumentAttachmentHandler creates a new DocumentAttachmentHandler
func NewDocumentAttachmentHandler(attachmentService *clearanceapp.AttachmentService) *DocumentAttachmentHandler {
	return &DocumentAttachmentHandler{attachmentService: attachmentService}
}

// InitiateUpload godoc
// @ID           initiateAttachmentUpload
// @Summary      Initiate an attachment upload
// @Description  Register a pending attachment and return a presigned URL the
// @Description  client uploads the file to directly
// @Tags         clearance-documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body clearance.InitiateUploadRequest true "File metadata"
// @Success      201 {object} APIResponse[clearance.InitiateUploadResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/attachments [post]
func (h *DocumentAttachmentHandler) InitiateUpload(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req clearanceapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var uploadedBy *uuid.UUID
	if userID, err := getUserID(c); err == nil {
		uploadedBy = &userID
	}

	result, err := h.attachmentService.InitiateUpload(c.Request.Context(), documentID, req, uploadedBy)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ConfirmUpload godoc
// @ID           confirmAttachmentUpload
// @Summary      Confirm an attachment upload
// @Description  Mark a pending attachment as uploaded after the client has
// @Description  finished writing it to storage
// @Tags         clearance-documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        attachment_id path string true "Attachment ID" format(uuid)
// @Success      200 {object} APIResponse[clearance.AttachmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/attachments/{attachment_id}/confirm [post]
func (h *DocumentAttachmentHandler) ConfirmUpload(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := h.parseIDParam(c, "attachment_id")
	if !ok {
		return
	}

	attachment, err := h.attachmentService.ConfirmUpload(c.Request.Context(), documentID, attachmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, attachment)
}

// List godoc
// @ID           listDocumentAttachments
// @Summary      List the attachments of a clearance document
// @Tags         clearance-documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[[]clearance.AttachmentResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/attachments [get]
func (h *DocumentAttachmentHandler) List(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	attachments, err := h.attachmentService.ListByDocument(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, attachments)
}

// Delete godoc
// @ID           deleteDocumentAttachment
// @Summary      Delete an attachment
// @Description  Remove the attachment record and its stored object
// @Tags         clearance-documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        attachment_id path string true "Attachment ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /clearance/clearance-documents/{id}/attachments/{attachment_id} [delete]
func (h *DocumentAttachmentHandler) Delete(c *gin.Context) {
	documentID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	attachmentID, ok := h.parseIDParam(c, "attachment_id")
	if !ok {
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), documentID, attachmentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
