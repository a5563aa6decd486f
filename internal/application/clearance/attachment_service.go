package clearance

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AllowedContentTypes whitelists the content types accepted for customs
// paperwork uploads. Scans arrive as PDFs or images; everything else is
// rejected before a storage key is issued.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/tiff":      true,
	"image/webp":      true,
}

// ObjectStorageService defines the storage operations the attachment flow
// needs. Implemented by the infrastructure layer (S3 or the stub).
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// AttachmentServiceConfig holds configuration for the attachment service
type AttachmentServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
	// MaxAttachmentsPerDocument caps confirmed attachments per document
	MaxAttachmentsPerDocument int
}

// DefaultAttachmentServiceConfig returns the default configuration
func DefaultAttachmentServiceConfig() AttachmentServiceConfig {
	return AttachmentServiceConfig{
		UploadURLExpiry:           15 * time.Minute,
		DownloadURLExpiry:         1 * time.Hour,
		MaxAttachmentsPerDocument: 20,
	}
}

// AttachmentService handles scanned customs paperwork on clearance documents.
// Files go to object storage through presigned URLs; the service only tracks
// the metadata and the pending/active handshake.
type AttachmentService struct {
	attachmentRepo clearance.DocumentAttachmentRepository
	documentRepo   clearance.Repository
	storage        ObjectStorageService
	config         AttachmentServiceConfig
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachmentRepo clearance.DocumentAttachmentRepository,
	documentRepo clearance.Repository,
	storage ObjectStorageService,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		documentRepo:   documentRepo,
		storage:        storage,
		config:         DefaultAttachmentServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *AttachmentService) SetConfig(config AttachmentServiceConfig) {
	s.config = config
}

// InitiateUpload records a pending attachment and returns a presigned upload
// URL. The attachment stays pending until ConfirmUpload verifies the object
// actually landed in storage.
func (s *AttachmentService) InitiateUpload(ctx context.Context, documentID uuid.UUID, req InitiateUploadRequest, uploadedBy *uuid.UUID) (*InitiateUploadResponse, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == clearance.ClearanceDocumentStatusCancelled {
		return nil, shared.NewDomainError("DOCUMENT_CANCELLED", "Cannot attach files to a cancelled document")
	}

	count, err := s.attachmentRepo.CountActiveByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if count >= int64(s.config.MaxAttachmentsPerDocument) {
		return nil, shared.NewDomainError("ATTACHMENT_LIMIT_EXCEEDED",
			fmt.Sprintf("Maximum %d attachments per document allowed", s.config.MaxAttachmentsPerDocument))
	}

	if !AllowedContentTypes[strings.ToLower(req.ContentType)] {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type %q is not allowed. Allowed types: PDF and image scans", req.ContentType))
	}

	storageKey := generateAttachmentKey(documentID, req.FileName)

	attachment, err := clearance.NewDocumentAttachment(
		documentID,
		req.FileName,
		req.FileSize,
		req.ContentType,
		storageKey,
		uploadedBy,
	)
	if err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		return nil, err
	}

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, req.ContentType, s.config.UploadURLExpiry)
	if err != nil {
		// Roll the record back so a retry gets a fresh key
		_ = s.attachmentRepo.Delete(ctx, attachment.ID)
		return nil, shared.NewDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL")
	}

	return &InitiateUploadResponse{
		AttachmentID: attachment.ID,
		UploadURL:    uploadURL,
		StorageKey:   storageKey,
		ExpiresAt:    expiresAt,
	}, nil
}

// ConfirmUpload verifies the file exists in storage and activates the
// attachment.
func (s *AttachmentService) ConfirmUpload(ctx context.Context, documentID, attachmentID uuid.UUID) (*AttachmentResponse, error) {
	attachment, err := s.findForDocument(ctx, documentID, attachmentID)
	if err != nil {
		return nil, err
	}

	exists, err := s.storage.ObjectExists(ctx, attachment.StorageKey)
	if err != nil {
		return nil, shared.NewDomainError("STORAGE_CHECK_FAILED", "Failed to verify upload")
	}
	if !exists {
		return nil, shared.NewDomainError("UPLOAD_NOT_FOUND", "File not found in storage. Please upload the file first")
	}

	if err := attachment.Confirm(); err != nil {
		return nil, err
	}

	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		return nil, err
	}

	response := ToAttachmentResponse(attachment)
	s.enrichWithURL(ctx, &response, attachment)
	return &response, nil
}

// ListByDocument retrieves the confirmed attachments of a document
func (s *AttachmentService) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]AttachmentResponse, error) {
	if _, err := s.documentRepo.FindByID(ctx, documentID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.FindActiveByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	responses := ToAttachmentResponses(attachments)
	for i := range attachments {
		s.enrichWithURL(ctx, &responses[i], &attachments[i])
	}
	return responses, nil
}

// Delete soft-deletes an attachment and removes the object from storage.
// The storage delete is best effort, the record stays deleted even when the
// object lingers.
func (s *AttachmentService) Delete(ctx context.Context, documentID, attachmentID uuid.UUID) error {
	attachment, err := s.findForDocument(ctx, documentID, attachmentID)
	if err != nil {
		return err
	}

	if err := attachment.Delete(); err != nil {
		return err
	}

	if err := s.attachmentRepo.Save(ctx, attachment); err != nil {
		return err
	}

	_ = s.storage.DeleteObject(ctx, attachment.StorageKey)
	return nil
}

// findForDocument loads an attachment and checks it belongs to the document.
// A mismatch reads the same as a missing attachment to the caller.
func (s *AttachmentService) findForDocument(ctx context.Context, documentID, attachmentID uuid.UUID) (*clearance.DocumentAttachment, error) {
	attachment, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if attachment.DocumentID != documentID {
		return nil, shared.ErrNotFound
	}
	return attachment, nil
}

func (s *AttachmentService) enrichWithURL(ctx context.Context, response *AttachmentResponse, attachment *clearance.DocumentAttachment) {
	if !attachment.IsActive() {
		return
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, attachment.StorageKey, s.config.DownloadURLExpiry)
	if err == nil {
		response.URL = url
	}
}

// generateAttachmentKey builds a collision-free storage key. The original
// extension is kept so downloads open with the right application.
func generateAttachmentKey(documentID uuid.UUID, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("clearance-documents/%s/attachments/%s%s", documentID, uuid.New(), ext)
}
