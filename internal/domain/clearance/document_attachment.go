package clearance

import (
	"strings"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxAttachmentFileSize caps uploaded scans at 25MB
const MaxAttachmentFileSize = 25 * 1024 * 1024

// AttachmentStatus represents the lifecycle of an uploaded scan
type AttachmentStatus string

const (
	// AttachmentStatusPending means an upload URL was issued but the file
	// has not been confirmed in storage yet
	AttachmentStatusPending AttachmentStatus = "PENDING"
	AttachmentStatusActive  AttachmentStatus = "ACTIVE"
	AttachmentStatusDeleted AttachmentStatus = "DELETED"
)

// IsValid checks if the status is a valid AttachmentStatus
func (s AttachmentStatus) IsValid() bool {
	switch s {
	case AttachmentStatusPending, AttachmentStatusActive, AttachmentStatusDeleted:
		return true
	}
	return false
}

// DocumentAttachment is a scanned customs paper (declaration, inspection
// certificate, broker invoice) uploaded against a clearance document. The file
// body lives in object storage; only the storage key is kept here.
type DocumentAttachment struct {
	shared.BaseAggregateRoot
	DocumentID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Status      AttachmentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	FileName    string           `gorm:"type:varchar(255);not null"`
	FileSize    int64            `gorm:"not null"`
	ContentType string           `gorm:"type:varchar(100);not null"`
	StorageKey  string           `gorm:"type:varchar(500);not null;uniqueIndex"`
	UploadedBy  *uuid.UUID       `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DocumentAttachment) TableName() string {
	return "clearance_document_attachments"
}

// NewDocumentAttachment creates an attachment in pending status. It becomes
// active only after the upload is confirmed against storage.
func NewDocumentAttachment(
	documentID uuid.UUID,
	fileName string,
	fileSize int64,
	contentType string,
	storageKey string,
	uploadedBy *uuid.UUID,
) (*DocumentAttachment, error) {
	if documentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_ID", "Document ID cannot be empty")
	}
	if err := validateAttachmentFileName(fileName); err != nil {
		return nil, err
	}
	if err := validateAttachmentFileSize(fileSize); err != nil {
		return nil, err
	}
	if err := validateAttachmentContentType(contentType); err != nil {
		return nil, err
	}
	if err := validateAttachmentStorageKey(storageKey); err != nil {
		return nil, err
	}

	return &DocumentAttachment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DocumentID:        documentID,
		Status:            AttachmentStatusPending,
		FileName:          fileName,
		FileSize:          fileSize,
		ContentType:       contentType,
		StorageKey:        storageKey,
		UploadedBy:        uploadedBy,
	}, nil
}

// Confirm activates the attachment after the file is verified in storage
func (a *DocumentAttachment) Confirm() error {
	if a.Status == AttachmentStatusActive {
		return shared.NewDomainError("ATTACHMENT_ALREADY_CONFIRMED", "Attachment is already confirmed")
	}
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError("ATTACHMENT_DELETED", "Cannot confirm a deleted attachment")
	}

	a.Status = AttachmentStatusActive
	a.Touch()
	a.IncrementVersion()

	return nil
}

// Delete marks the attachment as deleted. The record is kept so the storage
// key stays traceable even after the object is gone.
func (a *DocumentAttachment) Delete() error {
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError("ATTACHMENT_DELETED", "Attachment is already deleted")
	}

	a.Status = AttachmentStatusDeleted
	a.Touch()
	a.IncrementVersion()

	return nil
}

// IsPending returns true if the upload has not been confirmed yet
func (a *DocumentAttachment) IsPending() bool {
	return a.Status == AttachmentStatusPending
}

// IsActive returns true if the attachment is confirmed and visible
func (a *DocumentAttachment) IsActive() bool {
	return a.Status == AttachmentStatusActive
}

func validateAttachmentFileName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot exceed 255 characters")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return shared.NewDomainError("INVALID_FILE_NAME", "File name contains invalid characters")
		}
	}
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name cannot contain path separators")
	}
	return nil
}

func validateAttachmentFileSize(size int64) error {
	if size <= 0 {
		return shared.NewDomainError("INVALID_FILE_SIZE", "File size must be greater than 0")
	}
	if size > MaxAttachmentFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "File size cannot exceed 25MB")
	}
	return nil
}

func validateAttachmentContentType(contentType string) error {
	if contentType == "" {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type cannot be empty")
	}
	if len(contentType) > 100 {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type cannot exceed 100 characters")
	}
	if !strings.Contains(contentType, "/") ||
		strings.HasPrefix(contentType, "/") || strings.HasSuffix(contentType, "/") {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type must be in type/subtype format")
	}
	return nil
}

func validateAttachmentStorageKey(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot exceed 500 characters")
	}
	// Keys are joined into object paths, keep traversal sequences out
	if strings.Contains(key, "..") {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot contain path traversal sequences")
	}
	if strings.HasPrefix(key, "/") {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key must be a relative path")
	}
	return nil
}
