package persistence

import (
	"context"
	"errors"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentAttachmentRepository implements clearance.DocumentAttachmentRepository using GORM
type GormDocumentAttachmentRepository struct {
	db *gorm.DB
}

// NewGormDocumentAttachmentRepository creates a new GormDocumentAttachmentRepository
func NewGormDocumentAttachmentRepository(db *gorm.DB) *GormDocumentAttachmentRepository {
	return &GormDocumentAttachmentRepository{db: db}
}

// FindByID finds an attachment by its ID
func (r *GormDocumentAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*clearance.DocumentAttachment, error) {
	var attachment clearance.DocumentAttachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

// FindByDocument finds all attachments for a document, newest first
func (r *GormDocumentAttachmentRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]clearance.DocumentAttachment, error) {
	var attachments []clearance.DocumentAttachment
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// FindActiveByDocument finds confirmed attachments for a document
func (r *GormDocumentAttachmentRepository) FindActiveByDocument(ctx context.Context, documentID uuid.UUID) ([]clearance.DocumentAttachment, error) {
	var attachments []clearance.DocumentAttachment
	if err := r.db.WithContext(ctx).
		Where("document_id = ? AND status = ?", documentID, clearance.AttachmentStatusActive).
		Order("created_at DESC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// CountActiveByDocument counts confirmed attachments for a document
func (r *GormDocumentAttachmentRepository) CountActiveByDocument(ctx context.Context, documentID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&clearance.DocumentAttachment{}).
		Where("document_id = ? AND status = ?", documentID, clearance.AttachmentStatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an attachment
func (r *GormDocumentAttachmentRepository) Save(ctx context.Context, attachment *clearance.DocumentAttachment) error {
	return r.db.WithContext(ctx).Save(attachment).Error
}

// Delete removes an attachment record permanently
func (r *GormDocumentAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&clearance.DocumentAttachment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormDocumentAttachmentRepository implements clearance.DocumentAttachmentRepository
var _ clearance.DocumentAttachmentRepository = (*GormDocumentAttachmentRepository)(nil)
