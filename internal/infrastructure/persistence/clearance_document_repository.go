package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClearanceDocumentRepository implements clearance.Repository using GORM
type GormClearanceDocumentRepository struct {
	db *gorm.DB
}

// NewGormClearanceDocumentRepository creates a new GormClearanceDocumentRepository
func NewGormClearanceDocumentRepository(db *gorm.DB) *GormClearanceDocumentRepository {
	return &GormClearanceDocumentRepository{db: db}
}

// FindByID finds a clearance document by its ID
func (r *GormClearanceDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*clearance.ClearanceDocument, error) {
	var doc clearance.ClearanceDocument
	if err := r.db.WithContext(ctx).
		Preload("Receipts").
		Preload("CostLines").
		Preload("Allocations").
		First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByDocumentNumber finds a clearance document by its internal number
func (r *GormClearanceDocumentRepository) FindByDocumentNumber(ctx context.Context, documentNumber string) (*clearance.ClearanceDocument, error) {
	var doc clearance.ClearanceDocument
	if err := r.db.WithContext(ctx).
		Preload("Receipts").
		Preload("CostLines").
		Preload("Allocations").
		Where("document_number = ?", documentNumber).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindByCustomsNumber finds all documents carrying a customs number, any status
func (r *GormClearanceDocumentRepository) FindByCustomsNumber(ctx context.Context, customsNumber string) ([]clearance.ClearanceDocument, error) {
	var docs []clearance.ClearanceDocument
	if err := r.db.WithContext(ctx).
		Preload("Receipts").
		Preload("CostLines").
		Preload("Allocations").
		Where("customs_number = ?", customsNumber).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindByCustomsNumberAndStatus finds documents carrying a customs number in a given status
func (r *GormClearanceDocumentRepository) FindByCustomsNumberAndStatus(ctx context.Context, customsNumber string, status clearance.ClearanceDocumentStatus) ([]clearance.ClearanceDocument, error) {
	var docs []clearance.ClearanceDocument
	if err := r.db.WithContext(ctx).
		Preload("Receipts").
		Preload("CostLines").
		Preload("Allocations").
		Where("customs_number = ? AND status = ?", customsNumber, status).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindAll finds all clearance documents with filtering
func (r *GormClearanceDocumentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]clearance.ClearanceDocument, error) {
	var docs []clearance.ClearanceDocument
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&clearance.ClearanceDocument{}).
			Preload("Receipts").
			Preload("CostLines").
			Preload("Allocations"),
		filter,
	)

	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Save creates or updates a clearance document with its receipt links and cost lines
func (r *GormClearanceDocumentRepository) Save(ctx context.Context, doc *clearance.ClearanceDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(doc).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, doc)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormClearanceDocumentRepository) SaveWithLock(ctx context.Context, doc *clearance.ClearanceDocument) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var currentVersion int
		if err := tx.Model(&clearance.ClearanceDocument{}).
			Where("id = ?", doc.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		// Check version matches
		if currentVersion != doc.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The clearance document has been modified by another user")
		}

		// Increment version
		doc.Version++
		doc.UpdatedAt = time.Now()

		// Update document with version check
		result := tx.Model(&clearance.ClearanceDocument{}).
			Where("id = ? AND version = ?", doc.ID, currentVersion).
			Updates(map[string]interface{}{
				"customs_number": doc.CustomsNumber,
				"customs_date":   doc.CustomsDate,
				"status":         doc.Status,
				"total_cost":     doc.TotalCost,
				"remark":         doc.Remark,
				"validated_at":   doc.ValidatedAt,
				"cancelled_at":   doc.CancelledAt,
				"cancel_reason":  doc.CancelReason,
				"version":        doc.Version,
				"updated_at":     doc.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The clearance document has been modified by another user")
		}

		return r.saveChildren(tx, doc)
	})
}

// saveChildren replaces the document's receipt links, cost lines and
// allocations with the in-memory sets
func (r *GormClearanceDocumentRepository) saveChildren(tx *gorm.DB, doc *clearance.ClearanceDocument) error {
	if doc.ID == uuid.Nil {
		return nil
	}

	// Receipt links: delete removed links and save/update existing ones
	linkIDs := make([]uuid.UUID, len(doc.Receipts))
	for i, link := range doc.Receipts {
		linkIDs[i] = link.ID
	}
	if len(linkIDs) > 0 {
		if err := tx.Where("document_id = ? AND id NOT IN ?", doc.ID, linkIDs).
			Delete(&clearance.ReceiptLink{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("document_id = ?", doc.ID).
			Delete(&clearance.ReceiptLink{}).Error; err != nil {
			return err
		}
	}
	for i := range doc.Receipts {
		doc.Receipts[i].DocumentID = doc.ID
		if err := tx.Save(&doc.Receipts[i]).Error; err != nil {
			return err
		}
	}

	// Cost lines
	lineIDs := make([]uuid.UUID, len(doc.CostLines))
	for i, line := range doc.CostLines {
		lineIDs[i] = line.ID
	}
	if len(lineIDs) > 0 {
		if err := tx.Where("document_id = ? AND id NOT IN ?", doc.ID, lineIDs).
			Delete(&clearance.CostLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("document_id = ?", doc.ID).
			Delete(&clearance.CostLine{}).Error; err != nil {
			return err
		}
	}
	for i := range doc.CostLines {
		doc.CostLines[i].DocumentID = doc.ID
		if err := tx.Save(&doc.CostLines[i]).Error; err != nil {
			return err
		}
	}

	// Cost allocations are recomputed wholesale on validation, so the set is
	// replaced rather than merged
	allocationIDs := make([]uuid.UUID, len(doc.Allocations))
	for i, allocation := range doc.Allocations {
		allocationIDs[i] = allocation.ID
	}
	if len(allocationIDs) > 0 {
		if err := tx.Where("document_id = ? AND id NOT IN ?", doc.ID, allocationIDs).
			Delete(&clearance.CostAllocation{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("document_id = ?", doc.ID).
			Delete(&clearance.CostAllocation{}).Error; err != nil {
			return err
		}
	}
	for i := range doc.Allocations {
		doc.Allocations[i].DocumentID = doc.ID
		if err := tx.Save(&doc.Allocations[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Count counts clearance documents with optional filters
func (r *GormClearanceDocumentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&clearance.ClearanceDocument{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsDoneWithCustomsNumber checks if a DONE document exists for the customs
// number, excluding the given document ID (uuid.Nil excludes nothing)
func (r *GormClearanceDocumentRepository) ExistsDoneWithCustomsNumber(ctx context.Context, customsNumber string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&clearance.ClearanceDocument{}).
		Where("customs_number = ? AND status = ?", customsNumber, clearance.ClearanceDocumentStatusDone)
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateDocumentNumber generates a unique internal document number.
// Format: CD-YYYY-NNNNN (e.g., CD-2026-00001)
func (r *GormClearanceDocumentRepository) GenerateDocumentNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("CD-%d-", year)

	// Get the highest document number for this year
	var lastDoc clearance.ClearanceDocument
	err := r.db.WithContext(ctx).
		Model(&clearance.ClearanceDocument{}).
		Where("document_number LIKE ?", prefix+"%").
		Order("document_number DESC").
		First(&lastDoc).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastDoc.DocumentNumber != "" {
		parts := strings.Split(lastDoc.DocumentNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	documentNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.existsByDocumentNumber(ctx, documentNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			documentNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByDocumentNumber(ctx, documentNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return documentNumber, nil
}

func (r *GormClearanceDocumentRepository) existsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&clearance.ClearanceDocument{}).
		Where("document_number = ?", documentNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormClearanceDocumentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ClearanceDocumentSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormClearanceDocumentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("document_number ILIKE ? OR customs_number ILIKE ?",
			searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "customs_number":
			query = query.Where("customs_number = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("customs_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("customs_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormClearanceDocumentRepository implements clearance.Repository
var _ clearance.Repository = (*GormClearanceDocumentRepository)(nil)
