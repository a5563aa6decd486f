package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/aduana/backend/internal/domain/stock"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormReceiptRepository implements stock.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by its ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.ReceiptTransaction, error) {
	var receipt stock.ReceiptTransaction
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		First(&receipt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByIDs finds multiple receipts by their IDs
func (r *GormReceiptRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]stock.ReceiptTransaction, error) {
	if len(ids) == 0 {
		return []stock.ReceiptTransaction{}, nil
	}

	var receipts []stock.ReceiptTransaction
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		Where("id IN ?", ids).
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// FindByReceiptNumber finds a receipt by its number
func (r *GormReceiptRepository) FindByReceiptNumber(ctx context.Context, receiptNumber string) (*stock.ReceiptTransaction, error) {
	var receipt stock.ReceiptTransaction
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		Where("receipt_number = ?", receiptNumber).
		First(&receipt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &receipt, nil
}

// FindByOrder finds all receipts belonging to an order
func (r *GormReceiptRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]stock.ReceiptTransaction, error) {
	var receipts []stock.ReceiptTransaction
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// FindReturnsByOrigin finds return receipts created for an origin receipt
func (r *GormReceiptRepository) FindReturnsByOrigin(ctx context.Context, originReceiptID uuid.UUID) ([]stock.ReceiptTransaction, error) {
	var receipts []stock.ReceiptTransaction
	if err := r.db.WithContext(ctx).
		Preload("Movements").
		Where("origin_receipt_id = ?", originReceiptID).
		Order("created_at ASC").
		Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// FindAll finds receipts matching the filter
func (r *GormReceiptRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.ReceiptTransaction, error) {
	var receipts []stock.ReceiptTransaction
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&stock.ReceiptTransaction{}).
			Preload("Movements"),
		filter,
	)

	if err := query.Find(&receipts).Error; err != nil {
		return nil, err
	}
	return receipts, nil
}

// Save creates or updates a receipt with its movements
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *stock.ReceiptTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(receipt).Error; err != nil {
			return err
		}
		return r.saveMovements(tx, receipt)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormReceiptRepository) SaveWithLock(ctx context.Context, receipt *stock.ReceiptTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var currentVersion int
		if err := tx.Model(&stock.ReceiptTransaction{}).
			Where("id = ?", receipt.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		// Check version matches
		if currentVersion != receipt.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The receipt has been modified by another user")
		}

		// Increment version
		receipt.Version++
		receipt.UpdatedAt = time.Now()

		// Update receipt with version check
		result := tx.Model(&stock.ReceiptTransaction{}).
			Where("id = ? AND version = ?", receipt.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":        receipt.Status,
				"scheduled_at":  receipt.ScheduledAt,
				"completed_at":  receipt.CompletedAt,
				"cancelled_at":  receipt.CancelledAt,
				"cancel_reason": receipt.CancelReason,
				"version":       receipt.Version,
				"updated_at":    receipt.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The receipt has been modified by another user")
		}

		return r.saveMovements(tx, receipt)
	})
}

// saveMovements replaces the receipt's movement rows with the in-memory set
func (r *GormReceiptRepository) saveMovements(tx *gorm.DB, receipt *stock.ReceiptTransaction) error {
	if receipt.ID == uuid.Nil {
		return nil
	}

	movementIDs := make([]uuid.UUID, len(receipt.Movements))
	for i, movement := range receipt.Movements {
		movementIDs[i] = movement.ID
	}
	if len(movementIDs) > 0 {
		if err := tx.Where("receipt_id = ? AND id NOT IN ?", receipt.ID, movementIDs).
			Delete(&stock.StockMovement{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("receipt_id = ?", receipt.ID).
			Delete(&stock.StockMovement{}).Error; err != nil {
			return err
		}
	}
	for i := range receipt.Movements {
		receipt.Movements[i].ReceiptID = receipt.ID
		if err := tx.Save(&receipt.Movements[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a draft receipt with its movements
func (r *GormReceiptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("receipt_id = ?", id).Delete(&stock.StockMovement{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&stock.ReceiptTransaction{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts receipts matching the filter
func (r *GormReceiptRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&stock.ReceiptTransaction{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateReceiptNumber generates the next receipt number.
// Format: RCPT-YYYY-NNNNN (e.g., RCPT-2026-00001)
func (r *GormReceiptRepository) GenerateReceiptNumber(ctx context.Context) (string, error) {
	return r.generateNumber(ctx, "RCPT")
}

// GenerateReturnNumber generates the next return receipt number.
// Format: RET-YYYY-NNNNN (e.g., RET-2026-00001)
func (r *GormReceiptRepository) GenerateReturnNumber(ctx context.Context) (string, error) {
	return r.generateNumber(ctx, "RET")
}

func (r *GormReceiptRepository) generateNumber(ctx context.Context, kind string) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("%s-%d-", kind, year)

	// Get the highest number for this year
	var lastReceipt stock.ReceiptTransaction
	err := r.db.WithContext(ctx).
		Model(&stock.ReceiptTransaction{}).
		Where("receipt_number LIKE ?", prefix+"%").
		Order("receipt_number DESC").
		First(&lastReceipt).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastReceipt.ReceiptNumber != "" {
		parts := strings.Split(lastReceipt.ReceiptNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	receiptNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.existsByReceiptNumber(ctx, receiptNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			receiptNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByReceiptNumber(ctx, receiptNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return receiptNumber, nil
}

func (r *GormReceiptRepository) existsByReceiptNumber(ctx context.Context, receiptNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&stock.ReceiptTransaction{}).
		Where("receipt_number = ?", receiptNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormReceiptRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ReceiptSortFields, "")
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
func (r *GormReceiptRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("receipt_number ILIKE ?", searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "partner_id":
			query = query.Where("partner_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "is_return":
			if value == true {
				query = query.Where("origin_receipt_id IS NOT NULL")
			} else if value == false {
				query = query.Where("origin_receipt_id IS NULL")
			}
		case "origin_receipt_id":
			query = query.Where("origin_receipt_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormReceiptRepository implements stock.ReceiptRepository
var _ stock.ReceiptRepository = (*GormReceiptRepository)(nil)
