package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProcurementOrderRepository implements procurement.Repository using GORM
type GormProcurementOrderRepository struct {
	db *gorm.DB
}

// NewGormProcurementOrderRepository creates a new GormProcurementOrderRepository
func NewGormProcurementOrderRepository(db *gorm.DB) *GormProcurementOrderRepository {
	return &GormProcurementOrderRepository{db: db}
}

// FindByID finds a procurement order by its ID
func (r *GormProcurementOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.ProcurementOrder, error) {
	var order procurement.ProcurementOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Notes").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByIDs finds procurement orders for a set of IDs
func (r *GormProcurementOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]procurement.ProcurementOrder, error) {
	if len(ids) == 0 {
		return []procurement.ProcurementOrder{}, nil
	}

	var orders []procurement.ProcurementOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Notes").
		Where("id IN ?", ids).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByOrderNumber finds a procurement order by order number
func (r *GormProcurementOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*procurement.ProcurementOrder, error) {
	var order procurement.ProcurementOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Notes").
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds all procurement orders with filtering
func (r *GormProcurementOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.ProcurementOrder, error) {
	var orders []procurement.ProcurementOrder
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&procurement.ProcurementOrder{}).
			Preload("Items").
			Preload("Notes"),
		filter,
	)

	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByClearanceDocument finds the orders currently referencing a clearance document
func (r *GormProcurementOrderRepository) FindByClearanceDocument(ctx context.Context, documentID uuid.UUID) ([]procurement.ProcurementOrder, error) {
	var orders []procurement.ProcurementOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Notes").
		Where("clearance_document_id = ?", documentID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// CountByClearanceDocument counts orders referencing a document, excluding the
// given order ID (uuid.Nil excludes nothing)
func (r *GormProcurementOrderRepository) CountByClearanceDocument(ctx context.Context, documentID, excludeOrderID uuid.UUID) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&procurement.ProcurementOrder{}).
		Where("clearance_document_id = ?", documentID)
	if excludeOrderID != uuid.Nil {
		query = query.Where("id != ?", excludeOrderID)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a procurement order with its items and notes
func (r *GormProcurementOrderRepository) Save(ctx context.Context, order *procurement.ProcurementOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(order).Error; err != nil {
			return err
		}
		return r.saveChildren(tx, order)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormProcurementOrderRepository) SaveWithLock(ctx context.Context, order *procurement.ProcurementOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var currentVersion int
		if err := tx.Model(&procurement.ProcurementOrder{}).
			Where("id = ?", order.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		// Check version matches
		if currentVersion != order.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		// Increment version
		order.Version++
		order.UpdatedAt = time.Now()

		// Update order with version check
		result := tx.Model(&procurement.ProcurementOrder{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"partner_id":            order.PartnerID,
				"partner_name":          order.PartnerName,
				"customs_number":        order.CustomsNumber,
				"clearance_document_id": order.ClearanceDocumentID,
				"total_amount":          order.TotalAmount,
				"status":                order.Status,
				"remark":                order.Remark,
				"confirmed_at":          order.ConfirmedAt,
				"cancelled_at":          order.CancelledAt,
				"cancel_reason":         order.CancelReason,
				"version":               order.Version,
				"updated_at":            order.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The order has been modified by another user")
		}

		return r.saveChildren(tx, order)
	})
}

// saveChildren replaces the order's item and note rows with the in-memory sets
func (r *GormProcurementOrderRepository) saveChildren(tx *gorm.DB, order *procurement.ProcurementOrder) error {
	if order.ID == uuid.Nil {
		return nil
	}

	// Items: delete removed items and save/update existing ones
	itemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		itemIDs[i] = item.ID
	}
	if len(itemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, itemIDs).
			Delete(&procurement.ProcurementOrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&procurement.ProcurementOrderItem{}).Error; err != nil {
			return err
		}
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}

	// Notes are append-only, so only new rows are written
	for i := range order.Notes {
		order.Notes[i].OrderID = order.ID
		if err := tx.Save(&order.Notes[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Delete deletes a procurement order with its items and notes
func (r *GormProcurementOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&procurement.ProcurementOrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&procurement.OrderNote{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&procurement.ProcurementOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts procurement orders with optional filters
func (r *GormProcurementOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&procurement.ProcurementOrder{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateOrderNumber generates a unique order number.
// Format: PO-YYYY-NNNNN (e.g., PO-2026-00001)
func (r *GormProcurementOrderRepository) GenerateOrderNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("PO-%d-", year)

	// Get the highest order number for this year
	var lastOrder procurement.ProcurementOrder
	err := r.db.WithContext(ctx).
		Model(&procurement.ProcurementOrder{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		First(&lastOrder).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastOrder.OrderNumber != "" {
		parts := strings.Split(lastOrder.OrderNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	orderNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.existsByOrderNumber(ctx, orderNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			orderNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByOrderNumber(ctx, orderNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return orderNumber, nil
}

func (r *GormProcurementOrderRepository) existsByOrderNumber(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&procurement.ProcurementOrder{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormProcurementOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ProcurementOrderSortFields, "")
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
func (r *GormProcurementOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR partner_name ILIKE ? OR customs_number ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "partner_id":
			query = query.Where("partner_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "customs_number":
			query = query.Where("customs_number = ?", value)
		case "has_customs_number":
			if value == true {
				query = query.Where("customs_number != ''")
			}
		case "clearance_document_id":
			query = query.Where("clearance_document_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		case "min_amount":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("total_amount >= ?", d)
			}
		case "max_amount":
			if d, ok := value.(decimal.Decimal); ok {
				query = query.Where("total_amount <= ?", d)
			}
		}
	}

	return query
}

// Ensure GormProcurementOrderRepository implements procurement.Repository
var _ procurement.Repository = (*GormProcurementOrderRepository)(nil)
