package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aduana/backend/internal/domain/finance"
	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormVendorInvoiceRepository implements finance.Repository using GORM
type GormVendorInvoiceRepository struct {
	db *gorm.DB
}

// NewGormVendorInvoiceRepository creates a new GormVendorInvoiceRepository
func NewGormVendorInvoiceRepository(db *gorm.DB) *GormVendorInvoiceRepository {
	return &GormVendorInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormVendorInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.VendorInvoice, error) {
	var invoice finance.VendorInvoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByInvoiceNumber finds an invoice by its number
func (r *GormVendorInvoiceRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*finance.VendorInvoice, error) {
	var invoice finance.VendorInvoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("invoice_number = ?", invoiceNumber).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByOrder finds all invoices referencing an order
func (r *GormVendorInvoiceRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]finance.VendorInvoice, error) {
	var invoices []finance.VendorInvoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindPostedMissingCustomsInfo finds posted invoices for an order whose lines
// still lack a customs number
func (r *GormVendorInvoiceRepository) FindPostedMissingCustomsInfo(ctx context.Context, orderID uuid.UUID) ([]finance.VendorInvoice, error) {
	var invoices []finance.VendorInvoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ? AND status = ?", orderID, finance.InvoiceStatusPosted).
		Where("EXISTS (SELECT 1 FROM vendor_invoice_lines WHERE vendor_invoice_lines.invoice_id = vendor_invoices.id AND vendor_invoice_lines.customs_number = '')").
		Order("created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAll finds invoices matching the filter
func (r *GormVendorInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]finance.VendorInvoice, error) {
	var invoices []finance.VendorInvoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&finance.VendorInvoice{}).
			Preload("Lines"),
		filter,
	)

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice with its lines
func (r *GormVendorInvoiceRepository) Save(ctx context.Context, invoice *finance.VendorInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(invoice).Error; err != nil {
			return err
		}
		return r.saveLines(tx, invoice)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormVendorInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.VendorInvoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get current version from database
		var currentVersion int
		if err := tx.Model(&finance.VendorInvoice{}).
			Where("id = ?", invoice.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		// Check version matches
		if currentVersion != invoice.Version {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another user")
		}

		// Increment version
		invoice.Version++
		invoice.UpdatedAt = time.Now()

		// Update invoice with version check
		result := tx.Model(&finance.VendorInvoice{}).
			Where("id = ? AND version = ?", invoice.ID, currentVersion).
			Updates(map[string]interface{}{
				"partner_id":     invoice.PartnerID,
				"partner_name":   invoice.PartnerName,
				"order_id":       invoice.OrderID,
				"total_amount":   invoice.TotalAmount,
				"paid_amount":    invoice.PaidAmount,
				"status":         invoice.Status,
				"payment_status": invoice.PaymentStatus,
				"invoice_date":   invoice.InvoiceDate,
				"remark":         invoice.Remark,
				"posted_at":      invoice.PostedAt,
				"cancelled_at":   invoice.CancelledAt,
				"cancel_reason":  invoice.CancelReason,
				"version":        invoice.Version,
				"updated_at":     invoice.UpdatedAt,
			})

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENT_MODIFICATION", "The invoice has been modified by another user")
		}

		return r.saveLines(tx, invoice)
	})
}

// saveLines replaces the invoice's line rows with the in-memory set
func (r *GormVendorInvoiceRepository) saveLines(tx *gorm.DB, invoice *finance.VendorInvoice) error {
	if invoice.ID == uuid.Nil {
		return nil
	}

	lineIDs := make([]uuid.UUID, len(invoice.Lines))
	for i, line := range invoice.Lines {
		lineIDs[i] = line.ID
	}
	if len(lineIDs) > 0 {
		if err := tx.Where("invoice_id = ? AND id NOT IN ?", invoice.ID, lineIDs).
			Delete(&finance.VendorInvoiceLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("invoice_id = ?", invoice.ID).
			Delete(&finance.VendorInvoiceLine{}).Error; err != nil {
			return err
		}
	}
	for i := range invoice.Lines {
		invoice.Lines[i].InvoiceID = invoice.ID
		if err := tx.Save(&invoice.Lines[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// Count counts invoices matching the filter
func (r *GormVendorInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&finance.VendorInvoice{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateInvoiceNumber generates the next invoice number.
// Format: BILL-YYYY-NNNNN (e.g., BILL-2026-00001)
func (r *GormVendorInvoiceRepository) GenerateInvoiceNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("BILL-%d-", year)

	// Get the highest invoice number for this year
	var lastInvoice finance.VendorInvoice
	err := r.db.WithContext(ctx).
		Model(&finance.VendorInvoice{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		First(&lastInvoice).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastInvoice.InvoiceNumber != "" {
		parts := strings.Split(lastInvoice.InvoiceNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	invoiceNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.existsByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			invoiceNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.existsByInvoiceNumber(ctx, invoiceNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return invoiceNumber, nil
}

func (r *GormVendorInvoiceRepository) existsByInvoiceNumber(ctx context.Context, invoiceNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&finance.VendorInvoice{}).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormVendorInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering with whitelist validation to prevent SQL injection
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, VendorInvoiceSortFields, "")
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
func (r *GormVendorInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR partner_name ILIKE ?",
			searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "partner_id":
			query = query.Where("partner_id = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("invoice_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("invoice_date <= ?", t)
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

// Ensure GormVendorInvoiceRepository implements finance.Repository
var _ finance.Repository = (*GormVendorInvoiceRepository)(nil)
