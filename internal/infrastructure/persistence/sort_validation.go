package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ClearanceDocumentSortFields contains allowed sort fields for clearance documents
var ClearanceDocumentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"document_number": true,
	"customs_number":  true,
	"customs_date":    true,
	"status":          true,
	"total_cost":      true,
	"validated_at":    true,
}

// ProcurementOrderSortFields contains allowed sort fields for procurement orders
var ProcurementOrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"partner_name":   true,
	"customs_number": true,
	"total_amount":   true,
	"status":         true,
	"confirmed_at":   true,
}

// ReceiptSortFields contains allowed sort fields for receipt transactions
var ReceiptSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"receipt_number": true,
	"status":         true,
	"scheduled_at":   true,
	"completed_at":   true,
}

// VendorInvoiceSortFields contains allowed sort fields for vendor invoices
var VendorInvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"partner_name":   true,
	"total_amount":   true,
	"status":         true,
	"payment_status": true,
	"invoice_date":   true,
	"posted_at":      true,
}

// LocationSortFields contains allowed sort fields for stock locations
var LocationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"usage":      true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"login":         true,
	"email":         true,
	"display_name":  true,
	"status":        true,
	"last_login_at": true,
}
