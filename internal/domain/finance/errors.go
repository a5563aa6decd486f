package finance

// Error codes raised when invoices block an order reversal
const (
	// ErrCodeInvoicePaid is raised when an order has an invoice with settled
	// or in-flight payments
	ErrCodeInvoicePaid = "INVOICE_ALREADY_PAID"
	// ErrCodeInvoicePosted is raised when an order has a posted but unpaid
	// invoice that must be voided first
	ErrCodeInvoicePosted = "INVOICE_ALREADY_POSTED"
)
