package clearance

// Error codes for clearance failures surfaced to callers
const (
	// ErrCodeCustomsNumberFormat identifies a malformed customs number
	ErrCodeCustomsNumberFormat = "CUSTOMS_NUMBER_FORMAT_INVALID"

	// ErrCodeCustomsNumberConflict identifies reuse of a number already
	// carried by a validated (DONE) document
	ErrCodeCustomsNumberConflict = "CLEARANCE_NUMBER_CONFLICT"

	// ErrCodePartnerMismatch identifies an attempt to share a draft document
	// across orders of incompatible trading partners
	ErrCodePartnerMismatch = "CLEARANCE_PARTNER_MISMATCH"

	// ErrCodeCancelBlocked identifies an exclusive DONE document that cannot
	// be cancelled because the safe-cancel capability is not available
	ErrCodeCancelBlocked = "CLEARANCE_CANCEL_BLOCKED"

	// ErrCodeValidationFailed identifies a per-document validation failure
	// collected during bulk validation
	ErrCodeValidationFailed = "CLEARANCE_VALIDATION_FAILED"
)
