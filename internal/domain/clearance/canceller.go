package clearance

import (
	"context"

	"github.com/aduana/backend/internal/domain/shared"
)

// SafeCanceller is the optional capability for cancelling a validated (DONE)
// clearance document. Whether it is present is decided at wiring time; the
// reversal orchestrator checks CanCancel before relying on it and surfaces
// ErrCodeCancelBlocked when it is absent or disabled.
type SafeCanceller interface {
	// CanCancel reports whether the capability is available
	CanCancel() bool

	// Cancel reverses the document's cost allocation and cancels it
	Cancel(ctx context.Context, doc *ClearanceDocument, reason string) error
}

// StandardSafeCanceller cancels validated documents by dropping their computed
// cost allocations before the status transition
type StandardSafeCanceller struct{}

// NewStandardSafeCanceller creates the standard safe-cancel capability
func NewStandardSafeCanceller() *StandardSafeCanceller {
	return &StandardSafeCanceller{}
}

// CanCancel always reports true for the standard capability
func (c *StandardSafeCanceller) CanCancel() bool {
	return true
}

// Cancel reverses the allocation and cancels the document
func (c *StandardSafeCanceller) Cancel(ctx context.Context, doc *ClearanceDocument, reason string) error {
	doc.ClearCostAllocations()
	return doc.CancelValidated(reason)
}

// DisabledSafeCanceller is wired when the safe-cancel capability is turned off.
// Cancel always fails with the operator-facing blocked error.
type DisabledSafeCanceller struct{}

// NewDisabledSafeCanceller creates a disabled safe-cancel capability
func NewDisabledSafeCanceller() *DisabledSafeCanceller {
	return &DisabledSafeCanceller{}
}

// CanCancel always reports false when the capability is disabled
func (c *DisabledSafeCanceller) CanCancel() bool {
	return false
}

// Cancel fails unconditionally
func (c *DisabledSafeCanceller) Cancel(ctx context.Context, doc *ClearanceDocument, reason string) error {
	return shared.NewDomainError(ErrCodeCancelBlocked,
		"Validated clearance documents require the safe-cancel capability; enable it or cancel the document manually")
}

// Ensure both implementations satisfy SafeCanceller
var (
	_ SafeCanceller = (*StandardSafeCanceller)(nil)
	_ SafeCanceller = (*DisabledSafeCanceller)(nil)
)
