package clearance

import (
	"fmt"
	"time"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClearanceDocumentStatus represents the status of a clearance document
type ClearanceDocumentStatus string

const (
	ClearanceDocumentStatusDraft     ClearanceDocumentStatus = "DRAFT"
	ClearanceDocumentStatusDone      ClearanceDocumentStatus = "DONE"
	ClearanceDocumentStatusCancelled ClearanceDocumentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ClearanceDocumentStatus
func (s ClearanceDocumentStatus) IsValid() bool {
	switch s {
	case ClearanceDocumentStatusDraft, ClearanceDocumentStatusDone, ClearanceDocumentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ClearanceDocumentStatus
func (s ClearanceDocumentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ClearanceDocumentStatus) CanTransitionTo(target ClearanceDocumentStatus) bool {
	switch s {
	case ClearanceDocumentStatusDraft:
		return target == ClearanceDocumentStatusDone || target == ClearanceDocumentStatusCancelled
	case ClearanceDocumentStatusDone:
		// DONE may only be left through the safe-cancel capability
		return target == ClearanceDocumentStatusCancelled
	case ClearanceDocumentStatusCancelled:
		return false // Terminal state
	}
	return false
}

// IsTerminal returns true if no further lifecycle transitions are expected
func (s ClearanceDocumentStatus) IsTerminal() bool {
	return s == ClearanceDocumentStatusCancelled
}

// CostLineSplitMethod determines how a cost line is allocated across receipts
type CostLineSplitMethod string

const (
	SplitByQuantity CostLineSplitMethod = "BY_QUANTITY"
	SplitEqual      CostLineSplitMethod = "EQUAL"
)

// IsValid checks if the split method is known
func (m CostLineSplitMethod) IsValid() bool {
	return m == SplitByQuantity || m == SplitEqual
}

// ReceiptLink records a receipt transaction attached to a clearance document.
// The partner is snapshotted at attach time so the partner-homogeneity rule can
// be checked without loading the receipt, and so the link stays meaningful for
// audit after the receipt's order is gone.
type ReceiptLink struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	DocumentID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceiptID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceiptName string    `gorm:"type:varchar(50);not null"`
	PartnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	AttachedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReceiptLink) TableName() string {
	return "clearance_receipt_links"
}

// CostLine represents a landed-cost component on a clearance document
// (duties, broker fees, freight) to be allocated across the attached receipts
type CostLine struct {
	ID          uuid.UUID           `gorm:"type:uuid;primary_key"`
	DocumentID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	Description string              `gorm:"type:varchar(200);not null"`
	Amount      decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	SplitMethod CostLineSplitMethod `gorm:"type:varchar(20);not null;default:'BY_QUANTITY'"`
	CreatedAt   time.Time           `gorm:"not null"`
	UpdatedAt   time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CostLine) TableName() string {
	return "clearance_cost_lines"
}

// NewCostLine creates a new cost line
func NewCostLine(documentID uuid.UUID, description string, amount decimal.Decimal, splitMethod CostLineSplitMethod) (*CostLine, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_COST_LINE", "Cost line description cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_COST_LINE", "Cost line amount must be positive")
	}
	if !splitMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_COST_LINE", fmt.Sprintf("Unknown split method %q", splitMethod))
	}

	now := time.Now()
	return &CostLine{
		ID:          uuid.New(),
		DocumentID:  documentID,
		Description: description,
		Amount:      amount,
		SplitMethod: splitMethod,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ClearanceDocument aggregates the landed-cost allocation for the receipts
// covered by one customs operation. Several procurement orders placed with the
// same trading partner may share one document while it is still a draft; the
// set of referencing orders is derived by reverse lookup and never stored here.
type ClearanceDocument struct {
	shared.BaseAggregateRoot
	DocumentNumber string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomsNumber  string                  `gorm:"type:varchar(30);not null;index"`
	CustomsDate    time.Time               `gorm:"not null"`
	Status         ClearanceDocumentStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	Receipts       []ReceiptLink           `gorm:"foreignKey:DocumentID;references:ID"`
	CostLines      []CostLine              `gorm:"foreignKey:DocumentID;references:ID"`
	Allocations    []CostAllocation        `gorm:"foreignKey:DocumentID;references:ID"`
	TotalCost      decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Remark         string                  `gorm:"type:text"`
	ValidatedAt    *time.Time              `gorm:"index"`
	CancelledAt    *time.Time
	CancelReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ClearanceDocument) TableName() string {
	return "clearance_documents"
}

// NewClearanceDocument creates a new draft clearance document for a customs number
func NewClearanceDocument(documentNumber, customsNumber string, customsDate time.Time) (*ClearanceDocument, error) {
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if customsNumber == "" {
		return nil, shared.NewDomainError(ErrCodeCustomsNumberFormat, "Clearance document requires a customs number")
	}
	if err := ValidateCustomsNumber(customsNumber); err != nil {
		return nil, err
	}
	if customsDate.IsZero() {
		customsDate = time.Now()
	}

	doc := &ClearanceDocument{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DocumentNumber:    documentNumber,
		CustomsNumber:     customsNumber,
		CustomsDate:       customsDate,
		Status:            ClearanceDocumentStatusDraft,
		Receipts:          make([]ReceiptLink, 0),
		CostLines:         make([]CostLine, 0),
		Allocations:       make([]CostAllocation, 0),
		TotalCost:         decimal.Zero,
	}

	doc.AddDomainEvent(NewClearanceDocumentCreatedEvent(doc))

	return doc, nil
}

// HasReceipt returns true if the receipt is already attached
func (d *ClearanceDocument) HasReceipt(receiptID uuid.UUID) bool {
	for _, link := range d.Receipts {
		if link.ReceiptID == receiptID {
			return true
		}
	}
	return false
}

// PartnerIDs returns the distinct partners represented among the attached receipts
func (d *ClearanceDocument) PartnerIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(d.Receipts))
	partners := make([]uuid.UUID, 0, len(d.Receipts))
	for _, link := range d.Receipts {
		if _, ok := seen[link.PartnerID]; ok {
			continue
		}
		seen[link.PartnerID] = struct{}{}
		partners = append(partners, link.PartnerID)
	}
	return partners
}

// AcceptsPartner reports whether an order of the given partner may share this
// document. A document with no attached receipts accepts any partner; otherwise
// the partner must already be represented among the attached receipts.
func (d *ClearanceDocument) AcceptsPartner(partnerID uuid.UUID) bool {
	if len(d.Receipts) == 0 {
		return true
	}
	for _, link := range d.Receipts {
		if link.PartnerID == partnerID {
			return true
		}
	}
	return false
}

// AttachReceipt adds a receipt to the document's receipt set.
// Attaching an already-present receipt is an idempotent no-op.
func (d *ClearanceDocument) AttachReceipt(receiptID uuid.UUID, receiptName string, partnerID uuid.UUID) error {
	if receiptID == uuid.Nil {
		return shared.NewDomainError("INVALID_RECEIPT", "Receipt ID cannot be empty")
	}
	if d.HasReceipt(receiptID) {
		return nil
	}

	d.Receipts = append(d.Receipts, ReceiptLink{
		ID:          uuid.New(),
		DocumentID:  d.ID,
		ReceiptID:   receiptID,
		ReceiptName: receiptName,
		PartnerID:   partnerID,
		AttachedAt:  time.Now(),
	})
	d.Touch()

	d.AddDomainEvent(NewReceiptAttachedEvent(d, receiptID, receiptName))

	return nil
}

// DetachReceipt removes a receipt from the document's receipt set.
// Links are only mutable while the document is a draft: once the document is
// DONE or CANCELLED the attached receipts are retained for audit, and the call
// is a no-op. Returns true if a link was removed.
func (d *ClearanceDocument) DetachReceipt(receiptID uuid.UUID) bool {
	if d.Status != ClearanceDocumentStatusDraft {
		return false
	}

	for idx, link := range d.Receipts {
		if link.ReceiptID == receiptID {
			name := link.ReceiptName
			d.Receipts = append(d.Receipts[:idx], d.Receipts[idx+1:]...)
			d.Touch()
			d.AddDomainEvent(NewReceiptDetachedEvent(d, receiptID, name))
			return true
		}
	}
	return false
}

// AddCostLine adds a landed-cost component to the document
// Only allowed in DRAFT status
func (d *ClearanceDocument) AddCostLine(description string, amount decimal.Decimal, splitMethod CostLineSplitMethod) (*CostLine, error) {
	if d.Status != ClearanceDocumentStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add cost lines to a non-draft document")
	}

	line, err := NewCostLine(d.ID, description, amount, splitMethod)
	if err != nil {
		return nil, err
	}

	d.CostLines = append(d.CostLines, *line)
	d.recalculateTotalCost()
	d.Touch()

	return line, nil
}

// RemoveCostLine removes a cost line from the document
// Only allowed in DRAFT status
func (d *ClearanceDocument) RemoveCostLine(lineID uuid.UUID) error {
	if d.Status != ClearanceDocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove cost lines from a non-draft document")
	}

	for idx, line := range d.CostLines {
		if line.ID == lineID {
			d.CostLines = append(d.CostLines[:idx], d.CostLines[idx+1:]...)
			d.recalculateTotalCost()
			d.Touch()
			return nil
		}
	}

	return shared.NewDomainError("COST_LINE_NOT_FOUND", "Cost line not found")
}

// HasCostLines returns true if the document carries computable cost lines
func (d *ClearanceDocument) HasCostLines() bool {
	return len(d.CostLines) > 0
}

// SetCostAllocations replaces the computed cost allocations wholesale.
// Called by the costing engine; recomputation always rebuilds the full set.
func (d *ClearanceDocument) SetCostAllocations(allocations []CostAllocation) {
	d.Allocations = allocations
	d.Touch()
}

// ClearCostAllocations drops the computed allocations, used when a validated
// document is safe-cancelled and its cost allocation is reversed
func (d *ClearanceDocument) ClearCostAllocations() {
	d.Allocations = nil
	d.Touch()
}

func (d *ClearanceDocument) recalculateTotalCost() {
	total := decimal.Zero
	for _, line := range d.CostLines {
		total = total.Add(line.Amount)
	}
	d.TotalCost = total
}

// SetCustomsNumber changes the customs number
// Only allowed in DRAFT status; the number must be well formed
func (d *ClearanceDocument) SetCustomsNumber(number string) error {
	if d.Status != ClearanceDocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change the customs number of a non-draft document")
	}
	if number == "" {
		return shared.NewDomainError(ErrCodeCustomsNumberFormat, "Clearance document requires a customs number")
	}
	if err := ValidateCustomsNumber(number); err != nil {
		return err
	}

	d.CustomsNumber = number
	d.Touch()

	return nil
}

// SetRemark sets the document remark
func (d *ClearanceDocument) SetRemark(remark string) {
	d.Remark = remark
	d.Touch()
}

// CanBeValidated returns true if the document can transition to DONE
func (d *ClearanceDocument) CanBeValidated() bool {
	return d.Status == ClearanceDocumentStatusDraft && len(d.Receipts) > 0
}

// Validate transitions the document from DRAFT to DONE.
// The caller (validation service) is responsible for the customs-number
// uniqueness check across documents, which needs repository access.
func (d *ClearanceDocument) Validate() error {
	if !d.Status.CanTransitionTo(ClearanceDocumentStatusDone) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot validate document in %s status", d.Status))
	}
	if len(d.Receipts) == 0 {
		return shared.NewDomainError("NO_RECEIPTS", "Cannot validate a clearance document without attached receipts")
	}

	now := time.Now()
	d.Status = ClearanceDocumentStatusDone
	d.ValidatedAt = &now
	d.Touch()

	d.AddDomainEvent(NewClearanceDocumentValidatedEvent(d))

	return nil
}

// Cancel cancels a draft document directly.
// A DONE document can only be cancelled through the safe-cancel capability.
func (d *ClearanceDocument) Cancel(reason string) error {
	if d.Status != ClearanceDocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel document in %s status directly", d.Status))
	}

	now := time.Now()
	d.Status = ClearanceDocumentStatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.Touch()

	d.AddDomainEvent(NewClearanceDocumentCancelledEvent(d, false))

	return nil
}

// CancelValidated cancels a DONE document. Reserved for the safe-cancel
// capability, which reverses the cost allocation before calling this.
func (d *ClearanceDocument) CancelValidated(reason string) error {
	if d.Status != ClearanceDocumentStatusDone {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot safe-cancel document in %s status", d.Status))
	}

	now := time.Now()
	d.Status = ClearanceDocumentStatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.Touch()

	d.AddDomainEvent(NewClearanceDocumentCancelledEvent(d, true))

	return nil
}

// IsDraft returns true if the document is a draft
func (d *ClearanceDocument) IsDraft() bool {
	return d.Status == ClearanceDocumentStatusDraft
}

// IsDone returns true if the document has been validated
func (d *ClearanceDocument) IsDone() bool {
	return d.Status == ClearanceDocumentStatusDone
}

// IsCancelled returns true if the document is cancelled
func (d *ClearanceDocument) IsCancelled() bool {
	return d.Status == ClearanceDocumentStatusCancelled
}
