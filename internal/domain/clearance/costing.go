package clearance

import (
	"context"
	"fmt"
	"time"

	"github.com/aduana/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostAllocation is one cost line's share allocated to one attached receipt.
// Allocations are recomputed as a whole set whenever costs are computed.
type CostAllocation struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostLineID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ReceiptID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CostAllocation) TableName() string {
	return "clearance_cost_allocations"
}

// CostingEngine computes landed-cost allocations for a clearance document and
// validates the document, which is what transitions it to DONE
type CostingEngine interface {
	// ComputeCosts allocates the document's cost lines across its attached
	// receipts. doneQuantities maps receipt ID to the total completed quantity
	// of that receipt; receipts without an entry allocate as zero quantity.
	ComputeCosts(ctx context.Context, doc *ClearanceDocument, doneQuantities map[uuid.UUID]decimal.Decimal) error

	// Validate transitions the document to DONE after enforcing that no other
	// DONE document carries the same customs number
	Validate(ctx context.Context, doc *ClearanceDocument) error
}

// StandardCostingEngine is the in-process costing engine
type StandardCostingEngine struct {
	repo Repository
}

// NewStandardCostingEngine creates a costing engine backed by the document repository
func NewStandardCostingEngine(repo Repository) *StandardCostingEngine {
	return &StandardCostingEngine{repo: repo}
}

// ComputeCosts allocates every cost line across the attached receipts.
// BY_QUANTITY lines split proportionally to completed quantities; EQUAL lines
// split evenly. The last receipt absorbs the rounding remainder so the
// allocated amounts always sum to the line amount.
func (e *StandardCostingEngine) ComputeCosts(ctx context.Context, doc *ClearanceDocument, doneQuantities map[uuid.UUID]decimal.Decimal) error {
	if doc.Status != ClearanceDocumentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot compute costs for a non-draft document")
	}
	if len(doc.Receipts) == 0 {
		return shared.NewDomainError("NO_RECEIPTS", "Cannot compute costs without attached receipts")
	}

	totalQuantity := decimal.Zero
	for _, link := range doc.Receipts {
		if qty, ok := doneQuantities[link.ReceiptID]; ok {
			totalQuantity = totalQuantity.Add(qty)
		}
	}

	allocations := make([]CostAllocation, 0, len(doc.CostLines)*len(doc.Receipts))
	now := time.Now()

	for _, line := range doc.CostLines {
		remaining := line.Amount
		for idx, link := range doc.Receipts {
			var share decimal.Decimal
			last := idx == len(doc.Receipts)-1

			switch {
			case last:
				share = remaining
			case line.SplitMethod == SplitEqual:
				share = line.Amount.Div(decimal.NewFromInt(int64(len(doc.Receipts)))).Round(4)
			case totalQuantity.IsPositive():
				qty := doneQuantities[link.ReceiptID]
				share = line.Amount.Mul(qty).Div(totalQuantity).Round(4)
			default:
				// No completed quantity anywhere: fall back to an even split
				share = line.Amount.Div(decimal.NewFromInt(int64(len(doc.Receipts)))).Round(4)
			}

			remaining = remaining.Sub(share)
			allocations = append(allocations, CostAllocation{
				ID:         uuid.New(),
				DocumentID: doc.ID,
				CostLineID: line.ID,
				ReceiptID:  link.ReceiptID,
				Amount:     share,
				CreatedAt:  now,
			})
		}
	}

	doc.SetCostAllocations(allocations)

	return nil
}

// Validate enforces customs-number uniqueness among DONE documents, then
// transitions the document to DONE
func (e *StandardCostingEngine) Validate(ctx context.Context, doc *ClearanceDocument) error {
	exists, err := e.repo.ExistsDoneWithCustomsNumber(ctx, doc.CustomsNumber, doc.ID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(ErrCodeCustomsNumberConflict,
			fmt.Sprintf("A validated clearance document already exists for customs number %s", doc.CustomsNumber))
	}

	return doc.Validate()
}

// Ensure StandardCostingEngine implements CostingEngine
var _ CostingEngine = (*StandardCostingEngine)(nil)
