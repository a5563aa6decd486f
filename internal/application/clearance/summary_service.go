package clearance

import (
	"context"
	"fmt"
	"time"

	"github.com/aduana/backend/internal/domain/clearance"
	"github.com/aduana/backend/internal/domain/procurement"
	"github.com/aduana/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SummaryService renders the landed-cost summary of a clearance document as a
// printable PDF. The summary lists the attached receipts, the cost lines with
// their allocation, and the orders referencing the document.
type SummaryService struct {
	documentRepo clearance.Repository
	orderRepo    procurement.Repository
	engine       *printing.TemplateEngine
	renderer     printing.PDFRenderer
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	documentRepo clearance.Repository,
	orderRepo procurement.Repository,
	engine *printing.TemplateEngine,
	renderer printing.PDFRenderer,
) *SummaryService {
	return &SummaryService{
		documentRepo: documentRepo,
		orderRepo:    orderRepo,
		engine:       engine,
		renderer:     renderer,
	}
}

// SummaryPDF is a rendered cost summary ready to be served as a download
type SummaryPDF struct {
	FileName  string
	Content   []byte
	PageCount int
}

// summaryData is the template payload for the cost summary
type summaryData struct {
	DocumentNumber string
	CustomsNumber  string
	CustomsDate    time.Time
	Status         string
	Remark         string
	TotalCost      decimal.Decimal
	GeneratedAt    time.Time
	Receipts       []summaryReceipt
	CostLines      []summaryCostLine
	Orders         []summaryOrder
}

type summaryReceipt struct {
	Name       string
	AttachedAt time.Time
	Allocated  decimal.Decimal
}

type summaryCostLine struct {
	Description string
	SplitMethod string
	Amount      decimal.Decimal
}

type summaryOrder struct {
	OrderNumber string
	PartnerName string
	Status      string
}

// RenderSummaryPDF loads a clearance document and renders its cost summary
// as a letter-size PDF
func (s *SummaryService) RenderSummaryPDF(ctx context.Context, documentID uuid.UUID) (*SummaryPDF, error) {
	doc, err := s.documentRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindByClearanceDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load referencing orders: %w", err)
	}

	data := s.buildSummaryData(doc, orders)

	rendered, err := s.engine.Render(ctx, "clearance-summary", clearanceSummaryTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render summary template: %w", err)
	}

	result, err := s.renderer.Render(ctx, &printing.RenderRequest{
		HTML:        rendered.HTML,
		PaperSize:   printing.PaperSizeLetter,
		Orientation: printing.OrientationPortrait,
		Margins:     printing.DefaultMargins(),
		Title:       fmt.Sprintf("Resumen %s", doc.DocumentNumber),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render summary PDF: %w", err)
	}

	return &SummaryPDF{
		FileName:  fmt.Sprintf("%s-resumen.pdf", doc.DocumentNumber),
		Content:   result.PDFData,
		PageCount: result.PageCount,
	}, nil
}

// buildSummaryData assembles the template payload from the document aggregate
func (s *SummaryService) buildSummaryData(doc *clearance.ClearanceDocument, orders []procurement.ProcurementOrder) summaryData {
	// Allocated amount per receipt, summed over all cost lines
	allocatedByReceipt := make(map[uuid.UUID]decimal.Decimal, len(doc.Receipts))
	for _, alloc := range doc.Allocations {
		allocatedByReceipt[alloc.ReceiptID] = allocatedByReceipt[alloc.ReceiptID].Add(alloc.Amount)
	}

	receipts := make([]summaryReceipt, 0, len(doc.Receipts))
	for _, link := range doc.Receipts {
		receipts = append(receipts, summaryReceipt{
			Name:       link.ReceiptName,
			AttachedAt: link.AttachedAt,
			Allocated:  allocatedByReceipt[link.ReceiptID],
		})
	}

	costLines := make([]summaryCostLine, 0, len(doc.CostLines))
	for _, line := range doc.CostLines {
		costLines = append(costLines, summaryCostLine{
			Description: line.Description,
			SplitMethod: string(line.SplitMethod),
			Amount:      line.Amount,
		})
	}

	orderRows := make([]summaryOrder, 0, len(orders))
	for i := range orders {
		orderRows = append(orderRows, summaryOrder{
			OrderNumber: orders[i].OrderNumber,
			PartnerName: orders[i].PartnerName,
			Status:      string(orders[i].Status),
		})
	}

	return summaryData{
		DocumentNumber: doc.DocumentNumber,
		CustomsNumber:  doc.CustomsNumber,
		CustomsDate:    doc.CustomsDate,
		Status:         string(doc.Status),
		Remark:         doc.Remark,
		TotalCost:      doc.TotalCost,
		GeneratedAt:    time.Now(),
		Receipts:       receipts,
		CostLines:      costLines,
		Orders:         orderRows,
	}
}

// clearanceSummaryTemplate is the built-in HTML layout for the cost summary
const clearanceSummaryTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Resumen de gastos aduanales</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 12px; color: #1a1a1a; }
  h1 { font-size: 18px; margin-bottom: 2px; }
  h2 { font-size: 13px; margin: 18px 0 6px; border-bottom: 1px solid #999; padding-bottom: 3px; }
  .meta { color: #555; margin-bottom: 14px; }
  .meta span { margin-right: 18px; }
  table { width: 100%; border-collapse: collapse; }
  th { text-align: left; background: #f0f0f0; padding: 5px 8px; border-bottom: 1px solid #ccc; }
  td { padding: 5px 8px; border-bottom: 1px solid #e4e4e4; }
  td.amount, th.amount { text-align: right; white-space: nowrap; }
  tfoot td { font-weight: bold; border-top: 2px solid #999; }
  .status { display: inline-block; padding: 1px 8px; border: 1px solid #999; border-radius: 3px; }
  .empty { color: #888; font-style: italic; }
  .footer { margin-top: 24px; font-size: 10px; color: #888; }
</style>
</head>
<body>
  <h1>Resumen de gastos aduanales</h1>
  <div class="meta">
    <span>Documento: <strong>{{.DocumentNumber}}</strong></span>
    <span>Pedimento: <strong>{{.CustomsNumber}}</strong></span>
    <span>Fecha: {{formatDate .CustomsDate}}</span>
    <span class="status">{{statusText .Status}}</span>
  </div>

  <h2>Conceptos de gasto</h2>
  {{if .CostLines}}
  <table>
    <thead>
      <tr><th>Concepto</th><th>Reparto</th><th class="amount">Importe</th></tr>
    </thead>
    <tbody>
      {{range .CostLines}}
      <tr>
        <td>{{.Description}}</td>
        <td>{{statusText .SplitMethod}}</td>
        <td class="amount">{{formatMoney .Amount}}</td>
      </tr>
      {{end}}
    </tbody>
    <tfoot>
      <tr><td colspan="2">Total</td><td class="amount">{{formatMoney .TotalCost}}</td></tr>
    </tfoot>
  </table>
  {{else}}
  <p class="empty">Sin conceptos de gasto registrados.</p>
  {{end}}

  <h2>Recepciones</h2>
  {{if .Receipts}}
  <table>
    <thead>
      <tr><th>Recepci&oacute;n</th><th>Fecha de enlace</th><th class="amount">Costo asignado</th></tr>
    </thead>
    <tbody>
      {{range .Receipts}}
      <tr>
        <td>{{.Name}}</td>
        <td>{{formatDate .AttachedAt}}</td>
        <td class="amount">{{formatMoney .Allocated}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  {{else}}
  <p class="empty">Sin recepciones enlazadas.</p>
  {{end}}

  <h2>&Oacute;rdenes de compra</h2>
  {{if .Orders}}
  <table>
    <thead>
      <tr><th>Orden</th><th>Proveedor</th><th>Estado</th></tr>
    </thead>
    <tbody>
      {{range .Orders}}
      <tr>
        <td>{{.OrderNumber}}</td>
        <td>{{.PartnerName}}</td>
        <td>{{statusText .Status}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>
  {{else}}
  <p class="empty">Sin &oacute;rdenes que referencien este documento.</p>
  {{end}}

  {{if .Remark}}
  <h2>Observaciones</h2>
  <p>{{.Remark}}</p>
  {{end}}

  <div class="footer">Generado el {{formatDateTime .GeneratedAt}}</div>
</body>
</html>`
