package infra

// pdf.go — accounting report rendering using go-pdf/fpdf.
// A4 portrait: header with period, per-group revenue table, totals block.

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// ReportLine is one row of the per-group revenue table.
type ReportLine struct {
	Label    string
	Sessions int
	Amount   decimal.Decimal
}

// AccountingReport is the data rendered by RenderAccountingReport.
type AccountingReport struct {
	Title        string
	Period       string // "2026-08"
	Currency     string
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Net          decimal.Decimal
	Lines        []ReportLine
}

// RenderAccountingReport renders the report as PDF bytes.
func RenderAccountingReport(r AccountingReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 10, r.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Period: "+r.Period, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Per-group table ──────────────────────────────────────────────────────
	col1 := contentW * 0.55 // group
	col2 := contentW * 0.15 // sessions
	col3 := contentW * 0.30 // revenue

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1, 7, "Group", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Sessions", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "Revenue ("+r.Currency+")", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range r.Lines {
		label := line.Label
		if len(label) > 48 {
			label = label[:47] + "…"
		}
		pdf.CellFormat(col1, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", line.Sessions), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, line.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(3)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(col1+col2, 6, "Total income:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, r.TotalIncome.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(col1+col2, 6, "Total expenses:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, r.TotalExpense.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(col1+col2, 8, "NET:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 8, r.Net.StringFixed(2)+" "+r.Currency, "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render report: %w", err)
	}
	return buf.Bytes(), nil
}
