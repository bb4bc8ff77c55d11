// Package pdf renders cart quotes (presupuestos) with go-pdf/fpdf.
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"posfront/internal/cart"
	"posfront/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateQuotePDF writes an A4 presupuesto for the given snapshot and
// totals into storagePath (created if needed) and returns the file path.
// The quote is informative, it carries no fiscal validity.
func GenerateQuotePDF(snapshot model.CartSnapshot, totals model.CartTotals, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("presupuesto_%s.pdf", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Presupuesto", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, time.Now().Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 5, "Documento no valido como factura", "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Client ───────────────────────────────────────────────────────────────
	if snapshot.Client != nil {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 5, "Cliente", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW, 5, snapshot.Client.Name, "", 1, "L", false, 0, "")
		if snapshot.Client.Document != "" {
			pdf.CellFormat(contentW, 5, "NIF/CUIT: "+snapshot.Client.Document, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	// ── Item table ────────────────────────────────────────────────────────────
	col1 := contentW * 0.42 // product
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.16 // unit price
	col4 := contentW * 0.14 // discount
	col5 := contentW * 0.16 // total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Precio", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Desc", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col5, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range snapshot.Lines {
		lt := cart.CalculateLineTotals(line)
		pdf.CellFormat(col1, 6, truncateName(line.Name, 38), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, line.Quantity.String(), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+line.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+lt.Discount.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, "$"+lt.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ────────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3 + col4
	totalRow := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(col5, 6, value, "", 1, "R", false, 0, "")
	}

	totalRow("Subtotal:", "$"+totals.Subtotal.StringFixed(2), false)
	if !totals.LineDiscounts.IsZero() {
		totalRow("Descuentos por linea:", "-$"+totals.LineDiscounts.StringFixed(2), false)
	}
	if !totals.GlobalDiscounts.IsZero() {
		totalRow("Descuento global:", "-$"+totals.GlobalDiscounts.StringFixed(2), false)
	}
	totalRow("IVA:", "$"+totals.Tax.StringFixed(2), false)
	if !totals.LogisticsCost.IsZero() {
		totalRow("Logistica:", "$"+totals.LogisticsCost.StringFixed(2), false)
	}
	totalRow("TOTAL:", "$"+totals.Total.StringFixed(2), true)

	// ── Notes ─────────────────────────────────────────────────────────────────
	if snapshot.Note != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, "Obs: "+snapshot.Note, "", "L", false)
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// truncateName shortens a product name to max runes. Names carry accented
// characters, so the cut happens on rune boundaries, never mid-sequence.
func truncateName(name string, max int) string {
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max-1]) + "…"
}
