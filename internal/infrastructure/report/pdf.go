// Package report renders the quote documents and the ticket spreadsheet.
package report

import (
	"bytes"
	"fmt"
	"time"

	apptic "github.com/agence/backoffice/internal/application/ticketing"
	"github.com/agence/backoffice/internal/domain/ticketing"
	"github.com/agence/backoffice/internal/infrastructure/config"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

var _ apptic.DocumentRenderer = (*PDFRenderer)(nil)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// PDFRenderer draws the client quote and the commission report with gofpdf
type PDFRenderer struct {
	cfg config.ReportConfig
	now func() time.Time
}

// NewPDFRenderer creates a renderer using the agency identity from cfg
func NewPDFRenderer(cfg config.ReportConfig) *PDFRenderer {
	if cfg.FontFamily == "" {
		cfg.FontFamily = "Arial"
	}
	return &PDFRenderer{cfg: cfg, now: time.Now}
}

// RenderQuote renders the client-facing quote: one row per flight with the
// client price in Ariary
func (r *PDFRenderer) RenderQuote(quote *ticketing.Quote) ([]byte, error) {
	pdf, tr := r.newDocument(fmt.Sprintf("Devis %s", quote.Reference))

	r.keyValue(pdf, tr, "Client", quote.ClientName)
	r.keyValue(pdf, tr, "Date", r.now().Format(dateLayout))
	r.keyValue(pdf, tr, "Statut", quote.Status.String())
	pdf.Ln(4)

	widths := []float64{22, 42, 18, 32, 16, 50}
	r.tableHeader(pdf, tr, widths, "Vol", "Itinéraire", "Classe", "Départ", "Pax", "Prix client (Ar)")
	for _, line := range quote.Lines {
		r.tableRow(pdf, tr, widths,
			line.Flight.NumeroVol,
			line.Flight.Itineraire,
			line.Flight.Classe,
			line.Flight.DateHeureDepart.Format(dateTimeLayout),
			fmt.Sprintf("%d", line.PassengerCount),
			formatAriary(line.Pricing.ClientTotalAriary()),
		)
	}

	pdf.Ln(4)
	pdf.SetFont(r.cfg.FontFamily, "B", 11)
	pdf.CellFormat(130, 7, tr("Total"), "", 0, "R", false, 0, "")
	pdf.CellFormat(50, 7, formatAriary(quote.TotalAmount), "", 1, "R", false, 0, "")

	return output(pdf)
}

// RenderCommissionReport renders the management report: company and client
// side of every line and the commission they leave to the agency
func (r *PDFRenderer) RenderCommissionReport(quote *ticketing.Quote) ([]byte, error) {
	pdf, tr := r.newDocument(fmt.Sprintf("Rapport de commission %s", quote.Reference))

	r.keyValue(pdf, tr, "Client", quote.ClientName)
	r.keyValue(pdf, tr, "Date", r.now().Format(dateLayout))
	pdf.Ln(4)

	widths := []float64{22, 40, 16, 20, 40, 40}
	r.tableHeader(pdf, tr, widths, "Vol", "Itinéraire", "Pax", "Devise", "Compagnie (Ar)", "Commission (Ar)")
	for _, line := range quote.Lines {
		r.tableRow(pdf, tr, widths,
			line.Flight.NumeroVol,
			line.Flight.Itineraire,
			fmt.Sprintf("%d", line.PassengerCount),
			line.Pricing.Currency.String(),
			formatAriary(line.Pricing.CompagnieTotalAriary()),
			formatAriary(line.Pricing.Commission),
		)
	}

	pdf.Ln(4)
	pdf.SetFont(r.cfg.FontFamily, "B", 11)
	pdf.CellFormat(138, 7, tr("Total client"), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, formatAriary(quote.TotalAmount), "", 1, "R", false, 0, "")
	pdf.CellFormat(138, 7, tr("Total commission"), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, formatAriary(quote.TotalCommission), "", 1, "R", false, 0, "")

	return output(pdf)
}

func (r *PDFRenderer) newDocument(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator(r.cfg.AgencyName, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont(r.cfg.FontFamily, "B", 14)
	pdf.Cell(0, 8, tr(r.cfg.AgencyName))
	pdf.Ln(6)
	if r.cfg.AgencyAddress != "" {
		pdf.SetFont(r.cfg.FontFamily, "", 9)
		pdf.Cell(0, 5, tr(r.cfg.AgencyAddress))
		pdf.Ln(8)
	}

	pdf.SetFont(r.cfg.FontFamily, "B", 12)
	pdf.Cell(0, 8, tr(title))
	pdf.Ln(10)
	return pdf, tr
}

func (r *PDFRenderer) keyValue(pdf *gofpdf.Fpdf, tr func(string) string, key, value string) {
	pdf.SetFont(r.cfg.FontFamily, "B", 10)
	pdf.CellFormat(30, 6, tr(key), "", 0, "L", false, 0, "")
	pdf.SetFont(r.cfg.FontFamily, "", 10)
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func (r *PDFRenderer) tableHeader(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, titles ...string) {
	pdf.SetFont(r.cfg.FontFamily, "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, title := range titles {
		pdf.CellFormat(widths[i], 7, tr(title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func (r *PDFRenderer) tableRow(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, cells ...string) {
	pdf.SetFont(r.cfg.FontFamily, "", 9)
	last := len(cells) - 1
	for i, cell := range cells {
		align := "L"
		if i == last {
			align = "R"
		}
		pdf.CellFormat(widths[i], 6, tr(cell), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAriary(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
