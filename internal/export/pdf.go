package export

import (
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/jung-kurt/gofpdf"
)

// DefaultReportTitle is the first line of the PDF report.
const DefaultReportTitle = "Segregated Links Report"

const (
	pdfFont       = "Helvetica"
	pdfLineHeight = 6.0
)

// ReportOptions controls the PDF report header.
type ReportOptions struct {
	// Title defaults to DefaultReportTitle.
	Title string
	// Date printed under the title. Zero uses the current date.
	Date time.Time
}

func (o ReportOptions) withDefaults() ReportOptions {
	if o.Title == "" {
		o.Title = DefaultReportTitle
	}
	if o.Date.IsZero() {
		o.Date = time.Now()
	}
	return o
}

// WritePDF writes the report: title and date on page one, then one section per
// non-empty platform, each after the first starting on a new page.
func WritePDF(w io.Writer, res *core.Result, opts ReportOptions) error {
	pdf := buildPDF(res, opts.withDefaults())
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func buildPDF(res *core.Result, opts ReportOptions) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(opts.Title, true)
	pdf.SetCreationDate(opts.Date)
	pdf.SetAutoPageBreak(true, 15)

	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, 10, tr(opts.Title), "", 1, "L", false, 0, "")
	pdf.SetFont(pdfFont, "", 11)
	pdf.CellFormat(0, 8, "Date: "+opts.Date.Format("2006-01-02"), "", 1, "L", false, 0, "")
	pdf.Ln(pdfLineHeight)

	for i, p := range res.Platforms() {
		if i > 0 {
			pdf.AddPage()
		}

		pdf.SetFont(pdfFont, "B", 14)
		pdf.CellFormat(0, 10, p.String()+" Links", "", 1, "L", false, 0, "")
		pdf.SetFont(pdfFont, "", 11)

		for _, l := range res.Links(p) {
			pdf.MultiCell(0, pdfLineHeight, tr("Username: "+l.Username), "", "L", false)
			pdf.Write(pdfLineHeight, "Link: ")
			pdf.WriteLinkString(pdfLineHeight, tr(l.URL), l.URL)
			pdf.Ln(pdfLineHeight)
			pdf.Ln(pdfLineHeight / 2)
		}
	}

	return pdf
}
