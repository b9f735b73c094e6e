// Package export encodes a classification result as a downloadable
// spreadsheet or PDF report.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/LinkSort/internal/core"
)

// ErrUnknownFormat is returned for an export format other than xlsx or pdf.
var ErrUnknownFormat = errors.New("unknown export format")

// Format identifies an export encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// Download file names.
const (
	XLSXFileName = "segregated_links.xlsx"
	PDFFileName  = "segregated_links.pdf"
)

// ParseFormat resolves a format name, ignoring case.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FileName returns the download name for the format.
func (f Format) FileName() string {
	if f == FormatPDF {
		return PDFFileName
	}
	return XLSXFileName
}

// ContentType returns the media type of the encoded file.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return core.MediaTypeSpreadsheet
}

// Write encodes res in the given format.
func Write(w io.Writer, f Format, res *core.Result, opts ReportOptions) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, res)
	case FormatPDF:
		return WritePDF(w, res, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
