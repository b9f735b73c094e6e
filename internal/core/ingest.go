package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

// Declared media types accepted for upload.
const (
	MediaTypeSpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypeDocument    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrInvalidSpreadsheet wraps spreadsheet decoder failures.
	ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")

	// ErrInvalidDocument wraps document decoder failures.
	ErrInvalidDocument = errors.New("invalid document")
)

// Kind is the decoded shape of an uploaded file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindSpreadsheet
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindSpreadsheet:
		return "spreadsheet"
	case KindDocument:
		return "document"
	default:
		return "unsupported"
	}
}

// KindFromMediaType maps a declared Content-Type to a Kind.
// Parameters such as charset are ignored.
func KindFromMediaType(mediaType string) Kind {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		mt = strings.TrimSpace(mediaType)
	}
	switch strings.ToLower(mt) {
	case MediaTypeSpreadsheet:
		return KindSpreadsheet
	case MediaTypeDocument:
		return KindDocument
	default:
		return KindUnsupported
	}
}

// KindFromFilename maps a file extension to a Kind, for callers without a
// declared media type such as the CLI.
func KindFromFilename(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return KindSpreadsheet
	case ".docx":
		return KindDocument
	default:
		return KindUnsupported
	}
}

// Cell is one non-empty spreadsheet cell.
type Cell struct {
	Sheet string
	Row   int // 1-based
	Col   int // 1-based
	Value string
	Text  bool // stored as a string rather than a number, date or boolean
}

// SpreadsheetDecoder decodes every sheet of a workbook into cells in sheet
// order, then row-major order.
type SpreadsheetDecoder interface {
	DecodeCells(ctx context.Context, r io.Reader) ([]Cell, error)
}

// DocumentDecoder extracts the plain text of a word-processing document.
type DocumentDecoder interface {
	DecodeText(ctx context.Context, r io.Reader) (string, error)
}

// Content is the decoded form of one upload.
type Content struct {
	Kind  Kind
	Cells []Cell // textual cells only, for spreadsheets
	Text  string // for documents
}

// Candidates runs the extractor appropriate to the content kind.
func (c Content) Candidates() []string {
	switch c.Kind {
	case KindSpreadsheet:
		return ExtractFromCells(c.Cells)
	case KindDocument:
		return ExtractFromText(c.Text)
	default:
		return nil
	}
}

// Ingestor dispatches uploads to the decoder for their kind.
type Ingestor struct {
	sheets SpreadsheetDecoder
	docs   DocumentDecoder
}

// NewIngestor creates an Ingestor from the two decoders.
func NewIngestor(sheets SpreadsheetDecoder, docs DocumentDecoder) *Ingestor {
	return &Ingestor{sheets: sheets, docs: docs}
}

// Ingest decodes r according to kind. For KindUnsupported it returns ok=false
// and no error: unsupported uploads are ignored, not rejected.
func (in *Ingestor) Ingest(ctx context.Context, kind Kind, r io.Reader) (Content, bool, error) {
	switch kind {
	case KindSpreadsheet:
		cells, err := in.sheets.DecodeCells(ctx, r)
		if err != nil {
			return Content{}, false, decodeError(ErrInvalidSpreadsheet, err)
		}
		text := make([]Cell, 0, len(cells))
		for _, c := range cells {
			if c.Text {
				text = append(text, c)
			}
		}
		return Content{Kind: kind, Cells: text}, true, nil

	case KindDocument:
		body, err := in.docs.DecodeText(ctx, r)
		if err != nil {
			return Content{}, false, decodeError(ErrInvalidDocument, err)
		}
		return Content{Kind: kind, Text: body}, true, nil

	default:
		return Content{}, false, nil
	}
}

// decodeError tags a decoder failure with its kind. Cancellation and deadline
// errors are kept as-is so they are not reported as a corrupt file.
func decodeError(kind, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("decode: %w", err)
	}
	return fmt.Errorf("%w: %w", kind, err)
}
