package decode

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// wordNS is the WordprocessingML main namespace.
const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// mcNS is the markup compatibility namespace. Word writes text boxes twice
// under mc:AlternateContent; only the mc:Fallback copy is read.
const mcNS = "http://schemas.openxmlformats.org/markup-compatibility/2006"

// documentPart is the body part inside a .docx package.
const documentPart = "word/document.xml"

// DefaultMaxDocumentXML caps the uncompressed size of word/document.xml.
const DefaultMaxDocumentXML = 64 << 20

// ErrNoDocumentPart is returned when the archive has no word/document.xml.
var ErrNoDocumentPart = errors.New("word/document.xml not found")

// Document extracts the raw text of .docx files.
//
// Paragraphs are separated by a blank line, tabs become "\t" and line breaks
// become "\n". Formatting, headers, footers and hyperlink targets are not
// included; only the visible body text is.
type Document struct {
	// MaxXMLSize caps the uncompressed body size. Zero uses DefaultMaxDocumentXML.
	MaxXMLSize int64
}

// DecodeText returns the NFC-normalised body text of the document.
func (d Document) DecodeText(ctx context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", ErrNoDocumentPart
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", documentPart, err)
	}
	defer rc.Close()

	limit := d.MaxXMLSize
	if limit <= 0 {
		limit = DefaultMaxDocumentXML
	}

	text, err := bodyText(io.LimitReader(rc, limit))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", documentPart, err)
	}
	return norm.NFC.String(text), nil
}

// bodyText walks the WordprocessingML token stream collecting run text.
func bodyText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	inText, inTabStops := false, false
	choiceDepth := 0

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == mcNS && t.Name.Local == "Choice" {
				choiceDepth++
			}
			if t.Name.Space != wordNS || choiceDepth > 0 {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabStops = true
			case "tab":
				if !inTabStops {
					b.WriteByte('\t')
				}
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space == mcNS && t.Name.Local == "Choice" {
				choiceDepth--
				continue
			}
			if t.Name.Space != wordNS || choiceDepth > 0 {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				inTabStops = false
			case "p":
				b.WriteString("\n\n")
			}
		case xml.CharData:
			if inText && choiceDepth == 0 {
				b.Write(t)
			}
		}
	}

	return b.String(), nil
}
