package decode

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory .xlsx with build applied to a fresh file.
func workbook(t *testing.T, build func(f *excelize.File)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	build(f)
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// docx builds an in-memory .docx whose body is the given WordprocessingML.
func docx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(documentPart)
	if err != nil {
		t.Fatal(err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + wordNS + `"><w:body>` + body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSpreadsheet_DecodeCells(t *testing.T) {
	data := workbook(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "https://twitter.com/alice")
		f.SetCellValue("Sheet1", "B1", 42)
		f.SetCellValue("Sheet1", "A2", true)
		f.SetCellValue("Sheet1", "C2", "plain text")
		if _, err := f.NewSheet("Second"); err != nil {
			t.Fatal(err)
		}
		f.SetCellValue("Second", "B3", "https://youtube.com/@chan")
	})

	cells, err := Spreadsheet{}.DecodeCells(context.Background(), bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeCells() error = %v", err)
	}

	type key struct {
		sheet    string
		row, col int
		text     bool
	}
	var got []key
	for _, c := range cells {
		got = append(got, key{c.Sheet, c.Row, c.Col, c.Text})
	}
	want := []key{
		{"Sheet1", 1, 1, true},
		{"Sheet1", 1, 2, false},
		{"Sheet1", 2, 1, false},
		{"Sheet1", 2, 3, true},
		{"Second", 3, 2, true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cells = %+v, want %+v", got, want)
	}
	if cells[4].Value != "https://youtube.com/@chan" {
		t.Errorf("Second!B3 = %q", cells[4].Value)
	}
}

func TestSpreadsheet_ThroughPipeline(t *testing.T) {
	data := workbook(t, func(f *excelize.File) {
		f.SetSheetRow("Sheet1", "A1", &[]any{"Name", "Profile"})
		f.SetSheetRow("Sheet1", "A2", &[]any{"Alice", "https://twitter.com/alice/status/1"})
		f.SetSheetRow("Sheet1", "A3", &[]any{"Bob", "https://instagram.com/bob"})
		f.SetSheetRow("Sheet1", "A4", &[]any{"Site", "https://example.com/foo"})
	})

	in := core.NewIngestor(Spreadsheet{}, Document{})
	content, ok, err := in.Ingest(context.Background(), core.KindSpreadsheet, bytes.NewReader(data))
	if err != nil || !ok {
		t.Fatalf("Ingest() = %v, %v", ok, err)
	}

	res := core.Classify(content.Candidates())
	want := []core.Row{
		{Platform: core.Twitter, Username: "alice", URL: "https://twitter.com/alice/status/1"},
		{Platform: core.Instagram, Username: "bob", URL: "https://instagram.com/bob"},
	}
	if got := res.Rows(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rows = %+v, want %+v", got, want)
	}
}

func TestSpreadsheet_Corrupt(t *testing.T) {
	_, err := Spreadsheet{}.DecodeCells(context.Background(), strings.NewReader("not a workbook"))
	if err == nil {
		t.Fatal("expected error for corrupt workbook")
	}
}

func TestSpreadsheet_CancelledContext(t *testing.T) {
	data := workbook(t, func(f *excelize.File) {
		f.SetCellValue("Sheet1", "A1", "https://x.com/a")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Spreadsheet{}.DecodeCells(ctx, bytes.NewReader(data))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDocument_DecodeText(t *testing.T) {
	body := `<w:p><w:r><w:t>Follow https://twitter.com/alice</w:t></w:r>` +
		`<w:r><w:tab/><w:t xml:space="preserve">and </w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>` +
		`<w:r><w:t>https://instagram.com/bob</w:t><w:br/><w:t>end</w:t></w:r></w:p>`

	text, err := Document{}.DecodeText(context.Background(), bytes.NewReader(docx(t, body)))
	if err != nil {
		t.Fatalf("DecodeText() error = %v", err)
	}

	want := "Follow https://twitter.com/alice\tand \n\nhttps://instagram.com/bob\nend\n\n"
	if text != want {
		t.Errorf("DecodeText() = %q, want %q", text, want)
	}

	got := core.ExtractFromText(text)
	if !reflect.DeepEqual(got, []string{"https://twitter.com/alice", "https://instagram.com/bob"}) {
		t.Errorf("ExtractFromText = %q", got)
	}
}

func TestDocument_SplitRunsAndNormalisation(t *testing.T) {
	// Word often splits a URL across runs; the text is joined back together.
	body := `<w:p><w:r><w:t>https://face</w:t></w:r><w:r><w:t>book.com/cafe` + "é" + `</w:t></w:r></w:p>`

	text, err := Document{}.DecodeText(context.Background(), bytes.NewReader(docx(t, body)))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(text, "https://facebook.com/cafeé") {
		t.Errorf("DecodeText() = %q", text)
	}
}

func TestDocument_TextBoxReadOnce(t *testing.T) {
	box := `<w:txbxContent><w:p><w:r><w:t>https://twitter.com/alice</w:t></w:r></w:p></w:txbxContent>`
	body := `<w:p><w:r><w:t>Before</w:t></w:r><w:r>` +
		`<mc:AlternateContent xmlns:mc="` + mcNS + `">` +
		`<mc:Choice Requires="wps"><w:drawing>` + box + `</w:drawing></mc:Choice>` +
		`<mc:Fallback><w:pict>` + box + `</w:pict></mc:Fallback>` +
		`</mc:AlternateContent></w:r><w:r><w:t>After</w:t></w:r></w:p>`

	text, err := Document{}.DecodeText(context.Background(), bytes.NewReader(docx(t, body)))
	if err != nil {
		t.Fatalf("DecodeText() error = %v", err)
	}

	want := "Beforehttps://twitter.com/alice\n\nAfter\n\n"
	if text != want {
		t.Errorf("DecodeText() = %q, want %q", text, want)
	}

	res := core.Classify(core.ExtractFromText(text))
	if got := res.Count(core.Twitter); got != 1 {
		t.Errorf("Twitter links = %d, want 1: %v", got, res.Links(core.Twitter))
	}
}

func TestDocument_Errors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		if _, err := (Document{}).DecodeText(context.Background(), strings.NewReader("plain")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("missing body part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		zw.Create("word/styles.xml")
		zw.Close()

		_, err := Document{}.DecodeText(context.Background(), &buf)
		if !errors.Is(err, ErrNoDocumentPart) {
			t.Errorf("err = %v, want ErrNoDocumentPart", err)
		}
	})

	t.Run("truncated xml", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, _ := zw.Create(documentPart)
		w.Write([]byte(`<w:document xmlns:w="` + wordNS + `"><w:body><w:p>`))
		zw.Close()

		if _, err := (Document{}).DecodeText(context.Background(), &buf); err == nil {
			t.Error("expected error for truncated XML")
		}
	})
}
