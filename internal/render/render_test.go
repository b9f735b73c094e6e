package render

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/LinkSort/internal/core"
)

func renderString(t *testing.T, rows []core.Row) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Table(rows).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestTable_Render(t *testing.T) {
	rows := []core.Row{
		{Platform: core.Twitter, Username: "alice", URL: "https://twitter.com/alice/status/1"},
		{Platform: core.Instagram, Username: "bob", URL: "https://instagram.com/bob"},
	}

	out := renderString(t, rows)

	for _, want := range []string{
		"<th>Platform</th><th>Username</th><th>Link</th>",
		"<td>Twitter</td><td>alice</td>",
		`<a href="https://twitter.com/alice/status/1"`,
		">https://instagram.com/bob</a>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if strings.Index(out, "Twitter") > strings.Index(out, "Instagram") {
		t.Error("rows rendered out of order")
	}
}

func TestTable_EscapesContent(t *testing.T) {
	rows := []core.Row{
		{Platform: core.Facebook, Username: "<b>x</b>", URL: `javascript:alert("facebook.com")`},
	}

	out := renderString(t, rows)

	if strings.Contains(out, "<b>x</b>") {
		t.Error("username was not escaped")
	}
	if strings.Contains(out, `href="javascript:`) {
		t.Error("unsafe href was not sanitised")
	}
}

func TestTable_Empty(t *testing.T) {
	out := renderString(t, nil)
	if !strings.Contains(out, "No social media links found.") {
		t.Errorf("empty table missing placeholder: %s", out)
	}

	rows, err := ParseTable(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("ParseTable(empty) = %+v, want no rows", rows)
	}
}

func TestRoundTrip(t *testing.T) {
	res := core.Classify([]string{
		"https://twitter.com/alice/status/1",
		"https://www.youtube.com/@chan",
		"https://instagram.com/bob",
		"https://x.com/",
		"https://facebook.com/pages/foo?ref=a&b=<c>",
		"https://example.com/foo",
	})

	html := renderString(t, res.Rows())
	rows, err := ParseTable(strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	if !reflect.DeepEqual(rows, res.Rows()) {
		t.Errorf("round trip rows = %+v\nwant %+v", rows, res.Rows())
	}

	back := core.ResultFromRows(rows)
	if !reflect.DeepEqual(back.Rows(), res.Rows()) {
		t.Errorf("ResultFromRows differs: %+v", back.Rows())
	}
}

func TestRoundTrip_KeepsCellWhitespace(t *testing.T) {
	// Spreadsheet cells reach the classifier unmodified, padding included.
	res := core.Classify([]string{" https://instagram.com/carol ", "https://twitter.com/alice\t"})

	rows, err := ParseTable(strings.NewReader(renderString(t, res.Rows())))
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if !reflect.DeepEqual(rows, res.Rows()) {
		t.Errorf("round trip rows = %+v\nwant %+v", rows, res.Rows())
	}
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []core.Row
	}{
		{
			name: "hand written without tbody or anchors",
			html: `<table><tr><th>Platform</th><th>Username</th><th>Link</th></tr>
				<tr><td> twitter </td><td>alice</td><td>https://x.com/alice</td></tr></table>`,
			want: []core.Row{{Platform: core.Twitter, Username: "alice", URL: "https://x.com/alice"}},
		},
		{
			name: "unknown platform and short rows skipped",
			html: `<table><tbody>
				<tr><td>Myspace</td><td>tom</td><td>https://myspace.com/tom</td></tr>
				<tr><td>YouTube</td><td>chan</td></tr>
				<tr><td>YouTube</td><td></td><td><a href="#">https://youtube.com</a></td></tr>
				</tbody></table>`,
			want: []core.Row{{Platform: core.YouTube, Username: "", URL: "https://youtube.com"}},
		},
		{
			name: "first table only",
			html: `<div><table><tr><td>Facebook</td><td>a</td><td>https://facebook.com/a</td></tr></table>
				<table><tr><td>Facebook</td><td>b</td><td>https://facebook.com/b</td></tr></table></div>`,
			want: []core.Row{{Platform: core.Facebook, Username: "a", URL: "https://facebook.com/a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTable(strings.NewReader(tt.html))
			if err != nil {
				t.Fatalf("ParseTable() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTable() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseTable_NoTable(t *testing.T) {
	_, err := ParseTable(strings.NewReader("<p>nothing here</p>"))
	if !errors.Is(err, ErrInvalidTable) {
		t.Fatalf("err = %v, want ErrInvalidTable", err)
	}
	if got := core.MapError(err).Code; got != "RPT002" {
		t.Errorf("code = %s, want RPT002", got)
	}
}

func TestSummary(t *testing.T) {
	res := core.Classify([]string{"https://twitter.com/a", "https://x.com/b", "https://facebook.com/c"})

	var buf bytes.Buffer
	if err := Summary(res).Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		`<span class="platform">Twitter</span> <span class="count">2</span>`,
		`<span class="platform">YouTube</span> <span class="count">0</span>`,
		`<span class="platform">Total</span> <span class="count">3</span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
