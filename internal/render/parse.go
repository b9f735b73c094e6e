package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrInvalidTable is returned when the input holds no <table> element.
var ErrInvalidTable = errors.New("invalid table")

// ParseTable reads the rows of the first table in r.
//
// Each body row contributes its Platform cell, its Username cell and the
// anchor text of its Link cell (the cell text when there is no anchor). Anchor
// text is kept exactly as written so a link re-derives to the same string;
// every other cell is trimmed. Rows with fewer than three cells or an unknown
// platform name are skipped.
func ParseTable(r io.Reader) ([]core.Row, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	table := findFirst(doc, atom.Table)
	if table == nil {
		return nil, fmt.Errorf("%w: no table element", ErrInvalidTable)
	}

	rows := []core.Row{}
	for _, tr := range findAll(table, atom.Tr) {
		cells := childElements(tr, atom.Td)
		if len(cells) < 3 {
			continue
		}

		platform, ok := core.ParsePlatform(textContent(cells[0]))
		if !ok {
			continue
		}

		link := textContent(cells[2])
		if a := findFirst(cells[2], atom.A); a != nil {
			link = rawText(a)
		}

		rows = append(rows, core.Row{
			Platform: platform,
			Username: textContent(cells[1]),
			URL:      link,
		})
	}

	return rows, nil
}

func findFirst(n *html.Node, tag atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns the descendants of n with the given tag, in document order.
// Nested tables are not entered.
func findAll(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == tag {
				out = append(out, c)
			}
			if c.DataAtom != atom.Table {
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

func childElements(n *html.Node, tag atom.Atom) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == tag {
			out = append(out, c)
		}
	}
	return out
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(rawText(n))
}

func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		if cur.Type == html.TextNode {
			b.WriteString(cur.Data)
		}
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
