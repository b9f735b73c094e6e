// Package render turns a classification result into HTML and reads a rendered
// table back into rows.
package render

//go:generate templ generate

// Column headings of the rendered table, in order.
var Columns = []string{"Platform", "Username", "Link"}

// TableID is the element id of the rendered table.
const TableID = "links-table"
