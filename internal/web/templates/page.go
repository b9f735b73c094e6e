// Package templates holds the HTML views served by the web package.
package templates

//go:generate templ generate

import (
	"strconv"

	"github.com/JonMunkholm/LinkSort/internal/core"
)

// PageData is everything the main page shows.
type PageData struct {
	Report      *core.Report
	Error       *core.UserMessage
	MaxFileSize int64
	History     bool
}

// AcceptTypes lists what the file picker offers.
const AcceptTypes = ".xlsx,.docx," + core.MediaTypeSpreadsheet + "," + core.MediaTypeDocument

// FormatBytes renders a size limit for display.
func FormatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return strconv.FormatInt(n/mb, 10) + " MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
