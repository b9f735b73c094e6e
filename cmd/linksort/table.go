package main

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/LinkSort/internal/core"
	"github.com/JonMunkholm/LinkSort/internal/render"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorBorder = lipgloss.Color("#30363d")
	colorMuted  = lipgloss.Color("#8b949e")
	colorAccent = lipgloss.Color("#58a6ff")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)

	platformColors = map[core.Platform]lipgloss.Color{
		core.Twitter:   lipgloss.Color("#1d9bf0"),
		core.YouTube:   lipgloss.Color("#f85149"),
		core.Instagram: lipgloss.Color("#d29922"),
		core.Facebook:  lipgloss.Color("#3fb950"),
	}
)

// renderTable lays out the rows under the same columns as the web table.
func renderTable(res *core.Result) string {
	rows := res.Rows()
	if len(rows) == 0 {
		return mutedStyle.Render("No social media links found.")
	}

	data := make([][]string, len(rows))
	for i, row := range rows {
		data[i] = []string{row.Platform.String(), row.Username, row.URL}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(render.Columns...).
		Rows(data...).
		StyleFunc(func(r, c int) lipgloss.Style {
			if r == table.HeaderRow {
				return headerStyle
			}
			if c == 0 {
				return cellStyle.Foreground(platformColors[rows[r].Platform])
			}
			return cellStyle
		}).
		String()
}

// renderSummary prints per-platform counts on one line.
func renderSummary(res *core.Result) string {
	var parts []string
	for _, p := range res.Platforms() {
		parts = append(parts, p.String()+" "+strconv.Itoa(res.Count(p)))
	}
	parts = append(parts, "Total "+strconv.Itoa(res.Total()))
	return mutedStyle.Render(strings.Join(parts, "  ·  "))
}
