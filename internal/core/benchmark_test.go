package core

import (
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Extraction Benchmarks
// ============================================================================

// benchmarkText builds a document body with n links spread through prose.
func benchmarkText(n int) string {
	var sb strings.Builder
	hosts := []string{"twitter.com", "x.com", "youtube.com", "instagram.com", "facebook.com", "example.com"}
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "Paragraph %d mentions https://%s/user%d among other words.\n\n", i, hosts[i%len(hosts)], i)
	}
	return sb.String()
}

// BenchmarkExtractFromText benchmarks URL scanning of document text.
// This runs once per uploaded document over its whole body.
func BenchmarkExtractFromText(b *testing.B) {
	text := benchmarkText(1000)

	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ExtractFromText(text)
	}
}

// BenchmarkExtractFromCells benchmarks candidate collection from a sheet.
func BenchmarkExtractFromCells(b *testing.B) {
	cells := make([]Cell, 5000)
	for i := range cells {
		cells[i] = Cell{Sheet: "Sheet1", Row: i + 1, Col: 1, Value: fmt.Sprintf("https://instagram.com/user%d", i), Text: true}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ExtractFromCells(cells)
	}
}

// ============================================================================
// Classification Benchmarks
// ============================================================================

// BenchmarkClassify benchmarks substring classification, the default mode.
func BenchmarkClassify(b *testing.B) {
	candidates := ExtractFromText(benchmarkText(1000))
	c := NewClassifier()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Classify(candidates)
	}
}

// BenchmarkClassify_StrictHosts benchmarks host matching, which parses every
// candidate before comparing.
func BenchmarkClassify_StrictHosts(b *testing.B) {
	candidates := ExtractFromText(benchmarkText(1000))
	c := NewClassifier(WithStrictHosts(true))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Classify(candidates)
	}
}

// BenchmarkResultRows benchmarks flattening a result for rendering.
func BenchmarkResultRows(b *testing.B) {
	res := Classify(ExtractFromText(benchmarkText(1000)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res.Rows()
	}
}
