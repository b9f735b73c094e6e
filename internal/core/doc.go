// Package core provides the business logic for extracting and sorting social links.
//
// This package is the heart of LinkSort, containing all domain logic independent
// of any UI or transport layer. It can be used by web handlers, the CLI, or tests
// without modification.
//
// # Pipeline
//
// A processing run moves strictly forward through four steps:
//
//  1. Ingest: the uploaded file is decoded according to its declared media type.
//     Spreadsheets become a flat list of textual cells, documents become plain text.
//  2. Extract: candidates are taken from the decoded content. Cell values pass
//     through unchanged; document text is scanned for http(s) URLs.
//  3. Classify: each candidate is matched against the platform table and its
//     username is derived from the first path segment.
//  4. Report: the classified links become a [Report] owned by the caller's session.
//
// Rendering and export live in the render and export packages; they consume a
// [Result] and never reach back into the service.
//
// # Platforms
//
// The platform set is closed: Twitter, YouTube, Instagram, Facebook, in that order.
// Candidates matching none of them are dropped without error.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: File errors (size, decoding, missing file)
//   - UPL001-UPL005: Upload errors (in progress, busy, cancelled, timeout)
//   - RPT001-RPT002: Report errors (no report, unreadable table)
//   - RATE001: Rate limiting
package core
