package core

// error_messages.go maps technical errors to user-friendly messages with codes
// for support reference. Users can quote the code when reporting a problem.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum upload size
//	          Action: Split the file or remove unrelated sheets
//	          Patterns: "file too large", "request body too large"
//
//	FILE002 - Invalid spreadsheet: The workbook could not be read
//	          Action: Re-save the file as .xlsx and upload it again
//	          Patterns: "invalid spreadsheet"
//
//	FILE003 - Invalid document: The document could not be read
//	          Action: Re-save the file as .docx and upload it again
//	          Patterns: "invalid document"
//
//	FILE004 - No file: No file was selected
//	          Action: Choose an .xlsx or .docx file to upload
//	          Patterns: "no file provided"
//
//	FILE005 - Invalid form: The upload form could not be read
//	          Action: Reload the page and try again
//	          Patterns: "invalid form"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Upload in progress: A file is already being processed
//	         Action: Wait for the current file to finish
//	         Patterns: "upload in progress"
//
//	UPL002 - System busy: Too many uploads in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many uploads"
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Processing took too long
//	         Action: Try a smaller file
//	         Patterns: "context deadline exceeded"
//
// # Report Errors (RPT001-RPT099)
//
//	RPT001 - No report: Nothing has been processed yet
//	         Action: Upload a file first
//	         Patterns: "no report available"
//
//	RPT002 - Invalid table: The submitted table could not be read
//	         Action: Submit the table exactly as rendered
//	         Patterns: "invalid table"
//
//	RPT003 - Unknown format: Export format is not supported
//	         Action: Choose xlsx or pdf
//	         Patterns: "unknown export format"
//
//	RPT004 - History disabled: Processing history is not configured
//	         Action: Set DATABASE_URL to enable history
//	         Patterns: "history disabled"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// Core sentinel errors are matched with errors.Is first. Other errors fall back
// to patterns, matched case-insensitively with strings.Contains and the first
// match wins, so more specific patterns come first.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Upload state. Checked before the file patterns because a cancelled
	// decode can mention the file kind too.
	{
		pattern: "upload in progress",
		msg: UserMessage{
			Message: "A file is already being processed",
			Action:  "Wait for the current file to finish",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "Too many uploads in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Processing took too long",
			Action:  "Try a smaller file",
			Code:    "UPL005",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file or remove unrelated sheets",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file or remove unrelated sheets",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid spreadsheet",
		msg: UserMessage{
			Message: "The workbook could not be read",
			Action:  "Re-save the file as .xlsx and upload it again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid document",
		msg: UserMessage{
			Message: "The document could not be read",
			Action:  "Re-save the file as .docx and upload it again",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Choose an .xlsx or .docx file to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The upload form could not be read",
			Action:  "Reload the page and try again",
			Code:    "FILE005",
		},
	},

	// Reports
	{
		pattern: "no report available",
		msg: UserMessage{
			Message: "Nothing has been processed yet",
			Action:  "Upload a file first",
			Code:    "RPT001",
		},
	},
	{
		pattern: "invalid table",
		msg: UserMessage{
			Message: "The submitted table could not be read",
			Action:  "Submit the table exactly as rendered",
			Code:    "RPT002",
		},
	},
	{
		pattern: "unknown export format",
		msg: UserMessage{
			Message: "Export format is not supported",
			Action:  "Choose xlsx or pdf",
			Code:    "RPT003",
		},
	},
	{
		pattern: "history disabled",
		msg: UserMessage{
			Message: "Processing history is not configured",
			Action:  "Set DATABASE_URL to enable history",
			Code:    "RPT004",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// sentinelPatterns maps known errors to their pattern. They are checked with
// errors.Is before any string matching.
var sentinelPatterns = []struct {
	err     error
	pattern string
}{
	{ErrUploadInProgress, "upload in progress"},
	{ErrTooManyUploads, "too many uploads"},
	{context.Canceled, "context canceled"},
	{context.DeadlineExceeded, "context deadline exceeded"},
	{ErrInvalidSpreadsheet, "invalid spreadsheet"},
	{ErrInvalidDocument, "invalid document"},
	{ErrNoReport, "no report available"},
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for a nil error.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sp := range sentinelPatterns {
		if errors.Is(err, sp.err) {
			return messageFor(sp.pattern)
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

func messageFor(pattern string) UserMessage {
	for _, ep := range errorPatterns {
		if ep.pattern == pattern {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats an error for display as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
