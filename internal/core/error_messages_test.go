package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "request body too large",
			err:         errors.New("http: request body too large"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "wrapped spreadsheet failure",
			err:         fmt.Errorf("process a.xlsx: %w", fmt.Errorf("%w: zip: not a valid zip file", ErrInvalidSpreadsheet)),
			wantCode:    "FILE002",
			wantMessage: "The workbook could not be read",
		},
		{
			name:        "document failure",
			err:         ErrInvalidDocument,
			wantCode:    "FILE003",
			wantMessage: "The document could not be read",
		},
		{
			name:        "upload in progress",
			err:         ErrUploadInProgress,
			wantCode:    "UPL001",
			wantMessage: "A file is already being processed",
		},
		{
			name:        "cancelled decode is not a corrupt file",
			err:         fmt.Errorf("process a.docx: decode: %w", context.Canceled),
			wantCode:    "UPL004",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "no report",
			err:         ErrNoReport,
			wantCode:    "RPT001",
			wantMessage: "Nothing has been processed yet",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("INVALID SPREADSHEET"),
			wantCode:    "FILE002",
			wantMessage: "The workbook could not be read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrNoReport)

	expected := "Nothing has been processed yet (Code: RPT001). Upload a file first"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrTooManyUploads, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapError_SentinelBeatsMessageText(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"file name looks like another error", fmt.Errorf("process upload in progress.xlsx: %w", ErrInvalidSpreadsheet), "FILE002"},
		{"decoder text mentions rate limit", fmt.Errorf("%w: rate limit in xml", ErrInvalidDocument), "FILE003"},
		{"cancelled decode of a spreadsheet", fmt.Errorf("invalid spreadsheet: %w", context.Canceled), "UPL004"},
		{"busy", fmt.Errorf("acquire slot: %w", ErrTooManyUploads), "UPL002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err).Code; got != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got, tt.wantCode)
			}
		})
	}
}
