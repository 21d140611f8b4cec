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
			name:        "not found",
			err:         fmt.Errorf("%w: %q", ErrNotFound, "Acme"),
			wantCode:    "REG001",
			wantMessage: "No employer matches that name",
		},
		{
			name:        "source unavailable",
			err:         fmt.Errorf("%w: GET https://example.com/data.csv: unexpected HTTP status 503", ErrSource),
			wantCode:    "SRC001",
			wantMessage: "The enrollment dataset could not be loaded",
		},
		{
			name:        "too large before source",
			err:         fmt.Errorf("%w: read more than 10 bytes", ErrTooLarge),
			wantCode:    "SRC002",
			wantMessage: "The enrollment dataset exceeds the size limit",
		},
		{
			name:        "schema mismatch",
			err:         fmt.Errorf("%w: header has 3 columns, want 22", ErrSchemaMismatch),
			wantCode:    "SCH001",
			wantMessage: "The dataset columns do not match the expected layout",
		},
		{
			name:        "malformed wrapped by stage",
			err:         fmt.Errorf("rename_columns: %w", fmt.Errorf("line 3, amount: %w", ErrMalformed)),
			wantCode:    "DAT001",
			wantMessage: "The dataset contains a value that is not a number",
		},
		{
			name:        "decode",
			err:         fmt.Errorf("%w: empty file", ErrDecode),
			wantCode:    "DEC001",
			wantMessage: "The dataset is not valid CSV",
		},
		{
			name:        "invalid query",
			err:         fmt.Errorf("%w: name is required", ErrInvalidQuery),
			wantCode:    "VAL001",
			wantMessage: "Search input is invalid",
		},
		{
			name:        "rate limited",
			err:         fmt.Errorf("%w: 10.0.0.1", ErrRateLimited),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "rate limit text without sentinel",
			err:         errors.New("upstream rate limit exceeded"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "canceled",
			err:         context.Canceled,
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "deadline",
			err:         fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "unknown error",
			err:         errors.New("something strange"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() Code = %v, want %v", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() Message = %v, want %v", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrNotFound)
	want := "No employer matches that name (Code: REG001). Check the spelling or search for a shorter part of the name"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrNotFound, true},
		{ErrSchemaMismatch, true},
		{errors.New("boom"), false},
	}

	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
