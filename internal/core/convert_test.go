package core

import (
	"errors"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// ParseInt Tests
// ----------------------------------------------------------------------------

func TestParseInt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		// Valid
		{name: "plain integer", input: "123", want: 123},
		{name: "zero", input: "0", want: 0},
		{name: "negative", input: "-4", want: -4},
		{name: "surrounding whitespace", input: "  42 ", want: 42},
		{name: "thousands separator", input: "1,234", want: 1234},
		{name: "excel formula prefix", input: `="262100"`, want: 262100},
		{name: "whole decimal", input: "12.0", want: 12},
		{name: "exponent", input: "1e3", want: 1000},

		// Invalid
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "text", input: "abc", wantErr: true},
		{name: "fractional", input: "12.5", wantErr: true},
		{name: "trailing text", input: "12명", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInt(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseInt(%q) = %d, want error", tt.input, got)
				}
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("error %v does not wrap ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseInt(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseInt(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseAmount Tests
// ----------------------------------------------------------------------------

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValue string
		wantErr   bool
	}{
		{name: "integer", input: "900000", wantValue: "900000"},
		{name: "decimal", input: "123.45", wantValue: "123.45"},
		{name: "leading decimal point", input: ".99", wantValue: "0.99"},
		{name: "separators", input: "12,345,678", wantValue: "12345678"},
		{name: "quoted", input: `"500"`, wantValue: "500"},
		{name: "empty", input: "", wantErr: true},
		{name: "currency text", input: "500원", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrMalformed", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.wantValue {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got.String(), tt.wantValue)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// ParseDate Tests
// ----------------------------------------------------------------------------

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{name: "iso", input: "2023-05-31", want: time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "slashes", input: "2023/05/31", want: time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "dots", input: "2023.05.31", want: time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "compact", input: "20230531", want: time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "year month", input: "2023-05", want: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "compact year month", input: "202305", want: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "padded", input: " 2023-05-31 ", want: time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC), wantOK: true},
		{name: "blank", input: "", wantOK: false},
		{name: "invalid day", input: "2023-02-30", wantOK: false},
		{name: "text", input: "unknown", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// CleanCell Tests
// ----------------------------------------------------------------------------

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  value  ", "value"},
		{`="00123"`, "00123"},
		{"=42", "42"},
		{`"quoted"`, "quoted"},
		{"'single'", "single"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \t ") {
		t.Error("IsBlank(whitespace) = false, want true")
	}
	if IsBlank(" 1 ") {
		t.Error("IsBlank(\" 1 \") = true, want false")
	}
}
