package util

import (
	"testing"
	"time"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "zero bytes", bytes: 0, expected: "0 B"},
		{name: "bytes under kilobyte", bytes: 512, expected: "512 B"},
		{name: "exact kilobyte", bytes: 1024, expected: "1.0 KB"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5 KB"},
		{name: "megabyte", bytes: 1024 * 1024, expected: "1.0 MB"},
		{name: "gigabyte", bytes: 5 * 1024 * 1024 * 1024, expected: "5.0 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatBytes(tt.bytes); got != tt.expected {
				t.Fatalf("FormatBytes(%d) = %s, want %s", tt.bytes, got, tt.expected)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "under one minute", duration: 45 * time.Second, expected: "45s"},
		{name: "rounded second to minute", duration: 59*time.Second + 500*time.Millisecond, expected: "1m0s"},
		{name: "minutes and seconds", duration: 2*time.Minute + 30*time.Second, expected: "2m30s"},
		{name: "hours and minutes", duration: time.Hour + 30*time.Minute, expected: "1h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := FormatDuration(tt.duration); got != tt.expected {
				t.Fatalf("FormatDuration(%s) = %s, want %s", tt.duration, got, tt.expected)
			}
		})
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "bare digits get default country code", raw: "123", expected: "+966123"},
		{name: "leading zero is dropped", raw: "0501234567", expected: "+966501234567"},
		{name: "double zero becomes plus", raw: "00447911123456", expected: "+447911123456"},
		{name: "plus is kept", raw: "+1 (415) 555-0100", expected: "+14155550100"},
		{name: "formatting characters stripped", raw: "050-123 4567", expected: "+966501234567"},
		{name: "empty input", raw: "", expected: ""},
		{name: "no digits", raw: "n/a", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizePhoneNumber(tt.raw, "966"); got != tt.expected {
				t.Fatalf("NormalizePhoneNumber(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestGenerateNumericCode(t *testing.T) {
	t.Parallel()

	code, err := GenerateNumericCode(6)
	if err != nil {
		t.Fatalf("GenerateNumericCode returned error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in code %q", code)
		}
	}

	if _, err := GenerateNumericCode(0); err == nil {
		t.Fatal("expected error for zero digits")
	}
}

func TestChecksum(t *testing.T) {
	t.Parallel()

	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Checksum(nil); got != want {
		t.Fatalf("Checksum(nil) = %s, want %s", got, want)
	}
}

func TestFormatMinorUnits(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		0:    "0.00",
		5:    "0.05",
		5850: "58.50",
		-105: "-1.05",
	}

	for minor, want := range tests {
		if got := FormatMinorUnits(minor); got != want {
			t.Fatalf("FormatMinorUnits(%d) = %q, want %q", minor, got, want)
		}
	}
}
