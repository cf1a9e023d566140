package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1.00, true},
		{"1.0", 1.00, true},
		{"1.23", 1.23, true},
		{"1,23", 1.23, true},
		{"0.01", 0.01, true},
		{"1.005", 1.01, true}, // half-up rounding
		{" 2.50 ", 2.50, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestSanitize(t *testing.T) {
	cases := []struct {
		in  float64
		out float64
	}{
		{0.1 + 0.2, 0.30},
		{10.005, 10.01},
		{10.004, 10.00},
		{-10.005, -10.01},
		{0, 0},
	}
	for _, tc := range cases {
		if got := Sanitize(tc.in); got != tc.out {
			t.Errorf("Sanitize(%v) = %v, want %v", tc.in, got, tc.out)
		}
	}
}

func TestValidAmount(t *testing.T) {
	if ValidAmount(math.NaN()) {
		t.Error("NaN must be invalid")
	}
	if ValidAmount(math.Inf(1)) || ValidAmount(math.Inf(-1)) {
		t.Error("infinities must be invalid")
	}
	if !ValidAmount(12.34) || !ValidAmount(-5) || !ValidAmount(0) {
		t.Error("finite values must be valid")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in  float64
		out string
	}{
		{30, "30.00"},
		{0.1 + 0.2, "0.30"},
		{1234.5, "1234.50"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.out {
			t.Errorf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.out)
		}
	}
}

func TestFormatCurrencyFallback(t *testing.T) {
	// Unknown code falls back to the plain fixed-point form.
	if got := FormatCurrency(5, "???"); got != "5.00" {
		t.Errorf("FormatCurrency fallback = %q, want %q", got, "5.00")
	}
	if got := FormatCurrency(5, "USD"); got == "" {
		t.Error("FormatCurrency(USD) returned empty string")
	}
}
