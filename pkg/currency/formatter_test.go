package currency

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		amount string
		code   string
		want   string
	}{
		{"207", "EUR", "207.00 EUR"},
		{"207.5", "EUR", "207.50 EUR"},
		{"1240", "EUR", "1,240.00 EUR"},
		{"1234567.891", "BGN", "1,234,567.89 BGN"},
		{"-12.3", "", "-12.30"},
	}

	for _, tt := range tests {
		got := Format(decimal.RequireFromString(tt.amount), tt.code)
		if got != tt.want {
			t.Fatalf("Format(%s, %s): want %q, got %q", tt.amount, tt.code, tt.want, got)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got, err := Normalize(" EUR"); err != nil || got != "EUR" {
		t.Fatalf("want EUR, got %q (%v)", got, err)
	}
	if _, err := Normalize("XYZQ"); err == nil {
		t.Fatalf("expected error for unknown currency")
	}
}
