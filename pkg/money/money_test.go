package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewCurrency_Valid(t *testing.T) {
	for _, code := range []string{"NGN", "USD", "GHS", "KES"} {
		c, err := NewCurrency(code)
		if err != nil {
			t.Errorf("NewCurrency(%q) unexpected error: %v", code, err)
		}
		if c.Code() != code {
			t.Errorf("NewCurrency(%q).Code() = %q, want %q", code, c.Code(), code)
		}
	}
}

func TestNewCurrency_Invalid(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"lowercase", "ngn"},
		{"too short", "NG"},
		{"too long", "NGNN"},
		{"digits", "NG1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCurrency(tt.code); err == nil {
				t.Errorf("NewCurrency(%q) expected error, got nil", tt.code)
			}
		})
	}
}

func TestMustCurrency_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCurrency(\"bad\") did not panic")
		}
	}()
	MustCurrency("bad")
}

func TestCurrency_Symbol(t *testing.T) {
	if got := NGN.Symbol(); got != "₦" {
		t.Errorf("NGN.Symbol() = %q, want ₦", got)
	}
	if got := USD.Symbol(); got != "USD" {
		t.Errorf("USD.Symbol() = %q, want USD", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1650000", "1,650,000"},
		{"3850000", "3,850,000"},
		{"1234.5", "1,234.5"},
		{"1234.567", "1,234.57"},
		{"-2500", "-2,500"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := FormatAmount(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("FormatAmount(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(decimal.NewFromInt(825000), "NGN"); got != "₦825,000" {
		t.Errorf("Display NGN = %q", got)
	}
	if got := Display(decimal.NewFromInt(1200), "USD"); got != "USD1,200" {
		t.Errorf("Display USD = %q", got)
	}
	if got := Display(decimal.NewFromInt(10), "naira"); got != "naira10" {
		t.Errorf("Display malformed code = %q", got)
	}
}
