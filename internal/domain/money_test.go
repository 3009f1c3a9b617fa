package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0", want: "$0.00"},
		{in: "8000", want: "$8,000.00"},
		{in: "992000", want: "$992,000.00"},
		{in: "1234567.5", want: "$1,234,567.50"},
		{in: "-100", want: "-$100.00"},
		{in: "123", want: "$123.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := FormatMoney(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "$1,000,000.00", want: "1000000"},
		{in: "$5,000.00", want: "5000"},
		{in: "-$100.25", want: "-100.25"},
		{in: "4000", want: "4000"},
		{in: " $0.01 ", want: "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseMoney(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	for _, in := range []string{"", "$", "abc", "--5", "$1.2.3"} {
		if _, err := ParseMoney(in); !errors.Is(err, ErrInvalidMoney) {
			t.Errorf("ParseMoney(%q): expected ErrInvalidMoney, got %v", in, err)
		}
	}
}

func TestFormatParseMoney_Lossless(t *testing.T) {
	for _, in := range []string{"0.01", "99.99", "1000.10", "123456789012.34"} {
		d := decimal.RequireFromString(in)

		got, err := ParseMoney(FormatMoney(d))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !got.Equal(d) {
			t.Errorf("round trip of %s produced %s", in, got)
		}
	}
}
