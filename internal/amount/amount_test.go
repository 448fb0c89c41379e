package amount

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		raw      int64
		decimals uint8
		expected string
	}{
		{"two decimals", 123, 2, "1.23"},
		{"padded", 5, 3, "0.005"},
		{"no decimals", 1000, 0, "1000"},
		{"exact length", 123, 3, "0.123"},
		{"usdc", 1_500_000, 6, "1.500000"},
		{"zero no decimals", 0, 0, "0"},
		{"zero six decimals", 0, 6, "0.000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(big.NewInt(tt.raw), tt.decimals)
			if got != tt.expected {
				t.Errorf("Format(%d, %d) = %q, want %q", tt.raw, tt.decimals, got, tt.expected)
			}
		})
	}
}

func TestFormat_Zero(t *testing.T) {
	for d := uint8(1); d <= 18; d++ {
		want := "0." + strings.Repeat("0", int(d))
		if got := Format(big.NewInt(0), d); got != want {
			t.Errorf("Format(0, %d) = %q, want %q", d, got, want)
		}
	}
	if got := Format(nil, 2); got != "0.00" {
		t.Errorf("Format(nil, 2) = %q", got)
	}
}

func TestFormat_OneEther(t *testing.T) {
	wei, _ := new(big.Int).SetString("1000000000000000000", 10)
	if got := Format(wei, 18); got != "1.000000000000000000" {
		t.Errorf("got %q", got)
	}
}

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals uint8
		expected string
	}{
		{"ether", "1.5", 18, "1500000000000000000"},
		{"no point", "2", 6, "2000000"},
		{"exact precision", "1.123456", 6, "1123456"},
		{"leading zeros", "007.50", 6, "7500000"},
		{"trailing point", "3.", 2, "300"},
		{"leading point", ".25", 2, "25"},
		{"zero", "0.0", 18, "0"},
		{"no decimals", "42", 0, "42"},
		{"whitespace", " 1.23 ", 2, "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.decimals)
			if err != nil {
				t.Fatalf("Parse(%q, %d) error: %v", tt.input, tt.decimals, err)
			}
			if got.String() != tt.expected {
				t.Errorf("Parse(%q, %d) = %s, want %s", tt.input, tt.decimals, got, tt.expected)
			}
		})
	}
}

func TestParse_TooManyFractionalDigits(t *testing.T) {
	_, err := Parse("1.123456789012345678901", 18)
	if !errors.Is(err, ErrTooManyFractionalDigits) {
		t.Fatalf("expected ErrTooManyFractionalDigits, got %v", err)
	}
	var pe *PrecisionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PrecisionError, got %T", err)
	}
	if pe.MaxDigits != 18 {
		t.Errorf("MaxDigits = %d, want 18", pe.MaxDigits)
	}

	if _, err := Parse("1.5", 0); !errors.Is(err, ErrTooManyFractionalDigits) {
		t.Errorf("expected precision error for decimals=0, got %v", err)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "-1", "1.2.3", "abc", "1e18", ".", "0x10", "1,5"} {
		if _, err := Parse(in, 18); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Parse(%q) expected ErrInvalidAmount, got %v", in, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	limit := new(big.Int).Lsh(big.NewInt(1), 256)
	for d := uint8(0); d <= 18; d++ {
		values := []*big.Int{big.NewInt(0), big.NewInt(1), big.NewInt(999), big.NewInt(1_000_000)}
		for i := 0; i < 10; i++ {
			v, _ := rand.Int(rand.Reader, limit)
			values = append(values, v)
		}
		for _, v := range values {
			got, err := Parse(Format(v, d), d)
			if err != nil {
				t.Fatalf("Parse(Format(%s, %d)) error: %v", v, d, err)
			}
			if got.Cmp(v) != 0 {
				t.Errorf("round trip %s with %d decimals gave %s", v, d, got)
			}
		}
	}
}

func TestTrim(t *testing.T) {
	tests := map[string]string{
		"1.500000": "1.5",
		"2.000":    "2",
		"1000":     "1000",
		"0.000":    "0",
		"0.010":    "0.01",
	}
	for in, want := range tests {
		if got := Trim(in); got != want {
			t.Errorf("Trim(%q) = %q, want %q", in, got, want)
		}
	}
}
