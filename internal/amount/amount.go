// Package amount formats and parses fixed-point token amounts.
//
// Amounts are held as a non-negative big.Int in the token's smallest unit
// together with the token's decimal count (18 for ETH and STRK, 6 for USDC).
// Conversion is done on decimal strings, never through floating point.
package amount

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	ErrInvalidAmount           = errors.New("amount: invalid amount")
	ErrTooManyFractionalDigits = errors.New("amount: too many fractional digits")
)

// PrecisionError is returned when an input carries more fractional digits
// than the token supports.
type PrecisionError struct {
	Input     string
	MaxDigits int
}

func (e *PrecisionError) Error() string {
	return fmt.Sprintf("amount: %q has more than %d fractional digits", e.Input, e.MaxDigits)
}

func (e *PrecisionError) Unwrap() error { return ErrTooManyFractionalDigits }

// Format renders raw with decimals fractional digits, e.g. Format(123, 2)
// is "1.23" and Format(5, 3) is "0.005". With decimals == 0 the plain integer
// is returned without a decimal point.
func Format(raw *big.Int, decimals uint8) string {
	if raw == nil {
		raw = new(big.Int)
	}
	neg := raw.Sign() < 0
	s := new(big.Int).Abs(raw).String()
	if decimals == 0 {
		if neg {
			return "-" + s
		}
		return s
	}

	d := int(decimals)
	if len(s) <= d {
		s = strings.Repeat("0", d+1-len(s)) + s
	}
	point := len(s) - d
	result := s[:point] + "." + s[point:]
	if neg {
		result = "-" + result
	}
	return result
}

// Trim drops trailing fractional zeros from a formatted amount
// ("1.500000" -> "1.5", "2.000" -> "2").
func Trim(formatted string) string {
	if !strings.Contains(formatted, ".") {
		return formatted
	}
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimSuffix(formatted, ".")
}

// Parse converts a decimal string into the token's smallest unit.
//
// Rules:
//   - Negative, empty or non-numeric input is rejected
//   - At most one decimal point
//   - The fractional part may not be longer than decimals
//   - Without a decimal point the value is multiplied by 10^decimals
func Parse(s string, decimals uint8) (*big.Int, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}
	if strings.HasPrefix(in, "-") {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}

	parts := strings.Split(in, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("%w: %q has more than one decimal point", ErrInvalidAmount, s)
	}
	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q has no digits", ErrInvalidAmount, s)
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}
	if len(frac) > int(decimals) {
		return nil, &PrecisionError{Input: s, MaxDigits: int(decimals)}
	}

	frac += strings.Repeat("0", int(decimals)-len(frac))
	combined := strings.TrimLeft(whole+frac, "0")
	if combined == "" {
		return new(big.Int), nil
	}
	result, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return result, nil
}

func digitsOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
