package felt

import (
	"math/big"
	"strings"
)

// addressHexLen is the number of hex digits in a canonical address.
const addressHexLen = 64

// Address is a Starknet contract address in canonical form:
// "0x" followed by 64 lowercase hex digits.
type Address string

// ZeroAddress is the canonical form of felt 0.
const ZeroAddress = Address("0x0000000000000000000000000000000000000000000000000000000000000000")

// NormalizeAddress canonicalizes a hex address given with or without the 0x
// prefix. Normalizing an already-normalized address returns it unchanged.
func NormalizeAddress(input string) (Address, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimPrefix(s, "0x")

	if s == "" {
		return "", &AddressError{Input: input, Reason: "no hex digits"}
	}
	if len(s) > addressHexLen {
		return "", &AddressError{Input: input, Reason: "longer than 64 hex digits"}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", &AddressError{Input: input, Reason: "not a hex string"}
		}
	}

	v, _ := new(big.Int).SetString(s, 16)
	if v.Cmp(Prime) >= 0 {
		return "", &AddressError{Input: input, Reason: "not below the field prime"}
	}

	return Address("0x" + strings.Repeat("0", addressHexLen-len(s)) + s), nil
}

// AddressFromBig converts a felt value into a canonical address.
func AddressFromBig(v *big.Int) (Address, error) {
	if v == nil || v.Sign() < 0 {
		return "", &AddressError{Input: "<negative>", Reason: "negative value"}
	}
	return NormalizeAddress(v.Text(16))
}

// IsAddress reports whether s normalizes to an address.
func IsAddress(s string) bool {
	_, err := NormalizeAddress(s)
	return err == nil
}

func (a Address) String() string { return string(a) }

// BigInt returns the numeric value of the address.
func (a Address) BigInt() *big.Int {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(string(a), "0x"), 16)
	if !ok {
		return new(big.Int)
	}
	return v
}

// Felt returns the minimal hex form used in JSON-RPC parameters.
func (a Address) Felt() string {
	return Hex(a.BigInt())
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a.BigInt().Sign() == 0
}

// Short abbreviates the address for display, e.g. 0x049d…04dc7.
func (a Address) Short() string {
	s := string(a)
	if len(s) <= 14 {
		return s
	}
	return s[:6] + "…" + s[len(s)-5:]
}
