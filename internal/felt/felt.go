// Package felt converts between Starknet field elements and Go values.
//
// A felt is an integer in [0, P) where P = 2^251 + 17*2^192 + 1. The package
// owns address normalization, the two-word uint256 layout, short strings and
// the decoders that turn raw starknet_call results into numbers and text.
package felt

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Prime is the Starknet field modulus.
var Prime, _ = new(big.Int).SetString("800000000000011000000000000000000000000000000000000000000000001", 16)

// selectorMask keeps the low 250 bits of a Keccak-256 digest.
var selectorMask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// MaxShortStringLen is the number of ASCII bytes that fit in one felt.
const MaxShortStringLen = 31

// Parse reads a felt written either as 0x-prefixed hex or as a decimal string.
func Parse(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidFelt)
	}

	var (
		v  *big.Int
		ok bool
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := s[2:]
		if digits == "" {
			return nil, fmt.Errorf("%w: %q has no digits", ErrInvalidFelt, s)
		}
		v, ok = new(big.Int).SetString(digits, 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFelt, s)
	}
	if v.Sign() < 0 || v.Cmp(Prime) >= 0 {
		return nil, fmt.Errorf("%w: %q is not below the field prime", ErrInvalidFelt, s)
	}
	return v, nil
}

// MustParse is Parse for package-level constants.
func MustParse(s string) *big.Int {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Hex renders v in the minimal 0x form Starknet JSON-RPC expects
// (no leading zeros, "0x0" for zero).
func Hex(v *big.Int) string {
	if v == nil {
		return "0x0"
	}
	return hexutil.EncodeBig(v)
}

// Selector returns the entry point selector for a Cairo function name:
// Keccak-256 of the name truncated to 250 bits.
func Selector(name string) *big.Int {
	digest := new(big.Int).SetBytes(crypto.Keccak256([]byte(name)))
	return digest.And(digest, selectorMask)
}

// EncodeShortString packs up to 31 ASCII characters into a felt.
func EncodeShortString(s string) (*big.Int, error) {
	if len(s) > MaxShortStringLen {
		return nil, fmt.Errorf("%w: short string %q longer than %d bytes", ErrOutOfRange, s, MaxShortStringLen)
	}
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return nil, fmt.Errorf("%w: short string %q is not ASCII", ErrInvalidFelt, s)
		}
	}
	return new(big.Int).SetBytes([]byte(s)), nil
}

// DecodeShortString unpacks a felt into its ASCII characters.
func DecodeShortString(v *big.Int) string {
	if v == nil || v.Sign() == 0 {
		return ""
	}
	return string(v.Bytes())
}

// DecodeByteArray decodes the Cairo ByteArray serialization:
// [n_full_words, word_0 .. word_{n-1}, pending_word, pending_word_len].
// Full words carry 31 bytes each.
func DecodeByteArray(words []*big.Int) (string, error) {
	if len(words) < 3 {
		return "", &UnrecognizedShapeError{Want: "ByteArray", Words: len(words)}
	}
	n := words[0]
	if !n.IsInt64() || n.Int64() != int64(len(words)-3) {
		return "", &UnrecognizedShapeError{Want: "ByteArray", Words: len(words)}
	}
	full := int(n.Int64())
	pendingLen := words[full+2]
	if !pendingLen.IsInt64() || pendingLen.Int64() < 0 || pendingLen.Int64() >= MaxShortStringLen {
		return "", &UnrecognizedShapeError{Want: "ByteArray", Words: len(words)}
	}

	var sb strings.Builder
	for _, w := range words[1 : full+1] {
		if w.BitLen() > 8*MaxShortStringLen {
			return "", &UnrecognizedShapeError{Want: "ByteArray", Words: len(words)}
		}
		sb.Write(w.FillBytes(make([]byte, MaxShortStringLen)))
	}
	pending := words[full+1]
	if l := int(pendingLen.Int64()); l > 0 {
		if pending.BitLen() > 8*l {
			return "", &UnrecognizedShapeError{Want: "ByteArray", Words: len(words)}
		}
		sb.Write(pending.FillBytes(make([]byte, l)))
	}
	return sb.String(), nil
}
