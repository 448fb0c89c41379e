package felt

import (
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

// lowWordMask selects the low 128 bits of a uint256.Int (little-endian limbs).
var lowWordMask = uint256.Int{math.MaxUint64, math.MaxUint64, 0, 0}

// Uint256 is a 256-bit unsigned integer split into two 128-bit words,
// the layout Cairo uses for u256. value = Low + High*2^128.
type Uint256 struct {
	Low  *big.Int
	High *big.Int
}

// SplitUint256 splits v into its low and high words. v must be in [0, 2^256).
func SplitUint256(v *big.Int) (Uint256, error) {
	if v == nil || v.Sign() < 0 {
		return Uint256{}, &RangeError{Value: v, Bits: 256}
	}
	u, overflow := uint256.FromBig(v)
	if overflow {
		return Uint256{}, &RangeError{Value: v, Bits: 256}
	}

	var lo, hi uint256.Int
	lo.And(u, &lowWordMask)
	hi.Rsh(u, 128)
	return Uint256{Low: lo.ToBig(), High: hi.ToBig()}, nil
}

// JoinUint256 recombines two 128-bit words. Words outside [0, 2^128) are
// rejected rather than masked.
func JoinUint256(low, high *big.Int) (*big.Int, error) {
	if err := checkWord(low); err != nil {
		return nil, err
	}
	if err := checkWord(high); err != nil {
		return nil, err
	}
	v := new(big.Int).Lsh(high, 128)
	return v.Or(v, low), nil
}

func checkWord(w *big.Int) error {
	if w == nil || w.Sign() < 0 || w.BitLen() > 128 {
		return &RangeError{Value: w, Bits: 128}
	}
	return nil
}

// Value returns Low + High*2^128.
func (u Uint256) Value() (*big.Int, error) {
	return JoinUint256(u.Low, u.High)
}

// Calldata returns the two words in call order (low first).
func (u Uint256) Calldata() []string {
	return []string{Hex(u.Low), Hex(u.High)}
}
