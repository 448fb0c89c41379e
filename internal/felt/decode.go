package felt

import "math/big"

// Shape names a layout a contract call result can take.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeUint256       // [low, high]
	ShapeFelt          // [value]
	ShapeShortString   // [packed ascii]
	ShapeByteArray     // [n, words..., pending, pending_len]
)

func (s Shape) String() string {
	switch s {
	case ShapeUint256:
		return "uint256"
	case ShapeFelt:
		return "felt"
	case ShapeShortString:
		return "short_string"
	case ShapeByteArray:
		return "byte_array"
	default:
		return "unknown"
	}
}

// ParseWords parses every word of a call result.
func ParseWords(words []string) ([]*big.Int, error) {
	out := make([]*big.Int, len(words))
	for i, w := range words {
		v, err := Parse(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// DecodeUint interprets a call result as an unsigned integer. Recognized
// shapes, tried in order: a two-word uint256 and a single felt.
func DecodeUint(words []string) (*big.Int, Shape, error) {
	vals, err := ParseWords(words)
	if err != nil {
		return nil, ShapeUnknown, err
	}
	switch len(vals) {
	case 2:
		v, err := JoinUint256(vals[0], vals[1])
		if err != nil {
			return nil, ShapeUint256, err
		}
		return v, ShapeUint256, nil
	case 1:
		return vals[0], ShapeFelt, nil
	default:
		return nil, ShapeUnknown, &UnrecognizedShapeError{Want: "integer", Words: len(vals)}
	}
}

// DecodeText interprets a call result as a string. Recognized shapes, tried
// in order: a single short-string felt and a Cairo ByteArray.
func DecodeText(words []string) (string, Shape, error) {
	vals, err := ParseWords(words)
	if err != nil {
		return "", ShapeUnknown, err
	}
	if len(vals) == 1 {
		return DecodeShortString(vals[0]), ShapeShortString, nil
	}
	s, err := DecodeByteArray(vals)
	if err != nil {
		return "", ShapeUnknown, &UnrecognizedShapeError{Want: "text", Words: len(vals)}
	}
	return s, ShapeByteArray, nil
}
