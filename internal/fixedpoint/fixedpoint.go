// Package fixedpoint provides exact decimal arithmetic for on-chain amounts.
//
// Every on-chain balance is an integer in the asset's base units; the scale
// between base units and human-readable amounts is 10^decimals. Values here
// are immutable: each operation returns a new FixedPoint. Division truncates
// toward zero, which is the rounding the pool contract itself performs.
package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// divPrecision is the number of fractional digits kept by Div. It comfortably
// covers the 256-bit magnitudes that reach us from chain state.
const divPrecision = 38

// FixedPoint is an immutable arbitrary-precision decimal.
type FixedPoint struct {
	d decimal.Decimal
}

// Zero is the zero value, ready to use.
var Zero = FixedPoint{}

// New returns a FixedPoint holding the given integer.
func New(v int64) FixedPoint {
	return FixedPoint{d: decimal.NewFromInt(v)}
}

// FromString parses a decimal string such as "12.345" or "-7".
func FromString(s string) (FixedPoint, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse fixed-point %q: %w", s, err)
	}
	return FixedPoint{d: d}, nil
}

// MustFromString is FromString for constants known to be well formed.
func MustFromString(s string) FixedPoint {
	f, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return f
}

// FromBigInt wraps a big integer, e.g. a 256-bit on-chain value.
func FromBigInt(v *big.Int) FixedPoint {
	return FixedPoint{d: decimal.NewFromBigInt(v, 0)}
}

func (f FixedPoint) Add(o FixedPoint) FixedPoint { return FixedPoint{d: f.d.Add(o.d)} }
func (f FixedPoint) Sub(o FixedPoint) FixedPoint { return FixedPoint{d: f.d.Sub(o.d)} }
func (f FixedPoint) Mul(o FixedPoint) FixedPoint { return FixedPoint{d: f.d.Mul(o.d)} }

// Div divides keeping divPrecision fractional digits, truncated toward zero.
// Division by zero returns Zero; callers guard degenerate reserves upstream.
func (f FixedPoint) Div(o FixedPoint) FixedPoint {
	if o.d.IsZero() {
		return Zero
	}
	q, _ := f.d.QuoRem(o.d, divPrecision)
	return FixedPoint{d: q}
}

// Quo is integer division truncated toward zero, matching the pool contract's
// arithmetic. Division by zero returns Zero.
func (f FixedPoint) Quo(o FixedPoint) FixedPoint {
	if o.d.IsZero() {
		return Zero
	}
	q, _ := f.d.QuoRem(o.d, 0)
	return FixedPoint{d: q}
}

// Mod returns the remainder of f/o. Division by zero returns Zero.
func (f FixedPoint) Mod(o FixedPoint) FixedPoint {
	if o.d.IsZero() {
		return Zero
	}
	return FixedPoint{d: f.d.Mod(o.d)}
}

// Pow raises f to a non-negative integer exponent.
func (f FixedPoint) Pow(n int32) FixedPoint {
	p, _ := f.d.PowInt32(n)
	return FixedPoint{d: p}
}

func (f FixedPoint) Abs() FixedPoint { return FixedPoint{d: f.d.Abs()} }
func (f FixedPoint) Neg() FixedPoint { return FixedPoint{d: f.d.Neg()} }

// Sqrt returns the integer square root of the truncated value: the largest n
// with n*n <= floor(f). Newton's method on big integers keeps the result
// bit-for-bit equal to the on-chain root. Negative input returns Zero.
func (f FixedPoint) Sqrt() FixedPoint {
	n := f.d.BigInt()
	if n.Sign() <= 0 {
		return Zero
	}
	x := new(big.Int).Set(n)
	y := new(big.Int).Add(x, big.NewInt(1))
	y.Rsh(y, 1)
	for y.Cmp(x) < 0 {
		x.Set(y)
		t := new(big.Int).Quo(n, x)
		y = t.Add(t, x).Rsh(t, 1)
	}
	return FromBigInt(x)
}

func (f FixedPoint) Cmp(o FixedPoint) int                 { return f.d.Cmp(o.d) }
func (f FixedPoint) Equal(o FixedPoint) bool              { return f.d.Equal(o.d) }
func (f FixedPoint) LessThan(o FixedPoint) bool           { return f.d.LessThan(o.d) }
func (f FixedPoint) LessThanOrEqual(o FixedPoint) bool    { return f.d.LessThanOrEqual(o.d) }
func (f FixedPoint) GreaterThan(o FixedPoint) bool        { return f.d.GreaterThan(o.d) }
func (f FixedPoint) GreaterThanOrEqual(o FixedPoint) bool { return f.d.GreaterThanOrEqual(o.d) }
func (f FixedPoint) IsZero() bool                         { return f.d.IsZero() }
func (f FixedPoint) IsNegative() bool                     { return f.d.IsNegative() }
func (f FixedPoint) IsPositive() bool                     { return f.d.IsPositive() }
func (f FixedPoint) Sign() int                            { return f.d.Sign() }

// Min returns the smaller of the two values.
func Min(a, b FixedPoint) FixedPoint {
	if a.d.LessThan(b.d) {
		return a
	}
	return b
}

// Max returns the larger of the two values.
func Max(a, b FixedPoint) FixedPoint {
	if a.d.GreaterThan(b.d) {
		return a
	}
	return b
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi FixedPoint) FixedPoint {
	return Min(Max(v, lo), hi)
}

// ParseUnits scales a human-readable decimal string into base units,
// truncating anything finer than the asset's precision.
func ParseUnits(value string, decimals uint8) (FixedPoint, error) {
	f, err := FromString(value)
	if err != nil {
		return Zero, err
	}
	return FixedPoint{d: f.d.Shift(int32(decimals)).Truncate(0)}, nil
}

// FormatUnits scales a base-unit amount back to a human-readable value.
// The shift is exact; no digits are lost.
func FormatUnits(value FixedPoint, decimals uint8) FixedPoint {
	return FixedPoint{d: value.d.Shift(-int32(decimals))}
}

// Truncate drops fractional digits past places, rounding toward zero.
func (f FixedPoint) Truncate(places int32) FixedPoint {
	return FixedPoint{d: f.d.Truncate(places)}
}

// Floor rounds down to the nearest integer.
func (f FixedPoint) Floor() FixedPoint {
	return FixedPoint{d: f.d.Floor()}
}

// ToSignificant renders at most sig significant digits, rounding down.
// Display only: values fed back into a transaction must never pass through
// this.
func (f FixedPoint) ToSignificant(sig int32) string {
	if sig <= 0 || f.d.IsZero() {
		return "0"
	}
	digits := int32(f.d.NumDigits())
	if digits <= sig {
		return f.d.String()
	}
	// digits+exponent is the position of the most significant digit, so this
	// keeps exactly sig digits of the coefficient.
	places := sig - digits - f.d.Exponent()
	return f.d.RoundDown(places).String()
}

// BigInt returns the value truncated toward zero as a big integer.
func (f FixedPoint) BigInt() *big.Int { return f.d.BigInt() }

// Decimal exposes the underlying decimal for storage drivers.
func (f FixedPoint) Decimal() decimal.Decimal { return f.d }

// String renders the exact decimal value, trailing zeros stripped.
func (f FixedPoint) String() string { return f.d.String() }

// MarshalJSON encodes the value as a JSON string to avoid float coercion.
func (f FixedPoint) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.d.String() + `"`), nil
}

// UnmarshalJSON accepts both string and bare-number encodings.
func (f *FixedPoint) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	f.d = d
	return nil
}
