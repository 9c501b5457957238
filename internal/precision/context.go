// Package precision holds the precision context threaded through every
// numeric operation. A Context is immutable: changing the digit count means
// building a new Context, which also starts every constant cache afresh.
package precision

import (
	"math/big"

	"github.com/talgya/apery/internal/numerr"
)

const (
	// GuardBits are carried beyond the requested digits so that rounding in
	// intermediate steps stays below the last guaranteed digit.
	GuardBits = 64

	// PracticalFloor is the digit count below which the accuracy guarantees
	// of the engine degrade. Smaller contexts are still permitted.
	PracticalFloor = 15

	// MaxDigits bounds the context so bit counts stay within uint range
	// and evaluation time stays bounded.
	MaxDigits = 1_000_000
)

// Context is the number of significant decimal digits guaranteed through a
// chain of computations, with the matching binary working precision.
type Context struct {
	digits int
	bits   uint // ⌈digits·log2 10⌉
}

// New creates a context guaranteeing digits significant decimal digits.
func New(digits int) (*Context, error) {
	if digits <= 0 {
		return nil, numerr.InvalidArgument("set_precision", "digits must be positive, got %d", digits)
	}
	if digits > MaxDigits {
		return nil, numerr.InvalidArgument("set_precision", "digits %d exceeds maximum %d", digits, MaxDigits)
	}
	// log2(10) = 3.321928..., rounded up in fixed point.
	bits := (uint(digits)*3321929 + 999999) / 1000000
	return &Context{digits: digits, bits: bits}, nil
}

// MustNew is New for digit counts known to be valid (tests, package vars).
func MustNew(digits int) *Context {
	c, err := New(digits)
	if err != nil {
		panic(err)
	}
	return c
}

// Digits returns the guaranteed number of significant decimal digits.
func (c *Context) Digits() int { return c.digits }

// DigitBits returns the binary precision equivalent to Digits, without guard bits.
func (c *Context) DigitBits() uint { return c.bits }

// Prec returns the binary working precision used for every value the engine creates.
func (c *Context) Prec() uint { return c.bits + GuardBits }

// Degraded reports whether the context is below the practical floor.
func (c *Context) Degraded() bool { return c.digits < PracticalFloor }

// NewFloat returns a zero value at the working precision.
func (c *Context) NewFloat() *big.Float {
	return new(big.Float).SetPrec(c.Prec()).SetMode(big.ToNearestEven)
}

// Int returns v at the working precision.
func (c *Context) Int(v int64) *big.Float {
	return c.NewFloat().SetInt64(v)
}

// Rat returns r rounded once to the working precision.
func (c *Context) Rat(r *big.Rat) *big.Float {
	return c.NewFloat().SetRat(r)
}

// Copy returns x re-rounded to the working precision.
func (c *Context) Copy(x *big.Float) *big.Float {
	return c.NewFloat().Set(x)
}

// Parse reads a literal as an exact rational and rounds it once to the
// working precision. Accepted forms: "6", "-0.25", "1.602176634e-19", "1/6".
func (c *Context) Parse(s string) (*big.Float, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, numerr.InvalidArgument("literal", "cannot parse %q as a real number", s)
	}
	return c.Rat(r), nil
}

// MustParse is Parse for literals known to be valid.
func (c *Context) MustParse(s string) *big.Float {
	x, err := c.Parse(s)
	if err != nil {
		panic(err)
	}
	return x
}

// Epsilon returns 10^-digits at the working precision.
func (c *Context) Epsilon() *big.Float {
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(c.digits)), nil)
	den := c.NewFloat().SetInt(pow)
	return c.NewFloat().Quo(c.Int(1), den)
}

// IsNegligible reports whether x is zero at the active precision relative to
// scale, i.e. |x| < |scale|·2^-DigitBits. Exact zero is always negligible.
func (c *Context) IsNegligible(x, scale *big.Float) bool {
	if x.Sign() == 0 {
		return true
	}
	if scale.Sign() == 0 || scale.IsInf() {
		return false
	}
	return x.MantExp(nil) < scale.MantExp(nil)-int(c.bits)
}

// Snap flushes x to exact zero when it is negligible relative to scale.
// Cancellation in a sum of large, nearly equal terms leaves rounding noise,
// not signal; Snap turns that noise into the zero it represents.
func (c *Context) Snap(x, scale *big.Float) *big.Float {
	if x.Sign() != 0 && c.IsNegligible(x, scale) {
		x.SetInt64(0)
	}
	return x
}

// Equal reports whether x and y agree to Digits significant digits.
func (c *Context) Equal(x, y *big.Float) bool {
	diff := c.NewFloat().Sub(x, y)
	if diff.Sign() == 0 {
		return true
	}
	ax := c.NewFloat().Abs(x)
	ay := c.NewFloat().Abs(y)
	scale := ax
	if ay.Cmp(ax) > 0 {
		scale = ay
	}
	if scale.Sign() == 0 {
		return false
	}
	bound := c.NewFloat().Mul(scale, c.Epsilon())
	return diff.Abs(diff).Cmp(bound) <= 0
}

// Text formats x with n significant digits; n <= 0 uses the context's digits.
func (c *Context) Text(x *big.Float, n int) string {
	if n <= 0 {
		n = c.digits
	}
	return x.Text('g', n)
}
