// Package bigmath implements transcendental functions on big.Float at an
// explicit binary precision. Every function returns a fresh value rounded to
// prec and leaves its arguments untouched.
//
// Callers are responsible for domain checks: Log expects x > 0, Pow expects
// a positive base, Acos expects |x| <= 1.
package bigmath

import (
	"math/big"

	"github.com/ALTree/bigfloat"
)

// guard is the number of extra bits used inside series evaluations.
const guard = 64

func newFloat(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec).SetMode(big.ToNearestEven)
}

func round(x *big.Float, prec uint) *big.Float {
	return newFloat(prec).Set(x)
}

// exponent returns the binary exponent of x (0 for zero).
func exponent(x *big.Float) int {
	return x.MantExp(nil)
}

// Pi returns π computed with Machin's formula π = 16·atan(1/5) − 4·atan(1/239).
func Pi(prec uint) *big.Float {
	wp := prec + guard
	a := atanInv(5, wp)
	b := atanInv(239, wp)
	a.Mul(a, newFloat(wp).SetInt64(16))
	b.Mul(b, newFloat(wp).SetInt64(4))
	return round(a.Sub(a, b), prec)
}

// atanInv returns atan(1/n) = Σ (-1)^k / ((2k+1)·n^(2k+1)) for integer n > 1.
func atanInv(n int64, prec uint) *big.Float {
	nf := newFloat(prec).SetInt64(n)
	n2 := newFloat(prec).Mul(nf, nf)

	power := newFloat(prec).Quo(newFloat(prec).SetInt64(1), nf) // 1/n^(2k+1)
	sum := newFloat(prec).Set(power)
	term := newFloat(prec)
	limit := -int(prec) - 2

	for k := int64(1); ; k++ {
		power.Quo(power, n2)
		if exponent(power) < limit {
			break
		}
		term.Quo(power, newFloat(prec).SetInt64(2*k+1))
		if k%2 == 1 {
			sum.Sub(sum, term)
		} else {
			sum.Add(sum, term)
		}
	}
	return sum
}

// Sqrt returns √x for x >= 0.
func Sqrt(x *big.Float, prec uint) *big.Float {
	if x.Sign() == 0 {
		return newFloat(prec)
	}
	return newFloat(prec).Sqrt(x)
}

// expLimit is the binary exponent past which e^x leaves the big.Float
// exponent range: |x| >= 2^31 gives e^x > 2^MaxExp or e^x < 2^MinExp.
const expLimit = 32

// saturate returns +Inf for positive t and 0 otherwise, the value e^t
// takes once |t| is past expLimit.
func saturate(t *big.Float, prec uint) *big.Float {
	if t.Sign() > 0 {
		return newFloat(prec).SetInf(false)
	}
	return newFloat(prec)
}

// Exp returns e^x. Arguments beyond the exponent range give +Inf or 0
// without running the series.
func Exp(x *big.Float, prec uint) *big.Float {
	if x.IsInf() || exponent(x) >= expLimit {
		return saturate(x, prec)
	}
	return round(bigfloat.Exp(newFloat(prec+guard).Set(x)), prec)
}

// Log returns the natural logarithm of x > 0.
func Log(x *big.Float, prec uint) *big.Float {
	return round(bigfloat.Log(newFloat(prec+guard).Set(x)), prec)
}

// Pow returns base^exp for base > 0 and any real exp. Results beyond the
// exponent range give +Inf or 0.
func Pow(base, exp *big.Float, prec uint) *big.Float {
	if !base.IsInf() && !exp.IsInf() {
		// exp·ln(base) at low precision is enough to spot saturation.
		t := bigfloat.Log(newFloat(guard).Set(base))
		t.Mul(t, exp)
		if t.IsInf() || exponent(t) >= expLimit {
			return saturate(t, prec)
		}
	}
	wp := prec + guard
	return round(bigfloat.Pow(newFloat(wp).Set(base), newFloat(wp).Set(exp)), prec)
}

// PowInt returns x^n for integer n >= 0 by repeated squaring. Negative
// bases are allowed; callers handle negative n by taking the reciprocal.
func PowInt(x *big.Float, n uint64, prec uint) *big.Float {
	wp := prec + guard
	result := newFloat(wp).SetInt64(1)
	base := newFloat(wp).Set(x)
	for n > 0 {
		if n&1 == 1 {
			result.Mul(result, base)
		}
		n >>= 1
		if n > 0 {
			base.Mul(base, base)
		}
	}
	return round(result, prec)
}

// reduce maps x into [-π, π] by subtracting the nearest multiple of 2π.
// The working precision grows with the magnitude of x so that the
// subtraction does not eat into the guaranteed digits.
func reduce(x *big.Float, prec uint) (*big.Float, uint) {
	wp := prec + guard
	if e := exponent(x); e > 0 {
		wp += uint(e)
	}
	r := newFloat(wp).Set(x)
	if exponent(r) < 2 { // |x| < 2 < π
		return r, wp
	}
	twoPi := Pi(wp)
	twoPi.Mul(twoPi, newFloat(wp).SetInt64(2))

	q := newFloat(wp).Quo(r, twoPi)
	k, _ := q.Int(nil)
	// round to nearest: adjust k when the fractional part exceeds one half
	frac := newFloat(wp).Sub(q, newFloat(wp).SetInt(k))
	half := newFloat(wp).SetMantExp(newFloat(wp).SetInt64(1), -1)
	if frac.Cmp(half) > 0 {
		k.Add(k, big.NewInt(1))
	} else if frac.Cmp(newFloat(wp).Neg(half)) < 0 {
		k.Sub(k, big.NewInt(1))
	}
	r.Sub(r, newFloat(wp).Mul(newFloat(wp).SetInt(k), twoPi))
	return r, wp
}

// Sin returns sin(x).
func Sin(x *big.Float, prec uint) *big.Float {
	if x.Sign() == 0 {
		return newFloat(prec)
	}
	r, wp := reduce(x, prec)
	return round(taylor(r, wp, 1), prec)
}

// Cos returns cos(x).
func Cos(x *big.Float, prec uint) *big.Float {
	r, wp := reduce(x, prec)
	return round(taylor(r, wp, 0), prec)
}

// taylor sums Σ (-1)^k r^(2k+start) / (2k+start)! where start is 1 for sine
// and 0 for cosine. Terms are generated by the ratio -r²/((n+1)(n+2)).
func taylor(r *big.Float, prec uint, start int64) *big.Float {
	r2 := newFloat(prec).Mul(r, r)
	term := newFloat(prec).SetInt64(1)
	if start == 1 {
		term.Set(r)
	}
	sum := newFloat(prec).Set(term)
	if r.Sign() == 0 {
		return sum
	}
	limit := exponent(sum) - int(prec) - 2
	for n := start; ; n += 2 {
		term.Mul(term, r2)
		term.Quo(term, newFloat(prec).SetInt64((n+1)*(n+2)))
		term.Neg(term)
		if term.Sign() == 0 || exponent(term) < limit {
			break
		}
		sum.Add(sum, term)
	}
	return sum
}

// Atan returns the arctangent of x in (-π/2, π/2).
func Atan(x *big.Float, prec uint) *big.Float {
	if x.Sign() == 0 {
		return newFloat(prec)
	}
	wp := prec + guard
	neg := x.Sign() < 0
	v := newFloat(wp).Abs(x)
	one := newFloat(wp).SetInt64(1)

	invert := v.Cmp(one) > 0
	if invert {
		v.Quo(one, v)
	}

	// atan(v) = 2·atan(v / (1 + √(1+v²))) until v is small enough for the series.
	doublings := uint(0)
	for exponent(v) > -8 {
		d := newFloat(wp).Mul(v, v)
		d.Add(d, one)
		d.Sqrt(d)
		d.Add(d, one)
		v.Quo(v, d)
		doublings++
	}

	// atan(v) = v - v³/3 + v⁵/5 - ...
	v2 := newFloat(wp).Mul(v, v)
	power := newFloat(wp).Set(v)
	sum := newFloat(wp).Set(v)
	limit := exponent(v) - int(wp) - 2
	term := newFloat(wp)
	for k := int64(1); ; k++ {
		power.Mul(power, v2)
		if exponent(power) < limit {
			break
		}
		term.Quo(power, newFloat(wp).SetInt64(2*k+1))
		if k%2 == 1 {
			sum.Sub(sum, term)
		} else {
			sum.Add(sum, term)
		}
	}
	sum.SetMantExp(sum, int(doublings))

	if invert {
		halfPi := Pi(wp)
		halfPi.SetMantExp(halfPi, -1)
		sum.Sub(halfPi, sum)
	}
	if neg {
		sum.Neg(sum)
	}
	return round(sum, prec)
}

// Acos returns the arccosine of x in [0, π] for -1 <= x <= 1, using
// acos(x) = 2·atan(√((1−x)/(1+x))).
func Acos(x *big.Float, prec uint) *big.Float {
	wp := prec + guard
	one := newFloat(wp).SetInt64(1)
	if x.Cmp(newFloat(wp).Neg(one)) == 0 {
		return Pi(prec)
	}
	num := newFloat(wp).Sub(one, x)
	if num.Sign() == 0 {
		return newFloat(prec)
	}
	den := newFloat(wp).Add(one, x)
	q := newFloat(wp).Quo(num, den)
	q.Sqrt(q)
	a := Atan(q, wp)
	a.SetMantExp(a, 1)
	return round(a, prec)
}

// Degrees converts radians to degrees with the supplied π.
func Degrees(rad, pi *big.Float, prec uint) *big.Float {
	wp := prec + guard
	d := newFloat(wp).Mul(rad, newFloat(wp).SetInt64(180))
	return round(d.Quo(d, pi), prec)
}
