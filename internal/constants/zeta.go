package constants

import (
	"math/big"
	"math/bits"

	"github.com/talgya/apery/internal/bigmath"
	"github.com/talgya/apery/internal/precision"
)

// zetaTerms returns the number of terms Borwein's algorithm needs for the
// given digit count. The truncation error is bounded by 3/(3+√8)^n and
// log10(3+√8) ≈ 0.7655, so n ≈ 1.307·digits, plus a small safety margin.
func zetaTerms(digits int) int {
	return digits*1307/1000 + 10
}

// Zeta returns ζ(s) for integer s >= 2 at the precision of ctx. It uses
// Borwein's accelerated alternating series
//
//	ζ(s) = −1/(d_n·(1 − 2^(1−s))) · Σ_{k<n} (−1)^k (d_k − d_n)/(k+1)^s
//
// with the exact integer weights d_k = Σ_{i≤k} n·(n+i−1)!·4^i / ((n−i)!·(2i)!).
// The powers (k+1)^s are taken in floating point, so the cost grows with
// log s rather than s. Callers validate s first.
func Zeta(ctx *precision.Context, s int) *big.Float {
	// ζ(s) − 1 < 2^(1−s), below half an ulp of 1 once s > Prec+1.
	if s > int(ctx.Prec())+1 {
		return ctx.Int(1)
	}

	n := zetaTerms(ctx.Digits())
	d := borweinWeights(n)

	wp := ctx.Prec() + uint(bits.Len(uint(n))) + 8
	newF := func() *big.Float { return new(big.Float).SetPrec(wp).SetMode(big.ToNearestEven) }

	sum := newF()
	num := newF()
	kk := newF()
	diff := new(big.Int)
	for k := 0; k < n; k++ {
		diff.Sub(d[k], d[n])
		num.SetInt(diff)
		num.Quo(num, bigmath.PowInt(kk.SetInt64(int64(k+1)), uint64(s), wp))
		if k%2 == 0 {
			sum.Add(sum, num)
		} else {
			sum.Sub(sum, num)
		}
	}

	// 1 − 2^(1−s)
	factor := newF().SetMantExp(newF().SetInt64(1), 1-s)
	factor.Sub(newF().SetInt64(1), factor)
	factor.Mul(factor, newF().SetInt(d[n]))

	sum.Quo(sum, factor)
	sum.Neg(sum)
	return ctx.Copy(sum)
}

// borweinWeights returns d_0..d_n. Consecutive summands satisfy
// u_{i+1} = u_i · 2(n+i)(n−i) / ((2i+1)(i+1)) and every u_i is an integer,
// so the division is exact.
func borweinWeights(n int) []*big.Int {
	d := make([]*big.Int, n+1)
	u := big.NewInt(1)
	acc := big.NewInt(1)
	d[0] = new(big.Int).Set(acc)
	num := new(big.Int)
	den := new(big.Int)
	for i := 0; i < n; i++ {
		num.SetInt64(2 * int64(n+i) * int64(n-i))
		den.SetInt64(int64(2*i+1) * int64(i+1))
		u.Mul(u, num)
		u.Quo(u, den)
		acc.Add(acc, u)
		d[i+1] = new(big.Int).Set(acc)
	}
	return d
}
