// Package solver solves the self-consistency relation x = A − B/x.
//
// Multiplying through by x gives x² − A·x + B = 0, which is solved in
// closed form; there is no iteration. The physically meaningful solution is
// the larger root, so that is what Solve returns. SolveSmaller exposes the
// other root for callers that explicitly want it.
package solver

import (
	"math/big"

	"github.com/talgya/apery/internal/bigmath"
	"github.com/talgya/apery/internal/numerr"
	"github.com/talgya/apery/internal/precision"
)

// Discriminant returns A² − 4B, flushed to zero when it vanishes at the
// active precision. A negative discriminant is a DomainError; one whose
// terms leave the exponent range is a ComputationError.
func Discriminant(ctx *precision.Context, a, b *big.Float) (*big.Float, error) {
	if a.IsInf() || b.IsInf() {
		return nil, numerr.Computation("solve_self_consistent", "coefficient is infinite")
	}
	a2 := ctx.NewFloat().Mul(a, a)
	b4 := ctx.NewFloat().Mul(b, ctx.Int(4))
	if a2.IsInf() || b4.IsInf() {
		return nil, numerr.Computation("solve_self_consistent",
			"discriminant overflows at %d digits", ctx.Digits())
	}
	d := ctx.NewFloat().Sub(a2, b4)

	scale := ctx.NewFloat().Abs(b4)
	if a2.Cmp(scale) > 0 {
		scale = a2
	}
	ctx.Snap(d, scale)

	if d.Sign() < 0 {
		return nil, numerr.Domain("solve_self_consistent",
			"no real self-consistent solution: A²−4B = %s < 0", d.Text('g', 10))
	}
	return d, nil
}

// Solve returns the larger root (A + √(A²−4B)) / 2.
func Solve(ctx *precision.Context, a, b *big.Float) (*big.Float, error) {
	d, err := Discriminant(ctx, a, b)
	if err != nil {
		return nil, err
	}
	root := bigmath.Sqrt(d, ctx.Prec())

	if a.Sign() >= 0 {
		x := ctx.NewFloat().Add(a, root)
		return x.SetMantExp(x, -1), nil
	}
	// A < 0: A + √D cancels, use the conjugate form 2B / (A − √D).
	den := ctx.NewFloat().Sub(a, root)
	x := ctx.NewFloat().Mul(b, ctx.Int(2))
	return x.Quo(x, den), nil
}

// SolveSmaller returns the smaller root (A − √(A²−4B)) / 2.
func SolveSmaller(ctx *precision.Context, a, b *big.Float) (*big.Float, error) {
	d, err := Discriminant(ctx, a, b)
	if err != nil {
		return nil, err
	}
	root := bigmath.Sqrt(d, ctx.Prec())

	if a.Sign() <= 0 {
		x := ctx.NewFloat().Sub(a, root)
		return x.SetMantExp(x, -1), nil
	}
	// A > 0: A − √D cancels, use the conjugate form 2B / (A + √D).
	den := ctx.NewFloat().Add(a, root)
	x := ctx.NewFloat().Mul(b, ctx.Int(2))
	return x.Quo(x, den), nil
}

// Residual returns x − (A − B/x), which vanishes at a self-consistent x.
func Residual(ctx *precision.Context, x, a, b *big.Float) (*big.Float, error) {
	if x.Sign() == 0 {
		return nil, numerr.Computation("residual", "division by zero: x = 0")
	}
	rhs := ctx.NewFloat().Quo(b, x)
	rhs.Sub(a, rhs)
	r := ctx.NewFloat().Sub(x, rhs)
	return ctx.Snap(r, ctx.NewFloat().Abs(x)), nil
}
