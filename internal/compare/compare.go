// Package compare measures how far a predicted value sits from a reference
// value. Inputs are used exactly as given; rounding for display belongs to
// the report layer.
package compare

import (
	"math/big"

	"github.com/talgya/apery/internal/numerr"
	"github.com/talgya/apery/internal/precision"
)

// Verdict buckets a comparison for reports.
type Verdict string

const (
	VerdictExact Verdict = "exact" // within tolerance and below 1 ppm
	VerdictHit   Verdict = "hit"   // within tolerance
	VerdictNear  Verdict = "near"  // within ten times the tolerance
	VerdictMiss  Verdict = "miss"
)

// Result is the deviation of a predicted value from a reference value.
type Result struct {
	Predicted       *big.Float
	Reference       *big.Float
	Tolerance       *big.Float
	AbsoluteError   *big.Float // predicted − reference
	RelativeError   *big.Float // (predicted − reference) / reference
	PercentAccuracy *big.Float // 100·(1 − |relative error|)
	PPM             *big.Float // |relative error|·10⁶
	WithinThreshold bool       // |relative error| < tolerance
	Verdict         Verdict
}

// Compare computes the deviation of predicted from reference and checks it
// against tolerance, a non-negative bound on |relative error|.
func Compare(ctx *precision.Context, predicted, reference, tolerance *big.Float) (Result, error) {
	if tolerance.Sign() < 0 {
		return Result{}, numerr.InvalidArgument("compare", "tolerance must be non-negative, got %s", tolerance.Text('g', 10))
	}
	if reference.Sign() == 0 {
		return Result{}, numerr.Computation("compare", "relative error undefined for zero reference")
	}

	abs := ctx.NewFloat().Sub(predicted, reference)
	rel := ctx.NewFloat().Quo(abs, reference)
	mag := ctx.NewFloat().Abs(rel)

	acc := ctx.NewFloat().Sub(ctx.Int(1), mag)
	acc.Mul(acc, ctx.Int(100))

	ppm := ctx.NewFloat().Mul(mag, ctx.Int(1_000_000))

	r := Result{
		Predicted:       ctx.Copy(predicted),
		Reference:       ctx.Copy(reference),
		Tolerance:       ctx.Copy(tolerance),
		AbsoluteError:   abs,
		RelativeError:   rel,
		PercentAccuracy: acc,
		PPM:             ppm,
		WithinThreshold: mag.Cmp(tolerance) < 0,
	}
	r.Verdict = classify(ctx, r, mag)
	return r, nil
}

func classify(ctx *precision.Context, r Result, mag *big.Float) Verdict {
	if r.WithinThreshold {
		if r.PPM.Cmp(ctx.Int(1)) < 0 {
			return VerdictExact
		}
		return VerdictHit
	}
	near := ctx.NewFloat().Mul(r.Tolerance, ctx.Int(10))
	if mag.Cmp(near) < 0 {
		return VerdictNear
	}
	return VerdictMiss
}

// Sigmas returns |predicted − reference| / uncertainty, the deviation in
// units of the reference's quoted one-sigma uncertainty.
func Sigmas(ctx *precision.Context, predicted, reference, uncertainty *big.Float) (*big.Float, error) {
	if uncertainty.Sign() <= 0 {
		return nil, numerr.InvalidArgument("sigmas", "uncertainty must be positive, got %s", uncertainty.Text('g', 10))
	}
	d := ctx.NewFloat().Sub(predicted, reference)
	d.Abs(d)
	return d.Quo(d, uncertainty), nil
}
