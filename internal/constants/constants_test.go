package constants

import (
	"math"
	"math/big"
	"sync"
	"testing"
	"testing/quick"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/apery/internal/numerr"
	"github.com/talgya/apery/internal/precision"
)

const (
	aperyDigits = "1.2020569031595942853997381615114499907649862923404988817922715553418382057863"
	phiDigits   = "1.6180339887498948482045868343656381177203091798057628621354486227052604628189"
	piDigits    = "3.1415926535897932384626433832795028841971693993751058209749445923078164062862"
)

func TestKnownValues(t *testing.T) {
	ctx := precision.MustNew(60)
	p := NewProvider(ctx)

	pi, err := p.Get(PI, 0)
	require.NoError(t, err)
	assert.True(t, ctx.Equal(pi, ctx.MustParse(piDigits)))

	phi, err := p.Get(PHI, 0)
	require.NoError(t, err)
	assert.True(t, ctx.Equal(phi, ctx.MustParse(phiDigits)))

	z3, err := p.Get(ZETA, 3)
	require.NoError(t, err)
	assert.True(t, ctx.Equal(z3, ctx.MustParse(aperyDigits)))
}

func TestZetaEvenClosedForms(t *testing.T) {
	ctx := precision.MustNew(80)
	p := NewProvider(ctx)
	pi := p.Pi()

	// ζ(2) = π²/6
	z2, err := p.Zeta(2)
	require.NoError(t, err)
	want := ctx.NewFloat().Mul(pi, pi)
	want.Quo(want, ctx.Int(6))
	assert.True(t, ctx.Equal(z2, want), "ζ(2)=%s want %s", z2.Text('g', 30), want.Text('g', 30))

	// ζ(4) = π⁴/90
	z4, err := p.Zeta(4)
	require.NoError(t, err)
	pi2 := ctx.NewFloat().Mul(pi, pi)
	want = ctx.NewFloat().Mul(pi2, pi2)
	want.Quo(want, ctx.Int(90))
	assert.True(t, ctx.Equal(z4, want))
}

func TestZetaLargeArgumentApproachesOne(t *testing.T) {
	ctx := precision.MustNew(30)
	z, err := NewProvider(ctx).Zeta(120)
	require.NoError(t, err)
	// ζ(120) − 1 ≈ 2^-120 ≈ 7.5e-37, invisible at 30 digits.
	assert.True(t, ctx.Equal(z, ctx.Int(1)))
}

func TestZetaHugeArgumentIsCheap(t *testing.T) {
	for _, tc := range []struct{ digits, s int }{
		{30, 1_000_000},
		{30, math.MaxInt32},
		{1000, 3000}, // still below the working precision, runs the series
	} {
		ctx := precision.MustNew(tc.digits)
		start := time.Now()
		z, err := NewProvider(ctx).Zeta(tc.s)
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 2*time.Second, "ζ(%d) at %d digits", tc.s, tc.digits)

		// ζ(s) − 1 is 2^-s to well within the digits kept.
		want := ctx.NewFloat().SetMantExp(ctx.Int(1), -tc.s)
		want.Add(want, ctx.Int(1))
		assert.True(t, ctx.Equal(z, want), "ζ(%d) = %s", tc.s, z.Text('g', 20))
	}
}

func TestZetaTailBelowTheDigits(t *testing.T) {
	ctx := precision.MustNew(60)
	z, err := NewProvider(ctx).Zeta(150)
	require.NoError(t, err)
	// ζ(150) = 1 + 2^-150 + 3^-150 + … and 3^-150 is 27 orders below 2^-150.
	tail := ctx.NewFloat().Sub(z, ctx.Int(1))
	tail.SetMantExp(tail, 150)
	assert.Equal(t, "1", tail.Text('g', 15))
}

func TestZetaDomain(t *testing.T) {
	p := NewProvider(precision.MustNew(20))
	for _, n := range []int{1, 0, -3} {
		_, err := p.Get(ZETA, n)
		require.ErrorIs(t, err, numerr.ErrDomain, "n=%d", n)
	}
	_, err := p.Get(Kind(42), 0)
	require.ErrorIs(t, err, numerr.ErrInvalidArgument)
}

func TestParamIgnoredForPiAndPhi(t *testing.T) {
	ctx := precision.MustNew(25)
	p := NewProvider(ctx)
	a, err := p.Get(PI, 0)
	require.NoError(t, err)
	b, err := p.Get(PI, 17)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Cmp(b))
}

func TestDeterminism(t *testing.T) {
	ctx := precision.MustNew(40)
	cached := NewProvider(ctx)

	prop := func(raw uint8) bool {
		n := int(raw%12) + 2
		a, err := cached.Zeta(n)
		if err != nil {
			return false
		}
		b, err := cached.Zeta(n)
		if err != nil {
			return false
		}
		fresh, err := NewProvider(ctx).Zeta(n)
		if err != nil {
			return false
		}
		return a.Cmp(b) == 0 && a.Cmp(fresh) == 0
	}
	require.NoError(t, quick.Check(prop, &quick.Config{MaxCount: 20}))
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := precision.MustNew(30)
	p := NewProvider(ctx)
	a := p.Pi()
	a.SetInt64(4)
	assert.True(t, ctx.Equal(p.Pi(), ctx.MustParse(piDigits)))
}

// stableDigits counts the leading significant digits x shares with ref.
func stableDigits(x, ref *big.Float, max int) int {
	n := 0
	for d := 1; d <= max; d++ {
		if !precision.MustNew(d).Equal(x, ref) {
			break
		}
		n = d
	}
	return n
}

func TestPrecisionMonotonicity(t *testing.T) {
	for _, n := range []int{2, 3, 5, 7} {
		refCtx := precision.MustNew(140)
		ref, err := NewProvider(refCtx).Zeta(n)
		require.NoError(t, err)

		last := 0
		for _, d := range []int{8, 15, 30, 60, 100} {
			z, err := NewProvider(precision.MustNew(d)).Zeta(n)
			require.NoError(t, err)
			got := stableDigits(z, ref, 120)
			assert.GreaterOrEqual(t, got, last, "ζ(%d) at %d digits", n, d)
			assert.GreaterOrEqual(t, got, d, "ζ(%d) at %d digits", n, d)
			last = got
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := precision.MustNew(50)
	p := NewProvider(ctx)
	want := p.Pi()

	var wg sync.WaitGroup
	results := make([]*big.Float, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = p.Pi()
				return
			}
			z, _ := p.Zeta(3)
			results[i] = z
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if i%2 == 0 {
			assert.Equal(t, 0, r.Cmp(want))
		} else {
			assert.True(t, ctx.Equal(r, ctx.MustParse(aperyDigits)))
		}
	}
}

func TestGoldenPowers(t *testing.T) {
	ctx := precision.MustNew(50)
	p := NewProvider(ctx)
	phi := p.Phi()

	// φ² = φ + 1
	assert.True(t, ctx.Equal(p.PhiPow(2), ctx.NewFloat().Add(phi, ctx.Int(1))))
	// φ⁻¹ = φ − 1
	assert.True(t, ctx.Equal(p.PhiPow(-1), ctx.NewFloat().Sub(phi, ctx.Int(1))))
	assert.Equal(t, 0, p.PhiPow(0).Cmp(ctx.Int(1)))
	assert.Len(t, GoldenLadder, 7)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"pi": PI, " PHI ": PHI, "Zeta": ZETA} {
		k, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, k)
	}
	_, err := ParseKind("e")
	require.ErrorIs(t, err, numerr.ErrInvalidArgument)
	assert.Equal(t, "ζ(3)", ZETA.Symbol(3))
	assert.Equal(t, "π", PI.Symbol(0))
}
