package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/apery/internal/numerr"
	"github.com/talgya/apery/internal/precision"
)

func TestCompareFineStructure(t *testing.T) {
	ctx := precision.MustNew(40)
	r, err := Compare(ctx, ctx.MustParse("137.036"), ctx.MustParse("137.035999084"), ctx.MustParse("0.0001"))
	require.NoError(t, err)

	assert.True(t, r.WithinThreshold)
	mag := ctx.NewFloat().Abs(r.RelativeError)
	assert.Equal(t, -1, mag.Cmp(ctx.MustParse("1e-5")))
	assert.Equal(t, 1, r.RelativeError.Sign())
	// 0.000000916 / 137.035999084 ≈ 6.684e-9
	assert.Equal(t, "6.684e-09", r.RelativeError.Text('e', 3))
	assert.Equal(t, VerdictExact, r.Verdict)
}

func TestCompareDefinitions(t *testing.T) {
	ctx := precision.MustNew(30)
	r, err := Compare(ctx, ctx.Int(99), ctx.Int(100), ctx.MustParse("0.05"))
	require.NoError(t, err)

	assert.True(t, ctx.Equal(r.AbsoluteError, ctx.Int(-1)))
	assert.True(t, ctx.Equal(r.RelativeError, ctx.MustParse("-0.01")))
	assert.True(t, ctx.Equal(r.PercentAccuracy, ctx.Int(99)))
	assert.True(t, ctx.Equal(r.PPM, ctx.Int(10000)))
	assert.True(t, r.WithinThreshold)
	assert.Equal(t, VerdictHit, r.Verdict)
}

func TestThresholdIsStrict(t *testing.T) {
	ctx := precision.MustNew(30)
	r, err := Compare(ctx, ctx.Int(101), ctx.Int(100), ctx.MustParse("0.01"))
	require.NoError(t, err)
	assert.False(t, r.WithinThreshold)
	assert.Equal(t, VerdictNear, r.Verdict)

	r, err = Compare(ctx, ctx.Int(200), ctx.Int(100), ctx.MustParse("0.01"))
	require.NoError(t, err)
	assert.Equal(t, VerdictMiss, r.Verdict)
}

func TestZeroToleranceNeverWithin(t *testing.T) {
	ctx := precision.MustNew(30)
	r, err := Compare(ctx, ctx.Int(5), ctx.Int(5), ctx.Int(0))
	require.NoError(t, err)
	assert.False(t, r.WithinThreshold)
	assert.Equal(t, 0, r.RelativeError.Sign())
}

func TestCompareErrors(t *testing.T) {
	ctx := precision.MustNew(30)

	_, err := Compare(ctx, ctx.MustParse("1.0"), ctx.MustParse("0.0"), ctx.MustParse("0.01"))
	require.ErrorIs(t, err, numerr.ErrComputation)

	_, err = Compare(ctx, ctx.Int(1), ctx.Int(1), ctx.MustParse("-0.1"))
	require.ErrorIs(t, err, numerr.ErrInvalidArgument)
}

func TestCompareDoesNotAliasInputs(t *testing.T) {
	ctx := precision.MustNew(20)
	p := ctx.Int(3)
	r, err := Compare(ctx, p, ctx.Int(4), ctx.Int(1))
	require.NoError(t, err)
	p.SetInt64(100)
	assert.Equal(t, 0, r.Predicted.Cmp(ctx.Int(3)))
}

func TestSigmas(t *testing.T) {
	ctx := precision.MustNew(30)
	s, err := Sigmas(ctx, ctx.MustParse("0.6912"), ctx.MustParse("0.6847"), ctx.MustParse("0.0073"))
	require.NoError(t, err)
	assert.Equal(t, "0.89", s.Text('f', 2))

	_, err = Sigmas(ctx, ctx.Int(1), ctx.Int(1), ctx.Int(0))
	require.ErrorIs(t, err, numerr.ErrInvalidArgument)
}
