package precision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/apery/internal/numerr"
)

func TestNewRejectsNonPositiveDigits(t *testing.T) {
	for _, d := range []int{0, -1, -100} {
		_, err := New(d)
		require.ErrorIs(t, err, numerr.ErrInvalidArgument, "digits=%d", d)
	}
	_, err := New(MaxDigits + 1)
	require.ErrorIs(t, err, numerr.ErrInvalidArgument)
}

func TestNewPermitsDegradedContexts(t *testing.T) {
	c, err := New(5)
	require.NoError(t, err)
	assert.True(t, c.Degraded())
	assert.False(t, MustNew(50).Degraded())
}

func TestPrecCoversRequestedDigits(t *testing.T) {
	for _, d := range []int{1, 15, 50, 100, 1000} {
		c := MustNew(d)
		// 2^bits must reach 10^digits.
		assert.GreaterOrEqual(t, float64(c.DigitBits()), float64(d)*3.3219280948, "digits=%d", d)
		assert.Equal(t, c.DigitBits()+GuardBits, c.Prec())
	}
}

func TestParseIsExactBeforeRounding(t *testing.T) {
	c := MustNew(40)

	sixth, err := c.Parse("1/6")
	require.NoError(t, err)
	six := c.Int(6)
	prod := c.NewFloat().Mul(sixth, six)
	assert.True(t, c.Equal(prod, c.Int(1)))

	e, err := c.Parse("1.602176634e-19")
	require.NoError(t, err)
	assert.Equal(t, "1.602176634e-19", e.Text('g', 10))

	_, err = c.Parse("pi")
	require.ErrorIs(t, err, numerr.ErrInvalidArgument)
}

func TestEpsilon(t *testing.T) {
	c := MustNew(20)
	assert.Equal(t, "1e-20", c.Epsilon().Text('g', 5))
}

func TestSnapFlushesCancellationNoise(t *testing.T) {
	c := MustNew(30)
	big1 := c.MustParse("137.035999084")
	noise := c.NewFloat().SetMantExp(c.Int(1), -200) // far below 30 digits of 137
	snapped := c.Snap(c.Copy(noise), big1)
	assert.Equal(t, 0, snapped.Sign())

	signal := c.MustParse("0.0001")
	assert.NotEqual(t, 0, c.Snap(c.Copy(signal), big1).Sign())
}

func TestEqual(t *testing.T) {
	c := MustNew(10)
	assert.True(t, c.Equal(c.MustParse("1.00000000001"), c.Int(1)))
	assert.False(t, c.Equal(c.MustParse("1.0001"), c.Int(1)))
	assert.True(t, c.Equal(c.Int(0), c.Int(0)))
	assert.False(t, c.Equal(c.Int(0), c.MustParse("1e-30")))
}

func TestText(t *testing.T) {
	c := MustNew(8)
	assert.Equal(t, "0.33333333", c.Text(c.MustParse("1/3"), 0))
	assert.Equal(t, "0.333", c.Text(c.MustParse("1/3"), 3))
}
