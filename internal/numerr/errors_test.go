package numerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesItsSentinelOnly(t *testing.T) {
	cases := []struct {
		err  error
		want error
		kind Kind
	}{
		{Domain("sqrt", "negative argument %d", -4), ErrDomain, KindDomain},
		{Computation("div", "division by zero"), ErrComputation, KindComputation},
		{InvalidArgument("compare", "negative tolerance"), ErrInvalidArgument, KindInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			assert.ErrorIs(t, tc.err, tc.want)
			for _, other := range []error{ErrDomain, ErrComputation, ErrInvalidArgument} {
				if other != tc.want {
					assert.NotErrorIs(t, tc.err, other)
				}
			}
			assert.Equal(t, tc.kind, KindOf(tc.err))
		})
	}
}

func TestWrappedErrorKeepsKind(t *testing.T) {
	err := fmt.Errorf("evaluate entry: %w", Domain("log", "argument must be > 0"))

	require.ErrorIs(t, err, ErrDomain)
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "log", e.Op)
	assert.Equal(t, "evaluate entry: log: domain error: argument must be > 0", err.Error())
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
	assert.Equal(t, "unknown", Kind(0).String())
}
