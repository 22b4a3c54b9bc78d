//go:build solo_nochecks

package singleton

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUncheckedAccessorsDoNotPanic(t *testing.T) {
	reg := newTestRegistry()
	c := MutableIn[counter](reg)

	reg.Gate().Lock()
	require.NotPanics(t, func() {
		require.Same(t, c, MutableIn[counter](reg))
	})

	require.NoError(t, reg.Teardown())
	require.NotPanics(t, func() {
		require.Same(t, c, ConstIn[counter](reg))
	})

	// The explicit variants still check.
	_, err := TryConstIn[counter](reg)
	require.ErrorIs(t, err, ErrDestroyed)
}
