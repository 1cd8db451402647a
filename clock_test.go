package txm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClockIncrementIsMonotonic(t *testing.T) {
	c := newGlobalClock()
	last := c.readCurrentTsAcquire()
	for i := 0; i < 1000; i++ {
		next := c.incrementCommitTs()
		require.Greater(t, next, last)
		last = next
	}
}

func TestClockSynchronizationBarrier(t *testing.T) {
	c := newGlobalClock()
	c.ts.Store(100)

	require.True(t, c.startSynchronization())
	require.False(t, c.startSynchronization(), "only one caller may win the barrier")

	c.restartCommitTS()
	require.Equal(t, uint64(0), c.readCurrentTsAcquire())

	c.endSynchronization()
	require.True(t, c.startSynchronization(), "barrier must be reusable after EndSynchronization")
}
