package txm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionLockEncoding(t *testing.T) {
	v := newVersionLock(7)
	require.False(t, v.isLocked())
	require.Equal(t, uint64(7), v.timestamp())

	require.True(t, readLockSet.isLocked())
}

func TestStripeMappingIsDeterministic(t *testing.T) {
	st, err := newStripeTable(10)
	require.NoError(t, err)

	a := NewTVar(1)
	s1 := st.mapAddressToStripe(a)
	s2 := st.mapAddressToStripe(a)
	require.Equal(t, s1, s2, "mapping must be a pure function of the address")
	require.Less(t, s1, uintptr(1)<<10)
}

func TestNewStripeTableRejectsBadBits(t *testing.T) {
	_, err := newStripeTable(0)
	require.Error(t, err)
	_, err = newStripeTable(33)
	require.Error(t, err)
}

func TestWriteOwnerLockCASRoundTrip(t *testing.T) {
	st, err := newStripeTable(4)
	require.NoError(t, err)

	require.Nil(t, st.loadWriteOwnerAcquire(0))

	entry := &WriteLogEntry{}
	require.True(t, st.casWriteOwnerRelease(0, nil, entry))
	require.Same(t, entry, st.loadWriteOwnerAcquire(0))

	// A second CAS from nil must fail now that the slot is held.
	other := &WriteLogEntry{}
	require.False(t, st.casWriteOwnerRelease(0, nil, other))

	st.storeWriteOwnerRelease(0, nil)
	require.Nil(t, st.loadWriteOwnerAcquire(0))
}
