package txm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeWord(t *testing.T) {
	mem := uint64(0x1111111122222222)
	logged := uint64(0xAAAAAAAA)
	mask := uint64(0x00000000FFFFFFFF)
	require.Equal(t, uint64(0x11111111AAAAAAAA), mergeWord(mem, logged, mask))
}

func TestWordLogCoalescesByMaskOR(t *testing.T) {
	entry := &WriteLogEntry{}
	a := NewTVar(0)

	entry.appendWordLogEntry(a, 0x000000FF, 0x000000FF)
	entry.appendWordLogEntry(a, 0x0000FF00, 0x0000FF00)

	w := entry.findWordLogEntry(a)
	require.NotNil(t, w)
	require.Equal(t, uint64(0x0000FFFF), w.mask)
	require.Equal(t, uint64(0x0000FFFF), w.value)
}

func TestWordLogLastWriteWinsWithinMask(t *testing.T) {
	entry := &WriteLogEntry{}
	a := NewTVar(0)

	entry.appendWordLogEntry(a, 0xAA, 0xFF)
	entry.appendWordLogEntry(a, 0xBB, 0xFF)

	w := entry.findWordLogEntry(a)
	require.Equal(t, uint64(0xBB), w.value)
	require.Equal(t, uint64(0xFF), w.mask)
}

func TestWriteLogGetNextIndexesByStripe(t *testing.T) {
	wl := newWriteLog()
	require.Nil(t, wl.find(3))

	e := wl.getNext(3)
	require.Same(t, e, wl.find(3))
	require.Equal(t, 1, wl.len())

	wl.clear()
	require.Equal(t, 0, wl.len())
	require.Nil(t, wl.find(3))
}

func TestLockMemoryStripeIsIdempotent(t *testing.T) {
	u := newTestUniverse(t)
	txn := newTxn(u)
	a := NewTVar(0)

	e1 := LockMemoryStripe(txn, a)
	e2 := LockMemoryStripe(txn, a)
	require.Same(t, e1, e2)
	require.Equal(t, 1, txn.writeLog.len())
}

func TestReadLogAppendAndClear(t *testing.T) {
	rl := newReadLog()
	e := rl.getNext()
	e.stripe = 5
	e.version = newVersionLock(9)

	require.Equal(t, 1, rl.len())
	got := rl.at(0)
	require.Equal(t, uintptr(5), got.stripe)
	require.Equal(t, uint64(9), got.version.timestamp())

	rl.clear()
	require.Equal(t, 0, rl.len())
}
