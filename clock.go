package txm

import "go.uber.org/atomic"

// GlobalClock is the global commit timestamp source (spec §4.B, component
// B): read on validate, advanced on commit. It supports the strict
// fetch-and-add discipline (CommitTSInc) directly; CommitTSGV4 reuses the
// same counter and differs only in how TxTryCommit decides whether to
// skip revalidation (see commit.go) — spec §4.B notes the two schemes
// "affect only whether a post-acquire validation may be skipped".
type GlobalClock struct {
	ts        atomic.Uint64
	resetting atomic.Bool
}

func newGlobalClock() *GlobalClock {
	return &GlobalClock{}
}

// readCurrentTsAcquire is an ordered load of the current commit
// timestamp, used both at transaction start and by Extend.
func (c *GlobalClock) readCurrentTsAcquire() uint64 {
	return c.ts.Load()
}

// incrementCommitTs returns a fresh timestamp strictly greater than any
// previously returned, per spec §4.B.
func (c *GlobalClock) incrementCommitTs() uint64 {
	return c.ts.Add(1)
}

// startSynchronization attempts to become the single thread that resets
// the clock after an overflow (spec §4.F step 2, §5: "only one thread
// performs the reset, others spin"). It returns true for exactly one
// caller among any concurrent overflowing committers; that caller must
// call restartCommitTS then endSynchronization. Every other caller must
// call waitForSynchronization instead.
func (c *GlobalClock) startSynchronization() bool {
	return c.resetting.CompareAndSwap(false, true)
}

func (c *GlobalClock) endSynchronization() {
	c.resetting.Store(false)
}

func (c *GlobalClock) waitForSynchronization() {
	for c.resetting.Load() {
		yieldCPU()
	}
}

// restartCommitTS resets the counter. Must only be called by the thread
// that won startSynchronization, and only on clock overflow.
func (c *GlobalClock) restartCommitTS() {
	c.ts.Store(minimumTS)
}
