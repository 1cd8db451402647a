package txm

import "runtime"

// ContentionManager is the collaborator spec §1 and §4.E name as an
// external concern: it decides, when LockWriteSet finds a stripe's
// write-owner lock already held, whether this transaction should abort
// immediately (ShouldAbortWrite) or spin and retry, and provides the
// optional backoff delay after a run of successive aborts (WaitOnAbort).
// Policy choice is explicitly a Non-goal of the core (spec §1); only the
// interface and a reasonable default live here.
type ContentionManager interface {
	// ShouldAbortWrite is consulted with the stripe index whose
	// write-owner lock is currently held by another transaction, and the
	// number of times this same LockWriteSet wait has already polled that
	// lock (0 on the first poll). true means give up and restart; false
	// means spin (the caller reloads with acquire ordering and yields
	// before asking again). attempt is tracked by the caller, per wait,
	// so a ContentionManager implementation needs no mutable state of its
	// own and can safely be shared across concurrently committing
	// transactions.
	ShouldAbortWrite(stripe int, attempt int) bool

	// WaitOnAbort is called by RestartRunning/RestartCommitting once
	// succ_aborts has crossed SuccAbortsThreshold, if
	// WAIT_ON_SUCC_ABORTS is enabled. It should block for some bounded,
	// policy-chosen duration.
	WaitOnAbort(succAborts uint32)
}

// SpinningContentionManager is the package's default ContentionManager.
// With MaxSpins zero (the default) it never gives up and waits for the
// lock indefinitely (mirrors the teacher's tryAcquire-then-retry loop);
// with MaxSpins positive it caps the number of spins before conceding
// defeat. This is the greedy end of the policy spectrum
// spec §1 calls out as deliberately unopinionated.
//
// It holds no per-call mutable state — attempt is supplied by the caller
// each time — so a single instance is safely shared across every
// concurrently committing transaction via Universe.cm.
type SpinningContentionManager struct {
	// MaxSpins bounds how many times ShouldAbortWrite may return false for
	// the same LockWriteSet wait before it gives up. Zero means unbounded
	// (always wait), matching the teacher's tryAcquire loop.
	MaxSpins int
}

func (c *SpinningContentionManager) ShouldAbortWrite(stripe int, attempt int) bool {
	if c.MaxSpins <= 0 {
		return false
	}
	return attempt >= c.MaxSpins
}

func (c *SpinningContentionManager) WaitOnAbort(succAborts uint32) {
	// Bounded cooperative yield; real backoff policy (exponential,
	// randomized) is a Non-goal per spec §1 ("contention-manager policy
	// choice, fairness guarantees").
	for i := uint32(0); i < succAborts; i++ {
		runtime.Gosched()
	}
}
