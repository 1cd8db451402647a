package txm

import "errors"

// Atomically is the external entry point that replaces the original's
// setjmp-style restart primitive (spec §9's design notes: "the
// transaction body is expressed as a closure invoked in a loop... this
// eliminates setjmp-style state and makes the restart backoff and
// counters ordinary sequential code").
//
// body is run against a fresh Txn snapshot on every attempt. If a
// ReadWord/Extend call inside body detects a conflict, it performs its
// own rollback synchronously and returns errRestart; body is expected to
// propagate that error immediately (the idiomatic "if err != nil {
// return err }" shape the teacher's own tests use). Atomically recognizes
// errRestart via errors.Is and re-enters body with a fresh snapshot. Any
// other error returned by body aborts the transaction inline and is
// propagated to the caller unchanged — user-level failures are not
// silently swallowed by the retry loop.
//
// Uses TxTryCommitStatic, which already implements the read-only
// short-circuit spec §4.F describes (scenario S1: a transaction that only
// read never advances the clock or touches a stripe lock).
func Atomically(u *Universe, body func(txn *Txn) error) error {
	txn := newTxn(u)
	return runAtomically(u, txn, body, TxTryCommitStatic)
}

// Run is Atomically's reusable-Txn variant, mirroring the teacher's Run
// (which reuses a *Txn across calls to avoid per-call allocation). u and
// txn must have been constructed together; txn is reset before running
// body.
func Run(u *Universe, txn *Txn, body func(txn *Txn) error) error {
	txn.resetForRetry()
	return runAtomically(u, txn, body, TxTryCommitStatic)
}

// AtomicallyReadOnly is for callers that can prove body performs no
// writes; it drives the commit phase with TxTryCommitReadOnly directly
// rather than TxTryCommitStatic's writeLog.len()==0 check, per spec §4.F
// ("TxTryCommitReadOnly is the asserted-read-only variant that a caller
// may select when it can prove no writes occurred"). Calling this with a
// body that does write is a misuse: the write log is discarded unread.
func AtomicallyReadOnly(u *Universe, body func(txn *Txn) error) error {
	txn := newTxn(u)
	return runAtomically(u, txn, body, func(t *Txn) TryCommitResult {
		return TxTryCommitReadOnly(t)
	})
}

func runAtomically(u *Universe, txn *Txn, body func(txn *Txn) error, tryCommit func(*Txn) TryCommitResult) error {
	txn.quiescence = u.registerQuiescence(txn)
	defer u.unregisterQuiescence(txn)

	for {
		txn.validTS = u.clock.readCurrentTsAcquire()
		if txn.quiescence != nil {
			txn.quiescence.Store(txn.validTS)
		}

		if err := body(txn); err != nil {
			if errors.Is(err, errRestart) {
				txn.resetForRetry()
				continue
			}
			txn.rollbackRunningInline()
			return err
		}

		result := tryCommit(txn)
		if TxCommitAfterTry(txn, result) {
			return nil
		}
		txn.resetForRetry()
	}
}
