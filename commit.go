package txm

// TryCommitResult is the outcome of a commit attempt (spec §6).
type TryCommitResult int

const (
	Commit TryCommitResult = iota
	RestartRunningResult
	RestartCommittingResult
	JumpRestart
)

// TxTryCommit is the general commit path (spec §4.F): lock the write set,
// allocate a timestamp, validate (skipping the read-set walk only under
// the strict clock when this transaction was the sole committer since its
// snapshot), install every buffered value, release the stripe locks
// carrying the new version, and publish COMMITTED.
func TxTryCommit(txn *Txn) TryCommitResult {
	return commitWithLockedWriteSet(txn)
}

// TxTryCommitStatic is TxTryCommit's short-circuit variant (spec §4.F):
// when the write log is empty it skips the lock/validate/install phases
// entirely, never advances the clock, and uses valid_ts as the effective
// timestamp passed to the memory manager.
func TxTryCommitStatic(txn *Txn) TryCommitResult {
	if txn.writeLog.len() == 0 {
		txn.universe.stats.Incr(StatCommitReadOnly)
		finishCommit(txn, txn.validTS)
		return Commit
	}
	return commitWithLockedWriteSet(txn)
}

// commitWithLockedWriteSet is the lock/timestamp/validate/install
// sequence shared by TxTryCommit and TxTryCommitStatic's non-empty path
// (spec §4.F steps 1-6).
func commitWithLockedWriteSet(txn *Txn) TryCommitResult {
	if !lockWriteSet(txn) {
		return RestartRunningResult
	}

	ts, overflowed := incrementClock(txn)
	if overflowed {
		return handleClockOverflow(txn)
	}

	if !validateAtCommit(txn, ts) {
		txn.universe.stats.Incr(StatAbortCommitValidate)
		return RestartCommittingResult
	}

	installAndRelease(txn, ts)
	finishCommit(txn, ts)
	return Commit
}

// TxTryCommitReadOnly is the asserted-read-only variant a caller may
// select when it can prove no writes occurred (spec §4.F). It skips the
// lock/timestamp/validate/install phases unconditionally.
//
// spec §9 flags a suspected source defect here: the original references
// `ts` inside the quiescence wait without assigning it locally. This
// implementation resolves that the way spec §9 recommends — using
// valid_ts — and does not apply that resolution anywhere else.
func TxTryCommitReadOnly(txn *Txn) TryCommitResult {
	txn.universe.stats.Incr(StatCommitReadOnly)
	finishCommit(txn, txn.validTS)
	return Commit
}

// incrementClock allocates a commit timestamp and reports whether it
// overflowed MaximumTS (spec §4.F step 2).
func incrementClock(txn *Txn) (ts uint64, overflowed bool) {
	ts = txn.universe.clock.incrementCommitTs()
	return ts, ts >= txn.universe.opts.MaximumTS
}

// validateAtCommit implements spec §4.F step 3: under the strict clock,
// validation is skipped when ts == valid_ts+1 (this transaction was
// provably the only committer since its snapshot); under GV4, validation
// always runs.
func validateAtCommit(txn *Txn, ts uint64) bool {
	switch txn.universe.opts.ClockScheme {
	case CommitTSInc:
		if ts == txn.validTS+1 {
			return true
		}
		return txn.ValidateWithReadLockVersions()
	default: // CommitTSGV4
		return txn.ValidateWithReadLockVersions()
	}
}

// installAndRelease is spec §4.F step 5: for each WriteLogEntry in
// write-log order, install every masked word value, then release the
// stripe's read-lock carrying the new version, then release its
// write-owner lock — in that order, per stripe.
func installAndRelease(txn *Txn, ts uint64) {
	st := txn.universe.stripes
	commitVersion := newVersionLock(ts)

	for i := 0; i < txn.writeLog.len(); i++ {
		entry := txn.writeLog.at(i)

		for w := entry.head; w != nil; w = w.next {
			w.addr.storeRelease(mergeWord(w.addr.loadAcquire(), w.value, w.mask))
		}

		st.storeVersionLockRelease(entry.stripe, commitVersion)
		st.storeWriteOwnerRelease(entry.stripe, nil)
	}
}

// handleClockOverflow is spec §4.F step 2's overflow branch: abort,
// unwind any locks this transaction's commit acquired, and have exactly
// one of any concurrently overflowing committers reset the clock under
// exclusive synchronization.
func handleClockOverflow(txn *Txn) TryCommitResult {
	txn.setStatus(txAborted)
	if txn.quiescence != nil {
		txn.quiescence.Store(minimumTS)
	}

	rollbackCommitting(txn)

	clock := txn.universe.clock
	if clock.startSynchronization() {
		clock.restartCommitTS()
		clock.endSynchronization()
		txn.universe.stats.Incr(StatClockOverflows)
		txn.universe.log.Warn().Msg("commit clock overflow: reset")
	} else {
		clock.waitForSynchronization()
	}

	return JumpRestart
}

// finishCommit is the tail shared by every successful commit path (spec
// §4.F steps 6-8 / TxTryCommitStatic's read-only tail / TxTryCommitReadOnly):
// publish COMMITTED, run the privatization-quiescence handshake if
// configured, clear all logs, hand off to the memory manager, and record
// the coarse COMMIT stat.
func finishCommit(txn *Txn, ts uint64) {
	txn.setStatus(txCommitted)

	if txn.quiescence != nil {
		txn.quiescence.Store(minimumTS)
		txn.universe.privatizationQuiescenceWait(txn, ts)
	}

	txn.writeLog.clear()
	txn.readLog.clear()

	txn.universe.mm.TxCommit(ts)

	txn.universe.stats.Incr(StatCommit)
	txn.succAborts = 0
}

// TxCommitAfterTry is the post-try action dispatcher from spec §6: it
// performs whatever rollback/restart bookkeeping a non-COMMIT result
// requires. It returns true when the transaction committed and the
// caller (Atomically) should stop looping.
func TxCommitAfterTry(txn *Txn, result TryCommitResult) bool {
	switch result {
	case JumpRestart:
		// Rollback, status (left at TX_ABORTED), and the CLOCK_OVERFLOWS
		// stat all already happened inside handleClockOverflow. Per spec
		// §4.G/§6 and the original's JUMP_RESTART dispatch
		// (lazy_impl_inline.h:241-248), this is an immediate restart jump
		// only: no succ_aborts backoff, no ABORT stat, no TxRestart() —
		// unlike RestartRunningResult/RestartCommittingResult below.
		return false
	case RestartRunningResult:
		txn.restartRunning()
		return false
	case RestartCommittingResult:
		txn.restartCommitting()
		return false
	default: // Commit
		txn.universe.stats.TxCommit()
		return true
	}
}
