package txm

// rollbackRunningInline is RollbackRunningInline from spec §4.G: used when
// the transaction never entered the commit phase, so no stripe locks were
// ever acquired outside of reads (which never hold locks). Idempotent via
// rolledBack.
func (t *Txn) rollbackRunningInline() {
	if t.rolledBack {
		return
	}
	t.rolledBack = true

	t.readLog.clear()
	t.writeLog.clear()

	yieldCPU()
	t.universe.mm.TxAbort()
}

// rollbackCommitting is RollbackCommitting from spec §4.G: used when the
// transaction had acquired write-owner locks (it reached LockWriteSet
// successfully) before something failed. Restores every stripe's old
// version before releasing its write-owner lock, so that readers
// observing the write-lock clear find a coherent version (same ordering
// requirement as UnlockWriteSet).
func rollbackCommitting(t *Txn) {
	if t.rolledBack {
		return
	}
	t.rolledBack = true

	st := t.universe.stripes
	for i := 0; i < t.writeLog.len(); i++ {
		entry := t.writeLog.at(i)
		st.storeVersionLockRelease(entry.stripe, entry.oldVersion)
		st.storeWriteOwnerRelease(entry.stripe, nil)
	}

	t.readLog.clear()
	t.writeLog.clear()

	yieldCPU()
	t.universe.mm.TxAbort()
}

// applyBackoff is the shared tail of RestartRunning/RestartCommitting
// (spec §4.G): saturating succ_aborts increment, optional WaitOnAbort once
// the threshold is crossed.
func (t *Txn) applyBackoff() {
	if t.succAborts < SuccAbortsMax {
		t.succAborts++
	}
	if t.universe.opts.WaitOnSuccAborts && t.succAborts >= SuccAbortsThreshold {
		t.universe.cm.WaitOnAbort(t.succAborts)
	}
}

// finishRestart applies the status/backoff/stat bookkeeping shared by
// restartRunning and restartCommitting, after their rollback has run. The
// clock-overflow path (JumpRestart) does not call it.
func (t *Txn) finishRestart() {
	if t.quiescence != nil {
		t.quiescence.Store(minimumTS)
	}
	t.setStatus(txRestarted)
	t.applyBackoff()
	t.universe.stats.Incr(StatAbort)
	t.universe.stats.TxRestart()
}

// restartRunning is RestartRunning from spec §4.G: rollback (no locks to
// release), publish RESTARTED, apply backoff.
func (t *Txn) restartRunning() {
	t.rollbackRunningInline()
	t.finishRestart()
}

// restartCommitting is RestartCommitting from spec §4.G: rollback
// (release any write-owner locks this commit attempt acquired), publish
// RESTARTED, apply backoff.
func (t *Txn) restartCommitting() {
	rollbackCommitting(t)
	t.finishRestart()
}

// RollbackRunningInline and RollbackCommitting are exported so a veneer
// implementing user-requested abort (not a validation-driven restart) can
// drive rollback without going through the restart jump, per spec §6.
func RollbackRunningInline(txn *Txn) { txn.rollbackRunningInline() }
func RollbackCommitting(txn *Txn)    { rollbackCommitting(txn) }
