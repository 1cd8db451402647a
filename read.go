package txm

// ReadWord is the transactional load entry point (spec §4.D, §6). It
// first checks the write-log hashtable for an existing buffered write to
// addr's stripe; a hit with an unmasked sub-entry is returned straight
// from the log (spec §8 property 5, "read-own-writes"), a hit with a
// partial mask is merged against a fresh memory read (spec §8 property 6,
// "masked read merge"), and a miss falls through to the version-consistent
// inner read loop.
//
// On a validation failure it performs the rollback/backoff/restart
// bookkeeping itself (RestartRunning, per spec §4.D step 3's "abort with
// ABORT_READ_VALIDATE via RestartRunning") and returns errRestart; per
// spec §9's replacement for non-local jumps, the caller (the Atomically
// body) is expected to check the error and return early, and Atomically's
// loop re-enters the body.
func ReadWord(txn *Txn, addr *TVar) (uint64, error) {
	if txn == nil || txn.universe == nil {
		return 0, errNotInTransaction("ReadWord")
	}

	if txn.mode == readModeProfiled {
		txn.universe.stats.Incr(StatProfiledReads)
	}

	stripe := txn.universe.stripes.mapAddressToStripe(addr)

	if entry := txn.writeLog.find(stripe); entry != nil {
		if w := entry.findWordLogEntry(addr); w != nil {
			if w.mask == maskFull {
				return w.value, nil
			}
			mem, err := readWordInnerLoop(txn, addr, stripe)
			if err != nil {
				return 0, err
			}
			return mergeWord(mem, w.value, w.mask), nil
		}
	}

	return readWordInnerLoop(txn, addr, stripe)
}

// readWordInnerLoop is ReadWordInnerLoop from spec §4.D step 3: the
// double-version-check bracket around the value load that gives an
// opaque consistent snapshot without holding any lock.
func readWordInnerLoop(txn *Txn, addr *TVar, stripe uintptr) (uint64, error) {
	st := txn.universe.stripes
	version := st.loadVersionLockAcquire(stripe)

	for {
		for version.isLocked() {
			yieldCPU()
			version = st.loadVersionLockAcquire(stripe)
		}

		value := addr.loadAcquire() // bracketed by the version checks below,
		// per spec §4.D step 3.
		version2 := st.loadVersionLockAcquire(stripe)

		if version != version2 {
			version = version2
			yieldCPU()
			continue
		}

		entry := txn.readLog.getNext()
		entry.stripe = stripe
		entry.version = version

		if txn.ShouldExtend(version.timestamp()) {
			if !extend(txn) {
				txn.universe.stats.Incr(StatAbortReadValidate)
				txn.restartRunning()
				return 0, errRestart
			}
		}

		return value, nil
	}
}

// extend is Extend from spec §4.D-ext: advances valid_ts to the current
// clock reading if the read set still validates against it.
func extend(txn *Txn) bool {
	ts := txn.universe.clock.readCurrentTsAcquire()

	if txn.Validate() {
		txn.validTS = ts
		if txn.quiescence != nil {
			txn.quiescence.Store(ts)
		}
		txn.universe.stats.Incr(StatExtendSuccess)
		return true
	}

	txn.universe.stats.Incr(StatExtendFailure)
	return false
}

// LockMemoryStripe is the idempotent buffered-write slot lookup from spec
// §6: it does not touch any shared lock, only prepares (or finds) the
// stripe's WriteLogEntry in this transaction's own write log.
func LockMemoryStripe(txn *Txn, addr *TVar) *WriteLogEntry {
	if txn == nil || txn.universe == nil {
		panic(errNotInTransaction("LockMemoryStripe"))
	}
	stripe := txn.universe.stripes.mapAddressToStripe(addr)

	txn.universe.stats.Incr(StatWrites)

	entry := txn.writeLog.find(stripe)
	if entry == nil {
		txn.universe.stats.Incr(StatNewWrites)
		entry = txn.writeLog.getNext(stripe)
		entry.owner = txn
		entry.clearWordLogEntries()
	}
	return entry
}

// WriteWord appends/merges a word entry into entry's sub-log (spec §6):
// the contract of the log layer, invoked by callers after LockMemoryStripe.
func WriteWord(entry *WriteLogEntry, addr *TVar, value, mask uint64) {
	entry.appendWordLogEntry(addr, value, mask)
}

// Load is the common-case convenience wrapping ReadWord for a whole-word
// read.
func (t *Txn) Load(addr *TVar) (uint64, error) {
	return ReadWord(t, addr)
}

// Store is the common-case convenience combining LockMemoryStripe and an
// unmasked WriteWord (spec §3: LOG_ENTRY_UNMASKED "means the whole word
// is written").
func (t *Txn) Store(addr *TVar, value uint64) {
	entry := LockMemoryStripe(t, addr)
	WriteWord(entry, addr, value, maskFull)
}

// StoreMasked buffers a sub-word write covering only the bits set in
// mask, exercising the masked-write path described in spec §3/§9 and
// tested by scenario S6.
func (t *Txn) StoreMasked(addr *TVar, value, mask uint64) {
	entry := LockMemoryStripe(t, addr)
	WriteWord(entry, addr, value, mask)
}
