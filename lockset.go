package txm

// lockWriteSet acquires the write-owner lock for every stripe in the
// write log, in insertion order (spec §4.E, component E). On success,
// every acquired entry's oldVersion is snapshotted and its read-lock set
// to readLockSet, signalling readers that a new version is imminent.
//
// The write-owner CAS uses release ordering on success so it publishes
// before the readLockSet write becomes visible (spec §4.E: "the
// write-owner acquisition must publish (release) before the
// READ_LOCK_SET write becomes visible").
func lockWriteSet(txn *Txn) bool {
	st := txn.universe.stripes

	for i := 0; i < txn.writeLog.len(); i++ {
		entry := txn.writeLog.at(i)

		// The first load is allowed to be relaxed (spec §5); sync/atomic
		// has no relaxed load, so it is an acquire load here. Every
		// reload after a spin decision or a failed CAS is acquire too.
		owner := st.loadWriteOwnerAcquire(entry.stripe)
		attempt := 0

		for {
			for owner != nil {
				if txn.universe.cm.ShouldAbortWrite(int(entry.stripe), attempt) {
					txn.universe.stats.Incr(StatAbortWriteLocked)
					unlockWriteSet(txn, i)
					return false
				}
				attempt++
				yieldCPU()
				owner = st.loadWriteOwnerAcquire(entry.stripe)
			}

			if st.casWriteOwnerRelease(entry.stripe, nil, entry) {
				entry.oldVersion = st.loadVersionLockAcquire(entry.stripe)
				st.storeVersionLockRelease(entry.stripe, readLockSet)
				txn.locked = append(txn.locked, entry)
				break
			}

			yieldCPU()
			owner = st.loadWriteOwnerAcquire(entry.stripe)
		}
	}

	return true
}

// unlockWriteSet rolls back every write-owner lock this transaction
// acquired strictly before writeLog index firstNotLocked (spec §4.E):
// first restore the stripe's old version, then release the write-owner
// lock, so that readers observing the write-lock clear find a coherent
// version rather than a stale readLockSet.
func unlockWriteSet(txn *Txn, firstNotLocked int) {
	st := txn.universe.stripes
	for i := 0; i < firstNotLocked; i++ {
		entry := txn.writeLog.at(i)
		st.storeVersionLockRelease(entry.stripe, entry.oldVersion)
		st.storeWriteOwnerRelease(entry.stripe, nil)
	}
	txn.locked = txn.locked[:0]
}
