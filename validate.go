package txm

// Validate is desc->Validate() from spec §6: true iff every ReadLogEntry's
// recorded version still matches the stripe's current VersionLock value,
// and the stripe is not locked by anyone (including this transaction).
// Used by Extend (read-path revalidation, spec §4.D).
func (t *Txn) Validate() bool {
	st := t.universe.stripes
	for i := 0; i < t.readLog.len(); i++ {
		entry := t.readLog.at(i)
		current := st.loadVersionLockAcquire(entry.stripe)
		if current.isLocked() || current != entry.version {
			return false
		}
	}
	return true
}

// ValidateWithReadLockVersions is desc->ValidateWithReadLockVersions()
// from spec §6: the committer-side variant, which additionally accepts a
// stripe that is locked as valid if it is locked by this transaction's
// own write-owner entry and the version that entry snapshotted when it
// took the lock still equals the recorded one (spec §4.F step 3).
func (t *Txn) ValidateWithReadLockVersions() bool {
	st := t.universe.stripes
	for i := 0; i < t.readLog.len(); i++ {
		entry := t.readLog.at(i)
		current := st.loadVersionLockAcquire(entry.stripe)
		if current.isLocked() {
			if owned := t.writeLog.find(entry.stripe); owned == nil || owned.owner != t || owned.oldVersion != entry.version {
				return false
			}
			continue
		}
		if current != entry.version {
			return false
		}
	}
	return true
}
