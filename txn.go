package txm

import (
	"go.uber.org/atomic"
)

// txStatus mirrors TX_ACTIVE/TX_COMMITTED/TX_ABORTED/TX_RESTARTED from
// spec §3. It is published with release ordering on every transition so
// that an acquire-load observer (none exist in this package today, but
// the field is kept atomic per spec §5's ordering guarantee) sees every
// prior per-stripe release.
type txStatus uint32

const (
	txActive txStatus = iota
	txCommitted
	txAborted
	txRestarted
)

// readMode is the tagged-variant dispatch spec §9's design notes call for
// in place of the original's first-write function-pointer installation
// (FirstWriteSetFunPtr / FirstWriteSetFunPtrProfiled): chosen once at
// transaction construction from Options.ProfilingAdaptiveDynamic, not
// mutated at runtime. ReadWord checks this on every call: readModeProfiled
// pays for a StatProfiledReads increment per read (mirroring the
// original's separate ReadWordProfiled dispatch target), readModePlain
// skips it entirely.
type readMode uint8

const (
	readModePlain readMode = iota
	readModeProfiled
)

// SuccAbortsMax and SuccAbortsThreshold bound the backoff counter (spec
// §4.G): succ_aborts saturates at SuccAbortsMax, and WaitOnAbort fires
// once succ_aborts reaches SuccAbortsThreshold.
const (
	SuccAbortsMax       = 100
	SuccAbortsThreshold = 4
)

// Txn is the TransactionDescriptor shape from spec §3: the snapshot
// timestamp, status, logs, and collaborator handles a single
// thread-per-transaction holds for the lifetime of one Atomically
// iteration (and is reused across iterations on restart, per
// resetForRetry).
type Txn struct {
	universe *Universe

	validTS uint64
	status  atomic.Uint32

	rolledBack bool
	succAborts uint32

	readLog  *readLog
	writeLog *writeLog

	// locked records, in acquisition order, the write-log entries whose
	// write-owner lock LockWriteSet acquired (spec §4.E). UnlockWriteSet
	// and resetForRetry empty it; commit release and rollbackCommitting
	// leave it as it is.
	locked []*WriteLogEntry

	quiescence *atomic.Uint64

	mode readMode
}

// newTxn allocates a fresh transaction bound to u.
func newTxn(u *Universe) *Txn {
	t := &Txn{
		universe: u,
		readLog:  newReadLog(),
		writeLog: newWriteLog(),
	}
	if u.opts.ProfilingAdaptiveDynamic {
		t.mode = readModeProfiled
	}
	t.status.Store(uint32(txActive))
	return t
}

// resetForRetry clears per-attempt state before a new Atomically
// iteration runs the body again. Logs are already empty by the time this
// is called (rollback clears them), but locked/rolledBack are reset
// defensively to mirror resetForReuse's guard in the teacher.
func (t *Txn) resetForRetry() {
	t.readLog.clear()
	t.writeLog.clear()
	t.locked = t.locked[:0]
	t.rolledBack = false
	t.status.Store(uint32(txActive))
}

func (t *Txn) setStatus(s txStatus) {
	t.status.Store(uint32(s))
}

func (t *Txn) Status() txStatus {
	return txStatus(t.status.Load())
}

// ShouldExtend is desc->ShouldExtend(v) from spec §6: true iff v exceeds
// the transaction's current snapshot.
func (t *Txn) ShouldExtend(v uint64) bool {
	return v > t.validTS
}
