package txm

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// errRestart is the internal sentinel spec §9's design notes describe as
// the closure-based replacement for the original's non-local RestartJump:
// "return a Restart signal from the closure and re-enter it". Every
// ReadWord call site that would have called RestartJump instead performs
// the rollback synchronously and returns this sentinel; the Atomically
// loop recognizes it via errors.Is and re-runs the body. Commit-time
// restarts are reported as a TryCommitResult instead.
var errRestart = errors.New("txm: transaction restart requested")

// errNotInTransaction builds a non-recoverable misuse error: an API method
// that requires an active Txn was called outside Atomically. Unlike the
// control-flow sentinel above, this is a programmer error and carries a
// stack trace via github.com/pkg/errors so it is diagnosable in logs.
func errNotInTransaction(op string) error {
	return pkgerrors.Errorf("txm: %s called without an active transaction", op)
}

// errBadStripeConfig reports a malformed Universe configuration (e.g. a
// stripe-bit count out of range). This is a construction-time error, not
// a per-transaction one.
func errBadStripeConfig(reason string) error {
	return pkgerrors.Errorf("txm: bad stripe table configuration: %s", reason)
}
