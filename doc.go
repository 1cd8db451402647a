// Package txm implements the commit engine of a word-based software
// transactional memory using lazy versioning: transactional writes are
// buffered in per-transaction logs and installed into shared memory only
// at commit time, guarded by per-stripe version locks and a global commit
// timestamp.
//
// The package does not implement memory allocation for transactional
// objects, contention-manager policy, or how a caller begins/retries a
// transaction's body beyond the closure-reentry loop in Atomically; those
// are external collaborators.
package txm
