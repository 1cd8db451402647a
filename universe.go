package txm

import (
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

// ClockScheme selects between the two commit-timestamp disciplines spec §4.B
// names: a strict fetch-and-add scheme that lets TxTryCommit skip
// revalidation when it is provably the sole committer since the reader's
// snapshot, and a GV4-style scheme that always revalidates.
type ClockScheme int

const (
	// CommitTSInc is the strict fetch-and-add scheme: TxTryCommit skips
	// ValidateWithReadLockVersions when ts == valid_ts+1.
	CommitTSInc ClockScheme = iota
	// CommitTSGV4 always revalidates at commit, regardless of the
	// relationship between the new timestamp and valid_ts.
	CommitTSGV4
)

// Options captures the feature toggles spec §6 enumerates. A zero Options
// decodes to sane, conservative defaults (strict clock, no privatization
// quiescence, no backoff, no stats, no profiling dispatch) via
// DefaultOptions. Options is intended to be constructed programmatically
// or decoded from YAML with gopkg.in/yaml.v3, mirroring the config style
// of the retrieved pack's server components.
type Options struct {
	ClockScheme ClockScheme `yaml:"clock_scheme"`

	// StripeBits sets the stripe table to 2^StripeBits entries. Must be
	// between 1 and 32.
	StripeBits uint `yaml:"stripe_bits"`

	// MaximumTS is the commit-clock ceiling that triggers the
	// clock-overflow/reset path (spec §4.F step 2). Zero selects a large
	// production default; tests override it directly to exercise S5.
	MaximumTS uint64 `yaml:"maximum_ts"`

	PrivatizationQuiescence bool `yaml:"privatization_quiescence"`
	WaitOnSuccAborts        bool `yaml:"wait_on_succ_aborts"`
	DetailedStats           bool `yaml:"detailed_stats"`
	TSExtendStats           bool `yaml:"ts_extend_stats"`
	PerformanceCounting     bool `yaml:"performance_counting"`

	// ProfilingAdaptiveDynamic corresponds to
	// WLPDSTM_TX_PROFILING_ADAPTIVE_DYNAMIC: transactions are constructed
	// with the profiled read path fixed at start rather than the plain
	// one. See readMode in txn.go.
	ProfilingAdaptiveDynamic bool `yaml:"profiling_adaptive_dynamic"`

	// MaxContentionSpins bounds SpinningContentionManager. Zero means
	// unbounded (spin forever rather than abort), matching the teacher.
	MaxContentionSpins int `yaml:"max_contention_spins"`

	// Logger is injected rather than decoded from YAML; defaults to a
	// disabled zerolog.Logger.
	Logger *zerolog.Logger `yaml:"-"`

	// Stats and MemoryManager and ContentionManager are collaborator
	// overrides; nil selects the package defaults.
	Stats             Stats             `yaml:"-"`
	MemoryManager     MemoryManager     `yaml:"-"`
	ContentionManager ContentionManager `yaml:"-"`
}

// DefaultOptions returns the conservative default configuration: strict
// clock, a million-stripe table, no quiescence wait, no backoff.
func DefaultOptions() Options {
	return Options{
		ClockScheme:        CommitTSInc,
		StripeBits:         20,
		MaximumTS:          1 << 56,
		MaxContentionSpins: 0,
	}
}

func (o Options) normalized() (Options, error) {
	if o.StripeBits == 0 {
		o.StripeBits = DefaultOptions().StripeBits
	}
	if o.StripeBits > 32 {
		return o, errBadStripeConfig("stripe_bits must be <= 32")
	}
	if o.MaximumTS == 0 {
		o.MaximumTS = DefaultOptions().MaximumTS
	}
	return o, nil
}

// Universe is the process-wide context spec §9's design notes call for:
// "Global mutable state... is encapsulated in a single process-wide
// context struct initialized once; the core takes a handle so that tests
// can instantiate independent universes." It owns the stripe/lock table,
// the global commit clock, the optional privatization-quiescence array,
// the stats sink, the logger, and the collaborator defaults.
type Universe struct {
	opts Options

	stripes *stripeTable
	clock   *GlobalClock

	stats Stats
	log   zerolog.Logger

	mm MemoryManager
	cm ContentionManager

	quiescenceMu sync.RWMutex
	quiescence   map[*Txn]*atomic.Uint64
}

// NewUniverse constructs a Universe from Options, applying defaults for
// zero-valued fields.
func NewUniverse(opts Options) (*Universe, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	logger := newDefaultLogger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	stats := opts.Stats
	if stats == nil {
		if opts.DetailedStats || opts.TSExtendStats {
			stats = NewAtomicStats(opts.DetailedStats, opts.TSExtendStats)
		} else {
			stats = noopStats{}
		}
	}

	mm := opts.MemoryManager
	if mm == nil {
		mm = noopMemoryManager{}
	}

	cm := opts.ContentionManager
	if cm == nil {
		cm = &SpinningContentionManager{MaxSpins: opts.MaxContentionSpins}
	}

	st, err := newStripeTable(opts.StripeBits)
	if err != nil {
		return nil, err
	}

	return &Universe{
		opts:       opts,
		stripes:    st,
		clock:      newGlobalClock(),
		stats:      stats,
		log:        logger,
		mm:         mm,
		cm:         cm,
		quiescence: make(map[*Txn]*atomic.Uint64),
	}, nil
}

// MustNewUniverse is NewUniverse but panics on construction error; handy
// for package-level defaults and tests.
func MustNewUniverse(opts Options) *Universe {
	u, err := NewUniverse(opts)
	if err != nil {
		panic(err)
	}
	return u
}

// Stats exposes the Universe's stats sink, primarily so tests can assert
// on bucket values via a type assertion to *AtomicStats.
func (u *Universe) Stats() Stats { return u.stats }

func (u *Universe) registerQuiescence(t *Txn) *atomic.Uint64 {
	if !u.opts.PrivatizationQuiescence {
		return nil
	}
	slot := atomic.NewUint64(minimumTS)
	u.quiescenceMu.Lock()
	u.quiescence[t] = slot
	u.quiescenceMu.Unlock()
	return slot
}

func (u *Universe) unregisterQuiescence(t *Txn) {
	if !u.opts.PrivatizationQuiescence {
		return
	}
	u.quiescenceMu.Lock()
	delete(u.quiescence, t)
	u.quiescenceMu.Unlock()
}

// privatizationQuiescenceWait blocks until every other registered
// transaction's quiescence timestamp is either MinimumTS (idle/between
// transactions) or greater than ts (started its snapshot after this
// commit), per spec §4.F step 7.
func (u *Universe) privatizationQuiescenceWait(self *Txn, ts uint64) {
	if !u.opts.PrivatizationQuiescence {
		return
	}
	for {
		done := true
		u.quiescenceMu.RLock()
		for t, slot := range u.quiescence {
			if t == self {
				continue
			}
			v := slot.Load()
			if v != minimumTS && v <= ts {
				done = false
				break
			}
		}
		u.quiescenceMu.RUnlock()
		if done {
			return
		}
		u.log.Debug().Uint64("ts", ts).Msg("privatization quiescence wait")
		yieldCPU()
	}
}
