package txm

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConcurrentSum repeats +1 from many goroutines and checks the final
// total, exercising the full read/write/commit/restart loop under real
// contention (mirrors the teacher's TestSum).
func TestConcurrentSum(t *testing.T) {
	u := newTestUniverse(t)
	sum := NewTVar(0)

	const goroutines = 8
	const perGoroutine = 2000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				err := Atomically(u, func(txn *Txn) error {
					v, err := txn.Load(sum)
					if err != nil {
						return err
					}
					txn.Store(sum, v+1)
					return nil
				})
				require.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, uint64(goroutines*perGoroutine), sum.loadAcquire())
}

// TestBankTransfer moves random amounts between accounts concurrently and
// checks the total is conserved (spec §8's write-set atomicity property,
// exercised end-to-end rather than asserted per-commit).
func TestBankTransfer(t *testing.T) {
	u := newTestUniverse(t)
	const numAccounts = 10
	const startingBalance = 100

	accounts := make([]*TVar, numAccounts)
	for i := range accounts {
		accounts[i] = NewTVar(startingBalance)
	}

	const goroutines = 16
	const transfersEach = 500

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(seed int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(seed)))
			for i := 0; i < transfersEach; i++ {
				from := rng.Intn(numAccounts)
				to := rng.Intn(numAccounts)
				if from == to {
					continue
				}
				err := Atomically(u, func(txn *Txn) error {
					vf, err := txn.Load(accounts[from])
					if err != nil {
						return err
					}
					if vf == 0 {
						return nil
					}
					amount := uint64(rng.Intn(int(vf)) + 1)
					vt, err := txn.Load(accounts[to])
					if err != nil {
						return err
					}
					txn.Store(accounts[from], vf-amount)
					txn.Store(accounts[to], vt+amount)
					return nil
				})
				require.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()

	var total uint64
	for _, a := range accounts {
		total += a.loadAcquire()
	}
	require.Equal(t, uint64(numAccounts*startingBalance), total)
}

// TestWriteSkew runs the classic write-skew pair (each transaction reads
// one variable and writes the other) concurrently. Commit-time read-set
// validation makes whichever of the two commits second fail validation
// and re-run against the first one's result; this test exercises that
// path under real concurrency and does not assert on the final values.
func TestWriteSkew(t *testing.T) {
	u := newTestUniverse(t)
	a := NewTVar(1)
	b := NewTVar(2)

	var wg sync.WaitGroup
	wg.Add(2)
	start := make(chan struct{})

	go func() {
		defer wg.Done()
		<-start
		_ = Atomically(u, func(txn *Txn) error {
			va, err := txn.Load(a)
			if err != nil {
				return err
			}
			if va == 1 {
				txn.Store(b, 666)
			}
			return nil
		})
	}()

	go func() {
		defer wg.Done()
		<-start
		_ = Atomically(u, func(txn *Txn) error {
			vb, err := txn.Load(b)
			if err != nil {
				return err
			}
			if vb == 2 {
				txn.Store(a, 42)
			}
			return nil
		})
	}()

	close(start)
	wg.Wait()

	// Whatever interleaving occurred, each committed transaction's view
	// was internally consistent (opacity); the final values are read but
	// not asserted on.
	_ = a.loadAcquire()
	_ = b.loadAcquire()
}

// TestHeapInvariant appends random values into a binary-heap-shaped array
// of TVars concurrently and checks the heap property holds afterward
// (mirrors the teacher's TestHeap, exercising multi-word transactions
// whose read/write sets overlap across goroutines).
func TestHeapInvariant(t *testing.T) {
	u := newTestUniverse(t)
	const size = 64
	heap := make([]*TVar, size)
	for i := range heap {
		heap[i] = NewTVar(0)
	}
	end := NewTVar(0)

	insert := func(txn *Txn, x uint64) error {
		endVal, err := txn.Load(end)
		if err != nil {
			return err
		}
		curr := endVal
		parent := curr / 2
		for curr != 0 {
			pv, err := txn.Load(heap[parent])
			if err != nil {
				return err
			}
			if pv <= x {
				break
			}
			txn.Store(heap[curr], pv)
			curr = parent
			parent = parent / 2
		}
		txn.Store(heap[curr], x)
		txn.Store(end, endVal+1)
		return nil
	}

	const goroutines = 4
	const perGoroutine = size / goroutines

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(seed int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(seed + 1)))
			for i := 0; i < perGoroutine; i++ {
				x := uint64(rng.Intn(1000))
				err := Atomically(u, func(txn *Txn) error {
					return insert(txn, x)
				})
				require.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()

	for i := 0; i < size; i++ {
		if 2*i+1 < size {
			require.LessOrEqual(t, heap[i].loadAcquire(), heap[2*i+1].loadAcquire())
		}
		if 2*i+2 < size {
			require.LessOrEqual(t, heap[i].loadAcquire(), heap[2*i+2].loadAcquire())
		}
	}
}
