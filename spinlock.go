package rt

import (
	"runtime"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Spinlock is a busy-wait mutual-exclusion primitive. It is appropriate only
// for the short, bounded critical sections the association table uses:
// associations are rare and contention is low, so fine-grained locking isn't
// worth the bookkeeping, but a full blocking mutex's syscall path is
// overkill too.
type Spinlock struct {
	locked uint32
	// Padding keeps locked off the same cache line as whatever field follows
	// it in the embedding struct, so a goroutine spinning on the lock
	// doesn't also invalidate a reader's cache line for unrelated data.
	_ cpu.CacheLinePad
}

// Lock blocks, spinning, until the lock is acquired.
func (s *Spinlock) Lock() {
	for !atomic.CompareAndSwapUint32(&s.locked, 0, 1) {
		runtime.Gosched()
	}
}

// Unlock releases the lock. Calling Unlock on a lock that isn't held is
// erroneous.
func (s *Spinlock) Unlock() {
	atomic.StoreUint32(&s.locked, 0)
}
