// Package rthost is a minimal, in-memory stand-in for a real object
// runtime's collaborator hooks (rt.Host and rt.Class), for use in tests that
// need to drive rt.AssociationTable and rt.WeakTable without a real VM.
package rthost

import (
	"bytes"
	"fmt"
	"sync"
	"unsafe"

	"github.com/zephyrtronium/contains"

	"github.com/assocweak/rt"
)

// ClassByName looks up a class compiled from classes.yaml by name, wrapping
// it as an rt.Class. It returns nil if no such entry exists in
// rt.GeneratedClasses.
func ClassByName(name string) rt.Class {
	for _, d := range rt.GeneratedClasses {
		if d.Name == name {
			return rt.NewStaticClass(d)
		}
	}
	return nil
}

// FatalError is what FakeHost.Fatalf panics with, so a test can recover and
// assert on the invariant violation rt reported instead of crashing outright.
type FatalError struct {
	Message string
}

func (e *FatalError) Error() string { return e.Message }

// WeakErrorRecord captures one call to WeakError, for tests asserting on
// runtime-API misuse reports.
type WeakErrorRecord struct {
	Referrer, Referent rt.Addr
}

// FakeClass is a minimal rt.Class implementation controlled directly by test
// code, rather than generated from classes.yaml.
type FakeClass struct {
	ClassName string
	Forbids   bool
	CustomRR  bool
}

// Name implements rt.Class.
func (c *FakeClass) Name() string { return c.ClassName }

// ForbidsAssociatedObjects implements rt.Class.
func (c *FakeClass) ForbidsAssociatedObjects() bool { return c.Forbids }

// UsesCustomRR implements rt.Class.
func (c *FakeClass) UsesCustomRR() bool { return c.CustomRR }

// FakeHost is a thread-safe fake implementation of rt.Host backed by plain
// Go maps. Objects are simulated addresses handed out by NewObject, not real
// heap pointers; weak slots are real Go variables, addressed with unsafe so
// ReadWeakSlot/WriteWeakSlot behave exactly as a real runtime's would.
type FakeHost struct {
	mu sync.Mutex

	nextAddr     rt.Addr
	refcounts    map[rt.Addr]int
	classes      map[rt.Addr]rt.Class
	deallocating map[rt.Addr]bool
	hasAssoc     map[rt.Addr]bool

	// allowsWeak and allowsResolved let a test configure the two outcomes
	// AllowsWeakReference can report for a custom-RR object: resolved with
	// an answer, or unresolved (the forwarding-sentinel case).
	allowsWeak     map[rt.Addr]bool
	allowsResolved map[rt.Addr]bool

	// dealloced tracks every address Dealloc has finalized, so a second
	// Dealloc call on the same address is caught as a double-free instead
	// of silently corrupting already-reused bookkeeping.
	dealloced contains.Set
	pool      []rt.Addr

	weakErrors []WeakErrorRecord
	logs       bytes.Buffer
}

// NewFakeHost creates an empty FakeHost. Object addresses start at 0x1000
// so the zero Addr unambiguously means "no object" throughout tests.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		nextAddr:       0x1000,
		refcounts:      make(map[rt.Addr]int),
		classes:        make(map[rt.Addr]rt.Class),
		deallocating:   make(map[rt.Addr]bool),
		hasAssoc:       make(map[rt.Addr]bool),
		allowsWeak:     make(map[rt.Addr]bool),
		allowsResolved: make(map[rt.Addr]bool),
	}
}

// NewObject allocates a new simulated object of the given class with a
// refcount of one. cls may be a *FakeClass for direct test control, or any
// other rt.Class, such as one returned by ClassByName.
func (h *FakeHost) NewObject(cls rt.Class) rt.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	a := h.nextAddr
	h.nextAddr += 16
	h.refcounts[a] = 1
	h.classes[a] = cls
	return a
}

// NewObjectFromManifest allocates a new simulated object of the class named
// name in classes.yaml's generated table. It panics via Fatalf if no such
// class exists, since that indicates a typo in caller code, not runtime
// misuse.
func (h *FakeHost) NewObjectFromManifest(name string) rt.Addr {
	cls := ClassByName(name)
	if cls == nil {
		h.Fatalf("rthost: no manifest class named %s", name)
		return 0
	}
	return h.NewObject(cls)
}

// SetAllowsWeakReference configures what AllowsWeakReference reports for
// obj: allowed if resolved is true, or the forwarding-sentinel case
// (resolved=false) if it isn't.
func (h *FakeHost) SetAllowsWeakReference(obj rt.Addr, allowed, resolved bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.allowsWeak[obj] = allowed
	h.allowsResolved[obj] = resolved
}

// RefCount returns obj's current simulated strong reference count.
func (h *FakeHost) RefCount(obj rt.Addr) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refcounts[obj]
}

// IsLive reports whether obj currently has a positive simulated refcount.
func (h *FakeHost) IsLive(obj rt.Addr) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refcounts[obj] > 0
}

// WeakErrors returns every WeakError report seen so far.
func (h *FakeHost) WeakErrors() []WeakErrorRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]WeakErrorRecord(nil), h.weakErrors...)
}

// Logs returns everything written through Logf so far.
func (h *FakeHost) Logs() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.logs.String()
}

// Dealloc marks obj as deallocating, clears its associations and weak
// references through the given tables (exactly as a real object's
// destructor would), and then finalizes its teardown. assoc and weak may
// each be nil if the test doesn't need that side torn down. Callers must
// already hold whatever lock weak's doc comment requires before calling
// this, same as any other WeakTable operation.
func (h *FakeHost) Dealloc(obj rt.Addr, assoc *rt.AssociationTable, weak *rt.WeakTable) {
	h.mu.Lock()
	if !h.dealloced.Add(uintptr(obj)) {
		h.mu.Unlock()
		h.Fatalf("double dealloc of object %#x", uintptr(obj))
		return
	}
	h.deallocating[obj] = true
	h.mu.Unlock()

	if assoc != nil {
		assoc.RemoveAll(h, obj)
	}
	if weak != nil {
		rt.WeakClearOnDealloc(h, weak, obj)
	}

	h.mu.Lock()
	delete(h.refcounts, obj)
	delete(h.classes, obj)
	delete(h.deallocating, obj)
	delete(h.hasAssoc, obj)
	delete(h.allowsWeak, obj)
	delete(h.allowsResolved, obj)
	h.mu.Unlock()
}

// DrainPool releases every object the simulated autorelease pool is holding
// and empties it, mirroring a real autorelease pool's drain.
func (h *FakeHost) DrainPool() {
	h.mu.Lock()
	drained := h.pool
	h.pool = nil
	h.mu.Unlock()
	for _, obj := range drained {
		h.Release(obj)
	}
}

// Retain implements rt.Host.
func (h *FakeHost) Retain(obj rt.Addr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refcounts[obj]++
}

// Release implements rt.Host.
func (h *FakeHost) Release(obj rt.Addr) {
	h.mu.Lock()
	h.refcounts[obj]--
	n := h.refcounts[obj]
	h.mu.Unlock()
	if n < 0 {
		h.Fatalf("over-release of object %#x", uintptr(obj))
	}
}

// Autorelease implements rt.Host.
func (h *FakeHost) Autorelease(obj rt.Addr) rt.Addr {
	h.mu.Lock()
	h.pool = append(h.pool, obj)
	h.mu.Unlock()
	return obj
}

// Copy implements rt.Host. It allocates a new object of obj's class and
// returns it already retained, per Host.Copy's contract.
func (h *FakeHost) Copy(obj rt.Addr) rt.Addr {
	h.mu.Lock()
	cls := h.classes[obj]
	h.mu.Unlock()
	return h.NewObject(cls)
}

// IsTaggedPointer implements rt.Host. Odd addresses are tagged, by
// convention of this package only; NewObject never hands one out.
func (h *FakeHost) IsTaggedPointer(obj rt.Addr) bool {
	return obj != 0 && obj&1 != 0
}

// ClassOf implements rt.Host.
func (h *FakeHost) ClassOf(obj rt.Addr) rt.Class {
	h.mu.Lock()
	defer h.mu.Unlock()
	cls := h.classes[obj]
	if cls == nil {
		return nil
	}
	return cls
}

// SetHasAssociatedObjects implements rt.Host.
func (h *FakeHost) SetHasAssociatedObjects(obj rt.Addr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hasAssoc[obj] = true
}

// HasAssociatedObjects reports whether SetHasAssociatedObjects has been
// called for obj, for test assertions.
func (h *FakeHost) HasAssociatedObjects(obj rt.Addr) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hasAssoc[obj]
}

// IsDeallocating implements rt.Host.
func (h *FakeHost) IsDeallocating(obj rt.Addr) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deallocating[obj]
}

// AllowsWeakReference implements rt.Host, reporting whatever
// SetAllowsWeakReference last configured for obj. An object that was never
// configured falls back to its class manifest entry's
// HasAllowsWeakReference bit, if it was created from one (a class with
// custom retain/release but no allowsWeakReference selector never
// resolves, mirroring a real forwarding failure); failing that, it
// resolves to allowed=true, so tests that don't care about this path
// don't need to set it up.
func (h *FakeHost) AllowsWeakReference(obj rt.Addr) (allowed, resolved bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.allowsResolved[obj]; ok {
		return h.allowsWeak[obj], h.allowsResolved[obj]
	}
	if sc, ok := h.classes[obj].(*rt.StaticClass); ok && !sc.Descriptor.HasAllowsWeakReference {
		return false, false
	}
	return true, true
}

// ReadWeakSlot implements rt.Host by dereferencing slot as a *rt.Addr. slot
// must be the address of a real rt.Addr variable, obtained with
// WeakSlotOf.
func (h *FakeHost) ReadWeakSlot(slot rt.Referrer) rt.Addr {
	return *(*rt.Addr)(unsafe.Pointer(uintptr(slot)))
}

// WriteWeakSlot implements rt.Host.
func (h *FakeHost) WriteWeakSlot(slot rt.Referrer, value rt.Addr) {
	*(*rt.Addr)(unsafe.Pointer(uintptr(slot))) = value
}

// Fatalf implements rt.Host by panicking with a *FatalError, so a test can
// recover() and assert on the message instead of the process dying.
func (h *FakeHost) Fatalf(format string, args ...interface{}) {
	panic(&FatalError{Message: fmt.Sprintf(format, args...)})
}

// Logf implements rt.Host.
func (h *FakeHost) Logf(format string, args ...interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(&h.logs, format+"\n", args...)
}

// WeakError implements rt.Host.
func (h *FakeHost) WeakError(referrer, referent rt.Addr) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.weakErrors = append(h.weakErrors, WeakErrorRecord{Referrer: referrer, Referent: referent})
}

// WeakSlotOf returns the rt.Referrer address of a live *rt.Addr variable, for
// use with rt.WeakRegister/rt.WeakUnregister and this host's
// ReadWeakSlot/WriteWeakSlot.
func WeakSlotOf(slot *rt.Addr) rt.Referrer {
	return rt.Referrer(uintptr(unsafe.Pointer(slot)))
}
