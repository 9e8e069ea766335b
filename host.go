package rt

// Class describes the parts of an object's class that the association and
// weak tables need to consult. A host runtime's own class/metaclass type is
// expected to implement this directly.
type Class interface {
	// Name is used only for diagnostic messages.
	Name() string
	// ForbidsAssociatedObjects reports whether instances of this class may
	// never carry associative references, typically true for classes
	// backing raw-isa objects such as certain OS resources.
	ForbidsAssociatedObjects() bool
	// UsesCustomRR reports whether instances use a retain/release
	// implementation other than the runtime's default, which means their
	// deallocating state can't be read directly off a header bit and must
	// instead be queried through AllowsWeakReference.
	UsesCustomRR() bool
}

// Host is the collaborator interface a host object runtime implements so
// that rt's tables can perform the memory-management side effects and
// class-metadata queries that surrounding runtime machinery owns. rt never
// acquires any lock of its own around a Host call other than the Spinlock
// it owns internally. Class queries, the retain/copy of a stored value and
// the release of a dropped one happen outside that lock; a GetRetain
// getter's Retain and the SetHasAssociatedObjects call happen under it.
type Host interface {
	// Retain adds one strong reference to obj. obj is never the zero Addr.
	Retain(obj Addr)
	// Release drops one strong reference from obj. obj is never the zero
	// Addr.
	Release(obj Addr)
	// Autorelease enqueues obj on the calling goroutine's autorelease pool
	// and returns it unchanged. obj is never the zero Addr.
	Autorelease(obj Addr) Addr
	// Copy invokes the object's copy selector and returns the (already
	// retained, by convention) result. obj is never the zero Addr.
	Copy(obj Addr) Addr

	// IsTaggedPointer reports whether obj is a tagged immediate value with
	// no heap allocation and no lifecycle, rather than a real object
	// address.
	IsTaggedPointer(obj Addr) bool
	// ClassOf returns obj's class, or nil if the host has no class
	// metadata for it.
	ClassOf(obj Addr) Class
	// SetHasAssociatedObjects sets the one-way "has associated objects"
	// header hint on obj.
	SetHasAssociatedObjects(obj Addr)
	// IsDeallocating reports whether obj is in the process of being torn
	// down. Only called for classes with the runtime's default
	// retain/release implementation.
	IsDeallocating(obj Addr) bool
	// AllowsWeakReference resolves and invokes obj's allowsWeakReference
	// selector for classes with a custom retain/release implementation.
	// resolved is false if the selector could not be resolved at all (a
	// forwarding failure); in that case allowed is meaningless.
	AllowsWeakReference(obj Addr) (allowed, resolved bool)

	// ReadWeakSlot dereferences a weak referrer slot, returning the Addr
	// currently stored there.
	ReadWeakSlot(slot Referrer) Addr
	// WriteWeakSlot stores value into a weak referrer slot.
	WriteWeakSlot(slot Referrer, value Addr)

	// Fatalf reports an unrecoverable invariant violation naming the
	// offending class and/or pointer. This does not return to its caller;
	// rt's call sites still treat the call as potentially returning (e.g.
	// to a test double) and stop the current operation immediately
	// afterward rather than assume control never comes back.
	Fatalf(format string, args ...interface{})
	// Logf reports non-fatal, informational diagnostics. It has no
	// structured fields by design, the same as the host runtime's own
	// plain-text diagnostics.
	Logf(format string, args ...interface{})
	// WeakError is a breakpointable no-op signaling runtime-API misuse
	// (unregistering an unknown referrer, or finding a weak slot that
	// points somewhere other than expected on dealloc). It must not stop
	// the calling goroutine; it exists purely so a debugger can set a
	// breakpoint on it.
	WeakError(referrer, referent Addr)
}
