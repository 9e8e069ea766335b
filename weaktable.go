package rt

// weakTableInitialSize is the array size a WeakTable starts at on its first
// insert.
const weakTableInitialSize = 64

// weakSlot is one bucket of a WeakTable: a referent address and the set of
// referrer slots aliasing it. A zero referent marks an empty bucket.
type weakSlot struct {
	referent Addr
	entry    weakEntry
}

// WeakTable is the open-addressed map from referent address to weak entry.
// Unlike AssociationTable, WeakTable does not carry its own lock: per spec
// §4.5/§5, the weak side's lock is owned by the surrounding runtime (the
// same striped lock that guards reference counts), and every method here
// assumes the caller already holds it. Calling these methods without that
// external synchronization is erroneous.
//
// The zero value has a nil backing array and is ready to use; the first
// WeakRegister call allocates it.
type WeakTable struct {
	entries         []weakSlot
	mask            uintptr
	numEntries      int
	maxDisplacement int
}

// NewWeakTable creates a WeakTable with its initial array preallocated.
func NewWeakTable() *WeakTable {
	return &WeakTable{
		entries: make([]weakSlot, weakTableInitialSize),
		mask:    weakTableInitialSize - 1,
	}
}

// lookup returns the index of referent's bucket, or -1 if referent has no
// entry. Empty buckets do not end the probe, since a removal can leave one
// in the middle of a live entry's probe chain; maxDisplacement bounds it.
func (t *WeakTable) lookup(h Host, referent Addr) int {
	if t.entries == nil {
		return -1
	}
	begin := hashAddr(uintptr(referent)) & t.mask
	idx := begin
	disp := 0
	for {
		s := &t.entries[idx]
		if s.referent == referent {
			return int(idx)
		}
		if disp > t.maxDisplacement {
			return -1
		}
		idx = (idx + 1) & t.mask
		disp++
		if idx == begin {
			h.Fatalf("weak table probe wrapped: table corrupt")
			return -1
		}
	}
}

// insertSlot inserts a (referent, entry) pair, assuming referent has no
// existing bucket and the table has already been grown if necessary.
func (t *WeakTable) insertSlot(h Host, referent Addr, entry weakEntry) {
	begin := hashAddr(uintptr(referent)) & t.mask
	idx := begin
	disp := 0
	for t.entries[idx].referent != 0 {
		idx = (idx + 1) & t.mask
		disp++
		if idx == begin {
			h.Fatalf("weak table probe wrapped: table corrupt")
			return
		}
	}
	t.entries[idx] = weakSlot{referent: referent, entry: entry}
	t.numEntries++
	if disp > t.maxDisplacement {
		t.maxDisplacement = disp
	}
}

// resize is the single routine behind both grow and shrink: allocate a new
// array of the requested size and re-insert every live entry, rebuilding
// displacements from scratch.
func (t *WeakTable) resize(h Host, newSize uintptr) {
	old := t.entries
	t.entries = make([]weakSlot, newSize)
	t.mask = newSize - 1
	t.numEntries = 0
	t.maxDisplacement = 0
	for i := range old {
		if old[i].referent != 0 {
			t.insertSlot(h, old[i].referent, old[i].entry)
		}
	}
}

// maybeGrow resizes t to max(size*2, weakTableInitialSize) if the next
// insert would push occupancy to 3/4 full or beyond.
func (t *WeakTable) maybeGrow(h Host) {
	if t.entries == nil {
		t.entries = make([]weakSlot, weakTableInitialSize)
		t.mask = weakTableInitialSize - 1
		return
	}
	size := t.mask + 1
	if uintptr(t.numEntries+1)*4 >= size*3 {
		newSize := size * 2
		if newSize < weakTableInitialSize {
			newSize = weakTableInitialSize
		}
		t.resize(h, newSize)
	}
}

// maybeShrink resizes t down to size/8 if it is at least 1024 entries and
// at most 1/16 full, leaving the new table no more than half full.
func (t *WeakTable) maybeShrink(h Host) {
	size := t.mask + 1
	if size >= 1024 && uintptr(t.numEntries) <= size/16 {
		t.resize(h, size/8)
	}
}

// Stats reports WeakTable occupancy for diagnostics.
type WeakTableStats struct {
	Size            int
	NumEntries      int
	MaxDisplacement int
}

// Stats returns t's current size, entry count, and maximum probe
// displacement.
func (t *WeakTable) Stats() WeakTableStats {
	size := 0
	if t.entries != nil {
		size = int(t.mask) + 1
	}
	return WeakTableStats{Size: size, NumEntries: t.numEntries, MaxDisplacement: t.maxDisplacement}
}

// WeakRegister records that referrer aliases referent, returning referent
// unchanged so the caller can store it. It does not write to *referrer; the
// caller owns that slot.
//
// If referent is null or a tagged pointer, this is a no-op that returns
// referent as given. If referent is in the process of being deallocated,
// this returns the zero Addr, additionally reporting a fatal error if
// crashIfDeallocating is set.
//
// The caller must already hold the lock WeakTable's doc comment describes.
func WeakRegister(h Host, t *WeakTable, referent Addr, referrer Referrer, crashIfDeallocating bool) Addr {
	if referent == 0 || h.IsTaggedPointer(referent) {
		return referent
	}

	var deallocating bool
	cls := h.ClassOf(referent)
	if cls == nil || !cls.UsesCustomRR() {
		deallocating = h.IsDeallocating(referent)
	} else {
		allowed, resolved := h.AllowsWeakReference(referent)
		if !resolved {
			return 0
		}
		deallocating = !allowed
	}
	if deallocating {
		if crashIfDeallocating {
			name := "object"
			if cls != nil {
				name = cls.Name()
			}
			h.Fatalf("cannot form weak reference to deallocating instance of class %s (object %#x)", name, uintptr(referent))
		}
		return 0
	}

	if idx := t.lookup(h, referent); idx >= 0 {
		t.entries[idx].entry.insert(h, referrer)
		return referent
	}
	t.maybeGrow(h)
	var e weakEntry
	e.insert(h, referrer)
	t.insertSlot(h, referent, e)
	return referent
}

// removeEntryAt clears the bucket at idx and runs the shrink check that
// follows every entry removal, regardless of which operation caused it.
func (t *WeakTable) removeEntryAt(h Host, idx int) {
	t.entries[idx] = weakSlot{}
	t.numEntries--
	t.maybeShrink(h)
}

// WeakUnregister removes referrer from referent's weak entry, if any. It
// does not write to *referrer; the caller's storage for that slot is being
// repurposed and may no longer be safe to dereference.
//
// The caller must already hold the lock WeakTable's doc comment describes.
func WeakUnregister(h Host, t *WeakTable, referent Addr, referrer Referrer) {
	if referent == 0 {
		return
	}
	idx := t.lookup(h, referent)
	if idx < 0 {
		return
	}
	t.entries[idx].entry.remove(h, referrer)
	if t.entries[idx].entry.isEmpty() {
		t.removeEntryAt(h, idx)
	}
}

// WeakClearOnDealloc nulls every live referrer slot aliasing referent and
// removes referent's entry from t. It is called exactly once, from
// referent's destructor.
//
// The caller must already hold the lock WeakTable's doc comment describes.
func WeakClearOnDealloc(h Host, t *WeakTable, referent Addr) {
	idx := t.lookup(h, referent)
	if idx < 0 {
		return
	}
	t.entries[idx].entry.clear(h, referent)
	t.removeEntryAt(h, idx)
}

// WeakIsRegistered reports whether referent currently has a live weak
// entry. Debug-only: it exists for tests and diagnostics, not for the
// runtime's normal control flow.
//
// The caller must already hold the lock WeakTable's doc comment describes.
func WeakIsRegistered(h Host, t *WeakTable, referent Addr) bool {
	return t.lookup(h, referent) >= 0
}
