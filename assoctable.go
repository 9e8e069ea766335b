package rt

// assocMap is one object's association map: key identity to cell. Insertion
// order is irrelevant; key equality is pointer equality.
type assocMap map[Key]cell

// AssociationTable is the global, process-wide associative-reference table.
// A single Spinlock guards the whole structure; per-object locking was
// deliberately not chosen, since associations are rare and contention is
// low. Acquire and release are always paired within a single method call.
// The retain/copy of a stored value and the release of a replaced or removed
// one run strictly outside the lock; only a GetRetain getter's retain runs
// under it.
//
// The zero value is not ready to use; construct one with NewAssociationTable.
type AssociationTable struct {
	mu    Spinlock
	table map[Disguised]assocMap
}

// NewAssociationTable creates an empty association table.
func NewAssociationTable() *AssociationTable {
	return &AssociationTable{table: make(map[Disguised]assocMap)}
}

// Set stores value under key on object per policy, or removes the
// association if value is zero. If object's class forbids associated
// objects, this reports a fatal error through h and does not mutate the
// table.
func (t *AssociationTable) Set(h Host, object Addr, key Key, value Addr, policy Policy) {
	if object == 0 && value == 0 {
		return
	}
	if object != 0 {
		if cls := h.ClassOf(object); cls != nil && cls.ForbidsAssociatedObjects() {
			h.Fatalf("associated objects forbidden for class %s (object %#x)", cls.Name(), uintptr(object))
			return
		}
	}
	// acquire (retain/copy) happens before the lock is taken, so a copy
	// method can itself set associations without deadlocking.
	stored := cell{policy: policy, value: acquireForStore(h, value, policy)}
	disguised := Disguise(object)

	var old cell
	t.mu.Lock()
	if value != 0 {
		m, ok := t.table[disguised]
		if !ok {
			m = make(assocMap)
			t.table[disguised] = m
			h.SetHasAssociatedObjects(object)
		}
		old = m[key]
		m[key] = stored
	} else if m, ok := t.table[disguised]; ok {
		if found, ok := m[key]; ok {
			old = found
			delete(m, key)
			if len(m) == 0 {
				delete(t.table, disguised)
			}
		}
	}
	t.mu.Unlock()

	// release (of whatever the stored cell replaced) happens after the
	// lock is released, so a dealloc triggered by the release can't
	// recurse into the table under the same lock.
	releaseHeld(h, old)
}

// Get returns the value associated with key on object, or zero if there is
// none, retained or autoreleased according to the stored policy's getter
// mode.
func (t *AssociationTable) Get(h Host, object Addr, key Key) Addr {
	disguised := Disguise(object)
	var found cell
	t.mu.Lock()
	if m, ok := t.table[disguised]; ok {
		if c, ok := m[key]; ok {
			found = c
			retainOnGet(h, found)
		}
	}
	t.mu.Unlock()
	return autoreleaseOnGet(h, found)
}

// RemoveAll erases every association on object, releasing each one after
// the table lock is released. This is the entry point a dealloc path calls
// for any object whose header bit indicates it may have associations.
func (t *AssociationTable) RemoveAll(h Host, object Addr) {
	disguised := Disguise(object)
	var extracted assocMap
	t.mu.Lock()
	if m, ok := t.table[disguised]; ok {
		extracted = m
		delete(t.table, disguised)
	}
	t.mu.Unlock()
	for _, c := range extracted {
		releaseHeld(h, c)
	}
}

// Count returns the number of live associations on object. It exists purely
// for diagnostics and tests.
func (t *AssociationTable) Count(object Addr) int {
	disguised := Disguise(object)
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.table[disguised])
}
