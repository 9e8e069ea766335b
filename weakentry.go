package rt

// inlineWeakRefs is the number of referrer slots a weakEntry holds inline
// before it promotes to an out-of-line open-addressed array. Most objects
// have one or a handful of weak aliases, so this optimizes the common case.
const inlineWeakRefs = 4

// weakEntry is the set of referrer slots aliasing one referent. It starts
// inline (a small fixed array) and promotes to an out-of-line
// open-addressed array on its first overflow; promotion is one-way, since
// demoting back to inline was judged not worth the bookkeeping.
type weakEntry struct {
	inline    [inlineWeakRefs]Referrer
	outOfLine bool

	refs            []Referrer
	mask            uintptr
	numRefs         int
	maxDisplacement int
}

// insert adds referrer to e. Callers guarantee a referrer address is never
// registered twice; there is no duplicate check.
func (e *weakEntry) insert(h Host, referrer Referrer) {
	if !e.outOfLine {
		for i := range e.inline {
			if e.inline[i] == 0 {
				e.inline[i] = referrer
				return
			}
		}
		e.promote()
	}
	e.insertOutOfLine(h, referrer)
}

// promote converts e from inline to out-of-line form. The new array is the
// same size as the inline array, to be grown immediately by the insert that
// follows.
func (e *weakEntry) promote() {
	refs := make([]Referrer, inlineWeakRefs)
	copy(refs, e.inline[:])
	e.refs = refs
	e.mask = inlineWeakRefs - 1
	e.numRefs = inlineWeakRefs
	e.maxDisplacement = 0
	e.outOfLine = true
	e.inline = [inlineWeakRefs]Referrer{}
}

// insertOutOfLine inserts referrer into e's out-of-line array, growing
// first if the array would become more than 3/4 full.
func (e *weakEntry) insertOutOfLine(h Host, referrer Referrer) {
	if uintptr(e.numRefs+1)*4 > (e.mask+1)*3 {
		e.grow(h)
	}
	begin := hashAddr(uintptr(referrer)) & e.mask
	idx := begin
	disp := 0
	for e.refs[idx] != 0 {
		idx = (idx + 1) & e.mask
		disp++
		if idx == begin {
			h.Fatalf("weak entry probe wrapped: table corrupt")
			return
		}
	}
	e.refs[idx] = referrer
	e.numRefs++
	if disp > e.maxDisplacement {
		e.maxDisplacement = disp
	}
}

// grow doubles e's out-of-line array and re-inserts every live referrer.
func (e *weakEntry) grow(h Host) {
	old := e.refs
	newSize := (e.mask + 1) * 2
	e.refs = make([]Referrer, newSize)
	e.mask = newSize - 1
	e.numRefs = 0
	e.maxDisplacement = 0
	for _, r := range old {
		if r != 0 {
			e.insertOutOfLine(h, r)
		}
	}
}

// remove deletes referrer from e. If referrer isn't found, this reports
// runtime-API misuse through h.WeakError and returns without effect;
// removal never compacts the probe chain, since maxDisplacement remains a
// valid upper bound on lookup failure regardless.
func (e *weakEntry) remove(h Host, referrer Referrer) {
	if !e.outOfLine {
		for i := range e.inline {
			if e.inline[i] == referrer {
				e.inline[i] = 0
				return
			}
		}
		h.WeakError(Addr(referrer), 0)
		return
	}
	begin := hashAddr(uintptr(referrer)) & e.mask
	idx := begin
	disp := 0
	for e.refs[idx] != referrer {
		if disp > e.maxDisplacement {
			h.WeakError(Addr(referrer), 0)
			return
		}
		idx = (idx + 1) & e.mask
		disp++
	}
	e.refs[idx] = 0
	e.numRefs--
}

// isEmpty reports whether e has no live referrers.
func (e *weakEntry) isEmpty() bool {
	if e.outOfLine {
		return e.numRefs == 0
	}
	for _, r := range e.inline {
		if r != 0 {
			return false
		}
	}
	return true
}

// clear nulls every referrer slot that still points at referent, calling
// h.WeakError for any slot that doesn't (runtime-API misuse, not fatal).
// This is used exactly once, from WeakClearOnDealloc.
func (e *weakEntry) clear(h Host, referent Addr) {
	do := func(referrer Referrer) {
		if referrer == 0 {
			return
		}
		v := h.ReadWeakSlot(referrer)
		if v == referent {
			h.WriteWeakSlot(referrer, 0)
		} else {
			h.WeakError(Addr(referrer), referent)
		}
	}
	if e.outOfLine {
		for _, r := range e.refs {
			do(r)
		}
		return
	}
	for _, r := range e.inline {
		do(r)
	}
}
