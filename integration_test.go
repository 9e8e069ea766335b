package rt_test

import (
	"sync"
	"testing"

	"github.com/assocweak/rt"
	"github.com/assocweak/rt/rthost"
)

// TestDeallocClearsBothAssociationsAndWeakSlots exercises an object that
// carries both an association and a weak reference, verifying both sides
// are torn down together through rthost.FakeHost.Dealloc.
func TestDeallocClearsBothAssociationsAndWeakSlots(t *testing.T) {
	h := rthost.NewFakeHost()
	assoc := rt.NewAssociationTable()
	weak := rt.NewWeakTable()

	cls := &rthost.FakeClass{ClassName: "PlainObject"}
	referent := h.NewObject(cls)
	assocVal := h.NewObject(cls)

	assoc.Set(h, referent, rt.Key(1), assocVal, rt.PolicyRetainNonatomic)

	var weakSlot rt.Addr
	ref := rthost.WeakSlotOf(&weakSlot)
	rt.WeakRegister(h, weak, referent, ref, false)
	weakSlot = referent

	if assoc.Count(referent) != 1 {
		t.Fatalf("Count() = %d before dealloc, want 1", assoc.Count(referent))
	}

	h.Dealloc(referent, assoc, weak)

	if weakSlot != 0 {
		t.Fatalf("weak slot not cleared on dealloc: %#x", uintptr(weakSlot))
	}
	if assoc.Count(referent) != 0 {
		t.Fatalf("Count() = %d after dealloc, want 0", assoc.Count(referent))
	}
	if h.RefCount(assocVal) != 1 {
		t.Fatalf("association value not released on dealloc, refcount = %d", h.RefCount(assocVal))
	}
	if rt.WeakIsRegistered(h, weak, referent) {
		t.Fatal("referent still registered in weak table after dealloc")
	}
}

// TestMultipleWeakReferencesToSameReferentAllClear checks that every weak
// slot aliasing a referent is nulled, not just the first one registered,
// including once the entry has been promoted out of its inline storage.
func TestMultipleWeakReferencesToSameReferentAllClear(t *testing.T) {
	h := rthost.NewFakeHost()
	weak := rt.NewWeakTable()
	cls := &rthost.FakeClass{ClassName: "PlainObject"}
	referent := h.NewObject(cls)

	const n = 10
	slots := make([]*rt.Addr, n)
	for i := range slots {
		v := new(rt.Addr)
		*v = referent
		slots[i] = v
		rt.WeakRegister(h, weak, referent, rthost.WeakSlotOf(v), false)
	}

	rt.WeakClearOnDealloc(h, weak, referent)
	for i, s := range slots {
		if *s != 0 {
			t.Fatalf("slot %d not cleared: %#x", i, uintptr(*s))
		}
	}
}

// TestDoubleDeallocIsCaught exercises the double-free guard rthost adds on
// top of rt's own invariants.
func TestDoubleDeallocIsCaught(t *testing.T) {
	h := rthost.NewFakeHost()
	cls := &rthost.FakeClass{ClassName: "PlainObject"}
	obj := h.NewObject(cls)

	h.Dealloc(obj, nil, nil)

	defer func() {
		if recover() == nil {
			t.Fatal("expected second Dealloc to panic")
		}
	}()
	h.Dealloc(obj, nil, nil)
}

// TestConcurrentAssociationAccessOnIndependentObjects is a light concurrency
// smoke test: concurrent Set/Get/RemoveAll on independent objects must not
// corrupt the table or deadlock, matching the retain/release-outside-lock
// invariant the table relies on.
func TestConcurrentAssociationAccessOnIndependentObjects(t *testing.T) {
	h := rthost.NewFakeHost()
	tbl := rt.NewAssociationTable()
	cls := &rthost.FakeClass{ClassName: "PlainObject"}

	const n = 64
	objs := make([]rt.Addr, n)
	vals := make([]rt.Addr, n)
	for i := range objs {
		objs[i] = h.NewObject(cls)
		vals[i] = h.NewObject(cls)
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl.Set(h, objs[i], rt.Key(1), vals[i], rt.PolicyRetainNonatomic)
			if got := tbl.Get(h, objs[i], rt.Key(1)); got != vals[i] {
				t.Errorf("object %d: Get() = %#x, want %#x", i, uintptr(got), uintptr(vals[i]))
			}
			tbl.RemoveAll(h, objs[i])
		}()
	}
	wg.Wait()

	for i := range objs {
		if tbl.Count(objs[i]) != 0 {
			t.Errorf("object %d: Count() = %d after RemoveAll, want 0", i, tbl.Count(objs[i]))
		}
	}
}
