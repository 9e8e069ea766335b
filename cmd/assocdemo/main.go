// Command assocdemo exercises the associative-reference and zeroing
// weak-reference tables against rthost's simulated object space, printing a
// short trace of what happens. It has no interactive input; it exists to
// show the two tables working together outside of a test binary.
package main

import (
	"fmt"

	"github.com/assocweak/rt"
	"github.com/assocweak/rt/rthost"
)

func main() {
	h := rthost.NewFakeHost()
	assoc := rt.NewAssociationTable()
	weak := rt.NewWeakTable()

	owner := h.NewObjectFromManifest("PlainObject")
	sideTable := h.NewObjectFromManifest("PlainObject")

	fmt.Printf("allocated owner %#x and side table %#x\n", uintptr(owner), uintptr(sideTable))

	assoc.Set(h, owner, rt.Key(1), sideTable, rt.PolicyRetainNonatomic)
	fmt.Printf("owner now carries %d association(s), side table refcount %d\n",
		assoc.Count(owner), h.RefCount(sideTable))

	var weakSlot rt.Addr
	rt.WeakRegister(h, weak, owner, rthost.WeakSlotOf(&weakSlot), false)
	weakSlot = owner
	fmt.Printf("weak slot now aliases owner: %#x\n", uintptr(weakSlot))

	h.Dealloc(owner, assoc, weak)
	fmt.Printf("after dealloc: weak slot = %#x, association count = %d, side table refcount = %d\n",
		uintptr(weakSlot), assoc.Count(owner), h.RefCount(sideTable))

	// LegacyBridgedObject declares both usesCustomRR and
	// hasAllowsWeakReference, so forming a weak reference to one resolves
	// and succeeds through the custom-RR path rather than the default
	// IsDeallocating check.
	bridged := h.NewObjectFromManifest("LegacyBridgedObject")
	var bridgedSlot rt.Addr
	got := rt.WeakRegister(h, weak, bridged, rthost.WeakSlotOf(&bridgedSlot), false)
	fmt.Printf("weak-registering a LegacyBridgedObject returned %#x\n", uintptr(got))

	// UnbridgedLegacyObject declares usesCustomRR but not
	// hasAllowsWeakReference, so its allowsWeakReference selector never
	// resolves, the same as a real forwarding failure; WeakRegister
	// reports that by returning the zero Addr.
	unbridged := h.NewObjectFromManifest("UnbridgedLegacyObject")
	var unbridgedSlot rt.Addr
	got = rt.WeakRegister(h, weak, unbridged, rthost.WeakSlotOf(&unbridgedSlot), false)
	fmt.Printf("weak-registering an UnbridgedLegacyObject returned %#x (0 means unresolved)\n", uintptr(got))
}
