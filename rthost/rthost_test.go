package rthost_test

import (
	"testing"

	"github.com/assocweak/rt"
	"github.com/assocweak/rt/rthost"
)

func TestClassByNameMatchesManifest(t *testing.T) {
	cls := rthost.ClassByName("RawResource")
	if cls == nil {
		t.Fatal("ClassByName(\"RawResource\") = nil, want a class from classes.yaml")
	}
	if cls.Name() != "RawResource" {
		t.Fatalf("Name() = %q, want %q", cls.Name(), "RawResource")
	}
	if !cls.ForbidsAssociatedObjects() {
		t.Fatal("RawResource should forbid associated objects per classes.yaml")
	}
}

func TestClassByNameUnknownReturnsNil(t *testing.T) {
	if cls := rthost.ClassByName("NoSuchClass"); cls != nil {
		t.Fatalf("ClassByName on an unknown name = %v, want nil", cls)
	}
}

func TestNewObjectFromManifestForbidsAssociatedObjects(t *testing.T) {
	h := rthost.NewFakeHost()
	tbl := rt.NewAssociationTable()
	obj := h.NewObjectFromManifest("RawResource")

	defer func() {
		if recover() == nil {
			t.Fatal("expected Set on a manifest-forbidden class to panic via Fatalf")
		}
	}()
	tbl.Set(h, obj, rt.Key(1), h.NewObjectFromManifest("PlainObject"), rt.PolicyAssign)
}

func TestNewObjectFromManifestCustomRRResolves(t *testing.T) {
	h := rthost.NewFakeHost()
	wt := rt.NewWeakTable()
	obj := h.NewObjectFromManifest("LegacyBridgedObject")

	var slot rt.Addr
	got := rt.WeakRegister(h, wt, obj, rthost.WeakSlotOf(&slot), false)
	if got != obj {
		t.Fatalf("WeakRegister on a LegacyBridgedObject = %#x, want %#x", uintptr(got), uintptr(obj))
	}
}

func TestNewObjectFromManifestCustomRRUnresolved(t *testing.T) {
	h := rthost.NewFakeHost()
	wt := rt.NewWeakTable()
	obj := h.NewObjectFromManifest("UnbridgedLegacyObject")

	var slot rt.Addr
	got := rt.WeakRegister(h, wt, obj, rthost.WeakSlotOf(&slot), false)
	if got != 0 {
		t.Fatalf("WeakRegister on an UnbridgedLegacyObject = %#x, want 0 (unresolved)", uintptr(got))
	}
}
