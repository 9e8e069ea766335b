package rt

import "testing"

func TestDisguiseRoundTrip(t *testing.T) {
	cases := []Addr{0, 1, 0xDEADBEEF, ^Addr(0)}
	for _, a := range cases {
		d := Disguise(a)
		if got := d.Undisguise(); got != a {
			t.Errorf("Disguise(%#x).Undisguise() = %#x, want %#x", uintptr(a), uintptr(got), uintptr(a))
		}
	}
}

func TestDisguiseLiveAddrNeverCollidesWithNull(t *testing.T) {
	// A disguised live (non-null) address should never collide with the
	// disguise of the null address, since Disguise is a bijection.
	if Disguise(0) == Disguise(1) {
		t.Fatal("Disguise is not injective")
	}
}

func TestHashAddrSpread(t *testing.T) {
	const mask = 63
	seen := make(map[uintptr]int)
	for i := uintptr(0); i < 64; i++ {
		idx := hashAddr(i<<4) & mask
		seen[idx]++
	}
	if len(seen) < 32 {
		t.Errorf("hashAddr distributes poorly over small consecutive pointers: only %d distinct buckets of 64", len(seen))
	}
}
