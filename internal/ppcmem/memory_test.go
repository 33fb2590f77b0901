package ppcmem

import (
	"testing"

	"ppcrecomp/internal/ppc"
)

func TestStoreU32BigEndianBytes(t *testing.T) {
	m := New()
	m.StoreU32(0x1000, 0x11223344)

	want := []byte{0x11, 0x22, 0x33, 0x44}
	got := m.Bytes[0x1000 : 0x1000+4]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = 0x%02X, want 0x%02X", i, got[i], want[i])
		}
	}
}

func TestLoadStoreRoundTrip(t *testing.T) {
	m := New()

	addrs := []uint32{0, 1, 3, 0xFFFF, 0x1000_0001}

	for _, a := range addrs {
		m.StoreU8(a, 0xAB)
		if got := m.LoadU8(a); got != 0xAB {
			t.Errorf("u8 round trip at 0x%X: got 0x%X", a, got)
		}
	}
	for _, a := range addrs {
		m.StoreU16(a, 0xBEEF)
		if got := m.LoadU16(a); got != 0xBEEF {
			t.Errorf("u16 round trip at 0x%X: got 0x%X", a, got)
		}
	}
	for _, a := range addrs {
		m.StoreU32(a, 0xDEADBEEF)
		if got := m.LoadU32(a); got != 0xDEADBEEF {
			t.Errorf("u32 round trip at 0x%X: got 0x%X", a, got)
		}
	}
	for _, a := range addrs {
		m.StoreU64(a, 0x0123456789ABCDEF)
		if got := m.LoadU64(a); got != 0x0123456789ABCDEF {
			t.Errorf("u64 round trip at 0x%X: got 0x%X", a, got)
		}
	}
}

func TestFreeFunctionsOperateOnPlainSlice(t *testing.T) {
	base := make([]byte, 0x100)
	ctx := ppc.NewContext()

	StoreU32(base, 0x10, 0x01020304)
	if got := LoadU32(base, 0x10); got != 0x01020304 {
		t.Fatalf("LoadU32 = 0x%X, want 0x01020304", got)
	}

	Reserve(ctx, base, 0x20)
	if !ConditionalStoreU32(ctx, base, 0x20, 0, 7) {
		t.Fatalf("conditional store failed with a valid reservation")
	}
	if got := LoadU32(base, 0x20); got != 7 {
		t.Fatalf("conditional store did not apply: got %d", got)
	}
}

func TestConditionalStoreRequiresReservation(t *testing.T) {
	m := New()
	ctx := ppc.NewContext()

	m.StoreU32(0x2000, 1)

	// No reservation held: the compare-and-swap must not apply.
	if m.ConditionalStoreU32(ctx, 0x2000, 1, 2) {
		t.Fatalf("conditional store succeeded without a reservation")
	}
	if got := m.LoadU32(0x2000); got != 1 {
		t.Fatalf("memory mutated despite failed conditional store: got %d", got)
	}

	m.Reserve(ctx, 0x2000)
	if !m.ConditionalStoreU32(ctx, 0x2000, 1, 2) {
		t.Fatalf("conditional store failed with a valid reservation")
	}
	if got := m.LoadU32(0x2000); got != 2 {
		t.Fatalf("conditional store did not apply: got %d", got)
	}
}
