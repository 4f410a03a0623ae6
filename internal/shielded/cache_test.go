package shielded

import (
	"bytes"
	"errors"
	"slices"
	"testing"
)

func blobs(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = bytes.Repeat([]byte{byte(i + 1)}, 8)
	}
	return out
}

func installPanic(t *testing.T, c *Cache, in [][]byte) (v *InvariantViolation) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err, ok := r.(error)
		if !ok || !errors.As(err, &v) {
			t.Fatalf("panic value = %v, want *InvariantViolation", r)
		}
	}()
	c.Install(slices.Values(in))
	return nil
}

func TestCache_Install_WrongCount(t *testing.T) {
	for _, n := range []int{0, 2, 4} {
		c := NewCache()
		v := installPanic(t, c, blobs(n))
		if v == nil {
			t.Fatalf("Install(%d blobs) did not panic", n)
		}
		if c.Loaded() {
			t.Errorf("Install(%d blobs) should leave the cache empty", n)
		}
	}
}

func TestCache_Install_Roundtrip(t *testing.T) {
	c := NewCache()
	if c.Loaded() {
		t.Fatal("new cache should be empty")
	}
	in := blobs(3)
	if v := installPanic(t, c, in); v != nil {
		t.Fatalf("Install(3 blobs) panicked: %v", v)
	}

	p, ok := c.Params()
	if !ok {
		t.Fatal("Params() should report a loaded set")
	}
	if !bytes.Equal(p.Spend, in[0]) || !bytes.Equal(p.Output, in[1]) || !bytes.Equal(p.Convert, in[2]) {
		t.Error("installed blobs should come back as spend, output, convert")
	}

	// Installed blobs are copies.
	in[0][0] = 0xff
	p, _ = c.Params()
	if p.Spend[0] == 0xff {
		t.Error("cache should not alias caller memory")
	}
}

func TestCache_Install_ReplacesWholesale(t *testing.T) {
	c := NewCache()
	installPanic(t, c, blobs(3))

	next := [][]byte{{7}, {8}, {9}}
	installPanic(t, c, next)
	p, _ := c.Params()
	if !bytes.Equal(p.Spend, []byte{7}) || !bytes.Equal(p.Convert, []byte{9}) {
		t.Errorf("Params() = %+v, want the second set", p)
	}

	// A failed install keeps the previous set.
	installPanic(t, c, blobs(4))
	p, _ = c.Params()
	if !bytes.Equal(p.Output, []byte{8}) {
		t.Error("failed install should not touch the cached set")
	}
}

func TestInvariantViolation_Error(t *testing.T) {
	if got := (&InvariantViolation{Got: 2}).Error(); got != "shielded params: got 2 blobs, want 3" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&InvariantViolation{Got: 4}).Error(); got != "shielded params: got more than 3 blobs" {
		t.Errorf("Error() = %q", got)
	}
}
