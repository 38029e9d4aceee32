package bitcache

import (
	"errors"
	"strings"
	"testing"
)

func TestPushPopRoundTrip(t *testing.T) {
	tcs := []struct {
		name string
		bits string
	}{
		{name: "single bit", bits: "1"},
		{name: "one block", bits: "10110100"},
		{name: "unaligned", bits: "1011010"},
		{name: "multi block", bits: "101101001110001101011010010111000"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			if err := c.Push(tc.bits); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Size() != len(tc.bits) {
				t.Errorf("Size() == %d, want %d", c.Size(), len(tc.bits))
			}
			got, err := c.Pop(len(tc.bits))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.bits {
				t.Errorf("Pop() == %s, want %s", got, tc.bits)
			}
			if c.Size() != 0 {
				t.Errorf("Size() after drain == %d, want 0", c.Size())
			}
		})
	}
}

func TestFIFOAcrossPushes(t *testing.T) {
	c := New()
	s1 := "110010"
	s2 := "0111010001"
	if err := c.Push(s1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Push(s2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got1, err := c.Pop(len(s1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got1 != s1 {
		t.Errorf("first pop == %s, want %s", got1, s1)
	}
	got2, err := c.Pop(len(s2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got2 != s2 {
		t.Errorf("second pop == %s, want %s", got2, s2)
	}
}

func TestInterleavedPushPop(t *testing.T) {
	// Popping an unaligned count must not corrupt bits pushed afterwards.
	c := New()
	if err := c.Push("101101101"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.Pop(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.Push("0011"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := c.Dump()
	want := "1101" + "0011"
	if got != want {
		t.Errorf("Dump() == %s, want %s", got, want)
	}
}

func TestPushRejectsNonBits(t *testing.T) {
	c := New()
	if err := c.Push("0101"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := c.Push("01a1")
	if !errors.Is(err, ErrInvalidBitstring) {
		t.Errorf("Push(non-bits) == %v, want ErrInvalidBitstring", err)
	}
	if c.Size() != 4 {
		t.Errorf("failed push mutated cache: Size() == %d, want 4", c.Size())
	}
}

func TestPopErrors(t *testing.T) {
	tcs := []struct {
		name   string
		loaded string
		n      int
		eErr   error
	}{
		{name: "zero bits", loaded: "0101", n: 0, eErr: ErrBitCount},
		{name: "negative bits", loaded: "0101", n: -3, eErr: ErrBitCount},
		{name: "empty cache", loaded: "", n: 1, eErr: ErrInsufficient},
		{name: "oversized", loaded: "0101", n: 5, eErr: ErrInsufficient},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			if tc.loaded != "" {
				if err := c.Push(tc.loaded); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			_, err := c.Pop(tc.n)
			if !errors.Is(err, tc.eErr) {
				t.Errorf("Pop(%d) == %v, want %v", tc.n, err, tc.eErr)
			}
			if c.Size() != len(tc.loaded) {
				t.Errorf("failed pop mutated cache: Size() == %d, want %d", c.Size(), len(tc.loaded))
			}
			if c.Dump() != tc.loaded {
				t.Errorf("failed pop mutated contents: %s != %s", c.Dump(), tc.loaded)
			}
		})
	}
}

func TestDumpDoesNotMutate(t *testing.T) {
	c := New()
	s := strings.Repeat("10", 37)
	if err := c.Push(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Dump(); got != s {
		t.Errorf("Dump() == %s, want %s", got, s)
	}
	if got := c.Dump(); got != s {
		t.Errorf("second Dump() == %s, want %s", got, s)
	}
	if c.Size() != len(s) {
		t.Errorf("Dump mutated size: %d != %d", c.Size(), len(s))
	}
}

func TestFlush(t *testing.T) {
	c := New()
	if err := c.Push("111000"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Flush()
	if c.Size() != 0 {
		t.Errorf("Size() after flush == %d, want 0", c.Size())
	}
	if c.Dump() != "" {
		t.Errorf("Dump() after flush == %s, want empty", c.Dump())
	}
	if err := c.Push("01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := c.Pop(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "01" {
		t.Errorf("Pop() after flush == %s, want 01", got)
	}
}
