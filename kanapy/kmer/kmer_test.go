// Copyright © 2025-2026 Peter Audano
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package kmer

import (
	"errors"
	"math/rand"
	"testing"
)

var bases = [4]byte{'A', 'C', 'G', 'T'}

func randKmerString(r *rand.Rand, k int) string {
	s := make([]byte, k)
	for i := range s {
		s[i] = bases[r.Intn(4)]
	}
	return string(s)
}

func TestNew(t *testing.T) {
	c, err := New(21, 15, 0)
	if err != nil {
		t.Error(err)
		return
	}
	if c.KBits != 42 {
		t.Errorf("wrong k bit size: %d", c.KBits)
	}
	if c.Mask != (uint64(1)<<42)-1 {
		t.Errorf("wrong mask: %064b", c.Mask)
	}

	tests := []struct {
		k, ws, wsb int
	}{
		{1, 1, 1},
		{4, 1, 1},
		{5, 1, 2},
		{15, 1, 4},
		{16, 1, 4},
		{17, 2, 5},
		{31, 2, 8},
		{32, 2, 8},
	}
	for _, test := range tests {
		c, err := New(test.k, 0, 0)
		if err != nil {
			t.Error(err)
			return
		}
		if c.WordSize != test.ws {
			t.Errorf("k=%d: word size %d, expected %d", test.k, c.WordSize, test.ws)
		}
		if c.WordSizeBytes != test.wsb {
			t.Errorf("k=%d: word size bytes %d, expected %d", test.k, c.WordSizeBytes, test.wsb)
		}
	}

	if _, err = New(0, 0, 0); !errors.Is(err, ErrKOverflow) {
		t.Errorf("k=0: expected ErrKOverflow, got %v", err)
	}
	if _, err = New(33, 0, 0); !errors.Is(err, ErrKOverflow) {
		t.Errorf("k=33: expected ErrKOverflow, got %v", err)
	}
	if _, err = New(21, 15, 1); !errors.Is(err, ErrMinimizerMask) {
		t.Errorf("mask=1: expected ErrMinimizerMask, got %v", err)
	}
	if _, err = New(21, 16, 0); !errors.Is(err, ErrMinimizerSize) {
		t.Errorf("minK=16: expected ErrMinimizerSize, got %v", err)
	}
	if _, err = New(4, 5, 0); !errors.Is(err, ErrMinimizerSize) {
		t.Errorf("minK>k: expected ErrMinimizerSize, got %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	c, err := New(4, 0, 0)
	if err != nil {
		t.Error(err)
		return
	}

	kmer, err := c.Encode("AACC")
	if err != nil {
		t.Error(err)
		return
	}
	if kmer != 0b00000101 {
		t.Errorf("AACC encoded to %08b", kmer)
	}

	kmer, err = c.Encode("acgt")
	if err != nil {
		t.Error(err)
		return
	}
	if kmer != 0b00011011 {
		t.Errorf("acgt encoded to %08b", kmer)
	}
	if s := c.Decode(kmer); s != "ACGT" {
		t.Errorf("decoded to %s, expected ACGT", s)
	}

	if _, err = c.Encode("ACG"); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("short string: expected ErrLengthMismatch, got %v", err)
	}
	if _, err = c.Encode("ACGTA"); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("long string: expected ErrLengthMismatch, got %v", err)
	}
	if _, err = c.Encode("ACNT"); !errors.Is(err, ErrInvalidBase) {
		t.Errorf("N base: expected ErrInvalidBase, got %v", err)
	}

	// round trip across all supported k sizes
	r := rand.New(rand.NewSource(1))
	for k := 1; k <= 32; k++ {
		c, err := New(k, 0, 0)
		if err != nil {
			t.Error(err)
			return
		}
		for i := 0; i < 100; i++ {
			s := randKmerString(r, k)
			kmer, err := c.Encode(s)
			if err != nil {
				t.Error(err)
				return
			}
			if s2 := c.Decode(kmer); s2 != s {
				t.Errorf("k=%d: round trip %s -> %s", k, s, s2)
				return
			}
		}
	}
}

func TestAppend(t *testing.T) {
	c, err := New(4, 0, 0)
	if err != nil {
		t.Error(err)
		return
	}

	kmer, _ := c.Encode("ACGT")

	kmer, err = c.Append(kmer, 'C')
	if err != nil {
		t.Error(err)
		return
	}
	if s := c.Decode(kmer); s != "CGTC" {
		t.Errorf("append C: got %s, expected CGTC", s)
	}

	kmer, err = c.Append(kmer, 'g')
	if err != nil {
		t.Error(err)
		return
	}
	if s := c.Decode(kmer); s != "GTCG" {
		t.Errorf("append g: got %s, expected GTCG", s)
	}

	if _, err = c.Append(kmer, 'N'); !errors.Is(err, ErrInvalidBase) {
		t.Errorf("append N: expected ErrInvalidBase, got %v", err)
	}
}

func TestRevComp(t *testing.T) {
	c, err := New(4, 0, 0)
	if err != nil {
		t.Error(err)
		return
	}

	kmer, _ := c.Encode("AACC")
	want, _ := c.Encode("GGTT")
	if rc := c.RevComp(kmer); rc != want {
		t.Errorf("revcomp AACC: got %s", c.Decode(rc))
	}

	// ACGT is its own reverse complement
	kmer, _ = c.Encode("ACGT")
	if rc := c.RevComp(kmer); rc != kmer {
		t.Errorf("revcomp ACGT: got %s", c.Decode(rc))
	}

	// involution over random k-mers of every size
	r := rand.New(rand.NewSource(11))
	for k := 1; k <= 32; k++ {
		c, err := New(k, 0, 0)
		if err != nil {
			t.Error(err)
			return
		}
		for i := 0; i < 100; i++ {
			kmer, err := c.Encode(randKmerString(r, k))
			if err != nil {
				t.Error(err)
				return
			}
			if back := c.RevComp(c.RevComp(kmer)); back != kmer {
				t.Errorf("k=%d: double revcomp %s -> %s", k, c.Decode(kmer), c.Decode(back))
				return
			}
		}
	}
}

// bruteMinimizer recomputes the minimizer from the k-mer string.
func bruteMinimizer(t *testing.T, c *Codec, kmer uint64) uint64 {
	mc, err := New(c.MinK, 0, 0)
	if err != nil {
		t.Fatal(err)
	}

	s := c.Decode(kmer)

	var min uint64
	first := true
	for i := 0; i+c.MinK <= len(s); i++ {
		sub, err := mc.Encode(s[i : i+c.MinK])
		if err != nil {
			t.Fatal(err)
		}
		for _, v := range [2]uint64{sub, mc.RevComp(sub)} {
			if first || v < min {
				min = v
				first = false
			}
		}
	}
	return min
}

func TestMinimizer(t *testing.T) {
	c, err := New(4, 2, 0)
	if err != nil {
		t.Error(err)
		return
	}

	// windows of AAAC: AA AA AC, reverse complements TT TT GT
	kmer, _ := c.Encode("AAAC")
	m, err := c.Minimizer(kmer)
	if err != nil {
		t.Error(err)
		return
	}
	if m != 0 {
		t.Errorf("minimizer of AAAC: got %04b, expected 0", m)
	}

	// windows of TTGT: TT TG GT, reverse complements AA CA AC
	kmer, _ = c.Encode("TTGT")
	m, err = c.Minimizer(kmer)
	if err != nil {
		t.Error(err)
		return
	}
	if m != 0 {
		t.Errorf("minimizer of TTGT: got %04b, expected 0", m)
	}

	// a k-mer and its reverse complement share windows, so sharing the
	// canonical minimizer
	r := rand.New(rand.NewSource(101))
	for i := 0; i < 500; i++ {
		kmer, err := c.Encode(randKmerString(r, 4))
		if err != nil {
			t.Error(err)
			return
		}
		m1, _ := c.Minimizer(kmer)
		m2, _ := c.Minimizer(c.RevComp(kmer))
		if m1 != m2 {
			t.Errorf("minimizer of %s is %d, of its reverse complement %d",
				c.Decode(kmer), m1, m2)
			return
		}
	}

	// brute force comparison across configurations
	for _, cfg := range [][2]int{{4, 2}, {9, 3}, {21, 15}, {31, 7}, {32, 15}, {8, 8}} {
		c, err := New(cfg[0], cfg[1], 0)
		if err != nil {
			t.Error(err)
			return
		}
		for i := 0; i < 200; i++ {
			kmer, err := c.Encode(randKmerString(r, cfg[0]))
			if err != nil {
				t.Error(err)
				return
			}
			m, err := c.Minimizer(kmer)
			if err != nil {
				t.Error(err)
				return
			}
			if want := bruteMinimizer(t, c, kmer); m != want {
				t.Errorf("k=%d minK=%d: minimizer of %s is %d, expected %d",
					cfg[0], cfg[1], c.Decode(kmer), m, want)
				return
			}
		}
	}

	// no minimizer size configured
	c2, err := New(4, 0, 0)
	if err != nil {
		t.Error(err)
		return
	}
	if _, err = c2.Minimizer(1); !errors.Is(err, ErrNoMinimizer) {
		t.Errorf("expected ErrNoMinimizer, got %v", err)
	}
}
