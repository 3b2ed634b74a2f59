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

import "testing"

type streamHit struct {
	kmer string
	pos  int
}

func collectStream(t *testing.T, c *Codec, seq string) []streamHit {
	var hits []streamHit
	s := c.Stream([]byte(seq))
	for {
		kmer, pos, ok := s.Next()
		if !ok {
			break
		}
		hits = append(hits, streamHit{c.Decode(kmer), pos})
	}
	return hits
}

func checkStream(t *testing.T, c *Codec, seq string, expected []streamHit) {
	hits := collectStream(t, c, seq)
	if len(hits) != len(expected) {
		t.Errorf("%s: %d k-mers, expected %d: %v", seq, len(hits), len(expected), hits)
		return
	}
	for i, hit := range hits {
		if hit != expected[i] {
			t.Errorf("%s: k-mer %d is %v, expected %v", seq, i, hit, expected[i])
		}
	}
}

func TestStream(t *testing.T) {
	c, err := New(3, 0, 0)
	if err != nil {
		t.Error(err)
		return
	}

	checkStream(t, c, "ACGTA", []streamHit{
		{"ACG", 0},
		{"CGT", 1},
		{"GTA", 2},
	})

	// the window restarts after an ambiguous base, positions keep advancing
	checkStream(t, c, "ACNGTA", []streamHit{
		{"GTA", 3},
	})

	checkStream(t, c, "acgNNtgca", []streamHit{
		{"ACG", 0},
		{"TGC", 5},
		{"GCA", 6},
	})

	// too short, nothing but ambiguity, empty
	checkStream(t, c, "AC", nil)
	checkStream(t, c, "NNNNNN", nil)
	checkStream(t, c, "", nil)
}

func TestStreamK1(t *testing.T) {
	c, err := New(1, 0, 0)
	if err != nil {
		t.Error(err)
		return
	}

	checkStream(t, c, "ANG", []streamHit{
		{"A", 0},
		{"G", 2},
	})
}

func TestStreamSinglePass(t *testing.T) {
	c, err := New(2, 0, 0)
	if err != nil {
		t.Error(err)
		return
	}

	s := c.Stream([]byte("ACG"))
	n := 0
	for {
		if _, _, ok := s.Next(); !ok {
			break
		}
		n++
	}
	if n != 2 {
		t.Errorf("first pass saw %d k-mers, expected 2", n)
	}

	// exhausted, a fresh Stream is needed to rescan
	if _, _, ok := s.Next(); ok {
		t.Error("exhausted stream yielded a k-mer")
	}
}
