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

// Stream slides a window of K valid bases over a sequence, one base at a
// time. Any non-ACGT byte restarts the window while the position keeps
// advancing, so no emitted k-mer spans an ambiguous base. A Stream is a
// single forward pass; call Codec.Stream again to rescan.
type Stream struct {
	c   *Codec
	seq []byte

	i    int // next byte of seq
	kmer uint64
	load int // valid bases in the current window, counting from 1
	pos  int // 0-based start of the current window, -K before any base
}

// Stream returns an iterator over the k-mers of seq.
func (c *Codec) Stream(seq []byte) *Stream {
	return &Stream{c: c, seq: seq, load: 1, pos: -c.K}
}

// Next returns the next k-mer and the 0-based position of its first base.
// The first complete window of the sequence has position 0. ok is false
// when the sequence is exhausted.
func (s *Stream) Next() (kmer uint64, pos int, ok bool) {
	for s.i < len(s.seq) {
		b := base2bit[s.seq[s.i]]
		s.i++
		s.pos++

		if b > 3 {
			s.load = 1
			continue
		}

		s.kmer = (s.kmer<<2 | uint64(b)) & s.c.Mask

		if s.load == s.c.K {
			return s.kmer, s.pos, true
		}
		s.load++
	}

	return 0, 0, false
}
