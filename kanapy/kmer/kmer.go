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

// Package kmer converts DNA k-mers between strings and 2-bit packed
// integers and computes reverse complements and minimizers.
//
// A k-mer of size K occupies the low 2*K bits of a uint64, two bits per
// base (A=0, C=1, G=2, T=3), the first base in the highest bit pair.
// Lower-case bases encode identically.
package kmer

import (
	"errors"

	"github.com/shenwei356/kmers"
)

// ErrKOverflow means the k-mer size is out of the range [1, 32].
var ErrKOverflow = errors.New("kmer: k-mer size overflow, valid range [1, 32]")

// ErrMinimizerSize means the minimizer size is out of the range [0, 15]
// or exceeds the k-mer size.
var ErrMinimizerSize = errors.New("kmer: invalid minimizer size")

// ErrMinimizerMask means a non-zero minimizer mask was given, which no
// current producer writes and no reader supports.
var ErrMinimizerMask = errors.New("kmer: non-zero minimizer mask is not supported")

// ErrNoMinimizer means a minimizer was requested from a codec built
// without a minimizer size.
var ErrNoMinimizer = errors.New("kmer: no minimizer size set")

// ErrInvalidBase means a base is not one of A/C/G/T (either case).
var ErrInvalidBase = errors.New("kmer: invalid base, expecting A/C/G/T")

// ErrLengthMismatch means a string's length does not equal the k-mer size.
var ErrLengthMismatch = errors.New("kmer: string length does not match k-mer size")

var base2bit [256]uint8

func init() {
	for i := range base2bit {
		base2bit[i] = 255
	}
	base2bit['A'], base2bit['a'] = 0, 0
	base2bit['C'], base2bit['c'] = 1, 1
	base2bit['G'], base2bit['g'] = 2, 2
	base2bit['T'], base2bit['t'] = 3, 3
}

// Codec holds the constants of one k-mer size and, optionally, of the
// minimizer size used to bucket k-mers. A Codec is immutable and safe
// for concurrent use.
type Codec struct {
	K       int    // k-mer size in bases
	MinK    int    // minimizer size in bases, 0 when minimizers are disabled
	MinMask uint32 // reserved minimizer mask, always 0

	KBits         int    // k-mer size in bits
	Mask          uint64 // mask of the low 2*K bits
	WordSize      int    // k-mer size in 32-bit words
	WordSizeBytes int    // bytes per k-mer in serialized records

	minCodec  *Codec // codec of MinK-sized k-mers, nil when MinK == 0
	nSubKmers int    // windows of length MinK per k-mer
}

// New returns a codec for k-mers of k bases. minK enables minimizer
// computation when positive. minMask is reserved and must be 0.
func New(k, minK int, minMask uint32) (*Codec, error) {
	if minMask != 0 {
		return nil, ErrMinimizerMask
	}
	if k < 1 || k > 32 {
		return nil, ErrKOverflow
	}
	if minK < 0 || minK > 15 || minK > k {
		return nil, ErrMinimizerSize
	}

	c := &Codec{
		K:             k,
		MinK:          minK,
		KBits:         k << 1,
		Mask:          ^uint64(0) >> (64 - k<<1),
		WordSize:      (k-1)/16 + 1,
		WordSizeBytes: (k-1)/4 + 1,
	}

	if minK > 0 {
		mc, err := New(minK, 0, 0)
		if err != nil {
			return nil, err
		}
		c.minCodec = mc
		c.nSubKmers = k - minK + 1
	}

	return c, nil
}

// Append shifts kmer one base left and appends base, dropping the base
// that falls off the high end.
func (c *Codec) Append(kmer uint64, base byte) (uint64, error) {
	b := base2bit[base]
	if b > 3 {
		return 0, ErrInvalidBase
	}
	return (kmer<<2 | uint64(b)) & c.Mask, nil
}

// Encode converts a k-mer string of exactly K bases to its packed form.
func (c *Codec) Encode(s string) (uint64, error) {
	if len(s) != c.K {
		return 0, ErrLengthMismatch
	}
	var kmer uint64
	for i := 0; i < len(s); i++ {
		b := base2bit[s[i]]
		if b > 3 {
			return 0, ErrInvalidBase
		}
		kmer = kmer<<2 | uint64(b)
	}
	return kmer, nil
}

// Decode converts a packed k-mer to a string of exactly K bases.
func (c *Codec) Decode(kmer uint64) string {
	return string(kmers.MustDecode(kmer, c.K))
}

// RevComp returns the reverse complement: base order inverted and every
// base swapped for its Watson-Crick partner.
func (c *Codec) RevComp(kmer uint64) uint64 {
	return kmers.MustRevComp(kmer, c.K)
}

// Minimizer returns the smallest value among all MinK-sized windows of
// kmer and their reverse complements. K-mers sharing a minimizer land in
// the same group of an IKC file.
func (c *Codec) Minimizer(kmer uint64) (uint64, error) {
	if c.MinK == 0 {
		return 0, ErrNoMinimizer
	}
	return c.MustMinimizer(kmer), nil
}

// MustMinimizer is similar to Minimizer, but does not check the
// minimizer configuration.
func (c *Codec) MustMinimizer(kmer uint64) uint64 {
	mc := c.minCodec

	min := kmer & mc.Mask
	if rc := kmers.MustRevComp(min, mc.K); rc < min {
		min = rc
	}

	for i := 1; i < c.nSubKmers; i++ {
		kmer >>= 2

		sub := kmer & mc.Mask
		if sub < min {
			min = sub
		}
		if rc := kmers.MustRevComp(sub, mc.K); rc < min {
			min = rc
		}
	}

	return min
}
