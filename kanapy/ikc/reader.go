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

package ikc

import (
	"github.com/pkg/errors"

	"github.com/paudano/kanapy/kanapy/internal/mmap"
	"github.com/paudano/kanapy/kanapy/kmer"
)

// Reader answers k-mer count queries against one IKC file.
//
// The file is memory mapped and the index is decoded once at Open, so
// a query costs one minimizer computation and a binary search over a
// single minimizer group. Queries also keep a one-group cache, which
// is searched before the minimizer of the queried k-mer is computed.
// Sorted query batches therefore mostly skip the index entirely.
//
// A Reader is not safe for concurrent use, the group cache mutates on
// every query. Open one Reader per goroutine, the mappings share
// physical pages.
type Reader struct {
	path   string
	mm     *mmap.File
	header *Header
	codec  *kmer.Codec

	index      map[uint32]Group
	recSize    int
	kmerBytes  int
	numRecords uint64

	// the single-slot group cache
	lastMin    uint32
	lastOffset uint64
	lastN      int
}

// Open maps the IKC file at path and validates its header and index.
// The returned reader holds the file open until Close.
func Open(path string) (*Reader, error) {
	mm, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	h, err := parseHeader(mm.Data)
	if err != nil {
		mm.Close()
		return nil, errors.Wrap(err, path)
	}

	codec, err := kmer.New(h.KSize, h.KMinSize, h.KMinMask)
	if err != nil {
		mm.Close()
		return nil, errors.Wrap(err, path)
	}

	recSize := codec.WordSizeBytes + 4

	index, lastMin, err := readIndex(mm.Data, h, recSize)
	if err != nil {
		mm.Close()
		return nil, errors.Wrap(err, path)
	}

	mm.AdviseRandom()

	r := &Reader{
		path:      path,
		mm:        mm,
		header:    h,
		codec:     codec,
		index:     index,
		recSize:   recSize,
		kmerBytes: codec.WordSizeBytes,
	}
	for _, g := range index {
		r.numRecords += uint64(g.N)
	}

	g := index[lastMin]
	r.lastMin, r.lastOffset, r.lastN = lastMin, g.Offset, g.N

	return r, nil
}

// Get returns the count of a packed k-mer, or 0 if the file does not
// contain it. The cached group is searched first; only on a miss is
// the k-mer's minimizer computed and the cache moved to its group.
// A k-mer whose minimizer has no group leaves the cache untouched.
func (r *Reader) Get(kmer uint64) (uint32, error) {
	if r.mm == nil {
		return 0, ErrClosed
	}

	if count := r.search(kmer, r.lastOffset, r.lastN); count > 0 {
		return count, nil
	}

	minimizer := uint32(r.codec.MustMinimizer(kmer))
	if minimizer == r.lastMin {
		return 0, nil
	}

	g, ok := r.index[minimizer]
	if !ok {
		return 0, nil
	}

	r.lastMin, r.lastOffset, r.lastN = minimizer, g.Offset, g.N

	return r.search(kmer, g.Offset, g.N), nil
}

// search runs a binary search over the n records starting at offset
// and returns the matching record's count, or 0.
func (r *Reader) search(kmer uint64, offset uint64, n int) uint32 {
	data := r.mm.Data
	recSize := uint64(r.recSize)
	kb := r.kmerBytes

	first, last := 0, n-1
	for first <= last {
		mid := (first + last) / 2
		pos := offset + uint64(mid)*recSize

		next := readKmer(data[pos:], kb)
		if next == kmer {
			return be.Uint32(data[pos+uint64(kb):])
		}
		if kmer > next {
			first = mid + 1
		} else {
			last = mid - 1
		}
	}
	return 0
}

// readRecord decodes the data record at byte offset pos.
func (r *Reader) readRecord(pos uint64) Record {
	p := r.mm.Data[pos:]
	return Record{
		Kmer:  readKmer(p, r.kmerBytes),
		Count: be.Uint32(p[r.kmerBytes:]),
	}
}

// Header returns a copy of the decoded file header.
func (r *Reader) Header() Header {
	return *r.header
}

// Codec returns the k-mer codec matching the file's header.
func (r *Reader) Codec() *kmer.Codec {
	return r.codec
}

// NumGroups returns the number of minimizer groups in the file.
func (r *Reader) NumGroups() int {
	return len(r.index)
}

// NumRecords returns the total number of k-mer records in the file.
func (r *Reader) NumRecords() uint64 {
	return r.numRecords
}

// RecordSize returns the on-disk size of one data record in bytes.
func (r *Reader) RecordSize() int {
	return r.recSize
}

// IndexEntries returns a copy of the minimizer index. The map is the
// caller's to keep, iteration order is undefined.
func (r *Reader) IndexEntries() (map[uint32]Group, error) {
	if r.mm == nil {
		return nil, ErrClosed
	}
	index := make(map[uint32]Group, len(r.index))
	for m, g := range r.index {
		index[m] = g
	}
	return index, nil
}

// Close unmaps the file. Closing twice is harmless, and queries and
// iterators fail with ErrClosed afterwards.
func (r *Reader) Close() error {
	if r.mm == nil {
		return nil
	}
	err := r.mm.Close()
	r.mm = nil
	return err
}
