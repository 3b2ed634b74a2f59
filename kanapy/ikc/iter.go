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
	"container/heap"

	"github.com/twotwotwo/sorts/sortutil"
)

// MinOrderIter iterates all records of a file grouped by ascending
// minimizer, records within a group in their on-disk order.
//
//	it, err := r.MinOrderIter()
//	checkError(err)
//	for it.Next() {
//		rec := it.Record()
//		...
//	}
//	checkError(it.Err())
//
// Iterators are single-pass, call the constructor again to restart.
// Several iterators over one reader run independently.
type MinOrderIter struct {
	r      *Reader
	groups []Group
	gi     int // current group
	ri     int // next record within the current group
	rec    Record
	err    error
}

// MinOrderIter returns an iterator over all records in minimizer
// order.
func (r *Reader) MinOrderIter() (*MinOrderIter, error) {
	if r.mm == nil {
		return nil, ErrClosed
	}

	minimizers := make([]uint32, 0, len(r.index))
	for m := range r.index {
		minimizers = append(minimizers, m)
	}
	sortutil.Uint32s(minimizers)

	groups := make([]Group, len(minimizers))
	for i, m := range minimizers {
		groups[i] = r.index[m]
	}

	return &MinOrderIter{r: r, groups: groups}, nil
}

// Next advances to the next record. It returns false when the records
// are exhausted or the reader is closed, then Err tells which.
func (it *MinOrderIter) Next() bool {
	if it.err != nil {
		return false
	}
	if it.r.mm == nil {
		it.err = ErrClosed
		return false
	}
	for it.gi < len(it.groups) {
		g := it.groups[it.gi]
		if it.ri >= g.N {
			it.gi++
			it.ri = 0
			continue
		}
		it.rec = it.r.readRecord(g.Offset + uint64(it.ri)*uint64(it.r.recSize))
		it.ri++
		return true
	}
	return false
}

// Record returns the record Next advanced to.
func (it *MinOrderIter) Record() Record {
	return it.rec
}

// Err returns the first error hit during iteration, if any.
func (it *MinOrderIter) Err() error {
	return it.err
}

// groupCursor is one group's read position during the global merge.
type groupCursor struct {
	rec Record
	pos uint64 // offset of the next record to read
	end uint64 // offset one past the group's last record
}

// cursorHeap orders group cursors by their current k-mer. K-mers are
// unique across a file, so there are never ties.
type cursorHeap []*groupCursor

func (h cursorHeap) Len() int           { return len(h) }
func (h cursorHeap) Less(i, j int) bool { return h[i].rec.Kmer < h[j].rec.Kmer }
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x interface{}) {
	*h = append(*h, x.(*groupCursor))
}

func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// KmerOrderIter iterates all records of a file in ascending k-mer
// order. Records are sorted within a group but not across groups, so
// the iterator k-way merges the groups through a heap of cursors, one
// per group, keyed by the cursor's current k-mer.
type KmerOrderIter struct {
	r   *Reader
	h   cursorHeap
	rec Record
	err error
}

// KmerOrderIter returns an iterator over all records in ascending
// k-mer order.
func (r *Reader) KmerOrderIter() (*KmerOrderIter, error) {
	if r.mm == nil {
		return nil, ErrClosed
	}

	h := make(cursorHeap, 0, len(r.index))
	for _, g := range r.index {
		if g.N == 0 {
			continue
		}
		cur := &groupCursor{
			pos: g.Offset,
			end: g.Offset + uint64(g.N)*uint64(r.recSize),
		}
		cur.rec = r.readRecord(cur.pos)
		cur.pos += uint64(r.recSize)
		h = append(h, cur)
	}
	heap.Init(&h)

	return &KmerOrderIter{r: r, h: h}, nil
}

// Next advances to the record with the smallest k-mer among all group
// cursors. It returns false when the records are exhausted or the
// reader is closed, then Err tells which.
func (it *KmerOrderIter) Next() bool {
	if it.err != nil || len(it.h) == 0 {
		return false
	}
	if it.r.mm == nil {
		it.err = ErrClosed
		return false
	}

	top := it.h[0]
	it.rec = top.rec

	if top.pos < top.end {
		top.rec = it.r.readRecord(top.pos)
		top.pos += uint64(it.r.recSize)
		heap.Fix(&it.h, 0)
	} else {
		heap.Pop(&it.h)
	}

	return true
}

// Record returns the record Next advanced to.
func (it *KmerOrderIter) Record() Record {
	return it.rec
}

// Err returns the first error hit during iteration, if any.
func (it *KmerOrderIter) Err() error {
	return it.err
}
