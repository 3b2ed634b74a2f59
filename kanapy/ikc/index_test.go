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
	"errors"
	"testing"
)

// Index validation failures, all with k=16 and a 7-base minimizer, so
// records are 8 bytes wide. The data bytes themselves are never read
// while the index is folded.
func TestIndexErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		index []indexRec
		want  error
	}{
		{"empty index", nil, nil, ErrEmptyIndex},
		{"first offset low", make([]byte, 8), []indexRec{{1, 0}}, ErrIndexMisaligned},
		{"first offset high", make([]byte, 8), []indexRec{{1, 81}}, ErrIndexMisaligned},
		{"offset repeated", make([]byte, 16), []indexRec{{1, 80}, {2, 80}}, ErrIndexOutOfBounds},
		{"offset backwards", make([]byte, 24), []indexRec{{1, 80}, {2, 96}, {3, 88}}, ErrIndexOutOfBounds},
		{"offset past meta", make([]byte, 16), []indexRec{{1, 80}, {2, 120}}, ErrIndexOutOfBounds},
		{"ragged group", make([]byte, 16), []indexRec{{1, 80}, {2, 83}}, ErrGroupSizeMisaligned},
		{"duplicate minimizer", make([]byte, 32), []indexRec{{5, 80}, {6, 88}, {5, 96}, {7, 104}}, ErrDuplicateMinimizer},
		{"duplicate last minimizer", make([]byte, 16), []indexRec{{5, 80}, {5, 88}}, ErrDuplicateMinimizer},
	}

	for _, tt := range tests {
		img := buildBytes(16, 7, 0, "idx", tt.data, tt.index, nil)
		r, err := Open(writeTestFile(t, img))
		if err == nil {
			r.Close()
			t.Errorf("%s: open succeeded, expecting %v", tt.name, tt.want)
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: got %v, expecting %v", tt.name, err, tt.want)
		}
	}
}

func TestIndexTruncatedRecord(t *testing.T) {
	img := buildBytes(16, 7, 0, "trunc", nil, []indexRec{{7, 80}}, nil)
	be.PutUint64(img[40:48], 86) // metadata offset inside the index record
	img = img[:88]               // and the record itself cut short of 12 bytes

	_, err := Open(writeTestFile(t, img))
	if !errors.Is(err, ErrBrokenFile) {
		t.Errorf("got %v, expecting a broken file error", err)
	}
}

// A group shorter than one record decodes to zero records, making a
// structurally valid file with nothing in it.
func TestIndexEmptyGroup(t *testing.T) {
	r := mustOpen(t, writeTestFile(t, emptyImage()))
	defer r.Close()

	if r.NumGroups() != 1 || r.NumRecords() != 0 {
		t.Errorf("groups=%d records=%d, expecting 1 empty group", r.NumGroups(), r.NumRecords())
	}

	for _, kmer := range []uint64{0, 0x1234, 0xFFFFFFFF} {
		count, err := r.Get(kmer)
		if err != nil {
			t.Errorf("get 0x%x: %s", kmer, err)
			continue
		}
		if count != 0 {
			t.Errorf("get 0x%x: count %d, expecting 0", kmer, count)
		}
	}

	it, err := r.MinOrderIter()
	if err != nil {
		t.Fatalf("iterator: %s", err)
	}
	if it.Next() {
		t.Errorf("minimizer iterator yielded a record from an empty file")
	}
	if it.Err() != nil {
		t.Errorf("minimizer iterator: %s", it.Err())
	}

	kit, err := r.KmerOrderIter()
	if err != nil {
		t.Fatalf("iterator: %s", err)
	}
	if kit.Next() {
		t.Errorf("k-mer iterator yielded a record from an empty file")
	}
	if kit.Err() != nil {
		t.Errorf("k-mer iterator: %s", kit.Err())
	}
}

func TestIndexSingleGroup(t *testing.T) {
	img := buildBytes(16, 7, 0, "single", make([]byte, 16), []indexRec{{3, 80}}, nil)
	r := mustOpen(t, writeTestFile(t, img))
	defer r.Close()

	if r.NumGroups() != 1 {
		t.Errorf("groups: %d, expecting 1", r.NumGroups())
	}
	// the group runs from the data start to the metadata offset
	if r.NumRecords() != 3 {
		t.Errorf("records: %d, expecting 3", r.NumRecords())
	}
}

func TestMetadataTail(t *testing.T) {
	// GGGGGGGGCCCCCCCC, minimizing to CCCCCCC
	rec := Record{Kmer: 0xAAAA5555, Count: 42}

	img := buildBytes(16, 7, 0, "tail",
		appendRecord(nil, 4, rec),
		[]indexRec{{0x1555, 80}},
		[]byte("sample annotations\n"))
	r := mustOpen(t, writeTestFile(t, img))
	defer r.Close()

	h := r.Header()
	if h.OffsetMeta != 100 || h.OffsetEOF != 119 {
		t.Errorf("offsets: meta=%d eof=%d, expecting 100 and 119", h.OffsetMeta, h.OffsetEOF)
	}

	count, err := r.Get(rec.Kmer)
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	if count != 42 {
		t.Errorf("count: %d, expecting 42", count)
	}

	count, err = r.Get(0xBBBBBBB1)
	if err != nil {
		t.Fatalf("get: %s", err)
	}
	if count != 0 {
		t.Errorf("absent k-mer: count %d, expecting 0", count)
	}
}
