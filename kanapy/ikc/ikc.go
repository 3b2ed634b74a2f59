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

// Package ikc reads indexed k-mer count (IKC) files.
//
// An IKC file holds the k-mer counts of one sample, bucketed by
// minimizer so that a point lookup touches a small slice of the file:
//
//	+--------------------+
//	| header (80 bytes)  |  magic, version, k sizes, offsets, id string
//	+--------------------+
//	| data section       |  (k-mer, count) records of fixed width,
//	|                    |  grouped by minimizer, sorted by k-mer
//	|                    |  within each group
//	+--------------------+
//	| index section      |  (minimizer, offset) records, one per group,
//	|                    |  offsets strictly ascending
//	+--------------------+
//	| metadata           |  opaque to this package
//	+--------------------+
//
// All integers are big-endian. A data record holds ceil(k/4) bytes of
// 2-bit packed k-mer followed by a 4-byte count. The Reader maps the
// file read-only, validates the header and the whole index up front,
// and answers queries with a binary search inside the minimizer group
// of the queried k-mer.
package ikc

import (
	"encoding/binary"
	"errors"
)

// Magic bytes of an IKC file, a NUL-terminated tag.
var Magic = [15]byte{'I', 'd', 'x', '_', 'K', 'm', 'e', 'r', '_', 'C', 'o', 'u', 'n', 't', 0}

// Version is the only file version this reader supports.
var Version int8 = 1

// HeaderSize is the fixed size of the version 1 header. The data
// section starts right after it.
const HeaderSize = 80

// indexRecordSize is the on-disk size of one index record, a 4-byte
// minimizer and an 8-byte offset.
const indexRecordSize = 12

var be = binary.BigEndian

// ErrBadMagic means the file does not start with the IKC magic bytes.
var ErrBadMagic = errors.New(`ikc: invalid file magic, the first 15 bytes should be "Idx_Kmer_Count" and a NUL`)

// ErrVersionMismatch means the file version is not supported.
var ErrVersionMismatch = errors.New("ikc: unsupported file version, expecting version 1")

// ErrReservedField means a reserved header byte is not zero.
var ErrReservedField = errors.New("ikc: non-zero reserved header field")

// ErrMinimizerSize means the minimizer size field is out of range.
var ErrMinimizerSize = errors.New("ikc: minimizer size must be between 1 and 15")

// ErrKSize means the k-mer size field is out of range.
var ErrKSize = errors.New("ikc: k-mer size must be at least 1")

// ErrBrokenFile means the file is too short for the structures its
// header announces.
var ErrBrokenFile = errors.New("ikc: broken file")

// ErrEmptyIndex means the index section is empty.
var ErrEmptyIndex = errors.New("ikc: no index in file")

// ErrIndexMisaligned means the first index record does not point at the
// start of the data section.
var ErrIndexMisaligned = errors.New("ikc: first index record does not point at the data section")

// ErrIndexOutOfBounds means an index record's offset is not strictly
// between the previous offset and the end of the data section.
var ErrIndexOutOfBounds = errors.New("ikc: index record offset out of bounds")

// ErrGroupSizeMisaligned means a minimizer group's byte length is not a
// multiple of the record size.
var ErrGroupSizeMisaligned = errors.New("ikc: minimizer group size is not a multiple of the record size")

// ErrDuplicateMinimizer means a minimizer appears in more than one
// index record.
var ErrDuplicateMinimizer = errors.New("ikc: duplicate minimizer in index")

// ErrClosed means the reader was used after Close.
var ErrClosed = errors.New("ikc: reader is closed")

// Record is one k-mer and its count.
type Record struct {
	Kmer  uint64
	Count uint32
}

// Group locates one minimizer's records within the data section.
type Group struct {
	Offset uint64 // byte offset of the group's first record
	N      int    // number of records in the group
}

// readKmer reads an n-byte big-endian k-mer, n at most 8.
func readKmer(p []byte, n int) uint64 {
	var v uint64
	for _, b := range p[:n] {
		v = v<<8 | uint64(b)
	}
	return v
}
