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
)

// readIndex folds the on-disk index into a minimizer-to-group map.
// Each index record only stores where its group starts, so a group's
// length is the gap to the next record's offset, and the last group
// runs to the end of the data section. Offsets must start at the data
// section and ascend strictly, and every gap must be a whole number of
// records. The second return value is the minimizer of the last index
// record, which seeds the reader's group cache.
//
// For compatibility with existing IKC writers the first index record
// is decoded as signed integers and the rest as unsigned. Well-formed
// files never set the sign bits, so both decodings agree.
func readIndex(data []byte, h *Header, recSize int) (map[uint32]Group, uint32, error) {
	if h.OffsetIndex == h.OffsetMeta {
		return nil, 0, ErrEmptyIndex
	}

	index := make(map[uint32]Group, (h.OffsetMeta-h.OffsetIndex)/indexRecordSize)

	cur := h.OffsetIndex
	if cur+indexRecordSize > h.OffsetEOF {
		return nil, 0, errors.Wrap(ErrBrokenFile, "index record #1 truncated")
	}
	m64 := int64(int32(be.Uint32(data[cur:])))
	off64 := int64(be.Uint64(data[cur+4:]))
	cur += indexRecordSize
	recNo := 1

	if off64 != int64(h.OffsetData) {
		return nil, 0, errors.Wrapf(ErrIndexMisaligned,
			"index record #%d (minimizer 0x%x) points at %d, the data section starts at %d",
			recNo, m64, off64, h.OffsetData)
	}

	m := uint32(m64)
	off := uint64(off64)

	for cur < h.OffsetMeta {
		recNo++
		if cur+indexRecordSize > h.OffsetEOF {
			return nil, 0, errors.Wrapf(ErrBrokenFile, "index record #%d truncated", recNo)
		}
		nextM := be.Uint32(data[cur:])
		nextOff := be.Uint64(data[cur+4:])
		cur += indexRecordSize

		if nextOff <= off || nextOff >= h.OffsetMeta {
			return nil, 0, errors.Wrapf(ErrIndexOutOfBounds,
				"index record #%d (minimizer 0x%x) points at %d, not between %d and the end of the data section at %d",
				recNo, nextM, nextOff, off, h.OffsetMeta)
		}
		size := nextOff - off
		if size%uint64(recSize) != 0 {
			return nil, 0, errors.Wrapf(ErrGroupSizeMisaligned,
				"group of minimizer 0x%x spans %d bytes, not a multiple of the %d-byte record",
				m, size, recSize)
		}
		if _, ok := index[m]; ok {
			return nil, 0, errors.Wrapf(ErrDuplicateMinimizer,
				"minimizer 0x%x appears again in index record #%d", m, recNo)
		}
		index[m] = Group{Offset: off, N: int(size / uint64(recSize))}

		m = nextM
		off = nextOff
	}

	if _, ok := index[m]; ok {
		return nil, 0, errors.Wrapf(ErrDuplicateMinimizer,
			"minimizer 0x%x appears again in index record #%d", m, recNo)
	}
	index[m] = Group{Offset: off, N: int((h.OffsetMeta - off) / uint64(recSize))}

	return index, m, nil
}
