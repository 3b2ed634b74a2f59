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
	"bytes"

	"github.com/pkg/errors"
)

// Header is the decoded 80-byte IKC file header. The offsets of the
// data section and the end of the file are derived, not stored.
type Header struct {
	Version  int8
	KSize    int    // k-mer size
	KMinSize int    // minimizer size
	KMinMask uint32 // minimizer mask, reserved and always zero

	OffsetData  uint64 // start of the data section, right after the header
	OffsetIndex uint64 // start of the index section
	OffsetMeta  uint64 // start of the metadata section
	OffsetEOF   uint64 // file size

	ID string // sample identifier, up to 32 bytes
}

// parseHeader decodes and validates the header at the start of a
// mapped IKC file. The four offsets must not run backwards, otherwise
// the section boundaries the index fold relies on are meaningless.
func parseHeader(data []byte) (*Header, error) {
	if len(data) < len(Magic) || !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return nil, ErrBadMagic
	}
	if len(data) < len(Magic)+1 {
		return nil, errors.Wrap(ErrBrokenFile, "header truncated before the version field")
	}
	version := int8(data[15])
	if version != Version {
		return nil, errors.Wrapf(ErrVersionMismatch, "found version %d", version)
	}
	if len(data) < HeaderSize {
		return nil, errors.Wrapf(ErrBrokenFile, "header is %d bytes, expecting %d", len(data), HeaderSize)
	}

	for i, b := range data[16:23] {
		if b != 0 {
			return nil, errors.Wrapf(ErrReservedField, "reserved byte %d is 0x%02x", i+1, b)
		}
	}

	kMin := int8(data[23])
	if kMin <= 0 || kMin >= 16 {
		return nil, errors.Wrapf(ErrMinimizerSize, "found %d", kMin)
	}
	k := int32(be.Uint32(data[24:28]))
	if k < 1 {
		return nil, errors.Wrapf(ErrKSize, "found %d", k)
	}

	h := &Header{
		Version:     version,
		KSize:       int(k),
		KMinSize:    int(kMin),
		KMinMask:    be.Uint32(data[28:32]),
		OffsetData:  HeaderSize,
		OffsetIndex: be.Uint64(data[32:40]),
		OffsetMeta:  be.Uint64(data[40:48]),
		OffsetEOF:   uint64(len(data)),
	}

	id := data[48:80]
	if i := bytes.IndexByte(id, 0); i >= 0 {
		id = id[:i]
	}
	h.ID = string(id)

	if h.OffsetIndex < h.OffsetData || h.OffsetMeta < h.OffsetIndex || h.OffsetEOF < h.OffsetMeta {
		return nil, errors.Wrapf(ErrBrokenFile,
			"section offsets out of order: data=%d, index=%d, meta=%d, eof=%d",
			h.OffsetData, h.OffsetIndex, h.OffsetMeta, h.OffsetEOF)
	}

	return h, nil
}
