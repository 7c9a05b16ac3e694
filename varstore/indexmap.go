// seehuhn.de/go/otf - tools for reading, generating and subsetting OpenType fonts
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package varstore

import "seehuhn.de/go/otf/parser"

// DeltaSetIndexMap maps a glyph ID (HVAR) or some other per-item key
// (MVAR's per-value-tag map) to a VarIdx, as a flat decoded slice: HVAR's
// map is at most as large as the glyph count, so eager decoding costs
// little and lets callers index it directly.
type DeltaSetIndexMap struct {
	Map []VarIdx
}

// Get returns the VarIdx for index i. Per the HVAR specification, an
// index past the end of the map reuses the map's last entry rather than
// signalling an error.
func (m *DeltaSetIndexMap) Get(i int) VarIdx {
	if i < 0 || i >= len(m.Map) {
		if len(m.Map) == 0 {
			return NoVariation
		}
		return m.Map[len(m.Map)-1]
	}
	return m.Map[i]
}

// ReadDeltaSetIndexMap reads a DeltaSetIndexMap table at pos.
func ReadDeltaSetIndexMap(p *parser.Parser, pos int64) (*DeltaSetIndexMap, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	format, err := p.ReadUInt8()
	if err != nil {
		return nil, err
	}
	entryFormat, err := p.ReadUInt8()
	if err != nil {
		return nil, err
	}

	var mapCount int
	if format == 0 {
		n, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		mapCount = int(n)
	} else {
		n, err := p.ReadUInt32()
		if err != nil {
			return nil, err
		}
		mapCount = int(n)
	}

	innerBitCount := int(entryFormat&0x0F) + 1
	width := int((entryFormat>>4)&0x03) + 1

	entries := make([]VarIdx, mapCount)
	for i := range entries {
		buf, err := p.ReadBytes(width)
		if err != nil {
			return nil, err
		}
		var raw uint32
		for _, b := range buf {
			raw = raw<<8 | uint32(b)
		}
		inner := raw & (1<<uint(innerBitCount) - 1)
		outer := raw >> uint(innerBitCount)
		entries[i] = Pack(uint16(outer), uint16(inner))
	}

	return &DeltaSetIndexMap{Map: entries}, nil
}

// packedEntry picks the narrowest (entryFormat, width) pair able to
// represent every VarIdx in entries, mirroring the bit-packing encoders
// use to keep HVAR's index map compact.
func packedEntry(entries []VarIdx) (entryFormat uint8, width int) {
	var maxInner, maxOuter uint32
	for _, e := range entries {
		if inner := uint32(e.Inner()); inner > maxInner {
			maxInner = inner
		}
		if outer := uint32(e.Outer()); outer > maxOuter {
			maxOuter = outer
		}
	}

	innerBitCount := bitsFor(maxInner)
	if innerBitCount == 0 {
		innerBitCount = 1
	}
	totalBits := innerBitCount + bitsFor(maxOuter)
	if totalBits == 0 {
		totalBits = 1
	}
	width = (totalBits + 7) / 8
	if width < 1 {
		width = 1
	} else if width > 4 {
		width = 4
	}

	entryFormat = uint8(innerBitCount-1) & 0x0F
	entryFormat |= uint8(width-1) << 4
	return entryFormat, width
}

func bitsFor(v uint32) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

// EncodeLen returns the length in bytes of the encoded map, choosing
// between the 16-bit and 32-bit map-count header formats.
func (m *DeltaSetIndexMap) EncodeLen() int {
	_, width := packedEntry(m.Map)
	headerLen := 4
	if len(m.Map) > 0xFFFF {
		headerLen = 6
	}
	return headerLen + width*len(m.Map)
}

// Encode returns the binary representation of the map.
func (m *DeltaSetIndexMap) Encode() []byte {
	entryFormat, width := packedEntry(m.Map)
	innerBitCount := int(entryFormat&0x0F) + 1

	format := uint8(0)
	headerLen := 4
	if len(m.Map) > 0xFFFF {
		format = 1
		headerLen = 6
	}

	buf := make([]byte, headerLen+width*len(m.Map))
	buf[0] = format
	buf[1] = entryFormat
	if format == 0 {
		put16(buf[2:], uint16(len(m.Map)))
	} else {
		put32(buf[2:], uint32(len(m.Map)))
	}

	for i, e := range m.Map {
		raw := uint32(e.Outer())<<uint(innerBitCount) | uint32(e.Inner())
		off := headerLen + width*i
		for b := width - 1; b >= 0; b-- {
			buf[off+b] = byte(raw)
			raw >>= 8
		}
	}
	return buf
}
