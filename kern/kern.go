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

// Package kern reads and writes the legacy (version 0) "kern" table.
// https://learn.microsoft.com/en-us/typography/opentype/spec/kern
package kern

import (
	"bytes"
	"fmt"
	"math/bits"
	"sort"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/parser"
)

// Info holds the pairwise kerning adjustments from a "kern" table's format 0
// subtables, merged according to each subtable's minimum/override/additive
// flag. A positive value moves the pair's glyphs apart, a negative value
// moves them closer together.
type Info map[glyph.Pair]funit.Int16

// Read reads the "kern" table. Only version 0 (the classic Windows/OS X
// table, format-0 pair subtables) is supported; the Apple-only version 1
// table is not.
func Read(r parser.ReadSeekSizer) (Info, error) {
	p := parser.New("kern", r)

	version, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	if version != 0 {
		return nil, &otf.NotSupportedError{
			Table:   "kern",
			Feature: fmt.Sprintf("table version %d", version),
		}
	}

	nTables, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}

	res := make(Info)

	pos := p.Pos()
	for i := 0; i < int(nTables); i++ {
		if err := p.SeekPos(pos); err != nil {
			return nil, err
		}
		buf, err := p.ReadBytes(6)
		if err != nil {
			return nil, err
		}
		subtableVersion := uint16(buf[0])<<8 | uint16(buf[1])
		length := uint16(buf[2])<<8 | uint16(buf[3])
		format := buf[4]
		flags := buf[5]

		if length < 6+8 {
			return nil, &otf.InvalidFontError{
				Table:  "kern",
				Reason: fmt.Sprintf("invalid subtable length %d", length),
			}
		}
		pos += int64(length)

		if subtableVersion != 0 || format != 0 || flags&0b11110101 != 1 {
			continue
		}
		isMinimum := flags&0b00000010 != 0
		isOverride := flags&0b00001000 != 0

		nPairs, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		if _, err := p.ReadBytes(6); err != nil { // searchRange, entrySelector, rangeShift
			return nil, err
		}
		for j := 0; j < int(nPairs); j++ {
			buf, err := p.ReadBytes(6)
			if err != nil {
				return nil, err
			}
			left := glyph.ID(buf[0])<<8 | glyph.ID(buf[1])
			right := glyph.ID(buf[2])<<8 | glyph.ID(buf[3])
			value := funit.Int16(buf[4])<<8 | funit.Int16(buf[5])
			key := glyph.Pair{Left: left, Right: right}
			switch {
			case isMinimum:
				if res[key] < value {
					res[key] = value
				}
			case isOverride:
				res[key] = value
			default:
				res[key] += value
			}
		}
	}

	return res, nil
}

// Encode converts the table to its binary representation: a single format-0
// subtable containing all pairs, sorted as the spec requires (ascending by
// the (left,right) pair, treated as a big-endian 32-bit key) so a binary
// search over the encoded table is valid.
func (info Info) Encode() []byte {
	nPairs := len(info)
	headerLen := 4
	subHeaderLen := 14
	subTableLen := subHeaderLen + 6*nPairs
	buf := make([]byte, 0, headerLen+subTableLen)

	var entrySelector, searchRange, rangeShift int
	if nPairs > 0 {
		entrySelector = bits.Len(uint(nPairs)) - 1
		searchRange = 6 * (1 << entrySelector)
		rangeShift = 6 * (nPairs - 1<<entrySelector)
	}
	buf = append(buf,
		0, 0, // version
		0, 1, // numTables

		0, 0, // subtable version
		byte(subTableLen>>8), byte(subTableLen),
		0, 1, // coverage: format 0, horizontal, not cross-stream, not override/minimum

		byte(nPairs>>8), byte(nPairs),
		byte(searchRange>>8), byte(searchRange),
		byte(entrySelector>>8), byte(entrySelector),
		byte(rangeShift>>8), byte(rangeShift),
	)
	for pair, val := range info {
		buf = append(buf,
			byte(pair.Left>>8), byte(pair.Left),
			byte(pair.Right>>8), byte(pair.Right),
			byte(val>>8), byte(val),
		)
	}
	sort.Sort(blocks(buf[headerLen+subHeaderLen:]))

	return buf
}

// Subset restricts the table to pairs whose old glyph IDs are both present
// in keep, renumbering them to their new (post-subsetting) glyph IDs.
func (info Info) Subset(keep map[glyph.ID]glyph.ID) Info {
	out := make(Info)
	for pair, val := range info {
		left, ok := keep[pair.Left]
		if !ok {
			continue
		}
		right, ok := keep[pair.Right]
		if !ok {
			continue
		}
		out[glyph.Pair{Left: left, Right: right}] = val
	}
	return out
}

type blocks []byte

func (a blocks) Len() int { return len(a) / 6 }
func (a blocks) Swap(i, j int) {
	var tmp [6]byte
	copy(tmp[:], a[i*6:])
	copy(a[i*6:], a[j*6:(j+1)*6])
	copy(a[j*6:], tmp[:])
}
func (a blocks) Less(i, j int) bool {
	return bytes.Compare(a[i*6:(i+1)*6], a[j*6:(j+1)*6]) < 0
}
