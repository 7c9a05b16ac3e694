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

package cmap

import "seehuhn.de/go/otf/glyph"

// Format6 represents a decoded format 6 (trimmed table mapping) cmap
// subtable: a map from code points in a small contiguous range to glyph
// IDs. A subsetter can rebuild one of these after renumbering glyphs,
// so that an input font's format 6 subtable stays a format 6 subtable
// in the output instead of silently turning into some other format.
// https://learn.microsoft.com/en-us/typography/opentype/spec/cmap#format-6-trimmed-table-mapping
type Format6 map[rune]glyph.ID

func decodeFormat6(data []byte, code2rune func(c int) rune) (Subtable, error) {
	if code2rune == nil {
		code2rune = identity
	}

	if len(data) < 10 {
		return nil, errMalformedSubtable(6)
	}
	firstCode := int(data[6])<<8 | int(data[7])
	count := int(data[8])<<8 | int(data[9])

	// some fonts have an excess 0x0000 at the end of the table
	if len(data) == 10+2*count+2 && data[10+2*count] == 0 && data[10+2*count+1] == 0 {
		data = data[:10+2*count]
	}

	if len(data) != 10+2*count {
		return nil, errMalformedSubtable(6)
	}
	data = data[10:]

	res := make(Format6)
	for i := 0; i < count; i++ {
		gid := glyph.ID(data[2*i])<<8 | glyph.ID(data[2*i+1])
		if gid != 0 {
			res[code2rune(i+firstCode)] = gid
		}
	}
	return res, nil
}

// Lookup implements the Subtable interface.
func (cmap Format6) Lookup(r rune) glyph.ID {
	return cmap[r]
}

// Encode implements the Subtable interface, laying the mapping out as
// a single contiguous run from the lowest to the highest mapped code
// point (gaps within the run are encoded as glyph 0).
func (cmap Format6) Encode(language uint16) []byte {
	low, high := cmap.CodeRange()
	count := 0
	if len(cmap) > 0 {
		count = int(high-low) + 1
	}

	length := 10 + 2*count
	buf := make([]byte, length)
	buf[1] = 6
	buf[2] = byte(length >> 8)
	buf[3] = byte(length)
	buf[4] = byte(language >> 8)
	buf[5] = byte(language)
	buf[6] = byte(low >> 8)
	buf[7] = byte(low)
	buf[8] = byte(count >> 8)
	buf[9] = byte(count)
	for r, gid := range cmap {
		i := int(r - low)
		buf[10+2*i] = byte(gid >> 8)
		buf[10+2*i+1] = byte(gid)
	}
	return buf
}

// CodeRange returns the smallest and largest code point in the subtable.
func (cmap Format6) CodeRange() (low, high rune) {
	if len(cmap) == 0 {
		return 0, 0
	}
	low = 1<<31 - 1
	for r := range cmap {
		if r < low {
			low = r
		}
		if r > high {
			high = r
		}
	}
	return
}
