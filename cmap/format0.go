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

import (
	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/glyph"
)

// https://learn.microsoft.com/en-us/typography/opentype/spec/cmap#format-0-byte-encoding-table

type format0 struct {
	glyphIDArray [256]uint8
}

func decodeFormat0(data []byte, _ func(int) rune) (Subtable, error) {
	data = data[6:]
	if len(data) != 256 {
		return nil, &otf.InvalidFontError{
			Table:  "cmap",
			Reason: "format 0 subtable has wrong length",
		}
	}
	res := &format0{}
	copy(res.glyphIDArray[:], data)
	return res, nil
}

func (cmap *format0) Lookup(r rune) glyph.ID {
	if r >= 0 && r < 256 {
		return glyph.ID(cmap.glyphIDArray[r])
	}
	return 0
}

func (cmap *format0) Encode(language uint16) []byte {
	return append([]byte{0, 0, 1, 6, byte(language >> 8), byte(language)},
		cmap.glyphIDArray[:]...)
}

func (cmap *format0) CodeRange() (low, high rune) {
	found := false
	for i, c := range cmap.glyphIDArray {
		if c == 0 {
			continue
		}
		if !found {
			low = rune(i)
			found = true
		}
		high = rune(i)
	}
	return
}

// NewFormat0 builds a format 0 (byte encoding) subtable from a rune to
// glyph mapping. Only code points 0-255 are representable; callers
// subsetting a legacy Macintosh cmap subtable are expected to restrict
// the input to that range themselves. The decoded representation is
// not exported for direct construction, so a subsetter rebuilding one
// of these after renumbering glyphs needs this constructor.
func NewFormat0(pairs map[rune]glyph.ID) Subtable {
	res := &format0{}
	for r, gid := range pairs {
		if r >= 0 && r < 256 {
			res.glyphIDArray[r] = uint8(gid)
		}
	}
	return res
}
