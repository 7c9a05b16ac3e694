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

// Package glyph defines the glyph identifier type shared by every table
// package in this module.
package glyph

// ID enumerates the glyphs of a font.  Glyph 0 is always ".notdef" and is
// rendered as an empty box when a character cannot be mapped to any other
// glyph.
type ID uint16

// Pair represents two consecutive glyphs, for example the two members of
// a kerning or ligature pair.
type Pair struct {
	Left  ID
	Right ID
}

// Range is a half-open, contiguous range of glyph IDs [First, First+Len).
// The offset-graph packer and the subsetter both operate on glyph ranges
// when they describe runs of retained or renumbered glyphs.
type Range struct {
	First ID
	Len   int
}

// Contains reports whether g lies within the range.
func (r Range) Contains(g ID) bool {
	return g >= r.First && int(g-r.First) < r.Len
}
