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

// Package anchor reads and writes OpenType "Anchor Tables", used by GPOS
// to attach marks and cursive glyphs to a fixed point on a base glyph.
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#anchor-tables
package anchor

import (
	"fmt"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/parser"
)

// Table is an OpenType "Anchor Table".
type Table struct {
	X, Y funit.Int16
}

// Read reads an anchor table from the given parser.  Hinting information
// present in formats 2 and 3 is ignored: it only affects hinted rendering,
// which this module does not implement.
func Read(p *parser.Parser, pos int64) (Table, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return Table{}, err
	}

	buf, err := p.ReadBytes(6)
	if err != nil {
		return Table{}, err
	}

	format := uint16(buf[0])<<8 | uint16(buf[1])
	x := funit.Int16(buf[2])<<8 | funit.Int16(buf[3])
	y := funit.Int16(buf[4])<<8 | funit.Int16(buf[5])

	if format == 0 || format > 3 {
		return Table{}, &otf.InvalidFontError{
			Table:  "opentype/anchor",
			Reason: fmt.Sprintf("invalid anchor table format %d", format),
		}
	}

	return Table{X: x, Y: y}, nil
}

// IsEmpty reports whether the anchor is the zero anchor, used as a
// sentinel for "no attachment point" in optional anchor slots.
func (rec Table) IsEmpty() bool {
	return rec.X == 0 && rec.Y == 0
}

// Encode writes the anchor using format 1 (no hinting data).
func (rec Table) Encode() []byte {
	return []byte{
		0, 1,
		byte(rec.X >> 8), byte(rec.X),
		byte(rec.Y >> 8), byte(rec.Y),
	}
}
