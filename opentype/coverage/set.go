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

package coverage

import (
	"fmt"
	"sort"

	"golang.org/x/exp/maps"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/parser"
)

// Set is a coverage table with the coverage indices omitted, used for
// mark glyph sets (GDEF) where only membership matters.
type Set map[glyph.ID]bool

// Glyphs returns the glyphs covered by the Set, in order of increasing
// glyph ID.
func (set Set) Glyphs() []glyph.ID {
	glyphs := maps.Keys(set)
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	return glyphs
}

// ToTable converts the Set to a Coverage table.
func (set Set) ToTable() Table {
	glyphs := set.Glyphs()
	table := make(Table)
	for i, gid := range glyphs {
		table[gid] = i
	}
	return table
}

// ReadSet reads a coverage table from a parser, keeping only membership.
// Unlike Read, this tolerates the duplicate-glyph entries that the spec
// forbids but that occur in some widely used fonts.
func ReadSet(p *parser.Parser, pos int64) (Set, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	format, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}

	table := make(Set)

	switch format {
	case 1: // Coverage Format 1
		glyphCount, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(glyphCount); i++ {
			gid, err := p.ReadUInt16()
			if err != nil {
				return nil, err
			}
			table[glyph.ID(gid)] = true
		}

	case 2: // Coverage Format 2
		rangeCount, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		pos := 0
		prev := -1
		for i := 0; i < int(rangeCount); i++ {
			buf, err := p.ReadBytes(6)
			if err != nil {
				return nil, err
			}
			startGlyphID := int(buf[0])<<8 | int(buf[1])
			endGlyphID := int(buf[2])<<8 | int(buf[3])
			startCoverageIndex := int(buf[4])<<8 | int(buf[5])
			if startCoverageIndex != pos || startGlyphID < prev || endGlyphID < startGlyphID {
				return nil, &otf.InvalidFontError{
					Table:  "opentype/coverage",
					Reason: "invalid coverage table (format 2)",
				}
			}
			for gid := startGlyphID; gid <= endGlyphID; gid++ {
				table[glyph.ID(gid)] = true
				pos++
			}
			prev = endGlyphID
		}

	default:
		return nil, &otf.NotSupportedError{
			Table:   "opentype/coverage",
			Feature: fmt.Sprintf("coverage format %d", format),
		}
	}

	return table, nil
}
