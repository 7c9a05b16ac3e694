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

package subset

import (
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/opentype/gdef"
)

// RenumberGDEF renumbers a "GDEF" table's glyph-class tables and mark
// glyph sets through newGID. GlyphClass and MarkAttachClass share the
// same key-renaming logic as the class tables RenumberGSUB rewrites;
// mark glyph sets are plain glyph-ID sets and are filtered the same way
// a coverage table's glyphs are. A mark glyph set left with no surviving
// glyph becomes an empty set rather than being dropped, since
// MarkGlyphSets are referenced by position (the "mark glyph set index"
// value in a lookup's MarkFilteringSet field) and removing an entry
// would shift every later index.
func RenumberGDEF(table *gdef.Table, newGID map[glyph.ID]glyph.ID) *gdef.Table {
	if table == nil {
		return nil
	}

	out := &gdef.Table{
		GlyphClass:      remapClasses(table.GlyphClass, newGID),
		MarkAttachClass: remapClasses(table.MarkAttachClass, newGID),
	}

	if table.MarkGlyphSets != nil {
		out.MarkGlyphSets = make([]coverage.Set, len(table.MarkGlyphSets))
		for i, set := range table.MarkGlyphSets {
			ns := make(coverage.Set)
			for gid := range set {
				if ng, ok := newGID[gid]; ok {
					ns[ng] = true
				}
			}
			out.MarkGlyphSets[i] = ns
		}
	}

	return out
}
