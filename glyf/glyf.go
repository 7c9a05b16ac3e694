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

// Package glyf reads and writes the OpenType "glyf" and "loca" tables,
// the outline data of a TrueType-flavored font.
// https://learn.microsoft.com/en-us/typography/opentype/spec/glyf
// https://learn.microsoft.com/en-us/typography/opentype/spec/loca
package glyf

import "seehuhn.de/go/otf/glyph"

// Glyphs holds the decoded "glyf" table. The glyph at index i is the
// outline for glyph ID i; Glyphs[0] is the ".notdef" glyph. A nil entry
// means the glyph has no outline (e.g. the space glyph).
type Glyphs []*Glyph

// Encoded holds the "glyf" and "loca" table bytes together, since neither
// can be interpreted without the other.
type Encoded struct {
	GlyfData   []byte
	LocaData   []byte
	LocaFormat int16
}

// Decode splits the "glyf" table into individual glyphs, using the
// offsets recorded in the "loca" table. LocaFormat must match the
// indexToLocFormat entry of the font's "head" table.
func Decode(enc *Encoded) (Glyphs, error) {
	offs, err := decodeLoca(enc)
	if err != nil {
		return nil, err
	}

	numGlyphs := len(offs) - 1
	gg := make(Glyphs, numGlyphs)
	for i := range gg {
		data := enc.GlyfData[offs[i]:offs[i+1]]
		g, err := decodeGlyph(data)
		if err != nil {
			return nil, err
		}
		gg[i] = g
	}

	return gg, nil
}

// Encode serializes the glyphs into "glyf" and "loca" table data.
func (gg Glyphs) Encode() *Encoded {
	n := len(gg)

	offs := make([]int, n+1)
	for i, g := range gg {
		offs[i+1] = offs[i] + g.EncodeLen()
	}
	locaData, locaFormat := encodeLoca(offs)

	glyfData := make([]byte, 0, offs[n])
	for _, g := range gg {
		glyfData = g.Append(glyfData)
	}

	return &Encoded{
		GlyfData:   glyfData,
		LocaData:   locaData,
		LocaFormat: locaFormat,
	}
}

// ComponentGlyphs returns the set of glyph IDs directly referenced by gid's
// composite components. It is empty if gid names a simple glyph, is out of
// range, or has no outline.
func (gg Glyphs) ComponentGlyphs(gid glyph.ID) []glyph.ID {
	if int(gid) >= len(gg) || gg[gid] == nil {
		return nil
	}
	comps := gg[gid].Components
	if len(comps) == 0 {
		return nil
	}
	out := make([]glyph.ID, len(comps))
	for i, c := range comps {
		out[i] = c.GlyphIndex
	}
	return out
}

// Closure returns the set of glyph IDs reachable from the given roots by
// following composite glyph component references, including the roots
// themselves. This is the set a subsetter must retain to keep every
// composite glyph's dependencies intact.
func (gg Glyphs) Closure(roots []glyph.ID) map[glyph.ID]bool {
	seen := make(map[glyph.ID]bool, len(roots))
	queue := append([]glyph.ID(nil), roots...)
	for len(queue) > 0 {
		gid := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if seen[gid] {
			continue
		}
		seen[gid] = true
		queue = append(queue, gg.ComponentGlyphs(gid)...)
	}
	return seen
}

// Subset returns a new Glyphs slice containing only the glyphs selected by
// keep, renumbered according to newGID (old glyph ID -> new glyph ID).
// Component references inside retained composite glyphs are rewritten
// through newGID.
func (gg Glyphs) Subset(keep func(glyph.ID) bool, newGID map[glyph.ID]glyph.ID) Glyphs {
	n := len(newGID)
	out := make(Glyphs, n)
	for oldGID, g := range gg {
		if g == nil || !keep(glyph.ID(oldGID)) {
			continue
		}
		gid, ok := newGID[glyph.ID(oldGID)]
		if !ok {
			continue
		}
		out[gid] = remapGlyph(g, newGID)
	}
	return out
}

func remapGlyph(g *Glyph, newGID map[glyph.ID]glyph.ID) *Glyph {
	if g.NumContours >= 0 {
		cp := *g
		return &cp
	}
	cp := *g
	cp.Components = make([]Component, len(g.Components))
	for i, c := range g.Components {
		c.GlyphIndex = newGID[c.GlyphIndex]
		cp.Components[i] = c
	}
	return &cp
}
