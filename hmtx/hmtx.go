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

// Package hmtx reads and writes the OpenType "hmtx" table: the per-glyph
// horizontal advance widths and left side bearings.
// https://learn.microsoft.com/en-us/typography/opentype/spec/hmtx
//
// The table is a simple array, but its layout depends on the
// "hhea".NumOfLongHorMetrics field: the first numHMetrics glyphs each
// store an explicit (advanceWidth, lsb) pair, and any remaining glyphs
// store only their lsb, reusing the last explicit advance width.
package hmtx

import (
	"encoding/binary"

	"seehuhn.de/go/otf"
)

// Info holds the decoded per-glyph horizontal metrics of a font.
type Info struct {
	// AdvanceWidths holds one entry per glyph.
	AdvanceWidths []uint16

	// LeftSideBearing holds one entry per glyph.
	LeftSideBearing []int16
}

// Read decodes the "hmtx" table. numGlyphs is the font's glyph count (from
// "maxp") and numHMetrics is hhea.Info.NumOfLongHorMetrics.
func Read(data []byte, numGlyphs, numHMetrics int) (*Info, error) {
	if numHMetrics <= 0 || numHMetrics > numGlyphs {
		return nil, &otf.InvalidFontError{
			Table:  "hmtx",
			Reason: "invalid NumOfLongHorMetrics",
		}
	}

	needed := 4*numHMetrics + 2*(numGlyphs-numHMetrics)
	if len(data) < needed {
		return nil, &otf.InvalidFontError{Table: "hmtx", Reason: "table too short"}
	}

	widths := make([]uint16, numGlyphs)
	lsb := make([]int16, numGlyphs)

	pos := 0
	lastWidth := uint16(0)
	for gid := 0; gid < numGlyphs; gid++ {
		if gid < numHMetrics {
			lastWidth = binary.BigEndian.Uint16(data[pos:])
			lsb[gid] = int16(binary.BigEndian.Uint16(data[pos+2:]))
			pos += 4
		} else {
			lsb[gid] = int16(binary.BigEndian.Uint16(data[pos:]))
			pos += 2
		}
		widths[gid] = lastWidth
	}

	return &Info{AdvanceWidths: widths, LeftSideBearing: lsb}, nil
}

// Encode returns the binary representation of the "hmtx" table, collapsing
// the trailing run of repeated advance widths into implicit entries.
// numHMetrics is the resulting hhea.Info.NumOfLongHorMetrics value.
func (info *Info) Encode() (data []byte, numHMetrics int) {
	numGlyphs := len(info.AdvanceWidths)
	numHMetrics = numGlyphs
	for numHMetrics > 1 &&
		info.AdvanceWidths[numHMetrics-1] == info.AdvanceWidths[numHMetrics-2] {
		numHMetrics--
	}

	buf := make([]byte, 4*numHMetrics+2*(numGlyphs-numHMetrics))
	pos := 0
	for gid := 0; gid < numGlyphs; gid++ {
		if gid < numHMetrics {
			binary.BigEndian.PutUint16(buf[pos:], info.AdvanceWidths[gid])
			binary.BigEndian.PutUint16(buf[pos+2:], uint16(info.LeftSideBearing[gid]))
			pos += 4
		} else {
			binary.BigEndian.PutUint16(buf[pos:], uint16(info.LeftSideBearing[gid]))
			pos += 2
		}
	}

	return buf, numHMetrics
}

// GetAdvanceWidth returns the advance width of a glyph, in font design
// units. Glyph IDs beyond the table reuse the last stored width, matching
// the implicit-width rule of the wire format.
func (info *Info) GetAdvanceWidth(gid int) uint16 {
	if gid < 0 {
		gid = 0
	}
	if gid >= len(info.AdvanceWidths) {
		gid = len(info.AdvanceWidths) - 1
	}
	return info.AdvanceWidths[gid]
}

// GetLSB returns the left side bearing of a glyph, in font design units.
func (info *Info) GetLSB(gid int) int16 {
	if gid < 0 || gid >= len(info.LeftSideBearing) {
		return 0
	}
	return info.LeftSideBearing[gid]
}

// Subset returns the metrics for the given glyph IDs, in order, for use
// when building a subsetted font.
func (info *Info) Subset(gids []uint16) *Info {
	widths := make([]uint16, len(gids))
	lsb := make([]int16, len(gids))
	for i, gid := range gids {
		widths[i] = info.GetAdvanceWidth(int(gid))
		lsb[i] = info.GetLSB(int(gid))
	}
	return &Info{AdvanceWidths: widths, LeftSideBearing: lsb}
}
