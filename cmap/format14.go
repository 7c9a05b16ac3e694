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
	"sort"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/glyph"
)

// UnicodeRange is a contiguous run of base code points that share a
// variation selector without an explicit per-glyph override: looking one
// of them up with that selector falls back to the font's normal cmap
// subtable.
// https://learn.microsoft.com/en-us/typography/opentype/spec/cmap#default-uvs-table
type UnicodeRange struct {
	Start rune
	Count int // additional code points beyond Start, i.e. the run has Count+1 entries
}

func (r UnicodeRange) contains(c rune) bool {
	return c >= r.Start && c <= r.Start+rune(r.Count)
}

// VariationSelector holds the substitution data for a single variation
// selector code point: a set of base code point ranges that map to the
// font's default glyph for that code point, and a set of explicit
// (base code point -> glyph) overrides.
type VariationSelector struct {
	Default    []UnicodeRange
	NonDefault map[rune]glyph.ID
}

// Format14 represents a decoded format 14 (Unicode Variation Sequences)
// cmap subtable, keyed by variation selector code point.
//
// Format 14 does not fit the single-code-point Subtable.Lookup contract:
// resolving a variation sequence needs both the base character and the
// selector. Use ResolveVariant instead; Lookup always reports no mapping.
type Format14 map[rune]VariationSelector

// ResolveVariant looks up the glyph for (base, selector). The second
// return value is false if the subtable has no entry for this sequence, in
// which case callers should fall back to the font's normal cmap subtable
// for base — this also happens when the match lands in a Default range.
func (vs Format14) ResolveVariant(base, selector rune) (glyph.ID, bool) {
	sel, ok := vs[selector]
	if !ok {
		return 0, false
	}
	if g, ok := sel.NonDefault[base]; ok {
		return g, true
	}
	for _, r := range sel.Default {
		if r.contains(base) {
			return 0, false
		}
	}
	return 0, false
}

// Lookup always returns 0: format 14 subtables are queried through
// ResolveVariant, which takes both the base character and the selector.
func (vs Format14) Lookup(r rune) glyph.ID { return 0 }

// Encode returns the binary form of the subtable. The language argument is
// ignored: format 14 subtables do not carry a language field.
func (vs Format14) Encode(uint16) []byte {
	selectors := make([]rune, 0, len(vs))
	for s := range vs {
		selectors = append(selectors, s)
	}
	sort.Slice(selectors, func(i, j int) bool { return selectors[i] < selectors[j] })

	headerLen := 2 + 4 + 4 + 11*len(selectors)
	var defaultTables, nonDefaultTables [][]byte
	offsets := make([][2]uint32, len(selectors)) // [defaultOffset, nonDefaultOffset]
	pos := uint32(headerLen)

	for i, s := range selectors {
		sel := vs[s]
		if len(sel.Default) > 0 {
			ranges := append([]UnicodeRange(nil), sel.Default...)
			sort.Slice(ranges, func(a, b int) bool { return ranges[a].Start < ranges[b].Start })
			buf := make([]byte, 4+4*len(ranges))
			n := len(ranges)
			buf[0], buf[1], buf[2], buf[3] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
			for k, r := range ranges {
				base := 4 + 4*k
				buf[base] = byte(r.Start >> 16)
				buf[base+1] = byte(r.Start >> 8)
				buf[base+2] = byte(r.Start)
				buf[base+3] = byte(r.Count)
			}
			offsets[i][0] = pos
			pos += uint32(len(buf))
			defaultTables = append(defaultTables, buf)
		}
		if len(sel.NonDefault) > 0 {
			bases := make([]rune, 0, len(sel.NonDefault))
			for b := range sel.NonDefault {
				bases = append(bases, b)
			}
			sort.Slice(bases, func(a, b int) bool { return bases[a] < bases[b] })
			buf := make([]byte, 4+5*len(bases))
			n := len(bases)
			buf[0], buf[1], buf[2], buf[3] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
			for k, b := range bases {
				base := 4 + 5*k
				g := sel.NonDefault[b]
				buf[base] = byte(b >> 16)
				buf[base+1] = byte(b >> 8)
				buf[base+2] = byte(b)
				buf[base+3] = byte(g >> 8)
				buf[base+4] = byte(g)
			}
			offsets[i][1] = pos
			pos += uint32(len(buf))
			nonDefaultTables = append(nonDefaultTables, buf)
		}
	}

	out := make([]byte, headerLen, pos)
	out[0], out[1] = 0, 14
	n := len(selectors)
	out[6], out[7], out[8], out[9] = byte(n>>24), byte(n>>16), byte(n>>8), byte(n)
	for i, s := range selectors {
		base := 10 + 11*i
		out[base] = byte(s >> 16)
		out[base+1] = byte(s >> 8)
		out[base+2] = byte(s)
		d, nd := offsets[i][0], offsets[i][1]
		out[base+3], out[base+4], out[base+5], out[base+6] = byte(d>>24), byte(d>>16), byte(d>>8), byte(d)
		out[base+7], out[base+8], out[base+9], out[base+10] = byte(nd>>24), byte(nd>>16), byte(nd>>8), byte(nd)
	}

	for _, t := range defaultTables {
		out = append(out, t...)
	}
	for _, t := range nonDefaultTables {
		out = append(out, t...)
	}

	length := uint32(len(out))
	out[2], out[3], out[4], out[5] = byte(length>>24), byte(length>>16), byte(length>>8), byte(length)
	return out
}

// CodeRange returns the smallest and largest variation selector code point
// in the subtable, not the base code points it covers: a format 14
// subtable is indexed by selector, not by base character.
func (vs Format14) CodeRange() (low, high rune) {
	if len(vs) == 0 {
		return 0, 0
	}
	low = 1<<31 - 1
	for s := range vs {
		if s < low {
			low = s
		}
		if s > high {
			high = s
		}
	}
	return
}

func decodeFormat14(data []byte, code2rune func(c int) rune) (Subtable, error) {
	if code2rune != nil {
		return nil, &otf.NotSupportedError{
			Table:   "cmap",
			Feature: "format 14 subtable with non-Unicode platform",
		}
	}
	if len(data) < 10 {
		return nil, errMalformedSubtable(14)
	}
	numRecords := uint32(data[6])<<24 | uint32(data[7])<<16 | uint32(data[8])<<8 | uint32(data[9])
	if len(data) < 10+11*int(numRecords) {
		return nil, errMalformedSubtable(14)
	}

	res := make(Format14, numRecords)
	var prevSel rune = -1
	for i := uint32(0); i < numRecords; i++ {
		base := 10 + 11*i
		varSelector := rune(data[base])<<16 | rune(data[base+1])<<8 | rune(data[base+2])
		if varSelector <= prevSel {
			return nil, errMalformedSubtable(14)
		}
		prevSel = varSelector
		defaultOffs := uint32(data[base+3])<<24 | uint32(data[base+4])<<16 | uint32(data[base+5])<<8 | uint32(data[base+6])
		nonDefaultOffs := uint32(data[base+7])<<24 | uint32(data[base+8])<<16 | uint32(data[base+9])<<8 | uint32(data[base+10])

		var sel VariationSelector
		if defaultOffs != 0 {
			ranges, err := decodeDefaultUVS(data, defaultOffs)
			if err != nil {
				return nil, err
			}
			sel.Default = ranges
		}
		if nonDefaultOffs != 0 {
			m, err := decodeNonDefaultUVS(data, nonDefaultOffs)
			if err != nil {
				return nil, err
			}
			sel.NonDefault = m
		}
		res[varSelector] = sel
	}
	return res, nil
}

func decodeDefaultUVS(data []byte, offs uint32) ([]UnicodeRange, error) {
	if offs+4 > uint32(len(data)) {
		return nil, errMalformedSubtable(14)
	}
	n := uint32(data[offs])<<24 | uint32(data[offs+1])<<16 | uint32(data[offs+2])<<8 | uint32(data[offs+3])
	if offs+4+4*n > uint32(len(data)) {
		return nil, errMalformedSubtable(14)
	}
	res := make([]UnicodeRange, n)
	for i := uint32(0); i < n; i++ {
		base := offs + 4 + 4*i
		start := rune(data[base])<<16 | rune(data[base+1])<<8 | rune(data[base+2])
		res[i] = UnicodeRange{Start: start, Count: int(data[base+3])}
	}
	return res, nil
}

func decodeNonDefaultUVS(data []byte, offs uint32) (map[rune]glyph.ID, error) {
	if offs+4 > uint32(len(data)) {
		return nil, errMalformedSubtable(14)
	}
	n := uint32(data[offs])<<24 | uint32(data[offs+1])<<16 | uint32(data[offs+2])<<8 | uint32(data[offs+3])
	if offs+4+5*n > uint32(len(data)) {
		return nil, errMalformedSubtable(14)
	}
	res := make(map[rune]glyph.ID, n)
	for i := uint32(0); i < n; i++ {
		base := offs + 4 + 5*i
		unicodeValue := rune(data[base])<<16 | rune(data[base+1])<<8 | rune(data[base+2])
		gid := glyph.ID(data[base+3])<<8 | glyph.ID(data[base+4])
		res[unicodeValue] = gid
	}
	return res, nil
}
