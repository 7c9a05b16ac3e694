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

package gtab

import (
	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/parser"
)

// LookupIndex enumerates lookups.
// It is used as an index into a LookupList.
type LookupIndex uint16

// LookupList contains the information from a Lookup List Table.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-list-table
type LookupList []*LookupTable

// LookupTable represents a lookup table inside a "GSUB" or "GPOS" table of a
// font.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#lookup-table
type LookupTable struct {
	Meta      *LookupMetaInfo
	Subtables Subtables
}

// LookupMetaInfo contains information associated with a lookup but not
// specific to a subtable.
type LookupMetaInfo struct {
	LookupType       uint16
	LookupFlag       LookupFlags
	MarkFilteringSet uint16
}

// LookupFlags contains bits which modify application of a lookup to a glyph string.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#lookupFlags
type LookupFlags uint16

// Bit values for LookupFlag.
const (
	LookupRightToLeft         LookupFlags = 0x0001
	LookupIgnoreBaseGlyphs    LookupFlags = 0x0002
	LookupIgnoreLigatures     LookupFlags = 0x0004
	LookupIgnoreMarks         LookupFlags = 0x0008
	LookupUseMarkFilteringSet LookupFlags = 0x0010
	LookupMarkAttachTypeMask  LookupFlags = 0xFF00
)

// Subtable represents a subtable of a "GSUB" or "GPOS" lookup table. This
// package only needs to decode, re-encode, and (for subsetting) walk the
// glyphs a subtable references — applying lookups to a glyph sequence
// during shaping is out of scope.
type Subtable interface {
	EncodeLen() int
	Encode() []byte
}

// Subtables is a slice of Subtable.
type Subtables []Subtable

// readLookupList decodes the lookup list table at pos, using sr to decode
// each subtable and resolving extension subtables to their targets.
func readLookupList(p *parser.Parser, pos int64, sr subtableReader) (LookupList, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}

	lookupOffsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	res := make(LookupList, len(lookupOffsets))

	numLookups := 0
	numSubTables := 0

	for i, offs := range lookupOffsets {
		lookupTablePos := pos + int64(offs)
		if err := p.SeekPos(lookupTablePos); err != nil {
			return nil, err
		}
		lookupType, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		lookupFlag, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		subtableOffsets, err := p.ReadUInt16Slice()
		if err != nil {
			return nil, err
		}
		numLookups++
		numSubTables += len(subtableOffsets)
		if numLookups+numSubTables > 6000 {
			// Ensures the data can always be stored (using extension
			// subtables if necessary) without exceeding the maximum
			// offset size in the lookup list table.
			return nil, &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "too many lookup (sub-)tables"}
		}

		var markFilteringSet uint16
		if LookupFlags(lookupFlag)&LookupUseMarkFilteringSet != 0 {
			markFilteringSet, err = p.ReadUInt16()
			if err != nil {
				return nil, err
			}
		}

		meta := &LookupMetaInfo{
			LookupType:       lookupType,
			LookupFlag:       LookupFlags(lookupFlag),
			MarkFilteringSet: markFilteringSet,
		}

		subtables := make(Subtables, len(subtableOffsets))
		for j, subtableOffset := range subtableOffsets {
			subtable, err := sr(p, lookupTablePos+int64(subtableOffset), meta)
			if err != nil {
				return nil, err
			}
			subtables[j] = subtable
		}

		if tp, ok := isExtension(subtables); ok {
			if tp == meta.LookupType {
				return nil, &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "invalid extension subtable"}
			}
			meta.LookupType = tp
			for j, subtable := range subtables {
				l, ok := subtable.(*extensionSubtable)
				if !ok || l.ExtensionLookupType != tp {
					return nil, &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "inconsistent extension subtables"}
				}
				pos := lookupTablePos + int64(subtableOffsets[j]) + l.ExtensionOffset
				subtable, err := sr(p, pos, meta)
				if err != nil {
					return nil, err
				}
				subtables[j] = subtable
			}
		}

		res[i] = &LookupTable{Meta: meta, Subtables: subtables}
	}
	return res, nil
}

func isExtension(ss Subtables) (uint16, bool) {
	if len(ss) == 0 {
		return 0, false
	}
	l, ok := ss[0].(*extensionSubtable)
	if !ok {
		return 0, false
	}
	return l.ExtensionLookupType, true
}

// encode lays the lookup list out with the lookup-list table first,
// followed by each lookup table header and its subtables in order. A
// lookup list large enough for some lookup's offset to overflow a
// uint16 cannot be represented this way, since no reordering or
// extension subtables are used; encode panics rather than silently emit
// a corrupt table.
func (info LookupList) encode() []byte {
	if info == nil {
		return nil
	}

	lookupCount := len(info)
	headerLen := 2 + 2*lookupCount

	total := headerLen
	lookupOffsets := make([]int, lookupCount)
	subtableOffsets := make([][]int, lookupCount)
	for i, l := range info {
		lookupOffsets[i] = total
		lookupHeaderLen := 6 + 2*len(l.Subtables)
		if l.Meta.LookupFlag&LookupUseMarkFilteringSet != 0 {
			lookupHeaderLen += 2
		}
		subStart := total + lookupHeaderLen
		offs := make([]int, len(l.Subtables))
		for j, st := range l.Subtables {
			offs[j] = subStart
			subStart += st.EncodeLen()
		}
		subtableOffsets[i] = offs
		total = subStart
	}

	for i := range info {
		offs := subtableOffsets[i]
		if lookupOffsets[i] > 0xFFFF || (len(offs) > 0 && offs[len(offs)-1] > 0xFFFF) {
			panic("gtab: lookup list too large to encode without reordering")
		}
	}

	buf := make([]byte, 0, total)
	buf = append(buf, byte(lookupCount>>8), byte(lookupCount))
	for _, off := range lookupOffsets {
		buf = append(buf, byte(off>>8), byte(off))
	}
	for i, l := range info {
		subTableCount := len(l.Subtables)
		buf = append(buf,
			byte(l.Meta.LookupType>>8), byte(l.Meta.LookupType),
			byte(l.Meta.LookupFlag>>8), byte(l.Meta.LookupFlag),
			byte(subTableCount>>8), byte(subTableCount),
		)
		base := lookupOffsets[i]
		for _, subPos := range subtableOffsets[i] {
			rel := subPos - base
			buf = append(buf, byte(rel>>8), byte(rel))
		}
		if l.Meta.LookupFlag&LookupUseMarkFilteringSet != 0 {
			buf = append(buf, byte(l.Meta.MarkFilteringSet>>8), byte(l.Meta.MarkFilteringSet))
		}
		for _, st := range l.Subtables {
			buf = append(buf, st.Encode()...)
		}
	}
	return buf
}

// Extension Substitution/Positioning Subtable Format 1
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#71-extension-substitution-subtable-format-1
type extensionSubtable struct {
	ExtensionLookupType uint16
	ExtensionOffset     int64
}

func readExtensionSubtable(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(6)
	if err != nil {
		return nil, err
	}
	return &extensionSubtable{
		ExtensionLookupType: uint16(buf[0])<<8 | uint16(buf[1]),
		ExtensionOffset:     int64(buf[2])<<24 | int64(buf[3])<<16 | int64(buf[4])<<8 | int64(buf[5]),
	}, nil
}

func (l *extensionSubtable) EncodeLen() int { return 8 }

func (l *extensionSubtable) Encode() []byte {
	return []byte{
		0, 1, // format
		byte(l.ExtensionLookupType >> 8), byte(l.ExtensionLookupType),
		byte(l.ExtensionOffset >> 24), byte(l.ExtensionOffset >> 16), byte(l.ExtensionOffset >> 8), byte(l.ExtensionOffset),
	}
}
