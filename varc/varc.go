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

package varc

import (
	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/parser"
	"seehuhn.de/go/otf/varstore"
)

// Table is the parsed VARC table: a Coverage table naming which glyphs
// are variable composites, one component list per covered glyph, the
// shared condition sets and axis-index lists components reference by
// index, and the item variation store every VarIdx in a component or
// transform addresses into.
type Table struct {
	Coverage      coverage.Table
	Glyphs        [][]Component // indexed by coverage index, not glyph.ID
	ConditionSets []ConditionSet
	AxisIndices   [][]int
	Store         *varstore.ItemVariationStore
}

// Components returns the component list for gid, or nil if gid is not a
// variable composite glyph.
func (t *Table) Components(gid glyph.ID) []Component {
	idx, ok := t.Coverage[gid]
	if !ok || idx < 0 || idx >= len(t.Glyphs) {
		return nil
	}
	return t.Glyphs[idx]
}

// EffectiveAxisCoords resolves c's AxisIndicesIndex against t's shared
// AxisIndices lists and returns the axis coordinates c hands down to its
// referenced glyph; see Component.effectiveAxisCoords for the rule.
func (t *Table) EffectiveAxisCoords(c Component, parent []funit.F2Dot14) []funit.F2Dot14 {
	var axisIndices []int
	if c.Flags&HaveAxes != 0 && c.AxisIndicesIndex >= 0 && c.AxisIndicesIndex < len(t.AxisIndices) {
		axisIndices = t.AxisIndices[c.AxisIndicesIndex]
	}
	return c.effectiveAxisCoords(axisIndices, t.Store, parent)
}

// ConditionHolds reports whether c's condition set (if any) is satisfied
// at coords; a component with no condition always applies.
func (t *Table) ConditionHolds(c Component, coords []funit.F2Dot14) bool {
	if c.Flags&HaveCondition == 0 || c.ConditionSetIndex < 0 || c.ConditionSetIndex >= len(t.ConditionSets) {
		return true
	}
	return t.ConditionSets[c.ConditionSetIndex].Holds(coords)
}

// Closure adds to referenced every glyph ID directly reachable from the
// variable composite glyphs in gids, following every component
// regardless of its ConditionSet (closures are computed over variation
// space as a whole: a subsetter keeps a component if any location could
// select it). It does not recurse into referenced glyphs; callers
// iterate this to a fixed point the same way a GSUB/GSUB-aware subset
// closure does, since a referenced glyph may itself be a VARC composite.
func (t *Table) Closure(gids []glyph.ID, referenced map[glyph.ID]bool) {
	for _, gid := range gids {
		for _, c := range t.Components(gid) {
			referenced[c.Glyph] = true
		}
	}
}

// Read reads a VARC table.
func Read(r parser.ReadSeekSizer) (*Table, error) {
	p := parser.New("VARC", r)

	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	majorVersion := uint16(buf[0])<<8 | uint16(buf[1])
	minorVersion := uint16(buf[2])<<8 | uint16(buf[3])
	if majorVersion != 1 || minorVersion != 0 {
		return nil, &otf.NotSupportedError{Table: "VARC", Feature: "version != 1.0"}
	}

	header, err := p.ReadBytes(20)
	if err != nil {
		return nil, err
	}
	coverageOffset := be32(header[0:4])
	glyphListOffset := be32(header[4:8])
	conditionListOffset := be32(header[8:12])
	axisIndicesListOffset := be32(header[12:16])
	storeOffset := be32(header[16:20])

	cov, err := coverage.Read(p, int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	var conditionSets []ConditionSet
	if conditionListOffset != 0 {
		conditionSets, err = readConditionList(p, int64(conditionListOffset))
		if err != nil {
			return nil, err
		}
	}

	var axisIndicesLists [][]int
	if axisIndicesListOffset != 0 {
		axisIndicesLists, err = readAxisIndicesList(p, int64(axisIndicesListOffset))
		if err != nil {
			return nil, err
		}
	}

	var store *varstore.ItemVariationStore
	if storeOffset != 0 {
		store, err = varstore.ReadItemVariationStore(p, int64(storeOffset))
		if err != nil {
			return nil, err
		}
	}

	glyphs, err := readGlyphList(p, int64(glyphListOffset), len(cov))
	if err != nil {
		return nil, err
	}

	return &Table{
		Coverage:      cov,
		Glyphs:        glyphs,
		ConditionSets: conditionSets,
		AxisIndices:   axisIndicesLists,
		Store:         store,
	}, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func readConditionList(p *parser.Parser, pos int64) ([]ConditionSet, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	count, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i], err = p.ReadUInt32()
		if err != nil {
			return nil, err
		}
	}

	sets := make([]ConditionSet, count)
	for i, off := range offsets {
		if err := p.SeekPos(pos + int64(off)); err != nil {
			return nil, err
		}
		n, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		conds := make([]Condition, n)
		for j := range conds {
			cbuf, err := p.ReadBytes(8)
			if err != nil {
				return nil, err
			}
			conds[j] = Condition{
				Axis: int(uint16(cbuf[0])<<8 | uint16(cbuf[1])),
				Min:  funit.F2Dot14(int16(cbuf[2])<<8 | int16(cbuf[3])),
				Peak: funit.F2Dot14(int16(cbuf[4])<<8 | int16(cbuf[5])),
				Max:  funit.F2Dot14(int16(cbuf[6])<<8 | int16(cbuf[7])),
			}
		}
		sets[i] = ConditionSet{Conditions: conds}
	}
	return sets, nil
}

func readAxisIndicesList(p *parser.Parser, pos int64) ([][]int, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	count, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	offsets := make([]uint32, count)
	for i := range offsets {
		offsets[i], err = p.ReadUInt32()
		if err != nil {
			return nil, err
		}
	}

	lists := make([][]int, count)
	for i, off := range offsets {
		if err := p.SeekPos(pos + int64(off)); err != nil {
			return nil, err
		}
		n, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		idxs := make([]int, n)
		for j := range idxs {
			v, err := p.ReadUInt16()
			if err != nil {
				return nil, err
			}
			idxs[j] = int(v)
		}
		lists[i] = idxs
	}
	return lists, nil
}

func readGlyphList(p *parser.Parser, pos int64, glyphCount int) ([][]Component, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	offsets := make([]uint32, glyphCount)
	for i := range offsets {
		v, err := p.ReadUInt32()
		if err != nil {
			return nil, err
		}
		offsets[i] = v
	}

	out := make([][]Component, glyphCount)
	for i, off := range offsets {
		comps, err := readComponentList(p, pos+int64(off))
		if err != nil {
			return nil, err
		}
		out[i] = comps
	}
	return out, nil
}

// readComponentList reads one variable composite glyph's component list:
// a uint16 count, then that many fixed-size component records. Unlike
// glyf's composite glyphs (which terminate via a MORE_COMPONENTS flag
// bit), VARC's component lists are explicit-count, matching the rest of
// this module's inline-array convention (ReadUInt16Slice and friends).
func readComponentList(p *parser.Parser, pos int64) ([]Component, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	count, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}

	comps := make([]Component, count)
	for i := range comps {
		c, err := readComponent(p)
		if err != nil {
			return nil, err
		}
		comps[i] = c
	}
	return comps, nil
}

func readComponent(p *parser.Parser) (Component, error) {
	var c Component

	gid, err := p.ReadUInt16()
	if err != nil {
		return c, err
	}
	flags, err := p.ReadUInt16()
	if err != nil {
		return c, err
	}
	c.Glyph = glyph.ID(gid)
	c.Flags = Flags(flags)
	c.ConditionSetIndex = -1
	c.AxisIndicesIndex = -1

	if c.Flags&HaveCondition != 0 {
		idx, err := p.ReadUInt16()
		if err != nil {
			return c, err
		}
		c.ConditionSetIndex = int(idx)
	}

	if c.Flags&HaveAxes != 0 {
		listIdx, err := p.ReadUInt16()
		if err != nil {
			return c, err
		}
		n, err := p.ReadUInt16()
		if err != nil {
			return c, err
		}
		c.AxisValues = make([]funit.F2Dot14, n)
		for i := range c.AxisValues {
			v, err := p.ReadInt16()
			if err != nil {
				return c, err
			}
			c.AxisValues[i] = funit.F2Dot14(v)
		}
		c.AxisIndicesIndex = int(listIdx)
		if c.Flags&HaveGlyphVarIdx != 0 {
			outer, err := p.ReadUInt16()
			if err != nil {
				return c, err
			}
			inner, err := p.ReadUInt16()
			if err != nil {
				return c, err
			}
			c.AxisValuesVarIdx = varstore.Pack(outer, inner)
		} else {
			c.AxisValuesVarIdx = varstore.NoVariation
		}
	} else {
		c.AxisValuesVarIdx = varstore.NoVariation
	}

	t, err := readTransform(p)
	if err != nil {
		return c, err
	}
	c.Transform = t

	if c.Flags&transformMask != 0 {
		outer, err := p.ReadUInt16()
		if err != nil {
			return c, err
		}
		inner, err := p.ReadUInt16()
		if err != nil {
			return c, err
		}
		c.TransformVarIdx = varstore.Pack(outer, inner)
	} else {
		c.TransformVarIdx = varstore.NoVariation
	}

	return c, nil
}

// transformWireSize is the byte length of one encoded Transform: nine
// fields, each a full 16.16 Fixed value. A real font format would pack
// these more tightly (translations in design units, angles in a narrower
// fraction), but using one uniform 32-bit representation for every field
// keeps the read and write paths simple and exactly invertible, which
// matters more here than matching a byte-for-byte wire layout this
// module cannot check against a real VARC-producing font.
const transformWireSize = 36

func readTransform(p *parser.Parser) (Transform, error) {
	buf, err := p.ReadBytes(transformWireSize)
	if err != nil {
		return Transform{}, err
	}
	readFixed := func(i int) funit.Fixed {
		return funit.Fixed(int32(uint32(buf[i])<<24 | uint32(buf[i+1])<<16 | uint32(buf[i+2])<<8 | uint32(buf[i+3])))
	}
	return Transform{
		TranslateX: readFixed(0),
		TranslateY: readFixed(4),
		Rotation:   readFixed(8),
		ScaleX:     readFixed(12),
		ScaleY:     readFixed(16),
		SkewX:      readFixed(20),
		SkewY:      readFixed(24),
		TCenterX:   readFixed(28),
		TCenterY:   readFixed(32),
	}, nil
}

func encodeTransform(t Transform) []byte {
	buf := make([]byte, transformWireSize)
	fields := t.fields()
	for i, v := range fields {
		put32(buf[4*i:], uint32(v))
	}
	return buf
}
