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

func put16(buf []byte, v uint16) {
	buf[0] = byte(v >> 8)
	buf[1] = byte(v)
}

func put32(buf []byte, v uint32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}

// EncodeLen returns the length in bytes of the encoded table. Unlike the
// fixed-layout tables elsewhere in this module, VARC's offset structure
// is cheap enough to rebuild twice that EncodeLen simply encodes and
// measures, rather than maintaining a separate size-only code path.
func (t *Table) EncodeLen() int {
	return len(t.Encode())
}

// Encode serializes the table, laying out the coverage table, the shared
// condition sets, the shared axis-indices lists, the item variation store
// and every glyph's component list back to back after the fixed header,
// in that order.
func (t *Table) Encode() []byte {
	conditionList := encodeConditionList(t.ConditionSets)
	axisIndicesList := encodeAxisIndicesList(t.AxisIndices)
	var store []byte
	if t.Store != nil {
		store = t.Store.Encode()
	}
	cov := t.Coverage.Encode()

	glyphLists := make([][]byte, len(t.Glyphs))
	for i, comps := range t.Glyphs {
		glyphLists[i] = encodeComponentList(comps)
	}
	glyphListOffsetsLen := 4 * len(t.Glyphs)
	glyphListBody := 0
	for _, g := range glyphLists {
		glyphListBody += len(g)
	}

	headerLen := 24
	pos := headerLen

	coverageOffset := pos
	pos += len(cov)

	var conditionListOffset, axisIndicesListOffset, storeOffset int
	if len(t.ConditionSets) > 0 {
		conditionListOffset = pos
		pos += len(conditionList)
	}
	if len(t.AxisIndices) > 0 {
		axisIndicesListOffset = pos
		pos += len(axisIndicesList)
	}
	if t.Store != nil {
		storeOffset = pos
		pos += len(store)
	}

	glyphListOffset := pos
	pos += glyphListOffsetsLen + glyphListBody

	buf := make([]byte, pos)
	put16(buf, 1) // majorVersion
	put16(buf[2:], 0)
	put32(buf[4:], uint32(coverageOffset))
	put32(buf[8:], uint32(glyphListOffset))
	put32(buf[12:], uint32(conditionListOffset))
	put32(buf[16:], uint32(axisIndicesListOffset))
	put32(buf[20:], uint32(storeOffset))

	copy(buf[coverageOffset:], cov)
	if conditionListOffset != 0 {
		copy(buf[conditionListOffset:], conditionList)
	}
	if axisIndicesListOffset != 0 {
		copy(buf[axisIndicesListOffset:], axisIndicesList)
	}
	if storeOffset != 0 {
		copy(buf[storeOffset:], store)
	}

	body := glyphListOffset + glyphListOffsetsLen
	for i, g := range glyphLists {
		put32(buf[glyphListOffset+4*i:], uint32(body-glyphListOffset))
		copy(buf[body:], g)
		body += len(g)
	}

	return buf
}

func encodeConditionList(sets []ConditionSet) []byte {
	if len(sets) == 0 {
		return nil
	}
	headerLen := 2 + 4*len(sets)
	bodies := make([][]byte, len(sets))
	for i, cs := range sets {
		b := make([]byte, 2+8*len(cs.Conditions))
		put16(b, uint16(len(cs.Conditions)))
		for j, c := range cs.Conditions {
			off := 2 + 8*j
			put16(b[off:], uint16(c.Axis))
			put16(b[off+2:], uint16(c.Min))
			put16(b[off+4:], uint16(c.Peak))
			put16(b[off+6:], uint16(c.Max))
		}
		bodies[i] = b
	}

	total := headerLen
	for _, b := range bodies {
		total += len(b)
	}
	buf := make([]byte, total)
	put16(buf, uint16(len(sets)))
	pos := headerLen
	for i, b := range bodies {
		put32(buf[2+4*i:], uint32(pos))
		copy(buf[pos:], b)
		pos += len(b)
	}
	return buf
}

func encodeAxisIndicesList(lists [][]int) []byte {
	if len(lists) == 0 {
		return nil
	}
	headerLen := 2 + 4*len(lists)
	bodies := make([][]byte, len(lists))
	for i, idxs := range lists {
		b := make([]byte, 2+2*len(idxs))
		put16(b, uint16(len(idxs)))
		for j, v := range idxs {
			put16(b[2+2*j:], uint16(v))
		}
		bodies[i] = b
	}

	total := headerLen
	for _, b := range bodies {
		total += len(b)
	}
	buf := make([]byte, total)
	put16(buf, uint16(len(lists)))
	pos := headerLen
	for i, b := range bodies {
		put32(buf[2+4*i:], uint32(pos))
		copy(buf[pos:], b)
		pos += len(b)
	}
	return buf
}

func encodeComponentList(comps []Component) []byte {
	bodies := make([][]byte, len(comps))
	total := 2
	for i, c := range comps {
		bodies[i] = encodeComponent(c)
		total += len(bodies[i])
	}
	buf := make([]byte, total)
	put16(buf, uint16(len(comps)))
	pos := 2
	for _, b := range bodies {
		copy(buf[pos:], b)
		pos += len(b)
	}
	return buf
}

func encodeComponent(c Component) []byte {
	var buf []byte
	buf = append(buf, byte(c.Glyph>>8), byte(c.Glyph))
	buf = append(buf, byte(uint16(c.Flags)>>8), byte(uint16(c.Flags)))

	if c.Flags&HaveCondition != 0 {
		var b [2]byte
		put16(b[:], uint16(c.ConditionSetIndex))
		buf = append(buf, b[:]...)
	}

	if c.Flags&HaveAxes != 0 {
		var hdr [4]byte
		put16(hdr[0:], uint16(c.AxisIndicesIndex))
		put16(hdr[2:], uint16(len(c.AxisValues)))
		buf = append(buf, hdr[:]...)
		for _, v := range c.AxisValues {
			var b [2]byte
			put16(b[:], uint16(v))
			buf = append(buf, b[:]...)
		}
		if c.Flags&HaveGlyphVarIdx != 0 {
			var b [4]byte
			put16(b[0:], c.AxisValuesVarIdx.Outer())
			put16(b[2:], c.AxisValuesVarIdx.Inner())
			buf = append(buf, b[:]...)
		}
	}

	buf = append(buf, encodeTransform(c.Transform)...)

	if c.Flags&transformMask != 0 {
		var b [4]byte
		put16(b[0:], c.TransformVarIdx.Outer())
		put16(b[2:], c.TransformVarIdx.Inner())
		buf = append(buf, b[:]...)
	}

	return buf
}
