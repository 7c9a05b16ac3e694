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
	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/varstore"
)

// Component is one entry of a variable composite glyph: a reference to
// another glyph (which may itself be a VARC glyph, nested arbitrarily
// deep), placed by Transform, optionally gated by a ConditionSet, and
// optionally carrying an explicit override for the referenced glyph's own
// axis coordinates (used when the referenced glyph is itself variable and
// this placement pins it to a specific sub-location rather than
// inheriting the outer glyph's location).
type Component struct {
	Glyph glyph.ID
	Flags Flags

	// ConditionSetIndex selects the ConditionSet in the table's shared
	// list that gates this component; -1 means unconditional.
	ConditionSetIndex int

	// AxisIndicesIndex selects the entry in the table's shared
	// AxisIndices lists that names, by index into the font's own axis
	// list, which axes AxisValues supplies explicit coordinates for
	// (the same by-reference convention ConditionSetIndex uses); axes
	// not named there keep the outer glyph's coordinate unless
	// ResetUnspecifiedAxes is set in Flags, in which case they reset to
	// their default (0). Meaningful only when Flags&HaveAxes != 0.
	AxisIndicesIndex int
	AxisValues       []funit.F2Dot14

	// AxisValuesVarIdx addresses, if HaveAxes and the axis values
	// themselves vary, one inner delta per entry of AxisValues (in
	// order), the same "one VarData row per field" convention Transform
	// uses.
	AxisValuesVarIdx varstore.VarIdx

	Transform       Transform
	TransformVarIdx varstore.VarIdx
}

// EffectiveTransform returns the component's transform after applying any
// per-field variation deltas at coords.
func (c Component) EffectiveTransform(store *varstore.ItemVariationStore, coords []funit.F2Dot14) Transform {
	return c.Transform.ApplyVariation(store, c.TransformVarIdx, c.Flags, coords)
}

// EffectiveAxisCoords returns the coordinates this component hands down
// to its referenced glyph: parent's coords, overridden at the axes
// axisIndices names by AxisValues (with their own variation deltas
// applied, if any), and zeroed at every other axis if
// ResetUnspecifiedAxes is set. Callers obtain axisIndices from the
// owning Table's AxisIndices list at c.AxisIndicesIndex — see
// Table.EffectiveAxisCoords, which does that lookup.
func (c Component) effectiveAxisCoords(axisIndices []int, store *varstore.ItemVariationStore, parent []funit.F2Dot14) []funit.F2Dot14 {
	out := make([]funit.F2Dot14, len(parent))
	if c.Flags&ResetUnspecifiedAxes == 0 {
		copy(out, parent)
	}
	if c.Flags&HaveAxes == 0 {
		return out
	}
	for i, axis := range axisIndices {
		if axis < 0 || axis >= len(out) || i >= len(c.AxisValues) {
			continue
		}
		v := c.AxisValues[i]
		if store != nil && c.AxisValuesVarIdx != varstore.NoVariation {
			d := store.GetDelta(varstore.Pack(c.AxisValuesVarIdx.Outer(), c.AxisValuesVarIdx.Inner()+uint16(i)), parent)
			v = funit.F2Dot14FromFloat64(v.Float64() + d)
		}
		out[axis] = v
	}
	return out
}
