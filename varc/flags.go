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

// Package varc implements the variable composite glyph table: glyphs
// assembled from component references, each carrying its own affine
// transform and, optionally, a nested axis-coordinate location, with both
// the transform's fields and the nested location able to vary by
// VarIdx-addressed deltas from a shared otf/varstore item variation
// store.
package varc

// Flags records which optional parts of a component record are present:
// a condition restricting which designspace regions it applies in, an
// explicit per-component axis location, and which of the nine transform
// fields carry their own variation delta.
type Flags uint16

const (
	HaveAxes             Flags = 1 << 0
	ResetUnspecifiedAxes Flags = 1 << 1
	HaveTranslateX       Flags = 1 << 2
	HaveTranslateY       Flags = 1 << 3
	HaveRotation         Flags = 1 << 4
	HaveScaleX           Flags = 1 << 5
	HaveScaleY           Flags = 1 << 6
	HaveSkewX            Flags = 1 << 7
	HaveSkewY            Flags = 1 << 8
	HaveTCenterX         Flags = 1 << 9
	HaveTCenterY         Flags = 1 << 10
	HaveCondition        Flags = 1 << 11
	HaveGlyphVarIdx      Flags = 1 << 12 // AxisValues carry their own VarIdx (only read when HaveAxes is set)
)

// transformMask is every flag bit that marks a transform field as
// carrying its own variation delta; the deltas, when present, are packed
// into the component's delta set in this exact order, matching the field
// order of Transform.
const transformMask = HaveTranslateX | HaveTranslateY | HaveRotation |
	HaveScaleX | HaveScaleY | HaveSkewX | HaveSkewY | HaveTCenterX | HaveTCenterY

// transformFieldCount returns how many of the nine transform fields carry
// their own delta, i.e. the number of entries the component's transform
// VarIdx addresses in the shared variation store.
func (f Flags) transformFieldCount() int {
	n := 0
	for b := transformMask; b != 0; b &= b - 1 {
		if f&(b&-b) != 0 {
			n++
		}
	}
	return n
}
