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

import "seehuhn.de/go/otf/funit"

// Condition restricts one axis to a sub-range of the designspace, the
// same per-axis fields a variation region's RegionAxis uses: the
// condition holds where the axis coordinate falls within [Min, Max].
// Peak is read and written but Holds does not use it; a condition is
// either met or not, with no partial weighting.
type Condition struct {
	Axis           int
	Min, Peak, Max funit.F2Dot14
}

// Holds reports whether coord satisfies the condition.
func (c Condition) Holds(coord funit.F2Dot14) bool {
	return coord >= c.Min && coord <= c.Max
}

// ConditionSet is a conjunction of per-axis conditions: a component only
// applies at a location where every condition in the set holds.
type ConditionSet struct {
	Conditions []Condition
}

// Holds reports whether every condition in the set is satisfied by
// coords. An axis the set does not mention is unconstrained.
func (cs ConditionSet) Holds(coords []funit.F2Dot14) bool {
	for _, c := range cs.Conditions {
		var coord funit.F2Dot14
		if c.Axis >= 0 && c.Axis < len(coords) {
			coord = coords[c.Axis]
		}
		if !c.Holds(coord) {
			return false
		}
	}
	return true
}
