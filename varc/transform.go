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
	"math"

	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/varstore"
)

// Transform holds a component's affine placement: translation, rotation
// (in degrees) and independent X/Y scale and skew, applied about a pivot
// point (TCenterX, TCenterY) rather than the origin.
type Transform struct {
	TranslateX, TranslateY funit.Fixed
	Rotation               funit.Fixed // degrees
	ScaleX, ScaleY         funit.Fixed
	SkewX, SkewY           funit.Fixed // degrees
	TCenterX, TCenterY     funit.Fixed
}

// fields returns the transform's nine values in the fixed order the
// HaveTranslateX..HaveTCenterY flag bits (and the variation deltas they
// address) are defined in.
func (t Transform) fields() [9]funit.Fixed {
	return [9]funit.Fixed{
		t.TranslateX, t.TranslateY, t.Rotation,
		t.ScaleX, t.ScaleY, t.SkewX, t.SkewY,
		t.TCenterX, t.TCenterY,
	}
}

func fieldFlags() [9]Flags {
	return [9]Flags{
		HaveTranslateX, HaveTranslateY, HaveRotation,
		HaveScaleX, HaveScaleY, HaveSkewX, HaveSkewY,
		HaveTCenterX, HaveTCenterY,
	}
}

func setField(t *Transform, i int, v funit.Fixed) {
	switch i {
	case 0:
		t.TranslateX = v
	case 1:
		t.TranslateY = v
	case 2:
		t.Rotation = v
	case 3:
		t.ScaleX = v
	case 4:
		t.ScaleY = v
	case 5:
		t.SkewX = v
	case 6:
		t.SkewY = v
	case 7:
		t.TCenterX = v
	case 8:
		t.TCenterY = v
	}
}

// ApplyVariation returns the transform with every field the flags mark as
// variable nudged by its delta from the store, in the component's
// transform VarIdx's inner rows (one consecutive inner index per varying
// field, in Transform's field order, starting at idx).
func (t Transform) ApplyVariation(store *varstore.ItemVariationStore, idx varstore.VarIdx, flags Flags, coords []funit.F2Dot14) Transform {
	out := t
	if store == nil || idx == varstore.NoVariation {
		return out
	}

	base := t.fields()
	fflags := fieldFlags()
	row := 0
	for i := 0; i < 9; i++ {
		if flags&fflags[i] == 0 {
			continue
		}
		d := store.GetDelta(varstore.Pack(idx.Outer(), idx.Inner()+uint16(row)), coords)
		// deltas are in the field's raw 16.16 units
		setField(&out, i, base[i]+funit.Fixed(math.Round(d)))
		row++
	}
	return out
}

// Matrix returns the transform's 2x3 affine matrix in the standard
// [a b c d e f] form (x' = a*x + c*y + e, y' = b*x + d*y + f), composed
// as translate(TranslateX+TCenterX, TranslateY+TCenterY) * rotate *
// scale * skew * translate(-TCenterX, -TCenterY), the order OpenType
// composite transforms apply a pivot in.
func (t Transform) Matrix() [6]float64 {
	rot := t.Rotation.Float64() * math.Pi / 180
	skx := t.SkewX.Float64() * math.Pi / 180
	sky := t.SkewY.Float64() * math.Pi / 180
	sx, sy := t.ScaleX.Float64(), t.ScaleY.Float64()
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	cx, cy := t.TCenterX.Float64(), t.TCenterY.Float64()
	tx, ty := t.TranslateX.Float64(), t.TranslateY.Float64()

	cos, sin := math.Cos(rot), math.Sin(rot)

	// rotate * scale * skew, applied to a centered point
	a := cos*sx + -sin*math.Tan(sky)*sy
	b := sin*sx + cos*math.Tan(sky)*sy
	c := -sin*sy + cos*math.Tan(skx)*sx
	d := cos*sy + sin*math.Tan(skx)*sx

	e := tx + cx - (a*cx + c*cy)
	f := ty + cy - (b*cx + d*cy)

	return [6]float64{a, b, c, d, e, f}
}
