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

// Package funit implements the numeric types used in the wire format of
// OpenType tables: plain font-design-unit integers as well as the fixed
// point formats used by variable-font and metrics data.
package funit

import "math"

// Int16 is a 16-bit integer in font design units.
type Int16 int16

// Uint24 is a big-endian 24-bit unsigned integer, used for example by the
// glyph variation store's region and delta-set-index-map offsets.
type Uint24 uint32

// Fixed is a 16.16 signed fixed-point number, used for example by the
// "head" table's FontRevision field.
type Fixed int32

// Float64 converts a Fixed value to a float64.
func (x Fixed) Float64() float64 {
	return float64(x) / 65536
}

// FixedFromFloat64 converts a float64 to the nearest Fixed value.
func FixedFromFloat64(x float64) Fixed {
	return Fixed(math.Round(x * 65536))
}

// F2Dot14 is a 2.14 signed fixed-point number in the range [-2, 2), used
// for variation-axis normalized coordinates and for scale factors in
// composite glyph transforms.
type F2Dot14 int16

// Float64 converts an F2Dot14 value to a float64.
func (x F2Dot14) Float64() float64 {
	return float64(x) / 16384
}

// F2Dot14FromFloat64 converts a float64 to the nearest F2Dot14 value,
// clamping to the representable range.
func F2Dot14FromFloat64(x float64) F2Dot14 {
	if x >= 2 {
		x = 2 - 1.0/16384
	} else if x < -2 {
		x = -2
	}
	return F2Dot14(math.Round(x * 16384))
}

// F26Dot6 is a 26.6 signed fixed-point number, used by some hinting and
// rasterization related values that this module treats as opaque data but
// still needs to size correctly when copying table bytes.
type F26Dot6 int32

// Float64 converts an F26Dot6 value to a float64.
func (x F26Dot6) Float64() float64 {
	return float64(x) / 64
}

// Rect represents a rectangle in font design units, such as a glyph's
// bounding box.
type Rect struct {
	LLx, LLy, URx, URy Int16
}

// IsZero is true if the rectangle encloses no area, as is the case for
// the bounding box of a space glyph.
func (rect Rect) IsZero() bool {
	return rect.LLx == 0 && rect.LLy == 0 && rect.URx == 0 && rect.URy == 0
}

// Extend enlarges the rectangle to also cover `other`.
func (rect *Rect) Extend(other Rect) {
	if other.IsZero() {
		return
	}
	if rect.IsZero() {
		*rect = other
		return
	}
	if other.LLx < rect.LLx {
		rect.LLx = other.LLx
	}
	if other.LLy < rect.LLy {
		rect.LLy = other.LLy
	}
	if other.URx > rect.URx {
		rect.URx = other.URx
	}
	if other.URy > rect.URy {
		rect.URy = other.URy
	}
}
