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

package glyf

import (
	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/funit"
)

// Point is a point on a simple glyph's outline.
type Point struct {
	X, Y    funit.Int16
	OnCurve bool
}

// Contour describes one connected part of a simple glyph's outline.
type Contour []Point

// Outline holds the decoded contours of a simple glyph. This module does
// not otherwise interpret outline data; Outline exists so tools built on
// top of it (rasterizers, bounding-box recomputation) do not have to
// re-implement the point/flag decoding themselves.
type Outline struct {
	Contours     []Contour
	Instructions []byte
}

// Decode parses the contours of a simple glyph (NumContours >= 0). It
// returns an error if g is a composite glyph.
func (g *Glyph) Decode() (*Outline, error) {
	if g.NumContours < 0 {
		return nil, &otf.InvalidFontError{
			Table:  "glyf",
			Reason: "Decode called on a composite glyph",
		}
	}

	buf := g.Tail
	numContours := int(g.NumContours)
	if len(buf) < 2*numContours+2 {
		return nil, errInvalidGlyphData
	}
	endPtsOfContours := make([]uint16, numContours)
	for i := 0; i < numContours; i++ {
		endPtsOfContours[i] = uint16(buf[2*i])<<8 | uint16(buf[2*i+1])
	}
	buf = buf[2*numContours:]

	if numContours == 0 {
		return &Outline{}, nil
	}
	numPoints := int(endPtsOfContours[numContours-1]) + 1

	if len(buf) < 2 {
		return nil, errInvalidGlyphData
	}
	instructionLength := int(buf[0])<<8 | int(buf[1])
	if len(buf) < 2+instructionLength {
		return nil, errInvalidGlyphData
	}
	instructions := buf[2 : 2+instructionLength]
	buf = buf[2+instructionLength:]

	// decode the flags
	ff := make([]byte, numPoints)
	i := 0
	for i < numPoints {
		if len(buf) < 1 {
			return nil, errInvalidGlyphData
		}
		flags := buf[0]
		buf = buf[1:]
		ff[i] = flags
		i++
		if flags&0x08 != 0 { // REPEAT_FLAG
			if len(buf) < 1 {
				return nil, errInvalidGlyphData
			}
			count := buf[0]
			buf = buf[1:]
			for count > 0 && i < numPoints {
				ff[i] = flags
				i++
				count--
			}
		}
	}

	xx, buf, err := decodeCoords(buf, ff, 0x02, 0x10)
	if err != nil {
		return nil, err
	}
	yy, _, err := decodeCoords(buf, ff, 0x04, 0x20)
	if err != nil {
		return nil, err
	}

	cc := make([]Contour, numContours)
	start := 0
	for i := 0; i < numContours; i++ {
		end := int(endPtsOfContours[i]) + 1
		pp := make([]Point, end-start)
		for j := start; j < end; j++ {
			pp[j-start] = Point{xx[j], yy[j], ff[j]&0x01 != 0}
		}
		start = end
		cc[i] = pp
	}

	return &Outline{Contours: cc, Instructions: instructions}, nil
}

func decodeCoords(buf []byte, ff []byte, shortBit, sameOrPositiveBit byte) ([]funit.Int16, []byte, error) {
	coords := make([]funit.Int16, len(ff))
	var v funit.Int16
	for i, flags := range ff {
		if flags&shortBit != 0 {
			if len(buf) < 1 {
				return nil, nil, errInvalidGlyphData
			}
			d := funit.Int16(buf[0])
			buf = buf[1:]
			if flags&sameOrPositiveBit != 0 {
				v += d
			} else {
				v -= d
			}
		} else if flags&sameOrPositiveBit == 0 {
			if len(buf) < 2 {
				return nil, nil, errInvalidGlyphData
			}
			d := funit.Int16(buf[0])<<8 | funit.Int16(buf[1])
			buf = buf[2:]
			v += d
		}
		coords[i] = v
	}
	return coords, buf, nil
}

var errInvalidGlyphData = &otf.InvalidFontError{
	Table:  "glyf",
	Reason: "invalid simple glyph data",
}
