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
	"seehuhn.de/go/otf/glyph"
)

// Glyph represents a single entry in the "glyf" table.
//
// For simple glyphs (NumContours >= 0), the contour/instruction body is
// kept as an opaque tail: this module does not interpret glyph outlines.
// For composite glyphs (NumContours == -1), the component records are
// decoded into Components so a subsetter can renumber the glyph indices
// they reference; everything else about each component (flags, argument
// bytes, transform) is preserved verbatim.
type Glyph struct {
	NumContours int16
	XMin        funit.Int16
	YMin        funit.Int16
	XMax        funit.Int16
	YMax        funit.Int16

	// Tail holds the simple-glyph body (endPtsOfContours, instructions,
	// flags and coordinate deltas), unparsed. Empty for composite glyphs.
	Tail []byte

	// Components holds the decoded component records of a composite
	// glyph, in encoding order. Empty for simple glyphs.
	Components []Component
}

// Component is one component reference of a composite glyph.
type Component struct {
	// GlyphIndex identifies the component glyph. This is the only field
	// a subsetter needs to rewrite when renumbering glyphs.
	GlyphIndex glyph.ID

	// flags is the component's flag word, as read from the font. It
	// determines how rest is laid out (argument width, presence of a
	// scale/transform, USE_MY_METRICS, ...).
	flags uint16

	// rest holds the component record's bytes following the glyph
	// index: the two arguments and any scale/transform, exactly as
	// they appeared in the font. MORE_COMPONENTS (bit 5) is masked out
	// of the stored flags and re-derived on Encode, since it depends on
	// the component's position in the list, not on the component
	// itself.
	rest []byte
}

// Component flag bits.
// https://learn.microsoft.com/en-us/typography/opentype/spec/glyf#composite-glyph-description
const (
	compArgsAreWords    = 0x0001
	compArgsAreXY       = 0x0002
	compRoundXYToGrid   = 0x0004
	compHaveScale       = 0x0008
	compMoreComponents  = 0x0020
	compHaveXYScale     = 0x0040
	compHaveTwoByTwo    = 0x0080
	compHaveInstr       = 0x0100
	compUseMyMetrics    = 0x0200
	compOverlapCompound = 0x0400
)

// UsesMyMetrics reports whether this component supplies the composite
// glyph's advance width and left side bearing (the USE_MY_METRICS flag).
func (c Component) UsesMyMetrics() bool {
	return c.flags&compUseMyMetrics != 0
}

func decodeGlyph(data []byte) (*Glyph, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < 10 {
		return nil, &otf.InvalidFontError{
			Table:  "glyf",
			Reason: "incomplete glyph header",
		}
	}

	numContours := int16(data[0])<<8 | int16(data[1])
	g := &Glyph{
		NumContours: numContours,
		XMin:        funit.Int16(data[2])<<8 | funit.Int16(data[3]),
		YMin:        funit.Int16(data[4])<<8 | funit.Int16(data[5]),
		XMax:        funit.Int16(data[6])<<8 | funit.Int16(data[7]),
		YMax:        funit.Int16(data[8])<<8 | funit.Int16(data[9]),
	}

	body := data[10:]
	if numContours >= 0 {
		g.Tail = body
		return g, nil
	}

	components, err := decodeComponents(body)
	if err != nil {
		return nil, err
	}
	g.Components = components
	return g, nil
}

func decodeComponents(data []byte) ([]Component, error) {
	var components []Component
	for {
		if len(data) < 4 {
			return nil, &otf.InvalidFontError{
				Table:  "glyf",
				Reason: "truncated composite glyph component",
			}
		}
		flags := uint16(data[0])<<8 | uint16(data[1])
		glyphIndex := glyph.ID(data[2])<<8 | glyph.ID(data[3])
		data = data[4:]

		argSize := 2
		if flags&compArgsAreWords != 0 {
			argSize = 4
		}
		scaleSize := 0
		switch {
		case flags&compHaveTwoByTwo != 0:
			scaleSize = 8
		case flags&compHaveXYScale != 0:
			scaleSize = 4
		case flags&compHaveScale != 0:
			scaleSize = 2
		}
		recLen := argSize + scaleSize
		if len(data) < recLen {
			return nil, &otf.InvalidFontError{
				Table:  "glyf",
				Reason: "truncated composite glyph component",
			}
		}

		components = append(components, Component{
			GlyphIndex: glyphIndex,
			flags:      flags &^ compMoreComponents,
			rest:       append([]byte(nil), data[:recLen]...),
		})
		data = data[recLen:]

		if flags&compMoreComponents == 0 {
			break
		}
	}
	return components, nil
}

// EncodeLen returns the number of bytes Append would write.
func (g *Glyph) EncodeLen() int {
	if g == nil {
		return 0
	}
	if g.NumContours >= 0 {
		return 10 + len(g.Tail)
	}
	n := 10
	for _, c := range g.Components {
		n += 4 + len(c.rest)
	}
	return n
}

// Append appends the binary encoding of the glyph to buf and returns the
// extended slice.
func (g *Glyph) Append(buf []byte) []byte {
	if g == nil {
		return buf
	}

	start := len(buf)
	buf = append(buf, make([]byte, 10)...)
	buf[start] = byte(g.NumContours >> 8)
	buf[start+1] = byte(g.NumContours)
	buf[start+2] = byte(g.XMin >> 8)
	buf[start+3] = byte(g.XMin)
	buf[start+4] = byte(g.YMin >> 8)
	buf[start+5] = byte(g.YMin)
	buf[start+6] = byte(g.XMax >> 8)
	buf[start+7] = byte(g.XMax)
	buf[start+8] = byte(g.YMax >> 8)
	buf[start+9] = byte(g.YMax)

	if g.NumContours >= 0 {
		return append(buf, g.Tail...)
	}

	for i, c := range g.Components {
		flags := c.flags
		if i < len(g.Components)-1 {
			flags |= compMoreComponents
		}
		buf = append(buf, byte(flags>>8), byte(flags),
			byte(c.GlyphIndex>>8), byte(c.GlyphIndex))
		buf = append(buf, c.rest...)
	}
	return buf
}
