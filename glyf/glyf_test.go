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
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/otf/glyph"
)

func simpleGlyphBytes() []byte {
	g := &Glyph{
		NumContours: 1,
		XMin:        0, YMin: 0, XMax: 100, YMax: 100,
		Tail: []byte{0, 2, 0, 0, 0x11, 10, 10, 10, 10},
	}
	return g.Append(nil)
}

func compositeGlyphBytes(refs ...glyph.ID) []byte {
	g := &Glyph{
		NumContours: -1,
		XMin:        0, YMin: 0, XMax: 200, YMax: 200,
	}
	for i, gid := range refs {
		flags := uint16(compArgsAreWords | compArgsAreXY)
		if i < len(refs)-1 {
			flags |= compMoreComponents
		}
		g.Components = append(g.Components, Component{
			GlyphIndex: gid,
			flags:      flags &^ compMoreComponents,
			rest:       []byte{0, 0, 0, 0}, // dx=0, dy=0 as words
		})
	}
	return g.Append(nil)
}

func TestRoundTrip(t *testing.T) {
	glyfData := append(append([]byte(nil), simpleGlyphBytes()...), compositeGlyphBytes(0)...)
	loca := []int{0, len(simpleGlyphBytes()), len(glyfData)}
	locaData, locaFormat := encodeLoca(loca)

	enc := &Encoded{GlyfData: glyfData, LocaData: locaData, LocaFormat: locaFormat}
	gg, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if len(gg) != 2 {
		t.Fatalf("got %d glyphs, want 2", len(gg))
	}
	if gg[0].NumContours != 1 {
		t.Errorf("glyph 0: NumContours = %d, want 1", gg[0].NumContours)
	}
	if len(gg[1].Components) != 1 || gg[1].Components[0].GlyphIndex != 0 {
		t.Errorf("glyph 1: Components = %#v", gg[1].Components)
	}

	enc2 := gg.Encode()
	gg2, err := Decode(enc2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(gg, gg2, cmp.AllowUnexported(Glyph{}, Component{})); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestClosure(t *testing.T) {
	// glyph 2 references glyph 1, glyph 1 references glyph 0.
	var gg Glyphs
	gg = append(gg, &Glyph{NumContours: 0})
	gg = append(gg, &Glyph{NumContours: -1, Components: []Component{{GlyphIndex: 0}}})
	gg = append(gg, &Glyph{NumContours: -1, Components: []Component{{GlyphIndex: 1}}})

	got := gg.Closure([]glyph.ID{2})
	want := map[glyph.ID]bool{0: true, 1: true, 2: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Closure mismatch (-want +got):\n%s", diff)
	}
}

func TestSubsetRenumbersComponents(t *testing.T) {
	var gg Glyphs
	gg = append(gg, &Glyph{NumContours: 0})                                            // gid 0, kept
	gg = append(gg, &Glyph{NumContours: 0})                                            // gid 1, dropped
	gg = append(gg, &Glyph{NumContours: -1, Components: []Component{{GlyphIndex: 0}}}) // gid 2, kept, refs 0

	newGID := map[glyph.ID]glyph.ID{0: 0, 2: 1}
	keep := func(g glyph.ID) bool { _, ok := newGID[g]; return ok }

	out := gg.Subset(keep, newGID)
	if len(out) != 2 {
		t.Fatalf("got %d glyphs, want 2", len(out))
	}
	if out[1].Components[0].GlyphIndex != 0 {
		t.Errorf("component reference not renumbered: got %d, want 0", out[1].Components[0].GlyphIndex)
	}
}
