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

import "testing"

// TestDecodeTriangle builds the Tail of a single-contour triangle by hand
// (endPtsOfContours, zero instructions, three on-curve points using short
// vectors) and checks that Decode reconstructs the same three points.
func TestDecodeTriangle(t *testing.T) {
	tail := []byte{
		0, 2, // endPtsOfContours[0] = 2 (3 points)
		0, 0, // instructionLength = 0
		0x01 | 0x02 | 0x04 | 0x10 | 0x20, // flags: on-curve, short x, short y, positive x, positive y
		0x01 | 0x02 | 0x04 | 0x10 | 0x20,
		0x01 | 0x02 | 0x04 | 0x10 | 0x20,
		10, 0, 10, // x deltas: 10, 0, 10
		0, 10, 0, // y deltas: 0, 10, 0
	}
	g := &Glyph{NumContours: 1, Tail: tail}

	outline, err := g.Decode()
	if err != nil {
		t.Fatal(err)
	}
	if len(outline.Contours) != 1 || len(outline.Contours[0]) != 3 {
		t.Fatalf("got %d contours, want 1 with 3 points", len(outline.Contours))
	}
	want := []Point{
		{X: 10, Y: 0, OnCurve: true},
		{X: 10, Y: 10, OnCurve: true},
		{X: 20, Y: 10, OnCurve: true},
	}
	for i, p := range outline.Contours[0] {
		if p != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, p, want[i])
		}
	}
}

func TestDecodeCompositeRejected(t *testing.T) {
	g := &Glyph{NumContours: -1}
	if _, err := g.Decode(); err == nil {
		t.Error("expected an error decoding a composite glyph as a simple outline")
	}
}
