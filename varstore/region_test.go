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

package varstore

import (
	"bytes"
	"math"
	"testing"

	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/parser"
)

type sizedReader struct{ *bytes.Reader }

func (s sizedReader) Size() int64 { return s.Reader.Size() }

func newParser(data []byte) *parser.Parser {
	return parser.New("varstore test", sizedReader{bytes.NewReader(data)})
}

func f2d(x float64) funit.F2Dot14 { return funit.F2Dot14FromFloat64(x) }

func TestRegionAxisScalar(t *testing.T) {
	a := RegionAxis{Start: f2d(0), Peak: f2d(1), End: f2d(1)}

	cases := []struct {
		coord float64
		want  float64
	}{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 0}, // past End: outside the region's support
	}
	for _, c := range cases {
		got := a.scalar(f2d(c.coord))
		if math.Abs(got-c.want) > 1e-3 {
			t.Errorf("scalar(%v) = %v, want %v", c.coord, got, c.want)
		}
	}
}

func TestRegionAxisOutsideRangeIsZero(t *testing.T) {
	a := RegionAxis{Start: f2d(0), Peak: f2d(1), End: f2d(2)}
	if got := a.scalar(f2d(-0.5)); got != 0 {
		t.Errorf("scalar below Start = %v, want 0", got)
	}
	if got := a.scalar(f2d(2.5)); got != 0 {
		t.Errorf("scalar above End = %v, want 0", got)
	}
}

func TestRegionAxisPinnedAlwaysOne(t *testing.T) {
	a := RegionAxis{} // Start == Peak == End == 0
	if got := a.scalar(f2d(0)); got != 1 {
		t.Errorf("pinned axis at 0 = %v, want 1", got)
	}
}

func TestRegionListRoundTrip(t *testing.T) {
	rl := &RegionList{
		AxisCount: 2,
		Regions: []Region{
			{Axes: []RegionAxis{{Start: f2d(0), Peak: f2d(1), End: f2d(1)}, {Start: f2d(-1), Peak: f2d(0), End: f2d(1)}}},
			{Axes: []RegionAxis{{Start: f2d(-1), Peak: f2d(-1), End: f2d(0)}, {Start: f2d(0), Peak: f2d(0), End: f2d(0)}}},
		},
	}

	enc := rl.Encode()
	if len(enc) != rl.EncodeLen() {
		t.Fatalf("EncodeLen() = %d, Encode() produced %d bytes", rl.EncodeLen(), len(enc))
	}

	got, err := ReadRegionList(newParser(enc), 0)
	if err != nil {
		t.Fatalf("ReadRegionList: %v", err)
	}
	if got.AxisCount != rl.AxisCount || len(got.Regions) != len(rl.Regions) {
		t.Fatalf("round trip shape mismatch: got %+v", got)
	}
	for i, r := range rl.Regions {
		for j, a := range r.Axes {
			g := got.Regions[i].Axes[j]
			if g != a {
				t.Errorf("region %d axis %d: got %+v, want %+v", i, j, g, a)
			}
		}
	}
}
