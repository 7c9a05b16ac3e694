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

package hmtx

import (
	"reflect"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	i1 := &Info{
		AdvanceWidths:   []uint16{100, 200, 300, 300, 300},
		LeftSideBearing: []int16{0, 10, 20, 30, 40},
	}
	data, numHMetrics := i1.Encode()
	if numHMetrics != 3 {
		t.Fatalf("expected 3 long metrics, got %d", numHMetrics)
	}

	i2, err := Read(data, len(i1.AdvanceWidths), numHMetrics)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(i1, i2) {
		t.Errorf("got %+v, want %+v", i2, i1)
	}
}

func TestImplicitWidths(t *testing.T) {
	i1 := &Info{
		AdvanceWidths:   []uint16{100, 200, 300, 300, 300},
		LeftSideBearing: []int16{0, 10, 20, 30, 40},
	}
	data, numHMetrics := i1.Encode()
	wantLen := 4*3 + 2*2
	if len(data) != wantLen {
		t.Errorf("expected %d bytes, got %d", wantLen, len(data))
	}

	if w := i1.GetAdvanceWidth(4); w != 300 {
		t.Errorf("GetAdvanceWidth(4) = %d, want 300", w)
	}
	if w := i1.GetAdvanceWidth(100); w != 300 {
		t.Errorf("GetAdvanceWidth(100) = %d, want 300 (out of range clamp)", w)
	}

	_ = numHMetrics
}

func TestSubset(t *testing.T) {
	i1 := &Info{
		AdvanceWidths:   []uint16{100, 200, 300},
		LeftSideBearing: []int16{1, 2, 3},
	}
	sub := i1.Subset([]uint16{2, 0, 0})
	want := &Info{
		AdvanceWidths:   []uint16{300, 100, 100},
		LeftSideBearing: []int16{3, 1, 1},
	}
	if !reflect.DeepEqual(sub, want) {
		t.Errorf("got %+v, want %+v", sub, want)
	}
}

func FuzzHmtx(f *testing.F) {
	i1 := &Info{
		AdvanceWidths:   []uint16{100, 200, 300, 300},
		LeftSideBearing: []int16{10, 20, 30, 40},
	}
	data, numHMetrics := i1.Encode()
	f.Add(data, len(i1.AdvanceWidths), numHMetrics)

	f.Fuzz(func(t *testing.T, data []byte, numGlyphs, numHMetrics int) {
		if numGlyphs <= 0 || numGlyphs > 1<<16 {
			return
		}
		i1, err := Read(data, numGlyphs, numHMetrics)
		if err != nil {
			return
		}

		d2, n2 := i1.Encode()
		i2, err := Read(d2, numGlyphs, n2)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(i1, i2) {
			t.Fatal("not equal")
		}
	})
}
