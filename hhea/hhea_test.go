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

package hhea

import (
	"bytes"
	"math"
	"reflect"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	i1 := &Info{
		Ascent:              100,
		Descent:             -100,
		LineGap:             120,
		AdvanceWidthMax:     300,
		MinLeftSideBearing:  10,
		MinRightSideBearing: 20,
		XMaxExtent:          250,
		CaretAngle:          math.Pi / 180 * 10,
		CaretOffset:         2,
		NumOfLongHorMetrics: 4,
	}
	data := i1.Encode()
	if len(data) != tableLength {
		t.Fatalf("expected %d bytes, got %d", tableLength, len(data))
	}

	i2, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	i2.CaretAngle = i1.CaretAngle // not compared: the rational approximation loses precision
	want := *i1
	want.CaretAngle = i2.CaretAngle
	if !reflect.DeepEqual(*i2, want) {
		t.Errorf("got %+v, want %+v", *i2, want)
	}
}

func TestRationalApproximation(t *testing.T) {
	a, b := bestRationalApproximation(math.Pi, 10000)
	if a != 355 || b != 113 {
		t.Errorf("approximation for π not found: a=%d, b=%d", a, b)
	}

	for _, x := range []float64{1, 0, -1, 3.0 / 2.0, -math.Pi, math.Sqrt2, math.E, -22.0 / 7.0} {
		for _, N := range []int{10, 100, 256, 512, 1000, 1024, 65535} {
			a, b := bestRationalApproximation(x, N)
			if a > N || a < -N || b < 1 || b > N {
				t.Errorf("%g ≈ %d/%d is out of range", x, a, b)
			}

			q := float64(a) / float64(b)
			qNaive := math.Round(x*float64(b)) / float64(b)
			if math.Abs(x-q) > math.Abs(x-qNaive) {
				t.Errorf("%g ≈ %d/%d (N=%d) is not a good approximation", x, a, b, N)
			}
		}
	}
}

func TestAngle(t *testing.T) {
	rise, run := fromAngle(0)
	if rise != 1 || run != 0 {
		t.Errorf("rise=%d, run=%d", rise, run)
	}

	rise, run = fromAngle(-math.Pi / 4)
	if rise != 1 || run != 1 {
		t.Errorf("rise=%d, run=%d", rise, run)
	}

	rise, run = fromAngle(-math.Pi / 2)
	if rise != 0 || run != 1 {
		t.Errorf("rise=%d, run=%d", rise, run)
	}
}

func FuzzAngle(f *testing.F) {
	f.Fuzz(func(t *testing.T, rise, run int16) {
		if run == 0 {
			rise = 1
		} else if rise == 0 {
			run = 1
		}

		a, b := rise, run
		for b != 0 {
			a, b = b, a%b
		}
		if a < 0 {
			a = -a
		}

		rise2, run2 := fromAngle(toAngle(rise, run))
		if rise/a != rise2 || run/a != run2 {
			t.Errorf("%d/%d != %d/%d", rise/a, run/a, rise2, run2)
		}
	})
}

func FuzzHhea(f *testing.F) {
	info := &Info{Ascent: 800, Descent: -200, LineGap: 0, NumOfLongHorMetrics: 12}
	f.Add(info.Encode())

	f.Fuzz(func(t *testing.T, d1 []byte) {
		i1, err := Read(bytes.NewReader(d1))
		if err != nil {
			return
		}

		d2 := i1.Encode()
		i2, err := Read(bytes.NewReader(d2))
		if err != nil {
			t.Fatal(err)
		}

		if i1.NumOfLongHorMetrics != i2.NumOfLongHorMetrics || i1.Ascent != i2.Ascent {
			t.Fatal("not equal")
		}
	})
}
