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

// Package hhea reads and writes the OpenType "hhea" table.
// https://learn.microsoft.com/en-us/typography/opentype/spec/hhea
//
// The table gives the metrics needed for horizontal text layout that are
// not already stored per-glyph in the "hmtx" table: the typographic
// ascent/descent/line gap, the caret angle, and the count of explicit
// advance widths at the start of "hmtx".
package hhea

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"seehuhn.de/go/otf"
)

const tableLength = 36

// Info represents the information in a font's "hhea" table.
type Info struct {
	Ascent  int16
	Descent int16 // usually negative
	LineGap int16

	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16

	CaretAngle  float64 // in radians, 0 for vertical
	CaretOffset int16

	// NumOfLongHorMetrics is the number of explicit (advanceWidth, lsb)
	// pairs at the start of the "hmtx" table; later glyphs reuse the
	// last advance width and store only their own left side bearing.
	NumOfLongHorMetrics uint16
}

// Read decodes the binary representation of the "hhea" table.
func Read(r io.Reader) (*Info, error) {
	enc := &binaryHhea{}
	if err := binary.Read(r, binary.BigEndian, enc); err != nil {
		return nil, err
	}

	if enc.Version != 0x00010000 {
		return nil, &otf.NotSupportedError{
			Table:   "hhea",
			Feature: fmt.Sprintf("table version %08x", enc.Version),
		}
	}
	if enc.MetricDataFormat != 0 {
		return nil, &otf.NotSupportedError{
			Table:   "hhea",
			Feature: fmt.Sprintf("metric data format %d", enc.MetricDataFormat),
		}
	}

	return &Info{
		Ascent:              enc.Ascent,
		Descent:             enc.Descent,
		LineGap:             enc.LineGap,
		AdvanceWidthMax:     enc.AdvanceWidthMax,
		MinLeftSideBearing:  enc.MinLeftSideBearing,
		MinRightSideBearing: enc.MinRightSideBearing,
		XMaxExtent:          enc.XMaxExtent,
		CaretAngle:          toAngle(enc.CaretSlopeRise, enc.CaretSlopeRun),
		CaretOffset:         enc.CaretOffset,
		NumOfLongHorMetrics: enc.NumOfLongHorMetrics,
	}, nil
}

// Encode returns the binary representation of the "hhea" table.
func (info *Info) Encode() []byte {
	rise, run := fromAngle(info.CaretAngle)

	enc := &binaryHhea{
		Version:             0x00010000,
		Ascent:              info.Ascent,
		Descent:             info.Descent,
		LineGap:             info.LineGap,
		AdvanceWidthMax:     info.AdvanceWidthMax,
		MinLeftSideBearing:  info.MinLeftSideBearing,
		MinRightSideBearing: info.MinRightSideBearing,
		XMaxExtent:          info.XMaxExtent,
		CaretSlopeRise:      rise,
		CaretSlopeRun:       run,
		CaretOffset:         info.CaretOffset,
		NumOfLongHorMetrics: info.NumOfLongHorMetrics,
	}

	buf := bytes.NewBuffer(make([]byte, 0, tableLength))
	_ = binary.Write(buf, binary.BigEndian, enc)
	return buf.Bytes()
}

type binaryHhea struct {
	Version             uint32
	Ascent              int16
	Descent             int16
	LineGap             int16
	AdvanceWidthMax     uint16
	MinLeftSideBearing  int16
	MinRightSideBearing int16
	XMaxExtent          int16
	CaretSlopeRise      int16
	CaretSlopeRun       int16
	CaretOffset         int16
	_                   int16
	_                   int16
	_                   int16
	_                   int16
	MetricDataFormat    int16
	NumOfLongHorMetrics uint16
}

// toAngle converts a caret slope (rise, run) to an angle in radians,
// measured from vertical, with negative angles leaning right (italic).
func toAngle(rise, run int16) float64 {
	if rise == -32768 {
		rise = -32767
	}
	if run == -32768 {
		run = -32767
	}
	return math.Atan2(float64(rise), float64(run)) - math.Pi/2
}

// fromAngle converts a caret angle in radians back to a (rise, run) pair
// with both components bounded by int16 and in lowest terms.
func fromAngle(caretAngle float64) (rise, run int16) {
	phi := caretAngle + math.Pi/2
	s := math.Sin(phi)
	c := math.Cos(phi)
	if math.Abs(c) <= 0.5/32767.0 {
		if s >= 0 {
			return 1, 0
		}
		return -1, 0
	}
	rise0, run0 := bestRationalApproximation(s/c, 32767)
	if s*float64(rise0) < 0 {
		rise0, run0 = -rise0, -run0
	}
	return int16(rise0), int16(run0)
}

// bestRationalApproximation returns a rational approximation p/q of x
// with abs(p)<=N and 0<q<=N.
func bestRationalApproximation(x float64, N int) (p int, q int) {
	sign := 1
	if x < 0 {
		x = -x
		sign = -1
	}

	Nf := float64(N)
	if x < 0.5/Nf {
		return 0, sign
	} else if x > Nf-0.5 {
		return sign * N, 1
	}

	maxDenom := N
	if x > 1 {
		maxDenom = int(math.Floor((Nf + 0.5) / x))
	}
	bestDist := math.Inf(1)
	bestDenom := 0
	bestNumerator := 0
	for denom := 1; denom <= maxDenom; denom++ {
		numerator := int(math.Round(x * float64(denom)))
		if numerator > N {
			continue
		}
		y := float64(numerator) / float64(denom)
		dist := math.Abs(x - y)
		if dist < bestDist {
			bestDist = dist
			bestDenom = denom
			bestNumerator = numerator
		}
	}
	return sign * bestNumerator, bestDenom
}
