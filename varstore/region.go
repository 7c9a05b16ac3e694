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
	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/parser"
)

// RegionAxis gives one axis's contribution to a variation region: a
// peak normalized coordinate and the start/end of the tent function that
// falls away linearly on either side of it.
type RegionAxis struct {
	Start, Peak, End funit.F2Dot14
}

// scalar evaluates this axis's contribution to a region's scalar at the
// normalized coordinate coord, using the canonical OpenType piecewise
// linear tent function: 1 at Peak, falling linearly to 0 at Start and
// End, and 0 everywhere outside [Start, End]. An axis pinned to 0
// (Start == Peak == End == 0) contributes a constant factor of 1 and does
// not restrict the region.
func (a RegionAxis) scalar(coord funit.F2Dot14) float64 {
	start, peak, end := a.Start.Float64(), a.Peak.Float64(), a.End.Float64()
	x := coord.Float64()

	if peak == 0 {
		return 1
	}
	// a malformed region (start > peak or peak > end) never applies.
	if start > peak || peak > end || x < start || x > end {
		return 0
	}
	if x == peak {
		return 1
	}
	if x < peak {
		if start == peak {
			return 1
		}
		return (x - start) / (peak - start)
	}
	if end == peak {
		return 1
	}
	return (end - x) / (end - peak)
}

// Region is one row of a variation region list: a tent function per axis,
// combined multiplicatively across axes.
type Region struct {
	Axes []RegionAxis
}

// Scalar returns the region's contribution at the given normalized
// location, which must have one coordinate per font axis (axes this
// region does not constrain still need a coordinate, even if the region's
// own RegionAxis for them is the all-zero "doesn't restrict" entry).
func (r Region) Scalar(coords []funit.F2Dot14) float64 {
	factor := 1.0
	for i, axis := range r.Axes {
		var c funit.F2Dot14
		if i < len(coords) {
			c = coords[i]
		}
		f := axis.scalar(c)
		if f == 0 {
			return 0
		}
		factor *= f
	}
	return factor
}

// RegionList is the shared list of variation regions an Item Variation
// Store's subtables index into by position.
type RegionList struct {
	AxisCount int
	Regions   []Region
}

// Scalar returns the scalar of the region at the given index, at coords.
func (rl *RegionList) Scalar(regionIndex int, coords []funit.F2Dot14) float64 {
	if regionIndex < 0 || regionIndex >= len(rl.Regions) {
		return 0
	}
	return rl.Regions[regionIndex].Scalar(coords)
}

// ReadRegionList reads a VariationRegionList table at pos.
func ReadRegionList(p *parser.Parser, pos int64) (*RegionList, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	axisCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	regionCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}

	rl := &RegionList{AxisCount: int(axisCount), Regions: make([]Region, regionCount)}
	for i := range rl.Regions {
		axes := make([]RegionAxis, axisCount)
		for a := range axes {
			buf, err := p.ReadBytes(6)
			if err != nil {
				return nil, err
			}
			axes[a] = RegionAxis{
				Start: funit.F2Dot14(int16(buf[0])<<8 | int16(buf[1])),
				Peak:  funit.F2Dot14(int16(buf[2])<<8 | int16(buf[3])),
				End:   funit.F2Dot14(int16(buf[4])<<8 | int16(buf[5])),
			}
		}
		rl.Regions[i] = Region{Axes: axes}
	}
	return rl, nil
}

// EncodeLen returns the length in bytes of the encoded region list.
func (rl *RegionList) EncodeLen() int {
	return 4 + 6*rl.AxisCount*len(rl.Regions)
}

// Encode returns the binary representation of the region list.
func (rl *RegionList) Encode() []byte {
	buf := make([]byte, rl.EncodeLen())
	buf[0] = byte(rl.AxisCount >> 8)
	buf[1] = byte(rl.AxisCount)
	buf[2] = byte(len(rl.Regions) >> 8)
	buf[3] = byte(len(rl.Regions))
	pos := 4
	for _, r := range rl.Regions {
		for _, a := range r.Axes {
			put16(buf[pos:], uint16(a.Start))
			put16(buf[pos+2:], uint16(a.Peak))
			put16(buf[pos+4:], uint16(a.End))
			pos += 6
		}
	}
	return buf
}

func put16(buf []byte, v uint16) {
	buf[0] = byte(v >> 8)
	buf[1] = byte(v)
}
