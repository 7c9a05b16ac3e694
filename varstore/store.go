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
	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/funit"
	"seehuhn.de/go/otf/parser"
)

// wordDeltaFlag marks the high bit of a VarData subtable's packed word
// count field, selecting 32-bit deltas for the "short" columns instead of
// 16-bit ones.
const wordDeltaFlag = 0x8000

// VarData is one ItemVariationData subtable: a list of regions it draws
// on (by index into the store's shared RegionList) and, for every item
// (the store's inner index), one delta per listed region.
type VarData struct {
	RegionIndexes []int
	DeltaSets     [][]int32 // DeltaSets[item][j] is the delta for RegionIndexes[j]
	LongWords     bool

	// WordCount is the number of leading columns (RegionIndexes[:WordCount])
	// stored at the wide width (16 bits, or 32 if LongWords); the
	// remaining columns use the narrow width. The format requires the
	// wide columns to be a prefix, so callers building a VarData from
	// scratch should put any column needing extra range first.
	WordCount int
}

// NewVarData builds a VarData with every column at the wide width, the
// always-correct (if not maximally compact) choice for freshly assembled
// delta sets.
func NewVarData(regionIndexes []int, deltaSets [][]int32) *VarData {
	return &VarData{
		RegionIndexes: regionIndexes,
		DeltaSets:     deltaSets,
		WordCount:     len(regionIndexes),
	}
}

// ItemVariationStore is the shared region list plus the list of
// ItemVariationData subtables that HVAR, MVAR, gvar-driven composite
// transforms and VARC all draw deltas from, keyed by VarIdx.
type ItemVariationStore struct {
	Regions *RegionList
	Data    []*VarData
}

// GetDelta returns the net delta that VarIdx idx contributes at the given
// normalized location: the sum, over every region the addressed VarData
// subtable lists, of that region's scalar at coords times the item's
// delta for that region.
func (s *ItemVariationStore) GetDelta(idx VarIdx, coords []funit.F2Dot14) float64 {
	if idx == NoVariation {
		return 0
	}
	outer := int(idx.Outer())
	if outer < 0 || outer >= len(s.Data) {
		return 0
	}
	vd := s.Data[outer]
	inner := int(idx.Inner())
	if inner < 0 || inner >= len(vd.DeltaSets) {
		return 0
	}

	var total float64
	row := vd.DeltaSets[inner]
	for j, regionIdx := range vd.RegionIndexes {
		scalar := s.Regions.Scalar(regionIdx, coords)
		if scalar == 0 {
			continue
		}
		total += scalar * float64(row[j])
	}
	return total
}

// ReadItemVariationStore reads an Item Variation Store table at pos. The
// offset is relative to the start of the Item Variation Store itself, as
// used by HVAR/MVAR/VARC; callers that parse a table whose item variation
// store offset is relative to a different base must add that base in
// before calling.
func ReadItemVariationStore(p *parser.Parser, pos int64) (*ItemVariationStore, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	format, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	if format != 1 {
		return nil, &otf.NotSupportedError{
			Table:   "varstore",
			Feature: "item variation store format != 1",
		}
	}
	regionListOffset, err := p.ReadUInt32()
	if err != nil {
		return nil, err
	}
	dataCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	dataOffsets := make([]uint32, dataCount)
	for i := range dataOffsets {
		dataOffsets[i], err = p.ReadUInt32()
		if err != nil {
			return nil, err
		}
	}

	regions, err := ReadRegionList(p, pos+int64(regionListOffset))
	if err != nil {
		return nil, err
	}

	s := &ItemVariationStore{Regions: regions, Data: make([]*VarData, dataCount)}
	for i, off := range dataOffsets {
		vd, err := readVarData(p, pos+int64(off))
		if err != nil {
			return nil, err
		}
		s.Data[i] = vd
	}
	return s, nil
}

func readVarData(p *parser.Parser, pos int64) (*VarData, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	itemCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	wordDeltaCountField, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	longWords := wordDeltaCountField&wordDeltaFlag != 0
	wordDeltaCount := int(wordDeltaCountField &^ wordDeltaFlag)

	regionIndexCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	regionIndexes := make([]int, regionIndexCount)
	for i := range regionIndexes {
		v, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		regionIndexes[i] = int(v)
	}
	if wordDeltaCount > int(regionIndexCount) {
		return nil, &otf.InvalidFontError{
			Table:  "varstore",
			Reason: "item variation data: word delta count exceeds region count",
		}
	}

	deltaSets := make([][]int32, itemCount)
	for item := range deltaSets {
		row := make([]int32, regionIndexCount)
		for j := 0; j < int(regionIndexCount); j++ {
			var v int32
			if j < wordDeltaCount {
				if longWords {
					buf, err := p.ReadBytes(4)
					if err != nil {
						return nil, err
					}
					v = int32(uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]))
				} else {
					val, err := p.ReadInt16()
					if err != nil {
						return nil, err
					}
					v = int32(val)
				}
			} else {
				if longWords {
					val, err := p.ReadInt16()
					if err != nil {
						return nil, err
					}
					v = int32(val)
				} else {
					val, err := p.ReadInt8()
					if err != nil {
						return nil, err
					}
					v = int32(val)
				}
			}
			row[j] = v
		}
		deltaSets[item] = row
	}

	return &VarData{
		RegionIndexes: regionIndexes,
		DeltaSets:     deltaSets,
		LongWords:     longWords,
		WordCount:     wordDeltaCount,
	}, nil
}

// EncodeLen returns the encoded length, in bytes, of the whole store
// (header, region list and every VarData subtable, laid out
// sequentially with no sharing).
func (s *ItemVariationStore) EncodeLen() int {
	total := 8 + 4*len(s.Data) + s.Regions.EncodeLen()
	for _, vd := range s.Data {
		total += vd.encodeLen()
	}
	return total
}

// Encode serializes the store with the region list and every VarData
// subtable placed back to back after the header, in the order in which
// otf/graph.Store would intern them if finer-grained sharing were needed.
func (s *ItemVariationStore) Encode() []byte {
	buf := make([]byte, s.EncodeLen())
	put16(buf, 1) // format

	headerLen := 8 + 4*len(s.Data)
	put32(buf[2:], uint32(headerLen)) // regionListOffset
	put16(buf[6:], uint16(len(s.Data)))

	regionList := s.Regions.Encode()
	copy(buf[headerLen:], regionList)

	pos := headerLen + len(regionList)
	for i, vd := range s.Data {
		put32(buf[8+4*i:], uint32(pos))
		enc := vd.encode()
		copy(buf[pos:], enc)
		pos += len(enc)
	}
	return buf
}

func (vd *VarData) encodeLen() int {
	n := len(vd.DeltaSets)
	regionCount := len(vd.RegionIndexes)
	width := 1
	if vd.LongWords {
		width = 2
	}
	rowLen := 0
	for j := 0; j < regionCount; j++ {
		if j < vd.WordCount {
			rowLen += 2 * width
		} else {
			rowLen += width
		}
	}
	return 6 + 2*regionCount + n*rowLen
}

func (vd *VarData) encode() []byte {
	regionCount := len(vd.RegionIndexes)
	wordCount := vd.WordCount
	buf := make([]byte, vd.encodeLen())
	put16(buf, uint16(len(vd.DeltaSets)))
	wdc := uint16(wordCount)
	if vd.LongWords {
		wdc |= wordDeltaFlag
	}
	put16(buf[2:], wdc)
	put16(buf[4:], uint16(regionCount))
	for i, r := range vd.RegionIndexes {
		put16(buf[6+2*i:], uint16(r))
	}

	width := 1
	if vd.LongWords {
		width = 2
	}
	rowLen := 0
	for j := 0; j < regionCount; j++ {
		if j < wordCount {
			rowLen += 2 * width
		} else {
			rowLen += width
		}
	}

	pos := 6 + 2*regionCount
	for _, row := range vd.DeltaSets {
		off := pos
		for j := 0; j < wordCount; j++ {
			if vd.LongWords {
				put32(buf[off:], uint32(row[j]))
				off += 4
			} else {
				put16(buf[off:], uint16(row[j]))
				off += 2
			}
		}
		for j := wordCount; j < regionCount; j++ {
			if vd.LongWords {
				put16(buf[off:], uint16(row[j]))
				off += 2
			} else {
				buf[off] = byte(row[j])
				off++
			}
		}
		pos += rowLen
	}
	return buf
}

func put32(buf []byte, v uint32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}
