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

package gtab

import (
	"sort"

	"seehuhn.de/go/otf/parser"
)

// FeatureIndex is used as an index into a FeatureListInfo.
type FeatureIndex uint16

// Feature describes a single entry of a FeatureList table: a tag
// ("kern", "liga", ...) and the lookups it activates.
type Feature struct {
	Tag     string
	Lookups []LookupIndex
}

// FeatureListInfo contains the information from a FeatureList table.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#feature-list-table
type FeatureListInfo []Feature

func readFeatureList(p *parser.Parser, pos int64) (FeatureListInfo, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	featureCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}

	type featureRecord struct {
		tag    string
		offset uint16
	}
	recs := make([]featureRecord, featureCount)
	for i := range recs {
		tag, err := p.ReadTag()
		if err != nil {
			return nil, err
		}
		offset, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		recs[i] = featureRecord{tag: tag, offset: offset}
	}

	info := make(FeatureListInfo, featureCount)
	for i, rec := range recs {
		feat, err := readFeatureTable(p, pos+int64(rec.offset))
		if err != nil {
			return nil, err
		}
		feat.Tag = rec.tag
		info[i] = feat
	}
	return info, nil
}

// readFeatureTable reads a single Feature table (featureParamsOffset,
// lookupIndexCount, lookupListIndices[]). The feature's tag is not part
// of the Feature table itself; callers fill it in from the enclosing
// record.
func readFeatureTable(p *parser.Parser, pos int64) (Feature, error) {
	if err := p.SeekPos(pos); err != nil {
		return Feature{}, err
	}
	// featureParamsOffset: only used by a handful of features (e.g. 'size',
	// 'cv01'-'cv99') that this package does not interpret; skip it.
	if _, err := p.ReadUInt16(); err != nil {
		return Feature{}, err
	}
	lookupIndices, err := p.ReadUInt16Slice()
	if err != nil {
		return Feature{}, err
	}
	lookups := make([]LookupIndex, len(lookupIndices))
	for i, idx := range lookupIndices {
		lookups[i] = LookupIndex(idx)
	}
	return Feature{Lookups: lookups}, nil
}

func (info FeatureListInfo) encode() []byte {
	if info == nil {
		return nil
	}

	// FeatureRecords must be sorted by tag for a well-formed font, with
	// ties broken by original order (stable sort preserves that).
	order := make([]int, len(info))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return info[order[i]].Tag < info[order[j]].Tag
	})

	headerLen := 2 + 6*len(info)
	total := headerLen
	offsets := make([]int, len(info))
	for _, i := range order {
		offsets[i] = total
		total += 4 + 2*len(info[i].Lookups)
	}

	buf := make([]byte, 0, total)
	buf = append(buf, byte(len(info)>>8), byte(len(info)))
	for _, i := range order {
		tag := info[i].Tag
		off := offsets[i]
		buf = append(buf, tag[0], tag[1], tag[2], tag[3], byte(off>>8), byte(off))
	}
	for _, i := range order {
		feat := info[i]
		buf = append(buf, 0, 0, byte(len(feat.Lookups)>>8), byte(len(feat.Lookups)))
		for _, l := range feat.Lookups {
			buf = append(buf, byte(l>>8), byte(l))
		}
	}
	return buf
}

func encodeFeatureTable(feat Feature) []byte {
	buf := make([]byte, 0, 4+2*len(feat.Lookups))
	buf = append(buf, 0, 0, byte(len(feat.Lookups)>>8), byte(len(feat.Lookups)))
	for _, l := range feat.Lookups {
		buf = append(buf, byte(l>>8), byte(l))
	}
	return buf
}
