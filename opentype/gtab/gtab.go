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

// Package gtab reads and writes the shared "GSUB"/"GPOS" lookup table
// machinery: script/feature lists, the lookup list, and the subtable
// formats used for glyph substitution and positioning. Applying these
// tables during shaping is outside the scope of this package; it only
// decodes and re-encodes the data, and exposes enough structure for a
// subsetter to rewrite glyph IDs and prune unreachable lookups.
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos
package gtab

import (
	"encoding/binary"
	"fmt"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/parser"
)

// Info contains the information from a "GSUB" or "GPOS" table.
type Info struct {
	ScriptList  ScriptListInfo
	FeatureList FeatureListInfo
	LookupList  LookupList

	// FeatureVariations holds the table's (optional) FeatureVariations
	// data, used by variable fonts to swap in alternate feature/lookup
	// sets depending on the current position in the design-variation
	// space. It is nil if the table carries no FeatureVariations data.
	FeatureVariations *FeatureVariations
}

// subtableReader is a function that can decode a subtable.
// Different functions are required for "GSUB" and "GPOS" tables.
type subtableReader func(*parser.Parser, int64, *LookupMetaInfo) (Subtable, error)

// Read reads and decodes a "GSUB" or "GPOS" table from r.
// TableName must be either "GSUB" or "GPOS".
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#gsubgpos-header
func Read(tableName string, r parser.ReadSeekSizer) (*Info, error) {
	var sr subtableReader
	switch tableName {
	case "GPOS":
		sr = readGposSubtable
	case "GSUB":
		sr = readGsubSubtable
	default:
		panic("gtab: invalid table name " + tableName)
	}
	return doRead(tableName, r, sr)
}

func doRead(tableName string, r parser.ReadSeekSizer, sr subtableReader) (*Info, error) {
	p := parser.New(tableName, r)

	var header struct {
		MajorVersion      uint16
		MinorVersion      uint16
		ScriptListOffset  uint16
		FeatureListOffset uint16
		LookupListOffset  uint16
	}
	var featureVariationsOffset uint32

	if err := binary.Read(p, binary.BigEndian, &header); err != nil {
		return nil, err
	}
	if header.MajorVersion != 1 || header.MinorVersion > 1 {
		return nil, &otf.NotSupportedError{
			Table:   tableName,
			Feature: fmt.Sprintf("table version %d.%d", header.MajorVersion, header.MinorVersion),
		}
	}
	endOfHeader := uint32(10)
	if header.MinorVersion == 1 {
		var err error
		featureVariationsOffset, err = p.ReadUInt32()
		if err != nil {
			return nil, err
		}
		endOfHeader += 4
	}

	if header.ScriptListOffset == 0 || header.LookupListOffset == 0 {
		return &Info{ScriptList: make(ScriptListInfo)}, nil
	}

	fileSize := p.Size()
	for _, offset := range []uint32{
		uint32(header.ScriptListOffset),
		uint32(header.FeatureListOffset),
		uint32(header.LookupListOffset),
	} {
		if offset < endOfHeader || int64(offset) >= fileSize {
			return nil, &otf.InvalidFontError{
				Table:  tableName,
				Reason: fmt.Sprintf("invalid header offset %d", offset),
			}
		}
	}
	if featureVariationsOffset != 0 &&
		(featureVariationsOffset < endOfHeader || int64(featureVariationsOffset) >= fileSize) {
		return nil, &otf.InvalidFontError{
			Table:  tableName,
			Reason: "invalid FeatureVariationsOffset",
		}
	}

	info := &Info{}
	var err error
	info.ScriptList, err = readScriptList(p, int64(header.ScriptListOffset))
	if err != nil {
		return nil, err
	}
	info.FeatureList, err = readFeatureList(p, int64(header.FeatureListOffset))
	if err != nil {
		return nil, err
	}
	info.LookupList, err = readLookupList(p, int64(header.LookupListOffset), sr)
	if err != nil {
		return nil, err
	}
	if featureVariationsOffset != 0 {
		info.FeatureVariations, err = readFeatureVariations(p, int64(featureVariationsOffset))
		if err != nil {
			return nil, err
		}
	}

	return info, nil
}

// Encode returns the binary representation of a "GSUB" or "GPOS" table.
func (info *Info) Encode() []byte {
	scriptList := info.ScriptList.encode()
	featureList := info.FeatureList.encode()
	lookupList := info.LookupList.encode()
	var featVar []byte
	if info.FeatureVariations != nil {
		featVar = info.FeatureVariations.encode()
	}

	minorVersion := 0
	headerLen := 10
	if featVar != nil {
		minorVersion = 1
		headerLen = 14
	}

	total := headerLen
	var scriptListOffset, featureListOffset, lookupListOffset, featVarOffset int
	if scriptList != nil {
		scriptListOffset = total
		total += len(scriptList)
	}
	if featureList != nil {
		featureListOffset = total
		total += len(featureList)
	}
	if lookupList != nil {
		lookupListOffset = total
		total += len(lookupList)
	}
	if featVar != nil {
		featVarOffset = total
		total += len(featVar)
	}

	buf := make([]byte, total)
	copy(buf, []byte{
		0, 1, // major version
		0, byte(minorVersion),
		byte(scriptListOffset >> 8), byte(scriptListOffset),
		byte(featureListOffset >> 8), byte(featureListOffset),
		byte(lookupListOffset >> 8), byte(lookupListOffset),
	})
	if minorVersion == 1 {
		buf[10] = byte(featVarOffset >> 24)
		buf[11] = byte(featVarOffset >> 16)
		buf[12] = byte(featVarOffset >> 8)
		buf[13] = byte(featVarOffset)
	}
	copy(buf[scriptListOffset:], scriptList)
	copy(buf[featureListOffset:], featureList)
	copy(buf[lookupListOffset:], lookupList)
	if featVar != nil {
		copy(buf[featVarOffset:], featVar)
	}

	return buf
}

// FeatureVariations holds the contents of a "GSUB"/"GPOS" table's
// FeatureVariations sub-table: a list of design-space conditions, each
// paired with a set of feature-index substitutions to apply when the
// condition holds. A glyph closure walk must visit every substitute
// feature's lookups in addition to the default ones, since any
// variation instance may select them.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#featurevariations-table
type FeatureVariations struct {
	Records []FeatureVariationRecord
}

// FeatureVariationRecord pairs a set of per-axis value-range conditions
// with the feature substitutions that apply when all conditions hold.
type FeatureVariationRecord struct {
	Conditions    []Condition
	Substitutions []FeatureSubstitution
}

// Condition is a format-1 condition table: the design coordinate on
// AxisIndex must lie in [FilterRangeMinValue, FilterRangeMaxValue],
// given in F2Dot14 (fixed 2.14) units.
type Condition struct {
	AxisIndex           uint16
	FilterRangeMinValue int16
	FilterRangeMaxValue int16
}

// FeatureSubstitution replaces the feature at FeatureIndex (an index
// into the table's FeatureList) with an alternate set of lookups.
type FeatureSubstitution struct {
	FeatureIndex   uint16
	AlternateFeature Feature
}

func readFeatureVariations(p *parser.Parser, pos int64) (*FeatureVariations, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	var majorVersion, minorVersion uint16
	var err error
	if majorVersion, err = p.ReadUInt16(); err != nil {
		return nil, err
	}
	if minorVersion, err = p.ReadUInt16(); err != nil {
		return nil, err
	}
	if majorVersion != 1 || minorVersion != 0 {
		return nil, &otf.NotSupportedError{
			Table:   "FeatureVariations",
			Feature: fmt.Sprintf("table version %d.%d", majorVersion, minorVersion),
		}
	}
	count, err := p.ReadUInt32()
	if err != nil {
		return nil, err
	}

	type rec struct {
		conditionSetOffset              uint32
		featureTableSubstitutionOffset uint32
	}
	recs := make([]rec, count)
	for i := range recs {
		if recs[i].conditionSetOffset, err = p.ReadUInt32(); err != nil {
			return nil, err
		}
		if recs[i].featureTableSubstitutionOffset, err = p.ReadUInt32(); err != nil {
			return nil, err
		}
	}

	fv := &FeatureVariations{Records: make([]FeatureVariationRecord, count)}
	for i, r := range recs {
		var conds []Condition
		if r.conditionSetOffset != 0 {
			conds, err = readConditionSet(p, pos+int64(r.conditionSetOffset))
			if err != nil {
				return nil, err
			}
		}
		var subs []FeatureSubstitution
		if r.featureTableSubstitutionOffset != 0 {
			subs, err = readFeatureTableSubstitution(p, pos+int64(r.featureTableSubstitutionOffset))
			if err != nil {
				return nil, err
			}
		}
		fv.Records[i] = FeatureVariationRecord{Conditions: conds, Substitutions: subs}
	}
	return fv, nil
}

func readConditionSet(p *parser.Parser, pos int64) ([]Condition, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	offsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}
	conds := make([]Condition, 0, len(offsets))
	for _, off := range offsets {
		if off == 0 {
			continue
		}
		if err := p.SeekPos(pos + int64(off)); err != nil {
			return nil, err
		}
		format, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		if format != 1 {
			continue // unknown condition format: treat as always-true
		}
		axisIndex, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		minVal, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		maxVal, err := p.ReadInt16()
		if err != nil {
			return nil, err
		}
		conds = append(conds, Condition{
			AxisIndex:           axisIndex,
			FilterRangeMinValue: minVal,
			FilterRangeMaxValue: maxVal,
		})
	}
	return conds, nil
}

func readFeatureTableSubstitution(p *parser.Parser, pos int64) ([]FeatureSubstitution, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}
	major, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	minor, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	if major != 1 || minor != 0 {
		return nil, &otf.NotSupportedError{
			Table:   "FeatureTableSubstitution",
			Feature: fmt.Sprintf("table version %d.%d", major, minor),
		}
	}
	count, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	subs := make([]FeatureSubstitution, count)
	type rec struct {
		featureIndex  uint16
		featureOffset uint32
	}
	recs := make([]rec, count)
	for i := range recs {
		if recs[i].featureIndex, err = p.ReadUInt16(); err != nil {
			return nil, err
		}
		if recs[i].featureOffset, err = p.ReadUInt32(); err != nil {
			return nil, err
		}
	}
	for i, r := range recs {
		feat, err := readFeatureTable(p, pos+int64(r.featureOffset))
		if err != nil {
			return nil, err
		}
		subs[i] = FeatureSubstitution{FeatureIndex: r.featureIndex, AlternateFeature: feat}
	}
	return subs, nil
}

func (fv *FeatureVariations) encode() []byte {
	if fv == nil || len(fv.Records) == 0 {
		return nil
	}

	type encRecord struct {
		condSet []byte
		subst   []byte
	}
	encoded := make([]encRecord, len(fv.Records))
	for i, r := range fv.Records {
		encoded[i].condSet = encodeConditionSet(r.Conditions)
		encoded[i].subst = encodeFeatureTableSubstitution(r.Substitutions)
	}

	headerLen := 8 + 8*len(fv.Records)
	total := headerLen
	condOffsets := make([]int, len(encoded))
	substOffsets := make([]int, len(encoded))
	for i, e := range encoded {
		if e.condSet != nil {
			condOffsets[i] = total
			total += len(e.condSet)
		}
		if e.subst != nil {
			substOffsets[i] = total
			total += len(e.subst)
		}
	}

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 1, // major version
		0, 0, // minor version
		byte(len(fv.Records)>>24), byte(len(fv.Records)>>16), byte(len(fv.Records)>>8), byte(len(fv.Records)),
	)
	for i := range fv.Records {
		c, s := uint32(condOffsets[i]), uint32(substOffsets[i])
		buf = append(buf,
			byte(c>>24), byte(c>>16), byte(c>>8), byte(c),
			byte(s>>24), byte(s>>16), byte(s>>8), byte(s),
		)
	}
	for _, e := range encoded {
		if e.condSet != nil {
			buf = append(buf, e.condSet...)
		}
	}
	for _, e := range encoded {
		if e.subst != nil {
			buf = append(buf, e.subst...)
		}
	}
	return buf
}

func encodeConditionSet(conds []Condition) []byte {
	if len(conds) == 0 {
		return nil
	}
	headerLen := 2 + 2*len(conds)
	total := headerLen
	offsets := make([]int, len(conds))
	for i := range conds {
		offsets[i] = total
		total += 8
	}
	buf := make([]byte, 0, total)
	buf = append(buf, byte(len(conds)>>8), byte(len(conds)))
	for _, off := range offsets {
		buf = append(buf, byte(off>>8), byte(off))
	}
	for _, c := range conds {
		buf = append(buf,
			0, 1, // format
			byte(c.AxisIndex>>8), byte(c.AxisIndex),
			byte(uint16(c.FilterRangeMinValue)>>8), byte(c.FilterRangeMinValue),
			byte(uint16(c.FilterRangeMaxValue)>>8), byte(c.FilterRangeMaxValue),
		)
	}
	return buf
}

func encodeFeatureTableSubstitution(subs []FeatureSubstitution) []byte {
	if len(subs) == 0 {
		return nil
	}
	headerLen := 4 + 6*len(subs)
	encFeats := make([][]byte, len(subs))
	total := headerLen
	offsets := make([]int, len(subs))
	for i, s := range subs {
		encFeats[i] = encodeFeatureTable(s.AlternateFeature)
		offsets[i] = total
		total += len(encFeats[i])
	}
	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 1, // major version
		0, 0, // minor version
		byte(len(subs)>>8), byte(len(subs)),
	)
	for i, s := range subs {
		off := uint32(offsets[i])
		buf = append(buf,
			byte(s.FeatureIndex>>8), byte(s.FeatureIndex),
			byte(off>>24), byte(off>>16), byte(off>>8), byte(off),
		)
	}
	for _, f := range encFeats {
		buf = append(buf, f...)
	}
	return buf
}
