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
	"fmt"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/parser"
)

// readGsubSubtable reads a GSUB subtable.
// This function can be used as the subtableReader argument to doRead().
func readGsubSubtable(p *parser.Parser, pos int64, meta *LookupMetaInfo) (Subtable, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}

	format, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}

	switch 10*meta.LookupType + format {
	case 1_1:
		return readGsub1_1(p, pos)
	case 1_2:
		return readGsub1_2(p, pos)
	case 2_1:
		return readGsub2_1(p, pos)
	case 3_1:
		return readGsub3_1(p, pos)
	case 4_1:
		return readGsub4_1(p, pos)
	case 5_1:
		return readSeqContext1(p, pos)
	case 5_2:
		return readSeqContext2(p, pos)
	case 5_3:
		return readSeqContext3(p, pos)
	case 6_1:
		return readChainedSeqContext1(p, pos)
	case 6_2:
		return readChainedSeqContext2(p, pos)
	case 6_3:
		return readChainedSeqContext3(p, pos)
	case 7_1:
		return readExtensionSubtable(p, pos)
	case 8_1:
		return readGsub8_1(p, pos)
	default:
		return nil, &otf.NotSupportedError{
			Table:   "GSUB",
			Feature: fmt.Sprintf("lookup type %d, format %d", meta.LookupType, format),
		}
	}
}

// Gsub1_1 is a Single Substitution GSUB subtable (type 1, format 1).
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#11-single-substitution-format-1
type Gsub1_1 struct {
	Cov   coverage.Table
	Delta glyph.ID
}

func readGsub1_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	coverageOffset := int64(buf[0])<<8 | int64(buf[1])
	deltaGlyphID := glyph.ID(buf[2])<<8 | glyph.ID(buf[3])
	cov, err := coverage.Read(p, subtablePos+coverageOffset)
	if err != nil {
		return nil, err
	}
	return &Gsub1_1{Cov: cov, Delta: deltaGlyphID}, nil
}

// EncodeLen implements the Subtable interface.
func (l *Gsub1_1) EncodeLen() int {
	return 6 + l.Cov.EncodeLen()
}

// Encode implements the Subtable interface.
func (l *Gsub1_1) Encode() []byte {
	buf := make([]byte, 6+l.Cov.EncodeLen())
	buf[1] = 1
	buf[3] = 6
	buf[4] = byte(l.Delta >> 8)
	buf[5] = byte(l.Delta)
	copy(buf[6:], l.Cov.Encode())
	return buf
}

// Gsub1_2 is a Single Substitution GSUB subtable (type 1, format 2).
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#12-single-substitution-format-2
type Gsub1_2 struct {
	Cov                coverage.Table
	SubstituteGlyphIDs []glyph.ID
}

func readGsub1_2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	substituteGlyphIDs, err := p.ReadGIDSlice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) != len(substituteGlyphIDs) {
		return nil, &otf.InvalidFontError{Table: "GSUB", Reason: "malformed format 1.2 subtable"}
	}

	return &Gsub1_2{Cov: cov, SubstituteGlyphIDs: substituteGlyphIDs}, nil
}

// EncodeLen implements the Subtable interface.
func (l *Gsub1_2) EncodeLen() int {
	return 6 + 2*len(l.SubstituteGlyphIDs) + l.Cov.EncodeLen()
}

// Encode implements the Subtable interface.
func (l *Gsub1_2) Encode() []byte {
	n := len(l.SubstituteGlyphIDs)
	covOffs := 6 + 2*n

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	buf[1] = 2
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(n >> 8)
	buf[5] = byte(n)
	for i := 0; i < n; i++ {
		buf[6+2*i] = byte(l.SubstituteGlyphIDs[i] >> 8)
		buf[6+2*i+1] = byte(l.SubstituteGlyphIDs[i])
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}

// Gsub8_1 is a Reverse Chaining Contextual Single Substitution GSUB
// subtable (type 8, format 1): substitutes single glyphs, applied in
// reverse logical order, gated by literal backtrack/lookahead coverage
// sequences rather than a nested lookup list.
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#81-reverse-chaining-contextual-single-substitution-format-1
type Gsub8_1 struct {
	Cov         coverage.Table
	Backtrack   []coverage.Table // stored outermost glyph first, as on the wire
	Lookahead   []coverage.Table
	Substitutes []glyph.ID // Substitutes[Cov[gid]] is the replacement for gid
}

func readGsub8_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}

	readCovList := func() ([]coverage.Table, error) {
		offsets, err := p.ReadUInt16Slice()
		if err != nil {
			return nil, err
		}
		tabs := make([]coverage.Table, len(offsets))
		for i, off := range offsets {
			tabs[i], err = coverage.Read(p, subtablePos+int64(off))
			if err != nil {
				return nil, err
			}
		}
		return tabs, nil
	}

	backtrack, err := readCovList()
	if err != nil {
		return nil, err
	}
	lookahead, err := readCovList()
	if err != nil {
		return nil, err
	}
	substitutes, err := p.ReadGIDSlice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) != len(substitutes) {
		return nil, &otf.InvalidFontError{Table: "GSUB", Reason: "malformed format 8.1 subtable"}
	}

	return &Gsub8_1{Cov: cov, Backtrack: backtrack, Lookahead: lookahead, Substitutes: substitutes}, nil
}

// EncodeLen implements the Subtable interface.
func (l *Gsub8_1) EncodeLen() int {
	// format + coverageOffset + (backtrackGlyphCount + offsets) +
	// (lookaheadGlyphCount + offsets) + (glyphCount + substitutes)
	total := 2 + 2 + (2 + 2*len(l.Backtrack)) + (2 + 2*len(l.Lookahead)) + (2 + 2*len(l.Substitutes))
	for _, cov := range l.Backtrack {
		total += cov.EncodeLen()
	}
	for _, cov := range l.Lookahead {
		total += cov.EncodeLen()
	}
	total += l.Cov.EncodeLen()
	return total
}

// Encode implements the Subtable interface.
func (l *Gsub8_1) Encode() []byte {
	headerLen := 2 + 2 + (2 + 2*len(l.Backtrack)) + (2 + 2*len(l.Lookahead)) + (2 + 2*len(l.Substitutes))
	covOffset := headerLen
	pos := covOffset + l.Cov.EncodeLen()

	backtrackOffsets := make([]int, len(l.Backtrack))
	for i, cov := range l.Backtrack {
		backtrackOffsets[i] = pos
		pos += cov.EncodeLen()
	}
	lookaheadOffsets := make([]int, len(l.Lookahead))
	for i, cov := range l.Lookahead {
		lookaheadOffsets[i] = pos
		pos += cov.EncodeLen()
	}
	total := pos

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 1, // format
		byte(covOffset>>8), byte(covOffset),
	)
	buf = append(buf, byte(len(l.Backtrack)>>8), byte(len(l.Backtrack)))
	for _, off := range backtrackOffsets {
		buf = append(buf, byte(off>>8), byte(off))
	}
	buf = append(buf, byte(len(l.Lookahead)>>8), byte(len(l.Lookahead)))
	for _, off := range lookaheadOffsets {
		buf = append(buf, byte(off>>8), byte(off))
	}
	buf = append(buf, byte(len(l.Substitutes)>>8), byte(len(l.Substitutes)))
	for _, gid := range l.Substitutes {
		buf = append(buf, byte(gid>>8), byte(gid))
	}
	buf = append(buf, l.Cov.Encode()...)
	for _, cov := range l.Backtrack {
		buf = append(buf, cov.Encode()...)
	}
	for _, cov := range l.Lookahead {
		buf = append(buf, cov.Encode()...)
	}
	return buf
}

// Gsub2_1 is a Multiple Substitution GSUB subtable (type 2, format 1).
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#21-multiple-substitution-format-1
type Gsub2_1 struct {
	Cov  coverage.Table
	Repl [][]glyph.ID // individual sequences must have non-zero length
}

func readGsub2_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	sequenceOffsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	repl := make([][]glyph.ID, len(sequenceOffsets))
	for i, off := range sequenceOffsets {
		if err := p.SeekPos(subtablePos + int64(off)); err != nil {
			return nil, err
		}
		repl[i], err = p.ReadGIDSlice()
		if err != nil {
			return nil, err
		}
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) != len(sequenceOffsets) {
		return nil, &otf.InvalidFontError{Table: "GSUB", Reason: "malformed format 2.1 subtable"}
	}

	return &Gsub2_1{Cov: cov, Repl: repl}, nil
}

// EncodeLen implements the Subtable interface.
func (l *Gsub2_1) EncodeLen() int {
	total := 6 + 2*len(l.Repl)
	for _, repl := range l.Repl {
		total += 2 + 2*len(repl)
	}
	total += l.Cov.EncodeLen()
	return total
}

// Encode implements the Subtable interface.
func (l *Gsub2_1) Encode() []byte {
	sequenceCount := len(l.Repl)
	covOffs := 6 + 2*sequenceCount

	sequenceOffsets := make([]uint16, sequenceCount)
	for i, repl := range l.Repl {
		sequenceOffsets[i] = uint16(covOffs)
		covOffs += 2 + 2*len(repl)
	}

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	buf[1] = 1
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(sequenceCount >> 8)
	buf[5] = byte(sequenceCount)
	pos := 6
	for i := range l.Repl {
		buf[pos] = byte(sequenceOffsets[i] >> 8)
		buf[pos+1] = byte(sequenceOffsets[i])
		pos += 2
	}
	for _, repl := range l.Repl {
		buf[pos] = byte(len(repl) >> 8)
		buf[pos+1] = byte(len(repl))
		pos += 2
		for _, gid := range repl {
			buf[pos] = byte(gid >> 8)
			buf[pos+1] = byte(gid)
			pos += 2
		}
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}

// Gsub3_1 is an Alternate Substitution GSUB subtable (type 3, format 1).
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#31-alternate-substitution-format-1
type Gsub3_1 struct {
	Cov coverage.Table
	Alt [][]glyph.ID
}

func readGsub3_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	alternateSetOffsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	alt := make([][]glyph.ID, len(alternateSetOffsets))
	for i, off := range alternateSetOffsets {
		if err := p.SeekPos(subtablePos + int64(off)); err != nil {
			return nil, err
		}
		gids, err := p.ReadGIDSlice()
		if err != nil {
			return nil, err
		}
		alt[i] = gids
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) != len(alternateSetOffsets) {
		return nil, &otf.InvalidFontError{Table: "GSUB", Reason: "malformed format 3.1 subtable"}
	}

	return &Gsub3_1{Cov: cov, Alt: alt}, nil
}

// EncodeLen implements the Subtable interface.
func (l *Gsub3_1) EncodeLen() int {
	total := 6 + 2*len(l.Alt)
	for _, alt := range l.Alt {
		total += 2 + 2*len(alt)
	}
	total += l.Cov.EncodeLen()
	return total
}

// Encode implements the Subtable interface.
func (l *Gsub3_1) Encode() []byte {
	alternateSetCount := len(l.Alt)
	covOffs := 6 + 2*alternateSetCount

	alternateSetOffsets := make([]uint16, alternateSetCount)
	for i, alt := range l.Alt {
		alternateSetOffsets[i] = uint16(covOffs)
		covOffs += 2 + 2*len(alt)
	}

	buf := make([]byte, covOffs+l.Cov.EncodeLen())
	buf[1] = 1
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(alternateSetCount >> 8)
	buf[5] = byte(alternateSetCount)
	pos := 6
	for i := range l.Alt {
		buf[pos] = byte(alternateSetOffsets[i] >> 8)
		buf[pos+1] = byte(alternateSetOffsets[i])
		pos += 2
	}
	for _, alt := range l.Alt {
		buf[pos] = byte(len(alt) >> 8)
		buf[pos+1] = byte(len(alt))
		pos += 2
		for _, gid := range alt {
			buf[pos] = byte(gid >> 8)
			buf[pos+1] = byte(gid)
			pos += 2
		}
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}

// Gsub4_1 is a Ligature Substitution GSUB subtable (type 4, format 1).
// https://learn.microsoft.com/en-us/typography/opentype/spec/gsub#41-ligature-substitution-format-1
type Gsub4_1 struct {
	Cov  coverage.Table
	Repl [][]Ligature
}

// Ligature represents a substitution of a sequence of glyphs into a
// single glyph.
type Ligature struct {
	In  []glyph.ID // excludes the first input glyph, since this is in Cov
	Out glyph.ID
}

func readGsub4_1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	ligatureSetOffsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	repl := make([][]Ligature, len(ligatureSetOffsets))
	for i, ligatureSetOffset := range ligatureSetOffsets {
		ligatureSetPos := subtablePos + int64(ligatureSetOffset)
		if err := p.SeekPos(ligatureSetPos); err != nil {
			return nil, err
		}
		ligatureOffsets, err := p.ReadUInt16Slice()
		if err != nil {
			return nil, err
		}

		repl[i] = make([]Ligature, len(ligatureOffsets))
		for j, ligatureOffset := range ligatureOffsets {
			if err := p.SeekPos(ligatureSetPos + int64(ligatureOffset)); err != nil {
				return nil, err
			}
			ligatureGlyph, err := p.ReadUInt16()
			if err != nil {
				return nil, err
			}
			// componentCount includes the first glyph, which is in Cov.
			componentCount, err := p.ReadUInt16()
			if err != nil {
				return nil, err
			}
			if componentCount == 0 {
				return nil, &otf.InvalidFontError{Table: "GSUB", Reason: "malformed format 4.1 subtable"}
			}
			componentGlyphIDs := make([]glyph.ID, componentCount-1)
			for k := range componentGlyphIDs {
				gid, err := p.ReadUInt16()
				if err != nil {
					return nil, err
				}
				componentGlyphIDs[k] = glyph.ID(gid)
			}
			repl[i][j].In = componentGlyphIDs
			repl[i][j].Out = glyph.ID(ligatureGlyph)
		}
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}

	return &Gsub4_1{Cov: cov, Repl: repl}, nil
}

// EncodeLen implements the Subtable interface.
func (l *Gsub4_1) EncodeLen() int {
	total := 6 + 2*len(l.Repl)
	for _, set := range l.Repl {
		total += 2 + 2*len(set)
		for _, lig := range set {
			total += 4 + 2*len(lig.In)
		}
	}
	total += l.Cov.EncodeLen()
	return total
}

// Encode implements the Subtable interface.
func (l *Gsub4_1) Encode() []byte {
	ligatureSetCount := len(l.Repl)
	total := 6 + 2*ligatureSetCount
	ligSetOffsets := make([]int, ligatureSetCount)
	ligOffsets := make([][]int, ligatureSetCount)
	for i, set := range l.Repl {
		ligSetOffsets[i] = total
		setHeaderLen := 2 + 2*len(set)
		offs := make([]int, len(set))
		pos := setHeaderLen
		for j, lig := range set {
			offs[j] = pos
			pos += 4 + 2*len(lig.In)
		}
		ligOffsets[i] = offs
		total += pos
	}
	covOffs := total
	total += l.Cov.EncodeLen()

	buf := make([]byte, total)
	buf[1] = 1
	buf[2] = byte(covOffs >> 8)
	buf[3] = byte(covOffs)
	buf[4] = byte(ligatureSetCount >> 8)
	buf[5] = byte(ligatureSetCount)
	for i, off := range ligSetOffsets {
		buf[6+2*i] = byte(off >> 8)
		buf[6+2*i+1] = byte(off)
	}
	for i, set := range l.Repl {
		base := ligSetOffsets[i]
		buf[base] = byte(len(set) >> 8)
		buf[base+1] = byte(len(set))
		for j, off := range ligOffsets[i] {
			buf[base+2+2*j] = byte(off >> 8)
			buf[base+2+2*j+1] = byte(off)
		}
		for j, lig := range set {
			p := base + ligOffsets[i][j]
			buf[p] = byte(lig.Out >> 8)
			buf[p+1] = byte(lig.Out)
			compCount := len(lig.In) + 1
			buf[p+2] = byte(compCount >> 8)
			buf[p+3] = byte(compCount)
			for k, gid := range lig.In {
				buf[p+4+2*k] = byte(gid >> 8)
				buf[p+4+2*k+1] = byte(gid)
			}
		}
	}
	copy(buf[covOffs:], l.Cov.Encode())
	return buf
}
