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
	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/classdef"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/parser"
)

// SeqLookup describes one action of a contextual or chained-contextual
// lookup: apply the lookup at LookupListIndex to the glyph at
// SequenceIndex within the match.
type SeqLookup struct {
	SequenceIndex   uint16
	LookupListIndex LookupIndex
}

// Nested describes the actions of a contextual or chained-contextual rule.
type Nested []SeqLookup

func readNested(p *parser.Parser) (Nested, error) {
	seqLookupCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	actions := make(Nested, seqLookupCount)
	for k := range actions {
		buf, err := p.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		actions[k].SequenceIndex = uint16(buf[0])<<8 | uint16(buf[1])
		actions[k].LookupListIndex = LookupIndex(buf[2])<<8 | LookupIndex(buf[3])
	}
	return actions, nil
}

// SeqContext1 is a Sequence Context Subtable, format 1 (GSUB lookup type
// 5, GPOS lookup type 7): rules keyed by a literal glyph sequence.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-1-simple-glyph-contexts
type SeqContext1 struct {
	Cov   coverage.Table
	Rules [][]*SeqRule
}

// SeqRule describes a sequence of glyphs and the actions to perform when
// it matches.
type SeqRule struct {
	Input   []glyph.ID // excludes the first input glyph, which is in Cov
	Actions Nested
}

func readSeqContext1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	seqRuleSetOffsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) > len(seqRuleSetOffsets) {
		cov.Prune(len(seqRuleSetOffsets))
	} else {
		seqRuleSetOffsets = seqRuleSetOffsets[:len(cov)]
	}

	res := &SeqContext1{
		Cov:   cov,
		Rules: make([][]*SeqRule, len(seqRuleSetOffsets)),
	}

	for i, seqRuleSetOffset := range seqRuleSetOffsets {
		base := subtablePos + int64(seqRuleSetOffset)
		if err := p.SeekPos(base); err != nil {
			return nil, err
		}

		seqRuleOffsets, err := p.ReadUInt16Slice()
		if err != nil {
			return nil, err
		}
		res.Rules[i] = make([]*SeqRule, len(seqRuleOffsets))
		for j, seqRuleOffset := range seqRuleOffsets {
			if err := p.SeekPos(base + int64(seqRuleOffset)); err != nil {
				return nil, err
			}

			glyphCount, err := p.ReadUInt16()
			if err != nil {
				return nil, err
			}
			if glyphCount == 0 {
				return nil, &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "invalid glyph count in SeqContext1"}
			}
			inputSequence := make([]glyph.ID, glyphCount-1)
			for k := range inputSequence {
				xk, err := p.ReadUInt16()
				if err != nil {
					return nil, err
				}
				inputSequence[k] = glyph.ID(xk)
			}
			actions, err := readNested(p)
			if err != nil {
				return nil, err
			}
			res.Rules[i][j] = &SeqRule{Input: inputSequence, Actions: actions}
		}
	}

	return res, nil
}

// EncodeLen implements the Subtable interface.
func (l *SeqContext1) EncodeLen() int {
	total := 6 + 2*len(l.Rules)
	for _, rule := range l.Rules {
		total += 2 + 2*len(rule)
		for _, r := range rule {
			total += 4 + 2*len(r.Input) + 4*len(r.Actions)
		}
	}
	total += l.Cov.EncodeLen()
	return total
}

// Encode implements the Subtable interface.
func (l *SeqContext1) Encode() []byte {
	seqRuleSetCount := len(l.Rules)

	total := 6 + 2*seqRuleSetCount
	seqRuleSetOffsets := make([]uint16, seqRuleSetCount)
	for i, rule := range l.Rules {
		seqRuleSetOffsets[i] = uint16(total)
		total += 2 + 2*len(rule)
		for _, r := range rule {
			total += 4 + 2*len(r.Input) + 4*len(r.Actions)
		}
	}
	coverageOffset := total
	total += l.Cov.EncodeLen()

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 1, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(seqRuleSetCount>>8), byte(seqRuleSetCount),
	)
	for _, offset := range seqRuleSetOffsets {
		buf = append(buf, byte(offset>>8), byte(offset))
	}
	for _, rule := range l.Rules {
		seqRuleCount := len(rule)
		buf = append(buf, byte(seqRuleCount>>8), byte(seqRuleCount))
		pos := 2 + 2*seqRuleCount
		for _, r := range rule {
			buf = append(buf, byte(pos>>8), byte(pos))
			pos += 4 + 2*len(r.Input) + 4*len(r.Actions)
		}
		for _, r := range rule {
			glyphCount := len(r.Input) + 1
			buf = append(buf,
				byte(glyphCount>>8), byte(glyphCount),
				byte(len(r.Actions)>>8), byte(len(r.Actions)),
			)
			for _, gid := range r.Input {
				buf = append(buf, byte(gid>>8), byte(gid))
			}
			for _, action := range r.Actions {
				buf = append(buf,
					byte(action.SequenceIndex>>8), byte(action.SequenceIndex),
					byte(action.LookupListIndex>>8), byte(action.LookupListIndex),
				)
			}
		}
	}
	buf = append(buf, l.Cov.Encode()...)
	return buf
}

// SeqContext2 is a Sequence Context Subtable, format 2 (GSUB lookup type
// 5, GPOS lookup type 7): rules keyed by a sequence of glyph classes.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-2-class-based-glyph-contexts
type SeqContext2 struct {
	Cov     coverage.Table
	Classes classdef.Info
	Rules   [][]*ClassSequenceRule
}

// ClassSequenceRule describes a sequence of glyph classes and the
// actions to perform when it matches.
type ClassSequenceRule struct {
	Input   []uint16 // excludes the first input glyph, which is in Cov
	Actions Nested
}

func readSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	coverageOffset := uint16(buf[0])<<8 | uint16(buf[1])
	classDefOffset := uint16(buf[2])<<8 | uint16(buf[3])
	seqRuleSetOffsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) > len(seqRuleSetOffsets) {
		cov.Prune(len(seqRuleSetOffsets))
	} else {
		seqRuleSetOffsets = seqRuleSetOffsets[:len(cov)]
	}

	if err := p.SeekPos(subtablePos + int64(classDefOffset)); err != nil {
		return nil, err
	}
	classDef, err := classdef.Read(p, nil)
	if err != nil {
		return nil, err
	}

	res := &SeqContext2{
		Cov:     cov,
		Classes: classDef,
		Rules:   make([][]*ClassSequenceRule, len(seqRuleSetOffsets)),
	}

	for i, seqRuleSetOffset := range seqRuleSetOffsets {
		base := subtablePos + int64(seqRuleSetOffset)
		if err := p.SeekPos(base); err != nil {
			return nil, err
		}
		seqRuleOffsets, err := p.ReadUInt16Slice()
		if err != nil {
			return nil, err
		}
		res.Rules[i] = make([]*ClassSequenceRule, len(seqRuleOffsets))
		for j, seqRuleOffset := range seqRuleOffsets {
			if err := p.SeekPos(base + int64(seqRuleOffset)); err != nil {
				return nil, err
			}
			glyphCount, err := p.ReadUInt16()
			if err != nil {
				return nil, err
			}
			if glyphCount == 0 {
				return nil, &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "invalid glyph count in SeqContext2"}
			}
			inputSequence := make([]uint16, glyphCount-1)
			for k := range inputSequence {
				xk, err := p.ReadUInt16()
				if err != nil {
					return nil, err
				}
				inputSequence[k] = xk
			}
			actions, err := readNested(p)
			if err != nil {
				return nil, err
			}
			res.Rules[i][j] = &ClassSequenceRule{Input: inputSequence, Actions: actions}
		}
	}

	return res, nil
}

// EncodeLen implements the Subtable interface.
func (l *SeqContext2) EncodeLen() int {
	total := 8 + 2*len(l.Rules)
	total += l.Cov.EncodeLen()
	total += l.Classes.EncodeLen()
	for _, rule := range l.Rules {
		total += 2 + 2*len(rule)
		for _, r := range rule {
			total += 4 + 2*len(r.Input) + 4*len(r.Actions)
		}
	}
	return total
}

// Encode implements the Subtable interface.
func (l *SeqContext2) Encode() []byte {
	seqRuleSetCount := len(l.Rules)

	total := 8 + 2*seqRuleSetCount
	seqRuleSetOffsets := make([]uint16, seqRuleSetCount)
	for i, rule := range l.Rules {
		seqRuleSetOffsets[i] = uint16(total)
		total += 2 + 2*len(rule)
		for _, r := range rule {
			total += 4 + 2*len(r.Input) + 4*len(r.Actions)
		}
	}
	coverageOffset := total
	total += l.Cov.EncodeLen()
	classDefOffset := total
	total += l.Classes.EncodeLen()

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 2, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(classDefOffset>>8), byte(classDefOffset),
		byte(seqRuleSetCount>>8), byte(seqRuleSetCount),
	)
	for _, offset := range seqRuleSetOffsets {
		buf = append(buf, byte(offset>>8), byte(offset))
	}
	for _, rule := range l.Rules {
		seqRuleCount := len(rule)
		buf = append(buf, byte(seqRuleCount>>8), byte(seqRuleCount))
		pos := 2 + 2*seqRuleCount
		for _, r := range rule {
			buf = append(buf, byte(pos>>8), byte(pos))
			pos += 4 + 2*len(r.Input) + 4*len(r.Actions)
		}
		for _, r := range rule {
			glyphCount := len(r.Input) + 1
			buf = append(buf,
				byte(glyphCount>>8), byte(glyphCount),
				byte(len(r.Actions)>>8), byte(len(r.Actions)),
			)
			for _, cls := range r.Input {
				buf = append(buf, byte(cls>>8), byte(cls))
			}
			for _, action := range r.Actions {
				buf = append(buf,
					byte(action.SequenceIndex>>8), byte(action.SequenceIndex),
					byte(action.LookupListIndex>>8), byte(action.LookupListIndex),
				)
			}
		}
	}
	buf = append(buf, l.Cov.Encode()...)
	buf = append(buf, l.Classes.Encode()...)
	return buf
}

// SeqContext3 is a Sequence Context Subtable, format 3 (GSUB lookup type
// 5, GPOS lookup type 7): a single rule given as a list of coverage
// tables, one per input position.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#sequence-context-format-3-coverage-based-glyph-contexts
type SeqContext3 struct {
	Covv    []coverage.Table
	Actions Nested
}

func readSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	glyphCount := int(buf[0])<<8 | int(buf[1])
	if glyphCount < 1 {
		return nil, &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "invalid glyph count in SeqContext3"}
	}
	seqLookupCount := int(buf[2])<<8 | int(buf[3])
	coverageOffsets := make([]uint16, glyphCount)
	for i := range coverageOffsets {
		coverageOffsets[i], err = p.ReadUInt16()
		if err != nil {
			return nil, err
		}
	}

	actions := make(Nested, seqLookupCount)
	for k := range actions {
		buf, err := p.ReadBytes(4)
		if err != nil {
			return nil, err
		}
		actions[k].SequenceIndex = uint16(buf[0])<<8 | uint16(buf[1])
		actions[k].LookupListIndex = LookupIndex(buf[2])<<8 | LookupIndex(buf[3])
	}

	cov := make([]coverage.Table, glyphCount)
	for i, offset := range coverageOffsets {
		cov[i], err = coverage.Read(p, subtablePos+int64(offset))
		if err != nil {
			return nil, err
		}
	}

	return &SeqContext3{Covv: cov, Actions: actions}, nil
}

// EncodeLen implements the Subtable interface.
func (l *SeqContext3) EncodeLen() int {
	total := 6 + 2*len(l.Covv) + 4*len(l.Actions)
	for _, cov := range l.Covv {
		total += cov.EncodeLen()
	}
	return total
}

// Encode implements the Subtable interface.
func (l *SeqContext3) Encode() []byte {
	glyphCount := len(l.Covv)
	seqLookupCount := len(l.Actions)

	total := 6 + 2*glyphCount + 4*seqLookupCount
	coverageOffsets := make([]uint16, glyphCount)
	for i, cov := range l.Covv {
		coverageOffsets[i] = uint16(total)
		total += cov.EncodeLen()
	}

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 3, // format
		byte(glyphCount>>8), byte(glyphCount),
		byte(seqLookupCount>>8), byte(seqLookupCount),
	)
	for _, offset := range coverageOffsets {
		buf = append(buf, byte(offset>>8), byte(offset))
	}
	for _, action := range l.Actions {
		buf = append(buf,
			byte(action.SequenceIndex>>8), byte(action.SequenceIndex),
			byte(action.LookupListIndex>>8), byte(action.LookupListIndex),
		)
	}
	for _, cov := range l.Covv {
		buf = append(buf, cov.Encode()...)
	}
	return buf
}

// ChainedSeqRule describes a chained contextual rule: a backtrack
// sequence, an input sequence, a lookahead sequence, and the actions to
// perform when all three match.
type ChainedSeqRule struct {
	Backtrack []glyph.ID
	Input     []glyph.ID // excludes the first input glyph, which is in Cov
	Lookahead []glyph.ID
	Actions   Nested
}

// ChainedSeqContext1 is a Chained Sequence Context Subtable, format 1
// (GSUB lookup type 6, GPOS lookup type 8): rules keyed by a literal
// glyph sequence.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-1-simple-glyph-contexts
type ChainedSeqContext1 struct {
	Cov   coverage.Table
	Rules [][]*ChainedSeqRule
}

func readChainedSeqContext1(p *parser.Parser, subtablePos int64) (Subtable, error) {
	coverageOffset, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	chainedSeqRuleSetOffsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) > len(chainedSeqRuleSetOffsets) {
		cov.Prune(len(chainedSeqRuleSetOffsets))
	} else {
		chainedSeqRuleSetOffsets = chainedSeqRuleSetOffsets[:len(cov)]
	}

	rules := make([][]*ChainedSeqRule, len(chainedSeqRuleSetOffsets))
	for i, chainedSeqRuleSetOffset := range chainedSeqRuleSetOffsets {
		base := subtablePos + int64(chainedSeqRuleSetOffset)
		if err := p.SeekPos(base); err != nil {
			return nil, err
		}

		chainedSeqRuleOffsets, err := p.ReadUInt16Slice()
		if err != nil {
			return nil, err
		}

		rules[i] = make([]*ChainedSeqRule, len(chainedSeqRuleOffsets))
		for j, chainedSeqRuleOffset := range chainedSeqRuleOffsets {
			if err := p.SeekPos(base + int64(chainedSeqRuleOffset)); err != nil {
				return nil, err
			}

			backtrackSequence, err := p.ReadGIDSlice()
			if err != nil {
				return nil, err
			}
			inputGlyphCount, err := p.ReadUInt16()
			if err != nil {
				return nil, err
			}
			inputSequence := make([]glyph.ID, inputGlyphCount-1)
			for k := range inputSequence {
				val, err := p.ReadUInt16()
				if err != nil {
					return nil, err
				}
				inputSequence[k] = glyph.ID(val)
			}
			lookaheadSequence, err := p.ReadGIDSlice()
			if err != nil {
				return nil, err
			}
			actions, err := readNested(p)
			if err != nil {
				return nil, err
			}
			rules[i][j] = &ChainedSeqRule{
				Backtrack: backtrackSequence,
				Input:     inputSequence,
				Lookahead: lookaheadSequence,
				Actions:   actions,
			}
		}
	}

	return &ChainedSeqContext1{Cov: cov, Rules: rules}, nil
}

// EncodeLen implements the Subtable interface.
func (l *ChainedSeqContext1) EncodeLen() int {
	total := 6 + 2*len(l.Rules)
	total += l.Cov.EncodeLen()
	for _, rules := range l.Rules {
		total += 2 + 2*len(rules)
		for _, rule := range rules {
			total += 2 + 2*len(rule.Backtrack)
			total += 2 + 2*len(rule.Input)
			total += 2 + 2*len(rule.Lookahead)
			total += 2 + 4*len(rule.Actions)
		}
	}
	return total
}

// Encode implements the Subtable interface.
func (l *ChainedSeqContext1) Encode() []byte {
	chainedSeqRuleSetCount := len(l.Rules)
	total := 6 + 2*chainedSeqRuleSetCount
	coverageOffset := total
	total += l.Cov.EncodeLen()
	chainedSeqRuleSetOffsets := make([]uint16, chainedSeqRuleSetCount)
	for i, rules := range l.Rules {
		chainedSeqRuleSetOffsets[i] = uint16(total)
		total += 2 + 2*len(rules)
		for _, rule := range rules {
			total += 2 + 2*len(rule.Backtrack)
			total += 2 + 2*len(rule.Input)
			total += 2 + 2*len(rule.Lookahead)
			total += 2 + 4*len(rule.Actions)
		}
	}

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 1, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(chainedSeqRuleSetCount>>8), byte(chainedSeqRuleSetCount),
	)
	for _, offset := range chainedSeqRuleSetOffsets {
		buf = append(buf, byte(offset>>8), byte(offset))
	}
	buf = append(buf, l.Cov.Encode()...)

	for _, rules := range l.Rules {
		chainedSeqRuleCount := len(rules)
		buf = append(buf, byte(chainedSeqRuleCount>>8), byte(chainedSeqRuleCount))

		pos := 2 + 2*chainedSeqRuleCount
		for _, rule := range rules {
			buf = append(buf, byte(pos>>8), byte(pos))
			pos += 2 + 2*len(rule.Backtrack)
			pos += 2 + 2*len(rule.Input)
			pos += 2 + 2*len(rule.Lookahead)
			pos += 2 + 4*len(rule.Actions)
		}
		for _, rule := range rules {
			buf = append(buf, byte(len(rule.Backtrack)>>8), byte(len(rule.Backtrack)))
			for _, gid := range rule.Backtrack {
				buf = append(buf, byte(gid>>8), byte(gid))
			}
			inputGlyphCount := len(rule.Input) + 1
			buf = append(buf, byte(inputGlyphCount>>8), byte(inputGlyphCount))
			for _, gid := range rule.Input {
				buf = append(buf, byte(gid>>8), byte(gid))
			}
			buf = append(buf, byte(len(rule.Lookahead)>>8), byte(len(rule.Lookahead)))
			for _, gid := range rule.Lookahead {
				buf = append(buf, byte(gid>>8), byte(gid))
			}
			buf = append(buf, byte(len(rule.Actions)>>8), byte(len(rule.Actions)))
			for _, a := range rule.Actions {
				buf = append(buf,
					byte(a.SequenceIndex>>8), byte(a.SequenceIndex),
					byte(a.LookupListIndex>>8), byte(a.LookupListIndex),
				)
			}
		}
	}
	return buf
}

// ChainedClassSequenceRule describes a chained contextual rule keyed by
// glyph classes rather than literal glyph ids.
type ChainedClassSequenceRule struct {
	Backtrack []uint16
	Input     []uint16 // excludes the first input glyph, which is in Cov
	Lookahead []uint16
	Actions   Nested
}

// ChainedSeqContext2 is a Chained Sequence Context Subtable, format 2
// (GSUB lookup type 6, GPOS lookup type 8): rules keyed by a sequence of
// glyph classes, one class definition each for the backtrack, input and
// lookahead positions.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-2-class-based-glyph-contexts
type ChainedSeqContext2 struct {
	Cov                                               coverage.Table
	BacktrackClasses, InputClasses, LookaheadClasses classdef.Info
	Rules                                             [][]*ChainedClassSequenceRule
}

func readChainedSeqContext2(p *parser.Parser, subtablePos int64) (Subtable, error) {
	buf, err := p.ReadBytes(8)
	if err != nil {
		return nil, err
	}
	coverageOffset := uint16(buf[0])<<8 | uint16(buf[1])
	backtrackClassDefOffset := uint16(buf[2])<<8 | uint16(buf[3])
	inputClassDefOffset := uint16(buf[4])<<8 | uint16(buf[5])
	lookaheadClassDefOffset := uint16(buf[6])<<8 | uint16(buf[7])
	chainedClassSeqRuleSetOffsets, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	cov, err := coverage.Read(p, subtablePos+int64(coverageOffset))
	if err != nil {
		return nil, err
	}
	if len(cov) > len(chainedClassSeqRuleSetOffsets) {
		cov.Prune(len(chainedClassSeqRuleSetOffsets))
	} else {
		chainedClassSeqRuleSetOffsets = chainedClassSeqRuleSetOffsets[:len(cov)]
	}

	readClassDef := func(offset uint16) (classdef.Info, error) {
		if offset == 0 {
			return classdef.Info{}, nil
		}
		if err := p.SeekPos(subtablePos + int64(offset)); err != nil {
			return nil, err
		}
		return classdef.Read(p, nil)
	}
	backtrackClasses, err := readClassDef(backtrackClassDefOffset)
	if err != nil {
		return nil, err
	}
	inputClasses, err := readClassDef(inputClassDefOffset)
	if err != nil {
		return nil, err
	}
	lookaheadClasses, err := readClassDef(lookaheadClassDefOffset)
	if err != nil {
		return nil, err
	}

	rules := make([][]*ChainedClassSequenceRule, len(chainedClassSeqRuleSetOffsets))
	for i, setOffset := range chainedClassSeqRuleSetOffsets {
		if setOffset == 0 {
			continue
		}
		base := subtablePos + int64(setOffset)
		if err := p.SeekPos(base); err != nil {
			return nil, err
		}
		ruleOffsets, err := p.ReadUInt16Slice()
		if err != nil {
			return nil, err
		}
		rules[i] = make([]*ChainedClassSequenceRule, len(ruleOffsets))
		for j, ruleOffset := range ruleOffsets {
			if err := p.SeekPos(base + int64(ruleOffset)); err != nil {
				return nil, err
			}

			backtrackSeq, err := p.ReadUInt16Slice()
			if err != nil {
				return nil, err
			}
			inputGlyphCount, err := p.ReadUInt16()
			if err != nil {
				return nil, err
			}
			inputSeq := make([]uint16, inputGlyphCount-1)
			for k := range inputSeq {
				inputSeq[k], err = p.ReadUInt16()
				if err != nil {
					return nil, err
				}
			}
			lookaheadSeq, err := p.ReadUInt16Slice()
			if err != nil {
				return nil, err
			}
			actions, err := readNested(p)
			if err != nil {
				return nil, err
			}
			rules[i][j] = &ChainedClassSequenceRule{
				Backtrack: backtrackSeq,
				Input:     inputSeq,
				Lookahead: lookaheadSeq,
				Actions:   actions,
			}
		}
	}

	return &ChainedSeqContext2{
		Cov:               cov,
		BacktrackClasses:  backtrackClasses,
		InputClasses:      inputClasses,
		LookaheadClasses:  lookaheadClasses,
		Rules:             rules,
	}, nil
}

// EncodeLen implements the Subtable interface.
func (l *ChainedSeqContext2) EncodeLen() int {
	total := 10 + 2*len(l.Rules)
	total += l.Cov.EncodeLen()
	total += l.BacktrackClasses.EncodeLen()
	total += l.InputClasses.EncodeLen()
	total += l.LookaheadClasses.EncodeLen()
	for _, rules := range l.Rules {
		if len(rules) == 0 {
			continue
		}
		total += 2 + 2*len(rules)
		for _, rule := range rules {
			total += 2 + 2*len(rule.Backtrack)
			total += 2 + 2*len(rule.Input)
			total += 2 + 2*len(rule.Lookahead)
			total += 2 + 4*len(rule.Actions)
		}
	}
	return total
}

// Encode implements the Subtable interface.
func (l *ChainedSeqContext2) Encode() []byte {
	chainedClassSeqRuleSetCount := len(l.Rules)
	total := 10 + 2*chainedClassSeqRuleSetCount
	coverageOffset := total
	total += l.Cov.EncodeLen()
	backtrackClassDefOffset := total
	total += l.BacktrackClasses.EncodeLen()
	inputClassDefOffset := total
	total += l.InputClasses.EncodeLen()
	lookaheadClassDefOffset := total
	total += l.LookaheadClasses.EncodeLen()

	ruleSetOffsets := make([]uint16, chainedClassSeqRuleSetCount)
	for i, rules := range l.Rules {
		if len(rules) == 0 {
			continue
		}
		ruleSetOffsets[i] = uint16(total)
		total += 2 + 2*len(rules)
		for _, rule := range rules {
			total += 2 + 2*len(rule.Backtrack)
			total += 2 + 2*len(rule.Input)
			total += 2 + 2*len(rule.Lookahead)
			total += 2 + 4*len(rule.Actions)
		}
	}

	buf := make([]byte, 0, total)
	buf = append(buf,
		0, 2, // format
		byte(coverageOffset>>8), byte(coverageOffset),
		byte(backtrackClassDefOffset>>8), byte(backtrackClassDefOffset),
		byte(inputClassDefOffset>>8), byte(inputClassDefOffset),
		byte(lookaheadClassDefOffset>>8), byte(lookaheadClassDefOffset),
		byte(chainedClassSeqRuleSetCount>>8), byte(chainedClassSeqRuleSetCount),
	)
	for _, offset := range ruleSetOffsets {
		buf = append(buf, byte(offset>>8), byte(offset))
	}
	buf = append(buf, l.Cov.Encode()...)
	buf = append(buf, l.BacktrackClasses.Encode()...)
	buf = append(buf, l.InputClasses.Encode()...)
	buf = append(buf, l.LookaheadClasses.Encode()...)

	for _, rules := range l.Rules {
		if len(rules) == 0 {
			continue
		}
		buf = append(buf, byte(len(rules)>>8), byte(len(rules)))
		pos := 2 + 2*len(rules)
		for _, rule := range rules {
			buf = append(buf, byte(pos>>8), byte(pos))
			pos += 2 + 2*len(rule.Backtrack)
			pos += 2 + 2*len(rule.Input)
			pos += 2 + 2*len(rule.Lookahead)
			pos += 2 + 4*len(rule.Actions)
		}
		for _, rule := range rules {
			buf = append(buf, byte(len(rule.Backtrack)>>8), byte(len(rule.Backtrack)))
			for _, cls := range rule.Backtrack {
				buf = append(buf, byte(cls>>8), byte(cls))
			}
			inputGlyphCount := len(rule.Input) + 1
			buf = append(buf, byte(inputGlyphCount>>8), byte(inputGlyphCount))
			for _, cls := range rule.Input {
				buf = append(buf, byte(cls>>8), byte(cls))
			}
			buf = append(buf, byte(len(rule.Lookahead)>>8), byte(len(rule.Lookahead)))
			for _, cls := range rule.Lookahead {
				buf = append(buf, byte(cls>>8), byte(cls))
			}
			buf = append(buf, byte(len(rule.Actions)>>8), byte(len(rule.Actions)))
			for _, a := range rule.Actions {
				buf = append(buf,
					byte(a.SequenceIndex>>8), byte(a.SequenceIndex),
					byte(a.LookupListIndex>>8), byte(a.LookupListIndex),
				)
			}
		}
	}
	return buf
}

// ChainedSeqContext3 is a Chained Sequence Context Subtable, format 3
// (GSUB lookup type 6, GPOS lookup type 8): a single rule given as
// separate coverage-table lists for the backtrack, input and lookahead
// sequences.
// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#chained-sequence-context-format-3-coverage-based-glyph-contexts
type ChainedSeqContext3 struct {
	Backtrack []coverage.Table
	Input     []coverage.Table
	Lookahead []coverage.Table
	Actions   Nested
}

func readChainedSeqContext3(p *parser.Parser, subtablePos int64) (Subtable, error) {
	readCovList := func() ([]coverage.Table, error) {
		glyphCount, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		offsets := make([]uint16, glyphCount)
		for i := range offsets {
			offsets[i], err = p.ReadUInt16()
			if err != nil {
				return nil, err
			}
		}
		tabs := make([]coverage.Table, glyphCount)
		for i, offset := range offsets {
			tabs[i], err = coverage.Read(p, subtablePos+int64(offset))
			if err != nil {
				return nil, err
			}
		}
		return tabs, nil
	}

	// The backtrack sequence is stored in reverse (outermost glyph
	// first); readCovList returns it in that stored order, since Apply
	// logic (out of scope here) is the only consumer that cares about
	// direction.
	backtrack, err := readCovList()
	if err != nil {
		return nil, err
	}
	input, err := readCovList()
	if err != nil {
		return nil, err
	}
	lookahead, err := readCovList()
	if err != nil {
		return nil, err
	}
	actions, err := readNested(p)
	if err != nil {
		return nil, err
	}

	return &ChainedSeqContext3{
		Backtrack: backtrack,
		Input:     input,
		Lookahead: lookahead,
		Actions:   actions,
	}, nil
}

// EncodeLen implements the Subtable interface.
func (l *ChainedSeqContext3) EncodeLen() int {
	total := 2 + 2 + 2*len(l.Backtrack) + 2 + 2*len(l.Input) + 2 + 2*len(l.Lookahead) + 2 + 4*len(l.Actions)
	for _, cov := range l.Backtrack {
		total += cov.EncodeLen()
	}
	for _, cov := range l.Input {
		total += cov.EncodeLen()
	}
	for _, cov := range l.Lookahead {
		total += cov.EncodeLen()
	}
	return total
}

// Encode implements the Subtable interface.
func (l *ChainedSeqContext3) Encode() []byte {
	headerLen := 2 + 2 + 2*len(l.Backtrack) + 2 + 2*len(l.Input) + 2 + 2*len(l.Lookahead) + 2 + 4*len(l.Actions)

	pos := headerLen
	backtrackOffsets := make([]int, len(l.Backtrack))
	for i, cov := range l.Backtrack {
		backtrackOffsets[i] = pos
		pos += cov.EncodeLen()
	}
	inputOffsets := make([]int, len(l.Input))
	for i, cov := range l.Input {
		inputOffsets[i] = pos
		pos += cov.EncodeLen()
	}
	lookaheadOffsets := make([]int, len(l.Lookahead))
	for i, cov := range l.Lookahead {
		lookaheadOffsets[i] = pos
		pos += cov.EncodeLen()
	}
	total := pos

	buf := make([]byte, 0, total)
	buf = append(buf, 0, 3) // format

	buf = append(buf, byte(len(l.Backtrack)>>8), byte(len(l.Backtrack)))
	for _, off := range backtrackOffsets {
		buf = append(buf, byte(off>>8), byte(off))
	}
	buf = append(buf, byte(len(l.Input)>>8), byte(len(l.Input)))
	for _, off := range inputOffsets {
		buf = append(buf, byte(off>>8), byte(off))
	}
	buf = append(buf, byte(len(l.Lookahead)>>8), byte(len(l.Lookahead)))
	for _, off := range lookaheadOffsets {
		buf = append(buf, byte(off>>8), byte(off))
	}
	buf = append(buf, byte(len(l.Actions)>>8), byte(len(l.Actions)))
	for _, a := range l.Actions {
		buf = append(buf,
			byte(a.SequenceIndex>>8), byte(a.SequenceIndex),
			byte(a.LookupListIndex>>8), byte(a.LookupListIndex),
		)
	}

	for _, cov := range l.Backtrack {
		buf = append(buf, cov.Encode()...)
	}
	for _, cov := range l.Input {
		buf = append(buf, cov.Encode()...)
	}
	for _, cov := range l.Lookahead {
		buf = append(buf, cov.Encode()...)
	}
	return buf
}
