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
	"bytes"
	"reflect"
	"testing"

	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/opentype/classdef"
	"seehuhn.de/go/otf/opentype/coverage"
	"seehuhn.de/go/otf/parser"
)

func FuzzSeqContext1(f *testing.F) {
	sub := &SeqContext1{}
	f.Add(sub.Encode())
	sub.Cov = coverage.Table{3: 0, 5: 1}
	sub.Rules = [][]*SeqRule{
		{},
		{},
	}
	f.Add(sub.Encode())
	sub.Rules = [][]*SeqRule{
		{
			{
				Input: []glyph.ID{4},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 1},
					{SequenceIndex: 1, LookupListIndex: 5},
					{SequenceIndex: 0, LookupListIndex: 4},
				},
			},
		},
		{
			{
				Input: []glyph.ID{6, 7},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 2},
				},
			},
			{
				Input: []glyph.ID{6},
				Actions: Nested{
					{SequenceIndex: 2, LookupListIndex: 1},
					{SequenceIndex: 1, LookupListIndex: 2},
					{SequenceIndex: 0, LookupListIndex: 3},
				},
			},
		},
	}
	f.Add(sub.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		roundTripNested(t, 1, readSeqContext1, data)
	})
}

func FuzzSeqContext2(f *testing.F) {
	sub := &SeqContext2{}
	f.Add(sub.Encode())
	sub.Cov = coverage.Table{3: 0, 5: 1}
	sub.Classes = classdef.Info{3: 1, 5: 2}
	sub.Rules = [][]*ClassSequenceRule{
		{},
		{},
	}
	f.Add(sub.Encode())
	sub.Rules = [][]*ClassSequenceRule{
		{
			{
				Input: []uint16{4},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 1},
					{SequenceIndex: 1, LookupListIndex: 5},
					{SequenceIndex: 0, LookupListIndex: 4},
				},
			},
		},
		{
			{
				Input: []uint16{6, 7},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 2},
				},
			},
			{
				Input: []uint16{6},
				Actions: Nested{
					{SequenceIndex: 2, LookupListIndex: 1},
					{SequenceIndex: 1, LookupListIndex: 2},
					{SequenceIndex: 0, LookupListIndex: 3},
				},
			},
		},
	}
	f.Add(sub.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		roundTripNested(t, 2, readSeqContext2, data)
	})
}

func FuzzSeqContext3(f *testing.F) {
	sub := &SeqContext3{}
	f.Add(sub.Encode())
	sub.Covv = append(sub.Covv, coverage.Table{3: 0, 4: 1})
	sub.Actions = Nested{
		{SequenceIndex: 0, LookupListIndex: 1},
		{SequenceIndex: 1, LookupListIndex: 5},
		{SequenceIndex: 0, LookupListIndex: 4},
	}
	f.Add(sub.Encode())
	sub.Covv = append(sub.Covv, coverage.Table{1: 0, 3: 1, 5: 2})
	f.Add(sub.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		roundTripNested(t, 3, readSeqContext3, data)
	})
}

func FuzzChainedSeqContext1(f *testing.F) {
	sub := &ChainedSeqContext1{}
	f.Add(sub.Encode())
	sub.Cov = coverage.Table{1: 0, 3: 1}
	sub.Rules = [][]*ChainedSeqRule{
		{
			{
				Backtrack: []glyph.ID{},
				Input:     []glyph.ID{1},
				Lookahead: []glyph.ID{2, 3},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 1},
					{SequenceIndex: 0, LookupListIndex: 2},
				},
			},
			{
				Backtrack: []glyph.ID{4, 5, 6},
				Input:     []glyph.ID{7, 8},
				Lookahead: []glyph.ID{9},
				Actions: Nested{
					{SequenceIndex: 1, LookupListIndex: 0},
				},
			},
			{
				Backtrack: []glyph.ID{10, 11},
				Input:     []glyph.ID{12},
				Lookahead: []glyph.ID{},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 1000},
				},
			},
		},
		{
			{
				Backtrack: []glyph.ID{},
				Input:     []glyph.ID{13},
				Lookahead: []glyph.ID{},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 1},
					{SequenceIndex: 0, LookupListIndex: 2},
					{SequenceIndex: 0, LookupListIndex: 3},
				},
			},
		},
	}
	f.Add(sub.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		roundTripNested(t, 1, readChainedSeqContext1, data)
	})
}

func FuzzChainedSeqContext2(f *testing.F) {
	sub := &ChainedSeqContext2{}
	f.Add(sub.Encode())
	sub.Cov = coverage.Table{1: 0, 3: 1}
	sub.BacktrackClasses = classdef.Info{2: 1, 3: 1, 4: 2}
	sub.InputClasses = classdef.Info{3: 1, 4: 2}
	sub.LookaheadClasses = classdef.Info{3: 1, 4: 2, 5: 2}
	sub.Rules = [][]*ChainedClassSequenceRule{
		{
			{
				Backtrack: []uint16{},
				Input:     []uint16{1},
				Lookahead: []uint16{2, 3},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 1},
					{SequenceIndex: 0, LookupListIndex: 2},
				},
			},
			{
				Backtrack: []uint16{4, 5, 6},
				Input:     []uint16{7, 8},
				Lookahead: []uint16{9},
				Actions: Nested{
					{SequenceIndex: 1, LookupListIndex: 0},
				},
			},
			{
				Backtrack: []uint16{10, 11},
				Input:     []uint16{12},
				Lookahead: []uint16{},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 1000},
				},
			},
		},
		{
			{
				Backtrack: []uint16{},
				Input:     []uint16{13},
				Lookahead: []uint16{},
				Actions: Nested{
					{SequenceIndex: 0, LookupListIndex: 1},
					{SequenceIndex: 0, LookupListIndex: 2},
					{SequenceIndex: 0, LookupListIndex: 3},
				},
			},
		},
	}
	f.Add(sub.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		roundTripNested(t, 2, readChainedSeqContext2, data)
	})
}

func FuzzChainedSeqContext3(f *testing.F) {
	sub := &ChainedSeqContext3{}
	f.Add(sub.Encode())
	sub.Backtrack = []coverage.Table{
		{1: 0, 3: 1},
	}
	sub.Input = []coverage.Table{
		{2: 0, 3: 1},
		{3: 0, 4: 1},
	}
	sub.Lookahead = []coverage.Table{
		{4: 0, 5: 1, 6: 2},
	}
	sub.Actions = Nested{
		{SequenceIndex: 0, LookupListIndex: 1},
		{SequenceIndex: 0, LookupListIndex: 2},
	}
	f.Add(sub.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		roundTripNested(t, 3, readChainedSeqContext3, data)
	})
}

// roundTripNested checks that a SeqContext<N> or ChainedSeqContext<N>
// subtable survives a decode/encode/decode round trip.
func roundTripNested(t *testing.T, format uint16, read func(*parser.Parser, int64) (Subtable, error), data []byte) {
	p := parser.New("test", sizedReader{bytes.NewReader(data)})
	gotFormat, err := p.ReadUInt16()
	if err != nil || gotFormat != format {
		return
	}

	l1, err := read(p, 0)
	if err != nil {
		return
	}

	data2 := l1.Encode()
	if len(data2) != l1.EncodeLen() {
		t.Errorf("encodeLen mismatch: %d != %d", len(data2), l1.EncodeLen())
	}

	p = parser.New("test", sizedReader{bytes.NewReader(data2)})
	if _, err := p.ReadUInt16(); err != nil {
		t.Fatal(err)
	}
	l2, err := read(p, 0)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(l1, l2) {
		t.Error("different")
	}
}
