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

// Package markarray reads and writes OpenType "Mark Array Tables", used
// by the MarkToBase, MarkToLigature and MarkToMark GPOS lookups.
package markarray

import (
	"seehuhn.de/go/otf/opentype/anchor"
	"seehuhn.de/go/otf/parser"
)

// Record is a mark record in a Mark Array Table: the mark's class and its
// anchor point relative to the base it attaches to.
// https://learn.microsoft.com/en-us/typography/opentype/spec/gpos#mark-array-table
type Record struct {
	Class uint16
	anchor.Table
}

// Read reads a Mark Array Table from the given parser.  If there are more
// than numMarks entries in the table, the remaining entries are ignored:
// numMarks is the coverage count of the enclosing mark coverage table,
// and a mark array is never longer than its coverage.
func Read(p *parser.Parser, pos int64, numMarks int) ([]Record, error) {
	err := p.SeekPos(pos)
	if err != nil {
		return nil, err
	}

	markCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	if int(markCount) > numMarks {
		markCount = uint16(numMarks)
	}

	res := make([]Record, markCount)
	offsets := make([]uint16, markCount)
	for i := 0; i < int(markCount); i++ {
		res[i].Class, err = p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		offsets[i], err = p.ReadUInt16()
		if err != nil {
			return nil, err
		}
	}

	for i, offs := range offsets {
		res[i].Table, err = anchor.Read(p, pos+int64(offs))
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Encode writes a Mark Array Table in binary form.
func Encode(records []Record) []byte {
	n := len(records)
	headerLen := 2 + 4*n
	buf := make([]byte, headerLen, headerLen+6*n)
	buf[0] = byte(n >> 8)
	buf[1] = byte(n)

	offs := headerLen
	for i, rec := range records {
		pos := 2 + 4*i
		buf[pos] = byte(rec.Class >> 8)
		buf[pos+1] = byte(rec.Class)
		buf[pos+2] = byte(offs >> 8)
		buf[pos+3] = byte(offs)
		offs += 6
	}
	for _, rec := range records {
		buf = append(buf, rec.Table.Encode()...)
	}
	return buf
}
