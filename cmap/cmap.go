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

package cmap

import (
	"bytes"
	"io"
	"math"
	"sort"

	"golang.org/x/exp/slices"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/mac"
)

// Key selects one subtable of a cmap table by platform, encoding and
// (Macintosh-only) language.
type Key struct {
	PlatformID uint16
	EncodingID uint16
	Language   uint16
}

// Table holds the raw, still-encoded subtables of a "cmap" table, keyed by
// platform/encoding/language. Call Get or GetBest to decode one.
type Table map[Key][]byte

// Decode parses the "cmap" table directory and splits it into its raw
// subtables. The returned byte slices are guaranteed to be at least 10
// bytes long and to start with a valid format value (one of 0, 2, 4, 6, 8,
// 10, 12, 13 or 14).
func Decode(data []byte) (Table, error) {
	const minLength = 10 // length of an empty format 6 subtable

	invalid := func(reason string) error {
		return &otf.InvalidFontError{Table: "cmap", Reason: reason}
	}

	if len(data) < 4 || len(data) > math.MaxUint32 {
		return nil, invalid("table too short")
	}
	version := uint16(data[0])<<8 | uint16(data[1])
	if version != 0 {
		return nil, invalid("unknown cmap version")
	}
	numTables := int(data[2])<<8 | int(data[3])
	if len(data) < 4+8*numTables {
		return nil, invalid("table directory truncated")
	}

	endOfHeader := uint32(4 + 8*numTables)
	endOfData := uint32(len(data))

	type seg struct {
		start, end uint32
	}
	var segs []seg

	res := make(Table)
	for i := 0; i < numTables; i++ {
		platformID := uint16(data[4+i*8])<<8 | uint16(data[5+i*8])
		if platformID > 4 {
			return nil, invalid("invalid platform ID")
		}
		encodingID := uint16(data[6+i*8])<<8 | uint16(data[7+i*8])

		o := uint32(data[8+i*8])<<24 |
			uint32(data[9+i*8])<<16 |
			uint32(data[10+i*8])<<8 |
			uint32(data[11+i*8])
		if o < endOfHeader || o > endOfData-minLength {
			return nil, invalid("subtable offset out of range")
		}

		var language uint16
		var length uint32
		format := uint16(data[o])<<8 | uint16(data[o+1])
		checkLength := uint32(minLength)
		switch format {
		case 0, 2, 4, 6:
			length = uint32(data[o+2])<<8 | uint32(data[o+3])
			language = uint16(data[o+4])<<8 | uint16(data[o+5])
		case 8, 10, 12, 13:
			checkLength = 12
			if o > endOfData-checkLength {
				return nil, invalid("subtable header truncated")
			}
			length = uint32(data[o+4])<<24 |
				uint32(data[o+5])<<16 |
				uint32(data[o+6])<<8 |
				uint32(data[o+7])
			language = uint16(data[o+10])<<8 | uint16(data[o+11])
		case 14:
			length = uint32(data[o+2])<<24 |
				uint32(data[o+3])<<16 |
				uint32(data[o+4])<<8 |
				uint32(data[o+5])
		default:
			return nil, invalid("invalid subtable format")
		}
		if length < checkLength || length > endOfData-o {
			return nil, invalid("subtable length out of range")
		}

		if platformID != 1 {
			language = 0
		}

		// subtables must be either disjoint or byte-identical
		idx := sort.Search(len(segs), func(i int) bool {
			return o <= segs[i].start
		})
		if idx == len(segs) || o != segs[idx].start {
			if idx > 0 && o < segs[idx-1].end ||
				idx < len(segs) && o+length > segs[idx].start {
				return nil, invalid("overlapping subtables")
			}
			segs = slices.Insert(segs, idx, seg{o, o + length})
		}

		key := Key{PlatformID: platformID, EncodingID: encodingID, Language: language}
		res[key] = data[o : o+length]
	}

	return res, nil
}

// Write serializes the cmap table, sorting subtables by platform, encoding
// and language, and deduplicating byte-identical subtable bodies.
func (ss Table) Write(w io.Writer) error {
	type extended struct {
		Data []byte
		Offs uint32
		Key
	}
	ext := make([]extended, 0, len(ss))
	for key, data := range ss {
		ext = append(ext, extended{Data: data, Key: key})
	}
	sort.Slice(ext, func(i, j int) bool {
		if ext[i].PlatformID != ext[j].PlatformID {
			return ext[i].PlatformID < ext[j].PlatformID
		}
		if ext[i].EncodingID != ext[j].EncodingID {
			return ext[i].EncodingID < ext[j].EncodingID
		}
		return ext[i].Language < ext[j].Language
	})

	numTables := len(ext)
	endOfHeader := uint32(4 + 8*numTables)

	pos := endOfHeader
offsLoop:
	for i, e := range ext {
		for j := 0; j < i; j++ {
			if bytes.Equal(e.Data, ext[j].Data) {
				ext[i].Offs = ext[j].Offs
				ext[i].Data = nil
				continue offsLoop
			}
		}
		ext[i].Offs = pos
		pos += uint32(len(e.Data))
	}

	header := make([]byte, endOfHeader)
	header[2] = byte(numTables >> 8)
	header[3] = byte(numTables)
	for i, e := range ext {
		header[4+i*8] = byte(e.PlatformID >> 8)
		header[5+i*8] = byte(e.PlatformID)
		header[6+i*8] = byte(e.EncodingID >> 8)
		header[7+i*8] = byte(e.EncodingID)
		header[8+i*8] = byte(e.Offs >> 24)
		header[9+i*8] = byte(e.Offs >> 16)
		header[10+i*8] = byte(e.Offs >> 8)
		header[11+i*8] = byte(e.Offs)
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	for _, e := range ext {
		if _, err := w.Write(e.Data); err != nil {
			return err
		}
	}

	return nil
}

// Get decodes the subtable stored under key.
func (ss Table) Get(key Key) (Subtable, error) {
	data, ok := ss[key]
	if !ok {
		return nil, &otf.MissingTableError{Table: "cmap"}
	}

	code2rune := identity
	if key.PlatformID == 1 {
		if key.EncodingID != 0 {
			return nil, &otf.NotSupportedError{
				Table:   "cmap",
				Feature: "Macintosh encoding other than Roman",
			}
		}
		code2rune = func(c int) rune { return mac.DecodeOne(byte(c)) }
	}

	format := uint16(data[0])<<8 | uint16(data[1])
	decode := decoders[format]
	return decode(data, code2rune)
}

// candidates lists (platform, encoding) pairs in order of preference for
// GetBest.
var candidates = []struct {
	PlatformID uint16
	EncodingID uint16
}{
	{3, 10}, // full Unicode, BMP + supplementary planes
	{0, 4},  // Unicode 2.0+, full repertoire
	{3, 1},  // Unicode BMP
	{0, 3},  // Unicode 2.0+, BMP only
	{1, 0},  // vintage Apple Macintosh Roman
}

// GetBest selects and decodes the most useful subtable of the cmap table,
// preferring full-Unicode encodings over BMP-only and legacy ones.
func (ss Table) GetBest() (Subtable, error) {
	for _, c := range candidates {
		if sub, err := ss.Get(Key{c.PlatformID, c.EncodingID, 0}); err == nil {
			return sub, nil
		}
	}
	return nil, &otf.MissingTableError{Table: "cmap"}
}

// VariationSubtable returns the format 14 (Unicode Variation Sequences)
// subtable, if the font has one. Format 14 subtables are always found
// under platform 0, encoding 5.
func (ss Table) VariationSubtable() (Format14, error) {
	data, ok := ss[Key{PlatformID: 0, EncodingID: 5}]
	if !ok {
		return nil, &otf.MissingTableError{Table: "cmap/format14"}
	}
	sub, err := decodeFormat14(data, nil)
	if err != nil {
		return nil, err
	}
	return sub.(Format14), nil
}
