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

package name

import (
	"sort"
	"unicode/utf16"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/cmap"
	"seehuhn.de/go/otf/mac"
)

const maxNameID = 25

// Decode extracts the name strings stored in a "name" table, keyed by
// BCP-47 language tag. Records in languages this package does not have a
// tag for are skipped, as are Macintosh records using encodings other
// than MacRoman.
func Decode(data []byte) (Tables, error) {
	if len(data) < 6 {
		return nil, &otf.InvalidFontError{Table: "name", Reason: "table too short"}
	}
	version := uint16(data[0])<<8 | uint16(data[1])
	if version > 1 {
		return nil, &otf.NotSupportedError{Table: "name", Feature: "table version"}
	}

	numRec := int(data[2])<<8 | int(data[3])
	storageOffset := int(data[4])<<8 | int(data[5])

	recBase := 6
	endOfHeader := recBase + 12*numRec
	if endOfHeader > len(data) {
		return nil, &otf.InvalidFontError{Table: "name", Reason: "record array too long"}
	}

	if version > 0 {
		if endOfHeader+2 > len(data) {
			return nil, &otf.InvalidFontError{Table: "name", Reason: "truncated lang-tag header"}
		}
		numLang := int(data[endOfHeader])<<8 | int(data[endOfHeader+1])
		endOfHeader += 2 + numLang*4
	}
	if storageOffset < endOfHeader || storageOffset > len(data) {
		return nil, &otf.InvalidFontError{Table: "name", Reason: "invalid storage offset"}
	}

	tables := make(Tables)

recLoop:
	for i := 0; i < numRec; i++ {
		pos := recBase + i*12
		platformID := uint16(data[pos])<<8 | uint16(data[pos+1])
		encodingID := uint16(data[pos+2])<<8 | uint16(data[pos+3])
		languageID := uint16(data[pos+4])<<8 | uint16(data[pos+5])
		nameID := ID(uint16(data[pos+6])<<8 | uint16(data[pos+7]))
		nameLen := int(data[pos+8])<<8 | int(data[pos+9])
		nameOffset := int(data[pos+10])<<8 | int(data[pos+11])

		var bcp string
		switch platformID {
		case 1: // Macintosh
			bcp = appleBCP[languageID]
		case 3: // Windows
			bcp = msBCP[languageID]
		}
		if bcp == "" {
			continue
		}

		if storageOffset+nameOffset+nameLen > len(data) {
			return nil, &otf.InvalidFontError{Table: "name", Reason: "string runs past end of table"}
		}
		raw := data[storageOffset+nameOffset : storageOffset+nameOffset+nameLen]

		var val string
		switch platformID {
		case 0, 3: // Unicode, Windows
			val = utf16Decode(raw)
		case 1: // Macintosh
			if encodingID != 0 {
				continue recLoop
			}
			val = mac.Decode(raw)
		}
		if val == "" {
			continue recLoop
		}

		t := tables[bcp]
		if t == nil {
			t = &Table{}
			tables[bcp] = t
		}
		t.set(nameID, val)
	}

	return tables, nil
}

// Encode converts name tables into their binary "name" table form.
//
// cm identifies the cmap subtables the font will ship, which determines
// which Windows (platform 3) encoding ID to pair with the Windows name
// records, matching the rule that platform 3 "name" records should use
// the same encoding ID as the platform 3 "cmap" subtables.
func (tt Tables) Encode(cm cmap.Table) []byte {
	type recInfo struct {
		PlatformID uint16
		EncodingID uint16
		LanguageID uint16
		NameID     uint16
		offset     uint16
		length     uint16
	}
	var records []*recInfo

	b := newNameBuilder()

	includeMac := false
	encodingIDs := make(map[uint16]bool)
	for key := range cm {
		if key.PlatformID == 1 {
			includeMac = true
		}
		if key.PlatformID == 3 {
			encodingIDs[key.EncodingID] = true
		}
	}
	if len(encodingIDs) == 0 {
		encodingIDs[1] = true // Unicode BMP
	}

	if includeMac {
		for bcp, t := range tt {
			languageID, ok := appleLangID(bcp)
			if !ok {
				continue
			}
			for nameID := ID(0); nameID <= maxNameID; nameID++ {
				val := t.get(nameID)
				if val == "" {
					continue
				}
				offset, length := b.Add(mac.Encode(val))
				records = append(records, &recInfo{
					PlatformID: 1,
					EncodingID: 0,
					LanguageID: languageID,
					NameID:     uint16(nameID),
					offset:     offset,
					length:     length,
				})
			}
		}
	}

	for bcp, t := range tt {
		languageID, ok := msLangID(bcp)
		if !ok {
			continue
		}
		for nameID := ID(0); nameID <= maxNameID; nameID++ {
			val := t.get(nameID)
			if val == "" {
				continue
			}
			offset, length := b.Add(utf16Encode(val))
			for encodingID := range encodingIDs {
				records = append(records, &recInfo{
					PlatformID: 3,
					EncodingID: encodingID,
					LanguageID: languageID,
					NameID:     uint16(nameID),
					offset:     offset,
					length:     length,
				})
			}
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].PlatformID != records[j].PlatformID {
			return records[i].PlatformID < records[j].PlatformID
		}
		if records[i].EncodingID != records[j].EncodingID {
			return records[i].EncodingID < records[j].EncodingID
		}
		if records[i].LanguageID != records[j].LanguageID {
			return records[i].LanguageID < records[j].LanguageID
		}
		return records[i].NameID < records[j].NameID
	})

	numRec := len(records)
	startOfRecords := 6
	startOfStrings := startOfRecords + numRec*12
	res := make([]byte, startOfStrings+len(b.data))

	res[2] = byte(numRec >> 8)
	res[3] = byte(numRec)
	res[4] = byte(startOfStrings >> 8)
	res[5] = byte(startOfStrings)
	for i, rec := range records {
		base := startOfRecords + i*12
		res[base] = byte(rec.PlatformID >> 8)
		res[base+1] = byte(rec.PlatformID)
		res[base+2] = byte(rec.EncodingID >> 8)
		res[base+3] = byte(rec.EncodingID)
		res[base+4] = byte(rec.LanguageID >> 8)
		res[base+5] = byte(rec.LanguageID)
		res[base+6] = byte(rec.NameID >> 8)
		res[base+7] = byte(rec.NameID)
		res[base+8] = byte(rec.length >> 8)
		res[base+9] = byte(rec.length)
		res[base+10] = byte(rec.offset >> 8)
		res[base+11] = byte(rec.offset)
	}
	copy(res[startOfStrings:], b.data)

	return res
}

type nameBuilder struct {
	data []byte
	idx  map[string]uint16
}

func newNameBuilder() *nameBuilder {
	return &nameBuilder{idx: make(map[string]uint16)}
}

// Add interns b, returning the offset and length of the (possibly
// already-present) copy in the shared string storage area.
func (nb *nameBuilder) Add(b []byte) (offs, length uint16) {
	key := string(b)
	if idx, ok := nb.idx[key]; ok {
		return idx, uint16(len(b))
	}
	idx := uint16(len(nb.data))
	nb.idx[key] = idx
	nb.data = append(nb.data, b...)
	return idx, uint16(len(b))
}

func utf16Encode(s string) []byte {
	rr := utf16.Encode([]rune(s))
	res := make([]byte, len(rr)*2)
	for i, r := range rr {
		res[i*2] = byte(r >> 8)
		res[i*2+1] = byte(r)
	}
	return res
}

func utf16Decode(buf []byte) string {
	var words []uint16
	for i := 0; i+1 < len(buf); i += 2 {
		words = append(words, uint16(buf[i])<<8|uint16(buf[i+1]))
	}
	return string(utf16.Decode(words))
}
