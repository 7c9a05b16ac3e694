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

// Package post reads and writes the OpenType "post" table.
// https://learn.microsoft.com/en-us/typography/opentype/spec/post
package post

import (
	"bytes"
	"encoding/binary"
	"io"

	"seehuhn.de/go/otf"
)

// Info contains the information from the "post" table.
type Info struct {
	ItalicAngle        int32 // italic angle in degrees, counter-clockwise from vertical
	UnderlinePosition  int16 // negative
	UnderlineThickness int16
	IsFixedPitch       bool

	// Names holds the per-glyph PostScript name, indexed by glyph ID. It is
	// only populated when the table carries version 2.0 glyph-name data;
	// it is nil for versions 1.0/3.0 (and for version 2.5, which this
	// package treats as carrying no name data since it was deprecated at
	// the same OpenType revision that added variable fonts).
	Names []string
}

// Read reads the "post" table from r.
func Read(r io.Reader) (*Info, error) {
	var header postHeader
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, err
	}

	info := &Info{
		ItalicAngle:        header.ItalicAngle,
		UnderlinePosition:  header.UnderlinePosition,
		UnderlineThickness: header.UnderlineThickness,
		IsFixedPitch:       header.IsFixedPitch != 0,
	}

	switch header.Version {
	case 0x00010000, 0x00025000, 0x00030000:
		return info, nil
	case 0x00020000:
		names, err := readV2Names(r)
		if err != nil {
			return nil, err
		}
		info.Names = names
		return info, nil
	default:
		return nil, &otf.NotSupportedError{Table: "post", Feature: "table version"}
	}
}

func readV2Names(r io.Reader) ([]string, error) {
	var numGlyphs uint16
	if err := binary.Read(r, binary.BigEndian, &numGlyphs); err != nil {
		return nil, err
	}

	indices := make([]uint16, numGlyphs)
	if err := binary.Read(r, binary.BigEndian, indices); err != nil {
		return nil, err
	}

	var pascalNames []string
	for {
		var length uint8
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, &otf.InvalidFontError{Table: "post", Reason: "truncated Pascal string"}
		}
		pascalNames = append(pascalNames, string(buf))
	}

	names := make([]string, numGlyphs)
	for gid, idx := range indices {
		if idx < 258 {
			names[gid] = macGlyphNames[idx]
		} else if int(idx)-258 < len(pascalNames) {
			names[gid] = pascalNames[idx-258]
		}
	}
	return names, nil
}

// Encode converts info to the binary "post" table. If info.Names is set,
// version 2.0 is written (glyph names in table order); otherwise version
// 3.0 is written (no glyph-name data, smallest representation).
func (info *Info) Encode() []byte {
	var isFixedPitch uint32
	if info.IsFixedPitch {
		isFixedPitch = 1
	}

	version := uint32(0x00030000)
	if info.Names != nil {
		version = 0x00020000
	}

	header := postHeader{
		Version:            version,
		ItalicAngle:        info.ItalicAngle,
		UnderlinePosition:  info.UnderlinePosition,
		UnderlineThickness: info.UnderlineThickness,
		IsFixedPitch:       isFixedPitch,
	}

	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.BigEndian, &header)
	if info.Names == nil {
		return buf.Bytes()
	}

	stdIndex := make(map[string]uint16, len(macGlyphNames))
	for i, name := range macGlyphNames {
		stdIndex[name] = uint16(i)
	}

	indices := make([]uint16, len(info.Names))
	var customNames []string
	seen := make(map[string]uint16)
	for gid, name := range info.Names {
		if idx, ok := stdIndex[name]; ok {
			indices[gid] = idx
			continue
		}
		if idx, ok := seen[name]; ok {
			indices[gid] = idx
			continue
		}
		idx := uint16(258 + len(customNames))
		customNames = append(customNames, name)
		seen[name] = idx
		indices[gid] = idx
	}

	_ = binary.Write(buf, binary.BigEndian, uint16(len(info.Names)))
	_ = binary.Write(buf, binary.BigEndian, indices)
	for _, name := range customNames {
		s := name
		if len(s) > 255 {
			s = s[:255]
		}
		buf.WriteByte(byte(len(s)))
		buf.WriteString(s)
	}

	return buf.Bytes()
}

// Subset returns the "post" table restricted to the glyphs listed in gids,
// in the given order. The returned table always uses version 2.0 if the
// receiver carried glyph names, since the standard Macintosh glyph order
// no longer applies to a reordered/renumbered subset.
func (info *Info) Subset(gids []uint16) *Info {
	out := &Info{
		ItalicAngle:        info.ItalicAngle,
		UnderlinePosition:  info.UnderlinePosition,
		UnderlineThickness: info.UnderlineThickness,
		IsFixedPitch:       info.IsFixedPitch,
	}
	if info.Names == nil {
		return out
	}
	names := make([]string, len(gids))
	for i, gid := range gids {
		if int(gid) < len(info.Names) {
			names[i] = info.Names[gid]
		}
	}
	out.Names = names
	return out
}

type postHeader struct {
	Version            uint32
	ItalicAngle        int32
	UnderlinePosition  int16
	UnderlineThickness int16
	IsFixedPitch       uint32
	MinMemType42       uint32
	MaxMemType42       uint32
	MinMemType1        uint32
	MaxMemType1        uint32
}

// macGlyphNames is the standard Macintosh ordering of 258 PostScript glyph
// names, used by "post" table version 2.0 name indices below 258.
// https://learn.microsoft.com/en-us/typography/opentype/spec/post#version-20
var macGlyphNames = [258]string{
	".notdef", ".null", "nonmarkingreturn", "space", "exclam", "quotedbl",
	"numbersign", "dollar", "percent", "ampersand", "quotesingle",
	"parenleft", "parenright", "asterisk", "plus", "comma", "hyphen",
	"period", "slash", "zero", "one", "two", "three", "four", "five",
	"six", "seven", "eight", "nine", "colon", "semicolon", "less",
	"equal", "greater", "question", "at", "A", "B", "C", "D", "E", "F",
	"G", "H", "I", "J", "K", "L", "M", "N", "O", "P", "Q", "R", "S", "T",
	"U", "V", "W", "X", "Y", "Z", "bracketleft", "backslash",
	"bracketright", "asciicircum", "underscore", "grave", "a", "b", "c",
	"d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q",
	"r", "s", "t", "u", "v", "w", "x", "y", "z", "braceleft", "bar",
	"braceright", "asciitilde", "Adieresis", "Aring", "Ccedilla",
	"Eacute", "Ntilde", "Odieresis", "Udieresis", "aacute", "agrave",
	"acircumflex", "adieresis", "atilde", "aring", "ccedilla", "eacute",
	"egrave", "ecircumflex", "edieresis", "iacute", "igrave",
	"icircumflex", "idieresis", "ntilde", "oacute", "ograve",
	"ocircumflex", "odieresis", "otilde", "uacute", "ugrave",
	"ucircumflex", "udieresis", "dagger", "degree", "cent", "sterling",
	"section", "bullet", "paragraph", "germandbls", "registered",
	"copyright", "trademark", "acute", "dieresis", "notequal", "AE",
	"Oslash", "infinity", "plusminus", "lessequal", "greaterequal",
	"yen", "mu", "partialdiff", "summation", "product", "pi", "integral",
	"ordfeminine", "ordmasculine", "Omega", "ae", "oslash",
	"questiondown", "exclamdown", "logicalnot", "radical", "florin",
	"approxequal", "Delta", "guillemotleft", "guillemotright",
	"ellipsis", "nonbreakingspace", "Agrave", "Atilde", "Otilde", "OE",
	"oe", "endash", "emdash", "quotedblleft", "quotedblright",
	"quoteleft", "quoteright", "divide", "lozenge", "ydieresis",
	"Ydieresis", "fraction", "currency", "guilsinglleft",
	"guilsinglright", "fi", "fl", "daggerdbl", "periodcentered",
	"quotesinglbase", "quotedblbase", "perthousand", "Acircumflex",
	"Ecircumflex", "Aacute", "Edieresis", "Egrave", "Iacute",
	"Icircumflex", "Idieresis", "Igrave", "Oacute", "Ocircumflex",
	"apple", "Ograve", "Uacute", "Ucircumflex", "Ugrave", "dotlessi",
	"circumflex", "tilde", "macron", "breve", "dotaccent", "ring",
	"cedilla", "hungarumlaut", "ogonek", "caron", "Lslash", "lslash",
	"Scaron", "scaron", "Zcaron", "zcaron", "brokenbar", "Eth", "eth",
	"Yacute", "yacute", "Thorn", "thorn", "minus", "multiply",
	"onesuperior", "twosuperior", "threesuperior", "onehalf",
	"onequarter", "threequarters", "franc", "Gbreve", "gbreve",
	"Idotaccent", "Scedilla", "scedilla", "Cacute", "cacute", "Ccaron",
	"ccaron", "dcroat",
}
