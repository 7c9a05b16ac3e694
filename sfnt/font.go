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

// Package sfnt ties the individually-decoded OpenType tables together
// into a single in-memory font, and reads/writes the sfnt container
// format (table directory plus checksums) that holds them.
// https://learn.microsoft.com/en-us/typography/opentype/spec/otff
package sfnt

import (
	"bytes"
	"io"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/cmap"
	"seehuhn.de/go/otf/glyf"
	"seehuhn.de/go/otf/head"
	"seehuhn.de/go/otf/header"
	"seehuhn.de/go/otf/hhea"
	"seehuhn.de/go/otf/hmtx"
	"seehuhn.de/go/otf/kern"
	"seehuhn.de/go/otf/maxp"
	"seehuhn.de/go/otf/name"
	"seehuhn.de/go/otf/opentype/gdef"
	"seehuhn.de/go/otf/opentype/gtab"
	"seehuhn.de/go/otf/os2"
	"seehuhn.de/go/otf/parser"
	"seehuhn.de/go/otf/post"
	"seehuhn.de/go/otf/varc"
)

// Font is a fully decoded OpenType/TrueType font file: every table this
// module knows how to interpret is parsed into its typed representation,
// and every other table present in the input is carried in Extra so a
// round trip does not silently drop data this package has no opinion
// about.
type Font struct {
	ScalerType header.ScalerType

	Head *head.Info
	Hhea *hhea.Info
	Maxp *maxp.Info
	Hmtx *hmtx.Info
	OS2  *os2.Info
	Name name.Tables
	Post *post.Info
	Cmap cmap.Table
	Kern kern.Info

	Glyf glyf.Glyphs // nil for CFF-flavored fonts

	GSUB *gtab.Info
	GPOS *gtab.Info
	GDEF *gdef.Table
	VARC *varc.Table

	// Extra holds the raw bytes of every table in the input that this
	// package does not decode (CFF outlines, hinting programs,
	// variable-font axis/delta tables, bitmap strikes, and so on),
	// keyed by table tag. These are copied through unchanged by Write.
	Extra map[string][]byte
}

// knownTags lists every table tag this package decodes into a typed
// field; everything else present in the input's table directory is
// copied through via Extra instead.
var knownTags = map[string]bool{
	"head": true, "hhea": true, "maxp": true, "hmtx": true, "OS/2": true,
	"name": true, "post": true, "cmap": true, "kern": true,
	"glyf": true, "loca": true,
	"GSUB": true, "GPOS": true, "GDEF": true, "VARC": true,
}

// Read decodes a complete sfnt font file from r.
func Read(r parser.ReadSeekSizer) (*Font, error) {
	h, err := header.Read(r)
	if err != nil {
		return nil, err
	}

	f := &Font{ScalerType: h.ScalerType, Extra: make(map[string][]byte)}

	sectionOf := func(tag string) (*io.SectionReader, bool) {
		rec, ok := h.Toc[tag]
		if !ok {
			return nil, false
		}
		return io.NewSectionReader(r, int64(rec.Offset), int64(rec.Length)), true
	}
	bytesOf := func(tag string) ([]byte, error) {
		return h.ReadTableBytes(r, tag)
	}

	if sr, ok := sectionOf("head"); ok {
		f.Head, err = head.Read(sr)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, &otf.MissingTableError{Table: "head"}
	}

	if sr, ok := sectionOf("hhea"); ok {
		f.Hhea, err = hhea.Read(sr)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, &otf.MissingTableError{Table: "hhea"}
	}

	if sr, ok := sectionOf("maxp"); ok {
		f.Maxp, err = maxp.Read(sr)
		if err != nil {
			return nil, err
		}
	} else {
		return nil, &otf.MissingTableError{Table: "maxp"}
	}

	if data, err := bytesOf("hmtx"); err == nil {
		f.Hmtx, err = hmtx.Read(data, f.Maxp.NumGlyphs, int(f.Hhea.NumOfLongHorMetrics))
		if err != nil {
			return nil, err
		}
	} else if !otf.IsMissing(err) {
		return nil, err
	}

	if sr, ok := sectionOf("OS/2"); ok {
		f.OS2, err = os2.Read(sr)
		if err != nil {
			return nil, err
		}
	}

	if data, err := bytesOf("name"); err == nil {
		f.Name, err = name.Decode(data)
		if err != nil {
			return nil, err
		}
	} else if !otf.IsMissing(err) {
		return nil, err
	}

	if sr, ok := sectionOf("post"); ok {
		f.Post, err = post.Read(sr)
		if err != nil {
			return nil, err
		}
	}

	if data, err := bytesOf("cmap"); err == nil {
		f.Cmap, err = cmap.Decode(data)
		if err != nil {
			return nil, err
		}
	} else if !otf.IsMissing(err) {
		return nil, err
	}

	if sr, ok := sectionOf("kern"); ok {
		f.Kern, err = kern.Read(sr)
		if err != nil {
			return nil, err
		}
	}

	glyfData, glyfErr := bytesOf("glyf")
	locaData, locaErr := bytesOf("loca")
	if glyfErr == nil && locaErr == nil {
		locaFormat := int16(0)
		if f.Head.HasLongOffsets {
			locaFormat = 1
		}
		f.Glyf, err = glyf.Decode(&glyf.Encoded{
			GlyfData:   glyfData,
			LocaData:   locaData,
			LocaFormat: locaFormat,
		})
		if err != nil {
			return nil, err
		}
	} else if !otf.IsMissing(glyfErr) {
		return nil, glyfErr
	} else if !otf.IsMissing(locaErr) {
		return nil, locaErr
	}

	if sr, ok := sectionOf("GSUB"); ok {
		f.GSUB, err = gtab.Read("GSUB", sr)
		if err != nil {
			return nil, err
		}
	}
	if sr, ok := sectionOf("GPOS"); ok {
		f.GPOS, err = gtab.Read("GPOS", sr)
		if err != nil {
			return nil, err
		}
	}
	if sr, ok := sectionOf("GDEF"); ok {
		f.GDEF, err = gdef.Read(sr)
		if err != nil {
			return nil, err
		}
	}
	if sr, ok := sectionOf("VARC"); ok {
		f.VARC, err = varc.Read(sr)
		if err != nil {
			return nil, err
		}
	}

	for tag := range h.Toc {
		if knownTags[tag] {
			continue
		}
		data, err := bytesOf(tag)
		if err != nil {
			return nil, err
		}
		f.Extra[tag] = data
	}

	return f, nil
}

// Write serializes f as a complete sfnt font file.
func (f *Font) Write(w io.Writer) (int64, error) {
	tables := make(map[string][]byte, len(f.Extra)+16)
	for tag, data := range f.Extra {
		tables[tag] = data
	}

	var cc cmap.Subtable
	if f.Cmap != nil {
		tables["cmap"] = cmapBytes(f.Cmap)
		cc, _ = f.Cmap.GetBest()
	}

	if f.Name != nil {
		tables["name"] = f.Name.Encode(f.Cmap)
	}

	if f.OS2 != nil {
		tables["OS/2"] = f.OS2.Encode(cc)
	}

	if f.Post != nil {
		tables["post"] = f.Post.Encode()
	}

	if len(f.Kern) != 0 {
		tables["kern"] = f.Kern.Encode()
	}

	if f.GSUB != nil {
		tables["GSUB"] = f.GSUB.Encode()
	}
	if f.GPOS != nil {
		tables["GPOS"] = f.GPOS.Encode()
	}
	if f.GDEF != nil {
		tables["GDEF"] = f.GDEF.Encode()
	}
	if f.VARC != nil {
		tables["VARC"] = f.VARC.Encode()
	}

	headCopy := *f.Head
	hheaCopy := *f.Hhea
	maxpCopy := *f.Maxp

	if f.Glyf != nil {
		enc := f.Glyf.Encode()
		tables["glyf"] = enc.GlyfData
		tables["loca"] = enc.LocaData
		headCopy.HasLongOffsets = enc.LocaFormat != 0
		maxpCopy.NumGlyphs = len(f.Glyf)
	}

	if f.Hmtx != nil {
		hmtxData, numHMetrics := f.Hmtx.Encode()
		tables["hmtx"] = hmtxData
		hheaCopy.NumOfLongHorMetrics = uint16(numHMetrics)
		if f.Glyf == nil {
			maxpCopy.NumGlyphs = len(f.Hmtx.AdvanceWidths)
		}
	}

	maxpData, err := maxpCopy.Encode()
	if err != nil {
		return 0, err
	}
	tables["maxp"] = maxpData
	tables["hhea"] = hheaCopy.Encode()
	tables["head"] = headCopy.Encode()

	return header.Write(w, f.ScalerType, tables)
}

// cmapBytes serializes a cmap.Table via its Write method, matching the
// byte-buffer convention every other table here uses.
func cmapBytes(cm cmap.Table) []byte {
	buf := &bytes.Buffer{}
	_ = cm.Write(buf)
	return buf.Bytes()
}
