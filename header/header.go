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

// Package header reads and writes the sfnt offset table and table
// directory: the 12-byte file header followed by one 16-byte record per
// table, and the checksum algorithm used to validate table contents.
package header

import (
	"bytes"
	"encoding/binary"
	"io"
	"math/bits"
	"sort"

	"seehuhn.de/go/otf"
)

// ScalerType identifies the outline format a font file uses, stored in
// the first four bytes of the file.
type ScalerType uint32

// The scaler types in use by current font files.
const (
	ScalerTypeTrueType ScalerType = 0x00010000
	ScalerTypeCFF      ScalerType = 0x4F54544F
	ScalerTypeApple    ScalerType = 0x74727565
)

// Record locates one table's data within the font file.
type Record struct {
	Offset uint32
	Length uint32
}

// Header is the decoded table directory of an sfnt font file.
type Header struct {
	ScalerType ScalerType
	Toc        map[string]Record
}

// maxTables bounds the number of table directory entries accepted while
// reading: the largest fonts observed in practice use around 30 tables,
// and a length-prefixed format has no other way to reject corrupt input
// before it is fully parsed.
const maxTables = 280

// Read parses the table directory from the start of r.
func Read(r io.ReaderAt) (*Header, error) {
	var buf [16]byte
	_, err := r.ReadAt(buf[:6], 0)
	if err != nil {
		return nil, err
	}
	scalerType := ScalerType(uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]))
	numTables := int(buf[4])<<8 | int(buf[5])

	if scalerType != ScalerTypeTrueType && scalerType != ScalerTypeCFF && scalerType != ScalerTypeApple {
		return nil, &otf.NotSupportedError{
			Table:   "header",
			Feature: "scaler type",
		}
	}
	if numTables > maxTables {
		return nil, &otf.InvalidFontError{Table: "header", Reason: "too many tables"}
	}

	h := &Header{
		ScalerType: scalerType,
		Toc:        make(map[string]Record),
	}

	type span struct{ start, end uint32 }
	var coverage []span
	for i := 0; i < numTables; i++ {
		_, err := r.ReadAt(buf[:], int64(12+i*16))
		if err != nil {
			return nil, err
		}
		name := string(buf[:4])
		offset := uint32(buf[8])<<24 | uint32(buf[9])<<16 | uint32(buf[10])<<8 | uint32(buf[11])
		length := uint32(buf[12])<<24 | uint32(buf[13])<<16 | uint32(buf[14])<<8 | uint32(buf[15])
		if !isKnownTable[name] {
			continue
		}
		h.Toc[name] = Record{Offset: offset, Length: length}
		coverage = append(coverage, span{offset, offset + length})
	}
	if len(h.Toc) == 0 {
		return nil, &otf.InvalidFontError{Table: "header", Reason: "no tables found"}
	}

	sort.Slice(coverage, func(i, j int) bool {
		if coverage[i].start != coverage[j].start {
			return coverage[i].start < coverage[j].start
		}
		return coverage[i].end < coverage[j].end
	})
	if coverage[0].start < uint32(12+16*numTables) {
		return nil, &otf.InvalidFontError{Table: "header", Reason: "invalid table offset"}
	}
	for i := 1; i < len(coverage); i++ {
		if coverage[i-1].end > coverage[i].start {
			return nil, &otf.InvalidFontError{Table: "header", Reason: "overlapping tables"}
		}
	}
	_, err = r.ReadAt(buf[:1], int64(coverage[len(coverage)-1].end)-1)
	if err == io.EOF {
		return nil, &otf.InvalidFontError{Table: "header", Reason: "table extends beyond end of file"}
	} else if err != nil {
		return nil, err
	}

	return h, nil
}

// Has reports whether every table in names is present.
func (h *Header) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := h.Toc[name]; !ok {
			return false
		}
	}
	return true
}

// Find looks up a table's directory record.
func (h *Header) Find(tableName string) (Record, error) {
	rec, ok := h.Toc[tableName]
	if !ok {
		return rec, &otf.MissingTableError{Table: tableName}
	}
	return rec, nil
}

// ReadTableBytes reads a table's raw contents.
func (h *Header) ReadTableBytes(r io.ReaderAt, tableName string) ([]byte, error) {
	rec, err := h.Find(tableName)
	if err != nil {
		return nil, err
	}
	res := make([]byte, rec.Length)
	n, err := r.ReadAt(res, int64(rec.Offset))
	if n < len(res) && err != nil {
		return nil, err
	}
	return res[:n], nil
}

// isKnownTable allowlists the table tags this module understands well
// enough to include in a table directory; unrecognised tags in an input
// font are skipped rather than rejected, since fonts routinely carry
// vendor-private tables.
var isKnownTable = map[string]bool{
	"BASE": true, "CBDT": true, "CBLC": true, "CFF ": true, "cmap": true,
	"cvt ": true, "DSIG": true, "feat": true, "FFTM": true, "fpgm": true,
	"fvar": true, "gasp": true, "GDEF": true, "glyf": true, "GPOS": true,
	"GSUB": true, "gvar": true, "hdmx": true, "head": true, "hhea": true,
	"hmtx": true, "HVAR": true, "kern": true, "loca": true, "LTSH": true,
	"maxp": true, "meta": true, "morx": true, "name": true, "OS/2": true,
	"post": true, "prep": true, "STAT": true, "VARC": true, "VDMX": true,
	"vhea": true, "vmtx": true, "VORG": true,
}

// trueTypeOrder and cffOrder list the "optimized table ordering" table
// tags recommended by the OpenType specification, followed by any
// remaining tables in alphabetical order.
var trueTypeOrder = []string{
	"head", "hhea", "maxp", "OS/2", "hmtx", "LTSH", "VDMX", "hdmx", "cmap",
	"fpgm", "prep", "cvt ", "loca", "glyf", "kern", "name", "post", "gasp",
}

var cffOrder = []string{
	"head", "hhea", "maxp", "OS/2", "name", "cmap", "post", "CFF ",
}

// TableOrder returns the table tags present in tableData, in the order
// they should be written: first the recommended ordering, then any
// remaining tags in alphabetical order.
func TableOrder(tableData map[string][]byte) []string {
	candidates := trueTypeOrder
	if _, ok := tableData["CFF "]; ok {
		candidates = cffOrder
	}

	done := make(map[string]bool)
	var names []string
	for _, name := range candidates {
		done[name] = true
		if _, ok := tableData[name]; ok {
			names = append(names, name)
		}
	}

	var rest []string
	for name := range tableData {
		if !done[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

// Write assembles a complete sfnt file from the given table data and
// writes it to w, returning the number of bytes written.  The "head"
// table's checksum adjustment is patched in place before writing, per
// https://learn.microsoft.com/en-us/typography/opentype/spec/otff#calculating-checksums
func Write(w io.Writer, scalerType ScalerType, tableData map[string][]byte) (int64, error) {
	names := TableOrder(tableData)
	numTables := len(names)
	sel := bits.Len(uint(numTables))
	if numTables > 0 {
		sel--
	}
	searchRange := uint16(1 << sel * 16)
	entrySelector := uint16(sel)
	rangeShift := uint16(16*numTables) - searchRange

	type dirEntry struct {
		tag      string
		offset   uint32
		length   uint32
		checksum uint32
	}
	entries := make([]dirEntry, numTables)
	offset := uint32(12 + 16*numTables)
	var totalSum uint32
	for i, name := range names {
		body := tableData[name]
		sum := Checksum(body)
		entries[i] = dirEntry{tag: name, offset: offset, length: uint32(len(body)), checksum: sum}
		totalSum += sum
		offset += 4 * uint32((len(body)+3)/4)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.BigEndian, uint32(scalerType))
	_ = binary.Write(buf, binary.BigEndian, uint16(numTables))
	_ = binary.Write(buf, binary.BigEndian, searchRange)
	_ = binary.Write(buf, binary.BigEndian, entrySelector)
	_ = binary.Write(buf, binary.BigEndian, rangeShift)
	for _, e := range entries {
		buf.WriteString(e.tag)
		_ = binary.Write(buf, binary.BigEndian, e.checksum)
		_ = binary.Write(buf, binary.BigEndian, e.offset)
		_ = binary.Write(buf, binary.BigEndian, e.length)
	}
	dirBytes := buf.Bytes()
	totalSum += Checksum(dirBytes)

	if headData, ok := tableData["head"]; ok && len(headData) >= 12 {
		adjustment := 0xB1B0AFBA - totalSum
		binary.BigEndian.PutUint32(headData[8:12], adjustment)
	}

	var totalSize int64
	n, err := w.Write(dirBytes)
	totalSize += int64(n)
	if err != nil {
		return totalSize, err
	}

	var pad [3]byte
	for _, name := range names {
		body := tableData[name]
		n, err := w.Write(body)
		totalSize += int64(n)
		if err != nil {
			return totalSize, err
		}
		if k := len(body) % 4; k != 0 {
			l, err := w.Write(pad[:4-k])
			totalSize += int64(l)
			if err != nil {
				return totalSize, err
			}
		}
	}

	return totalSize, nil
}

// checksumWriter accumulates the sfnt checksum of the bytes written to it,
// padding a final partial word with zeros.
type checksumWriter struct {
	sum  uint32
	buf  [4]byte
	used int
}

func (s *checksumWriter) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := copy(s.buf[s.used:], p)
		p = p[k:]
		n += k
		s.used += k
		if s.used == 4 {
			s.sum += binary.BigEndian.Uint32(s.buf[:])
			s.used = 0
		}
	}
	return n, nil
}

func (s *checksumWriter) Sum() uint32 {
	if s.used != 0 {
		_, _ = s.Write(make([]byte, 4-s.used))
	}
	return s.sum
}

// Checksum implements the sfnt table checksum algorithm: the sum of the
// table's contents interpreted as big-endian uint32 words, with the last
// partial word zero-padded.
func Checksum(data []byte) uint32 {
	cc := &checksumWriter{}
	_, _ = cc.Write(data)
	return cc.Sum()
}
