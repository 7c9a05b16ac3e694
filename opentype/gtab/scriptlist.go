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
	"sort"

	"seehuhn.de/go/otf"
	"seehuhn.de/go/otf/parser"
)

// ScriptLang is a pair of OpenType script and language-system tags, each
// the raw 4-byte tag ("latn", "DEU ", ...) rather than a closed enum, so
// that tags this package does not recognize by name still round-trip.
// LangDefault is used for a script's default (non-tagged) LangSys entry.
type ScriptLang struct {
	Script string
	Lang   string
}

// LangDefault marks a script's default language-system entry.
const LangDefault = ""

// Features describes the mandatory and optional features for a script/language.
type Features struct {
	Required FeatureIndex // 0xFFFF, if no required feature
	Optional []FeatureIndex
}

// ScriptListInfo contains the information of a ScriptList table.
type ScriptListInfo map[ScriptLang]*Features

// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#script-list-table-and-script-record
func readScriptList(p *parser.Parser, pos int64) (ScriptListInfo, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}

	scriptCount, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	if 6*int64(scriptCount) > p.Size() {
		return nil, &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "invalid scriptCount"}
	}

	type scriptTableEntry struct {
		offset uint16
		script string
	}

	entries := make([]scriptTableEntry, scriptCount)
	for i := range entries {
		tag, err := p.ReadTag()
		if err != nil {
			return nil, err
		}
		offset, err := p.ReadUInt16()
		if err != nil {
			return nil, err
		}
		entries[i] = scriptTableEntry{offset: offset, script: tag}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].offset < entries[j].offset })

	info := ScriptListInfo{}
	for _, entry := range entries {
		if int(entry.offset) < 2+6*len(entries) {
			return nil, &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "invalid script table offset"}
		}
		if err := readScriptTable(p, pos+int64(entry.offset), entry.script, info); err != nil {
			return nil, err
		}
	}

	return info, nil
}

// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#script-table-and-language-system-record
func readScriptTable(p *parser.Parser, pos int64, script string, info ScriptListInfo) error {
	if err := p.SeekPos(pos); err != nil {
		return err
	}

	defaultLangSysOffset, err := p.ReadUInt16()
	if err != nil {
		return err
	}
	langSysCount, err := p.ReadUInt16()
	if err != nil {
		return err
	}
	if defaultLangSysOffset != 0 && defaultLangSysOffset < 4+6*langSysCount {
		return &otf.InvalidFontError{Table: "GSUB/GPOS", Reason: "invalid defaultLangSysOffset"}
	}

	type langSysRecord struct {
		offset uint16
		lang   string
	}
	records := make([]langSysRecord, langSysCount)
	for i := range records {
		tag, err := p.ReadTag()
		if err != nil {
			return err
		}
		offset, err := p.ReadUInt16()
		if err != nil {
			return err
		}
		records[i] = langSysRecord{offset: offset, lang: tag}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].offset < records[j].offset })

	if defaultLangSysOffset != 0 {
		ff, err := readLangSysTable(p, pos+int64(defaultLangSysOffset))
		if err != nil {
			return err
		}
		info[ScriptLang{Script: script, Lang: LangDefault}] = ff
	}
	for _, record := range records {
		ff, err := readLangSysTable(p, pos+int64(record.offset))
		if err != nil {
			return err
		}
		info[ScriptLang{Script: script, Lang: record.lang}] = ff
	}

	return nil
}

// https://learn.microsoft.com/en-us/typography/opentype/spec/chapter2#language-system-table
func readLangSysTable(p *parser.Parser, pos int64) (*Features, error) {
	if err := p.SeekPos(pos); err != nil {
		return nil, err
	}

	lookupOrderOffset, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	if lookupOrderOffset != 0 {
		return nil, &otf.NotSupportedError{Table: "GSUB/GPOS", Feature: "use of reordering tables"}
	}
	requiredFeatureIndex, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	featureIndices, err := p.ReadUInt16Slice()
	if err != nil {
		return nil, err
	}

	optional := make([]FeatureIndex, 0, len(featureIndices))
	for _, idx := range featureIndices {
		if idx == 0xFFFF {
			continue
		}
		optional = append(optional, FeatureIndex(idx))
	}

	return &Features{
		Required: FeatureIndex(requiredFeatureIndex),
		Optional: optional,
	}, nil
}

func (info ScriptListInfo) encode() []byte {
	scripts := map[string][]string{}
	for key := range info {
		scripts[key.Script] = append(scripts[key.Script], key.Lang)
	}

	var scriptTags []string
	for script := range scripts {
		scriptTags = append(scriptTags, script)
	}
	sort.Strings(scriptTags)

	totalSize := 2 + 6*len(scripts)
	scriptOffsets := make(map[string]int, len(scriptTags))
	for _, tag := range scriptTags {
		scriptOffsets[tag] = totalSize
		langs := scripts[tag]
		langCount := 0
		for _, lang := range langs {
			if lang != LangDefault {
				langCount++
			}
			langSys := info[ScriptLang{Script: tag, Lang: lang}]
			totalSize += 6 + len(langSys.Optional)*2
		}
		totalSize += 4 + 6*langCount
	}

	buf := make([]byte, totalSize)
	buf[0] = byte(len(scriptTags) >> 8)
	buf[1] = byte(len(scriptTags))
	for i, tag := range scriptTags {
		p := 2 + i*6
		copy(buf[p:p+4], []byte(tag))
		off := scriptOffsets[tag]
		buf[p+4] = byte(off >> 8)
		buf[p+5] = byte(off)
	}

	for _, scriptTag := range scriptTags {
		scriptTablePos := scriptOffsets[scriptTag]
		langs := scripts[scriptTag]

		type langSysRecord struct {
			langSys *Features
			tag     string
			offs    int
		}
		var defaultRecord *langSysRecord
		var langSysRecords []*langSysRecord
		for _, lang := range langs {
			langSys := info[ScriptLang{Script: scriptTag, Lang: lang}]
			if lang == LangDefault {
				defaultRecord = &langSysRecord{langSys: langSys}
				continue
			}
			langSysRecords = append(langSysRecords, &langSysRecord{langSys: langSys, tag: lang})
		}
		sort.Slice(langSysRecords, func(i, j int) bool { return langSysRecords[i].tag < langSysRecords[j].tag })

		pos := 4 + 6*len(langSysRecords)
		if defaultRecord != nil {
			defaultRecord.offs = pos
			pos += 6 + len(defaultRecord.langSys.Optional)*2
		}
		for _, lRec := range langSysRecords {
			lRec.offs = pos
			pos += 6 + len(lRec.langSys.Optional)*2
		}

		if defaultRecord != nil {
			buf[scriptTablePos] = byte(defaultRecord.offs >> 8)
			buf[scriptTablePos+1] = byte(defaultRecord.offs)
		}
		buf[scriptTablePos+2] = byte(len(langSysRecords) >> 8)
		buf[scriptTablePos+3] = byte(len(langSysRecords))
		for i, lRec := range langSysRecords {
			p := scriptTablePos + 4 + i*6
			copy(buf[p:p+4], []byte(lRec.tag))
			buf[p+4] = byte(lRec.offs >> 8)
			buf[p+5] = byte(lRec.offs)
		}

		writeLangSys := func(offs int, ff *Features) {
			p := scriptTablePos + offs
			buf[p+2] = byte(ff.Required >> 8)
			buf[p+3] = byte(ff.Required)
			buf[p+4] = byte(len(ff.Optional) >> 8)
			buf[p+5] = byte(len(ff.Optional))
			for i, idx := range ff.Optional {
				buf[p+6+2*i] = byte(idx >> 8)
				buf[p+6+2*i+1] = byte(idx)
			}
		}
		if defaultRecord != nil {
			writeLangSys(defaultRecord.offs, defaultRecord.langSys)
		}
		for _, lRec := range langSysRecords {
			writeLangSys(lRec.offs, lRec.langSys)
		}
	}

	return buf
}
