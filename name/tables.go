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
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/text/language"
)

// Tables maps BCP-47 language tags to the name strings recorded for that
// language.
type Tables map[string]*Table

// Choose selects the table which best matches the given language
// preferences, using BCP-47 matching rules. The candidates are first
// ranked by a score of 10 per filled-in name ID, plus 55 for en-US or 5
// for any other English tag, with equal scores ordered alphabetically by
// tag; when no preference matches, the highest-ranked table is returned.
func (tt Tables) Choose(prefs ...language.Tag) (*Table, language.Confidence) {
	keys := maps.Keys(tt)
	if len(keys) == 0 {
		return nil, language.No
	}

	pref := make(map[string]int)
	for key, t := range tt {
		numFilled := 10 * len(t.keys())
		if key == "en-US" {
			numFilled += 55
		} else if key == "en" || strings.HasPrefix(key, "en-") {
			numFilled += 5
		}
		pref[key] = numFilled
	}

	sort.Slice(keys, func(i, j int) bool {
		if pref[keys[i]] != pref[keys[j]] {
			return pref[keys[i]] > pref[keys[j]]
		}
		return keys[i] < keys[j]
	})

	tags := make([]language.Tag, len(keys))
	for i, key := range keys {
		tags[i] = language.MustParse(key)
	}
	matcher := language.NewMatcher(tags)

	_, index, confidence := matcher.Match(prefs...)
	return tt[keys[index]], confidence
}
