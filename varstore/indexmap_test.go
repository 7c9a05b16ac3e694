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

package varstore

import (
	"reflect"
	"testing"
)

func TestDeltaSetIndexMapRoundTrip(t *testing.T) {
	m := &DeltaSetIndexMap{Map: []VarIdx{
		Pack(0, 0), Pack(0, 1), Pack(1, 0), Pack(3, 200),
	}}

	enc := m.Encode()
	if len(enc) != m.EncodeLen() {
		t.Fatalf("EncodeLen() = %d, Encode() produced %d bytes", m.EncodeLen(), len(enc))
	}

	got, err := ReadDeltaSetIndexMap(newParser(enc), 0)
	if err != nil {
		t.Fatalf("ReadDeltaSetIndexMap: %v", err)
	}
	if !reflect.DeepEqual(got.Map, m.Map) {
		t.Errorf("round trip mismatch: got %v, want %v", got.Map, m.Map)
	}
}

func TestDeltaSetIndexMapGetPastEndReusesLast(t *testing.T) {
	m := &DeltaSetIndexMap{Map: []VarIdx{Pack(0, 0), Pack(0, 5)}}
	if got := m.Get(1); got != Pack(0, 5) {
		t.Errorf("Get(1) = %v, want Pack(0,5)", got)
	}
	if got := m.Get(100); got != Pack(0, 5) {
		t.Errorf("Get(100) = %v, want last entry Pack(0,5)", got)
	}
}

func TestDeltaSetIndexMapEmptyGetIsNoVariation(t *testing.T) {
	m := &DeltaSetIndexMap{}
	if got := m.Get(0); got != NoVariation {
		t.Errorf("Get(0) on empty map = %v, want NoVariation", got)
	}
}
