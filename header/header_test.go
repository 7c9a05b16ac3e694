package header

import (
	"bytes"
	"testing"
)

func TestChecksum(t *testing.T) {
	cases := []struct {
		Body     []byte
		Expected uint32
	}{
		{[]byte{0, 1, 2, 3}, 0x00010203},
		{[]byte{0, 1, 2, 3, 4, 5, 6, 7}, 0x0406080a},
		{[]byte{1}, 0x01000000},
		{[]byte{1, 2, 3}, 0x01020300},
		{[]byte{1, 0, 0, 0, 1}, 0x02000000},
		{[]byte{255, 255, 255, 255, 0, 0, 0, 1}, 0},
	}

	for i, test := range cases {
		computed := Checksum(test.Body)
		if computed != test.Expected {
			t.Errorf("test %d failed: %08x != %08x", i+1, computed, test.Expected)
		}
	}
}

func TestTableOrderOptimized(t *testing.T) {
	tableData := map[string][]byte{
		"glyf": {1}, "head": {2}, "cmap": {3}, "zzzz": {4}, "aaaa": {5},
	}
	order := TableOrder(tableData)
	// "head" must precede "cmap" (recommended order), both must precede
	// the alphabetically-sorted extra tags "aaaa"/"zzzz".
	pos := map[string]int{}
	for i, n := range order {
		pos[n] = i
	}
	if pos["head"] > pos["cmap"] {
		t.Errorf("expected head before cmap, got order %v", order)
	}
	if pos["aaaa"] > pos["zzzz"] {
		t.Errorf("expected extra tables in alphabetical order, got %v", order)
	}
	if pos["cmap"] > pos["aaaa"] {
		t.Errorf("expected recommended tables before extra tables, got %v", order)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	tableData := map[string][]byte{
		"head": append(make([]byte, 12), 0, 0),
		"cmap": {1, 2, 3},
	}
	buf := &bytes.Buffer{}
	n, err := Write(buf, ScalerTypeTrueType, tableData)
	if err != nil {
		t.Fatal(err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("reported length %d does not match written length %d", n, buf.Len())
	}

	h, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if !h.Has("head", "cmap") {
		t.Error("expected both tables to round-trip through the directory")
	}
}
