package coverage

import (
	"bytes"
	"reflect"
	"testing"

	"seehuhn.de/go/otf/glyph"
	"seehuhn.de/go/otf/parser"
)

type sizedReader struct{ *bytes.Reader }

func (s sizedReader) Size() int64 { return s.Reader.Size() }

func newParser(data []byte) *parser.Parser {
	return parser.New("coverage table test", sizedReader{bytes.NewReader(data)})
}

func FuzzCoverageTable(f *testing.F) {
	f.Add([]byte{0, 1, 0, 0})
	f.Add([]byte{0, 1, 0, 3, 1, 0, 1, 1, 1, 2})
	f.Add([]byte{0, 2, 0, 0})
	f.Add([]byte{0, 2, 0, 1, 1, 0, 1, 2, 0, 0})
	f.Add([]byte{0, 2, 0, 2, 1, 0, 1, 2, 0, 0, 2, 0, 2, 5, 0, 3})
	f.Fuzz(func(t *testing.T, data1 []byte) {
		c1, err := Read(newParser(data1), 0)
		if err != nil {
			return
		}

		data2 := c1.Encode()

		c2, err := Read(newParser(data2), 0)
		if err != nil {
			t.Fatal(err)
		}

		if len(data2) > len(data1) {
			t.Error("inefficient encoding")
		}

		if !reflect.DeepEqual(c1, c2) {
			t.Fatalf("round trip mismatch: %v != %v", c1, c2)
		}
	})
}

func TestCoverageFormat1(t *testing.T) {
	data := []byte{0, 1, 0, 2, 0, 5, 0, 9}
	table, err := Read(newParser(data), 0)
	if err != nil {
		t.Fatal(err)
	}
	if table[5] != 0 || table[9] != 1 {
		t.Errorf("wrong coverage indices: %v", table)
	}
}

func TestCoverageFormat2(t *testing.T) {
	data := []byte{0, 2, 0, 1, 0, 5, 0, 9, 0, 0}
	table, err := Read(newParser(data), 0)
	if err != nil {
		t.Fatal(err)
	}
	for i, gid := range []int{5, 6, 7, 8, 9} {
		if table[glyph.ID(gid)] != i {
			t.Errorf("wrong coverage index for glyph %d: got %d", gid, table[glyph.ID(gid)])
		}
	}
}
