package classdef

import (
	"bytes"
	"reflect"
	"testing"
)

func FuzzClassDef(f *testing.F) {
	f.Add([]byte{0, 1, 0, 1, 0, 3, 0, 1, 0, 2, 0, 1})
	f.Add([]byte{0, 1, 0, 0, 0, 0})
	f.Add([]byte{0, 2, 0, 0})
	f.Fuzz(func(t *testing.T, data []byte) {
		info, err := Read(bytes.NewReader(data), nil)
		if err != nil {
			return
		}

		data2 := info.Encode()

		info2, err := Read(bytes.NewReader(data2), nil)
		if err != nil {
			t.Fatal(err)
		}

		if len(data2) > len(data) {
			t.Error("encoded form is longer than the original")
		}

		if !reflect.DeepEqual(info, info2) {
			t.Errorf("round trip mismatch: %v != %v", info, info2)
		}
	})
}

func TestClassDefFormat1(t *testing.T) {
	data := []byte{0, 1, 0, 5, 0, 3, 0, 1, 0, 2, 0, 1}
	info, err := Read(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatal(err)
	}
	if info[5] != 1 || info[6] != 2 || info[7] != 1 {
		t.Errorf("wrong class assignment: %v", info)
	}
}
