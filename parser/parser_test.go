package parser

import (
	"bytes"
	"testing"
)

type sizedReader struct {
	*bytes.Reader
}

func (s sizedReader) Size() int64 { return s.Reader.Size() }

func newTestParser(data []byte) *Parser {
	return New("test", sizedReader{bytes.NewReader(data)})
}

func TestParserReadUInt16(t *testing.T) {
	p := newTestParser([]byte("1234AB\xFF\xFF"))
	x, err := p.ReadUInt16()
	if err != nil {
		t.Fatal(err)
	}
	if want := uint16('1')<<8 | uint16('2'); x != want {
		t.Errorf("wrong value, expected %d but got %d", want, x)
	}

	if err := p.SeekPos(6); err != nil {
		t.Fatal(err)
	}
	y, err := p.ReadInt16()
	if err != nil {
		t.Fatal(err)
	}
	if y != -1 {
		t.Errorf("wrong value, expected -1 but got %d", y)
	}
}

func TestParserEOF(t *testing.T) {
	p := newTestParser([]byte("12"))
	if _, err := p.ReadUInt32(); err == nil {
		t.Error("expected an error reading past the end of input")
	}
}

func TestParserPos(t *testing.T) {
	p := newTestParser([]byte{'0', '1', '2', '3', '4', '5', '6', '7'})

	if pos := p.Pos(); pos != 0 {
		t.Errorf("wrong position, expected 0 but got %d", pos)
	}

	if _, err := p.ReadUInt16(); err != nil {
		t.Fatal(err)
	}
	if pos := p.Pos(); pos != 2 {
		t.Errorf("wrong position, expected 2 but got %d", pos)
	}

	if err := p.SeekPos(5); err != nil {
		t.Fatal(err)
	}
	if pos := p.Pos(); pos != 5 {
		t.Errorf("wrong position, expected 5 but got %d", pos)
	}
}

func TestParserUInt24(t *testing.T) {
	p := newTestParser([]byte{0x01, 0x02, 0x03})
	v, err := p.ReadUInt24()
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x010203 {
		t.Errorf("wrong value, expected 0x010203 but got 0x%x", v)
	}
}

func TestParserErrorTagging(t *testing.T) {
	p := newTestParser([]byte{0x00})
	_, err := p.ReadUInt16()
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := err.Error(); got == "" {
		t.Fatal("expected a non-empty error message")
	}
}
