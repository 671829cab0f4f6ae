package source

import (
	"testing"
)

func TestLineCol(t *testing.T) {
	content := "foo\nbar baz\n\nqux"
	src := New("test", []byte(content))
	samples := []struct {
		pos, line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 1, 4},
		{4, 2, 1},
		{8, 2, 5},
		{11, 2, 8},
		{12, 3, 1},
		{13, 4, 1},
		{16, 4, 4},
		{-1, 1, 1},
		{100, 4, 4},
	}
	for i, s := range samples {
		line, col := src.LineCol(s.pos)
		if line != s.line || col != s.col {
			t.Errorf("sample #%d: pos %d: expecting %d:%d, got %d:%d", i, s.pos, s.line, s.col, line, col)
		}
	}
}

func TestLineColCountsRunes(t *testing.T) {
	src := New("test", []byte("héllo\n日本語 x"))
	samples := []struct {
		pos, line, col int
	}{
		{6, 1, 6},  // after "héllo" (é is 2 bytes)
		{7, 2, 1},  // start of second line
		{16, 2, 4}, // after three 3-byte runes
	}
	for i, s := range samples {
		line, col := src.LineCol(s.pos)
		if line != s.line || col != s.col {
			t.Errorf("sample #%d: pos %d: expecting %d:%d, got %d:%d", i, s.pos, s.line, s.col, line, col)
		}
	}
}

func TestReader(t *testing.T) {
	src := New("test", []byte("ab\nc"))
	r := NewReader(src)
	if r.Peek() != 'a' || r.PeekAt(1) != 'b' || r.PeekAt(2) != '\n' || r.PeekAt(3) != 'c' || r.PeekAt(4) != 0 {
		t.Fatalf("unexpected peeks at start")
	}
	expected := []struct {
		c         rune
		line, col int
	}{
		{'a', 1, 2},
		{'b', 1, 3},
		{'\n', 2, 1},
		{'c', 2, 2},
	}
	for i, e := range expected {
		c := r.Next()
		if c != e.c {
			t.Fatalf("step %d: expecting %q, got %q", i, e.c, c)
		}
		if r.Line() != e.line || r.Col() != e.col {
			t.Fatalf("step %d: expecting pos %d:%d, got %d:%d", i, e.line, e.col, r.Line(), r.Col())
		}
	}
	if !r.AtEnd() || r.Next() != 0 {
		t.Fatalf("expecting end of content")
	}
}

func TestReaderMultibyte(t *testing.T) {
	src := New("test", []byte("日x"))
	r := NewReader(src)
	if c := r.Next(); c != '日' {
		t.Fatalf("expecting 日, got %q", c)
	}
	if r.Offset() != 3 {
		t.Fatalf("expecting byte offset 3, got %d", r.Offset())
	}
	if r.Col() != 2 {
		t.Fatalf("multibyte rune must advance col by 1, got %d", r.Col())
	}
}
