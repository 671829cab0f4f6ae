// Package source defines source text, positions, and the rune reader used by the lexer.
package source

import (
	"bytes"
	"unicode/utf8"
)

// Source holds one compilation unit: a named, immutable byte content
// with an index of line starts for position mapping.
type Source struct {
	name       string
	content    []byte
	lineStarts []int
}

// New creates a Source and builds its line index.
func New(name string, content []byte) *Source {
	s := &Source{name: name, content: content}
	lineCnt := bytes.Count(content, []byte("\n")) + 1
	s.lineStarts = make([]int, 1, lineCnt)
	s.lineStarts[0] = 0
	for i, b := range content {
		if b == '\n' {
			s.lineStarts = append(s.lineStarts, i+1)
		}
	}
	return s
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Content() []byte {
	return s.content
}

func (s *Source) Len() int {
	return len(s.content)
}

// LineCol maps a byte offset to 1-based line and column numbers.
// Columns count runes, not bytes.
func (s *Source) LineCol(pos int) (line, col int) {
	if pos < 0 {
		pos = 0
	} else if pos > len(s.content) {
		pos = len(s.content)
	}

	lineIndex := s.findLineIndex(pos)
	lineStart := s.lineStarts[lineIndex]
	return lineIndex + 1, utf8.RuneCount(s.content[lineStart:pos]) + 1
}

func (s *Source) findLineIndex(pos int) int {
	left, right := 0, len(s.lineStarts)-1
	for left < right {
		mid := (left + right + 1) >> 1
		if s.lineStarts[mid] <= pos {
			left = mid
		} else {
			right = mid - 1
		}
	}
	return left
}

// Pos is a resolved position inside a Source.
type Pos struct {
	src       *Source
	pos       int
	line, col int
}

// NewPos resolves a byte offset into a Pos.
func NewPos(src *Source, pos int) Pos {
	line, col := 0, 0
	if src != nil {
		line, col = src.LineCol(pos)
	}
	return Pos{src, pos, line, col}
}

func (p Pos) Source() *Source {
	return p.src
}

func (p Pos) Pos() int {
	return p.pos
}

func (p Pos) Line() int {
	return p.line
}

func (p Pos) Col() int {
	return p.col
}

func (p Pos) SourceName() string {
	if p.src == nil {
		return ""
	}
	return p.src.Name()
}

// Reader is a rune cursor over a Source with incremental line and
// column tracking. It is the lexer's only view of the text.
type Reader struct {
	src       *Source
	pos       int
	line, col int
}

// NewReader creates a Reader positioned at the start of src.
func NewReader(src *Source) *Reader {
	return &Reader{src: src, line: 1, col: 1}
}

func (r *Reader) Source() *Source {
	return r.src
}

// AtEnd reports whether the whole content has been consumed.
func (r *Reader) AtEnd() bool {
	return r.pos >= len(r.src.content)
}

// Peek returns the rune at the current position without advancing,
// or 0 at the end of content.
func (r *Reader) Peek() rune {
	if r.AtEnd() {
		return 0
	}
	c, _ := utf8.DecodeRune(r.src.content[r.pos:])
	return c
}

// PeekAt returns the rune n runes ahead of the current position
// without advancing, or 0 past the end of content.
func (r *Reader) PeekAt(n int) rune {
	pos := r.pos
	for ; n > 0; n-- {
		if pos >= len(r.src.content) {
			return 0
		}
		_, size := utf8.DecodeRune(r.src.content[pos:])
		pos += size
	}
	if pos >= len(r.src.content) {
		return 0
	}
	c, _ := utf8.DecodeRune(r.src.content[pos:])
	return c
}

// Next consumes and returns the rune at the current position,
// or 0 at the end of content.
func (r *Reader) Next() rune {
	if r.AtEnd() {
		return 0
	}
	c, size := utf8.DecodeRune(r.src.content[r.pos:])
	r.pos += size
	if c == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return c
}

// Offset returns the current byte offset.
func (r *Reader) Offset() int {
	return r.pos
}

// Slice returns raw content between two byte offsets.
func (r *Reader) Slice(from, to int) []byte {
	return r.src.content[from:to]
}

func (r *Reader) Line() int {
	return r.line
}

func (r *Reader) Col() int {
	return r.col
}

// SourcePos captures the current position as a Pos value.
func (r *Reader) SourcePos() Pos {
	return Pos{r.src, r.pos, r.line, r.col}
}
