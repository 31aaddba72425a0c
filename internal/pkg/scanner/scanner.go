// Package scanner splits UTF-8 text into spans of a single script. Each span
// is copied into a scratch buffer with markup removed, every run of
// non-letters collapsed to one space, a leading space and three trailing
// spaces.
//
// A Scanner is not safe for concurrent use. The Span it returns borrows the
// scanner's buffers and is only valid until the next call.
package scanner

import (
	"bytes"
	"html"
	"unicode"
	"unicode/utf8"

	"langindexer/internal/pkg/langdata"
)

const (
	// MaxScriptBuffer is the size of the span scratch buffer.
	MaxScriptBuffer = 40 * 1024

	padBytes       = 3
	softSlack      = 256
	maxEntityBytes = 12
	maxTagBytes    = 1024
	hardLimit      = MaxScriptBuffer - padBytes - utf8.UTFMax
	softLimit      = hardLimit - softSlack
)

// Options control markup handling.
type Options struct {
	// PlainText disables tag skipping and entity decoding.
	PlainText bool
}

type anchor struct {
	at int
	to int
}

// Span is one run of same-script text.
type Span struct {
	Text      []byte
	Script    langdata.Script
	Lang      langdata.Language
	Truncated bool

	toRaw []anchor
	toSrc []anchor
}

// LetterBytes is the length of the span text without its padding.
func (s Span) LetterBytes() int {
	if n := len(s.Text) - 1 - padBytes; n > 0 {
		return n
	}
	return 0
}

// End is the offset one past the last letter of the span.
func (s Span) End() int {
	return 1 + s.LetterBytes()
}

// SourceOffset maps an offset in s.Text back to a byte offset in the
// scanned source.
func (s Span) SourceOffset(off int) int {
	if s.toRaw != nil {
		off = mapBack(s.toRaw, off)
	}
	return mapBack(s.toSrc, off)
}

func mapBack(m []anchor, off int) int {
	lo, hi := 0, len(m)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if m[mid].at <= off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return off
	}
	a := m[lo-1]
	return a.to + off - a.at
}

// Scanner produces script spans from a source text.
type Scanner struct {
	src  []byte
	pos  int
	opts Options

	raw      []byte
	rawMap   []anchor
	delta    int
	lower    []byte
	lowerMap []anchor
}

// New returns a scanner over src.
func New(src []byte, opts Options) *Scanner {
	return &Scanner{
		src:  src,
		opts: opts,
		raw:  make([]byte, 0, 1024),
	}
}

// Next returns the next span, or false once the source holds no more
// letters.
func (s *Scanner) Next() (Span, bool) {
	first, ok := s.skipToLetter()
	if !ok {
		return Span{}, false
	}
	script := langdata.ScriptOf(first)
	limit := s.limit()

	s.raw = append(s.raw[:0], ' ')
	s.rawMap = append(s.rawMap[:0], anchor{0, s.pos})
	s.delta = s.pos
	gap := -1
	truncated := false

	for s.pos < len(s.src) {
		n := len(s.raw)
		if n >= hardLimit || (n >= limit && (gap >= 0 || n >= limit+softSlack)) {
			truncated = true
			break
		}
		r, size, decoded := s.decode()
		if r < 0 || !isLetter(r) {
			if gap < 0 {
				gap = s.pos
			}
			s.pos += size
			continue
		}
		if rs := langdata.ScriptOf(r); rs != script && !neutral(rs) && !s.returnsTo(s.pos+size, script) {
			break
		}
		if gap >= 0 {
			if s.raw[len(s.raw)-1] != ' ' {
				s.anchor(gap)
				s.raw = append(s.raw, ' ')
			}
			gap = -1
		}
		s.anchor(s.pos)
		if decoded {
			s.raw = utf8.AppendRune(s.raw, r)
		} else {
			s.raw = append(s.raw, s.src[s.pos:s.pos+size]...)
		}
		s.pos += size
	}
	s.raw = append(s.raw, "   "...)

	return Span{
		Text:      s.raw,
		Script:    script,
		Lang:      langdata.DefaultLanguage(script),
		Truncated: truncated,
		toSrc:     s.rawMap,
	}, true
}

// NextLower is Next with Latin, Cyrillic, Armenian and Greek spans
// lowercased into a second buffer.
func (s *Scanner) NextLower() (Span, bool) {
	span, ok := s.Next()
	if !ok {
		return span, false
	}
	switch span.Script {
	case langdata.ScriptLatin, langdata.ScriptCyrillic, langdata.ScriptArmenian, langdata.ScriptGreek:
	default:
		return span, true
	}

	s.lower = s.lower[:0]
	s.lowerMap = append(s.lowerMap[:0], anchor{0, 0})
	delta := 0
	text := span.Text
	for i := 0; i < len(text); {
		if out := len(s.lower); i-out != delta {
			s.lowerMap = append(s.lowerMap, anchor{out, i})
			delta = i - out
		}
		c := text[i]
		if c < utf8.RuneSelf {
			if 'A' <= c && c <= 'Z' {
				c += 'a' - 'A'
			}
			s.lower = append(s.lower, c)
			i++
			continue
		}
		r, size := utf8.DecodeRune(text[i:])
		s.lower = utf8.AppendRune(s.lower, unicode.ToLower(r))
		i += size
	}
	span.Text = s.lower
	span.toRaw = s.lowerMap
	return span, true
}

func (s *Scanner) anchor(src int) {
	out := len(s.raw)
	if src-out != s.delta {
		s.rawMap = append(s.rawMap, anchor{out, src})
		s.delta = src - out
	}
}

// limit picks the soft output limit for the span starting at s.pos. When
// between one and two buffer-fulls remain they are split evenly.
func (s *Scanner) limit() int {
	rem := len(s.src) - s.pos
	if rem > softLimit && rem < 2*softLimit {
		return rem / 2
	}
	return softLimit
}

func (s *Scanner) skipToLetter() (rune, bool) {
	for s.pos < len(s.src) {
		r, size, _ := s.decode()
		if r >= 0 && unicode.IsLetter(r) && !neutral(langdata.ScriptOf(r)) {
			return r, true
		}
		s.pos += size
	}
	return 0, false
}

// returnsTo reports whether the rune at off is in script or neutral.
func (s *Scanner) returnsTo(off int, script langdata.Script) bool {
	if off >= len(s.src) {
		return true
	}
	r, _ := utf8.DecodeRune(s.src[off:])
	rs := langdata.ScriptOf(r)
	return rs == script || neutral(rs)
}

// decode reads the item at s.pos. It returns r < 0 for skipped markup and
// utf8.RuneError for invalid bytes; decoded is set when r came from an
// entity rather than the source bytes.
func (s *Scanner) decode() (r rune, size int, decoded bool) {
	c := s.src[s.pos]
	if !s.opts.PlainText {
		switch c {
		case '<':
			if n := s.tagLen(); n > 0 {
				return -1, n, false
			}
		case '&':
			if r, n := s.entity(); n > 0 {
				return r, n, true
			}
		}
	}
	if c < utf8.RuneSelf {
		return rune(c), 1, false
	}
	r, size = utf8.DecodeRune(s.src[s.pos:])
	return r, size, false
}

var (
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
	scriptClose  = []byte("</script")
	styleClose   = []byte("</style")
)

// tagLen returns the byte length of the tag, comment, or script/style
// element at s.pos, or 0 if '<' does not start one.
func (s *Scanner) tagLen() int {
	rest := s.src[s.pos:]
	if len(rest) < 2 {
		return 0
	}
	if bytes.HasPrefix(rest, commentOpen) {
		if i := bytes.Index(rest[len(commentOpen):], commentClose); i >= 0 {
			return len(commentOpen) + i + len(commentClose)
		}
		return len(rest)
	}
	c := rest[1]
	if !(c == '/' || c == '!' || c == '?' || ('a' <= c|0x20 && c|0x20 <= 'z')) {
		return 0
	}
	end := bytes.IndexByte(rest[:min(len(rest), maxTagBytes)], '>')
	if end < 0 {
		return 0
	}
	end++
	var closer []byte
	switch {
	case hasPrefixFold(rest[1:], "script"):
		closer = scriptClose
	case hasPrefixFold(rest[1:], "style"):
		closer = styleClose
	default:
		return end
	}
	i := indexFold(rest[end:], closer)
	if i < 0 {
		return len(rest)
	}
	j := bytes.IndexByte(rest[end+i:], '>')
	if j < 0 {
		return len(rest)
	}
	return end + i + j + 1
}

// entity decodes the character reference at s.pos.
func (s *Scanner) entity() (rune, int) {
	rest := s.src[s.pos:]
	semi := bytes.IndexByte(rest[:min(len(rest), maxEntityBytes)], ';')
	if semi < 2 {
		return 0, 0
	}
	ref := string(rest[:semi+1])
	dec := html.UnescapeString(ref)
	if dec == ref {
		return 0, 0
	}
	r, _ := utf8.DecodeRuneInString(dec)
	return r, semi + 1
}

func hasPrefixFold(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && bytes.EqualFold(b[:len(prefix)], []byte(prefix))
}

func indexFold(b, sep []byte) int {
	for i := 0; i+len(sep) <= len(b); i++ {
		if b[i] == '<' && bytes.EqualFold(b[i:i+len(sep)], sep) {
			return i
		}
	}
	return -1
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r)
}

func neutral(s langdata.Script) bool {
	return s == langdata.ScriptCommon || s == langdata.ScriptInherited
}
