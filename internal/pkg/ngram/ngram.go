// Package ngram walks scanner span text and cuts it into the grams the
// detector scores: padded quadgrams and word keys for alphabetic scripts,
// unigrams and bigrams for CJK. Training and scoring both go through this
// package so that table keys and hit keys always agree.
//
// Span text has a leading space, words separated by single spaces and three
// trailing spaces.
package ngram

import (
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

const (
	// OctaRunes is the number of leading runes of a word used as a delta key.
	OctaRunes = 8
	// MaxWordBytes caps the length of a distinct-word key.
	MaxWordBytes = 48
	// RepeatWindow is how many recent keys a RepeatFilter remembers.
	RepeatWindow = 4
)

// Key hashes a gram.
func Key(gram []byte) uint64 {
	return xxhash.Sum64(gram)
}

// NextWord returns the bounds of the first word that starts at or after pos
// and before hi.
func NextWord(text []byte, pos, hi int) (start, end int, ok bool) {
	for pos < hi && text[pos] == ' ' {
		pos++
	}
	if pos >= hi {
		return 0, 0, false
	}
	start = pos
	for pos < len(text) && text[pos] != ' ' {
		pos++
	}
	return start, pos, true
}

// Quads calls fn for each quadgram of the word text[start:end]. The word is
// padded with the spaces at text[start-1] and text[end]; windows are four
// runes wide and start every second rune, the last one ending on the pad.
func Quads(text []byte, start, end int, fn func(off int, gram []byte)) {
	lo, hi := start-1, end+1
	if lo < 0 || hi > len(text) {
		return
	}
	i := lo
	for {
		j := advance(text, i, 4, hi)
		fn(i, text[i:j])
		if j >= hi {
			return
		}
		i = advance(text, i, 2, hi)
	}
}

// OctaKey returns the first OctaRunes runes of word.
func OctaKey(word []byte) []byte {
	return word[:advance(word, 0, OctaRunes, len(word))]
}

// WordKey returns word, cut at a rune boundary if it exceeds MaxWordBytes.
func WordKey(word []byte) []byte {
	if len(word) <= MaxWordBytes {
		return word
	}
	n := MaxWordBytes
	for n > 0 && !utf8.RuneStart(word[n]) {
		n--
	}
	return word[:n]
}

// Unigrams calls fn for every non-space rune in text[lo:hi].
func Unigrams(text []byte, lo, hi int, fn func(off int, gram []byte)) {
	for i := lo; i < hi; {
		_, sz := utf8.DecodeRune(text[i:hi])
		if text[i] != ' ' {
			fn(i, text[i:i+sz])
		}
		i += sz
	}
}

// Bigrams calls fn for every pair of adjacent non-space runes in text[lo:hi].
func Bigrams(text []byte, lo, hi int, fn func(off int, gram []byte)) {
	prev := -1
	for i := lo; i < hi; {
		_, sz := utf8.DecodeRune(text[i:hi])
		if text[i] == ' ' {
			prev = -1
		} else {
			if prev >= 0 {
				fn(prev, text[prev:i+sz])
			}
			prev = i
		}
		i += sz
	}
}

// advance moves n runes forward from i without passing hi.
func advance(text []byte, i, n, hi int) int {
	for k := 0; k < n && i < hi; k++ {
		if text[i] < utf8.RuneSelf {
			i++
			continue
		}
		_, sz := utf8.DecodeRune(text[i:hi])
		i += sz
	}
	return i
}

// RepeatFilter suppresses grams that repeat one of the last few grams of
// the same stream. The zero value is ready to use.
type RepeatFilter struct {
	keys [RepeatWindow]uint64
	n    int
	next int
}

// Repeat reports whether key is among the remembered keys. Keys that are
// not get remembered, evicting the oldest.
func (f *RepeatFilter) Repeat(key uint64) bool {
	for i := 0; i < f.n; i++ {
		if f.keys[i] == key {
			return true
		}
	}
	f.keys[f.next] = key
	f.next = (f.next + 1) % RepeatWindow
	if f.n < RepeatWindow {
		f.n++
	}
	return false
}

// Reset forgets all keys.
func (f *RepeatFilter) Reset() {
	*f = RepeatFilter{}
}
