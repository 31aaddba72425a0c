// Package tables holds the n-gram frequency tables the detector scores
// against, and the expected score density of each language.
//
// Tables are trained once per process from the embedded corpus (see
// Default) and are read-only afterwards, so a *Set may be shared by any
// number of goroutines.
package tables

import (
	"cmp"
	"slices"

	"github.com/cloudflare/ahocorasick"

	"langindexer/internal/pkg/langdata"
)

// LangProb is one language's vote for an n-gram. Lang is a per-script
// language number (see langdata.PerScriptNumber); Prob is a quantized log
// probability, higher meaning more typical.
type LangProb struct {
	Lang uint8
	Prob uint8
}

// ProbSet holds the votes of up to three languages for one n-gram.
type ProbSet struct {
	N     uint8
	Probs [3]LangProb
}

// Empty reports whether the set carries no non-zero vote.
func (p ProbSet) Empty() bool {
	for i := 0; i < int(p.N); i++ {
		if p.Probs[i].Prob != 0 {
			return false
		}
	}
	return true
}

// Single returns a ProbSet with one vote.
func Single(lang, prob uint8) ProbSet {
	return ProbSet{N: 1, Probs: [3]LangProb{{Lang: lang, Prob: prob}}}
}

type entry struct {
	sets [2]ProbSet
	n    uint8
}

// Table maps n-gram keys to indirect indexes, and indirect indexes to one
// or two ProbSets. Index 0 is never assigned and means "not found".
type Table struct {
	Name    string
	index   map[uint64]uint32
	entries []entry
}

func newTable(name string) *Table {
	return &Table{
		Name:    name,
		index:   make(map[uint64]uint32),
		entries: make([]entry, 1),
	}
}

// Lookup returns the indirect index for key, or 0.
func (t *Table) Lookup(key uint64) uint32 {
	return t.index[key]
}

// Decode returns the ProbSets stored at an indirect index. The result must
// not be modified.
func (t *Table) Decode(indirect uint32) []ProbSet {
	if indirect == 0 || int(indirect) >= len(t.entries) {
		return nil
	}
	e := &t.entries[indirect]
	return e.sets[:e.n]
}

// Len returns the number of n-grams in the table.
func (t *Table) Len() int {
	return len(t.entries) - 1
}

// insert stores up to six votes, strongest first, as one or two ProbSets.
func (t *Table) insert(key uint64, votes []LangProb) {
	if len(votes) == 0 {
		return
	}
	slices.SortStableFunc(votes, func(a, b LangProb) int {
		return cmp.Compare(b.Prob, a.Prob)
	})
	var e entry
	for i, v := range votes[:min(len(votes), 6)] {
		set := &e.sets[i/3]
		set.Probs[set.N] = v
		set.N++
	}
	e.n = 1
	if e.sets[1].N > 0 {
		e.n = 2
	}
	t.index[key] = uint32(len(t.entries))
	t.entries = append(t.entries, e)
}

type expectedKey struct {
	lang   langdata.Language
	family langdata.ScriptFamily
}

// Set is the complete collection of tables used by the detector.
type Set struct {
	// Quad is the base table for alphabetic scripts.
	Quad *Table
	// Octa holds word keys skewed to a few languages (delta hits).
	Octa *Table
	// Distinct holds words seen in exactly one language.
	Distinct *Table
	// Uni is the base table for CJK.
	Uni *Table
	// Bi holds CJK bigrams skewed to a few languages (delta hits).
	Bi *Table

	distinct *ahocorasick.Matcher
	expected map[expectedKey]int
}

// ExpectedScore returns the typical score per KiB of text for lang in the
// given script family, or 0 when there is no calibration data.
func (s *Set) ExpectedScore(lang langdata.Language, family langdata.ScriptFamily) int {
	return s.expected[expectedKey{lang, family}]
}

// MayHaveDistinct reports whether text contains any distinct word. text
// must include the spaces around its first and last words.
func (s *Set) MayHaveDistinct(text []byte) bool {
	if s.distinct == nil {
		return false
	}
	return len(s.distinct.MatchThreadSafe(text)) > 0
}
