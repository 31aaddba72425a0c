package detector

import (
	"cmp"
	"slices"

	"langindexer/internal/pkg/langdata"
)

const docToteSize = 24

type docEntry struct {
	lang     langdata.Language
	bytes    int
	score    int
	relBytes int // sum of reliability * bytes
}

func (e docEntry) reliability() int {
	if e.bytes == 0 {
		return 0
	}
	return e.relBytes / e.bytes
}

// DocTote accumulates chunk verdicts over a whole document. When full, a
// new language replaces the entry with the fewest bytes if it has more.
type DocTote struct {
	entries []docEntry
}

// NewDocTote returns an empty DocTote.
func NewDocTote() *DocTote {
	return &DocTote{entries: make([]docEntry, 0, docToteSize)}
}

// Add credits lang with a chunk of the given size, score and reliability.
func (d *DocTote) Add(lang langdata.Language, bytes, score, reliability int) {
	for i := range d.entries {
		if e := &d.entries[i]; e.lang == lang {
			e.bytes += bytes
			e.score += score
			e.relBytes += reliability * bytes
			return
		}
	}
	e := docEntry{lang: lang, bytes: bytes, score: score, relBytes: reliability * bytes}
	if len(d.entries) < docToteSize {
		d.entries = append(d.entries, e)
		return
	}
	smallest := 0
	for i, cand := range d.entries {
		if cand.bytes < d.entries[smallest].bytes {
			smallest = i
		}
	}
	if bytes > d.entries[smallest].bytes {
		d.entries[smallest] = e
	}
}

// Bytes returns the bytes credited to lang.
func (d *DocTote) Bytes(lang langdata.Language) int {
	for _, e := range d.entries {
		if e.lang == lang {
			return e.bytes
		}
	}
	return 0
}

// Reliability returns the byte-weighted average reliability of lang.
func (d *DocTote) Reliability(lang langdata.Language) int {
	for _, e := range d.entries {
		if e.lang == lang {
			return e.reliability()
		}
	}
	return 0
}

// Len returns the number of languages held.
func (d *DocTote) Len() int {
	return len(d.entries)
}

// refineClosePairs folds the smaller member of each close-set pair into
// the larger one.
func (d *DocTote) refineClosePairs() {
	for i := 0; i < len(d.entries); i++ {
		for j := i + 1; j < len(d.entries); j++ {
			a, b := &d.entries[i], &d.entries[j]
			if !langdata.SameCloseSet(a.lang, b.lang) {
				continue
			}
			if b.bytes > a.bytes {
				a.lang = b.lang
			}
			a.bytes += b.bytes
			a.score += b.score
			a.relBytes += b.relBytes
			d.entries = slices.Delete(d.entries, j, j+1)
			j--
		}
	}
}

// removeUnreliable drops languages whose average reliability is below
// threshold.
func (d *DocTote) removeUnreliable(threshold int) {
	d.entries = slices.DeleteFunc(d.entries, func(e docEntry) bool {
		return e.reliability() < threshold
	})
}

// sorted returns the entries ordered by reliability-weighted bytes, then
// bytes, remaining ties kept in insertion order.
func (d *DocTote) sorted() []docEntry {
	out := slices.Clone(d.entries)
	slices.SortStableFunc(out, func(a, b docEntry) int {
		if c := cmp.Compare(b.relBytes, a.relBytes); c != 0 {
			return c
		}
		return cmp.Compare(b.bytes, a.bytes)
	})
	return out
}
