// Package scoring turns one script span into chunk verdicts. Hit generators
// look span grams up in the tables, Linearize merges the resulting hit
// streams into offset order, ChunkAll cuts the stream into chunks and
// ScoreOneChunk votes each chunk with a Tote.
package scoring

import (
	"langindexer/internal/pkg/ngram"
	"langindexer/internal/pkg/tables"
)

const (
	// MaxScoringHits bounds the base hits gathered in one pass over a span.
	MaxScoringHits = 1000
	// MaxSpanBytes bounds the span text the generators accept.
	MaxSpanBytes = 64 * 1024
)

// HitKind tells which table produced a hit.
type HitKind uint8

const (
	KindBase HitKind = iota
	KindDelta
	KindDistinct
	// KindDefault marks the synthetic default-language entry.
	KindDefault
	// KindSentinel marks the entry one past the last hit.
	KindSentinel
)

func (k HitKind) String() string {
	switch k {
	case KindBase:
		return "base"
	case KindDelta:
		return "delta"
	case KindDistinct:
		return "distinct"
	case KindDefault:
		return "default"
	case KindSentinel:
		return "sentinel"
	}
	return "unknown"
}

// Hit is a table match at a span offset.
type Hit struct {
	Offset   int
	Indirect uint32
}

// LinearHit is one decoded vote in the merged stream.
type LinearHit struct {
	Offset int
	Kind   HitKind
	Probs  tables.ProbSet
}

// HitBuffer holds the hits of one pass and their linearized, chunked form.
// The last Base element is always a sentinel whose offset is where the
// pass stopped.
type HitBuffer struct {
	Base     []Hit
	Delta    []Hit
	Distinct []Hit

	Linear     []LinearHit
	ChunkStart []int
}

// NewHitBuffer returns an empty buffer sized for one pass.
func NewHitBuffer() *HitBuffer {
	return &HitBuffer{
		Base:       make([]Hit, 0, MaxScoringHits+64),
		Delta:      make([]Hit, 0, MaxScoringHits),
		Distinct:   make([]Hit, 0, MaxScoringHits),
		Linear:     make([]LinearHit, 0, 2*MaxScoringHits),
		ChunkStart: make([]int, 0, MaxScoringHits/ChunkSizeQuads+2),
	}
}

// Reset empties the buffer for the next pass.
func (hb *HitBuffer) Reset() {
	hb.Base = hb.Base[:0]
	hb.Delta = hb.Delta[:0]
	hb.Distinct = hb.Distinct[:0]
	hb.Linear = hb.Linear[:0]
	hb.ChunkStart = hb.ChunkStart[:0]
}

// GetQuadHits appends base hits for the quadgrams of the words in
// text[lo:hi]. It stops at a word boundary once MaxScoringHits base hits
// are buffered, appends the sentinel, and returns the offset it stopped at.
func GetQuadHits(text []byte, lo, hi int, set *tables.Set, hb *HitBuffer) int {
	var rep ngram.RepeatFilter
	pos := lo
	for len(hb.Base) < MaxScoringHits {
		start, end, ok := ngram.NextWord(text, pos, hi)
		if !ok {
			pos = hi
			break
		}
		ngram.Quads(text, start, end, func(off int, gram []byte) {
			key := ngram.Key(gram)
			if rep.Repeat(key) {
				return
			}
			if ind := set.Quad.Lookup(key); ind != 0 {
				hb.Base = append(hb.Base, Hit{Offset: off, Indirect: ind})
			}
		})
		pos = end
	}
	hb.Base = append(hb.Base, Hit{Offset: pos})
	return pos
}

// GetOctaHits appends delta hits for word keys and distinct hits for
// distinct words in text[lo:hi].
func GetOctaHits(text []byte, lo, hi int, set *tables.Set, hb *HitBuffer) {
	var octaRep, distRep ngram.RepeatFilter
	distinct := set.Distinct.Len() > 0 && set.MayHaveDistinct(text[max(lo-1, 0):min(hi+1, len(text))])
	for pos := lo; ; {
		start, end, ok := ngram.NextWord(text, pos, hi)
		if !ok {
			return
		}
		word := text[start:end]
		if key := ngram.Key(ngram.OctaKey(word)); !octaRep.Repeat(key) {
			if ind := set.Octa.Lookup(key); ind != 0 {
				hb.Delta = append(hb.Delta, Hit{Offset: start, Indirect: ind})
			}
		}
		if distinct {
			if key := ngram.Key(ngram.WordKey(word)); !distRep.Repeat(key) {
				if ind := set.Distinct.Lookup(key); ind != 0 {
					hb.Distinct = append(hb.Distinct, Hit{Offset: start, Indirect: ind})
				}
			}
		}
		pos = end
	}
}

// GetUniHits is the CJK counterpart of GetQuadHits, one hit per character.
func GetUniHits(text []byte, lo, hi int, set *tables.Set, hb *HitBuffer) int {
	var rep ngram.RepeatFilter
	pos := hi
	ngram.Unigrams(text, lo, hi, func(off int, gram []byte) {
		if pos != hi {
			return
		}
		if len(hb.Base) >= MaxScoringHits {
			pos = off
			return
		}
		key := ngram.Key(gram)
		if rep.Repeat(key) {
			return
		}
		if ind := set.Uni.Lookup(key); ind != 0 {
			hb.Base = append(hb.Base, Hit{Offset: off, Indirect: ind})
		}
	})
	hb.Base = append(hb.Base, Hit{Offset: pos})
	return pos
}

// GetBiHits appends delta hits for CJK character pairs in text[lo:hi].
func GetBiHits(text []byte, lo, hi int, set *tables.Set, hb *HitBuffer) {
	var rep ngram.RepeatFilter
	ngram.Bigrams(text, lo, hi, func(off int, gram []byte) {
		key := ngram.Key(gram)
		if rep.Repeat(key) {
			return
		}
		if ind := set.Bi.Lookup(key); ind != 0 {
			hb.Delta = append(hb.Delta, Hit{Offset: off, Indirect: ind})
		}
	})
}
