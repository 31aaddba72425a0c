package scoring

import (
	"langindexer/internal/pkg/langdata"
)

const (
	minGramsForFullReliability = 8
	maxReliability             = 100

	// Below this ratio between actual and expected score the chunk is fully
	// reliable; above the upper ratio it is not reliable at all.
	ratioFullyReliable = 1.5
	ratioUnreliable    = 4.0
)

// ChunkSummary is the verdict for one chunk of a span.
type ChunkSummary struct {
	// Offset is the span offset of the first byte of the chunk.
	Offset int
	// ChunkStart is the index of the chunk's first linear hit.
	ChunkStart int
	Bytes      int
	Lang1      langdata.Language
	Lang2      langdata.Language
	Score1     int
	Score2     int
	GramCount  int
	Script     langdata.Script

	ReliabilityDelta int
	ReliabilityScore int
}

// Reliability is the lower of the two reliability measures.
func (s ChunkSummary) Reliability() int {
	return min(s.ReliabilityDelta, s.ReliabilityScore)
}

// ReliabilityDelta rates the lead of the best language over the second.
// Chunks with fewer than eight grams are capped at 12% per gram.
func ReliabilityDelta(score1, score2, grams int) int {
	limit := maxReliability
	if grams < minGramsForFullReliability {
		limit = 12 * grams
	}
	thresh := min(max((grams*5)>>3, 3), 16)
	delta := score1 - score2
	switch {
	case delta >= thresh:
		return limit
	case delta <= 0:
		return 0
	}
	return min(limit, maxReliability*delta/thresh)
}

// ReliabilityExpected rates how close the actual score per KiB is to the
// language's expected score per KiB. No expectation means full reliability.
func ReliabilityExpected(actual, expected int) int {
	if expected == 0 {
		return maxReliability
	}
	if actual == 0 {
		return 0
	}
	lo, hi := min(actual, expected), max(actual, expected)
	ratio := float64(hi) / float64(lo)
	switch {
	case ratio <= ratioFullyReliable:
		return maxReliability
	case ratio > ratioUnreliable:
		return 0
	}
	return int(maxReliability * (ratioUnreliable - ratio) / (ratioUnreliable - ratioFullyReliable))
}

// ScoreOneChunk votes chunk i of the context's hit buffer.
func ScoreOneChunk(c *Context, i int) ChunkSummary {
	hb := c.hb
	first, last := hb.ChunkStart[i], hb.ChunkStart[i+1]
	fam := c.Script.Family()
	t := &c.tote
	t.Reinit()
	c.pending = c.pending[:0]

	grams := 0
	for _, lh := range hb.Linear[first:last] {
		t.AddProbSet(lh.Probs)
		switch lh.Kind {
		case KindBase:
			grams++
		case KindDistinct:
			for _, lp := range lh.Probs.Probs[:lh.Probs.N] {
				c.pending = append(c.pending, Boost{
					Lang: langdata.FromPerScriptNumber(c.Script, lp.Lang),
					Prob: lp.Prob,
				})
			}
		}
	}
	c.applyBoosts(t)
	for _, b := range c.pending {
		c.DistinctBoost[fam].Push(b)
	}

	keys, scores := t.Top3()
	sum := ChunkSummary{
		Offset:     hb.Linear[first].Offset,
		ChunkStart: first,
		Bytes:      max(hb.Linear[last].Offset-hb.Linear[first].Offset, 1),
		Lang1:      langdata.FromPerScriptNumber(c.Script, keys[0]),
		Lang2:      langdata.FromPerScriptNumber(c.Script, keys[1]),
		Score1:     scores[0],
		Score2:     scores[1],
		GramCount:  grams,
		Script:     c.Script,
	}
	actual := (sum.Score1 << 10) / sum.Bytes
	sum.ReliabilityDelta = ReliabilityDelta(sum.Score1, sum.Score2, grams)
	if langdata.SameCloseSet(sum.Lang1, sum.Lang2) {
		sum.ReliabilityDelta = maxReliability
	}
	sum.ReliabilityScore = ReliabilityExpected(actual, c.Tables.ExpectedScore(sum.Lang1, fam))
	c.PriorChunkLang = sum.Lang1
	return sum
}
