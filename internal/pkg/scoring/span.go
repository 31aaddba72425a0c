package scoring

import (
	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/scanner"
)

// ScoreSpan scores one span according to its script's recognition type and
// appends the chunk summaries to c.Summaries.
func ScoreSpan(c *Context, span scanner.Span) {
	c.Script = span.Script
	c.PriorChunkLang = langdata.Unknown

	rtype := span.Script.RecognitionType()
	if c.ForceQuads {
		rtype = langdata.RTypeMany
	}
	switch rtype {
	case langdata.RTypeNone, langdata.RTypeOne:
		bytes := span.LetterBytes()
		c.Summaries = append(c.Summaries, ChunkSummary{
			Offset:           1,
			Bytes:            bytes,
			Lang1:            langdata.DefaultLanguage(span.Script),
			Score1:           bytes,
			Script:           span.Script,
			ReliabilityDelta: maxReliability,
			ReliabilityScore: maxReliability,
		})
	case langdata.RTypeCJK:
		c.scorePasses(span, ChunkSizeUnis, true)
	default:
		c.scorePasses(span, ChunkSizeQuads, false)
	}
}

// scorePasses runs the hit generators over the span in passes of at most
// MaxScoringHits base hits, scoring every chunk of each pass.
func (c *Context) scorePasses(span scanner.Span, chunkSize int, cjk bool) {
	text := span.Text
	if len(text) > MaxSpanBytes {
		text = text[:MaxSpanBytes]
	}
	lo, hi := 1, min(span.End(), len(text))
	defaultLang := langdata.PerScriptNumber(span.Script, langdata.DefaultLanguage(span.Script))
	set, hb := c.Tables, c.hb

	for {
		hb.Reset()
		var next int
		if cjk {
			next = GetUniHits(text, lo, hi, set, hb)
			GetBiHits(text, lo, next, set, hb)
			Linearize(hb, set.Uni, set.Bi, nil, defaultLang)
		} else {
			next = GetQuadHits(text, lo, hi, set, hb)
			GetOctaHits(text, lo, next, set, hb)
			Linearize(hb, set.Quad, set.Octa, set.Distinct, defaultLang)
		}
		ChunkAll(hb, chunkSize)
		for i := 0; i+1 < len(hb.ChunkStart); i++ {
			c.Summaries = append(c.Summaries, ScoreOneChunk(c, i))
		}
		if next >= hi || next <= lo {
			return
		}
		lo = next
	}
}
