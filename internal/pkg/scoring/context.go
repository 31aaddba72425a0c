package scoring

import (
	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/tables"
)

// Context carries the scoring state of one document: the tables, the boost
// rings that persist from chunk to chunk, the chunk summaries produced so
// far and the reusable hit buffer. A Context must not be shared between
// goroutines.
type Context struct {
	Tables     *tables.Set
	ForceQuads bool

	// Script is the script of the span being scored.
	Script langdata.Script
	// PriorChunkLang is the verdict of the previous chunk in the span.
	PriorChunkLang langdata.Language

	LangPriorBoost [langdata.NumFamilies]BoostRing
	LangPriorWhack [langdata.NumFamilies]BoostRing
	DistinctBoost  [langdata.NumFamilies]BoostRing

	Summaries []ChunkSummary

	hb      *HitBuffer
	tote    Tote
	pending []Boost
}

// NewContext returns a context scoring against set. forceQuads scores
// every script with quadgrams.
func NewContext(set *tables.Set, forceQuads bool) *Context {
	return &Context{
		Tables:     set,
		ForceQuads: forceQuads,
		hb:         NewHitBuffer(),
		Summaries:  make([]ChunkSummary, 0, 16),
	}
}

// BoostLanguage adds a prior vote for lang to every script family it is
// written in.
func (c *Context) BoostLanguage(lang langdata.Language, prob uint8) {
	c.eachFamily(lang, func(f langdata.ScriptFamily) {
		c.LangPriorBoost[f].Push(Boost{Lang: lang, Prob: prob})
	})
}

// WhackLanguage zeroes lang's score in every chunk of the families it is
// written in.
func (c *Context) WhackLanguage(lang langdata.Language) {
	c.eachFamily(lang, func(f langdata.ScriptFamily) {
		c.LangPriorWhack[f].Push(Boost{Lang: lang})
	})
}

func (c *Context) eachFamily(lang langdata.Language, fn func(langdata.ScriptFamily)) {
	var seen [langdata.NumFamilies]bool
	for s := langdata.Script(0); s < langdata.NumScripts; s++ {
		if langdata.PerScriptNumber(s, lang) == 0 {
			continue
		}
		if f := s.Family(); !seen[f] {
			seen[f] = true
			fn(f)
		}
	}
}

// applyBoosts adds the prior and distinct boosts of the current family to
// the tote, then applies the whacks.
func (c *Context) applyBoosts(t *Tote) {
	fam := c.Script.Family()
	add := func(b Boost) {
		if ps := langdata.PerScriptNumber(c.Script, b.Lang); ps != 0 {
			t.Add(ps, int(b.Prob))
		}
	}
	c.LangPriorBoost[fam].Each(add)
	c.DistinctBoost[fam].Each(add)
	c.LangPriorWhack[fam].Each(func(b Boost) {
		if ps := langdata.PerScriptNumber(c.Script, b.Lang); ps != 0 {
			t.SetScore(ps, 0)
		}
	})
}
