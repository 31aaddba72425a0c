package tables

import (
	"embed"
	"fmt"
	"io/fs"
	"math"
	"path"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/cloudflare/ahocorasick"

	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/ngram"
	"langindexer/internal/pkg/scanner"
)

const (
	// Probability codes are round(2*log2(probScale * c / (total + smoothing))).
	probScale = 10000
	smoothing = 2000
	maxProb   = 40

	// A delta gram must be seen at least minDeltaCount times in at most
	// maxDeltaLangs languages.
	minDeltaCount = 2
	maxDeltaLangs = 3

	minDistinctCount = 2
	minDistinctRunes = 2

	// In-sample density overstates what unseen text reaches.
	expectedNum = 3
	expectedDen = 4
)

//go:embed corpus/*.txt
var corpusFS embed.FS

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the tables trained from the embedded corpus. Training
// runs once, on first use.
func Default() *Set {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(corpusFS, "corpus")
		if err == nil {
			defaultSet, err = Build(sub)
		}
		if err != nil {
			panic(fmt.Sprintf("tables: embedded corpus: %v", err))
		}
	})
	return defaultSet
}

// Build trains tables from a file system holding one <code>.txt file of
// sample text per language.
func Build(fsys fs.FS) (*Set, error) {
	names, err := fs.Glob(fsys, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to list corpus: %w", err)
	}
	texts := make(map[langdata.Language][]byte, len(names))
	for _, name := range names {
		code := strings.TrimSuffix(path.Base(name), ".txt")
		lang := langdata.FromCode(code)
		if lang == langdata.Unknown {
			return nil, fmt.Errorf("corpus file %s: unknown language code %q", name, code)
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus file %s: %w", name, err)
		}
		texts[lang] = data
	}
	return BuildFromTexts(texts), nil
}

// BuildFromTexts trains tables from sample text keyed by language.
func BuildFromTexts(texts map[langdata.Language][]byte) *Set {
	langs := make([]langdata.Language, 0, len(texts))
	for l := range texts {
		langs = append(langs, l)
	}
	slices.Sort(langs)

	quad, octa, words := newCounter(), newCounter(), newCounter()
	uni, bi := newCounter(), newCounter()

	for _, lang := range langs {
		eachSpan(texts[lang], lang, func(span scanner.Span, ps uint8) {
			text, hi := span.Text, span.End()
			switch span.Script.RecognitionType() {
			case langdata.RTypeCJK:
				ngram.Unigrams(text, 1, hi, func(_ int, g []byte) { uni.add(g, span.Script, ps) })
				ngram.Bigrams(text, 1, hi, func(_ int, g []byte) { bi.add(g, span.Script, ps) })
			case langdata.RTypeMany:
				for pos := 1; ; {
					start, end, ok := ngram.NextWord(text, pos, hi)
					if !ok {
						break
					}
					ngram.Quads(text, start, end, func(_ int, g []byte) { quad.add(g, span.Script, ps) })
					word := text[start:end]
					octa.add(ngram.OctaKey(word), span.Script, ps)
					words.add(ngram.WordKey(word), span.Script, ps)
					pos = end
				}
			}
		})
	}

	set := &Set{
		Quad:     quad.freeze("quad", keepAll),
		Octa:     octa.freeze("octa", keepDelta),
		Distinct: words.freeze("distinct", keepDistinct),
		Uni:      uni.freeze("uni", keepAll),
		Bi:       bi.freeze("bi", keepDelta),
		expected: make(map[expectedKey]int),
	}
	if patterns := words.patterns(keepDistinct); len(patterns) > 0 {
		set.distinct = ahocorasick.NewMatcher(patterns)
	}
	for _, lang := range langs {
		set.calibrate(lang, texts[lang])
	}
	return set
}

// eachSpan calls fn for every span of text written in a script lang uses.
func eachSpan(text []byte, lang langdata.Language, fn func(scanner.Span, uint8)) {
	sc := scanner.New(text, scanner.Options{PlainText: true})
	for {
		span, ok := sc.NextLower()
		if !ok {
			return
		}
		if ps := langdata.PerScriptNumber(span.Script, lang); ps != 0 {
			fn(span, ps)
		}
	}
}

type gramCount struct {
	script langdata.Script
	gram   []byte
	counts [langdata.MaxPerScript]uint32
}

// nonzero returns the number of languages that saw the gram and its total
// count.
func (g *gramCount) nonzero() (langs int, total uint32) {
	for _, c := range g.counts {
		if c > 0 {
			langs++
			total += c
		}
	}
	return langs, total
}

type counter struct {
	grams  map[uint64]*gramCount
	totals [langdata.NumScripts][langdata.MaxPerScript]uint32
}

func newCounter() *counter {
	return &counter{grams: make(map[uint64]*gramCount)}
}

func (c *counter) add(gram []byte, script langdata.Script, ps uint8) {
	key := ngram.Key(gram)
	g, ok := c.grams[key]
	if !ok {
		g = &gramCount{script: script, gram: slices.Clone(gram)}
		c.grams[key] = g
	}
	if g.script != script {
		return
	}
	g.counts[ps]++
	c.totals[script][ps]++
}

type keepFunc func(g *gramCount) bool

func keepAll(*gramCount) bool { return true }

func keepDelta(g *gramCount) bool {
	langs, total := g.nonzero()
	return langs <= maxDeltaLangs && total >= minDeltaCount
}

func keepDistinct(g *gramCount) bool {
	langs, total := g.nonzero()
	return langs == 1 && total >= minDistinctCount && utf8.RuneCount(g.gram) >= minDistinctRunes
}

func (c *counter) sortedKeys() []uint64 {
	keys := make([]uint64, 0, len(c.grams))
	for k := range c.grams {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *counter) freeze(name string, keep keepFunc) *Table {
	t := newTable(name)
	votes := make([]LangProb, 0, langdata.MaxPerScript)
	for _, key := range c.sortedKeys() {
		g := c.grams[key]
		if !keep(g) {
			continue
		}
		votes = votes[:0]
		for ps, n := range g.counts {
			if n > 0 {
				votes = append(votes, LangProb{
					Lang: uint8(ps),
					Prob: quantize(n, c.totals[g.script][ps]),
				})
			}
		}
		t.insert(key, votes)
	}
	return t
}

// patterns returns " gram " for every kept gram.
func (c *counter) patterns(keep keepFunc) [][]byte {
	var out [][]byte
	for _, key := range c.sortedKeys() {
		g := c.grams[key]
		if !keep(g) {
			continue
		}
		p := make([]byte, 0, len(g.gram)+2)
		p = append(p, ' ')
		p = append(p, g.gram...)
		p = append(p, ' ')
		out = append(out, p)
	}
	return out
}

func quantize(count, total uint32) uint8 {
	p := float64(count) / float64(total+smoothing)
	q := math.Round(2 * math.Log2(p*probScale))
	switch {
	case q < 1:
		return 1
	case q > maxProb:
		return maxProb
	}
	return uint8(q)
}

// calibrate measures the score density a language's own corpus reaches,
// walking grams the way the hit generators do.
func (s *Set) calibrate(lang langdata.Language, text []byte) {
	var score, size [langdata.NumFamilies]int
	var quadRep, octaRep, distRep, uniRep, biRep ngram.RepeatFilter

	eachSpan(text, lang, func(span scanner.Span, ps uint8) {
		fam := span.Script.Family()
		vote := func(t *Table, rep *ngram.RepeatFilter, g []byte) {
			key := ngram.Key(g)
			if rep.Repeat(key) {
				return
			}
			for _, set := range t.Decode(t.Lookup(key)) {
				for _, lp := range set.Probs[:set.N] {
					if lp.Lang == ps {
						score[fam] += int(lp.Prob)
					}
				}
			}
		}
		text, hi := span.Text, span.End()
		size[fam] += span.LetterBytes()
		switch span.Script.RecognitionType() {
		case langdata.RTypeCJK:
			ngram.Unigrams(text, 1, hi, func(_ int, g []byte) { vote(s.Uni, &uniRep, g) })
			ngram.Bigrams(text, 1, hi, func(_ int, g []byte) { vote(s.Bi, &biRep, g) })
		case langdata.RTypeMany:
			for pos := 1; ; {
				start, end, ok := ngram.NextWord(text, pos, hi)
				if !ok {
					break
				}
				ngram.Quads(text, start, end, func(_ int, g []byte) { vote(s.Quad, &quadRep, g) })
				word := text[start:end]
				vote(s.Octa, &octaRep, ngram.OctaKey(word))
				vote(s.Distinct, &distRep, ngram.WordKey(word))
				pos = end
			}
		}
	})

	for fam := range score {
		if size[fam] > 0 {
			s.expected[expectedKey{lang, langdata.ScriptFamily(fam)}] = (score[fam] << 10) / size[fam] * expectedNum / expectedDen
		}
	}
}
