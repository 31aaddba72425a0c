// Package detector identifies the languages of a document. It scans the
// text into script spans, scores each span in chunks against the n-gram
// tables, and aggregates the chunk verdicts into a document summary: the
// top three languages, their share of the text, and whether the top
// language is reliable.
//
// A Detector is safe for concurrent use; each call owns its scratch state.
package detector

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/scanner"
	"langindexer/internal/pkg/scoring"
	"langindexer/internal/pkg/tables"
)

// MinReliablePercent is the lowest average chunk reliability a language may
// have to be kept in a result, and the lowest a winner may have to be
// reported as reliable.
const MinReliablePercent = 41

// Flags adjust detection.
type Flags uint32

const (
	// FlagScoreAsQuads scores every script with quadgrams.
	FlagScoreAsQuads Flags = 1 << iota
	// FlagBestEffort reports the best guess even when it is unreliable.
	// A document split roughly evenly between two languages of one script
	// misses the winner's required margin and reports Unknown without it.
	FlagBestEffort
	// FlagPlainText treats markup characters as ordinary punctuation.
	FlagPlainText
	// FlagReturnChunks fills Result.Chunks.
	FlagReturnChunks
)

// ResultChunk is a run of the source text assigned to one language.
type ResultChunk struct {
	Offset int               `json:"offset"`
	Bytes  int               `json:"bytes"`
	Lang   langdata.Language `json:"lang"`
}

// Result summarizes a document.
type Result struct {
	Top3             [3]langdata.Language `json:"top3"`
	Percent3         [3]int               `json:"percent3"`
	NormalizedScore3 [3]float64           `json:"normalized_score3"`
	// TextBytes is the number of letter bytes scanned.
	TextBytes  int           `json:"text_bytes"`
	IsReliable bool          `json:"is_reliable"`
	Chunks     []ResultChunk `json:"chunks,omitempty"`
}

// Language returns the top language.
func (r Result) Language() langdata.Language {
	return r.Top3[0]
}

// Detector detects languages using one set of tables.
type Detector struct {
	tables *tables.Set
}

// New returns a detector scoring against set.
func New(set *tables.Set) *Detector {
	return &Detector{tables: set}
}

// Default returns a detector using the embedded tables.
func Default() *Detector {
	return New(tables.Default())
}

// DetectLanguage detects the languages of text with the embedded tables.
func DetectLanguage(text []byte, hints *Hints, flags Flags) Result {
	return Default().Detect(text, hints, flags)
}

// Detect detects the languages of text. hints may be nil.
func (d *Detector) Detect(text []byte, hints *Hints, flags Flags) Result {
	var res Result
	sc := scanner.New(text, scanner.Options{PlainText: flags&FlagPlainText != 0})
	ctx := scoring.NewContext(d.tables, flags&FlagScoreAsQuads != 0)
	hints.apply(ctx)
	doc := NewDocTote()

	var seen [langdata.NumScripts]bool
	scripts := 0
	for {
		span, ok := sc.NextLower()
		if !ok {
			break
		}
		res.TextBytes += span.LetterBytes()
		ctx.Summaries = ctx.Summaries[:0]
		scoring.ScoreSpan(ctx, span)
		for _, s := range ctx.Summaries {
			if s.Lang1 == langdata.Unknown {
				continue
			}
			doc.Add(s.Lang1, s.Bytes, s.Score1, s.Reliability())
			if !seen[span.Script] {
				seen[span.Script] = true
				scripts++
			}
			if flags&FlagReturnChunks != 0 {
				res.Chunks = appendChunk(res.Chunks, span, s)
			}
		}
	}
	summarize(&res, doc, scripts, flags)
	return res
}

// appendChunk maps a chunk back to source offsets, extending the previous
// chunk when it has the same language.
func appendChunk(chunks []ResultChunk, span scanner.Span, s scoring.ChunkSummary) []ResultChunk {
	start := span.SourceOffset(max(s.Offset, 1))
	end := span.SourceOffset(min(s.Offset+s.Bytes, span.End()))
	if end <= start {
		return chunks
	}
	if n := len(chunks); n > 0 && chunks[n-1].Lang == s.Lang1 && chunks[n-1].Offset <= start {
		chunks[n-1].Bytes = end - chunks[n-1].Offset
		return chunks
	}
	return append(chunks, ResultChunk{Offset: start, Bytes: end - start, Lang: s.Lang1})
}

// requiredMargin is how many times the winner's weighted score must exceed
// the runner-up's. Short texts and texts in several scripts need more.
func requiredMargin(totalBytes, scripts int) float64 {
	m := 1.1
	switch {
	case totalBytes < 64:
		m = 2.0
	case totalBytes < 256:
		m = 1.5
	}
	return m + 0.25*float64(max(scripts-1, 0))
}

func summarize(res *Result, doc *DocTote, scripts int, flags Flags) {
	bestEffort := flags&FlagBestEffort != 0
	doc.refineClosePairs()
	if !bestEffort {
		doc.removeUnreliable(MinReliablePercent)
	}
	entries := doc.sorted()
	total := 0
	for _, e := range entries {
		total += e.bytes
	}
	if total == 0 {
		return
	}

	sum := 0
	for i := 0; i < len(res.Top3) && i < len(entries); i++ {
		e := entries[i]
		res.Top3[i] = e.lang
		res.Percent3[i] = e.bytes * 100 / total
		res.NormalizedScore3[i] = float64(e.score) * 1024 / float64(e.bytes)
		sum += res.Percent3[i]
	}
	if len(entries) <= len(res.Top3) {
		res.Percent3[0] += 100 - sum
	}

	top := entries[0]
	res.IsReliable = top.reliability() >= MinReliablePercent
	if len(entries) > 1 && float64(top.relBytes) < float64(entries[1].relBytes)*requiredMargin(total, scripts) {
		res.IsReliable = false
	}
	if !res.IsReliable && !bestEffort {
		res.Top3 = [3]langdata.Language{}
		res.Percent3 = [3]int{}
		res.NormalizedScore3 = [3]float64{}
	}
}

// DetectBatch detects every text concurrently on at most workers
// goroutines. Results are in input order.
func (d *Detector) DetectBatch(ctx context.Context, texts [][]byte, hints *Hints, flags Flags, workers int) ([]Result, error) {
	results := make([]Result, len(texts))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(max(workers, 1))
	for i, text := range texts {
		i, text := i, text
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = d.Detect(text, hints, flags)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("batch detection: %w", err)
	}
	return results, nil
}
