package tables

import (
	"testing"
	"testing/fstest"

	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/ngram"
)

func tinySet(t *testing.T) *Set {
	t.Helper()
	return BuildFromTexts(map[langdata.Language][]byte{
		langdata.English: []byte("the cat and the dog and the bird"),
		langdata.French:  []byte("le chat et le chien et le oiseau"),
	})
}

func votesFor(tab *Table, gram string) []LangProb {
	var out []LangProb
	for _, set := range tab.Decode(tab.Lookup(ngram.Key([]byte(gram)))) {
		out = append(out, set.Probs[:set.N]...)
	}
	return out
}

func TestBuildFromTexts(t *testing.T) {
	t.Parallel()

	set := tinySet(t)
	en := langdata.PerScriptNumber(langdata.ScriptLatin, langdata.English)
	fr := langdata.PerScriptNumber(langdata.ScriptLatin, langdata.French)

	votes := votesFor(set.Quad, " the")
	if len(votes) != 1 || votes[0].Lang != en || votes[0].Prob == 0 {
		t.Errorf("quad \" the\" votes = %+v, want one English vote", votes)
	}
	votes = votesFor(set.Distinct, "et")
	if len(votes) != 1 || votes[0].Lang != fr {
		t.Errorf("distinct \"et\" votes = %+v, want one French vote", votes)
	}
	if votes := votesFor(set.Distinct, "cat"); len(votes) != 0 {
		t.Errorf("\"cat\" occurs once and must not be distinct, got %+v", votes)
	}
	if got := set.Quad.Lookup(ngram.Key([]byte("zzzz"))); got != 0 {
		t.Errorf("missing gram lookup = %d, want 0", got)
	}
	if set.Quad.Decode(0) != nil {
		t.Error("indirect 0 must decode to nothing")
	}
}

func TestDistinctMatcher(t *testing.T) {
	t.Parallel()

	set := tinySet(t)
	if !set.MayHaveDistinct([]byte(" a big dog and a cow ")) {
		t.Error("expected a distinct word match")
	}
	if set.MayHaveDistinct([]byte(" nothing here ")) {
		t.Error("unexpected distinct word match")
	}
}

func TestExpectedScore(t *testing.T) {
	t.Parallel()

	set := tinySet(t)
	if got := set.ExpectedScore(langdata.English, langdata.FamilyLatin); got <= 0 {
		t.Errorf("English expected score = %d, want > 0", got)
	}
	if got := set.ExpectedScore(langdata.Thai, langdata.FamilyOther); got != 0 {
		t.Errorf("Thai expected score = %d, want 0", got)
	}
}

func TestDualProbSets(t *testing.T) {
	t.Parallel()

	texts := make(map[langdata.Language][]byte)
	for _, l := range []langdata.Language{
		langdata.English, langdata.French, langdata.German, langdata.Spanish,
		langdata.Italian, langdata.Portuguese, langdata.Dutch,
	} {
		texts[l] = []byte("taxi taxi")
	}
	set := BuildFromTexts(texts)
	sets := set.Quad.Decode(set.Quad.Lookup(ngram.Key([]byte(" tax"))))
	if len(sets) != 2 {
		t.Fatalf("got %d prob sets, want 2", len(sets))
	}
	if sets[0].N != 3 || sets[1].N != 3 {
		t.Errorf("set sizes = %d, %d, want 3, 3", sets[0].N, sets[1].N)
	}
}

func TestQuantize(t *testing.T) {
	t.Parallel()

	prev := quantize(1, 1000)
	if prev < 1 {
		t.Fatalf("quantize(1, 1000) = %d", prev)
	}
	for c := uint32(2); c < 2000; c *= 2 {
		q := quantize(c, 1000)
		if q < prev {
			t.Fatalf("quantize not monotone at %d: %d < %d", c, q, prev)
		}
		prev = q
	}
	if q := quantize(1<<30, 1); q != maxProb {
		t.Errorf("quantize clamp = %d, want %d", q, maxProb)
	}
}

func TestBuildRejectsUnknownCode(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"xx.txt": {Data: []byte("hello")}}
	if _, err := Build(fsys); err == nil {
		t.Error("expected an error for an unknown language code")
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	set := Default()
	if set != Default() {
		t.Fatal("Default must return the same set")
	}
	if set.Quad.Len() < 1000 {
		t.Errorf("quad table has %d entries", set.Quad.Len())
	}
	if set.Uni.Len() == 0 || set.Bi.Len() == 0 {
		t.Error("CJK tables are empty")
	}
	fr := langdata.PerScriptNumber(langdata.ScriptLatin, langdata.French)
	if votes := votesFor(set.Distinct, "nous"); len(votes) != 1 || votes[0].Lang != fr {
		t.Errorf("distinct \"nous\" = %+v, want French", votes)
	}
	for _, l := range []langdata.Language{langdata.English, langdata.French, langdata.German} {
		if set.ExpectedScore(l, langdata.FamilyLatin) == 0 {
			t.Errorf("%v has no expected score", l)
		}
	}
	if set.ExpectedScore(langdata.Japanese, langdata.FamilyOther) == 0 {
		t.Error("Japanese has no expected score")
	}
}
