package ngram

import (
	"reflect"
	"strings"
	"testing"
)

func collect(text string, start, end int) []string {
	var grams []string
	Quads([]byte(text), start, end, func(_ int, g []byte) {
		grams = append(grams, string(g))
	})
	return grams
}

func TestQuads(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text       string
		start, end int
		want       []string
	}{
		{" abcdef   ", 1, 7, []string{" abc", "bcde", "def "}},
		{" abcde   ", 1, 6, []string{" abc", "bcde", "de "}},
		{" de   ", 1, 3, []string{" de "}},
		{" a   ", 1, 2, []string{" a "}},
		{" été   ", 1, 6, []string{" été", "té "}},
	}
	for _, tt := range tests {
		if got := collect(tt.text, tt.start, tt.end); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Quads(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestNextWord(t *testing.T) {
	t.Parallel()

	text := []byte(" le chat   ")
	var words []string
	for pos := 0; ; {
		s, e, ok := NextWord(text, pos, len(text))
		if !ok {
			break
		}
		words = append(words, string(text[s:e]))
		pos = e
	}
	if want := []string{"le", "chat"}; !reflect.DeepEqual(words, want) {
		t.Errorf("words = %q, want %q", words, want)
	}
}

func TestCJKGrams(t *testing.T) {
	t.Parallel()

	text := []byte(" 日本語 です   ")
	var uni, bi []string
	Unigrams(text, 1, len(text)-3, func(_ int, g []byte) { uni = append(uni, string(g)) })
	Bigrams(text, 1, len(text)-3, func(_ int, g []byte) { bi = append(bi, string(g)) })

	if want := []string{"日", "本", "語", "で", "す"}; !reflect.DeepEqual(uni, want) {
		t.Errorf("unigrams = %q, want %q", uni, want)
	}
	if want := []string{"日本", "本語", "です"}; !reflect.DeepEqual(bi, want) {
		t.Errorf("bigrams = %q, want %q", bi, want)
	}
}

func TestOctaAndWordKey(t *testing.T) {
	t.Parallel()

	if got := string(OctaKey([]byte("internationalisation"))); got != "internat" {
		t.Errorf("OctaKey = %q", got)
	}
	if got := string(OctaKey([]byte("état"))); got != "état" {
		t.Errorf("OctaKey short = %q", got)
	}
	long := []byte(strings.Repeat("é", 31))
	if got := WordKey(long); len(got) != 48 {
		t.Errorf("WordKey length = %d, want 48", len(got))
	}
}

func TestRepeatFilter(t *testing.T) {
	t.Parallel()

	var f RepeatFilter
	if f.Repeat(1) {
		t.Fatal("first key reported as repeat")
	}
	if !f.Repeat(1) {
		t.Fatal("immediate repeat not detected")
	}
	for k := uint64(2); k <= 5; k++ {
		f.Repeat(k)
	}
	if f.Repeat(1) {
		t.Error("key 1 should have been evicted")
	}
	f.Reset()
	if f.Repeat(5) {
		t.Error("Reset did not clear keys")
	}
}
