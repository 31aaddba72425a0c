package scanner

import (
	"strings"
	"testing"

	"langindexer/internal/pkg/langdata"
)

type spanInfo struct {
	text   string
	script langdata.Script
}

func scanAll(src string, opts Options) []spanInfo {
	sc := New([]byte(src), opts)
	var out []spanInfo
	for {
		span, ok := sc.NextLower()
		if !ok {
			return out
		}
		out = append(out, spanInfo{string(span.Text), span.Script})
	}
}

func TestScannerSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		opts Options
		want []spanInfo
	}{
		{
			name: "punctuation collapses",
			src:  "Hello, World!",
			want: []spanInfo{{" hello world   ", langdata.ScriptLatin}},
		},
		{
			name: "script change splits",
			src:  "hello мир",
			want: []spanInfo{
				{" hello   ", langdata.ScriptLatin},
				{" мир   ", langdata.ScriptCyrillic},
			},
		},
		{
			name: "single foreign letter tolerated",
			src:  "abc α def",
			want: []spanInfo{{" abc α def   ", langdata.ScriptLatin}},
		},
		{
			name: "foreign word ends span",
			src:  "abc λόγος",
			want: []spanInfo{
				{" abc   ", langdata.ScriptLatin},
				{" λόγος   ", langdata.ScriptGreek},
			},
		},
		{
			name: "markup and entities",
			src:  "<p>Bonjour&nbsp;le <b>monde</b></p><script>var x = 1;</script><!-- note -->caf&eacute;",
			want: []spanInfo{{" bonjour le monde café   ", langdata.ScriptLatin}},
		},
		{
			name: "plain text keeps angle brackets as separators",
			src:  "a<b>c",
			opts: Options{PlainText: true},
			want: []spanInfo{{" a b c   ", langdata.ScriptLatin}},
		},
		{
			name: "kana and han share a span",
			src:  "日本語のテキスト。",
			want: []spanInfo{{" 日本語のテキスト   ", langdata.ScriptHani}},
		},
		{
			name: "digits and symbols only",
			src:  "12345 !!! ### 678",
		},
		{
			name: "invalid byte is a separator",
			src:  "ab\xffcd",
			want: []spanInfo{{" ab cd   ", langdata.ScriptLatin}},
		},
		{
			name: "truncated sequence at end",
			src:  "abc\xe6\x97",
			want: []spanInfo{{" abc   ", langdata.ScriptLatin}},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := scanAll(tt.src, tt.opts)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d spans %+v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("span %d = %q (%v), want %q (%v)", i, got[i].text, got[i].script, tt.want[i].text, tt.want[i].script)
				}
			}
		})
	}
}

func TestSourceOffset(t *testing.T) {
	t.Parallel()

	src := "Hello <b>wörld</b>"
	sc := New([]byte(src), Options{})
	span, ok := sc.NextLower()
	if !ok {
		t.Fatal("no span")
	}
	if got := string(span.Text); got != " hello wörld   " {
		t.Fatalf("text = %q", got)
	}
	if got := span.SourceOffset(1); got != 0 {
		t.Errorf("SourceOffset(1) = %d, want 0", got)
	}
	if got := span.SourceOffset(7); got != strings.Index(src, "w") {
		t.Errorf("SourceOffset(7) = %d, want %d", got, strings.Index(src, "w"))
	}
	if got := span.SourceOffset(span.End()); got != strings.Index(src, "</b>") {
		t.Errorf("SourceOffset(End) = %d, want %d", got, strings.Index(src, "</b>"))
	}
}

func TestSourceOffsetAfterLowercaseShrinks(t *testing.T) {
	t.Parallel()

	sc := New([]byte("İstanbul"), Options{})
	span, ok := sc.NextLower()
	if !ok {
		t.Fatal("no span")
	}
	if got := string(span.Text); got != " istanbul   " {
		t.Fatalf("text = %q", got)
	}
	if got := span.SourceOffset(2); got != 2 {
		t.Errorf("SourceOffset(2) = %d, want 2", got)
	}
}

func TestLongInputSplitsEvenly(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("abcd ", 14000) // 70000 bytes
	sc := New([]byte(src), Options{})

	first, ok := sc.Next()
	if !ok {
		t.Fatal("no first span")
	}
	firstLen, firstTrunc := len(first.Text), first.Truncated
	second, ok := sc.Next()
	if !ok {
		t.Fatal("no second span")
	}
	if !firstTrunc {
		t.Error("first span should be truncated")
	}
	if second.Truncated {
		t.Error("second span should not be truncated")
	}
	if diff := firstLen - len(second.Text); diff > 1024 || diff < -1024 {
		t.Errorf("uneven split: %d vs %d", firstLen, len(second.Text))
	}
	if _, ok := sc.Next(); ok {
		t.Error("unexpected third span")
	}
}

func TestSpanNeverExceedsBuffer(t *testing.T) {
	t.Parallel()

	src := strings.Repeat("語", 100000)
	sc := New([]byte(src), Options{})
	total := 0
	for {
		span, ok := sc.Next()
		if !ok {
			break
		}
		if len(span.Text) > MaxScriptBuffer {
			t.Fatalf("span of %d bytes exceeds %d", len(span.Text), MaxScriptBuffer)
		}
		total += span.LetterBytes()
	}
	if total != len(src) {
		t.Errorf("scanned %d letter bytes, want %d", total, len(src))
	}
}
