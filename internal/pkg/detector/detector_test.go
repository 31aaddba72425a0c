package detector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"langindexer/internal/pkg/langdata"
)

const frenchText = `Le matin, la petite ville est calme. Les paysans apportent des légumes
des collines et le boulanger vend du pain encore chaud. Les enfants marchent vers
l'école par petits groupes, et leurs parents parlent avec les voisins du temps qu'il
fait et du prix de la nourriture. Quand j'étais petit, ma grand-mère me disait que le
fleuve était la raison même de la ville.`

const germanText = `Am Morgen sind die Straßen der kleinen Stadt ruhig. Die Bauern bringen
Gemüse aus den Hügeln, und der Bäcker an der Ecke verkauft Brot, das noch warm ist.
Die Kinder gehen in kleinen Gruppen zur Schule, und ihre Eltern sprechen mit den
Nachbarn über das Wetter und die Preise. Als ich klein war, erzählte mir meine
Großmutter, dass der Fluss der eigentliche Grund für die Stadt sei.`

func TestDetectEmpty(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"", "   ", "1234 5678 !!! ---", "<p>&nbsp;</p>"} {
		res := DetectLanguage([]byte(text), nil, 0)
		if res.Language() != langdata.Unknown {
			t.Errorf("%q: got %v, want unknown", text, res.Language())
		}
		if res.TextBytes != 0 {
			t.Errorf("%q: TextBytes = %d, want 0", text, res.TextBytes)
		}
		if res.IsReliable {
			t.Errorf("%q: reported reliable", text)
		}
	}
}

func TestDetectFrench(t *testing.T) {
	t.Parallel()

	res := DetectLanguage([]byte(frenchText), nil, 0)
	if res.Language() != langdata.French {
		t.Fatalf("got %v, want fr (%+v)", res.Language(), res)
	}
	if !res.IsReliable {
		t.Errorf("expected a reliable result, got %+v", res)
	}
	if res.Percent3[0] < 90 {
		t.Errorf("Percent3[0] = %d, want >= 90", res.Percent3[0])
	}
	if res.NormalizedScore3[0] <= 0 {
		t.Errorf("NormalizedScore3[0] = %v, want > 0", res.NormalizedScore3[0])
	}
}

func TestDetectMixedBestEffort(t *testing.T) {
	t.Parallel()

	text := frenchText + "\n\n" + germanText
	res := DetectLanguage([]byte(text), nil, FlagBestEffort)
	top := res.Top3[:2]
	for _, want := range []langdata.Language{langdata.French, langdata.German} {
		if top[0] != want && top[1] != want {
			t.Errorf("%v not in top two %v", want, res.Top3)
		}
	}
	if sum := res.Percent3[0] + res.Percent3[1] + res.Percent3[2]; sum > 100 {
		t.Errorf("percentages sum to %d", sum)
	}

	frBytes := len(frenchText) * 100 / len(text)
	for i, lang := range res.Top3[:2] {
		want := frBytes
		if lang == langdata.German {
			want = 100 - frBytes
		}
		if d := res.Percent3[i] - want; d > 10 || d < -10 {
			t.Errorf("%v: Percent = %d, want about %d (%v)", lang, res.Percent3[i], want, res.Percent3)
		}
	}
}

func TestDetectMixedWithoutBestEffort(t *testing.T) {
	t.Parallel()

	res := DetectLanguage([]byte(frenchText+"\n\n"+germanText), nil, 0)
	if res.IsReliable {
		t.Errorf("an even split should not be reliable: %+v", res)
	}
	if res.Language() != langdata.Unknown || res.Percent3 != [3]int{} {
		t.Errorf("unreliable result kept its languages: %+v", res)
	}
}

func TestDetectRepetitionStaysReliable(t *testing.T) {
	t.Parallel()

	for _, base := range []struct {
		text string
		want langdata.Language
	}{
		{frenchText, langdata.French},
		{germanText, langdata.German},
	} {
		wasReliable := false
		for _, n := range []int{1, 2, 4, 8} {
			text := strings.Repeat(base.text+"\n", n)
			res := DetectLanguage([]byte(text), nil, 0)
			if res.Language() != base.want {
				t.Errorf("%v x%d: got %v", base.want, n, res.Top3)
			}
			if wasReliable && !res.IsReliable {
				t.Errorf("%v x%d: lost reliability after repetition", base.want, n)
			}
			wasReliable = res.IsReliable
		}
		if !wasReliable {
			t.Errorf("%v x8 not reliable", base.want)
		}
	}
}

func TestDetectSingleLanguageScripts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want langdata.Language
	}{
		{"ภาษาไทยเป็นภาษาที่สวยงามมาก", langdata.Thai},
		{"Καλημέρα σε όλους τους φίλους", langdata.Greek},
		{"한국어는 아름다운 언어입니다", langdata.Korean},
		{"ქართული ენა ძალიან ლამაზია", langdata.Georgian},
	}
	for _, tt := range tests {
		res := DetectLanguage([]byte(tt.text), nil, 0)
		if res.Language() != tt.want {
			t.Errorf("%q: got %v, want %v", tt.text, res.Language(), tt.want)
		}
		if !res.IsReliable || res.Percent3[0] != 100 {
			t.Errorf("%q: got reliable=%v percent=%d", tt.text, res.IsReliable, res.Percent3[0])
		}
	}
}

func TestDetectJapanese(t *testing.T) {
	t.Parallel()

	text := "朝の通りは静かですが、市場はたくさんの声でいっぱいになります。子どもたちは学校へ歩いていきます。"
	res := DetectLanguage([]byte(text), nil, FlagBestEffort)
	if res.Language() != langdata.Japanese {
		t.Errorf("got %v, want ja", res.Top3)
	}
}

func TestDetectDeterministic(t *testing.T) {
	t.Parallel()

	text := []byte(frenchText + germanText)
	first := DetectLanguage(text, nil, FlagBestEffort|FlagReturnChunks)
	for i := 0; i < 5; i++ {
		again := DetectLanguage(text, nil, FlagBestEffort|FlagReturnChunks)
		if fmt.Sprint(again) != fmt.Sprint(first) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, again, first)
		}
	}
}

func TestDetectChunks(t *testing.T) {
	t.Parallel()

	text := "Καλημέρα κόσμε สวัสดีครับ"
	res := DetectLanguage([]byte(text), nil, FlagReturnChunks)
	if len(res.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %+v", len(res.Chunks), res.Chunks)
	}
	if c := res.Chunks[0]; c.Lang != langdata.Greek || c.Offset != 0 {
		t.Errorf("first chunk %+v", c)
	}
	if c := res.Chunks[1]; c.Lang != langdata.Thai || c.Offset != strings.Index(text, "ส") {
		t.Errorf("second chunk %+v", c)
	}
	if c := res.Chunks[0]; c.Offset+c.Bytes > res.Chunks[1].Offset {
		t.Errorf("chunks overlap: %+v", res.Chunks)
	}

	if res := DetectLanguage([]byte(text), nil, 0); res.Chunks != nil {
		t.Errorf("chunks returned without the flag: %+v", res.Chunks)
	}
}

func TestDetectPlainText(t *testing.T) {
	t.Parallel()

	text := []byte("<b>" + frenchText + "</b>")
	html := DetectLanguage(text, nil, 0)
	plain := DetectLanguage(text, nil, FlagPlainText)
	if plain.TextBytes <= html.TextBytes {
		t.Errorf("plain text scanned %d bytes, markup mode %d", plain.TextBytes, html.TextBytes)
	}
}

func TestRequiredMargin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes, scripts int
		want           float64
	}{
		{10, 1, 2.0},
		{100, 1, 1.5},
		{1000, 1, 1.1},
		{1000, 3, 1.6},
		{1000, 0, 1.1},
	}
	for _, tt := range tests {
		if got := requiredMargin(tt.bytes, tt.scripts); got != tt.want {
			t.Errorf("requiredMargin(%d, %d) = %v, want %v", tt.bytes, tt.scripts, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("unreliable cleared", func(t *testing.T) {
		doc := NewDocTote()
		doc.Add(langdata.English, 500, 900, 80)
		doc.Add(langdata.French, 480, 800, 80)
		var res Result
		summarize(&res, doc, 1, 0)
		if res.IsReliable {
			t.Fatalf("expected unreliable: %+v", res)
		}
		if res.Top3 != [3]langdata.Language{} || res.Percent3 != [3]int{} {
			t.Errorf("expected cleared result, got %+v", res)
		}
	})

	t.Run("best effort keeps guess", func(t *testing.T) {
		doc := NewDocTote()
		doc.Add(langdata.English, 500, 900, 80)
		doc.Add(langdata.French, 480, 800, 80)
		var res Result
		summarize(&res, doc, 1, FlagBestEffort)
		if res.Top3[0] != langdata.English || res.Top3[1] != langdata.French {
			t.Errorf("Top3 = %v", res.Top3)
		}
		if res.Percent3[0]+res.Percent3[1] != 100 {
			t.Errorf("Percent3 = %v, want sum 100", res.Percent3)
		}
	})

	t.Run("low reliability removed", func(t *testing.T) {
		doc := NewDocTote()
		doc.Add(langdata.English, 900, 900, 90)
		doc.Add(langdata.Dutch, 300, 300, 20)
		var res Result
		summarize(&res, doc, 1, 0)
		if !res.IsReliable || res.Top3[0] != langdata.English || res.Percent3[0] != 100 {
			t.Errorf("got %+v", res)
		}
		if res.Top3[1] != langdata.Unknown {
			t.Errorf("unreliable language kept: %v", res.Top3)
		}
		if want := 900.0 * 1024 / 900; res.NormalizedScore3[0] != want {
			t.Errorf("NormalizedScore3[0] = %v, want %v", res.NormalizedScore3[0], want)
		}
	})

	t.Run("close pair merged", func(t *testing.T) {
		doc := NewDocTote()
		doc.Add(langdata.Croatian, 600, 600, 70)
		doc.Add(langdata.Serbian, 300, 300, 70)
		var res Result
		summarize(&res, doc, 1, 0)
		if res.Top3[0] != langdata.Croatian || res.Top3[1] != langdata.Unknown {
			t.Errorf("Top3 = %v", res.Top3)
		}
		if !res.IsReliable {
			t.Errorf("expected reliable: %+v", res)
		}
	})
}

func TestDocToteFull(t *testing.T) {
	t.Parallel()

	doc := NewDocTote()
	for l := langdata.Language(1); l <= docToteSize; l++ {
		doc.Add(l, 10+int(l), 1, 100)
	}
	if doc.Len() != docToteSize {
		t.Fatalf("Len = %d", doc.Len())
	}
	extra := langdata.Language(docToteSize + 1)
	doc.Add(extra, 5, 1, 100)
	if doc.Bytes(extra) != 0 {
		t.Errorf("small newcomer displaced an entry")
	}
	doc.Add(extra, 500, 1, 100)
	if doc.Bytes(extra) != 500 || doc.Bytes(1) != 0 {
		t.Errorf("newcomer should replace the smallest entry")
	}
	if doc.Reliability(extra) != 100 {
		t.Errorf("Reliability = %d", doc.Reliability(extra))
	}
}

func TestHints(t *testing.T) {
	t.Parallel()

	headers := []struct {
		header string
		want   []langdata.Language
	}{
		{"fr, en;q=0.5", []langdata.Language{langdata.French, langdata.English}},
		{"fr-CA, en;q=0.5, zh-Hant, sr-ME, xx-bogus;q=0.1", []langdata.Language{langdata.French, langdata.ChineseT, langdata.Montenegrin, langdata.English}},
		{"de;q=0.3, !!not a tag, it;q=0.9", []langdata.Language{langdata.Italian, langdata.German}},
		{"es, pt;q=bad, nl;q=0", []langdata.Language{langdata.Spanish}},
		{"en-GB, en-US;q=0.8", []langdata.Language{langdata.English}},
		{"@@, ##", nil},
	}
	for _, tt := range headers {
		got := ParseContentLanguage(tt.header)
		if fmt.Sprint(got) != fmt.Sprint(tt.want) {
			t.Errorf("ParseContentLanguage(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
	if ParseContentLanguage("") != nil {
		t.Errorf("empty header should give nil")
	}
	if l := TLDLanguage(".FR"); l != langdata.French {
		t.Errorf("TLDLanguage(.FR) = %v", l)
	}
	if l := TLDLanguage("com"); l != langdata.Unknown {
		t.Errorf("TLDLanguage(com) = %v", l)
	}
	if c := CanonicalCharset("sjis"); c != "shift_jis" {
		t.Errorf("CanonicalCharset(sjis) = %q", c)
	}
	if c := CanonicalCharset("nope"); c != "" {
		t.Errorf("CanonicalCharset(nope) = %q", c)
	}
}

func TestHintsBreakTie(t *testing.T) {
	t.Parallel()

	// Words absent from every table.
	text := []byte("zzqx kxvq zzqx")
	for _, want := range []langdata.Language{langdata.Spanish, langdata.Dutch} {
		res := DetectLanguage(text, &Hints{Language: want, TLD: want.Code()}, FlagBestEffort)
		if res.Language() != want {
			t.Errorf("hint %v: got %v", want, res.Top3)
		}
	}
}

func TestDetectBatch(t *testing.T) {
	t.Parallel()

	d := Default()
	texts := [][]byte{[]byte(frenchText), []byte(germanText), []byte("ภาษาไทย"), nil}
	got, err := d.DetectBatch(context.Background(), texts, nil, FlagBestEffort, 2)
	if err != nil {
		t.Fatalf("DetectBatch: %v", err)
	}
	for i, text := range texts {
		if want := d.Detect(text, nil, FlagBestEffort); fmt.Sprint(got[i]) != fmt.Sprint(want) {
			t.Errorf("result %d = %+v, want %+v", i, got[i], want)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.DetectBatch(ctx, texts, nil, 0, 2); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func BenchmarkDetect(b *testing.B) {
	d := Default()
	text := []byte(strings.Repeat(frenchText+germanText, 10))
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Detect(text, nil, 0)
	}
}

func ExampleDetectLanguage() {
	res := DetectLanguage([]byte("ภาษาไทยเป็นภาษาที่สวยงามมาก"), nil, 0)
	fmt.Println(res.Language().Code(), res.Percent3[0], res.IsReliable)
	// Output: th 100 true
}
