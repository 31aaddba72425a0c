package detector

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/language"

	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/scoring"
)

// Prior strengths, in probability-code units added to every chunk.
const (
	languageHintProb        = 12
	contentLanguageHintProb = 8
	tldHintProb             = 4
	charsetHintProb         = 4
)

// Hints are optional outside evidence about a document's language. They
// only seed boosts; they never decide a result on their own.
type Hints struct {
	// ContentLanguage is an HTTP Content-Language or Accept-Language value,
	// e.g. "fr, en;q=0.5".
	ContentLanguage string `json:"content_language,omitempty"`
	// TLD is the top-level domain the document came from, e.g. "fr".
	TLD string `json:"tld,omitempty"`
	// Charset is the declared source encoding label, e.g. "Shift_JIS".
	Charset string `json:"charset,omitempty"`
	// Language is a caller supplied best guess.
	Language langdata.Language `json:"language,omitempty"`
}

func (h *Hints) apply(c *scoring.Context) {
	if h == nil {
		return
	}
	if h.Language != langdata.Unknown {
		c.BoostLanguage(h.Language, languageHintProb)
	}
	for _, l := range ParseContentLanguage(h.ContentLanguage) {
		c.BoostLanguage(l, contentLanguageHintProb)
	}
	if l := TLDLanguage(h.TLD); l != langdata.Unknown {
		c.BoostLanguage(l, tldHintProb)
	}
	if p, ok := charsetPriors[CanonicalCharset(h.Charset)]; ok {
		for _, l := range p.boost {
			c.BoostLanguage(l, charsetHintProb)
		}
		for _, l := range p.whack {
			c.WhackLanguage(l)
		}
	}
}

// ParseContentLanguage returns the known languages named in a
// Content-Language or Accept-Language header, highest quality first.
// Entries that do not parse are skipped.
func ParseContentLanguage(header string) []langdata.Language {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	type weighted struct {
		lang langdata.Language
		q    float64
	}
	var entries []weighted
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(part, ";")
		tag, err := language.Parse(strings.TrimSpace(name))
		if err != nil {
			continue
		}
		q, ok := quality(params)
		if !ok || q <= 0 {
			continue
		}
		if l := FromTag(tag); l != langdata.Unknown {
			entries = append(entries, weighted{l, q})
		}
	}
	slices.SortStableFunc(entries, func(a, b weighted) int {
		return cmp.Compare(b.q, a.q)
	})

	var out []langdata.Language
	for _, e := range entries {
		if !slices.Contains(out, e.lang) {
			out = append(out, e.lang)
		}
	}
	return out
}

// quality returns the q parameter of a header entry, 1 when absent.
func quality(params string) (float64, bool) {
	for _, p := range strings.Split(params, ";") {
		key, value, found := strings.Cut(strings.TrimSpace(p), "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		return q, true
	}
	return 1, true
}

// FromTag maps a BCP 47 tag to a Language.
func FromTag(tag language.Tag) langdata.Language {
	base, conf := tag.Base()
	if conf == language.No {
		return langdata.Unknown
	}
	switch code := base.String(); code {
	case "zh":
		if script, _ := tag.Script(); script.String() == "Hant" {
			return langdata.ChineseT
		}
		return langdata.Chinese
	case "sr":
		if region, _ := tag.Region(); region.String() == "ME" {
			return langdata.Montenegrin
		}
		return langdata.Serbian
	default:
		return langdata.FromCode(code)
	}
}

var tldLanguages = map[string]langdata.Language{
	"uk": langdata.English, "us": langdata.English, "au": langdata.English,
	"nz": langdata.English, "ie": langdata.English,
	"fr": langdata.French, "de": langdata.German, "at": langdata.German,
	"es": langdata.Spanish, "mx": langdata.Spanish, "ar": langdata.Spanish,
	"it": langdata.Italian, "pt": langdata.Portuguese, "br": langdata.Portuguese,
	"nl": langdata.Dutch, "hr": langdata.Croatian, "rs": langdata.Serbian,
	"ba": langdata.Bosnian, "me": langdata.Montenegrin, "cz": langdata.Czech,
	"sk": langdata.Slovak, "pl": langdata.Polish, "se": langdata.Swedish,
	"dk": langdata.Danish, "no": langdata.Norwegian, "id": langdata.Indonesian,
	"my": langdata.Malay, "tr": langdata.Turkish, "ru": langdata.Russian,
	"ua": langdata.Ukrainian, "bg": langdata.Bulgarian, "by": langdata.Belarusian,
	"mk": langdata.Macedonian, "gr": langdata.Greek, "sa": langdata.Arabic,
	"eg": langdata.Arabic, "ae": langdata.Arabic, "ir": langdata.Persian,
	"pk": langdata.Urdu, "il": langdata.Hebrew, "in": langdata.Hindi,
	"th": langdata.Thai, "jp": langdata.Japanese, "cn": langdata.Chinese,
	"tw": langdata.ChineseT, "hk": langdata.ChineseT, "kr": langdata.Korean,
	"ge": langdata.Georgian, "am": langdata.Armenian,
}

// TLDLanguage returns the language most associated with a top-level
// domain. A leading dot is ignored.
func TLDLanguage(tld string) langdata.Language {
	return tldLanguages[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tld), "."))]
}

// CanonicalCharset returns the WHATWG name of an encoding label, or "" if
// the label is unknown.
func CanonicalCharset(label string) string {
	if label == "" {
		return ""
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return ""
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return ""
	}
	return name
}

type charsetPrior struct {
	boost []langdata.Language
	whack []langdata.Language
}

var charsetPriors = map[string]charsetPrior{
	"shift_jis":    {boost: []langdata.Language{langdata.Japanese}, whack: []langdata.Language{langdata.Chinese, langdata.ChineseT}},
	"euc-jp":       {boost: []langdata.Language{langdata.Japanese}, whack: []langdata.Language{langdata.Chinese, langdata.ChineseT}},
	"iso-2022-jp":  {boost: []langdata.Language{langdata.Japanese}, whack: []langdata.Language{langdata.Chinese, langdata.ChineseT}},
	"gbk":          {boost: []langdata.Language{langdata.Chinese}, whack: []langdata.Language{langdata.Japanese}},
	"gb18030":      {boost: []langdata.Language{langdata.Chinese}, whack: []langdata.Language{langdata.Japanese}},
	"big5":         {boost: []langdata.Language{langdata.ChineseT}, whack: []langdata.Language{langdata.Japanese}},
	"euc-kr":       {boost: []langdata.Language{langdata.Korean}},
	"koi8-r":       {boost: []langdata.Language{langdata.Russian}},
	"koi8-u":       {boost: []langdata.Language{langdata.Ukrainian}},
	"windows-1251": {boost: []langdata.Language{langdata.Russian}},
	"iso-8859-5":   {boost: []langdata.Language{langdata.Russian}},
	"windows-1256": {boost: []langdata.Language{langdata.Arabic}},
	"iso-8859-6":   {boost: []langdata.Language{langdata.Arabic}},
	"windows-1255": {boost: []langdata.Language{langdata.Hebrew}},
	"iso-8859-8":   {boost: []langdata.Language{langdata.Hebrew}},
	"windows-1253": {boost: []langdata.Language{langdata.Greek}},
	"iso-8859-7":   {boost: []langdata.Language{langdata.Greek}},
	"windows-874":  {boost: []langdata.Language{langdata.Thai}},
}
