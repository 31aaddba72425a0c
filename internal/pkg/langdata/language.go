// Package langdata holds the static language and script metadata used by the
// detector: language names and codes, Unicode script membership, the
// recognition type of each script, per-script language numbering and the
// close sets of easily confused languages.
//
// All values are immutable after package initialization and safe for
// concurrent use.
package langdata

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Language identifies a natural language, or a pseudo-language standing in
// for a script that carries no language information of its own.
type Language uint16

// Languages known to the detector. Unknown is the zero value.
const (
	Unknown Language = iota
	English
	French
	German
	Spanish
	Italian
	Portuguese
	Dutch
	Croatian
	Serbian
	Bosnian
	Montenegrin
	Czech
	Slovak
	Polish
	Swedish
	Danish
	Norwegian
	Indonesian
	Malay
	Turkish
	Russian
	Ukrainian
	Bulgarian
	Belarusian
	Macedonian
	Greek
	Arabic
	Persian
	Urdu
	Hebrew
	Yiddish
	Hindi
	Bengali
	Punjabi
	Gujarati
	Oriya
	Tamil
	Telugu
	Kannada
	Malayalam
	Sinhalese
	Thai
	Lao
	Tibetan
	Burmese
	Georgian
	Armenian
	Korean
	Japanese
	Chinese
	ChineseT
	Amharic
	Khmer
	Dhivehi
	Syriac
	Cherokee
	Mongolian
	XRunic
	XOgham

	numLanguages
)

var languageInfo = [numLanguages]struct {
	name string
	code string
}{
	Unknown:     {"Unknown", "un"},
	English:     {"English", "en"},
	French:      {"French", "fr"},
	German:      {"German", "de"},
	Spanish:     {"Spanish", "es"},
	Italian:     {"Italian", "it"},
	Portuguese:  {"Portuguese", "pt"},
	Dutch:       {"Dutch", "nl"},
	Croatian:    {"Croatian", "hr"},
	Serbian:     {"Serbian", "sr"},
	Bosnian:     {"Bosnian", "bs"},
	Montenegrin: {"Montenegrin", "sr-ME"},
	Czech:       {"Czech", "cs"},
	Slovak:      {"Slovak", "sk"},
	Polish:      {"Polish", "pl"},
	Swedish:     {"Swedish", "sv"},
	Danish:      {"Danish", "da"},
	Norwegian:   {"Norwegian", "no"},
	Indonesian:  {"Indonesian", "id"},
	Malay:       {"Malay", "ms"},
	Turkish:     {"Turkish", "tr"},
	Russian:     {"Russian", "ru"},
	Ukrainian:   {"Ukrainian", "uk"},
	Bulgarian:   {"Bulgarian", "bg"},
	Belarusian:  {"Belarusian", "be"},
	Macedonian:  {"Macedonian", "mk"},
	Greek:       {"Greek", "el"},
	Arabic:      {"Arabic", "ar"},
	Persian:     {"Persian", "fa"},
	Urdu:        {"Urdu", "ur"},
	Hebrew:      {"Hebrew", "he"},
	Yiddish:     {"Yiddish", "yi"},
	Hindi:       {"Hindi", "hi"},
	Bengali:     {"Bengali", "bn"},
	Punjabi:     {"Punjabi", "pa"},
	Gujarati:    {"Gujarati", "gu"},
	Oriya:       {"Oriya", "or"},
	Tamil:       {"Tamil", "ta"},
	Telugu:      {"Telugu", "te"},
	Kannada:     {"Kannada", "kn"},
	Malayalam:   {"Malayalam", "ml"},
	Sinhalese:   {"Sinhalese", "si"},
	Thai:        {"Thai", "th"},
	Lao:         {"Lao", "lo"},
	Tibetan:     {"Tibetan", "bo"},
	Burmese:     {"Burmese", "my"},
	Georgian:    {"Georgian", "ka"},
	Armenian:    {"Armenian", "hy"},
	Korean:      {"Korean", "ko"},
	Japanese:    {"Japanese", "ja"},
	Chinese:     {"Chinese", "zh"},
	ChineseT:    {"ChineseT", "zh-Hant"},
	Amharic:     {"Amharic", "am"},
	Khmer:       {"Khmer", "km"},
	Dhivehi:     {"Dhivehi", "dv"},
	Syriac:      {"Syriac", "syr"},
	Cherokee:    {"Cherokee", "chr"},
	Mongolian:   {"Mongolian", "mn"},
	XRunic:      {"X_Runic", "xx-Runr"},
	XOgham:      {"X_Ogham", "xx-Ogam"},
}

var codeToLanguage = func() map[string]Language {
	m := make(map[string]Language, int(numLanguages)+8)
	for l := Unknown; l < numLanguages; l++ {
		m[strings.ToLower(languageInfo[l].code)] = l
	}
	// Legacy and regional aliases.
	m["iw"] = Hebrew
	m["nb"] = Norwegian
	m["nn"] = Norwegian
	m["zh-tw"] = ChineseT
	m["zh-hk"] = ChineseT
	m["zh-cn"] = Chinese
	m["zh-hans"] = Chinese
	m["me"] = Montenegrin
	m["cnr"] = Montenegrin
	return m
}()

// NumLanguages is the number of defined Language values.
const NumLanguages = int(numLanguages)

// String returns the English name of the language.
func (l Language) String() string {
	if l >= numLanguages {
		return fmt.Sprintf("Language(%d)", uint16(l))
	}
	return languageInfo[l].name
}

// Code returns the ISO 639-1 code of the language, or a descriptive code
// for languages and pseudo-languages that have none.
func (l Language) Code() string {
	if l >= numLanguages {
		return languageInfo[Unknown].code
	}
	return languageInfo[l].code
}

// Valid reports whether l is a defined language.
func (l Language) Valid() bool {
	return l < numLanguages
}

// FromCode resolves a language code, case-insensitively. Unknown codes
// resolve to Unknown.
func FromCode(code string) Language {
	if l, ok := codeToLanguage[strings.ToLower(strings.TrimSpace(code))]; ok {
		return l
	}
	return Unknown
}

// MarshalJSON encodes the language as its code.
func (l Language) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Code())
}

// UnmarshalJSON decodes a language code.
func (l *Language) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return fmt.Errorf("language: %w", err)
	}
	*l = FromCode(code)
	return nil
}

// CloseSet returns the id of the set of closely related languages l belongs
// to, or 0 if it belongs to none.
func CloseSet(l Language) uint8 {
	switch l {
	case Croatian, Serbian, Bosnian, Montenegrin:
		return 1
	case Czech, Slovak:
		return 2
	case Indonesian, Malay:
		return 3
	case Danish, Norwegian:
		return 4
	case Chinese, ChineseT:
		return 5
	}
	return 0
}

// SameCloseSet reports whether a and b are distinct members of one close set.
func SameCloseSet(a, b Language) bool {
	if a == b {
		return false
	}
	set := CloseSet(a)
	return set != 0 && set == CloseSet(b)
}
