package langdata

import (
	"fmt"
	"unicode"
)

// Script is a Unicode script as far as the detector is concerned. Han,
// Hiragana, Katakana and Bopomofo are folded into ScriptHani.
type Script uint8

const (
	ScriptUnknown Script = iota
	ScriptCommon
	ScriptInherited
	ScriptLatin
	ScriptGreek
	ScriptCyrillic
	ScriptArmenian
	ScriptHebrew
	ScriptArabic
	ScriptSyriac
	ScriptThaana
	ScriptDevanagari
	ScriptBengali
	ScriptGurmukhi
	ScriptGujarati
	ScriptOriya
	ScriptTamil
	ScriptTelugu
	ScriptKannada
	ScriptMalayalam
	ScriptSinhala
	ScriptThai
	ScriptLao
	ScriptTibetan
	ScriptMyanmar
	ScriptGeorgian
	ScriptHangul
	ScriptEthiopic
	ScriptCherokee
	ScriptKhmer
	ScriptMongolian
	ScriptHani
	ScriptRunic
	ScriptOgham

	NumScripts
)

// RecognitionType selects the scoring strategy for a script.
type RecognitionType uint8

const (
	// RTypeNone scripts carry no language information.
	RTypeNone RecognitionType = iota
	// RTypeOne scripts are written in exactly one language.
	RTypeOne
	// RTypeMany scripts are scored with quadgrams and words.
	RTypeMany
	// RTypeCJK scripts are scored with unigrams and bigrams.
	RTypeCJK
)

func (t RecognitionType) String() string {
	switch t {
	case RTypeNone:
		return "None"
	case RTypeOne:
		return "One"
	case RTypeMany:
		return "Many"
	case RTypeCJK:
		return "CJK"
	}
	return fmt.Sprintf("RecognitionType(%d)", uint8(t))
}

// ScriptFamily groups scripts for boost bookkeeping and expected-score lookup.
type ScriptFamily uint8

const (
	FamilyLatin ScriptFamily = iota
	FamilyCyrillic
	FamilyArabic
	FamilyOther

	NumFamilies
)

type scriptMeta struct {
	name  string
	code  string
	rtype RecognitionType
	// langs lists the languages written in the script. The per-script
	// number of langs[i] is i+1; langs[0] is the default language.
	langs []Language
}

var scriptInfo = [NumScripts]scriptMeta{
	ScriptUnknown:    {"Unknown", "Zzzz", RTypeNone, nil},
	ScriptCommon:     {"Common", "Zyyy", RTypeNone, nil},
	ScriptInherited:  {"Inherited", "Zinh", RTypeNone, nil},
	ScriptLatin:      {"Latin", "Latn", RTypeMany, []Language{English, French, German, Spanish, Italian, Portuguese, Dutch, Croatian, Serbian, Bosnian, Montenegrin, Czech, Slovak, Polish, Swedish, Danish, Norwegian, Indonesian, Malay, Turkish}},
	ScriptGreek:      {"Greek", "Grek", RTypeOne, []Language{Greek}},
	ScriptCyrillic:   {"Cyrillic", "Cyrl", RTypeMany, []Language{Russian, Ukrainian, Bulgarian, Belarusian, Macedonian, Serbian}},
	ScriptArmenian:   {"Armenian", "Armn", RTypeOne, []Language{Armenian}},
	ScriptHebrew:     {"Hebrew", "Hebr", RTypeMany, []Language{Hebrew, Yiddish}},
	ScriptArabic:     {"Arabic", "Arab", RTypeMany, []Language{Arabic, Persian, Urdu}},
	ScriptSyriac:     {"Syriac", "Syrc", RTypeOne, []Language{Syriac}},
	ScriptThaana:     {"Thaana", "Thaa", RTypeOne, []Language{Dhivehi}},
	ScriptDevanagari: {"Devanagari", "Deva", RTypeOne, []Language{Hindi}},
	ScriptBengali:    {"Bengali", "Beng", RTypeOne, []Language{Bengali}},
	ScriptGurmukhi:   {"Gurmukhi", "Guru", RTypeOne, []Language{Punjabi}},
	ScriptGujarati:   {"Gujarati", "Gujr", RTypeOne, []Language{Gujarati}},
	ScriptOriya:      {"Oriya", "Orya", RTypeOne, []Language{Oriya}},
	ScriptTamil:      {"Tamil", "Taml", RTypeOne, []Language{Tamil}},
	ScriptTelugu:     {"Telugu", "Telu", RTypeOne, []Language{Telugu}},
	ScriptKannada:    {"Kannada", "Knda", RTypeOne, []Language{Kannada}},
	ScriptMalayalam:  {"Malayalam", "Mlym", RTypeOne, []Language{Malayalam}},
	ScriptSinhala:    {"Sinhala", "Sinh", RTypeOne, []Language{Sinhalese}},
	ScriptThai:       {"Thai", "Thai", RTypeOne, []Language{Thai}},
	ScriptLao:        {"Lao", "Laoo", RTypeOne, []Language{Lao}},
	ScriptTibetan:    {"Tibetan", "Tibt", RTypeOne, []Language{Tibetan}},
	ScriptMyanmar:    {"Myanmar", "Mymr", RTypeOne, []Language{Burmese}},
	ScriptGeorgian:   {"Georgian", "Geor", RTypeOne, []Language{Georgian}},
	ScriptHangul:     {"Hangul", "Hang", RTypeOne, []Language{Korean}},
	ScriptEthiopic:   {"Ethiopic", "Ethi", RTypeOne, []Language{Amharic}},
	ScriptCherokee:   {"Cherokee", "Cher", RTypeOne, []Language{Cherokee}},
	ScriptKhmer:      {"Khmer", "Khmr", RTypeOne, []Language{Khmer}},
	ScriptMongolian:  {"Mongolian", "Mong", RTypeOne, []Language{Mongolian}},
	ScriptHani:       {"Hani", "Hani", RTypeCJK, []Language{Chinese, Japanese, ChineseT}},
	ScriptRunic:      {"Runic", "Runr", RTypeNone, []Language{XRunic}},
	ScriptOgham:      {"Ogham", "Ogam", RTypeNone, []Language{XOgham}},
}

// scriptTables is searched in order; frequent scripts come first.
var scriptTables = []struct {
	table  *unicode.RangeTable
	script Script
}{
	{unicode.Latin, ScriptLatin},
	{unicode.Han, ScriptHani},
	{unicode.Hiragana, ScriptHani},
	{unicode.Katakana, ScriptHani},
	{unicode.Cyrillic, ScriptCyrillic},
	{unicode.Arabic, ScriptArabic},
	{unicode.Hangul, ScriptHangul},
	{unicode.Greek, ScriptGreek},
	{unicode.Hebrew, ScriptHebrew},
	{unicode.Thai, ScriptThai},
	{unicode.Devanagari, ScriptDevanagari},
	{unicode.Common, ScriptCommon},
	{unicode.Inherited, ScriptInherited},
	{unicode.Bopomofo, ScriptHani},
	{unicode.Armenian, ScriptArmenian},
	{unicode.Georgian, ScriptGeorgian},
	{unicode.Bengali, ScriptBengali},
	{unicode.Tamil, ScriptTamil},
	{unicode.Telugu, ScriptTelugu},
	{unicode.Kannada, ScriptKannada},
	{unicode.Malayalam, ScriptMalayalam},
	{unicode.Gujarati, ScriptGujarati},
	{unicode.Gurmukhi, ScriptGurmukhi},
	{unicode.Oriya, ScriptOriya},
	{unicode.Sinhala, ScriptSinhala},
	{unicode.Lao, ScriptLao},
	{unicode.Tibetan, ScriptTibetan},
	{unicode.Myanmar, ScriptMyanmar},
	{unicode.Khmer, ScriptKhmer},
	{unicode.Ethiopic, ScriptEthiopic},
	{unicode.Cherokee, ScriptCherokee},
	{unicode.Mongolian, ScriptMongolian},
	{unicode.Syriac, ScriptSyriac},
	{unicode.Thaana, ScriptThaana},
	{unicode.Runic, ScriptRunic},
	{unicode.Ogham, ScriptOgham},
}

// ScriptOf returns the script of r. Runes outside every listed script,
// including unassigned code points, report ScriptUnknown.
func ScriptOf(r rune) Script {
	if r < 0x80 {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return ScriptLatin
		}
		return ScriptCommon
	}
	for _, st := range scriptTables {
		if unicode.Is(st.table, r) {
			return st.script
		}
	}
	return ScriptUnknown
}

// String returns the script name.
func (s Script) String() string {
	if s >= NumScripts {
		return fmt.Sprintf("Script(%d)", uint8(s))
	}
	return scriptInfo[s].name
}

// Code returns the ISO 15924 code of the script.
func (s Script) Code() string {
	if s >= NumScripts {
		return scriptInfo[ScriptUnknown].code
	}
	return scriptInfo[s].code
}

// RecognitionType returns the scoring strategy for s.
func (s Script) RecognitionType() RecognitionType {
	if s >= NumScripts {
		return RTypeNone
	}
	return scriptInfo[s].rtype
}

// Family returns the script family of s.
func (s Script) Family() ScriptFamily {
	switch s {
	case ScriptLatin:
		return FamilyLatin
	case ScriptCyrillic:
		return FamilyCyrillic
	case ScriptArabic:
		return FamilyArabic
	}
	return FamilyOther
}

// Languages returns the languages written in s, in per-script number order.
// The returned slice must not be modified.
func (s Script) Languages() []Language {
	if s >= NumScripts {
		return nil
	}
	return scriptInfo[s].langs
}

// DefaultLanguage returns the language assumed for s when nothing else is
// known. Scripts without languages return Unknown.
func DefaultLanguage(s Script) Language {
	if s >= NumScripts || len(scriptInfo[s].langs) == 0 {
		return Unknown
	}
	return scriptInfo[s].langs[0]
}

// PerScriptNumber returns the small number identifying l within s, or 0 if l
// is not written in s.
func PerScriptNumber(s Script, l Language) uint8 {
	if s >= NumScripts {
		return 0
	}
	for i, cand := range scriptInfo[s].langs {
		if cand == l {
			return uint8(i + 1)
		}
	}
	return 0
}

// FromPerScriptNumber is the inverse of PerScriptNumber. Out of range
// numbers return Unknown.
func FromPerScriptNumber(s Script, n uint8) Language {
	if s >= NumScripts || n == 0 || int(n) > len(scriptInfo[s].langs) {
		return Unknown
	}
	return scriptInfo[s].langs[n-1]
}

// MaxPerScript is an upper bound on per-script numbers.
const MaxPerScript = 24
