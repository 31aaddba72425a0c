// Package languagedetector runs lingua-go next to the n-gram detector and
// reports whether the two agree. Its verdicts are only logged and counted;
// they never change a detection.
package languagedetector

import (
	"strings"

	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"

	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/logger"
	"langindexer/internal/pkg/metrics"
)

// Texts shorter than this are not worth a second opinion.
const minTextLength = 20

// Languages both detectors know.
var linguaLanguages = map[langdata.Language]lingua.Language{
	langdata.English:    lingua.English,
	langdata.French:     lingua.French,
	langdata.German:     lingua.German,
	langdata.Spanish:    lingua.Spanish,
	langdata.Italian:    lingua.Italian,
	langdata.Portuguese: lingua.Portuguese,
	langdata.Dutch:      lingua.Dutch,
	langdata.Croatian:   lingua.Croatian,
	langdata.Serbian:    lingua.Serbian,
	langdata.Bosnian:    lingua.Bosnian,
	langdata.Czech:      lingua.Czech,
	langdata.Slovak:     lingua.Slovak,
	langdata.Polish:     lingua.Polish,
	langdata.Swedish:    lingua.Swedish,
	langdata.Danish:     lingua.Danish,
	langdata.Norwegian:  lingua.Bokmal,
	langdata.Indonesian: lingua.Indonesian,
	langdata.Malay:      lingua.Malay,
	langdata.Turkish:    lingua.Turkish,
	langdata.Russian:    lingua.Russian,
	langdata.Ukrainian:  lingua.Ukrainian,
	langdata.Bulgarian:  lingua.Bulgarian,
	langdata.Belarusian: lingua.Belarusian,
	langdata.Macedonian: lingua.Macedonian,
	langdata.Greek:      lingua.Greek,
	langdata.Arabic:     lingua.Arabic,
	langdata.Persian:    lingua.Persian,
	langdata.Urdu:       lingua.Urdu,
	langdata.Hebrew:     lingua.Hebrew,
	langdata.Hindi:      lingua.Hindi,
	langdata.Thai:       lingua.Thai,
	langdata.Georgian:   lingua.Georgian,
	langdata.Armenian:   lingua.Armenian,
	langdata.Korean:     lingua.Korean,
	langdata.Japanese:   lingua.Japanese,
	langdata.Chinese:    lingua.Chinese,
}

// Shadow wraps a lingua detector restricted to the shared languages.
type Shadow struct {
	detector lingua.LanguageDetector
	reverse  map[lingua.Language]langdata.Language
}

// NewShadow builds the comparison detector. Language models load on first
// use.
func NewShadow() *Shadow {
	langs := make([]lingua.Language, 0, len(linguaLanguages))
	reverse := make(map[lingua.Language]langdata.Language, len(linguaLanguages))
	for ours, theirs := range linguaLanguages {
		langs = append(langs, theirs)
		reverse[theirs] = ours
	}
	return &Shadow{
		detector: lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build(),
		reverse:  reverse,
	}
}

// Detect returns lingua's verdict, or false if the text is too short or
// lingua has none.
func (s *Shadow) Detect(text string) (langdata.Language, bool) {
	if len(strings.TrimSpace(text)) < minTextLength {
		return langdata.Unknown, false
	}
	detected, exists := s.detector.DetectLanguageOf(text)
	if !exists {
		return langdata.Unknown, false
	}
	return s.reverse[detected], true
}

// Compare runs the shadow detector on text and records whether it agrees
// with got. Languages in the same close set count as agreement. It returns
// the shadow verdict.
func (s *Shadow) Compare(text string, got langdata.Language) langdata.Language {
	shadow, ok := s.Detect(text)
	if !ok {
		return langdata.Unknown
	}
	if Agree(got, shadow) {
		metrics.ShadowAgreements.Inc()
	} else {
		metrics.ShadowDisagreements.WithLabelValues(shadow.Code()).Inc()
		logger.Log.Debug("Shadow detector disagrees",
			zap.String("detected_language", got.Code()),
			zap.String("shadow_language", shadow.Code()))
	}
	return shadow
}

// Agree reports whether two verdicts name the same language or members of
// one close set.
func Agree(a, b langdata.Language) bool {
	return a == b || langdata.SameCloseSet(a, b)
}
