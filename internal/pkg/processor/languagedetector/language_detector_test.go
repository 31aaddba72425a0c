package languagedetector

import (
	"testing"

	"langindexer/internal/pkg/langdata"
)

func TestShadowDetect(t *testing.T) {
	s := NewShadow()

	if _, ok := s.Detect("too short"); ok {
		t.Errorf("expected no verdict for short text")
	}
	got, ok := s.Detect("The children walk to school in small groups every morning.")
	if !ok || got != langdata.English {
		t.Errorf("Detect = %v, %v, want en", got, ok)
	}
	if got := s.Compare("Die Kinder gehen jeden Morgen in kleinen Gruppen zur Schule.", langdata.German); got != langdata.German {
		t.Errorf("Compare = %v, want de", got)
	}
}

func TestAgree(t *testing.T) {
	tests := []struct {
		a, b langdata.Language
		want bool
	}{
		{langdata.French, langdata.French, true},
		{langdata.Croatian, langdata.Serbian, true},
		{langdata.Indonesian, langdata.Malay, true},
		{langdata.French, langdata.German, false},
		{langdata.Unknown, langdata.English, false},
	}
	for _, tt := range tests {
		if got := Agree(tt.a, tt.b); got != tt.want {
			t.Errorf("Agree(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestLinguaLanguagesAreUnique(t *testing.T) {
	seen := make(map[string]langdata.Language)
	for ours, theirs := range linguaLanguages {
		if prev, dup := seen[theirs.String()]; dup {
			t.Errorf("%v and %v both map to %v", prev, ours, theirs)
		}
		seen[theirs.String()] = ours
	}
}
