package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"langindexer/internal/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "detections.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := &models.Detection{
		ID:        "abc",
		URL:       "https://example.fr/",
		Signature: "sig",
		Language:  "fr",
		Reliable:  true,
		TextBytes: 420,
		Top: []models.LanguageScore{
			{Language: "fr", Name: "French", Percent: 97, Score: 812.5},
		},
		Chunks:     []models.Chunk{{Offset: 0, Bytes: 420, Language: "fr"}},
		DetectedAt: time.Date(2024, 3, 1, 12, 0, 0, 5, time.UTC),
	}
	if err := s.Add(ctx, want); err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := s.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Language != "fr" || !got.Reliable || got.TextBytes != 420 || got.URL != want.URL {
		t.Errorf("Get = %+v", got)
	}
	if len(got.Top) != 1 || got.Top[0] != want.Top[0] {
		t.Errorf("Top = %+v", got.Top)
	}
	if len(got.Chunks) != 1 || got.Chunks[0] != want.Chunks[0] {
		t.Errorf("Chunks = %+v", got.Chunks)
	}
	if !got.DetectedAt.Equal(want.DetectedAt) {
		t.Errorf("DetectedAt = %v, want %v", got.DetectedAt, want.DetectedAt)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreCountByLanguage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i, lang := range []string{"fr", "de", "fr", "fr"} {
		d := &models.Detection{ID: string(rune('a' + i)), Language: lang, DetectedAt: time.Now()}
		if err := s.Add(ctx, d); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	// Replacing an id does not add a row.
	s.Add(ctx, &models.Detection{ID: "a", Language: "fr", DetectedAt: time.Now()})

	counts, err := s.CountByLanguage(ctx)
	if err != nil {
		t.Fatalf("CountByLanguage: %v", err)
	}
	if counts["fr"] != 3 || counts["de"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}
