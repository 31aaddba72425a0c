package models

import "time"

// LanguageScore is one of the top languages of a detection.
type LanguageScore struct {
	Language string  `json:"language"`
	Name     string  `json:"name"`
	Percent  int     `json:"percent"`
	Score    float64 `json:"score"`
}

// Chunk is a byte range of the submitted text in one language.
type Chunk struct {
	Offset   int    `json:"offset"`
	Bytes    int    `json:"bytes"`
	Language string `json:"language"`
}

// Detection is the stored outcome of detecting one submission.
type Detection struct {
	ID        string          `json:"id"`
	URL       string          `json:"url,omitempty"`
	Signature string          `json:"signature"`
	Language  string          `json:"language"`
	Reliable  bool            `json:"reliable"`
	TextBytes int             `json:"text_bytes"`
	Top       []LanguageScore `json:"top"`
	Chunks    []Chunk         `json:"chunks,omitempty"`

	// ShadowLanguage is the verdict of the comparison detector, if enabled.
	ShadowLanguage string `json:"shadow_language,omitempty"`

	Cached     bool      `json:"cached"`
	DetectedAt time.Time `json:"detected_at"`
}
