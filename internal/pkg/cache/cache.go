// Package cache stores detections keyed by a signature of the submitted
// text and the options that influence detection.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"

	"langindexer/internal/pkg/models"
)

// ErrMiss is returned by Get when no detection is stored for the key.
var ErrMiss = errors.New("cache miss")

// Cache stores detections by signature.
type Cache interface {
	Get(ctx context.Context, signature string) (*models.Detection, error)
	Set(ctx context.Context, signature string, detection *models.Detection) error
	Close() error
}

// GenerateSignature hashes the submitted text together with every field
// that can change the detection.
func GenerateSignature(sub *models.Submission, flags uint32) string {
	h := sha256.New()
	for _, part := range []string{sub.Text, sub.ContentLanguage, sub.Charset, sub.Language, sub.TLD(), strconv.FormatUint(uint64(flags), 16)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
