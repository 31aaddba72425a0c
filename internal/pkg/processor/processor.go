package processor

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"langindexer/internal/pkg/cache"
	"langindexer/internal/pkg/detector"
	"langindexer/internal/pkg/langdata"
	"langindexer/internal/pkg/logger"
	"langindexer/internal/pkg/metrics"
	"langindexer/internal/pkg/models"
	"langindexer/internal/pkg/processor/languagedetector"
)

var (
	ErrEmptyText  = errors.New("submission has no text")
	ErrInvalidURL = errors.New("invalid URL")
)

// Processor turns a submission into a detection.
type Processor interface {
	Process(ctx context.Context, sub *models.Submission) (*models.Detection, error)
}

// Options set the detection flags applied to every submission.
type Options struct {
	BestEffort bool
	PlainText  bool
}

type processor struct {
	detector *detector.Detector
	cache    cache.Cache
	shadow   *languagedetector.Shadow
	opts     Options
	now      func() time.Time
}

// NewProcessor wires a detector with an optional cache and an optional
// shadow detector. Either may be nil.
func NewProcessor(d *detector.Detector, c cache.Cache, shadow *languagedetector.Shadow, opts Options) Processor {
	return &processor{
		detector: d,
		cache:    c,
		shadow:   shadow,
		opts:     opts,
		now:      time.Now,
	}
}

// Process normalizes the submission, serves it from the cache when it can,
// and otherwise runs detection and caches the result.
func (p *processor) Process(ctx context.Context, sub *models.Submission) (*models.Detection, error) {
	if err := cleanAndNormalize(sub); err != nil {
		return nil, err
	}

	flags := p.flags(sub)
	signature := cache.GenerateSignature(sub, uint32(flags))
	if cached := p.lookup(ctx, signature); cached != nil {
		cached.ID = uuid.NewString()
		cached.URL = sub.URL
		cached.Cached = true
		cached.DetectedAt = p.now()
		return cached, nil
	}

	start := time.Now()
	res := p.detector.Detect([]byte(sub.Text), hintsFor(sub), flags)
	metrics.DetectionLatency.Observe(time.Since(start).Seconds())
	metrics.DocumentsDetected.Inc()
	metrics.BytesScanned.Add(float64(res.TextBytes))
	metrics.DetectedLanguages.WithLabelValues(res.Language().Code()).Inc()
	if !res.IsReliable {
		metrics.UnreliableResults.Inc()
	}

	detection := newDetection(sub, signature, res)
	detection.DetectedAt = p.now()
	if p.shadow != nil {
		if shadow := p.shadow.Compare(sub.Text, res.Language()); shadow != langdata.Unknown {
			detection.ShadowLanguage = shadow.Code()
		}
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, signature, detection); err != nil {
			logger.Log.Warn("Failed to cache detection", zap.String("id", detection.ID), zap.Error(err))
		}
	}
	return detection, nil
}

func (p *processor) lookup(ctx context.Context, signature string) *models.Detection {
	if p.cache == nil {
		return nil
	}
	cached, err := p.cache.Get(ctx, signature)
	switch {
	case err == nil:
		metrics.CacheHits.Inc()
		return cached
	case errors.Is(err, cache.ErrMiss):
		metrics.CacheMisses.Inc()
	default:
		metrics.CacheMisses.Inc()
		logger.Log.Warn("Cache lookup failed", zap.Error(err))
	}
	return nil
}

func (p *processor) flags(sub *models.Submission) detector.Flags {
	var flags detector.Flags
	if p.opts.BestEffort {
		flags |= detector.FlagBestEffort
	}
	if p.opts.PlainText || sub.PlainText {
		flags |= detector.FlagPlainText
	}
	if sub.Chunks {
		flags |= detector.FlagReturnChunks
	}
	return flags
}

func hintsFor(sub *models.Submission) *detector.Hints {
	return &detector.Hints{
		ContentLanguage: sub.ContentLanguage,
		TLD:             sub.TLD(),
		Charset:         sub.Charset,
		Language:        langdata.FromCode(sub.Language),
	}
}

func newDetection(sub *models.Submission, signature string, res detector.Result) *models.Detection {
	d := &models.Detection{
		ID:        uuid.NewString(),
		URL:       sub.URL,
		Signature: signature,
		Language:  res.Language().Code(),
		Reliable:  res.IsReliable,
		TextBytes: res.TextBytes,
	}
	for i, lang := range res.Top3 {
		if lang == langdata.Unknown {
			break
		}
		d.Top = append(d.Top, models.LanguageScore{
			Language: lang.Code(),
			Name:     lang.String(),
			Percent:  res.Percent3[i],
			Score:    res.NormalizedScore3[i],
		})
	}
	for _, c := range res.Chunks {
		d.Chunks = append(d.Chunks, models.Chunk{Offset: c.Offset, Bytes: c.Bytes, Language: c.Lang.Code()})
	}
	return d
}

// Checks the text and normalizes the URL in place.
func cleanAndNormalize(sub *models.Submission) error {
	if strings.TrimSpace(sub.Text) == "" {
		return ErrEmptyText
	}
	if strings.TrimSpace(sub.URL) == "" {
		sub.URL = ""
		return nil
	}
	normalized, err := normalizeURL(sub.URL)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidURL, sub.URL, err)
	}
	sub.URL = normalized
	return nil
}

// Trims, parses, and normalizes an absolute URL.
func normalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("empty URL")
	}
	if !strings.Contains(rawURL, "://") && !strings.HasPrefix(rawURL, "//") {
		return "", errors.New("relative URL without base")
	}
	if strings.HasPrefix(rawURL, "//") {
		rawURL = "https:" + rawURL
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsedURL.Host == "" {
		return "", errors.New("missing host")
	}
	parsedURL.Scheme = strings.ToLower(parsedURL.Scheme)
	parsedURL.Host = strings.ToLower(parsedURL.Host)
	parsedURL.Fragment = ""
	return parsedURL.String(), nil
}
