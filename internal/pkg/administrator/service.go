package administrator

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"langindexer/internal/pkg/logger"
	"langindexer/internal/pkg/metrics"
	"langindexer/internal/pkg/models"
	"langindexer/internal/pkg/processor"
	"langindexer/internal/pkg/queue"
)

const maxBodyBytes = 8 << 20

// newMux builds the HTTP API:
//
//	POST /detect   detect synchronously, respond with the detection
//	POST /index    queue for detection and indexing, respond 202
//	GET  /health   queue depth, workers and uptime
//	GET  /metrics  Prometheus metrics
//
// /detect and /index are rate limited.
func newMux(admin Administrator, limiter *rate.Limiter) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("POST /detect", limited(limiter, func(writer http.ResponseWriter, request *http.Request) {
		sub, ok := decodeSubmission(writer, request)
		if !ok {
			return
		}
		detection, err := admin.Detect(request.Context(), sub)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, processor.ErrEmptyText) || errors.Is(err, processor.ErrInvalidURL) {
				status = http.StatusBadRequest
			}
			http.Error(writer, err.Error(), status)
			return
		}
		writeJSON(writer, http.StatusOK, detection)
	}))

	mux.Handle("POST /index", limited(limiter, func(writer http.ResponseWriter, request *http.Request) {
		sub, ok := decodeSubmission(writer, request)
		if !ok {
			return
		}
		if err := admin.EnqueueSubmission(request.Context(), sub); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, queue.ErrQueueFull) || errors.Is(err, queue.ErrQueueClosed) {
				status = http.StatusServiceUnavailable
			}
			http.Error(writer, "failed to enqueue submission", status)
			logger.Log.Warn("Failed to enqueue submission", zap.Error(err))
			return
		}
		writer.WriteHeader(http.StatusAccepted)
		writer.Write([]byte("Submission enqueued"))
	}))

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /health", func(writer http.ResponseWriter, request *http.Request) {
		health := struct {
			Status     string    `json:"status"`
			QueueDepth int       `json:"queue_depth"`
			Workers    int       `json:"workers"`
			Uptime     string    `json:"uptime"`
			StartTime  time.Time `json:"start_time"`
		}{
			Status:     "OK",
			QueueDepth: admin.QueueDepth(),
			Workers:    admin.WorkerCount(),
			Uptime:     time.Since(admin.StartTime()).String(),
			StartTime:  admin.StartTime(),
		}
		writeJSON(writer, http.StatusOK, health)
	})

	return mux
}

func limited(limiter *rate.Limiter, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if limiter != nil && !limiter.Allow() {
			metrics.RateLimited.Inc()
			http.Error(writer, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(writer, request)
	})
}

// decodeSubmission reads a JSON or gob encoded submission. A text/plain body
// is taken as the text itself.
func decodeSubmission(writer http.ResponseWriter, request *http.Request) (models.Submission, bool) {
	var sub models.Submission
	body := http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	defer body.Close()

	contentType := request.Header.Get("Content-Type")
	var err error
	switch {
	case contentType == "application/gob":
		err = gob.NewDecoder(body).Decode(&sub)
	case strings.HasPrefix(contentType, "text/plain"):
		var text []byte
		text, err = io.ReadAll(body)
		sub.Text = string(text)
		sub.ContentLanguage = request.Header.Get("Content-Language")
	case contentType == "" || strings.HasPrefix(contentType, "application/json"):
		err = json.NewDecoder(body).Decode(&sub)
	default:
		http.Error(writer, "unsupported Content-Type "+contentType, http.StatusUnsupportedMediaType)
		logger.Log.Warn("Unsupported Content-Type", zap.String("content_type", contentType))
		return sub, false
	}
	if err != nil {
		http.Error(writer, "failed to decode request", http.StatusBadRequest)
		logger.Log.Warn("Failed to decode submission", zap.Error(err))
		return sub, false
	}
	return sub, true
}

func writeJSON(writer http.ResponseWriter, status int, v any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(v); err != nil {
		logger.Log.Warn("Failed to write response", zap.Error(err))
	}
}
