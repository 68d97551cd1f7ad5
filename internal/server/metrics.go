package server

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shouni/nano-banana-studio/pkg/domain"
	"github.com/shouni/nano-banana-studio/pkg/generator"
)

const metricsNamespace = "nanobanana"

// Metrics は編集リクエストと HTTP API のメトリクスです。
type Metrics struct {
	editsTotal     *prometheus.CounterVec
	editDuration   prometheus.Histogram
	httpRequests   *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

// NewMetrics は reg にメトリクスを登録します。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		editsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "edits_total",
				Help:      "Total number of image edit requests by outcome",
			},
			[]string{"outcome"},
		),
		editDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "edit_duration_seconds",
				Help:      "Image edit round trip duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		activeSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "active_sessions",
				Help:      "Number of sessions currently held in memory",
			},
		),
	}
}

// outcomeOf はエラーを edits_total の outcome ラベルに変換します。
func outcomeOf(err error) string {
	var refusal *domain.RefusalError
	var transport *domain.TransportError
	switch {
	case err == nil:
		return "image"
	case errors.As(err, &refusal):
		return "refusal"
	case errors.As(err, &transport):
		return "transport"
	case errors.Is(err, domain.ErrEmptyResponse):
		return "empty_response"
	case errors.Is(err, domain.ErrNoImageData):
		return "no_image_data"
	default:
		return "invalid_request"
	}
}

// instrumentedEditor は ImageEditor の呼び出し結果と所要時間を記録します。
type instrumentedEditor struct {
	next    generator.ImageEditor
	metrics *Metrics
}

func (e *instrumentedEditor) SubmitEdit(ctx context.Context, req domain.EditRequest) (*domain.EditResult, error) {
	start := time.Now()
	res, err := e.next.SubmitEdit(ctx, req)
	e.metrics.editDuration.Observe(time.Since(start).Seconds())
	e.metrics.editsTotal.WithLabelValues(outcomeOf(err)).Inc()
	return res, err
}
