// Package metrics counts what a fetch run did, on a dedicated prometheus
// registry that can be dumped as a node_exporter textfile after the run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for a fetch run.
type Metrics struct {
	Registry         *prometheus.Registry
	ImagesDownloaded prometheus.Counter
	BytesDownloaded  prometheus.Counter
	Retries          prometheus.Counter
	Errors           *prometheus.CounterVec
	DownloadDuration prometheus.Histogram
	URLsExtracted    prometheus.Gauge
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	images := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logpuzzle_images_downloaded_total",
		Help: "Images successfully written to the destination directory.",
	})
	bytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logpuzzle_download_bytes_total",
		Help: "Bytes of image data written to disk.",
	})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logpuzzle_download_retries_total",
		Help: "Download attempts repeated after a transient failure.",
	})
	errorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "logpuzzle_download_errors_total",
		Help: "Failed download attempts by error type.",
	}, []string{"error_type"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "logpuzzle_download_duration_seconds",
		Help:    "Time to fetch and store one image, retries included.",
		Buckets: prometheus.DefBuckets,
	})
	extracted := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "logpuzzle_urls_extracted",
		Help: "Unique puzzle URLs found in the access log.",
	})

	registry.MustRegister(images, bytes, retries, errorsTotal, duration, extracted)

	return &Metrics{
		Registry:         registry,
		ImagesDownloaded: images,
		BytesDownloaded:  bytes,
		Retries:          retries,
		Errors:           errorsTotal,
		DownloadDuration: duration,
		URLsExtracted:    extracted,
	}
}

// ObserveDownload records one stored image.
func (m *Metrics) ObserveDownload(size int64, d time.Duration) {
	if m == nil {
		return
	}
	m.ImagesDownloaded.Inc()
	m.BytesDownloaded.Add(float64(size))
	m.DownloadDuration.Observe(d.Seconds())
}

// IncRetries increments the retries counter.
func (m *Metrics) IncRetries() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(errorType).Inc()
}

// SetExtracted records how many URLs the extractor returned.
func (m *Metrics) SetExtracted(n int) {
	if m == nil {
		return
	}
	m.URLsExtracted.Set(float64(n))
}

// WriteTextfile writes the registry in text exposition format to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
