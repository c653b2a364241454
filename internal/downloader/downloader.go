// Package downloader runs the fetch phase: every image URL is fetched in
// order into the destination directory and an index page is written once
// all of them are stored.
package downloader

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	errs "logpuzzle/pkg/errors"
	"logpuzzle/pkg/logger"
	"logpuzzle/pkg/metrics"
	"logpuzzle/pkg/ratelimit"
	"logpuzzle/pkg/retry"
	"logpuzzle/pkg/storage"
	"logpuzzle/pkg/ui"
)

// ImageFetcher streams the body of an image URL into w
type ImageFetcher interface {
	Download(ctx context.Context, url string, w io.Writer) (int64, error)
}

// ImageStore persists images and the index page
type ImageStore interface {
	SaveImage(name string, write func(io.Writer) error) error
	WriteIndex(fileName string, names []string, mode storage.IndexMode) error
	GetOutputDir() string
}

// Result summarizes a completed fetch run
type Result struct {
	Files    []string
	Bytes    int64
	Duration time.Duration
}

// Downloader fetches images one at a time
type Downloader struct {
	client    ImageFetcher
	store     ImageStore
	out       io.Writer
	limiter   ratelimit.Limiter
	retry     *retry.Config
	metrics   *metrics.Metrics
	logger    logger.Logger
	indexMode storage.IndexMode
	indexFile string
}

// Option configures a Downloader
type Option func(*Downloader)

// WithOutput sets where progress lines are printed
func WithOutput(w io.Writer) Option {
	return func(d *Downloader) { d.out = w }
}

// WithLimiter paces requests
func WithLimiter(l ratelimit.Limiter) Option {
	return func(d *Downloader) { d.limiter = l }
}

// WithRetry sets the retry policy applied to each image
func WithRetry(cfg *retry.Config) Option {
	return func(d *Downloader) { d.retry = cfg }
}

// WithMetrics records run counters
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Downloader) { d.metrics = m }
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(d *Downloader) { d.logger = l }
}

// WithIndex sets the index page file name and write mode
func WithIndex(fileName string, mode storage.IndexMode) Option {
	return func(d *Downloader) {
		d.indexFile = fileName
		d.indexMode = mode
	}
}

// New creates a Downloader that fetches with client and stores into store
func New(client ImageFetcher, store ImageStore, opts ...Option) *Downloader {
	d := &Downloader{
		client:    client,
		store:     store,
		out:       os.Stdout,
		limiter:   ratelimit.Unlimited{},
		indexMode: storage.IndexAppend,
		indexFile: storage.DefaultIndexFile,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.GetLogger()
	}
	if d.retry == nil {
		d.retry = retry.DefaultConfig()
		d.retry.Logger = d.logger
	}
	return d
}

// FetchAll downloads urls in order as img0, img1, ... and then writes the
// index page. It stops at the first image that cannot be stored; images
// saved before the failure stay on disk and no index page is written.
func (d *Downloader) FetchAll(ctx context.Context, urls []string) (*Result, error) {
	start := time.Now()
	progress := ui.NewProgress(d.out, len(urls))
	result := &Result{Files: make([]string, 0, len(urls))}

	d.logger.InfoWithFields("Starting fetch run", map[string]interface{}{
		"images": len(urls),
		"dir":    d.store.GetOutputDir(),
	})

	for i, url := range urls {
		name := storage.ImageName(i, url)
		progress.Start(i)

		size, err := d.fetchOne(ctx, url, name)
		logger.LogDownload(d.logger, i, url, name, size, err)
		if err != nil {
			d.metrics.IncError(string(errs.TypeOf(err)))
			result.Duration = time.Since(start)
			return result, fmt.Errorf("image %d (%s): %w", i, url, err)
		}

		result.Files = append(result.Files, name)
		result.Bytes += size
	}

	if err := d.store.WriteIndex(d.indexFile, result.Files, d.indexMode); err != nil {
		result.Duration = time.Since(start)
		return result, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// fetchOne stores a single image, retrying per the configured policy
func (d *Downloader) fetchOne(ctx context.Context, url, name string) (int64, error) {
	start := time.Now()

	cfg := *d.retry
	onRetry := cfg.OnRetry
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		d.metrics.IncRetries()
		d.metrics.IncError(string(errs.TypeOf(err)))
		if onRetry != nil {
			onRetry(attempt, err, delay)
		}
	}

	size, err := retry.DoWithResult(ctx, func(ctx context.Context) (int64, error) {
		if err := d.limiter.Wait(ctx); err != nil {
			return 0, errs.Wrap(errs.ErrorTypeCancelled, url, "run cancelled", err)
		}

		var n int64
		err := d.store.SaveImage(name, func(w io.Writer) error {
			var err error
			n, err = d.client.Download(ctx, url, w)
			return err
		})
		return n, err
	}, &cfg)
	if err != nil {
		return 0, err
	}

	d.metrics.ObserveDownload(size, time.Since(start))
	return size, nil
}
