package logger

import (
	"time"

	"github.com/dustin/go-humanize"
)

// LogRequest logs the outcome of one HTTP request
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	default:
		l.WarnWithFields("HTTP request client error", fields)
	}
}

// LogDownload logs a finished image download
func LogDownload(l Logger, index int, url, file string, size int64, err error) {
	entry := l.WithFields(map[string]interface{}{
		"index": index,
		"url":   url,
		"file":  file,
	})

	if err != nil {
		entry.WithError(err).Error("Download failed")
		return
	}
	entry.WithField("size", humanize.Bytes(uint64(size))).Info("Download completed")
}

// LogRunSummary logs totals for a finished fetch run
func LogRunSummary(l Logger, dir string, images int, bytes int64, elapsed time.Duration) {
	l.InfoWithFields("Fetch run finished", map[string]interface{}{
		"dir":      dir,
		"images":   images,
		"bytes":    humanize.Bytes(uint64(bytes)),
		"duration": elapsed,
	})
}
