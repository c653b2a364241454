// Package logger provides structured logging for logpuzzle.
//
// It wraps zerolog behind a small Logger interface with field support.
// Console output goes to stderr so that stdout stays reserved for the
// extracted URL list and download progress.
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("component", "downloader")
//	log.InfoWithFields("Download completed", map[string]interface{}{
//	    "file": "img0.jpg",
//	    "size": 1024,
//	})
//
// Tests can swap in NewNopLogger or NewTestLogger.
package logger
