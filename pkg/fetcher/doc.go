// Package fetcher is the HTTP side of an image download: one GET per URL,
// a per-request timeout, context cancellation, and failures classified
// into the errors package types (network, not_found, server_error, ...).
package fetcher
