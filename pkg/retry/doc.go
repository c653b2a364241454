// Package retry provides opt-in retrying with backoff for image downloads.
//
// The default configuration tries exactly once, so a failed download stays
// fatal unless the user raises download.retry_attempts. Only transient
// failures are retried: network errors, 429 and 5xx responses.
//
//	cfg := &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultExponentialBackoff(),
//		RetryIf:     retry.DefaultRetryIf,
//		Logger:      logger.GetLogger(),
//	}
//	err := retry.Do(ctx, func(ctx context.Context) error {
//		_, err := client.Download(ctx, url, w)
//		return err
//	}, cfg)
package retry
