// Package ratelimit paces downloads against the hosts named in a log.
//
// Pacing is off by default. When download.requests_per_minute is set, a
// sliding window limits how many downloads may start within any minute and
// Wait blocks the sequential fetch loop until the next slot opens.
//
//	limiter := ratelimit.New(30) // at most 30 downloads per minute
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // ctx cancelled while waiting
//	}
package ratelimit
