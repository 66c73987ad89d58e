// Package httputil provides the retry policy shared by every outbound call.
//
// # Overview
//
// The directory, registry and raw-manifest clients all go through one
// [Policy]. A policy bounds the number of attempts and decides how long to
// wait between them. Only errors wrapped in [RetryableError] trigger another
// attempt; anything else is returned immediately.
//
// # Delay
//
// The zero-value delay retries immediately, which is what the resolution
// pipeline does by default. A non-zero [Policy.Backoff] switches to an
// exponential schedule built on github.com/cenk/backoff:
//
//	p := httputil.Policy{Attempts: 3, Backoff: 200 * time.Millisecond}
//	err := p.Do(ctx, func(attempt int) error {
//	    return fetch()
//	})
//
// # Configuration
//
// Default settings ([DefaultPolicy]):
//
//   - Max attempts: 3
//   - Delay: none
package httputil
