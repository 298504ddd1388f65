// Package tdx implements the station and timetable driven ports
// against the Taiwan TDX (Transport Data eXchange) open-data platform.
//
// Authentication uses the OAuth2 client-credentials flow; tokens are
// acquired and refreshed transparently. All requests pass through a
// token-bucket rate limiter and transient upstream failures (429, 5xx)
// are retried a bounded number of times with backoff.
package tdx
