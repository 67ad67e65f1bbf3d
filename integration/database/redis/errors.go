package redis

import "errors"

var (
	ErrEmptyConnectionURL           = errors.New("empty redis connection URL")
	ErrFailedToParseRedisConnString = errors.New("failed to parse redis connection string")

	// ErrRedisNotReady is returned when PING keeps failing for every retry attempt.
	ErrRedisNotReady = errors.New("redis did not answer ping within the retry budget")

	// ErrHealthcheckFailed wraps readiness probe failures.
	ErrHealthcheckFailed = errors.New("redis healthcheck failed")

	// ErrNilClient is joined with ErrHealthcheckFailed when the probe has no client to ping.
	ErrNilClient = errors.New("redis client is nil")
)
