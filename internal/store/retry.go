package store

import (
	"time"

	"github.com/rs/zerolog"

	"pasar/internal/apperrors"
)

// retryer re-executes a unit of work on transient connectivity failures with
// a fixed delay between attempts. Business-rule, validation and integrity
// failures propagate immediately without retry.
type retryer struct {
	maxRetries int
	delay      time.Duration
	log        zerolog.Logger
}

// Do runs fn, retrying up to maxRetries times when the failure is transient.
func (r *retryer) Do(operation string, fn func() error) error {
	retries := 0
	for {
		err := fn()
		if err == nil || !apperrors.IsTransient(err) {
			return err
		}

		retries++
		if retries > r.maxRetries {
			r.log.Error().
				Err(err).
				Str("operation", operation).
				Int("attempts", retries).
				Msg("database connection error, giving up")
			return err
		}

		r.log.Warn().
			Err(err).
			Str("operation", operation).
			Int("retry", retries).
			Int("max_retries", r.maxRetries).
			Msg("connection error, retrying")
		time.Sleep(r.delay)
	}
}
