// Package utils holds small helpers shared across the service.
package utils

import (
	"context"
	"fmt"
	"time"

	"merchant-backoffice/internal/logging"
)

// Retry runs fn up to maxAttempts times, waiting delay between failures.
// The wait honors ctx so a shutdown never blocks on a backoff sleep; a
// canceled context aborts with the context's error.
func Retry(ctx context.Context, logger *logging.Logger, maxAttempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := fn(); err != nil {
			lastErr = err
			logger.Warnf("Attempt %d/%d failed: %v", attempt, maxAttempts, err)
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
				case <-time.After(delay):
				}
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
