package retry

import (
	"context"
	"time"
)

// Do runs op up to attempts times, waiting delay between failed attempts.
// The first nil result returns immediately; after the last attempt the
// final error is returned as-is. No delay follows the last attempt.
func Do(ctx context.Context, attempts int, delay time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
