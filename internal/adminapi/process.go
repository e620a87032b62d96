package adminapi

import (
	"context"
	"time"
)

// DefaultPollInterval is the fixed status poll cadence. The backend exposes
// no push channel for processing progress, so the poller stays interval
// based with no backoff.
const DefaultPollInterval = 2 * time.Second

// StatusFunc fetches the current processing status for a product.
type StatusFunc func(ctx context.Context) (*ProcessingStatus, error)

// WatchProcessing polls the status endpoint until a terminal stage is
// reached or the context ends. Every observed status is delivered to
// onStatus, including the terminal one. The terminal status is returned.
func WatchProcessing(ctx context.Context, interval time.Duration, fetch StatusFunc, onStatus func(ProcessingStatus)) (*ProcessingStatus, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if onStatus != nil {
			onStatus(*status)
		}
		if status.Terminal() {
			return status, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
