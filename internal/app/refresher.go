package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/labctl/labctl/internal/labapi"
	"github.com/labctl/labctl/internal/state"
)

const maxBackoff = 30 * time.Second

// Refreshable is the slice of *state.Engine the refresher drives.
type Refreshable interface {
	ActiveFilter() labapi.FilterKey
	Refresh(ctx context.Context, key labapi.FilterKey) (state.Entry, error)
}

// RefreshFunc receives every background refresh outcome.
type RefreshFunc func(key labapi.FilterKey, entry state.Entry, err error)

// StartRefresher reloads the active filter every interval until ctx is done.
// Consecutive failures back off exponentially up to maxBackoff. A
// non-positive interval disables it. It returns immediately.
func StartRefresher(ctx context.Context, engine Refreshable, interval time.Duration, log logrus.FieldLogger, onResult RefreshFunc) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "refresher")

	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			key := engine.ActiveFilter()
			entry, err := engine.Refresh(ctx, key)
			if err != nil {
				failures++
				log.WithError(err).WithFields(logrus.Fields{"filter": key.String(), "failures": failures}).Warn("background refresh failed")
			} else {
				failures = 0
			}
			if onResult != nil {
				onResult(key, entry, err)
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// calculateBackoff doubles base per consecutive failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
