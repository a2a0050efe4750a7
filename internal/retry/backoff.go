// Package retry runs startup probes with capped exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/sitelist/internal/logger"
)

// Policy describes how long and how often a probe is retried.
type Policy struct {
	Total         time.Duration // overall budget (ex: 30s)
	Initial       time.Duration // first wait, doubles after each failure
	Max           time.Duration // cap on the wait
	PerAttempt    time.Duration // timeout given to each probe call
	WarnThreshold int           // attempts logged as warnings before escalating to errors
}

// Validate rejects non-positive durations.
func (p Policy) Validate() error {
	if p.Total <= 0 {
		return fmt.Errorf("total timeout must be > 0, got %v", p.Total)
	}
	if p.Initial <= 0 {
		return fmt.Errorf("retry interval must be > 0, got %v", p.Initial)
	}
	if p.Max <= 0 {
		return fmt.Errorf("max wait must be > 0, got %v", p.Max)
	}
	if p.PerAttempt <= 0 {
		return fmt.Errorf("ping timeout must be > 0, got %v", p.PerAttempt)
	}
	if p.WarnThreshold < 0 {
		return fmt.Errorf("warn threshold must be >= 0, got %d", p.WarnThreshold)
	}
	return nil
}

// Probe calls probe until it succeeds or the policy budget is spent.
// name identifies the dependency in logs ("mongo", "redis").
func Probe(name string, p Policy, log logger.Logger, probe func(ctx context.Context) error) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.Total)
	defer cancel()

	log.Info("connecting to "+name, logger.Duration("timeout", p.Total))

	start := time.Now()
	attempt := 0
	wait := p.Initial

	for {
		attempt++

		attemptCtx, attemptCancel := context.WithTimeout(ctx, p.PerAttempt)
		err := probe(attemptCtx)
		attemptCancel()

		if err == nil {
			if attempt > 1 {
				log.Warn("connected to "+name+" after retry",
					logger.Int("attempts", attempt),
					logger.Duration("elapsed", time.Since(start)))
			} else {
				log.Info("connected to " + name)
			}
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Error(name+" unavailable - failed to connect after timeout",
				logger.Int("attempts", attempt),
				logger.Duration("timeout", p.Total),
				logger.Error(err))
			return fmt.Errorf("%s unavailable after %d attempts (timeout: %v): %w",
				name, attempt, p.Total, err)

		case <-timer.C:
			logRetry(log, name, attempt, timeLeft(ctx), wait, p.WarnThreshold, err)
			wait *= 2
			if wait > p.Max {
				wait = p.Max
			}
		}
	}
}

func logRetry(log logger.Logger, name string, attempt int, remaining, next time.Duration, warnThreshold int, err error) {
	switch {
	case remaining < 10*time.Second:
		log.Error(name+" still down - retrying but timeout approaching",
			logger.Int("attempt", attempt),
			logger.Duration("remaining", remaining),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	case attempt <= warnThreshold:
		log.Warn(name+" connection failed, retrying",
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	default:
		log.Error(name+" still unavailable - connection attempts failing",
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", next),
			logger.Error(err))
	}
}

// timeLeft returns the remaining time before context deadline.
func timeLeft(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(deadline)
}
