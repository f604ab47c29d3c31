package db

import (
	"context"
	"log/slog"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health is the outcome of the startup probe. It is produced once and passed
// by value to whoever needs it; nothing mutates it afterwards.
type Health struct {
	reachable bool
	attempts  int
	checkedAt time.Time
	lastErr   string
}

// Reachable reports whether the store answered the probe.
func (h Health) Reachable() bool { return h.reachable }

// Attempts returns how many pings the probe issued.
func (h Health) Attempts() int { return h.attempts }

// CheckedAt returns when the probe finished.
func (h Health) CheckedAt() time.Time { return h.checkedAt }

// LastError returns the last ping error, if any.
func (h Health) LastError() string { return h.lastErr }

// Status renders the health for probes and logs.
func (h Health) Status() string {
	if h.reachable {
		return "reachable"
	}
	return "unreachable"
}

// ReachableHealth builds a healthy value, mostly for tests and wiring.
func ReachableHealth() Health {
	return Health{reachable: true, attempts: 1, checkedAt: time.Now().UTC()}
}

// UnreachableHealth builds an unhealthy value.
func UnreachableHealth(reason string) Health {
	return Health{attempts: 1, checkedAt: time.Now().UTC(), lastErr: reason}
}

// ProbeOptions controls the retry loop.
type ProbeOptions struct {
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

// Probe pings the store until it answers or attempts run out.
func Probe(ctx context.Context, p Pinger, opts ProbeOptions, logger *slog.Logger) Health {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}

	var h Health
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		h.attempts = attempt
		pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		err := p.Ping(pingCtx)
		cancel()
		if err == nil {
			h.reachable = true
			h.lastErr = ""
			break
		}
		h.lastErr = err.Error()
		logger.Warn("database probe failed", slog.Int("attempt", attempt), slog.Int("max_attempts", opts.Attempts), slog.Any("error", err))
		if attempt == opts.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			h.checkedAt = time.Now().UTC()
			return h
		case <-time.After(opts.Delay):
		}
	}
	h.checkedAt = time.Now().UTC()
	if h.reachable {
		logger.Info("database reachable", slog.Int("attempts", h.attempts))
	} else {
		logger.Warn("database unreachable, running with fallback credentials only", slog.Int("attempts", h.attempts))
	}
	return h
}
