package client

import (
	"context"
	"time"

	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
)

// FollowerConfig configures a Follower.
type FollowerConfig struct {
	// Resolve is called before every connection attempt. The client picks a
	// new port and password on each launch, so a descriptor is never reused.
	Resolve func(ctx context.Context) (lockfile.Descriptor, error)

	// Topic defaults to AllEvents.
	Topic  string
	Handle func(Event)
	Logger log.Logger

	// MaxAttempts bounds consecutive failed attempts. 0 means unlimited.
	MaxAttempts int
}

// Follower keeps an event subscription open across client restarts.
type Follower struct {
	cfg     FollowerConfig
	logger  log.Logger
	backoff func(attempt int) time.Duration
}

func NewFollower(cfg FollowerConfig) *Follower {
	if cfg.Topic == "" {
		cfg.Topic = AllEvents
	}
	if cfg.Handle == nil {
		cfg.Handle = func(Event) {}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Follower{
		cfg:     cfg,
		logger:  log.With(logger, "component", "events"),
		backoff: backoff,
	}
}

// Run delivers events to Handle until ctx is cancelled, reconnecting with
// backoff whenever the socket drops. It returns nil on cancellation and the
// last error once MaxAttempts consecutive attempts have failed.
func (f *Follower) Run(ctx context.Context) error {
	attempt := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		connected, err := f.run(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			attempt = 0
		}

		attempt++
		if f.cfg.MaxAttempts > 0 && attempt >= f.cfg.MaxAttempts {
			return errors.Wrapf(err, "giving up after %d attempts", attempt)
		}

		delay := f.backoff(attempt)
		level.Warn(f.logger).Log("msg", "event stream lost, reconnecting", "err", err, "delay", delay, "attempt", attempt)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
	}
}

// run executes one connection lifecycle. connected reports whether the
// subscription was established before the failure.
func (f *Follower) run(ctx context.Context) (connected bool, err error) {
	d, err := f.cfg.Resolve(ctx)
	if err != nil {
		return false, err
	}

	conn, err := DialEvents(ctx, d)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if err := Subscribe(conn, f.cfg.Topic); err != nil {
		return false, err
	}
	level.Info(f.logger).Log("msg", "subscribed", "topic", f.cfg.Topic, "port", d.Port)

	// Unblock ReadEvent on shutdown.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		ev, err := ReadEvent(conn)
		if err != nil {
			return true, err
		}
		f.cfg.Handle(ev)
	}
}
