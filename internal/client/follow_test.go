package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoff(t *testing.T) {
	t.Parallel()

	for attempt := 1; attempt <= 10; attempt++ {
		d := backoff(attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, maxDelay+maxDelay/4)
	}
	assert.LessOrEqual(t, backoff(1), baseDelay+baseDelay/4)
}

func TestFollower_Reconnects(t *testing.T) {
	t.Parallel()

	var sessions atomic.Int32
	upgrader := websocket.Upgrader{}

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg []any
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		n := sessions.Add(1)

		// one event per session, then drop the socket like a restarting client
		_ = conn.WriteJSON([]any{8, AllEvents, map[string]any{
			"uri":       "/lol-gameflow/v1/session",
			"eventType": "Update",
			"data":      n,
		}})
	}))
	defer srv.Close()

	d := descriptorFor(t, srv)
	got := make(chan Event, 8)

	f := NewFollower(FollowerConfig{
		Resolve: func(context.Context) (lockfile.Descriptor, error) { return d, nil },
		Handle: func(ev Event) {
			select {
			case got <- ev:
			default:
			}
		},
	})
	f.backoff = func(int) time.Duration { return time.Millisecond }

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	for i := 0; i < 2; i++ {
		select {
		case ev := <-got:
			assert.Equal(t, "/lol-gameflow/v1/session", ev.URI)
		case <-time.After(5 * time.Second):
			t.Fatal("no event received")
		}
	}
	assert.GreaterOrEqual(t, sessions.Load(), int32(2))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFollower_GivesUp(t *testing.T) {
	t.Parallel()

	errNotRunning := errors.New("not running")
	var calls atomic.Int32

	f := NewFollower(FollowerConfig{
		Resolve: func(context.Context) (lockfile.Descriptor, error) {
			calls.Add(1)
			return lockfile.Descriptor{}, errNotRunning
		},
		MaxAttempts: 3,
	})
	f.backoff = func(int) time.Duration { return time.Millisecond }

	err := f.Run(t.Context())
	require.ErrorIs(t, err, errNotRunning)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFollower_CancelledBeforeStart(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	f := NewFollower(FollowerConfig{
		Resolve: func(context.Context) (lockfile.Descriptor, error) {
			t.Error("resolve called after cancel")
			return lockfile.Descriptor{}, nil
		},
	})
	require.NoError(t, f.Run(ctx))
}
