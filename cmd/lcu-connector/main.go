package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/4throck/lcu-connector/internal/client"
	"github.com/4throck/lcu-connector/internal/instance"
	"github.com/4throck/lcu-connector/internal/locate"
	"github.com/4throck/lcu-connector/internal/lockfile"
	"github.com/4throck/lcu-connector/internal/render"
	"github.com/4throck/lcu-connector/internal/ui"
	"github.com/4throck/lcu-connector/internal/watch"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"
)

var Version = "dev"

const title = "LCU Connector"

// presenter is the UI used for results and fatal errors
var presenter ui.UI

type options struct {
	format  string
	dir     string
	timeout time.Duration
	watch   bool
	events  bool
	gui     bool
	logFile string
	debug   bool
	version bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if opts.version {
		fmt.Printf("lcu-connector %s\n", Version)
		os.Exit(0)
	}

	// Select UI implementation: native OS dialogs or CLI fallback
	presenter = ui.Select(opts.gui)

	logger := newLogger(opts.logFile, opts.debug)
	level.Info(logger).Log("msg", "lcu-connector starting", "version", Version, "os", runtime.GOOS)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case opts.watch:
		err = runWatch(ctx, logger, opts)
	case opts.events:
		err = runEvents(ctx, logger, opts)
	default:
		err = runOnce(ctx, logger, opts)
	}
	if err != nil {
		stop()
		fatal(logger, err)
	}
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("lcu-connector", flag.ContinueOnError)
	fs.StringVar(&opts.format, "format", "json", "Output format: "+strings.Join(render.Formats, ", "))
	fs.StringVar(&opts.dir, "dir", "", "League installation directory (skips process discovery)")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Time allowed to find the running client")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and print every new lockfile")
	fs.BoolVar(&opts.events, "events", false, "Subscribe to the client's event socket and print events")
	fs.BoolVar(&opts.gui, "gui", false, "Show results and errors in native dialogs")
	fs.StringVar(&opts.logFile, "log-file", defaultLogFile(), "Log file path, empty to disable")
	fs.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&opts.version, "version", false, "Show version")

	// LCU_FORMAT=yaml etc.
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("LCU")); err != nil {
		return nil, err
	}

	if !render.Supported(opts.format) {
		return nil, errors.Wrapf(render.ErrUnknownFormat, "-format %q", opts.format)
	}
	if opts.watch && opts.events {
		return nil, errors.New("-watch and -events cannot be combined")
	}
	if opts.timeout <= 0 {
		return nil, errors.Errorf("-timeout must be positive, got %s", opts.timeout)
	}
	return opts, nil
}

// resolve finds the running client and reads its lockfile, or reads the
// lockfile in -dir directly.
func resolve(ctx context.Context, logger log.Logger, opts *options) (lockfile.Descriptor, error) {
	if opts.dir != "" {
		return lockfile.ReadDir(opts.dir)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	resolver := lockfile.NewResolver(
		locate.New(locate.WithLogger(logger)),
		lockfile.WithLogger(logger),
	)
	d, err := resolver.Resolve(ctx)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return d, errors.Wrapf(context.DeadlineExceeded, "no answer from the process list within %s", opts.timeout)
	}
	return d, err
}

func runOnce(ctx context.Context, logger log.Logger, opts *options) error {
	for {
		d, err := resolve(ctx, logger, opts)
		if err == nil {
			level.Info(logger).Log("msg", "resolved client", "pid", d.PID, "port", d.Port)
			return show(d, opts.format)
		}
		if !canPrompt() {
			return err
		}

		switch {
		case errors.Is(err, locate.ErrUnsupportedPlatform):
			dir, ok := presenter.Entry(title, describeError(err)+"\n\nLeague installation directory", "")
			dir = strings.TrimSpace(dir)
			if !ok || dir == "" {
				return err
			}
			opts.dir = dir
		case retryable(err):
			if !presenter.Confirm(title, describeError(err)+"\n\nRetry?") {
				return err
			}
		default:
			return err
		}
		level.Debug(logger).Log("msg", "retrying", "err", err)
	}
}

func runWatch(ctx context.Context, logger log.Logger, opts *options) error {
	stateDir, err := instance.DefaultDir()
	if err != nil {
		return err
	}
	lock, err := instance.Acquire(stateDir)
	if err != nil {
		return err
	}
	defer lock.Release()

	dir := opts.dir
	if dir == "" {
		lctx, cancel := context.WithTimeout(ctx, opts.timeout)
		dir, err = locate.New(locate.WithLogger(logger)).Locate(lctx)
		cancel()
		if err != nil {
			return err
		}
	}

	w := watch.New(watch.Config{
		Dir:    dir,
		Logger: logger,
		OnChange: func(d lockfile.Descriptor) {
			alive, err := watch.Alive(ctx, d)
			if err != nil {
				level.Warn(logger).Log("msg", "could not check client process", "err", err)
			} else if !alive {
				level.Info(logger).Log("msg", "lockfile is stale, waiting for the client", "pid", d.PID)
				return
			}
			if err := render.Write(os.Stdout, d, opts.format); err != nil {
				level.Error(logger).Log("msg", "render failed", "err", err)
			}
			ui.Notify(title, fmt.Sprintf("League client ready on port %d", d.Port))
		},
		OnGone: func() {
			ui.Notify(title, "League client closed")
		},
	})
	if err := w.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	level.Info(logger).Log("msg", "shutting down")
	w.Stop()
	return nil
}

func runEvents(ctx context.Context, logger log.Logger, opts *options) error {
	// Fail fast when the client cannot be found at all.
	d, err := resolve(ctx, logger, opts)
	if err != nil {
		return err
	}

	if build, err := client.New(d).Get(ctx, "/system/v1/builds"); err != nil {
		level.Warn(logger).Log("msg", "could not query client build", "err", err)
	} else {
		level.Debug(logger).Log("msg", "client build", "body", string(build))
	}

	enc := json.NewEncoder(os.Stdout)
	follower := client.NewFollower(client.FollowerConfig{
		Resolve: func(ctx context.Context) (lockfile.Descriptor, error) {
			return resolve(ctx, logger, opts)
		},
		Topic:  client.AllEvents,
		Logger: logger,
		Handle: func(ev client.Event) {
			level.Debug(logger).Log("msg", "event", "type", ev.Type, "uri", ev.URI)
			if err := enc.Encode(ev); err != nil {
				level.Error(logger).Log("msg", "writing event", "err", err)
			}
		},
	})

	err = follower.Run(ctx)
	level.Info(logger).Log("msg", "shutting down")
	return err
}

// show renders d to stdout, or into a dialog when the GUI is in use.
func show(d lockfile.Descriptor, format string) error {
	if _, ok := presenter.(*ui.GuiUI); !ok {
		return render.Write(os.Stdout, d, format)
	}
	var buf bytes.Buffer
	if err := render.Write(&buf, d, format); err != nil {
		return err
	}
	presenter.Info(title, buf.String())
	return nil
}

func canPrompt() bool {
	if _, ok := presenter.(*ui.GuiUI); ok {
		return true
	}
	return ui.IsInteractive()
}

// fatal shows an error via GUI dialog or stderr, then exits.
func fatal(logger log.Logger, err error) {
	level.Error(logger).Log("msg", "fatal", "err", err)
	presenter.Error(title, describeError(err))
	os.Exit(1)
}
