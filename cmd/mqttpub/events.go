package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vitalvas/mqttpub"
	"github.com/vitalvas/mqttpub/extensions/events"
)

type eventsFlags struct {
	sources []string
	stdin   bool
}

func newEventsCmd(global *globalFlags) *cobra.Command {
	flags := &eventsFlags{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Forward device events to the broker",
		Long: `events watches the device event bus and publishes power and wifi
state changes:

  cmConnected         -> KINDLE/CONNECTED
  goingToScreenSaver  -> KINDLE/SCREEN_STATE OFF
  outOfScreenSaver    -> KINDLE/SCREEN_STATE ON
  battLevelChanged N  -> KINDLE/BATTERY N

By default one lipc-wait-event process is started per source. With --stdin,
event lines are read from standard input instead.`,
		Example: `  mqttpub events --host 192.168.1.10
  lipc-wait-event -m com.lab126.powerd battLevelChanged | mqttpub events --stdin --source com.lab126.powerd`,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			if flags.stdin && len(flags.sources) != 1 {
				return fmt.Errorf("--stdin needs exactly one --source")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runEvents(ctx, global, flags, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringSliceVar(&flags.sources, "source", nil, "Event sources to watch (default: all known sources)")
	cmd.Flags().BoolVar(&flags.stdin, "stdin", false, "Read event lines from standard input")

	return cmd
}

func runEvents(ctx context.Context, global *globalFlags, flags *eventsFlags, stdin io.Reader) error {
	client, err := global.newClient()
	if err != nil {
		return err
	}

	conn, err := client.Connect(ctx, global.keepAlive)
	if err != nil {
		return err
	}
	defer conn.Disconnect()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := mqttpub.NewZerologLogger(log.Logger, clientLogLevel())
	bridge := events.NewBridge(conn, events.DefaultTranslator(), events.WithLogger(logger))

	registry := events.NewRegistry()
	handle := registry.Register(func(ev events.Event) {
		bridge.Handle(ev)
	})
	defer registry.Unregister(handle)

	dispatch := func(ev events.Event) {
		if err := registry.Dispatch(handle, ev); err != nil {
			log.Warn().Err(err).Str("event", ev.String()).Msg("dispatch failed")
		}
	}

	if global.keepAlive > 0 {
		go keepAlive(ctx, conn, time.Duration(global.keepAlive)*time.Second)
	}

	if flags.stdin {
		return ignoreCanceled(events.Watch(ctx, flags.sources[0], stdin, dispatch))
	}

	subscriptions := events.DefaultSubscriptions()
	sources := flags.sources
	if len(sources) == 0 {
		for source := range subscriptions {
			sources = append(sources, source)
		}
	}
	for _, source := range sources {
		if _, ok := subscriptions[source]; !ok {
			return fmt.Errorf("unknown event source %q", source)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, source := range sources {
		g.Go(func() error {
			return watchSource(gctx, source, subscriptions[source], dispatch)
		})
	}

	return ignoreCanceled(g.Wait())
}

// watchSource runs the event listener for one source until it exits or ctx
// is done.
func watchSource(ctx context.Context, source string, names []string, fn events.Callback) error {
	cmd := events.Command(ctx, source, names...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s for %s: %w", events.WatchCommand, source, err)
	}

	log.Info().Str("source", source).Strs("events", names).Msg("watching events")

	watchErr := events.Watch(ctx, source, stdout, fn)
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if watchErr != nil {
		return watchErr
	}
	if waitErr != nil {
		return fmt.Errorf("%s for %s: %w", events.WatchCommand, source, waitErr)
	}
	return fmt.Errorf("%s for %s exited", events.WatchCommand, source)
}

// keepAlive pings the broker once per interval until ctx is done or the
// connection is gone.
func keepAlive(ctx context.Context, conn *mqttpub.Connection, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				log.Warn().Err(err).Msg("keep alive ping failed")
				return
			}
		}
	}
}

func ignoreCanceled(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
