package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/syllabus"
	"github.com/aretw0/syllabus/pkg/adapters/lifecycle"
	"github.com/aretw0/syllabus/pkg/core"
	"github.com/aretw0/syllabus/pkg/session"
)

var (
	watchTick time.Duration
	watchRaw  bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow changes made to the data by other processes",
	Long: `Keep a session open and reload whatever another process changes,
printing a clock line on every tick. With --raw, print the storage events
instead of reloading.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		cmd.SetContext(ctx)

		var opts []syllabus.Option
		if !watchRaw {
			opts = append(opts, syllabus.WithReloadHook(func(key string) {
				fmt.Printf("%s  reloaded %s\n", time.Now().Format("15:04:05"), key)
			}))
		}

		s, sctx := openSession(cmd, opts...)
		defer closeSession(context.Background(), s)

		if watchRaw {
			watchRawEvents(sctx, s)
			return
		}

		if err := s.Watch(sctx); err != nil {
			if errors.Is(err, session.ErrNotWatchable) {
				fmt.Fprintln(os.Stderr, "The selected adapter does not report changes; use the fs adapter.")
				os.Exit(1)
			}
			fatal("Failed to watch", err)
		}

		if _, err := s.Every(sctx, watchTick, func(_ context.Context, now time.Time) {
			fmt.Printf("%s  %d notes, %d pdfs\n", now.Format("15:04:05"), s.Notes().Len(), s.PDFs().Len())
		}); err != nil {
			fatal("Failed to start clock", err)
		}

		fmt.Fprintln(os.Stderr, "Watching for changes. Press Ctrl+C to stop.")
		<-sctx.Done()
	},
}

func watchRawEvents(ctx context.Context, s *syllabus.Session) {
	w, ok := s.Storage().(core.Watchable)
	if !ok {
		fmt.Fprintln(os.Stderr, "The selected adapter does not report changes; use the fs adapter.")
		os.Exit(1)
	}
	events, err := w.Watch(ctx, "")
	if err != nil {
		fatal("Failed to watch", err)
	}

	src := lifecycle.NewSource(events)
	if err := src.Start(ctx); err != nil {
		fatal("Failed to start event source", err)
	}
	for e := range src.Events() {
		fmt.Println(e)
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchTick, "tick", time.Minute, "Clock interval")
	watchCmd.Flags().BoolVar(&watchRaw, "raw", false, "Print raw storage events")
}
