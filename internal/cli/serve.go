package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Keep content fresh and send review reminders in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			gen, _, err := app.Store.LoadAndRevalidate(ctx)
			if err != nil {
				// the refresh job retries on its next run
				app.Log.Warn("no content available yet", "err", err)
			} else {
				app.Log.Info("content loaded", "generation", gen.ID, "items", gen.Len())
			}

			notifier, err := app.Notifier()
			if err != nil {
				return err
			}
			sched := app.Scheduler(notifier)
			if err := sched.Start(); err != nil {
				return err
			}
			app.Log.Info("scheduler started. Press Ctrl+C to stop.")

			<-ctx.Done()
			app.Log.Info("shutting down")

			done := make(chan struct{})
			go func() {
				sched.Stop()
				app.Store.Close()
				close(done)
			}()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			select {
			case <-done:
				app.Log.Info("stopped successfully")
			case <-shutdownCtx.Done():
				app.Log.Warn("shutdown timed out")
			}
			return nil
		},
	}
}
