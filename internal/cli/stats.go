package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/example/lingualisten/internal/database"
	"github.com/spf13/cobra"
)

func newStatsCommand(opts *rootOptions) *cobra.Command {
	var recent int
	var remind bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning statistics and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			userID := app.Config.UserID
			st, err := app.Statistics.GetUserStatistics(ctx, userID, time.Now().UTC(), app.Config.DueAfter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Statistics for %s\n", userID)
			fmt.Fprintf(out, "  Practiced items:  %d\n", st.PracticedItems)
			fmt.Fprintf(out, "  Mastered items:   %d\n", st.MasteredItems)
			fmt.Fprintf(out, "  Due for review:   %d\n", st.DueItems)
			fmt.Fprintf(out, "  Total practices:  %s\n", humanize.Comma(int64(st.TotalPractices)))
			fmt.Fprintf(out, "  Average accuracy: %.1f%%\n", st.AverageAccuracy)

			if remind && st.DueItems > 0 {
				notifier, err := app.Notifier()
				if err != nil {
					return err
				}
				if err := app.Scheduler(notifier).RunManualCheck(ctx, userID); err != nil {
					return err
				}
				fmt.Fprintln(out, "  Reminder sent")
			}

			events, err := app.Activity.Recent(ctx, userID, recent)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				return nil
			}
			fmt.Fprintln(out, "Recent activity")
			for _, ev := range events {
				fmt.Fprintf(out, "  %-8s %-10s %s\n", ev.Kind, ev.ItemID, humanize.Time(ev.CreatedAt))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&recent, "recent", database.MaxRecentActivity, "number of recent events to show")
	cmd.Flags().BoolVar(&remind, "remind", false, "send a review reminder if anything is due")
	return cmd
}
