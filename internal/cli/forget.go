package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newForgetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <code>",
		Short: "Reset the learning progress of one phrase",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			item, ok, err := app.Store.LookupByCode(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no phrase with code %q", args[0])
			}

			out := cmd.OutOrStdout()
			record, err := app.Records.Get(ctx, app.Config.UserID, item.ID)
			if errors.Is(err, sql.ErrNoRows) {
				fmt.Fprintf(out, "%s has not been practiced yet\n", item.Code)
				return nil
			}
			if err != nil {
				return err
			}

			if err := app.Records.Delete(ctx, app.Config.UserID, item.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "Forgot %s (%d practices, %.0f%% accuracy)\n", item.Code, record.PracticeCount, record.AccuracyScore)
			return nil
		},
	}
}
