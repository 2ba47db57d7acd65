package cli

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/example/lingualisten/internal/content"
	"github.com/example/lingualisten/pkg/models"
	"github.com/spf13/cobra"
)

func newRefreshCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the content sheet and replace the local copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			gen, err := app.Store.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d items, fetched %s (generation %s)\n",
				gen.Len(), humanize.Time(gen.FetchedAt), gen.ID)
			return nil
		},
	}
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load content from a local CSV or XLSX export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, &content.FileSource{Path: args[0]})
			if err != nil {
				return err
			}
			defer app.Close()

			gen, err := app.Store.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d items from %s\n", gen.Len(), args[0])
			return nil
		},
	}
}

func newLookupCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code>",
		Short: "Show one phrase by its code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			item, ok, err := app.Store.LookupByCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no phrase with code %q", args[0])
			}

			if err := app.Activity.LogActivity(cmd.Context(), app.Config.UserID, models.ActivityLookup, item.ID); err != nil {
				app.Log.Warn("failed to log activity", "err", err)
			}

			out := cmd.OutOrStdout()
			printItem(out, item)
			if item.Audio.Target != "" {
				fmt.Fprintf(out, "  audio: %s\n", item.Audio.Target)
			}
			if item.Audio.Native != "" {
				fmt.Fprintf(out, "  audio (translation): %s\n", item.Audio.Native)
			}
			return nil
		},
	}
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list [category]",
		Short: "List categories, or the phrases of one category",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			gen, err := app.Store.Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				counts := gen.CategoryCounts()
				for _, c := range models.Categories() {
					if counts[c] == 0 {
						continue
					}
					fmt.Fprintf(out, "%-12s %-32s %d\n", c, c.Label(), counts[c])
				}
				return nil
			}

			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}
			for _, item := range gen.ByCategory(category) {
				printItem(out, item)
			}
			return nil
		},
	}
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find phrases by code or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			items, err := app.Store.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sort.SliceStable(items, func(i, j int) bool { return items[i].Code < items[j].Code })

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No matches")
				return nil
			}
			for _, item := range items {
				printItem(out, item)
			}
			return nil
		},
	}
}
