package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newAudioCommand(opts *rootOptions) *cobra.Command {
	var native, clearCache, stats bool

	cmd := &cobra.Command{
		Use:   "audio [code]",
		Short: "Download the audio of a phrase, or manage the audio cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			out := cmd.OutOrStdout()

			switch {
			case clearCache:
				if err := app.Assets.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Audio cache cleared")
				return nil
			case stats:
				st := app.Assets.Stats()
				fmt.Fprintf(out, "%d files, %s\n", st.Entries, humanize.Bytes(uint64(st.Bytes)))
				return nil
			case len(args) == 0:
				return fmt.Errorf("a phrase code is required")
			}

			item, ok, err := app.Store.LookupByCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no phrase with code %q", args[0])
			}

			ref := item.Audio.Target
			if native {
				ref = item.Audio.Native
			}
			if ref == "" {
				return fmt.Errorf("phrase %s has no audio", item.Code)
			}
			fmt.Fprintln(out, app.Assets.Get(cmd.Context(), ref))
			return nil
		},
	}

	cmd.Flags().BoolVar(&native, "native", false, "use the translation audio")
	cmd.Flags().BoolVar(&clearCache, "clear", false, "remove all cached audio")
	cmd.Flags().BoolVar(&stats, "stats", false, "show cache usage")
	return cmd
}
