package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/example/lingualisten/internal/assetcache"
	"github.com/example/lingualisten/internal/content"
	"github.com/example/lingualisten/internal/session"
	"github.com/example/lingualisten/internal/spaced_repetition"
	"github.com/spf13/cobra"
)

func newStudyCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "study <category>",
		Short: "Review due and new phrases of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := parseCategory(args[0])
			if err != nil {
				return err
			}

			app, err := opts.app(cmd, nil)
			if err != nil {
				return err
			}
			defer app.Close()

			// a failed load leaves the session retryable
			s, _ := app.Sessions().Start(cmd.Context(), app.Config.UserID, category)
			defer s.Close()

			return runStudy(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), s, app.Assets)
		},
	}
}

func runStudy(ctx context.Context, in io.Reader, out io.Writer, s *session.Session, assets *assetcache.Cache) error {
	scanner := bufio.NewScanner(in)
	for {
		switch s.State() {
		case session.StateLoadError:
			if err := s.LoadErr(); content.IsOffline(err) {
				fmt.Fprintln(out, "Offline and no phrases have been downloaded yet.")
			} else {
				fmt.Fprintf(out, "Could not load phrases: %v\n", err)
			}
			fmt.Fprintln(out, "[r]etry  [q]uit")
		case session.StateComplete:
			printStats(out, s.Stats())
			fmt.Fprintln(out, "Session complete. [r]estart  [q]uit")
		default:
			card, err := s.Current()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\n(%.0f%%) %s  %s\n", s.Progress(), card.Item.Code, card.Item.TextTarget)
			if card.Flipped {
				fmt.Fprintf(out, "    %s\n", card.Item.TextNative)
			}
			fmt.Fprintln(out, "[f]lip  [p]lay  [a]gain  [h]ard  [g]ood  [e]asy  [s]kip  [q]uit")
		}

		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.ToLower(strings.TrimSpace(scanner.Text()))

		switch input {
		case "":
			continue
		case "q", "quit":
			return nil
		case "r", "restart", "retry":
			var err error
			if s.State() == session.StateLoadError {
				err = s.Retry(ctx)
			} else {
				err = s.Restart()
			}
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		case "f", "flip":
			if _, err := s.Flip(); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		case "s", "skip":
			if err := s.Skip(); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		case "p", "play":
			card, err := s.Current()
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			if card.Item.Audio.Target == "" {
				fmt.Fprintln(out, "No audio for this phrase")
				continue
			}
			fmt.Fprintf(out, "audio: %s\n", assets.Get(ctx, card.Item.Audio.Target))
		default:
			rating, err := spaced_repetition.ParseRating(input)
			if err != nil {
				fmt.Fprintf(out, "Unknown command %q\n", input)
				continue
			}
			outcome, err := s.Rate(ctx, rating)
			switch {
			case errors.Is(err, session.ErrPersistFailure):
				fmt.Fprintln(out, "Could not save your rating. Try again.")
			case err != nil:
				fmt.Fprintf(out, "Error: %v\n", err)
			default:
				fmt.Fprintf(out, "%s: next review in %s\n", rating,
					english.Plural(outcome.Schedule.IntervalDays, "day", ""))
			}
		}
	}
}

func printStats(w io.Writer, st session.Stats) {
	fmt.Fprintf(w, "\nReviewed %d of %d  mastered %d  hard %d  accuracy %.0f%%  time %s\n",
		st.CardsReviewed, st.TotalCards, st.MasteredCount, st.HardCount, st.RunningAccuracy, st.Elapsed.Round(time.Second))
}
