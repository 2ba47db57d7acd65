package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/example/lingualisten/internal/config"
	"github.com/example/lingualisten/internal/content"
	"github.com/example/lingualisten/pkg/models"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile string
	userID  string
}

// NewRootCommand builds the lingualisten command tree
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "lingualisten",
		Short:         "Offline-first phrase trainer with spaced repetition",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional env file to load")
	root.PersistentFlags().StringVarP(&opts.userID, "user", "u", "", "learner id (default $LINGUALISTEN_USER)")

	root.AddCommand(
		newServeCommand(opts),
		newRefreshCommand(opts),
		newImportCommand(opts),
		newLookupCommand(opts),
		newListCommand(opts),
		newSearchCommand(opts),
		newStudyCommand(opts),
		newForgetCommand(opts),
		newAudioCommand(opts),
		newStatsCommand(opts),
	)
	return root
}

// loadConfig reads configuration and applies flag overrides
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.userID != "" {
		cfg.UserID = o.userID
	}
	return cfg, nil
}

// app wires the application for a command. source overrides the configured
// content source when not nil.
func (o *rootOptions) app(cmd *cobra.Command, source content.Source) (*App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return NewApp(cfg, cfg.NewLogger(cmd.ErrOrStderr()), source)
}

func parseCategory(raw string) (models.Category, error) {
	c := models.Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range models.Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

func printItem(w io.Writer, item models.Item) {
	fmt.Fprintf(w, "%-12s %s = %s  [%s]\n", item.Code, item.TextTarget, item.TextNative, item.Category.Label())
}
