package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/timeago/pkg/config"
	"github.com/japaniel/timeago/pkg/log"
	"github.com/japaniel/timeago/pkg/patterns"
	"github.com/japaniel/timeago/pkg/timeago"
)

// options holds the flags shared by every subcommand and the state built
// from them before a subcommand runs.
type options struct {
	configPath string
	locale     string
	db         string
	now        string
	verbosity  int

	cfg      *config.Config
	registry *patterns.Registry
	ref      time.Time
}

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "timeago",
		Short: "Turn relative time phrases into timestamps",
		Long: `Parses phrases such as "3 saat önce" or "2 days ago" in any of the
bundled locales, and resolves them against a reference time.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/timeago/config.yaml)")
	f.StringVarP(&opts.locale, "locale", "l", "", "locale code, e.g. tr, es-419, en-GB")
	f.StringVar(&opts.db, "db", "", "path to SQLite database")
	f.StringVar(&opts.now, "now", "", "reference time in RFC 3339 (default: current time)")
	f.CountVarP(&opts.verbosity, "verbose", "v", "increase verbosity (-v, -vv)")

	rootCmd.AddCommand(newCmdParse(opts))
	rootCmd.AddCommand(newCmdDuration(opts))
	rootCmd.AddCommand(newCmdLocales(opts))
	rootCmd.AddCommand(newCmdScan(opts))
	rootCmd.AddCommand(newCmdImport(opts))
	rootCmd.AddCommand(newCmdReport(opts))

	return rootCmd
}

func (o *options) setup(cmd *cobra.Command) error {
	log.Initialize(o.verbosity, cmd.ErrOrStderr())

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.locale != "" {
		cfg.Locale = o.locale
	}
	if o.db != "" {
		cfg.DB = o.db
	}
	o.cfg = cfg

	o.ref = time.Now()
	if o.now != "" {
		if o.ref, err = time.Parse(time.RFC3339, o.now); err != nil {
			return fmt.Errorf("--now: %w", err)
		}
	}

	o.registry = patterns.NewRegistry()
	o.registry.Logger = log.Logger()
	for code, path := range cfg.Patterns {
		if err := o.registry.Register(code, patterns.FileSource(path)); err != nil {
			return fmt.Errorf("patterns.%s: %w", code, err)
		}
		log.Debug("registered pattern file", "locale", code, "path", path)
	}
	return nil
}

func (o *options) table() (*timeago.PatternTable, error) {
	return o.registry.Get(o.cfg.Locale)
}
