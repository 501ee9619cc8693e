package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/timeago/pkg/db"
	"github.com/japaniel/timeago/pkg/ingest"
	"github.com/japaniel/timeago/pkg/log"
)

func newCmdImport(opts *options) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Resolve a list of locale<TAB>phrase lines and store the results",
		Long: `Each line of FILE is "locale<TAB>phrase", or just a phrase in the
default locale. Blank lines and lines starting with # are skipped.
An interrupted import resumes where it stopped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			items, err := readItems(f, opts.cfg.Locale)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			conn, err := db.Open(opts.cfg.DB)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer conn.Close()

			if source == "" {
				source = filepath.Base(path)
			}
			abs, _ := filepath.Abs(path)
			sourceID, err := db.CreateOrGetSource(conn, "phrase_list", source, "", "", "file://"+filepath.ToSlash(abs), "")
			if err != nil {
				return fmt.Errorf("persist source: %w", err)
			}
			return runIngest(cmd, opts, conn, sourceID, items)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "name of the source (default: file name)")
	return cmd
}

// readItems parses locale<TAB>phrase lines.
func readItems(r io.Reader, defaultLocale string) ([]ingest.Item, error) {
	var items []ingest.Item
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		locale, phrase, ok := strings.Cut(line, "\t")
		if !ok {
			locale, phrase = defaultLocale, line
		}
		items = append(items, ingest.Item{Locale: strings.TrimSpace(locale), Phrase: strings.TrimSpace(phrase)})
	}
	return items, sc.Err()
}

func runIngest(cmd *cobra.Command, opts *options, conn *sql.DB, sourceID int64, items []ingest.Item) error {
	ig := ingest.NewIngester(conn)
	ig.Tables = opts.registry
	ig.Now = func() time.Time { return opts.ref }
	ig.Workers = opts.cfg.Workers
	ig.BatchSize = opts.cfg.BatchSize
	ig.Logger = log.Logger()
	ig.OnProgress = func(current, total int) {
		log.Debug("progress", "done", current, "total", total)
	}

	stats, err := ig.Ingest(cmd.Context(), sourceID, items)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Source #%d\n", sourceID)
	fmt.Fprintf(cmd.OutOrStdout(), "Stored %d phrases: %d parsed, %d no match, %d ambiguous, %d unknown locale\n",
		stats.Total(), stats.Parsed, stats.NoMatch, stats.Ambiguous, stats.UnknownLocale)
	return nil
}
