package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/japaniel/timeago/pkg/db"
	"github.com/japaniel/timeago/pkg/fetch"
	"github.com/japaniel/timeago/pkg/ingest"
	"github.com/japaniel/timeago/pkg/log"
	"github.com/japaniel/timeago/pkg/scan"
)

func newCmdScan(opts *options) *cobra.Command {
	var rawURL string
	cmd := &cobra.Command{
		Use:   "scan --url URL",
		Short: "Fetch an article, find its time-ago phrases and store them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			cfg := opts.cfg
			f := &fetch.Fetcher{
				Client:      &http.Client{Timeout: cfg.Timeout},
				UserAgent:   cfg.UserAgent,
				MaxBodySize: cfg.MaxBodySize,
			}
			log.Info("fetching", "url", rawURL)
			article, err := f.Article(cmd.Context(), rawURL)
			if err != nil {
				return err
			}

			scanner, err := scan.ForTable(table)
			if err != nil {
				return fmt.Errorf("create scanner: %w", err)
			}
			scanner.OnAmbiguous = func(err error) { log.Warn("ambiguous phrase", "err", err) }
			hits := scanner.Find(article.Title + "\n" + article.Byline + "\n" + article.Text)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title: %s\n", article.Title)
			for _, h := range hits {
				fmt.Fprintf(out, "%q\t%s\n", h.Phrase, h.Duration)
			}

			conn, err := db.Open(cfg.DB)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer conn.Close()

			sourceID, err := db.CreateOrGetSource(conn, "website_article", article.Title, article.Byline, article.SiteName, article.URL, "")
			if err != nil {
				return fmt.Errorf("persist source: %w", err)
			}
			items := make([]ingest.Item, len(hits))
			for i, h := range hits {
				items[i] = ingest.Item{Locale: table.Locale(), Phrase: h.Phrase}
			}
			return runIngest(cmd, opts, conn, sourceID, items)
		},
	}
	cmd.Flags().StringVar(&rawURL, "url", "", "URL of the article to scan")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

