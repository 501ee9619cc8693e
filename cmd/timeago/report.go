package main

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/japaniel/timeago/pkg/db"
	"github.com/japaniel/timeago/pkg/output"
)

func newCmdReport(opts *options) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "report SOURCE_ID",
		Short: "Show the stored phrases of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid source id %q", args[0])
			}
			f, err := output.ParseFormat(format)
			if err != nil {
				return err
			}

			conn, err := db.Open(opts.cfg.DB)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer conn.Close()

			src, err := db.GetSource(conn, id)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("no source with id %d", id)
			}
			if err != nil {
				return fmt.Errorf("load source: %w", err)
			}
			obs, err := db.GetObservationsBySource(conn, id)
			if err != nil {
				return fmt.Errorf("load observations: %w", err)
			}
			failures, err := db.CountErrorKinds(conn, id)
			if err != nil {
				return fmt.Errorf("count failures: %w", err)
			}

			r := output.Report{Source: src, Observations: obs, Failures: failures}
			return output.NewFormatter(f).Format(r, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	return cmd
}
