package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/timeago/pkg/timeago"
)

func newCmdParse(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse PHRASE...",
		Short: "Parse a phrase and print the resolved publication time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			d, err := table.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			ts := timeago.Resolve(d, opts.ref)
			fmt.Fprintf(cmd.OutOrStdout(), "unit=%s quantity=%d published=%s approximate=%t\n",
				d.Unit, d.Quantity, ts.Time.Format(time.RFC3339), ts.Approximate)
			return nil
		},
	}
}

func newCmdDuration(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "duration TEXT...",
		Short: "Sum a compound duration such as \"1 hour 23 minutes\" and print seconds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			d, err := table.ParseDuration(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", int64(d/time.Second))
			return nil
		},
	}
}

func newCmdLocales(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "locales",
		Short: "List the available locales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, code := range opts.registry.Locales() {
				fmt.Fprintln(cmd.OutOrStdout(), code)
			}
			return nil
		},
	}
}
