package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matiasleandrokruk/logoguard/internal/domain/imagecheck"
)

const defaultCheckConcurrency = 8

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "check URL...",
		Short: "Validate one or more logo URLs",
		Long:  "Validate logo URLs concurrently. Prints URL, verdict and reason per line; exits 1 if any URL is invalid.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, urls []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			results := make([]imagecheck.Result, len(urls))
			var g errgroup.Group
			g.SetLimit(max(concurrency, 1))
			for i, u := range urls {
				g.Go(func() error {
					results[i] = a.validator.Check(ctx, u)
					return nil
				})
			}
			_ = g.Wait()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			invalid := 0
			for _, res := range results {
				if !res.Valid {
					invalid++
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\n", res.URL, res.Valid, res.Reason) //nolint:errcheck
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if invalid > 0 {
				return exitError(exitInvalid, "%d of %d URLs invalid", invalid, len(urls))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", defaultCheckConcurrency, "Maximum concurrent checks")
	return cmd
}
