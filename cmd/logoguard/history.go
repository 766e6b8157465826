package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/logoguard/internal/domain/audit"
	"github.com/matiasleandrokruk/logoguard/internal/infra/sqlite"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		url    string
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded checks from the audit database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.AuditDBPath == "" {
				return exitError(exitUsage, "audit database not configured (set audit_db or LOGOGUARD_AUDIT_DB)")
			}

			db, err := sqlite.Open(opts.cfg.AuditDBPath)
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			svc := audit.NewAuditService(db)
			var records []*audit.CheckRecord
			if url != "" {
				records, err = svc.ListByURL(cmd.Context(), url, limit)
			} else {
				records, err = svc.ListRecent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CHECKED AT\tVALID\tREASON\tSTATUS\tURL") //nolint:errcheck
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%d\t%s\n", //nolint:errcheck
					rec.CheckedAt.Format(time.RFC3339), rec.Valid, rec.Reason, rec.StatusCode, rec.URL)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "Only show checks of this exact URL")
	cmd.Flags().IntVar(&limit, "limit", audit.DefaultListLimit, "Maximum number of records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}
