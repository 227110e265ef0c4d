package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gstyle/storefront-payments/internal/notify"
	"github.com/spf13/cobra"
)

func notificationsCmd() *cobra.Command {
	var (
		limit   int
		asJSON  bool
		journal string
	)

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List notification emails that could not be delivered",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if journal == "" {
				journal = cfg.Mail.JournalPath
			}

			j, err := notify.OpenBoltJournal(journal)
			if err != nil {
				return err
			}
			defer j.Close()

			failures, err := j.List(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(failures)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tAT\tKIND\tAUTHORITY\tRECIPIENTS\tERROR")
			for _, f := range failures {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					f.ID, f.At.Format(time.RFC3339), f.Kind, f.Authority, strings.Join(f.Recipients, ","), f.Error)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries, newest first (0 for all)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	cmd.Flags().StringVar(&journal, "journal", "", "journal file (defaults to NOTIFY_JOURNAL_PATH)")

	return cmd
}
