package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	var (
		authority string
		olderThan time.Duration
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-verify pending transactions with the gateway",
		Long: `Re-verify transactions whose callback never arrived or failed midway.

Examples:
  payments reconcile --authority A000000000000000000000000000123456789
  payments reconcile --older-than 30m --limit 100`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			a, err := newApp(ctx, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()
			defer a.drainNotifications()

			out := cmd.OutOrStdout()

			if authority != "" {
				result, err := a.payments.Reconcile(ctx, authority)
				if err != nil {
					return fmt.Errorf("reconcile %s: %w", authority, err)
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", authority, result.Transaction.Status, result.RefID())
				return nil
			}

			report, err := a.payments.ReconcilePending(ctx, time.Now().Add(-olderThan), limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "AUTHORITY\tSTATUS\tERROR")
			for _, o := range report.Outcomes {
				errText := ""
				if o.Err != nil {
					errText = o.Err.Error()
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Authority, o.Status, errText)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintf(out, "completed=%d failed=%d pending=%d\n", report.Completed, report.Failed, report.Pending)
			return nil
		},
	}

	cmd.Flags().StringVarP(&authority, "authority", "a", "", "reconcile a single authority")
	cmd.Flags().DurationVar(&olderThan, "older-than", 15*time.Minute, "only transactions pending for at least this long")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum transactions per run")

	return cmd
}
