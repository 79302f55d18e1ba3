package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active batch and how many payees responded",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			batch, err := svc.batches.Active(cmd.Context())
			if err != nil {
				return err
			}
			result, err := svc.recon.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			summary := result.Summary()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "batch:      %s (%s)\n", batch.Filename, batch.ID)
			fmt.Fprintf(out, "uploaded:   %s\n", batch.UploadedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintf(out, "payees:     %d\n", batch.RowCount)
			fmt.Fprintf(out, "responded:  %d\n", summary.Responded)
			fmt.Fprintf(out, "pending:    %d\n", summary.Pending)
			return nil
		},
	}
}
