package main

import (
	"io"
	"os"

	"payee-confirmation-backend/internal/export"
	"payee-confirmation-backend/internal/services/reconciliation"

	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	var (
		pending bool
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Write the reconciled report (or only pending payees) for the active batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			svc, closeFn, err := openServices(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			var result reconciliation.Result
			if pending {
				result, err = svc.recon.Pending(cmd.Context())
			} else {
				result, err = svc.recon.Reconcile(cmd.Context())
			}
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}
			return export.Write(w, f, result, !pending)
		},
	}

	cmd.Flags().BoolVar(&pending, "pending", false, "only payees that have not responded")
	cmd.Flags().StringVar(&format, "format", "csv", "output format: csv or xlsx")
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file, - for stdout")
	return cmd
}
