package main

import (
	"fmt"

	"payee-confirmation-backend/internal/services/tokens"

	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <batch-file>",
		Short: "Assign confirmation tokens to a batch file in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := tokens.NewAssigner().AssignFile(args[0])
			if err != nil {
				return err
			}
			if result.Assigned == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: all %d rows already have tokens\n", args[0], len(result.Rows))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: assigned %d tokens, %d rows\n", args[0], result.Assigned, len(result.Rows))
			return nil
		},
	}
}
