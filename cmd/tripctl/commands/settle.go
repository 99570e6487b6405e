package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/tripsync/internal/app"
)

// settle prints the transfers that square everyone up.
func settleCmd(trip func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "settle",
		Short: "Print who pays whom",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := trip()
			for _, line := range a.Ledger.Settle().Lines(a.Config.Currency) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
