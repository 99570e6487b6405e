package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/tripsync/internal/app"
	"github.com/sheikh-saqib/tripsync/internal/ledger"
	"github.com/sheikh-saqib/tripsync/internal/settlement"
)

func expenseCmd(trip func() *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expense",
		Short: "Record, remove and list expenses",
	}
	cmd.AddCommand(expenseAddCmd(trip), expenseRmCmd(trip), expenseLsCmd(trip))
	return cmd
}

// expense add <description> <amount> <payer>
func expenseAddCmd(trip func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <description> <amount> <payer>",
		Short: "Record an expense paid by one member",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := ledger.ParseAmount(args[1])
			if err != nil {
				return err
			}
			record, err := trip().Ledger.AddExpense(args[0], amount, args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", record.ID)
			return nil
		},
	}
}

func expenseRmCmd(trip func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := trip().Ledger.RemoveExpense(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return nil
		},
	}
}

func expenseLsCmd(trip func() *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List expenses with the total and per-head estimate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := trip()
			l := a.Ledger
			currency := a.Config.Currency

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHAT\tWHO\tCOST")
			for _, e := range l.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Description, e.PayerName, settlement.FormatAmount(e.Amount, currency))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			heads := l.HeadCount()
			fmt.Fprintf(cmd.OutOrStdout(), "total %s, about %s each for %d people\n",
				settlement.FormatAmount(l.Total(), currency),
				settlement.FormatAmount(l.PerHeadEstimate(heads), currency),
				heads)
			return nil
		},
	}
}
