package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/tripsync/internal/app"
)

func squadCmd(trip func() *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "squad",
		Short: "Manage who is on the trip",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				m := trip().Ledger.AddParticipant(args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", m.ID)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a member",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := trip().Ledger.RemoveParticipant(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "removed")
				return nil
			},
		},
		&cobra.Command{
			Use:   "ls",
			Short: "List members",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				for _, m := range trip().Ledger.Roster() {
					name := m.Name
					if name == "" {
						name = "(unnamed)"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", m.ID, name)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "defaults",
			Short: "Fill an empty squad with the default roster",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a := trip()
				if !a.Ledger.LoadDefaultRoster(a.Defaults.Roster) {
					fmt.Fprintln(cmd.OutOrStdout(), "squad already has members")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "loaded %d members\n", len(a.Defaults.Roster))
				return nil
			},
		},
	)
	return cmd
}
