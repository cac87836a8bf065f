package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func GetWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user the session token belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := newClient().Me(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if user == nil {
				fmt.Fprintln(out, color.YellowString("Not signed in."))
				return nil
			}
			fmt.Fprintf(out, "%s %s <%s>\n", color.GreenString("✓"), user.DisplayName, user.Email)
			return nil
		},
	}
}
