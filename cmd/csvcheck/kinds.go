package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/recipientcsv/internal/core"
	"github.com/JonMunkholm/recipientcsv/internal/recipient"
)

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List every problem a report can contain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tCODE\tMESSAGE")
			for _, k := range recipient.Kinds() {
				msg := core.MessageFor(k)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", k, msg.Code, msg.Message)
			}
			return tw.Flush()
		},
	}
}
