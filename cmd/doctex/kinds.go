package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dgallion1/doctex/internal/tex"
)

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the node kinds the LaTeX renderer handles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var kinds []string
			for k := range tex.DefaultHandlers() {
				kinds = append(kinds, string(k))
			}
			slices.Sort(kinds)
			for _, k := range kinds {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), k); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
