package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NgigiN/fundfusion/internal/command"
	"github.com/NgigiN/fundfusion/internal/ledger"
)

func tierCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "tier <amount>",
		Short:   "Print the badge tier for a total invested amount",
		Example: "  fundfusion tier 75000\n  fundfusion tier '$24,999.99'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := command.ParseAmount(args[0])
			if err != nil {
				return err
			}
			tier := ledger.TierFor(amount)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", tier)
			if next, threshold, ok := tier.Next(); ok {
				fmt.Fprintf(out, "%s more to reach %s\n", threshold.Sub(amount).StringFixed(2), next)
			}
			return nil
		},
	}
}
