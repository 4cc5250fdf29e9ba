package main

import (
	"github.com/spf13/cobra"
)

var researchCmd = &cobra.Command{
	Use:   "research <competitor-id>",
	Short: "Auto-discover and ingest sources for a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := env.Orch.Research(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printJSON(summary)
	},
}

func init() {
	rootCmd.AddCommand(researchCmd)
}
