package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/rivaliq/internal/monitoring"
)

var reportCmd = &cobra.Command{
	Use:   "report <competitor-id>",
	Short: "Generate a competitive snapshot report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.Orch.GenerateReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		return printJSON(report)
	},
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the artifact quality-gate summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		evals, err := st.ListEvaluations(cmd.Context(), 0)
		if err != nil {
			return err
		}
		total, accepted, err := st.CountArtifacts(cmd.Context())
		if err != nil {
			return err
		}
		pending, err := st.CountPendingReview(cmd.Context())
		if err != nil {
			return err
		}

		return printJSON(monitoring.Summarize(evals, total, accepted, pending))
	},
}

func init() {
	reportCmd.AddCommand(reportSummaryCmd)
	rootCmd.AddCommand(reportCmd)
}
