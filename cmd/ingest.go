package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/rivaliq/internal/model"
)

var (
	ingestURLs  []string
	ingestTexts []string
	ingestPDF   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <competitor-id>",
	Short: "Ingest URLs, pasted text, or a PDF for a competitor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(ingestURLs) == 0 && len(ingestTexts) == 0 && ingestPDF == "" {
			return eris.New("provide --url, --text, or --pdf")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		var summary *model.IngestSummary
		if ingestPDF != "" {
			data, err := os.ReadFile(ingestPDF)
			if err != nil {
				return eris.Wrapf(err, "read %s", ingestPDF)
			}
			summary, err = env.Orch.IngestPDF(cmd.Context(), args[0], data, filepath.Base(ingestPDF))
			if err != nil {
				return err
			}
		} else {
			summary, err = env.Orch.Ingest(cmd.Context(), args[0], ingestURLs, ingestTexts)
			if err != nil {
				return err
			}
		}

		return printJSON(summary)
	},
}

func init() {
	ingestCmd.Flags().StringArrayVar(&ingestURLs, "url", nil, "source URL (repeatable)")
	ingestCmd.Flags().StringArrayVar(&ingestTexts, "text", nil, "raw pasted text (repeatable)")
	ingestCmd.Flags().StringVar(&ingestPDF, "pdf", "", "path to a PDF file")
	rootCmd.AddCommand(ingestCmd)
}
