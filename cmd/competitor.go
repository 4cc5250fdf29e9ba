package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/rivaliq/internal/model"
)

var (
	competitorName        string
	competitorURL         string
	competitorSector      string
	competitorDescription string
)

var competitorCmd = &cobra.Command{
	Use:   "competitor",
	Short: "Manage tracked competitors",
}

var competitorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a competitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		if competitorName == "" {
			return eris.New("--name is required")
		}

		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		c, err := st.CreateCompetitor(cmd.Context(), model.Competitor{
			Name:        competitorName,
			URL:         competitorURL,
			Sector:      competitorSector,
			Description: competitorDescription,
		})
		if err != nil {
			return err
		}

		return printJSON(c)
	},
}

var competitorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List competitors",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		list, err := st.ListCompetitors(cmd.Context())
		if err != nil {
			return err
		}

		for _, c := range list {
			fmt.Printf("%s  %-30s %s\n", c.ID, c.Name, c.URL)
		}
		return nil
	},
}

var competitorRmCmd = &cobra.Command{
	Use:   "rm <competitor-id>",
	Short: "Delete a competitor and everything underneath it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		return st.DeleteCompetitor(cmd.Context(), args[0])
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	competitorAddCmd.Flags().StringVar(&competitorName, "name", "", "competitor name (required)")
	competitorAddCmd.Flags().StringVar(&competitorURL, "url", "", "official website")
	competitorAddCmd.Flags().StringVar(&competitorSector, "sector", "", "market sector")
	competitorAddCmd.Flags().StringVar(&competitorDescription, "description", "", "free-form description")

	competitorCmd.AddCommand(competitorAddCmd, competitorListCmd, competitorRmCmd)
	rootCmd.AddCommand(competitorCmd)
}
