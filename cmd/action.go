package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/rivaliq/internal/model"
)

var (
	actionKind    string
	actionTitle   string
	actionOwner   string
	actionDueDate string
)

var actionCmd = &cobra.Command{
	Use:   "action <theme-id> <competitor-id>",
	Short: "Decide on a theme: generate a battlecard, messaging, roadmap note, or ignore it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := model.ActionKind(actionKind)
		switch kind {
		case model.ActionKindBattlecard, model.ActionKindMessaging, model.ActionKindRoadmap, model.ActionKindIgnore:
		default:
			return eris.New("--kind must be battlecard, messaging, roadmap, or ignore")
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		action, err := env.Orch.CreateAction(cmd.Context(), args[0], args[1], kind, actionTitle, actionOwner, actionDueDate)
		if err != nil {
			return err
		}

		return printJSON(action)
	},
}

func init() {
	actionCmd.Flags().StringVar(&actionKind, "kind", "battlecard", "action kind")
	actionCmd.Flags().StringVar(&actionTitle, "title", "", "action title")
	actionCmd.Flags().StringVar(&actionOwner, "owner", "", "action owner")
	actionCmd.Flags().StringVar(&actionDueDate, "due", "", "due date")
	rootCmd.AddCommand(actionCmd)
}
