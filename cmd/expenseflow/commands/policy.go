package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pharmafield/expenseflow/internal/config"
)

// PolicyCmd groups policy evaluation and settings commands.
var PolicyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Evaluate policy and manage policy settings",
}

var policyCheckCmd = &cobra.Command{
	Use:   "check <claim-id>",
	Short: "Evaluate policy for a claim without changing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.Service.CheckPolicy(args[0])
		if err != nil {
			return err
		}

		printJSON(result)
		return nil
	},
}

var policyLimitCmd = &cobra.Command{
	Use:   "limit",
	Short: "Get or set the per-person meal limit (CAD)",
}

var policyLimitGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current meal limit",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		printJSON(app.Settings)
		return nil
	},
}

var policyLimitSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the meal limit and persist it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", args[0], err)
		}

		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		app.Settings.MealLimitPerPersonCAD = limit
		if err := config.SaveSettings(app.Config.SettingsPath, app.Settings); err != nil {
			return err
		}

		printJSON(app.Settings)
		return nil
	},
}

func init() {
	policyLimitCmd.AddCommand(policyLimitGetCmd)
	policyLimitCmd.AddCommand(policyLimitSetCmd)
	PolicyCmd.AddCommand(policyCheckCmd)
	PolicyCmd.AddCommand(policyLimitCmd)
}
