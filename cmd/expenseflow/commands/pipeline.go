package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pharmafield/expenseflow/internal/config"
	"github.com/pharmafield/expenseflow/internal/infrastructure/pipeline"
)

// PipelineCmd groups the enrichment pipeline commands.
var PipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run or watch the claim enrichment pipeline",
}

var pipelineRunCmd = &cobra.Command{
	Use:   "run <claim-id>",
	Short: "Run the policy enricher for one claim immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Runner.Run(cmd.Context(), args[0]); err != nil {
			return err
		}

		claim, err := app.Service.GetClaim(args[0])
		if err != nil {
			return err
		}

		printJSON(claim)
		return nil
	},
	Args: cobra.ExactArgs(1),
}

var pipelineWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the lake landing zone and enrich claims as they arrive",
	Long: `Watch raw/claims/ under the filesystem lake root. Each claim.json
that lands schedules the storage trigger after the configured delay,
mirroring a blob-created event subscription. Requires the filesystem
lake backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Config.Lake.Backend != config.LakeFilesystem {
			return fmt.Errorf("pipeline watch requires the filesystem lake backend, got %s", app.Config.Lake.Backend)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		watcher := pipeline.NewLandingWatcher(app.Config.Lake.Root, app.Trigger, app.Logger)
		fmt.Printf("Watching %s/raw/claims for landed claims (Ctrl+C to stop)\n", app.Config.Lake.Root)
		return watcher.Run(ctx)
	},
}

func init() {
	PipelineCmd.AddCommand(pipelineRunCmd)
	PipelineCmd.AddCommand(pipelineWatchCmd)
}
