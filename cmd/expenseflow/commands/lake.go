package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	"github.com/pharmafield/expenseflow/internal/infrastructure/lake"
)

// LakeCmd exposes the medallion projections of a claim.
var LakeCmd = &cobra.Command{
	Use:   "lake",
	Short: "Inspect bronze, silver and gold claim projections",
}

var lakeShowCmd = &cobra.Command{
	Use:   "show <bronze|silver|gold> <claim-id>",
	Short: "Show a claim as it lands in a lake layer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		layer, claimID := args[0], args[1]

		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		claim, err := app.Service.GetClaim(claimID)
		if err != nil {
			return err
		}

		var visit *domainClaims.Visit
		if layer == "silver" || layer == "gold" {
			visit, err = app.Service.GetVisit(claim.VisitID)
			if err != nil && !errors.Is(err, domainClaims.ErrVisitNotFound) {
				return err
			}
		}

		switch layer {
		case "bronze":
			printJSON(lake.BronzeClaim(claim))
			if meta := lake.BronzeReceiptMeta(claim); meta != nil {
				fmt.Printf("receipt blob: %s\n", lake.BronzeReceiptPath(claim.ID, claim.Receipt.FileName))
			}
		case "silver":
			printJSON(lake.SilverEnriched(claim, visit))
		case "gold":
			printJSON(lake.GoldCurrent(claim, visit))
		default:
			return fmt.Errorf("unknown lake layer %q, expected bronze, silver or gold", layer)
		}
		return nil
	},
}

var lakeListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List lake object keys",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		keys, err := app.Lake.List(cmd.Context(), prefix)
		if err != nil {
			return err
		}

		printJSON(keys)
		return nil
	},
}

var presignTTL time.Duration

var lakePresignCmd = &cobra.Command{
	Use:   "presign <claim-id> <file-name>",
	Short: "Presign a receipt upload URL (S3 lake only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		store, ok := app.Lake.(*lake.S3BlobStore)
		if !ok {
			return fmt.Errorf("presigned uploads require the s3 lake backend, got %s", app.Config.Lake.Backend)
		}

		claim, err := app.Service.GetClaim(args[0])
		if err != nil {
			return err
		}

		url, err := store.PresignReceiptPut(cmd.Context(), claim.ID, args[1], claimMimeType, presignTTL)
		if err != nil {
			return err
		}

		fmt.Println(url)
		return nil
	},
}

func init() {
	lakePresignCmd.Flags().DurationVar(&presignTTL, "ttl", 15*time.Minute, "URL expiry")
	lakePresignCmd.Flags().StringVar(&claimMimeType, "receipt-type", "application/pdf", "receipt mime type")

	LakeCmd.AddCommand(lakeShowCmd)
	LakeCmd.AddCommand(lakeListCmd)
	LakeCmd.AddCommand(lakePresignCmd)
}
