package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

// SeedCmd loads the deterministic demo data set.
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo claims and project them into the lake",
	Long: `Load eight demo claims spanning every lifecycle status. Policy is
re-evaluated against current settings, claims are saved to the
configured store, and submitted claims are projected into the lake.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		options := app.Settings.PolicyOptions()
		seeded := 0
		for _, claim := range domainClaims.SeedClaims() {
			claim.Policy = domainClaims.Evaluate(claim, options)

			if err := app.Service.ImportClaim(claim); err != nil {
				return err
			}

			// Drafts have not landed in the lake yet.
			if claim.Status != domainClaims.StatusDraft {
				visit, err := app.Service.GetVisit(claim.VisitID)
				if err != nil && !errors.Is(err, domainClaims.ErrVisitNotFound) {
					return err
				}
				if err := app.Writer.WriteAll(cmd.Context(), claim, visit); err != nil {
					return err
				}
			}
			seeded++
		}

		fmt.Printf("Seeded %d claims\n", seeded)
		return nil
	},
}
