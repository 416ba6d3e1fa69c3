package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	appClaims "github.com/pharmafield/expenseflow/internal/application/claims"
	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	"github.com/pharmafield/expenseflow/internal/infrastructure/lake"
)

// Claim command flags
var (
	// Create/update flags
	claimVisitID   string
	claimRepName   string
	claimCategory  string
	claimMerchant  string
	claimAmount    float64
	claimCurrency  string
	claimAttendees []string
	claimReceipt   string
	claimMimeType  string
	claimSize      int64
	claimNotes     string
	claimNoAlcohol bool
	claimPurpose   bool
	claimConfirmed bool
	claimNoReceipt bool

	// List flags
	claimListStatus string

	// Submit flags
	submitNoWait bool

	// Reject flags
	rejectReason string
)

// ClaimCmd is the parent command for claim lifecycle operations.
var ClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Create and manage expense claims",
	Long: `Commands for the expense claim lifecycle.

Claims start as drafts, are gated by the policy engine on submit, and
then flow through review to approval or rejection.`,
}

// parseAttendees parses "Name:Role" pairs.
func parseAttendees(specs []string) ([]domainClaims.Attendee, error) {
	attendees := make([]domainClaims.Attendee, 0, len(specs))
	for _, spec := range specs {
		name, role, found := strings.Cut(spec, ":")
		if !found {
			return nil, fmt.Errorf("invalid attendee %q, expected Name:Role", spec)
		}
		attendees = append(attendees, domainClaims.Attendee{
			Name: strings.TrimSpace(name),
			Role: strings.TrimSpace(role),
		})
	}
	return attendees, nil
}

func printJSON(v interface{}) {
	output, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(output))
}

var claimCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new draft claim",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		attendees, err := parseAttendees(claimAttendees)
		if err != nil {
			return err
		}

		payload := domainClaims.DraftPayload{
			VisitID:   claimVisitID,
			RepName:   claimRepName,
			Category:  domainClaims.Category(claimCategory),
			Merchant:  claimMerchant,
			Amount:    claimAmount,
			Currency:  domainClaims.Currency(strings.ToUpper(claimCurrency)),
			Attendees: attendees,
			Notes:     claimNotes,
			Flags: domainClaims.ClaimFlags{
				NoAlcohol:       claimNoAlcohol,
				BusinessPurpose: claimPurpose,
				PolicyConfirmed: claimConfirmed,
			},
		}
		if claimReceipt != "" {
			payload.Receipt = &domainClaims.ReceiptInfo{
				FileName: claimReceipt,
				MimeType: claimMimeType,
				Size:     claimSize,
			}
		}

		claim, err := app.Service.CreateDraft(payload)
		if err != nil {
			return err
		}

		printJSON(claim)
		return nil
	},
}

var claimListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List claims, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		claims, err := app.Service.ListClaims()
		if err != nil {
			return err
		}
		if claimListStatus != "" {
			filtered := claims[:0]
			for _, claim := range claims {
				if strings.EqualFold(string(claim.Status), claimListStatus) {
					filtered = append(filtered, claim)
				}
			}
			claims = filtered
		}

		printJSON(claims)
		return nil
	},
}

var claimShowCmd = &cobra.Command{
	Use:   "show <claim-id>",
	Short: "Show one claim with its audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		claim, err := app.Service.GetClaim(args[0])
		if err != nil {
			return err
		}

		printJSON(claim)
		return nil
	},
}

var claimUpdateCmd = &cobra.Command{
	Use:   "update <claim-id>",
	Short: "Update a draft claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		patch := appClaims.DraftPatch{ClearReceipt: claimNoReceipt}
		flags := cmd.Flags()
		if flags.Changed("visit") {
			patch.VisitID = &claimVisitID
		}
		if flags.Changed("rep") {
			patch.RepName = &claimRepName
		}
		if flags.Changed("category") {
			category := domainClaims.Category(claimCategory)
			patch.Category = &category
		}
		if flags.Changed("merchant") {
			patch.Merchant = &claimMerchant
		}
		if flags.Changed("amount") {
			patch.Amount = &claimAmount
		}
		if flags.Changed("currency") {
			currency := domainClaims.Currency(strings.ToUpper(claimCurrency))
			patch.Currency = &currency
		}
		if flags.Changed("attendee") {
			attendees, err := parseAttendees(claimAttendees)
			if err != nil {
				return err
			}
			patch.Attendees = &attendees
		}
		if flags.Changed("receipt") {
			patch.Receipt = &domainClaims.ReceiptInfo{
				FileName: claimReceipt,
				MimeType: claimMimeType,
				Size:     claimSize,
			}
		}
		if flags.Changed("notes") {
			patch.Notes = &claimNotes
		}
		if flags.Changed("no-alcohol") || flags.Changed("business-purpose") || flags.Changed("policy-confirmed") {
			current, err := app.Service.GetClaim(args[0])
			if err != nil {
				return err
			}
			updated := current.Flags
			if flags.Changed("no-alcohol") {
				updated.NoAlcohol = claimNoAlcohol
			}
			if flags.Changed("business-purpose") {
				updated.BusinessPurpose = claimPurpose
			}
			if flags.Changed("policy-confirmed") {
				updated.PolicyConfirmed = claimConfirmed
			}
			patch.Flags = &updated
		}

		claim, err := app.Service.UpdateDraft(args[0], patch)
		if err != nil {
			return err
		}

		printJSON(claim)
		return nil
	},
}

var claimSubmitCmd = &cobra.Command{
	Use:   "submit <claim-id>",
	Short: "Submit a draft claim through the policy gate",
	Long: `Submit a draft claim. Policy is recomputed first; blocked claims stay
in Draft. A clean submit lands the raw claim in the lake and schedules
the simulated storage trigger, which enriches the claim and advances it
to In Review or Approved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		claim, err := app.Service.SubmitClaim(args[0])
		if err != nil {
			return err
		}

		if err := app.Writer.WriteBronze(cmd.Context(), claim); err != nil {
			return err
		}
		blobPath := lake.BronzeClaimPath(claim.ID)
		fmt.Printf("BlobCreated -> policyEnricher triggered (%s)\n", blobPath)
		job := app.Trigger.Schedule(claim.ID, blobPath)

		if !submitNoWait {
			<-job.Done()
			if err := job.Err(); err != nil {
				return err
			}
			claim, err = app.Service.GetClaim(claim.ID)
			if err != nil {
				return err
			}
		}

		printJSON(claim)
		return nil
	},
}

var claimReviewCmd = &cobra.Command{
	Use:   "review <claim-id>",
	Short: "Send a submitted claim to manager review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], func(app *App, id string) (*domainClaims.Claim, error) {
			return app.Service.SendToReview(id)
		})
	},
}

var claimApproveCmd = &cobra.Command{
	Use:   "approve <claim-id>",
	Short: "Approve a claim under review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], func(app *App, id string) (*domainClaims.Claim, error) {
			return app.Service.ApproveClaim(id)
		})
	},
}

var claimRejectCmd = &cobra.Command{
	Use:   "reject <claim-id>",
	Short: "Reject a claim under review (reason required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], func(app *App, id string) (*domainClaims.Claim, error) {
			return app.Service.RejectClaim(id, rejectReason)
		})
	},
}

var claimResubmitCmd = &cobra.Command{
	Use:   "resubmit <claim-id>",
	Short: "Reopen a rejected claim as a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], func(app *App, id string) (*domainClaims.Claim, error) {
			return app.Service.ResubmitRejected(id)
		})
	},
}

var claimAttachReceiptCmd = &cobra.Command{
	Use:   "attach-receipt <claim-id> <file>",
	Short: "Attach a receipt file to a draft and land it in the lake",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		receipt := domainClaims.ReceiptInfo{
			FileName: filepath.Base(args[1]),
			MimeType: claimMimeType,
			Size:     int64(len(data)),
		}
		claim, err := app.Service.UpdateDraft(args[0], appClaims.DraftPatch{Receipt: &receipt})
		if err != nil {
			return err
		}

		blobPath, err := app.Writer.WriteReceiptBlob(cmd.Context(), claim, data)
		if err != nil {
			return err
		}
		fmt.Printf("Receipt stored at %s\n", blobPath)

		printJSON(claim)
		return nil
	},
}

var claimDeleteCmd = &cobra.Command{
	Use:   "delete <claim-id>",
	Short: "Delete a draft claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Service.DeleteDraft(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

func runTransition(cmd *cobra.Command, id string, op func(*App, string) (*domainClaims.Claim, error)) error {
	app, err := NewApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	claim, err := op(app, id)
	if err != nil {
		return err
	}

	printJSON(claim)
	return nil
}

// VisitsCmd lists the visit reference data claims attach to.
var VisitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "List HCP visits",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := NewApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		visits, err := app.Service.ListVisits()
		if err != nil {
			return err
		}

		printJSON(visits)
		return nil
	},
}

func addClaimFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&claimVisitID, "visit", "", "visit id (e.g. VIS-001)")
	cmd.Flags().StringVar(&claimRepName, "rep", "", "field rep name")
	cmd.Flags().StringVar(&claimCategory, "category", "", "Meal, Taxi/Rideshare, Parking, Hotel or Other")
	cmd.Flags().StringVar(&claimMerchant, "merchant", "", "merchant name")
	cmd.Flags().Float64Var(&claimAmount, "amount", 0, "claim amount")
	cmd.Flags().StringVar(&claimCurrency, "currency", "CAD", "currency code")
	cmd.Flags().StringArrayVar(&claimAttendees, "attendee", nil, "attendee as Name:Role (repeatable)")
	cmd.Flags().StringVar(&claimReceipt, "receipt", "", "receipt file name")
	cmd.Flags().StringVar(&claimMimeType, "receipt-type", "application/pdf", "receipt mime type")
	cmd.Flags().Int64Var(&claimSize, "receipt-size", 0, "receipt size in bytes")
	cmd.Flags().StringVar(&claimNotes, "notes", "", "free-text notes")
	cmd.Flags().BoolVar(&claimNoAlcohol, "no-alcohol", false, "confirm no alcohol")
	cmd.Flags().BoolVar(&claimPurpose, "business-purpose", false, "confirm business purpose")
	cmd.Flags().BoolVar(&claimConfirmed, "policy-confirmed", false, "confirm policy compliance")
}

func init() {
	addClaimFieldFlags(claimCreateCmd)
	addClaimFieldFlags(claimUpdateCmd)
	claimUpdateCmd.Flags().BoolVar(&claimNoReceipt, "clear-receipt", false, "detach the receipt")

	claimAttachReceiptCmd.Flags().StringVar(&claimMimeType, "receipt-type", "application/pdf", "receipt mime type")
	claimListCmd.Flags().StringVar(&claimListStatus, "status", "", "filter by status")
	claimSubmitCmd.Flags().BoolVar(&submitNoWait, "no-wait", false, "return before the pipeline trigger fires")
	claimRejectCmd.Flags().StringVar(&rejectReason, "reason", "", "rejection reason (required)")

	ClaimCmd.AddCommand(claimCreateCmd)
	ClaimCmd.AddCommand(claimListCmd)
	ClaimCmd.AddCommand(claimShowCmd)
	ClaimCmd.AddCommand(claimUpdateCmd)
	ClaimCmd.AddCommand(claimAttachReceiptCmd)
	ClaimCmd.AddCommand(claimSubmitCmd)
	ClaimCmd.AddCommand(claimReviewCmd)
	ClaimCmd.AddCommand(claimApproveCmd)
	ClaimCmd.AddCommand(claimRejectCmd)
	ClaimCmd.AddCommand(claimResubmitCmd)
	ClaimCmd.AddCommand(claimDeleteCmd)
}
