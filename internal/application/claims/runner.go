package claims

import (
	"context"
	"strings"

	"go.uber.org/zap"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	infraClaims "github.com/pharmafield/expenseflow/internal/infrastructure/claims"
	"github.com/pharmafield/expenseflow/internal/infrastructure/events"
	"github.com/pharmafield/expenseflow/internal/infrastructure/lake"
)

// Runner is the enrichment step that fires after a claim heads toward
// Submitted. It re-validates policy against the current persisted claim,
// advances the status, and refreshes the lake projections.
type Runner struct {
	repo    infraClaims.ClaimRepository
	visits  infraClaims.VisitRepository
	lake    *lake.Writer
	bus     *events.Bus
	options OptionsSource
	logger  *zap.Logger
}

// NewRunner creates a pipeline runner. The lake writer may be nil when no
// lake is configured.
func NewRunner(
	repo infraClaims.ClaimRepository,
	visits infraClaims.VisitRepository,
	lakeWriter *lake.Writer,
	bus *events.Bus,
	options OptionsSource,
	logger *zap.Logger,
) *Runner {
	if options == nil {
		options = func() domainClaims.PolicyOptions { return domainClaims.PolicyOptions{} }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		repo:    repo,
		visits:  visits,
		lake:    lakeWriter,
		bus:     bus,
		options: options,
		logger:  logger,
	}
}

// Run re-evaluates policy for the claim and advances its status. A missing
// claim is a silent no-op: the trigger may fire after a draft was deleted.
// The outcome is persisted as one repository write, then projected into
// the lake.
func (r *Runner) Run(ctx context.Context, claimID string) error {
	claim, err := r.repo.FindByID(claimID)
	if err != nil {
		if IsNotFound(err) {
			r.logger.Debug("pipeline skipped missing claim", zap.String("claimId", claimID))
			return nil
		}
		return err
	}

	from := claim.Status
	policy := domainClaims.Evaluate(claim, r.options())
	claim.Policy = policy

	var eventType domainClaims.ClaimEventType
	var detail string
	switch {
	case policy.Blocked():
		// Interleaving edits can re-introduce blocks after submit; the
		// claim goes back to the rep as a draft.
		claim.SetStatus(domainClaims.StatusDraft)
		detail = strings.Join(policy.Blocks, "; ")
		claim.AppendAudit(domainClaims.ActorSystem, domainClaims.ActionPipelineBlock, detail)
		eventType = domainClaims.EventPipelineBlocked
	case policy.RequiresReview:
		claim.SetStatus(domainClaims.StatusInReview)
		claim.AppendAudit(domainClaims.ActorSystem, domainClaims.ActionRoutedToReview, "")
		eventType = domainClaims.EventPipelineRouted
	default:
		claim.SetStatus(domainClaims.StatusApproved)
		claim.AppendAudit(domainClaims.ActorSystem, domainClaims.ActionAutoApproved, "")
		eventType = domainClaims.EventPipelineApproved
	}

	if err := r.repo.Save(claim); err != nil {
		return err
	}

	r.logger.Info("pipeline run complete",
		zap.String("claimId", claim.ID),
		zap.String("from", string(from)),
		zap.String("to", string(claim.Status)))
	if r.bus != nil {
		r.bus.Emit(domainClaims.NewPipelineEvent(eventType, claim.ID, detail))
	}

	return r.project(ctx, claim)
}

// project refreshes the bronze/silver/gold documents for the claim.
func (r *Runner) project(ctx context.Context, claim *domainClaims.Claim) error {
	if r.lake == nil {
		return nil
	}

	var visit *domainClaims.Visit
	if claim.VisitID != "" {
		if v, err := r.visits.FindByID(claim.VisitID); err == nil {
			visit = &v
		}
	}

	return r.lake.WriteAll(ctx, claim, visit)
}
