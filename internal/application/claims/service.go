// Package claims provides application services for the expense claim system.
package claims

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	infraClaims "github.com/pharmafield/expenseflow/internal/infrastructure/claims"
	"github.com/pharmafield/expenseflow/internal/infrastructure/events"
)

// OptionsSource supplies the current policy options. Keeping it a function
// lets the service pick up settings edits without a restart.
type OptionsSource func() domainClaims.PolicyOptions

// Service orchestrates user-initiated claim lifecycle operations. Policy is
// recomputed before every transition decision; a stale stored verdict is
// never trusted across edits.
type Service struct {
	repo    infraClaims.ClaimRepository
	visits  infraClaims.VisitRepository
	bus     *events.Bus
	options OptionsSource
	logger  *zap.Logger
}

// NewService creates a new lifecycle service.
func NewService(
	repo infraClaims.ClaimRepository,
	visits infraClaims.VisitRepository,
	bus *events.Bus,
	options OptionsSource,
	logger *zap.Logger,
) *Service {
	if options == nil {
		options = func() domainClaims.PolicyOptions { return domainClaims.PolicyOptions{} }
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		visits:  visits,
		bus:     bus,
		options: options,
		logger:  logger,
	}
}

func (s *Service) emit(event *domainClaims.ClaimEvent) {
	if s.bus != nil {
		s.bus.Emit(event)
	}
}

// CreateDraft creates a new claim in Draft status with an evaluated policy
// verdict and an opening audit entry.
func (s *Service) CreateDraft(payload domainClaims.DraftPayload) (*domainClaims.Claim, error) {
	if payload.Category != "" && !domainClaims.IsValidCategory(payload.Category) {
		return nil, fmt.Errorf("invalid category: %s", payload.Category)
	}
	if payload.Amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative, got %g", payload.Amount)
	}

	claim := domainClaims.NewDraft(payload)
	claim.Policy = domainClaims.Evaluate(claim, s.options())

	if err := s.repo.Save(claim); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.logger.Info("draft created",
		zap.String("claimId", claim.ID),
		zap.String("category", string(claim.Category)))
	s.emit(domainClaims.NewStatusEvent(domainClaims.EventClaimCreated, claim, ""))

	return claim, nil
}

// DraftPatch carries partial field updates for a draft. Nil pointers leave
// the field untouched; ClearReceipt detaches the receipt.
type DraftPatch struct {
	VisitID      *string
	RepName      *string
	Category     *domainClaims.Category
	Merchant     *string
	Amount       *float64
	Currency     *domainClaims.Currency
	Attendees    *[]domainClaims.Attendee
	Receipt      *domainClaims.ReceiptInfo
	ClearReceipt bool
	Notes        *string
	Flags        *domainClaims.ClaimFlags
}

func (p DraftPatch) apply(claim *domainClaims.Claim) {
	if p.VisitID != nil {
		claim.VisitID = *p.VisitID
	}
	if p.RepName != nil {
		claim.RepName = *p.RepName
	}
	if p.Category != nil {
		claim.Category = *p.Category
	}
	if p.Merchant != nil {
		claim.Merchant = *p.Merchant
	}
	if p.Amount != nil {
		claim.Amount = *p.Amount
	}
	if p.Currency != nil {
		claim.Currency = *p.Currency
	}
	if p.Attendees != nil {
		claim.Attendees = append([]domainClaims.Attendee(nil), (*p.Attendees)...)
	}
	if p.ClearReceipt {
		claim.Receipt = nil
	} else if p.Receipt != nil {
		receipt := *p.Receipt
		claim.Receipt = &receipt
	}
	if p.Notes != nil {
		claim.Notes = *p.Notes
	}
	if p.Flags != nil {
		claim.Flags = *p.Flags
	}
}

// UpdateDraft merges field changes into a Draft claim and recomputes its
// policy verdict. Plain edits are not audited; only status changes are.
func (s *Service) UpdateDraft(id string, patch DraftPatch) (*domainClaims.Claim, error) {
	claim, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !claim.Status.IsEditable() {
		return nil, fmt.Errorf("%w: cannot update claim in status %s",
			domainClaims.ErrInvalidTransition, claim.Status)
	}
	if patch.Category != nil && !domainClaims.IsValidCategory(*patch.Category) {
		return nil, fmt.Errorf("invalid category: %s", *patch.Category)
	}
	if patch.Amount != nil && *patch.Amount < 0 {
		return nil, fmt.Errorf("amount must be non-negative, got %g", *patch.Amount)
	}

	patch.apply(claim)
	claim.Policy = domainClaims.Evaluate(claim, s.options())
	claim.SetStatus(domainClaims.StatusDraft)

	if err := s.repo.Save(claim); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}

	s.emit(domainClaims.NewStatusEvent(domainClaims.EventClaimUpdated, claim, domainClaims.StatusDraft))
	return claim, nil
}

// SubmitClaim submits a Draft claim. Policy is recomputed first: blocks
// leave the claim in Draft and return ErrPolicyBlocked; requiresReview
// auto-routes the claim to In Review with a second system audit entry.
func (s *Service) SubmitClaim(id string) (*domainClaims.Claim, error) {
	claim, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if claim.Status != domainClaims.StatusDraft {
		return nil, fmt.Errorf("%w: cannot submit claim in status %s",
			domainClaims.ErrInvalidTransition, claim.Status)
	}

	policy := domainClaims.Evaluate(claim, s.options())
	claim.Policy = policy
	if policy.Blocked() {
		// The fresh verdict is not persisted on a blocked submit; the
		// claim record stays exactly as it was.
		s.logger.Info("submit blocked by policy",
			zap.String("claimId", id),
			zap.Strings("blocks", policy.Blocks))
		return nil, fmt.Errorf("%w: %s", domainClaims.ErrPolicyBlocked,
			strings.Join(policy.Blocks, "; "))
	}

	claim.SetStatus(domainClaims.StatusSubmitted)
	claim.AppendAudit(domainClaims.ActorRep, domainClaims.ActionSubmitted, "")

	eventType := domainClaims.EventClaimSubmitted
	if policy.RequiresReview {
		claim.SetStatus(domainClaims.StatusInReview)
		claim.AppendAudit(domainClaims.ActorSystem, domainClaims.ActionSentToReview, "Auto-routed for review")
		eventType = domainClaims.EventClaimInReview
	}

	if err := s.repo.Save(claim); err != nil {
		return nil, fmt.Errorf("failed to save claim: %w", err)
	}

	s.logger.Info("claim submitted",
		zap.String("claimId", claim.ID),
		zap.String("status", string(claim.Status)))
	s.emit(domainClaims.NewStatusEvent(eventType, claim, domainClaims.StatusDraft))

	return claim, nil
}

// SendToReview moves a Submitted claim to In Review on a manager's request.
func (s *Service) SendToReview(id string) (*domainClaims.Claim, error) {
	return s.transition(id, domainClaims.StatusSubmitted, domainClaims.StatusInReview,
		domainClaims.ActorManager, domainClaims.ActionSentToReview, "",
		domainClaims.EventClaimInReview)
}

// ApproveClaim approves a claim under review. Approved is terminal.
func (s *Service) ApproveClaim(id string) (*domainClaims.Claim, error) {
	return s.transition(id, domainClaims.StatusInReview, domainClaims.StatusApproved,
		domainClaims.ActorManager, domainClaims.ActionApproved, "",
		domainClaims.EventClaimApproved)
}

// RejectClaim rejects a claim under review. The reason is required and is
// recorded as the audit detail.
func (s *Service) RejectClaim(id, reason string) (*domainClaims.Claim, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domainClaims.ErrReasonRequired
	}
	return s.transition(id, domainClaims.StatusInReview, domainClaims.StatusRejected,
		domainClaims.ActorManager, domainClaims.ActionRejected, reason,
		domainClaims.EventClaimRejected)
}

// ResubmitRejected reopens a Rejected claim for editing.
func (s *Service) ResubmitRejected(id string) (*domainClaims.Claim, error) {
	return s.transition(id, domainClaims.StatusRejected, domainClaims.StatusDraft,
		domainClaims.ActorRep, domainClaims.ActionResubmit, "Edit & resubmit",
		domainClaims.EventClaimResubmitted)
}

// transition applies one guarded status change with its audit entry as a
// single repository write.
func (s *Service) transition(
	id string,
	from, to domainClaims.ClaimStatus,
	actor, action, detail string,
	eventType domainClaims.ClaimEventType,
) (*domainClaims.Claim, error) {
	claim, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if claim.Status != from {
		return nil, fmt.Errorf("%w: %s -> %s not allowed from %s",
			domainClaims.ErrInvalidTransition, from, to, claim.Status)
	}

	claim.SetStatus(to)
	claim.AppendAudit(actor, action, detail)

	if err := s.repo.Save(claim); err != nil {
		return nil, fmt.Errorf("failed to save claim: %w", err)
	}

	s.logger.Info("claim transitioned",
		zap.String("claimId", claim.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	s.emit(domainClaims.NewStatusEvent(eventType, claim, from))

	return claim, nil
}

// DeleteDraft removes a Draft claim entirely. No tombstone is kept.
func (s *Service) DeleteDraft(id string) error {
	claim, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}
	if claim.Status != domainClaims.StatusDraft {
		return fmt.Errorf("%w: cannot delete claim in status %s",
			domainClaims.ErrInvalidTransition, claim.Status)
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.logger.Info("draft deleted", zap.String("claimId", id))
	s.emit(domainClaims.NewClaimEvent(domainClaims.EventClaimDeleted, id, nil))
	return nil
}

// ImportClaim stores a fully formed claim as-is, audit trail included.
// Used by demo data loading; lifecycle operations never call this.
func (s *Service) ImportClaim(claim *domainClaims.Claim) error {
	if err := s.repo.Save(claim); err != nil {
		return fmt.Errorf("failed to import claim %s: %w", claim.ID, err)
	}
	s.emit(domainClaims.NewStatusEvent(domainClaims.EventClaimCreated, claim, ""))
	return nil
}

// GetClaim returns a claim by id.
func (s *Service) GetClaim(id string) (*domainClaims.Claim, error) {
	return s.repo.FindByID(id)
}

// ListClaims returns all claims, newest first.
func (s *Service) ListClaims() ([]*domainClaims.Claim, error) {
	return s.repo.FindAll()
}

// ListVisits returns the visit reference data.
func (s *Service) ListVisits() ([]domainClaims.Visit, error) {
	return s.visits.FindAll()
}

// GetVisit resolves a visit by id. A dangling visit reference on a claim
// yields ErrVisitNotFound, which lake callers treat as "no HCP name".
func (s *Service) GetVisit(id string) (*domainClaims.Visit, error) {
	visit, err := s.visits.FindByID(id)
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// CheckPolicy evaluates the current policy verdict for a claim without
// persisting anything.
func (s *Service) CheckPolicy(id string) (domainClaims.PolicyResult, error) {
	claim, err := s.repo.FindByID(id)
	if err != nil {
		return domainClaims.PolicyResult{}, err
	}
	return domainClaims.Evaluate(claim, s.options()), nil
}

// IsNotFound reports whether the error marks a missing claim or visit.
func IsNotFound(err error) bool {
	return errors.Is(err, domainClaims.ErrNotFound) || errors.Is(err, domainClaims.ErrVisitNotFound)
}
