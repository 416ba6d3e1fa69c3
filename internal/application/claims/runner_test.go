package claims

import (
	"context"
	"strings"
	"testing"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	infraClaims "github.com/pharmafield/expenseflow/internal/infrastructure/claims"
	"github.com/pharmafield/expenseflow/internal/infrastructure/lake"
)

func newTestRunner() (*Runner, *infraClaims.InMemoryClaimRepository, *lake.InMemoryBlobStore) {
	repo := infraClaims.NewInMemoryClaimRepository()
	store := lake.NewInMemoryBlobStore()
	runner := NewRunner(repo, infraClaims.NewInMemoryVisitRepository(),
		lake.NewWriter(store, nil), nil, nil, nil)
	return runner, repo, store
}

func submittedClaim(repo *infraClaims.InMemoryClaimRepository, payload domainClaims.DraftPayload) *domainClaims.Claim {
	claim := domainClaims.NewDraft(payload)
	claim.SetStatus(domainClaims.StatusSubmitted)
	claim.AppendAudit(domainClaims.ActorRep, domainClaims.ActionSubmitted, "")
	repo.Save(claim)
	return claim
}

func TestRunMissingClaimIsNoOp(t *testing.T) {
	runner, repo, _ := newTestRunner()

	if err := runner.Run(context.Background(), "EXP-gone"); err != nil {
		t.Fatalf("missing claim should be a no-op, got %v", err)
	}
	if repo.Count() != 0 {
		t.Error("no-op run created a record")
	}
}

func TestRunAutoApprovesCleanClaim(t *testing.T) {
	runner, repo, _ := newTestRunner()
	claim := submittedClaim(repo, compliantPayload())

	if err := runner.Run(context.Background(), claim.ID); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stored, _ := repo.FindByID(claim.ID)
	if stored.Status != domainClaims.StatusApproved {
		t.Errorf("status = %s, want Approved", stored.Status)
	}
	last := stored.Audit[len(stored.Audit)-1]
	if last.Actor != domainClaims.ActorSystem || last.Action != domainClaims.ActionAutoApproved {
		t.Errorf("unexpected final audit entry: %+v", last)
	}
}

func TestRunRoutesReviewClaims(t *testing.T) {
	runner, repo, _ := newTestRunner()
	payload := compliantPayload()
	payload.Category = domainClaims.CategoryOther
	claim := submittedClaim(repo, payload)

	if err := runner.Run(context.Background(), claim.ID); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	stored, _ := repo.FindByID(claim.ID)
	if stored.Status != domainClaims.StatusInReview {
		t.Errorf("status = %s, want In Review", stored.Status)
	}
	last := stored.Audit[len(stored.Audit)-1]
	if last.Action != domainClaims.ActionRoutedToReview {
		t.Errorf("unexpected final audit entry: %+v", last)
	}
}

func TestRunRevertsBlockedClaimToDraft(t *testing.T) {
	runner, repo, _ := newTestRunner()
	claim := submittedClaim(repo, compliantPayload())

	// An interleaving edit stripped the receipt and the confirmations
	// after submit; the pipeline must catch it.
	stored, _ := repo.FindByID(claim.ID)
	stored.Receipt = nil
	stored.Flags.PolicyConfirmed = false
	repo.Save(stored)

	if err := runner.Run(context.Background(), claim.ID); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	after, _ := repo.FindByID(claim.ID)
	if after.Status != domainClaims.StatusDraft {
		t.Errorf("status = %s, want Draft", after.Status)
	}
	last := after.Audit[len(after.Audit)-1]
	if last.Action != domainClaims.ActionPipelineBlock {
		t.Fatalf("unexpected final audit entry: %+v", last)
	}
	if !strings.Contains(last.Detail, "Receipt is required.") ||
		!strings.Contains(last.Detail, "; ") {
		t.Errorf("block detail should join all messages, got %q", last.Detail)
	}
}

func TestRunWritesLakeProjections(t *testing.T) {
	runner, repo, store := newTestRunner()
	claim := submittedClaim(repo, compliantPayload())

	if err := runner.Run(context.Background(), claim.ID); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, path := range []string{
		lake.BronzeClaimPath(claim.ID),
		lake.SilverPath(claim.ID),
		lake.GoldPath(claim.ID),
	} {
		if _, err := store.Get(context.Background(), path); err != nil {
			t.Errorf("missing lake document %s: %v", path, err)
		}
	}
}

func TestRunWithDanglingVisitStillProjects(t *testing.T) {
	runner, repo, store := newTestRunner()
	payload := compliantPayload()
	payload.VisitID = "VIS-does-not-exist"
	claim := submittedClaim(repo, payload)

	if err := runner.Run(context.Background(), claim.ID); err != nil {
		t.Fatalf("run should tolerate a dangling visit reference, got %v", err)
	}
	if _, err := store.Get(context.Background(), lake.GoldPath(claim.ID)); err != nil {
		t.Errorf("gold document missing: %v", err)
	}
}

func TestRunWithoutLakeWriter(t *testing.T) {
	repo := infraClaims.NewInMemoryClaimRepository()
	runner := NewRunner(repo, infraClaims.NewInMemoryVisitRepository(), nil, nil, nil, nil)
	claim := submittedClaim(repo, compliantPayload())

	if err := runner.Run(context.Background(), claim.ID); err != nil {
		t.Fatalf("run without a lake should still advance the claim, got %v", err)
	}
	stored, _ := repo.FindByID(claim.ID)
	if stored.Status != domainClaims.StatusApproved {
		t.Errorf("status = %s, want Approved", stored.Status)
	}
}
