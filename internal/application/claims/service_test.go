package claims

import (
	"errors"
	"testing"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
	infraClaims "github.com/pharmafield/expenseflow/internal/infrastructure/claims"
)

func newTestService() (*Service, *infraClaims.InMemoryClaimRepository) {
	repo := infraClaims.NewInMemoryClaimRepository()
	return NewService(repo, infraClaims.NewInMemoryVisitRepository(), nil, nil, nil), repo
}

func compliantPayload() domainClaims.DraftPayload {
	return domainClaims.DraftPayload{
		VisitID:  "VIS-001",
		RepName:  "Alex Chen",
		Category: domainClaims.CategoryMeal,
		Merchant: "Bistro 21",
		Amount:   48.5,
		Currency: domainClaims.CurrencyCAD,
		Attendees: []domainClaims.Attendee{
			{Name: "Dr. Smith", Role: "HCP"},
		},
		Receipt: &domainClaims.ReceiptInfo{FileName: "r.pdf", MimeType: "application/pdf", Size: 1024},
		Flags:   domainClaims.ClaimFlags{BusinessPurpose: true, PolicyConfirmed: true},
	}
}

func TestCreateDraftRoundTrip(t *testing.T) {
	service, _ := newTestService()
	payload := compliantPayload()

	created, err := service.CreateDraft(payload)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	found, err := service.GetClaim(created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if found.Status != domainClaims.StatusDraft {
		t.Errorf("status = %s, want Draft", found.Status)
	}
	if found.Merchant != payload.Merchant || found.Amount != payload.Amount ||
		found.RepName != payload.RepName {
		t.Errorf("payload fields lost: %+v", found)
	}
	if len(found.Audit) != 1 || found.Audit[0].Action != domainClaims.ActionCreated {
		t.Errorf("unexpected audit trail: %v", found.Audit)
	}
	if found.Policy.Blocked() {
		t.Errorf("compliant draft should have no blocks: %v", found.Policy.Blocks)
	}
}

func TestCreateDraftEvaluatesPolicy(t *testing.T) {
	service, _ := newTestService()

	created, err := service.CreateDraft(domainClaims.DraftPayload{Category: domainClaims.CategoryMeal})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !created.Policy.Blocked() {
		t.Error("empty draft should carry a blocked policy verdict")
	}
}

func TestCreateDraftRejectsNegativeAmount(t *testing.T) {
	service, _ := newTestService()

	if _, err := service.CreateDraft(domainClaims.DraftPayload{Amount: -5}); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestSubmitCompliantClaim(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())

	submitted, err := service.SubmitClaim(created.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submitted.Status != domainClaims.StatusSubmitted {
		t.Errorf("status = %s, want Submitted", submitted.Status)
	}
	if len(submitted.Audit) != 2 || submitted.Audit[1].Action != domainClaims.ActionSubmitted {
		t.Errorf("expected exactly one new audit entry, got %v", submitted.Audit)
	}
	if submitted.Audit[1].Actor != domainClaims.ActorRep {
		t.Errorf("submitted entry actor = %s, want rep", submitted.Audit[1].Actor)
	}
}

func TestSubmitBlockedClaimStaysDraft(t *testing.T) {
	service, _ := newTestService()
	payload := compliantPayload()
	payload.Receipt = nil
	created, _ := service.CreateDraft(payload)

	_, err := service.SubmitClaim(created.ID)
	if !errors.Is(err, domainClaims.ErrPolicyBlocked) {
		t.Fatalf("expected ErrPolicyBlocked, got %v", err)
	}

	found, _ := service.GetClaim(created.ID)
	if found.Status != domainClaims.StatusDraft {
		t.Errorf("blocked submit changed status to %s", found.Status)
	}
	if len(found.Audit) != 1 {
		t.Errorf("blocked submit appended audit entries: %v", found.Audit)
	}
}

func TestSubmitAutoRoutesReviewClaims(t *testing.T) {
	service, _ := newTestService()
	payload := compliantPayload()
	payload.Category = domainClaims.CategoryOther
	created, _ := service.CreateDraft(payload)

	submitted, err := service.SubmitClaim(created.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submitted.Status != domainClaims.StatusInReview {
		t.Errorf("status = %s, want In Review", submitted.Status)
	}
	if len(submitted.Audit) != 3 {
		t.Fatalf("expected two new audit entries, got %v", submitted.Audit)
	}
	if submitted.Audit[1].Action != domainClaims.ActionSubmitted ||
		submitted.Audit[2].Action != domainClaims.ActionSentToReview {
		t.Errorf("audit trail order wrong: %v", submitted.Audit)
	}
	if submitted.Audit[2].Actor != domainClaims.ActorSystem ||
		submitted.Audit[2].Detail != "Auto-routed for review" {
		t.Errorf("unexpected auto-route entry: %+v", submitted.Audit[2])
	}
}

func TestSubmitNonDraftFails(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())
	service.SubmitClaim(created.ID)

	_, err := service.SubmitClaim(created.ID)
	if !errors.Is(err, domainClaims.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateDraftRecomputesPolicy(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())

	updated, err := service.UpdateDraft(created.ID, DraftPatch{ClearReceipt: true})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Receipt != nil {
		t.Error("receipt should be cleared")
	}
	if !updated.Policy.Blocked() {
		t.Error("policy should be recomputed after the edit removed the receipt")
	}
	if len(updated.Audit) != 1 {
		t.Errorf("plain edits must not be audited, got %v", updated.Audit)
	}
}

func TestUpdateDraftPartialPatch(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())

	amount := 99.0
	notes := "team dinner"
	updated, err := service.UpdateDraft(created.ID, DraftPatch{Amount: &amount, Notes: &notes})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Amount != 99 || updated.Notes != "team dinner" {
		t.Errorf("patched fields lost: %+v", updated)
	}
	if updated.Merchant != "Bistro 21" {
		t.Error("unpatched fields must not change")
	}
}

func TestUpdateNonDraftFails(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())
	service.SubmitClaim(created.ID)

	notes := "too late"
	_, err := service.UpdateDraft(created.ID, DraftPatch{Notes: &notes})
	if !errors.Is(err, domainClaims.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReviewApproveFlow(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())
	service.SubmitClaim(created.ID)

	inReview, err := service.SendToReview(created.ID)
	if err != nil {
		t.Fatalf("send to review failed: %v", err)
	}
	if inReview.Status != domainClaims.StatusInReview {
		t.Errorf("status = %s, want In Review", inReview.Status)
	}
	if last := inReview.Audit[len(inReview.Audit)-1]; last.Actor != domainClaims.ActorManager {
		t.Errorf("manual review entry actor = %s, want manager", last.Actor)
	}

	approved, err := service.ApproveClaim(created.ID)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != domainClaims.StatusApproved {
		t.Errorf("status = %s, want Approved", approved.Status)
	}

	// Approved is terminal.
	if _, err := service.SendToReview(created.ID); !errors.Is(err, domainClaims.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition from Approved, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())
	service.SubmitClaim(created.ID)
	service.SendToReview(created.ID)

	_, err := service.RejectClaim(created.ID, "   ")
	if !errors.Is(err, domainClaims.ErrReasonRequired) {
		t.Fatalf("expected ErrReasonRequired, got %v", err)
	}
	found, _ := service.GetClaim(created.ID)
	if found.Status != domainClaims.StatusInReview {
		t.Error("reject without reason must not change state")
	}

	rejected, err := service.RejectClaim(created.ID, "missing itemized receipt")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	last := rejected.Audit[len(rejected.Audit)-1]
	if last.Action != domainClaims.ActionRejected || last.Detail != "missing itemized receipt" {
		t.Errorf("unexpected rejection entry: %+v", last)
	}
}

func TestResubmitRejectedReopensDraft(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())
	service.SubmitClaim(created.ID)
	service.SendToReview(created.ID)
	service.RejectClaim(created.ID, "wrong amount")

	reopened, err := service.ResubmitRejected(created.ID)
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if reopened.Status != domainClaims.StatusDraft {
		t.Errorf("status = %s, want Draft", reopened.Status)
	}
	last := reopened.Audit[len(reopened.Audit)-1]
	if last.Action != domainClaims.ActionResubmit || last.Detail != "Edit & resubmit" {
		t.Errorf("unexpected resubmit entry: %+v", last)
	}

	// Reopened drafts are editable and resubmittable.
	amount := 40.0
	if _, err := service.UpdateDraft(created.ID, DraftPatch{Amount: &amount}); err != nil {
		t.Errorf("reopened draft should be editable: %v", err)
	}
	if _, err := service.SubmitClaim(created.ID); err != nil {
		t.Errorf("reopened draft should be submittable: %v", err)
	}
}

func TestResubmitNonRejectedIsNoOp(t *testing.T) {
	service, _ := newTestService()
	created, _ := service.CreateDraft(compliantPayload())

	_, err := service.ResubmitRejected(created.ID)
	if !errors.Is(err, domainClaims.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
	found, _ := service.GetClaim(created.ID)
	if found.Status != domainClaims.StatusDraft || len(found.Audit) != 1 {
		t.Error("failed resubmit must not change the claim")
	}
}

func TestDeleteDraftOnly(t *testing.T) {
	service, repo := newTestService()
	created, _ := service.CreateDraft(compliantPayload())

	if err := service.DeleteDraft(created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if repo.Count() != 0 {
		t.Error("draft not removed")
	}

	submitted, _ := service.CreateDraft(compliantPayload())
	service.SubmitClaim(submitted.ID)
	if err := service.DeleteDraft(submitted.ID); !errors.Is(err, domainClaims.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition deleting a submitted claim, got %v", err)
	}
}

func TestSubmitUSDMealNotLimitedButStillBlocked(t *testing.T) {
	service, _ := newTestService()
	payload := compliantPayload()
	payload.Currency = domainClaims.CurrencyUSD
	payload.Amount = 1000
	payload.Receipt = nil
	created, _ := service.CreateDraft(payload)

	_, err := service.SubmitClaim(created.ID)
	if !errors.Is(err, domainClaims.ErrPolicyBlocked) {
		t.Fatalf("expected receipt block, got %v", err)
	}
	verdict, _ := service.CheckPolicy(created.ID)
	if verdict.RequiresReview {
		t.Error("USD amount must not trip the CAD meal limit")
	}
}

func TestConfiguredMealLimitFlowsIntoSubmit(t *testing.T) {
	repo := infraClaims.NewInMemoryClaimRepository()
	limit := 200.0
	service := NewService(repo, infraClaims.NewInMemoryVisitRepository(), nil,
		func() domainClaims.PolicyOptions {
			return domainClaims.PolicyOptions{MealLimitPerPersonCAD: limit}
		}, nil)

	payload := compliantPayload()
	payload.Amount = 150
	created, _ := service.CreateDraft(payload)

	submitted, err := service.SubmitClaim(created.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submitted.Status != domainClaims.StatusSubmitted {
		t.Errorf("150 under a 200 limit should submit cleanly, got %s", submitted.Status)
	}

	// Lowering the limit takes effect without rebuilding the service.
	limit = 100
	resumed, _ := service.CreateDraft(payload)
	routed, err := service.SubmitClaim(resumed.ID)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if routed.Status != domainClaims.StatusInReview {
		t.Errorf("150 over a 100 limit should auto-route, got %s", routed.Status)
	}
}

func TestListVisits(t *testing.T) {
	service, _ := newTestService()

	visits, err := service.ListVisits()
	if err != nil {
		t.Fatalf("list visits failed: %v", err)
	}
	if len(visits) != 6 {
		t.Errorf("expected 6 visits, got %d", len(visits))
	}
}
