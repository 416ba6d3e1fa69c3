package claims

import (
	"strings"
	"testing"
)

func TestNewDraft(t *testing.T) {
	claim := NewDraft(DraftPayload{
		VisitID:  "VIS-001",
		RepName:  "Alex Chen",
		Category: CategoryMeal,
		Merchant: "Bistro 21",
		Amount:   48.5,
		Currency: CurrencyCAD,
		Attendees: []Attendee{
			{Name: "Dr. Smith", Role: "HCP"},
		},
	})

	if !strings.HasPrefix(claim.ID, "EXP-") {
		t.Errorf("claim id should have EXP- prefix, got %q", claim.ID)
	}
	if claim.Status != StatusDraft {
		t.Errorf("new claim status = %s, want Draft", claim.Status)
	}
	if len(claim.Audit) != 1 {
		t.Fatalf("expected opening audit entry, got %d entries", len(claim.Audit))
	}
	entry := claim.Audit[0]
	if entry.Actor != ActorSystem || entry.Action != ActionCreated || entry.Detail != "Draft" {
		t.Errorf("unexpected opening audit entry: %+v", entry)
	}
	if claim.CreatedAt.IsZero() || !claim.CreatedAt.Equal(claim.UpdatedAt) {
		t.Error("CreatedAt and UpdatedAt should be set and equal on a new draft")
	}
}

func TestNewClaimIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewClaimID()
		if seen[id] {
			t.Fatalf("duplicate claim id %s", id)
		}
		seen[id] = true
	}
}

func TestAppendAuditIsAppendOnly(t *testing.T) {
	claim := NewDraft(DraftPayload{VisitID: "VIS-001"})
	first := claim.Audit[0]

	claim.AppendAudit(ActorRep, ActionSubmitted, "")
	claim.AppendAudit(ActorManager, ActionApproved, "")

	if len(claim.Audit) != 3 {
		t.Fatalf("expected 3 audit entries, got %d", len(claim.Audit))
	}
	if claim.Audit[0] != first {
		t.Error("existing audit entries must not change")
	}
	if claim.Audit[1].Action != ActionSubmitted || claim.Audit[2].Action != ActionApproved {
		t.Error("audit entries out of order")
	}
	if claim.UpdatedAt.Before(claim.CreatedAt) {
		t.Error("UpdatedAt should advance with audit appends")
	}
}

func TestCloneIsDeep(t *testing.T) {
	claim := NewDraft(DraftPayload{
		VisitID:   "VIS-002",
		Attendees: []Attendee{{Name: "Dr. Jones", Role: "HCP"}},
		Receipt:   &ReceiptInfo{FileName: "r.pdf"},
	})
	claim.Policy = PolicyResult{Warnings: []string{"w"}, Blocks: []string{"b"}}

	clone := claim.Clone()
	clone.Attendees[0].Name = "changed"
	clone.Receipt.FileName = "changed.pdf"
	clone.Policy.Warnings[0] = "changed"
	clone.AppendAudit(ActorRep, ActionSubmitted, "")

	if claim.Attendees[0].Name != "Dr. Jones" {
		t.Error("clone shares attendee slice with original")
	}
	if claim.Receipt.FileName != "r.pdf" {
		t.Error("clone shares receipt pointer with original")
	}
	if claim.Policy.Warnings[0] != "w" {
		t.Error("clone shares policy warnings with original")
	}
	if len(claim.Audit) != 1 {
		t.Error("clone shares audit slice with original")
	}
}

func TestHasHCPAttendee(t *testing.T) {
	claim := &Claim{Attendees: []Attendee{{Name: "Sam", Role: "Colleague"}}}
	if claim.HasHCPAttendee() {
		t.Error("colleague-only list should not count as HCP")
	}
	claim.Attendees = append(claim.Attendees, Attendee{Name: "Dr. Walsh", Role: " hcp "})
	if !claim.HasHCPAttendee() {
		t.Error("trimmed case-insensitive hcp role should count")
	}
}
