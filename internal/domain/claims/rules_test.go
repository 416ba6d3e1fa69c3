package claims

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from  ClaimStatus
		to    ClaimStatus
		valid bool
	}{
		{StatusDraft, StatusSubmitted, true},
		{StatusDraft, StatusInReview, true},
		{StatusDraft, StatusApproved, false},
		{StatusDraft, StatusRejected, false},
		{StatusSubmitted, StatusInReview, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusDraft, true},
		{StatusSubmitted, StatusRejected, false},
		{StatusInReview, StatusApproved, true},
		{StatusInReview, StatusRejected, true},
		{StatusInReview, StatusDraft, false},
		{StatusRejected, StatusDraft, true},
		{StatusRejected, StatusInReview, false},
		{StatusApproved, StatusDraft, false},
		{StatusApproved, StatusInReview, false},
		{StatusApproved, StatusRejected, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.valid {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestApprovedIsTerminal(t *testing.T) {
	if !StatusApproved.IsTerminal() {
		t.Error("Approved should be terminal")
	}
	if len(ValidTransitions(StatusApproved)) != 0 {
		t.Errorf("Approved should have no outgoing transitions, got %v",
			ValidTransitions(StatusApproved))
	}
	for _, s := range []ClaimStatus{StatusDraft, StatusSubmitted, StatusInReview, StatusRejected} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("Archived", StatusDraft) {
		t.Error("unknown source status should not allow transitions")
	}
}

func TestOnlyDraftIsEditable(t *testing.T) {
	if !StatusDraft.IsEditable() {
		t.Error("Draft should be editable")
	}
	for _, s := range []ClaimStatus{StatusSubmitted, StatusInReview, StatusApproved, StatusRejected} {
		if s.IsEditable() {
			t.Errorf("%s should not be editable", s)
		}
	}
}
