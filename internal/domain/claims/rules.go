// Package claims provides domain types for the expense claim system.
package claims

// validTransitions defines valid status transitions. Submitted has edges
// back to Draft (pipeline found blocks after an interleaving edit) and
// forward to In Review / Approved (pipeline routing). Rejected loops back
// to Draft on resubmit; Approved is terminal.
var validTransitions = map[ClaimStatus][]ClaimStatus{
	StatusDraft: {
		StatusSubmitted,
		StatusInReview, // submit with requiresReview auto-routes
	},
	StatusSubmitted: {
		StatusInReview,
		StatusApproved,
		StatusDraft,
	},
	StatusInReview: {
		StatusApproved,
		StatusRejected,
	},
	StatusRejected: {
		StatusDraft,
	},
	StatusApproved: {},
}

// CanTransition checks if a status transition is valid.
func CanTransition(from, to ClaimStatus) bool {
	validTargets, ok := validTransitions[from]
	if !ok {
		return false
	}

	for _, valid := range validTargets {
		if valid == to {
			return true
		}
	}
	return false
}

// ValidTransitions returns valid target statuses from the current status.
func ValidTransitions(from ClaimStatus) []ClaimStatus {
	return validTransitions[from]
}
