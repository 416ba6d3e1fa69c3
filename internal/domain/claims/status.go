// Package claims provides domain types for the expense claim system.
package claims

// ClaimStatus represents the lifecycle status of a claim.
type ClaimStatus string

const (
	StatusDraft     ClaimStatus = "Draft"
	StatusSubmitted ClaimStatus = "Submitted"
	StatusInReview  ClaimStatus = "In Review"
	StatusApproved  ClaimStatus = "Approved"
	StatusRejected  ClaimStatus = "Rejected"
)

// IsTerminal returns true if the status is terminal (no more transitions).
func (s ClaimStatus) IsTerminal() bool {
	return s == StatusApproved
}

// IsEditable returns true if claim fields may still be changed.
func (s ClaimStatus) IsEditable() bool {
	return s == StatusDraft
}

// Category represents the expense category of a claim.
type Category string

const (
	CategoryMeal    Category = "Meal"
	CategoryTaxi    Category = "Taxi/Rideshare"
	CategoryParking Category = "Parking"
	CategoryHotel   Category = "Hotel"
	CategoryOther   Category = "Other"
)

// Currency represents a supported currency code.
type Currency string

const (
	CurrencyCAD Currency = "CAD"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// Audit actors.
const (
	ActorSystem  = "system"
	ActorRep     = "rep"
	ActorManager = "manager"
)

// Audit actions. The pipeline actions keep their historical casing so the
// audit trail reads the same as the serverless enricher it simulates.
const (
	ActionCreated        = "created"
	ActionSubmitted      = "submitted"
	ActionSentToReview   = "sent_to_review"
	ActionApproved       = "approved"
	ActionRejected       = "rejected"
	ActionResubmit       = "resubmit"
	ActionBlobCreated    = "BlobCreated"
	ActionPolicyEnriched = "PolicyEnriched"
	ActionPipelineBlock  = "PipelineBlocked"
	ActionRoutedToReview = "RoutedToReview"
	ActionAutoApproved   = "AutoApproved"
)

// IsValidStatus checks if a claim status value is valid.
func IsValidStatus(s ClaimStatus) bool {
	return s == StatusDraft || s == StatusSubmitted || s == StatusInReview ||
		s == StatusApproved || s == StatusRejected
}

// IsValidCategory checks if a category value is valid.
func IsValidCategory(c Category) bool {
	return c == CategoryMeal || c == CategoryTaxi || c == CategoryParking ||
		c == CategoryHotel || c == CategoryOther
}

// IsValidCurrency checks if a currency code is valid.
func IsValidCurrency(c Currency) bool {
	return c == CurrencyCAD || c == CurrencyUSD || c == CurrencyEUR || c == CurrencyGBP
}
