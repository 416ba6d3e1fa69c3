// Package claims provides domain types for the expense claim system.
package claims

import (
	"fmt"
	"strings"
)

// DefaultMealLimitPerPersonCAD is the per-person meal limit applied when no
// configured limit is supplied.
const DefaultMealLimitPerPersonCAD = 60.0

// PolicyOptions carries tunable policy configuration. The zero value uses
// defaults, so Evaluate never depends on ambient global state.
type PolicyOptions struct {
	MealLimitPerPersonCAD float64
}

func (o PolicyOptions) mealLimit() float64 {
	if o.MealLimitPerPersonCAD > 0 {
		return o.MealLimitPerPersonCAD
	}
	return DefaultMealLimitPerPersonCAD
}

// Evaluate runs all policy rules against a claim and returns the verdict.
// It is pure and deterministic, accepts partially filled drafts, and
// accumulates results in rule order rather than short-circuiting.
//
// Blocking rules: receipt attached, business purpose confirmed, policy
// compliance confirmed, at least one named HCP attendee. Review rules:
// category Other always routes to review; Meal claims in CAD route to
// review when the per-person amount exceeds the configured limit. The
// meal limit is CAD-denominated and intentionally not applied to other
// currencies.
func Evaluate(c *Claim, opts PolicyOptions) PolicyResult {
	result := PolicyResult{Warnings: []string{}, Blocks: []string{}}
	mealLimit := opts.mealLimit()

	if !c.HasReceipt() {
		result.Blocks = append(result.Blocks, "Receipt is required.")
	}

	if !c.Flags.BusinessPurpose {
		result.Blocks = append(result.Blocks, "Business purpose must be confirmed.")
	}

	if !c.Flags.PolicyConfirmed {
		result.Blocks = append(result.Blocks, "Policy compliance must be confirmed.")
	}

	if !c.HasHCPAttendee() {
		result.Blocks = append(result.Blocks, "At least one HCP attendee is required.")
	}

	if c.Category == CategoryOther {
		result.RequiresReview = true
		result.Warnings = append(result.Warnings, "Category 'Other' requires manager review.")
	}

	// An unset currency defaults to CAD, matching capture-form behavior.
	currency := Currency(strings.ToUpper(string(c.Currency)))
	if currency == "" {
		currency = CurrencyCAD
	}

	count := len(c.Attendees)
	if count < 1 {
		count = 1
	}
	if c.Category == CategoryMeal && currency == CurrencyCAD {
		perPerson := c.Amount / float64(count)
		if perPerson > mealLimit {
			result.RequiresReview = true
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"Meal exceeds CAD %g per person (%d attendee(s)); requires review.",
				mealLimit, count))
		}
	}

	return result
}
