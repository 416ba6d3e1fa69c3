// Package claims provides domain types for the expense claim system.
package claims

import (
	"fmt"
	"time"
)

// SeedClaims returns the deterministic demo claim set: eight claims across
// the six seed visits, covering every lifecycle status. Policy verdicts are
// left zeroed; callers re-evaluate against current settings.
func SeedClaims() []*Claim {
	visits := SeedVisits()
	base := time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

	statuses := []ClaimStatus{
		StatusDraft, StatusDraft, StatusSubmitted, StatusSubmitted,
		StatusInReview, StatusInReview, StatusApproved, StatusRejected,
	}
	categories := []Category{
		CategoryMeal, CategoryOther, CategoryTaxi, CategoryParking,
		CategoryMeal, CategoryHotel, CategoryMeal, CategoryOther,
	}
	merchants := []string{
		"The Keg", "Vendor", "Uber", "Green P",
		"Bistro", "Marriott", "Cafe", "Supplies Co",
	}

	claims := make([]*Claim, 0, len(statuses))
	for i, status := range statuses {
		visit := visits[i%len(visits)]
		created := base.Add(time.Duration(i) * time.Hour)
		updated := created.Add(2 * time.Hour)

		notes := ""
		if i%2 == 0 {
			notes = "Business meeting."
		}

		audit := []AuditEntry{{TS: created, Actor: ActorSystem, Action: ActionCreated, Detail: "Draft"}}
		if status != StatusDraft {
			audit = append(audit, AuditEntry{TS: updated, Actor: ActorRep, Action: ActionSubmitted})
		}
		switch status {
		case StatusInReview, StatusApproved, StatusRejected:
			audit = append(audit, AuditEntry{TS: updated, Actor: ActorManager, Action: ActionSentToReview})
		}
		if status == StatusApproved {
			audit = append(audit, AuditEntry{TS: updated, Actor: ActorManager, Action: ActionApproved})
		}
		if status == StatusRejected {
			audit = append(audit, AuditEntry{
				TS: updated, Actor: ActorManager, Action: ActionRejected,
				Detail: "Amount over policy limit",
			})
		}

		claims = append(claims, &Claim{
			ID:       fmt.Sprintf("EXP-%03d", i+1),
			VisitID:  visit.ID,
			RepName:  "Rep User",
			Category: categories[i],
			Merchant: merchants[i],
			Amount:   40 + float64(i)*8,
			Currency: CurrencyCAD,
			Attendees: []Attendee{
				{Name: visit.HCPName, Role: "HCP"},
			},
			Receipt: &ReceiptInfo{
				FileName: fmt.Sprintf("receipt-%d.pdf", i+1),
				MimeType: "application/pdf",
				Size:     int64(1024 + i*256),
			},
			Notes:     notes,
			Flags:     ClaimFlags{NoAlcohol: true, BusinessPurpose: true, PolicyConfirmed: true},
			Status:    status,
			Policy:    PolicyResult{Warnings: []string{}, Blocks: []string{}},
			Audit:     audit,
			CreatedAt: created,
			UpdatedAt: updated,
		})
	}

	return claims
}
