// Package claims provides domain types for the expense claim system.
package claims

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Attendee is a person present during the expensed activity.
type Attendee struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// IsHCP returns true if the attendee is a named healthcare professional.
// Role matching is case-insensitive; an HCP without a name does not count.
func (a Attendee) IsHCP() bool {
	return strings.EqualFold(strings.TrimSpace(a.Role), "hcp") &&
		strings.TrimSpace(a.Name) != ""
}

// ReceiptInfo holds receipt metadata. Only presence matters to policy;
// receipt content lives in blob storage.
type ReceiptInfo struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	BlobPath string `json:"blobPath,omitempty"`
}

// ClaimFlags are the compliance confirmations captured at submission time.
// NoAlcohol is captured but not referenced by any policy rule.
type ClaimFlags struct {
	NoAlcohol       bool `json:"noAlcohol"`
	BusinessPurpose bool `json:"businessPurpose"`
	PolicyConfirmed bool `json:"policyConfirmed"`
}

// PolicyResult is the output of policy evaluation for a claim.
type PolicyResult struct {
	Warnings       []string `json:"warnings"`
	Blocks         []string `json:"blocks"`
	RequiresReview bool     `json:"requiresReview"`
}

// Blocked returns true if the claim cannot be submitted.
func (r PolicyResult) Blocked() bool {
	return len(r.Blocks) > 0
}

// AuditEntry is one immutable entry in a claim's audit trail.
type AuditEntry struct {
	TS     time.Time `json:"ts"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Detail string    `json:"detail,omitempty"`
}

// NewAuditEntry creates an audit entry stamped with the current time.
func NewAuditEntry(actor, action, detail string) AuditEntry {
	return AuditEntry{TS: time.Now(), Actor: actor, Action: action, Detail: detail}
}

// Claim represents an expense reimbursement request tied to a field visit.
type Claim struct {
	ID        string       `json:"id"`
	VisitID   string       `json:"visitId"`
	RepName   string       `json:"repName"`
	Category  Category     `json:"category"`
	Merchant  string       `json:"merchant"`
	Amount    float64      `json:"amount"`
	Currency  Currency     `json:"currency"`
	Attendees []Attendee   `json:"attendees"`
	Receipt   *ReceiptInfo `json:"receipt,omitempty"`
	Notes     string       `json:"notes"`
	Flags     ClaimFlags   `json:"flags"`
	Status    ClaimStatus  `json:"status"`
	Policy    PolicyResult `json:"policy"`
	Audit     []AuditEntry `json:"auditTrail"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// DraftPayload carries the caller-supplied fields for a new draft.
// ID, timestamps, status, policy and audit trail are engine-assigned.
type DraftPayload struct {
	VisitID   string       `json:"visitId"`
	RepName   string       `json:"repName"`
	Category  Category     `json:"category"`
	Merchant  string       `json:"merchant"`
	Amount    float64      `json:"amount"`
	Currency  Currency     `json:"currency"`
	Attendees []Attendee   `json:"attendees"`
	Receipt   *ReceiptInfo `json:"receipt,omitempty"`
	Notes     string       `json:"notes"`
	Flags     ClaimFlags   `json:"flags"`
}

// NewClaimID returns a fresh claim identifier.
func NewClaimID() string {
	return "EXP-" + uuid.New().String()
}

// NewDraft creates a new claim in Draft status from a payload. The initial
// policy result is evaluated by the caller; the audit trail opens with a
// single system "created" entry.
func NewDraft(payload DraftPayload) *Claim {
	now := time.Now()
	return &Claim{
		ID:        NewClaimID(),
		VisitID:   payload.VisitID,
		RepName:   payload.RepName,
		Category:  payload.Category,
		Merchant:  payload.Merchant,
		Amount:    payload.Amount,
		Currency:  payload.Currency,
		Attendees: append([]Attendee(nil), payload.Attendees...),
		Receipt:   payload.Receipt,
		Notes:     payload.Notes,
		Flags:     payload.Flags,
		Status:    StatusDraft,
		Policy:    PolicyResult{Warnings: []string{}, Blocks: []string{}},
		Audit:     []AuditEntry{NewAuditEntry(ActorSystem, ActionCreated, "Draft")},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendAudit appends one entry to the audit trail and bumps UpdatedAt.
// Existing entries are never mutated or reordered.
func (c *Claim) AppendAudit(actor, action, detail string) {
	c.Audit = append(c.Audit, NewAuditEntry(actor, action, detail))
	c.UpdatedAt = time.Now()
}

// SetStatus changes the claim status and bumps UpdatedAt. Transition
// validity is checked by callers via CanTransition.
func (c *Claim) SetStatus(status ClaimStatus) {
	c.Status = status
	c.UpdatedAt = time.Now()
}

// HasReceipt returns true if a receipt with a filename is attached.
func (c *Claim) HasReceipt() bool {
	return c.Receipt != nil && c.Receipt.FileName != ""
}

// HasHCPAttendee returns true if at least one named HCP attendee is present.
func (c *Claim) HasHCPAttendee() bool {
	for _, a := range c.Attendees {
		if a.IsHCP() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the claim. Repositories hand out clones so
// callers cannot mutate stored state through shared slices.
func (c *Claim) Clone() *Claim {
	clone := *c
	clone.Attendees = append([]Attendee(nil), c.Attendees...)
	clone.Audit = append([]AuditEntry(nil), c.Audit...)
	clone.Policy.Warnings = append([]string(nil), c.Policy.Warnings...)
	clone.Policy.Blocks = append([]string(nil), c.Policy.Blocks...)
	if c.Receipt != nil {
		receipt := *c.Receipt
		clone.Receipt = &receipt
	}
	return &clone
}
