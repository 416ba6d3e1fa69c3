package lake

import (
	"time"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

// BronzeReceipt is the receipt metadata document stored alongside the raw
// receipt blob. The blob itself is binary; this record points at it.
type BronzeReceipt struct {
	ClaimID  string `json:"claimId"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
	BlobPath string `json:"blobPath"`
}

// Derived carries the fields added during silver enrichment.
type Derived struct {
	HCPName           *string   `json:"hcpName"`
	ReceiptBlobPath   *string   `json:"receiptBlobPath"`
	PolicyEvaluatedAt time.Time `json:"policyEvaluatedAt"`
}

// SilverClaim is the enriched claim document: the full claim plus derived
// visit and receipt context.
type SilverClaim struct {
	domainClaims.Claim
	Derived Derived `json:"_derived"`
}

// GoldRow is the minimal current-state projection for dashboards and
// listings.
type GoldRow struct {
	ID        string                   `json:"id"`
	VisitID   string                   `json:"visitId"`
	HCPName   *string                  `json:"hcpName"`
	Status    domainClaims.ClaimStatus `json:"status"`
	Category  domainClaims.Category    `json:"category"`
	Merchant  string                   `json:"merchant"`
	Amount    float64                  `json:"amount"`
	Currency  domainClaims.Currency    `json:"currency"`
	UpdatedAt time.Time                `json:"updatedAt"`
	CreatedAt time.Time                `json:"createdAt"`
}

// BronzeClaim returns the raw claim projection. It is the claim as-is; the
// clone keeps the projection detached from live state.
func BronzeClaim(claim *domainClaims.Claim) *domainClaims.Claim {
	return claim.Clone()
}

// BronzeReceiptMeta returns the receipt metadata projection, or nil when
// the claim has no receipt.
func BronzeReceiptMeta(claim *domainClaims.Claim) *BronzeReceipt {
	if !claim.HasReceipt() {
		return nil
	}
	return &BronzeReceipt{
		ClaimID:  claim.ID,
		FileName: claim.Receipt.FileName,
		MimeType: claim.Receipt.MimeType,
		Size:     claim.Receipt.Size,
		BlobPath: BronzeReceiptPath(claim.ID, claim.Receipt.FileName),
	}
}

// SilverEnriched returns the enriched claim projection. A nil visit leaves
// the derived HCP name null rather than failing; the claim may reference a
// visit the caller could not resolve.
func SilverEnriched(claim *domainClaims.Claim, visit *domainClaims.Visit) *SilverClaim {
	derived := Derived{PolicyEvaluatedAt: claim.UpdatedAt}
	if visit != nil {
		name := visit.HCPName
		derived.HCPName = &name
	}
	if claim.HasReceipt() {
		path := BronzeReceiptPath(claim.ID, claim.Receipt.FileName)
		derived.ReceiptBlobPath = &path
	}
	return &SilverClaim{Claim: *claim.Clone(), Derived: derived}
}

// GoldCurrent returns the current-state projection for a claim.
func GoldCurrent(claim *domainClaims.Claim, visit *domainClaims.Visit) *GoldRow {
	row := &GoldRow{
		ID:        claim.ID,
		VisitID:   claim.VisitID,
		Status:    claim.Status,
		Category:  claim.Category,
		Merchant:  claim.Merchant,
		Amount:    claim.Amount,
		Currency:  claim.Currency,
		UpdatedAt: claim.UpdatedAt,
		CreatedAt: claim.CreatedAt,
	}
	if visit != nil {
		name := visit.HCPName
		row.HCPName = &name
	}
	return row
}
