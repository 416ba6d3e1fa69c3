// Package lake projects claims into bronze, silver and gold lake zones.
package lake

import "fmt"

// Lake path layout. Bronze holds raw captures, silver holds enriched
// records, gold holds one current-state document per claim.

// BronzeClaimPath returns the raw claim document path.
func BronzeClaimPath(claimID string) string {
	return fmt.Sprintf("raw/claims/%s/claim.json", claimID)
}

// BronzeReceiptPath returns the raw receipt blob path.
func BronzeReceiptPath(claimID, fileName string) string {
	return fmt.Sprintf("raw/receipts/%s/%s", claimID, fileName)
}

// SilverPath returns the enriched claim document path.
func SilverPath(claimID string) string {
	return fmt.Sprintf("silver/claims/%s/claim_enriched.json", claimID)
}

// GoldPath returns the current-state document path.
func GoldPath(claimID string) string {
	return fmt.Sprintf("gold/claims_current/%s.json", claimID)
}
