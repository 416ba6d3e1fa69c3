// Package claims provides domain types for the expense claim system.
package claims

// Visit is read-only reference data describing an HCP field visit. Claims
// hold a weak reference by id; visits are owned elsewhere.
type Visit struct {
	ID      string `json:"id"`
	HCPName string `json:"hcpName"`
}

// SeedVisits returns the deterministic demo visit set.
func SeedVisits() []Visit {
	return []Visit{
		{ID: "VIS-001", HCPName: "Dr. Smith"},
		{ID: "VIS-002", HCPName: "Dr. Jones"},
		{ID: "VIS-003", HCPName: "Dr. Chen"},
		{ID: "VIS-004", HCPName: "Dr. Patel"},
		{ID: "VIS-005", HCPName: "Dr. Walsh"},
		{ID: "VIS-006", HCPName: "Dr. Rivera"},
	}
}
