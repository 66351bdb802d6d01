package docs

import "strings"

// OwnerRef identifies the business record a document folder belongs to.
type OwnerRef string

func (o OwnerRef) String() string { return string(o) }

// ResolveOwnerRef returns the first non-blank candidate.
// The order of candidates is the priority order.
func ResolveOwnerRef(candidates ...string) (OwnerRef, bool) {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return OwnerRef(c), true
		}
	}
	return "", false
}

// OwnerCandidates holds the identifier sources a record page can provide.
type OwnerCandidates struct {
	RecordID          string
	OpportunityID     string
	LoanApplicationID string
}

// Resolve picks the owning record: record id, then opportunity, then loan application.
func (c OwnerCandidates) Resolve() (OwnerRef, bool) {
	return ResolveOwnerRef(c.RecordID, c.OpportunityID, c.LoanApplicationID)
}
