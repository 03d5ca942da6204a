package claims

import (
	"fmt"
	"time"
)

// Issue types emitted by the analysis rules.
const (
	IssueMissingCode   = "missing_code"
	IssueInvalidAmount = "invalid_amount"
	IssueHighAmount    = "high_amount"
	IssueFutureDate    = "future_date"
	IssueOldClaim      = "old_claim"
)

const (
	highAmountThreshold Cents = 50_000_00
	staleClaimAge             = 365 * 24 * time.Hour
	minClaimNumberLen         = 3
)

// Analyze runs the fixed, ordered heuristic checks against a claim snapshot
// and returns the issues they flag. It is a pure function of its inputs;
// claim creation succeeds regardless of what it finds.
func Analyze(c *Claim, now time.Time) []Issue {
	var issues []Issue
	add := func(issueType, description, severity string) {
		issues = append(issues, Issue{
			Type:        issueType,
			Description: description,
			Severity:    severity,
			Status:      IssueOpen,
		})
	}

	if len(c.ClaimNumber) < minClaimNumberLen {
		add(IssueMissingCode, "Claim number is missing or too short", SeverityHigh)
	}
	if c.TotalAmount <= 0 {
		add(IssueInvalidAmount, "Claim amount is zero or negative", SeverityHigh)
	}
	if c.TotalAmount > highAmountThreshold {
		add(IssueHighAmount,
			fmt.Sprintf("Claim amount %s exceeds the high-amount threshold", c.TotalAmount),
			SeverityMedium)
	}
	if c.ServiceDate.After(now) {
		add(IssueFutureDate, "Service date is in the future", SeverityHigh)
	} else if now.Sub(c.ServiceDate.Time) > staleClaimAge {
		add(IssueOldClaim, "Service date is more than one year old", SeverityMedium)
	}
	return issues
}
