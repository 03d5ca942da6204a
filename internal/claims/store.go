package claims

import "context"

// NewClaim bundles a claim with the issues derived from it so both can be
// persisted in one transaction.
type NewClaim struct {
	Claim  *Claim
	Issues []*Issue
}

// Store describes persistence for claims, denials and issues.
type Store interface {
	// CreateClaim persists a claim and its derived issues atomically.
	// ErrDuplicateClaim signals a claim_number collision.
	CreateClaim(ctx context.Context, rec NewClaim) error
	// CreateClaims persists a validated batch in a single transaction;
	// either every record commits or none do.
	CreateClaims(ctx context.Context, recs []NewClaim) error
	GetClaim(ctx context.Context, id string) (*Claim, error)
	// ListClaims returns claims newest first. An empty ownerID lists all.
	ListClaims(ctx context.Context, ownerID string) ([]*Claim, error)
	ClaimNumberExists(ctx context.Context, claimNumber string) (bool, error)
	// CreateDenial persists the denial and marks its claim denied in the
	// same transaction.
	CreateDenial(ctx context.Context, d *Denial) error
	ListDenials(ctx context.Context, claimID string) ([]*Denial, error)
	ListIssues(ctx context.Context, claimID string) ([]*Issue, error)
}
