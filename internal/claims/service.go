package claims

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"denialdesk.org/internal/auth"
	"denialdesk.org/internal/ids"
	"denialdesk.org/internal/validate"
)

// maxImportErrors caps how many row messages an import report carries; the
// rest are reflected only in the skip count.
const maxImportErrors = 5

// CreateClaimInput carries raw form fields so every validator can run and
// report before anything is parsed or persisted.
type CreateClaimInput struct {
	ClaimNumber string `json:"claim_number"`
	PatientID   string `json:"patient_id"`
	ProviderID  string `json:"provider_id"`
	ServiceDate string `json:"service_date"`
	TotalAmount string `json:"total_amount"`
}

// DenyClaimInput carries raw denial form fields.
type DenyClaimInput struct {
	Code           string `json:"denial_code"`
	DenialDate     string `json:"denial_date"`
	AppealDeadline string `json:"appeal_deadline"`
}

// ClaimDetail is a claim with its denials and issues.
type ClaimDetail struct {
	Claim   *Claim    `json:"claim"`
	Denials []*Denial `json:"denials"`
	Issues  []*Issue  `json:"issues"`
}

// ImportResult reports a bulk upload outcome. Errors holds at most the first
// few row messages; skipped rows beyond that are only counted.
type ImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// Service implements claim operations with validation, analysis and
// per-owner authorization on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithClock overrides the time source, for tests.
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the claim service.
func NewService(store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("claims: store is required")
	}
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func validateClaimFields(in CreateClaimInput, now time.Time) validate.FieldErrors {
	var fieldErrs validate.FieldErrors
	if ok, msg := validate.ClaimNumber(in.ClaimNumber); !ok {
		fieldErrs = append(fieldErrs, msg)
	}
	if ok, msg := validate.PatientID(in.PatientID); !ok {
		fieldErrs = append(fieldErrs, msg)
	}
	if ok, msg := validate.ProviderID(in.ProviderID); !ok {
		fieldErrs = append(fieldErrs, msg)
	}
	if ok, msg := validate.ServiceDate(in.ServiceDate, now); !ok {
		fieldErrs = append(fieldErrs, msg)
	}
	if ok, msg := validate.Amount(in.TotalAmount); !ok {
		fieldErrs = append(fieldErrs, msg)
	}
	return fieldErrs
}

func (s *Service) buildClaim(in CreateClaimInput, ownerID string, now time.Time) (NewClaim, error) {
	serviceDate, err := ParseDate(in.ServiceDate)
	if err != nil {
		return NewClaim{}, fmt.Errorf("%w: service date: %v", ErrInvalidInput, err)
	}
	cents, err := validate.ParseCents(in.TotalAmount)
	if err != nil {
		return NewClaim{}, fmt.Errorf("%w: amount: %v", ErrInvalidInput, err)
	}
	claim := &Claim{
		ID:          ids.New(),
		ClaimNumber: strings.TrimSpace(in.ClaimNumber),
		PatientID:   strings.TrimSpace(in.PatientID),
		ProviderID:  strings.TrimSpace(in.ProviderID),
		ServiceDate: serviceDate,
		TotalAmount: Cents(cents),
		Status:      StatusPending,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	derived := Analyze(claim, now)
	issues := make([]*Issue, len(derived))
	for i := range derived {
		iss := derived[i]
		iss.ID = ids.New()
		iss.ClaimID = claim.ID
		iss.CreatedAt = now
		issues[i] = &iss
	}
	return NewClaim{Claim: claim, Issues: issues}, nil
}

// Create validates the form, persists the claim and the issues flagged by
// the analysis rules, and returns both.
func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateClaimInput) (*ClaimDetail, error) {
	now := s.now().UTC()
	if fieldErrs := validateClaimFields(in, now); len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	rec, err := s.buildClaim(in, actor.UserID, now)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateClaim(ctx, rec); err != nil {
		return nil, err
	}
	return &ClaimDetail{Claim: rec.Claim, Issues: rec.Issues}, nil
}

// Get loads a claim with its denials and issues. Non-admin principals may
// only read claims they own.
func (s *Service) Get(ctx context.Context, actor auth.Principal, id string) (*ClaimDetail, error) {
	claim, err := s.store.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && claim.OwnerID != actor.UserID {
		return nil, ErrAccessDenied
	}
	denials, err := s.store.ListDenials(ctx, claim.ID)
	if err != nil {
		return nil, err
	}
	issues, err := s.store.ListIssues(ctx, claim.ID)
	if err != nil {
		return nil, err
	}
	return &ClaimDetail{Claim: claim, Denials: denials, Issues: issues}, nil
}

// List returns claims newest first: all of them for admins, otherwise only
// the actor's own.
func (s *Service) List(ctx context.Context, actor auth.Principal) ([]*Claim, error) {
	ownerID := actor.UserID
	if actor.IsAdmin() {
		ownerID = ""
	}
	return s.store.ListClaims(ctx, ownerID)
}

// Deny records a denial against a claim and marks the claim denied. The
// endpoint requires the manager role; non-admin managers may only deny their
// own claims.
func (s *Service) Deny(ctx context.Context, actor auth.Principal, claimID string, in DenyClaimInput) (*Denial, error) {
	if !actor.Role.Covers(auth.RoleManager) {
		return nil, ErrAccessDenied
	}
	claim, err := s.store.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && claim.OwnerID != actor.UserID {
		return nil, ErrAccessDenied
	}

	var fieldErrs validate.FieldErrors
	code := strings.TrimSpace(in.Code)
	reason, known := DenialReason(code)
	if !known {
		fieldErrs = append(fieldErrs, "Denial code is not recognized")
	}
	denialDate, err := ParseDate(in.DenialDate)
	if err != nil {
		fieldErrs = append(fieldErrs, "Denial date must be a valid date in YYYY-MM-DD format")
	}
	var appealDeadline *Date
	if strings.TrimSpace(in.AppealDeadline) != "" {
		deadline, derr := ParseDate(in.AppealDeadline)
		switch {
		case derr != nil:
			fieldErrs = append(fieldErrs, "Appeal deadline must be a valid date in YYYY-MM-DD format")
		case err == nil && !deadline.After(denialDate.Time):
			fieldErrs = append(fieldErrs, "Appeal deadline must be after the denial date")
		default:
			appealDeadline = &deadline
		}
	}
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	now := s.now().UTC()
	denial := &Denial{
		ID:             ids.New(),
		ClaimID:        claim.ID,
		Code:           code,
		Reason:         reason,
		DenialDate:     denialDate,
		AppealDeadline: appealDeadline,
		AppealStatus:   AppealPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateDenial(ctx, denial); err != nil {
		return nil, err
	}
	return denial, nil
}

// Import ingests an uploaded CSV. Structural problems abort the batch; rows
// failing validation or duplicating an existing claim number are skipped and
// counted. Surviving rows commit in one transaction.
func (s *Service) Import(ctx context.Context, actor auth.Principal, r io.Reader) (ImportResult, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	now := s.now().UTC()
	seen := make(map[string]struct{}, len(rows))
	batch := make([]NewClaim, 0, len(rows))

	skip := func(line int, detail string) {
		result.Skipped++
		if len(result.Errors) < maxImportErrors {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", line, detail))
		}
	}

	for _, row := range rows {
		in := CreateClaimInput{
			ClaimNumber: row.ClaimNumber,
			PatientID:   row.PatientID,
			ProviderID:  row.ProviderID,
			ServiceDate: row.ServiceDate,
			TotalAmount: row.TotalAmount,
		}
		if fieldErrs := validateClaimFields(in, now); len(fieldErrs) > 0 {
			skip(row.Line, fieldErrs.Error())
			continue
		}
		if _, dup := seen[row.ClaimNumber]; dup {
			skip(row.Line, "duplicate claim number in file")
			continue
		}
		exists, err := s.store.ClaimNumberExists(ctx, row.ClaimNumber)
		if err != nil {
			return ImportResult{}, err
		}
		if exists {
			skip(row.Line, "claim number already exists")
			continue
		}
		rec, err := s.buildClaim(in, actor.UserID, now)
		if err != nil {
			skip(row.Line, err.Error())
			continue
		}
		seen[row.ClaimNumber] = struct{}{}
		batch = append(batch, rec)
	}

	if len(batch) > 0 {
		if err := s.store.CreateClaims(ctx, batch); err != nil {
			return ImportResult{}, err
		}
	}
	result.Created = len(batch)
	return result, nil
}
