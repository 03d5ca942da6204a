package claims

import (
	"strings"
	"time"

	"denialdesk.org/internal/validate"
)

// Claim lifecycle states.
const (
	StatusPending  = "pending"
	StatusDenied   = "denied"
	StatusApproved = "approved"
)

// Appeal lifecycle states on a denial.
const (
	AppealPending   = "pending"
	AppealSubmitted = "submitted"
	AppealApproved  = "approved"
	AppealDenied    = "denied"
)

// Issue severities.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Issue workflow states.
const (
	IssueOpen       = "open"
	IssueInProgress = "in_progress"
	IssueResolved   = "resolved"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without time-of-day, serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// DateOf truncates a timestamp to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Cents is a monetary amount in integer cents, serialized as a decimal number.
type Cents int64

func (c Cents) String() string {
	return validate.FormatCents(int64(c))
}

func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(validate.FormatCents(int64(c))), nil
}

func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	cents, err := validate.ParseCents(s)
	if err != nil {
		return err
	}
	*c = Cents(cents)
	return nil
}

// Claim is a billing record submitted for a medical service.
type Claim struct {
	ID          string    `json:"id"`
	ClaimNumber string    `json:"claim_number"`
	PatientID   string    `json:"patient_id"`
	ProviderID  string    `json:"provider_id"`
	ServiceDate Date      `json:"service_date"`
	TotalAmount Cents     `json:"total_amount"`
	Status      string    `json:"status"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Denial is a payer's refusal to pay a claim.
type Denial struct {
	ID             string    `json:"id"`
	ClaimID        string    `json:"claim_id"`
	Code           string    `json:"denial_code"`
	Reason         string    `json:"denial_reason"`
	DenialDate     Date      `json:"denial_date"`
	AppealDeadline *Date     `json:"appeal_deadline,omitempty"`
	AppealStatus   string    `json:"appeal_status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Issue is a system-detected data-quality or risk flag attached to a claim.
// Issues are derived at claim creation and append-only.
type Issue struct {
	ID          string    `json:"id"`
	ClaimID     string    `json:"claim_id"`
	Type        string    `json:"issue_type"`
	Description string    `json:"description"`
	Severity    string    `json:"severity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
