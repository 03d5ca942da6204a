package pg

import (
	"context"
	"database/sql"
	"errors"

	"denialdesk.org/internal/claims"
)

var _ claims.Store = (*Store)(nil)

const claimColumns = `id, claim_number, patient_id, provider_id, service_date, total_amount, status, owner_id, created_at, updated_at`

func scanClaim(row interface{ Scan(...any) error }) (*claims.Claim, error) {
	var c claims.Claim
	if err := row.Scan(&c.ID, &c.ClaimNumber, &c.PatientID, &c.ProviderID, &c.ServiceDate.Time, &c.TotalAmount, &c.Status, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func insertClaim(ctx context.Context, tx *sql.Tx, rec claims.NewClaim) error {
	c := rec.Claim
	if _, err := tx.ExecContext(ctx, `
		insert into claims (id, claim_number, patient_id, provider_id, service_date, total_amount, status, owner_id, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, c.ID, c.ClaimNumber, c.PatientID, c.ProviderID, c.ServiceDate.Time, c.TotalAmount, c.Status, c.OwnerID, c.CreatedAt, c.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return claims.ErrDuplicateClaim
		}
		return err
	}
	for _, iss := range rec.Issues {
		if _, err := tx.ExecContext(ctx, `
			insert into claim_issues (id, claim_id, issue_type, description, severity, status, created_at)
			values ($1, $2, $3, $4, $5, $6, $7)
		`, iss.ID, iss.ClaimID, iss.Type, iss.Description, iss.Severity, iss.Status, iss.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateClaim(ctx context.Context, rec claims.NewClaim) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertClaim(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) CreateClaims(ctx context.Context, recs []claims.NewClaim) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, rec := range recs {
		if err := insertClaim(ctx, tx, rec); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetClaim(ctx context.Context, id string) (*claims.Claim, error) {
	row := s.db.QueryRowContext(ctx, `select `+claimColumns+` from claims where id = $1`, id)
	c, err := scanClaim(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, claims.ErrNotFound
	}
	return c, err
}

func (s *Store) ListClaims(ctx context.Context, ownerID string) ([]*claims.Claim, error) {
	query := `select ` + claimColumns + ` from claims order by created_at desc, id desc`
	args := []any{}
	if ownerID != "" {
		query = `select ` + claimColumns + ` from claims where owner_id = $1 order by created_at desc, id desc`
		args = append(args, ownerID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*claims.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ClaimNumberExists(ctx context.Context, claimNumber string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from claims where claim_number = $1)
	`, claimNumber).Scan(&exists)
	return exists, err
}

func (s *Store) CreateDenial(ctx context.Context, d *claims.Denial) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var deadline any
	if d.AppealDeadline != nil {
		deadline = d.AppealDeadline.Time
	}
	if _, err := tx.ExecContext(ctx, `
		insert into denials (id, claim_id, denial_code, denial_reason, denial_date, appeal_deadline, appeal_status, created_at, updated_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.ID, d.ClaimID, d.Code, d.Reason, d.DenialDate.Time, deadline, d.AppealStatus, d.CreatedAt, d.UpdatedAt); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		update claims set status = $2, updated_at = now() where id = $1
	`, d.ClaimID, claims.StatusDenied)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return claims.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) ListDenials(ctx context.Context, claimID string) ([]*claims.Denial, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, claim_id, denial_code, denial_reason, denial_date, appeal_deadline, appeal_status, created_at, updated_at
		from denials where claim_id = $1 order by created_at desc, id desc
	`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*claims.Denial
	for rows.Next() {
		var (
			d        claims.Denial
			deadline sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.ClaimID, &d.Code, &d.Reason, &d.DenialDate.Time, &deadline, &d.AppealStatus, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if deadline.Valid {
			d.AppealDeadline = &claims.Date{Time: deadline.Time}
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) ListIssues(ctx context.Context, claimID string) ([]*claims.Issue, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, claim_id, issue_type, description, severity, status, created_at
		from claim_issues where claim_id = $1 order by created_at asc, id asc
	`, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*claims.Issue
	for rows.Next() {
		var iss claims.Issue
		if err := rows.Scan(&iss.ID, &iss.ClaimID, &iss.Type, &iss.Description, &iss.Severity, &iss.Status, &iss.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &iss)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
