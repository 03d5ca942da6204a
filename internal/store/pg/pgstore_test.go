package pg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"denialdesk.org/internal/auth"
	"denialdesk.org/internal/claims"
)

var storeNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

func TestCreateUser(t *testing.T) {
	store, mock := newMockStore(t)

	u := &auth.User{
		ID:           "u1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         auth.RoleUser,
		Active:       true,
		CreatedAt:    storeNow,
		UpdatedAt:    storeNow,
	}
	mock.ExpectExec("insert into users").
		WithArgs("u1", "alice", "alice@example.com", "$2a$10$hash", "user", true, storeNow, storeNow).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("insert into users").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	err := store.Create(context.Background(), &auth.User{ID: "u1", Role: auth.RoleUser})
	if !errors.Is(err, auth.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestFindByUsername(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "active", "last_login", "created_at", "updated_at"}).
		AddRow("u1", "alice", "alice@example.com", "$2a$10$hash", "manager", true, nil, storeNow, storeNow)
	mock.ExpectQuery("select (.+) from users where lower\\(username\\)").
		WithArgs("alice").
		WillReturnRows(rows)

	u, err := store.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if u.Role != auth.RoleManager {
		t.Fatalf("role=%s, want manager", u.Role)
	}
	if u.LastLogin != nil {
		t.Fatalf("expected nil last_login, got %v", u.LastLogin)
	}
}

func TestFindUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select (.+) from users where id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.Find(context.Background(), "missing")
	if !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetActiveNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update users set active").
		WithArgs("missing", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.SetActive(context.Background(), "missing", false); !errors.Is(err, auth.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testNewClaim() claims.NewClaim {
	serviceDate, _ := claims.ParseDate("2024-06-01")
	c := &claims.Claim{
		ID:          "c1",
		ClaimNumber: "CLM-001",
		PatientID:   "PAT001",
		ProviderID:  "PRV001",
		ServiceDate: serviceDate,
		TotalAmount: 1250_50,
		Status:      claims.StatusPending,
		OwnerID:     "u1",
		CreatedAt:   storeNow,
		UpdatedAt:   storeNow,
	}
	return claims.NewClaim{
		Claim: c,
		Issues: []*claims.Issue{{
			ID:          "i1",
			ClaimID:     "c1",
			Type:        claims.IssueHighAmount,
			Description: "Claim amount exceeds review threshold",
			Severity:    claims.SeverityMedium,
			Status:      claims.IssueOpen,
			CreatedAt:   storeNow,
		}},
	}
}

func TestCreateClaimWithIssues(t *testing.T) {
	store, mock := newMockStore(t)
	rec := testNewClaim()

	mock.ExpectBegin()
	mock.ExpectExec("insert into claims").
		WithArgs("c1", "CLM-001", "PAT001", "PRV001", sqlmock.AnyArg(), int64(1250_50), claims.StatusPending, "u1", storeNow, storeNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into claim_issues").
		WithArgs("i1", "c1", claims.IssueHighAmount, sqlmock.AnyArg(), claims.SeverityMedium, claims.IssueOpen, storeNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := store.CreateClaim(context.Background(), rec); err != nil {
		t.Fatalf("CreateClaim: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateClaimDuplicateRollsBack(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("insert into claims").
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	mock.ExpectRollback()

	err := store.CreateClaim(context.Background(), testNewClaim())
	if !errors.Is(err, claims.ErrDuplicateClaim) {
		t.Fatalf("expected ErrDuplicateClaim, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateClaimsBatchSingleTx(t *testing.T) {
	store, mock := newMockStore(t)
	first := testNewClaim()
	second := testNewClaim()
	second.Claim.ID = "c2"
	second.Claim.ClaimNumber = "CLM-002"
	second.Issues = nil

	mock.ExpectBegin()
	mock.ExpectExec("insert into claims").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into claim_issues").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("insert into claims").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := store.CreateClaims(context.Background(), []claims.NewClaim{first, second}); err != nil {
		t.Fatalf("CreateClaims: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateDenialMarksClaimDenied(t *testing.T) {
	store, mock := newMockStore(t)
	denialDate, _ := claims.ParseDate("2024-06-10")

	mock.ExpectBegin()
	mock.ExpectExec("insert into denials").
		WithArgs("d1", "c1", "CO-16", sqlmock.AnyArg(), sqlmock.AnyArg(), nil, claims.AppealPending, storeNow, storeNow).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("update claims set status").
		WithArgs("c1", claims.StatusDenied).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	d := &claims.Denial{
		ID:           "d1",
		ClaimID:      "c1",
		Code:         "CO-16",
		Reason:       "Claim/service lacks information or has submission/billing error(s)",
		DenialDate:   denialDate,
		AppealStatus: claims.AppealPending,
		CreatedAt:    storeNow,
		UpdatedAt:    storeNow,
	}
	if err := store.CreateDenial(context.Background(), d); err != nil {
		t.Fatalf("CreateDenial: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestClaimNumberExists(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select exists").
		WithArgs("CLM-001").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.ClaimNumberExists(context.Background(), "CLM-001")
	if err != nil {
		t.Fatalf("ClaimNumberExists: %v", err)
	}
	if !exists {
		t.Fatal("expected exists=true")
	}
}

func TestListClaimsScopedByOwner(t *testing.T) {
	store, mock := newMockStore(t)

	cols := []string{"id", "claim_number", "patient_id", "provider_id", "service_date", "total_amount", "status", "owner_id", "created_at", "updated_at"}
	mock.ExpectQuery("select (.+) from claims where owner_id").
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("c1", "CLM-001", "PAT001", "PRV001", storeNow, int64(1250_50), claims.StatusPending, "u1", storeNow, storeNow))

	result, err := store.ListClaims(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListClaims: %v", err)
	}
	if len(result) != 1 || result[0].TotalAmount != 1250_50 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
