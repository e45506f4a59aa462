package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"lg/adaptive-tdee-go-api/expenditure"
)

func ptr[T any](v T) *T { return &v }

// TestDateOnly_JSON verifies the YYYY-MM-DD wire format both ways.
func TestDateOnly_JSON(t *testing.T) {
	d := DateOnly{time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2026-03-07"` {
		t.Errorf("marshal = %s", b)
	}

	var back DateOnly
	if err := json.Unmarshal([]byte(`"2026-03-07"`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Format(DateLayout) != "2026-03-07" {
		t.Errorf("unmarshal = %v", back)
	}
	if err := json.Unmarshal([]byte(`"07/03/2026"`), &back); err == nil {
		t.Error("expected an error for a non-ISO date")
	}
}

// TestDateOnly_ScanNull verifies NULL dates scan to the zero time.
func TestDateOnly_ScanNull(t *testing.T) {
	d := DateOnly{time.Now()}
	if err := d.ScanDate(pgtype.Date{}); err != nil {
		t.Fatal(err)
	}
	if !d.IsZero() {
		t.Errorf("date = %v, want zero", d.Time)
	}
}

// TestGoalSettings_Profile verifies the row-to-profile conversion.
func TestGoalSettings_Profile(t *testing.T) {
	today := time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC)
	s := GoalSettings{
		UserID:         4,
		GoalType:       "lose",
		WeeklyRateKG:   0.5,
		ActivityLevel:  ptr("moderate"),
		Sex:            ptr("female"),
		DateOfBirth:    &DateOnly{time.Date(1991, 6, 1, 0, 0, 0, 0, time.UTC)},
		HeightCM:       ptr(168.0),
		TargetWeightKG: ptr(62.0),
	}

	p := s.Profile(today)
	if p.GoalType != expenditure.GoalLose || p.WeeklyRateKG != 0.5 {
		t.Errorf("goal = %s %v", p.GoalType, p.WeeklyRateKG)
	}
	if p.AgeYears == nil || *p.AgeYears != 34 {
		t.Errorf("age = %v, want 34", p.AgeYears)
	}
	if p.TargetWeightKG == nil || *p.TargetWeightKG != 62 {
		t.Errorf("target = %v", p.TargetWeightKG)
	}

	t.Run("future birth date leaves age unset", func(t *testing.T) {
		s.DateOfBirth = &DateOnly{today.AddDate(1, 0, 0)}
		if p := s.Profile(today); p.AgeYears != nil {
			t.Errorf("age = %d, want nil", *p.AgeYears)
		}
	})
	t.Run("no birth date", func(t *testing.T) {
		s.DateOfBirth = nil
		if p := s.Profile(today); p.AgeYears != nil {
			t.Errorf("age = %d, want nil", *p.AgeYears)
		}
	})
}

// TestIsUniqueViolation verifies only SQLSTATE 23505 counts, wrapped or not.
func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped unique", fmt.Errorf("update weight entry: %w", &pgconn.PgError{Code: "23505"}), true},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Errorf("%s: IsUniqueViolation = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// stubDB fails every statement with err and counts calls.
type stubDB struct {
	err   error
	calls int
}

func (s *stubDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	s.calls++
	return nil, s.err
}

func (s *stubDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	s.calls++
	return pgconn.CommandTag{}, s.err
}

// TestAuthenticate_Failures verifies an unknown user reads as bad
// credentials while a broken lookup stays a distinct error.
func TestAuthenticate_Failures(t *testing.T) {
	_, err := Authenticate(context.Background(), &stubDB{err: pgx.ErrNoRows}, "lyle", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}

	down := errors.New("connection reset")
	_, err = Authenticate(context.Background(), &stubDB{err: down}, "lyle", "pw")
	if !errors.Is(err, down) || errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("lookup failure: err = %v, want wrapped connection error", err)
	}
}

// TestUserIDByToken_Unknown verifies ErrNoRows comes back unwrapped.
func TestUserIDByToken_Unknown(t *testing.T) {
	id, err := UserIDByToken(context.Background(), &stubDB{err: pgx.ErrNoRows}, "3f1c")
	if id != 0 || !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("UserIDByToken = %d, %v, want 0 and ErrNoRows", id, err)
	}
}

// TestCreateUser_Failures verifies required fields are checked before any
// statement runs and insert errors are wrapped.
func TestCreateUser_Failures(t *testing.T) {
	db := &stubDB{}
	if _, err := CreateUser(context.Background(), db, "", "a@b.c", "pw"); err == nil || db.calls != 0 {
		t.Errorf("empty username: err = %v, calls = %d, want an error and no statements", err, db.calls)
	}

	dup := &pgconn.PgError{Code: "23505"}
	_, err := CreateUser(context.Background(), &stubDB{err: dup}, "lyle", "a@b.c", "pw")
	if !IsUniqueViolation(err) {
		t.Errorf("duplicate user: err = %v, want a unique violation", err)
	}
}
