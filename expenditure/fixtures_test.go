package expenditure

import (
	"context"
	"errors"
	"testing"
	"time"
)

// testNow is the fixed "today" used by every engine test. With the default
// three-week window the window starts on 2026-03-01.
var testNow = time.Date(2026, 3, 22, 15, 30, 0, 0, time.UTC)

var windowStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

// linearWeights returns one reading per day for n days starting the day after
// the window start, moving linearly from -> to.
func linearWeights(n int, from, to float64) []WeightObservation {
	out := make([]WeightObservation, n)
	for i := range n {
		w := from
		if n > 1 {
			w = from + (to-from)*float64(i)/float64(n-1)
		}
		out[i] = WeightObservation{
			Date:     windowStart.AddDate(0, 0, i+1),
			WeightKG: w,
			Source:   SourceScale,
		}
	}
	return out
}

// constantIntake returns n days of identical intake aligned with linearWeights.
func constantIntake(n int, kcal float64) []IntakeObservation {
	out := make([]IntakeObservation, n)
	for i := range n {
		out[i] = IntakeObservation{
			Date:     windowStart.AddDate(0, 0, i+1),
			Calories: kcal,
			ProteinG: 150,
			CarbsG:   200,
			FatG:     70,
		}
	}
	return out
}

// readingsOf builds day readings from (index, kg) pairs.
func readingsOf(pairs ...float64) []dayReading {
	out := make([]dayReading, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, dayReading{Index: int(pairs[i]), WeightKG: pairs[i+1]})
	}
	return out
}

func ptr[T any](v T) *T { return &v }

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// fakeStore serves fixed observations and records the queried range.
// Setting err makes every fetch fail.
type fakeStore struct {
	weights []WeightObservation
	intake  []IntakeObservation
	profile *UserGoalProfile
	err     error

	from, to time.Time
}

func (f *fakeStore) WeightObservations(_ context.Context, _ int, from, to time.Time) ([]WeightObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.from, f.to = from, to
	return f.weights, nil
}

func (f *fakeStore) IntakeObservations(_ context.Context, _ int, _, _ time.Time) ([]IntakeObservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.intake, nil
}

func (f *fakeStore) GoalProfile(_ context.Context, _ int) (*UserGoalProfile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

var errStoreDown = errors.New("connection refused")

func newTestEstimator(s *fakeStore) *Estimator {
	return NewEstimator(s, s, s, WithClock(func() time.Time { return testNow }))
}
