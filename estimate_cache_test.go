package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lg/adaptive-tdee-go-api/expenditure"
)

// testNow is the fixed "today" for the root package tests. The default
// three-week window runs from 2026-03-01 to 2026-03-22.
var testNow = time.Date(2026, 3, 22, 15, 30, 0, 0, time.UTC)

// memStore serves observations from memory and counts loads. When gate is
// set, weight fetches announce themselves on entered and block until gate is
// closed or their ctx is done.
type memStore struct {
	mu      sync.Mutex
	weights []expenditure.WeightObservation
	intake  []expenditure.IntakeObservation
	profile *expenditure.UserGoalProfile
	err     error
	loads   int

	gate    chan struct{}
	entered chan struct{}
}

func (m *memStore) WeightObservations(ctx context.Context, _ int, _, _ time.Time) ([]expenditure.WeightObservation, error) {
	m.mu.Lock()
	m.loads++
	weights, err, gate := m.weights, m.err, m.gate
	m.mu.Unlock()

	if gate != nil {
		m.entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return weights, nil
}

func (m *memStore) IntakeObservations(_ context.Context, _ int, _, _ time.Time) ([]expenditure.IntakeObservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.intake, nil
}

func (m *memStore) GoalProfile(_ context.Context, _ int) (*expenditure.UserGoalProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

// steadyLoss fills three weeks of readings losing 0.1 kg/day on 2200 kcal.
func steadyLoss() *memStore {
	m := &memStore{}
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i := range 21 {
		d := start.AddDate(0, 0, i)
		m.weights = append(m.weights, expenditure.WeightObservation{
			Date: d, WeightKG: 85 - 0.1*float64(i), Source: expenditure.SourceScale,
		})
		m.intake = append(m.intake, expenditure.IntakeObservation{
			Date: d, Calories: 2200, ProteinG: 150, CarbsG: 220, FatG: 70,
		})
	}
	return m
}

func newTestCache(m *memStore, now *time.Time) *estimateCache {
	e := expenditure.NewEstimator(m, m, m, expenditure.WithClock(func() time.Time { return testNow }))
	return newEstimateCache(e, func() time.Time { return *now })
}

// TestEstimateCache_HitOnSameInputs verifies an unchanged window is served
// from the cache.
func TestEstimateCache_HitOnSameInputs(t *testing.T) {
	now := testNow
	c := newTestCache(steadyLoss(), &now)

	first, hit, err := c.get(context.Background(), 1, 3)
	if err != nil || hit {
		t.Fatalf("first get: hit=%v err=%v, want miss", hit, err)
	}
	second, hit, err := c.get(context.Background(), 1, 3)
	if err != nil || !hit {
		t.Fatalf("second get: hit=%v err=%v, want hit", hit, err)
	}
	if first.EstimatedTDEEKcal != second.EstimatedTDEEKcal || first.Confidence != second.Confidence {
		t.Errorf("cached estimate differs: %+v vs %+v", first, second)
	}
}

// TestEstimateCache_MissOnChange verifies new data, a new hour and an explicit
// invalidation each force a recomputation.
func TestEstimateCache_MissOnChange(t *testing.T) {
	now := testNow
	m := steadyLoss()
	c := newTestCache(m, &now)
	ctx := context.Background()

	if _, _, err := c.get(ctx, 1, 3); err != nil {
		t.Fatal(err)
	}

	m.mu.Lock()
	m.intake[20].Calories = 2600
	m.mu.Unlock()
	if _, hit, _ := c.get(ctx, 1, 3); hit {
		t.Error("changed intake should miss")
	}

	now = now.Add(time.Hour)
	if _, hit, _ := c.get(ctx, 1, 3); hit {
		t.Error("new hour should miss")
	}
	if _, hit, _ := c.get(ctx, 1, 3); !hit {
		t.Error("repeat within the hour should hit")
	}

	c.invalidate(1)
	if _, hit, _ := c.get(ctx, 1, 3); hit {
		t.Error("invalidated entry should miss")
	}
}

// TestEstimateCache_PerUser verifies users do not share entries.
func TestEstimateCache_PerUser(t *testing.T) {
	now := testNow
	c := newTestCache(steadyLoss(), &now)
	ctx := context.Background()

	if _, _, err := c.get(ctx, 1, 3); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.get(ctx, 2, 3); hit {
		t.Error("user 2 should not hit user 1's entry")
	}
	c.invalidate(2)
	if _, hit, _ := c.get(ctx, 1, 3); !hit {
		t.Error("invalidating user 2 should keep user 1's entry")
	}
}

// TestEstimateCache_LoadError verifies collaborator failures propagate and are
// not cached.
func TestEstimateCache_LoadError(t *testing.T) {
	now := testNow
	m := steadyLoss()
	m.err = errors.New("connection refused")
	c := newTestCache(m, &now)

	if _, _, err := c.get(context.Background(), 1, 3); err == nil {
		t.Fatal("expected an error")
	}

	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
	if _, hit, err := c.get(context.Background(), 1, 3); err != nil || hit {
		t.Errorf("after recovery: hit=%v err=%v, want miss and no error", hit, err)
	}
}

// TestEstimateCache_CallerCancel verifies that the caller who started a shared
// load can go away without failing the callers still waiting on it.
func TestEstimateCache_CallerCancel(t *testing.T) {
	now := testNow
	m := steadyLoss()
	m.gate, m.entered = make(chan struct{}), make(chan struct{}, 2)
	c := newTestCache(m, &now)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, _, err := c.get(ctxA, 1, 3)
		errA <- err
	}()
	<-m.entered

	type result struct {
		est expenditure.ExpenditureEstimate
		err error
	}
	resB := make(chan result, 1)
	go func() {
		est, _, err := c.get(context.Background(), 1, 3)
		resB <- result{est, err}
	}()

	cancelA()
	if err := <-errA; !errors.Is(err, context.Canceled) {
		t.Errorf("caller A: err = %v, want context.Canceled", err)
	}

	close(m.gate)
	r := <-resB
	if r.err != nil {
		t.Fatalf("caller B: unexpected error: %v", r.err)
	}
	if r.est.Confidence == expenditure.ConfidenceNone || r.est.EstimatedTDEEKcal == 0 {
		t.Errorf("caller B: estimate = %+v, want a rated estimate", r.est)
	}
}

// TestFingerprint verifies the hash depends on inputs and hour bucket only.
func TestFingerprint(t *testing.T) {
	in := expenditure.Inputs{UserID: 1, WindowDays: 21}
	a, _ := fingerprint(in, testNow)
	b, _ := fingerprint(in, testNow.Add(20*time.Minute))
	if a != b {
		t.Error("same hour should give the same fingerprint")
	}
	c, _ := fingerprint(in, testNow.Add(time.Hour))
	if a == c {
		t.Error("next hour should change the fingerprint")
	}
	in.WindowDays = 28
	d, _ := fingerprint(in, testNow)
	if a == d {
		t.Error("different inputs should change the fingerprint")
	}
}
