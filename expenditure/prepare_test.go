package expenditure

import (
	"math"
	"testing"
	"time"
)

func testInputs(weights []WeightObservation, intake []IntakeObservation) Inputs {
	return Inputs{
		UserID:     1,
		Start:      windowStart,
		End:        windowStart.AddDate(0, 0, 21),
		WindowDays: 21,
		Weights:    weights,
		Intake:     intake,
	}
}

// TestPrepare_SameDayReadingsAveraged verifies that several readings on one
// day collapse into their mean, regardless of input order.
func TestPrepare_SameDayReadingsAveraged(t *testing.T) {
	d := windowStart.AddDate(0, 0, 3)
	weights := []WeightObservation{
		{Date: d.Add(20 * time.Hour), WeightKG: 81.0, Source: SourceManual},
		{Date: windowStart.AddDate(0, 0, 1), WeightKG: 82.0},
		{Date: d.Add(7 * time.Hour), WeightKG: 80.0, Source: SourceScale},
	}
	p := prepare(testInputs(weights, nil))

	if len(p.readings) != 2 {
		t.Fatalf("readings = %d, want 2", len(p.readings))
	}
	if p.readings[0].Index != 1 || p.readings[1].Index != 3 {
		t.Errorf("indices = %d,%d, want 1,3", p.readings[0].Index, p.readings[1].Index)
	}
	if p.readings[1].WeightKG != 80.5 {
		t.Errorf("day 3 weight = %v, want 80.5", p.readings[1].WeightKG)
	}
	if p.counts.WeightObservations != 3 || p.counts.WeightDays != 2 {
		t.Errorf("counts = %+v", p.counts)
	}
}

// TestPrepare_DropsUnusableReadings verifies that readings outside the window
// or with a non-positive or non-finite weight are ignored.
func TestPrepare_DropsUnusableReadings(t *testing.T) {
	weights := []WeightObservation{
		{Date: windowStart.AddDate(0, 0, -1), WeightKG: 80},
		{Date: windowStart.AddDate(0, 0, 22), WeightKG: 80},
		{Date: windowStart.AddDate(0, 0, 2), WeightKG: 0},
		{Date: windowStart.AddDate(0, 0, 3), WeightKG: math.NaN()},
		{Date: windowStart.AddDate(0, 0, 4), WeightKG: math.Inf(1)},
		{Date: windowStart.AddDate(0, 0, 5), WeightKG: 79},
	}
	intake := []IntakeObservation{
		{Date: windowStart.AddDate(0, 0, 1), Calories: -5},
		{Date: windowStart.AddDate(0, 0, 2), Calories: 2000},
	}
	p := prepare(testInputs(weights, intake))

	if len(p.readings) != 1 || p.readings[0].Index != 5 {
		t.Errorf("readings = %+v, want only day 5", p.readings)
	}
	if len(p.intake) != 1 || p.counts.IntakeDays != 1 {
		t.Errorf("intake = %+v, want only the 2000 kcal day", p.intake)
	}
}

// TestPrepare_LatestBMR verifies the most recent reported basal rate is kept.
func TestPrepare_LatestBMR(t *testing.T) {
	weights := []WeightObservation{
		{Date: windowStart.AddDate(0, 0, 9), WeightKG: 80, BMRKcal: ptr(1750.0)},
		{Date: windowStart.AddDate(0, 0, 2), WeightKG: 80, BMRKcal: ptr(1700.0)},
		{Date: windowStart.AddDate(0, 0, 12), WeightKG: 80},
	}
	p := prepare(testInputs(weights, nil))
	if p.latestBMR == nil || *p.latestBMR != 1750 {
		t.Errorf("latest bmr = %v, want 1750", p.latestBMR)
	}
}

// TestPrepare_PartialDays verifies partial days are counted.
func TestPrepare_PartialDays(t *testing.T) {
	intake := constantIntake(8, 2000)
	intake[2].PartialDay = true
	intake[5].PartialDay = true
	p := prepare(testInputs(nil, intake))
	if p.counts.IntakeDays != 8 || p.counts.PartialIntakeDays != 2 {
		t.Errorf("counts = %+v, want 8 intake days with 2 partial", p.counts)
	}
}

/* ─── Gap filling ────────────────────────────────────────────────────── */

// TestGapFill_Interpolates verifies missing days between readings are filled
// on the straight line between their neighbours.
func TestGapFill_Interpolates(t *testing.T) {
	points := gapFill(readingsOf(2, 80, 6, 78, 7, 79))

	want := []struct {
		idx      int
		kg       float64
		observed bool
	}{
		{2, 80, true},
		{3, 79.5, false},
		{4, 79, false},
		{5, 78.5, false},
		{6, 78, true},
		{7, 79, true},
	}
	if len(points) != len(want) {
		t.Fatalf("points = %d, want %d", len(points), len(want))
	}
	for i, w := range want {
		p := points[i]
		if p.Index != w.idx || math.Abs(p.WeightKG-w.kg) > 1e-9 || p.Observed != w.observed {
			t.Errorf("point %d = %+v, want %+v", i, p, w)
		}
	}
}

// TestGapFill_NoExtrapolation verifies the series starts at the first reading
// and stops at the last one.
func TestGapFill_NoExtrapolation(t *testing.T) {
	points := gapFill(readingsOf(5, 80, 9, 80))
	if points[0].Index != 5 || points[len(points)-1].Index != 9 {
		t.Errorf("series spans %d..%d, want 5..9", points[0].Index, points[len(points)-1].Index)
	}
	if gapFill(nil) != nil {
		t.Error("expected nil series for no readings")
	}
}

// TestFullIntakeDays verifies partial days are dropped unless all are partial.
func TestFullIntakeDays(t *testing.T) {
	intake := constantIntake(3, 2000)
	intake[1].PartialDay = true
	if got := fullIntakeDays(intake); len(got) != 2 {
		t.Errorf("full days = %d, want 2", len(got))
	}

	for i := range intake {
		intake[i].PartialDay = true
	}
	if got := fullIntakeDays(intake); len(got) != 3 {
		t.Errorf("all-partial full days = %d, want 3", len(got))
	}
}

// TestWindowBounds verifies the window is [today - N weeks, today] at UTC midnight.
func TestWindowBounds(t *testing.T) {
	start, end, days := windowBounds(testNow, 3)
	if !start.Equal(windowStart) {
		t.Errorf("start = %s, want %s", start, windowStart)
	}
	if !end.Equal(time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %s, want 2026-03-22", end)
	}
	if days != 21 {
		t.Errorf("days = %d, want 21", days)
	}
}
